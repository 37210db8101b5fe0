// Command profilesync lists and bulk-manages user-profile records on the
// ad-platform API. Configuration comes from PROFILESYNC_* environment
// variables; the first argument selects the subcommand.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cmtools/profilesync/pkg/adapi"
	"github.com/cmtools/profilesync/pkg/batch"
	"github.com/cmtools/profilesync/pkg/client"
	"github.com/cmtools/profilesync/pkg/logging"
	"github.com/cmtools/profilesync/pkg/tabular"
)

type appConfig struct {
	APIBaseURL         string  `envconfig:"API_BASE_URL" required:"true"`
	APIToken           string  `envconfig:"API_TOKEN" required:"true"`
	RedisAddr          string  `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	LogLevel           string  `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty          bool    `envconfig:"LOG_PRETTY" default:"false"`
	ProfileIDs         []int64 `envconfig:"PROFILE_IDS"`
	ExcludedAccountIDs []int64 `envconfig:"EXCLUDED_ACCOUNT_IDS"`
	PatchConcurrency   int     `envconfig:"PATCH_CONCURRENCY" default:"1"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var cfg appConfig
	if err := envconfig.Process("profilesync", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	apiClient, err := client.New(client.DefaultConfig(redisClient, cfg.APIBaseURL, cfg.APIToken))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create API client")
	}
	defer apiClient.Close()

	api := adapi.New(apiClient)
	bulk := adapi.NewBulk(api, adapi.BulkConfig{
		ExcludedAccountIDs: cfg.ExcludedAccountIDs,
		Batch:              batch.Config{MaxConcurrency: cfg.PatchConcurrency},
	})

	switch os.Args[1] {
	case "profiles":
		err = runProfiles(ctx, api)
	case "export":
		err = runExport(ctx, cfg, bulk, os.Args[2:])
	case "activate":
		err = runSetActive(ctx, cfg, bulk, logger, true, os.Args[2:])
	case "deactivate":
		err = runSetActive(ctx, cfg, bulk, logger, false, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: profilesync <command> [args]

commands:
  profiles               list user profiles as CSV on stdout
  export [file]          collect account user profiles to CSV (stdout if no file)
  activate [id ...]      activate account user profiles (all collected if no ids)
  deactivate [id ...]    deactivate account user profiles (all collected if no ids)

configuration (environment):
  PROFILESYNC_API_BASE_URL          API root URL (required)
  PROFILESYNC_API_TOKEN             OAuth bearer token (required)
  PROFILESYNC_REDIS_ADDR            redis address (default localhost:6379)
  PROFILESYNC_PROFILE_IDS           comma-separated profile scopes to collect through
  PROFILESYNC_EXCLUDED_ACCOUNT_IDS  comma-separated account ids to skip
  PROFILESYNC_PATCH_CONCURRENCY     in-flight patch calls (default 1)
  PROFILESYNC_LOG_LEVEL             debug|info|warn|error (default info)`)
}

func runProfiles(ctx context.Context, api *adapi.API) error {
	profiles, err := api.ListUserProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list user profiles: %w", err)
	}

	rows := make([]map[string]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, p.Row())
	}
	return tabular.WriteCSV(os.Stdout, tabular.Project(adapi.UserProfileFields, rows))
}

func runExport(ctx context.Context, cfg appConfig, bulk *adapi.Bulk, args []string) error {
	recs, err := collect(ctx, cfg, bulk)
	if err != nil {
		return err
	}

	out := os.Stdout
	if len(args) > 0 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return tabular.WriteCSV(out, tabular.Project(adapi.AccountUserProfileFields, profileRows(recs)))
}

func runSetActive(ctx context.Context, cfg appConfig, bulk *adapi.Bulk, logger zerolog.Logger, active bool, args []string) error {
	recs, err := collect(ctx, cfg, bulk)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		recs, err = filterByIDs(recs, args)
		if err != nil {
			return err
		}
	}

	// Patch failures do not fail the command; they are logged per record and
	// summarized here.
	updated, result := bulk.SetActive(ctx, recs, active)

	if !result.AllSucceeded() {
		logger.Warn().
			Int("failed", len(result.Failed)).
			Interface("failed_ids", result.FailedKeys()).
			Msg("Some records were not patched")
	}

	return tabular.WriteCSV(os.Stdout, tabular.Project(adapi.AccountUserProfileFields, profileRows(updated)))
}

func collect(ctx context.Context, cfg appConfig, bulk *adapi.Bulk) (map[int64]adapi.AccountUserProfile, error) {
	if len(cfg.ProfileIDs) == 0 {
		return nil, fmt.Errorf("PROFILESYNC_PROFILE_IDS is required for this command")
	}

	recs, err := bulk.CollectAccountUserProfiles(ctx, cfg.ProfileIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("collect account user profiles: %w", err)
	}
	return recs, nil
}

func filterByIDs(recs map[int64]adapi.AccountUserProfile, args []string) (map[int64]adapi.AccountUserProfile, error) {
	filtered := make(map[int64]adapi.AccountUserProfile, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid record id %q: %w", arg, err)
		}
		rec, ok := recs[id]
		if !ok {
			return nil, fmt.Errorf("record %d not found in collected profiles", id)
		}
		filtered[id] = rec
	}
	return filtered, nil
}

func profileRows(recs map[int64]adapi.AccountUserProfile) []map[string]string {
	rows := make([]map[string]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rec.Row())
	}
	return rows
}
