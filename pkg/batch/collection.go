package batch

// MergeByKey inserts items into dst keyed by key, overwriting existing
// entries (last-write-wins). It allocates dst when nil and returns it, so
// records from multiple parent scopes can be folded into one deduplicated
// collection:
//
//	all := batch.MergeByKey(nil, first, keyFn)
//	all = batch.MergeByKey(all, second, keyFn)
func MergeByKey[K comparable, R any](dst map[K]R, items []R, key func(R) K) map[K]R {
	if dst == nil {
		dst = make(map[K]R, len(items))
	}
	for _, item := range items {
		dst[key(item)] = item
	}
	return dst
}
