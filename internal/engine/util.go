package engine

// keyBy indexes items by key. Later items replace earlier ones with the
// same key.
//
//	byRevision := keyBy(applied, func(a AppliedMigration) string { return a.Revision })
func keyBy[T any, K comparable](items []T, key func(T) K) map[K]T {
	m := make(map[K]T, len(items))
	for _, item := range items {
		m[key(item)] = item
	}
	return m
}

// setOf returns the distinct items as a set.
func setOf[T comparable](items []T) map[T]struct{} {
	m := make(map[T]struct{}, len(items))
	for _, item := range items {
		m[item] = struct{}{}
	}
	return m
}
