package internal

// Dedupe returns the values of a slice with duplicates removed, keeping
// first-occurrence order.
func Dedupe[T comparable](values []T) []T {
	seen := make(map[T]bool, len(values))
	var unique []T
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		unique = append(unique, value)
	}
	return unique
}
