package functional

// Map converts every element of in with fn, keeping order. A nil input gives an empty, non-nil slice so
// JSON lists render as [].
func Map[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
