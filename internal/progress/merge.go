package progress

// Merge combines partial into current without mutating either.
// Keys absent from partial keep their stored value; nothing is ever deleted.
func Merge(mode MergeMode, current, partial map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(current)+len(partial))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range partial {
		if mode == MergeAccumulate {
			out[k] += v
			continue
		}
		out[k] = v
	}
	return out
}
