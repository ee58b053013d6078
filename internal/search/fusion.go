package search

// DefaultRRFK is the reciprocal rank fusion smoothing constant.
const DefaultRRFK = 60

// FuseRRF merges per-strategy rankings with reciprocal rank fusion.
// Each candidate's fused score is the sum of 1/(k+rank) over the
// strategies that returned it, ranks being 1-based. A strategy that did
// not return a candidate contributes nothing, so candidates corroborated
// by multiple strategies outrank single-source ones.
func FuseRRF(ranked map[string][]string, k int) map[string]float64 {
	if k <= 0 {
		k = DefaultRRFK
	}
	fused := make(map[string]float64)
	for _, ids := range ranked {
		for i, id := range ids {
			fused[id] += 1.0 / float64(k+i+1)
		}
	}
	return fused
}
