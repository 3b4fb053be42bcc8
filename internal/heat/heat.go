// Package heat maps counts onto the five-step intensity scale shared by the
// book, chapter and verse heatmaps.
package heat

// MaxLevel is the hottest level.
const MaxLevel = 4

// Level returns the heat level of count relative to max, the largest count
// among its siblings. Zero counts are level 0. Otherwise the ratio
// count/max is bucketed as [0,.15)→1, [.15,.40)→2, [.40,.70)→3, [.70,1]→4,
// with exact boundaries landing in the upper bucket.
//
// Callers must not pass max=0 with a positive count; such a count is
// reported at MaxLevel.
func Level(count, max int) int {
	switch {
	case count <= 0:
		return 0
	case max <= 0 || count >= max:
		return MaxLevel
	}
	// Compare count/max against the thresholds in hundredths to stay exact.
	c, m := int64(count)*100, int64(max)
	switch {
	case c < 15*m:
		return 1
	case c < 40*m:
		return 2
	case c < 70*m:
		return 3
	default:
		return 4
	}
}

// Levels computes the level of every count against the maximum of counts.
func Levels(counts []int) []int {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	out := make([]int, len(counts))
	for i, c := range counts {
		out[i] = Level(c, max)
	}
	return out
}
