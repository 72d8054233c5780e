package imgcluster

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram counts labels in bins equal-width bins spanning [min, max].
// The last bin is closed on the right. When every label is equal the range is
// widened by half a unit on both sides. Edges has bins+1 entries.
func Histogram(labels []int, bins int) (counts []int, edges []float64, err error) {
	if bins <= 0 {
		return nil, nil, fmt.Errorf("histogram: bins must be positive, got %d", bins)
	}
	x := make([]float64, len(labels))
	for i, l := range labels {
		x[i] = float64(l)
	}
	slices.Sort(x)

	lo, hi := 0.0, 1.0
	if len(x) > 0 {
		lo, hi = x[0], x[len(x)-1]
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	edges = floats.Span(make([]float64, bins+1), lo, hi)

	dividers := slices.Clone(edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	fc := stat.Histogram(nil, dividers, x, nil)

	counts = make([]int, bins)
	for i, c := range fc {
		counts[i] = int(c)
	}
	return counts, edges, nil
}
