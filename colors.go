package imgcluster

import (
	"image"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// DominantColors returns the dominant colour of every image as a hex string.
func DominantColors(images []image.Image) []string {
	out := make([]string, len(images))
	for i, img := range images {
		c, _ := colorful.MakeColor(dominantcolor.Find(img))
		out[i] = c.Clamped().Hex()
	}
	return out
}

// ClusterColors averages the member colours of every cluster in Lab space.
// The result is indexed by cluster id; clusters without members get "".
func ClusterColors(hexes []string, labels []int, k int) []string {
	type acc struct {
		l, a, b float64
		n       int
	}
	sums := make([]acc, k)
	for i, h := range hexes {
		if i >= len(labels) || labels[i] < 0 || labels[i] >= k {
			continue
		}
		c, err := colorful.Hex(h)
		if err != nil {
			continue
		}
		l, a, b := c.Lab()
		s := &sums[labels[i]]
		s.l += l
		s.a += a
		s.b += b
		s.n++
	}
	out := make([]string, k)
	for i, s := range sums {
		if s.n == 0 {
			continue
		}
		n := float64(s.n)
		out[i] = colorful.Lab(s.l/n, s.a/n, s.b/n).Clamped().Hex()
	}
	return out
}

// Palette parses the non-empty hex colours, skipping malformed ones.
func Palette(hexes []string) []colorful.Color {
	out := make([]colorful.Color, 0, len(hexes))
	for _, h := range hexes {
		if h == "" {
			continue
		}
		if c, err := colorful.Hex(h); err == nil {
			out = append(out, c)
		}
	}
	return out
}
