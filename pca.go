package imgcluster

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type PCA struct {
	// Rows are observations, columns the kept components.
	Projected *mat.Dense
	// d×k loading vectors, one column per component.
	Vectors                *mat.Dense
	ExplainedVarianceRatio []float64
}

// Reduce projects the rows of x onto its first k principal components.
// The sign of every component is fixed so that its largest-magnitude score
// is positive, which keeps repeated runs comparable.
func Reduce(x *mat.Dense, k int) (*PCA, error) {
	n, d := x.Dims()
	if k <= 0 || k > min(n, d) {
		return nil, fmt.Errorf("%w: asked for %d, at most %d", ErrTooManyComponents, k, min(n, d))
	}

	var pc stat.PC
	if !pc.PrincipalComponents(x, nil) {
		return nil, errors.New("pca: singular value decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := make([]float64, min(n, d))
	pc.VarsTo(vars)

	centered := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		floats.AddConst(-stat.Mean(col, nil), col)
		centered.SetCol(j, col)
	}

	loadings := mat.DenseCopyOf(vecs.Slice(0, d, 0, k))
	proj := mat.NewDense(n, k, nil)
	proj.Mul(centered, loadings)
	flipSigns(proj, loadings)

	ratio := make([]float64, k)
	if total := floats.Sum(vars); total > 0 && !math.IsInf(total, 0) {
		for i := 0; i < k; i++ {
			ratio[i] = vars[i] / total
		}
	}
	return &PCA{Projected: proj, Vectors: loadings, ExplainedVarianceRatio: ratio}, nil
}

func flipSigns(proj, loadings *mat.Dense) {
	n, k := proj.Dims()
	d, _ := loadings.Dims()
	for j := 0; j < k; j++ {
		best := 0.0
		for i := 0; i < n; i++ {
			if v := proj.At(i, j); math.Abs(v) > math.Abs(best) {
				best = v
			}
		}
		if best >= 0 {
			continue
		}
		for i := 0; i < n; i++ {
			proj.Set(i, j, -proj.At(i, j))
		}
		for i := 0; i < d; i++ {
			loadings.Set(i, j, -loadings.At(i, j))
		}
	}
}

// Rows copies m into a slice of rows.
func Rows(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}
