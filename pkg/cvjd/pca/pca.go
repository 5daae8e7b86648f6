// Package pca provides Principal Component Analysis for dimensionality reduction.
//
// Fit centers the input columns and keeps the top right singular vectors of
// the centered matrix. The fitted Projection is a plain value: it can be
// applied to any matrix with the same column count.
package pca

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/cvjd/pkg/cvjd/internalerr"
)

// Projection holds a fitted PCA basis.
type Projection struct {
	// Mean is the per-column mean of the training matrix.
	Mean []float64

	// Components is (dim x cols); each row is a unit principal axis.
	Components *mat.Dense

	// ExplainedVariance is the variance captured by each component.
	ExplainedVariance []float64

	// ExplainedVarianceRatio is ExplainedVariance over the total variance.
	ExplainedVarianceRatio []float64
}

// Fit learns a dim-component projection from x.
// dim must be in [1, min(rows, cols)]; larger values return a
// *internalerr.DimensionError.
func Fit(x mat.Matrix, dim int) (*Projection, error) {
	rows, cols := x.Dims()
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", internalerr.ErrInvalidInput, dim)
	}
	if dim > rows || dim > cols {
		return nil, &internalerr.DimensionError{Requested: dim, Rows: rows, Cols: cols}
	}

	mean := columnMeans(x)
	centered := center(x, mean)

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, errors.New("SVD factorization failed")
	}
	sv := svd.Values(nil)

	var v mat.Dense
	svd.VTo(&v)

	components := mat.NewDense(dim, cols, nil)
	for k := 0; k < dim; k++ {
		for j := 0; j < cols; j++ {
			components.Set(k, j, v.At(j, k))
		}
	}
	flipSigns(components)

	var total float64
	for _, s := range sv {
		total += s * s
	}
	variance := make([]float64, dim)
	ratio := make([]float64, dim)
	for k := 0; k < dim; k++ {
		if rows > 1 {
			variance[k] = sv[k] * sv[k] / float64(rows-1)
		}
		if total > 0 {
			ratio[k] = sv[k] * sv[k] / total
		}
	}

	return &Projection{
		Mean:                   mean,
		Components:             components,
		ExplainedVariance:      variance,
		ExplainedVarianceRatio: ratio,
	}, nil
}

// Dim returns the number of output columns.
func (p *Projection) Dim() int {
	r, _ := p.Components.Dims()
	return r
}

// Transform projects every row of x onto the fitted components.
// Row order is preserved.
func (p *Projection) Transform(x mat.Matrix) (*mat.Dense, error) {
	_, cols := x.Dims()
	if cols != len(p.Mean) {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", internalerr.ErrInvalidInput, len(p.Mean), cols)
	}

	var out mat.Dense
	out.Mul(center(x, p.Mean), p.Components.T())
	return &out, nil
}

// FitTransform fits a projection on x and returns x projected onto it.
func FitTransform(x mat.Matrix, dim int) (*mat.Dense, *Projection, error) {
	p, err := Fit(x, dim)
	if err != nil {
		return nil, nil, err
	}
	out, err := p.Transform(x)
	if err != nil {
		return nil, nil, err
	}
	return out, p, nil
}

// TotalExplainedVarianceRatio returns the share of variance kept by all components.
func (p *Projection) TotalExplainedVarianceRatio() float64 {
	var total float64
	for _, r := range p.ExplainedVarianceRatio {
		total += r
	}
	return total
}

func columnMeans(x mat.Matrix) []float64 {
	rows, cols := x.Dims()
	mean := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			mean[j] += x.At(i, j)
		}
	}
	for j := range mean {
		mean[j] /= float64(rows)
	}
	return mean
}

func center(x mat.Matrix, mean []float64) *mat.Dense {
	rows, cols := x.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, x.At(i, j)-mean[j])
		}
	}
	return out
}

// flipSigns makes the largest-magnitude loading of every component
// positive, so repeated fits on the same data agree on orientation.
func flipSigns(components *mat.Dense) {
	rows, cols := components.Dims()
	for k := 0; k < rows; k++ {
		best, bestAbs := 0.0, -1.0
		for j := 0; j < cols; j++ {
			if a := math.Abs(components.At(k, j)); a > bestAbs {
				best, bestAbs = components.At(k, j), a
			}
		}
		if best < 0 {
			for j := 0; j < cols; j++ {
				components.Set(k, j, -components.At(k, j))
			}
		}
	}
}
