package tightbinding

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FourierTransform writes into dst the diagonal of src in momentum space,
// dst[k] = sum_ij conj(B(i,k)) src(i,j) B(j,k).
// src is a site-space matrix of the Sites of g, laid out as Sites/leg columns of leg rows.
// Only FeAs lattices are supported.
func (g *Geometry) FourierTransform(dst []complex128, src mat.Matrix, leg int) error {
	n, cols := src.Dims()
	if n != g.params.Sites || cols != n {
		return configErrorf("src is %dx%d but the lattice has %d sites", n, cols, g.params.Sites)
	}
	if len(dst) != n {
		return configErrorf("dst has length %d, expected %d", len(dst), n)
	}
	b, err := g.fourierMatrix(n, leg)
	if err != nil {
		return errors.Wrap(err, "")
	}

	for k := range n {
		var sum complex128
		for i := range n {
			bik := cmplx.Conj(b.At(i, k))
			for j := range n {
				sum += bik * complex(src.At(i, j), 0) * b.At(j, k)
			}
		}
		dst[k] = sum
	}
	return nil
}

// fourierMatrix returns B(i,k) = exp(i (rx kx 2pi/lengthx + ry ky 2pi/leg)).
func (g *Geometry) fourierMatrix(n, leg int) (*mat.CDense, error) {
	if g.params.Type != FeAs {
		return nil, configErrorf("fourier transform unsupported for %s", g.Name())
	}
	if leg <= 0 || n%leg != 0 {
		return nil, configErrorf("leg %d must divide number of sites %d", leg, n)
	}
	lengthx := n / leg
	b := mat.NewCDense(n, n, nil)
	for i := range n {
		rx := i % lengthx
		ry := i / lengthx
		for k := range n {
			kx := k % lengthx
			ky := k / lengthx
			tmpx := float64(rx*kx) * 2 * math.Pi / float64(lengthx)
			tmpy := float64(ry*ky) * 2 * math.Pi / float64(leg)
			b.Set(i, k, complex(math.Cos(tmpx+tmpy), math.Sin(tmpx+tmpy)))
		}
	}
	return b, nil
}
