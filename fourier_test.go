package tightbinding

import (
	"fmt"
	"math/cmplx"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	tbmat "github.com/fumin/tightbinding/mat"
)

func TestFourierTransform(t *testing.T) {
	t.Parallel()
	g := mustNew(t, Params{Type: FeAs, Sites: 4, Leg: 2, Filename: writeTable(t, feAsTable)})
	tests := []struct {
		src *mat.Dense
		leg int
		dst []complex128
	}{
		{
			// A ring of four sites has the band 2cos(k).
			src: tbmat.M([][]float64{
				{0, 1, 0, 1},
				{1, 0, 1, 0},
				{0, 1, 0, 1},
				{1, 0, 1, 0},
			}),
			leg: 1,
			dst: []complex128{8, 0, -8, 0},
		},
		{
			src: tbmat.M([][]float64{
				{1, 0, 0, 0},
				{0, 1, 0, 0},
				{0, 0, 1, 0},
				{0, 0, 0, 1},
			}),
			leg: 2,
			dst: []complex128{4, 4, 4, 4},
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.leg), func(t *testing.T) {
			t.Parallel()
			dst := make([]complex128, len(test.dst))
			if err := g.FourierTransform(dst, test.src, test.leg); err != nil {
				t.Fatalf("%+v", err)
			}
			for k := range dst {
				if cmplx.Abs(dst[k]-test.dst[k]) > 1e-9 {
					t.Fatalf("%d: %s, expected %s", k, tbmat.FormatNumpy(dst[k]), tbmat.FormatNumpy(test.dst[k]))
				}
			}
		})
	}
}

func TestFourierTransformErrors(t *testing.T) {
	t.Parallel()
	feas := mustNew(t, Params{Type: FeAs, Sites: 4, Leg: 2, Filename: writeTable(t, feAsTable)})
	chain := mustNew(t, Params{Type: Chain, Sites: 4, Hopping: []float64{1}})
	square := mat.NewDense(4, 4, nil)
	tests := []struct {
		name string
		g    *Geometry
		dst  []complex128
		src  mat.Matrix
		leg  int
	}{
		{name: "chain", g: chain, dst: make([]complex128, 4), src: square, leg: 2},
		{name: "leg", g: feas, dst: make([]complex128, 4), src: square, leg: 3},
		{name: "zero leg", g: feas, dst: make([]complex128, 4), src: square, leg: 0},
		{name: "src", g: feas, dst: make([]complex128, 4), src: mat.NewDense(3, 3, nil), leg: 2},
		{name: "dst", g: feas, dst: make([]complex128, 3), src: square, leg: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if err := test.g.FourierTransform(test.dst, test.src, test.leg); !errors.Is(err, ErrConfiguration) {
				t.Fatalf("%+v", err)
			}
		})
	}
}
