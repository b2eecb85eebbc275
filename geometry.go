// Package tightbinding builds the hopping matrices of free fermion lattices.
//
// A hopping matrix is a dense real symmetric matrix whose off-diagonal entries
// are the hopping amplitudes between two orbitals and whose diagonal holds the
// on-site potential.
package tightbinding

import (
	"fmt"
	"io"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	tbmat "github.com/fumin/tightbinding/mat"
)

// Geometry is the hopping matrix of a lattice.
//
// After New returns, only AddPotential and Bathify modify a Geometry, and they
// must not run concurrently with readers.
type Geometry struct {
	params Params
	t      *mat.Dense

	kniffour *kTwoNiFFour
}

// New builds the hopping matrix of the lattice described by params.
func New(params Params) (*Geometry, error) {
	params.Hopping = slices.Clone(params.Hopping)
	g := &Geometry{params: params}
	if params.Sites <= 0 {
		return nil, configErrorf("sites %d", params.Sites)
	}

	var err error
	switch params.Type {
	case Chain:
		g.t, err = chain(params)
	case Ladder:
		g.t, err = ladder(params)
	case FeAs:
		g.t, err = feAs(params)
	case KTwoNiFFour:
		g.kniffour, err = newKTwoNiFFour(params)
		if err != nil {
			break
		}
		g.t, err = g.kniffour.fill()
	default:
		err = configErrorf("unknown geometry %d", params.Type)
	}
	if err != nil {
		return nil, errors.Wrap(err, params.Type.String())
	}
	return g, nil
}

func (g *Geometry) Rows() int {
	r, _ := g.t.Dims()
	return r
}

func (g *Geometry) Cols() int {
	_, c := g.t.Dims()
	return c
}

// At returns the element (i, j), which must lie in [0, Rows()).
func (g *Geometry) At(i, j int) float64 {
	return g.t.At(i, j)
}

// Matrix returns the hopping matrix.
// Callers must not modify it.
func (g *Geometry) Matrix() mat.Matrix {
	return g.t
}

func (g *Geometry) Name() string {
	return g.params.Type.String()
}

func (g *Geometry) Params() Params {
	p := g.params
	p.Hopping = slices.Clone(p.Hopping)
	return p
}

// Orbitals returns the number of orbitals per site.
// KTwoNiFFour oxygen sites have two orbitals and connector sites one, this returns two for it.
func (g *Geometry) Orbitals() int {
	switch g.params.Type {
	case FeAs, KTwoNiFFour:
		return 2
	default:
		return 1
	}
}

// Index returns the matrix row of orbital orb of site.
func (g *Geometry) Index(site, orb int) (int, error) {
	sites := g.params.Sites
	if site < 0 || site >= sites {
		return -1, configErrorf("site %d outside [0, %d)", site, sites)
	}
	if orb < 0 || orb >= g.Orbitals() {
		return -1, configErrorf("orbital %d of %s", orb, g.Name())
	}
	switch g.params.Type {
	case FeAs:
		return site + orb*sites, nil
	case KTwoNiFFour:
		if orb == 1 && classify(site).typ == siteC {
			return -1, configErrorf("connector site %d has a single orbital", site)
		}
		return g.kniffour.index(site, orb), nil
	default:
		return site, nil
	}
}

// AddPotential sets the diagonal to p.
func (g *Geometry) AddPotential(p []float64) error {
	if len(p) != g.Rows() {
		return configErrorf("addPotential: expecting %d numbers but %d found instead", g.Rows(), len(p))
	}
	for i, v := range p {
		g.t.Set(i, i, v)
	}
	return nil
}

// Bathify attaches len(tb) bath sites to every site.
// Bath site sites+j+len(tb)*i hangs off site i with amplitude tb[j].
func (g *Geometry) Bathify(tb []float64) error {
	sites := g.params.Sites
	rows, cols := g.t.Dims()
	if rows == 1 && cols == 1 {
		return configErrorf("bathify: single site lattice")
	}
	if sites != rows || sites != cols {
		return configErrorf("bathify: %dx%d matrix for %d sites", rows, cols, sites)
	}

	nb := len(tb)
	nnew := sites * (1 + nb)
	tnew := mat.NewDense(nnew, nnew, nil)
	tnew.Slice(0, rows, 0, cols).(*mat.Dense).Copy(g.t)
	for i := range rows {
		for j, v := range tb {
			k := sites + j + nb*i
			tnew.Set(i, k, v)
			tnew.Set(k, i, v)
		}
	}
	g.t = tnew
	return nil
}

// Write dumps the matrix t followed by the geometry name.
func Write(w io.Writer, t mat.Matrix, name string) error {
	if err := tbmat.Fprint(w, t); err != nil {
		return errors.Wrap(err, "")
	}
	if _, err := fmt.Fprintf(w, "GeometryName=%s\n", name); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// symmetric returns ErrHermiticity if t is not symmetric.
func symmetric(t mat.Matrix, what string) error {
	i, j, ok := tbmat.Asymmetry(t, tbmat.SymmetryTol)
	switch {
	case ok:
		return nil
	case i < 0:
		r, c := t.Dims()
		return errors.Wrapf(ErrHermiticity, "%s: %dx%d matrix", what, r, c)
	default:
		return errors.Wrapf(ErrHermiticity, "%s: t(%d,%d)=%g t(%d,%d)=%g", what, i, j, t.At(i, j), j, i, t.At(j, i))
	}
}
