package tightbinding

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/tightbinding/tables"
)

const (
	// feAsOrbitals is the number of orbitals per FeAs site.
	feAsOrbitals = 2
	// feAsHoppings is the number of FeAs amplitudes, one per orbital pair and direction.
	feAsHoppings = feAsOrbitals * feAsOrbitals * 4
)

// setBond sets t(i, j) and t(j, i) to v.
func setBond(t *mat.Dense, i, j int, v float64) {
	t.Set(i, j, v)
	t.Set(j, i, v)
}

func chain(params Params) (*mat.Dense, error) {
	if len(params.Hopping) < 1 {
		return nil, configErrorf("chain needs one hopping, got %v", params.Hopping)
	}
	sites := params.Sites
	h := params.Hopping[0]
	t := mat.NewDense(sites, sites, nil)
	for i := 0; i+1 < sites; i++ {
		setBond(t, i, i+1, h)
	}
	if params.Periodic {
		setBond(t, 0, sites-1, h)
	}
	return t, nil
}

// ladder builds a lattice whose sites are numbered along the legs first:
// sites i and i+1 with the same i/leg are on the same rung, sites i and i+leg are on the same leg.
// Hopping[0] is the amplitude along the legs and Hopping[1] the amplitude along the rungs.
func ladder(params Params) (*mat.Dense, error) {
	leg := params.Leg
	if leg < 2 {
		return nil, configErrorf("ladder must have leg>1, got %d", leg)
	}
	if len(params.Hopping) != 2 {
		return nil, configErrorf("ladder needs two hoppings, got %v", params.Hopping)
	}
	if params.PeriodicY && leg <= 2 {
		return nil, configErrorf("periodic ladder must have leg>2, got %d", leg)
	}

	sites := params.Sites
	t := mat.NewDense(sites, sites, nil)
	for i := range sites {
		for _, j := range ladderNeighbors(i, sites, leg, params.PeriodicY) {
			h := params.Hopping[0]
			if sameRung(i, j, leg) {
				h = params.Hopping[1]
			}
			setBond(t, i, j, h)
		}
	}
	return t, nil
}

func ladderNeighbors(i, sites, leg int, periodicY bool) []int {
	v := make([]int, 0, 5)
	if k := i + 1; k < sites && sameRung(k, i, leg) {
		v = append(v, k)
	}
	if k := i + leg; k < sites {
		v = append(v, k)
	}
	if leg > 2 && periodicY && i%leg == 0 {
		if k := i + leg - 1; k < sites {
			v = append(v, k)
		}
	}

	if k := i - 1; k >= 0 && sameRung(i, k, leg) {
		v = append(v, k)
	}
	if k := i - leg; k >= 0 {
		v = append(v, k)
	}
	return v
}

func sameRung(i, k, leg int) bool {
	return i/leg == k/leg
}

// feAs builds a two orbital square lattice of Sites/Leg columns and Leg rows.
// Row site+orb*Sites of the result is orbital orb of site.
func feAs(params Params) (*mat.Dense, error) {
	sites, leg := params.Sites, params.Leg
	if leg <= 0 || sites%leg != 0 {
		return nil, configErrorf("leg %d must divide number of sites %d", leg, sites)
	}
	hoppings, err := readFeAsHoppings(params.Filename)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	blocks := make([]*mat.Dense, 0, feAsOrbitals*feAsOrbitals)
	// Orbital pairs aa, ab, ba and bb.
	for orbPair := range feAsOrbitals * feAsOrbitals {
		block := feAsBlock(params, orbPair, hoppings)
		block = reorderLadderX(block, sites, leg)
		if err := symmetric(block, fmt.Sprintf("orbital pair %d", orbPair)); err != nil {
			return nil, errors.Wrap(err, "")
		}
		blocks = append(blocks, block)
	}

	n := feAsOrbitals * sites
	t := mat.NewDense(n, n, nil)
	for orbPair, block := range blocks {
		orb1 := orbPair & 1
		orb2 := orbPair / 2
		for i := range sites {
			for j := range sites {
				r, c := i+orb1*sites, j+orb2*sites
				t.Set(r, c, t.At(r, c)+block.At(i, j))
			}
		}
	}
	if err := symmetric(t, "orbital blocks"); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return t, nil
}

func readFeAsHoppings(filename string) ([]float64, error) {
	in, err := tables.Open(filename)
	if err != nil {
		return nil, missingData(err, "hoppings")
	}
	v, err := in.ReadVector("hoppings")
	if err != nil {
		return nil, missingData(err, "hoppings")
	}
	if len(v) < feAsHoppings {
		return nil, errors.Wrapf(ErrMissingData, "%s: %d hoppings, expected %d", filename, len(v), feAsHoppings)
	}
	return v, nil
}

// feAsBlock returns the hoppings of orbital pair orbPair, with site x+y*lengthx at column x and row y.
// The amplitude along direction dir is hoppings[orbPair+4*dir].
func feAsBlock(params Params, orbPair int, hoppings []float64) *mat.Dense {
	sites, leg := params.Sites, params.Leg
	periodic := params.Periodic
	lengthx := sites / leg
	t := mat.NewDense(sites, sites, nil)
	amplitude := func(dir Direction) float64 {
		return hoppings[orbPair+int(dir)*feAsOrbitals*feAsOrbitals]
	}

	tx := amplitude(DirectionX)
	for j := range leg {
		for i := range lengthx {
			if i+1 < lengthx {
				setBond(t, i+1+j*lengthx, i+j*lengthx, tx)
			}
			if i > 0 {
				setBond(t, i-1+j*lengthx, i+j*lengthx, tx)
			}
		}
		if periodic {
			setBond(t, j*lengthx, lengthx-1+j*lengthx, tx)
		}
	}

	ty := amplitude(DirectionY)
	for i := range lengthx {
		for j := range leg {
			if j > 0 {
				setBond(t, i+(j-1)*lengthx, i+j*lengthx, ty)
			}
			if j+1 < leg {
				setBond(t, i+(j+1)*lengthx, i+j*lengthx, ty)
			}
		}
		if periodic {
			setBond(t, i, i+(leg-1)*lengthx, ty)
		}
	}

	txpy := amplitude(DirectionXPY)
	txmy := amplitude(DirectionXMY)
	for i := range lengthx {
		for j := range leg {
			if j+1 < leg && i+1 < lengthx {
				setBond(t, i+1+(j+1)*lengthx, i+j*lengthx, txpy)
			}
			if i+1 < lengthx && j > 0 {
				setBond(t, i+1+(j-1)*lengthx, i+j*lengthx, txmy)
			}
			if !periodic || i > 0 {
				continue
			}
			// Wrap around the x edge.
			if j+1 < leg {
				setBond(t, (j+1)*lengthx, lengthx-1+j*lengthx, txpy)
			}
			if j > 0 {
				setBond(t, (j-1)*lengthx, lengthx-1+j*lengthx, txmy)
			}
		}
		if !periodic {
			continue
		}
		// Wrap around the y edge.
		if i+1 < lengthx {
			setBond(t, i+1, i+(leg-1)*lengthx, txpy)
			setBond(t, i+1+(leg-1)*lengthx, i, txmy)
		}
		if i > 0 {
			continue
		}
		// Corners.
		setBond(t, 0, lengthx-1+(leg-1)*lengthx, txpy)
		setBond(t, (leg-1)*lengthx, lengthx-1, txmy)
	}
	return t
}

// reorderLadderX renumbers sites from
//
//	0--1--2--...
//	N-N+1-N+2--..
//
// into
//
//	0--2--4--
//	1--3--5--
func reorderLadderX(told *mat.Dense, sites, leg int) *mat.Dense {
	tnew := mat.NewDense(sites, sites, nil)
	for i := range sites {
		i2 := reorderSite(i, sites, leg)
		for j := range sites {
			j2 := reorderSite(j, sites, leg)
			tnew.Set(i2, j2, told.At(i, j))
		}
	}
	return tnew
}

// reorderSite maps x+y*lengthx to y+x*leg.
func reorderSite(i, sites, leg int) int {
	lengthx := sites / leg
	x := i % lengthx
	y := i / lengthx
	return y + x*leg
}
