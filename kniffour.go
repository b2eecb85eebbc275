package tightbinding

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/tightbinding/tables"
)

// The KTwoNiFFour lattice is a chain whose sites repeat the pattern O(x) O(y) O(y) C.
// Oxygen sites carry two orbitals and connector sites one.

type siteType int

const (
	siteO siteType = iota
	siteC
)

type subtype int

const (
	subtypeX subtype = iota
	subtypeY
)

// siteKind is the classification of a site.
// sub is meaningful for oxygen sites only.
type siteKind struct {
	typ siteType
	sub subtype
}

func classify(site int) siteKind {
	r := (site + 1) % 4
	switch r {
	case 0:
		return siteKind{typ: siteC}
	case 1:
		return siteKind{typ: siteO, sub: subtypeX}
	default:
		return siteKind{typ: siteO, sub: subtypeY}
	}
}

type kTwoNiFFour struct {
	sites    int
	periodic bool

	// signChange multiplies the bonds of inverted sites.
	signChange int
	// coX and coY are 2x1 oxygen-connector hoppings.
	coX, coY *mat.Dense
	// ooXPY and ooXMY are 2x2 oxygen-oxygen hoppings.
	ooXPY, ooXMY *mat.Dense
}

func newKTwoNiFFour(params Params) (*kTwoNiFFour, error) {
	k := &kTwoNiFFour{sites: params.Sites, periodic: params.PeriodicY, signChange: 1}

	in, err := tables.Open(params.Filename)
	if err != nil {
		return nil, missingData(err, "Connectors")
	}
	// SignChange is optional.
	sign, err := in.ReadInt("SignChange=")
	switch {
	case err == nil:
		k.signChange = sign
	default:
		in.Rewind()
	}

	connectors := []struct {
		m    **mat.Dense
		rows int
		cols int
	}{
		{m: &k.coX, rows: 2, cols: 1},
		{m: &k.coY, rows: 2, cols: 1},
		{m: &k.ooXPY, rows: 2, cols: 2},
		{m: &k.ooXMY, rows: 2, cols: 2},
	}
	for i, c := range connectors {
		m, err := in.ReadMatrix("Connectors")
		if err != nil {
			return nil, missingData(err, fmt.Sprintf("Connectors %d", i))
		}
		if r, cols := m.Dims(); r < c.rows || cols < c.cols {
			return nil, configErrorf("Connectors %d is %dx%d, expected %dx%d", i, r, cols, c.rows, c.cols)
		}
		*c.m = m
	}
	return k, nil
}

func (k *kTwoNiFFour) fill() (*mat.Dense, error) {
	rank := k.rank()
	t := mat.NewDense(rank, rank, nil)
	for i := range k.sites {
		type1 := classify(i).typ
		for j := range k.sites {
			if !connected(i, j) {
				continue
			}
			type2 := classify(j).typ
			if type1 == siteC && type2 == siteC {
				continue
			}
			if type1 == siteO && type2 == siteO {
				if err := k.orbitalsForO(t, i, j); err != nil {
					return nil, errors.Wrap(err, "")
				}
				continue
			}
			c, o := i, j
			if type1 != siteC {
				c, o = j, i
			}
			if err := k.orbitalsForCO(t, c, o); err != nil {
				return nil, errors.Wrap(err, "")
			}
		}
	}
	if err := k.addPeriodicConnections(t); err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := symmetric(t, "kniffour"); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return t, nil
}

// addPeriodicConnections bonds site 0 to the connector N-1 and to the oxygens N-2 and N-3.
func (k *kTwoNiFFour) addPeriodicConnections(t *mat.Dense) error {
	if !k.periodic {
		return nil
	}
	n := k.sites
	if n < 3 {
		return configErrorf("periodic kniffour needs 3 sites, got %d", n)
	}
	rank, _ := t.Dims()
	set := func(i, j int, v float64) error {
		if i < 0 || i >= rank || j < 0 || j >= rank {
			return configErrorf("periodic bond (%d,%d) outside rank %d for %d sites", i, j, rank, n)
		}
		t.Set(i, j, v)
		return nil
	}

	// 0 --> N-1 connector-oxygen.
	for orb := range 2 {
		v := k.coOrbitals(DirectionX, orb)
		if err := set(orb*n, n-1, v); err != nil {
			return errors.Wrap(err, "")
		}
		if err := set(n-1, orb*n, v); err != nil {
			return errors.Wrap(err, "")
		}
	}

	// 0 --> N-2 and N-3 oxygen-oxygen.
	for _, b := range []struct {
		site int
		dir  Direction
	}{{site: n - 2, dir: DirectionXPY}, {site: n - 3, dir: DirectionXMY}} {
		for orb1 := range 2 {
			for orb2 := range 2 {
				v := k.ooOrbitals(b.dir, orb1, orb2)
				if err := set(k.index(0, orb1), k.index(b.site, orb2), v); err != nil {
					return errors.Wrap(err, "")
				}
				if err := set(k.index(b.site, orb2), k.index(0, orb1), v); err != nil {
					return errors.Wrap(err, "")
				}
			}
		}
	}
	return nil
}

// rank is twice the number of oxygen sites plus the number of connector sites.
func (k *kTwoNiFFour) rank() int {
	var no, nc int
	for i := range k.sites {
		switch classify(i).typ {
		case siteC:
			nc++
		default:
			no++
		}
	}
	return 2*no + nc
}

// connected reports whether sites i1 and i2 share a bond.
func connected(i1, i2 int) bool {
	if i1 == i2 {
		return false
	}
	type1, type2 := classify(i1), classify(i2)
	if type1.typ == siteC && type2.typ == siteC {
		return false
	}
	if type1.typ == siteO && type2.typ == siteO {
		if type1.sub == type2.sub {
			return false
		}
		x, y := i1, i2
		if type1.sub != subtypeX {
			x, y = i2, i1
		}
		if x > y {
			if x < 4 {
				return false
			}
			return x-2 == y || x-3 == y
		}
		return y-1 == x || (y >= 2 && y-2 == x)
	}

	o, c := i1, i2
	if type1.typ != siteO {
		o, c = i2, i1
	}
	if c < 3 {
		return false
	}
	return c-1 == o || c-2 == o || c-3 == o || c+1 == o
}

// calcDir returns the direction of the bond between the connected sites i1 and i2.
func calcDir(i1, i2 int) (Direction, error) {
	type1, type2 := classify(i1), classify(i2)
	switch {
	case type1.typ == siteC && type2.typ == siteC:
		return -1, configErrorf("connector sites %d and %d are not bonded", i1, i2)
	case type1.typ == siteO && type2.typ == siteO:
		if type1.sub == type2.sub {
			return -1, configErrorf("oxygen sites %d and %d have the same subtype", i1, i2)
		}
		x, y := i1, i2
		if type1.sub != subtypeX {
			x, y = i2, i1
		}
		if x > y {
			switch x - y {
			case 2:
				return DirectionXPY, nil
			case 3:
				return DirectionXMY, nil
			}
			return -1, configErrorf("oxygen sites %d and %d at distance %d", x, y, x-y)
		}
		switch y - x {
		case 1:
			return DirectionXPY, nil
		case 2:
			return DirectionXMY, nil
		}
		return -1, configErrorf("oxygen sites %d and %d at distance %d", x, y, y-x)
	default:
		o := i1
		if type1.typ != siteO {
			o = i2
		}
		if classify(o).sub == subtypeX {
			return DirectionX, nil
		}
		return DirectionY, nil
	}
}

func (k *kTwoNiFFour) orbitalsForO(t *mat.Dense, i1, i2 int) error {
	dir, err := calcDir(i1, i2)
	if err != nil {
		return errors.Wrap(err, "")
	}
	sign := float64(k.sign(i1, i2))
	for orb1 := range 2 {
		for orb2 := range 2 {
			t.Set(k.index(i1, orb1), k.index(i2, orb2), k.ooOrbitals(dir, orb1, orb2)*sign)
		}
	}
	return nil
}

// orbitalsForCO bonds the connector c to both orbitals of the oxygen o.
func (k *kTwoNiFFour) orbitalsForCO(t *mat.Dense, c, o int) error {
	dir, err := calcDir(c, o)
	if err != nil {
		return errors.Wrap(err, "")
	}
	sign := float64(k.sign(c, o))
	for orb := range 2 {
		setBond(t, k.index(o, orb), k.index(c, 0), k.coOrbitals(dir, orb)*sign)
	}
	return nil
}

// index returns the matrix row of orbital orb of site i.
// The first orbitals take rows [0, sites), the second orbitals of oxygen sites follow.
func (k *kTwoNiFFour) index(i, orb int) int {
	if orb == 0 {
		return i
	}
	return k.sites + i - (i+1)/4
}

func (k *kTwoNiFFour) sign(i1, i2 int) int {
	if isInverted(i1) || isInverted(i2) {
		return k.signChange
	}
	return 1
}

func isInverted(i int) bool {
	return (i+4)%8 == 0
}

func (k *kTwoNiFFour) ooOrbitals(dir Direction, orb1, orb2 int) float64 {
	if dir == DirectionXPY {
		return k.ooXPY.At(orb1, orb2)
	}
	return k.ooXMY.At(orb1, orb2)
}

func (k *kTwoNiFFour) coOrbitals(dir Direction, orb int) float64 {
	if dir == DirectionX {
		return k.coX.At(orb, 0)
	}
	return k.coY.At(orb, 0)
}
