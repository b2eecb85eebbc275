package tightbinding

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Type selects the lattice topology.
type Type int

const (
	Chain Type = iota
	Ladder
	FeAs
	KTwoNiFFour
)

var typeNames = [...]string{
	Chain:       "chain",
	Ladder:      "ladder",
	FeAs:        "feas",
	KTwoNiFFour: "kniffour",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return -1, configErrorf("unknown geometry %q", s)
}

func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return errors.Wrap(err, "")
	}
	typ, err := ParseType(s)
	if err != nil {
		return errors.Wrap(err, "")
	}
	*t = typ
	return nil
}

func (t Type) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	typ, err := ParseType(string(text))
	if err != nil {
		return errors.Wrap(err, "")
	}
	*t = typ
	return nil
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Direction is the orientation of a bond on the square plane.
type Direction int

const (
	DirectionX Direction = iota
	DirectionY
	DirectionXPY
	DirectionXMY
)

// Params describes the lattice to build.
// Builders read it once and never modify it.
type Params struct {
	Type  Type `yaml:"type" toml:"type"`
	Sites int  `yaml:"sites" toml:"sites"`
	// Leg is the transverse width of Ladder, FeAs and KTwoNiFFour lattices.
	Leg int `yaml:"leg" toml:"leg"`
	// Periodic closes the chain direction of Chain and FeAs lattices.
	Periodic bool `yaml:"periodic" toml:"periodic"`
	// PeriodicY closes the transverse direction of Ladder lattices and
	// turns on the wraparound bonds of KTwoNiFFour.
	PeriodicY bool `yaml:"periodicY" toml:"periodicY"`
	// Hopping holds one amplitude for Chain, and the amplitudes along and across the legs for Ladder.
	Hopping []float64 `yaml:"hopping" toml:"hopping"`
	// Filename is the hopping table file of FeAs and KTwoNiFFour.
	Filename string `yaml:"filename" toml:"filename"`
}

func DefaultParams() Params {
	return Params{Type: Chain, Hopping: []float64{1}}
}

// LoadParams reads parameters from path on top of DefaultParams.
// Files ending in .toml are TOML, anything else is YAML.
func LoadParams(path string) (Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Params{}, errors.Wrap(err, "")
	}
	params := DefaultParams()
	switch filepath.Ext(path) {
	case ".toml":
		err = toml.Unmarshal(b, &params)
	default:
		err = yaml.Unmarshal(b, &params)
	}
	if err != nil {
		return Params{}, errors.Wrap(err, path)
	}
	return params, nil
}

// ParseGeometry sets the geometry of params from a selector of the form
//
//	chain
//	ladder,leg,isPeriodic
//	feas,leg,filename
//	kniffour,leg,filename
//
// A ladder gets unit hoppings. A nonzero kniffour leg turns on PeriodicY.
func ParseGeometry(params *Params, selector string) error {
	vstr := strings.Split(selector, ",")
	name := vstr[0]
	if name == "chain" {
		if len(vstr) != 1 {
			return configErrorf("chain takes no further arguments: %q", selector)
		}
		params.Type = Chain
		return nil
	}
	if len(vstr) != 3 {
		return configErrorf("expected %s,leg,{isPeriodic | filename}: %q", name, selector)
	}
	typ, err := ParseType(name)
	if err != nil {
		return errors.Wrap(err, "")
	}
	leg, err := strconv.Atoi(vstr[1])
	if err != nil {
		return configErrorf("leg %q: %v", vstr[1], err)
	}

	params.Type = typ
	params.Leg = leg
	switch typ {
	case Ladder:
		periodic, err := strconv.Atoi(vstr[2])
		if err != nil {
			return configErrorf("isPeriodic %q: %v", vstr[2], err)
		}
		params.Hopping = []float64{1, 1}
		params.PeriodicY = periodic > 0
	case KTwoNiFFour:
		params.Filename = vstr[2]
		params.PeriodicY = leg != 0
	default:
		params.Filename = vstr[2]
	}
	return nil
}
