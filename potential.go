package tightbinding

import (
	"github.com/fumin/tightbinding/tables"
)

// ReadPotential reads the on-site potential potentialV from path.
// If path also has a readable PotentialT, the result is their sum, truncated to the length of PotentialT.
func ReadPotential(path string) ([]float64, error) {
	in, err := tables.Open(path)
	if err != nil {
		return nil, missingData(err, "potentialV")
	}
	// An unreadable PotentialT counts as absent.
	w, err := in.ReadVector("PotentialT")
	if err != nil {
		w = nil
	}
	in.Rewind()

	v, err := in.ReadVector("potentialV")
	if err != nil {
		return nil, missingData(err, "potentialV")
	}
	if len(w) == 0 {
		return v, nil
	}
	if len(v) < len(w) {
		return nil, configErrorf("%s: potentialV has %d numbers, PotentialT %d", path, len(v), len(w))
	}
	v = v[:len(w)]
	for i := range w {
		v[i] += w[i]
	}
	return v, nil
}
