// Package mat holds the matrix plumbing shared by the geometry builders:
// dense literals, symmetry checks, the text dump, the COO hand-off format and
// an sqlite backed matrix store.
package mat

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	FnameShape = "shape.csv"
	FnameCOO   = "coo.csv"

	// Tolerance of the symmetry checks.
	SymmetryTol = 1e-6
)

// M creates a dense matrix from rows of equal length.
func M(dense [][]float64) *mat.Dense {
	m := mat.NewDense(len(dense), len(dense[0]), nil)
	for i, row := range dense {
		if len(row) != len(dense[0]) {
			panic(fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), len(dense[0])))
		}
		m.SetRow(i, row)
	}
	return m
}

// Asymmetry returns the first (i, j) with |a(i,j)-a(j,i)| > tol.
// ok is true if a is square and symmetric.
func Asymmetry(a mat.Matrix, tol float64) (i, j int, ok bool) {
	rows, cols := a.Dims()
	if rows != cols {
		return -1, -1, false
	}
	for i := range rows {
		for j := i + 1; j < cols; j++ {
			if math.Abs(a.At(i, j)-a.At(j, i)) > tol {
				return i, j, false
			}
		}
	}
	return -1, -1, true
}

// Fprint writes a as its shape line followed by one line per row.
func Fprint(w io.Writer, a mat.Matrix) error {
	bw := bufio.NewWriter(w)
	rows, cols := a.Dims()
	if _, err := fmt.Fprintf(bw, "%d %d\n", rows, cols); err != nil {
		return errors.Wrap(err, "")
	}
	cs := make([]string, cols)
	for i := range rows {
		for j := range cols {
			cs[j] = format(a.At(i, j))
		}
		if _, err := fmt.Fprintln(bw, strings.Join(cs, " ")); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// String formats a with aligned columns.
func String(a mat.Matrix) string {
	rows, cols := a.Dims()
	lines := make([]string, 0, rows)
	for i := range rows {
		cs := make([]string, 0, cols)
		for j := range cols {
			v := a.At(i, j)
			s := format(v)
			// Add a space before non-negative numbers to align with other negative numbers in the same column.
			if v >= 0 {
				s = " " + s
			}
			cs = append(cs, s)
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

func format(v float64) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func FormatNumpy(v complex128) string {
	switch {
	case imag(v) == 0:
		return format(real(v))
	default:
		s := strconv.FormatComplex(v, 'g', -1, 128)
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		s = strings.ReplaceAll(s, "i", "j")
		return s
	}
}
