// Package tables reads the labelled text tables that accompany a geometry.
//
// A table file is a sequence of lines. A block starts at a line beginning with
// its label and its values follow on the next lines, separated by white space:
//
//	hoppings
//	16
//	1 0 0 1 ...
//	Connectors
//	2 1
//	-0.5
//	0.5
//	SignChange=-1
//
// A vector block is its length followed by the values. A matrix block is the
// number of rows and columns followed by the values in row-major order.
// Values may also begin on the label line, as in "hoppings 16".
// A line block carries its value on the label line itself.
// Reads advance through the file, so reading the same label twice returns two
// successive blocks.
package tables

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMissingKey is returned when a label is not found after the current position.
	ErrMissingKey = errors.New("tables: missing key")
)

type In struct {
	name  string
	lines []string
	pos   int

	// pending are the unread tokens of the line before pos.
	pending []string
}

func Open(path string) (*In, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()

	in, err := New(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	in.name = path
	return in, nil
}

func New(r io.Reader) (*In, error) {
	in := &In{lines: make([]string, 0)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		in.lines = append(in.lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return in, nil
}

// Rewind moves back to the start of the file.
func (in *In) Rewind() {
	in.pos = 0
	in.pending = nil
}

func (in *In) advance(label string) error {
	for i := in.pos; i < len(in.lines); i++ {
		if strings.HasPrefix(in.lines[i], label) {
			in.pos = i + 1
			// Values may start on the label line itself.
			in.pending = strings.Fields(strings.TrimPrefix(in.lines[i], label))
			return nil
		}
	}
	return errors.Wrap(ErrMissingKey, fmt.Sprintf("%q in %s", label, in.name))
}

func (in *In) token() (string, error) {
	for len(in.pending) == 0 {
		if in.pos >= len(in.lines) {
			return "", errors.Wrap(io.ErrUnexpectedEOF, in.name)
		}
		in.pending = strings.Fields(in.lines[in.pos])
		in.pos++
	}
	tok := in.pending[0]
	in.pending = in.pending[1:]
	return tok, nil
}

func (in *In) int() (int, error) {
	tok, err := in.token()
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return -1, errors.Wrap(err, in.name)
	}
	return v, nil
}

func (in *In) float() (float64, error) {
	tok, err := in.token()
	if err != nil {
		return 0, errors.Wrap(err, "")
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, errors.Wrap(err, in.name)
	}
	return v, nil
}

// ReadVector reads the next vector block labelled label.
func (in *In) ReadVector(label string) ([]float64, error) {
	if err := in.advance(label); err != nil {
		return nil, errors.Wrap(err, "")
	}
	n, err := in.int()
	if err != nil {
		return nil, errors.Wrap(err, label)
	}
	if n < 0 {
		return nil, errors.Errorf("%s: negative length %d", label, n)
	}
	v := make([]float64, n)
	for i := range v {
		v[i], err = in.float()
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%s %d", label, i))
		}
	}
	return v, nil
}

// ReadMatrix reads the next matrix block labelled label.
func (in *In) ReadMatrix(label string) (*mat.Dense, error) {
	if err := in.advance(label); err != nil {
		return nil, errors.Wrap(err, "")
	}
	rows, err := in.int()
	if err != nil {
		return nil, errors.Wrap(err, label)
	}
	cols, err := in.int()
	if err != nil {
		return nil, errors.Wrap(err, label)
	}
	if rows <= 0 || cols <= 0 {
		return nil, errors.Errorf("%s: shape %dx%d", label, rows, cols)
	}
	m := mat.NewDense(rows, cols, nil)
	for i := range rows {
		for j := range cols {
			v, err := in.float()
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("%s (%d,%d)", label, i, j))
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// ReadLine returns the remainder of the next line starting with label.
func (in *In) ReadLine(label string) (string, error) {
	if err := in.advance(label); err != nil {
		return "", errors.Wrap(err, "")
	}
	in.pending = nil
	return strings.TrimSpace(strings.TrimPrefix(in.lines[in.pos-1], label)), nil
}

// ReadInt reads an integer line block such as "SignChange=-1".
func (in *In) ReadInt(label string) (int, error) {
	s, err := in.ReadLine(label)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1, errors.Wrap(err, fmt.Sprintf("%s %s", label, in.name))
	}
	return v, nil
}
