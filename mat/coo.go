package mat

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

type vRowCol struct {
	v   float64
	row int
	col int
}

// WriteCOO writes the nonzero entries of a into dir as shape.csv and coo.csv.
// Each coo.csv record is value,row,col, in row-major order.
// The value and row fields are left empty when equal to those of the previous record.
func WriteCOO(dir string, a mat.Matrix) error {
	rows, cols := a.Dims()
	shapePath := filepath.Join(dir, FnameShape)
	if err := os.WriteFile(shapePath, []byte(fmt.Sprintf("%d,%d", rows, cols)), 0644); err != nil {
		return errors.Wrap(err, "")
	}

	cooPath := filepath.Join(dir, FnameCOO)
	f, err := os.Create(cooPath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)

	// prev is the previously written value for compression.
	prev := vRowCol{row: -1, col: -1}
	first := true
Loop:
	for i := range rows {
		for j := range cols {
			v := a.At(i, j)
			if v == 0 {
				continue
			}
			var vStr string
			if first || v != prev.v {
				vStr = format(v)
			}
			var rowStr string
			if i != prev.row {
				rowStr = strconv.Itoa(i)
			}
			colStr := strconv.Itoa(j)

			if err1 := w.Write([]string{vStr, rowStr, colStr}); err1 != nil {
				err = errors.Wrap(err1, "")
				break Loop
			}
			prev = vRowCol{v: v, row: i, col: j}
			first = false
		}
	}

	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// ReadCOO reads a matrix written by WriteCOO.
func ReadCOO(dir string) (*mat.Dense, error) {
	rows, cols, err := readShape(filepath.Join(dir, FnameShape))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	m := mat.NewDense(rows, cols, nil)

	f, err := os.Open(filepath.Join(dir, FnameCOO))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	prev := vRowCol{row: -1}
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		e, err := parseRecord(record, prev)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%s line %d", FnameCOO, line))
		}
		if e.row < 0 || e.row >= rows || e.col < 0 || e.col >= cols {
			return nil, errors.Errorf("%s line %d: (%d,%d) outside %dx%d", FnameCOO, line, e.row, e.col, rows, cols)
		}
		m.Set(e.row, e.col, e.v)
		prev = e
	}
	return m, nil
}

// parseRecord fills the empty value and row fields of record from prev.
func parseRecord(record []string, prev vRowCol) (vRowCol, error) {
	e := prev
	var err error
	if record[0] != "" {
		if e.v, err = strconv.ParseFloat(record[0], 64); err != nil {
			return vRowCol{}, errors.Wrap(err, "")
		}
	}
	if record[1] != "" {
		if e.row, err = strconv.Atoi(record[1]); err != nil {
			return vRowCol{}, errors.Wrap(err, "")
		}
	}
	if e.col, err = strconv.Atoi(record[2]); err != nil {
		return vRowCol{}, errors.Wrap(err, "")
	}
	return e, nil
}

// readShape parses the "rows,cols" line of a shape file.
func readShape(path string) (int, int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return -1, -1, errors.Wrap(err, "")
	}
	var rows, cols int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(b)), "%d,%d", &rows, &cols); err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%s %q", path, b))
	}
	if rows <= 0 || cols <= 0 {
		return -1, -1, errors.Errorf("%s: shape %dx%d", path, rows, cols)
	}
	return rows, cols, nil
}

// IsCOODir reports whether dir holds a matrix written by WriteCOO.
func IsCOODir(dir string) bool {
	for _, name := range []string{FnameShape, FnameCOO} {
		if fi, err := os.Stat(filepath.Join(dir, name)); err != nil || fi.IsDir() {
			return false
		}
	}
	return true
}
