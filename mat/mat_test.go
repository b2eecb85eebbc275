package mat

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAsymmetry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m  *mat.Dense
		ij [2]int
		ok bool
	}{
		{
			m: M([][]float64{
				{0, 1, 2},
				{1, 5, 3},
				{2, 3, 0},
			}),
			ij: [2]int{-1, -1},
			ok: true,
		},
		{
			m: M([][]float64{
				{0, 1, 2},
				{1, 5, 3},
				{2, 3.1, 0},
			}),
			ij: [2]int{1, 2},
			ok: false,
		},
		{
			m: M([][]float64{
				{0, 1, 2},
				{1, 5, 3},
			}),
			ij: [2]int{-1, -1},
			ok: false,
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", mat.Formatted(test.m)), func(t *testing.T) {
			t.Parallel()
			i, j, ok := Asymmetry(test.m, SymmetryTol)
			if ok != test.ok || [2]int{i, j} != test.ij {
				t.Fatalf("%d %d %t, expected %v %t", i, j, ok, test.ij, test.ok)
			}
		})
	}
}

func TestFprint(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m *mat.Dense
		s string
	}{
		{
			m: M([][]float64{
				{0, -1},
				{-1, 0.5},
			}),
			s: "2 2\n0 -1\n-1 0.5\n",
		},
		{
			m: M([][]float64{{3}}),
			s: "1 1\n3\n",
		},
	}
	for _, test := range tests {
		t.Run(test.s, func(t *testing.T) {
			t.Parallel()
			var b bytes.Buffer
			if err := Fprint(&b, test.m); err != nil {
				t.Fatalf("%+v", err)
			}
			if b.String() != test.s {
				t.Fatalf("%q, expected %q", b.String(), test.s)
			}
		})
	}
}

func TestFormatNumpy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v complex128
		s string
	}{
		{v: 0, s: "0"},
		{v: -2.5, s: "-2.5"},
		{v: 1 - 2i, s: "1-2j"},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", test.v), func(t *testing.T) {
			t.Parallel()
			if s := FormatNumpy(test.v); s != test.s {
				t.Fatalf("%s, expected %s", s, test.s)
			}
		})
	}
}

func TestCOO(t *testing.T) {
	t.Parallel()
	tests := []struct {
		m   *mat.Dense
		coo string
	}{
		{
			m: M([][]float64{
				{0, 1, 1, 0},
				{1, 0, 0, 1},
				{1, 0, 0, 2},
				{0, 1, 2, 0},
			}),
			coo: "1,0,1\n,,2\n,1,0\n,,3\n,2,0\n2,,3\n1,3,1\n2,,2\n",
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", mat.Formatted(test.m)), func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			if err := WriteCOO(dir, test.m); err != nil {
				t.Fatalf("%+v", err)
			}
			b, err := readFile(dir, FnameCOO)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if b != test.coo {
				t.Fatalf("%q, expected %q", b, test.coo)
			}

			m, err := ReadCOO(dir)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !mat.Equal(m, test.m) {
				t.Fatalf("%v, expected %v", mat.Formatted(m), mat.Formatted(test.m))
			}
		})
	}
}

func TestReadCOOErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		shape string
		coo   string
	}{
		{shape: "2,2", coo: ",0,1\n,,x\n"},
		{shape: "2,2", coo: "1,,1\n"},
		{shape: "2,2", coo: "1,0,2\n"},
		{shape: "2,2", coo: "1,0\n"},
		{shape: "2", coo: "1,0,1\n"},
		{shape: "0,2", coo: ""},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%s %q", test.shape, test.coo), func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FnameShape), []byte(test.shape), 0644); err != nil {
				t.Fatalf("%+v", err)
			}
			if err := os.WriteFile(filepath.Join(dir, FnameCOO), []byte(test.coo), 0644); err != nil {
				t.Fatalf("%+v", err)
			}
			if !IsCOODir(dir) {
				t.Fatalf("%s is not a coo dir", dir)
			}
			if m, err := ReadCOO(dir); err == nil {
				t.Fatalf("%v", mat.Formatted(m))
			}
		})
	}

	if IsCOODir(t.TempDir()) {
		t.Fatalf("empty dir is a coo dir")
	}
}
