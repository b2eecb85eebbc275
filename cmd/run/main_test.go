package main

import (
	"bytes"
	"context"
	"math/cmplx"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/fumin/tightbinding"
	"github.com/fumin/tightbinding/mat"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("%+v", err)
	}
	return path
}

func TestRun(t *testing.T) {
	t.Parallel()
	potential := writeFile(t, "potential.txt", "potentialV\n8\n1 2 3 4 5 6 7 8\n")
	config := writeFile(t, "chain.yaml", "sites: 2\nperiodic: false\nhopping: [-1]\n")
	tests := []struct {
		args   []string
		stdout string
		err    error
	}{
		{
			args:   []string{"-n", "3"},
			stdout: "3 3\n0 1 0\n1 0 1\n0 1 0\nGeometryName=chain\n",
		},
		{
			// 4n numbers are cut to 2n, then to n for a ladder.
			args:   []string{"-n", "2", "-g", "ladder,2,0", "-p", potential},
			stdout: "2 2\n1 1\n1 2\nGeometryName=ladder\n",
		},
		{
			args: []string{"-n", "1", "--bath", "0.5,0.25"},
			err:  tightbinding.ErrConfiguration,
		},
		{
			args:   []string{"-c", config, "--bath", "0.5"},
			stdout: "4 4\n0 -1 0.5 0\n-1 0 0 0.5\n0.5 0 0 0\n0 0.5 0 0\nGeometryName=chain\n",
		},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args, " "), func(t *testing.T) {
			t.Parallel()
			stdout, err := execute(t, test.args...)
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Fatalf("%+v, expected %v", err, test.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if stdout != test.stdout {
				t.Fatalf("%q, expected %q", stdout, test.stdout)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	tests := [][]string{
		{},
		{"-n", "4", "-g", "honeycomb,2,0"},
		{"-n", "4", "-g", "ladder,2,1"},
		{"-n", "4", "-p", writeFile(t, "short.txt", "potentialV\n2\n1 2\n")},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); !errors.Is(err, tightbinding.ErrConfiguration) {
			t.Fatalf("%v: %+v", args, err)
		}
	}
}

func TestRunOutputs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cooDir := filepath.Join(dir, "coo")
	dbPath := filepath.Join(dir, "tb.sqlite")
	if _, err := execute(t, "-n", "4", "-g", "ladder,2,0", "--coo", cooDir, "--db", dbPath); err != nil {
		t.Fatalf("%+v", err)
	}

	g, err := tightbinding.New(tightbinding.Params{Type: tightbinding.Ladder, Sites: 4, Leg: 2, Hopping: []float64{1, 1}})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	coo, err := mat.ReadCOO(cooDir)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if s, expected := mat.String(coo), mat.String(g.Matrix()); s != expected {
		t.Fatalf("%s, expected %s", s, expected)
	}

	store, err := mat.NewDiskStore(dbPath)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	defer store.Close()
	names, err := store.Names(context.Background())
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !slices.Equal(names, []string{"ladder"}) {
		t.Fatalf("%#v", names)
	}
	saved, err := store.Load(context.Background(), "ladder")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if s, expected := mat.String(saved), mat.String(g.Matrix()); s != expected {
		t.Fatalf("%s, expected %s", s, expected)
	}
}

func TestRunFourier(t *testing.T) {
	t.Parallel()
	feas := writeFile(t, "feas.txt", "hoppings\n16\n1 0 0 1\n1 0 0 1\n0 0 0 0\n0 0 0 0\n")
	src := writeFile(t, "src.txt", "Matrix\n4 4\n1 0 0 0\n0 1 0 0\n0 0 1 0\n0 0 0 1\n")
	cooDir := t.TempDir()
	if err := mat.WriteCOO(cooDir, mat.M([][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	})); err != nil {
		t.Fatalf("%+v", err)
	}

	for _, source := range []string{src, cooDir} {
		stdout, err := execute(t, "-n", "4", "-g", "feas,2,"+feas, "--fourier", source, "--leg", "2")
		if err != nil {
			t.Fatalf("%s: %+v", source, err)
		}
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		for k, line := range lines[len(lines)-4:] {
			fields := strings.Fields(line)
			if len(fields) != 2 || fields[0] != strconv.Itoa(k) {
				t.Fatalf("%s: %q", source, line)
			}
			v, err := strconv.ParseComplex(strings.ReplaceAll(fields[1], "j", "i"), 128)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if cmplx.Abs(v-4) > 1e-9 {
				t.Fatalf("%s %d: %v, expected 4", source, k, v)
			}
		}
	}
}

func TestFitPotential(t *testing.T) {
	t.Parallel()
	p := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	tests := []struct {
		typ      tightbinding.Type
		sites    int
		expected []float64
	}{
		{typ: tightbinding.Chain, sites: 2, expected: []float64{1, 2, 3, 4}},
		{typ: tightbinding.Ladder, sites: 2, expected: []float64{1, 2}},
		{typ: tightbinding.Ladder, sites: 4, expected: []float64{1, 2, 3, 4}},
		{typ: tightbinding.FeAs, sites: 4, expected: p},
		{typ: tightbinding.Chain, sites: 3, expected: p},
	}
	for _, test := range tests {
		params := tightbinding.Params{Type: test.typ, Sites: test.sites}
		if got := fitPotential(p, params); !slices.Equal(got, test.expected) {
			t.Fatalf("%s %d: %v, expected %v", test.typ, test.sites, got, test.expected)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	t.Parallel()
	if loggerFromContext(context.Background()) != log.Default() {
		t.Fatalf("expected default logger")
	}
	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	loggerFromContext(withLogger(context.Background(), l)).Debug("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("%q", buf.String())
	}
}
