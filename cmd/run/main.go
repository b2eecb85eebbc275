// Command run builds a hopping matrix and dumps it to stdout.
//
//	run -n 8 -g ladder,2,0 -p potential.txt --bath 0.5,0.25 --coo out --db tb.sqlite
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	gomat "gonum.org/v1/gonum/mat"

	"github.com/fumin/tightbinding"
	"github.com/fumin/tightbinding/mat"
	"github.com/fumin/tightbinding/tables"
)

type options struct {
	sites     int
	geometry  string
	potential string
	config    string
	bath      []float64
	cooDir    string
	dbPath    string

	fourier    string
	fourierLeg int

	verbose bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "run",
		Short:         "Build the hopping matrix of a lattice",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.sites, "sites", "n", 0, "number of sites")
	flags.StringVarP(&opts.geometry, "geometry", "g", "", "chain | ladder,leg,isPeriodic | feas,leg,file | kniffour,leg,file")
	flags.StringVarP(&opts.potential, "potential", "p", "", "file with potentialV and optionally PotentialT")
	flags.StringVarP(&opts.config, "config", "c", "", "YAML parameter file, overridden by -n and -g")
	flags.Float64SliceVar(&opts.bath, "bath", nil, "bath hoppings attached to every site")
	flags.StringVar(&opts.cooDir, "coo", "", "directory to write shape.csv and coo.csv into")
	flags.StringVar(&opts.dbPath, "db", "", "sqlite database to save the matrix into")
	flags.StringVar(&opts.fourier, "fourier", "", "COO directory, or file with a Matrix block, to Fourier transform")
	flags.IntVar(&opts.fourierLeg, "leg", 1, "leg of the Fourier transform")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	return cmd
}

func run(ctx context.Context, w io.Writer, opts options) error {
	logger := loggerFromContext(ctx)

	params := tightbinding.DefaultParams()
	if opts.config != "" {
		var err error
		params, err = tightbinding.LoadParams(opts.config)
		if err != nil {
			return errors.Wrap(err, "")
		}
	}
	if opts.geometry != "" {
		if err := tightbinding.ParseGeometry(&params, opts.geometry); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if opts.sites > 0 {
		params.Sites = opts.sites
	}

	g, err := tightbinding.New(params)
	if err != nil {
		return errors.Wrap(err, "")
	}
	logger.Debug("built", "geometry", g.Name(), "sites", params.Sites, "rank", g.Rows())

	if opts.potential != "" {
		p, err := tightbinding.ReadPotential(opts.potential)
		if err != nil {
			return errors.Wrap(err, "")
		}
		p = fitPotential(p, params)
		if params.Type == tightbinding.KTwoNiFFour {
			logger.Warn("potential ignored", "geometry", g.Name())
		} else if err := g.AddPotential(p); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if len(opts.bath) > 0 {
		if err := g.Bathify(opts.bath); err != nil {
			return errors.Wrap(err, "")
		}
		logger.Debug("bathified", "bath", opts.bath, "rank", g.Rows())
	}

	if err := tightbinding.Write(w, g.Matrix(), g.Name()); err != nil {
		return errors.Wrap(err, "")
	}

	if opts.cooDir != "" {
		if err := os.MkdirAll(opts.cooDir, os.ModePerm); err != nil {
			return errors.Wrap(err, "")
		}
		if err := mat.WriteCOO(opts.cooDir, g.Matrix()); err != nil {
			return errors.Wrap(err, "")
		}
		logger.Info("wrote coo", "dir", opts.cooDir)
	}
	if opts.dbPath != "" {
		if err := save(ctx, opts.dbPath, g); err != nil {
			return errors.Wrap(err, "")
		}
		logger.Info("saved", "db", opts.dbPath, "name", g.Name())
	}
	if opts.fourier != "" {
		if err := fourier(w, g, opts.fourier, opts.fourierLeg); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

// fitPotential drops the spin down half of a potential of length 4n,
// and for ladders also the second half of a potential of length 2n.
func fitPotential(p []float64, params tightbinding.Params) []float64 {
	n := params.Sites
	if len(p) == 4*n {
		p = p[:2*n]
	}
	if len(p) == 2*n && params.Type == tightbinding.Ladder {
		p = p[:n]
	}
	return p
}

func save(ctx context.Context, dbPath string, g *tightbinding.Geometry) error {
	store, err := mat.NewDiskStore(dbPath)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer store.Close()
	if err := store.Save(ctx, g.Name(), g.Matrix()); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// readSource reads the matrix to Fourier transform from a COO directory
// or from the Matrix block of a table file.
func readSource(path string) (*gomat.Dense, error) {
	if mat.IsCOODir(path) {
		src, err := mat.ReadCOO(path)
		if err != nil {
			return nil, errors.Wrap(err, path)
		}
		return src, nil
	}
	in, err := tables.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	src, err := in.ReadMatrix("Matrix")
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return src, nil
}

func fourier(w io.Writer, g *tightbinding.Geometry, path string, leg int) error {
	src, err := readSource(path)
	if err != nil {
		return errors.Wrap(err, "")
	}
	rows, _ := src.Dims()
	dst := make([]complex128, rows)
	if err := g.FourierTransform(dst, src, leg); err != nil {
		return errors.Wrap(err, "")
	}
	for k, v := range dst {
		if _, err := fmt.Fprintf(w, "%d %s\n", k, mat.FormatNumpy(v)); err != nil {
			return errors.Wrap(err, "")
		}
	}
	return nil
}

func main() {
	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return newRootCmd().ExecuteContext(ctx)
}
