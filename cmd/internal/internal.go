package internal

import (
	"fmt"
	"io"
	"os"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// bayeskit version
const Version = "v0.1.0"

// Flags is used to define the standard command-line parameters for
// bayeskit sub commands.
type Flags struct {
	Params string // Path to the configuration file
	Model  string // Path to the model file
	Seed   int    // Random seed
	Log    bool   // Enable library logging
}

// Init initializes the standard commandline arguments for the given
// command and its subcommands.
func (flags *Flags) Init(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&flags.Params, "parameters", "P", "",
		"set path to configuration file (json, toml or inline json)")
	cmd.PersistentFlags().StringVarP(&flags.Model, "model", "M", "",
		"set the model path (overwrites the setting in the configuration file)")
	cmd.PersistentFlags().IntVarP(&flags.Seed, "seed", "s", 0,
		"set the random seed (overwrites the setting in the configuration file)")
	cmd.PersistentFlags().BoolVarP(&flags.Log, "log", "l", false,
		"enable logging (overwrites the setting in the configuration file)")
}

// Config reads the configuration and overwrites its settings with the
// given command line flags.  Logging is enabled if configured.
func (flags *Flags) Config() (*Config, error) {
	c, err := ReadConfig(flags.Params)
	if err != nil {
		return nil, err
	}
	UpdateInConfig(&c.Model, flags.Model)
	UpdateInConfig(&c.Seed, flags.Seed)
	UpdateInConfig(&c.Log, flags.Log)
	c.Defaults()
	bayeskit.SetLog(c.Log)
	return c, nil
}

// ReadDatasets reads the CSV files with the given paths.  If no paths
// are given, a single dataset is read from stdin.
func ReadDatasets(paths []string, labeled bool) ([]bayeskit.Dataset, error) {
	if len(paths) == 0 {
		d, err := bayeskit.ReadCSV(os.Stdin, labeled)
		if err != nil {
			return nil, fmt.Errorf("read datasets: stdin: %v", err)
		}
		return []bayeskit.Dataset{d}, nil
	}
	ret := make([]bayeskit.Dataset, 0, len(paths))
	for _, path := range paths {
		d, err := readDataset(path, labeled)
		if err != nil {
			return nil, fmt.Errorf("read datasets: %v", err)
		}
		ret = append(ret, d)
	}
	return ret, nil
}

func readDataset(path string, labeled bool) (bayeskit.Dataset, error) {
	in, err := os.Open(path)
	if err != nil {
		return bayeskit.Dataset{}, err
	}
	defer in.Close()
	d, err := bayeskit.ReadCSV(in, labeled)
	if err != nil {
		return bayeskit.Dataset{}, fmt.Errorf("%s: %v", path, err)
	}
	return d, nil
}

// Merge concatenates the given datasets.  The column names are taken
// from the first dataset that has names.
func Merge(ds ...bayeskit.Dataset) (bayeskit.Dataset, error) {
	var ret bayeskit.Dataset
	for _, d := range ds {
		if len(d.X) == 0 {
			continue
		}
		if len(ret.X) > 0 && len(ret.X[0]) != len(d.X[0]) {
			return bayeskit.Dataset{}, fmt.Errorf("merge: expected %d columns; got %d",
				len(ret.X[0]), len(d.X[0]))
		}
		if ret.Names == nil {
			ret.Names = d.Names
		}
		ret.X = append(ret.X, d.X...)
		ret.Y = append(ret.Y, d.Y...)
	}
	if len(ret.X) == 0 {
		return bayeskit.Dataset{}, fmt.Errorf("merge: %v", bayeskit.ErrNoData)
	}
	return ret, nil
}

// Normalize applies mean normalization to the samples of the dataset.
func Normalize(d *bayeskit.Dataset) error {
	if len(d.X) == 0 {
		return nil
	}
	m := d.Matrix()
	if err := bayeskit.Normalize(m); err != nil {
		return err
	}
	for i := range d.X {
		d.X[i] = mat.Row(nil, i, m)
	}
	return nil
}

// NewTable returns a new table writer that renders to w.
func NewTable(w io.Writer, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	if len(header) > 0 {
		t.AppendHeader(table.Row(header))
	}
	return t
}

// Probabilities returns the given probabilities as table cells.
func Probabilities(ps []float64) table.Row {
	ret := make(table.Row, len(ps))
	for i, p := range ps {
		ret[i] = fmt.Sprintf("%.4f", p)
	}
	return ret
}
