package bn

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/bn"
	"github.com/spf13/cobra"
)

// CMD defines the bayeskit bn command.
var CMD = &cobra.Command{
	Use:   "bn",
	Short: "Query and train Bayesian networks in XMLBIF format",
}

var queryCMD = &cobra.Command{
	Use:   "query XMLBIF [NAME=VALUE...]",
	Short: "Print the beliefs of the network's states given the observations",
	Args:  cobra.MinimumNArgs(1),
	Run:   queryRun,
}

var fitCMD = &cobra.Command{
	Use:   "fit XMLBIF [CSV...]",
	Short: "Learn the network's parameters from fully observed samples",
	Long: `Learn the network's parameters from fully observed samples.  The
first record of each CSV file names the states of its columns.  If no
CSV files are given, the samples are read from stdin.  The trained
network is written to stdout.`,
	Args: cobra.MinimumNArgs(1),
	Run:  fitRun,
}

var dotCMD = &cobra.Command{
	Use:   "dot XMLBIF",
	Short: "Write the network's structure in DOT format",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		nw, err := readNetwork(args[0])
		chk(err)
		chk(nw.WriteDOT(os.Stdout))
	},
}

var flags = struct {
	internal.Flags
	pseudocount float64
}{}

func init() {
	flags.Init(CMD)
	fitCMD.Flags().Float64VarP(&flags.pseudocount, "pseudocount", "c", 0,
		"set the pseudocount (overwrites the setting in the configuration file)")
	CMD.AddCommand(queryCMD, fitCMD, dotCMD)
}

func queryRun(_ *cobra.Command, args []string) {
	_, err := flags.Config()
	chk(err)
	nw, err := readNetwork(args[0])
	chk(err)
	obs, err := observations(args[1:])
	chk(err)
	chk(query(os.Stdout, nw, obs))
}

func query(w io.Writer, nw *bn.Network, obs map[string]string) error {
	beliefs, err := nw.PredictProba(obs)
	if err != nil {
		return err
	}
	t := internal.NewTable(w, "State", "Value", "Probability")
	for i, s := range nw.States() {
		for _, k := range beliefs[i].Keys() {
			t.AppendRow([]interface{}{s.Name, k, fmt.Sprintf("%.4f", beliefs[i].Probability(k))})
		}
		t.AppendSeparator()
	}
	t.Render()
	return nil
}

// observations parses NAME=VALUE pairs.
func observations(args []string) (map[string]string, error) {
	ret := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid observation: %q", arg)
		}
		ret[name] = value
	}
	return ret, nil
}

func fitRun(_ *cobra.Command, args []string) {
	c, err := flags.Config()
	chk(err)
	internal.UpdateInConfig(&c.BN.Pseudocount, flags.pseudocount)
	nw, err := readNetwork(args[0])
	chk(err)
	rows, err := readSamples(nw, args[1:])
	chk(err)
	nw.Pseudocount = c.BN.Pseudocount
	chk(nw.Fit(rows, nil))
	chk(nw.WriteXMLBIF(os.Stdout))
}

func readSamples(nw *bn.Network, paths []string) ([][]string, error) {
	if len(paths) == 0 {
		return samples(nw, os.Stdin)
	}
	var ret [][]string
	for _, path := range paths {
		in, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		rows, err := samples(nw, in)
		in.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %v", path, err)
		}
		ret = append(ret, rows...)
	}
	return ret, nil
}

// samples reads the records of r and orders their columns like the
// states of the network.
func samples(nw *bn.Network, r io.Reader) ([][]string, error) {
	names, rows, err := bayeskit.ReadSymbols(r, true)
	if err != nil {
		return nil, err
	}
	states := nw.States()
	cols := make([]int, len(states))
	for i, s := range states {
		cols[i] = -1
		for j, name := range names {
			if name == s.Name {
				cols[i] = j
			}
		}
		if cols[i] == -1 {
			return nil, fmt.Errorf("missing column for state %s", s.Name)
		}
	}
	ret := make([][]string, len(rows))
	for i, row := range rows {
		ret[i] = make([]string, len(cols))
		for j, col := range cols {
			ret[i][j] = row[col]
		}
	}
	return ret, nil
}

func readNetwork(path string) (*bn.Network, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	nw, err := bn.ReadXMLBIF(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return nw, nil
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}
