package hmm

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/hmm"
	"github.com/spf13/cobra"
)

// CMD defines the bayeskit hmm command.
var CMD = &cobra.Command{
	Use:   "hmm",
	Short: "Score, decode and train hidden Markov models",
	Long: `Score, decode and train hidden Markov models with discrete
emissions.  Models are read from JSON specs.  Sequences are read one
per line from the given files or from stdin.  Lines containing commas
are split at the commas, all other lines into their characters.`,
}

var scoreCMD = &cobra.Command{
	Use:   "score SPEC [SEQUENCES...]",
	Short: "Print the log probability and the state posteriors of sequences",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		m, seqs := setup(args)
		chk(score(os.Stdout, m, seqs))
	},
}

var decodeCMD = &cobra.Command{
	Use:   "decode SPEC [SEQUENCES...]",
	Short: "Print the most probable state paths of sequences",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		m, seqs := setup(args)
		chk(decode(os.Stdout, m, seqs))
	},
}

var fitCMD = &cobra.Command{
	Use:   "fit SPEC [SEQUENCES...]",
	Short: "Train the model with Baum-Welch and write the trained spec",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		m, seqs := setup(args)
		chk(m.Fit(seqs, nil))
		log.Printf("hmm fit: %s: improvement %g", m.Name, m.Improvement())
		chk(hmm.WriteDiscrete(os.Stdout, m))
	},
}

var dotCMD = &cobra.Command{
	Use:   "dot SPEC",
	Short: "Write the model's structure in DOT format",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		m, err := readModel(args[0])
		chk(err)
		chk(m.WriteDOT(os.Stdout))
	},
}

var flags = struct {
	internal.Flags
	iterations             int
	threshold, pseudocount float64
}{}

func init() {
	flags.Init(CMD)
	fitCMD.Flags().IntVarP(&flags.iterations, "iterations", "i", 0,
		"set the maximal number of iterations (overwrites the setting in the configuration file)")
	fitCMD.Flags().Float64VarP(&flags.threshold, "threshold", "t", 0,
		"set the stop threshold (overwrites the setting in the configuration file)")
	fitCMD.Flags().Float64VarP(&flags.pseudocount, "pseudocount", "c", 0,
		"set the transition pseudocount (overwrites the setting in the configuration file)")
	CMD.AddCommand(scoreCMD, decodeCMD, fitCMD, dotCMD)
}

func setup(args []string) (*hmm.Model[string], [][]string) {
	c, err := flags.Config()
	chk(err)
	internal.UpdateInConfig(&c.HMM.MaxIterations, flags.iterations)
	internal.UpdateInConfig(&c.HMM.StopThreshold, flags.threshold)
	internal.UpdateInConfig(&c.HMM.Pseudocount, flags.pseudocount)
	m, err := readModel(args[0])
	chk(err)
	internal.UpdateInConfig(&m.MaxIterations, c.HMM.MaxIterations)
	internal.UpdateInConfig(&m.StopThreshold, c.HMM.StopThreshold)
	internal.UpdateInConfig(&m.Pseudocount, c.HMM.Pseudocount)
	seqs, err := readSequences(args[1:])
	chk(err)
	return m, seqs
}

func score(w io.Writer, m *hmm.Model[string], seqs [][]string) error {
	header := []interface{}{"#", "Sequence", "log P"}
	for _, s := range m.States() {
		header = append(header, s.Name)
	}
	t := internal.NewTable(w, header...)
	for i, seq := range seqs {
		row := []interface{}{i + 1, strings.Join(seq, ""), fmt.Sprintf("%.4f", m.LogProbability(seq))}
		// Mean state posteriors over the positions of the sequence.
		sums := make([]float64, len(m.States()))
		posteriors := m.PredictProba(seq)
		for _, ps := range posteriors {
			for j, p := range ps {
				sums[j] += p / float64(len(posteriors))
			}
		}
		row = append(row, internal.Probabilities(sums)...)
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func decode(w io.Writer, m *hmm.Model[string], seqs [][]string) error {
	for _, seq := range seqs {
		logp, path := m.Viterbi(seq)
		if math.IsInf(logp, -1) {
			if _, err := fmt.Fprintf(w, "%s impossible\n", strings.Join(seq, "")); err != nil {
				return err
			}
			continue
		}
		names := make([]string, len(path))
		for i, s := range path {
			names[i] = s.Name
		}
		if _, err := fmt.Fprintf(w, "%s %.4f %s\n", strings.Join(seq, ""), logp, strings.Join(names, ",")); err != nil {
			return err
		}
	}
	return nil
}

func readModel(path string) (*hmm.Model[string], error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	m, err := hmm.ReadDiscrete(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return m, nil
}

func readSequences(paths []string) ([][]string, error) {
	if len(paths) == 0 {
		return bayeskit.ReadSequences(os.Stdin)
	}
	var ret [][]string
	for _, path := range paths {
		in, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		seqs, err := bayeskit.ReadSequences(in)
		in.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %v", path, err)
		}
		ret = append(ret, seqs...)
	}
	return ret, nil
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}
