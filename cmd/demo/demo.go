package demo

import (
	"io"
	"log"
	"os"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"github.com/spf13/cobra"
)

// CMD defines the bayeskit demo command.
var CMD = &cobra.Command{
	Use:   "demo",
	Short: "Run small example scenarios",
}

var flags = struct {
	internal.Flags
	plot string
}{}

func init() {
	flags.Init(CMD)
	CMD.PersistentFlags().StringVarP(&flags.plot, "plot", "p", "",
		"write a plot of the demo's model to the given file (histogram or DOT graph)")
	CMD.AddCommand(
		scenario("heights", "Classify persons by their height and weight", heights),
		scenario("people", "Classify persons by height, weight and foot size", people),
		scenario("coins", "Identify cheating coin tossers with hidden Markov models", coins),
		scenario("montyhall", "Solve the Monty Hall problem with a Bayesian network", montyHall),
		scenario("mixture", "Cluster samples with a general mixture model", mixture),
		scenario("bernoulli", "Sample from a Bernoulli distribution", bernoulli),
	)
}

// env holds the settings of a single demo run.
type env struct {
	w    io.Writer
	seed uint64
	plot string
}

func scenario(use, short string, run func(env) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			c, err := flags.Config()
			chk(err)
			chk(run(env{w: os.Stdout, seed: uint64(c.Seed), plot: flags.plot}))
		},
	}
}

// writeFile writes to the file with the given path.
func writeFile(path string, write func(io.Writer) error) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if exx := out.Close(); exx != nil && err == nil {
			err = exx
		}
	}()
	return write(out)
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}
