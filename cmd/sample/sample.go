package sample

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

// CMD defines the bayeskit sample command.
var CMD = &cobra.Command{
	Use:   "sample SPEC...",
	Short: "Draw samples from distributions",
	Long: `Draw samples from distributions.  Distributions are given in their
short form: normal:MU,SIGMA, uniform:MIN,MAX, exponential:RATE,
bernoulli:P or discrete:KEY=P,KEY=P,...`,
	Args: cobra.MinimumNArgs(1),
	Run:  run,
}

var flags = struct {
	internal.Flags
	plot string
	n    int
	bins int
}{}

func init() {
	flags.Init(CMD)
	CMD.Flags().IntVarP(&flags.n, "number", "n", 10, "set the number of samples")
	CMD.Flags().StringVarP(&flags.plot, "plot", "p", "",
		"write a histogram of the samples of the univariate distributions to the given file")
	CMD.Flags().IntVarP(&flags.bins, "bins", "b", 20, "set the number of histogram bins")
}

func run(_ *cobra.Command, args []string) {
	c, err := flags.Config()
	chk(err)
	src := dist.NewSource(uint64(c.Seed))
	var us []dist.Univariate
	for _, arg := range args {
		d, err := dist.Parse(arg)
		chk(err)
		if u, ok := d.(dist.Univariate); ok {
			us = append(us, u)
		}
		chk(sample(os.Stdout, d, flags.n, src))
	}
	if flags.plot == "" {
		return
	}
	if len(us) == 0 {
		chk(fmt.Errorf("plot: no univariate distributions"))
	}
	chk(dist.Plot(flags.plot, flags.n, flags.bins, src, us...))
}

func sample(w io.Writer, d interface{}, n int, src rand.Source) error {
	strs := make([]string, n)
	switch t := d.(type) {
	case dist.Univariate:
		for i, x := range dist.SampleN[float64](t, n, src) {
			strs[i] = strconv.FormatFloat(x, 'g', 6, 64)
		}
	case *dist.Discrete:
		copy(strs, dist.SampleN[string](t, n, src))
	default:
		return fmt.Errorf("sample: cannot sample from %T", d)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", name(d), strings.Join(strs, " "))
	return err
}

func name(d interface{}) string {
	if s, ok := d.(fmt.Stringer); ok {
		return strings.NewReplacer("\n", ",", "\t", "=").Replace(s.String())
	}
	return fmt.Sprint(d)
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}
