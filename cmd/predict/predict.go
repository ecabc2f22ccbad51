package predict

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/store"
	"github.com/spf13/cobra"
)

// CMD defines the bayeskit predict command.
var CMD = &cobra.Command{
	Use:   "predict",
	Short: "Predict classes or mixture components of samples",
}

var nbCMD = &cobra.Command{
	Use:   "nb [CSV...]",
	Short: "Classify samples with a stored naive Bayes classifier",
	Run: func(_ *cobra.Command, args []string) {
		run(args, func(m store.Model) (bayeskit.Predictor[[]float64], store.Entry, error) {
			return m.GetClassifier(flags.name)
		})
	},
}

var gmmCMD = &cobra.Command{
	Use:   "gmm [CSV...]",
	Short: "Assign samples to the components of a stored mixture",
	Run: func(_ *cobra.Command, args []string) {
		run(args, func(m store.Model) (bayeskit.Predictor[[]float64], store.Entry, error) {
			return m.GetMixture(flags.name)
		})
	},
}

var flags = struct {
	internal.Flags
	name    string
	labeled bool
}{}

func init() {
	flags.Init(CMD)
	CMD.PersistentFlags().StringVarP(&flags.name, "name", "n", "default",
		"set the name of the model in the model file")
	CMD.PersistentFlags().BoolVarP(&flags.labeled, "labeled", "L", false,
		"read class labels from the last column and report the accuracy")
	CMD.AddCommand(nbCMD, gmmCMD)
}

func run(args []string, get func(store.Model) (bayeskit.Predictor[[]float64], store.Entry, error)) {
	c, err := flags.Config()
	chk(err)
	m, err := store.ReadModel(c.Model, false)
	chk(err)
	p, e, err := get(m)
	chk(err)
	ds, err := internal.ReadDatasets(args, flags.labeled)
	chk(err)
	if e.Normalize {
		for i := range ds {
			chk(internal.Normalize(&ds[i]))
		}
	}
	var acc accuracy
	chk(bayeskit.Pipe(context.Background(),
		bayeskit.ReadRows(ds...),
		bayeskit.ConnectPredictions(p),
		printRows(os.Stdout, &acc)))
	if flags.labeled {
		log.Printf("predict: accuracy %d/%d = %.4f", acc.correct, acc.total, acc.value())
	}
}

type accuracy struct {
	correct, total int
}

func (acc accuracy) value() float64 {
	if acc.total == 0 {
		return 0
	}
	return float64(acc.correct) / float64(acc.total)
}

func printRows(w io.Writer, acc *accuracy) bayeskit.StreamFunc {
	return func(ctx context.Context, in <-chan bayeskit.Row, _ chan<- bayeskit.Row) error {
		return bayeskit.EachRow(ctx, in, func(r bayeskit.Row) error {
			pred := r.Payload.(bayeskit.Prediction)
			if r.Label >= 0 {
				acc.total++
				if r.Label == pred.Class {
					acc.correct++
				}
			}
			probs := make([]string, len(pred.Proba))
			for i, p := range pred.Proba {
				probs[i] = fmt.Sprintf("%.4f", p)
			}
			_, err := fmt.Fprintf(w, "%s %d %s\n", r, pred.Class, strings.Join(probs, " "))
			return err
		})
	}
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}
