package train

import (
	"fmt"
	"log"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/nb"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/store"
	"github.com/spf13/cobra"
)

// nbCMD defines the bayeskit train nb command.
var nbCMD = &cobra.Command{
	Use:   "nb [CSV...]",
	Short: "Train a naive Bayes classifier from labeled samples",
	Long: `Train a naive Bayes classifier from labeled samples.  The last
column of each CSV record is the integer class label of the sample.
If no files are given, the samples are read from stdin.`,
	Run: nbRun,
}

func nbRun(_ *cobra.Command, args []string) {
	c, err := flags.Config()
	chk(err)
	internal.UpdateInConfig(&c.NB.Distribution, flags.distribution)
	ds, err := internal.ReadDatasets(args, true)
	chk(err)
	d, err := internal.Merge(ds...)
	chk(err)
	if flags.normalize {
		chk(internal.Normalize(&d))
	}
	clf, err := trainNB(c.NB.Distribution, d)
	chk(err)
	m, err := store.ReadModel(c.Model, true)
	chk(err)
	chk(m.PutClassifier(flags.name, clf, d.Names, flags.normalize))
	chk(m.Write(c.Model))
	log.Printf("train nb: stored classifier %s in %s", flags.name, c.Model)
}

func trainNB(name string, d bayeskit.Dataset) (*nb.NaiveBayes[[]float64], error) {
	var nclasses int
	for _, y := range d.Y {
		if y < 0 {
			return nil, fmt.Errorf("train nb: invalid label %d", y)
		}
		if y >= nclasses {
			nclasses = y + 1
		}
	}
	models := make([]bayeskit.Model[[]float64], nclasses)
	for i := range models {
		m, err := dist.New(name, len(d.X[0]))
		if err != nil {
			return nil, fmt.Errorf("train nb: %v", err)
		}
		models[i] = m
	}
	clf := nb.New(models...)
	if err := clf.Fit(d.X, d.Y, nil); err != nil {
		return nil, fmt.Errorf("train nb: %v", err)
	}
	return clf, nil
}
