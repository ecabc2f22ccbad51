package train

import (
	"fmt"
	"log"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/gmm"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/store"
	"github.com/spf13/cobra"
)

// gmmCMD defines the bayeskit train gmm command.
var gmmCMD = &cobra.Command{
	Use:   "gmm [CSV...]",
	Short: "Fit a general mixture model to unlabeled samples",
	Run:   gmmRun,
}

var gmmFlags = struct {
	components, iterations int
	threshold              float64
	labeled                bool
}{}

func init() {
	gmmCMD.Flags().IntVarP(&gmmFlags.components, "components", "k", 0,
		"set the number of components (overwrites the setting in the configuration file)")
	gmmCMD.Flags().IntVarP(&gmmFlags.iterations, "iterations", "i", 0,
		"set the maximal number of EM iterations (overwrites the setting in the configuration file)")
	gmmCMD.Flags().Float64VarP(&gmmFlags.threshold, "threshold", "t", 0,
		"set the EM stop threshold (overwrites the setting in the configuration file)")
	gmmCMD.Flags().BoolVarP(&gmmFlags.labeled, "labeled", "L", false,
		"ignore the class labels in the last column")
}

func gmmRun(_ *cobra.Command, args []string) {
	c, err := flags.Config()
	chk(err)
	internal.UpdateInConfig(&c.GMM.Distribution, flags.distribution)
	internal.UpdateInConfig(&c.GMM.Normalize, flags.normalize)
	internal.UpdateInConfig(&c.GMM.Components, gmmFlags.components)
	internal.UpdateInConfig(&c.GMM.MaxIterations, gmmFlags.iterations)
	internal.UpdateInConfig(&c.GMM.StopThreshold, gmmFlags.threshold)
	ds, err := internal.ReadDatasets(args, gmmFlags.labeled)
	chk(err)
	d, err := internal.Merge(ds...)
	chk(err)
	if c.GMM.Normalize {
		chk(internal.Normalize(&d))
	}
	mix, err := trainGMM(c, d)
	chk(err)
	m, err := store.ReadModel(c.Model, true)
	chk(err)
	chk(m.PutMixture(flags.name, mix, d.Names, c.GMM.Normalize))
	chk(m.Write(c.Model))
	log.Printf("train gmm: stored mixture %s in %s (improvement %g)",
		flags.name, c.Model, mix.Improvement())
}

func trainGMM(c *internal.Config, d bayeskit.Dataset) (*gmm.Mixture[[]float64], error) {
	dim := len(d.X[0])
	if _, err := dist.New(c.GMM.Distribution, dim); err != nil {
		return nil, fmt.Errorf("train gmm: %v", err)
	}
	mix, err := gmm.FromSamples(c.GMM.Components, d.X, func() bayeskit.Model[[]float64] {
		m, _ := dist.New(c.GMM.Distribution, dim)
		return m
	}, gmm.Options{
		MaxIterations: c.GMM.MaxIterations,
		StopThreshold: c.GMM.StopThreshold,
		Seed:          uint64(c.Seed),
	})
	if err != nil {
		return nil, fmt.Errorf("train gmm: %v", err)
	}
	return mix, nil
}
