package main

import (
	"git.sr.ht/~flobar/bayeskit/cmd/bn"
	"git.sr.ht/~flobar/bayeskit/cmd/demo"
	"git.sr.ht/~flobar/bayeskit/cmd/hmm"
	"git.sr.ht/~flobar/bayeskit/cmd/predict"
	"git.sr.ht/~flobar/bayeskit/cmd/print"
	"git.sr.ht/~flobar/bayeskit/cmd/sample"
	"git.sr.ht/~flobar/bayeskit/cmd/train"
	"git.sr.ht/~flobar/bayeskit/cmd/version"
	"github.com/spf13/cobra"
)

var root = &cobra.Command{
	Use:   "bayeskit",
	Short: "Probabilistic models: distributions, naive Bayes, mixtures, HMMs and Bayesian networks",
}

func init() {
	root.AddCommand(
		bn.CMD,
		demo.CMD,
		hmm.CMD,
		predict.CMD,
		print.CMD,
		sample.CMD,
		train.CMD,
		version.CMD,
	)
}

func main() {
	root.Execute()
}
