package train

import (
	"log"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"github.com/spf13/cobra"
)

// CMD defines the bayeskit train command.
var CMD = &cobra.Command{
	Use:   "train",
	Short: "Train models from CSV files",
}

var flags = struct {
	internal.Flags
	name, distribution string
	normalize          bool
}{}

func init() {
	flags.Init(CMD)
	CMD.PersistentFlags().StringVarP(&flags.name, "name", "n", "default",
		"set the name of the model in the model file")
	CMD.PersistentFlags().StringVarP(&flags.distribution, "distribution", "d", "",
		"set the feature distribution (overwrites the setting in the configuration file)")
	CMD.PersistentFlags().BoolVarP(&flags.normalize, "normalize", "N", false,
		"normalize the features (overwrites the setting in the configuration file)")
	// Subcommands
	CMD.AddCommand(nbCMD, gmmCMD)
}

func chk(err error) {
	if err != nil {
		log.Fatalf("error: %v", err)
	}
}
