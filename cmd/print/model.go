package print

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/store"
	"github.com/spf13/cobra"
)

// modelCMD runs the bayeskit print model command.
var modelCMD = &cobra.Command{
	Use:   "model [MODEL...]",
	Short: "Print information about models",
	Run:   runModel,
}

func runModel(_ *cobra.Command, args []string) {
	for _, name := range args {
		model, err := store.ReadModel(name, false)
		chk(err)
		if flags.json {
			chk(json.NewEncoder(os.Stdout).Encode(model))
			continue
		}
		chk(printModel(os.Stdout, name, model))
	}
}

func printModel(w io.Writer, path string, m store.Model) error {
	t := internal.NewTable(w, "Model", "Type", "Name", "#", "Weight", "Distribution")
	add := func(typ string, entries map[string]store.Entry) error {
		for _, name := range store.Names(entries) {
			e := entries[name]
			for i, spec := range e.Components {
				d, err := dist.DecodeVector(spec)
				if err != nil {
					return fmt.Errorf("print model %s: %s: %v", path, name, err)
				}
				if i >= len(e.Weights) {
					return fmt.Errorf("print model %s: %s: missing weight", path, name)
				}
				t.AppendRow([]interface{}{
					path, typ, name, i, fmt.Sprintf("%.4f", e.Weights[i]), describe(d),
				})
			}
			t.AppendSeparator()
		}
		return nil
	}
	if err := add("nb", m.Classifiers); err != nil {
		return err
	}
	if err := add("gmm", m.Mixtures); err != nil {
		return err
	}
	t.Render()
	return nil
}

func describe(d interface{}) string {
	if s, ok := d.(fmt.Stringer); ok {
		return strings.ReplaceAll(s.String(), "\n", " ")
	}
	return fmt.Sprintf("%T", d)
}
