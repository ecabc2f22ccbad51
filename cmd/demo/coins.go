package demo

import (
	"fmt"
	"strings"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/hmm"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/nb"
	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/mat"
)

var players = []string{"non-cheater", "smart-cheater", "dumb-cheater"}

// tossers returns the models of the three kinds of players.  Fair
// players toss an unrigged coin, dumb cheaters always toss a rigged coin
// and smart cheaters switch between both coins.
func tossers() ([]*hmm.Model[string], error) {
	rigged := hmm.NewState[string]("rigged", dist.NewDiscrete(map[string]float64{"H": .8, "T": .2}))
	unrigged := hmm.NewState[string]("unrigged", dist.NewDiscrete(map[string]float64{"H": .5, "T": .5}))

	non := hmm.New[string](players[0])
	non.AddTransition(non.Start, unrigged, 1)
	non.AddTransition(unrigged, unrigged, 1)

	smart := hmm.New[string](players[1])
	smart.AddTransition(smart.Start, unrigged, .5)
	smart.AddTransition(smart.Start, rigged, .5)
	smart.AddTransition(rigged, rigged, .5)
	smart.AddTransition(rigged, unrigged, .5)
	smart.AddTransition(unrigged, rigged, .5)
	smart.AddTransition(unrigged, unrigged, .5)

	dumb := hmm.New[string](players[2])
	dumb.AddTransition(dumb.Start, rigged, 1)
	dumb.AddTransition(rigged, rigged, 1)

	ret := []*hmm.Model[string]{non, smart, dumb}
	for _, m := range ret {
		if err := m.Bake(); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func coins(e env) error {
	ms, err := tossers()
	if err != nil {
		return fmt.Errorf("coins: %v", err)
	}
	if e.plot != "" {
		if err := writeFile(e.plot, ms[1].WriteDOT); err != nil {
			return fmt.Errorf("coins: %v", err)
		}
	}
	clf := nb.New[[]string](ms[0], ms[1], ms[2])
	games := [][]string{
		bayeskit.SplitSequence("HHHHHTHTHTTTTHHHTHHTTHHHHHTH"),
		bayeskit.SplitSequence("HHHHHHHTHHHHTTHHHHHHHTTHHHHH"),
		bayeskit.SplitSequence("THTHTHTHTHTHTTHHTHHHHTTHHHTT"),
	}
	t := internal.NewTable(e.w, "Tosses", "P(non)", "P(smart)", "P(dumb)", "Player")
	for i, p := range clf.PredictProba(games) {
		row := table.Row{strings.Join(games[i], "")}
		row = append(row, internal.Probabilities(p)...)
		row = append(row, players[bayeskit.Argmax(p)])
		t.AppendRow(row)
	}
	t.Render()

	// Known games of smart cheaters.
	train := [][]string{
		bayeskit.SplitSequence("HHHHHTHTHTTTTH"),
		bayeskit.SplitSequence("HHTHHTTHHHHHTH"),
	}
	if err := clf.Fit(train, []int{1, 1}, nil); err != nil {
		return fmt.Errorf("coins: %v", err)
	}
	fmt.Fprintf(e.w, "priors after training: %v\n", clf.Priors())
	fmt.Fprintf(e.w, "smart-cheater transitions:\n%.4f\n", mat.Formatted(ms[1].Transitions()))
	return nil
}
