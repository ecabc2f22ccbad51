package demo

import (
	"fmt"
	"sort"
	"strings"

	"git.sr.ht/~flobar/bayeskit/cmd/internal"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/bn"
	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/dist"
)

// montyNetwork returns the network of the Monty Hall problem.  Monty
// opens a door that is neither the guest's choice nor the prize.
func montyNetwork() (*bn.Network, error) {
	doors := []string{"A", "B", "C"}
	guest := dist.UniformDiscrete(doors...)
	prize := dist.UniformDiscrete(doors...)
	var rows []bn.Row
	for _, g := range doors {
		for _, p := range doors {
			for _, m := range doors {
				var prob float64
				switch {
				case m == g || m == p:
				case g == p:
					prob = .5
				default:
					prob = 1
				}
				rows = append(rows, bn.R(prob, g, p, m))
			}
		}
	}
	monty, err := bn.NewConditionalTable(rows, guest, prize)
	if err != nil {
		return nil, err
	}
	s1 := bn.NewState("guest", guest)
	s2 := bn.NewState("prize", prize)
	s3 := bn.NewState("monty", monty)
	nw := bn.New("monty-hall")
	nw.AddStates(s1, s2, s3)
	nw.AddTransition(s1, s3)
	nw.AddTransition(s2, s3)
	if err := nw.Bake(); err != nil {
		return nil, err
	}
	return nw, nil
}

func montyHall(e env) error {
	nw, err := montyNetwork()
	if err != nil {
		return fmt.Errorf("montyhall: %v", err)
	}
	if e.plot != "" {
		if err := writeFile(e.plot, nw.WriteDOT); err != nil {
			return fmt.Errorf("montyhall: %v", err)
		}
	}
	for _, obs := range []map[string]string{
		{},
		{"guest": "A"},
		{"guest": "A", "monty": "B"},
	} {
		if err := beliefs(e, nw, obs); err != nil {
			return fmt.Errorf("montyhall: %v", err)
		}
	}
	data := [][]string{
		{"A", "A", "A"}, {"A", "A", "A"}, {"A", "A", "A"}, {"A", "A", "A"},
		{"A", "A", "A"}, {"B", "B", "B"}, {"B", "B", "C"}, {"C", "C", "A"},
		{"C", "C", "C"}, {"C", "C", "C"}, {"C", "C", "C"}, {"C", "B", "A"},
	}
	if err := nw.Fit(data, nil); err != nil {
		return fmt.Errorf("montyhall: %v", err)
	}
	fmt.Fprintln(e.w, "after training:")
	if err := beliefs(e, nw, map[string]string{"guest": "A", "prize": "A"}); err != nil {
		return fmt.Errorf("montyhall: %v", err)
	}
	return nil
}

func beliefs(e env, nw *bn.Network, obs map[string]string) error {
	bs, err := nw.PredictProba(obs)
	if err != nil {
		return err
	}
	var given []string
	for name, value := range obs {
		given = append(given, name+"="+value)
	}
	sort.Strings(given)
	fmt.Fprintf(e.w, "observations: {%s}\n", strings.Join(given, ", "))
	t := internal.NewTable(e.w, "State", "A", "B", "C")
	for i, s := range nw.States() {
		row := []interface{}{s.Name}
		for _, door := range []string{"A", "B", "C"} {
			row = append(row, fmt.Sprintf("%.4f", bs[i].Probability(door)))
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}
