package hmm

import (
	"bytes"
	"strings"
	"testing"

	"git.sr.ht/~flobar/bayeskit/pkg/bayeskit/hmm"
)

const coins = `{
	"name": "coins",
	"states": [
		{"name": "fair", "emissions": {"H": 0.5, "T": 0.5}},
		{"name": "rigged", "emissions": {"H": 1, "T": 0}}
	],
	"transitions": [
		{"from": "start", "to": "fair", "p": 0.5},
		{"from": "start", "to": "rigged", "p": 0.5},
		{"from": "fair", "to": "fair", "p": 0.5},
		{"from": "fair", "to": "rigged", "p": 0.5},
		{"from": "rigged", "to": "fair", "p": 0.5},
		{"from": "rigged", "to": "rigged", "p": 0.5}
	]
}`

func model(t *testing.T) *hmm.Model[string] {
	t.Helper()
	m, err := hmm.ReadDiscrete(strings.NewReader(coins))
	if err != nil {
		t.Fatalf("got error: %v", err)
	}
	return m
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	seqs := [][]string{{"T", "T"}, {"X"}}
	if err := decode(&buf, model(t), seqs); err != nil {
		t.Fatalf("got error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines; got %q", buf.String())
	}
	if !strings.HasSuffix(lines[0], " fair,fair") {
		t.Fatalf("bad path: %q", lines[0])
	}
	if lines[1] != "X impossible" {
		t.Fatalf("expected %q; got %q", "X impossible", lines[1])
	}
}

func TestScore(t *testing.T) {
	var buf bytes.Buffer
	// P(TT) = .5 * .5 * .5 * .5 = 0.0625
	if err := score(&buf, model(t), [][]string{{"T", "T"}}); err != nil {
		t.Fatalf("got error: %v", err)
	}
	for _, want := range []string{"-2.7726", "1.0000", "0.0000", "fair", "rigged"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %s in %s", want, buf.String())
		}
	}
}
