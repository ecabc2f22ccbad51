package bayeskit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Row is a single sample that flows through a prediction pipeline.
type Row struct {
	Payload interface{} // Prediction after ConnectPredictions
	Values  []float64   // Feature values
	ID      int         // Running index of the row
	Label   int         // Class label or -1 if unknown
}

// Prediction holds the class probabilities of a row and the index of
// the most probable class.
type Prediction struct {
	Proba []float64
	Class int
}

func (r Row) String() string {
	strs := make([]string, len(r.Values))
	for i, v := range r.Values {
		strs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return fmt.Sprintf("%d:%s", r.ID, strings.Join(strs, ","))
}

// StreamFunc is a stage of a row pipeline.  The first stage of a
// pipeline is called with a nil input channel and the last stage is
// called with a nil output channel.
type StreamFunc func(context.Context, <-chan Row, chan<- Row) error

// Pipe connects the given stream funcs and runs each of them in its
// own go routine.  It waits for all stages to finish and returns the
// first error encountered.
func Pipe(ctx context.Context, fns ...StreamFunc) error {
	g, gctx := errgroup.WithContext(ctx)
	var in chan Row
	for i, fn := range fns {
		var out chan Row
		if i < len(fns)-1 {
			out = make(chan Row)
		}
		fn, stageIn, stageOut := fn, in, out
		g.Go(func() error {
			if stageOut != nil {
				defer close(stageOut)
			}
			return fn(gctx, stageIn, stageOut)
		})
		in = out
	}
	return g.Wait()
}

// EachRow iterates over the rows of the input channel and calls the
// callback function for each row.
func EachRow(ctx context.Context, in <-chan Row, f func(Row) error) error {
	for {
		select {
		case row, ok := <-in:
			if !ok {
				return nil
			}
			if err := f(row); err != nil {
				return err
			}
		case <-ctx.Done():
			return fmt.Errorf("eachRow: %v", ctx.Err())
		}
	}
}

// SendRows writes rows into the given output channel.
func SendRows(ctx context.Context, out chan<- Row, rows ...Row) error {
	for _, r := range rows {
		select {
		case out <- r:
		case <-ctx.Done():
			return fmt.Errorf("sendRows: %v", ctx.Err())
		}
	}
	return nil
}

// ReadRows returns a stream func that sends the rows of the given
// datasets into the pipeline.  Row IDs are counted from 1 across all
// datasets.
func ReadRows(ds ...Dataset) StreamFunc {
	return func(ctx context.Context, _ <-chan Row, out chan<- Row) error {
		id := 0
		for _, d := range ds {
			for i := range d.X {
				id++
				row := Row{ID: id, Values: d.X[i], Label: -1}
				if d.Y != nil {
					row.Label = d.Y[i]
				}
				if err := SendRows(ctx, out, row); err != nil {
					return fmt.Errorf("readRows: %v", err)
				}
			}
		}
		return nil
	}
}

// Predictor predicts class (or component) probabilities for samples.
type Predictor[T any] interface {
	PredictProba(xs []T) [][]float64
}

// ConnectPredictions connects the rows with the predictions of the
// given predictor.  Rows are buffered and predicted in batches.
func ConnectPredictions(p Predictor[[]float64]) StreamFunc {
	return func(ctx context.Context, in <-chan Row, out chan<- Row) error {
		const blen = 512
		buf := make([]Row, 0, blen)
		flush := func() error {
			predict(p, buf)
			if err := SendRows(ctx, out, buf...); err != nil {
				return fmt.Errorf("connectPredictions: %v", err)
			}
			buf = buf[0:0]
			return nil
		}
		err := EachRow(ctx, in, func(r Row) error {
			if len(buf) >= blen {
				if err := flush(); err != nil {
					return err
				}
			}
			buf = append(buf, r)
			return nil
		})
		if err != nil {
			return fmt.Errorf("connectPredictions: %v", err)
		}
		if len(buf) > 0 {
			return flush()
		}
		return nil
	}
}

func predict(p Predictor[[]float64], rows []Row) {
	xs := make([][]float64, len(rows))
	for i := range rows {
		xs[i] = rows[i].Values
	}
	probs := p.PredictProba(xs)
	for i := range rows {
		rows[i].Payload = Prediction{Proba: probs[i], Class: Argmax(probs[i])}
	}
}
