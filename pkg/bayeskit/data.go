package bayeskit

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Dataset holds numeric samples and their optional class labels.
type Dataset struct {
	Names []string    // Column names if the input had a header
	X     [][]float64 // Samples
	Y     []int       // Class labels (nil for unlabeled data)
}

// Matrix returns the samples of the dataset as a dense matrix.
func (d Dataset) Matrix() *mat.Dense {
	if len(d.X) == 0 {
		return nil
	}
	c := len(d.X[0])
	data := make([]float64, 0, len(d.X)*c)
	for _, x := range d.X {
		data = append(data, x...)
	}
	return mat.NewDense(len(d.X), c, data)
}

// Split returns the samples of the dataset grouped by their labels.
func (d Dataset) Split() map[int][][]float64 {
	ret := make(map[int][][]float64)
	for i, y := range d.Y {
		ret[y] = append(ret[y], d.X[i])
	}
	return ret
}

// ReadCSV reads comma separated numeric samples.  If the first record
// cannot be parsed as numbers it is used as the column names.  If
// labeled is true the last column of each record is read as the
// integer class label of the sample.
func ReadCSV(r io.Reader, labeled bool) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	var d Dataset
	for first := true; ; first = false {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("readCSV: %v", err)
		}
		line, _ := cr.FieldPos(0)
		if labeled && len(record) < 2 {
			return Dataset{}, fmt.Errorf("readCSV: line %d: missing label", line)
		}
		x, y, err := parseRecord(record, labeled)
		if err != nil && first {
			d.Names = record
			continue
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("readCSV: line %d: %v", line, err)
		}
		if len(d.X) > 0 && len(x) != len(d.X[0]) {
			return Dataset{}, fmt.Errorf("readCSV: line %d: expected %d features; got %d",
				line, len(d.X[0]), len(x))
		}
		d.X = append(d.X, x)
		if labeled {
			d.Y = append(d.Y, y)
		}
	}
	return d, nil
}

func parseRecord(record []string, labeled bool) ([]float64, int, error) {
	n := len(record)
	if labeled {
		n--
	}
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("cannot parse float: %q", record[i])
		}
		x[i] = f
	}
	if !labeled {
		return x, 0, nil
	}
	y, err := strconv.Atoi(strings.TrimSpace(record[n]))
	if err != nil {
		return nil, 0, fmt.Errorf("cannot parse label: %q", record[n])
	}
	return x, y, nil
}

// ReadSymbols reads comma separated categorical records.  If header is
// true, the first record is returned as the column names.  All records
// must have the same number of fields.
func ReadSymbols(r io.Reader, header bool) (names []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("readSymbols: %v", err)
	}
	if header && len(records) > 0 {
		return records[0], records[1:], nil
	}
	return nil, records, nil
}

// ReadSequences reads one symbol sequence per line.  Lines containing
// a comma are split at the commas, all other lines are split into
// their characters.  Empty lines and lines starting with '#' are
// skipped.
func ReadSequences(r io.Reader) ([][]string, error) {
	var ret [][]string
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		ret = append(ret, SplitSequence(line))
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("readSequences: %v", err)
	}
	return ret, nil
}

// SplitSequence splits a sequence into its symbols.
func SplitSequence(seq string) []string {
	if strings.Contains(seq, ",") {
		fields := strings.Split(seq, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return fields
	}
	ret := make([]string, 0, len(seq))
	for _, r := range seq {
		ret = append(ret, string(r))
	}
	return ret
}

// Normalize applies mean normalization to the columns of xs:
// x' = (x - mean) / (max - min).
func Normalize(xs *mat.Dense) error {
	r, c := xs.Dims()
	if r == 0 || c == 0 {
		return fmt.Errorf("normalize: zero length")
	}
	for j := 0; j < c; j++ {
		max := -math.MaxFloat64
		min := math.MaxFloat64
		var sum float64
		for i := 0; i < r; i++ {
			val := xs.At(i, j)
			max = math.Max(max, val)
			min = math.Min(min, val)
			sum += val
		}
		// Constant columns within [0,1] are treated as boolean features.
		if max-min == 0 && min >= 0 && max <= 1 {
			min, max = 0, 1
		} else if max-min == 0 {
			return fmt.Errorf("normalize[%d]: max - min = %f - %f cannot be 0", j, max, min)
		}
		mean := sum / float64(r)
		for i := 0; i < r; i++ {
			xs.Set(i, j, (xs.At(i, j)-mean)/(max-min))
		}
	}
	return nil
}

// ZScore standardizes the columns of xs to zero mean and unit
// (population) standard deviation.  Constant columns are only centered.
func ZScore(xs *mat.Dense) error {
	r, c := xs.Dims()
	if r == 0 || c == 0 {
		return fmt.Errorf("zscore: zero length")
	}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, xs)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		for i, v := range col {
			xs.Set(i, j, (v-mean)/std)
		}
	}
	return nil
}
