// Package dataset prepares training data for the network: column-mean
// normalization, train/test splitting and batching into the column-major
// (features, batch) layout the layers consume.
package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/simonwuelker/deep-thought/internal/autograd"
	"github.com/simonwuelker/deep-thought/internal/tensor"
)

// ErrNoData is returned when a dataset is constructed without any samples.
var ErrNoData = errors.New("dataset contains no samples")

// BatchSize is the number of samples consumed per optimizer step. Samples
// that do not fill a whole batch are dropped.
type BatchSize int

const (
	// BatchAll uses every sample in one batch (batch gradient descent).
	BatchAll BatchSize = 0
	// BatchOne is classic stochastic gradient descent.
	BatchOne BatchSize = 1
)

func (b BatchSize) resolve(samples int) int {
	if b <= 0 {
		return samples
	}
	return int(b)
}

// Dataset holds normalized records and labels, both (samples, columns)
// row-major matrices. Records are normalized by dividing each column by its
// mean; the means are kept so predictions can be mapped back to the
// original scale.
type Dataset struct {
	split float64

	records *mat.Dense
	labels  *mat.Dense

	recordMeans []float64
	labelMeans  []float64

	batch BatchSize
}

// New creates a dataset and normalizes both records and labels column-wise
// by their means. split is the fraction of samples used for training; the
// rest are reserved for testing.
func New(records, labels *mat.Dense, split float64, batch BatchSize) (*Dataset, error) {
	d, err := Raw(records, labels, split, batch)
	if err != nil {
		return nil, err
	}

	d.recordMeans = columnMeans(d.records)
	d.labelMeans = columnMeans(d.labels)
	if err := divideColumns(d.records, d.recordMeans); err != nil {
		return nil, fmt.Errorf("normalize records: %w", err)
	}
	if err := divideColumns(d.labels, d.labelMeans); err != nil {
		return nil, fmt.Errorf("normalize labels: %w", err)
	}
	return d, nil
}

// Raw creates a dataset without any normalization. Denormalization becomes
// the identity.
func Raw(records, labels *mat.Dense, split float64, batch BatchSize) (*Dataset, error) {
	rr, _ := records.Dims()
	lr, lc := labels.Dims()
	if rr == 0 || lr == 0 {
		return nil, ErrNoData
	}
	if rr != lr {
		return nil, fmt.Errorf("%d records but %d labels", rr, lr)
	}
	if split < 0 || split > 1 {
		return nil, fmt.Errorf("train/test split must be in [0, 1], got %g", split)
	}

	d := &Dataset{
		split:      split,
		records:    mat.DenseCopyOf(records),
		labels:     mat.DenseCopyOf(labels),
		labelMeans: ones(lc),
		batch:      batch,
	}
	_, rc := records.Dims()
	d.recordMeans = ones(rc)
	return d, nil
}

func columnMeans(m *mat.Dense) []float64 {
	_, cols := m.Dims()
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, m), nil)
	}
	return means
}

func divideColumns(m *mat.Dense, means []float64) error {
	rows, _ := m.Dims()
	for j, mean := range means {
		if mean == 0 {
			return fmt.Errorf("column %d has zero mean", j)
		}
		for i := 0; i < rows; i++ {
			m.Set(i, j, m.At(i, j)/mean)
		}
	}
	return nil
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// Len returns the total number of samples.
func (d *Dataset) Len() int {
	rows, _ := d.records.Dims()
	return rows
}

func (d *Dataset) numTrain() int {
	return int(float64(d.Len()) * d.split)
}

// NumTrain returns the number of samples in the training partition.
func (d *Dataset) NumTrain() int { return d.numTrain() }

// NumTest returns the number of samples in the testing partition.
func (d *Dataset) NumTest() int { return d.Len() - d.numTrain() }

// DenormalizeRecord maps a normalized record vector back to the original
// scale by multiplying with the stored column means.
func (d *Dataset) DenormalizeRecord(normalized []float64) []float64 {
	return scaleBy(normalized, d.recordMeans)
}

// DenormalizeLabel maps a normalized label (or prediction) vector back to
// the original scale.
func (d *Dataset) DenormalizeLabel(normalized []float64) []float64 {
	return scaleBy(normalized, d.labelMeans)
}

func scaleBy(v, means []float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * means[i%len(means)]
	}
	return out
}

// TrainBatches iterates over the training partition.
func (d *Dataset) TrainBatches() *Batches {
	return d.batches(0, d.numTrain())
}

// TestBatches iterates over the testing partition.
func (d *Dataset) TestBatches() *Batches {
	return d.batches(d.numTrain(), d.Len()-d.numTrain())
}

func (d *Dataset) batches(start, count int) *Batches {
	size := d.batch.resolve(count)
	num := 0
	if size > 0 {
		num = count / size
	}
	return &Batches{
		dataset:    d,
		start:      start,
		batchSize:  size,
		numBatches: num,
	}
}

// Batch is one training step's worth of data, already transposed to the
// (features, batch) layout layers expect. Both arrays are plain constants.
type Batch struct {
	Samples *tensor.Array
	Labels  *tensor.Array
}

// Batches walks a dataset partition in fixed-size steps. A trailing partial
// batch is dropped.
type Batches struct {
	dataset    *Dataset
	start      int
	index      int
	batchSize  int
	numBatches int
}

// NumBatches returns how many full batches the iterator will yield.
func (it *Batches) NumBatches() int { return it.numBatches }

// BatchSize returns the resolved per-batch sample count.
func (it *Batches) BatchSize() int { return it.batchSize }

// Next yields the next batch, or ok = false when the partition is
// exhausted. The caller owns the returned arrays.
func (it *Batches) Next() (Batch, bool) {
	if it.index >= it.numBatches {
		return Batch{}, false
	}
	row := it.start + it.index*it.batchSize
	it.index++

	return Batch{
		Samples: transposeRows(it.dataset.records, row, it.batchSize),
		Labels:  transposeRows(it.dataset.labels, row, it.batchSize),
	}, true
}

// transposeRows extracts rows [start, start+count) of m as a constant
// (columns, count) array: sample k of the batch becomes column k.
func transposeRows(m *mat.Dense, start, count int) *tensor.Array {
	_, cols := m.Dims()
	out, err := tensor.New(tensor.Shape{cols, count})
	if err != nil {
		panic(err)
	}
	for k := 0; k < count; k++ {
		for j := 0; j < cols; j++ {
			out.Set(autograd.Constant(m.At(start+k, j)), j, k)
		}
	}
	return out
}
