package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/simonwuelker/deep-thought/internal/tensor"
)

func xorData() (*mat.Dense, *mat.Dense) {
	records := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	labels := mat.NewDense(4, 1, []float64{0, 1, 1, 0})
	return records, labels
}

func TestNormalizationByColumnMean(t *testing.T) {
	records := mat.NewDense(3, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
	})
	labels := mat.NewDense(3, 1, []float64{4, 8, 12})

	d, err := New(records, labels, 1, BatchAll)
	require.NoError(t, err)

	// Column means are 2 and 20; normalized values are value/mean.
	it := d.TrainBatches()
	batch, ok := it.Next()
	require.True(t, ok)
	assert.InDelta(t, 0.5, batch.Samples.At(0, 0).Value, 1e-12)
	assert.InDelta(t, 1.5, batch.Samples.At(0, 2).Value, 1e-12)
	assert.InDelta(t, 0.5, batch.Samples.At(1, 0).Value, 1e-12)
	assert.InDelta(t, 0.5, batch.Labels.At(0, 0).Value, 1e-12)

	// Denormalization restores the original scale.
	restored := d.DenormalizeRecord([]float64{0.5, 0.5})
	assert.Equal(t, []float64{1, 10}, restored)
	assert.Equal(t, []float64{4}, d.DenormalizeLabel([]float64{0.5}))
}

func TestNormalizationCoversEveryCell(t *testing.T) {
	// Every row of every column must be divided by that column's mean.
	records := mat.NewDense(4, 3, []float64{
		1, 2, 4,
		2, 4, 8,
		3, 6, 12,
		2, 4, 8,
	})
	labels := mat.NewDense(4, 1, []float64{1, 1, 1, 1})

	d, err := New(records, labels, 1, BatchAll)
	require.NoError(t, err)

	means := []float64{2, 4, 8}
	batch, ok := d.TrainBatches().Next()
	require.True(t, ok)
	for k := 0; k < 4; k++ {
		for j := 0; j < 3; j++ {
			want := records.At(k, j) / means[j]
			assert.InDelta(t, want, batch.Samples.At(j, k).Value, 1e-12, "sample %d column %d", k, j)
		}
	}
}

func TestZeroMeanColumnRejected(t *testing.T) {
	records := mat.NewDense(2, 1, []float64{-1, 1})
	labels := mat.NewDense(2, 1, []float64{1, 2})

	_, err := New(records, labels, 1, BatchAll)
	require.Error(t, err)
}

func TestRawSkipsNormalization(t *testing.T) {
	records, labels := xorData()

	d, err := Raw(records, labels, 1, BatchAll)
	require.NoError(t, err)

	batch, ok := d.TrainBatches().Next()
	require.True(t, ok)
	assert.Equal(t, 1.0, batch.Samples.At(0, 2).Value)
	assert.Equal(t, []float64{5, 7}, d.DenormalizeRecord([]float64{5, 7}))
}

func TestBatchTransposition(t *testing.T) {
	records, labels := xorData()

	d, err := Raw(records, labels, 1, BatchOne)
	require.NoError(t, err)

	it := d.TrainBatches()
	assert.Equal(t, 4, it.NumBatches())
	assert.Equal(t, 1, it.BatchSize())

	// Each batch is one sample as a (features, 1) column.
	seen := 0
	for {
		batch, ok := it.Next()
		if !ok {
			break
		}
		require.True(t, batch.Samples.Shape().Equal(tensor.Shape{2, 1}))
		require.True(t, batch.Labels.Shape().Equal(tensor.Shape{1, 1}))
		seen++
	}
	assert.Equal(t, 4, seen)
}

func TestTrainTestSplit(t *testing.T) {
	records := mat.NewDense(10, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	labels := mat.NewDense(10, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})

	d, err := Raw(records, labels, 0.7, BatchOne)
	require.NoError(t, err)
	assert.Equal(t, 7, d.NumTrain())
	assert.Equal(t, 3, d.NumTest())

	// Test partition starts after the training rows.
	batch, ok := d.TestBatches().Next()
	require.True(t, ok)
	assert.Equal(t, 7.0, batch.Samples.At(0, 0).Value)
}

func TestPartialBatchDropped(t *testing.T) {
	records := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	labels := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})

	d, err := Raw(records, labels, 1, BatchSize(2))
	require.NoError(t, err)

	it := d.TrainBatches()
	assert.Equal(t, 2, it.NumBatches())
}

func TestMismatchedRowCounts(t *testing.T) {
	records := mat.NewDense(3, 1, []float64{1, 2, 3})
	labels := mat.NewDense(2, 1, []float64{1, 2})

	_, err := Raw(records, labels, 1, BatchAll)
	require.Error(t, err)
}
