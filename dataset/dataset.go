// Package dataset exposes training data preparation: normalization,
// splitting and batching.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/simonwuelker/deep-thought/internal/dataset"
)

// BatchSize is the number of samples consumed per optimizer step.
type BatchSize = dataset.BatchSize

const (
	// BatchAll uses every sample in one batch.
	BatchAll = dataset.BatchAll
	// BatchOne is classic stochastic gradient descent.
	BatchOne = dataset.BatchOne
)

// Dataset holds normalized records and labels.
type Dataset = dataset.Dataset

// Batch is one step's worth of data in (features, batch) layout.
type Batch = dataset.Batch

// Batches iterates a dataset partition.
type Batches = dataset.Batches

// ErrNoData is returned when a dataset has no samples.
var ErrNoData = dataset.ErrNoData

// New creates a dataset normalized column-wise by mean.
func New(records, labels *mat.Dense, split float64, batch BatchSize) (*Dataset, error) {
	return dataset.New(records, labels, split, batch)
}

// Raw creates a dataset without normalization.
func Raw(records, labels *mat.Dense, split float64, batch BatchSize) (*Dataset, error) {
	return dataset.Raw(records, labels, split, batch)
}
