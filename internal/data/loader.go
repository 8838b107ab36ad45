package data

import (
	"fmt"
	"math/rand"

	"github.com/stride-ml/stride/internal/tensor"
)

// Batch holds one mini-batch of inputs and targets as tensors.
type Batch[B tensor.Backend] struct {
	X    *tensor.Tensor[float32, B] // [batch_size, x_features]
	Y    *tensor.Tensor[float32, B] // [batch_size, y_features]
	Size int                        // Number of samples in this batch
}

// Loader iterates over a dataset in mini-batches.
//
// When shuffling is enabled, each call to Batches produces a fresh
// permutation of the dataset, so consecutive epochs see the samples in
// different order. The last batch may be smaller than the batch size.
//
// Example:
//
//	loader := data.NewLoader(trainSet, 16, true, backend)
//	for epoch := range epochs {
//	    for _, batch := range loader.Batches() {
//	        loss := trainStep(batch.X, batch.Y)
//	    }
//	}
type Loader[B tensor.Backend] struct {
	dataset   Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	backend   B
}

// NewLoader creates a mini-batch loader over dataset.
//
// Panics if batchSize is not positive.
func NewLoader[B tensor.Backend](dataset Dataset, batchSize int, shuffle bool, backend B) *Loader[B] {
	if batchSize <= 0 {
		panic(fmt.Sprintf("batch size must be positive, got %d", batchSize))
	}

	return &Loader[B]{
		dataset:   dataset,
		batchSize: batchSize,
		shuffle:   shuffle,
		//nolint:gosec // Batch shuffling is not security-critical.
		rng:     rand.New(rand.NewSource(rand.Int63())),
		backend: backend,
	}
}

// Seed seeds the loader's shuffle RNG for reproducible epochs.
func (l *Loader[B]) Seed(seed int64) {
	//nolint:gosec // Batch shuffling is not security-critical.
	l.rng = rand.New(rand.NewSource(seed))
}

// BatchSize returns the configured batch size.
func (l *Loader[B]) BatchSize() int {
	return l.batchSize
}

// NumBatches returns the number of batches per epoch.
func (l *Loader[B]) NumBatches() int {
	n := l.dataset.Len()
	return (n + l.batchSize - 1) / l.batchSize
}

// Batches materializes one epoch of mini-batches.
//
// With shuffling enabled, the dataset order is re-permuted on every call.
func (l *Loader[B]) Batches() []Batch[B] {
	n := l.dataset.Len()

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	batches := make([]Batch[B], 0, l.NumBatches())
	for start := 0; start < n; start += l.batchSize {
		end := min(start+l.batchSize, n)
		batches = append(batches, l.makeBatch(indices[start:end]))
	}

	return batches
}

// makeBatch stacks the selected samples into [size, features] tensors.
func (l *Loader[B]) makeBatch(indices []int) Batch[B] {
	size := len(indices)

	x0, y0 := l.dataset.Item(indices[0])
	xDim := len(x0)
	yDim := len(y0)

	xData := make([]float32, 0, size*xDim)
	yData := make([]float32, 0, size*yDim)
	for _, idx := range indices {
		x, y := l.dataset.Item(idx)
		xData = append(xData, x...)
		yData = append(yData, y...)
	}

	xTensor, err := tensor.FromSlice(xData, tensor.Shape{size, xDim}, l.backend)
	if err != nil {
		panic(err)
	}
	yTensor, err := tensor.FromSlice(yData, tensor.Shape{size, yDim}, l.backend)
	if err != nil {
		panic(err)
	}

	return Batch[B]{X: xTensor, Y: yTensor, Size: size}
}
