// Package data implements datasets and mini-batch loading for training.
//
// This package provides:
//   - Dataset interface: Indexed access to (input, target) pairs
//   - TensorDataset: In-memory dataset backed by slices
//   - RandomSplit: Train/validation splitting
//   - Loader: Mini-batch iteration with per-epoch shuffling
//   - GenerateLinear: Synthetic linear regression data
//
// Design inspired by PyTorch's torch.utils.data but adapted for Go.
package data

import (
	"fmt"
	"math/rand"
)

// Dataset provides indexed access to (input, target) pairs.
//
// Inputs and targets are flat feature vectors. For single-feature linear
// regression both have length 1.
type Dataset interface {
	// Len returns the number of samples.
	Len() int

	// Item returns the input and target vectors for sample i.
	// The returned slices must not be mutated by the caller.
	Item(i int) (x, y []float32)
}

// TensorDataset is an in-memory dataset backed by feature slices.
type TensorDataset struct {
	xs [][]float32
	ys [][]float32
}

// NewTensorDataset creates a dataset from input and target slices.
//
// Returns an error if the slices have different lengths or inconsistent
// feature dimensions.
func NewTensorDataset(xs, ys [][]float32) (*TensorDataset, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("inputs and targets must have the same length: %d != %d", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("dataset must not be empty")
	}

	xDim := len(xs[0])
	yDim := len(ys[0])
	for i := range xs {
		if len(xs[i]) != xDim {
			return nil, fmt.Errorf("inconsistent input dimension at sample %d: got %d, want %d", i, len(xs[i]), xDim)
		}
		if len(ys[i]) != yDim {
			return nil, fmt.Errorf("inconsistent target dimension at sample %d: got %d, want %d", i, len(ys[i]), yDim)
		}
	}

	return &TensorDataset{xs: xs, ys: ys}, nil
}

// Len returns the number of samples.
func (d *TensorDataset) Len() int {
	return len(d.xs)
}

// Item returns the input and target vectors for sample i.
func (d *TensorDataset) Item(i int) (x, y []float32) {
	return d.xs[i], d.ys[i]
}

// Subset exposes a subset of another dataset through an index list.
type Subset struct {
	dataset Dataset
	indices []int
}

// NewSubset creates a view of dataset restricted to the given indices.
func NewSubset(dataset Dataset, indices []int) *Subset {
	return &Subset{dataset: dataset, indices: indices}
}

// Len returns the number of samples in the subset.
func (s *Subset) Len() int {
	return len(s.indices)
}

// Item returns the sample at position i of the subset.
func (s *Subset) Item(i int) (x, y []float32) {
	return s.dataset.Item(s.indices[i])
}

// RandomSplit splits a dataset into two disjoint subsets.
//
// firstFraction is the fraction of samples that go into the first subset
// (e.g. 0.8 for an 80/20 train/validation split). The split uses a seeded
// permutation so it is reproducible.
func RandomSplit(dataset Dataset, firstFraction float64, seed int64) (*Subset, *Subset, error) {
	if firstFraction <= 0 || firstFraction >= 1 {
		return nil, nil, fmt.Errorf("split fraction must be in (0, 1), got %v", firstFraction)
	}

	n := dataset.Len()
	//nolint:gosec // Data shuffling is not security-critical.
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	nFirst := int(float64(n) * firstFraction)
	if nFirst == 0 || nFirst == n {
		return nil, nil, fmt.Errorf("split leaves an empty subset: %d samples, fraction %v", n, firstFraction)
	}

	first := NewSubset(dataset, perm[:nFirst])
	second := NewSubset(dataset, perm[nFirst:])
	return first, second, nil
}
