// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides datasets and mini-batch loading for training.
//
// This package wraps internal data implementations and exports a clean
// public API for building datasets, splitting them, and iterating over
// shuffled mini-batches.
//
// Example usage:
//
//	import (
//	    "github.com/stride-ml/stride/data"
//	    "github.com/stride-ml/stride/autodiff"
//	    "github.com/stride-ml/stride/backend/cpu"
//	)
//
//	backend := autodiff.New(cpu.New())
//
//	// Generate synthetic y = 1 + 2x data
//	dataset, err := data.GenerateLinear(data.LinearConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// 80/20 train/validation split
//	trainSet, valSet, err := data.RandomSplit(dataset, 0.8, 42)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	trainLoader := data.NewLoader(trainSet, 16, true, backend)
//	for _, batch := range trainLoader.Batches() {
//	    _ = batch.X // [batch, features]
//	    _ = batch.Y // [batch, targets]
//	}
package data

import (
	"github.com/stride-ml/stride/internal/data"
	"github.com/stride-ml/stride/internal/tensor"
)

// Dataset is the interface all datasets implement.
type Dataset = data.Dataset

// TensorDataset is an in-memory dataset backed by flat sample slices.
type TensorDataset = data.TensorDataset

// NewTensorDataset creates a dataset from per-sample feature and target slices.
func NewTensorDataset(xs, ys [][]float32) (*TensorDataset, error) {
	return data.NewTensorDataset(xs, ys)
}

// Subset is a view over a subset of another dataset's indices.
type Subset = data.Subset

// NewSubset creates a view over the given indices of a dataset.
func NewSubset(dataset Dataset, indices []int) *Subset {
	return data.NewSubset(dataset, indices)
}

// RandomSplit shuffles dataset indices with the given seed and splits them
// into two disjoint subsets. firstFraction is the fraction of samples
// assigned to the first subset.
func RandomSplit(dataset Dataset, firstFraction float64, seed int64) (*Subset, *Subset, error) {
	return data.RandomSplit(dataset, firstFraction, seed)
}

// Batch is one mini-batch of stacked samples.
type Batch[B tensor.Backend] = data.Batch[B]

// Loader iterates over a dataset in mini-batches, reshuffling each epoch
// when shuffle is enabled.
type Loader[B tensor.Backend] = data.Loader[B]

// NewLoader creates a mini-batch loader over the dataset.
//
// Example:
//
//	loader := data.NewLoader(dataset, 16, true, backend)
//	for _, batch := range loader.Batches() {
//	    // train on batch.X, batch.Y
//	}
func NewLoader[B tensor.Backend](dataset Dataset, batchSize int, shuffle bool, backend B) *Loader[B] {
	return data.NewLoader(dataset, batchSize, shuffle, backend)
}

// Synthetic data

// LinearConfig configures synthetic linear data generation.
type LinearConfig = data.LinearConfig

// GenerateLinear generates a synthetic dataset of y = b + w*x + noise
// samples with x drawn uniformly from [0, 1).
//
// Zero-valued config fields fall back to defaults: 100 samples,
// w=2, b=1, noise std 0.1, seed 42.
func GenerateLinear(config LinearConfig) (*TensorDataset, error) {
	return data.GenerateLinear(config)
}
