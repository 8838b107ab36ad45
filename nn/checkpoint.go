// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/stride-ml/stride/internal/nn"
	"github.com/stride-ml/stride/internal/serialization"
	"github.com/stride-ml/stride/internal/tensor"
)

// OptimizerState is the interface optimizers implement to participate in
// checkpointing.
type OptimizerState = nn.OptimizerState

// Checkpoint represents a complete training snapshot: model parameters,
// optimizer state, and training progress.
type Checkpoint[B tensor.Backend] = nn.Checkpoint[B]

// SaveCheckpoint saves a model/optimizer pair to a .stride checkpoint file.
//
// Example:
//
//	backend := cpu.New()
//	model := nn.NewLinear(1, 1, backend)
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
//	err := nn.SaveCheckpoint("model.stride", model, optimizer, 10)
func SaveCheckpoint[B tensor.Backend](
	path string,
	model Module[B],
	optimizer OptimizerState,
	epoch int,
) error {
	return nn.SaveCheckpoint(path, model, optimizer, epoch)
}

// LoadCheckpoint loads a checkpoint from a .stride file into a
// pre-constructed model and optimizer.
//
// The model and optimizer must have the same architecture and configuration
// as when the checkpoint was saved.
func LoadCheckpoint[B tensor.Backend](
	path string,
	backend B,
	model Module[B],
	optimizer OptimizerState,
) (*Checkpoint[B], error) {
	return nn.LoadCheckpoint(path, backend, model, optimizer)
}

// Save saves a module's parameters to a .stride file.
//
// This is a convenience function for inference-only snapshots: it writes
// the model state dictionary without optimizer state.
//
// Example:
//
//	backend := cpu.New()
//	model := nn.NewLinear(1, 1, backend)
//	err := nn.Save(model, "model.stride", "Linear", nil)
func Save[B tensor.Backend](module Module[B], path, modelType string, metadata map[string]string) error {
	writer, err := serialization.NewStrideWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = writer.Close()
	}()

	return writer.WriteStateDict(module.StateDict(), modelType, metadata)
}

// Load loads a module's parameters from a .stride file.
//
// Example:
//
//	backend := cpu.New()
//	model := nn.NewLinear(1, 1, backend)
//	header, err := nn.Load("model.stride", backend, model)
func Load[B tensor.Backend](path string, backend B, module Module[B]) (serialization.Header, error) {
	reader, err := serialization.NewStrideReader(path)
	if err != nil {
		return serialization.Header{}, err
	}
	defer func() {
		_ = reader.Close()
	}()

	stateDict, err := reader.ReadStateDict(backend)
	if err != nil {
		return serialization.Header{}, err
	}

	if err := module.LoadStateDict(stateDict); err != nil {
		return serialization.Header{}, err
	}

	return reader.Header(), nil
}
