package nn

import (
	"fmt"
	"strings"
	"time"

	"github.com/stride-ml/stride/internal/serialization"
	"github.com/stride-ml/stride/internal/tensor"
)

// optimizerPrefix namespaces optimizer tensors inside a combined state dict.
const optimizerPrefix = "optimizer."

// OptimizerState represents an optimizer that can save/load its state.
//
// This interface is used by checkpoints to serialize optimizer state
// without creating import cycles. Optimizers from the optim package
// implement this interface.
type OptimizerState interface {
	// StateDict returns the optimizer state for serialization.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads optimizer state from serialization.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Checkpoint represents a complete training state snapshot.
//
// A checkpoint includes:
//   - Model parameters (weights and biases)
//   - Optimizer state (momentum buffers, Adam moments, etc.)
//   - Training progress (completed epochs, loss histories)
//   - Custom metadata
//
// Checkpoints let an interrupted training run resume exactly where it
// stopped: same parameters, same optimizer buffers, same epoch counter,
// and the full loss curves recorded so far.
//
// Example:
//
//	checkpoint := &nn.Checkpoint[*cpu.CPUBackend]{
//	    Model:     model,
//	    Optimizer: optimizer,
//	    Epoch:     10,
//	    Losses:    trainLosses,
//	    ValLosses: valLosses,
//	}
//	err := checkpoint.Save("checkpoint_epoch_10.stride")
//
// To resume training:
//
//	checkpoint, err := nn.LoadCheckpoint("checkpoint.stride", backend, model, optimizer)
//	startEpoch := checkpoint.Epoch
type Checkpoint[B tensor.Backend] struct {
	Model     Module[B]      // The neural network model
	Optimizer OptimizerState // The optimizer with its state
	Epoch     int            // Number of completed training epochs
	Step      int64          // Training step number
	Loss      float64        // Most recent training loss
	Losses    []float64      // Per-epoch training loss history
	ValLosses []float64      // Per-epoch validation loss history
	Metadata  map[string]any // Additional training metadata
	CreatedAt time.Time      // When the checkpoint was created
}

// Save saves the checkpoint to a .stride file.
//
// This writes:
//   - Model parameters via Module.StateDict()
//   - Optimizer state via Optimizer.StateDict(), prefixed "optimizer."
//   - Training progress (epoch, step, loss histories)
//
// The resulting file can be loaded with LoadCheckpoint to resume training.
func (c *Checkpoint[B]) Save(path string) (err error) {
	modelStateDict := c.Model.StateDict()
	optimizerStateDict := c.Optimizer.StateDict()

	// Combine model and optimizer state under one namespace
	combinedStateDict := make(map[string]*tensor.RawTensor, len(modelStateDict)+len(optimizerStateDict))

	for name, raw := range modelStateDict {
		combinedStateDict[name] = raw
	}

	for name, raw := range optimizerStateDict {
		combinedStateDict[optimizerPrefix+name] = raw
	}

	checkpointMeta := &serialization.CheckpointMeta{
		IsCheckpoint:    true,
		Epoch:           c.Epoch,
		Step:            c.Step,
		Loss:            c.Loss,
		Losses:          c.Losses,
		ValLosses:       c.ValLosses,
		OptimizerConfig: map[string]any{"lr": c.Optimizer.GetLR()},
		TrainingMeta:    c.Metadata,
	}

	writer, err := serialization.NewStrideWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	header := serialization.Header{
		FormatVersion:  serialization.FormatVersion,
		ModelType:      "Checkpoint",
		CreatedAt:      time.Now().UTC(),
		Metadata:       make(map[string]string),
		CheckpointMeta: checkpointMeta,
	}

	if err := writer.WriteStateDictWithHeader(combinedStateDict, header); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	return nil
}

// LoadCheckpoint loads a checkpoint from a .stride file.
//
// This restores:
//   - Model parameters into the provided model
//   - Optimizer state into the provided optimizer
//   - Training progress (epoch, loss histories)
//
// The model and optimizer must be pre-constructed with the same architecture
// and configuration as when the checkpoint was saved.
func LoadCheckpoint[B tensor.Backend](
	path string,
	backend B,
	model Module[B],
	optimizer OptimizerState,
) (_ *Checkpoint[B], err error) {
	reader, err := serialization.NewStrideReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	header := reader.Header()
	if header.CheckpointMeta == nil || !header.CheckpointMeta.IsCheckpoint {
		return nil, serialization.ErrNotCheckpoint
	}

	stateDict, err := reader.ReadStateDict(backend)
	if err != nil {
		return nil, fmt.Errorf("failed to read state dict: %w", err)
	}

	// Split model and optimizer state
	modelStateDict := make(map[string]*tensor.RawTensor)
	optimizerStateDict := make(map[string]*tensor.RawTensor)

	for name, raw := range stateDict {
		if rest, ok := strings.CutPrefix(name, optimizerPrefix); ok {
			optimizerStateDict[rest] = raw
		} else {
			modelStateDict[name] = raw
		}
	}

	if err := model.LoadStateDict(modelStateDict); err != nil {
		return nil, fmt.Errorf("failed to load model state: %w", err)
	}

	if err := optimizer.LoadStateDict(optimizerStateDict); err != nil {
		return nil, fmt.Errorf("failed to load optimizer state: %w", err)
	}

	checkpoint := &Checkpoint[B]{
		Model:     model,
		Optimizer: optimizer,
		Epoch:     header.CheckpointMeta.Epoch,
		Step:      header.CheckpointMeta.Step,
		Loss:      header.CheckpointMeta.Loss,
		Losses:    header.CheckpointMeta.Losses,
		ValLosses: header.CheckpointMeta.ValLosses,
		Metadata:  header.CheckpointMeta.TrainingMeta,
		CreatedAt: header.CreatedAt,
	}

	return checkpoint, nil
}

// SaveCheckpoint is a convenience function to save a checkpoint.
//
// This is equivalent to creating a Checkpoint struct and calling Save(),
// but with a simpler API for common use cases.
func SaveCheckpoint[B tensor.Backend](
	path string,
	model Module[B],
	optimizer OptimizerState,
	epoch int,
) error {
	checkpoint := &Checkpoint[B]{
		Model:     model,
		Optimizer: optimizer,
		Epoch:     epoch,
		CreatedAt: time.Now().UTC(),
	}
	return checkpoint.Save(path)
}
