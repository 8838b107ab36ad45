// Package train implements the epoch/mini-batch training loop.
//
// The Trainer binds a model, a loss function, and an optimizer, then
// drives forward/backward passes, checkpointing, and scalar logging.
// It owns no numeric code of its own: gradients, optimization steps and
// batching are all delegated to the autodiff, optim and data packages.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewLinear(1, 1, backend)
//	lossFn := nn.NewMSELoss(backend)
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
//
//	trainer := train.New[*autodiff.AutodiffBackend[*cpu.CPUBackend]](model, lossFn, optimizer, backend)
//	trainer.SetLoaders(trainLoader, valLoader)
//	if err := trainer.Fit(200); err != nil {
//	    log.Fatal(err)
//	}
package train

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stride-ml/stride/internal/autodiff"
	"github.com/stride-ml/stride/internal/data"
	"github.com/stride-ml/stride/internal/nn"
	"github.com/stride-ml/stride/internal/optim"
	"github.com/stride-ml/stride/internal/summary"
	"github.com/stride-ml/stride/internal/tensor"
)

// Trainer drives the training loop for a model/loss/optimizer triple.
//
// The backend must be gradient-recording (autodiff.BackwardCapable) so
// TrainStep can run backward passes. Loss histories accumulate across
// Fit calls, which makes checkpoint-resume cycles seamless: epoch
// counting continues where the loaded checkpoint stopped.
type Trainer[B autodiff.BackwardCapable] struct {
	model     nn.Module[B]
	lossFn    nn.Loss[B]
	optimizer optim.Optimizer
	backend   B

	trainLoader *data.Loader[B]
	valLoader   *data.Loader[B]
	writer      *summary.Writer
	logger      *zap.Logger

	losses      []float64
	valLosses   []float64
	totalEpochs int
}

// Option configures a Trainer.
type Option func(*trainerOptions)

type trainerOptions struct {
	logger *zap.Logger
}

// WithLogger sets the structured logger used during Fit.
// By default the trainer is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(o *trainerOptions) {
		o.logger = logger
	}
}

// New creates a Trainer binding the model, loss function and optimizer.
func New[B autodiff.BackwardCapable](
	model nn.Module[B],
	lossFn nn.Loss[B],
	optimizer optim.Optimizer,
	backend B,
	opts ...Option,
) *Trainer[B] {
	options := trainerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}

	return &Trainer[B]{
		model:     model,
		lossFn:    lossFn,
		optimizer: optimizer,
		backend:   backend,
		logger:    options.logger,
	}
}

// SetLoaders attaches the training and validation loaders.
//
// The validation loader may be nil, in which case validation is skipped
// and no validation losses are recorded.
func (t *Trainer[B]) SetLoaders(trainLoader, valLoader *data.Loader[B]) {
	t.trainLoader = trainLoader
	t.valLoader = valLoader
}

// SetSummaryWriter attaches a scalar event writer.
//
// When set, Fit emits "loss/train" and "loss/val" scalars per epoch.
func (t *Trainer[B]) SetSummaryWriter(w *summary.Writer) {
	t.writer = w
}

// SetSeed seeds everything the trainer randomizes: batch shuffling in
// both loaders and weight initialization for modules built afterwards.
func (t *Trainer[B]) SetSeed(seed int64) {
	nn.Seed(seed)
	if t.trainLoader != nil {
		t.trainLoader.Seed(seed)
	}
	if t.valLoader != nil {
		t.valLoader.Seed(seed + 1)
	}
}

// TrainStep performs one optimization step on a single mini-batch.
//
// The gradient tape records only the forward and loss computation; the
// optimizer update happens outside recording and the tape is cleared
// before returning.
func (t *Trainer[B]) TrainStep(x, y *tensor.Tensor[float32, B]) float64 {
	tape := t.backend.GetTape()
	tape.Clear()
	tape.StartRecording()

	predictions := t.model.Forward(x)
	loss := t.lossFn.Forward(predictions, y)

	grads := autodiff.Backward(loss, t.backend)
	tape.StopRecording()

	t.optimizer.Step(grads)
	t.optimizer.ZeroGrad()
	tape.Clear()

	return float64(loss.Item())
}

// ValStep computes the loss on a single mini-batch without touching
// parameters or the gradient tape.
func (t *Trainer[B]) ValStep(x, y *tensor.Tensor[float32, B]) float64 {
	predictions := t.model.Forward(x)
	loss := t.lossFn.Forward(predictions, y)
	return float64(loss.Item())
}

// miniBatch runs one epoch over the selected loader and returns the mean
// per-batch loss. Returns ok=false when the loader is nil.
func (t *Trainer[B]) miniBatch(validation bool) (float64, bool) {
	loader := t.trainLoader
	step := t.TrainStep
	if validation {
		loader = t.valLoader
		step = t.ValStep
	}
	if loader == nil {
		return 0, false
	}

	var total float64
	batches := loader.Batches()
	for _, batch := range batches {
		total += step(batch.X, batch.Y)
	}

	return total / float64(len(batches)), true
}

// Fit trains for nEpochs epochs.
//
// Each epoch runs one pass over the training loader, then (when a
// validation loader is set) one pass over the validation loader with
// recording disabled. Loss histories grow by one entry per epoch and
// the total epoch counter accumulates across Fit calls.
func (t *Trainer[B]) Fit(nEpochs int) error {
	if t.trainLoader == nil {
		return fmt.Errorf("no training loader set, call SetLoaders first")
	}
	if nEpochs <= 0 {
		return fmt.Errorf("number of epochs must be positive, got %d", nEpochs)
	}

	start := time.Now()
	for range nEpochs {
		t.totalEpochs++

		trainLoss, _ := t.miniBatch(false)
		t.losses = append(t.losses, trainLoss)

		scalars := map[string]float64{"loss/train": trainLoss}
		fields := []zap.Field{
			zap.Int("epoch", t.totalEpochs),
			zap.Float64("train_loss", trainLoss),
		}

		if valLoss, ok := t.miniBatch(true); ok {
			t.valLosses = append(t.valLosses, valLoss)
			scalars["loss/val"] = valLoss
			fields = append(fields, zap.Float64("val_loss", valLoss))
		}

		if t.writer != nil {
			if err := t.writer.AddScalars(scalars, t.totalEpochs); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}
		}

		t.logger.Info("epoch complete", fields...)
	}

	t.logger.Info("training finished",
		zap.Int("total_epochs", t.totalEpochs),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// Predict runs an eval-mode forward pass over single-feature inputs.
//
// Inputs are stacked into a [n, 1] tensor, recording stays disabled,
// and the outputs are returned as a copied flat slice.
func (t *Trainer[B]) Predict(xs []float32) ([]float32, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("no inputs to predict")
	}

	x, err := tensor.FromSlice(xs, tensor.Shape{len(xs), 1}, t.backend)
	if err != nil {
		return nil, fmt.Errorf("failed to build input tensor: %w", err)
	}

	output := t.model.Forward(x)

	result := make([]float32, output.NumElements())
	copy(result, output.Raw().AsFloat32())
	return result, nil
}

// SaveCheckpoint writes the complete training state to path.
func (t *Trainer[B]) SaveCheckpoint(path string) error {
	var lastLoss float64
	if len(t.losses) > 0 {
		lastLoss = t.losses[len(t.losses)-1]
	}

	checkpoint := &nn.Checkpoint[B]{
		Model:     t.model,
		Optimizer: t.optimizer,
		Epoch:     t.totalEpochs,
		Loss:      lastLoss,
		Losses:    t.losses,
		ValLosses: t.valLosses,
		CreatedAt: time.Now().UTC(),
	}

	if err := checkpoint.Save(path); err != nil {
		return err
	}

	t.logger.Info("checkpoint saved",
		zap.String("path", path),
		zap.Int("epoch", t.totalEpochs))
	return nil
}

// LoadCheckpoint restores model parameters, optimizer state, the epoch
// counter and both loss histories from path. Training resumed afterwards
// continues numbering epochs where the checkpoint stopped.
func (t *Trainer[B]) LoadCheckpoint(path string) error {
	checkpoint, err := nn.LoadCheckpoint(path, t.backend, t.model, t.optimizer)
	if err != nil {
		return err
	}

	t.totalEpochs = checkpoint.Epoch
	t.losses = checkpoint.Losses
	t.valLosses = checkpoint.ValLosses

	t.logger.Info("checkpoint loaded",
		zap.String("path", path),
		zap.Int("epoch", t.totalEpochs))
	return nil
}

// Losses returns the per-epoch training loss history.
func (t *Trainer[B]) Losses() []float64 {
	return t.losses
}

// ValLosses returns the per-epoch validation loss history.
func (t *Trainer[B]) ValLosses() []float64 {
	return t.valLosses
}

// TotalEpochs returns the number of epochs completed across all Fit calls.
func (t *Trainer[B]) TotalEpochs() int {
	return t.totalEpochs
}

// Model returns the trained model.
func (t *Trainer[B]) Model() nn.Module[B] {
	return t.model
}
