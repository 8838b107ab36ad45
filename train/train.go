// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the high-level training loop for Stride models.
//
// The Trainer binds a model, a loss function and an optimizer, then drives
// epochs of mini-batch gradient descent with optional validation,
// checkpointing and scalar logging.
//
// Example:
//
//	import (
//	    "github.com/stride-ml/stride/autodiff"
//	    "github.com/stride-ml/stride/backend/cpu"
//	    "github.com/stride-ml/stride/data"
//	    "github.com/stride-ml/stride/nn"
//	    "github.com/stride-ml/stride/optim"
//	    "github.com/stride-ml/stride/train"
//	)
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewLinear(1, 1, backend)
//	criterion := nn.NewMSELoss(backend)
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend)
//
//	trainer := train.New[*autodiff.Backend[*cpu.Backend]](model, criterion, optimizer, backend)
//	trainer.SetLoaders(trainLoader, valLoader)
//	trainer.SetSeed(42)
//	if err := trainer.Fit(200); err != nil {
//	    log.Fatal(err)
//	}
package train

import (
	"go.uber.org/zap"

	"github.com/stride-ml/stride/internal/autodiff"
	"github.com/stride-ml/stride/internal/nn"
	"github.com/stride-ml/stride/internal/optim"
	"github.com/stride-ml/stride/internal/train"
)

// Trainer drives the training loop for a model/loss/optimizer triple.
type Trainer[B autodiff.BackwardCapable] = train.Trainer[B]

// Option configures a Trainer.
type Option = train.Option

// WithLogger sets the structured logger used during Fit.
// By default the trainer is silent.
func WithLogger(logger *zap.Logger) Option {
	return train.WithLogger(logger)
}

// New creates a Trainer binding the model, loss function and optimizer.
func New[B autodiff.BackwardCapable](
	model nn.Module[B],
	lossFn nn.Loss[B],
	optimizer optim.Optimizer,
	backend B,
	opts ...Option,
) *Trainer[B] {
	return train.New(model, lossFn, optimizer, backend, opts...)
}

// ResolveDevice maps a requested device name ("cpu", "webgpu" or "auto")
// to an available one, falling back to CPU when no GPU adapter is present.
func ResolveDevice(requested string, logger *zap.Logger) string {
	return train.ResolveDevice(requested, logger)
}
