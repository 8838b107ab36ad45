// Copyright 2025 Stride ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training models.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	import (
//	    "github.com/stride-ml/stride/optim"
//	    "github.com/stride-ml/stride/nn"
//	    "github.com/stride-ml/stride/autodiff"
//	    "github.com/stride-ml/stride/backend/cpu"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    model := nn.NewLinear(1, 1, backend)
//	    criterion := nn.NewMSELoss(backend)
//
//	    // Create optimizer
//	    optimizer := optim.NewSGD(
//	        model.Parameters(),
//	        optim.SGDConfig{LR: 0.1},
//	        backend,
//	    )
//
//	    // Training loop
//	    for epoch := range 200 {
//	        loss := criterion.Forward(model.Forward(x), y)
//
//	        grads := autodiff.Backward(loss, backend)
//	        optimizer.Step(grads)
//	        optimizer.ZeroGrad()
//	    }
//	}
//
// # Optimizers
//
// SGD (Stochastic Gradient Descent):
//
//	optimizer := optim.NewSGD(
//	    model.Parameters(),
//	    optim.SGDConfig{
//	        LR:       0.01,
//	        Momentum: 0.9,
//	    },
//	    backend,
//	)
//
// Adam (Adaptive Moment Estimation):
//
//	optimizer := optim.NewAdam(
//	    model.Parameters(),
//	    optim.AdamConfig{LR: 0.001},
//	    backend,
//	)
//
// Both optimizers expose StateDict/LoadStateDict so their internal state
// (momentum buffers, Adam moments) survives checkpoint round trips.
package optim
