// Package nn implements neural network modules for the Stride framework.
//
// This package provides the building blocks the training harness composes:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Linear: Fully connected layer
//   - Loss functions: MSE
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/stride-ml/stride/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//   - StateDict/LoadStateDict: Serialize and restore parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Linear expects [batch_size, in_features].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// This includes weights, biases, and any nested module parameters.
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]

	// StateDict returns a map of parameter names to raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads parameters from a state dictionary.
	// Shapes and dtypes must match the module's current parameters.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// Loss is a loss function over predictions and targets.
// Loss functions have no trainable parameters; the returned tensor is a
// single-element loss value computed through the backend so gradient
// recording sees every step.
type Loss[B tensor.Backend] interface {
	Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}
