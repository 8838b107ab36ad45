package ops

import "github.com/stride-ml/stride/internal/tensor"

// SumOp records a full reduction: output = sum(input).
//
// Backward:
//
//	∂L/∂input_i = ∂L/∂output  (the scalar gradient broadcasts to every element)
type SumOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{input: input, output: output}
}

// Backward broadcasts the scalar output gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := scalarValue(outputGrad)
	return []*tensor.RawTensor{fillLike(op.input, g)}
}

// Inputs returns the input tensors.
func (op *SumOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *SumOp) Output() *tensor.RawTensor {
	return op.output
}

// MeanOp records a full reduction: output = mean(input).
//
// Backward:
//
//	∂L/∂input_i = ∂L/∂output / N
//
// where N is the number of input elements. This is what makes a
// mean-squared-error loss differentiable end to end.
type MeanOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(input, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{input: input, output: output}
}

// Backward broadcasts the scalar output gradient divided by N to the input shape.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := scalarValue(outputGrad) / float64(op.input.NumElements())
	return []*tensor.RawTensor{fillLike(op.input, g)}
}

// Inputs returns the input tensors.
func (op *MeanOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the output tensor.
func (op *MeanOp) Output() *tensor.RawTensor {
	return op.output
}
