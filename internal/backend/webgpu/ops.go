package webgpu

import (
	"github.com/stride-ml/stride/internal/tensor"
)

// Add performs element-wise addition.
//
// Same-shape inputs run on GPU; broadcasting delegates to the CPU host.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(other.Shape()) {
		return b.host.Add(a, other)
	}
	result, err := b.runBinaryOp(a, other, "add", addShader)
	if err != nil {
		panic("webgpu: Add: " + err.Error())
	}
	return result
}

// Sub performs element-wise subtraction.
func (b *Backend) Sub(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(other.Shape()) {
		return b.host.Sub(a, other)
	}
	result, err := b.runBinaryOp(a, other, "sub", subShader)
	if err != nil {
		panic("webgpu: Sub: " + err.Error())
	}
	return result
}

// Mul performs element-wise multiplication.
func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(other.Shape()) {
		return b.host.Mul(a, other)
	}
	result, err := b.runBinaryOp(a, other, "mul", mulShader)
	if err != nil {
		panic("webgpu: Mul: " + err.Error())
	}
	return result
}

// Div performs element-wise division.
func (b *Backend) Div(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(other.Shape()) {
		return b.host.Div(a, other)
	}
	result, err := b.runBinaryOp(a, other, "div", divShader)
	if err != nil {
		panic("webgpu: Div: " + err.Error())
	}
	return result
}

// MatMul performs 2D matrix multiplication on GPU.
func (b *Backend) MatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	result, err := b.runMatMul(a, other)
	if err != nil {
		panic("webgpu: MatMul: " + err.Error())
	}
	return result
}

// Transpose permutes tensor dimensions.
//
// The default 2D transpose runs on GPU; other permutations delegate to
// the CPU host.
func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	if len(t.Shape()) == 2 && (len(axes) == 0 || (len(axes) == 2 && axes[0] == 1 && axes[1] == 0)) {
		result, err := b.runTranspose(t)
		if err != nil {
			panic("webgpu: Transpose: " + err.Error())
		}
		return result
	}
	return b.host.Transpose(t, axes...)
}

// Reshape returns a tensor with a new shape. Metadata-only, no GPU work.
func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	return b.host.Reshape(t, newShape)
}

// Sum reduces all elements to a single-element tensor on the host.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return b.host.Sum(x)
}

// Mean reduces all elements to their mean on the host.
func (b *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	return b.host.Mean(x)
}

// MulScalar multiplies every element by a scalar on the host.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.host.MulScalar(x, scalar)
}

// AddScalar adds a scalar to every element on the host.
func (b *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return b.host.AddScalar(x, scalar)
}
