package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - CPU: Pure Go implementation with broadcast support
//   - WebGPU: GPU compute via go-webgpu (elementwise + matmul)
//
// The operation set is scoped to what regression training exercises:
// elementwise arithmetic, matrix multiplication, shape manipulation,
// full reductions and scalar arithmetic for optimizer updates.
type Backend interface {
	// Element-wise binary operations (with NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations (2D)
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Reduction operations (full reduction to a single-element tensor)
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
