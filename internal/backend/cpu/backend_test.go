package cpu

import (
	"testing"

	"github.com/stride-ml/stride/internal/tensor"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return New()
}

// Helper to check float32 slices are equal within epsilon.
func float32SliceEqual(a, b []float32) bool {
	const epsilon = 1e-6
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > epsilon {
			return false
		}
	}
	return true
}

func rawFromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

// TestCPUBackend_Add tests element-wise addition.
func TestCPUBackend_Add(t *testing.T) {
	backend := newTestBackend()

	t.Run("SameShape", func(t *testing.T) {
		a := rawFromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		b := rawFromSlice(t, []float32{10, 11, 12, 13, 14, 15}, tensor.Shape{2, 3})

		result := backend.Add(a, b)

		expected := []float32{11, 13, 15, 17, 19, 21}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Broadcast", func(t *testing.T) {
		a := rawFromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
		bias := rawFromSlice(t, []float32{10, 20}, tensor.Shape{1, 2})

		result := backend.Add(a, bias)

		if !result.Shape().Equal(tensor.Shape{3, 2}) {
			t.Fatalf("broadcast shape = %v, want [3 2]", result.Shape())
		}
		expected := []float32{11, 22, 13, 24, 15, 26}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("broadcast Add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("InplaceWhenUnique", func(t *testing.T) {
		a := rawFromSlice(t, []float32{1, 2}, tensor.Shape{2})
		b := rawFromSlice(t, []float32{3, 4}, tensor.Shape{2})

		result := backend.Add(a, b)

		// a is unique: the backend reuses its buffer
		if result != a {
			t.Error("expected inplace result when left operand is unique")
		}
	})

	t.Run("NoInplaceWhenShared", func(t *testing.T) {
		a := rawFromSlice(t, []float32{1, 2}, tensor.Shape{2})
		b := rawFromSlice(t, []float32{3, 4}, tensor.Shape{2})

		restore := a.ForceNonUnique()
		defer restore()

		result := backend.Add(a, b)

		if result == a {
			t.Error("inplace result despite shared buffer")
		}
		// Original must be untouched
		if !float32SliceEqual(a.AsFloat32(), []float32{1, 2}) {
			t.Errorf("shared input mutated: %v", a.AsFloat32())
		}
	})
}

func TestCPUBackend_SubMulDiv(t *testing.T) {
	backend := newTestBackend()

	a := rawFromSlice(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})
	b := rawFromSlice(t, []float32{2, 4, 5, 8}, tensor.Shape{2, 2})

	// Protect a from inplace reuse so all three ops see the same input
	defer a.ForceNonUnique()()

	sub := backend.Sub(a, b)
	if !float32SliceEqual(sub.AsFloat32(), []float32{8, 16, 25, 32}) {
		t.Errorf("Sub failed: got %v", sub.AsFloat32())
	}

	mul := backend.Mul(a, b)
	if !float32SliceEqual(mul.AsFloat32(), []float32{20, 80, 150, 320}) {
		t.Errorf("Mul failed: got %v", mul.AsFloat32())
	}

	div := backend.Div(a, b)
	if !float32SliceEqual(div.AsFloat32(), []float32{5, 5, 6, 5}) {
		t.Errorf("Div failed: got %v", div.AsFloat32())
	}
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := newTestBackend()

	a := rawFromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := rawFromSlice(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	result := backend.MatMul(a, b)

	if !result.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("MatMul shape = %v, want [2 2]", result.Shape())
	}
	expected := []float32{58, 64, 139, 154}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("MatMul failed: got %v, expected %v", result.AsFloat32(), expected)
	}
}

func TestCPUBackend_MatMulShapeMismatch(t *testing.T) {
	backend := newTestBackend()

	a := rawFromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := rawFromSlice(t, []float32{1, 2, 3}, tensor.Shape{3, 1})

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for incompatible matmul shapes")
		}
	}()
	backend.MatMul(a, b)
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := newTestBackend()

	a := rawFromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	result := backend.Transpose(a, 1, 0)

	if !result.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Transpose shape = %v, want [3 2]", result.Shape())
	}
	expected := []float32{1, 4, 2, 5, 3, 6}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("Transpose failed: got %v, expected %v", result.AsFloat32(), expected)
	}
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := newTestBackend()

	a := rawFromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6})

	result := backend.Reshape(a, tensor.Shape{2, 3})

	if !result.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("Reshape shape = %v, want [2 3]", result.Shape())
	}
	if !float32SliceEqual(result.AsFloat32(), a.AsFloat32()) {
		t.Error("Reshape changed data")
	}
}

func TestCPUBackend_SumMean(t *testing.T) {
	backend := newTestBackend()

	a := rawFromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	sum := backend.Sum(a)
	if !sum.Shape().Equal(tensor.Shape{1}) {
		t.Fatalf("Sum shape = %v, want [1]", sum.Shape())
	}
	if sum.AsFloat32()[0] != 10 {
		t.Errorf("Sum = %v, want 10", sum.AsFloat32()[0])
	}

	mean := backend.Mean(a)
	if mean.AsFloat32()[0] != 2.5 {
		t.Errorf("Mean = %v, want 2.5", mean.AsFloat32()[0])
	}
}

func TestCPUBackend_ScalarOps(t *testing.T) {
	backend := newTestBackend()

	a := rawFromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})

	scaled := backend.MulScalar(a, float32(2))
	if !float32SliceEqual(scaled.AsFloat32(), []float32{2, 4, 6}) {
		t.Errorf("MulScalar failed: got %v", scaled.AsFloat32())
	}

	shifted := backend.AddScalar(a, float32(10))
	if !float32SliceEqual(shifted.AsFloat32(), []float32{11, 12, 13}) {
		t.Errorf("AddScalar failed: got %v", shifted.AsFloat32())
	}
}
