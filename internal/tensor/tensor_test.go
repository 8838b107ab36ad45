package tensor

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
)

// Test helpers

func assertEqualFloat32(t *testing.T, expected, actual float32, msg string) {
	t.Helper()
	if math.Abs(float64(expected-actual)) > 1e-6 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestInferDataType(t *testing.T) {
	if dt := inferDataType(float32(0)); dt != Float32 {
		t.Errorf("inferDataType(float32) = %v, want Float32", dt)
	}
	if dt := inferDataType(float64(0)); dt != Float64 {
		t.Errorf("inferDataType(float64) = %v, want Float64", dt)
	}
}

// RawTensor Tests

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{3, 4}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	assertEqualShape(t, Shape{3, 4}, raw.Shape(), "NewRaw shape")
	if raw.NumElements() != 12 {
		t.Errorf("NumElements() = %d, want 12", raw.NumElements())
	}
	if raw.ByteSize() != 48 {
		t.Errorf("ByteSize() = %d, want 48", raw.ByteSize())
	}

	// Zero-initialized
	for i, v := range raw.AsFloat32() {
		if v != 0 {
			t.Errorf("element %d = %v, want 0", i, v)
		}
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{3, -1}, Float32, CPU); err == nil {
		t.Error("expected error for negative dimension")
	}
	if _, err := NewRaw(Shape{0}, Float32, CPU); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestRawTensorRefCounting(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)
	if !raw.IsUnique() {
		t.Error("new tensor should be unique")
	}

	clone := raw.Clone()
	if raw.IsUnique() || clone.IsUnique() {
		t.Error("tensor should not be unique after Clone")
	}

	clone.Release()
	if !raw.IsUnique() {
		t.Error("tensor should be unique after clone released")
	}
}

func TestForceNonUnique(t *testing.T) {
	raw, _ := NewRaw(Shape{4}, Float32, CPU)

	restore := raw.ForceNonUnique()
	if raw.IsUnique() {
		t.Error("ForceNonUnique should prevent uniqueness")
	}

	restore()
	if !raw.IsUnique() {
		t.Error("restore should make tensor unique again")
	}
}

// Tensor Tests

func TestFromSlice(t *testing.T) {
	backend := NewMockBackend()
	data := []float32{1, 2, 3, 4, 5, 6}

	tn, err := FromSlice(data, Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	assertEqualShape(t, Shape{2, 3}, tn.Shape(), "FromSlice shape")
	for i, v := range data {
		assertEqualFloat32(t, v, tn.Data()[i], fmt.Sprintf("FromSlice[%d]", i))
	}
}

func TestFromSliceShapeMismatch(t *testing.T) {
	backend := NewMockBackend()
	if _, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2}, backend); err == nil {
		t.Error("expected error for shape/data mismatch")
	}
}

func TestTensorAtSet(t *testing.T) {
	backend := NewMockBackend()
	tn := Zeros[float32](Shape{3, 4}, backend)

	tn.Set(42, 1, 2)
	assertEqualFloat32(t, 42, tn.At(1, 2), "At(1, 2)")
	assertEqualFloat32(t, 0, tn.At(0, 0), "At(0, 0)")
}

func TestTensorItem(t *testing.T) {
	backend := NewMockBackend()

	tn, _ := FromSlice([]float32{3.5}, Shape{1}, backend)
	assertEqualFloat32(t, 3.5, tn.Item(), "Item")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Item() on multi-element tensor should panic")
		}
	}()
	multi, _ := FromSlice([]float32{1, 2}, Shape{2}, backend)
	multi.Item()
}

func TestTensorClone(t *testing.T) {
	backend := NewMockBackend()
	tn, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)

	clone := tn.Clone()
	assertEqualShape(t, tn.Shape(), clone.Shape(), "Clone shape")

	// Clone shares the buffer via refcounting
	if tn.Raw().IsUnique() {
		t.Error("original should not be unique after Clone")
	}
}

func TestTensorDetach(t *testing.T) {
	backend := NewMockBackend()
	tn, _ := FromSlice([]float32{1, 2}, Shape{2}, backend)
	tn.RequireGrad()

	detached := tn.Detach()
	if detached.RequiresGrad() {
		t.Error("detached tensor should not require grad")
	}
	if &tn.Data()[0] != &detached.Data()[0] {
		t.Error("Detach should share underlying data")
	}
}

// Creation Tests

func TestZerosOnesFull(t *testing.T) {
	backend := NewMockBackend()

	z := Zeros[float32](Shape{2, 3}, backend)
	for i, v := range z.Data() {
		assertEqualFloat32(t, 0, v, fmt.Sprintf("Zeros[%d]", i))
	}

	o := Ones[float64](Shape{4}, backend)
	for i, v := range o.Data() {
		if v != 1 {
			t.Errorf("Ones[%d] = %v, want 1", i, v)
		}
	}

	f := Full[float32](Shape{3}, 2.5, backend)
	for i, v := range f.Data() {
		assertEqualFloat32(t, 2.5, v, fmt.Sprintf("Full[%d]", i))
	}
}

func TestRandnSourceReproducible(t *testing.T) {
	backend := NewMockBackend()

	a := RandnSource[float32](Shape{100}, rand.New(rand.NewSource(42)), backend)
	b := RandnSource[float32](Shape{100}, rand.New(rand.NewSource(42)), backend)

	for i := range a.Data() {
		if a.Data()[i] != b.Data()[i] {
			t.Fatalf("same seed should produce same values, differ at %d", i)
		}
	}

	c := RandnSource[float32](Shape{100}, rand.New(rand.NewSource(7)), backend)
	same := true
	for i := range a.Data() {
		if a.Data()[i] != c.Data()[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds should produce different values")
	}
}

// Op wrapper Tests (via MockBackend)

func TestTensorAdd(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)
	b, _ := FromSlice([]float32{10, 20, 30, 40}, Shape{2, 2}, backend)

	c := a.Add(b)

	expected := []float32{11, 22, 33, 44}
	for i, exp := range expected {
		assertEqualFloat32(t, exp, c.Data()[i], fmt.Sprintf("Add[%d]", i))
	}
}

func TestTensorAddBroadcast(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{3, 2}, backend)
	bias, _ := FromSlice([]float32{10, 20}, Shape{1, 2}, backend)

	c := a.Add(bias)

	assertEqualShape(t, Shape{3, 2}, c.Shape(), "broadcast shape")
	expected := []float32{11, 22, 13, 24, 15, 26}
	for i, exp := range expected {
		assertEqualFloat32(t, exp, c.Data()[i], fmt.Sprintf("AddBroadcast[%d]", i))
	}
}

func TestTensorMatMul(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)
	b, _ := FromSlice([]float32{7, 8, 9, 10, 11, 12}, Shape{3, 2}, backend)

	c := a.MatMul(b)

	assertEqualShape(t, Shape{2, 2}, c.Shape(), "MatMul shape")
	expected := []float32{58, 64, 139, 154}
	for i, exp := range expected {
		assertEqualFloat32(t, exp, c.Data()[i], fmt.Sprintf("MatMul[%d]", i))
	}
}

func TestTensorTranspose2D(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)

	at := a.T()

	assertEqualShape(t, Shape{3, 2}, at.Shape(), "T shape")
	assertEqualFloat32(t, 1, at.At(0, 0), "T[0,0]")
	assertEqualFloat32(t, 4, at.At(0, 1), "T[0,1]")
	assertEqualFloat32(t, 2, at.At(1, 0), "T[1,0]")
	assertEqualFloat32(t, 6, at.At(2, 1), "T[2,1]")
}

func TestTensorMean(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, backend)

	mean := a.Mean()

	assertEqualShape(t, Shape{1}, mean.Shape(), "Mean shape")
	assertEqualFloat32(t, 2.5, mean.Item(), "Mean value")
}

func TestTensorSum(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{4}, backend)

	sum := a.Sum()

	assertEqualFloat32(t, 10, sum.Item(), "Sum value")
}

func TestTensorScalarOps(t *testing.T) {
	backend := NewMockBackend()
	a, _ := FromSlice([]float32{1, 2, 3}, Shape{3}, backend)

	scaled := a.MulScalar(2)
	expected := []float32{2, 4, 6}
	for i, exp := range expected {
		assertEqualFloat32(t, exp, scaled.Data()[i], fmt.Sprintf("MulScalar[%d]", i))
	}

	shifted := a.AddScalar(10)
	expected = []float32{11, 12, 13}
	for i, exp := range expected {
		assertEqualFloat32(t, exp, shifted.Data()[i], fmt.Sprintf("AddScalar[%d]", i))
	}
}
