package autodiff

import (
	"math"
	"testing"

	"github.com/stride-ml/stride/internal/backend/cpu"
	"github.com/stride-ml/stride/internal/tensor"
)

type testBackend = *AutodiffBackend[*cpu.CPUBackend]

func newTestBackend() testBackend {
	return New(cpu.New())
}

func assertGradEqual(t *testing.T, expected []float32, grad *tensor.RawTensor, msg string) {
	t.Helper()
	if grad == nil {
		t.Fatalf("%s: gradient is nil", msg)
	}
	got := grad.AsFloat32()
	if len(got) != len(expected) {
		t.Fatalf("%s: gradient has %d elements, want %d", msg, len(got), len(expected))
	}
	for i := range expected {
		if math.Abs(float64(expected[i]-got[i])) > 1e-5 {
			t.Errorf("%s[%d]: expected %v, got %v", msg, i, expected[i], got[i])
		}
	}
}

func TestBackendName(t *testing.T) {
	backend := newTestBackend()
	if backend.Name() != "Autodiff(CPU)" {
		t.Errorf("Name() = %q, want Autodiff(CPU)", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", backend.Device())
	}
}

func TestMulGradient(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	// y = x * x, dy/dx = 2x
	x, _ := tensor.FromSlice([]float32{2, 3}, tensor.Shape{2}, backend)
	y := x.Mul(x)

	grads := Backward(y, backend)

	assertGradEqual(t, []float32{4, 6}, grads[x.Raw()], "dy/dx")
}

func TestAddSubGradient(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	b, _ := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2}, backend)

	// y = (a + b) - b, dy/da = 1, dy/db = 0
	y := a.Add(b).Sub(b)

	grads := Backward(y, backend)

	assertGradEqual(t, []float32{1, 1}, grads[a.Raw()], "dy/da")
	assertGradEqual(t, []float32{0, 0}, grads[b.Raw()], "dy/db")
}

func TestDivGradient(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	a, _ := tensor.FromSlice([]float32{6}, tensor.Shape{1}, backend)
	b, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)

	y := a.Div(b)

	grads := Backward(y, backend)

	// d(a/b)/da = 1/b = 0.5, d(a/b)/db = -a/b² = -1.5
	assertGradEqual(t, []float32{0.5}, grads[a.Raw()], "dy/da")
	assertGradEqual(t, []float32{-1.5}, grads[b.Raw()], "dy/db")
}

func TestMatMulGradient(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	b, _ := tensor.FromSlice([]float32{5, 6, 7, 8}, tensor.Shape{2, 2}, backend)

	y := a.MatMul(b)

	grads := Backward(y, backend)

	// With outputGrad = ones: grad_a = ones @ b^T, grad_b = a^T @ ones
	assertGradEqual(t, []float32{11, 15, 11, 15}, grads[a.Raw()], "dy/da")
	assertGradEqual(t, []float32{4, 4, 6, 6}, grads[b.Raw()], "dy/db")
}

func TestBroadcastGradientReduced(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	// Bias broadcast across the batch: gradient must sum over batch rows
	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3, 1}, backend)
	bias, _ := tensor.FromSlice([]float32{10}, tensor.Shape{1, 1}, backend)

	y := x.Add(bias)

	grads := Backward(y, backend)

	assertGradEqual(t, []float32{1, 1, 1}, grads[x.Raw()], "dy/dx")
	assertGradEqual(t, []float32{3}, grads[bias.Raw()], "dy/dbias")
}

func TestMeanGradient(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4}, backend)

	y := x.Mean()

	grads := Backward(y, backend)

	// d(mean)/dx_i = 1/N
	assertGradEqual(t, []float32{0.25, 0.25, 0.25, 0.25}, grads[x.Raw()], "dmean/dx")
}

func TestSumGradient(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)

	y := x.Sum()

	grads := Backward(y, backend)

	assertGradEqual(t, []float32{1, 1, 1}, grads[x.Raw()], "dsum/dx")
}

func TestTransposeGradient(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	w, _ := tensor.FromSlice([]float32{1, 1, 1, 1, 1, 1}, tensor.Shape{2, 3}, backend)

	// y = x @ w^T: gradient must flow back through the transpose to w
	y := x.MatMul(w.T())

	grads := Backward(y, backend)

	if grads[w.Raw()] == nil {
		t.Fatal("gradient did not flow back through transpose to original tensor")
	}
	if !grads[w.Raw()].Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("grad shape = %v, want [2 3]", grads[w.Raw()].Shape())
	}
}

func TestMSELossGradient(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	// One step of single-feature linear regression:
	// yhat = x @ w + b, loss = mean((yhat - y)²)
	x, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 1}, backend)
	y, _ := tensor.FromSlice([]float32{3, 5}, tensor.Shape{2, 1}, backend)
	w, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1, 1}, backend)
	bias, _ := tensor.FromSlice([]float32{0}, tensor.Shape{1, 1}, backend)

	yhat := x.MatMul(w).Add(bias)
	diff := yhat.Sub(y)
	loss := diff.Mul(diff).Mean()

	grads := Backward(loss, backend)

	// Residuals: yhat - y = [-2, -3]
	// dL/dw = mean-scaled: 2/N * Σ x_i·r_i = (2*1*(-2) + 2*2*(-3))/2 = -8
	// dL/db = 2/N * Σ r_i = (2*(-2) + 2*(-3))/2 = -5
	assertGradEqual(t, []float32{-8}, grads[w.Raw()], "dL/dw")
	assertGradEqual(t, []float32{-5}, grads[bias.Raw()], "dL/db")
}

func TestTapeClearAndRecording(t *testing.T) {
	backend := newTestBackend()
	tape := backend.Tape()

	a, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1}, backend)
	b, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)

	// Not recording: nothing lands on the tape
	a.Add(b)
	if tape.NumOps() != 0 {
		t.Errorf("NumOps() = %d before StartRecording, want 0", tape.NumOps())
	}

	tape.StartRecording()
	a.Add(b)
	if tape.NumOps() != 1 {
		t.Errorf("NumOps() = %d after recorded op, want 1", tape.NumOps())
	}

	tape.Clear()
	if tape.NumOps() != 0 {
		t.Errorf("NumOps() = %d after Clear, want 0", tape.NumOps())
	}
	if !tape.IsRecording() {
		t.Error("Clear should preserve recording state")
	}
}

func TestRecordedInputsNotMutatedInplace(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	b, _ := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2}, backend)

	c := a.Add(b)

	// The wrapped CPU backend does inplace adds on unique buffers;
	// the autodiff decorator must prevent that to keep the graph intact.
	assertGradEqual(t, []float32{1, 2}, a.Raw(), "input a preserved")
	if c.Raw() == a.Raw() {
		t.Error("result aliases input despite gradient recording")
	}
}
