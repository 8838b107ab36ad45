package train_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stride-ml/stride/internal/autodiff"
	"github.com/stride-ml/stride/internal/backend/cpu"
	"github.com/stride-ml/stride/internal/data"
	"github.com/stride-ml/stride/internal/nn"
	"github.com/stride-ml/stride/internal/optim"
	"github.com/stride-ml/stride/internal/summary"
	"github.com/stride-ml/stride/internal/train"

	"go.uber.org/zap"
)

type testBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// fixture bundles everything a training test needs.
type fixture struct {
	backend   testBackend
	model     *nn.Linear[testBackend]
	optimizer *optim.SGD[testBackend]
	trainer   *train.Trainer[testBackend]
	train     *data.Loader[testBackend]
	val       *data.Loader[testBackend]
}

// newFixture builds a seeded linear-regression training setup:
// 100 samples of y = 1 + 2x + noise, split 80/20, batch size 16.
func newFixture(t *testing.T, lr float32) *fixture {
	t.Helper()

	backend := autodiff.New(cpu.New())

	nn.Seed(42)
	model := nn.NewLinear(1, 1, backend)
	lossFn := nn.NewMSELoss(backend)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: lr}, backend)

	ds, err := data.GenerateLinear(data.LinearConfig{
		N: 100, TrueW: 2, TrueB: 1, NoiseStd: 0.1, Seed: 42,
	})
	if err != nil {
		t.Fatalf("GenerateLinear failed: %v", err)
	}

	trainSet, valSet, err := data.RandomSplit(ds, 0.8, 42)
	if err != nil {
		t.Fatalf("RandomSplit failed: %v", err)
	}

	trainLoader := data.NewLoader(trainSet, 16, true, backend)
	valLoader := data.NewLoader(valSet, 16, false, backend)

	trainer := train.New[testBackend](model, lossFn, optimizer, backend)
	trainer.SetLoaders(trainLoader, valLoader)
	trainer.SetSeed(42)

	return &fixture{
		backend:   backend,
		model:     model,
		optimizer: optimizer,
		trainer:   trainer,
		train:     trainLoader,
		val:       valLoader,
	}
}

func TestTrainer_FitConverges(t *testing.T) {
	f := newFixture(t, 0.1)

	if err := f.trainer.Fit(150); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	losses := f.trainer.Losses()
	if len(losses) != 150 {
		t.Fatalf("got %d loss entries, want 150", len(losses))
	}

	// With noise std 0.1 the optimal MSE is about 0.01
	final := losses[len(losses)-1]
	if final > 0.05 {
		t.Errorf("final training loss %v, want < 0.05", final)
	}
	if final >= losses[0] && losses[0] > 0.05 {
		t.Errorf("loss did not decrease: first %v, last %v", losses[0], final)
	}

	// Parameters should recover the generating line y = 1 + 2x
	w := float64(f.model.Weight().Tensor().Raw().AsFloat32()[0])
	b := float64(f.model.Bias().Tensor().Raw().AsFloat32()[0])
	if math.Abs(w-2) > 0.2 {
		t.Errorf("learned weight %v, want close to 2", w)
	}
	if math.Abs(b-1) > 0.2 {
		t.Errorf("learned bias %v, want close to 1", b)
	}
}

func TestTrainer_HistoriesAccumulateAcrossFits(t *testing.T) {
	f := newFixture(t, 0.1)

	if err := f.trainer.Fit(3); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := f.trainer.Fit(2); err != nil {
		t.Fatalf("second Fit failed: %v", err)
	}

	if f.trainer.TotalEpochs() != 5 {
		t.Errorf("TotalEpochs() = %d, want 5", f.trainer.TotalEpochs())
	}
	if len(f.trainer.Losses()) != 5 {
		t.Errorf("len(Losses()) = %d, want 5", len(f.trainer.Losses()))
	}
	if len(f.trainer.ValLosses()) != 5 {
		t.Errorf("len(ValLosses()) = %d, want 5", len(f.trainer.ValLosses()))
	}
}

func TestTrainer_NoValidationLoader(t *testing.T) {
	f := newFixture(t, 0.1)
	f.trainer.SetLoaders(f.train, nil)

	if err := f.trainer.Fit(3); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if len(f.trainer.Losses()) != 3 {
		t.Errorf("len(Losses()) = %d, want 3", len(f.trainer.Losses()))
	}
	if len(f.trainer.ValLosses()) != 0 {
		t.Errorf("val losses recorded without a val loader: %v", f.trainer.ValLosses())
	}
}

func TestTrainer_FitWithoutLoaders(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := nn.NewLinear(1, 1, backend)
	trainer := train.New[testBackend](model, nn.NewMSELoss(backend),
		optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1}, backend), backend)

	if err := trainer.Fit(1); err == nil {
		t.Error("expected error when no training loader is set")
	}
	if err := trainer.Fit(0); err == nil {
		t.Error("expected error for zero epochs")
	}
}

func TestTrainer_ValStepDoesNotMutateParameters(t *testing.T) {
	f := newFixture(t, 0.1)

	wBefore := f.model.Weight().Tensor().Raw().AsFloat32()[0]
	bBefore := f.model.Bias().Tensor().Raw().AsFloat32()[0]

	for _, batch := range f.val.Batches() {
		f.trainer.ValStep(batch.X, batch.Y)
	}

	if got := f.model.Weight().Tensor().Raw().AsFloat32()[0]; got != wBefore {
		t.Errorf("weight changed during validation: %v -> %v", wBefore, got)
	}
	if got := f.model.Bias().Tensor().Raw().AsFloat32()[0]; got != bBefore {
		t.Errorf("bias changed during validation: %v -> %v", bBefore, got)
	}
	if f.backend.GetTape().NumOps() != 0 {
		t.Errorf("validation recorded %d tape operations", f.backend.GetTape().NumOps())
	}
}

func TestTrainer_Predict(t *testing.T) {
	f := newFixture(t, 0.1)

	// Pin the model to y = 2x + 1
	copy(f.model.Weight().Tensor().Raw().AsFloat32(), []float32{2})
	copy(f.model.Bias().Tensor().Raw().AsFloat32(), []float32{1})

	preds, err := f.trainer.Predict([]float32{0, 1, 2})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	want := []float32{1, 3, 5}
	for i := range want {
		if diff := preds[i] - want[i]; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("pred[%d] = %v, want %v", i, preds[i], want[i])
		}
	}

	if _, err := f.trainer.Predict(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestTrainer_CheckpointResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.stride")

	f1 := newFixture(t, 0.1)
	if err := f1.trainer.Fit(5); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := f1.trainer.SaveCheckpoint(path); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	// Fresh everything, then load
	f2 := newFixture(t, 0.1)
	if err := f2.trainer.LoadCheckpoint(path); err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}

	if f2.trainer.TotalEpochs() != 5 {
		t.Errorf("restored TotalEpochs() = %d, want 5", f2.trainer.TotalEpochs())
	}
	if len(f2.trainer.Losses()) != 5 {
		t.Errorf("restored %d losses, want 5", len(f2.trainer.Losses()))
	}
	for i, loss := range f1.trainer.Losses() {
		if f2.trainer.Losses()[i] != loss {
			t.Errorf("loss history mismatch at %d: %v != %v", i, f2.trainer.Losses()[i], loss)
		}
	}

	w1 := f1.model.Weight().Tensor().Raw().AsFloat32()[0]
	w2 := f2.model.Weight().Tensor().Raw().AsFloat32()[0]
	if w1 != w2 {
		t.Errorf("restored weight %v, want %v", w2, w1)
	}

	// Resumed training continues epoch numbering
	if err := f2.trainer.Fit(2); err != nil {
		t.Fatalf("resumed Fit failed: %v", err)
	}
	if f2.trainer.TotalEpochs() != 7 {
		t.Errorf("TotalEpochs() after resume = %d, want 7", f2.trainer.TotalEpochs())
	}
}

func TestTrainer_SummaryWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")

	w, err := summary.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	f := newFixture(t, 0.1)
	f.trainer.SetSummaryWriter(w)

	if err := f.trainer.Fit(2); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestResolveDevice(t *testing.T) {
	logger := zap.NewNop()

	if got := train.ResolveDevice("cpu", logger); got != "cpu" {
		t.Errorf("ResolveDevice(cpu) = %q, want cpu", got)
	}

	// With or without a GPU present, these must resolve to a valid device.
	for _, requested := range []string{"auto", "webgpu"} {
		got := train.ResolveDevice(requested, logger)
		if got != "cpu" && got != "webgpu" {
			t.Errorf("ResolveDevice(%q) = %q", requested, got)
		}
	}
}
