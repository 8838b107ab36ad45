package data_test

import (
	"math"
	"testing"

	"github.com/stride-ml/stride/internal/backend/cpu"
	"github.com/stride-ml/stride/internal/data"
	"github.com/stride-ml/stride/internal/tensor"
)

func TestTensorDataset(t *testing.T) {
	xs := [][]float32{{1}, {2}, {3}}
	ys := [][]float32{{10}, {20}, {30}}

	ds, err := data.NewTensorDataset(xs, ys)
	if err != nil {
		t.Fatalf("NewTensorDataset failed: %v", err)
	}

	if ds.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ds.Len())
	}

	x, y := ds.Item(1)
	if x[0] != 2 || y[0] != 20 {
		t.Errorf("Item(1) = (%v, %v), want ([2], [20])", x, y)
	}
}

func TestTensorDataset_Validation(t *testing.T) {
	if _, err := data.NewTensorDataset([][]float32{{1}}, [][]float32{{1}, {2}}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := data.NewTensorDataset(nil, nil); err == nil {
		t.Error("expected error for empty dataset")
	}
	if _, err := data.NewTensorDataset([][]float32{{1}, {1, 2}}, [][]float32{{1}, {2}}); err == nil {
		t.Error("expected error for inconsistent input dimension")
	}
}

func TestRandomSplit(t *testing.T) {
	xs := make([][]float32, 100)
	ys := make([][]float32, 100)
	for i := range xs {
		xs[i] = []float32{float32(i)}
		ys[i] = []float32{float32(i)}
	}
	ds, _ := data.NewTensorDataset(xs, ys)

	train, val, err := data.RandomSplit(ds, 0.8, 13)
	if err != nil {
		t.Fatalf("RandomSplit failed: %v", err)
	}

	if train.Len() != 80 {
		t.Errorf("train.Len() = %d, want 80", train.Len())
	}
	if val.Len() != 20 {
		t.Errorf("val.Len() = %d, want 20", val.Len())
	}

	// Subsets must be disjoint and cover every sample
	seen := make(map[float32]bool)
	for i := 0; i < train.Len(); i++ {
		x, _ := train.Item(i)
		seen[x[0]] = true
	}
	for i := 0; i < val.Len(); i++ {
		x, _ := val.Item(i)
		if seen[x[0]] {
			t.Fatalf("sample %v appears in both subsets", x[0])
		}
		seen[x[0]] = true
	}
	if len(seen) != 100 {
		t.Errorf("split covers %d samples, want 100", len(seen))
	}

	// Same seed reproduces the same split
	train2, _, _ := data.RandomSplit(ds, 0.8, 13)
	for i := 0; i < train.Len(); i++ {
		a, _ := train.Item(i)
		b, _ := train2.Item(i)
		if a[0] != b[0] {
			t.Fatal("same seed should produce identical splits")
		}
	}
}

func TestRandomSplit_InvalidFraction(t *testing.T) {
	ds, _ := data.NewTensorDataset([][]float32{{1}, {2}}, [][]float32{{1}, {2}})

	for _, frac := range []float64{0, 1, -0.5, 1.5} {
		if _, _, err := data.RandomSplit(ds, frac, 1); err == nil {
			t.Errorf("expected error for fraction %v", frac)
		}
	}
}

func TestLoader_Batches(t *testing.T) {
	backend := cpu.New()

	xs := make([][]float32, 10)
	ys := make([][]float32, 10)
	for i := range xs {
		xs[i] = []float32{float32(i)}
		ys[i] = []float32{float32(2 * i)}
	}
	ds, _ := data.NewTensorDataset(xs, ys)

	loader := data.NewLoader(ds, 4, false, backend)

	if loader.NumBatches() != 3 {
		t.Errorf("NumBatches() = %d, want 3", loader.NumBatches())
	}

	batches := loader.Batches()
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}

	// Without shuffling, order is preserved and the last batch is smaller
	if batches[0].Size != 4 || batches[1].Size != 4 || batches[2].Size != 2 {
		t.Errorf("batch sizes = %d,%d,%d, want 4,4,2", batches[0].Size, batches[1].Size, batches[2].Size)
	}

	if !batches[0].X.Shape().Equal(tensor.Shape{4, 1}) {
		t.Errorf("batch X shape = %v, want [4 1]", batches[0].X.Shape())
	}

	first := batches[0].X.Data()
	for i, want := range []float32{0, 1, 2, 3} {
		if first[i] != want {
			t.Errorf("X[%d] = %v, want %v", i, first[i], want)
		}
	}
	firstY := batches[0].Y.Data()
	if firstY[3] != 6 {
		t.Errorf("Y[3] = %v, want 6", firstY[3])
	}
}

func TestLoader_ShuffleReproducible(t *testing.T) {
	backend := cpu.New()

	xs := make([][]float32, 32)
	ys := make([][]float32, 32)
	for i := range xs {
		xs[i] = []float32{float32(i)}
		ys[i] = []float32{float32(i)}
	}
	ds, _ := data.NewTensorDataset(xs, ys)

	loader := data.NewLoader(ds, 8, true, backend)
	loader.Seed(7)
	epoch1 := loader.Batches()
	epoch2 := loader.Batches()

	// Consecutive epochs should see different orders
	same := true
	for b := range epoch1 {
		a := epoch1[b].X.Data()
		c := epoch2[b].X.Data()
		for i := range a {
			if a[i] != c[i] {
				same = false
			}
		}
	}
	if same {
		t.Error("expected reshuffling between epochs")
	}

	// Reseeding reproduces the exact same epoch sequence
	loader.Seed(7)
	replay := loader.Batches()
	for b := range epoch1 {
		a := epoch1[b].X.Data()
		c := replay[b].X.Data()
		for i := range a {
			if a[i] != c[i] {
				t.Fatal("same seed should reproduce the same batch order")
			}
		}
	}
}

func TestGenerateLinear(t *testing.T) {
	ds, err := data.GenerateLinear(data.LinearConfig{
		N:        1000,
		TrueW:    2,
		TrueB:    1,
		NoiseStd: 0.1,
		Seed:     42,
	})
	if err != nil {
		t.Fatalf("GenerateLinear failed: %v", err)
	}

	if ds.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", ds.Len())
	}

	// Every x in [0, 1), every y close to 1 + 2x
	var maxResidual float64
	for i := 0; i < ds.Len(); i++ {
		x, y := ds.Item(i)
		if x[0] < 0 || x[0] >= 1 {
			t.Fatalf("x[%d] = %v outside [0, 1)", i, x[0])
		}
		residual := math.Abs(float64(y[0]) - (1 + 2*float64(x[0])))
		if residual > maxResidual {
			maxResidual = residual
		}
	}
	// Noise is N(0, 0.1); residuals beyond 0.6 (6 sigma) indicate a bug
	if maxResidual > 0.6 {
		t.Errorf("max residual %v too large for noise std 0.1", maxResidual)
	}

	// Same seed reproduces the same data
	ds2, _ := data.GenerateLinear(data.LinearConfig{N: 1000, TrueW: 2, TrueB: 1, NoiseStd: 0.1, Seed: 42})
	x1, y1 := ds.Item(0)
	x2, y2 := ds2.Item(0)
	if x1[0] != x2[0] || y1[0] != y2[0] {
		t.Error("same seed should produce identical data")
	}
}
