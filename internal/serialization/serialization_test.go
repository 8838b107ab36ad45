package serialization

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stride-ml/stride/internal/backend/cpu"
	"github.com/stride-ml/stride/internal/tensor"
)

func rawFromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()

	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return raw
}

func testStateDict(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()

	return map[string]*tensor.RawTensor{
		"weight": rawFromSlice(t, []float32{1.5, -2.25}, tensor.Shape{2, 1}),
		"bias":   rawFromSlice(t, []float32{0.5}, tensor.Shape{1}),
	}
}

func writeTestFile(t *testing.T, stateDict map[string]*tensor.RawTensor, header *Header) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.stride")
	writer, err := NewStrideWriter(path)
	if err != nil {
		t.Fatalf("NewStrideWriter failed: %v", err)
	}

	if header != nil {
		err = writer.WriteStateDictWithHeader(stateDict, *header)
	} else {
		err = writer.WriteStateDict(stateDict, "Linear", nil)
	}
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func TestRoundTrip(t *testing.T) {
	stateDict := testStateDict(t)
	path := writeTestFile(t, stateDict, nil)

	reader, err := NewStrideReader(path)
	if err != nil {
		t.Fatalf("NewStrideReader failed: %v", err)
	}
	defer reader.Close()

	if reader.Header().ModelType != "Linear" {
		t.Errorf("expected model type Linear, got %q", reader.Header().ModelType)
	}

	backend := cpu.New()
	loaded, err := reader.ReadStateDict(backend)
	if err != nil {
		t.Fatalf("ReadStateDict failed: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 tensors, got %d", len(loaded))
	}

	weight := loaded["weight"]
	if !weight.Shape().Equal(tensor.Shape{2, 1}) {
		t.Errorf("weight shape mismatch: got %v", weight.Shape())
	}
	got := weight.AsFloat32()
	want := []float32{1.5, -2.25}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("weight[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	bias := loaded["bias"]
	if bias.AsFloat32()[0] != 0.5 {
		t.Errorf("bias = %v, want 0.5", bias.AsFloat32()[0])
	}
}

func TestCheckpointHeader(t *testing.T) {
	header := Header{
		FormatVersion: FormatVersion,
		StrideVersion: strideVersion,
		ModelType:     "Checkpoint",
		CreatedAt:     time.Now().UTC(),
		CheckpointMeta: &CheckpointMeta{
			IsCheckpoint: true,
			Epoch:        42,
			Loss:         0.0123,
			Losses:       []float64{1.0, 0.5, 0.0123},
			ValLosses:    []float64{1.1, 0.6, 0.02},
		},
	}

	path := writeTestFile(t, testStateDict(t), &header)

	reader, err := NewStrideReader(path)
	if err != nil {
		t.Fatalf("NewStrideReader failed: %v", err)
	}
	defer reader.Close()

	meta := reader.Header().CheckpointMeta
	if meta == nil || !meta.IsCheckpoint {
		t.Fatal("expected checkpoint metadata")
	}
	if meta.Epoch != 42 {
		t.Errorf("epoch = %d, want 42", meta.Epoch)
	}
	if len(meta.Losses) != 3 || meta.Losses[2] != 0.0123 {
		t.Errorf("unexpected loss history: %v", meta.Losses)
	}
	if len(meta.ValLosses) != 3 {
		t.Errorf("unexpected val loss history: %v", meta.ValLosses)
	}
}

func TestTensorOrderDeterministic(t *testing.T) {
	path := writeTestFile(t, testStateDict(t), nil)

	reader, err := NewStrideReader(path)
	if err != nil {
		t.Fatalf("NewStrideReader failed: %v", err)
	}
	defer reader.Close()

	names := reader.TensorNames()
	if len(names) != 2 || names[0] != "bias" || names[1] != "weight" {
		t.Errorf("expected sorted tensor order [bias weight], got %v", names)
	}
}

func TestCorruptedDataRejected(t *testing.T) {
	path := writeTestFile(t, testStateDict(t), nil)

	// Flip a byte in the tensor data section (end of file)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err = NewStrideReader(path)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected checksum mismatch, got %v", err)
	}

	// Skipping validation should still open the file
	reader, err := NewStrideReaderWithOptions(path, ReaderOptions{SkipChecksumValidation: true})
	if err != nil {
		t.Fatalf("expected open with validation skipped, got %v", err)
	}
	reader.Close()
}

func TestInvalidMagicRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.stride")
	if err := os.WriteFile(path, make([]byte, 128), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := NewStrideReader(path)
	if !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected invalid magic error, got %v", err)
	}
}

func TestUnsupportedVersionRejected(t *testing.T) {
	path := writeTestFile(t, testStateDict(t), nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	data[4] = 99 // version field
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err = NewStrideReader(path)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected unsupported version error, got %v", err)
	}
}
