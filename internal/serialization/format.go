package serialization

import (
	"time"

	"github.com/stride-ml/stride/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "STRD"
	FormatVersion   = 1    // Current .stride format version
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed binary header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Maximum JSON header size. Anything larger is a corrupt or hostile file.
const maxHeaderSize = 100 * 1024 * 1024

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
)

// Flags for the .stride format.
const (
	FlagHasOptimizer uint32 = 1 << 0 // optimizer state included
	FlagHasMetadata  uint32 = 1 << 1 // custom metadata included
)

// Header represents the JSON header in a .stride file.
type Header struct {
	FormatVersion  int               `json:"format_version"`       // Version of the .stride format
	StrideVersion  string            `json:"stride_version"`       // Version of Stride that created this file
	ModelType      string            `json:"model_type"`           // Type of model (e.g., "Linear", "Checkpoint")
	CreatedAt      time.Time         `json:"created_at"`           // When the file was created
	Tensors        []TensorMeta      `json:"tensors"`              // Tensor metadata
	Metadata       map[string]string `json:"metadata"`             // Custom metadata
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"` // Checkpoint metadata (optional)
}

// CheckpointMeta contains training state information for checkpoints.
type CheckpointMeta struct {
	IsCheckpoint    bool           `json:"is_checkpoint"`    // Whether this is a checkpoint file
	Epoch           int            `json:"epoch"`            // Number of completed training epochs
	Step            int64          `json:"step"`             // Training step number
	Loss            float64        `json:"loss"`             // Loss value at checkpoint
	Losses          []float64      `json:"losses"`           // Per-epoch training loss history
	ValLosses       []float64      `json:"val_losses"`       // Per-epoch validation loss history
	OptimizerType   string         `json:"optimizer_type"`   // Optimizer type ("SGD", "Adam", etc.)
	OptimizerConfig map[string]any `json:"optimizer_config"` // Optimizer hyperparameters
	TrainingMeta    map[string]any `json:"training_meta"`    // Additional training metadata
}

// TensorMeta describes a tensor in the .stride file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "weight", "optimizer.velocity.0")
	DType  string `json:"dtype"`  // Data type ("float32" or "float64")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of tensor data)
	Size   int64  `json:"size"`   // Size in bytes
}

// dtypeToString converts tensor.DataType to its string representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	default:
		return "unknown"
	}
}

// stringToDtype converts a string representation to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	default:
		return 0, false
	}
}
