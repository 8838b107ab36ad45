package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/stride-ml/stride/internal/tensor"
)

const strideVersion = "0.1.0" // Current Stride version

// StrideWriter writes models and checkpoints in .stride format.
type StrideWriter struct {
	file   *os.File
	closed bool
}

// NewStrideWriter creates a new .stride file writer.
func NewStrideWriter(path string) (*StrideWriter, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &StrideWriter{
		file:   file,
		closed: false,
	}, nil
}

// WriteStateDict writes a state dictionary to the .stride file.
//
// The state dictionary is a map from parameter names to tensors.
func (w *StrideWriter) WriteStateDict(stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		StrideVersion: strideVersion,
		ModelType:     modelType,
		CreatedAt:     time.Now().UTC(),
		Metadata:      metadata,
	}
	return w.WriteStateDictWithHeader(stateDict, header)
}

// WriteStateDictWithHeader writes a state dictionary with a custom header.
//
// This allows setting CheckpointMeta and other header fields. Tensors are
// written in sorted name order so the same state dict always produces the
// same file.
func (w *StrideWriter) WriteStateDictWithHeader(stateDict map[string]*tensor.RawTensor, header Header) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	// Sort tensor names for a deterministic layout
	tensorOrder := make([]string, 0, len(stateDict))
	for name := range stateDict {
		tensorOrder = append(tensorOrder, name)
	}
	sort.Strings(tensorOrder)

	// Calculate tensor offsets
	var currentOffset int64
	header.Tensors = make([]TensorMeta, 0, len(stateDict))
	for _, name := range tensorOrder {
		raw := stateDict[name]
		size := int64(raw.ByteSize())

		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: currentOffset,
			Size:   size,
		})

		currentOffset += size
	}

	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Collect tensor data for the checksum
	tensorData := make([]byte, 0, currentOffset)
	for _, name := range tensorOrder {
		tensorData = append(tensorData, stateDict[name].Data()...)
	}
	checksum := ComputeChecksum(tensorData)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	headerSize := uint64(len(headerJSON))
	dataSize := uint64(len(tensorData))

	// Build the 64-byte fixed header
	fixedHeader := make([]byte, FixedHeaderSize)
	copy(fixedHeader[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if header.CheckpointMeta != nil && header.CheckpointMeta.IsCheckpoint {
		flags |= FlagHasOptimizer
	}
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)

	// 0x0C-0x0F reserved, already zero from make()
	binary.LittleEndian.PutUint64(fixedHeader[16:24], headerSize)
	binary.LittleEndian.PutUint64(fixedHeader[24:32], dataSize)
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.file.Write(fixedHeader); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}

	if _, err := w.file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	// Pad so tensor data starts on a 64-byte boundary
	//nolint:gosec // G115: headerSize is bounded by maxHeaderSize, conversion is safe
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	if padding > 0 {
		if _, err := w.file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	for _, name := range tensorOrder {
		if _, err := w.file.Write(stateDict[name].Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the writer and the underlying file.
func (w *StrideWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
