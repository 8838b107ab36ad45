// Package serialization implements the .stride binary format for model
// weights and training checkpoints.
//
// File layout:
//
//	0x00-0x03  Magic bytes "STRD"
//	0x04-0x07  Format version (uint32, little-endian)
//	0x08-0x0B  Flags (uint32, little-endian)
//	0x0C-0x0F  Reserved
//	0x10-0x17  Header JSON size (uint64, little-endian)
//	0x18-0x1F  Tensor data size (uint64, little-endian)
//	0x20-0x3F  SHA-256 checksum of tensor data
//	0x40-...   Header JSON
//	...        Padding to 64-byte alignment
//	...        Tensor data (contiguous, in header order)
//
// The header is a JSON document describing the tensors (name, dtype, shape,
// offset, size) plus optional checkpoint metadata (epoch, loss histories,
// optimizer configuration). Tensors are written in sorted name order so the
// same state dict always produces the same file.
package serialization
