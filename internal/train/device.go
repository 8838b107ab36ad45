package train

import (
	"go.uber.org/zap"

	"github.com/stride-ml/stride/internal/backend/webgpu"
)

// ResolveDevice maps a requested device name to the one actually used.
//
// "auto" and "webgpu" probe for a usable GPU adapter and fall back to
// "cpu" with a logged warning when none is found. "cpu" is returned
// unchanged.
func ResolveDevice(requested string, logger *zap.Logger) string {
	switch requested {
	case "webgpu", "auto":
		if webgpu.IsAvailable() {
			return "webgpu"
		}
		if requested == "webgpu" {
			logger.Warn("webgpu requested but no adapter available, falling back to cpu")
		}
		return "cpu"
	default:
		return "cpu"
	}
}
