package nn

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/stride-ml/stride/internal/tensor"
)

// Package-level RNG used for weight initialization. Seed replaces it so
// training runs can be made reproducible end to end.
var (
	initRngMu sync.Mutex
	//nolint:gosec // Weight initialization is not security-critical.
	initRng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Seed seeds the random number generator used for weight initialization.
//
// Call this before constructing modules to make initialization reproducible.
func Seed(seed int64) {
	initRngMu.Lock()
	defer initRngMu.Unlock()
	//nolint:gosec // Weight initialization is not security-critical.
	initRng = rand.New(rand.NewSource(seed))
}

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// This initialization helps maintain variance of activations across layers.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	// Xavier/Glorot bound: sqrt(6 / (fan_in + fan_out))
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t, err := tensor.NewRaw(shape, tensor.Float32, backend.Device())
	if err != nil {
		panic(err)
	}

	initRngMu.Lock()
	defer initRngMu.Unlock()

	data := t.AsFloat32()
	for i := range data {
		// Random value in [-bound, bound]
		data[i] = float32((initRng.Float64()*2.0 - 1.0) * bound)
	}

	return tensor.New[float32, B](t, backend)
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}

// Randn creates a tensor with random values from standard normal distribution.
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Randn[float32](shape, backend)
}
