package data

import (
	"math/rand"
)

// LinearConfig configures synthetic linear regression data generation.
type LinearConfig struct {
	N        int     // Number of samples (default: 100)
	TrueW    float64 // Slope of the underlying line (default: 2)
	TrueB    float64 // Intercept of the underlying line (default: 1)
	NoiseStd float64 // Standard deviation of Gaussian noise (default: 0.1)
	Seed     int64   // RNG seed (default: 42)
}

// GenerateLinear produces a synthetic single-feature regression dataset.
//
// Inputs x are sampled uniformly from [0, 1) and targets follow
//
//	y = b + w*x + noise_std * eps,   eps ~ N(0, 1)
//
// The same seed always produces the same dataset.
func GenerateLinear(config LinearConfig) (*TensorDataset, error) {
	if config.N == 0 {
		config.N = 100
	}
	if config.TrueW == 0 {
		config.TrueW = 2
	}
	if config.TrueB == 0 {
		config.TrueB = 1
	}
	if config.NoiseStd == 0 {
		config.NoiseStd = 0.1
	}
	if config.Seed == 0 {
		config.Seed = 42
	}

	//nolint:gosec // Synthetic data generation is not security-critical.
	rng := rand.New(rand.NewSource(config.Seed))

	xs := make([][]float32, config.N)
	ys := make([][]float32, config.N)
	for i := range xs {
		x := rng.Float64()
		noise := rng.NormFloat64() * config.NoiseStd
		y := config.TrueB + config.TrueW*x + noise

		xs[i] = []float32{float32(x)}
		ys[i] = []float32{float32(y)}
	}

	return NewTensorDataset(xs, ys)
}
