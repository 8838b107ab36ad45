// Package config loads training configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all Stride training configuration.
type Config struct {
	// Data generation and splitting
	Data DataConfig `yaml:"data"`

	// Model architecture
	Model ModelConfig `yaml:"model"`

	// Training hyperparameters
	Training TrainingConfig `yaml:"training"`

	// Output paths
	Output OutputConfig `yaml:"output"`
}

// DataConfig configures synthetic data generation and splitting.
type DataConfig struct {
	N             int     `yaml:"n"`              // Number of samples
	TrueW         float64 `yaml:"true_w"`         // Slope of the underlying line
	TrueB         float64 `yaml:"true_b"`         // Intercept of the underlying line
	NoiseStd      float64 `yaml:"noise_std"`      // Gaussian noise standard deviation
	TrainFraction float64 `yaml:"train_fraction"` // Fraction of samples used for training
	BatchSize     int     `yaml:"batch_size"`     // Mini-batch size
}

// ModelConfig configures the model architecture.
type ModelConfig struct {
	InFeatures  int `yaml:"in_features"`
	OutFeatures int `yaml:"out_features"`
}

// TrainingConfig configures the training loop.
type TrainingConfig struct {
	Epochs    int     `yaml:"epochs"`     // Number of epochs to train
	LR        float32 `yaml:"lr"`         // Learning rate
	Momentum  float32 `yaml:"momentum"`   // SGD momentum (0 disables)
	Optimizer string  `yaml:"optimizer"`  // "sgd" or "adam"
	Seed      int64   `yaml:"seed"`       // Seed for reproducible runs
	Device    string  `yaml:"device"`     // "cpu", "webgpu", or "auto"
	SaveEvery int     `yaml:"save_every"` // Checkpoint every N epochs (0 = only at end)
}

// OutputConfig configures where artifacts are written.
type OutputConfig struct {
	CheckpointPath string `yaml:"checkpoint_path"` // Path for the final checkpoint
	SummaryPath    string `yaml:"summary_path"`    // Path for the CSV scalar log
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			N:             100,
			TrueW:         2,
			TrueB:         1,
			NoiseStd:      0.1,
			TrainFraction: 0.8,
			BatchSize:     16,
		},
		Model: ModelConfig{
			InFeatures:  1,
			OutFeatures: 1,
		},
		Training: TrainingConfig{
			Epochs:    200,
			LR:        0.1,
			Optimizer: "sgd",
			Seed:      42,
			Device:    "auto",
		},
		Output: OutputConfig{
			CheckpointPath: "model_checkpoint.stride",
			SummaryPath:    "training_log.csv",
		},
	}
}

// Load reads configuration from a YAML file.
//
// Missing files fall back to defaults; fields absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Data.N <= 1 {
		return fmt.Errorf("data.n must be at least 2, got %d", c.Data.N)
	}
	if c.Data.TrainFraction <= 0 || c.Data.TrainFraction >= 1 {
		return fmt.Errorf("data.train_fraction must be in (0, 1), got %v", c.Data.TrainFraction)
	}
	if c.Data.BatchSize <= 0 {
		return fmt.Errorf("data.batch_size must be positive, got %d", c.Data.BatchSize)
	}
	if c.Model.InFeatures <= 0 || c.Model.OutFeatures <= 0 {
		return fmt.Errorf("model dimensions must be positive, got in=%d out=%d",
			c.Model.InFeatures, c.Model.OutFeatures)
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("training.epochs must be positive, got %d", c.Training.Epochs)
	}
	if c.Training.LR <= 0 {
		return fmt.Errorf("training.lr must be positive, got %v", c.Training.LR)
	}
	if c.Training.Momentum < 0 || c.Training.Momentum >= 1 {
		return fmt.Errorf("training.momentum must be in [0, 1), got %v", c.Training.Momentum)
	}
	if c.Training.SaveEvery < 0 {
		return fmt.Errorf("training.save_every must not be negative, got %d", c.Training.SaveEvery)
	}

	switch c.Training.Optimizer {
	case "sgd", "adam":
	default:
		return fmt.Errorf("training.optimizer must be \"sgd\" or \"adam\", got %q", c.Training.Optimizer)
	}

	switch c.Training.Device {
	case "cpu", "webgpu", "auto":
	default:
		return fmt.Errorf("training.device must be \"cpu\", \"webgpu\" or \"auto\", got %q", c.Training.Device)
	}

	return nil
}
