package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stride-ml/stride/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Data.N)
	assert.Equal(t, 16, cfg.Data.BatchSize)
	assert.Equal(t, 0.8, cfg.Data.TrainFraction)
	assert.Equal(t, 200, cfg.Training.Epochs)
	assert.Equal(t, float32(0.1), cfg.Training.LR)
	assert.Equal(t, "sgd", cfg.Training.Optimizer)
	assert.Equal(t, "auto", cfg.Training.Device)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoad_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
training:
  epochs: 50
  lr: 0.05
data:
  batch_size: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Training.Epochs)
	assert.Equal(t, float32(0.05), cfg.Training.LR)
	assert.Equal(t, 8, cfg.Data.BatchSize)
	// Untouched fields keep defaults
	assert.Equal(t, 100, cfg.Data.N)
	assert.Equal(t, "sgd", cfg.Training.Optimizer)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("training: ["), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero epochs", func(c *config.Config) { c.Training.Epochs = 0 }},
		{"negative lr", func(c *config.Config) { c.Training.LR = -1 }},
		{"momentum out of range", func(c *config.Config) { c.Training.Momentum = 1 }},
		{"bad optimizer", func(c *config.Config) { c.Training.Optimizer = "rmsprop" }},
		{"bad device", func(c *config.Config) { c.Training.Device = "tpu" }},
		{"bad split", func(c *config.Config) { c.Data.TrainFraction = 1.5 }},
		{"zero batch", func(c *config.Config) { c.Data.BatchSize = 0 }},
		{"tiny dataset", func(c *config.Config) { c.Data.N = 1 }},
		{"zero features", func(c *config.Config) { c.Model.InFeatures = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
