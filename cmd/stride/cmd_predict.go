package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stride-ml/stride/backend/cpu"
	"github.com/stride-ml/stride/internal/config"
	"github.com/stride-ml/stride/nn"
	"github.com/stride-ml/stride/tensor"
)

var predictCheckpoint string

// predictCmd runs inference with a trained checkpoint
var predictCmd = &cobra.Command{
	Use:   "predict [values...]",
	Short: "Predict outputs for the given inputs using a trained checkpoint",
	Long: `Loads model parameters from a checkpoint and prints the model's
prediction for each input value.

Example:
  stride predict 0.5 1.0 2.0
  stride predict --checkpoint model_checkpoint.stride 0.25`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictCheckpoint, "checkpoint", "", "Checkpoint path (defaults to the config's checkpoint path)")
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Model.InFeatures != 1 || cfg.Model.OutFeatures != 1 {
		return fmt.Errorf("predict supports 1-in/1-out models, config has in_features=%d out_features=%d",
			cfg.Model.InFeatures, cfg.Model.OutFeatures)
	}

	path := predictCheckpoint
	if path == "" {
		path = cfg.Output.CheckpointPath
	}

	inputs := make([]float32, len(args))
	for i, arg := range args {
		value, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return fmt.Errorf("invalid input %q: %w", arg, err)
		}
		inputs[i] = float32(value)
	}

	backend := cpu.New()
	model := nn.NewLinear(cfg.Model.InFeatures, cfg.Model.OutFeatures, backend)

	// Checkpoint files carry optimizer state alongside model parameters;
	// Linear ignores the extra entries when loading.
	header, err := nn.Load(path, backend, model)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	logger.Debug("checkpoint loaded",
		zap.String("path", path),
		zap.String("model_type", header.ModelType))

	x, err := tensor.FromSlice(inputs, tensor.Shape{len(inputs), 1}, backend)
	if err != nil {
		return fmt.Errorf("failed to build input tensor: %w", err)
	}

	outputs := model.Forward(x).Raw().AsFloat32()
	for i, input := range inputs {
		fmt.Printf("%g -> %g\n", input, outputs[i])
	}

	return nil
}
