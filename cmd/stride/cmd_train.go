package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stride-ml/stride/autodiff"
	"github.com/stride-ml/stride/backend/cpu"
	"github.com/stride-ml/stride/backend/webgpu"
	"github.com/stride-ml/stride/data"
	"github.com/stride-ml/stride/internal/config"
	"github.com/stride-ml/stride/internal/summary"
	"github.com/stride-ml/stride/nn"
	"github.com/stride-ml/stride/optim"
	"github.com/stride-ml/stride/train"
)

var (
	trainEpochs      int
	trainLR          float32
	trainDevice      string
	trainOutput      string
	trainResume      bool
	trainPredictions string
)

// trainCmd fits a model on synthetic linear data
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a linear regression model on synthetic data",
	Long: `Generates synthetic y = b + w*x data, splits it into training and
validation sets, and fits a linear model with mini-batch gradient descent.

Configuration comes from the YAML file given by --config (defaults apply
when the file is missing); --epochs, --lr, --device and --output override
the file when set.

Example:
  stride train --epochs 200 --lr 0.1
  stride train --config experiment.yaml --device webgpu`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 0, "Number of epochs (overrides config)")
	trainCmd.Flags().Float32Var(&trainLR, "lr", 0, "Learning rate (overrides config)")
	trainCmd.Flags().StringVar(&trainDevice, "device", "", "Compute device: cpu, webgpu or auto (overrides config)")
	trainCmd.Flags().StringVar(&trainOutput, "output", "", "Checkpoint output path (overrides config)")
	trainCmd.Flags().BoolVar(&trainResume, "resume", false, "Resume from the checkpoint at the output path")
	trainCmd.Flags().StringVar(&trainPredictions, "predictions", "", "Write a CSV of model predictions over the dataset to this path")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("epochs") {
		cfg.Training.Epochs = trainEpochs
	}
	if cmd.Flags().Changed("lr") {
		cfg.Training.LR = trainLR
	}
	if cmd.Flags().Changed("device") {
		cfg.Training.Device = trainDevice
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.CheckpointPath = trainOutput
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	device := train.ResolveDevice(cfg.Training.Device, logger)
	logger.Info("starting training run",
		zap.String("device", device),
		zap.Int("epochs", cfg.Training.Epochs),
		zap.Float32("lr", cfg.Training.LR),
		zap.String("optimizer", cfg.Training.Optimizer))

	if device == "webgpu" {
		gpu, err := webgpu.New()
		if err != nil {
			return fmt.Errorf("failed to initialize WebGPU backend: %w", err)
		}
		defer gpu.Release()
		return runTraining(cfg, autodiff.New(gpu))
	}
	return runTraining(cfg, autodiff.New(cpu.New()))
}

// runTraining executes the full training pipeline on the given backend:
// data generation, splitting, fitting, and checkpoint/summary output.
func runTraining[B autodiff.BackwardCapable](cfg *config.Config, backend B) error {
	nn.Seed(cfg.Training.Seed)
	model := nn.NewLinear(cfg.Model.InFeatures, cfg.Model.OutFeatures, backend)
	criterion := nn.NewMSELoss(backend)

	var optimizer optim.Optimizer
	switch cfg.Training.Optimizer {
	case "adam":
		optimizer = optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: cfg.Training.LR}, backend)
	default:
		optimizer = optim.NewSGD(model.Parameters(), optim.SGDConfig{
			LR:       cfg.Training.LR,
			Momentum: cfg.Training.Momentum,
		}, backend)
	}

	dataset, err := data.GenerateLinear(data.LinearConfig{
		N:        cfg.Data.N,
		TrueW:    cfg.Data.TrueW,
		TrueB:    cfg.Data.TrueB,
		NoiseStd: cfg.Data.NoiseStd,
		Seed:     cfg.Training.Seed,
	})
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	trainSet, valSet, err := data.RandomSplit(dataset, cfg.Data.TrainFraction, cfg.Training.Seed)
	if err != nil {
		return fmt.Errorf("failed to split data: %w", err)
	}

	trainLoader := data.NewLoader(trainSet, cfg.Data.BatchSize, true, backend)
	valLoader := data.NewLoader(valSet, cfg.Data.BatchSize, false, backend)

	writer, err := summary.NewWriter(cfg.Output.SummaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary writer: %w", err)
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil {
			logger.Warn("failed to close summary writer", zap.Error(closeErr))
		}
	}()

	trainer := train.New[B](model, criterion, optimizer, backend, train.WithLogger(logger))
	trainer.SetLoaders(trainLoader, valLoader)
	trainer.SetSummaryWriter(writer)
	trainer.SetSeed(cfg.Training.Seed)

	checkpointPath := cfg.Output.CheckpointPath
	if trainResume {
		if _, statErr := os.Stat(checkpointPath); statErr == nil {
			if err := trainer.LoadCheckpoint(checkpointPath); err != nil {
				return fmt.Errorf("failed to resume from checkpoint: %w", err)
			}
		} else {
			logger.Warn("no checkpoint to resume from, starting fresh",
				zap.String("path", checkpointPath))
		}
	}

	// Train in chunks so intermediate checkpoints land every save_every
	// epochs; save_every 0 checkpoints only at the end.
	remaining := cfg.Training.Epochs
	chunk := cfg.Training.SaveEvery
	if chunk <= 0 || chunk > remaining {
		chunk = remaining
	}
	for remaining > 0 {
		n := min(chunk, remaining)
		if err := trainer.Fit(n); err != nil {
			return err
		}
		remaining -= n
		if remaining > 0 {
			if err := trainer.SaveCheckpoint(checkpointPath); err != nil {
				return err
			}
		}
	}

	if err := trainer.SaveCheckpoint(checkpointPath); err != nil {
		return err
	}

	losses := trainer.Losses()
	fields := []zap.Field{
		zap.Int("epochs", trainer.TotalEpochs()),
		zap.Float64("final_train_loss", losses[len(losses)-1]),
		zap.String("checkpoint", checkpointPath),
		zap.String("summary", cfg.Output.SummaryPath),
	}
	if valLosses := trainer.ValLosses(); len(valLosses) > 0 {
		fields = append(fields, zap.Float64("final_val_loss", valLosses[len(valLosses)-1]))
	}
	if cfg.Model.InFeatures == 1 && cfg.Model.OutFeatures == 1 {
		fields = append(fields,
			zap.Float32("weight", model.Weight().Tensor().Raw().AsFloat32()[0]),
			zap.Float32("bias", model.Bias().Tensor().Raw().AsFloat32()[0]))
	}
	logger.Info("training run complete", fields...)

	if trainPredictions != "" {
		if cfg.Model.InFeatures != 1 || cfg.Model.OutFeatures != 1 {
			logger.Warn("prediction export supports 1-in/1-out models only, skipping")
		} else {
			if err := exportPredictions(trainPredictions, dataset, trainer); err != nil {
				return fmt.Errorf("failed to export predictions: %w", err)
			}
			logger.Info("predictions exported", zap.String("path", trainPredictions))
		}
	}

	return nil
}

// exportPredictions writes an x,y,y_pred CSV over every dataset sample.
func exportPredictions[B autodiff.BackwardCapable](path string, dataset data.Dataset, trainer *train.Trainer[B]) error {
	n := dataset.Len()
	xs := make([]float32, n)
	ys := make([]float32, n)
	for i := range n {
		x, y := dataset.Item(i)
		xs[i] = x[0]
		ys[i] = y[0]
	}

	preds, err := trainer.Predict(xs)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"x", "y", "y_pred"}); err != nil {
		return err
	}
	for i := range n {
		row := []string{
			strconv.FormatFloat(float64(xs[i]), 'g', -1, 32),
			strconv.FormatFloat(float64(ys[i]), 'g', -1, 32),
			strconv.FormatFloat(float64(preds[i]), 'g', -1, 32),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
