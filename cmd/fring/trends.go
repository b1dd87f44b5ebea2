package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kamilpajak/fring/internal/config"
	"github.com/kamilpajak/fring/internal/pipeline"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show flaky and persistently failing tests",
	Long: `Trends reads the recorded history for the configured partition and
prints every test currently flagged as flaky or persistently failing.`,
	Args: cobra.NoArgs,
	RunE: runTrends,
}

func runTrends(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	fs := afero.NewOsFs()

	cfg, err := config.Load(fs, configPath)
	if err != nil {
		return err
	}

	pipe, cleanup := pipeline.New(ctx, cfg, fs, logrus.StandardLogger())
	defer cleanup()

	flags, err := pipe.Detector.Detect(ctx, cfg.Partition)
	if err != nil {
		return fmt.Errorf("trend detection failed: %w", err)
	}

	if len(flags) == 0 {
		fmt.Println("No trend detected")
		return nil
	}

	for _, f := range flags {
		fmt.Println(f.String())
	}
	return nil
}
