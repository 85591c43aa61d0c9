package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "shotcut <input>",
		Short:        "Detect shots, pack them into bounded segments, cut and upload them",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().String("name", "", "Task-id prefix for uploaded clips (default: derived from the input name)")
	root.Flags().Float64("max", 30, "Max segment duration in seconds")
	root.Flags().Int("workers", 0, "Worker pool size (0 = 60% of CPUs, clamped to [2,48])")
	root.Flags().Bool("console", false, "Human-readable log output")

	// Detector tuning (internal)
	root.Flags().Float64("scene-threshold", 0.3, "Scene-change score threshold")
	root.Flags().Float64("min-shot", 1.0, "Minimum shot length in seconds")
	_ = root.Flags().MarkHidden("scene-threshold")
	_ = root.Flags().MarkHidden("min-shot")

	segment := &cobra.Command{
		Use:          "segment <input>",
		Short:        "Print segment boundaries without cutting or uploading",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSegment(cmd, args[0])
		},
	}
	segment.Flags().Float64("max", 30, "Max segment duration in seconds")
	segment.Flags().Bool("console", false, "Human-readable log output")
	segment.Flags().Float64("scene-threshold", 0.3, "Scene-change score threshold")
	segment.Flags().Float64("min-shot", 1.0, "Minimum shot length in seconds")
	root.AddCommand(segment)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
