package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filestitch/pkg/swapper"
	"filestitch/pkg/visualization"
)

var exportCmd = &cobra.Command{
	Use:   "export <file-or-pattern> <output-dir>",
	Short: "Write every stitched plane as an image",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().Int("series", 0, "series to export")
	exportCmd.Flags().String("image-format", "png", "image format: png or jpg")
	exportCmd.Flags().Int("quality", 90, "JPEG quality")
	exportCmd.Flags().String("swap", "", "relabel the axes so the planes read in this order")
	exportCmd.Flags().String("output-order", "", "write planes in this dimension order")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	s, err := openStitcher(cfg, log, args[0])
	if err != nil {
		return err
	}
	defer s.Close()

	series, _ := cmd.Flags().GetInt("series")
	if err := s.SetSeries(series); err != nil {
		return err
	}

	sw := swapper.New(s)
	if order, _ := cmd.Flags().GetString("swap"); order != "" {
		if err := sw.SwapDimensions(order); err != nil {
			return fmt.Errorf("swapping dimensions: %w", err)
		}
	}
	if order, _ := cmd.Flags().GetString("output-order"); order != "" {
		if err := sw.SetOutputOrder(order); err != nil {
			return fmt.Errorf("setting output order: %w", err)
		}
	}

	viewer := visualization.NewViewer(sw)
	viewer.Quality, _ = cmd.Flags().GetInt("quality")
	ext, _ := cmd.Flags().GetString("image-format")

	log.Info("exporting", "pattern", s.FilePattern().String(), "planes", sw.ImageCount(), "order", sw.DimensionOrder())
	paths, err := viewer.SavePlaneSequence(args[1], ext)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	return emit(cfg, out, paths, func() {
		fmt.Fprintf(out, "wrote %d planes to %s\n", len(paths), args[1])
	})
}
