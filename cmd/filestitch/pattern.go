package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"filestitch/pkg/axis"
	"filestitch/pkg/pattern"
)

var patternCmd = &cobra.Command{
	Use:   "pattern <file>",
	Short: "Infer the file pattern a file belongs to",
	Args:  cobra.ExactArgs(1),
	RunE:  runPattern,
}

var expandCmd = &cobra.Command{
	Use:   "expand <pattern>",
	Short: "List the files a pattern names",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpand,
}

var seriesCmd = &cobra.Command{
	Use:   "series <file>",
	Short: "List the per-series patterns around a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeries,
}

var guessCmd = &cobra.Command{
	Use:   "guess <pattern>",
	Short: "Show which axis each block of a pattern encodes",
	Args:  cobra.ExactArgs(1),
	RunE:  runGuess,
}

func init() {
	guessCmd.Flags().String("order", "XYZCT", "per-file dimension order")
	guessCmd.Flags().Int("size-z", 1, "per-file Z size")
	guessCmd.Flags().Int("size-t", 1, "per-file T size")
	guessCmd.Flags().Int("size-c", 1, "per-file C size")

	rootCmd.AddCommand(patternCmd, expandCmd, seriesCmd, guessCmd)
}

func runPattern(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	p, err := pattern.FindPatternFromFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return emit(cfg, out, map[string]string{"file": args[0], "pattern": p}, func() {
		fmt.Fprintln(out, p)
	})
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	p := pattern.Parse(args[0], cfg.PatternOptions()...)
	if !p.IsValid() {
		return fmt.Errorf("invalid pattern %q: %s", args[0], p.ErrorMessage())
	}
	files := p.Files()
	out := cmd.OutOrStdout()
	return emit(cfg, out, files, func() {
		for _, f := range files {
			fmt.Fprintln(out, f)
		}
	})
}

func runSeries(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	base := args[0]
	entries, err := os.ReadDir(filepath.Dir(base))
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	dir, _ := filepath.Split(base)
	patterns := pattern.FindSeriesPatterns(base, dir, names)
	out := cmd.OutOrStdout()
	return emit(cfg, out, patterns, func() {
		for _, p := range patterns {
			fmt.Fprintln(out, p)
		}
	})
}

type blockReport struct {
	Prefix   string `json:"prefix"`
	Block    string `json:"block"`
	Elements int    `json:"elements"`
	Axis     string `json:"axis"`
}

type guessReport struct {
	Order         string        `json:"order"`
	AdjustedOrder string        `json:"adjustedOrder"`
	Swapped       bool          `json:"swapped"`
	Blocks        []blockReport `json:"blocks"`
}

func runGuess(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	p := pattern.Parse(args[0], cfg.PatternOptions()...)
	if !p.IsValid() {
		return fmt.Errorf("invalid pattern %q: %s", args[0], p.ErrorMessage())
	}
	fill, err := cfg.FillOrder()
	if err != nil {
		return err
	}

	order, _ := cmd.Flags().GetString("order")
	sizeZ, _ := cmd.Flags().GetInt("size-z")
	sizeT, _ := cmd.Flags().GetInt("size-t")
	sizeC, _ := cmd.Flags().GetInt("size-c")

	g, err := axis.New(p, order, sizeZ, sizeT, sizeC, cfg.Stitcher.OrderCertain,
		axis.WithTokens(cfg.Tokens()), axis.WithFillOrder(fill...))
	if err != nil {
		return err
	}

	report := guessReport{
		Order:         g.OriginalOrder(),
		AdjustedOrder: g.AdjustedOrder(),
		Swapped:       g.Swapped(),
	}
	types := g.AxisTypes()
	for i, b := range p.Blocks() {
		report.Blocks = append(report.Blocks, blockReport{
			Prefix:   p.Prefix(i),
			Block:    b.String(),
			Elements: b.Count(),
			Axis:     types[i].String(),
		})
	}

	out := cmd.OutOrStdout()
	return emit(cfg, out, report, func() {
		for i, b := range report.Blocks {
			fmt.Fprintf(out, "block %d: %q %s -> %s (%d)\n", i, b.Prefix, b.Block, b.Axis, b.Elements)
		}
		fmt.Fprintf(out, "order: %s -> %s\n", report.Order, report.AdjustedOrder)
	})
}
