package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filestitch/pkg/minmax"
)

var infoCmd = &cobra.Command{
	Use:   "info <file-or-pattern>",
	Short: "Show the stitched dimensions of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().Int("series", 0, "series to describe")
	infoCmd.Flags().Bool("files", false, "list the files of the series")
	infoCmd.Flags().Bool("stats", false, "read every plane and report per-channel statistics")
	rootCmd.AddCommand(infoCmd)
}

type channelReport struct {
	Channel int     `json:"channel"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
}

type infoReport struct {
	Pattern        string          `json:"pattern"`
	Series         int             `json:"series"`
	SeriesCount    int             `json:"seriesCount"`
	SizeX          int             `json:"sizeX"`
	SizeY          int             `json:"sizeY"`
	SizeZ          int             `json:"sizeZ"`
	SizeC          int             `json:"sizeC"`
	SizeT          int             `json:"sizeT"`
	ImageCount     int             `json:"imageCount"`
	PixelType      string          `json:"pixelType"`
	LittleEndian   bool            `json:"littleEndian"`
	DimensionOrder string          `json:"dimensionOrder"`
	Files          []string        `json:"files,omitempty"`
	Channels       []channelReport `json:"channels,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
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

	report := infoReport{
		Pattern:        s.FilePattern().String(),
		Series:         s.Series(),
		SeriesCount:    s.SeriesCount(),
		SizeX:          s.SizeX(),
		SizeY:          s.SizeY(),
		SizeZ:          s.SizeZ(),
		SizeC:          s.SizeC(),
		SizeT:          s.SizeT(),
		ImageCount:     s.ImageCount(),
		PixelType:      s.PixelType().String(),
		LittleEndian:   s.IsLittleEndian(),
		DimensionOrder: s.DimensionOrder(),
	}
	if listFiles, _ := cmd.Flags().GetBool("files"); listFiles {
		report.Files = s.SeriesFiles()
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		calc := minmax.New(s)
		for no := 0; no < calc.ImageCount(); no++ {
			if _, err := calc.OpenPlane(no); err != nil {
				return fmt.Errorf("reading plane %d: %w", no, err)
			}
		}
		for ch := 0; ch < calc.SizeC(); ch++ {
			lo, err := calc.ChannelGlobalMin(ch)
			if err != nil {
				return err
			}
			hi, err := calc.ChannelGlobalMax(ch)
			if err != nil {
				return err
			}
			mean, std, err := calc.ChannelStats(ch)
			if err != nil {
				return err
			}
			report.Channels = append(report.Channels, channelReport{
				Channel: ch, Min: lo, Max: hi, Mean: mean, Std: std,
			})
		}
	}

	out := cmd.OutOrStdout()
	return emit(cfg, out, report, func() {
		fmt.Fprintf(out, "pattern:   %s\n", report.Pattern)
		fmt.Fprintf(out, "series:    %d of %d\n", report.Series, report.SeriesCount)
		fmt.Fprintf(out, "size:      X=%d Y=%d Z=%d C=%d T=%d\n",
			report.SizeX, report.SizeY, report.SizeZ, report.SizeC, report.SizeT)
		fmt.Fprintf(out, "planes:    %d\n", report.ImageCount)
		fmt.Fprintf(out, "pixels:    %s (little endian: %v)\n", report.PixelType, report.LittleEndian)
		fmt.Fprintf(out, "order:     %s\n", report.DimensionOrder)
		for _, f := range report.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
		for _, c := range report.Channels {
			fmt.Fprintf(out, "channel %d: min=%g max=%g mean=%g std=%g\n", c.Channel, c.Min, c.Max, c.Mean, c.Std)
		}
	})
}
