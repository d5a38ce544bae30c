package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"filestitch/pkg/config"
	"filestitch/pkg/memo"
	"filestitch/pkg/stitcher"
)

const defaultConfigFile = "filestitch.yaml"

var rootCmd = &cobra.Command{
	Use:   "filestitch",
	Short: "Read a directory of image files as one dataset",
	Long: "filestitch expands file patterns such as img_z<1-40>_c<0-2>.tif, guesses which\n" +
		"axis each block encodes and serves the files as a single stitched image.",
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default "+defaultConfigFile+")")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("format", "", "output format: text or json")
	flags.Int("pool-size", 0, "maximum number of files held open")
	flags.Bool("order-certain", true, "trust the files' dimension order over block labels")
	flags.Bool("pattern-ids", false, "treat plain file names as literal patterns")
	flags.Bool("memo", false, "cache stitched layouts in a sidecar file")

	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("output.format", flags.Lookup("format"))
	_ = viper.BindPFlag("stitcher.poolSize", flags.Lookup("pool-size"))
	_ = viper.BindPFlag("stitcher.orderCertain", flags.Lookup("order-certain"))
	_ = viper.BindPFlag("stitcher.patternIds", flags.Lookup("pattern-ids"))
	_ = viper.BindPFlag("memo.enabled", flags.Lookup("memo"))
}

func initConfig() {
	viper.SetEnvPrefix("FILESTITCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// settings loads the YAML file and applies flag and environment overrides
// on top of it. Only keys that were explicitly set override the file.
func settings(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if viper.IsSet("output.verbose") {
		cfg.Output.Verbose = viper.GetBool("output.verbose")
	}
	if viper.IsSet("output.format") {
		cfg.Output.Format = viper.GetString("output.format")
	}
	if viper.IsSet("stitcher.poolSize") {
		cfg.Stitcher.PoolSize = viper.GetInt("stitcher.poolSize")
	}
	if viper.IsSet("stitcher.orderCertain") {
		cfg.Stitcher.OrderCertain = viper.GetBool("stitcher.orderCertain")
	}
	if viper.IsSet("stitcher.patternIds") {
		cfg.Stitcher.PatternIDs = viper.GetBool("stitcher.patternIds")
	}
	if viper.IsSet("memo.enabled") {
		cfg.Memo.Enabled = viper.GetBool("memo.enabled")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStitcher opens id with the configured options, going through the memo
// cache when it is enabled.
func openStitcher(cfg *config.Config, log *slog.Logger, id string) (*stitcher.Stitcher, error) {
	opts := append(cfg.StitcherOptions(), stitcher.WithLogger(log))
	s := stitcher.New(opts...)

	if !cfg.Memo.Enabled {
		if err := s.Open(id); err != nil {
			return nil, err
		}
		return s, nil
	}

	cache := memo.New(append(cfg.MemoOptions(), memo.WithLogger(log))...)
	hit, err := cache.Open(s, id)
	if err != nil {
		return nil, err
	}
	log.Debug("opened", "id", id, "memo", hit)
	return s, nil
}

// emit prints v as indented JSON, or calls text when the format is text.
func emit(cfg *config.Config, w io.Writer, v any, text func()) error {
	if cfg.Output.Format != "json" {
		text()
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
