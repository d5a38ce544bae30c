package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"filestitch/pkg/pattern"
	"filestitch/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Print the inferred pattern of a file whenever its directory changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before rescanning")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())
	debounce, _ := cmd.Flags().GetDuration("debounce")

	w, err := watch.NewWatcher(args[0], watch.WithDebounce(debounce), watch.WithLogger(log))
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	type event struct {
		Time    time.Time `json:"time"`
		Pattern string    `json:"pattern"`
		Files   int       `json:"files"`
	}
	report := func(p string, files int) error {
		e := event{Time: time.Now(), Pattern: p, Files: files}
		return emit(cfg, out, e, func() {
			fmt.Fprintf(out, "%s %s (%d files)\n", e.Time.Format(time.TimeOnly), e.Pattern, e.Files)
		})
	}

	current := w.Pattern()
	if err := report(current, len(pattern.Parse(current).Files())); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if err := report(change.Pattern, change.Files); err != nil {
				return err
			}
		}
	}
}
