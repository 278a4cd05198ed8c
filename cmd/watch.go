package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/KaramelBytes/ecoreport/internal/manifest"
	"github.com/KaramelBytes/ecoreport/internal/report"
	"github.com/KaramelBytes/ecoreport/internal/watch"
	"github.com/spf13/cobra"
)

var (
	wTipo     string
	wFormat   string
	wOut      string
	wDebounce time.Duration
	wExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Extract every report dropped into a folder until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tipo, err := parseTipo(wTipo)
		if err != nil {
			return err
		}
		format, err := outputFormat(wFormat)
		if err != nil {
			return err
		}
		delay := time.Duration(currentConfig().WatchDebounceMs) * time.Millisecond
		if cmd.Flags().Changed("debounce") {
			delay = wDebounce
		}
		proc, err := newProcessor()
		if err != nil {
			return err
		}
		dir := outputDir(wOut)
		writer := report.NewWriter(dir, format)
		m := manifest.New("watch", string(format), dir)
		out := cmd.OutOrStdout()
		// serializes output and manifest saves across handlers
		var mu sync.Mutex

		handle := func(ctx context.Context, path string) {
			item := report.BatchItem{Path: path}
			item.Result, item.Err = proc.Process(ctx, path, tipo)
			if item.Err == nil {
				item.Output, item.Err = writer.Write(item.Result)
			}
			m.Add(item)

			mu.Lock()
			defer mu.Unlock()
			name := filepath.Base(path)
			if item.Err != nil {
				fmt.Fprintf(out, "✗ %s: %v\n", name, explain(item.Err))
			} else {
				fmt.Fprintf(out, "✓ %s -> %s\n", name, filepath.Base(item.Output))
				for _, w := range item.Result.Warnings {
					fmt.Fprintf(out, "  ⚠ %s\n", w)
				}
			}
			if err := m.Save(); err != nil {
				logger.Warn("save manifest", "err", err)
			}
		}

		fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)...\n", args[0])
		w := watch.New(args[0], handle, watch.Options{
			Debounce: delay,
			Existing: wExisting,
			Logger:   logger,
		})
		if err := w.Run(cmd.Context()); err != nil {
			return err
		}
		if err := m.Save(); err != nil {
			return fmt.Errorf("save manifest: %w", err)
		}
		ok, failed := m.Counts()
		fmt.Fprintf(out, "✓ Stopped: %d extracted, %d failed\n", ok, failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&wTipo, "tipo", "t", "", "force the study type of every document")
	watchCmd.Flags().StringVarP(&wFormat, "format", "f", "", "output format: json|yaml|xlsx (default from config)")
	watchCmd.Flags().StringVarP(&wOut, "out", "o", "", "output directory (default from config)")
	watchCmd.Flags().DurationVar(&wDebounce, "debounce", 0, "quiet period before a file is processed (default from config)")
	watchCmd.Flags().BoolVar(&wExisting, "existing", false, "also process reports already in the folder")
}
