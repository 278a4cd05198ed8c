package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/ecoreport/internal/manifest"
	"github.com/KaramelBytes/ecoreport/internal/report"
	"github.com/KaramelBytes/ecoreport/internal/utils"
	"github.com/spf13/cobra"
)

var (
	ebWorkers    int
	ebTipo       string
	ebFormat     string
	ebOut        string
	ebSummary    string
	ebNoManifest bool
	ebQuiet      bool
)

var extractBatchCmd = &cobra.Command{
	Use:   "extract-batch <files|dirs|globs...>",
	Short: "Extract many device reports concurrently with progress and a run manifest",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := utils.ExpandInputs(args)
		if err != nil {
			return err
		}
		tipo, err := parseTipo(ebTipo)
		if err != nil {
			return err
		}
		format, err := outputFormat(ebFormat)
		if err != nil {
			return err
		}
		workers := currentConfig().BatchWorkers
		if cmd.Flags().Changed("workers") {
			if ebWorkers < 1 {
				return fmt.Errorf("--workers must be at least 1")
			}
			workers = ebWorkers
		}
		proc, err := newProcessor()
		if err != nil {
			return err
		}
		dir := outputDir(ebOut)
		out := cmd.OutOrStdout()

		items, err := proc.RunBatch(cmd.Context(), files, report.BatchOptions{
			Workers: workers,
			Tipo:    tipo,
			Writer:  report.NewWriter(dir, format),
			OnDone: func(done, total int, item report.BatchItem) {
				if ebQuiet {
					return
				}
				name := filepath.Base(item.Path)
				if item.Err != nil {
					fmt.Fprintf(out, "[%d/%d] ✗ %s: %v\n", done, total, name, item.Err)
					return
				}
				fmt.Fprintf(out, "[%d/%d] ✓ %s -> %s\n", done, total, name, filepath.Base(item.Output))
				for _, w := range item.Result.Warnings {
					fmt.Fprintf(out, "      ⚠ %s\n", w)
				}
			},
		})
		if err != nil {
			return err
		}

		if !ebNoManifest {
			m := manifest.New("extract-batch", string(format), dir)
			for _, item := range items {
				m.Add(item)
			}
			if err := m.Save(); err != nil {
				return fmt.Errorf("save manifest: %w", err)
			}
			if !ebQuiet {
				fmt.Fprintf(out, "✓ Run manifest: %s\n", m.Path())
			}
		}
		if ebSummary != "" {
			data, err := report.WriteSummaryXLSX(items)
			if err != nil {
				return err
			}
			if err := utils.EnsureDir(filepath.Dir(ebSummary)); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(ebSummary, data); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !ebQuiet {
				fmt.Fprintf(out, "✓ Wrote summary %s\n", ebSummary)
			}
		}

		if failed := report.Failed(items); failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(items))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractBatchCmd)
	extractBatchCmd.Flags().IntVarP(&ebWorkers, "workers", "w", 0, "documents processed concurrently (default from config)")
	extractBatchCmd.Flags().StringVarP(&ebTipo, "tipo", "t", "", "force the study type of every document")
	extractBatchCmd.Flags().StringVarP(&ebFormat, "format", "f", "", "output format: json|yaml|xlsx (default from config)")
	extractBatchCmd.Flags().StringVarP(&ebOut, "out", "o", "", "output directory (default from config)")
	extractBatchCmd.Flags().StringVar(&ebSummary, "summary", "", "also write an XLSX overview of the batch to this path")
	extractBatchCmd.Flags().BoolVar(&ebNoManifest, "no-manifest", false, "do not write the run manifest")
	extractBatchCmd.Flags().BoolVarP(&ebQuiet, "quiet", "q", false, "suppress progress output")
}
