package cmd

import (
	"fmt"

	"github.com/KaramelBytes/ecoreport/internal/report"
	"github.com/spf13/cobra"
)

var (
	exTipo   string
	exFormat string
	exOut    string
	exStdout bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract one device report into a template context file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tipo, err := parseTipo(exTipo)
		if err != nil {
			return err
		}
		format, err := outputFormat(exFormat)
		if err != nil {
			return err
		}
		if exStdout && format == report.FormatXLSX {
			return fmt.Errorf("--stdout supports json or yaml, not xlsx")
		}
		proc, err := newProcessor()
		if err != nil {
			return err
		}

		res, err := proc.Process(cmd.Context(), args[0], tipo)
		if err != nil {
			return explain(err)
		}
		errOut := cmd.ErrOrStderr()
		for _, w := range res.Warnings {
			fmt.Fprintf(errOut, "⚠ %s\n", w)
		}

		if exStdout {
			data, err := report.Encode(res, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		path, err := report.NewWriter(outputDir(exOut), format).Write(res)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (tipo %s, template %q)\n", path, res.Tipo, res.Template())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&exTipo, "tipo", "t", "", "study type: card|stress|carotid|art|ven (detected if omitted)")
	extractCmd.Flags().StringVarP(&exFormat, "format", "f", "", "output format: json|yaml|xlsx (default from config)")
	extractCmd.Flags().StringVarP(&exOut, "out", "o", "", "output directory (default from config)")
	extractCmd.Flags().BoolVar(&exStdout, "stdout", false, "print the context instead of writing a file")
}
