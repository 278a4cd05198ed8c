package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/ecoreport/internal/docx"
	"github.com/KaramelBytes/ecoreport/internal/grid"
	"github.com/KaramelBytes/ecoreport/internal/locator"
	"github.com/KaramelBytes/ecoreport/internal/patient"
	"github.com/KaramelBytes/ecoreport/internal/vocab"
	"github.com/spf13/cobra"
)

var inspectFields bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the tables of a device report and how they would be parsed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := docx.Open(args[0])
		if err != nil {
			return explain(err)
		}
		voc, err := vocab.Load(currentConfig().VocabularyFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "File: %s\n", args[0])
		fmt.Fprintf(out, "Detected tipo: %s\n\n", patient.DetectType(args[0], doc))

		markers := []locator.Marker{locator.Patient, locator.Measurement, locator.WallMotion}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TABLE\tROWS\tNESTED\tMARKERS")
		for i, t := range doc.Tables {
			var found []string
			for _, m := range markers {
				if t.Contains(m.Text) {
					found = append(found, m.Text)
				}
			}
			fmt.Fprintf(tw, "%d\t%d\t%v\t%s\n", i, len(t.Rows), t.HasNested(), strings.Join(found, ", "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		table, idx, ok := locator.Find(doc, locator.Measurement)
		if !ok {
			fmt.Fprintln(out, "\n⚠ No measurement table found")
			return nil
		}
		raw, strategy := grid.Extract(table, voc, logger)
		fmt.Fprintf(out, "\nMeasurement table %d: %s strategy, %d fields\n", idx, strategy, raw.Len())
		for _, w := range raw.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		if !inspectFields {
			return nil
		}
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FIELD\tVALUES\tUNIT")
		for _, k := range raw.Keys() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", k, strings.Join(raw.Values(k), " | "), raw.Unit(k))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectFields, "fields", false, "list every raw field before normalization")
}
