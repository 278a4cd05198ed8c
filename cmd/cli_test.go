package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/ecoreport/internal/docx/docxtest"
	"github.com/KaramelBytes/ecoreport/internal/manifest"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

// execCmd runs the root command with args and returns its stdout.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset bound variables that persist across invocations
	exTipo, exFormat, exOut, exStdout = "", "", "", false
	ebWorkers, ebTipo, ebFormat, ebOut, ebSummary, ebNoManifest, ebQuiet = 0, "", "", "", "", false, false
	inspectFields = false
	for _, c := range []string{"extract", "extract-batch", "inspect"} {
		sub, _, err := rootCmd.Find([]string{c})
		if err != nil {
			t.Fatalf("find %s: %v", c, err)
		}
		sub.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeReport(t *testing.T, dir, name, gender string) string {
	t.Helper()
	inner := docxtest.Table(
		docxtest.TextRow("Cardiac"),
		docxtest.TextRow("Measure", "Value", "Unit"),
		docxtest.TextRow("  LVIDd", "50", "mm"),
		docxtest.TextRow("  IVSd", "10", "mm"),
		docxtest.TextRow("  LVPWd", "8", "mm"),
		docxtest.TextRow("  LVd Mass Index(2D-ASE)", "80", "g/m²"),
		docxtest.TextRow("  RWT(2D)", "0.30"),
	)
	fields := []string{"Name: " + strings.TrimSuffix(name, ".docx"), "Exam Date: 2024-04-01"}
	if gender != "" {
		fields = append(fields, "Gender: "+gender)
	}
	body := strings.Join([]string{
		docxtest.Table(docxtest.TextRow("Clinic")),
		docxtest.Table(docxtest.TextRow("Patient Information"), docxtest.TextRow(fields...)),
		docxtest.Table(docxtest.TextRow("Measure"), docxtest.Row(docxtest.NestedCell(inner))),
	}, "<w:p/>")
	path := filepath.Join(dir, name)
	if err := docxtest.Write(path, body); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolateHome(t)

	runCmd(t, "config", "set", "output_format", "yml")
	runCmd(t, "config", "set", "batch_workers", "2")
	if _, err := os.Stat(filepath.Join(home, ".ecoreport", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	for _, want := range []string{"output_format: yaml", "batch_workers: 2", "log_level: info"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	if _, err := execCmd(t, "config", "set", "batch_workers", "0"); err == nil {
		t.Errorf("expected validation error for batch_workers 0")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Errorf("expected error for unknown key")
	}
}

func TestCLI_ExtractWritesContext(t *testing.T) {
	isolateHome(t)
	in := writeReport(t, t.TempDir(), "LUIS.docx", "Female")
	outDir := t.TempDir()

	out := runCmd(t, "extract", in, "--out", outDir)
	if !strings.Contains(out, "✓ Wrote") || !strings.Contains(out, `"auto card.docx"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
	b, err := os.ReadFile(filepath.Join(outDir, "LUIS_card_2024-04-01.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"Gender": "Female"`, `"LVIDd": 50`, `"mass_interpretation"`, `"diam_lv_interpretation"`} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %s:\n%s", want, s)
		}
	}

	// same stem again must not overwrite
	runCmd(t, "extract", in, "--out", outDir)
	if _, err := os.Stat(filepath.Join(outDir, "LUIS_card_2024-04-01__2.json")); err != nil {
		t.Fatalf("expected collision-safe name: %v", err)
	}
}

func TestCLI_ExtractStdout(t *testing.T) {
	isolateHome(t)
	in := writeReport(t, t.TempDir(), "ANA.docx", "Male")

	out := runCmd(t, "extract", in, "--stdout", "--format", "yaml")
	if !strings.Contains(out, "Name: ANA") || !strings.Contains(out, "LVIDd: 50") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
	if _, err := execCmd(t, "extract", in, "--stdout", "--format", "xlsx"); err == nil {
		t.Fatalf("expected error for xlsx on stdout")
	}
	if _, err := execCmd(t, "extract", in, "--tipo", "bogus"); err == nil {
		t.Fatalf("expected error for unknown tipo")
	}
}

func TestCLI_ExtractMissingGender(t *testing.T) {
	isolateHome(t)
	in := writeReport(t, t.TempDir(), "X.docx", "")
	_, err := execCmd(t, "extract", in, "--out", t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Gender") || !strings.Contains(err.Error(), "Hint:") {
		t.Fatalf("unexpected error: %v", err)
	}
	// forcing a vascular study skips measurements and demographics checks
	runCmd(t, "extract", in, "--out", t.TempDir(), "--tipo", "ven")
}

func TestCLI_ExtractBatch(t *testing.T) {
	isolateHome(t)
	inDir := t.TempDir()
	writeReport(t, inDir, "A.docx", "Male")
	writeReport(t, inDir, "B.docx", "Female")
	if err := os.WriteFile(filepath.Join(inDir, "old.doc"), []byte("legacy"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	summary := filepath.Join(outDir, "summary.xlsx")

	out, err := execCmd(t, "extract-batch", inDir, "--out", outDir, "--workers", "2", "--summary", summary)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 documents failed") {
		t.Fatalf("expected one failure, got %v\n%s", err, out)
	}
	if strings.Count(out, "✓ ") < 2 || !strings.Contains(out, "✗ old.doc") || !strings.Contains(out, "[3/3]") {
		t.Fatalf("unexpected progress:\n%s", out)
	}
	for _, name := range []string{"A_card_2024-04-01.json", "B_card_2024-04-01.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	matches, _ := filepath.Glob(filepath.Join(outDir, "ecoreport-run-*.json"))
	if len(matches) != 1 {
		t.Fatalf("manifests = %v", matches)
	}
	m, err := manifest.Load(matches[0])
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if ok, failed := m.Counts(); ok != 2 || failed != 1 {
		t.Fatalf("manifest counts = %d/%d", ok, failed)
	}

	f, err := excelize.OpenFile(summary)
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Resumen")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("summary rows = %d, want 4", len(rows))
	}
}

func TestCLI_ExtractBatchNoMatch(t *testing.T) {
	isolateHome(t)
	if _, err := execCmd(t, "extract-batch", filepath.Join(t.TempDir(), "*.docx")); err == nil {
		t.Fatal("expected error when nothing matches")
	}
}

func TestCLI_Inspect(t *testing.T) {
	isolateHome(t)
	in := writeReport(t, t.TempDir(), "LUIS.docx", "Female")
	out := runCmd(t, "inspect", in, "--fields")
	for _, want := range []string{"Detected tipo: card", "nested strategy", "LVIDd", "Name:"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}
