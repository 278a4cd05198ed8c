package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cfgpkg "github.com/KaramelBytes/ecoreport/internal/config"
	"github.com/KaramelBytes/ecoreport/internal/report"
	"github.com/KaramelBytes/ecoreport/internal/vocab"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	vocabFile string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "ecoreport",
	Short: "ecoreport: extract measurements from echocardiography device reports",
	Long: `ecoreport reads the .docx reports exported by an ultrasound device, extracts
patient data, measurements and wall-motion scores, adds the standard clinical
interpretation texts and writes the result as JSON, YAML or XLSX, ready to be
merged into a report template.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ecoreport/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&vocabFile, "vocabulary", "", "YAML file extending the field vocabulary (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	if f := rootCmd.PersistentFlags(); f.Changed("vocabulary") {
		cfg.VocabularyFile = vocabFile
	}
	logger = newLogger(os.Stderr, cfg.LogLevel, debug)
}

// newLogger builds the stderr logger; --debug wins over log_level.
func newLogger(w io.Writer, level string, debug bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	if debug {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

// newProcessor builds the extraction pipeline from the loaded configuration.
func newProcessor() (*report.Processor, error) {
	c := currentConfig()
	voc, err := vocab.Load(c.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return report.NewProcessor(voc, logger), nil
}

// outputFormat resolves a --format flag against output_format.
func outputFormat(flag string) (report.Format, error) {
	if flag == "" {
		flag = currentConfig().OutputFormat
	}
	return report.ParseFormat(flag)
}

// outputDir resolves an --out flag against output_dir.
func outputDir(flag string) string {
	if flag != "" {
		return flag
	}
	return currentConfig().OutputDir
}
