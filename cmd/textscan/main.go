// Package main is the textscan command. It converts text files described by
// a configuration file into CSV, TSV, LTSV, XLSX, Parquet or SQLite, and
// samples files to propose field types.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/nao1215/textscan"
	"github.com/nao1215/textscan/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the root flags are parsed
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	config textscan.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "textscan",
		Short: "Read delimited and fixed-width text files into typed rows",
		Long: `textscan reads delimited and fixed-width text files described by a
configuration file and writes the typed rows in another format.

Examples:
  # Convert a fixed-width report to Parquet
  textscan read --config report.yaml --out report.parquet report.txt

  # Propose field types from the first 100 rows and save them
  textscan sample --config report.yaml --max-samples 100 --write-config sampled.yaml report.txt`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file (YAML, JSON or TOML)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json (default from config)")

	root.AddCommand(newReadCmd(a), newSampleCmd(a))
	return root
}

// setup loads the configuration and builds the logger, which writes to stderr
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := textscan.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	level, format := cfg.Log.Level, cfg.Log.Format
	if a.logLevel != "" {
		level = a.logLevel
	}
	if a.logFormat != "" {
		format = a.logFormat
	}
	a.config = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), level, format)
	return nil
}

// builder returns a builder over args; "-" reads standard input
func (a *app) builder(cmd *cobra.Command, args []string) *textscan.Builder {
	b := textscan.NewBuilder(a.config).WithLogger(a.logger)
	for _, arg := range args {
		if arg == "-" {
			b.AddReader(cmd.InOrStdin(), "stdin")
			continue
		}
		b.AddPath(arg)
	}
	return b
}
