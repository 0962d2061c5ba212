package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/smart-reconciliation/cmd/app"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/common"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/loader"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/report"
	"github.com/FACorreiaa/smart-reconciliation/pkg/config"
	"github.com/FACorreiaa/smart-reconciliation/pkg/observability"
)

// cli holds the state shared by the subcommands of one invocation
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	dataDir    string

	logger *slog.Logger
	deps   *app.Dependencies
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewJSONHandler(stderr, nil)),
	}
}

// execute runs the command line in args and flushes metrics afterwards, whatever the outcome
func (c *cli) execute(ctx context.Context, args []string) error {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	err := root.ExecuteContext(ctx)
	if c.deps != nil {
		c.deps.Cleanup()
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reconcile",
		Short: "Monthly reconciliation of invoicing and payment exports",
		Long: `Reconcile compares, for one month, the totals reported by the card acquirer (C6),
the clinic ledger (GDS) and the clinic spreadsheet (WAB), and classifies each divergence
as conforme, pequena divergência or grande divergência.

Exports are read from <data dir>/<month>/, e.g. faturamentos/julho/faturamento_C6_072025.csv.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default is ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "directory holding the monthly folders (overrides config)")

	root.AddCommand(
		c.runCmd(),
		c.summaryCmd(),
		c.detailCmd(),
		c.configCmd(),
		c.convertCmd(),
	)
	return root
}

// setup loads .env, the configuration and the logger, then wires the dependencies
func (c *cli) setup(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("error loading .env file", "error", err)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format, c.stderr)
	if err != nil {
		return err
	}
	c.logger = logger

	if cfg.File != "" {
		logger.Debug("config file applied", "file", cfg.File)
	}

	deps, err := app.InitDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	c.deps = deps
	return nil
}

func (c *cli) outputFormat(flag string) (report.Format, error) {
	if flag == "" {
		flag = c.deps.Config.Report.Format
	}
	return report.ParseFormat(flag)
}

func (c *cli) runCmd() *cobra.Command {
	var format, xlsxPath string

	cmd := &cobra.Command{
		Use:   "run MMYYYY",
		Short: "Reconcile the exports of one month",
		Example: `  reconcile run 072025
  reconcile run 072025 --format json
  reconcile run 072025 --xlsx conciliacao_072025.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loader.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			f, err := c.outputFormat(format)
			if err != nil {
				return err
			}

			rep, err := c.deps.ReconcileService.Reconcile(cmd.Context(), p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := report.Write(out, rep, f); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			if f == report.FormatTable && len(rep.Diagnostics) > 0 {
				fmt.Fprintln(out)
				if err := report.WriteDiagnostics(out, rep.Diagnostics); err != nil {
					return fmt.Errorf("failed to write diagnostics: %w", err)
				}
			}

			if xlsxPath == "" {
				xlsxPath = c.deps.Config.Report.XLSXPath
			}
			if xlsxPath != "" {
				if err := report.SaveXLSX(xlsxPath, rep); err != nil {
					return err
				}
				c.logger.Info("workbook written", "path", xlsxPath, "run_id", rep.RunID.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: table or json (default from config)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the results to this XLSX workbook")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary MMYYYY",
		Short: "Show what was loaded for each source, before parsing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loader.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			f, err := c.outputFormat(format)
			if err != nil {
				return err
			}

			summaries, err := c.deps.ReconcileService.Summary(cmd.Context(), p)
			if err != nil {
				return err
			}
			if f == report.FormatJSON {
				return report.WriteJSON(cmd.OutOrStdout(), summaries)
			}
			return report.WriteSummary(cmd.OutOrStdout(), p.String(), summaries)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: table or json (default from config)")
	return cmd
}

func (c *cli) detailCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "detail MMYYYY SOURCE_ID",
		Short:   "Show column statistics and first and last rows of one source",
		Example: "  reconcile detail 072025 pagamento_c6",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loader.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			f, err := c.outputFormat(format)
			if err != nil {
				return err
			}

			detail, err := c.deps.ReconcileService.Detail(cmd.Context(), p, args[1])
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("%w (known sources: %s)", err, strings.Join(c.deps.Profiles.IDs(), ", "))
			}
			if err != nil {
				return err
			}
			if f == report.FormatJSON {
				return report.WriteJSON(cmd.OutOrStdout(), detail)
			}
			return report.WriteDetail(cmd.OutOrStdout(), p.String(), detail)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: table or json (default from config)")
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [MMYYYY]",
		Short: "Show the data directory, tolerance, pairing and expected files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := c.deps.Config

			file := cfg.File
			if file == "" {
				file = "(nenhum)"
			}
			fmt.Fprintf(out, "Arquivo de configuração: %s\n", file)
			fmt.Fprintf(out, "Diretório de dados: %s\n", cfg.DataDir)
			tol := c.deps.Analyzer.Tolerance()
			fmt.Fprintf(out, "Tolerância: conforme < %s, pequena divergência < %s\n\n",
				report.Percent(tol.Minor), report.Percent(tol.Major))

			pairs := tablewriter.NewTable(out)
			pairs.Header("Tipo", "Fonte A", "Fonte B")
			for _, p := range c.deps.Analyzer.Pairs() {
				if err := pairs.Append(string(p.Type), p.A, p.B); err != nil {
					return err
				}
			}
			if err := pairs.Render(); err != nil {
				return err
			}
			fmt.Fprintln(out)

			files := tablewriter.NewTable(out)
			if len(args) == 0 {
				files.Header("Fonte", "Padrão de arquivo")
				for _, id := range c.deps.Profiles.IDs() {
					if err := files.Append(id, c.deps.Profiles[id].FileName("MMYYYY")); err != nil {
						return err
					}
				}
				return files.Render()
			}

			p, err := loader.ParsePeriod(args[0])
			if err != nil {
				return err
			}
			expected := c.deps.Loader.ExpectedFiles(p)
			files.Header("Fonte", "Arquivo", "Encontrado")
			for _, id := range c.deps.Profiles.IDs() {
				found := "não"
				if _, err := os.Stat(expected[id]); err == nil {
					found = "sim"
				}
				if err := files.Append(id, expected[id], found); err != nil {
					return err
				}
			}
			return files.Render()
		},
	}
}

func (c *cli) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert-wab [MMYYYY]",
		Short: "Convert legacy WAB text exports to JSON",
		Long: `Convert-wab rewrites faturamento_WAB_MMYYYY.txt exports as JSON next to the text file.
With a period only that month is converted; otherwise the whole data directory is scanned.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var period *loader.Period
			if len(args) == 1 {
				p, err := loader.ParsePeriod(args[0])
				if err != nil {
					return err
				}
				period = &p
			}

			converted, err := c.deps.Loader.ConvertAllTXT(cmd.Context(), period)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(converted) == 0 {
				fmt.Fprintln(out, "Nenhum arquivo TXT do WAB encontrado")
				return nil
			}
			for _, path := range converted {
				fmt.Fprintf(out, "Convertido: %s\n", path)
			}
			return nil
		},
	}
}
