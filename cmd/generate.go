package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lumos-Labs-HQ/factorygen/internal/database"
	"github.com/Lumos-Labs-HQ/factorygen/internal/generator"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var verboseFlag bool

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"factory:generate"},
	Short:   "Generate factories for models that do not have one",
	Long: `Scans models_dir for model types, skips those that already have a factory in
factories_dir, reads each remaining model's table from the database and writes
one factory file per model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context(), afero.NewOsFs(), verboseFlag)
	},
}

func init() {
	generateCmd.Flags().BoolVar(&verboseFlag, "verbose", false, "Print every discovery and schema lookup step")
}

func runGenerate(ctx context.Context, fs afero.Fs, verbose bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	adapter := database.NewAdapter(cfg.Database.Provider)
	gen, err := generator.New(cfg, generator.Collaborators{Introspector: adapter, Fs: fs})
	if err != nil {
		var cfgErr *generator.ConfigError
		if errors.As(err, &cfgErr) {
			return ConfigError("invalid output settings", err)
		}
		return GeneralError("failed to set up generator", err)
	}
	gen.Verbose = verbose

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return ConfigError("missing database URL", err)
	}

	if err := adapter.Connect(ctx, dbURL); err != nil {
		return DBConnectError("failed to connect to database", err)
	}
	defer adapter.Close()

	if err := adapter.Ping(ctx); err != nil {
		return DBConnectError("database is not reachable", err)
	}

	report, err := gen.Run(ctx)
	if err != nil {
		return GeneralError("generation failed", err)
	}

	printReport(report)
	return nil
}

func printReport(report *generator.Report) {
	fmt.Println()
	if len(report.Written) == 0 {
		color.Yellow("⚠️  No new factories were written")
	} else {
		color.Green("✅ Wrote %d factory file(s)", len(report.Written))
	}
	color.White("   discovered:      %d", report.Discovered)
	color.White("   already defined: %d", report.AlreadyDefined)
	color.White("   mapped:          %d", report.Mapped)
}
