package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/config"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.1.0"

	// readErr holds a config file read failure until a command needs config.
	readErr error
)

var rootCmd = &cobra.Command{
	Use:   "factorygen",
	Short: "Generate model factories from your database schema",
	Long: `
factorygen scans your model types, reads the table behind each one from the
database and writes a factory file per model with a fake-data expression for
every column.

Database Support:
- PostgreSQL
- MySQL
- SQLite`,
	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "factorygen version %s\n", Version)
			return
		}

		color.New(color.FgGreen, color.Bold).Fprintf(cmd.OutOrStdout(), "🏭 factorygen %s\n\n", Version)
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.FileName+")")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")

	RegisterBaseCommands()
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	v := config.Viper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("json")
		v.SetConfigName(strings.TrimSuffix(config.FileName, ".json"))
	}

	v.SetEnvPrefix("FACTORYGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_"))
	v.AutomaticEnv()

	readErr = nil
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			readErr = err
		}
	}
}

// loadConfig returns the validated configuration.
func loadConfig() (*config.Config, error) {
	if readErr != nil {
		return nil, ConfigError("failed to read config file", readErr)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, ConfigError("failed to load config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, ConfigError("invalid config", err)
	}
	return cfg, nil
}
