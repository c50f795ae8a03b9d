package cmd

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/factorygen/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect factorygen configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Prints the configuration after defaults are applied, in YAML.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		showSource, _ := cmd.Flags().GetBool("source")
		if showSource {
			source := config.Viper().ConfigFileUsed()
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", source)
		}

		out, err := renderConfig(cfg)
		if err != nil {
			return GeneralError("failed to render config", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	configShowCmd.Flags().Bool("source", false, "Print which config file was loaded")
	configCmd.AddCommand(configShowCmd)
}

func renderConfig(cfg *config.Config) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
