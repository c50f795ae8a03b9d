package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/config"
	"github.com/Lumos-Labs-HQ/factorygen/template"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
	providerFlag   string
	forceFlag      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize factorygen in the current project",
	Long:  `Writes factorygen.config.json, creates the factories directory and adds DATABASE_URL to .env.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.PostgreSQL
		flagCount := 0

		if sqliteFlag {
			dbType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}
		if providerFlag != "" {
			dbType = template.ValidateDatabaseType(providerFlag)
			flagCount++
		}

		if flagCount > 1 {
			return ConfigError("please specify only one database type (--sqlite, --postgresql, --mysql or --provider)", nil)
		}

		if err := initializeProject(afero.NewOsFs(), dbType, forceFlag); err != nil {
			return GeneralError("failed to initialize project", err)
		}
		printInitSummary(dbType)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Initialize project for SQLite database")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Initialize project for PostgreSQL database")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Initialize project for MySQL database")
	initCmd.Flags().StringVar(&providerFlag, "provider", "", "Database provider name (postgresql, mysql, sqlite)")
	initCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Overwrite an existing "+config.FileName)
}

func initializeProject(fs afero.Fs, dbType template.DatabaseType, force bool) error {
	if exists, _ := afero.Exists(fs, config.FileName); exists && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}

	tmpl := template.NewProjectTemplate(dbType)

	for _, dir := range tmpl.GetDirectoryStructure() {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := afero.WriteFile(fs, config.FileName, []byte(tmpl.GetFactorygenConfig()), 0644); err != nil {
		return fmt.Errorf("failed to create file %s: %w", config.FileName, err)
	}

	if err := handleEnvFile(fs, tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	return nil
}

// handleEnvFile appends DATABASE_URL to .env unless it is already there.
func handleEnvFile(fs afero.Fs, defaultEnvContent string) error {
	envPath := ".env"

	existingContent, err := afero.ReadFile(fs, envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return afero.WriteFile(fs, envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "DATABASE_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}
	existingStr += "\n# Added by factorygen\n" + defaultEnvContent

	return afero.WriteFile(fs, envPath, []byte(existingStr), 0644)
}

func printInitSummary(dbType template.DatabaseType) {
	color.Green("✅ Successfully initialized factorygen with %s database support", dbType)
	fmt.Println()
	fmt.Println("📝 Configuration file created:")
	fmt.Printf("   %s\n", config.FileName)

	if os.Getenv("DATABASE_URL") != "" {
		fmt.Println()
		fmt.Println("ℹ️  Using existing DATABASE_URL from environment")
	}

	fmt.Println()
	fmt.Println("🚀 Next steps:")
	fmt.Println("   factorygen generate   # Write factories for your models")
}
