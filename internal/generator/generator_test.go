package generator

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lumos-Labs-HQ/factorygen/internal/config"
	"github.com/Lumos-Labs-HQ/factorygen/internal/database/sqlite"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	modelsDir    = "/app/internal/models"
	factoriesDir = "/app/internal/factories"
)

func setupDatabase(t *testing.T, ddl ...string) *sqlite.Adapter {
	t.Helper()
	a := sqlite.New()
	require.NoError(t, a.Connect(context.Background(), "sqlite://:memory:"))
	t.Cleanup(func() { a.Close() })
	for _, stmt := range ddl {
		_, err := a.DB().Exec(stmt)
		require.NoError(t, err)
	}
	return a
}

func setupModels(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, src := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(modelsDir, name), []byte(src), 0o644))
	}
	return fs
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ModelsDir = modelsDir
	cfg.FactoriesDir = factoriesDir
	return cfg
}

func newGenerator(t *testing.T, cfg *config.Config, fs afero.Fs, db *sqlite.Adapter) (*Generator, *bytes.Buffer) {
	t.Helper()
	g, err := New(cfg, Collaborators{Introspector: db, Fs: fs})
	require.NoError(t, err)
	out := &bytes.Buffer{}
	g.Out = out
	return g, out
}

const widgetModel = `package models

import "gorm.io/gorm"

type Widget struct {
	gorm.Model
	Name string
}
`

const widgetsTable = `CREATE TABLE widgets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name VARCHAR(255) NOT NULL,
	created_at DATETIME
)`

func TestRunWidget(t *testing.T) {
	fs := setupModels(t, map[string]string{"widget.go": widgetModel})
	db := setupDatabase(t, widgetsTable)
	g, _ := newGenerator(t, testConfig(), fs, db)

	report, err := g.Run(context.Background())
	require.NoError(t, err)

	path := filepath.Join(factoriesDir, "WidgetFactory.go")
	assert.Equal(t, 1, report.Discovered)
	assert.Equal(t, 0, report.AlreadyDefined)
	assert.Equal(t, 1, report.Mapped)
	assert.Equal(t, []string{path}, report.Written)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "\t\t\"") {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	assert.Equal(t, []string{
		`"name": faker.LetterN(50),`,
		`"created_at": faker.Date(),`,
	}, lines)
}

func TestRunSkipsDefinedModels(t *testing.T) {
	fs := setupModels(t, map[string]string{"widget.go": widgetModel})
	db := setupDatabase(t, widgetsTable)

	g, _ := newGenerator(t, testConfig(), fs, db)
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	g, _ = newGenerator(t, testConfig(), fs, db)
	report, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Discovered)
	assert.Equal(t, 1, report.AlreadyDefined)
	assert.Empty(t, report.Written)
}

func TestRunHandWrittenFactory(t *testing.T) {
	fs := setupModels(t, map[string]string{"widget.go": widgetModel})
	require.NoError(t, afero.WriteFile(fs, filepath.Join(factoriesDir, "custom.go"),
		[]byte("package factories\n\n//factorygen:model models.Widget\nfunc Widget() {}\n"), 0o644))
	db := setupDatabase(t, widgetsTable)
	g, out := newGenerator(t, testConfig(), fs, db)
	g.Verbose = true

	report, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.AlreadyDefined)
	assert.Contains(t, out.String(), "skip models.Widget: defined in "+filepath.Join(factoriesDir, "custom.go"))

	exists, err := afero.Exists(fs, filepath.Join(factoriesDir, "WidgetFactory.go"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunMissingTable(t *testing.T) {
	fs := setupModels(t, map[string]string{
		"widget.go": widgetModel,
		"ghost.go":  "package models\n\nimport \"gorm.io/gorm\"\n\ntype Ghost struct{ gorm.Model }\n",
	})
	db := setupDatabase(t, widgetsTable)
	g, out := newGenerator(t, testConfig(), fs, db)
	g.Verbose = true

	report, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Discovered)
	assert.Equal(t, 1, report.Mapped)
	assert.Equal(t, []string{filepath.Join(factoriesDir, "WidgetFactory.go")}, report.Written)
	assert.Contains(t, out.String(), "table ghosts does not exist")
}

func TestRunFollowSubdirectories(t *testing.T) {
	fs := setupModels(t, map[string]string{
		"user/profile.go": "package user\n\nimport \"gorm.io/gorm\"\n\ntype Profile struct{ gorm.Model }\n",
	})
	db := setupDatabase(t, `CREATE TABLE profiles (id INTEGER PRIMARY KEY, bio TEXT, age INTEGER)`)
	cfg := testConfig()
	cfg.FollowSubdirectories = true
	g, _ := newGenerator(t, cfg, fs, db)

	report, err := g.Run(context.Background())
	require.NoError(t, err)

	path := filepath.Join(factoriesDir, "user", "ProfileFactory.go")
	assert.Equal(t, []string{path}, report.Written)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package user\n")
	assert.Contains(t, string(content), "//factorygen:model models/user.Profile\n")
	assert.Contains(t, string(content), `"bio": faker.Paragraph(1, 3, 12, " "),`)
	assert.NotContains(t, string(content), `"id"`)
}

func TestRunPHPAligned(t *testing.T) {
	fs := setupModels(t, map[string]string{"widget.go": widgetModel})
	db := setupDatabase(t, widgetsTable)
	cfg := testConfig()
	cfg.Output.Dialect = "php"
	cfg.AlignArrayKeys = true
	cfg.SkipModelColumns = map[string][]string{"models.widget": {"created_at"}}
	cfg.TypeOverrides = map[string]string{"string": "text"}
	g, _ := newGenerator(t, cfg, fs, db)

	report, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Written, 1)
	assert.True(t, strings.HasSuffix(report.Written[0], "WidgetFactory.php"))

	content, err := afero.ReadFile(fs, report.Written[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), `$factory->define(\models\Widget::class`)
	assert.Contains(t, string(content), "'name' => $faker->text(),")
	assert.NotContains(t, string(content), "created_at")
}

func TestNewRejectsBadTemplates(t *testing.T) {
	fs := setupModels(t, map[string]string{"widget.go": widgetModel})
	db := setupDatabase(t, widgetsTable)

	t.Run("missing template file", func(t *testing.T) {
		cfg := testConfig()
		cfg.Output.Template = "/app/templates/missing.tmpl"
		_, err := New(cfg, Collaborators{Introspector: db, Fs: fs})
		require.Error(t, err)

		var cfgErr *ConfigError
		assert.True(t, errors.As(err, &cfgErr))

		exists, _ := afero.DirExists(fs, factoriesDir)
		assert.False(t, exists)
	})

	t.Run("unknown dialect", func(t *testing.T) {
		cfg := testConfig()
		cfg.Output.Dialect = "cobol"
		_, err := New(cfg, Collaborators{Introspector: db, Fs: fs})
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Contains(t, err.Error(), "cobol")
	})

	t.Run("introspector required", func(t *testing.T) {
		_, err := New(testConfig(), Collaborators{Fs: fs})
		assert.Error(t, err)
	})
}

func TestRunMissingModelsDir(t *testing.T) {
	db := setupDatabase(t)
	g, _ := newGenerator(t, testConfig(), afero.NewMemMapFs(), db)

	_, err := g.Run(context.Background())
	assert.Error(t, err)
}
