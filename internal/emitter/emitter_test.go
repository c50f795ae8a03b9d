package emitter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lumos-Labs-HQ/factorygen/internal/dialect"
	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var widget = types.Model{Name: "models.Widget", TypeName: "Widget", Namespace: "models", Table: "widgets"}

func widgetPlan() *types.Plan {
	plan := &types.Plan{}
	plan.Add(widget, []types.Attribute{
		{Column: "name", Expression: "faker.LetterN(50)"},
		{Column: "created_at", Expression: "faker.Date()"},
	})
	return plan
}

func newEmitter(t *testing.T, fs afero.Fs, d *dialect.Dialect, opts Options) (*Emitter, *bytes.Buffer) {
	t.Helper()
	tmpl, err := LoadTemplate(fs, d, "")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	opts.Out = out
	if opts.FactoriesDir == "" {
		opts.FactoriesDir = "/app/internal/factories"
	}
	if opts.RootNamespace == "" {
		opts.RootNamespace = "models"
	}
	return New(fs, d, tmpl, opts), out
}

func TestEmitWidget(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, out := newEmitter(t, fs, dialect.Go, Options{Suffix: "Factory"})

	results, err := e.Emit(widgetPlan())
	require.NoError(t, err)
	require.Len(t, results, 1)

	path := filepath.Join("/app/internal/factories", "WidgetFactory.go")
	assert.Equal(t, path, results[0].Path)
	assert.False(t, results[0].Overwritten)

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	want := `// Generated by factorygen.

package factories

import "github.com/brianvoe/gofakeit/v7"

//factorygen:model models.Widget
func WidgetFactory(faker *gofakeit.Faker) map[string]any {
	return map[string]any{
		"name": faker.LetterN(50),
		"created_at": faker.Date(),
	}
}
`
	assert.Equal(t, want, string(content))
	assert.Contains(t, out.String(), "Generated "+path)

	cached, err := afero.Exists(fs, filepath.Join("/app/internal/factories", ".factorygen_cache.json"))
	require.NoError(t, err)
	assert.True(t, cached)
}

func TestEmitAlignedPHP(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, _ := newEmitter(t, fs, dialect.PHP, Options{Suffix: "Factory", AlignKeys: true})

	plan := &types.Plan{}
	plan.Add(widget, []types.Attribute{
		{Column: "id_code", Expression: "$faker->text(50)"},
		{Column: "created_at", Expression: "$faker->dateTime"},
		{Column: "qty", Expression: "$faker->numberBetween(1, 100)"},
	})

	results, err := e.Emit(plan)
	require.NoError(t, err)

	content, err := afero.ReadFile(fs, results[0].Path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(results[0].Path, "WidgetFactory.php"))

	text := string(content)
	assert.Contains(t, text, `$factory->define(\models\Widget::class, function (Faker $faker) {`)
	assert.Contains(t, text, "        'id_code'    => $faker->text(50),\n")
	assert.Contains(t, text, "        'created_at' => $faker->dateTime,\n")
	assert.Contains(t, text, "        'qty'        => $faker->numberBetween(1, 100),\n")

	// every key token ends at the same column
	var arrows []int
	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, "=>"); i >= 0 && strings.HasPrefix(strings.TrimSpace(line), "'") {
			arrows = append(arrows, i)
		}
	}
	require.Len(t, arrows, 3)
	assert.Equal(t, arrows[0], arrows[1])
	assert.Equal(t, arrows[1], arrows[2])
}

func TestEmitFollowSubdirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, _ := newEmitter(t, fs, dialect.Go, Options{Suffix: "Factory", FollowSubdirectories: true})

	profile := types.Model{Name: "models/user.Profile", TypeName: "Profile", Namespace: "models/user", Table: "profiles"}
	plan := &types.Plan{}
	plan.Add(profile, []types.Attribute{{Column: "bio", Expression: "faker.LetterN(50)"}})
	plan.Add(widget, []types.Attribute{{Column: "name", Expression: "faker.LetterN(50)"}})

	results, err := e.Emit(plan)
	require.NoError(t, err)
	require.Len(t, results, 2)

	want := filepath.Join("/app/internal/factories", "user", "ProfileFactory.go")
	assert.Equal(t, want, results[0].Path)
	assert.Equal(t, filepath.Join("/app/internal/factories", "WidgetFactory.go"), results[1].Path)

	isDir, err := afero.IsDir(fs, filepath.Join("/app/internal/factories", "user"))
	require.NoError(t, err)
	assert.True(t, isDir)

	content, err := afero.ReadFile(fs, want)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package user\n")
	assert.Contains(t, string(content), "//factorygen:model models/user.Profile\n")
}

func TestEmitPrefixSuffix(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, _ := newEmitter(t, fs, dialect.Go, Options{Prefix: "New", Suffix: ""})

	results, err := e.Emit(widgetPlan())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/app/internal/factories", "NewWidget.go"), results[0].Path)

	content, err := afero.ReadFile(fs, results[0].Path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "func NewWidget(faker *gofakeit.Faker)")
}

func TestEmitOverwriteWarning(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := filepath.Join("/app/internal/factories", "WidgetFactory.go")

	e, out := newEmitter(t, fs, dialect.Go, Options{Suffix: "Factory"})
	_, err := e.Emit(widgetPlan())
	require.NoError(t, err)

	t.Run("unchanged file is replaced quietly", func(t *testing.T) {
		out.Reset()
		results, err := e.Emit(widgetPlan())
		require.NoError(t, err)
		assert.False(t, results[0].Overwritten)
		assert.NotContains(t, out.String(), "Overwriting")
	})

	t.Run("edited file is replaced with a warning", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, path, []byte("// hand written\n"), 0644))
		out.Reset()

		results, err := e.Emit(widgetPlan())
		require.NoError(t, err)
		assert.True(t, results[0].Overwritten)
		assert.Contains(t, out.String(), "Overwriting "+path)

		content, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "func WidgetFactory")
	})
}

type failingMkdirFs struct {
	afero.Fs
}

func (f failingMkdirFs) MkdirAll(path string, perm os.FileMode) error {
	return errors.New("read-only file system")
}

func TestEmitDirectoryFailure(t *testing.T) {
	fs := failingMkdirFs{afero.NewMemMapFs()}
	e, _ := newEmitter(t, fs, dialect.Go, Options{Suffix: "Factory"})

	results, err := e.Emit(widgetPlan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
	assert.Empty(t, results)
}

func TestLoadTemplate(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("missing custom template", func(t *testing.T) {
		_, err := LoadTemplate(fs, dialect.Go, "/templates/factory.tmpl")
		assert.Error(t, err)
	})

	t.Run("unparsable custom template", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/templates/bad.tmpl", []byte("{{range"), 0644))
		_, err := LoadTemplate(fs, dialect.Go, "/templates/bad.tmpl")
		assert.Error(t, err)
	})

	t.Run("custom template", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/templates/list.tmpl",
			[]byte("{{.TypeName}}:{{range .Attributes}} {{.Key}}={{.Expression}}{{end}}\n"), 0644))
		tmpl, err := LoadTemplate(fs, dialect.Go, "/templates/list.tmpl")
		require.NoError(t, err)

		e := New(fs, dialect.Go, tmpl, Options{FactoriesDir: "/out", Suffix: "Factory", Out: &bytes.Buffer{}})
		results, err := e.Emit(widgetPlan())
		require.NoError(t, err)

		content, err := afero.ReadFile(fs, results[0].Path)
		require.NoError(t, err)
		assert.Equal(t, "Widget: name=faker.LetterN(50) created_at=faker.Date()\n", string(content))
	})
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"/app/internal/factories": "factories",
		"/app/test-factories":     "test_factories",
		"/app/2024":               "_2024",
		"/app/User":               "user",
		".":                       "factories",
	}
	for dir, want := range tests {
		assert.Equal(t, want, packageName(dir), dir)
	}
}
