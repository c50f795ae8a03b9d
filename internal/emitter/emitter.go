// Package emitter renders factory files from a plan and writes them out.
package emitter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/Lumos-Labs-HQ/factorygen/internal/dialect"
	"github.com/Lumos-Labs-HQ/factorygen/internal/gencommon"
	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/afero"
)

// FactoryData is what a factory template is executed with. Model is the
// model as the dialect names it; Package is the Go package name of the output
// directory.
type FactoryData struct {
	Model       string
	TypeName    string
	FactoryName string
	Package     string
	Attributes  []AttributeData
}

type AttributeData struct {
	Key        string
	Expression string
	// Pad aligns the key column when align_array_keys is set.
	Pad string
}

type Options struct {
	FactoriesDir         string
	Prefix               string
	Suffix               string
	FollowSubdirectories bool
	RootNamespace        string
	AlignKeys            bool

	// Out receives progress lines. Defaults to color.Output.
	Out io.Writer
}

type Result struct {
	Model types.Model
	Path  string
	// Overwritten is set when the file existed and differed from the last
	// generated content.
	Overwritten bool
}

type Emitter struct {
	fs      afero.Fs
	dialect *dialect.Dialect
	tmpl    *template.Template
	opts    Options
}

// LoadTemplate parses the template at path, or the dialect's default when
// path is empty.
func LoadTemplate(fs afero.Fs, d *dialect.Dialect, path string) (*template.Template, error) {
	text := d.Template
	if path != "" {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", path, err)
		}
		text = string(content)
	}

	tmpl, err := template.New(d.Name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

func New(fs afero.Fs, d *dialect.Dialect, tmpl *template.Template, opts Options) *Emitter {
	if opts.Out == nil {
		opts.Out = color.Output
	}
	return &Emitter{
		fs:      fs,
		dialect: d,
		tmpl:    tmpl,
		opts:    opts,
	}
}

// Emit writes one file per plan entry, overwriting existing files. It stops
// at the first failure; files written before it stay on disk.
func (e *Emitter) Emit(plan *types.Plan) ([]Result, error) {
	cache := gencommon.NewGenerationCache(e.fs, e.opts.FactoriesDir)
	results := make([]Result, 0, plan.Len())

	for _, entry := range plan.Entries {
		result, err := e.emit(cache, entry)
		if err != nil {
			e.saveCache(cache)
			return results, err
		}
		results = append(results, result)
	}

	if len(results) > 0 {
		cache.MarkGeneration()
		e.saveCache(cache)
	}
	return results, nil
}

func (e *Emitter) emit(cache *gencommon.GenerationCache, entry types.PlanEntry) (Result, error) {
	path := e.Path(entry.Model)
	dir := filepath.Dir(path)

	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	content, err := e.Render(entry, packageName(dir))
	if err != nil {
		return Result{}, fmt.Errorf("failed to render factory for %s: %w", entry.Model.Name, err)
	}

	result := Result{Model: entry.Model, Path: path}
	if exists, _ := afero.Exists(e.fs, path); exists && cache.Modified(path) {
		result.Overwritten = true
		gencommon.PrintOverwriteWarning(e.opts.Out, path)
	}

	if err := afero.WriteFile(e.fs, path, []byte(content), 0644); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	cache.UpdateGeneratedFileChecksum(path, gencommon.ComputeChecksum([]byte(content)))
	gencommon.PrintWriteMessage(e.opts.Out, path)

	return result, nil
}

func (e *Emitter) saveCache(cache *gencommon.GenerationCache) {
	if err := cache.Save(); err != nil {
		color.New(color.FgYellow).Fprintf(e.opts.Out, "⚠️  Failed to save generation cache: %v\n", err)
	}
}

// Render executes the template for one plan entry.
func (e *Emitter) Render(entry types.PlanEntry, pkg string) (string, error) {
	data := FactoryData{
		Model:       e.dialect.ClassName(entry.Model),
		TypeName:    entry.Model.TypeName,
		FactoryName: e.opts.Prefix + entry.Model.TypeName + e.opts.Suffix,
		Package:     pkg,
		Attributes:  e.attributes(entry.Attributes),
	}

	b := gencommon.GetBuilder()
	defer gencommon.PutBuilder(b)

	if err := e.tmpl.Execute(b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (e *Emitter) attributes(attrs []types.Attribute) []AttributeData {
	width := 0
	if e.opts.AlignKeys {
		for _, a := range attrs {
			width = max(width, len(a.Column))
		}
	}

	out := make([]AttributeData, 0, len(attrs))
	for _, a := range attrs {
		pad := ""
		if e.opts.AlignKeys {
			pad = strings.Repeat(" ", width-len(a.Column))
		}
		out = append(out, AttributeData{Key: a.Column, Expression: a.Expression, Pad: pad})
	}
	return out
}

// Path is {factories_dir}[/mirrored]/{prefix}{TypeName}{suffix}.{ext}.
func (e *Emitter) Path(model types.Model) string {
	name := e.opts.Prefix + model.TypeName + e.opts.Suffix + "." + e.dialect.Extension
	if !e.opts.FollowSubdirectories {
		return filepath.Join(e.opts.FactoriesDir, name)
	}
	sub := subNamespace(model.Namespace, e.opts.RootNamespace)
	return filepath.Join(e.opts.FactoriesDir, filepath.FromSlash(sub), name)
}

// subNamespace strips the root namespace from namespace.
func subNamespace(namespace, root string) string {
	switch {
	case root == "":
		return namespace
	case namespace == root:
		return ""
	case strings.HasPrefix(namespace, root+"/"):
		return namespace[len(root)+1:]
	default:
		return namespace
	}
}

// packageName derives a Go package name from a directory name.
func packageName(dir string) string {
	base := strings.ToLower(filepath.Base(dir))
	name := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return r
		}
		return '_'
	}, base)
	name = strings.Trim(name, "_")
	if name == "" || name == "." {
		return "factories"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
