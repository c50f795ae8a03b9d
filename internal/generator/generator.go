// Package generator runs the factory generation pipeline: discovery,
// definition filter, schema mapping and emission.
package generator

import (
	"context"
	"fmt"
	"io"
	"text/template"

	"github.com/Lumos-Labs-HQ/factorygen/internal/config"
	"github.com/Lumos-Labs-HQ/factorygen/internal/database"
	"github.com/Lumos-Labs-HQ/factorygen/internal/dialect"
	"github.com/Lumos-Labs-HQ/factorygen/internal/discovery"
	"github.com/Lumos-Labs-HQ/factorygen/internal/emitter"
	"github.com/Lumos-Labs-HQ/factorygen/internal/mapper"
	"github.com/Lumos-Labs-HQ/factorygen/internal/registry"
	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/afero"
)

// Collaborators are the pipeline's external dependencies. Scanner and
// Registry are built from the config and Fs when nil.
type Collaborators struct {
	Scanner      *discovery.Scanner
	Registry     registry.Registry
	Introspector database.Introspector
	Fs           afero.Fs
}

type Report struct {
	Discovered     int
	AlreadyDefined int
	Mapped         int
	Written        []string
}

// ConfigError marks failures caused by configuration or templates.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

type Generator struct {
	cfg     *config.Config
	deps    Collaborators
	dialect *dialect.Dialect
	tmpl    *template.Template
	typeMap mapper.TypeMap
	rules   mapper.SkipRules

	Verbose bool
	Out     io.Writer
}

// New resolves the dialect and template up front so that template errors
// surface before anything is written.
func New(cfg *config.Config, deps Collaborators) (*Generator, error) {
	if deps.Introspector == nil {
		return nil, fmt.Errorf("generator: an introspector is required")
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	d := dialect.Get(cfg.Output.Dialect)
	if d == nil {
		return nil, &ConfigError{Err: fmt.Errorf("unknown output dialect %q (available: %v)", cfg.Output.Dialect, dialect.List())}
	}

	tmpl, err := emitter.LoadTemplate(deps.Fs, d, cfg.Output.Template)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	if deps.Scanner == nil {
		deps.Scanner = discovery.New(deps.Fs, discovery.Options{
			RootNamespace:  cfg.ModelNamespace,
			RecordTypes:    cfg.RecordTypes,
			PivotTypes:     cfg.PivotTypes,
			SkipModels:     cfg.SkipModels,
			TablePrefix:    cfg.Naming.TablePrefix,
			SingularTables: cfg.Naming.SingularTables,
		})
	}

	return &Generator{
		cfg:     cfg,
		deps:    deps,
		dialect: d,
		tmpl:    tmpl,
		typeMap: mapper.NewTypeMap(cfg.TypeOverrides),
		rules:   mapper.NewSkipRules(cfg.SkipColumns, cfg.SkipModelColumns),
		Out:     color.Output,
	}, nil
}

func (g *Generator) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	stage := color.New(color.FgCyan)

	stage.Fprintf(g.Out, "🔍 Discovering models in %s\n", g.cfg.ModelsDir)
	models, err := g.deps.Scanner.Discover(g.cfg.ModelsDir)
	if err != nil {
		return nil, err
	}
	report.Discovered = len(models)
	g.debugf("   found %d model(s)\n", len(models))

	reg, err := g.registry()
	if err != nil {
		return nil, err
	}
	pending := registry.Filter(models, reg)
	report.AlreadyDefined = len(models) - len(pending)
	g.debugf("   %d model(s) already have a factory\n", report.AlreadyDefined)
	if g.Verbose {
		g.debugDefined(models, reg)
	}

	if len(pending) == 0 {
		return report, nil
	}

	stage.Fprintf(g.Out, "🔄 Reading table schemas for %d model(s)\n", len(pending))
	plan, err := g.mapper().Map(ctx, pending)
	if err != nil {
		return nil, err
	}
	report.Mapped = plan.Len()

	if plan.Len() == 0 {
		return report, nil
	}

	stage.Fprintf(g.Out, "📝 Writing factories to %s\n", g.cfg.FactoriesDir)
	results, err := g.emitter().Emit(plan)
	for _, r := range results {
		report.Written = append(report.Written, r.Path)
	}
	if err != nil {
		return report, err
	}

	return report, nil
}

func (g *Generator) registry() (registry.Registry, error) {
	if g.deps.Registry != nil {
		return g.deps.Registry, nil
	}
	reg, err := registry.Load(g.deps.Fs, g.cfg.FactoriesDir, g.dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing factories: %w", err)
	}
	return reg, nil
}

// debugDefined lists where each already-defined model's factory lives.
func (g *Generator) debugDefined(models []types.Model, reg registry.Registry) {
	dir, ok := reg.(*registry.DirRegistry)
	if !ok {
		return
	}
	g.debugf("   %d definition(s) in %s\n", dir.Len(), g.cfg.FactoriesDir)
	for _, m := range models {
		if path, ok := dir.File(m); ok {
			g.debugf("   skip %s: defined in %s\n", m.Name, path)
		}
	}
}

func (g *Generator) mapper() *mapper.Mapper {
	return mapper.New(g.deps.Introspector, g.typeMap, g.dialect, g.rules, mapper.Options{
		Strict:      g.cfg.Strict,
		ColumnHints: g.cfg.ColumnHints,
		Verbose:     g.Verbose,
		Out:         g.Out,
	})
}

func (g *Generator) emitter() *emitter.Emitter {
	return emitter.New(g.deps.Fs, g.dialect, g.tmpl, emitter.Options{
		FactoriesDir:         g.cfg.FactoriesDir,
		Prefix:               g.cfg.Prefix,
		Suffix:               g.cfg.Suffix,
		FollowSubdirectories: g.cfg.FollowSubdirectories,
		RootNamespace:        g.cfg.ModelNamespace,
		AlignKeys:            g.cfg.AlignArrayKeys,
		Out:                  g.Out,
	})
}

func (g *Generator) debugf(format string, args ...interface{}) {
	if g.Verbose {
		color.New(color.FgHiBlack).Fprintf(g.Out, format, args...)
	}
}
