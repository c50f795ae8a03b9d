// Package mapper turns table schemas into ordered attribute lists.
package mapper

import (
	"context"
	"fmt"
	"io"

	"github.com/Lumos-Labs-HQ/factorygen/internal/database"
	"github.com/Lumos-Labs-HQ/factorygen/internal/dialect"
	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
	"github.com/fatih/color"
)

type Options struct {
	// Strict turns introspection errors into fatal errors.
	Strict bool

	// ColumnHints lets string and text columns use a name-based expression.
	ColumnHints bool

	Verbose bool

	// Out receives warnings and debug lines. Defaults to color.Output.
	Out io.Writer
}

type Mapper struct {
	introspector database.Introspector
	types        TypeMap
	dialect      *dialect.Dialect
	rules        SkipRules
	opts         Options

	warn  *color.Color
	debug *color.Color
}

func New(introspector database.Introspector, typeMap TypeMap, d *dialect.Dialect, rules SkipRules, opts Options) *Mapper {
	if opts.Out == nil {
		opts.Out = color.Output
	}
	return &Mapper{
		introspector: introspector,
		types:        typeMap,
		dialect:      d,
		rules:        rules,
		opts:         opts,
		warn:         color.New(color.FgYellow),
		debug:        color.New(color.FgHiBlack),
	}
}

// Map builds the plan for models in order. Models whose table reports no
// columns, or whose columns are all skipped, get no entry.
func (m *Mapper) Map(ctx context.Context, models []types.Model) (*types.Plan, error) {
	plan := &types.Plan{}

	for _, model := range models {
		columns, err := m.introspector.GetTableColumns(ctx, model.Table)
		if err != nil {
			if m.opts.Strict {
				return nil, fmt.Errorf("failed to read columns of table %s for %s: %w", model.Table, model.Name, err)
			}
			m.warn.Fprintf(m.opts.Out, "⚠️  Skipping %s: failed to read table %s: %v\n", model.Name, model.Table, err)
			continue
		}

		if len(columns) == 0 {
			m.debugEmpty(ctx, model)
			continue
		}

		attrs := m.attributes(model, columns)
		if len(attrs) == 0 {
			m.debugf("  %s: every column of %s is skipped\n", model.Name, model.Table)
			continue
		}
		plan.Add(model, attrs)
	}

	return plan, nil
}

func (m *Mapper) attributes(model types.Model, columns []types.SchemaColumn) []types.Attribute {
	var attrs []types.Attribute
	for _, column := range columns {
		if column.IsAutoIncrement || m.rules.Skip(model, column.Name) {
			continue
		}
		attrs = append(attrs, types.Attribute{
			Column:     column.Name,
			Expression: m.expression(column),
		})
	}
	return attrs
}

func (m *Mapper) expression(column types.SchemaColumn) string {
	semantic := m.types.Resolve(column.Type)
	if m.opts.ColumnHints && (semantic == "string" || semantic == "text") {
		if expr, ok := m.dialect.Hint(column.Name); ok {
			return expr
		}
	}
	return m.dialect.Expression(semantic)
}

func (m *Mapper) debugEmpty(ctx context.Context, model types.Model) {
	if !m.opts.Verbose {
		return
	}
	exists, err := m.introspector.CheckTableExists(ctx, model.Table)
	switch {
	case err != nil:
		m.debugf("  %s: no columns for table %s\n", model.Name, model.Table)
	case !exists:
		m.debugf("  %s: table %s does not exist\n", model.Name, model.Table)
	default:
		m.debugf("  %s: table %s has no columns\n", model.Name, model.Table)
	}
}

func (m *Mapper) debugf(format string, args ...interface{}) {
	if m.opts.Verbose {
		m.debug.Fprintf(m.opts.Out, format, args...)
	}
}
