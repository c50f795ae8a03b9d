// Package discovery finds the model types declared in a Go source tree.
//
// A type is a model when it is an exported, non-generic struct that embeds a
// record marker, directly or through other indexed types, and embeds no pivot
// marker. Markers are type names: a qualified marker ("gorm.Model") matches
// the embedded expression exactly, a bare marker ("Model") matches the final
// identifier under any qualifier.
package discovery

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
	"github.com/spf13/afero"
	"gorm.io/gorm/schema"
)

type Options struct {
	RootNamespace  string
	RecordTypes    []string
	PivotTypes     []string
	SkipModels     []string
	TablePrefix    string
	SingularTables bool
}

type Scanner struct {
	fs     afero.Fs
	opts   Options
	naming schema.NamingStrategy
	skip   map[string]bool
}

func New(fs afero.Fs, opts Options) *Scanner {
	skip := make(map[string]bool, len(opts.SkipModels))
	for _, name := range opts.SkipModels {
		skip[strings.ToLower(name)] = true
	}
	return &Scanner{
		fs:   fs,
		opts: opts,
		naming: schema.NamingStrategy{
			TablePrefix:   opts.TablePrefix,
			SingularTable: opts.SingularTables,
		},
		skip: skip,
	}
}

// Discover returns the models declared under root in walk order.
func (s *Scanner) Discover(root string) ([]types.Model, error) {
	ix, err := s.Index(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan models directory %s: %w", root, err)
	}

	var models []types.Model
	for _, t := range ix.Types {
		if !s.isModel(ix, t) {
			continue
		}
		model := s.toModel(t)
		if s.skipped(model) {
			continue
		}
		models = append(models, model)
	}
	return models, nil
}

func (s *Scanner) isModel(ix *Index, t *TypeInfo) bool {
	if !t.Struct || !t.Exported || t.Generic {
		return false
	}
	// marker types themselves are bases, not models
	self := TypeRef{Name: t.Name}
	if matches(self, s.opts.RecordTypes) || matches(self, s.opts.PivotTypes) {
		return false
	}
	return s.embeds(ix, t, s.opts.RecordTypes, map[*TypeInfo]bool{}) &&
		!s.embeds(ix, t, s.opts.PivotTypes, map[*TypeInfo]bool{})
}

func (s *Scanner) embeds(ix *Index, t *TypeInfo, markers []string, seen map[*TypeInfo]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true

	for _, ref := range t.Embeds {
		if matches(ref, markers) {
			return true
		}
		if parent, ok := ix.resolve(t, ref); ok && s.embeds(ix, parent, markers, seen) {
			return true
		}
	}
	return false
}

func matches(ref TypeRef, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(marker, ".") {
			if ref.String() == marker {
				return true
			}
			continue
		}
		if ref.Name == marker {
			return true
		}
	}
	return false
}

func (s *Scanner) toModel(t *TypeInfo) types.Model {
	name := t.Name
	if t.Namespace != "" {
		name = t.Namespace + "." + t.Name
	}
	table := t.TableName
	if table == "" {
		table = s.naming.TableName(t.Name)
	}
	return types.Model{
		Name:      name,
		TypeName:  t.Name,
		Namespace: t.Namespace,
		File:      t.File,
		Table:     table,
	}
}

func (s *Scanner) skipped(m types.Model) bool {
	return s.skip[strings.ToLower(m.Name)] || s.skip[strings.ToLower(m.TypeName)]
}
