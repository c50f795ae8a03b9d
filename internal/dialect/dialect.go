// Package dialect provides a registry of output languages for generated
// factory files.
//
// A dialect owns everything that depends on the target language: the file
// extension, the default template, the fake-data expression per semantic type,
// the null literal for unmapped types, and the pattern that recognizes an
// existing factory definition.
package dialect

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Hint maps a column-name fragment to an expression. Keywords are matched as
// lower-case substrings of the column name.
type Hint struct {
	Keywords   []string
	Exclude    []string
	Expression string
}

type Dialect struct {
	// Name is the value of output.dialect ("go", "php").
	Name string

	// Extension is the file extension without the leading dot.
	Extension string

	// Template is the default factory template.
	Template string

	// Null is emitted for semantic types without an expression.
	Null string

	Expressions map[string]string

	// Hints are checked in order; the first match wins.
	Hints []Hint

	// DefinitionPattern captures the model identifier of an existing factory
	// definition in its first group.
	DefinitionPattern *regexp.Regexp

	// ClassName renders a model name the way the target language refers to it.
	ClassName func(model types.Model) string
}

// Expression returns the fake-data expression for a semantic type, or the
// null literal when the type has none.
func (d *Dialect) Expression(semantic string) string {
	if expr, ok := d.Expressions[semantic]; ok {
		return expr
	}
	return d.Null
}

// Hint returns the expression suggested by the column name, if any.
func (d *Dialect) Hint(column string) (string, bool) {
	name := strings.ToLower(column)
	for _, h := range d.Hints {
		if containsAny(name, h.Exclude) {
			continue
		}
		if containsAny(name, h.Keywords) {
			return h.Expression, true
		}
	}
	return "", false
}

// Definitions returns every model identifier defined in src.
func (d *Dialect) Definitions(src string) []string {
	var names []string
	for _, m := range d.DefinitionPattern.FindAllStringSubmatch(src, -1) {
		names = append(names, m[1])
	}
	return names
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func mustTemplate(name string) string {
	b, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("dialect: missing embedded template %s: %v", name, err))
	}
	return string(b)
}

// registry maps dialect names to dialects.
var registry = make(map[string]*Dialect)

// Register adds a dialect to the registry. Panics on a duplicate name.
func Register(d *Dialect) {
	if _, exists := registry[d.Name]; exists {
		panic(fmt.Sprintf("dialect: %q already registered", d.Name))
	}
	registry[d.Name] = d
}

// Get returns the dialect with the given name, or nil.
func Get(name string) *Dialect {
	return registry[strings.ToLower(name)]
}

// List returns the registered dialect names in sorted order.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
