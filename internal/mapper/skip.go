package mapper

import (
	"strings"

	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
)

// SkipRules decide which columns never become attributes.
type SkipRules struct {
	columns      map[string]bool
	modelColumns map[string]map[string]bool
}

// NewSkipRules builds rules from the global column list and the per-model
// lists. Model keys match a fully-qualified or bare type name, ignoring case.
func NewSkipRules(columns []string, modelColumns map[string][]string) SkipRules {
	rules := SkipRules{
		columns:      toSet(columns),
		modelColumns: make(map[string]map[string]bool, len(modelColumns)),
	}
	for model, cols := range modelColumns {
		key := strings.ToLower(model)
		if existing, ok := rules.modelColumns[key]; ok {
			for c := range toSet(cols) {
				existing[c] = true
			}
			continue
		}
		rules.modelColumns[key] = toSet(cols)
	}
	return rules
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func (r SkipRules) Skip(model types.Model, column string) bool {
	if r.columns[column] {
		return true
	}
	return r.modelColumns[strings.ToLower(model.Name)][column] ||
		r.modelColumns[strings.ToLower(model.TypeName)][column]
}
