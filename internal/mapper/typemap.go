package mapper

// defaultTypes folds storage types into the semantic types that have a
// fake-data expression.
var defaultTypes = map[string]string{
	"smallint":     "boolean",
	"bigint":       "integer",
	"datetimetz":   "datetime",
	"decimal":      "float",
	"binary":       "text",
	"blob":         "text",
	"json_array":   "json",
	"simple_array": "json",
	"object":       "json",
}

// TypeMap maps a storage type to a semantic type. It is not modified after
// construction.
type TypeMap struct {
	types map[string]string
}

// NewTypeMap merges overrides over the default table.
func NewTypeMap(overrides map[string]string) TypeMap {
	types := make(map[string]string, len(defaultTypes)+len(overrides))
	for from, to := range defaultTypes {
		types[from] = to
	}
	for from, to := range overrides {
		types[from] = to
	}
	return TypeMap{types: types}
}

// Resolve returns the semantic type for raw; unmapped types pass through.
func (m TypeMap) Resolve(raw string) string {
	if semantic, ok := m.types[raw]; ok {
		return semantic
	}
	return raw
}
