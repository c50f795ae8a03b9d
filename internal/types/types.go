package types

// Model identifies a discovered persistable type.
type Model struct {
	Name      string // fully-qualified: namespace + "." + TypeName
	TypeName  string
	Namespace string // slash-separated package path, rooted at model_namespace
	File      string
	Table     string
}

type SchemaColumn struct {
	Name            string
	Type            string // canonical storage type (string, integer, datetime, ...)
	RawType         string // type as reported by the database
	Nullable        bool
	IsPrimary       bool
	IsAutoIncrement bool
}

type Attribute struct {
	Column     string
	Expression string
}

type PlanEntry struct {
	Model      Model
	Attributes []Attribute
}

// Plan is the ordered result of schema mapping, keyed by model name.
type Plan struct {
	Entries []PlanEntry
}

func (p *Plan) Add(model Model, attrs []Attribute) {
	p.Entries = append(p.Entries, PlanEntry{Model: model, Attributes: attrs})
}

func (p *Plan) Len() int {
	return len(p.Entries)
}

// Lookup returns the attributes planned for the model with the given name.
func (p *Plan) Lookup(name string) ([]Attribute, bool) {
	for _, e := range p.Entries {
		if e.Model.Name == name {
			return e.Attributes, true
		}
	}
	return nil, false
}
