package ir

import "fmt"

// FieldKind tags a field definition. The set is closed: every switch over
// FieldKind handles all three kinds.
type FieldKind int

const (
	// Plain fields are scalars copied as-is on resolution.
	Plain FieldKind = iota
	// Foreign fields hold a single related row id and resolve to that row.
	Foreign
	// Reverse fields resolve to every related row whose Backref field points
	// at the current row. On write they carry target ids for back-reference
	// application and are never stored.
	Reverse
)

// String returns the declaration keyword for the kind.
func (k FieldKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Foreign:
		return "foreign"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// ParseFieldKind parses a declaration keyword ("plain", "foreign", "reverse").
// Upper-case spellings are accepted as well.
func ParseFieldKind(s string) (FieldKind, error) {
	switch s {
	case "plain", "PLAIN":
		return Plain, nil
	case "foreign", "FOREIGN", "OBJECT":
		return Foreign, nil
	case "reverse", "REVERSE", "BACKREF":
		return Reverse, nil
	default:
		return 0, fmt.Errorf("unknown field kind %q: must be one of plain, foreign, reverse", s)
	}
}

// FieldDef declares one field of a model.
type FieldDef struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`

	// ModelName is the related model for Foreign and Reverse fields.
	ModelName string `json:"model_name,omitempty"`

	// Backref is the field on ModelName that points back at this model
	// (Reverse only).
	Backref string `json:"backref,omitempty"`
}

// PlainField declares a scalar field.
func PlainField(name string) FieldDef {
	return FieldDef{Name: name, Kind: Plain}
}

// ForeignField declares a single-row relation to modelName.
func ForeignField(name, modelName string) FieldDef {
	return FieldDef{Name: name, Kind: Foreign, ModelName: modelName}
}

// ReverseField declares a list relation: rows of modelName whose backref
// field equals this row's id.
func ReverseField(name, modelName, backref string) FieldDef {
	return FieldDef{Name: name, Kind: Reverse, ModelName: modelName, Backref: backref}
}

// ValidationFunc gates an action. Returning false turns the action into a
// silent no-op.
type ValidationFunc func(state State, action Action) bool

// PreActionFunc may rewrite both the state and the action before the
// remaining pipeline runs.
type PreActionFunc func(state State, action Action) (State, Action)

// IDResolverFunc allocates the id for a new row. Its result is used verbatim.
type IDResolverFunc func(state State, modelName string, data Row) IRValue

// ConstructFunc maps the resolved field set of a row to a domain value.
type ConstructFunc func(fields map[string]any) any

// ModelDef declares a model. Fields keep declaration order, which is the
// order the resolver visits them in. Every hook is optional.
type ModelDef struct {
	Fields []FieldDef `json:"fields"`

	Validation ValidationFunc `json:"-"`
	PreAction  PreActionFunc  `json:"-"`
	IDResolver IDResolverFunc `json:"-"`
	Construct  ConstructFunc  `json:"-"`
}

// Field looks up a field definition by name.
func (m *ModelDef) Field(name string) (FieldDef, bool) {
	if m == nil {
		return FieldDef{}, false
	}
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Schema maps model names to their definitions. A nil Schema is valid and
// disables relation handling.
type Schema map[string]*ModelDef

// Model returns the definition for name, or nil.
func (s Schema) Model(name string) *ModelDef {
	if s == nil {
		return nil
	}
	return s[name]
}
