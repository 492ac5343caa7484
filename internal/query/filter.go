package query

import "encoding/json"

// Equals is the equality operator of text filters.
const Equals = "equals"

// Filter is a single-predicate database filter:
// {"property": column, "rich_text": {operator: value}}.
type Filter struct {
	Property string
	Kind     Kind
	Operator string
	Value    any
}

// BuildEqualityFilter builds a text filter on column. The operator and value
// are passed through untouched; the backend decides whether they are valid.
func BuildEqualityFilter(column, operator string, value any) Filter {
	return Filter{
		Property: column,
		Kind:     KindRichText,
		Operator: operator,
		Value:    value,
	}
}

// MarshalJSON renders the filter in the backend's nested shape.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"property":     f.Property,
		string(f.Kind): map[string]any{f.Operator: f.Value},
	})
}
