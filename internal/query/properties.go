package query

// Text is the content of a rich text span.
type Text struct {
	Content string `json:"content"`
}

// RichText is a single text span.
type RichText struct {
	Text Text `json:"text"`
}

// Property is one column value keyed by its value kind, e.g.
// {"rich_text": [{"text": {"content": "hi"}}]}.
type Property map[Kind][]RichText

// Properties is the property payload of a record creation, keyed by column.
type Properties map[string]Property

// BuildCreatePayload emits one property per schema field that has a
// non-empty value in values (keyed by logical field name). Fields with no
// value, and schema entries lacking a column or kind, are left out.
func BuildCreatePayload(schema Schema, values map[string]string) Properties {
	props := make(Properties)
	for _, f := range schema {
		if !f.complete() {
			continue
		}
		v, ok := values[f.Name]
		if !ok || v == "" {
			continue
		}
		props[f.Column] = Property{
			f.Kind: {{Text: Text{Content: v}}},
		}
	}
	return props
}
