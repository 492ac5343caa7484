// Package query translates logical message fields into the record store's
// property and filter wire shapes.
package query

import (
	"errors"
	"fmt"
)

// Kind is the storage value-kind tag of a column.
type Kind string

const (
	KindRichText Kind = "rich_text"
	KindTitle    Kind = "title"
)

// Logical field names of a message record.
const (
	FieldSender    = "sender"
	FieldRecipient = "recipient"
	FieldMessage   = "message"
)

// Field pairs a logical field with its storage column and value kind.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

// Schema is the ordered list of fields that make up a record.
type Schema []Field

// MessageSchema is the layout of the mail table.
var MessageSchema = Schema{
	{Name: FieldSender, Column: "Sender", Kind: KindRichText},
	{Name: FieldRecipient, Column: "Recipient", Kind: KindRichText},
	{Name: FieldMessage, Column: "Message", Kind: KindTitle},
}

// Lookup returns the field with the given logical name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Column returns the storage column for a logical field, or "" if the field
// is unknown.
func (s Schema) Column(name string) string {
	f, _ := s.Lookup(name)
	return f.Column
}

// Validate reports every field that lacks a column or kind, and duplicate
// names or columns. BuildCreatePayload tolerates such fields by skipping
// them; Validate lets startup reject the schema instead.
func (s Schema) Validate() error {
	var errs []error
	names := make(map[string]bool, len(s))
	columns := make(map[string]bool, len(s))

	for i, f := range s {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("field %d: missing name", i))
		} else if names[f.Name] {
			errs = append(errs, fmt.Errorf("field %q: duplicate name", f.Name))
		}
		names[f.Name] = true

		if f.Column == "" {
			errs = append(errs, fmt.Errorf("field %q: missing column", f.Name))
		} else if columns[f.Column] {
			errs = append(errs, fmt.Errorf("field %q: duplicate column %q", f.Name, f.Column))
		}
		columns[f.Column] = true

		if f.Kind == "" {
			errs = append(errs, fmt.Errorf("field %q: missing kind", f.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}
	return nil
}

func (f Field) complete() bool {
	return f.Name != "" && f.Column != "" && f.Kind != ""
}
