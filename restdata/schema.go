// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"fmt"

	"github.com/ugorji/go/codec"
)

// DisplayContext describes the audience a response is being shaped
// for.  Every schema field lists the contexts it appears in.
type DisplayContext int

const (
	// ViewContext is the default public read context.
	ViewContext DisplayContext = iota

	// EditContext is the authoring context.  Fields a caller may
	// set when creating or updating a resource appear here.
	EditContext

	// EmbedContext is the minimal context used when a resource is
	// embedded inside another response.
	EmbedContext
)

// MarshalText returns a string representing a display context.
func (ctx DisplayContext) MarshalText() ([]byte, error) {
	switch ctx {
	case ViewContext:
		return []byte("view"), nil
	case EditContext:
		return []byte("edit"), nil
	case EmbedContext:
		return []byte("embed"), nil
	default:
		return nil, fmt.Errorf("invalid context (marshal, %+v)", ctx)
	}
}

// UnmarshalText populates a display context from a string.
func (ctx *DisplayContext) UnmarshalText(text []byte) error {
	switch string(text) {
	case "view":
		*ctx = ViewContext
	case "edit":
		*ctx = EditContext
	case "embed":
		*ctx = EmbedContext
	default:
		return fmt.Errorf("invalid context (unmarshal, %+v)", string(text))
	}
	return nil
}

// ParseDisplayContext converts a request parameter to a display
// context.  Anything that does not name a known context, including
// the empty string, is ViewContext.
func ParseDisplayContext(s string) DisplayContext {
	var ctx DisplayContext
	if ctx.UnmarshalText([]byte(s)) != nil {
		return ViewContext
	}
	return ctx
}

// Field describes a single named field of a resource schema.
type Field struct {
	// Name of the field as it appears in field dictionaries and
	// shaped response items.
	Name string

	// Type is the JSON Schema type of the field's value:
	// "string", "integer", "number", "boolean", "object", or
	// "array".
	Type string

	// Description is a human-readable description of the field.
	Description string

	// Format optionally names a JSON Schema format for the value,
	// such as "date-time".
	Format string

	// Enum optionally restricts a string field to a fixed set of
	// values.
	Enum []string

	// Context lists the display contexts this field appears in.
	// A field with no contexts never appears in shaped responses.
	Context []DisplayContext

	// ReadOnly marks fields that are reported but cannot be set
	// through uploaded dictionaries.
	ReadOnly bool

	// Properties optionally declares the properties of an
	// "object" field, in order.  Sanitizing an object value
	// against a field with declared properties drops any
	// undeclared keys.
	Properties []Field
}

// InContext reports whether this field appears in a display context.
func (f Field) InContext(ctx DisplayContext) bool {
	for _, c := range f.Context {
		if c == ctx {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of this field.
func (f Field) Copy() Field {
	g := f
	if f.Enum != nil {
		g.Enum = append([]string(nil), f.Enum...)
	}
	if f.Context != nil {
		g.Context = append([]DisplayContext(nil), f.Context...)
	}
	if f.Properties != nil {
		g.Properties = make([]Field, len(f.Properties))
		for i, p := range f.Properties {
			g.Properties[i] = p.Copy()
		}
	}
	return g
}

// Schema describes the shaped representation of one resource type:
// an ordered list of named fields.  Schemas are value objects;
// composing or filtering them never modifies the original.
type Schema struct {
	// Title names the resource type.
	Title string

	// Fields lists the declared fields, in the order they appear
	// in marshaled schemas.  Names are unique.
	Fields []Field
}

// Copy returns a deep copy of this schema.
func (s Schema) Copy() Schema {
	result := Schema{Title: s.Title}
	if s.Fields != nil {
		result.Fields = make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			result.Fields[i] = f.Copy()
		}
	}
	return result
}

// Field returns the declaration of a named field, plus a flag for
// whether the schema declares it at all.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether the schema declares a named field.
func (s Schema) HasField(name string) bool {
	_, present := s.Field(name)
	return present
}

// EditableArgs returns the subset of this schema a caller may set
// when creating or updating a resource: the fields that appear in
// the edit context and are not read-only.  The result is a copy.
func (s Schema) EditableArgs() Schema {
	args := Schema{Title: s.Title}
	for _, f := range s.Fields {
		if f.InContext(EditContext) && !f.ReadOnly {
			args.Fields = append(args.Fields, f.Copy())
		}
	}
	return args
}

// Compose merges one field of a parent schema into a base schema.
// If the parent does not declare the named field, the result is just
// a copy of base.  If it does, the parent's declaration is copied
// into the result, replacing the base declaration in place if base
// already has one and appending at the end otherwise.  Neither input
// is modified.
func Compose(base, parent Schema, field string) Schema {
	result := base.Copy()
	borrowed, present := parent.Field(field)
	if !present {
		return result
	}
	for i, f := range result.Fields {
		if f.Name == field {
			result.Fields[i] = borrowed.Copy()
			return result
		}
	}
	result.Fields = append(result.Fields, borrowed.Copy())
	return result
}

// jsonValue encodes a single value as JSON.
func jsonValue(v interface{}) ([]byte, error) {
	var out []byte
	encoder := codec.NewEncoderBytes(&out, &codec.JsonHandle{})
	err := encoder.Encode(v)
	return out, err
}

// MarshalJSON returns a JSON Schema representation of this schema.
// Properties appear in their declared order, which is why this does
// not just encode a map.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"$schema":"http://json-schema.org/draft-04/schema#"`)
	if s.Title != "" {
		title, err := jsonValue(s.Title)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"title":`)
		buf.Write(title)
	}
	buf.WriteString(`,"type":"object","properties":`)
	if err := marshalProperties(&buf, s.Fields); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalProperties writes an ordered JSON object mapping field names
// to their descriptors.
func marshalProperties(buf *bytes.Buffer, fields []Field) error {
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := jsonValue(f.Name)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := f.marshalDescriptor(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// marshalDescriptor writes the JSON Schema descriptor for one field.
func (f Field) marshalDescriptor(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	first := true
	emit := func(key string, value interface{}) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"` + key + `":`)
		enc, err := jsonValue(value)
		if err != nil {
			return err
		}
		buf.Write(enc)
		return nil
	}
	if f.Description != "" {
		if err := emit("description", f.Description); err != nil {
			return err
		}
	}
	if f.Type != "" {
		if err := emit("type", f.Type); err != nil {
			return err
		}
	}
	if f.Format != "" {
		if err := emit("format", f.Format); err != nil {
			return err
		}
	}
	if len(f.Enum) > 0 {
		if err := emit("enum", f.Enum); err != nil {
			return err
		}
	}
	if len(f.Context) > 0 {
		names := make([]string, len(f.Context))
		for i, ctx := range f.Context {
			text, err := ctx.MarshalText()
			if err != nil {
				return err
			}
			names[i] = string(text)
		}
		if err := emit("context", names); err != nil {
			return err
		}
	}
	if f.ReadOnly {
		if err := emit("readonly", true); err != nil {
			return err
		}
	}
	if len(f.Properties) > 0 {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"properties":`)
		if err := marshalProperties(buf, f.Properties); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
