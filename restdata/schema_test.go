// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// baseSchema returns a small schema resembling the built-in autosave
// schema: a read-only ID plus an editable title.
func baseSchema() Schema {
	return Schema{
		Title: "autosave",
		Fields: []Field{
			{
				Name:        "id",
				Type:        "integer",
				Description: "Unique identifier",
				Context:     []DisplayContext{ViewContext, EditContext, EmbedContext},
				ReadOnly:    true,
			},
			{
				Name:    "title",
				Type:    "string",
				Context: []DisplayContext{ViewContext, EditContext},
			},
		},
	}
}

// parentSchema returns a schema with a structured "content" field to
// borrow.
func parentSchema() Schema {
	return Schema{
		Title: "document",
		Fields: []Field{
			{
				Name:    "title",
				Type:    "string",
				Context: []DisplayContext{ViewContext, EditContext, EmbedContext},
			},
			{
				Name:        "content",
				Type:        "object",
				Description: "Structured body of the document",
				Context:     []DisplayContext{ViewContext, EditContext},
				Properties: []Field{
					{Name: "blocks", Type: "array"},
					{Name: "version", Type: "integer"},
				},
			},
		},
	}
}

func TestComposeAbsent(t *testing.T) {
	base := baseSchema()
	parent := parentSchema()
	composed := Compose(base, parent, "summary")
	assert.Equal(t, base, composed)
}

func TestComposeBorrow(t *testing.T) {
	base := baseSchema()
	parent := parentSchema()
	composed := Compose(base, parent, "content")

	if assert.Len(t, composed.Fields, 3) {
		borrowed, _ := parent.Field("content")
		assert.Equal(t, borrowed, composed.Fields[2])
	}

	// Composing again changes nothing further.
	again := Compose(composed, parent, "content")
	assert.Equal(t, composed, again)
}

func TestComposeOverride(t *testing.T) {
	base := baseSchema()
	base.Fields = append(base.Fields, Field{
		Name:    "content",
		Type:    "string",
		Context: []DisplayContext{ViewContext},
	})
	// Move it to the middle so position retention is visible.
	base.Fields[1], base.Fields[2] = base.Fields[2], base.Fields[1]

	parent := parentSchema()
	composed := Compose(base, parent, "content")

	if assert.Len(t, composed.Fields, 3) {
		borrowed, _ := parent.Field("content")
		assert.Equal(t, borrowed, composed.Fields[1])
		assert.Equal(t, "title", composed.Fields[2].Name)
	}

	// The base schema itself is untouched.
	assert.Equal(t, "string", base.Fields[1].Type)
}

func TestComposeDoesNotAlias(t *testing.T) {
	base := baseSchema()
	parent := parentSchema()
	composed := Compose(base, parent, "content")

	composed.Fields[2].Properties[0].Name = "mutated"
	composed.Fields[0].Context[0] = EmbedContext

	borrowed, _ := parent.Field("content")
	assert.Equal(t, "blocks", borrowed.Properties[0].Name)
	assert.Equal(t, ViewContext, base.Fields[0].Context[0])
}

func TestEditableArgs(t *testing.T) {
	schema := Schema{
		Title: "document",
		Fields: []Field{
			{Name: "id", Type: "integer", ReadOnly: true,
				Context: []DisplayContext{ViewContext, EditContext, EmbedContext}},
			{Name: "title", Type: "string",
				Context: []DisplayContext{ViewContext, EditContext}},
			{Name: "status", Type: "string",
				Context: []DisplayContext{EditContext}},
			{Name: "internal", Type: "string"},
			{Name: "content", Type: "object",
				Context: []DisplayContext{ViewContext, EditContext}},
		},
	}
	args := schema.EditableArgs()
	names := make([]string, len(args.Fields))
	for i, f := range args.Fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"title", "status", "content"}, names)
}

func TestSchemaMarshalOrder(t *testing.T) {
	schema := baseSchema()
	out, err := schema.MarshalJSON()
	if assert.NoError(t, err) {
		assert.Equal(t,
			`{"$schema":"http://json-schema.org/draft-04/schema#",`+
				`"title":"autosave","type":"object","properties":{`+
				`"id":{"description":"Unique identifier","type":"integer",`+
				`"context":["view","edit","embed"],"readonly":true},`+
				`"title":{"type":"string","context":["view","edit"]}}}`,
			string(out))
	}
}

func TestSchemaMarshalNested(t *testing.T) {
	schema := parentSchema()
	out, err := schema.MarshalJSON()
	if assert.NoError(t, err) {
		assert.Contains(t, string(out),
			`"properties":{"blocks":{"type":"array"},"version":{"type":"integer"}}`)
	}
}

func TestParseDisplayContext(t *testing.T) {
	assert.Equal(t, ViewContext, ParseDisplayContext("view"))
	assert.Equal(t, EditContext, ParseDisplayContext("edit"))
	assert.Equal(t, EmbedContext, ParseDisplayContext("embed"))
	assert.Equal(t, ViewContext, ParseDisplayContext(""))
	assert.Equal(t, ViewContext, ParseDisplayContext("raw"))
	assert.Equal(t, ViewContext, ParseDisplayContext("EDIT"))
}
