// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	f := Field{Name: "title", Type: "string"}
	assert.Equal(t, "hello", SanitizeValue(f, "hello"))
	assert.Nil(t, SanitizeValue(f, 17))
	assert.Nil(t, SanitizeValue(f, nil))
}

func TestSanitizeEnum(t *testing.T) {
	f := Field{Name: "status", Type: "string",
		Enum: []string{"draft", "published", "archived"}}
	assert.Equal(t, "draft", SanitizeValue(f, "draft"))
	assert.Nil(t, SanitizeValue(f, "pending"))
}

func TestSanitizeBoolean(t *testing.T) {
	f := Field{Name: "sticky", Type: "boolean"}
	assert.Equal(t, true, SanitizeValue(f, true))
	assert.Nil(t, SanitizeValue(f, "true"))
}

func TestSanitizeInteger(t *testing.T) {
	f := Field{Name: "id", Type: "integer"}
	assert.Equal(t, int64(5), SanitizeValue(f, 5))
	assert.Equal(t, int64(5), SanitizeValue(f, int64(5)))
	assert.Equal(t, int64(5), SanitizeValue(f, uint64(5)))
	assert.Equal(t, int64(5), SanitizeValue(f, 5.0))
	assert.Nil(t, SanitizeValue(f, 5.5))
	assert.Nil(t, SanitizeValue(f, "5"))
}

func TestSanitizeNumber(t *testing.T) {
	f := Field{Name: "score", Type: "number"}
	assert.Equal(t, 2.5, SanitizeValue(f, 2.5))
	assert.Equal(t, 2.0, SanitizeValue(f, 2))
	assert.Nil(t, SanitizeValue(f, "2.5"))
}

func TestSanitizeArray(t *testing.T) {
	f := Field{Name: "tags", Type: "array"}
	assert.Equal(t, []interface{}{"a", "b"}, SanitizeValue(f, []interface{}{"a", "b"}))
	assert.Nil(t, SanitizeValue(f, "a,b"))
}

func TestSanitizeObjectLoose(t *testing.T) {
	f := Field{Name: "content", Type: "object"}
	value := map[string]interface{}{"anything": "goes"}
	assert.Equal(t, value, SanitizeValue(f, value))
	assert.Nil(t, SanitizeValue(f, "not an object"))
}

func TestSanitizeObjectInterfaceKeys(t *testing.T) {
	// CBOR decoding produces interface-keyed maps
	f := Field{Name: "content", Type: "object"}
	value := map[interface{}]interface{}{"title": "x"}
	assert.Equal(t, map[string]interface{}{"title": "x"}, SanitizeValue(f, value))

	bad := map[interface{}]interface{}{17: "x"}
	assert.Nil(t, SanitizeValue(f, bad))
}

func TestSanitizeObjectProperties(t *testing.T) {
	f := Field{Name: "content", Type: "object", Properties: []Field{
		{Name: "title", Type: "string"},
		{Name: "version", Type: "integer"},
	}}
	value := map[string]interface{}{
		"title":   "x",
		"version": 2.0,
		"extra":   "dropped",
	}
	assert.Equal(t, map[string]interface{}{
		"title":   "x",
		"version": int64(2),
	}, SanitizeValue(f, value))

	// A declared property with a bad value comes back null.
	value = map[string]interface{}{"title": 17}
	assert.Equal(t, map[string]interface{}{"title": nil},
		SanitizeValue(f, value))
}

func TestSanitizeUntyped(t *testing.T) {
	f := Field{Name: "whatever"}
	assert.Equal(t, "anything", SanitizeValue(f, "anything"))
	assert.Equal(t, 17, SanitizeValue(f, 17))
}
