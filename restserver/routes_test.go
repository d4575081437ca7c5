// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

// TestRegisterReplaces checks that registering the same path twice
// keeps only the later handler, in the earlier handler's position.
func TestRegisterReplaces(t *testing.T) {
	table := &routeTable{}
	first := &resourceHandler{}
	second := &resourceHandler{}
	table.Register("", "/things", "things", first)
	table.Register("", "/other", "other", &resourceHandler{})
	table.Register("", "/things", "things2", second)

	assert.True(t, table.Handler("", "/things") == second)
	if assert.Len(t, table.routes, 2) {
		assert.True(t, table.routes[0].handler == second)
		assert.Equal(t, "things2", table.routes[0].name)
		assert.Equal(t, "/other", table.routes[1].key.path)
	}
}

// TestRegisterNamespaces checks that the same path in different
// namespaces registers independently.
func TestRegisterNamespaces(t *testing.T) {
	table := &routeTable{}
	plain := &resourceHandler{}
	spaced := &resourceHandler{}
	table.Register("", "/things", "", plain)
	table.Register("v1", "/things", "", spaced)

	assert.True(t, table.Handler("", "/things") == plain)
	assert.True(t, table.Handler("v1", "/things") == spaced)
	assert.Nil(t, table.Handler("v2", "/things"))
}

// TestPopulateNamespacePath checks that a namespace becomes a leading
// URL segment when the table is attached to a router.
func TestPopulateNamespacePath(t *testing.T) {
	table := &routeTable{}
	table.Register("v1", "/things", "things", &resourceHandler{})
	router := mux.NewRouter()
	table.Populate(router)

	url, err := router.Get("things").URL()
	if assert.NoError(t, err) {
		assert.Equal(t, "/v1/things", url.String())
	}
}
