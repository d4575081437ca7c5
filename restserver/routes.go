// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/gorilla/mux"
)

// routeKey identifies a registered path: a namespace (possibly
// empty) plus a gorilla/mux path pattern.
type routeKey struct {
	namespace string
	path      string
}

// route is one entry in a routeTable.
type route struct {
	key     routeKey
	name    string
	handler *resourceHandler
}

// routeTable accumulates resource handlers before they are attached
// to a router.  Registering the same namespace and path pair twice
// replaces the earlier entry in place; the last registration wins,
// but the route keeps its original position in the table.  This is
// what lets the autosave routes re-register their collection path
// with creation rules drawn from the parent document controller.
type routeTable struct {
	routes []*route
	index  map[routeKey]*route
}

// Register adds a handler for a path within a namespace.  path is a
// gorilla/mux path pattern and should begin with "/".  name, if
// non-empty, names the route for URL generation.
func (t *routeTable) Register(namespace, path, name string, handler *resourceHandler) {
	key := routeKey{namespace: namespace, path: path}
	if t.index == nil {
		t.index = make(map[routeKey]*route)
	}
	if existing, present := t.index[key]; present {
		existing.name = name
		existing.handler = handler
		return
	}
	r := &route{key: key, name: name, handler: handler}
	t.index[key] = r
	t.routes = append(t.routes, r)
}

// Handler returns the handler currently registered for a namespace
// and path, or nil if there is none.
func (t *routeTable) Handler(namespace, path string) *resourceHandler {
	if r, present := t.index[routeKey{namespace: namespace, path: path}]; present {
		return r.handler
	}
	return nil
}

// Populate attaches every registered route to a gorilla/mux router,
// in registration order.  A non-empty namespace becomes a leading
// path segment.
func (t *routeTable) Populate(r *mux.Router) {
	for _, rt := range t.routes {
		path := rt.key.path
		if rt.key.namespace != "" {
			path = "/" + rt.key.namespace + path
		}
		muxRoute := r.Path(path).Handler(rt.handler)
		if rt.name != "" {
			muxRoute.Name(rt.name)
		}
	}
}
