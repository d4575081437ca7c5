// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides an HTTP REST client that talks to the
// matching server in the "restserver" package.
//
// The server in github.com/diffeo/go-draftstore/cmd/draftstored runs
// a compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//	c, err := restclient.New("http://localhost:5980/")
//
// The client navigates by hypermedia: it retrieves the root document
// and follows the URLs and URI templates it declares, so it has no
// fixed URL structure compiled in.  Document and autosave
// representations come back as restdata.Item objects, shaped by the
// server according to the requested display context.
package restclient

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/diffeo/go-draftstore/restdata"
)

// ErrNoSuchCollection is returned by Client.Collection() if the
// server does not publish a collection with the requested name.
type ErrNoSuchCollection struct {
	Name string
}

func (err ErrNoSuchCollection) Error() string {
	return fmt.Sprintf("No such collection %q", err.Name)
}

// New creates a new client that speaks to an external REST server.
// baseURL must be an absolute URL; every other URL the client uses is
// resolved relative to it.  This retrieves the root document
// immediately; if the server is unreachable, this returns the
// corresponding error.
func New(baseURL string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("base URL %q is not absolute", baseURL)
	}
	c := &Client{
		resource: resource{URL: parsed},
	}
	err = c.Refresh()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Client is a connection to a Draftstore REST server.
type Client struct {
	resource
	Representation restdata.RootData
}

// Refresh retrieves the root document again.
func (c *Client) Refresh() error {
	c.Representation = restdata.RootData{}
	return c.Get(&c.Representation)
}

// Collections returns the names of the collections the server
// publishes, in sorted order.
func (c *Client) Collections() []string {
	names := make([]string, 0, len(c.Representation.Collections))
	for name := range c.Representation.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collection returns a handle on one published collection.  If the
// server does not publish a collection with this name, returns an
// instance of ErrNoSuchCollection as an error.
func (c *Client) Collection(name string) (*Collection, error) {
	data, present := c.Representation.Collections[name]
	if !present {
		return nil, ErrNoSuchCollection{Name: name}
	}
	coll := &Collection{client: c, Representation: data}
	var err error
	coll.URL, err = c.URL.Parse(data.DocumentsURL)
	if err != nil {
		return nil, err
	}
	return coll, nil
}

// DisplayOptions selects how the server shapes a representation.
// The zero value asks for the default (the "view" display context,
// all fields).
type DisplayOptions struct {
	// Context selects the display context.
	Context restdata.DisplayContext

	// Fields, if non-empty, restricts the response to these
	// fields.  Links are returned regardless.
	Fields []string
}

// query renders the display options as URL query parameters.
func (o DisplayOptions) query() url.Values {
	query := url.Values{}
	if o.Context != restdata.ViewContext {
		text, err := o.Context.MarshalText()
		if err == nil {
			query.Set("context", string(text))
		}
	}
	if len(o.Fields) > 0 {
		query.Set("fields", strings.Join(o.Fields, ","))
	}
	return query
}
