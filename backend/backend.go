// Package backend provides a standard way to construct a draftstore
// interface based on command-line flags.
package backend

import (
	"errors"
	"strings"

	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/memory"
	"github.com/diffeo/go-draftstore/postgres"
)

// Backend describes user-visible parameters to store documents and
// their autosave snapshots.  This implements the flag.Value
// interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "backend", "impl:address of document storage")
//         flag.Parse()
//         store, err := backend.Store()
//     }
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string
}

// Store creates a new draftstore interface.  This generally should be
// only called once.  If the backend has in-process state, such as a
// database connection pool or an in-memory store, calling this
// multiple times will create multiple copies of that state.  In
// particular, if b.Implementation is "memory", multiple calls to this
// will create multiple independent document "worlds".
func (b *Backend) Store() (draftstore.Store, error) {
	switch b.Implementation {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return postgres.New(b.Address)
	}
	return nil, errors.New("unknown draftstore backend " + b.Implementation)
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string; so "postgres://user@host/db" names the
// postgres backend with address "//user@host/db".  Set checks that
// the provided implementation is one of the known implementations,
// and returns an appropriate error if not.  Neither Set nor Store
// validates the address part of the string.
//
// This is part of the flag.Value interface.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	b.Implementation = parts[0]
	if len(parts) > 1 {
		b.Address = parts[1]
	} else {
		b.Address = ""
	}
	switch b.Implementation {
	case "memory", "postgres":
		return nil
	}
	return errors.New("unknown draftstore backend " + b.Implementation)
}
