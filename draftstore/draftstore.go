// Package draftstore defines an abstract API to Draftstore.
//
// In most cases, applications will know of specific implementations
// of this API and will get an implementation of Store or Collection
// from that implementation.
//
// In general, objects here have a small amount of immutable data
// (an Autosave.Author() never changes, for instance) and the
// accessors of these return the value directly.  Accessors to mutable
// data return the value and an error.
package draftstore

import "time"

// Store is the principal interface to the Draftstore system.
// Implementations of this interface provide a specific database
// backend or other way to keep documents and their autosave
// snapshots.
type Store interface {
	// Collection retrieves a Collection object for some name.  If
	// no collection already exists with that name, creates one.
	Collection(name string) (Collection, error)

	// Summarize produces counts of documents and autosave
	// snapshots across all collections in this store.
	Summarizable
}

// Collection is a single family of documents within a store, such as
// "articles" or "pages".  A collection has an immutable name and a
// set of documents with store-assigned numeric IDs.  A collection is
// tied to a single Store backend.
type Collection interface {
	// Name returns the name of this collection.
	Name() string

	// Destroy destroys this collection, all of its documents, and
	// all of their autosave snapshots.  There is no recovery from
	// this.  There is no confirmation in the API.  This generally
	// should not be called outside of test code.
	Destroy() error

	// CreateDocument creates a new document from a field
	// dictionary and assigns it an ID.  The map may have any
	// string keys and any values.  Callers that need specific
	// fields validated should do so before calling this; the
	// store treats the dictionary as opaque.
	CreateDocument(fields map[string]interface{}) (Document, error)

	// Document retrieves a document by its ID.  If no document
	// exists with that ID, returns an instance of
	// ErrNoSuchDocument as an error.
	Document(id int64) (Document, error)

	// Documents retrieves all documents in this collection,
	// ordered by ascending ID.  This may be an empty slice if
	// there are no documents.
	Documents() ([]Document, error)

	// DestroyDocument irretrievably destroys a document and all
	// autosave snapshots associated with it.  If no document
	// exists with that ID, returns an instance of
	// ErrNoSuchDocument.
	DestroyDocument(id int64) error
}

// Document is a single versioned document within a collection.  Its
// ID, collection, and creation time never change; its field
// dictionary can be rewritten in place.  Each document also holds at
// most one autosave snapshot per author.
type Document interface {
	// ID returns the store-assigned ID of this document.  IDs are
	// positive and unique within a collection.
	ID() int64

	// Collection returns the collection this document belongs to.
	Collection() Collection

	// Created returns the time this document was created.
	Created() time.Time

	// Modified returns the time this document's fields were last
	// rewritten.  A document that has never been updated reports
	// its creation time.
	Modified() (time.Time, error)

	// Fields returns the current field dictionary of this
	// document.
	Fields() (map[string]interface{}, error)

	// SetFields replaces this document's field dictionary and
	// advances its modification time.
	SetFields(fields map[string]interface{}) error

	// Autosaves retrieves all autosave snapshots of this
	// document, most recently modified first; ties are broken by
	// ascending ID.  This may be an empty slice.
	Autosaves() ([]Autosave, error)

	// Autosave retrieves an autosave snapshot by its ID.  If no
	// snapshot of this document exists with that ID, returns an
	// instance of ErrNoSuchAutosave as an error.
	Autosave(id int64) (Autosave, error)

	// AutosaveFor retrieves the autosave snapshot some author
	// holds against this document.  If the author has never saved
	// one, returns an instance of ErrNoSuchAutosave as an error.
	AutosaveFor(author string) (Autosave, error)

	// SaveAutosave creates or updates the single autosave
	// snapshot this author holds against this document.  If the
	// author already holds a snapshot, its fields and payload are
	// rewritten in place and its modification time advances; the
	// snapshot keeps its ID.  Otherwise a new snapshot is
	// created.  The payload is an opaque byte string; stores
	// never inspect it.  On success returns the created (or
	// rewritten) Autosave object.
	SaveAutosave(author string, fields map[string]interface{}, payload []byte) (Autosave, error)

	// DestroyAutosave irretrievably destroys one autosave
	// snapshot of this document.  If no snapshot of this document
	// exists with that ID, returns an instance of
	// ErrNoSuchAutosave.
	DestroyAutosave(id int64) error
}

// DocumentStatus describes the publication state of a document, as
// recorded in the "status" field of its field dictionary.
type DocumentStatus int

const (
	// DraftDocument is a document that has not been published.
	// Documents with no "status" field are drafts.
	DraftDocument DocumentStatus = iota

	// PublishedDocument is a document that has been published.
	PublishedDocument

	// ArchivedDocument is a document that has been withdrawn from
	// publication but not destroyed.
	ArchivedDocument
)

// Autosave is a single autosave snapshot of a document.  Its ID,
// document, author, and creation time never change.  Saving again
// for the same author rewrites the fields and payload of the
// existing snapshot.
type Autosave interface {
	// ID returns the store-assigned ID of this snapshot.  IDs are
	// positive and are drawn from the same sequence as document
	// IDs within a collection.
	ID() int64

	// Document returns the document this snapshot was taken of.
	Document() Document

	// Author returns the author that saved this snapshot.
	Author() string

	// Created returns the time this snapshot was first saved.
	Created() time.Time

	// Modified returns the time this snapshot was last rewritten.
	Modified() (time.Time, error)

	// Fields returns the field dictionary captured by this
	// snapshot.  The structured payload is not part of this
	// dictionary.
	Fields() (map[string]interface{}, error)

	// Payload returns the serialized structured payload captured
	// by this snapshot, exactly as it was passed to SaveAutosave.
	// This may be an empty byte string.
	Payload() ([]byte, error)
}
