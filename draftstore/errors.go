package draftstore

import (
	"errors"
	"fmt"
)

// ErrNoAuthor is returned as an error from functions that create an
// autosave snapshot from a map, but cannot find "author" in the map.
var ErrNoAuthor = errors.New("No 'author' key in autosave fields")

// ErrBadAuthor is returned as an error from functions that create an
// autosave snapshot from a map, but find an "author" key that is not
// a string.
var ErrBadAuthor = errors.New("Autosave 'author' must be a string")

// ErrBadStatus is returned as an error from functions that extract a
// document status from a map, but find a "status" value that does not
// name a known status.
var ErrBadStatus = errors.New("Document 'status' must be one of 'draft', 'published', 'archived'")

// ErrGone is returned from most operations on objects whose backing
// records have been destroyed, for instance a Document object held
// across a DestroyDocument call.
var ErrGone = errors.New("Object no longer exists")

// ErrNoSuchDocument is returned by Collection.Document() and similar
// functions that want to look up a document, but cannot find it.
type ErrNoSuchDocument struct {
	ID int64
}

func (err ErrNoSuchDocument) Error() string {
	return fmt.Sprintf("No such document %v", err.ID)
}

// ErrNoSuchAutosave is returned by Document.Autosave() and similar
// functions that want to look up an autosave snapshot, but cannot
// find it.  Lookups by author set Author instead of ID.
type ErrNoSuchAutosave struct {
	ID     int64
	Author string
}

func (err ErrNoSuchAutosave) Error() string {
	if err.Author != "" {
		return fmt.Sprintf("No autosave by %v", err.Author)
	}
	return fmt.Sprintf("No such autosave %v", err.ID)
}
