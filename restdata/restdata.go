// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines common data structures shared between the
// restserver and restclient packages.  Generally JSON encodings of
// these are passed across the wire as the
// application/vnd.diffeo.draftstore.v1+json MIME type.
//
// In spite of the "v1" label this representation is not considered
// fully stable yet.
//
// API Usage
//
// HTTP GET the root document at its specified URL.  This will return
// a JSON serialization of the RootData object.  That serialization
// has links to the configured document collections; follow these
// links, possibly filling in template values, to get to other
// resources.
//
// Some of the URL fields are actually RFC 6570 URI templates.  This
// is a fancy way of saying that they are URL strings with a
// {parameter} in curly braces.  For instance, if the system is rooted
// at / and has an "articles" collection, a JSON serialization of
// RootData will look like
//
//	{
//	    "url": "/",
//	    "collections": {
//	        "articles": {
//	            "name": "articles",
//	            "documents_url": "/articles",
//	            "document_url": "/articles/{documentID}"
//	        }
//	    }
//	}
//
// While the URL structure is predictable and formulaic, it is not
// actually part of the API contract.  The only specific guarantee is
// that retrieving the Draftstore root resource will return a
// serialization of RootData.
//
// Shaped Resources
//
// Document and autosave representations are not fixed structures.
// Each collection carries a Schema, and responses are Item objects:
// field dictionaries filtered down to the fields the schema declares
// for the requested display context, with a "_links" key merged in.
// The "context" query parameter selects the display context ("view",
// "edit", or "embed"; anything else falls back to "view"), and the
// "fields" query parameter further restricts the response to a
// comma-separated list of field names.  Links are never filtered.
//
// An autosave snapshot's serialized structured payload is stored as
// an opaque byte string and decoded only when a response is shaped.
// If the stored bytes cannot be decoded, the corresponding response
// field is null; the rest of the item is unaffected.
//
// Encoding Considerations
//
// Documents and autosave snapshots have free-form "fields"
// dictionaries.  On the wire these can be conveyed as either a JSON
// object or a string.  If a string, it is a base64 encoded CBOR
// encoding of the dictionary, using standard base64 alphabet and
// padding rules.  The CBOR encoding is required to preserve some data
// types that cannot be conveyed in JSON, most notably UUIDs.
//
// Timestamps, when they appear, are represented in JSON as RFC 3339
// strings, "2012-03-04T05:06:07.890Z".  Durations, when they appear,
// are represented in JSON as a number of nanoseconds.
//
// HTTP Considerations
//
// Each URL reference notes the applicable HTTP verbs.  In most cases
// simple resource references support GET, PUT, and DELETE, and
// collections support GET and POST.  Any resource that supports GET
// also supports HEAD.  An OPTIONS request to any registered path
// returns a Description of the endpoint, including its schema and the
// argument rules its POST or PUT methods validate against.
//
// Creating a document or autosave snapshot validates the uploaded
// dictionary against the argument rules the endpoint was registered
// with; for autosave creation these are the parent collection's
// editable fields, not the autosave schema itself.
//
// The current server implementation matching this makes minimal use
// of HTTP status codes, but will usually correctly return 200 OK, 201
// Created, 204 No Content, 400 Bad Request, 403 Forbidden, 404 Not
// Found, and 415 Unsupported Media Type when these are correct.
//
// Errors
//
// Most errors should be returned as encodings of the ErrorResponse
// type.  This can round-trip all of the draftstore package's errors
// but may return most other errors as plain strings that are not the
// same objects as other standard errors.
//
// If Go server code panics, this should be captured and returned as
// an ErrorResponse with error code "panic".
//
// Errors should be returned as failing HTTP statuses, but some
// application-level errors may be returned as 500 Internal Server
// Error even in correct operation.
package restdata

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/vnd.diffeo.draftstore.v1+json"

// JSONMediaType requests the most recent version of the JSON
// representation of this content.
const JSONMediaType = "application/vnd.diffeo.draftstore+json"

// DataDict is an arbitrary user-provided data dictionary.  Documents
// and autosave snapshots have these, generally in a field named
// Fields.  If any of the values have (possibly further embedded) a
// uuid.UUID value, this is encoded as a base64-encoded CBOR string;
// otherwise this is encoded as a normal JSON dictionary.
type DataDict map[string]interface{}

// Resource is a base type for all resources in this module.
type Resource struct {
	// URL points at this resource.  If this record is a "short"
	// record, the contents of this URL are the full record.  This
	// field does not need to be provided when posting data (and
	// indeed for HTTP PUT requests you need to know the URL to
	// post at all).
	URL string `json:"url"`
}

// NamedResource is a resource with a name.
type NamedResource struct {
	Resource

	// Name holds the name of this resource.  This is generally
	// immutable.  This field does not need to be provided when
	// posting data.
	Name string `json:"name"`
}

// RootData is returned by the root path.
type RootData struct {
	Resource

	// Collections maps each configured collection name to its
	// entry points.
	Collections map[string]CollectionData `json:"collections"`
}

// CollectionData provides pointers to associated data about a single
// document collection.
type CollectionData struct {
	NamedResource

	// DocumentsURL points at the document list for this
	// collection.  This endpoint supports HTTP GET, returning a
	// DocumentList, and HTTP POST, to submit a field dictionary
	// and create a new document, returning its Item.
	DocumentsURL string `json:"documents_url"`

	// DocumentURL points at the representation of a single
	// document.  This endpoint supports HTTP GET, PUT, and
	// DELETE, and its representation is an Item.  This is a URI
	// template with a single parameter, "documentID", which
	// should be substituted for the numeric ID of the document.
	DocumentURL string `json:"document_url"`

	// AutosavesURL points at the autosave snapshots of a single
	// document.  This endpoint supports HTTP GET, returning an
	// AutosaveList, and HTTP POST, to save a snapshot and return
	// its Item.  The uploaded dictionary must name its author and
	// is validated against this collection's editable fields.
	// This is a URI template with a single parameter,
	// "documentID".
	AutosavesURL string `json:"autosaves_url"`

	// AutosaveURL points at a single autosave snapshot.  This
	// endpoint supports HTTP GET and DELETE, and its
	// representation is an Item.  This is a URI template with two
	// parameters, "documentID" and "autosaveID".
	AutosaveURL string `json:"autosave_url"`
}

// DocumentList is a list of shaped documents.
type DocumentList struct {
	// Documents contains the embedded list of document items.
	Documents []Item `json:"documents"`
}

// AutosaveList is a list of shaped autosave snapshots.
type AutosaveList struct {
	// Autosaves contains the embedded list of snapshot items.
	Autosaves []Item `json:"autosaves"`
}

// Description is returned from an OPTIONS request to a registered
// path.  It describes what the endpoint will accept.
type Description struct {
	// Methods lists the HTTP methods this path responds to, in
	// alphabetical order.
	Methods []string `json:"methods"`

	// Schema is the schema responses from this path are shaped
	// by, if the path belongs to a schema-driven resource.
	Schema *Schema `json:"schema,omitempty"`

	// Args maps HTTP methods to the argument schemas their
	// request bodies are validated against, if any.
	Args map[string]*Schema `json:"args,omitempty"`
}

// ErrorResponse can be a response to any method, generally accompanied
// by a failing HTTP status code.
type ErrorResponse struct {
	// Error is a short description of the failure.  This may be
	// the name or type of a draftstore API error, the string
	// "panic", or the string "error" for some other kind of
	// error.
	Error string `json:"error"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`

	// Value is an extra parameter to the error if applicable.
	Value string `json:"value,omitempty"`

	// Stack holds a formatted backtrace, if the method failed
	// due to a panic.
	Stack string `json:"stack,omitempty"`
}
