// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes a Draftstore interface as a REST
// service.  The restclient package is a matching client.
//
// The complete REST API is defined in the restdata package.  In
// particular, note that the URLs described here are not actually part
// of the API.
//
// HTTP Considerations
//
// HTTP GET requests default to returning the preferred JSON
// representation.  Clients can use the standard HTTP Accept: header
// to request another format.  See "MIME Types" below.  An OPTIONS
// request to any defined URL describes the endpoint: the methods it
// responds to, the schema its responses are shaped by, and the
// argument schemas its POST and PUT bodies are validated against.
//
// This interface does not (currently) support HTTP caching or
// authentication headers.
//
// Code will generally follow conventions for the Github API as an
// established example; see https://developer.github.com/v3/ for
// details.
//
// MIME Types
//
// This interface understands MIME types as follows:
//
//     application/vnd.diffeo.draftstore.v1+json
//
// JSON representation of version 1 of this interface.
//
//     application/vnd.diffeo.draftstore+json
//     application/json
//     text/json
//
// JSON representation of latest version of this interface.
//
// URL Scheme
//
// Each configured collection is a top-level URL segment, so with an
// "articles" collection, document 3 has a resource URL of
// /articles/3.  Document and snapshot IDs are numeric and assigned by
// the store.  The following URLs are defined:
//
//     /
//     /{collection}
//     /{collection}/{documentID}
//     /{collection}/{documentID}/autosaves
//     /{collection}/{documentID}/autosaves/{autosaveID}
//
// The snapshot list URL is shared by every author writing to a
// document: an HTTP POST there creates the posting author's snapshot
// if they do not hold one and rewrites it in place if they do, so one
// author never accumulates more than one snapshot per document.
package restserver
