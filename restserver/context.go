// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/restdata"
	"github.com/gorilla/mux"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// errUnmarshal is returned if the put/post contract is violated and
// a handler function is passed the wrong type.
var errUnmarshal = restdata.ErrBadRequest{
	Err: errors.New("Invalid input format"),
}

// context holds all of the information and objects that can be extracted
// from URL parameters.
type context struct {
	Collection  draftstore.Collection
	Document    draftstore.Document
	Autosave    draftstore.Autosave
	Display     restdata.DisplayContext
	Fields      []string
	QueryParams url.Values
}

// Context builds the context for routes that are not tied to any
// collection, like the API root.
func (api *restAPI) Context(req *http.Request) (*context, error) {
	ctx := &context{}
	ctx.QueryParams = req.URL.Query()
	ctx.Display = restdata.ParseDisplayContext(ctx.QueryParams.Get("context"))
	return ctx, nil
}

// contextFor builds the context function for one collection's routes.
// Every route under a collection shares the same shape, so a single
// function can resolve however much of the URL is present.
func (api *restAPI) contextFor(collection string) func(req *http.Request) (*context, error) {
	return func(req *http.Request) (ctx *context, err error) {
		ctx = &context{}
		ctx.QueryParams = req.URL.Query()
		ctx.Display = restdata.ParseDisplayContext(ctx.QueryParams.Get("context"))
		if fields := ctx.QueryParams.Get("fields"); fields != "" {
			ctx.Fields = strings.Split(fields, ",")
		}
		vars := mux.Vars(req)

		var present bool
		var document, autosave string

		ctx.Collection, err = api.Store.Collection(collection)

		if document, present = vars["documentID"]; present && err == nil {
			var id int64
			id, err = strconv.ParseInt(document, 10, 64)
			if err != nil {
				err = restdata.ErrBadRequest{Err: err}
			} else {
				ctx.Document, err = ctx.Collection.Document(id)
				if _, missing := err.(draftstore.ErrNoSuchDocument); missing {
					err = restdata.ErrNotFound{Err: err}
				}
			}
		}

		if autosave, present = vars["autosaveID"]; present && err == nil && ctx.Document != nil {
			var id int64
			id, err = strconv.ParseInt(autosave, 10, 64)
			if err != nil {
				err = restdata.ErrBadRequest{Err: err}
			} else {
				ctx.Autosave, err = ctx.Document.Autosave(id)
				if _, missing := err.(draftstore.ErrNoSuchAutosave); missing {
					err = restdata.ErrNotFound{Err: err}
				}
			}
		}

		return
	}
}
