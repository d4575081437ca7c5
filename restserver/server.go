// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/restdata"
)

// CollectionConfig describes one document collection published over
// the REST interface.
type CollectionConfig struct {
	// Name is the collection name.  It is the leading segment of
	// every URL under this collection.
	Name string

	// ReadOnly refuses document writes in this collection.
	// Autosave snapshots follow the same rule: saving a snapshot
	// requires permission to write the document it belongs to.
	ReadOnly bool

	// PayloadField names the schema field whose value is stored as
	// an autosave snapshot's serialized structured payload rather
	// than in its field dictionary.  If empty, "content".
	PayloadField string

	// PrepareAutosave, if non-nil, is called with every shaped
	// autosave item before it is returned, and may rewrite it.
	PrepareAutosave func(restdata.Item, restdata.DisplayContext) (restdata.Item, error)
}

// NewRouter creates a new HTTP handler that serves all Draftstore
// requests for a set of collections.
func NewRouter(store draftstore.Store, collections ...CollectionConfig) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, store, collections...)
	return r
}

// PopulateRouter adds Draftstore routes to an existing
// github.com/gorilla/mux router object.
func PopulateRouter(r *mux.Router, store draftstore.Store, collections ...CollectionConfig) {
	api := &restAPI{Store: store, Router: r}
	api.PopulateRouter(r, collections)
}

type restAPI struct {
	Store       draftstore.Store
	Router      *mux.Router
	collections []CollectionConfig
}

// PopulateRouter adds all Draftstore URL paths to a router.
func (api *restAPI) PopulateRouter(r *mux.Router, collections []CollectionConfig) {
	api.collections = collections
	routes := &routeTable{}
	routes.Register("", "/", "root", &resourceHandler{
		Representation: restdata.RootData{},
		Context:        api.Context,
		Get:            api.RootDocument,
	})
	for _, config := range collections {
		docs := newDocumentsController(api, config)
		saves := newAutosavesController(api, config, docs)
		docs.RegisterRoutes(routes)
		saves.RegisterRoutes(routes)
	}
	routes.Populate(r)
}

// RootDocument returns the root JSON document, which links to the
// configured collections.
func (api *restAPI) RootDocument(ctx *context) (interface{}, error) {
	resp := restdata.RootData{}
	err := buildURLs(api.Router).URL(&resp.URL, "root").Error
	if err != nil {
		return nil, err
	}
	resp.Collections = make(map[string]restdata.CollectionData, len(api.collections))
	for _, config := range api.collections {
		data := restdata.CollectionData{}
		data.Name = config.Name
		err = buildURLs(api.Router).
			URL(&data.DocumentsURL, config.Name+"Documents").
			Template(&data.DocumentURL, config.Name+"Document", "documentID").
			Template(&data.AutosavesURL, config.Name+"Autosaves", "documentID").
			Template(&data.AutosaveURL, config.Name+"Autosave", "documentID", "autosaveID").
			Error
		if err != nil {
			return nil, err
		}
		data.URL = data.DocumentsURL
		resp.Collections[config.Name] = data
	}
	return resp, nil
}
