// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"strconv"
	"time"

	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/restdata"
)

// Display context sets shared by the schema declarations below.
var (
	allContexts = []restdata.DisplayContext{restdata.ViewContext, restdata.EditContext, restdata.EmbedContext}
	viewEdit    = []restdata.DisplayContext{restdata.ViewContext, restdata.EditContext}
	editOnly    = []restdata.DisplayContext{restdata.EditContext}
)

// errMissingFields reports an upload with no field dictionary at all.
var errMissingFields = errors.New("Missing field dictionary")

// errReadOnly reports a write to a read-only collection.
var errReadOnly = errors.New("Collection is read-only")

// documentsController serves the documents of one collection.  It
// doubles as the parent controller for the collection's autosave
// routes, which borrow its write permission and editable fields.
type documentsController struct {
	api    *restAPI
	config CollectionConfig
}

func newDocumentsController(api *restAPI, config CollectionConfig) *documentsController {
	return &documentsController{api: api, config: config}
}

// documentSchema builds the display schema shared by all document
// collections.  The schema title is the collection name.
func documentSchema(title string) restdata.Schema {
	return restdata.Schema{
		Title: title,
		Fields: []restdata.Field{
			{
				Name:        "id",
				Type:        "integer",
				Description: "Unique identifier for the document.",
				Context:     allContexts,
				ReadOnly:    true,
			},
			{
				Name:        "title",
				Type:        "string",
				Description: "Title of the document.",
				Context:     allContexts,
			},
			{
				Name:        "status",
				Type:        "string",
				Description: "Publication status of the document.",
				Enum:        []string{"draft", "published", "archived"},
				Context:     viewEdit,
			},
			{
				Name:        "author",
				Type:        "string",
				Description: "Author of the document.",
				Context:     viewEdit,
			},
			{
				Name:        "content",
				Type:        "object",
				Description: "Structured content of the document.",
				Context:     viewEdit,
			},
			{
				Name:        "created",
				Type:        "string",
				Format:      "date-time",
				Description: "Time the document was created.",
				Context:     viewEdit,
				ReadOnly:    true,
			},
			{
				Name:        "modified",
				Type:        "string",
				Format:      "date-time",
				Description: "Time the document was last modified.",
				Context:     viewEdit,
				ReadOnly:    true,
			},
		},
	}
}

// Schema returns the document display schema for this collection.
func (c *documentsController) Schema() restdata.Schema {
	return documentSchema(c.config.Name)
}

// WritePermissionCheck returns the check guarding document writes in
// this collection, or nil if writes are open.  The autosave routes
// call this too: saving a snapshot requires permission to write the
// document it belongs to.
func (c *documentsController) WritePermissionCheck() permissionCheck {
	if !c.config.ReadOnly {
		return nil
	}
	return func(*context) error {
		return errReadOnly
	}
}

// EditableArgs returns the argument schema for uploaded document
// dictionaries.
func (c *documentsController) EditableArgs() restdata.Schema {
	return c.Schema().EditableArgs()
}

// RegisterRoutes adds this collection's document routes to a route
// table.
func (c *documentsController) RegisterRoutes(routes *routeTable) {
	name := c.config.Name
	schema := c.Schema()
	args := mustArgsValidator(c.EditableArgs())
	write := c.WritePermissionCheck()
	routes.Register("", "/"+name, name+"Documents", &resourceHandler{
		Representation: restdata.Item{},
		Schema:         &schema,
		Context:        c.api.contextFor(name),
		Get:            c.DocumentList,
		Post:           c.DocumentPost,
		PostArgs:       args,
		PostPermission: write,
	})
	routes.Register("", "/"+name+"/{documentID:[1-9][0-9]*}", name+"Document", &resourceHandler{
		Representation:   restdata.Item{},
		Schema:           &schema,
		Context:          c.api.contextFor(name),
		Get:              c.DocumentGet,
		Put:              c.DocumentPut,
		PutArgs:          args,
		PutPermission:    write,
		Delete:           c.DocumentDelete,
		DeletePermission: write,
	})
}

func (c *documentsController) DocumentList(ctx *context) (interface{}, error) {
	docs, err := ctx.Collection.Documents()
	if err != nil {
		return nil, err
	}
	response := restdata.DocumentList{
		Documents: make([]restdata.Item, len(docs)),
	}
	for i, doc := range docs {
		response.Documents[i], err = c.prepareDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
	}
	return response, nil
}

func (c *documentsController) DocumentPost(ctx *context, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.Item)
	if !valid {
		return nil, errUnmarshal
	}
	if req.Fields == nil {
		return nil, restdata.ErrBadRequest{Err: errMissingFields}
	}
	fields := filterFields(c.EditableArgs(), req.Fields)
	doc, err := ctx.Collection.CreateDocument(fields)
	if err != nil {
		return nil, err
	}
	item, err := c.prepareDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	response := responseCreated{Body: item}
	if self := item.Links["self"]; len(self) > 0 {
		response.Location = self[0].Href
	}
	return response, nil
}

func (c *documentsController) DocumentGet(ctx *context) (interface{}, error) {
	item, err := c.prepareDocument(ctx, ctx.Document)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (c *documentsController) DocumentPut(ctx *context, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.Item)
	if !valid {
		return nil, errUnmarshal
	}
	if req.Fields == nil {
		return nil, restdata.ErrBadRequest{Err: errMissingFields}
	}
	fields := filterFields(c.EditableArgs(), req.Fields)
	err := ctx.Document.SetFields(fields)
	return nil, err
}

func (c *documentsController) DocumentDelete(ctx *context) (interface{}, error) {
	err := ctx.Collection.DestroyDocument(ctx.Document.ID())
	return nil, err
}

// prepareDocument shapes one document for a response.
func (c *documentsController) prepareDocument(ctx *context, doc draftstore.Document) (restdata.Item, error) {
	fields, err := doc.Fields()
	if err != nil {
		return restdata.Item{}, err
	}
	modified, err := doc.Modified()
	if err != nil {
		return restdata.Item{}, err
	}
	raw := restdata.Item{Fields: make(map[string]interface{})}
	for key, value := range fields {
		raw.Fields[key] = value
	}
	raw.Fields["id"] = doc.ID()
	raw.Fields["created"] = doc.Created().Format(time.RFC3339Nano)
	raw.Fields["modified"] = modified.Format(time.RFC3339Nano)
	raw.Links, err = c.documentLinks(doc)
	if err != nil {
		return restdata.Item{}, err
	}
	return shapeItem(c.Schema(), ctx, raw), nil
}

// documentLinks builds the standard link relations for one document.
func (c *documentsController) documentLinks(doc draftstore.Document) (restdata.Links, error) {
	var self, collection, autosaves string
	err := buildURLs(c.api.Router,
		"documentID", strconv.FormatInt(doc.ID(), 10)).
		URL(&self, c.config.Name+"Document").
		URL(&collection, c.config.Name+"Documents").
		URL(&autosaves, c.config.Name+"Autosaves").
		Error
	if err != nil {
		return nil, err
	}
	return restdata.Links{
		"self":       {{Href: self}},
		"collection": {{Href: collection}},
		"autosaves":  {{Href: autosaves}},
	}, nil
}
