// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"strconv"
	"sync"
	"time"

	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/restdata"
)

// parentController describes the controller of a resource whose
// autosave snapshots hang off of it.  The autosave routes pull their
// creation rules from the parent rather than from their own schema:
// an uploaded snapshot is validated against the parent's editable
// fields, and saving one requires permission to write the parent.
type parentController interface {
	// Schema returns the parent's display schema.
	Schema() restdata.Schema

	// WritePermissionCheck returns the check guarding writes to
	// the parent resource, or nil if writes are open.
	WritePermissionCheck() permissionCheck

	// EditableArgs returns the argument schema for the parent's
	// editable fields.
	EditableArgs() restdata.Schema
}

// autosavesController serves the autosave snapshots of one
// collection's documents.
type autosavesController struct {
	api    *restAPI
	config CollectionConfig
	parent parentController

	composeOnce sync.Once
	composed    restdata.Schema
}

func newAutosavesController(api *restAPI, config CollectionConfig, parent parentController) *autosavesController {
	return &autosavesController{api: api, config: config, parent: parent}
}

// payloadField names the parent schema field whose value is stored as
// the snapshot's serialized payload.
func (c *autosavesController) payloadField() string {
	if c.config.PayloadField != "" {
		return c.config.PayloadField
	}
	return "content"
}

// baseSchema returns the autosave schema before composition: the
// snapshot's own bookkeeping fields, plus the captured parent fields
// that live in its field dictionary.  Note that "title" appears only
// in the edit context here, unlike in the parent schema.
func (c *autosavesController) baseSchema() restdata.Schema {
	return restdata.Schema{
		Title: c.config.Name + "-autosave",
		Fields: []restdata.Field{
			{
				Name:        "id",
				Type:        "integer",
				Description: "Unique identifier for the snapshot.",
				Context:     allContexts,
				ReadOnly:    true,
			},
			{
				Name:        "document",
				Type:        "integer",
				Description: "ID of the document this snapshot was taken of.",
				Context:     allContexts,
				ReadOnly:    true,
			},
			{
				Name:        "author",
				Type:        "string",
				Description: "Author that saved this snapshot.",
				Context:     allContexts,
			},
			{
				Name:        "title",
				Type:        "string",
				Description: "Title captured by this snapshot.",
				Context:     editOnly,
			},
			{
				Name:        "created",
				Type:        "string",
				Format:      "date-time",
				Description: "Time this snapshot was first saved.",
				Context:     viewEdit,
				ReadOnly:    true,
			},
			{
				Name:        "modified",
				Type:        "string",
				Format:      "date-time",
				Description: "Time this snapshot was last saved.",
				Context:     viewEdit,
				ReadOnly:    true,
			},
		},
	}
}

// Schema returns the autosave display schema: the base schema with
// the payload field's declaration borrowed from the parent schema.
// The composition runs once; later calls reuse the result.
func (c *autosavesController) Schema() restdata.Schema {
	c.composeOnce.Do(func() {
		c.composed = restdata.Compose(c.baseSchema(), c.parent.Schema(), c.payloadField())
	})
	return c.composed
}

// CreatePermission guards saving and destroying autosave snapshots.
// It defers to the parent controller: whoever may write the document
// may manage its snapshots.
func (c *autosavesController) CreatePermission(ctx *context) error {
	check := c.parent.WritePermissionCheck()
	if check == nil {
		return nil
	}
	return check(ctx)
}

// RegisterRoutes adds this collection's autosave routes to a route
// table.  The snapshot list path is registered twice on purpose:
// first with the generic rules any collection route would get, then
// again with creation rules drawn from the parent controller.  The
// table keeps the last registration, so the parent-derived rules are
// the ones that serve.
func (c *autosavesController) RegisterRoutes(routes *routeTable) {
	name := c.config.Name
	schema := c.Schema()
	listPath := "/" + name + "/{documentID:[1-9][0-9]*}/autosaves"

	// No PostArgs here: the second registration replaces this one
	// before any request is served, so compiling generic creation
	// rules would only waste startup time.
	routes.Register("", listPath, name+"Autosaves", &resourceHandler{
		Representation: restdata.Item{},
		Schema:         &schema,
		Context:        c.api.contextFor(name),
		Get:            c.AutosaveList,
		Post:           c.AutosavePost,
	})
	routes.Register("", listPath, name+"Autosaves", &resourceHandler{
		Representation: restdata.Item{},
		Schema:         &schema,
		Context:        c.api.contextFor(name),
		Get:            c.AutosaveList,
		Post:           c.AutosavePost,
		PostArgs:       mustArgsValidator(c.parent.EditableArgs()),
		PostPermission: c.CreatePermission,
	})
	routes.Register("", listPath+"/{autosaveID:[1-9][0-9]*}", name+"Autosave", &resourceHandler{
		Representation:   restdata.Item{},
		Schema:           &schema,
		Context:          c.api.contextFor(name),
		Get:              c.AutosaveGet,
		Delete:           c.AutosaveDelete,
		DeletePermission: c.CreatePermission,
	})
}

func (c *autosavesController) AutosaveList(ctx *context) (interface{}, error) {
	saves, err := ctx.Document.Autosaves()
	if err != nil {
		return nil, err
	}
	response := restdata.AutosaveList{
		Autosaves: make([]restdata.Item, len(saves)),
	}
	for i, save := range saves {
		response.Autosaves[i], err = c.prepareAutosave(ctx, save)
		if err != nil {
			return nil, err
		}
	}
	return response, nil
}

func (c *autosavesController) AutosavePost(ctx *context, in interface{}) (interface{}, error) {
	req, valid := in.(restdata.Item)
	if !valid {
		return nil, errUnmarshal
	}
	if req.Fields == nil {
		return nil, restdata.ErrBadRequest{Err: errMissingFields}
	}
	fields := filterFields(c.parent.EditableArgs(), req.Fields)
	author, err := draftstore.ExtractAutosaveAuthor(fields)
	if err == draftstore.ErrNoAuthor || err == draftstore.ErrBadAuthor {
		return nil, restdata.ErrBadRequest{Err: err}
	} else if err != nil {
		return nil, err
	}

	// The payload field is stored serialized, outside the field
	// dictionary.
	var payload []byte
	if value, present := fields[c.payloadField()]; present {
		delete(fields, c.payloadField())
		payload, err = restdata.EncodePayload(value)
		if err != nil {
			return nil, restdata.ErrBadRequest{Err: err}
		}
	}

	save, err := ctx.Document.SaveAutosave(author, fields, payload)
	if err != nil {
		return nil, err
	}
	item, err := c.prepareAutosave(ctx, save)
	if err != nil {
		return nil, err
	}
	response := responseCreated{Body: item}
	if self := item.Links["self"]; len(self) > 0 {
		response.Location = self[0].Href
	}
	return response, nil
}

func (c *autosavesController) AutosaveGet(ctx *context) (interface{}, error) {
	item, err := c.prepareAutosave(ctx, ctx.Autosave)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (c *autosavesController) AutosaveDelete(ctx *context) (interface{}, error) {
	err := ctx.Document.DestroyAutosave(ctx.Autosave.ID())
	return nil, err
}

// prepareAutosave shapes one autosave snapshot for a response.  The
// snapshot's serialized payload is decoded here; if the stored bytes
// are unreadable, the payload field comes back null and the rest of
// the item is unaffected.
func (c *autosavesController) prepareAutosave(ctx *context, save draftstore.Autosave) (restdata.Item, error) {
	fields, err := save.Fields()
	if err != nil {
		return restdata.Item{}, err
	}
	modified, err := save.Modified()
	if err != nil {
		return restdata.Item{}, err
	}
	payload, err := save.Payload()
	if err != nil {
		return restdata.Item{}, err
	}

	raw := restdata.Item{Fields: make(map[string]interface{})}
	for key, value := range fields {
		raw.Fields[key] = value
	}
	raw.Fields["id"] = save.ID()
	raw.Fields["document"] = save.Document().ID()
	raw.Fields["author"] = save.Author()
	raw.Fields["created"] = save.Created().Format(time.RFC3339Nano)
	raw.Fields["modified"] = modified.Format(time.RFC3339Nano)

	if len(payload) > 0 {
		decoded, err := restdata.DecodePayload(payload)
		if err != nil {
			raw.Fields[c.payloadField()] = nil
		} else {
			raw.Fields[c.payloadField()] = decoded
		}
	}

	raw.Links, err = c.autosaveLinks(save)
	if err != nil {
		return restdata.Item{}, err
	}

	item := shapeItem(c.Schema(), ctx, raw)
	if c.config.PrepareAutosave != nil {
		return c.config.PrepareAutosave(item, ctx.Display)
	}
	return item, nil
}

// autosaveLinks builds the standard link relations for one snapshot.
func (c *autosavesController) autosaveLinks(save draftstore.Autosave) (restdata.Links, error) {
	doc := save.Document()
	var self, collection, document string
	err := buildURLs(c.api.Router,
		"documentID", strconv.FormatInt(doc.ID(), 10),
		"autosaveID", strconv.FormatInt(save.ID(), 10)).
		URL(&self, c.config.Name+"Autosave").
		URL(&collection, c.config.Name+"Autosaves").
		URL(&document, c.config.Name+"Document").
		Error
	if err != nil {
		return nil, err
	}
	return restdata.Links{
		"self":       {{Href: self}},
		"collection": {{Href: collection}},
		"document":   {{Href: document}},
	}, nil
}
