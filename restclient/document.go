// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"strconv"

	"github.com/diffeo/go-draftstore/restdata"
)

// Collection is a handle on one document collection the server
// publishes.  Its own URL is the collection's document list.
type Collection struct {
	resource
	client         *Client
	Representation restdata.CollectionData
}

// Name returns the name of this collection.
func (c *Collection) Name() string {
	return c.Representation.Name
}

// Documents retrieves the shaped representations of every document in
// this collection.
func (c *Collection) Documents(opts DisplayOptions) ([]restdata.Item, error) {
	resp := restdata.DocumentList{}
	err := c.GetQuery(opts.query(), &resp)
	if err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// CreateDocument submits a field dictionary to create a new document.
// The returned handle points at the document the server reports
// having created.
func (c *Collection) CreateDocument(fields map[string]interface{}) (*Document, error) {
	var (
		err  error
		resp restdata.Item
		doc  *Document
	)
	req := restdata.Item{Fields: fields}
	err = c.Do("POST", c.URL, req, &resp)
	if err != nil {
		return nil, err
	}
	doc = &Document{collection: c, Representation: resp}
	doc.URL, err = c.URL.Parse(selfLink(resp))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Document returns a handle on one document by its ID.  This
// retrieves the document immediately; if there is none with this ID,
// returns an instance of draftstore.ErrNoSuchDocument as an error.
func (c *Collection) Document(id int64) (*Document, error) {
	doc := &Document{collection: c}
	var err error
	doc.URL, err = c.client.Template(c.Representation.DocumentURL,
		map[string]interface{}{"documentID": strconv.FormatInt(id, 10)})
	if err == nil {
		err = doc.Refresh()
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Document is a handle on one document.
type Document struct {
	resource
	collection     *Collection
	Representation restdata.Item
}

// Refresh retrieves the document's default representation again.
func (d *Document) Refresh() error {
	d.Representation = restdata.Item{}
	return d.Get(&d.Representation)
}

// ID returns the document's ID, as reported in its most recently
// retrieved representation.
func (d *Document) ID() int64 {
	return ItemID(d.Representation)
}

// Shaped retrieves a representation of the document shaped by
// explicit display options.  This does not update the handle's own
// Representation.
func (d *Document) Shaped(opts DisplayOptions) (restdata.Item, error) {
	item := restdata.Item{}
	err := d.GetQuery(opts.query(), &item)
	return item, err
}

// Update replaces the document's field dictionary.
func (d *Document) Update(fields map[string]interface{}) error {
	req := restdata.Item{Fields: fields}
	return d.Put(req, nil)
}

// Destroy destroys the document and all of its autosave snapshots.
func (d *Document) Destroy() error {
	return d.Delete()
}

// selfLink extracts the target of an item's "self" link, or returns
// an empty string if it has none.
func selfLink(item restdata.Item) string {
	if targets := item.Links["self"]; len(targets) > 0 {
		return targets[0].Href
	}
	return ""
}

// ItemID extracts the numeric "id" field of a shaped item.  The JSON
// decoder can hand back several numeric types depending on the value;
// an item with no usable ID reports 0.
func ItemID(item restdata.Item) int64 {
	switch id := item.Fields["id"].(type) {
	case int64:
		return id
	case uint64:
		return int64(id)
	case int:
		return int64(id)
	case float64:
		return int64(id)
	case string:
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return 0
}
