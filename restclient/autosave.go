// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"net/url"
	"strconv"

	"github.com/diffeo/go-draftstore/restdata"
)

// autosavesURL produces the URL of this document's autosave list.
func (d *Document) autosavesURL() (*url.URL, error) {
	return d.collection.client.Template(d.collection.Representation.AutosavesURL,
		map[string]interface{}{"documentID": strconv.FormatInt(d.ID(), 10)})
}

// Autosaves retrieves the shaped representations of every autosave
// snapshot of this document, most recently saved first.
func (d *Document) Autosaves(opts DisplayOptions) ([]restdata.Item, error) {
	url, err := d.autosavesURL()
	if err != nil {
		return nil, err
	}
	resp := restdata.AutosaveList{}
	err = d.Do("GET", withQuery(url, opts.query()), nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Autosaves, nil
}

// SaveAutosave submits a field dictionary to save an autosave
// snapshot of this document.  The dictionary must name its author and
// is validated against the collection's editable fields, exactly as
// though it were a full save of the document.  If the author already
// holds a snapshot of this document, it is rewritten in place.
func (d *Document) SaveAutosave(fields map[string]interface{}) (*Autosave, error) {
	url, err := d.autosavesURL()
	if err != nil {
		return nil, err
	}
	req := restdata.Item{Fields: fields}
	resp := restdata.Item{}
	err = d.Do("POST", url, req, &resp)
	if err != nil {
		return nil, err
	}
	save := &Autosave{document: d, Representation: resp}
	save.URL, err = url.Parse(selfLink(resp))
	if err != nil {
		return nil, err
	}
	return save, nil
}

// Autosave returns a handle on one autosave snapshot by its ID.  This
// retrieves the snapshot immediately; if there is none with this ID,
// returns an instance of draftstore.ErrNoSuchAutosave as an error.
func (d *Document) Autosave(id int64) (*Autosave, error) {
	save := &Autosave{document: d}
	var err error
	save.URL, err = d.collection.client.Template(d.collection.Representation.AutosaveURL,
		map[string]interface{}{
			"documentID": strconv.FormatInt(d.ID(), 10),
			"autosaveID": strconv.FormatInt(id, 10),
		})
	if err == nil {
		err = save.Refresh()
	}
	if err != nil {
		return nil, err
	}
	return save, nil
}

// Autosave is a handle on one autosave snapshot.
type Autosave struct {
	resource
	document       *Document
	Representation restdata.Item
}

// Refresh retrieves the snapshot's default representation again.
func (a *Autosave) Refresh() error {
	a.Representation = restdata.Item{}
	return a.Get(&a.Representation)
}

// ID returns the snapshot's ID, as reported in its most recently
// retrieved representation.
func (a *Autosave) ID() int64 {
	return ItemID(a.Representation)
}

// Shaped retrieves a representation of the snapshot shaped by
// explicit display options.  This does not update the handle's own
// Representation.
func (a *Autosave) Shaped(opts DisplayOptions) (restdata.Item, error) {
	item := restdata.Item{}
	err := a.GetQuery(opts.query(), &item)
	return item, err
}

// Destroy destroys the snapshot.
func (a *Autosave) Destroy() error {
	return a.Delete()
}
