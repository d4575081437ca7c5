// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"sort"
	"time"

	"github.com/diffeo/go-draftstore/draftstore"
)

// document is a container type for a draftstore.Document.
type document struct {
	id         int64
	collection *collection
	fields     map[string]interface{}
	created    time.Time
	modified   time.Time
	autosaves  map[int64]*autosave
	deleted    bool
}

func newDocument(c *collection, id int64, fields map[string]interface{}) *document {
	now := c.store.clk.Now()
	return &document{
		id:         id,
		collection: c,
		fields:     fields,
		created:    now,
		modified:   now,
		autosaves:  make(map[int64]*autosave),
	}
}

func (doc *document) do(f func() error) error {
	globalLock(doc)
	defer globalUnlock(doc)

	if doc.deleted {
		return draftstore.ErrGone
	}

	return f()
}

// destroy removes this document and all of its autosave snapshots
// from the collection.  It expects to run within the global lock.
func (doc *document) destroy() {
	for id, save := range doc.autosaves {
		save.deleted = true
		delete(doc.autosaves, id)
	}
	delete(doc.collection.documents, doc.id)
	doc.deleted = true
}

// autosaveFor finds the autosave snapshot some author holds against
// this document, or nil if there is none.  It expects to run within
// the global lock.
func (doc *document) autosaveFor(author string) *autosave {
	for _, save := range doc.autosaves {
		if save.author == author {
			return save
		}
	}
	return nil
}

// draftstore.Document interface:

func (doc *document) ID() int64 {
	return doc.id
}

func (doc *document) Collection() draftstore.Collection {
	return doc.collection
}

func (doc *document) Created() time.Time {
	return doc.created
}

func (doc *document) Modified() (when time.Time, err error) {
	err = doc.do(func() error {
		when = doc.modified
		return nil
	})
	return
}

func (doc *document) Fields() (fields map[string]interface{}, err error) {
	err = doc.do(func() error {
		fields = doc.fields
		return nil
	})
	return
}

func (doc *document) SetFields(fields map[string]interface{}) error {
	return doc.do(func() error {
		doc.fields = fields
		doc.modified = doc.collection.store.clk.Now()
		return nil
	})
}

func (doc *document) Autosaves() (saves []draftstore.Autosave, err error) {
	err = doc.do(func() error {
		all := make([]*autosave, 0, len(doc.autosaves))
		for _, save := range doc.autosaves {
			all = append(all, save)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].modified.Equal(all[j].modified) {
				return all[i].modified.After(all[j].modified)
			}
			return all[i].id < all[j].id
		})
		saves = make([]draftstore.Autosave, 0, len(all))
		for _, save := range all {
			saves = append(saves, save)
		}
		return nil
	})
	return
}

func (doc *document) Autosave(id int64) (save draftstore.Autosave, err error) {
	err = doc.do(func() error {
		theSave, present := doc.autosaves[id]
		if !present {
			return draftstore.ErrNoSuchAutosave{ID: id}
		}
		save = theSave
		return nil
	})
	return
}

func (doc *document) AutosaveFor(author string) (save draftstore.Autosave, err error) {
	err = doc.do(func() error {
		theSave := doc.autosaveFor(author)
		if theSave == nil {
			return draftstore.ErrNoSuchAutosave{Author: author}
		}
		save = theSave
		return nil
	})
	return
}

func (doc *document) SaveAutosave(author string, fields map[string]interface{}, payload []byte) (save draftstore.Autosave, err error) {
	err = doc.do(func() error {
		if author == "" {
			return draftstore.ErrNoAuthor
		}
		now := doc.collection.store.clk.Now()
		theSave := doc.autosaveFor(author)
		if theSave == nil {
			theSave = &autosave{
				id:       doc.collection.allocateID(),
				document: doc,
				author:   author,
				created:  now,
			}
			doc.autosaves[theSave.id] = theSave
		}
		theSave.fields = fields
		theSave.payload = payload
		theSave.modified = now
		save = theSave
		return nil
	})
	return
}

func (doc *document) DestroyAutosave(id int64) error {
	return doc.do(func() error {
		save, present := doc.autosaves[id]
		if !present {
			return draftstore.ErrNoSuchAutosave{ID: id}
		}
		save.deleted = true
		delete(doc.autosaves, id)
		return nil
	})
}

// memory.storable interface:

func (doc *document) Store() *memStore {
	return doc.collection.store
}
