// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"sort"

	"github.com/diffeo/go-draftstore/draftstore"
)

// collection is a container type for a draftstore.Collection.
type collection struct {
	name      string
	store     *memStore
	documents map[int64]*document
	nextID    int64
	deleted   bool
}

func newCollection(store *memStore, name string) *collection {
	return &collection{
		name:      name,
		store:     store,
		documents: make(map[int64]*document),
		nextID:    1,
	}
}

// allocateID returns the next unused object ID in this collection.
// Documents and autosave snapshots share the same sequence.  It
// expects to run within the global lock.
func (c *collection) allocateID() int64 {
	id := c.nextID
	c.nextID++
	return id
}

func (c *collection) do(f func() error) error {
	globalLock(c)
	defer globalUnlock(c)

	if c.deleted {
		return draftstore.ErrGone
	}

	return f()
}

// draftstore.Collection interface:

func (c *collection) Name() string {
	return c.name
}

func (c *collection) Destroy() error {
	globalLock(c)
	defer globalUnlock(c)

	// NB: destroy() removes the document from the map; this
	// depends on Go having good behavior when keys are deleted
	// from a map being iterated over.
	for _, doc := range c.documents {
		doc.destroy()
	}
	delete(c.store.collections, c.name)
	c.deleted = true
	return nil
}

func (c *collection) CreateDocument(fields map[string]interface{}) (doc draftstore.Document, err error) {
	err = c.do(func() error {
		theDoc := newDocument(c, c.allocateID(), fields)
		c.documents[theDoc.id] = theDoc
		doc = theDoc
		return nil
	})
	return
}

func (c *collection) Document(id int64) (doc draftstore.Document, err error) {
	err = c.do(func() error {
		theDoc, present := c.documents[id]
		if !present {
			return draftstore.ErrNoSuchDocument{ID: id}
		}
		doc = theDoc
		return nil
	})
	return
}

func (c *collection) Documents() (docs []draftstore.Document, err error) {
	err = c.do(func() error {
		ids := make([]int64, 0, len(c.documents))
		for id := range c.documents {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		docs = make([]draftstore.Document, 0, len(ids))
		for _, id := range ids {
			docs = append(docs, c.documents[id])
		}
		return nil
	})
	return
}

func (c *collection) DestroyDocument(id int64) error {
	return c.do(func() error {
		doc, present := c.documents[id]
		if !present {
			return draftstore.ErrNoSuchDocument{ID: id}
		}
		doc.destroy()
		return nil
	})
}

// summarize produces a summary of this one collection.  It expects to
// run within the global lock.
func (c *collection) summarize() draftstore.Summary {
	var result draftstore.Summary
	counts := make(map[draftstore.DocumentStatus]int)
	saves := make(map[draftstore.DocumentStatus]int)
	for _, doc := range c.documents {
		_, status, err := draftstore.ExtractDocumentData(doc.fields)
		if err != nil {
			status = draftstore.DraftDocument
		}
		counts[status]++
		saves[status] += len(doc.autosaves)
	}
	for status, count := range counts {
		result = append(result, draftstore.SummaryRecord{
			Collection: c.name,
			Status:     status,
			Count:      count,
			Autosaves:  saves[status],
		})
	}
	return result
}

// memory.storable interface:

func (c *collection) Store() *memStore {
	return c.store
}
