// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"time"

	"github.com/diffeo/go-draftstore/draftstore"
)

// autosave is a container type for a draftstore.Autosave.
type autosave struct {
	id       int64
	document *document
	author   string
	fields   map[string]interface{}
	payload  []byte
	created  time.Time
	modified time.Time
	deleted  bool
}

func (save *autosave) do(f func() error) error {
	globalLock(save)
	defer globalUnlock(save)

	if save.deleted {
		return draftstore.ErrGone
	}

	return f()
}

// draftstore.Autosave interface:

func (save *autosave) ID() int64 {
	return save.id
}

func (save *autosave) Document() draftstore.Document {
	return save.document
}

func (save *autosave) Author() string {
	return save.author
}

func (save *autosave) Created() time.Time {
	return save.created
}

func (save *autosave) Modified() (when time.Time, err error) {
	err = save.do(func() error {
		when = save.modified
		return nil
	})
	return
}

func (save *autosave) Fields() (fields map[string]interface{}, err error) {
	err = save.do(func() error {
		fields = save.fields
		return nil
	})
	return
}

func (save *autosave) Payload() (payload []byte, err error) {
	err = save.do(func() error {
		payload = save.payload
		return nil
	})
	return
}

// memory.storable interface:

func (save *autosave) Store() *memStore {
	return save.document.collection.store
}
