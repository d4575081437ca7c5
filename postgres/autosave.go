// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"
	"github.com/diffeo/go-draftstore/draftstore"
	"time"
)

type autosave struct {
	document *document
	id       int64
	author   string
	created  time.Time
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

func (save *autosave) Modified() (result time.Time, err error) {
	err = withTx(save, true, func(tx *sql.Tx) error {
		row := tx.QueryRow("SELECT modified FROM autosave WHERE id=$1", save.id)
		err := row.Scan(&result)
		if err == sql.ErrNoRows {
			err = draftstore.ErrGone
		}
		return err
	})
	return
}

func (save *autosave) Fields() (map[string]interface{}, error) {
	var fieldsBytes []byte
	err := withTx(save, true, func(tx *sql.Tx) error {
		row := tx.QueryRow("SELECT fields FROM autosave WHERE id=$1", save.id)
		err := row.Scan(&fieldsBytes)
		if err == sql.ErrNoRows {
			err = draftstore.ErrGone
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(fieldsBytes) == 0 {
		return nil, nil
	}
	return bytesToMap(fieldsBytes)
}

func (save *autosave) Payload() ([]byte, error) {
	var payload []byte
	err := withTx(save, true, func(tx *sql.Tx) error {
		row := tx.QueryRow("SELECT payload FROM autosave WHERE id=$1", save.id)
		err := row.Scan(&payload)
		if err == sql.ErrNoRows {
			err = draftstore.ErrGone
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// storable interface:

func (save *autosave) Store() *pgStore {
	return save.document.collection.store
}
