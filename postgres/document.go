// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"
	"github.com/diffeo/go-draftstore/draftstore"
	"time"
)

type document struct {
	collection *collection
	id         int64
	created    time.Time
}

// requireDocument fails with ErrGone if this document has been
// destroyed.  Destroying a collection cascades to its documents, so
// this also catches a destroyed collection.
func (doc *document) requireDocument(tx *sql.Tx) error {
	params := queryParams{}
	query := buildSelect([]string{
		documentID,
	}, []string{
		documentTable,
	}, []string{
		isDocument(&params, doc.id),
	})
	var id int64
	err := tx.QueryRow(query, params...).Scan(&id)
	if err == sql.ErrNoRows {
		err = draftstore.ErrGone
	}
	return err
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

func (doc *document) Modified() (result time.Time, err error) {
	err = withTx(doc, true, func(tx *sql.Tx) error {
		row := tx.QueryRow("SELECT modified FROM document WHERE id=$1", doc.id)
		err := row.Scan(&result)
		if err == sql.ErrNoRows {
			err = draftstore.ErrGone
		}
		return err
	})
	return
}

func (doc *document) Fields() (map[string]interface{}, error) {
	var fieldsBytes []byte
	err := withTx(doc, true, func(tx *sql.Tx) error {
		row := tx.QueryRow("SELECT fields FROM document WHERE id=$1", doc.id)
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

func (doc *document) SetFields(fields map[string]interface{}) error {
	fieldsBytes, err := mapToBytes(fields)
	if err != nil {
		return err
	}
	now := doc.collection.store.clock.Now()
	return withTx(doc, false, func(tx *sql.Tx) error {
		params := queryParams{}
		changes := fieldList{}
		changes.Add(&params, "fields", fieldsBytes)
		changes.Add(&params, "status", statusString(fields))
		changes.Add(&params, "modified", now)
		query := buildUpdate(documentTable,
			changes.UpdateChanges(),
			[]string{isDocument(&params, doc.id)})
		result, err := tx.Exec(query, params...)
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		if err == nil && count == 0 {
			err = draftstore.ErrGone
		}
		return err
	})
}

func (doc *document) Autosaves() ([]draftstore.Autosave, error) {
	var result []draftstore.Autosave
	err := withTx(doc, true, func(tx *sql.Tx) error {
		err := doc.requireDocument(tx)
		if err != nil {
			return err
		}
		params := queryParams{}
		query := buildSelect([]string{
			autosaveID,
			autosaveAuthor,
			autosaveCreated,
		}, []string{
			autosaveTable,
		}, []string{
			inThisDocument(&params, doc.id),
		})
		query += " ORDER BY " + autosaveModified + " DESC, " + autosaveID
		rows, err := tx.Query(query, params...)
		if err != nil {
			return err
		}
		return scanRows(rows, func() error {
			save := autosave{document: doc}
			err := rows.Scan(&save.id, &save.author, &save.created)
			if err == nil {
				result = append(result, &save)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (doc *document) Autosave(id int64) (draftstore.Autosave, error) {
	save := autosave{
		document: doc,
		id:       id,
	}
	err := withTx(doc, true, func(tx *sql.Tx) error {
		err := doc.requireDocument(tx)
		if err != nil {
			return err
		}
		params := queryParams{}
		query := buildSelect([]string{
			autosaveAuthor,
			autosaveCreated,
		}, []string{
			autosaveTable,
		}, []string{
			isAutosave(&params, id),
			inThisDocument(&params, doc.id),
		})
		err = tx.QueryRow(query, params...).Scan(&save.author, &save.created)
		if err == sql.ErrNoRows {
			err = draftstore.ErrNoSuchAutosave{ID: id}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &save, nil
}

func (doc *document) AutosaveFor(author string) (draftstore.Autosave, error) {
	save := autosave{
		document: doc,
		author:   author,
	}
	err := withTx(doc, true, func(tx *sql.Tx) error {
		err := doc.requireDocument(tx)
		if err != nil {
			return err
		}
		params := queryParams{}
		query := buildSelect([]string{
			autosaveID,
			autosaveCreated,
		}, []string{
			autosaveTable,
		}, []string{
			inThisDocument(&params, doc.id),
			byThisAuthor(&params, author),
		})
		err = tx.QueryRow(query, params...).Scan(&save.id, &save.created)
		if err == sql.ErrNoRows {
			err = draftstore.ErrNoSuchAutosave{Author: author}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &save, nil
}

// insertAutosave attempts to INSERT an autosave snapshot into its
// table.  Failures include existence of another snapshot by the same
// author; see isDuplicateAutosave() to check.
func (doc *document) insertAutosave(tx *sql.Tx, author string, fieldsBytes, payload []byte, now time.Time) (*autosave, error) {
	save := autosave{
		document: doc,
		author:   author,
		created:  now,
	}
	params := queryParams{}
	columns := fieldList{}
	columns.Add(&params, "document_id", doc.id)
	columns.Add(&params, "author", author)
	columns.Add(&params, "fields", fieldsBytes)
	columns.Add(&params, "payload", payload)
	columns.Add(&params, "created", now)
	columns.Add(&params, "modified", now)
	query := columns.InsertStatement(autosaveTable) + " RETURNING id"
	err := tx.QueryRow(query, params...).Scan(&save.id)
	return &save, err
}

func (doc *document) SaveAutosave(author string, fields map[string]interface{}, payload []byte) (draftstore.Autosave, error) {
	if author == "" {
		return nil, draftstore.ErrNoAuthor
	}
	fieldsBytes, err := mapToBytes(fields)
	if err != nil {
		return nil, err
	}
	return doc.saveAutosave(author, fieldsBytes, payload)
}

// saveAutosave does the work of SaveAutosave, assuming that the field
// dictionary has already been encoded.  It creates its own
// transactions, principally because it needs to be able to retry on a
// failed INSERT.
func (doc *document) saveAutosave(author string, fieldsBytes, payload []byte) (save *autosave, err error) {
	now := doc.collection.store.clock.Now()

	// This is, fundamentally, an UPSERT, and the database server
	// may be too old to have native support for it.  What we do
	// instead is a client-side loop.  Try to insert the snapshot
	// (a new author is the common case).  If one already exists
	// for this author, try to update it.  If it doesn't exist at
	// that point, insert it again, and so on.
	for {
		// Step one: give the INSERT a shot.
		err = withTx(doc, false, func(tx *sql.Tx) error {
			var err error
			save, err = doc.insertAutosave(tx, author, fieldsBytes, payload, now)
			return err
		})
		if err == nil {
			return
		}
		if isForeignKeyViolation(err) {
			// The document has been destroyed
			err = draftstore.ErrGone
			return
		}
		if !isDuplicateAutosave(err) {
			return
		}

		// Okay, so this author already holds a snapshot.
		// Let's try to UPDATE it in place; it keeps its ID
		// and creation time.
		save = &autosave{document: doc, author: author}
		params := queryParams{}
		changes := fieldList{}
		changes.Add(&params, "fields", fieldsBytes)
		changes.Add(&params, "payload", payload)
		changes.Add(&params, "modified", now)
		query := buildUpdate(autosaveTable,
			changes.UpdateChanges(),
			[]string{
				inThisDocument(&params, doc.id),
				byThisAuthor(&params, author),
			}) +
			" RETURNING id, created"

		err = withTx(doc, false, func(tx *sql.Tx) error {
			row := tx.QueryRow(query, params...)
			return row.Scan(&save.id, &save.created)
		})
		if err == nil {
			// Rewrote the existing snapshot
			return
		}
		if err != sql.ErrNoRows {
			// Something went wrong
			return
		}
		// Otherwise the update didn't find anything; reloop
	}
}

func (doc *document) DestroyAutosave(id int64) error {
	return withTx(doc, false, func(tx *sql.Tx) error {
		err := doc.requireDocument(tx)
		if err != nil {
			return err
		}
		params := queryParams{}
		query := "DELETE FROM " + autosaveTable +
			" WHERE " + isAutosave(&params, id) +
			" AND " + inThisDocument(&params, doc.id)
		result, err := tx.Exec(query, params...)
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		if err == nil && count == 0 {
			err = draftstore.ErrNoSuchAutosave{ID: id}
		}
		return err
	})
}

// storable interface:

func (doc *document) Store() *pgStore {
	return doc.collection.store
}
