// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"
	"github.com/diffeo/go-draftstore/draftstore"
)

type collection struct {
	store *pgStore
	id    int64
	name  string
}

// draftstore.Store.Collection() "constructor":

func (s *pgStore) Collection(name string) (draftstore.Collection, error) {
	c := collection{
		store: s,
		name:  name,
	}
	err := withTx(s, false, func(tx *sql.Tx) error {
		row := tx.QueryRow("SELECT id FROM collection WHERE name=$1", name)
		err := row.Scan(&c.id)
		if err == sql.ErrNoRows {
			// Create the collection
			row = tx.QueryRow("INSERT INTO collection(name) VALUES ($1) RETURNING id", name)
			err = row.Scan(&c.id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// requireCollection fails with ErrGone if this collection has been
// destroyed.  Operations on the collection call this inside their
// transactions, so a destroyed collection does not produce misleading
// "no such document" errors instead.
func (c *collection) requireCollection(tx *sql.Tx) error {
	params := queryParams{}
	query := buildSelect([]string{
		collectionID,
	}, []string{
		collectionTable,
	}, []string{
		isCollection(&params, c.id),
	})
	var id int64
	err := tx.QueryRow(query, params...).Scan(&id)
	if err == sql.ErrNoRows {
		err = draftstore.ErrGone
	}
	return err
}

// draftstore.Collection interface:

func (c *collection) Name() string {
	return c.name
}

func (c *collection) Destroy() error {
	params := queryParams{}
	query := "DELETE FROM collection WHERE id=" + params.Param(c.id)
	return execInTx(c, query, params)
}

func (c *collection) CreateDocument(fields map[string]interface{}) (draftstore.Document, error) {
	fieldsBytes, err := mapToBytes(fields)
	if err != nil {
		return nil, err
	}
	now := c.store.clock.Now()
	doc := document{
		collection: c,
		created:    now,
	}
	err = withTx(c, false, func(tx *sql.Tx) error {
		err := c.requireCollection(tx)
		if err != nil {
			return err
		}
		params := queryParams{}
		columns := fieldList{}
		columns.Add(&params, "collection_id", c.id)
		columns.Add(&params, "fields", fieldsBytes)
		columns.Add(&params, "status", statusString(fields))
		columns.Add(&params, "created", now)
		columns.Add(&params, "modified", now)
		query := columns.InsertStatement(documentTable) + " RETURNING id"
		err = tx.QueryRow(query, params...).Scan(&doc.id)
		if isForeignKeyViolation(err) {
			// requireCollection() reads from the transaction
			// snapshot, but the foreign-key check sees a
			// concurrent Destroy()
			err = draftstore.ErrGone
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *collection) Document(id int64) (draftstore.Document, error) {
	doc := document{
		collection: c,
		id:         id,
	}
	err := withTx(c, true, func(tx *sql.Tx) error {
		err := c.requireCollection(tx)
		if err != nil {
			return err
		}
		params := queryParams{}
		query := buildSelect([]string{
			documentCreated,
		}, []string{
			documentTable,
		}, []string{
			isDocument(&params, id),
			inThisCollection(&params, c.id),
		})
		err = tx.QueryRow(query, params...).Scan(&doc.created)
		if err == sql.ErrNoRows {
			err = draftstore.ErrNoSuchDocument{ID: id}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *collection) Documents() ([]draftstore.Document, error) {
	var result []draftstore.Document
	err := withTx(c, true, func(tx *sql.Tx) error {
		err := c.requireCollection(tx)
		if err != nil {
			return err
		}
		params := queryParams{}
		query := buildSelect([]string{
			documentID,
			documentCreated,
		}, []string{
			documentTable,
		}, []string{
			inThisCollection(&params, c.id),
		})
		query += " ORDER BY " + documentID
		rows, err := tx.Query(query, params...)
		if err != nil {
			return err
		}
		return scanRows(rows, func() error {
			doc := document{collection: c}
			err := rows.Scan(&doc.id, &doc.created)
			if err == nil {
				result = append(result, &doc)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *collection) DestroyDocument(id int64) error {
	return withTx(c, false, func(tx *sql.Tx) error {
		err := c.requireCollection(tx)
		if err != nil {
			return err
		}
		params := queryParams{}
		query := "DELETE FROM " + documentTable +
			" WHERE " + isDocument(&params, id) +
			" AND " + inThisCollection(&params, c.id)
		result, err := tx.Exec(query, params...)
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		if err == nil && count == 0 {
			err = draftstore.ErrNoSuchDocument{ID: id}
		}
		return err
	})
}

// storable interface:

func (c *collection) Store() *pgStore {
	return c.store
}
