// Statistics generation for collections, documents, and autosave
// snapshots.
//
// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/diffeo/go-draftstore/draftstore"
)

// Summarize runs a single SQL query over collections, documents, and
// autosave snapshots.  It counts documents per collection and status,
// along with the autosave snapshots attached to those documents;
// collections with no documents produce no records.
func (s *pgStore) Summarize() (draftstore.Summary, error) {
	var result draftstore.Summary
	params := queryParams{}
	outputs := []string{
		collectionName,
		documentStatus,
		"COUNT(DISTINCT " + documentID + ")",
		"COUNT(" + autosaveID + ")",
	}
	tables := []string{
		collectionTable,
		documentAutosaveJoin,
	}
	conditions := []string{
		documentInCollection,
	}
	query := buildSelect(outputs, tables, conditions)
	query += " GROUP BY " + collectionName + ", " + documentStatus
	err := queryAndScan(s, query, params, func(rows *sql.Rows) error {
		var record draftstore.SummaryRecord
		var status string
		err := rows.Scan(&record.Collection, &status, &record.Count,
			&record.Autosaves)
		if err != nil {
			return err
		}
		// An unrecognized status string counts as draft, the
		// same rule ExtractDocumentData() applies
		if record.Status.UnmarshalText([]byte(status)) != nil {
			record.Status = draftstore.DraftDocument
		}
		result = append(result, record)
		return nil
	})
	if err != nil {
		return draftstore.Summary{}, err
	}
	return result, nil
}
