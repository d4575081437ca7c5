// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/restdata"
	"github.com/lib/pq"
	"github.com/ugorji/go/codec"
)

// dictionary <-> binary encoders

func mapToBytes(in map[string]interface{}) (out []byte, err error) {
	cbor := new(codec.CborHandle)
	err = restdata.SetExts(cbor)
	if err != nil {
		return
	}
	encoder := codec.NewEncoderBytes(&out, cbor)
	err = encoder.Encode(in)
	return
}

func bytesToMap(in []byte) (out map[string]interface{}, err error) {
	cbor := new(codec.CborHandle)
	err = restdata.SetExts(cbor)
	if err != nil {
		return
	}
	decoder := codec.NewDecoderBytes(in, cbor)
	err = decoder.Decode(&out)
	return
}

// statusString derives the status column for a document from its
// field dictionary.  Dictionaries with a missing or invalid status
// count as drafts, which is the same rule Summarize() reports.
func statusString(fields map[string]interface{}) string {
	_, status, err := draftstore.ExtractDocumentData(fields)
	if err != nil {
		status = draftstore.DraftDocument
	}
	text, _ := status.MarshalText()
	return string(text)
}

// PostgreSQL error sniffing

// isDuplicateAutosave decides if an error is specifically a
// PostgreSQL error due to a second autosave snapshot for the same
// author in document.SaveAutosave().
func isDuplicateAutosave(err error) bool {
	pqError, isPQ := err.(*pq.Error)
	if !isPQ {
		return false
	}
	if pqError.Code != "23505" {
		return false
	}
	if pqError.Constraint != "autosave_unique_author" {
		return false
	}
	return true
}

// isForeignKeyViolation decides if an error is a PostgreSQL
// foreign-key failure.  An INSERT that fails this way lost a race
// with a DELETE of its parent row.
func isForeignKeyViolation(err error) bool {
	pqError, isPQ := err.(*pq.Error)
	if !isPQ {
		return false
	}
	return pqError.Code == "23503"
}
