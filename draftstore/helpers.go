// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package draftstore

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

// DocumentData contains data that can be extracted from a document's
// field dictionary.  This is not used directly in the Draftstore API,
// but REST controllers and store backends use ExtractDocumentData()
// to get these values from a document dictionary.
type DocumentData struct {
	// Title of the document.  May be empty.
	Title string

	// Status is the publication state of the document, one of
	// "draft", "published", or "archived".  Defaults to "draft".
	Status string

	// Author names the principal author of the document.  May be
	// empty; autosave snapshots carry their own author.
	Author string
}

// ExtractDocumentData fills in a DocumentData object based on
// information given in a document field dictionary, resolving the
// status string to a DocumentStatus.  A missing status is "draft"; a
// status that does not name a known state is ErrBadStatus.
func ExtractDocumentData(fields map[string]interface{}) (data DocumentData, status DocumentStatus, err error) {
	config := mapstructure.DecoderConfig{Result: &data}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(fields)
	}
	if err == nil {
		if data.Status == "" {
			data.Status = "draft"
		}
		if status.UnmarshalText([]byte(data.Status)) != nil {
			err = ErrBadStatus
		}
	}
	return
}

// ExtractAutosaveAuthor pulls the author name out of an autosave
// field dictionary.  The dictionary must contain a key "author" with
// a non-empty string value; anything else is ErrNoAuthor or
// ErrBadAuthor.
func ExtractAutosaveAuthor(fields map[string]interface{}) (author string, err error) {
	var data struct {
		Author string
	}
	config := mapstructure.DecoderConfig{Result: &data}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(fields)
	}
	if err != nil {
		// I hate checking for this specific message, but it's
		// the only way to detect this
		msError, ok := err.(*mapstructure.Error)
		if ok {
			for _, message := range msError.Errors {
				if strings.HasPrefix(message, "'Author' expected type 'string', got") {
					err = ErrBadAuthor
				}
			}
		}
		return
	}
	if data.Author == "" {
		err = ErrNoAuthor
	} else {
		author = data.Author
	}
	return
}
