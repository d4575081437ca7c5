// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package draftstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDocumentDefaults(t *testing.T) {
	data, status, err := ExtractDocumentData(map[string]interface{}{})
	if assert.NoError(t, err) {
		assert.Equal(t, "", data.Title)
		assert.Equal(t, "draft", data.Status)
		assert.Equal(t, DraftDocument, status)
	}
}

func TestExtractDocumentFull(t *testing.T) {
	data, status, err := ExtractDocumentData(map[string]interface{}{
		"title":  "Weekly notes",
		"status": "published",
		"author": "sam",
		"extra":  17,
	})
	if assert.NoError(t, err) {
		assert.Equal(t, "Weekly notes", data.Title)
		assert.Equal(t, "published", data.Status)
		assert.Equal(t, "sam", data.Author)
		assert.Equal(t, PublishedDocument, status)
	}
}

func TestExtractDocumentBadStatus(t *testing.T) {
	_, _, err := ExtractDocumentData(map[string]interface{}{
		"status": "pending",
	})
	assert.Equal(t, ErrBadStatus, err)
}

func TestExtractAuthor(t *testing.T) {
	author, err := ExtractAutosaveAuthor(map[string]interface{}{
		"author": "sam",
		"title":  "whatever",
	})
	if assert.NoError(t, err) {
		assert.Equal(t, "sam", author)
	}
}

func TestExtractAuthorMissing(t *testing.T) {
	_, err := ExtractAutosaveAuthor(map[string]interface{}{
		"title": "no author here",
	})
	assert.Equal(t, ErrNoAuthor, err)
}

func TestExtractAuthorNotString(t *testing.T) {
	_, err := ExtractAutosaveAuthor(map[string]interface{}{
		"author": 17,
	})
	assert.Equal(t, ErrBadAuthor, err)
}
