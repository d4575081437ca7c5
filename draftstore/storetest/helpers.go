// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package storetest

import (
	"github.com/diffeo/go-draftstore/draftstore"
)

// ---------------------------------------------------------------------------
// Support functions for common tests

// HasFields describes documents and autosave snapshots that can
// return their own field dictionaries (probably).
type HasFields interface {
	Fields() (map[string]interface{}, error)
}

// FieldsEmpty checks that an object's field dictionary is empty.
func (s *Suite) FieldsEmpty(obj HasFields) {
	fields, err := obj.Fields()
	if s.NoError(err) {
		s.Empty(fields)
	}
}

// FieldsMatch checks that an object's field dictionary matches an
// expected value.
func (s *Suite) FieldsMatch(obj HasFields, expected map[string]interface{}) {
	fields, err := obj.Fields()
	if s.NoError(err) {
		// assert.Equal is reflect.DeepEqual.
		// assert.EqualValues does a type conversion first if needed.
		// What we actually need is a recursive match, which
		// doesn't exist; but actually we just need this shallower
		for key, value := range expected {
			if s.Contains(fields, key, "missing fields[%q]", key) {
				s.EqualValues(value, fields[key], "fields[%q]", key)
			}
		}
		for key := range fields {
			s.Contains(expected, key, "extra fields[%q]", key)
		}
	}
}

// ---------------------------------------------------------------------------
// SimpleTestSetup

// SimpleTestSetup defines parameters for common tests, that use a
// small number of collections, documents, and autosave snapshots.
type SimpleTestSetup struct {
	// CollectionName, if non-empty, requests a Collection be
	// created with this name.  It is frequently the name of the
	// test.
	CollectionName string

	// Collection is the collection to use.  If this is nil then a
	// new collection will be created from CollectionName, even if
	// that is empty.
	Collection draftstore.Collection

	// DocumentFields, if non-nil, requests a Document be created
	// with this field dictionary.
	DocumentFields map[string]interface{}

	// Document is set on output.
	Document draftstore.Document

	// Author, if non-empty, requests an autosave snapshot be
	// saved against the document for this author.
	Author string

	// AutosaveFields, if non-nil, provides the field dictionary
	// for that snapshot.  If it is nil a minimal dictionary
	// containing only the author is used.
	AutosaveFields map[string]interface{}

	// Payload, if non-nil, provides the serialized payload for
	// that snapshot.
	Payload []byte

	// Autosave is set on output.
	Autosave draftstore.Autosave
}

// SetUp populates the output fields of the test setup, or fails the
// test immediately.
func (sts *SimpleTestSetup) SetUp(s *Suite) {
	var err error

	// Create the collection
	if sts.Collection == nil {
		sts.Collection, err = s.Store.Collection(sts.CollectionName)
		if !s.NoError(err) {
			s.T().FailNow()
		}
	}

	// Create the document
	if sts.DocumentFields != nil {
		sts.Document, err = sts.Collection.CreateDocument(sts.DocumentFields)
		if !(s.NoError(err) && s.NotNil(sts.Document)) {
			s.T().FailNow()
		}
	}

	// Save the autosave snapshot
	if sts.Document != nil && sts.Author != "" {
		if sts.AutosaveFields == nil {
			sts.AutosaveFields = map[string]interface{}{"author": sts.Author}
		}
		sts.Autosave, err = sts.Document.SaveAutosave(sts.Author, sts.AutosaveFields, sts.Payload)
		if !(s.NoError(err) &&
			s.Equal(sts.Author, sts.Autosave.Author())) {
			s.T().FailNow()
		}
	}
}

// TearDown destroys the collection and all other resources created in
// SetUp.
func (sts *SimpleTestSetup) TearDown(s *Suite) {
	if sts.Collection != nil {
		err := sts.Collection.Destroy()
		s.NoError(err)
	}
}
