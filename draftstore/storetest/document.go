// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package storetest

import (
	"time"

	"github.com/diffeo/go-draftstore/draftstore"
)

// TestDocumentTrivial checks the properties of a newly created
// document.
func (s *Suite) TestDocumentTrivial() {
	start := s.Clock.Now()
	sts := SimpleTestSetup{
		CollectionName: "TestDocumentTrivial",
		DocumentFields: map[string]interface{}{
			"title":  "First post",
			"status": "draft",
		},
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	doc := sts.Document
	s.True(doc.ID() > 0)
	s.Equal("TestDocumentTrivial", doc.Collection().Name())
	s.WithinDuration(start, doc.Created(), time.Millisecond)

	modified, err := doc.Modified()
	if s.NoError(err) {
		s.WithinDuration(doc.Created(), modified, time.Millisecond)
	}
	s.FieldsMatch(doc, sts.DocumentFields)
}

// TestDocumentLifetime performs basic document lifetime tests.
func (s *Suite) TestDocumentLifetime() {
	var (
		doc  draftstore.Document
		docs []draftstore.Document
		err  error
	)
	sts := SimpleTestSetup{CollectionName: "TestDocumentLifetime"}
	sts.SetUp(s)
	defer sts.TearDown(s)

	docs, err = sts.Collection.Documents()
	if s.NoError(err) {
		s.Len(docs, 0)
	}

	doc, err = sts.Collection.CreateDocument(map[string]interface{}{"title": "One"})
	if !s.NoError(err) {
		s.T().FailNow()
	}
	id := doc.ID()

	doc, err = sts.Collection.Document(id)
	if s.NoError(err) {
		s.Equal(id, doc.ID())
	}

	docs, err = sts.Collection.Documents()
	if s.NoError(err) && s.Len(docs, 1) {
		s.Equal(id, docs[0].ID())
	}

	err = sts.Collection.DestroyDocument(id)
	s.NoError(err)

	_, err = sts.Collection.Document(id)
	s.Equal(draftstore.ErrNoSuchDocument{ID: id}, err)

	err = sts.Collection.DestroyDocument(id)
	s.Equal(draftstore.ErrNoSuchDocument{ID: id}, err)

	docs, err = sts.Collection.Documents()
	if s.NoError(err) {
		s.Len(docs, 0)
	}
}

// TestDocumentFields checks that SetFields replaces the field
// dictionary wholesale and advances the modification time.
func (s *Suite) TestDocumentFields() {
	sts := SimpleTestSetup{
		CollectionName: "TestDocumentFields",
		DocumentFields: map[string]interface{}{"title": "Original"},
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	doc := sts.Document
	before, err := doc.Modified()
	if !s.NoError(err) {
		s.T().FailNow()
	}

	s.Clock.Add(time.Duration(5) * time.Second)

	update := map[string]interface{}{
		"title":  "Revised",
		"status": "published",
	}
	err = doc.SetFields(update)
	s.NoError(err)
	s.FieldsMatch(doc, update)

	after, err := doc.Modified()
	if s.NoError(err) {
		s.True(after.After(before))
	}
	s.WithinDuration(doc.Created(), before, time.Millisecond)
}

// TestDocumentOrder checks that Documents returns documents in
// ascending ID order.
func (s *Suite) TestDocumentOrder() {
	sts := SimpleTestSetup{CollectionName: "TestDocumentOrder"}
	sts.SetUp(s)
	defer sts.TearDown(s)

	var ids []int64
	for _, title := range []string{"one", "two", "three"} {
		doc, err := sts.Collection.CreateDocument(map[string]interface{}{"title": title})
		if !s.NoError(err) {
			s.T().FailNow()
		}
		ids = append(ids, doc.ID())
	}

	docs, err := sts.Collection.Documents()
	if s.NoError(err) && s.Len(docs, len(ids)) {
		for i, doc := range docs {
			s.Equal(ids[i], doc.ID())
		}
	}
}

// TestDocumentGone checks that operations on a destroyed document
// report it as gone.
func (s *Suite) TestDocumentGone() {
	sts := SimpleTestSetup{
		CollectionName: "TestDocumentGone",
		DocumentFields: map[string]interface{}{"title": "Doomed"},
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	doc := sts.Document
	err := sts.Collection.DestroyDocument(doc.ID())
	s.NoError(err)

	_, err = doc.Fields()
	s.Equal(draftstore.ErrGone, err)

	err = doc.SetFields(map[string]interface{}{"title": "Too late"})
	s.Equal(draftstore.ErrGone, err)

	_, err = doc.SaveAutosave("amber", map[string]interface{}{"author": "amber"}, nil)
	s.Equal(draftstore.ErrGone, err)
}

// TestDocumentInCollectionGone checks that destroying a collection
// takes its documents with it.
func (s *Suite) TestDocumentInCollectionGone() {
	sts := SimpleTestSetup{
		CollectionName: "TestDocumentInCollectionGone",
		DocumentFields: map[string]interface{}{"title": "Doomed"},
	}
	sts.SetUp(s)

	err := sts.Collection.Destroy()
	s.NoError(err)

	_, err = sts.Document.Fields()
	s.Equal(draftstore.ErrGone, err)
}
