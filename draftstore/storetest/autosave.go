// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package storetest

import (
	"time"

	"github.com/diffeo/go-draftstore/draftstore"
)

// TestAutosaveTrivial checks the properties of a newly saved autosave
// snapshot.
func (s *Suite) TestAutosaveTrivial() {
	start := s.Clock.Now()
	sts := SimpleTestSetup{
		CollectionName: "TestAutosaveTrivial",
		DocumentFields: map[string]interface{}{"title": "Parent"},
		Author:         "amber",
		AutosaveFields: map[string]interface{}{
			"author": "amber",
			"title":  "Parent (edited)",
		},
		Payload: []byte("opaque payload"),
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	save := sts.Autosave
	s.True(save.ID() > 0)
	s.NotEqual(sts.Document.ID(), save.ID())
	s.Equal(sts.Document.ID(), save.Document().ID())
	s.Equal("amber", save.Author())
	s.WithinDuration(start, save.Created(), time.Millisecond)

	modified, err := save.Modified()
	if s.NoError(err) {
		s.WithinDuration(save.Created(), modified, time.Millisecond)
	}
	s.FieldsMatch(save, sts.AutosaveFields)

	payload, err := save.Payload()
	if s.NoError(err) {
		s.Equal([]byte("opaque payload"), payload)
	}
}

// TestAutosaveUpsert checks that saving again for the same author
// rewrites the existing snapshot in place.
func (s *Suite) TestAutosaveUpsert() {
	sts := SimpleTestSetup{
		CollectionName: "TestAutosaveUpsert",
		DocumentFields: map[string]interface{}{"title": "Parent"},
		Author:         "amber",
		AutosaveFields: map[string]interface{}{"author": "amber", "title": "v1"},
		Payload:        []byte("one"),
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	first := sts.Autosave
	created := first.Created()
	before, err := first.Modified()
	if !s.NoError(err) {
		s.T().FailNow()
	}

	s.Clock.Add(time.Duration(30) * time.Second)

	second, err := sts.Document.SaveAutosave("amber", map[string]interface{}{
		"author": "amber",
		"title":  "v2",
	}, []byte("two"))
	if !s.NoError(err) {
		s.T().FailNow()
	}

	s.Equal(first.ID(), second.ID())
	s.WithinDuration(created, second.Created(), time.Millisecond)

	after, err := second.Modified()
	if s.NoError(err) {
		s.True(after.After(before))
	}
	s.FieldsMatch(second, map[string]interface{}{"author": "amber", "title": "v2"})
	payload, err := second.Payload()
	if s.NoError(err) {
		s.Equal([]byte("two"), payload)
	}

	saves, err := sts.Document.Autosaves()
	if s.NoError(err) {
		s.Len(saves, 1)
	}

	// The original handle sees the rewrite too
	s.FieldsMatch(first, map[string]interface{}{"author": "amber", "title": "v2"})
}

// TestAutosavePerAuthor checks that different authors hold different
// snapshots of the same document.
func (s *Suite) TestAutosavePerAuthor() {
	sts := SimpleTestSetup{
		CollectionName: "TestAutosavePerAuthor",
		DocumentFields: map[string]interface{}{"title": "Shared"},
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	amber, err := sts.Document.SaveAutosave("amber", map[string]interface{}{"author": "amber"}, nil)
	if !s.NoError(err) {
		s.T().FailNow()
	}
	brad, err := sts.Document.SaveAutosave("brad", map[string]interface{}{"author": "brad"}, nil)
	if !s.NoError(err) {
		s.T().FailNow()
	}
	s.NotEqual(amber.ID(), brad.ID())

	saves, err := sts.Document.Autosaves()
	if s.NoError(err) {
		s.Len(saves, 2)
	}

	found, err := sts.Document.AutosaveFor("amber")
	if s.NoError(err) {
		s.Equal(amber.ID(), found.ID())
	}
	found, err = sts.Document.AutosaveFor("brad")
	if s.NoError(err) {
		s.Equal(brad.ID(), found.ID())
	}
	_, err = sts.Document.AutosaveFor("carol")
	s.Equal(draftstore.ErrNoSuchAutosave{Author: "carol"}, err)
}

// TestAutosaveOrder checks that Autosaves returns snapshots most
// recently modified first, breaking ties by ascending ID.
func (s *Suite) TestAutosaveOrder() {
	sts := SimpleTestSetup{
		CollectionName: "TestAutosaveOrder",
		DocumentFields: map[string]interface{}{"title": "Parent"},
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	checkOrder := func(expected ...int64) {
		saves, err := sts.Document.Autosaves()
		if !s.NoError(err) {
			return
		}
		actual := make([]int64, len(saves))
		for i, save := range saves {
			actual[i] = save.ID()
		}
		s.Equal(expected, actual)
	}

	// amber and brad save at the same instant; carol saves later
	amber, err := sts.Document.SaveAutosave("amber", map[string]interface{}{"author": "amber"}, nil)
	if !s.NoError(err) {
		s.T().FailNow()
	}
	brad, err := sts.Document.SaveAutosave("brad", map[string]interface{}{"author": "brad"}, nil)
	if !s.NoError(err) {
		s.T().FailNow()
	}
	s.Clock.Add(time.Duration(1) * time.Minute)
	carol, err := sts.Document.SaveAutosave("carol", map[string]interface{}{"author": "carol"}, nil)
	if !s.NoError(err) {
		s.T().FailNow()
	}

	checkOrder(carol.ID(), amber.ID(), brad.ID())

	// Rewriting amber's snapshot moves it to the front
	s.Clock.Add(time.Duration(1) * time.Minute)
	_, err = sts.Document.SaveAutosave("amber", map[string]interface{}{"author": "amber"}, nil)
	s.NoError(err)

	checkOrder(amber.ID(), carol.ID(), brad.ID())
}

// TestAutosaveNoAuthor checks that a snapshot cannot be saved without
// an author.
func (s *Suite) TestAutosaveNoAuthor() {
	sts := SimpleTestSetup{
		CollectionName: "TestAutosaveNoAuthor",
		DocumentFields: map[string]interface{}{"title": "Parent"},
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	_, err := sts.Document.SaveAutosave("", map[string]interface{}{}, nil)
	s.Equal(draftstore.ErrNoAuthor, err)
}

// TestAutosaveErrors checks the errors from looking up snapshots that
// do not exist.
func (s *Suite) TestAutosaveErrors() {
	sts := SimpleTestSetup{
		CollectionName: "TestAutosaveErrors",
		DocumentFields: map[string]interface{}{"title": "Parent"},
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	_, err := sts.Document.Autosave(12345)
	s.Equal(draftstore.ErrNoSuchAutosave{ID: 12345}, err)

	err = sts.Document.DestroyAutosave(12345)
	s.Equal(draftstore.ErrNoSuchAutosave{ID: 12345}, err)
}

// TestAutosaveGone checks that operations on a destroyed snapshot
// report it as gone.
func (s *Suite) TestAutosaveGone() {
	sts := SimpleTestSetup{
		CollectionName: "TestAutosaveGone",
		DocumentFields: map[string]interface{}{"title": "Parent"},
		Author:         "amber",
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	save := sts.Autosave
	err := sts.Document.DestroyAutosave(save.ID())
	s.NoError(err)

	_, err = save.Fields()
	s.Equal(draftstore.ErrGone, err)
	_, err = save.Payload()
	s.Equal(draftstore.ErrGone, err)

	_, err = sts.Document.Autosave(save.ID())
	s.Equal(draftstore.ErrNoSuchAutosave{ID: save.ID()}, err)
	_, err = sts.Document.AutosaveFor("amber")
	s.Equal(draftstore.ErrNoSuchAutosave{Author: "amber"}, err)
}

// TestAutosaveRecreate checks that destroying a snapshot frees its
// author to save a new one with a new ID.
func (s *Suite) TestAutosaveRecreate() {
	sts := SimpleTestSetup{
		CollectionName: "TestAutosaveRecreate",
		DocumentFields: map[string]interface{}{"title": "Parent"},
		Author:         "amber",
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	first := sts.Autosave
	err := sts.Document.DestroyAutosave(first.ID())
	s.NoError(err)

	second, err := sts.Document.SaveAutosave("amber", map[string]interface{}{"author": "amber"}, nil)
	if s.NoError(err) {
		s.NotEqual(first.ID(), second.ID())
	}
}

// TestAutosaveInDocumentGone checks that destroying a document takes
// its snapshots with it.
func (s *Suite) TestAutosaveInDocumentGone() {
	sts := SimpleTestSetup{
		CollectionName: "TestAutosaveInDocumentGone",
		DocumentFields: map[string]interface{}{"title": "Parent"},
		Author:         "amber",
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	err := sts.Collection.DestroyDocument(sts.Document.ID())
	s.NoError(err)

	_, err = sts.Autosave.Fields()
	s.Equal(draftstore.ErrGone, err)
	_, err = sts.Autosave.Payload()
	s.Equal(draftstore.ErrGone, err)
}
