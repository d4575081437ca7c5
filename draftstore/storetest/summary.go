// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package storetest

import (
	"github.com/diffeo/go-draftstore/draftstore"
)

// summaryFor extracts the records for specific collections from a
// whole-store summary, sorted.  Tests share one store, so records
// from other tests' collections may be present too.
func summaryFor(summary draftstore.Summary, names ...string) draftstore.Summary {
	var result draftstore.Summary
	for _, record := range summary {
		for _, name := range names {
			if record.Collection == name {
				result = append(result, record)
				break
			}
		}
	}
	result.Sort()
	return result
}

// TestSummarizeEmpty checks the summary of a collection with no
// documents.
func (s *Suite) TestSummarizeEmpty() {
	sts := SimpleTestSetup{CollectionName: "TestSummarizeEmpty"}
	sts.SetUp(s)
	defer sts.TearDown(s)

	summary, err := s.Store.Summarize()
	if s.NoError(err) {
		s.Len(summaryFor(summary, "TestSummarizeEmpty"), 0)
	}
}

// TestSummarize checks document and autosave counts across
// collections and statuses.
func (s *Suite) TestSummarize() {
	sts1 := SimpleTestSetup{CollectionName: "TestSummarize1"}
	sts1.SetUp(s)
	defer sts1.TearDown(s)
	sts2 := SimpleTestSetup{CollectionName: "TestSummarize2"}
	sts2.SetUp(s)
	defer sts2.TearDown(s)

	for _, status := range []string{"draft", "draft", "published"} {
		_, err := sts1.Collection.CreateDocument(map[string]interface{}{
			"title":  "Doc",
			"status": status,
		})
		if !s.NoError(err) {
			s.T().FailNow()
		}
	}
	doc, err := sts2.Collection.CreateDocument(map[string]interface{}{"title": "Doc"})
	if !s.NoError(err) {
		s.T().FailNow()
	}
	_, err = doc.SaveAutosave("amber", map[string]interface{}{"author": "amber"}, nil)
	s.NoError(err)
	_, err = doc.SaveAutosave("brad", map[string]interface{}{"author": "brad"}, nil)
	s.NoError(err)

	summary, err := s.Store.Summarize()
	if !s.NoError(err) {
		s.T().FailNow()
	}
	expected := draftstore.Summary{
		{Collection: "TestSummarize1", Status: draftstore.DraftDocument, Count: 2},
		{Collection: "TestSummarize1", Status: draftstore.PublishedDocument, Count: 1},
		{Collection: "TestSummarize2", Status: draftstore.DraftDocument, Count: 1, Autosaves: 2},
	}
	s.Equal(expected, summaryFor(summary, "TestSummarize1", "TestSummarize2"))
}

// TestSummarizeUpsert checks that rewriting an author's snapshot does
// not double-count it.
func (s *Suite) TestSummarizeUpsert() {
	sts := SimpleTestSetup{
		CollectionName: "TestSummarizeUpsert",
		DocumentFields: map[string]interface{}{"title": "Parent"},
		Author:         "amber",
	}
	sts.SetUp(s)
	defer sts.TearDown(s)

	_, err := sts.Document.SaveAutosave("amber", map[string]interface{}{"author": "amber"}, nil)
	s.NoError(err)

	summary, err := s.Store.Summarize()
	if !s.NoError(err) {
		s.T().FailNow()
	}
	expected := draftstore.Summary{
		{Collection: "TestSummarizeUpsert", Status: draftstore.DraftDocument, Count: 1, Autosaves: 1},
	}
	s.Equal(expected, summaryFor(summary, "TestSummarizeUpsert"))
}
