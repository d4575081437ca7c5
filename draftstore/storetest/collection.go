package storetest

import (
	"github.com/diffeo/go-draftstore/draftstore"
)

// TestCollectionTrivial checks that a collection's name matches what
// it was created with, and that asking for the same name again finds
// the same collection.
func (s *Suite) TestCollectionTrivial() {
	sts := SimpleTestSetup{CollectionName: "TestCollectionTrivial"}
	sts.SetUp(s)
	defer sts.TearDown(s)

	s.Equal("TestCollectionTrivial", sts.Collection.Name())

	doc, err := sts.Collection.CreateDocument(map[string]interface{}{"title": "One"})
	if !s.NoError(err) {
		s.T().FailNow()
	}

	again, err := s.Store.Collection("TestCollectionTrivial")
	if s.NoError(err) {
		s.Equal(sts.Collection.Name(), again.Name())
		found, err := again.Document(doc.ID())
		if s.NoError(err) {
			s.Equal(doc.ID(), found.ID())
		}
	}
}

// TestTwoCollections ensures that two collections can be created and
// have independent contents and lifetimes.
func (s *Suite) TestTwoCollections() {
	stsA := SimpleTestSetup{CollectionName: "TestTwoCollectionsA"}
	stsA.SetUp(s)
	defer stsA.TearDown(s)
	stsB := SimpleTestSetup{CollectionName: "TestTwoCollectionsB"}
	stsB.SetUp(s)
	defer stsB.TearDown(s)

	docA, err := stsA.Collection.CreateDocument(map[string]interface{}{"title": "A"})
	if !s.NoError(err) {
		s.T().FailNow()
	}
	docB, err := stsB.Collection.CreateDocument(map[string]interface{}{"title": "B"})
	if !s.NoError(err) {
		s.T().FailNow()
	}

	docs, err := stsA.Collection.Documents()
	if s.NoError(err) && s.Len(docs, 1) {
		s.Equal(docA.ID(), docs[0].ID())
	}
	docs, err = stsB.Collection.Documents()
	if s.NoError(err) && s.Len(docs, 1) {
		s.Equal(docB.ID(), docs[0].ID())
	}

	_, err = stsA.Collection.Document(docB.ID())
	if docA.ID() != docB.ID() {
		s.Equal(draftstore.ErrNoSuchDocument{ID: docB.ID()}, err)
	}
}

// TestCollectionGone checks that operations on a destroyed collection
// report it as gone.
func (s *Suite) TestCollectionGone() {
	sts := SimpleTestSetup{CollectionName: "TestCollectionGone"}
	sts.SetUp(s)

	err := sts.Collection.Destroy()
	s.NoError(err)

	_, err = sts.Collection.CreateDocument(map[string]interface{}{"title": "Too late"})
	s.Equal(draftstore.ErrGone, err)

	_, err = sts.Collection.Documents()
	s.Equal(draftstore.ErrGone, err)

	err = sts.Collection.DestroyDocument(1)
	s.Equal(draftstore.ErrGone, err)
}

// TestCollectionRecreate checks that destroying a collection and
// asking for its name again produces a fresh, empty collection.
func (s *Suite) TestCollectionRecreate() {
	sts := SimpleTestSetup{
		CollectionName: "TestCollectionRecreate",
		DocumentFields: map[string]interface{}{"title": "Original"},
	}
	sts.SetUp(s)

	err := sts.Collection.Destroy()
	s.NoError(err)

	again, err := s.Store.Collection("TestCollectionRecreate")
	if !s.NoError(err) {
		s.T().FailNow()
	}
	defer func() {
		s.NoError(again.Destroy())
	}()

	docs, err := again.Documents()
	if s.NoError(err) {
		s.Len(docs, 0)
	}
}
