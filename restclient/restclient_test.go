// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/memory"
	"github.com/diffeo/go-draftstore/restclient"
	"github.com/diffeo/go-draftstore/restdata"
	"github.com/diffeo/go-draftstore/restserver"
)

// testClient sets up an object stack where the REST client code talks
// to the REST server code, which points at an in-memory backend.
func testClient(t *testing.T) (*restclient.Client, *httptest.Server) {
	store := memory.New()
	router := restserver.NewRouter(store,
		restserver.CollectionConfig{Name: "articles"})
	server := httptest.NewServer(router)
	client, err := restclient.New(server.URL)
	if err != nil {
		server.Close()
		t.Fatalf("could not create client: %v", err)
	}
	return client, server
}

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New("")
	if err == nil {
		t.Fatal("Expected error when given empty URL.")
	}
}

func TestBadBaseURL(t *testing.T) {
	// Relative references are not usable base URLs; neither is a
	// host:port string, which url.Parse reads as an opaque URL
	// with no host.
	for _, baseURL := range []string{"/draftstore/", "localhost:5980"} {
		_, err := restclient.New(baseURL)
		if err == nil {
			t.Errorf("Expected error when given base URL %q.", baseURL)
		}
	}
}

func TestCollections(t *testing.T) {
	client, server := testClient(t)
	defer server.Close()

	assert.Equal(t, []string{"articles"}, client.Collections())

	_, err := client.Collection("pages")
	assert.Equal(t, restclient.ErrNoSuchCollection{Name: "pages"}, err)
}

func TestDocumentLifetime(t *testing.T) {
	client, server := testClient(t)
	defer server.Close()

	articles, err := client.Collection("articles")
	require.NoError(t, err)

	docs, err := articles.Documents(restclient.DisplayOptions{})
	require.NoError(t, err)
	assert.Empty(t, docs)

	doc, err := articles.CreateDocument(map[string]interface{}{
		"title": "First post",
	})
	require.NoError(t, err)
	assert.Equal(t, "First post", doc.Representation.Fields["title"])
	id := doc.ID()
	assert.NotZero(t, id)

	again, err := articles.Document(id)
	require.NoError(t, err)
	assert.Equal(t, "First post", again.Representation.Fields["title"])

	err = doc.Update(map[string]interface{}{"title": "Revised"})
	require.NoError(t, err)
	err = again.Refresh()
	require.NoError(t, err)
	assert.Equal(t, "Revised", again.Representation.Fields["title"])

	err = doc.Destroy()
	require.NoError(t, err)

	_, err = articles.Document(id)
	assert.Equal(t, draftstore.ErrNoSuchDocument{ID: id}, err)
}

func TestAutosaveLifetime(t *testing.T) {
	client, server := testClient(t)
	defer server.Close()

	articles, err := client.Collection("articles")
	require.NoError(t, err)
	doc, err := articles.CreateDocument(map[string]interface{}{
		"title":   "Base",
		"content": map[string]interface{}{"text": "one"},
	})
	require.NoError(t, err)

	save, err := doc.SaveAutosave(map[string]interface{}{
		"author":  "amber",
		"title":   "Base, revised",
		"content": map[string]interface{}{"text": "two"},
	})
	require.NoError(t, err)
	assert.Equal(t, "amber", save.Representation.Fields["author"])
	if content, ok := save.Representation.Fields["content"].(map[string]interface{}); assert.True(t, ok) {
		assert.Equal(t, "two", content["text"])
	}
	// The captured title only appears in the edit context.
	_, present := save.Representation.Fields["title"]
	assert.False(t, present)

	shaped, err := save.Shaped(restclient.DisplayOptions{
		Context: restdata.EditContext,
		Fields:  []string{"title", "author"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Base, revised", shaped.Fields["title"])
	assert.Equal(t, "amber", shaped.Fields["author"])
	_, present = shaped.Fields["content"]
	assert.False(t, present)
	// Restricting fields never strips the links.
	assert.NotEmpty(t, shaped.Links["self"])

	// Saving again for the same author rewrites the snapshot in
	// place.
	again, err := doc.SaveAutosave(map[string]interface{}{
		"author":  "amber",
		"content": map[string]interface{}{"text": "three"},
	})
	require.NoError(t, err)
	assert.Equal(t, save.ID(), again.ID())

	saves, err := doc.Autosaves(restclient.DisplayOptions{})
	require.NoError(t, err)
	if assert.Len(t, saves, 1) {
		if content, ok := saves[0].Fields["content"].(map[string]interface{}); assert.True(t, ok) {
			assert.Equal(t, "three", content["text"])
		}
	}

	err = save.Destroy()
	require.NoError(t, err)
	_, err = doc.Autosave(save.ID())
	assert.Equal(t, draftstore.ErrNoSuchAutosave{ID: save.ID()}, err)
}

func TestAutosaveValidation(t *testing.T) {
	client, server := testClient(t)
	defer server.Close()

	articles, err := client.Collection("articles")
	require.NoError(t, err)
	doc, err := articles.CreateDocument(map[string]interface{}{
		"title": "Base",
	})
	require.NoError(t, err)

	// No author at all.
	_, err = doc.SaveAutosave(map[string]interface{}{
		"title": "No author",
	})
	assert.Equal(t, draftstore.ErrNoAuthor, err)

	// A snapshot is validated against the parent's editable
	// fields, so a bad status is rejected the same way a document
	// save would be.
	_, err = doc.SaveAutosave(map[string]interface{}{
		"author": "amber",
		"status": "bogus",
	})
	assert.Error(t, err)
}
