// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-draftstore/memory"
	"github.com/diffeo/go-draftstore/restdata"
)

// TestAutosaveRouteOverride checks that the parent-derived creation
// rules are what actually serve the snapshot list path, and that the
// route table holds exactly one handler for it.
func TestAutosaveRouteOverride(t *testing.T) {
	api := &restAPI{Store: memory.New()}
	config := CollectionConfig{Name: "articles"}
	docs := newDocumentsController(api, config)
	saves := newAutosavesController(api, config, docs)

	routes := &routeTable{}
	saves.RegisterRoutes(routes)

	handler := routes.Handler("", "/articles/{documentID:[1-9][0-9]*}/autosaves")
	if !assert.NotNil(t, handler) {
		return
	}
	if assert.NotNil(t, handler.PostArgs) {
		assert.Equal(t, docs.EditableArgs(), *handler.PostArgs.Schema())
	}
	assert.NotNil(t, handler.PostPermission)
}

func TestAutosaveRoundTrip(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title":   "First post",
		"content": map[string]interface{}{"text": "Hello"},
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, item := doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author":  "amber",
		"title":   "First post, revised",
		"content": map[string]interface{}{"text": "Hello again"},
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	assert.Equal(t, "/articles/1/autosaves/2", resp.Header.Get("Location"))
	assert.EqualValues(t, 2, item["id"])
	assert.EqualValues(t, 1, item["document"])
	assert.Equal(t, "amber", item["author"])
	assert.NotEmpty(t, item["created"])
	assert.NotEmpty(t, item["modified"])
	if content, ok := item["content"].(map[string]interface{}); assert.True(t, ok) {
		assert.Equal(t, "Hello again", content["text"])
	}
	// The captured title is part of the snapshot but only appears
	// in the edit context.
	_, present := item["title"]
	assert.False(t, present)
	assert.Equal(t, "/articles/1/autosaves/2", linkHref(item, "self"))
	assert.Equal(t, "/articles/1/autosaves", linkHref(item, "collection"))
	assert.Equal(t, "/articles/1", linkHref(item, "document"))

	// Reading it back in the edit context shows the title.
	resp, item = doJSON(t, "GET", srv.URL+"/articles/1/autosaves/2?context=edit", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	assert.Equal(t, "First post, revised", item["title"])
	assert.Equal(t, "amber", item["author"])

	// The parent document is untouched.
	_, doc := doJSON(t, "GET", srv.URL+"/articles/1", nil)
	assert.Equal(t, "First post", doc["title"])
	if content, ok := doc["content"].(map[string]interface{}); assert.True(t, ok) {
		assert.Equal(t, "Hello", content["text"])
	}
}

func TestAutosaveUpsert(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Base",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, item := doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author":  "amber",
		"content": map[string]interface{}{"text": "Take one"},
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	firstID := item["id"]

	resp, item = doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author":  "amber",
		"content": map[string]interface{}{"text": "Take two"},
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	assert.Equal(t, firstID, item["id"])
	if content, ok := item["content"].(map[string]interface{}); assert.True(t, ok) {
		assert.Equal(t, "Take two", content["text"])
	}

	// Saving twice did not grow the list.
	resp, body := doJSON(t, "GET", srv.URL+"/articles/1/autosaves", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	saves, ok := body["autosaves"].([]interface{})
	if assert.True(t, ok) && assert.Len(t, saves, 1) {
		save, ok := saves[0].(map[string]interface{})
		if assert.True(t, ok) {
			assert.Equal(t, firstID, save["id"])
		}
	}
}

func TestAutosavePerAuthor(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Shared",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	for _, author := range []string{"amber", "brad"} {
		resp, _ = doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
			"author":  author,
			"content": map[string]interface{}{"by": author},
		})
		if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
			return
		}
	}

	resp, body := doJSON(t, "GET", srv.URL+"/articles/1/autosaves", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	saves, ok := body["autosaves"].([]interface{})
	if !assert.True(t, ok) || !assert.Len(t, saves, 2) {
		return
	}
	authors := make(map[string]bool)
	for _, entry := range saves {
		save, ok := entry.(map[string]interface{})
		if assert.True(t, ok) {
			author, _ := save["author"].(string)
			authors[author] = true
		}
	}
	assert.Equal(t, map[string]bool{"amber": true, "brad": true}, authors)
}

func TestAutosaveAuthorRequired(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Base",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, body := doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"content": map[string]interface{}{"text": "Anonymous"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ErrNoAuthor", body["error"])

	resp, body = doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ErrNoAuthor", body["error"])

	// A non-string author fails schema validation before the
	// handler ever sees it.
	resp, _ = doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author": 17,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAutosaveParentValidation(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Base",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	// "status" is not an autosave field at all, but uploads are
	// validated against the parent's editable fields, so its enum
	// still applies.
	resp, _ = doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author": "amber",
		"status": "pending",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, item := doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author": "amber",
		"status": "draft",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	// The captured status is stored with the snapshot, but the
	// autosave schema has no status field to display it through.
	_, present := item["status"]
	assert.False(t, present)
}

func TestAutosaveCorruptPayload(t *testing.T) {
	srv, store := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	collection, err := store.Collection("articles")
	if !assert.NoError(t, err) {
		return
	}
	doc, err := collection.CreateDocument(map[string]interface{}{"title": "Base"})
	if !assert.NoError(t, err) {
		return
	}
	// 0xff is not decodable as either CBOR or JSON.
	_, err = doc.SaveAutosave("amber", map[string]interface{}{
		"author": "amber",
		"title":  "Broken",
	}, []byte{0xff})
	if !assert.NoError(t, err) {
		return
	}

	resp, body := doJSON(t, "GET", srv.URL+"/articles/1/autosaves", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	saves, ok := body["autosaves"].([]interface{})
	if !assert.True(t, ok) || !assert.Len(t, saves, 1) {
		return
	}
	save, ok := saves[0].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	// The unreadable payload surfaces as null; everything else in
	// the item is unaffected.
	content, present := save["content"]
	assert.True(t, present)
	assert.Nil(t, content)
	assert.Equal(t, "amber", save["author"])
	assert.EqualValues(t, doc.ID(), save["document"])
	assert.NotEmpty(t, save["created"])
}

func TestAutosaveFieldsRestriction(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Base",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	resp, _ = doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author":  "amber",
		"content": map[string]interface{}{"text": "Hi"},
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	_, item := doJSON(t, "GET", srv.URL+"/articles/1/autosaves/2?fields=author", nil)
	assert.Equal(t, "amber", item["author"])
	_, present := item["content"]
	assert.False(t, present)
	assert.Len(t, item, 2)
}

func TestAutosaveDelete(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Base",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	resp, _ = doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author": "amber",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, _ = doJSON(t, "DELETE", srv.URL+"/articles/1/autosaves/2", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, "GET", srv.URL+"/articles/1/autosaves/2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ErrNoSuchAutosave", body["error"])
	assert.Equal(t, "2", body["value"])

	resp, body = doJSON(t, "GET", srv.URL+"/articles/1/autosaves", nil)
	if assert.Equal(t, http.StatusOK, resp.StatusCode) {
		assert.Empty(t, body["autosaves"])
	}
}

func TestAutosaveReadOnlyParent(t *testing.T) {
	srv, store := testServer(CollectionConfig{Name: "archive", ReadOnly: true})
	defer srv.Close()

	collection, err := store.Collection("archive")
	if !assert.NoError(t, err) {
		return
	}
	doc, err := collection.CreateDocument(map[string]interface{}{"title": "Old"})
	if !assert.NoError(t, err) {
		return
	}
	save, err := doc.SaveAutosave("amber", map[string]interface{}{"author": "amber"}, nil)
	if !assert.NoError(t, err) {
		return
	}

	// Reading snapshots of a read-only collection is fine.
	resp, item := doJSON(t, "GET", srv.URL+"/archive/1/autosaves/2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, save.ID(), item["id"])

	// Saving one requires permission to write the parent document.
	resp, body := doJSON(t, "POST", srv.URL+"/archive/1/autosaves", map[string]interface{}{
		"author": "brad",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Collection is read-only", body["message"])

	resp, _ = doJSON(t, "DELETE", srv.URL+"/archive/1/autosaves/2", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAutosaveErrors(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, body := doJSON(t, "GET", srv.URL+"/articles/999/autosaves", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ErrNoSuchDocument", body["error"])

	resp, _ = doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Base",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, body = doJSON(t, "GET", srv.URL+"/articles/1/autosaves/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ErrNoSuchAutosave", body["error"])
	assert.Equal(t, "999", body["value"])
}

func TestAutosaveOptions(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Base",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, desc := doJSON(t, "OPTIONS", srv.URL+"/articles/1/autosaves", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	assert.Equal(t, []interface{}{"GET", "HEAD", "OPTIONS", "POST"}, desc["methods"])

	schema, ok := desc["schema"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, "articles-autosave", schema["title"])
	properties, ok := schema["properties"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	// The composed schema borrows the content field from the
	// parent, and captures the title for the edit context only.
	_, hasContent := properties["content"]
	assert.True(t, hasContent)
	if title, ok := properties["title"].(map[string]interface{}); assert.True(t, ok) {
		assert.Equal(t, []interface{}{"edit"}, title["context"])
	}

	// Creation arguments come from the parent controller, so the
	// document-only "status" field shows up here.
	args, ok := desc["args"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	post, ok := args["POST"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	postProperties, ok := post["properties"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	_, hasStatus := postProperties["status"]
	assert.True(t, hasStatus)
}

func TestAutosavePrepareHook(t *testing.T) {
	srv, _ := testServer(CollectionConfig{
		Name: "articles",
		PrepareAutosave: func(item restdata.Item, display restdata.DisplayContext) (restdata.Item, error) {
			text, err := display.MarshalText()
			if err != nil {
				return item, err
			}
			item.Fields["display"] = string(text)
			return item, nil
		},
	})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Base",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	resp, item := doJSON(t, "POST", srv.URL+"/articles/1/autosaves", map[string]interface{}{
		"author": "amber",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	assert.Equal(t, "view", item["display"])

	_, item = doJSON(t, "GET", srv.URL+"/articles/1/autosaves/2?context=embed", nil)
	assert.Equal(t, "embed", item["display"])
}
