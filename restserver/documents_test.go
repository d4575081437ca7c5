// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/memory"
)

// testServer wires a fresh in-memory store into an HTTP server.  The
// store is returned too, for tests that need to reach around the REST
// layer.
func testServer(configs ...CollectionConfig) (*httptest.Server, draftstore.Store) {
	store := memory.New()
	srv := httptest.NewServer(NewRouter(store, configs...))
	return srv, store
}

// doJSON runs one HTTP request with an optional JSON body, and
// returns the response along with its decoded JSON body (nil if the
// response has none).
func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	defer resp.Body.Close()
	var decoded map[string]interface{}
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		err = json.NewDecoder(resp.Body).Decode(&decoded)
		if !assert.NoError(t, err) {
			t.FailNow()
		}
	}
	return resp, decoded
}

// linkHref digs one link relation's href out of a decoded item.
func linkHref(item map[string]interface{}, rel string) string {
	links, ok := item["_links"].(map[string]interface{})
	if !ok {
		return ""
	}
	list, ok := links[rel].([]interface{})
	if !ok || len(list) == 0 {
		return ""
	}
	link, ok := list[0].(map[string]interface{})
	if !ok {
		return ""
	}
	href, _ := link["href"].(string)
	return href
}

func TestDocumentRoundTrip(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, item := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title":  "First post",
		"status": "draft",
		"content": map[string]interface{}{
			"version": 1,
			"blocks":  []interface{}{map[string]interface{}{"text": "Hello"}},
		},
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	assert.Equal(t, "/articles/1", resp.Header.Get("Location"))
	assert.EqualValues(t, 1, item["id"])
	assert.Equal(t, "First post", item["title"])
	assert.Equal(t, "draft", item["status"])
	if content, ok := item["content"].(map[string]interface{}); assert.True(t, ok) {
		assert.EqualValues(t, 1, content["version"])
	}
	assert.NotEmpty(t, item["created"])
	assert.NotEmpty(t, item["modified"])
	assert.Equal(t, "/articles/1", linkHref(item, "self"))
	assert.Equal(t, "/articles", linkHref(item, "collection"))
	assert.Equal(t, "/articles/1/autosaves", linkHref(item, "autosaves"))

	resp, item = doJSON(t, "GET", srv.URL+"/articles/1", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	assert.Equal(t, "First post", item["title"])
	if content, ok := item["content"].(map[string]interface{}); assert.True(t, ok) {
		blocks, ok := content["blocks"].([]interface{})
		if assert.True(t, ok) && assert.Len(t, blocks, 1) {
			block, ok := blocks[0].(map[string]interface{})
			if assert.True(t, ok) {
				assert.Equal(t, "Hello", block["text"])
			}
		}
	}
}

func TestDocumentValidation(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, body := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": 17,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["error"])

	resp, _ = doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title":  "Pending post",
		"status": "pending",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nothing was created along the way.
	resp, body = doJSON(t, "GET", srv.URL+"/articles", nil)
	if assert.Equal(t, http.StatusOK, resp.StatusCode) {
		assert.Empty(t, body["documents"])
	}
}

func TestDocumentReadOnlyFields(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	// Read-only fields in the upload are not validation errors;
	// they are just ignored.
	resp, item := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title":   "Sneaky",
		"id":      99,
		"created": "1999-01-01T00:00:00Z",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}
	assert.EqualValues(t, 1, item["id"])
	assert.NotEqual(t, "1999-01-01T00:00:00Z", item["created"])
}

func TestDocumentUpdate(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title":   "Original",
		"content": map[string]interface{}{"text": "Hello"},
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, _ = doJSON(t, "PUT", srv.URL+"/articles/1", map[string]interface{}{
		"title":  "Revised",
		"status": "published",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// PUT replaces the whole field dictionary, so the content
	// field is gone now.
	_, item := doJSON(t, "GET", srv.URL+"/articles/1", nil)
	assert.Equal(t, "Revised", item["title"])
	assert.Equal(t, "published", item["status"])
	_, present := item["content"]
	assert.False(t, present)
}

func TestDocumentDelete(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Short-lived",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, _ = doJSON(t, "DELETE", srv.URL+"/articles/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, "GET", srv.URL+"/articles/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ErrNoSuchDocument", body["error"])
	assert.Equal(t, "1", body["value"])

	resp, body = doJSON(t, "GET", srv.URL+"/articles", nil)
	if assert.Equal(t, http.StatusOK, resp.StatusCode) {
		assert.Empty(t, body["documents"])
	}
}

func TestDocumentContexts(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title":  "Contextual",
		"status": "draft",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	// The embed context strips the document down to its identity.
	_, item := doJSON(t, "GET", srv.URL+"/articles/1?context=embed", nil)
	assert.Equal(t, "Contextual", item["title"])
	_, present := item["status"]
	assert.False(t, present)

	_, item = doJSON(t, "GET", srv.URL+"/articles/1?context=edit", nil)
	assert.Equal(t, "draft", item["status"])

	// Anything that is not a context name falls back to view.
	_, item = doJSON(t, "GET", srv.URL+"/articles/1?context=nonsense", nil)
	assert.Equal(t, "draft", item["status"])
}

func TestDocumentFieldsRestriction(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title":  "Some fields",
		"status": "draft",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	_, item := doJSON(t, "GET", srv.URL+"/articles/1?fields=id,title", nil)
	assert.EqualValues(t, 1, item["id"])
	assert.Equal(t, "Some fields", item["title"])
	_, present := item["status"]
	assert.False(t, present)
	// Links are not filtered.
	assert.Equal(t, "/articles/1", linkHref(item, "self"))
	assert.Len(t, item, 3)
}

func TestDocumentList(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	for _, title := range []string{"One", "Two"} {
		resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
			"title": title,
		})
		if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
			return
		}
	}

	resp, body := doJSON(t, "GET", srv.URL+"/articles", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	docs, ok := body["documents"].([]interface{})
	if assert.True(t, ok) && assert.Len(t, docs, 2) {
		first, ok := docs[0].(map[string]interface{})
		if assert.True(t, ok) {
			assert.Equal(t, "One", first["title"])
		}
		second, ok := docs[1].(map[string]interface{})
		if assert.True(t, ok) {
			assert.Equal(t, "Two", second["title"])
		}
	}
}

func TestRootDocument(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"}, CollectionConfig{Name: "pages"})
	defer srv.Close()

	resp, root := doJSON(t, "GET", srv.URL+"/", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	assert.Equal(t, "/", root["url"])
	collections, ok := root["collections"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	assert.Len(t, collections, 2)
	articles, ok := collections["articles"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, "articles", articles["name"])
	assert.Equal(t, "/articles", articles["documents_url"])
	assert.Equal(t, "/articles/{documentID}", articles["document_url"])
	assert.Equal(t, "/articles/{documentID}/autosaves", articles["autosaves_url"])
	assert.Equal(t, "/articles/{documentID}/autosaves/{autosaveID}", articles["autosave_url"])
}

func TestOptionsDocuments(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, desc := doJSON(t, "OPTIONS", srv.URL+"/articles", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	assert.Equal(t, []interface{}{"GET", "HEAD", "OPTIONS", "POST"}, desc["methods"])
	schema, ok := desc["schema"].(map[string]interface{})
	if assert.True(t, ok) {
		assert.Equal(t, "articles", schema["title"])
	}
	args, ok := desc["args"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	post, ok := args["POST"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	properties, ok := post["properties"].(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	_, hasTitle := properties["title"]
	assert.True(t, hasTitle)
	// Read-only fields are not arguments.
	_, hasID := properties["id"]
	assert.False(t, hasID)
}

func TestOptionsDocument(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, _ := doJSON(t, "POST", srv.URL+"/articles", map[string]interface{}{
		"title": "Describable",
	})
	if !assert.Equal(t, http.StatusCreated, resp.StatusCode) {
		return
	}

	resp, desc := doJSON(t, "OPTIONS", srv.URL+"/articles/1", nil)
	if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
		return
	}
	assert.Equal(t, []interface{}{"DELETE", "GET", "HEAD", "OPTIONS", "PUT"}, desc["methods"])
}

func TestReadOnlyCollection(t *testing.T) {
	srv, store := testServer(CollectionConfig{Name: "archive", ReadOnly: true})
	defer srv.Close()

	collection, err := store.Collection("archive")
	if !assert.NoError(t, err) {
		return
	}
	_, err = collection.CreateDocument(map[string]interface{}{"title": "Old"})
	if !assert.NoError(t, err) {
		return
	}

	resp, item := doJSON(t, "GET", srv.URL+"/archive/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Old", item["title"])

	resp, body := doJSON(t, "POST", srv.URL+"/archive", map[string]interface{}{
		"title": "New",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Collection is read-only", body["message"])

	resp, _ = doJSON(t, "PUT", srv.URL+"/archive/1", map[string]interface{}{
		"title": "Changed",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, "DELETE", srv.URL+"/archive/1", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Nothing actually changed.
	_, item = doJSON(t, "GET", srv.URL+"/archive/1", nil)
	assert.Equal(t, "Old", item["title"])
}

func TestDocumentErrors(t *testing.T) {
	srv, _ := testServer(CollectionConfig{Name: "articles"})
	defer srv.Close()

	resp, body := doJSON(t, "GET", srv.URL+"/articles/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ErrNoSuchDocument", body["error"])
	assert.Equal(t, "999", body["value"])

	// A non-numeric ID is not even a route.
	resp, _ = doJSON(t, "GET", srv.URL+"/articles/not-a-number", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, "DELETE", srv.URL+"/articles", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	// An unsupported upload type reports 415.
	req, err := http.NewRequest("POST", srv.URL+"/articles", strings.NewReader("<article/>"))
	if !assert.NoError(t, err) {
		return
	}
	req.Header.Set("Content-Type", "text/xml")
	rawResp, err := http.DefaultClient.Do(req)
	if assert.NoError(t, err) {
		rawResp.Body.Close()
		assert.Equal(t, http.StatusUnsupportedMediaType, rawResp.StatusCode)
	}
}
