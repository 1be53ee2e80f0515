package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/wasimrehman05/superdoc-sub017/internal/mutation"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	store := NewStore(mutation.DefaultLimits())
	return New(store, zerolog.Nop()).Router()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createDocument(t *testing.T, h http.Handler, source string) string {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/v1/documents", source)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}
	id := gjson.Get(rec.Body.String(), "documentId").String()
	if id == "" {
		t.Fatalf("create response missing documentId: %s", rec.Body.String())
	}
	return id
}

func TestCreateDocument(t *testing.T) {
	h := testRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/v1/documents", "Hello World\n")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if gjson.Get(body, "revision").String() != "0" {
		t.Errorf("expected revision 0, got %s", body)
	}
	if gjson.Get(body, "requestId").String() == "" {
		t.Errorf("response missing requestId: %s", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %q", ct)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	h := testRouter(t)
	id := createDocument(t, h, "HelloWorld\n")

	rec := doRequest(t, h, http.MethodPost, "/v1/documents/"+id+"/ops/mutations.apply",
		`{"steps":[{"op":"text.insert","blockId":"p1","offset":5,"text":" "}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply returned %d: %s", rec.Code, rec.Body.String())
	}
	if gjson.Get(rec.Body.String(), "revision.after").String() != "1" {
		t.Errorf("unexpected apply receipt: %s", rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/v1/documents/"+id+"/ops/document.getText", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("getText returned %d: %s", rec.Code, rec.Body.String())
	}
	if got := gjson.Get(rec.Body.String(), "text").String(); got != "Hello World" {
		t.Errorf("expected %q, got %q", "Hello World", got)
	}

	rec = doRequest(t, h, http.MethodGet, "/v1/documents/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("info returned %d: %s", rec.Code, rec.Body.String())
	}
	if gjson.Get(rec.Body.String(), "revision").String() != "1" {
		t.Errorf("unexpected info: %s", rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodDelete, "/v1/documents/"+id, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodGet, "/v1/documents/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted document should 404, got %d", rec.Code)
	}
}

func TestUnknownDocument(t *testing.T) {
	h := testRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/v1/documents/nope/ops/document.getText", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if gjson.Get(rec.Body.String(), "code").String() != "TARGET_NOT_FOUND" {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestEmptyOpBodyDefaultsToEmptyObject(t *testing.T) {
	h := testRouter(t)
	id := createDocument(t, h, "Hello\n")

	rec := doRequest(t, h, http.MethodPost, "/v1/documents/"+id+"/ops/document.info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on empty body, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestErrorStatusMapping(t *testing.T) {
	h := testRouter(t)
	id := createDocument(t, h, "Hello World\n")

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			"match not found",
			`{"steps":[{"op":"text.delete","find":{"text":"zzz"}}]}`,
			http.StatusNotFound, "MATCH_NOT_FOUND",
		},
		{
			"revision mismatch",
			`{"expectedRevision":"9","steps":[{"op":"text.delete","find":{"text":"Hello"}}]}`,
			http.StatusConflict, "REVISION_MISMATCH",
		},
		{
			"unsupported op",
			`{"steps":[{"op":"table.merge","blockId":"p1","offset":0}]}`,
			http.StatusNotImplemented, "CAPABILITY_UNAVAILABLE",
		},
		{
			"no-op",
			`{"steps":[{"op":"text.delete","blockId":"p1","start":3,"end":3}]}`,
			http.StatusUnprocessableEntity, "NO_OP",
		},
		{
			"invalid input",
			`{"steps":"nope"}`,
			http.StatusBadRequest, "INVALID_INPUT",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/v1/documents/"+id+"/ops/mutations.apply", tc.body)
			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if got := gjson.Get(rec.Body.String(), "code").String(); got != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, got)
			}
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	h := testRouter(t)
	id := createDocument(t, h, "Hello\n")

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/"+id, nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := gjson.Get(rec.Body.String(), "requestId").String(); got != "req-42" {
		t.Errorf("expected caller request id to round trip, got %q", got)
	}
}

func TestStoreSessionLifecycle(t *testing.T) {
	store := NewStore(mutation.DefaultLimits())
	h := New(store, zerolog.Nop()).Router()

	createDocument(t, h, "a\n")
	id := createDocument(t, h, "b\n")
	if store.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", store.Len())
	}

	sess, err := store.Get(id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if sess.Doc == nil || sess.Engine == nil {
		t.Error("session should carry a document and engine")
	}

	store.Delete(id)
	if store.Len() != 1 {
		t.Errorf("expected 1 session after delete, got %d", store.Len())
	}
	if _, err := store.Get(id); err == nil {
		t.Error("deleted session should not resolve")
	}
}
