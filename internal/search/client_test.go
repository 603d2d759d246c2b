package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSimilaritySearch(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"value": []Document{
				{ID: "1", Content: "Rule one.", Metadata: "claims.txt"},
				{ID: "2", Content: "Rule two.", Metadata: "pricing.md"},
			},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret", "brand-rules")
	docs, err := c.SimilaritySearch(context.Background(), []float32{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[0].Content != "Rule one." || docs[1].Metadata != "pricing.md" {
		t.Errorf("unexpected docs: %+v", docs)
	}

	if !strings.Contains(gotPath, "/indexes/brand-rules/docs/search") {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if top, ok := gotBody["top"].(float64); !ok || top != 3 {
		t.Errorf("top = %v, want 3", gotBody["top"])
	}
	vqs, _ := gotBody["vectorQueries"].([]any)
	if len(vqs) != 1 {
		t.Fatalf("expected one vector query, got %v", gotBody["vectorQueries"])
	}
	vq, _ := vqs[0].(map[string]any)
	if vq["kind"] != "vector" || vq["fields"] != "content_vector" {
		t.Errorf("unexpected vector query: %v", vq)
	}
	if k, ok := vq["k"].(float64); !ok || k != 3 {
		t.Errorf("k = %v, want 3", vq["k"])
	}
}

func TestSimilaritySearchMissingKey(t *testing.T) {
	c := NewClient("https://example.invalid", "", "brand-rules")
	if _, err := c.SimilaritySearch(context.Background(), []float32{0.1}, 3); err == nil {
		t.Error("expected error without API key")
	}
}

func TestSimilaritySearchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not found", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret", "missing-index")
	_, err := c.SimilaritySearch(context.Background(), []float32{0.1}, 3)
	if err == nil {
		t.Fatal("expected error on 404")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUploadDocuments(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Value []map[string]any `json:"value"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{"key": "a", "status": true},
				{"key": "b", "status": true},
			},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret", "brand-rules")
	docs := []IndexDocument{
		{ID: "a", Content: "Rule one.", ContentVector: []float32{0.1}, Metadata: "claims.txt"},
		{ID: "b", Content: "Rule two.", ContentVector: []float32{0.2}, Metadata: "claims.txt"},
	}
	if err := c.UploadDocuments(context.Background(), docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotPath, "/indexes/brand-rules/docs/index") {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if len(gotBody.Value) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(gotBody.Value))
	}
	if gotBody.Value[0]["@search.action"] != "upload" {
		t.Errorf("unexpected action: %v", gotBody.Value[0])
	}
	if gotBody.Value[1]["metadata"] != "claims.txt" {
		t.Errorf("metadata not serialized: %v", gotBody.Value[1])
	}
}

func TestUploadDocumentsRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{"key": "a", "status": true},
				{"key": "b", "status": false, "errorMessage": "vector dimension mismatch"},
			},
		})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret", "brand-rules")
	err := c.UploadDocuments(context.Background(), []IndexDocument{{ID: "a"}, {ID: "b"}})
	if err == nil {
		t.Fatal("expected error for rejected document")
	}
	if !strings.Contains(err.Error(), "vector dimension mismatch") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUploadDocumentsEmptyBatch(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "secret", "brand-rules")
	if err := c.UploadDocuments(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("no request expected for an empty batch")
	}
}
