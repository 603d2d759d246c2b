// Package search is a minimal client for an Azure AI Search vector
// index holding the compliance rule corpus.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiVersion = "2023-11-01"

// Document is one rule chunk returned by a similarity query.
type Document struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Metadata string `json:"metadata"`
}

// IndexDocument is one chunk+vector pair uploaded by the offline
// indexer.
type IndexDocument struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	ContentVector []float32 `json:"content_vector"`
	Metadata      string    `json:"metadata"`
}

// Client talks to one search index.
type Client struct {
	endpoint   string
	apiKey     string
	indexName  string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey, indexName string) *Client {
	return &Client{
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		indexName: indexName,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// SimilaritySearch returns the k most similar documents to the query
// vector, in the order the service ranks them. Scoring and
// tie-breaking are entirely the service's business.
func (c *Client) SimilaritySearch(ctx context.Context, vector []float32, k int) ([]Document, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("search API key not configured")
	}

	reqBody := map[string]any{
		"select": "id,content,metadata",
		"top":    k,
		"vectorQueries": []map[string]any{
			{
				"kind":   "vector",
				"vector": vector,
				"k":      k,
				"fields": "content_vector",
			},
		},
	}

	body, err := c.post(ctx, c.docsURL("search"), reqBody)
	if err != nil {
		return nil, err
	}

	var searchResp struct {
		Value []Document `json:"value"`
	}
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return searchResp.Value, nil
}

// UploadDocuments bulk-uploads chunk+vector pairs to the index.
func (c *Client) UploadDocuments(ctx context.Context, docs []IndexDocument) error {
	if c.apiKey == "" {
		return fmt.Errorf("search API key not configured")
	}
	if len(docs) == 0 {
		return nil
	}

	type action struct {
		IndexDocument
		SearchAction string `json:"@search.action"`
	}
	actions := make([]action, len(docs))
	for i, d := range docs {
		actions[i] = action{IndexDocument: d, SearchAction: "upload"}
	}

	body, err := c.post(ctx, c.docsURL("index"), map[string]any{"value": actions})
	if err != nil {
		return err
	}

	var indexResp struct {
		Value []struct {
			Key          string `json:"key"`
			Status       bool   `json:"status"`
			ErrorMessage string `json:"errorMessage"`
		} `json:"value"`
	}
	if err := json.Unmarshal(body, &indexResp); err != nil {
		return fmt.Errorf("parse index response: %w", err)
	}
	for _, r := range indexResp.Value {
		if !r.Status {
			return fmt.Errorf("document %s rejected: %s", r.Key, r.ErrorMessage)
		}
	}

	log.Printf("[search] uploaded %d documents to index %s", len(docs), c.indexName)
	return nil
}

func (c *Client) docsURL(op string) string {
	return fmt.Sprintf("%s/indexes/%s/docs/%s?api-version=%s",
		c.endpoint, url.PathEscape(c.indexName), op, apiVersion)
}

func (c *Client) post(ctx context.Context, reqURL string, reqBody any) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
