// Package openai is a minimal client for Azure OpenAI chat and
// embedding deployments.
package openai

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

// DeploymentResolver returns the current chat deployment name, so the
// model can be switched at runtime (e.g. from a settings table).
type DeploymentResolver func() string

// Client calls Azure OpenAI REST endpoints.
type Client struct {
	endpoint            string
	apiKey              string
	apiVersion          string
	chatResolver        DeploymentResolver
	embeddingDeployment string
	httpClient          *http.Client
}

func NewClient(endpoint, apiKey, apiVersion string, chatResolver DeploymentResolver, embeddingDeployment string) *Client {
	return &Client{
		endpoint:            strings.TrimRight(endpoint, "/"),
		apiKey:              apiKey,
		apiVersion:          apiVersion,
		chatResolver:        chatResolver,
		embeddingDeployment: embeddingDeployment,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *Client) chatDeployment() string {
	if c.chatResolver != nil {
		if d := c.chatResolver(); d != "" {
			return d
		}
	}
	return "gpt-4o"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatComplete sends one system + user message pair and returns the
// assistant text. Temperature is pinned to 0 and streaming is off: the
// verdict must be deterministic and arrive as a single response.
func (c *Client) ChatComplete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("Azure OpenAI API key not configured")
	}

	deployment := c.chatDeployment()
	reqBody := map[string]any{
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		"temperature": 0.0,
		"stream":      false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	reqURL := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(deployment), url.QueryEscape(c.apiVersion))

	log.Printf("[openai] chat completion: deployment=%s system=%d chars user=%d chars",
		deployment, len(systemPrompt), len(userMessage))

	body, err := c.post(ctx, reqURL, jsonBody)
	if err != nil {
		return "", err
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty chat response: %s", string(body))
	}
	if fr := chatResp.Choices[0].FinishReason; fr != "" && fr != "stop" {
		log.Printf("[openai] WARNING: finish_reason=%s", fr)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("Azure OpenAI API key not configured")
	}

	jsonBody, err := json.Marshal(map[string]any{"input": text})
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		c.endpoint, url.PathEscape(c.embeddingDeployment), url.QueryEscape(c.apiVersion))

	body, err := c.post(ctx, reqURL, jsonBody)
	if err != nil {
		return nil, err
	}

	var embResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response: %s", string(body))
	}

	return embResp.Data[0].Embedding, nil
}

func (c *Client) post(ctx context.Context, reqURL string, jsonBody []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("Azure OpenAI request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Azure OpenAI error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
