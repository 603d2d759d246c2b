package videoindexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to the external media-indexing service.
type Client struct {
	endpoint    string
	accountID   string
	accessToken string
	waitTimeout time.Duration
	httpClient  *http.Client
}

// NewClient creates a client for the media-indexing service.
// waitTimeout bounds WaitForProcessing; processing a long video can
// take a while, so callers should pass something generous (minutes).
func NewClient(endpoint, accountID, accessToken string, waitTimeout time.Duration) *Client {
	return &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		accountID:   accountID,
		accessToken: accessToken,
		waitTimeout: waitTimeout,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute, // uploads can be large
		},
	}
}

// Upload sends a local video file to the indexing service and returns
// the remote video ID.
func (c *Client) Upload(ctx context.Context, localPath, name string) (string, error) {
	if c.accessToken == "" {
		return "", fmt.Errorf("video indexer access token not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	videoFile, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer videoFile.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, videoFile); err != nil {
		return "", fmt.Errorf("copy video data: %w", err)
	}
	writer.Close()

	uploadURL := fmt.Sprintf("%s/%s/Videos?name=%s&accessToken=%s&privacy=Private",
		c.endpoint, c.accountID, url.QueryEscape(name), url.QueryEscape(c.accessToken))

	httpReq, err := http.NewRequestWithContext(ctx, "POST", uploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("[indexer] uploading %s as %q", localPath, name)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("upload response missing video id: %s", string(body))
	}

	return result.ID, nil
}

// WaitForProcessing polls the index endpoint until the service reports
// the video as Processed. The wait is bounded: polling backs off from
// 10s to 30s and gives up after the configured timeout instead of
// hanging on a stuck asset.
func (c *Client) WaitForProcessing(ctx context.Context, videoID string) (*Insights, error) {
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	interval := 10 * time.Second
	for attempt := 1; ; attempt++ {
		insights, err := c.getIndex(ctx, videoID)
		if err != nil {
			return nil, err
		}

		switch insights.State {
		case "Processed":
			return insights, nil
		case "Failed":
			return nil, fmt.Errorf("indexing failed for video %s", videoID)
		}

		log.Printf("[indexer] video %s state=%s, polling again in %s (attempt %d)",
			videoID, insights.State, interval, attempt)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for video %s to process: %w", videoID, ctx.Err())
		case <-time.After(interval):
		}

		if interval < 30*time.Second {
			interval += 5 * time.Second
		}
	}
}

func (c *Client) getIndex(ctx context.Context, videoID string) (*Insights, error) {
	indexURL := fmt.Sprintf("%s/%s/Videos/%s/Index?accessToken=%s",
		c.endpoint, c.accountID, url.PathEscape(videoID), url.QueryEscape(c.accessToken))

	httpReq, err := http.NewRequestWithContext(ctx, "GET", indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("index request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index error (status %d): %s", resp.StatusCode, string(body))
	}

	var insights Insights
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("parse index response: %w", err)
	}
	return &insights, nil
}

// ExtractData flattens raw insights into the transcript, on-screen
// text, and metadata the audit pipeline consumes. Line order follows
// the service's ordering.
func (c *Client) ExtractData(insights *Insights) Extraction {
	ex := Extraction{
		OCRText: []string{},
		VideoMetadata: map[string]any{
			"name":     insights.Name,
			"duration": insights.Duration,
		},
	}
	if insights.Description != "" {
		ex.VideoMetadata["description"] = insights.Description
	}

	var transcript []string
	for _, v := range insights.Videos {
		if v.Insights.Language != "" {
			ex.VideoMetadata["language"] = v.Insights.Language
		}
		for _, line := range v.Insights.Transcript {
			if line.Text != "" {
				transcript = append(transcript, line.Text)
			}
		}
		for _, line := range v.Insights.OCR {
			if line.Text != "" {
				ex.OCRText = append(ex.OCRText, line.Text)
			}
		}
	}
	ex.Transcript = strings.Join(transcript, " ")

	return ex
}
