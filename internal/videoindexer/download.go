package videoindexer

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// videoHosts are the hosting domains accepted for audit downloads.
var videoHosts = []string{
	"youtube.com",
	"youtu.be",
}

// Download fetches a video to a local scratch file and returns its
// path. Only recognized video-hosting URLs are accepted; anything else
// is rejected before any network traffic. The caller owns the scratch
// file and must remove it when done.
func (c *Client) Download(ctx context.Context, videoURL string) (string, error) {
	if err := validateVideoURL(videoURL); err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp("", "audit-video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	defer tmpFile.Close()

	httpReq, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("create request: %w", err)
	}

	log.Printf("[indexer] downloading %s", videoURL)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("download error (status %d)", resp.StatusCode)
	}

	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("save video: %w", err)
	}

	log.Printf("[indexer] downloaded %d bytes to %s", written, tmpFile.Name())
	return tmpFile.Name(), nil
}

func validateVideoURL(videoURL string) error {
	u, err := url.Parse(videoURL)
	if err != nil {
		return fmt.Errorf("invalid video URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q: provide a valid video-hosting URL", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	for _, allowed := range videoHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("unrecognized video host %q: provide a valid video-hosting URL", host)
}
