package audit

import (
	"context"
	"fmt"
	"os"

	"github.com/brand-guardian/backend/internal/search"
	"github.com/brand-guardian/backend/internal/videoindexer"
)

// fakeIndexer scripts the four-call media-indexing contract. failAt
// names the call that should error ("download", "upload", "wait").
type fakeIndexer struct {
	failAt     string
	insights   *videoindexer.Insights
	extraction videoindexer.Extraction

	downloadedPath string
}

func (f *fakeIndexer) Download(ctx context.Context, videoURL string) (string, error) {
	if f.failAt == "download" {
		return "", fmt.Errorf("simulated download failure")
	}
	tmp, err := os.CreateTemp("", "fake-video-*.mp4")
	if err != nil {
		return "", err
	}
	tmp.Close()
	f.downloadedPath = tmp.Name()
	return tmp.Name(), nil
}

func (f *fakeIndexer) Upload(ctx context.Context, localPath, name string) (string, error) {
	if f.failAt == "upload" {
		return "", fmt.Errorf("simulated upload failure")
	}
	return "remote-123", nil
}

func (f *fakeIndexer) WaitForProcessing(ctx context.Context, videoID string) (*videoindexer.Insights, error) {
	if f.failAt == "wait" {
		return nil, fmt.Errorf("simulated processing failure")
	}
	if f.insights != nil {
		return f.insights, nil
	}
	return &videoindexer.Insights{State: "Processed"}, nil
}

func (f *fakeIndexer) ExtractData(insights *videoindexer.Insights) videoindexer.Extraction {
	return f.extraction
}

type fakeRetriever struct {
	docs  []search.Document
	err   error
	query string
	k     int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, k int) ([]search.Document, error) {
	f.query = query
	f.k = k
	return f.docs, f.err
}

type fakeModel struct {
	response string
	err      error

	calls  int
	system string
	user   string
}

func (f *fakeModel) ChatComplete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	f.calls++
	f.system = systemPrompt
	f.user = userMessage
	return f.response, f.err
}
