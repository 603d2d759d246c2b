package audit

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/brand-guardian/backend/internal/videoindexer"
)

// MediaIndexer is the four-call contract the extraction stage depends
// on. Implemented by the video indexer client.
type MediaIndexer interface {
	Download(ctx context.Context, videoURL string) (string, error)
	Upload(ctx context.Context, localPath, name string) (string, error)
	WaitForProcessing(ctx context.Context, videoID string) (*videoindexer.Insights, error)
	ExtractData(insights *videoindexer.Insights) videoindexer.Extraction
}

// runExtraction downloads the video, hands it to the indexing service,
// waits for processing, and shapes the insights into transcript, OCR
// text, and metadata. Any failure is downgraded to a recorded error so
// the pipeline keeps going.
func runExtraction(ctx context.Context, indexer MediaIndexer, state *State) Update {
	log.Printf("[extract] processing %s (session %s)", state.VideoURL, state.SessionID)

	localPath, err := indexer.Download(ctx, state.VideoURL)
	if err != nil {
		return extractionFailure(fmt.Errorf("download: %w", err))
	}
	// The scratch file is gone by the time this stage returns, on
	// every exit path.
	defer os.Remove(localPath)

	remoteID, err := indexer.Upload(ctx, localPath, state.VideoID)
	if err != nil {
		return extractionFailure(fmt.Errorf("upload: %w", err))
	}
	log.Printf("[extract] upload complete, remote id %s", remoteID)

	insights, err := indexer.WaitForProcessing(ctx, remoteID)
	if err != nil {
		return extractionFailure(fmt.Errorf("wait for processing: %w", err))
	}

	data := indexer.ExtractData(insights)
	log.Printf("[extract] extraction complete: transcript=%d chars, ocr=%d lines",
		len(data.Transcript), len(data.OCRText))

	ocr := data.OCRText
	if ocr == nil {
		ocr = []string{}
	}
	return Update{
		Transcript:    strPtr(data.Transcript),
		OCRText:       ocr,
		VideoMetadata: data.VideoMetadata,
	}
}

// extractionFailure records the error and leaves transcript and OCR
// explicitly empty so the judgment stage sees a failed ingestion, not
// stale data.
func extractionFailure(err error) Update {
	log.Printf("[extract] failed: %v", err)
	u := failure(err.Error())
	u.Transcript = strPtr("")
	u.OCRText = []string{}
	return u
}
