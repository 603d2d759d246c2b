package models

import (
	"encoding/json"
	"time"
)

// AuditRecord is the persisted snapshot of one finished audit session.
// Results and Errors are stored as JSON so the report survives exactly
// as the pipeline produced it.
type AuditRecord struct {
	SessionID       string          `json:"session_id"`
	VideoURL        string          `json:"video_url"`
	VideoID         string          `json:"video_id"`
	Status          string          `json:"status"`
	Report          string          `json:"report"`
	Results         json.RawMessage `json:"results"`
	Errors          json.RawMessage `json:"errors"`
	TranscriptChars int             `json:"transcript_chars"`
	OCRLines        int             `json:"ocr_lines"`
	CreatedAt       time.Time       `json:"created_at"`
}
