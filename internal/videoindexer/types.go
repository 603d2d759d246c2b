package videoindexer

// Insights is the index document returned by the media-indexing
// service once a video has been processed. Only the fields the audit
// pipeline consumes are mapped.
type Insights struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	State       string  `json:"state"` // "Uploaded", "Processing", "Processed", "Failed"
	Description string  `json:"description"`
	Duration    float64 `json:"durationInSeconds"`
	Videos      []Video `json:"videos"`
}

type Video struct {
	Insights VideoInsights `json:"insights"`
}

type VideoInsights struct {
	Language   string           `json:"language"`
	Transcript []TranscriptLine `json:"transcript"`
	OCR        []OCRLine        `json:"ocr"`
}

type TranscriptLine struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type OCRLine struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Extraction is the cleaned-up payload the pipeline works with.
type Extraction struct {
	Transcript    string
	OCRText       []string
	VideoMetadata map[string]any
}
