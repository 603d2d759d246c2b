package audit

// Status is the terminal outcome of an audit.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// ComplianceIssue is a single violation reported by the model.
// Severity is an open string; the model conventionally emits
// CRITICAL or WARNING but anything it says is kept verbatim.
type ComplianceIssue struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// State is the record threaded through the pipeline. VideoURL and
// VideoID are set once at session start; every later change goes
// through Apply, which only ever adds, never removes.
type State struct {
	SessionID         string            `json:"session_id"`
	VideoURL          string            `json:"video_url"`
	VideoID           string            `json:"video_id"`
	Transcript        string            `json:"transcript"`
	OCRText           []string          `json:"ocr_text"`
	VideoMetadata     map[string]any    `json:"video_metadata"`
	ComplianceResults []ComplianceIssue `json:"compliance_results"`
	FinalStatus       Status            `json:"final_status"`
	FinalReport       string            `json:"final_report"`
	Errors            []string          `json:"errors"`
}

// NewState returns the initial state for one audit session with
// pre-populated empty results and errors.
func NewState(sessionID, videoURL, videoID string) *State {
	return &State{
		SessionID:         sessionID,
		VideoURL:          videoURL,
		VideoID:           videoID,
		OCRText:           []string{},
		ComplianceResults: []ComplianceIssue{},
		Errors:            []string{},
	}
}

// Update is the partial output of one stage. Nil/zero fields mean
// "no change"; Transcript and FinalReport are pointers so a stage can
// explicitly set them to the empty string.
type Update struct {
	Transcript        *string
	OCRText           []string
	VideoMetadata     map[string]any
	ComplianceResults []ComplianceIssue
	FinalStatus       Status
	FinalReport       *string
	Errors            []string
}

// failure builds the Update every failure path produces: the message
// appended to Errors and the status forced to FAIL.
func failure(msg string) Update {
	return Update{
		Errors:      []string{msg},
		FinalStatus: StatusFail,
	}
}

// Apply merges a stage result into the state. Errors accumulate in
// order; a non-empty error list always forces FinalStatus to FAIL,
// even if a later stage claims PASS.
func (s *State) Apply(u Update) {
	if u.Transcript != nil {
		s.Transcript = *u.Transcript
	}
	if u.OCRText != nil {
		s.OCRText = u.OCRText
	}
	if u.VideoMetadata != nil {
		s.VideoMetadata = u.VideoMetadata
	}
	if u.ComplianceResults != nil {
		s.ComplianceResults = u.ComplianceResults
	}
	if u.FinalStatus != "" {
		s.FinalStatus = u.FinalStatus
	}
	if u.FinalReport != nil {
		s.FinalReport = *u.FinalReport
	}
	s.Errors = append(s.Errors, u.Errors...)

	if len(s.Errors) > 0 {
		s.FinalStatus = StatusFail
	}
}

func strPtr(s string) *string {
	return &s
}
