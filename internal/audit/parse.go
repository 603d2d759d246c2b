package audit

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fallbackReport = "No report generated."

// Verdict is the parsed model response.
type Verdict struct {
	ComplianceResults []ComplianceIssue
	Status            Status
	FinalReport       string
}

type verdictWire struct {
	ComplianceResults []ComplianceIssue `json:"compliance_results"`
	Status            string            `json:"status"`
	FinalReport       string            `json:"final_report"`
}

// ParseVerdict extracts the verdict from a raw model response.
// Two attempts, never more: parse the trimmed raw text as JSON, and if
// that fails, parse the content of the first fenced code block. Models
// tend to wrap JSON in ```json fences even when told not to.
func ParseVerdict(raw string) (*Verdict, error) {
	v, directErr := decodeVerdict(strings.TrimSpace(raw))
	if directErr == nil {
		return v, nil
	}

	inner, ok := extractFencedBlock(raw)
	if !ok {
		return nil, fmt.Errorf("parse verdict: %w", directErr)
	}

	v, err := decodeVerdict(strings.TrimSpace(inner))
	if err != nil {
		return nil, fmt.Errorf("parse fenced verdict: %w", err)
	}
	return v, nil
}

func decodeVerdict(text string) (*Verdict, error) {
	var wire verdictWire
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, err
	}

	v := &Verdict{
		ComplianceResults: wire.ComplianceResults,
		Status:            Status(wire.Status),
		FinalReport:       wire.FinalReport,
	}
	if v.ComplianceResults == nil {
		v.ComplianceResults = []ComplianceIssue{}
	}
	if v.Status == "" {
		v.Status = StatusFail
	}
	if v.FinalReport == "" {
		v.FinalReport = fallbackReport
	}
	return v, nil
}

// extractFencedBlock returns the content between the first pair of
// triple-backtick markers, dropping an optional "json" language tag.
func extractFencedBlock(raw string) (string, bool) {
	const fence = "```"
	start := strings.Index(raw, fence)
	if start < 0 {
		return "", false
	}
	rest := raw[start+len(fence):]
	rest = strings.TrimPrefix(rest, "json")
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
