package audit

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/brand-guardian/backend/internal/search"
)

func TestRunJudgmentSkipsWithoutTranscript(t *testing.T) {
	retriever := &fakeRetriever{}
	model := &fakeModel{response: `{"status":"PASS"}`}
	state := NewState("s", "https://youtu.be/abc", "vid_1")

	state.Apply(runJudgment(context.Background(), retriever, model, state))

	if model.calls != 0 {
		t.Errorf("model must not be invoked without a transcript, got %d calls", model.calls)
	}
	if state.FinalStatus != StatusFail {
		t.Errorf("expected FAIL, got %s", state.FinalStatus)
	}
	if state.FinalReport != "Audit skipped because video processing failed (No Transcript)." {
		t.Errorf("unexpected report: %q", state.FinalReport)
	}
}

func TestRunJudgmentHappyPath(t *testing.T) {
	retriever := &fakeRetriever{docs: []search.Document{
		{Content: "Rule one."},
		{Content: "Rule two."},
	}}
	model := &fakeModel{
		response: "```json\n{\"status\":\"FAIL\",\"compliance_results\":[{\"category\":\"Claims\",\"severity\":\"CRITICAL\",\"description\":\"unsubstantiated\"}],\"final_report\":\"One violation.\"}\n```",
	}
	state := NewState("s", "https://youtu.be/abc", "vid_1")
	state.Transcript = "our product cures everything"
	state.OCRText = []string{"100% GUARANTEED", "NO REFUNDS"}

	state.Apply(runJudgment(context.Background(), retriever, model, state))

	// Query is transcript first, then OCR lines space-joined
	wantQuery := "our product cures everything 100% GUARANTEED NO REFUNDS"
	if retriever.query != wantQuery {
		t.Errorf("query = %q, want %q", retriever.query, wantQuery)
	}
	if retriever.k != 3 {
		t.Errorf("expected k=3, got %d", retriever.k)
	}

	// Retrieved rules are embedded verbatim, blank-line separated
	if !strings.Contains(model.system, "Rule one.\n\nRule two.") {
		t.Errorf("rules not embedded in system prompt:\n%s", model.system)
	}
	if !strings.Contains(model.system, "OFFICIAL REGULATORY RULES") {
		t.Errorf("system prompt missing rules header:\n%s", model.system)
	}
	if !strings.Contains(model.user, "our product cures everything") {
		t.Errorf("transcript not in user message:\n%s", model.user)
	}

	if state.FinalStatus != StatusFail {
		t.Errorf("expected FAIL, got %s", state.FinalStatus)
	}
	if len(state.ComplianceResults) != 1 || state.ComplianceResults[0].Severity != "CRITICAL" {
		t.Errorf("unexpected results: %+v", state.ComplianceResults)
	}
	if state.FinalReport != "One violation." {
		t.Errorf("unexpected report: %q", state.FinalReport)
	}
	if len(state.Errors) != 0 {
		t.Errorf("unexpected errors: %v", state.Errors)
	}
}

func TestRunJudgmentRetrievalFailure(t *testing.T) {
	retriever := &fakeRetriever{err: fmt.Errorf("search is down")}
	model := &fakeModel{}
	state := NewState("s", "https://youtu.be/abc", "vid_1")
	state.Transcript = "something"

	state.Apply(runJudgment(context.Background(), retriever, model, state))

	if model.calls != 0 {
		t.Errorf("model must not run after retrieval failure")
	}
	if state.FinalStatus != StatusFail || len(state.Errors) != 1 {
		t.Errorf("expected recorded failure, got status=%s errors=%v", state.FinalStatus, state.Errors)
	}
}

func TestRunJudgmentModelFailure(t *testing.T) {
	retriever := &fakeRetriever{}
	model := &fakeModel{err: fmt.Errorf("quota exceeded")}
	state := NewState("s", "https://youtu.be/abc", "vid_1")
	state.Transcript = "something"

	state.Apply(runJudgment(context.Background(), retriever, model, state))

	if state.FinalStatus != StatusFail || len(state.Errors) != 1 {
		t.Errorf("expected recorded failure, got status=%s errors=%v", state.FinalStatus, state.Errors)
	}
}

func TestRunJudgmentParseFailureLeavesResultsUntouched(t *testing.T) {
	retriever := &fakeRetriever{}
	model := &fakeModel{response: "I cannot answer in JSON, sorry."}
	state := NewState("s", "https://youtu.be/abc", "vid_1")
	state.Transcript = "something"

	state.Apply(runJudgment(context.Background(), retriever, model, state))

	if state.FinalStatus != StatusFail || len(state.Errors) != 1 {
		t.Errorf("expected recorded parse failure, got status=%s errors=%v", state.FinalStatus, state.Errors)
	}
	// Results and report keep whatever the state carried in
	if len(state.ComplianceResults) != 0 {
		t.Errorf("results must stay untouched: %v", state.ComplianceResults)
	}
	if state.FinalReport != "" {
		t.Errorf("report must stay untouched: %q", state.FinalReport)
	}
}

func TestRunJudgmentPassVerdict(t *testing.T) {
	retriever := &fakeRetriever{}
	model := &fakeModel{response: `{"status":"PASS","compliance_results":[],"final_report":"Clean"}`}
	state := NewState("s", "https://youtu.be/abc", "vid_1")
	state.Transcript = "wholesome content"

	state.Apply(runJudgment(context.Background(), retriever, model, state))

	if state.FinalStatus != StatusPass {
		t.Errorf("expected PASS, got %s", state.FinalStatus)
	}
	if state.FinalReport != "Clean" {
		t.Errorf("unexpected report: %q", state.FinalReport)
	}
}
