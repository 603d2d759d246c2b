package audit

import (
	"context"
	"testing"

	"github.com/brand-guardian/backend/internal/videoindexer"
)

func TestPipelineFullRun(t *testing.T) {
	indexer := &fakeIndexer{
		extraction: videoindexer.Extraction{
			Transcript:    "totally compliant content",
			OCRText:       []string{},
			VideoMetadata: map[string]any{"name": "demo"},
		},
	}
	retriever := &fakeRetriever{}
	model := &fakeModel{response: `{"status":"PASS","compliance_results":[],"final_report":"Clean"}`}

	p := NewPipeline(indexer, retriever, model)
	state := p.Run(context.Background(), "sess-1", "https://youtu.be/abc", "vid_1")

	if state.FinalStatus != StatusPass {
		t.Errorf("expected PASS, got %s", state.FinalStatus)
	}
	if state.FinalReport != "Clean" {
		t.Errorf("unexpected report: %q", state.FinalReport)
	}
	if len(state.Errors) != 0 {
		t.Errorf("unexpected errors: %v", state.Errors)
	}
	if model.calls != 1 {
		t.Errorf("expected one model call, got %d", model.calls)
	}
}

func TestPipelineExtractionFailureStillJudges(t *testing.T) {
	indexer := &fakeIndexer{failAt: "download"}
	retriever := &fakeRetriever{}
	model := &fakeModel{response: `{"status":"PASS"}`}

	p := NewPipeline(indexer, retriever, model)
	state := p.Run(context.Background(), "sess-1", "https://youtu.be/abc", "vid_1")

	// Judgment ran but skipped the model because extraction failed
	if model.calls != 0 {
		t.Errorf("model must not be called after extraction failure")
	}
	if state.FinalStatus != StatusFail {
		t.Errorf("expected FAIL, got %s", state.FinalStatus)
	}
	if len(state.Errors) == 0 {
		t.Error("expected extraction error in state")
	}
	if state.FinalReport != "Audit skipped because video processing failed (No Transcript)." {
		t.Errorf("unexpected report: %q", state.FinalReport)
	}
	if state.Transcript != "" || len(state.OCRText) != 0 {
		t.Errorf("expected empty extraction outputs, got %q / %v", state.Transcript, state.OCRText)
	}
}
