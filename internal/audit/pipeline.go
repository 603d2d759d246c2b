// Package audit implements the two-stage compliance pipeline:
// media extraction followed by retrieval-augmented judgment. Stage
// failures never abort a run; they are folded into the shared state so
// the operator always gets a report, partial or not.
package audit

import (
	"context"
	"log"
)

// Pipeline sequences Extraction and Judgment over one State.
type Pipeline struct {
	indexer   MediaIndexer
	retriever RuleRetriever
	model     ChatModel
}

func NewPipeline(indexer MediaIndexer, retriever RuleRetriever, model ChatModel) *Pipeline {
	return &Pipeline{
		indexer:   indexer,
		retriever: retriever,
		model:     model,
	}
}

// Run executes one audit session. Both stages always run in order;
// judgment handles a failed extraction (empty transcript) by skipping
// the model call. The returned state is fully merged and terminal.
func (p *Pipeline) Run(ctx context.Context, sessionID, videoURL, videoID string) *State {
	state := NewState(sessionID, videoURL, videoID)

	state.Apply(runExtraction(ctx, p.indexer, state))
	state.Apply(runJudgment(ctx, p.retriever, p.model, state))

	log.Printf("[audit] session %s finished: status=%s issues=%d errors=%d",
		sessionID, state.FinalStatus, len(state.ComplianceResults), len(state.Errors))
	return state
}
