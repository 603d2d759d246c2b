package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/brand-guardian/backend/internal/db"
	"github.com/brand-guardian/backend/internal/db/models"
	"github.com/brand-guardian/backend/internal/job"
)

// Service runs audit jobs from the queue and persists finished
// snapshots.
type Service struct {
	pipeline *Pipeline
	database *db.Database
}

func NewService(pipeline *Pipeline, database *db.Database) *Service {
	return &Service{pipeline: pipeline, database: database}
}

// HandleJob processes one audit job. The job id doubles as the audit
// session id so the report is addressable from the job record.
func (s *Service) HandleJob(ctx context.Context, j *job.Job) error {
	var params job.AuditParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	log.Printf("[audit] starting session %s: url=%s video_id=%s", j.ID, params.VideoURL, params.VideoID)

	state := s.pipeline.Run(ctx, j.ID, params.VideoURL, params.VideoID)

	if err := s.saveSnapshot(state); err != nil {
		// The operator still gets the result through the job record.
		log.Printf("[audit] failed to persist session %s: %v", state.SessionID, err)
	}

	resultJSON, _ := json.Marshal(job.AuditResult{
		SessionID: state.SessionID,
		Status:    string(state.FinalStatus),
		Report:    state.FinalReport,
		Issues:    len(state.ComplianceResults),
	})
	j.Result = resultJSON

	return nil
}

func (s *Service) saveSnapshot(state *State) error {
	results, err := json.Marshal(state.ComplianceResults)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	errs, err := json.Marshal(state.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	return s.database.SaveAudit(&models.AuditRecord{
		SessionID:       state.SessionID,
		VideoURL:        state.VideoURL,
		VideoID:         state.VideoID,
		Status:          string(state.FinalStatus),
		Report:          state.FinalReport,
		Results:         results,
		Errors:          errs,
		TranscriptChars: len(state.Transcript),
		OCRLines:        len(state.OCRText),
	})
}
