package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brand-guardian/backend/internal/db"
	"github.com/brand-guardian/backend/internal/db/models"
	"github.com/brand-guardian/backend/internal/job"
)

type AuditHandler struct {
	queue    *job.Queue
	database *db.Database
}

func NewAuditHandler(queue *job.Queue, database *db.Database) *AuditHandler {
	return &AuditHandler{queue: queue, database: database}
}

type createAuditRequest struct {
	VideoURL string `json:"video_url"`
	VideoID  string `json:"video_id"`
}

// CreateAudit enqueues a new audit job for a video URL. If no video_id
// is supplied one is derived from a fresh session id.
func (h *AuditHandler) CreateAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.VideoURL == "" {
		jsonError(w, "video_url is required", http.StatusBadRequest)
		return
	}
	if req.VideoID == "" {
		req.VideoID = "vid_" + uuid.New().String()[:8]
	}

	j, err := h.queue.Enqueue(job.JobAudit, req.VideoURL, job.AuditParams{
		VideoURL: req.VideoURL,
		VideoID:  req.VideoID,
	})
	if err != nil {
		jsonError(w, "failed to enqueue audit: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// ListAudits returns stored audit reports, newest first.
func (h *AuditHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	audits, err := h.database.ListAudits()
	if err != nil {
		jsonError(w, "failed to list audits: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if audits == nil {
		audits = []*models.AuditRecord{}
	}
	jsonResponse(w, audits, http.StatusOK)
}

// GetAudit returns one stored audit report by session id.
func (h *AuditHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		jsonError(w, "missing audit ID", http.StatusBadRequest)
		return
	}

	rec, err := h.database.GetAudit(id)
	if err != nil {
		jsonError(w, "audit not found", http.StatusNotFound)
		return
	}

	jsonResponse(w, rec, http.StatusOK)
}
