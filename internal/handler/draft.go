package handler

import (
	"log/slog"
	"net/http"

	"draftforge/internal/httputil"

	proposalSvc "draftforge/internal/domain/services/proposal"
)

// DraftHandler handles draft HTTP requests
type DraftHandler struct {
	draftService proposalSvc.DraftService
	logger       *slog.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftService proposalSvc.DraftService, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		draftService: draftService,
		logger:       logger,
	}
}

// CreateDraft creates a new draft
// POST /drafts
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.CreateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := h.draftService.CreateDraft(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusCreated, draft)
}

// GetDraft retrieves a draft by ID
// GET /drafts/{id}
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.draftService.GetDraft(r.Context(), pathParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, draft)
}

// UpdateDraft applies a partial update to a draft
// PATCH /drafts/{id}
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.UpdateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := h.draftService.UpdateDraft(r.Context(), pathParam(r, "id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, draft)
}

// ListDrafts returns one page of a project's drafts. Supports search, status,
// page, and limit query parameters.
// GET /projects/{projectId}/drafts
func (h *DraftHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	req := proposalSvc.ListDraftsRequest{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 0),
	}

	page, err := h.draftService.ListDrafts(r.Context(), pathParam(r, "projectId"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondPage(w, page.Drafts, httputil.Pagination{
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
	})
}

// ArchiveDraft stores a draft in the archive collection
// POST /archive
func (h *DraftHandler) ArchiveDraft(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.CreateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft, err := h.draftService.ArchiveDraft(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusCreated, draft)
}

// GetArchivedDraft retrieves a draft from either collection
// GET /archive/{id}
func (h *DraftHandler) GetArchivedDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.draftService.GetArchivedDraft(r.Context(), pathParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, draft)
}
