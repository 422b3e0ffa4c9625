package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"draftforge/internal/config"
	"draftforge/internal/httputil"

	proposalSvc "draftforge/internal/domain/services/proposal"
)

// RunHandler handles run HTTP requests
type RunHandler struct {
	runService proposalSvc.RunService
	logger     *slog.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(runService proposalSvc.RunService, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		runService: runService,
		logger:     logger,
	}
}

// CreateRun creates a new run
// POST /runs
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.CreateRunRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.runService.CreateRun(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusCreated, run)
}

// ListRuns retrieves all runs
// GET /runs
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runService.ListRuns(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, runs)
}

// GetRun retrieves a run by ID
// GET /runs/{id}
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runService.GetRun(r.Context(), pathParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, run)
}

// UpdateRun applies a partial update to a run
// PATCH /runs/{id}
func (h *RunHandler) UpdateRun(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.UpdateRunRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.runService.UpdateRun(r.Context(), pathParam(r, "id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, run)
}

// ReplaceDeliverables wholesale-replaces a run's deliverables
// POST /runs/{id}/deliverables
func (h *RunHandler) ReplaceDeliverables(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.ReplaceDeliverablesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.runService.ReplaceDeliverables(r.Context(), pathParam(r, "id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, run)
}

// UpdateDeliverable mutates one deliverable
// PATCH /deliverables/{id}
func (h *RunHandler) UpdateDeliverable(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.UpdateDeliverableRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.runService.UpdateDeliverable(r.Context(), pathParam(r, "id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, run)
}

// GeneratePlan generates and applies the initial plan for a run. Accepts
// multipart form data with an optional "file" part and "companyPrompt" field,
// or a plain JSON body with a "companyPrompt" field.
// POST /runs/{id}/llm/plan
func (h *RunHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	req := proposalSvc.PlanRequest{RunID: pathParam(r, "id")}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := h.parsePlanForm(r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if r.ContentLength > 0 {
		var body struct {
			CompanyPrompt string `json:"companyPrompt"`
		}
		if err := httputil.ParseJSON(w, r, &body); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.CompanyPrompt = body.CompanyPrompt
	}

	run, err := h.runService.GeneratePlan(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, run)
}

func (h *RunHandler) parsePlanForm(r *http.Request, req *proposalSvc.PlanRequest) error {
	if err := r.ParseMultipartForm(config.MaxRequestBodyBytes); err != nil {
		return err
	}

	req.CompanyPrompt = r.FormValue("companyPrompt")

	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, config.MaxRequestBodyBytes))
	if err != nil {
		return err
	}

	req.FileName = header.Filename
	req.FileBytes = data
	return nil
}

// RequestSuggestions asks for edit suggestions and returns the assistant
// chat entry carrying them
// POST /runs/{id}/llm/suggest
func (h *RunHandler) RequestSuggestions(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.SuggestRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.runService.RequestSuggestions(r.Context(), pathParam(r, "id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, entry)
}

// CommitChange records one approved insertion
// POST /runs/{id}/llm/commit-change
func (h *RunHandler) CommitChange(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.CommitChangeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	change, err := h.runService.CommitChange(r.Context(), pathParam(r, "id"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusCreated, change)
}

// SetSuggestionStatus transitions one suggestion's status
// PATCH /runs/{id}/llm/suggestions/{messageId}
func (h *RunHandler) SetSuggestionStatus(w http.ResponseWriter, r *http.Request) {
	var req proposalSvc.UpdateSuggestionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.runService.SetSuggestionStatus(r.Context(), pathParam(r, "id"), pathParam(r, "messageId"), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, entry)
}

// ExportRun exports a run once readiness holds
// POST /runs/{id}/export
func (h *RunHandler) ExportRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runService.ExportRun(r.Context(), pathParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, run)
}

// ListArchives retrieves all run archives
// GET /archives
func (h *RunHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := h.runService.ListArchives(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, archives)
}

// GetArchive retrieves one run archive
// GET /archives/{id}
func (h *RunHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	archive, err := h.runService.GetArchive(r.Context(), pathParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondData(w, http.StatusOK, archive)
}
