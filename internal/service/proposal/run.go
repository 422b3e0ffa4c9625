package proposal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"draftforge/internal/config"
	"draftforge/internal/domain"
	models "draftforge/internal/domain/models/proposal"
	proposalRepo "draftforge/internal/domain/repositories/proposal"
	llmSvc "draftforge/internal/domain/services/llm"
	proposalSvc "draftforge/internal/domain/services/proposal"
	"draftforge/internal/telemetry"
)

// runService implements the RunService interface
type runService struct {
	runRepo      proposalRepo.RunRepository
	orchestrator llmSvc.Orchestrator
	logger       *slog.Logger
}

// NewRunService creates a new run service
func NewRunService(
	runRepo proposalRepo.RunRepository,
	orchestrator llmSvc.Orchestrator,
	logger *slog.Logger,
) proposalSvc.RunService {
	return &runService{
		runRepo:      runRepo,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// CreateRun creates a new run
func (s *runService) CreateRun(ctx context.Context, req *proposalSvc.CreateRunRequest) (*proposalSvc.RunView, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	run, err := s.runRepo.Create(ctx, req.RunName, strings.TrimSpace(req.FileName), req.ProjectID)
	if err != nil {
		return nil, err
	}

	telemetry.Increment("runs_created")
	s.logger.Info("run created",
		"id", run.ID,
		"run_name", run.RunName,
		"file_name", run.FileName,
	)

	return view(run), nil
}

// GetRun retrieves a run by ID
func (s *runService) GetRun(ctx context.Context, id string) (*proposalSvc.RunView, error) {
	run, err := s.runRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return view(run), nil
}

// ListRuns retrieves all runs, most recently updated first
func (s *runService) ListRuns(ctx context.Context) ([]proposalSvc.RunView, error) {
	runs, err := s.runRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]proposalSvc.RunView, 0, len(runs))
	for i := range runs {
		views = append(views, *view(&runs[i]))
	}
	return views, nil
}

// UpdateRun applies a partial update to a run
func (s *runService) UpdateRun(ctx context.Context, id string, req *proposalSvc.UpdateRunRequest) (*proposalSvc.RunView, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	run, err := s.runRepo.Update(ctx, id, &proposalRepo.RunUpdate{
		RunName:      req.RunName,
		FileName:     req.FileName,
		ProjectID:    req.ProjectID,
		Status:       req.Status,
		PDF:          req.PDF,
		Sections:     req.Sections,
		Deliverables: req.Deliverables,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("run updated", "id", run.ID)
	return view(run), nil
}

// ReplaceDeliverables wholesale-replaces a run's deliverable list
func (s *runService) ReplaceDeliverables(ctx context.Context, runID string, req *proposalSvc.ReplaceDeliverablesRequest) (*proposalSvc.RunView, error) {
	if err := s.validateDeliverableItems(req.Items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	run, err := s.runRepo.ReplaceDeliverables(ctx, runID, toDeliverableInputs(req.Items))
	if err != nil {
		return nil, err
	}

	s.logger.Info("deliverables replaced",
		"run_id", run.ID,
		"count", len(run.Deliverables),
	)
	return view(run), nil
}

// UpdateDeliverable mutates one deliverable's status and/or one checklist item
func (s *runService) UpdateDeliverable(ctx context.Context, deliverableID string, req *proposalSvc.UpdateDeliverableRequest) (*proposalSvc.RunView, error) {
	if err := s.validateDeliverableUpdate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	upd := &proposalRepo.DeliverableUpdate{Status: req.Status}
	if req.ChecklistItem != nil {
		upd.ChecklistItem = &proposalRepo.ChecklistToggle{
			ID:   req.ChecklistItem.ID,
			Done: req.ChecklistItem.Done,
		}
	}

	run, err := s.runRepo.UpdateDeliverable(ctx, deliverableID, upd)
	if err != nil {
		return nil, err
	}

	return view(run), nil
}

// GeneratePlan asks the orchestrator for an initial plan and commits it onto
// the run. The orchestrator never fails; an unreachable LLM degrades to its
// deterministic local plan.
func (s *runService) GeneratePlan(ctx context.Context, req *proposalSvc.PlanRequest) (*proposalSvc.RunView, error) {
	run, err := s.runRepo.Get(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	plan := s.orchestrator.Plan(ctx, run, extractText(req.FileBytes), req.CompanyPrompt)

	application := &proposalRepo.PlanApplication{
		Summary:      plan.Summary,
		Draft:        plan.Draft,
		Deliverables: planDeliverables(plan.Deliverables),
	}
	if strings.HasSuffix(strings.ToLower(req.FileName), ".pdf") {
		application.PDF = &models.PDFMeta{FileName: req.FileName}
	}

	updated, err := s.runRepo.ApplyPlan(ctx, req.RunID, application)
	if err != nil {
		return nil, err
	}

	telemetry.Increment("plans_generated")
	s.logger.Info("plan applied",
		"run_id", updated.ID,
		"deliverables", len(updated.Deliverables),
	)
	return view(updated), nil
}

// RequestSuggestions appends the user turn, obtains 2-4 suggestions from the
// orchestrator, and appends the assistant turn carrying them. The LLM call
// happens between the two appends, outside any store lock; when two requests
// race, transcript order reflects completion order.
func (s *runService) RequestSuggestions(ctx context.Context, runID string, req *proposalSvc.SuggestRequest) (*models.ChatEntry, error) {
	if err := s.validateSuggestRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	run, err := s.runRepo.Get(ctx, runID)
	if err != nil {
		return nil, err
	}

	if _, err := s.runRepo.AppendChatEntry(ctx, runID, models.ChatRoleUser, req.Prompt, nil); err != nil {
		return nil, err
	}

	result := s.orchestrator.Suggest(ctx, run, req.Prompt)

	entry, err := s.runRepo.AppendChatEntry(ctx, runID, models.ChatRoleAssistant, result.Summary, result.Suggestions)
	if err != nil {
		return nil, err
	}

	telemetry.Increment("suggestions_requested")
	return entry, nil
}

// CommitChange records one user-approved textual insertion
func (s *runService) CommitChange(ctx context.Context, runID string, req *proposalSvc.CommitChangeRequest) (*models.LlmChange, error) {
	if err := s.validateCommitRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	change, err := s.runRepo.CommitChange(ctx, runID, &proposalRepo.ChangeInput{
		SectionID:       req.SectionID,
		Summary:         req.Summary,
		InsertedText:    req.InsertedText,
		Anchor:          req.Anchor,
		ApprovedByUser:  true,
		SourceMessageID: req.SourceMessageID,
		SuggestionID:    req.SuggestionID,
	})
	if err != nil {
		return nil, err
	}

	telemetry.Increment("changes_committed")
	return change, nil
}

// SetSuggestionStatus transitions exactly one suggestion's status
func (s *runService) SetSuggestionStatus(ctx context.Context, runID, messageID string, req *proposalSvc.UpdateSuggestionRequest) (*models.ChatEntry, error) {
	if err := s.validateSuggestionUpdate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return s.runRepo.SetSuggestionStatus(ctx, runID, messageID, req.SuggestionID, req.Status)
}

// ExportRun exports a run when readiness holds
func (s *runService) ExportRun(ctx context.Context, runID string) (*proposalSvc.RunView, error) {
	run, err := s.runRepo.Export(ctx, runID)
	if err != nil {
		return nil, err
	}

	telemetry.Increment("runs_exported")
	s.logger.Info("run exported", "id", run.ID)
	return view(run), nil
}

// ListArchives returns all run archives, most recently updated first
func (s *runService) ListArchives(ctx context.Context) ([]models.ArchiveEntry, error) {
	return s.runRepo.ListArchives(ctx)
}

// GetArchive returns one run archive by id
func (s *runService) GetArchive(ctx context.Context, id string) (*models.ArchiveEntry, error) {
	return s.runRepo.GetArchive(ctx, id)
}

// view attaches derived state to a run
func view(run *models.Run) *proposalSvc.RunView {
	return &proposalSvc.RunView{
		Run:             run,
		ComposedContent: models.ComposeSections(run.Sections),
		ExportReady:     models.ExportReady(run.Deliverables),
	}
}

// toDeliverableInputs maps the request shape to the repository input shape
func toDeliverableInputs(items []proposalSvc.DeliverableItem) []proposalRepo.DeliverableInput {
	out := make([]proposalRepo.DeliverableInput, 0, len(items))
	for _, item := range items {
		out = append(out, proposalRepo.DeliverableInput{
			Title:       item.Title,
			Description: item.Description,
			Checklist:   item.Checklist,
		})
	}
	return out
}

// planDeliverables maps plan deliverables to the repository input shape
func planDeliverables(items []llmSvc.PlanDeliverable) []proposalRepo.DeliverableInput {
	out := make([]proposalRepo.DeliverableInput, 0, len(items))
	for _, item := range items {
		out = append(out, proposalRepo.DeliverableInput{
			Title:       item.Title,
			Description: item.Description,
			Checklist:   item.Checklist,
		})
	}
	return out
}

// extractText returns a bounded excerpt of an uploaded file when it holds
// valid UTF-8 text; binary payloads contribute nothing to the prompt.
func extractText(data []byte) string {
	if len(data) == 0 || !utf8.Valid(data) {
		return ""
	}

	text := strings.TrimSpace(string(data))
	if len(text) > config.MaxPlanExcerptChars {
		text = text[:config.MaxPlanExcerptChars]
	}
	return text
}

func (s *runService) validateCreateRequest(req *proposalSvc.CreateRunRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.RunName,
			validation.Required,
			validation.Length(1, config.MaxRunNameLength),
		),
		validation.Field(&req.FileName,
			validation.Required,
			validation.Length(1, config.MaxFileNameLength),
		),
	)
}

func (s *runService) validateUpdateRequest(req *proposalSvc.UpdateRunRequest) error {
	if req.RunName != nil && strings.TrimSpace(*req.RunName) == "" {
		return fmt.Errorf("runName cannot be empty")
	}
	if req.FileName != nil && strings.TrimSpace(*req.FileName) == "" {
		return fmt.Errorf("fileName cannot be empty")
	}
	if req.Status != nil {
		switch *req.Status {
		case models.RunStatusDraft, models.RunStatusExported:
		default:
			return fmt.Errorf("invalid status %q", *req.Status)
		}
	}
	return nil
}

func (s *runService) validateDeliverableItems(items []proposalSvc.DeliverableItem) error {
	for i, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			return fmt.Errorf("deliverable %d: title is required", i)
		}
	}
	return nil
}

func (s *runService) validateDeliverableUpdate(req *proposalSvc.UpdateDeliverableRequest) error {
	if req.Status == nil && req.ChecklistItem == nil {
		return fmt.Errorf("nothing to update: provide status and/or checklistItem")
	}
	if req.Status != nil {
		switch *req.Status {
		case models.DeliverableStatusTodo, models.DeliverableStatusInProgress, models.DeliverableStatusDone:
		default:
			return fmt.Errorf("invalid status %q", *req.Status)
		}
	}
	if req.ChecklistItem != nil && req.ChecklistItem.ID == "" {
		return fmt.Errorf("checklistItem.id is required")
	}
	return nil
}

func (s *runService) validateSuggestRequest(req *proposalSvc.SuggestRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Prompt,
			validation.Required,
			validation.Length(1, config.MaxPromptLength),
		),
	)
}

func (s *runService) validateCommitRequest(req *proposalSvc.CommitChangeRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.InsertedText, validation.Required),
		validation.Field(&req.Summary, validation.Required),
	)
}

func (s *runService) validateSuggestionUpdate(req *proposalSvc.UpdateSuggestionRequest) error {
	if req.SuggestionID == "" {
		return fmt.Errorf("suggestionId is required")
	}
	switch req.Status {
	case models.SuggestionStatusPending, models.SuggestionStatusInserted, models.SuggestionStatusDismissed:
		return nil
	case "":
		return fmt.Errorf("status is required")
	default:
		return fmt.Errorf("invalid status %q", req.Status)
	}
}
