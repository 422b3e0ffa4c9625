package proposal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"draftforge/internal/config"
	"draftforge/internal/domain"
	models "draftforge/internal/domain/models/proposal"
	proposalRepo "draftforge/internal/domain/repositories/proposal"
	proposalSvc "draftforge/internal/domain/services/proposal"
	"draftforge/internal/telemetry"
)

// draftService implements the DraftService interface
type draftService struct {
	draftRepo proposalRepo.DraftRepository
	logger    *slog.Logger
}

// NewDraftService creates a new draft service
func NewDraftService(draftRepo proposalRepo.DraftRepository, logger *slog.Logger) proposalSvc.DraftService {
	return &draftService{
		draftRepo: draftRepo,
		logger:    logger,
	}
}

// CreateDraft creates a new primary draft
func (s *draftService) CreateDraft(ctx context.Context, req *proposalSvc.CreateDraftRequest) (*models.Draft, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	draft, err := s.draftRepo.Create(ctx, draftInput(req))
	if err != nil {
		return nil, err
	}

	telemetry.Increment("drafts_created")
	s.logger.Info("draft created",
		"id", draft.ID,
		"project_id", draft.ProjectID,
		"file_name", draft.FileName,
	)
	return draft, nil
}

// GetDraft retrieves a primary draft by ID
func (s *draftService) GetDraft(ctx context.Context, id string) (*models.Draft, error) {
	return s.draftRepo.Get(ctx, id)
}

// UpdateDraft applies a partial update to a draft
func (s *draftService) UpdateDraft(ctx context.Context, id string, req *proposalSvc.UpdateDraftRequest) (*models.Draft, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	draft, err := s.draftRepo.Update(ctx, id, &proposalRepo.DraftUpdate{
		FileName:     req.FileName,
		Title:        req.Title,
		Status:       req.Status,
		PDFID:        req.PDFID,
		Sections:     req.Sections,
		Deliverables: req.Deliverables,
		LlmChanges:   req.LlmChanges,
		Sources:      req.Sources,
		Version:      req.Version,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("draft updated", "id", draft.ID)
	return draft, nil
}

// ListDrafts returns one filtered, paginated page of a project's drafts.
// Page defaults to 1; limit defaults to 20 and is capped at 100.
func (s *draftService) ListDrafts(ctx context.Context, projectID string, req *proposalSvc.ListDraftsRequest) (*proposalSvc.DraftPage, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = config.DefaultDraftPageLimit
	}
	if limit > config.MaxDraftPageLimit {
		limit = config.MaxDraftPageLimit
	}

	drafts, total, err := s.draftRepo.List(ctx, projectID, &proposalRepo.DraftQuery{
		Search: strings.TrimSpace(req.Search),
		Status: req.Status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	return &proposalSvc.DraftPage{
		Drafts: drafts,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

// ArchiveDraft stores a draft in the separate archive collection
func (s *draftService) ArchiveDraft(ctx context.Context, req *proposalSvc.CreateDraftRequest) (*models.Draft, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	draft, err := s.draftRepo.Archive(ctx, draftInput(req))
	if err != nil {
		return nil, err
	}

	telemetry.Increment("drafts_archived")
	s.logger.Info("draft archived",
		"id", draft.ID,
		"project_id", draft.ProjectID,
	)
	return draft, nil
}

// GetArchivedDraft retrieves a draft from either collection
func (s *draftService) GetArchivedDraft(ctx context.Context, id string) (*models.Draft, error) {
	return s.draftRepo.GetArchived(ctx, id)
}

// draftInput maps the request shape to the repository input shape
func draftInput(req *proposalSvc.CreateDraftRequest) *proposalRepo.DraftInput {
	return &proposalRepo.DraftInput{
		ProjectID:    req.ProjectID,
		FileName:     req.FileName,
		Slug:         req.Slug,
		PDFID:        req.PDFID,
		Title:        req.Title,
		Status:       req.Status,
		Sections:     req.Sections,
		Deliverables: req.Deliverables,
		LlmChanges:   req.LlmChanges,
		Sources:      req.Sources,
		Version:      req.Version,
	}
}

func (s *draftService) validateCreateRequest(req *proposalSvc.CreateDraftRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.FileName,
			validation.Required,
			validation.Length(1, config.MaxFileNameLength),
		),
	); err != nil {
		return err
	}
	if req.Status != "" {
		switch req.Status {
		case models.DraftStatusDraft, models.DraftStatusFinal:
		default:
			return fmt.Errorf("invalid status %q", req.Status)
		}
	}
	return nil
}

func (s *draftService) validateUpdateRequest(req *proposalSvc.UpdateDraftRequest) error {
	if req.FileName != nil && strings.TrimSpace(*req.FileName) == "" {
		return fmt.Errorf("fileName cannot be empty")
	}
	if req.Status != nil {
		switch *req.Status {
		case models.DraftStatusDraft, models.DraftStatusFinal:
		default:
			return fmt.Errorf("invalid status %q", *req.Status)
		}
	}
	if req.Version != nil && *req.Version < 1 {
		return fmt.Errorf("version must be positive")
	}
	return nil
}
