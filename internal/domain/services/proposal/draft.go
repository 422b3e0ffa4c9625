package proposal

import (
	"context"

	models "draftforge/internal/domain/models/proposal"
)

// CreateDraftRequest creates or archives a draft.
type CreateDraftRequest struct {
	ProjectID    string                `json:"projectId"`
	FileName     string                `json:"fileName"`
	Slug         string                `json:"slug"`
	PDFID        string                `json:"pdfId"`
	Title        string                `json:"title"`
	Status       models.DraftStatus    `json:"status"`
	Sections     []models.Section      `json:"sections"`
	Deliverables []models.Deliverable  `json:"deliverables"`
	LlmChanges   []models.LlmChange    `json:"llmChanges"`
	Sources      []string              `json:"sources"`
	Version      int                   `json:"version"`
}

// UpdateDraftRequest applies a partial, field-by-field merge.
type UpdateDraftRequest struct {
	FileName     *string                `json:"fileName"`
	Title        *string                `json:"title"`
	Status       *models.DraftStatus    `json:"status"`
	PDFID        *string                `json:"pdfId"`
	Sections     *[]models.Section      `json:"sections"`
	Deliverables *[]models.Deliverable  `json:"deliverables"`
	LlmChanges   *[]models.LlmChange    `json:"llmChanges"`
	Sources      *[]string              `json:"sources"`
	Version      *int                   `json:"version"`
}

// ListDraftsRequest filters and paginates a project's drafts.
type ListDraftsRequest struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// DraftPage is one page of a project's draft listing.
type DraftPage struct {
	Drafts []models.Draft
	Total  int
	Page   int
	Limit  int
}

// DraftService owns draft CRUD and the separate draft archive.
type DraftService interface {
	CreateDraft(ctx context.Context, req *CreateDraftRequest) (*models.Draft, error)
	GetDraft(ctx context.Context, id string) (*models.Draft, error)
	UpdateDraft(ctx context.Context, id string, req *UpdateDraftRequest) (*models.Draft, error)
	ListDrafts(ctx context.Context, projectID string, req *ListDraftsRequest) (*DraftPage, error)

	ArchiveDraft(ctx context.Context, req *CreateDraftRequest) (*models.Draft, error)
	GetArchivedDraft(ctx context.Context, id string) (*models.Draft, error)
}
