package proposal

import (
	"context"

	models "draftforge/internal/domain/models/proposal"
)

// CreateRunRequest creates a new proposal-drafting run.
type CreateRunRequest struct {
	RunName   string `json:"runName"`
	FileName  string `json:"fileName"`
	ProjectID string `json:"projectId"`
}

// UpdateRunRequest applies a partial update. Only fields present in the JSON
// body are applied.
type UpdateRunRequest struct {
	RunName      *string                 `json:"runName"`
	FileName     *string                 `json:"fileName"`
	ProjectID    *string                 `json:"projectId"`
	Status       *models.RunStatus       `json:"status"`
	PDF          *models.PDFMeta         `json:"pdf"`
	Sections     *[]models.Section       `json:"sections"`
	Deliverables *[]models.Deliverable   `json:"deliverables"`
}

// DeliverableItem is the client shape for wholesale deliverable replacement.
type DeliverableItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Checklist   []string `json:"checklist"`
}

// ReplaceDeliverablesRequest replaces a run's deliverable list.
type ReplaceDeliverablesRequest struct {
	Items []DeliverableItem `json:"items"`
}

// ChecklistItemUpdate sets one checklist item's done flag.
type ChecklistItemUpdate struct {
	ID   string `json:"id"`
	Done bool   `json:"done"`
}

// UpdateDeliverableRequest mutates a deliverable's status and/or one of its
// checklist items.
type UpdateDeliverableRequest struct {
	Status        *models.DeliverableStatus `json:"status"`
	ChecklistItem *ChecklistItemUpdate      `json:"checklistItem"`
}

// PlanRequest generates an initial plan for a run, optionally seeded with an
// uploaded file and a company prompt.
type PlanRequest struct {
	RunID         string
	FileName      string
	FileBytes     []byte
	CompanyPrompt string
}

// SuggestRequest asks for AI-authored edit suggestions.
type SuggestRequest struct {
	Prompt    string  `json:"prompt"`
	SectionID *string `json:"sectionId"`
	Cursor    *int    `json:"cursor"`
}

// CommitChangeRequest records one approved textual insertion.
type CommitChangeRequest struct {
	SectionID       *string                 `json:"sectionId"`
	InsertedText    string                  `json:"insertedText"`
	Summary         string                  `json:"summary"`
	Anchor          *models.HighlightAnchor `json:"anchor"`
	SourceMessageID string                  `json:"sourceMessageId"`
	SuggestionID    string                  `json:"suggestionId"`
}

// UpdateSuggestionRequest transitions one suggestion's status. The route
// names the chat message; the body names the suggestion inside it.
type UpdateSuggestionRequest struct {
	SuggestionID string                  `json:"suggestionId"`
	Status       models.SuggestionStatus `json:"status"`
}

// RunView is a run plus derived state. The composed document and export
// readiness are recomputed per response, never stored.
type RunView struct {
	*models.Run
	ComposedContent string `json:"composedContent"`
	ExportReady     bool   `json:"exportReady"`
}

// RunService owns run lifecycle operations: CRUD, deliverable management,
// plan/suggestion orchestration, export gating, and archive reads.
type RunService interface {
	CreateRun(ctx context.Context, req *CreateRunRequest) (*RunView, error)
	GetRun(ctx context.Context, id string) (*RunView, error)
	ListRuns(ctx context.Context) ([]RunView, error)
	UpdateRun(ctx context.Context, id string, req *UpdateRunRequest) (*RunView, error)

	ReplaceDeliverables(ctx context.Context, runID string, req *ReplaceDeliverablesRequest) (*RunView, error)
	UpdateDeliverable(ctx context.Context, deliverableID string, req *UpdateDeliverableRequest) (*RunView, error)

	GeneratePlan(ctx context.Context, req *PlanRequest) (*RunView, error)
	RequestSuggestions(ctx context.Context, runID string, req *SuggestRequest) (*models.ChatEntry, error)
	CommitChange(ctx context.Context, runID string, req *CommitChangeRequest) (*models.LlmChange, error)
	SetSuggestionStatus(ctx context.Context, runID, messageID string, req *UpdateSuggestionRequest) (*models.ChatEntry, error)

	ExportRun(ctx context.Context, runID string) (*RunView, error)

	ListArchives(ctx context.Context) ([]models.ArchiveEntry, error)
	GetArchive(ctx context.Context, id string) (*models.ArchiveEntry, error)
}
