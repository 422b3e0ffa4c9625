package proposal

import (
	"context"

	models "draftforge/internal/domain/models/proposal"
)

// RunUpdate applies partial, presence-aware changes to a run. Nil fields are
// left untouched; a non-nil Sections/Deliverables pointer replaces the whole
// collection.
type RunUpdate struct {
	RunName      *string
	FileName     *string
	ProjectID    *string
	Status       *models.RunStatus
	PDF          *models.PDFMeta
	Sections     *[]models.Section
	Deliverables *[]models.Deliverable
}

// DeliverableInput is the simplified client shape for wholesale deliverable
// replacement. Checklist entries arrive as plain strings.
type DeliverableInput struct {
	Title       string
	Description string
	Checklist   []string
}

// ChecklistToggle sets one checklist item's done flag by id.
type ChecklistToggle struct {
	ID   string
	Done bool
}

// DeliverableUpdate mutates a deliverable's status and/or one checklist item.
type DeliverableUpdate struct {
	Status        *models.DeliverableStatus
	ChecklistItem *ChecklistToggle
}

// PlanApplication is the generated plan content committed onto a run: one
// synthesized draft section plus a replacement deliverable list.
type PlanApplication struct {
	Summary      string
	Draft        string
	Deliverables []DeliverableInput
	PDF          *models.PDFMeta
}

// ChangeInput describes one LlmChange to append. When SourceMessageID and
// SuggestionID are both set, the matching suggestion is marked inserted.
type ChangeInput struct {
	SectionID       *string
	Summary         string
	InsertedText    string
	Anchor          *models.HighlightAnchor
	ApprovedByUser  bool
	SourceMessageID string
	SuggestionID    string
}

// RunRepository is the in-memory registry of runs plus its secondary indexes
// (case-insensitive run name, deliverable id). Every mutation bumps the
// run's UpdatedAt and refreshes the run's archive snapshot.
type RunRepository interface {
	Create(ctx context.Context, runName, fileName, projectID string) (*models.Run, error)
	Get(ctx context.Context, id string) (*models.Run, error)
	List(ctx context.Context) ([]models.Run, error)
	Update(ctx context.Context, id string, upd *RunUpdate) (*models.Run, error)

	ReplaceDeliverables(ctx context.Context, runID string, items []DeliverableInput) (*models.Run, error)
	UpdateDeliverable(ctx context.Context, deliverableID string, upd *DeliverableUpdate) (*models.Run, error)

	ApplyPlan(ctx context.Context, runID string, plan *PlanApplication) (*models.Run, error)
	AppendChatEntry(ctx context.Context, runID string, role models.ChatRole, content string, suggestions []models.ChatSuggestion) (*models.ChatEntry, error)
	CommitChange(ctx context.Context, runID string, change *ChangeInput) (*models.LlmChange, error)
	SetSuggestionStatus(ctx context.Context, runID, messageID, suggestionID string, status models.SuggestionStatus) (*models.ChatEntry, error)

	Export(ctx context.Context, runID string) (*models.Run, error)

	ListArchives(ctx context.Context) ([]models.ArchiveEntry, error)
	GetArchive(ctx context.Context, id string) (*models.ArchiveEntry, error)

	// Reset clears all runs, indexes, and archive state. Fired on process
	// teardown and between test cases.
	Reset(ctx context.Context)
}
