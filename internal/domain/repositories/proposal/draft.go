package proposal

import (
	"context"

	models "draftforge/internal/domain/models/proposal"
)

// DraftInput carries the validated fields for draft creation or archival.
// A zero Slug is derived from the file name; a zero Status defaults to
// "draft"; a zero Version defaults to 1.
type DraftInput struct {
	ProjectID    string
	FileName     string
	Slug         string
	PDFID        string
	Title        string
	Status       models.DraftStatus
	Sections     []models.Section
	Deliverables []models.Deliverable
	LlmChanges   []models.LlmChange
	Sources      []string
	Version      int
}

// DraftUpdate applies partial, presence-aware changes to a draft. Changing
// the file name always regenerates the slug.
type DraftUpdate struct {
	FileName     *string
	Title        *string
	Status       *models.DraftStatus
	PDFID        *string
	Sections     *[]models.Section
	Deliverables *[]models.Deliverable
	LlmChanges   *[]models.LlmChange
	Sources      *[]string
	Version      *int
}

// DraftQuery filters and paginates a project's draft listing. Search is a
// case-insensitive substring match against file name, title, and section
// headings.
type DraftQuery struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// DraftRepository is the per-project in-memory draft registry. Archived
// drafts live in a separate map with their own identity, not as derived
// snapshots of primary drafts.
type DraftRepository interface {
	Create(ctx context.Context, input *DraftInput) (*models.Draft, error)
	Get(ctx context.Context, id string) (*models.Draft, error)
	List(ctx context.Context, projectID string, query *DraftQuery) ([]models.Draft, int, error)
	Update(ctx context.Context, id string, upd *DraftUpdate) (*models.Draft, error)

	Archive(ctx context.Context, input *DraftInput) (*models.Draft, error)
	// GetArchived looks up the primary map first, then the archive map, so
	// either store may hold the requested id.
	GetArchived(ctx context.Context, id string) (*models.Draft, error)

	Reset(ctx context.Context)
}
