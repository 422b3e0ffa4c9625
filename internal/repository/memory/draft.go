package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"draftforge/internal/domain"
	models "draftforge/internal/domain/models/proposal"
	proposalRepo "draftforge/internal/domain/repositories/proposal"
)

// DraftStore is the project-scoped in-memory draft registry. Each project
// carries an id-set index and, when uniqueness enforcement is on, a
// case-insensitive file-name index. Archived drafts live in a separate map
// with their own identity.
type DraftStore struct {
	mu                 sync.Mutex
	drafts             map[string]*models.Draft
	archived           map[string]*models.Draft
	byProject          map[string]map[string]struct{}
	nameIndex          map[string]map[string]string
	enforceUniqueNames bool
	stamps             stampSource
	logger             *slog.Logger
}

// NewDraftStore creates an empty draft store. enforceUniqueNames is the
// feature flag gating per-project file-name uniqueness.
func NewDraftStore(enforceUniqueNames bool, logger *slog.Logger) *DraftStore {
	return &DraftStore{
		drafts:             make(map[string]*models.Draft),
		archived:           make(map[string]*models.Draft),
		byProject:          make(map[string]map[string]struct{}),
		nameIndex:          make(map[string]map[string]string),
		enforceUniqueNames: enforceUniqueNames,
		logger:             logger,
	}
}

var _ proposalRepo.DraftRepository = (*DraftStore)(nil)

// Create inserts a new draft. When uniqueness enforcement is on and the
// project already holds this file name (case-insensitively), the create is
// rejected with a suggested alternative.
func (s *DraftStore) Create(ctx context.Context, input *proposalRepo.DraftInput) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkName(input.ProjectID, input.FileName, ""); err != nil {
		return nil, err
	}

	draft := s.buildDraft(input)
	s.drafts[draft.ID] = draft
	s.index(draft)

	return draft.Clone(), nil
}

// Get returns one primary draft by id.
func (s *DraftStore) Get(ctx context.Context, id string) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("draft %s not found", id)}
	}
	return draft.Clone(), nil
}

// List filters a project's drafts by status and a case-insensitive substring
// match against file name, title, and section headings, then paginates.
// Returns the page plus the total filtered count.
func (s *DraftStore) List(ctx context.Context, projectID string, query *proposalRepo.DraftQuery) ([]models.Draft, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.Draft, 0)
	for id := range s.byProject[projectID] {
		draft := s.drafts[id]
		if draft == nil {
			continue
		}
		if query.Status != "" && string(draft.Status) != query.Status {
			continue
		}
		if query.Search != "" && !matchesSearch(draft, query.Search) {
			continue
		}
		matched = append(matched, *draft.Clone())
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt > matched[j].UpdatedAt
	})

	total := len(matched)

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 1
	}

	start := (page - 1) * limit
	if start >= total {
		return []models.Draft{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

// Update applies a field-by-field partial merge. A file-name change
// re-validates uniqueness (when enforced), moves the project name index
// entry, and always regenerates the slug.
func (s *DraftStore) Update(ctx context.Context, id string, upd *proposalRepo.DraftUpdate) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("draft %s not found", id)}
	}

	if upd.FileName != nil && nameKey(*upd.FileName) != nameKey(draft.FileName) {
		if err := s.checkName(draft.ProjectID, *upd.FileName, draft.ID); err != nil {
			return nil, err
		}
		if index := s.nameIndex[draft.ProjectID]; index != nil {
			delete(index, nameKey(draft.FileName))
			index[nameKey(*upd.FileName)] = draft.ID
		}
		draft.FileName = *upd.FileName
		draft.Slug = slugFor(draft.FileName)
	} else if upd.FileName != nil {
		draft.FileName = *upd.FileName
		draft.Slug = slugFor(draft.FileName)
	}

	if upd.Title != nil {
		draft.Title = *upd.Title
	}
	if upd.Status != nil {
		draft.Status = *upd.Status
	}
	if upd.PDFID != nil {
		draft.PDFID = *upd.PDFID
	}
	if upd.Sections != nil {
		draft.Sections = models.CloneSections(*upd.Sections)
	}
	if upd.Deliverables != nil {
		draft.Deliverables = models.CloneDeliverables(*upd.Deliverables)
	}
	if upd.LlmChanges != nil {
		draft.LlmChanges = models.CloneChanges(*upd.LlmChanges)
	}
	if upd.Sources != nil {
		sources := make([]string, len(*upd.Sources))
		copy(sources, *upd.Sources)
		draft.Sources = sources
	}
	if upd.Version != nil {
		draft.Version = *upd.Version
	}

	draft.UpdatedAt = s.stamps.next()
	return draft.Clone(), nil
}

// Archive runs the same conflict-checked creation as Create but inserts the
// draft into the separate archive map. Archived drafts are distinct objects,
// not snapshots of primary drafts, and do not join the project indexes.
func (s *DraftStore) Archive(ctx context.Context, input *proposalRepo.DraftInput) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkName(input.ProjectID, input.FileName, ""); err != nil {
		return nil, err
	}

	draft := s.buildDraft(input)
	s.archived[draft.ID] = draft

	return draft.Clone(), nil
}

// GetArchived looks up the primary map first, then the archive map, so
// either store may hold the requested id.
func (s *DraftStore) GetArchived(ctx context.Context, id string) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft, ok := s.drafts[id]; ok {
		return draft.Clone(), nil
	}
	if draft, ok := s.archived[id]; ok {
		return draft.Clone(), nil
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("archived draft %s not found", id)}
}

// Reset clears all drafts, archives, and indexes.
func (s *DraftStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts = make(map[string]*models.Draft)
	s.archived = make(map[string]*models.Draft)
	s.byProject = make(map[string]map[string]struct{})
	s.nameIndex = make(map[string]map[string]string)
}

// checkName enforces per-project file-name uniqueness when the feature flag
// is on. excludeID skips the draft's own index entry on rename. Caller
// holds the lock.
func (s *DraftStore) checkName(projectID, fileName, excludeID string) error {
	if !s.enforceUniqueNames {
		return nil
	}

	index := s.nameIndex[projectID]
	if index == nil {
		return nil
	}

	existing, taken := index[nameKey(fileName)]
	if !taken || existing == excludeID {
		return nil
	}

	suggested := suggestFileName(fileName, func(key string) bool {
		_, used := index[key]
		return used
	})
	return &domain.ConflictError{
		Message:       fmt.Sprintf("draft file name %q already exists in project", fileName),
		ResourceType:  "draft",
		SuggestedName: suggested,
	}
}

// buildDraft materializes a draft from validated input, filling defaults.
// Caller holds the lock.
func (s *DraftStore) buildDraft(input *proposalRepo.DraftInput) *models.Draft {
	now := s.stamps.next()

	slug := input.Slug
	if slug == "" {
		slug = slugFor(input.FileName)
	}
	status := input.Status
	if status == "" {
		status = models.DraftStatusDraft
	}
	version := input.Version
	if version == 0 {
		version = 1
	}

	draft := &models.Draft{
		ID:           uuid.NewString(),
		ProjectID:    input.ProjectID,
		FileName:     input.FileName,
		Slug:         slug,
		PDFID:        input.PDFID,
		Title:        input.Title,
		Status:       status,
		Sections:     models.CloneSections(input.Sections),
		Deliverables: models.CloneDeliverables(input.Deliverables),
		LlmChanges:   models.CloneChanges(input.LlmChanges),
		Sources:      append([]string{}, input.Sources...),
		Version:      version,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return draft
}

// index adds a primary draft to the project indexes. Caller holds the lock.
func (s *DraftStore) index(draft *models.Draft) {
	ids := s.byProject[draft.ProjectID]
	if ids == nil {
		ids = make(map[string]struct{})
		s.byProject[draft.ProjectID] = ids
	}
	ids[draft.ID] = struct{}{}

	if s.enforceUniqueNames {
		index := s.nameIndex[draft.ProjectID]
		if index == nil {
			index = make(map[string]string)
			s.nameIndex[draft.ProjectID] = index
		}
		index[nameKey(draft.FileName)] = draft.ID
	}
}

// matchesSearch reports whether the draft matches a case-insensitive
// substring search across file name, title, and section headings.
func matchesSearch(draft *models.Draft, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(draft.FileName), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(draft.Title), needle) {
		return true
	}
	for _, section := range draft.Sections {
		if strings.Contains(strings.ToLower(section.Heading), needle) {
			return true
		}
	}
	return false
}
