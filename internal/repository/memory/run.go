package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"draftforge/internal/domain"
	models "draftforge/internal/domain/models/proposal"
	proposalRepo "draftforge/internal/domain/repositories/proposal"
)

// RunStore is the in-memory run registry. It owns the primary map plus two
// secondary indexes: a case-insensitive run-name index and a deliverable id
// -> run id back-index. All mutating operations run to completion under one
// mutex so map and index updates never interleave; the only suspension
// points (LLM calls) live outside the store entirely.
type RunStore struct {
	mu               sync.Mutex
	runs             map[string]*models.Run
	nameIndex        map[string]string
	deliverableIndex map[string]string
	archive          *ArchiveStore
	stamps           stampSource
	logger           *slog.Logger
}

// NewRunStore creates an empty run store writing snapshots to archive.
func NewRunStore(archive *ArchiveStore, logger *slog.Logger) *RunStore {
	return &RunStore{
		runs:             make(map[string]*models.Run),
		nameIndex:        make(map[string]string),
		deliverableIndex: make(map[string]string),
		archive:          archive,
		logger:           logger,
	}
}

var _ proposalRepo.RunRepository = (*RunStore)(nil)

// Create inserts a new run in draft status with empty collections. Run names
// are unique case-insensitively across all runs; a collision is rejected
// with a suggested alternative derived from the file name.
func (s *RunStore) Create(ctx context.Context, runName, fileName, projectID string) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(runName)
	key := nameKey(name)
	if _, exists := s.nameIndex[key]; exists {
		return nil, s.nameConflict(name, fileName)
	}

	now := s.stamps.next()
	run := &models.Run{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		RunName:      name,
		FileName:     fileName,
		Status:       models.RunStatusDraft,
		Sections:     []models.Section{},
		Deliverables: []models.Deliverable{},
		LlmChanges:   []models.LlmChange{},
		Chat:         []models.ChatEntry{},
		Exports:      []models.Export{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.runs[run.ID] = run
	s.nameIndex[key] = run.ID
	s.archive.Snapshot(run)

	return run.Clone(), nil
}

// Get returns one run by id.
func (s *RunStore) Get(ctx context.Context, id string) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return run.Clone(), nil
}

// List returns all runs sorted by UpdatedAt descending.
func (s *RunStore) List(ctx context.Context) ([]models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, *run.Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})

	return out, nil
}

// Update applies only the provided fields. A run-name change re-validates
// uniqueness (excluding the run's own entry) and moves the index entry
// atomically; a deliverables replacement rebuilds the deliverable index.
func (s *RunStore) Update(ctx context.Context, id string, upd *proposalRepo.RunUpdate) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	if upd.RunName != nil {
		name := strings.TrimSpace(*upd.RunName)
		newKey := nameKey(name)
		oldKey := nameKey(run.RunName)
		if newKey != oldKey {
			if _, exists := s.nameIndex[newKey]; exists {
				fileName := run.FileName
				if upd.FileName != nil {
					fileName = *upd.FileName
				}
				return nil, s.nameConflict(name, fileName)
			}
			delete(s.nameIndex, oldKey)
			s.nameIndex[newKey] = run.ID
		}
		run.RunName = name
	}

	if upd.FileName != nil {
		run.FileName = *upd.FileName
	}
	if upd.ProjectID != nil {
		run.ProjectID = *upd.ProjectID
	}
	if upd.Status != nil {
		run.Status = *upd.Status
	}
	if upd.PDF != nil {
		pdf := *upd.PDF
		run.PDF = &pdf
	}
	if upd.Sections != nil {
		sections := models.CloneSections(*upd.Sections)
		for i := range sections {
			if sections[i].ID == "" {
				sections[i].ID = uuid.NewString()
			}
		}
		run.Sections = sections
	}
	if upd.Deliverables != nil {
		deliverables := models.CloneDeliverables(*upd.Deliverables)
		for i := range deliverables {
			if deliverables[i].ID == "" {
				deliverables[i].ID = uuid.NewString()
			}
			deliverables[i].RunID = run.ID
			if deliverables[i].Status == "" {
				deliverables[i].Status = models.DeliverableStatusTodo
			}
			for j := range deliverables[i].ChecklistItems {
				if deliverables[i].ChecklistItems[j].ID == "" {
					deliverables[i].ChecklistItems[j].ID = uuid.NewString()
				}
			}
		}
		s.setDeliverables(run, deliverables)
	}

	s.touch(run)
	return run.Clone(), nil
}

// ReplaceDeliverables wholesale-replaces a run's deliverables from the
// simplified input shape. Every deliverable and checklist item gets a fresh
// id; nothing merges with prior state.
func (s *RunStore) ReplaceDeliverables(ctx context.Context, runID string, items []proposalRepo.DeliverableInput) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	s.setDeliverables(run, buildDeliverables(run.ID, items))
	s.touch(run)
	return run.Clone(), nil
}

// UpdateDeliverable resolves the owning run through the deliverable index
// and mutates the deliverable's status and/or one checklist item's done
// flag. A stale index entry reads as not found.
func (s *RunStore) UpdateDeliverable(ctx context.Context, deliverableID string, upd *proposalRepo.DeliverableUpdate) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID, ok := s.deliverableIndex[deliverableID]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("deliverable %s not found", deliverableID)}
	}

	run, ok := s.runs[runID]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("deliverable %s not found", deliverableID)}
	}

	var deliverable *models.Deliverable
	for i := range run.Deliverables {
		if run.Deliverables[i].ID == deliverableID {
			deliverable = &run.Deliverables[i]
			break
		}
	}
	if deliverable == nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("deliverable %s not found", deliverableID)}
	}

	if upd.Status != nil {
		deliverable.Status = *upd.Status
	}

	if upd.ChecklistItem != nil {
		found := false
		for i := range deliverable.ChecklistItems {
			if deliverable.ChecklistItems[i].ID == upd.ChecklistItem.ID {
				deliverable.ChecklistItems[i].Done = upd.ChecklistItem.Done
				found = true
				break
			}
		}
		if !found {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("checklist item %s not found", upd.ChecklistItem.ID)}
		}
	}

	s.touch(run)
	return run.Clone(), nil
}

// ApplyPlan commits a generated plan: the run's sections collapse to a
// single synthesized draft section, the deliverables are replaced from the
// plan, and one LlmChange captures the full inserted text with an anchor
// spanning it.
func (s *RunStore) ApplyPlan(ctx context.Context, runID string, plan *proposalRepo.PlanApplication) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	now := s.stamps.next()

	section := models.Section{
		ID:      uuid.NewString(),
		Content: plan.Draft,
		Order:   0,
	}
	run.Sections = []models.Section{section}

	s.setDeliverables(run, buildDeliverables(run.ID, plan.Deliverables))

	sectionID := section.ID
	run.LlmChanges = append(run.LlmChanges, models.LlmChange{
		ID:           uuid.NewString(),
		RunID:        run.ID,
		SectionID:    &sectionID,
		Summary:      plan.Summary,
		InsertedText: plan.Draft,
		CreatedAt:    now,
		HighlightAnchor: &models.HighlightAnchor{
			StartOffset: 0,
			EndOffset:   utf8.RuneCountInString(plan.Draft),
		},
	})

	if plan.PDF != nil {
		pdf := *plan.PDF
		run.PDF = &pdf
	}

	run.UpdatedAt = now
	s.archive.Snapshot(run)
	return run.Clone(), nil
}

// AppendChatEntry appends one turn to the run's transcript and returns it.
func (s *RunStore) AppendChatEntry(ctx context.Context, runID string, role models.ChatRole, content string, suggestions []models.ChatSuggestion) (*models.ChatEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	now := s.stamps.next()
	entry := models.ChatEntry{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}
	if len(suggestions) > 0 {
		entry.Suggestions = make([]models.ChatSuggestion, len(suggestions))
		copy(entry.Suggestions, suggestions)
	}

	run.Chat = append(run.Chat, entry)
	run.UpdatedAt = now
	s.archive.Snapshot(run)

	out := entry
	if entry.Suggestions != nil {
		out.Suggestions = make([]models.ChatSuggestion, len(entry.Suggestions))
		copy(out.Suggestions, entry.Suggestions)
	}
	return &out, nil
}

// CommitChange appends one LlmChange. When the change references a source
// message and suggestion, that suggestion is marked inserted.
func (s *RunStore) CommitChange(ctx context.Context, runID string, change *proposalRepo.ChangeInput) (*models.LlmChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	now := s.stamps.next()
	record := models.LlmChange{
		ID:              uuid.NewString(),
		RunID:           run.ID,
		Summary:         change.Summary,
		InsertedText:    change.InsertedText,
		CreatedAt:       now,
		ApprovedByUser:  change.ApprovedByUser,
		SourceMessageID: change.SourceMessageID,
	}
	if change.SectionID != nil {
		id := *change.SectionID
		record.SectionID = &id
	}
	if change.Anchor != nil {
		anchor := *change.Anchor
		record.HighlightAnchor = &anchor
	}

	run.LlmChanges = append(run.LlmChanges, record)

	if change.SourceMessageID != "" && change.SuggestionID != "" {
		s.flipSuggestion(run, change.SourceMessageID, change.SuggestionID, models.SuggestionStatusInserted)
	}

	run.UpdatedAt = now
	s.archive.Snapshot(run)

	out := record
	return &out, nil
}

// SetSuggestionStatus updates exactly one suggestion's status within one
// chat entry.
func (s *RunStore) SetSuggestionStatus(ctx context.Context, runID, messageID, suggestionID string, status models.SuggestionStatus) (*models.ChatEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	var entry *models.ChatEntry
	for i := range run.Chat {
		if run.Chat[i].ID == messageID {
			entry = &run.Chat[i]
			break
		}
	}
	if entry == nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("chat message %s not found", messageID)}
	}

	found := false
	for i := range entry.Suggestions {
		if entry.Suggestions[i].ID == suggestionID {
			entry.Suggestions[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("suggestion %s not found", suggestionID)}
	}

	s.touch(run)

	out := *entry
	out.Suggestions = make([]models.ChatSuggestion, len(entry.Suggestions))
	copy(out.Suggestions, entry.Suggestions)
	return &out, nil
}

// Export appends an export record and flips the run to exported. The
// readiness check runs under the store lock so two concurrent exports
// cannot both pass the gate on stale state.
func (s *RunStore) Export(ctx context.Context, runID string) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.lookup(runID)
	if err != nil {
		return nil, err
	}

	if !models.ExportReady(run.Deliverables) {
		return nil, &domain.ExportNotReadyError{
			Message: "complete all deliverables and checklist items before exporting",
		}
	}

	now := s.stamps.next()
	run.Exports = append(run.Exports, models.Export{
		ID:        uuid.NewString(),
		FileName:  run.FileName,
		CreatedAt: now,
	})
	run.Status = models.RunStatusExported
	run.UpdatedAt = now
	s.archive.Snapshot(run)

	return run.Clone(), nil
}

// ListArchives returns all archive entries, most recently updated first.
func (s *RunStore) ListArchives(ctx context.Context) ([]models.ArchiveEntry, error) {
	return s.archive.List(), nil
}

// GetArchive returns one archive entry by run id.
func (s *RunStore) GetArchive(ctx context.Context, id string) (*models.ArchiveEntry, error) {
	return s.archive.Get(id)
}

// Reset clears all runs, indexes, and the archive. Fired on process
// teardown and between test cases.
func (s *RunStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]*models.Run)
	s.nameIndex = make(map[string]string)
	s.deliverableIndex = make(map[string]string)
	s.archive.Reset()
}

// lookup finds a run by id. Caller holds the lock.
func (s *RunStore) lookup(id string) (*models.Run, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("run %s not found", id)}
	}
	return run, nil
}

// nameConflict builds the conflict error for a taken run name. Caller holds
// the lock.
func (s *RunStore) nameConflict(name, fileName string) error {
	suggested := suggestFileName(fileName, func(key string) bool {
		_, taken := s.nameIndex[key]
		return taken
	})
	return &domain.ConflictError{
		Message:       fmt.Sprintf("run name %q already exists", name),
		ResourceType:  "run",
		SuggestedName: suggested,
	}
}

// setDeliverables replaces the run's deliverable list and rebuilds the
// deliverable index. Caller holds the lock.
func (s *RunStore) setDeliverables(run *models.Run, deliverables []models.Deliverable) {
	for _, d := range run.Deliverables {
		delete(s.deliverableIndex, d.ID)
	}
	run.Deliverables = deliverables
	for _, d := range deliverables {
		s.deliverableIndex[d.ID] = run.ID
	}
}

// flipSuggestion is a best-effort status transition used by CommitChange.
// Caller holds the lock.
func (s *RunStore) flipSuggestion(run *models.Run, messageID, suggestionID string, status models.SuggestionStatus) {
	for i := range run.Chat {
		if run.Chat[i].ID != messageID {
			continue
		}
		for j := range run.Chat[i].Suggestions {
			if run.Chat[i].Suggestions[j].ID == suggestionID {
				run.Chat[i].Suggestions[j].Status = status
				return
			}
		}
		return
	}
	s.logger.Debug("suggestion not found for committed change",
		"message_id", messageID,
		"suggestion_id", suggestionID,
	)
}

// touch bumps UpdatedAt and refreshes the archive snapshot. Caller holds the
// lock.
func (s *RunStore) touch(run *models.Run) {
	run.UpdatedAt = s.stamps.next()
	s.archive.Snapshot(run)
}

// buildDeliverables expands the simplified input shape into fully-identified
// deliverables with todo status and unchecked checklist items.
func buildDeliverables(runID string, items []proposalRepo.DeliverableInput) []models.Deliverable {
	out := make([]models.Deliverable, 0, len(items))
	for _, item := range items {
		checklist := make([]models.ChecklistItem, 0, len(item.Checklist))
		for i, text := range item.Checklist {
			checklist = append(checklist, models.ChecklistItem{
				ID:    uuid.NewString(),
				Text:  text,
				Order: i,
			})
		}
		out = append(out, models.Deliverable{
			ID:             uuid.NewString(),
			RunID:          runID,
			Title:          item.Title,
			Description:    item.Description,
			Status:         models.DeliverableStatusTodo,
			ChecklistItems: checklist,
		})
	}
	return out
}
