package memory

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"draftforge/internal/domain"
	models "draftforge/internal/domain/models/proposal"
)

// ArchiveStore holds one deep snapshot per run, overwritten on every run
// mutation. It answers "what did this run look like most recently" for the
// archives listing outside the active-run editor; it is not a version log.
type ArchiveStore struct {
	mu      sync.RWMutex
	entries map[string]*models.ArchiveEntry
	logger  *slog.Logger
}

// NewArchiveStore creates an empty archive store.
func NewArchiveStore(logger *slog.Logger) *ArchiveStore {
	return &ArchiveStore{
		entries: make(map[string]*models.ArchiveEntry),
		logger:  logger,
	}
}

// Snapshot deep-clones the run and upserts its archive entry, carrying the
// original CreatedAt forward when an entry already exists. Later mutations
// of the live run cannot alter the archived copy.
func (a *ArchiveStore) Snapshot(run *models.Run) {
	a.mu.Lock()
	defer a.mu.Unlock()

	createdAt := run.CreatedAt
	if existing, ok := a.entries[run.ID]; ok {
		createdAt = existing.CreatedAt
	}

	a.entries[run.ID] = &models.ArchiveEntry{
		ID:        run.ID,
		RunID:     run.ID,
		RunName:   run.RunName,
		FileName:  run.FileName,
		CreatedAt: createdAt,
		UpdatedAt: run.UpdatedAt,
		Snapshot:  run.Clone(),
	}
}

// List returns all archive entries sorted by UpdatedAt descending.
func (a *ArchiveStore) List() []models.ArchiveEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.ArchiveEntry, 0, len(a.entries))
	for _, entry := range a.entries {
		out = append(out, *entry.Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})

	return out
}

// Get returns one archive entry by run id.
func (a *ArchiveStore) Get(id string) (*models.ArchiveEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	entry, ok := a.entries[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("archive %s not found", id)}
	}

	return entry.Clone(), nil
}

// Reset drops all archive entries.
func (a *ArchiveStore) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[string]*models.ArchiveEntry)
}
