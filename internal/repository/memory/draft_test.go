package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"draftforge/internal/domain"
	models "draftforge/internal/domain/models/proposal"
	proposalRepo "draftforge/internal/domain/repositories/proposal"
)

func newTestDraftStore(enforceUniqueNames bool) *DraftStore {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDraftStore(enforceUniqueNames, logger)
}

func TestDraftCreateDefaults(t *testing.T) {
	ctx := context.Background()
	store := newTestDraftStore(true)

	draft, err := store.Create(ctx, &proposalRepo.DraftInput{
		ProjectID: "p1",
		FileName:  "proposal.md",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if draft.Status != models.DraftStatusDraft {
		t.Errorf("status = %q, want draft", draft.Status)
	}
	if draft.Version != 1 {
		t.Errorf("version = %d, want 1", draft.Version)
	}
	if draft.Slug == "" {
		t.Error("slug not derived from file name")
	}
	if draft.Slug != slugFor("proposal.md") {
		t.Errorf("slug = %q, want %q", draft.Slug, slugFor("proposal.md"))
	}
	if draft.CreatedAt == "" || draft.CreatedAt != draft.UpdatedAt {
		t.Errorf("timestamps: created=%q updated=%q", draft.CreatedAt, draft.UpdatedAt)
	}
}

func TestDraftNameUniquenessFlag(t *testing.T) {
	ctx := context.Background()

	t.Run("enforced", func(t *testing.T) {
		store := newTestDraftStore(true)
		if _, err := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "a.md"}); err != nil {
			t.Fatalf("first: %v", err)
		}

		_, err := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "A.MD"})
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if conflict.SuggestedName != "A_2.MD" {
			t.Errorf("SuggestedName = %q, want %q", conflict.SuggestedName, "A_2.MD")
		}

		// A different project is a separate namespace.
		if _, err := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p2", FileName: "a.md"}); err != nil {
			t.Errorf("cross-project create should pass: %v", err)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		store := newTestDraftStore(false)
		if _, err := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "a.md"}); err != nil {
			t.Fatalf("first: %v", err)
		}
		if _, err := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "a.md"}); err != nil {
			t.Errorf("duplicate should pass with flag off: %v", err)
		}
	})
}

func TestDraftRenameRegeneratesSlugAndMovesIndex(t *testing.T) {
	ctx := context.Background()
	store := newTestDraftStore(true)

	draft, _ := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "old.md"})
	oldSlug := draft.Slug

	newName := "new.md"
	renamed, err := store.Update(ctx, draft.ID, &proposalRepo.DraftUpdate{FileName: &newName})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Slug == oldSlug {
		t.Error("slug not regenerated on rename")
	}
	if renamed.Slug != slugFor("new.md") {
		t.Errorf("slug = %q, want %q", renamed.Slug, slugFor("new.md"))
	}
	if renamed.UpdatedAt <= draft.UpdatedAt {
		t.Error("UpdatedAt did not advance on rename")
	}

	// Old name free, new name taken.
	if _, err := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "old.md"}); err != nil {
		t.Errorf("old name should be free: %v", err)
	}
	if _, err := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "new.md"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("new name should conflict: %v", err)
	}
}

func TestDraftRenameToOwnNameIsNotAConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestDraftStore(true)

	draft, _ := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "same.md"})

	casedName := "SAME.md"
	if _, err := store.Update(ctx, draft.ID, &proposalRepo.DraftUpdate{FileName: &casedName}); err != nil {
		t.Errorf("case-only rename of own file should pass: %v", err)
	}
}

func TestDraftListFilterAndPaginate(t *testing.T) {
	ctx := context.Background()
	store := newTestDraftStore(false)

	final := models.DraftStatusFinal
	seed := []proposalRepo.DraftInput{
		{ProjectID: "p1", FileName: "alpha.md", Title: "Security Plan"},
		{ProjectID: "p1", FileName: "beta.md", Title: "Network Overview", Status: final},
		{ProjectID: "p1", FileName: "gamma.md", Sections: []models.Section{{Heading: "Security Controls"}}},
		{ProjectID: "p2", FileName: "other.md", Title: "Security"},
	}
	for i := range seed {
		if _, err := store.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	// Search spans file name, title, and section headings; scoped by project.
	drafts, total, err := store.List(ctx, "p1", &proposalRepo.DraftQuery{Search: "security", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(drafts) != 2 {
		t.Fatalf("search: total=%d len=%d, want 2/2", total, len(drafts))
	}

	// Status filter.
	_, total, _ = store.List(ctx, "p1", &proposalRepo.DraftQuery{Status: "final", Page: 1, Limit: 10})
	if total != 1 {
		t.Errorf("status filter total = %d, want 1", total)
	}

	// Pagination reports the full filtered total.
	page, total, _ := store.List(ctx, "p1", &proposalRepo.DraftQuery{Page: 2, Limit: 2})
	if total != 3 {
		t.Errorf("paginated total = %d, want 3", total)
	}
	if len(page) != 1 {
		t.Errorf("page 2 len = %d, want 1", len(page))
	}

	// Page past the end is empty, not an error.
	page, total, _ = store.List(ctx, "p1", &proposalRepo.DraftQuery{Page: 9, Limit: 2})
	if len(page) != 0 || total != 3 {
		t.Errorf("overflow page: len=%d total=%d", len(page), total)
	}
}

func TestDraftArchiveIsSeparate(t *testing.T) {
	ctx := context.Background()
	store := newTestDraftStore(true)

	primary, _ := store.Create(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "live.md"})
	archived, err := store.Archive(ctx, &proposalRepo.DraftInput{ProjectID: "p1", FileName: "kept.md"})
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	// Archived drafts do not appear in project listings.
	_, total, _ := store.List(ctx, "p1", &proposalRepo.DraftQuery{Page: 1, Limit: 10})
	if total != 1 {
		t.Errorf("archived draft leaked into listing, total = %d", total)
	}

	// Primary Get does not see archived drafts.
	if _, err := store.Get(ctx, archived.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get found archived draft: %v", err)
	}

	// GetArchived resolves both collections.
	if _, err := store.GetArchived(ctx, archived.ID); err != nil {
		t.Errorf("GetArchived(archived): %v", err)
	}
	if _, err := store.GetArchived(ctx, primary.ID); err != nil {
		t.Errorf("GetArchived(primary): %v", err)
	}
	if _, err := store.GetArchived(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetArchived(missing): %v", err)
	}
}

func TestDraftUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	store := newTestDraftStore(false)

	draft, _ := store.Create(ctx, &proposalRepo.DraftInput{
		ProjectID: "p1",
		FileName:  "merge.md",
		Title:     "before",
	})

	title := "after"
	version := 3
	sources := []string{"rfp.pdf"}
	updated, err := store.Update(ctx, draft.ID, &proposalRepo.DraftUpdate{
		Title:   &title,
		Version: &version,
		Sources: &sources,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "after" || updated.Version != 3 {
		t.Errorf("fields not merged: %+v", updated)
	}
	if updated.FileName != "merge.md" {
		t.Error("untouched field changed")
	}
	if len(updated.Sources) != 1 || updated.Sources[0] != "rfp.pdf" {
		t.Errorf("sources not applied: %v", updated.Sources)
	}
}
