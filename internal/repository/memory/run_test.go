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

func newTestRunStore() *RunStore {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunStore(NewArchiveStore(logger), logger)
}

func TestRunCreateNameConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	if _, err := store.Create(ctx, "FedRAMP Moderate", "solicitation.pdf", ""); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Uniqueness is case-insensitive.
	_, err := store.Create(ctx, "fedramp moderate", "solicitation.pdf", "")
	if err == nil {
		t.Fatal("expected conflict, got nil")
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *domain.ConflictError, got %T", err)
	}
	if conflict.SuggestedName != "solicitation_2.pdf" {
		t.Errorf("SuggestedName = %q, want %q", conflict.SuggestedName, "solicitation_2.pdf")
	}
}

func TestRunCreateSuggestedNameSkipsTaken(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	// The suggestion counts past names already present in the index.
	for _, name := range []string{"report.docx", "report_2.docx"} {
		if _, err := store.Create(ctx, name, name, ""); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	_, err := store.Create(ctx, "report.docx", "report.docx", "")
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if conflict.SuggestedName != "report_3.docx" {
		t.Errorf("SuggestedName = %q, want %q", conflict.SuggestedName, "report_3.docx")
	}
}

func TestRunUpdatedAtStrictlyIncreases(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, err := store.Create(ctx, "monotonic", "m.txt", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	prev := run.UpdatedAt
	title := "t"
	for i := 0; i < 50; i++ {
		updated, err := store.Update(ctx, run.ID, &proposalRepo.RunUpdate{FileName: &title})
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if updated.UpdatedAt <= prev {
			t.Fatalf("UpdatedAt not strictly increasing: %q <= %q", updated.UpdatedAt, prev)
		}
		prev = updated.UpdatedAt
	}
}

func TestRunRenameMovesNameIndex(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "old name", "a.txt", "")

	newName := "new name"
	if _, err := store.Update(ctx, run.ID, &proposalRepo.RunUpdate{RunName: &newName}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	// Old name is free again; new name conflicts.
	if _, err := store.Create(ctx, "old name", "b.txt", ""); err != nil {
		t.Errorf("old name should be reusable after rename: %v", err)
	}
	if _, err := store.Create(ctx, "NEW NAME", "c.txt", ""); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("new name should conflict, got %v", err)
	}
}

func TestRunGetReturnsClone(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "clone check", "c.txt", "")
	sections := []models.Section{{Heading: "H", Content: "body", Order: 0}}
	if _, err := store.Update(ctx, run.ID, &proposalRepo.RunUpdate{Sections: &sections}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := store.Get(ctx, run.ID)
	got.Sections[0].Content = "tampered"

	again, _ := store.Get(ctx, run.ID)
	if again.Sections[0].Content != "body" {
		t.Error("mutation of a returned run leaked into the store")
	}
}

func TestReplaceDeliverablesRebuildsIndex(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "deliverables", "d.txt", "")

	first, err := store.ReplaceDeliverables(ctx, run.ID, []proposalRepo.DeliverableInput{
		{Title: "one", Checklist: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	oldID := first.Deliverables[0].ID

	second, err := store.ReplaceDeliverables(ctx, run.ID, []proposalRepo.DeliverableInput{
		{Title: "two"},
	})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}
	newID := second.Deliverables[0].ID

	// The old deliverable id no longer resolves.
	done := models.DeliverableStatusDone
	if _, err := store.UpdateDeliverable(ctx, oldID, &proposalRepo.DeliverableUpdate{Status: &done}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stale deliverable id should be not found, got %v", err)
	}

	updated, err := store.UpdateDeliverable(ctx, newID, &proposalRepo.DeliverableUpdate{Status: &done})
	if err != nil {
		t.Fatalf("update via index: %v", err)
	}
	if updated.Deliverables[0].Status != models.DeliverableStatusDone {
		t.Error("status not applied through deliverable index")
	}
}

func TestUpdateDeliverableChecklistToggle(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "checklist", "c.txt", "")
	withItems, _ := store.ReplaceDeliverables(ctx, run.ID, []proposalRepo.DeliverableInput{
		{Title: "one", Checklist: []string{"first", "second"}},
	})
	deliverable := withItems.Deliverables[0]
	item := deliverable.ChecklistItems[1]

	updated, err := store.UpdateDeliverable(ctx, deliverable.ID, &proposalRepo.DeliverableUpdate{
		ChecklistItem: &proposalRepo.ChecklistToggle{ID: item.ID, Done: true},
	})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	items := updated.Deliverables[0].ChecklistItems
	if items[0].Done || !items[1].Done {
		t.Errorf("wrong item toggled: %+v", items)
	}

	// Unknown checklist item id is a hard failure.
	_, err = store.UpdateDeliverable(ctx, deliverable.ID, &proposalRepo.DeliverableUpdate{
		ChecklistItem: &proposalRepo.ChecklistToggle{ID: "missing", Done: true},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for unknown checklist item, got %v", err)
	}
}

func TestApplyPlan(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "plan", "rfp.pdf", "")

	applied, err := store.ApplyPlan(ctx, run.ID, &proposalRepo.PlanApplication{
		Summary: "the plan",
		Draft:   "draft body",
		Deliverables: []proposalRepo.DeliverableInput{
			{Title: "d1", Checklist: []string{"c1"}},
		},
		PDF: &models.PDFMeta{FileName: "rfp.pdf"},
	})
	if err != nil {
		t.Fatalf("apply plan: %v", err)
	}

	if len(applied.Sections) != 1 {
		t.Fatalf("expected one synthesized section, got %d", len(applied.Sections))
	}
	if applied.Sections[0].Heading != "" || applied.Sections[0].Content != "draft body" {
		t.Errorf("unexpected section: %+v", applied.Sections[0])
	}

	if len(applied.LlmChanges) != 1 {
		t.Fatalf("expected one change record, got %d", len(applied.LlmChanges))
	}
	change := applied.LlmChanges[0]
	if change.ApprovedByUser {
		t.Error("plan change must not be pre-approved")
	}
	if change.HighlightAnchor == nil || change.HighlightAnchor.StartOffset != 0 || change.HighlightAnchor.EndOffset != len("draft body") {
		t.Errorf("unexpected anchor: %+v", change.HighlightAnchor)
	}
	if change.SectionID == nil || *change.SectionID != applied.Sections[0].ID {
		t.Error("change not linked to the synthesized section")
	}

	if applied.PDF == nil || applied.PDF.FileName != "rfp.pdf" {
		t.Errorf("pdf meta not applied: %+v", applied.PDF)
	}
}

func TestCommitChangeFlipsSuggestion(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "commit", "c.txt", "")
	entry, err := store.AppendChatEntry(ctx, run.ID, models.ChatRoleAssistant, "ideas", []models.ChatSuggestion{
		{ID: "s1", Summary: "a", Content: "x", Status: models.SuggestionStatusPending},
		{ID: "s2", Summary: "b", Content: "y", Status: models.SuggestionStatusPending},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	change, err := store.CommitChange(ctx, run.ID, &proposalRepo.ChangeInput{
		Summary:         "insert x",
		InsertedText:    "x",
		ApprovedByUser:  true,
		SourceMessageID: entry.ID,
		SuggestionID:    "s1",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !change.ApprovedByUser {
		t.Error("committed change should carry approval")
	}

	got, _ := store.Get(ctx, run.ID)
	suggestions := got.Chat[0].Suggestions
	if suggestions[0].Status != models.SuggestionStatusInserted {
		t.Errorf("s1 status = %q, want inserted", suggestions[0].Status)
	}
	if suggestions[1].Status != models.SuggestionStatusPending {
		t.Errorf("s2 status = %q, want pending", suggestions[1].Status)
	}
}

func TestCommitChangeUnknownSuggestionIsBestEffort(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "best effort", "b.txt", "")

	// A dangling suggestion reference does not fail the commit.
	if _, err := store.CommitChange(ctx, run.ID, &proposalRepo.ChangeInput{
		Summary:         "s",
		InsertedText:    "t",
		SourceMessageID: "missing",
		SuggestionID:    "missing",
	}); err != nil {
		t.Fatalf("commit should succeed: %v", err)
	}
}

func TestSetSuggestionStatusStrictLookups(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "strict", "s.txt", "")
	entry, _ := store.AppendChatEntry(ctx, run.ID, models.ChatRoleAssistant, "m", []models.ChatSuggestion{
		{ID: "sug", Status: models.SuggestionStatusPending},
	})

	if _, err := store.SetSuggestionStatus(ctx, run.ID, "no-such-message", "sug", models.SuggestionStatusDismissed); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown message: got %v", err)
	}
	if _, err := store.SetSuggestionStatus(ctx, run.ID, entry.ID, "no-such-suggestion", models.SuggestionStatusDismissed); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown suggestion: got %v", err)
	}

	updated, err := store.SetSuggestionStatus(ctx, run.ID, entry.ID, "sug", models.SuggestionStatusDismissed)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Suggestions[0].Status != models.SuggestionStatusDismissed {
		t.Errorf("status = %q, want dismissed", updated.Suggestions[0].Status)
	}
}

func TestExportGating(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "export", "e.txt", "")

	// No deliverables: not ready.
	if _, err := store.Export(ctx, run.ID); !errors.Is(err, domain.ErrExportNotReady) {
		t.Fatalf("expected ErrExportNotReady, got %v", err)
	}

	withItems, _ := store.ReplaceDeliverables(ctx, run.ID, []proposalRepo.DeliverableInput{
		{Title: "only", Checklist: []string{"task"}},
	})
	deliverable := withItems.Deliverables[0]

	done := models.DeliverableStatusDone
	if _, err := store.UpdateDeliverable(ctx, deliverable.ID, &proposalRepo.DeliverableUpdate{Status: &done}); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	// Deliverable done but checklist item unchecked: still not ready.
	if _, err := store.Export(ctx, run.ID); !errors.Is(err, domain.ErrExportNotReady) {
		t.Fatalf("expected ErrExportNotReady with unchecked item, got %v", err)
	}

	if _, err := store.UpdateDeliverable(ctx, deliverable.ID, &proposalRepo.DeliverableUpdate{
		ChecklistItem: &proposalRepo.ChecklistToggle{ID: deliverable.ChecklistItems[0].ID, Done: true},
	}); err != nil {
		t.Fatalf("check item: %v", err)
	}

	exported, err := store.Export(ctx, run.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.Status != models.RunStatusExported {
		t.Errorf("status = %q, want exported", exported.Status)
	}
	if len(exported.Exports) != 1 || exported.Exports[0].FileName != "e.txt" {
		t.Errorf("unexpected export records: %+v", exported.Exports)
	}
}

func TestArchiveSnapshotFreshnessAndIndependence(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "archived", "a.txt", "")
	createdEntry, err := store.GetArchive(ctx, run.ID)
	if err != nil {
		t.Fatalf("archive after create: %v", err)
	}

	sections := []models.Section{{Content: "v2", Order: 0}}
	if _, err := store.Update(ctx, run.ID, &proposalRepo.RunUpdate{Sections: &sections}); err != nil {
		t.Fatalf("update: %v", err)
	}

	entry, _ := store.GetArchive(ctx, run.ID)
	if len(entry.Snapshot.Sections) != 1 || entry.Snapshot.Sections[0].Content != "v2" {
		t.Error("archive snapshot not refreshed by mutation")
	}
	if entry.CreatedAt != createdEntry.CreatedAt {
		t.Error("archive CreatedAt not carried forward across upserts")
	}
	if entry.UpdatedAt <= createdEntry.UpdatedAt {
		t.Error("archive UpdatedAt should advance with the run")
	}

	// Mutating the snapshot copy cannot touch the stored one.
	entry.Snapshot.Sections[0].Content = "tampered"
	again, _ := store.GetArchive(ctx, run.ID)
	if again.Snapshot.Sections[0].Content != "v2" {
		t.Error("archive snapshot shares memory with caller copies")
	}
}

func TestListRunsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	first, _ := store.Create(ctx, "first", "1.txt", "")
	second, _ := store.Create(ctx, "second", "2.txt", "")

	// Touch the first run so it becomes the most recent.
	name := "first renamed"
	if _, err := store.Update(ctx, first.ID, &proposalRepo.RunUpdate{RunName: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}

	runs, _ := store.List(ctx)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first.ID || runs[1].ID != second.ID {
		t.Errorf("unexpected order: %s, %s", runs[0].RunName, runs[1].RunName)
	}
}

func TestRunReset(t *testing.T) {
	ctx := context.Background()
	store := newTestRunStore()

	run, _ := store.Create(ctx, "gone", "g.txt", "")
	store.Reset(ctx)

	if _, err := store.Get(ctx, run.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("run survived reset: %v", err)
	}
	if _, err := store.GetArchive(ctx, run.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("archive survived reset: %v", err)
	}
	if _, err := store.Create(ctx, "gone", "g.txt", ""); err != nil {
		t.Errorf("name index survived reset: %v", err)
	}
}
