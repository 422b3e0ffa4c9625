package proposal

// RunStatus is the lifecycle status of a run.
type RunStatus string

const (
	RunStatusDraft    RunStatus = "draft"
	RunStatusExported RunStatus = "exported"
)

// DeliverableStatus tracks a deliverable's progress.
type DeliverableStatus string

const (
	DeliverableStatusTodo       DeliverableStatus = "todo"
	DeliverableStatusInProgress DeliverableStatus = "in_progress"
	DeliverableStatusDone       DeliverableStatus = "done"
)

// ChatRole is the author of a chat entry.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
)

// SuggestionStatus is the lifecycle state of an AI-authored suggestion.
type SuggestionStatus string

const (
	SuggestionStatusPending   SuggestionStatus = "pending"
	SuggestionStatusInserted  SuggestionStatus = "inserted"
	SuggestionStatusDismissed SuggestionStatus = "dismissed"
)

// Section is an ordered chunk of a run's composed document. Order determines
// assembly sequence; ties keep original array position.
type Section struct {
	ID      string `json:"id"`
	Heading string `json:"heading"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// ChecklistItem belongs to exactly one deliverable.
type ChecklistItem struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Done  bool   `json:"done"`
	Order int    `json:"order"`
}

// Deliverable is owned by its run and back-referenced from the store's
// deliverable index for direct deliverable-scoped operations.
type Deliverable struct {
	ID             string            `json:"id"`
	RunID          string            `json:"runId"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Status         DeliverableStatus `json:"status"`
	ChecklistItems []ChecklistItem   `json:"checklistItems"`
}

// HighlightAnchor is an optional offset range into the composed document
// used for UI highlighting.
type HighlightAnchor struct {
	StartOffset int `json:"startOffset"`
	EndOffset   int `json:"endOffset"`
}

// LlmChange records one committed AI-or-user-originated textual insertion.
// The list is append-only; entries are never mutated after creation.
type LlmChange struct {
	ID              string           `json:"id"`
	RunID           string           `json:"runId"`
	SectionID       *string          `json:"sectionId"`
	Summary         string           `json:"summary"`
	InsertedText    string           `json:"insertedText"`
	CreatedAt       string           `json:"createdAt"`
	ApprovedByUser  bool             `json:"approvedByUser"`
	HighlightAnchor *HighlightAnchor `json:"highlightAnchor"`
	SourceMessageID string           `json:"sourceMessageId,omitempty"`
}

// ChatSuggestion is owned by the chat entry that produced it. Status
// transitions are the only mutation permitted after creation.
type ChatSuggestion struct {
	ID      string           `json:"id"`
	Summary string           `json:"summary"`
	Content string           `json:"content"`
	Status  SuggestionStatus `json:"status"`
}

// ChatEntry is one turn in a run's append-only chat transcript.
type ChatEntry struct {
	ID          string           `json:"id"`
	Role        ChatRole         `json:"role"`
	Content     string           `json:"content"`
	CreatedAt   string           `json:"createdAt"`
	Suggestions []ChatSuggestion `json:"suggestions,omitempty"`
}

// Export records one completed export of a run.
type Export struct {
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	CreatedAt string `json:"createdAt"`
}

// PDFMeta is placeholder metadata about an uploaded source PDF.
type PDFMeta struct {
	FileName  string `json:"fileName"`
	PageCount int    `json:"pageCount"`
}

// Run is the unit of work for one proposal-drafting session. All nested
// collections are exclusively owned by the run; nothing is shared by
// reference between two runs.
//
// Timestamps are fixed-width UTC strings so lexicographic comparison always
// reflects recency.
type Run struct {
	ID           string        `json:"id"`
	ProjectID    string        `json:"projectId,omitempty"`
	RunName      string        `json:"runName"`
	FileName     string        `json:"fileName"`
	Status       RunStatus     `json:"status"`
	PDF          *PDFMeta      `json:"pdf,omitempty"`
	Sections     []Section     `json:"sections"`
	Deliverables []Deliverable `json:"deliverables"`
	LlmChanges   []LlmChange   `json:"llmChanges"`
	Chat         []ChatEntry   `json:"chat"`
	Exports      []Export      `json:"exports"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

// Clone returns a referentially-independent deep copy of the run. The copy
// is an explicit structural one (not a serialize/deserialize round trip) so
// richer field types keep working if they are introduced later.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}

	out := *r

	if r.PDF != nil {
		pdf := *r.PDF
		out.PDF = &pdf
	}

	out.Sections = CloneSections(r.Sections)
	out.Deliverables = CloneDeliverables(r.Deliverables)
	out.LlmChanges = CloneChanges(r.LlmChanges)
	out.Chat = CloneChat(r.Chat)

	out.Exports = make([]Export, len(r.Exports))
	copy(out.Exports, r.Exports)

	return &out
}

// CloneSections deep-copies a section list.
func CloneSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// CloneDeliverables deep-copies a deliverable list including checklist items.
func CloneDeliverables(deliverables []Deliverable) []Deliverable {
	out := make([]Deliverable, len(deliverables))
	for i, d := range deliverables {
		out[i] = d
		out[i].ChecklistItems = make([]ChecklistItem, len(d.ChecklistItems))
		copy(out[i].ChecklistItems, d.ChecklistItems)
	}
	return out
}

// CloneChanges deep-copies an LlmChange list including anchors.
func CloneChanges(changes []LlmChange) []LlmChange {
	out := make([]LlmChange, len(changes))
	for i, c := range changes {
		out[i] = c
		if c.SectionID != nil {
			id := *c.SectionID
			out[i].SectionID = &id
		}
		if c.HighlightAnchor != nil {
			anchor := *c.HighlightAnchor
			out[i].HighlightAnchor = &anchor
		}
	}
	return out
}

// CloneChat deep-copies a chat transcript including suggestions.
func CloneChat(entries []ChatEntry) []ChatEntry {
	out := make([]ChatEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.Suggestions != nil {
			out[i].Suggestions = make([]ChatSuggestion, len(e.Suggestions))
			copy(out[i].Suggestions, e.Suggestions)
		}
	}
	return out
}
