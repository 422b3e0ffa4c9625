package proposal

// DraftStatus is the lifecycle status of a draft.
type DraftStatus string

const (
	DraftStatusDraft DraftStatus = "draft"
	DraftStatusFinal DraftStatus = "final"
)

// Draft is the simpler, project-scoped sibling of Run. Drafts are indexed
// per project; file-name uniqueness within a project is enforced behind a
// feature flag.
type Draft struct {
	ID           string        `json:"id"`
	ProjectID    string        `json:"projectId"`
	FileName     string        `json:"fileName"`
	Slug         string        `json:"slug"`
	PDFID        string        `json:"pdfId,omitempty"`
	Title        string        `json:"title"`
	Status       DraftStatus   `json:"status"`
	Sections     []Section     `json:"sections"`
	Deliverables []Deliverable `json:"deliverables"`
	LlmChanges   []LlmChange   `json:"llmChanges"`
	Sources      []string      `json:"sources"`
	Version      int           `json:"version"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

// Clone returns a referentially-independent deep copy of the draft.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}

	out := *d
	out.Sections = CloneSections(d.Sections)
	out.Deliverables = CloneDeliverables(d.Deliverables)
	out.LlmChanges = CloneChanges(d.LlmChanges)

	out.Sources = make([]string, len(d.Sources))
	copy(out.Sources, d.Sources)

	return &out
}
