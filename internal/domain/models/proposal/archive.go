package proposal

// ArchiveEntry is a point-in-time image of a run. There is exactly one entry
// per run; it is overwritten on every mutation so it always reflects the
// latest full state rather than an append-only version log.
type ArchiveEntry struct {
	ID        string `json:"id"`
	RunID     string `json:"runId"`
	RunName   string `json:"runName"`
	FileName  string `json:"fileName"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Snapshot  *Run   `json:"snapshot"`
}

// Clone returns a referentially-independent copy of the archive entry.
func (e *ArchiveEntry) Clone() *ArchiveEntry {
	if e == nil {
		return nil
	}

	out := *e
	out.Snapshot = e.Snapshot.Clone()
	return &out
}
