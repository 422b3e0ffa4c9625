package proposal

import (
	"sort"
	"strings"
)

// ComposeSections joins ordered section content into one document string.
// Sections are sorted by Order ascending (stable for ties), rendered as
// "## heading\ncontent" when a heading is present and as bare content
// otherwise, and joined with a blank line. Empty renderings are skipped.
//
// The function is pure and idempotent: composing unchanged input twice
// yields byte-identical output.
func ComposeSections(sections []Section) string {
	ordered := make([]Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	parts := make([]string, 0, len(ordered))
	for _, s := range ordered {
		content := strings.TrimSpace(s.Content)

		var rendered string
		if s.Heading != "" {
			rendered = "## " + s.Heading + "\n" + content
		} else {
			rendered = content
		}

		if rendered == "" {
			continue
		}
		parts = append(parts, rendered)
	}

	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// ExportReady reports whether a run may be exported: the deliverable list is
// non-empty, every deliverable is done, and every checklist item within
// every deliverable is done. Derived on each read, never cached.
func ExportReady(deliverables []Deliverable) bool {
	if len(deliverables) == 0 {
		return false
	}

	for _, d := range deliverables {
		if d.Status != DeliverableStatusDone {
			return false
		}
		for _, item := range d.ChecklistItems {
			if !item.Done {
				return false
			}
		}
	}

	return true
}
