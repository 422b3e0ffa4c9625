package memory

import "testing"

func TestSuggestFileName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		taken    map[string]bool
		want     string
	}{
		{
			name:     "suffix before extension",
			fileName: "report.pdf",
			taken:    map[string]bool{},
			want:     "report_2.pdf",
		},
		{
			name:     "counts past taken candidates",
			fileName: "report.pdf",
			taken:    map[string]bool{"report_2.pdf": true, "report_3.pdf": true},
			want:     "report_4.pdf",
		},
		{
			name:     "no extension",
			fileName: "notes",
			taken:    map[string]bool{},
			want:     "notes_2",
		},
		{
			name:     "taken check is case-insensitive",
			fileName: "Report.PDF",
			taken:    map[string]bool{"report_2.pdf": true},
			want:     "Report_3.PDF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggestFileName(tt.fileName, func(key string) bool {
				return tt.taken[key]
			})
			if got != tt.want {
				t.Errorf("suggestFileName(%q) = %q, want %q", tt.fileName, got, tt.want)
			}
		})
	}
}

func TestSlugForStability(t *testing.T) {
	a := slugFor("Proposal.MD")
	b := slugFor("proposal.md")
	if a != b {
		t.Errorf("slug should be case-insensitive: %q != %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("slug length = %d, want 16", len(a))
	}
	if slugFor("other.md") == a {
		t.Error("distinct names should produce distinct slugs")
	}
}

func TestStampSourceMonotonic(t *testing.T) {
	var src stampSource
	prev := src.next()
	for i := 0; i < 1000; i++ {
		next := src.next()
		if next <= prev {
			t.Fatalf("stamp %d not strictly increasing: %q <= %q", i, next, prev)
		}
		if len(next) != len(prev) {
			t.Fatalf("stamps must be fixed width: %q vs %q", next, prev)
		}
		prev = next
	}
}
