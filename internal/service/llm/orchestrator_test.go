package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	models "draftforge/internal/domain/models/proposal"
	llmSvc "draftforge/internal/domain/services/llm"
)

// stubGenerator returns a canned response or error.
type stubGenerator struct {
	response string
	err      error
	lastMsgs []llmSvc.Message
}

func (s *stubGenerator) Generate(ctx context.Context, messages []llmSvc.Message) (string, error) {
	s.lastMsgs = messages
	return s.response, s.err
}

func newTestOrchestrator(gen llmSvc.TextGenerator) llmSvc.Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewOrchestrator(gen, 10000, logger)
}

func testRun() *models.Run {
	return &models.Run{
		ID:       "r1",
		RunName:  "FedRAMP Run",
		FileName: "rfp.pdf",
		Sections: []models.Section{{Heading: "Intro", Content: "Hello.", Order: 0}},
	}
}

func TestPlanParsesWrappedJSON(t *testing.T) {
	// Models often wrap JSON in prose or code fences; everything outside
	// the outermost braces is stripped.
	gen := &stubGenerator{response: "Here you go:\n```json\n" +
		`{"summary":"s","draft":"d","deliverables":[{"title":"t1","description":"x","checklist":["a"]}]}` +
		"\n```"}
	orch := newTestOrchestrator(gen)

	plan := orch.Plan(context.Background(), testRun(), "", "")
	if plan.Summary != "s" || plan.Draft != "d" {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if len(plan.Deliverables) != 1 || plan.Deliverables[0].Title != "t1" {
		t.Errorf("unexpected deliverables: %+v", plan.Deliverables)
	}
}

func TestPlanFallbackOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider down")}
	orch := newTestOrchestrator(gen)

	plan := orch.Plan(context.Background(), testRun(), "", "")
	if plan == nil {
		t.Fatal("fallback plan must never be nil")
	}
	if !strings.Contains(plan.Summary, "FedRAMP Run") {
		t.Errorf("fallback summary should reference the run name: %q", plan.Summary)
	}
	if !strings.Contains(plan.Draft, "rfp.pdf") {
		t.Errorf("fallback draft should reference the file name: %q", plan.Draft)
	}
	if len(plan.Deliverables) == 0 {
		t.Error("fallback plan must carry starting deliverables")
	}
}

func TestPlanFallbackOnGarbage(t *testing.T) {
	gen := &stubGenerator{response: "I cannot help with that."}
	orch := newTestOrchestrator(gen)

	plan := orch.Plan(context.Background(), testRun(), "", "")
	if len(plan.Deliverables) == 0 || plan.Draft == "" {
		t.Errorf("garbage output must degrade to the full fallback: %+v", plan)
	}
}

func TestSuggestClampsToFour(t *testing.T) {
	var entries []string
	for i := 0; i < 7; i++ {
		entries = append(entries, `{"summary":"s","content":"c"}`)
	}
	gen := &stubGenerator{response: `{"summary":"many","suggestions":[` + strings.Join(entries, ",") + `]}`}
	orch := newTestOrchestrator(gen)

	result := orch.Suggest(context.Background(), testRun(), "tighten the intro")
	if len(result.Suggestions) != 4 {
		t.Fatalf("suggestions = %d, want 4", len(result.Suggestions))
	}
	for i, s := range result.Suggestions {
		if s.ID == "" {
			t.Errorf("suggestion %d has no id", i)
		}
		if s.Status != models.SuggestionStatusPending {
			t.Errorf("suggestion %d status = %q, want pending", i, s.Status)
		}
	}
}

func TestSuggestFallbackCarriesPromptVerbatim(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider down")}
	orch := newTestOrchestrator(gen)

	const prompt = "add an incident response section"
	result := orch.Suggest(context.Background(), testRun(), prompt)

	if len(result.Suggestions) < 2 {
		t.Fatalf("fallback must carry at least 2 suggestions, got %d", len(result.Suggestions))
	}
	for i, s := range result.Suggestions {
		if !strings.Contains(s.Content, prompt) {
			t.Errorf("fallback suggestion %d does not carry the prompt verbatim: %q", i, s.Content)
		}
		if s.Status != models.SuggestionStatusPending {
			t.Errorf("fallback suggestion %d status = %q", i, s.Status)
		}
	}
}

func TestSuggestFallbackWhenTooFewUsable(t *testing.T) {
	// One usable suggestion is below the floor; the whole result falls back.
	gen := &stubGenerator{response: `{"summary":"s","suggestions":[{"summary":"a","content":"only"},{"summary":"b","content":"  "}]}`}
	orch := newTestOrchestrator(gen)

	result := orch.Suggest(context.Background(), testRun(), "the prompt")
	if len(result.Suggestions) < 2 {
		t.Fatalf("expected fallback pair, got %d", len(result.Suggestions))
	}
	if !strings.Contains(result.Suggestions[0].Content, "the prompt") {
		t.Error("expected the deterministic fallback suggestions")
	}
}

func TestSuggestPromptIncludesDocument(t *testing.T) {
	gen := &stubGenerator{err: errors.New("x")}
	orch := newTestOrchestrator(gen)

	orch.Suggest(context.Background(), testRun(), "review")

	if len(gen.lastMsgs) != 2 {
		t.Fatalf("expected system + user turns, got %d", len(gen.lastMsgs))
	}
	if gen.lastMsgs[0].Role != "system" {
		t.Errorf("first turn role = %q, want system", gen.lastMsgs[0].Role)
	}
	if !strings.Contains(gen.lastMsgs[1].Content, "## Intro") {
		t.Error("user turn should carry the composed document")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose wrapped", `Sure! {"a":1} hope that helps`, `{"a":1}`},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
		{"no braces", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
