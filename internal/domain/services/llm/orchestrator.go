package llm

import (
	"context"

	models "draftforge/internal/domain/models/proposal"
)

// Message is one turn sent to the text generator. Role is "system", "user",
// or "assistant".
type Message struct {
	Role    string
	Content string
}

// TextGenerator is the narrow capability consumed from the LLM provider
// library: send messages, get text back.
type TextGenerator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// PlanDeliverable is one deliverable proposed by a generated plan.
type PlanDeliverable struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Checklist   []string `json:"checklist"`
}

// Plan is the initial proposal plan for a run: a summary, a draft document,
// and a starting deliverable list.
type Plan struct {
	Summary      string            `json:"summary"`
	Draft        string            `json:"draft"`
	Deliverables []PlanDeliverable `json:"deliverables"`
}

// SuggestionResult carries 2-4 AI-authored edit suggestions, each already
// assigned a fresh id and pending status.
type SuggestionResult struct {
	Summary     string
	Suggestions []models.ChatSuggestion
}

// Orchestrator wraps the LLM collaborator behind plan and suggestion
// generation. Neither method can fail: upstream call or parse failures are
// absorbed and replaced with deterministic local fallbacks, so responses
// have the same shape whether or not an AI credential is configured.
type Orchestrator interface {
	Plan(ctx context.Context, run *models.Run, extractedText, companyPrompt string) *Plan
	Suggest(ctx context.Context, run *models.Run, prompt string) *SuggestionResult
}
