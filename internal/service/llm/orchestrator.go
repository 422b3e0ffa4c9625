package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	models "draftforge/internal/domain/models/proposal"
	llmSvc "draftforge/internal/domain/services/llm"
	"draftforge/internal/telemetry"
)

const maxSuggestions = 4

// orchestrator implements plan and suggestion generation over a text
// generator. Generator failures and malformed output degrade to deterministic
// local fallbacks; callers never see an error.
type orchestrator struct {
	generator       llmSvc.TextGenerator
	maxContextChars int
	logger          *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given generator.
// maxContextChars bounds how much run context is packed into prompts.
func NewOrchestrator(generator llmSvc.TextGenerator, maxContextChars int, logger *slog.Logger) llmSvc.Orchestrator {
	return &orchestrator{
		generator:       generator,
		maxContextChars: maxContextChars,
		logger:          logger,
	}
}

// planPayload is the JSON shape the model is asked to produce for a plan.
type planPayload struct {
	Summary      string `json:"summary"`
	Draft        string `json:"draft"`
	Deliverables []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Checklist   []string `json:"checklist"`
	} `json:"deliverables"`
}

// suggestPayload is the JSON shape the model is asked to produce for
// suggestions.
type suggestPayload struct {
	Summary     string `json:"summary"`
	Suggestions []struct {
		Summary string `json:"summary"`
		Content string `json:"content"`
	} `json:"suggestions"`
}

// Plan generates the initial proposal plan for a run.
func (o *orchestrator) Plan(ctx context.Context, run *models.Run, extractedText, companyPrompt string) *llmSvc.Plan {
	raw, err := o.generator.Generate(ctx, []llmSvc.Message{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: o.buildPlanPrompt(run, extractedText, companyPrompt)},
	})
	if err != nil {
		o.logger.Warn("plan generation failed, using fallback",
			"run_id", run.ID,
			"error", err,
		)
		telemetry.Increment("llm_plan_fallbacks")
		return fallbackPlan(run)
	}

	var payload planPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil || payload.Summary == "" {
		o.logger.Warn("plan response unparseable, using fallback",
			"run_id", run.ID,
			"error", err,
		)
		telemetry.Increment("llm_plan_fallbacks")
		return fallbackPlan(run)
	}

	plan := &llmSvc.Plan{
		Summary: payload.Summary,
		Draft:   payload.Draft,
	}
	for _, d := range payload.Deliverables {
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		plan.Deliverables = append(plan.Deliverables, llmSvc.PlanDeliverable{
			Title:       d.Title,
			Description: d.Description,
			Checklist:   d.Checklist,
		})
	}
	if len(plan.Deliverables) == 0 {
		plan.Deliverables = fallbackPlan(run).Deliverables
	}
	if plan.Draft == "" {
		plan.Draft = fallbackPlan(run).Draft
	}
	return plan
}

// Suggest generates 2-4 edit suggestions for the user's prompt.
func (o *orchestrator) Suggest(ctx context.Context, run *models.Run, prompt string) *llmSvc.SuggestionResult {
	raw, err := o.generator.Generate(ctx, []llmSvc.Message{
		{Role: "system", Content: suggestSystemPrompt},
		{Role: "user", Content: o.buildSuggestPrompt(run, prompt)},
	})
	if err != nil {
		o.logger.Warn("suggestion generation failed, using fallback",
			"run_id", run.ID,
			"error", err,
		)
		telemetry.Increment("llm_suggest_fallbacks")
		return fallbackSuggestions(prompt)
	}

	var payload suggestPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		o.logger.Warn("suggestion response unparseable, using fallback",
			"run_id", run.ID,
			"error", err,
		)
		telemetry.Increment("llm_suggest_fallbacks")
		return fallbackSuggestions(prompt)
	}

	suggestions := make([]models.ChatSuggestion, 0, maxSuggestions)
	for _, s := range payload.Suggestions {
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		suggestions = append(suggestions, models.ChatSuggestion{
			ID:      uuid.NewString(),
			Summary: s.Summary,
			Content: s.Content,
			Status:  models.SuggestionStatusPending,
		})
		if len(suggestions) == maxSuggestions {
			break
		}
	}

	// Two usable suggestions minimum, so the UI always has choices.
	if len(suggestions) < 2 {
		telemetry.Increment("llm_suggest_fallbacks")
		return fallbackSuggestions(prompt)
	}

	summary := payload.Summary
	if summary == "" {
		summary = fmt.Sprintf("Here are %d suggestions for your request.", len(suggestions))
	}
	return &llmSvc.SuggestionResult{
		Summary:     summary,
		Suggestions: suggestions,
	}
}

const planSystemPrompt = `You are a proposal-drafting assistant for government compliance documents.
Respond with a single JSON object and nothing else, shaped as:
{"summary": string, "draft": string, "deliverables": [{"title": string, "description": string, "checklist": [string]}]}
The draft is a complete first-pass proposal document in plain prose.
Propose between three and six deliverables, each with a short actionable checklist.`

const suggestSystemPrompt = `You are a proposal-drafting assistant helping revise a compliance document.
Respond with a single JSON object and nothing else, shaped as:
{"summary": string, "suggestions": [{"summary": string, "content": string}]}
Produce between two and four suggestions. Each content field must be text ready to insert into the document verbatim.`

// buildPlanPrompt packs run identity, the company prompt, and the uploaded
// document excerpt into one user turn, bounded by the context limit.
func (o *orchestrator) buildPlanPrompt(run *models.Run, extractedText, companyPrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposal run: %s\nSource file: %s\n", run.RunName, run.FileName)
	if companyPrompt != "" {
		fmt.Fprintf(&b, "\nCompany context:\n%s\n", companyPrompt)
	}
	if extractedText != "" {
		fmt.Fprintf(&b, "\nSolicitation document excerpt:\n%s\n", bound(extractedText, o.maxContextChars))
	}
	b.WriteString("\nGenerate the initial proposal plan.")
	return b.String()
}

// buildSuggestPrompt packs the composed document and the user's request into
// one user turn, bounded by the context limit.
func (o *orchestrator) buildSuggestPrompt(run *models.Run, prompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposal run: %s\n", run.RunName)

	if doc := models.ComposeSections(run.Sections); doc != "" {
		fmt.Fprintf(&b, "\nCurrent document:\n%s\n", bound(doc, o.maxContextChars))
	}
	fmt.Fprintf(&b, "\nUser request:\n%s\n", prompt)
	b.WriteString("\nGenerate edit suggestions.")
	return b.String()
}

// bound truncates s to at most n bytes.
func bound(s string, n int) string {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// extractJSON returns the substring between the first '{' and the last '}',
// stripping prose or code fences the model may wrap around its JSON.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}

// fallbackPlan builds a deterministic plan from the run's own fields.
func fallbackPlan(run *models.Run) *llmSvc.Plan {
	return &llmSvc.Plan{
		Summary: fmt.Sprintf("Initial plan for %s based on %s.", run.RunName, run.FileName),
		Draft: fmt.Sprintf(
			"# %s\n\nThis proposal responds to the requirements in %s. "+
				"It outlines our approach to meeting each control family, the evidence we will assemble, "+
				"and the timeline for authorization readiness.",
			run.RunName, run.FileName,
		),
		Deliverables: []llmSvc.PlanDeliverable{
			{
				Title:       "Review solicitation requirements",
				Description: fmt.Sprintf("Read %s end to end and catalog every requirement.", run.FileName),
				Checklist:   []string{"Identify mandatory controls", "Note submission deadlines", "Flag ambiguous requirements"},
			},
			{
				Title:       "Draft technical approach",
				Description: "Write the technical approach section covering architecture and controls.",
				Checklist:   []string{"Outline system architecture", "Map controls to implementation", "Draft narrative"},
			},
			{
				Title:       "Assemble compliance evidence",
				Description: "Collect policies, diagrams, and attestations referenced by the draft.",
				Checklist:   []string{"Gather existing policies", "List evidence gaps"},
			},
		},
	}
}

// fallbackSuggestions builds two deterministic suggestions. Each carries the
// user's prompt verbatim in its content so the fallback is still actionable.
func fallbackSuggestions(prompt string) *llmSvc.SuggestionResult {
	return &llmSvc.SuggestionResult{
		Summary: "The assistant is unavailable right now; here are two starting points.",
		Suggestions: []models.ChatSuggestion{
			{
				ID:      uuid.NewString(),
				Summary: "Add a section addressing your request",
				Content: fmt.Sprintf("Addressing the request: %s\n\n[Expand this section with the relevant details.]", prompt),
				Status:  models.SuggestionStatusPending,
			},
			{
				ID:      uuid.NewString(),
				Summary: "Note the request as an open item",
				Content: fmt.Sprintf("Open item to resolve before submission: %s", prompt),
				Status:  models.SuggestionStatusPending,
			},
		},
	}
}
