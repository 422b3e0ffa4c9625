package llm

import (
	"context"
	"fmt"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"

	llmSvc "draftforge/internal/domain/services/llm"
)

// providerGenerator adapts an llmprovider.Provider to the TextGenerator
// capability. System turns are folded into the request params; user and
// assistant turns become single-text-block messages.
type providerGenerator struct {
	provider  llmprovider.Provider
	model     string
	maxTokens int
}

// NewProviderGenerator creates a text generator over a provider for one model.
func NewProviderGenerator(provider llmprovider.Provider, model string, maxTokens int) llmSvc.TextGenerator {
	return &providerGenerator{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate sends the conversation and concatenates the text blocks of the
// response.
func (g *providerGenerator) Generate(ctx context.Context, messages []llmSvc.Message) (string, error) {
	req := g.buildRequest(messages)

	resp, err := g.provider.GenerateResponse(ctx, req)
	if err != nil {
		return "", fmt.Errorf("provider %s: %w", g.provider.Name(), err)
	}

	var b strings.Builder
	for _, block := range resp.Blocks {
		if block == nil || block.TextContent == nil {
			continue
		}
		b.WriteString(*block.TextContent)
	}

	text := b.String()
	if text == "" {
		return "", fmt.Errorf("provider %s: response contained no text blocks", g.provider.Name())
	}
	return text, nil
}

func (g *providerGenerator) buildRequest(messages []llmSvc.Message) *llmprovider.GenerateRequest {
	params := &llmprovider.RequestParams{}
	if g.maxTokens > 0 {
		maxTokens := g.maxTokens
		params.MaxTokens = &maxTokens
	}

	converted := make([]llmprovider.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "system" {
			system := msg.Content
			params.System = &system
			continue
		}

		text := msg.Content
		converted = append(converted, llmprovider.Message{
			Role: msg.Role,
			Blocks: []*llmprovider.Block{
				{
					BlockType:   "text",
					Sequence:    0,
					TextContent: &text,
				},
			},
		})
	}

	return &llmprovider.GenerateRequest{
		Messages: converted,
		Model:    g.model,
		Params:   params,
	}
}
