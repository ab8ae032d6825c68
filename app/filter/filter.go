package filter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"feedsift/app/config"
	"feedsift/app/feed"
)

// Gate decides whether an item belongs in the filtered feed. The pipeline
// depends on two properties of any implementation: an empty merged rule
// set accepts without any remote call, and a failing decision mechanism
// accepts rather than drops (fail-open).
type Gate interface {
	Accepts(ctx context.Context, item feed.Item, feedFilters, globalFilters config.Filters) bool
}

// LLMFilter implements Gate against a remote LLM classification backend.
// The fail-open policy lives here at the gate, not inside the transport
// client, so it stays visible and independently testable.
type LLMFilter struct {
	client *Client
	prompt string
}

func NewLLMFilter(llmCfg config.LLMConfig) *LLMFilter {
	return &LLMFilter{
		client: NewClient(llmCfg),
		prompt: llmCfg.Prompt,
	}
}

func (f *LLMFilter) Accepts(ctx context.Context, item feed.Item, feedFilters, globalFilters config.Filters) bool {
	acceptTopics := lo.Uniq(append(append([]string{}, globalFilters.Accept...), feedFilters.Accept...))
	rejectTopics := lo.Uniq(append(append([]string{}, globalFilters.Reject...), feedFilters.Reject...))

	// Fast path: nothing to match against, accept without touching the LLM.
	if len(acceptTopics) == 0 && len(rejectTopics) == 0 {
		return true
	}

	prompt := f.buildPrompt(item, acceptTopics, rejectTopics)

	decision, err := f.client.Classify(ctx, prompt)
	if err != nil {
		slog.Warn("Classification failed, accepting item", "item", item.Title, "error", err)
		return true
	}

	if decision.Reject && !decision.Accept {
		slog.Info("Filter rejected item", "item", item.Title)
	}

	return decision.Accept || !decision.Reject
}

func (f *LLMFilter) buildPrompt(item feed.Item, acceptTopics, rejectTopics []string) string {
	excerpt := feed.Excerpt(item)

	// The LLM always gets something to look at, never an empty field.
	replacer := strings.NewReplacer(
		"{title}", orNone(item.Title),
		"{description}", orNone(item.Description),
		"{content_excerpt}", orNone(excerpt),
		"{accept_topics}", orNone(strings.Join(acceptTopics, "; ")),
		"{reject_topics}", orNone(strings.Join(rejectTopics, "; ")),
	)

	return replacer.Replace(f.prompt)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
