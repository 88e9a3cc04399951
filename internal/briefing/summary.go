package briefing

import (
	"context"
	"fmt"

	"github.com/roboscout/roboscout/internal/extract"
	"github.com/roboscout/roboscout/internal/llm"
)

const summarySystem = "You summarize stakeholder PDFs in detail, including financial performance, strategic goals, and other significant details."

// Summarize condenses raw briefing text into a detailed summary suitable
// for embedding in downstream prompts. Empty input yields an empty summary
// without a model call.
func Summarize(ctx context.Context, client *extract.Client, text string) (string, llm.Usage, error) {
	if text == "" {
		return "", llm.Usage{}, nil
	}

	prompt := fmt.Sprintf(`You are an assistant that generates detailed summaries of stakeholder documents. Please read the following PDF content and provide a detailed summary.

The summary should include:
- Key highlights
- Important sections such as strategic updates, financial performance, or innovation updates
- Relevant actions or strategic plans
- Any mentions of future directions, key business priorities, or goals
- If there are tables, charts, or other data-heavy sections, summarize their key points

Your summary should cover the following aspects:
- Financial performance and key metrics
- Innovation updates or strategic goals
- Any changes or developments in the business's service areas (maintenance, sustainability, facility management, etc.)
- Key partnerships or business collaborations mentioned
- Any other significant details that stakeholders would need to focus on

---
%s

Only return a clear and concise summary, without additional commentary, formatting, or unnecessary details. Focus on delivering a comprehensive overview that captures all relevant information.`, text)

	summary, usage, err := client.Complete(ctx, summarySystem, prompt)
	if err != nil {
		return "", usage, fmt.Errorf("briefing summary failed: %w", err)
	}
	return summary, usage, nil
}
