package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// roboticsSystemMessage instructs the model to extract every robotics
// company mentioned in an article and pre-assess its relevance to the
// configured business.
const roboticsSystemMessage = `You are a Robotics Strategy AI Assistant. Your task is to extract structured metadata about **all robotics companies** mentioned in the article and evaluate their relevance to the business described in the provided context.

Your Output Format (JSON):

{
  "listings": [
    {
      "company": "Company name",
      "company_info": "1-2 line what the company does + industry served",
      "region": "Country/region",
      "focus": "2-5 word robotics focus",
      "company_size": "Small / Medium / Large",
      "raised_funding": "e.g. $80M or 'Not Disclosed'",
      "recent_developments": "Key updates in last 12 months",
      "partnerships": "If any, else 'None'",
      "media_mentions": "Estimated mentions (e.g., 5, 10)",
      "humanoid_robotics_use_case": "Yes/No + 1-2 lines",
      "single_use_cases": "Yes/No + rationale",
      "task_streamlining": "E.g. floor cleaning, inventory tracking",
      "project_launch_date": "Only if explicitly stated; otherwise 'TBD'",
      "relevancy_score": "1-5",
      "correlation_reason": "Use A-D format to explain relevance or irrelevance. You must include all four labels (A, B, C, D) as separate sentences, even if some are marked 'Not Applicable'.",
      "article_name": "Original article title",
      "article_summary": "Brief 1-2 line summary of article",
      "article_date": "Date of the article, e.g. April 11, 2025",
      "article_url": "Full URL of the article"
    }
  ]
}

Correlation Reason (Must follow A-D):
A. Does it overlap with the business's core or adjacent services?
B. Does it align with the business's smart facilities strategy (e.g., sensors, AI dashboards)?
C. Does it offer unique robotics innovation?
D. Is it commercially ready?

Even if a company is **not relevant**, still assign a score and explain **why not**.

Rules:
- Always extract *all* robotics companies from the article
- Return **all fields** listed above for each company, even if values are missing
- If data is missing, write: "TBD", "None", or "Not Disclosed"
- Output must be valid JSON. No markdown, no commentary, no preambles`

// paginationPrompt asks the model to enumerate the full set of page URLs
// implied by a numeric pagination pattern in the content.
const paginationPrompt = `You are an assistant that extracts pagination URLs from the text content of websites.
Your task is to identify and generate a list of pagination URLs based on a detected URL pattern where page numbers increment sequentially. Follow these instructions carefully:

- Identify the Pagination Pattern:
Analyze the provided text to detect URLs that follow a pattern where only a numeric page indicator changes.
If the numbers start from a low value and increment, generate the full sequence of URLs, even if not all numbers are present in the text.

- Construct Complete URLs:
In cases where only part of a URL is provided, combine it with the given base URL (which will appear at the end of this prompt) to form complete URLs.
Ensure that every URL you generate is clickable and leads directly to the intended page.

- Incorporate User Indications:
If additional user instructions about the pagination mechanism are provided at the end of the prompt, use those instructions to refine your URL generation.

Output Format Requirements:
Strictly output only a valid JSON object with the exact structure below:
{
    "page_urls": ["url1", "url2", "url3", ..., "urlN"]
}

IMPORTANT:
Output only a single valid JSON object with no additional text, markdown formatting, or explanation.
Do not include any extra newlines or spaces before or after the JSON.`

// buildPaginationPrompt attaches the page URL and any operator indications
// to the base pagination instruction.
func buildPaginationPrompt(indications, pageURL string) string {
	var b strings.Builder
	b.WriteString(paginationPrompt)
	b.WriteString("\nThe page being analyzed is: " + pageURL + "\n")
	if strings.TrimSpace(indications) != "" {
		b.WriteString("These are the user's indications:\n" + indications + "\n\n")
	} else {
		b.WriteString("No special user indications. Apply general pagination logic.\n\n")
	}
	return b.String()
}

// buildEnrichmentPrompt combines website and article text into a profiling
// request covering the enrichment schema fields.
func buildEnrichmentPrompt(websiteText, articleText string) string {
	return fmt.Sprintf(`You are a Robotics Company Profiling AI. Your task is to extract structured metadata from the following company sources:

- WEBSITE content (for mission, use case, product details)
- ARTICLE content (for external context like product launch, funding, and industry news)

Your job is to combine these two sources into one detailed company profile in JSON format.

--- COMPANY SOURCE CONTENT START ---
WEBSITE:
%s

ARTICLE:
%s
--- COMPANY SOURCE CONTENT END ---

Use the structure below and fill in each field with detailed, informative responses. Be concise but insightful.

{
  "company_info": "Summarize what the company builds with clear mention of its robotics applications, the environments it serves (e.g., warehouse, hospital), and target users (e.g., logistics, facility managers). Avoid generic tech language.",
  "region": "Country or region where the company is based. Example: 'US', 'Europe', 'Japan', 'India'.",
  "focus": "Summarize the company's robotics focus in 2-5 words. Be specific. Example: 'warehouse automation', 'hospital disinfection robots'.",
  "company_size": "Small / Medium / Large, inferred from employee size, global reach, or client base.",
  "capital_raised": "Mention total capital raised (e.g., '$43M Series A', 'Total $120M funding'). If not found, infer status (e.g., 'Likely Seed Stage', 'Undisclosed but growth-stage'). Return 'Not Disclosed' only if no clues exist.",
  "funding_stage_inferred": "Try to infer: Seed / Series A / Series B / Series C / Public / Unknown, based on article tone, company size, and recent funding clues.",
  "recent_developments": "List 2-3 key updates from the past 6-12 months. These could include product launches, pilots, new features, expansions, or funding events.",
  "partnerships": "Mention any significant partnerships (business, research, tech etc.). Return 'None' if no evidence found.",
  "humanoids_focus": "Yes/No, plus a 3-4 line explanation of whether and how the company builds humanoid robots and use case.",
  "single_use_case_type": "Yes/No, plus a 3-4 line rationale about their focus on one type of robot vs multipurpose.",
  "streamlined_tasks": "3-4 lines listing and describing specific tasks this company's robotics solutions are designed to optimize.",
  "project_launch_date": "Extract this ONLY from article content. Format: 'Month Year'. Return 'TBD' if not found."
}

Output only a valid JSON object. No explanations, markdown, or extra formatting.`, websiteText, articleText)
}

// buildCorrelationPrompt asks for the four-part A-D relevance reasoning for
// one company against the business briefing.
func buildCorrelationPrompt(companyData map[string]any, briefingSummary string) string {
	details, err := json.MarshalIndent(companyData, "", "  ")
	if err != nil {
		details = []byte("{}")
	}
	if len(briefingSummary) > contextCharBudget {
		briefingSummary = briefingSummary[:contextCharBudget]
	}
	return fmt.Sprintf(`You are an expert analyst evaluating how well a robotics company aligns with the strategic goals of the business described below.

The business's strategy and services are summarized here:
"""%s"""

Company Details:
%s

TASK:
Evaluate the company's relevance to the business across the following four categories and write **1-2 polished sentences** for each. Be specific, reference the business's strategy, and make each point meaningful.

A. Overlap with the business's core or adjacent services
B. Fit with the business's smart facilities and innovation strategy
C. Robotics innovation or uniqueness
D. Stage of technology maturity

Write your final response using this exact format:
A. [your sentence]
B. [your sentence]
C. [your sentence]
D. [your sentence]

Only return this plain-text response. No bullet points, no markdown, no JSON, and no extra commentary.`, briefingSummary, details)
}

// buildScorePrompt asks for a single 1-5 digit given the A-D reasoning.
func buildScorePrompt(reasoning string) string {
	return fmt.Sprintf(`Using the following A-D reasoning, assign a Relevancy Score from 1 (no alignment) to 5 (very strong alignment).
Only return the number. Do not explain.

"""%s"""`, reasoning)
}

// buildLaunchDatePrompt asks for an explicitly stated launch date only.
func buildLaunchDatePrompt(articleText string) string {
	if len(articleText) > contextCharBudget {
		articleText = articleText[:contextCharBudget]
	}
	return fmt.Sprintf(`You are a date extraction assistant. Your job is to find the launch date of any robotics project **only if it is clearly stated** in the article.

Examples of valid statements:
- "The robots will begin deployment in Q2 2025"
- "Shipping starts in July 2024"
- "The company plans to roll out the product in October"

If there is no such clear and explicit statement, return "TBD".

Never infer or guess the launch date. Only extract if the article **directly mentions** it.

Article:
"""%s"""

Return a JSON object:
{
  "project_launch_date": "Month Year" or "TBD"
}`, articleText)
}
