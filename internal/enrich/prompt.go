// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// summarySystemPrompt instructs the model to emit a machine-parseable list
// literal with no surrounding prose. The output contract is enforced by
// parseBulletList; anything else counts as a failed attempt.
const summarySystemPrompt = `You are a scientific abstract summarizer.
Your task is to extract key points from research paper abstracts and format them as a list of strings.
Each bullet point should be concise, informative, and capture essential information.
Always output exactly in this format: ['point 1', 'point 2', 'point 3'] with no additional text or explanations.`

// ratingSystemPrompt instructs the model to emit a bare integer. The range
// contract is enforced by parseRating.
const ratingSystemPrompt = `You are a research relevance evaluator. Your task is to assess how well a research paper abstract matches a given query or research interest. Rate the relevance on a scale of 0-10 where:
- 0: Completely unrelated
- 1-3: Minimally related (tangential connection)
- 4-6: Moderately related (some overlap in topics/methods)
- 7-9: Highly related (direct relevance to query)
- 10: Perfectly aligned with the query

Output only a single integer between 0 and 10 with no additional text or explanation.`

// summaryMessages builds the summarization request for one paper.
func summaryMessages(rec types.PaperRecord) []Message {
	user := fmt.Sprintf("Summarize the following abstract into 3-5 key bullet points. Output only the list format:\nTitle: %s\nAbstract: %s\n", rec.Title, rec.Abstract)
	return []Message{
		{Role: RoleSystem, Content: summarySystemPrompt},
		{Role: RoleUser, Content: user},
	}
}

// ratingMessages builds the relevance-rating request. When researcher
// interests are configured the prompt carries both the interests and the
// query under separate labels so the model sees the full context.
func ratingMessages(rec types.PaperRecord, qctx types.QueryContext) []Message {
	var header, instructions string
	if qctx.Interests != "" {
		header = fmt.Sprintf("Researcher interests: %s\n\nQuery: %s\n\n", qctx.Interests, qctx.Query)
		instructions = "Please rate the relevance of the following abstract to the researcher's interests and the query."
	} else {
		header = fmt.Sprintf("Query: %s\n\n", qctx.Query)
		instructions = "Rate the relevance of this abstract to the query."
	}
	user := fmt.Sprintf("%sAbstract: %s\n\n%s", header, rec.Abstract, instructions)
	return []Message{
		{Role: RoleSystem, Content: ratingSystemPrompt},
		{Role: RoleUser, Content: user},
	}
}
