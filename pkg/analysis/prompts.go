package analysis

import (
	"encoding/json"
	"fmt"
)

const chunkInstructions = `You review contracts for a music manager who has no legal training.
Read ONLY the excerpt below and answer with JSON that follows the schema exactly.

Writing rules:
- Plain words a 12-year-old understands. At most 12 words per sentence.
- Skip legal vocabulary such as indemnify, herein, pursuant, perpetual.
- One or two sentences per field. Pro and con titles are 3 to 6 words.
- A red flag clause is a short headline, e.g. "Label owns your songs".
- Every red flag quotes the words that triggered it in source_excerpt (30 words or fewer, copied verbatim).
- Use numbers. When the excerpt has none, propose a range such as "15-20%" or "30-60 days".

Summary: two or three friendly sentences describing the deal. No advice.

The first negotiation lever is your single most important numeric ask.

Risk score: start at 70. Subtract 25 per high, 15 per medium and 8 per low red flag.
Subtract 4 per con, add 4 per pro. Keep it between 0 and 100.

Output JSON only.

EXCERPT:
`

const mergeInstructions = `Below are partial analyses of different parts of ONE contract.
Combine them into one final JSON answer that follows the schema exactly.
- Keep the same plain-language rules. Merge duplicates and keep numbers.
- The first negotiation lever must be one clear numeric ask.
- Score the risk again with the same rule, using the merged lists.
Output JSON only.

PARTIALS:
`

// ChunkPrompt builds the prompt for analyzing one excerpt.
func ChunkPrompt(excerpt string) string {
	return chunkInstructions + `"""` + excerpt + `"""`
}

// MergePrompt builds the prompt that combines ordered partial analyses.
// Partials are embedded as a JSON array in plan order.
func MergePrompt(partials []*Result) (string, error) {
	encoded, err := json.Marshal(partials)
	if err != nil {
		return "", fmt.Errorf("failed to encode partial analyses: %w", err)
	}
	return mergeInstructions + string(encoded), nil
}
