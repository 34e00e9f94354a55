// Package processing holds the document pipeline that runs between the
// fetch and the analyzer call.
//
// # Architecture
//
// The package is organized into sub-packages:
//
//   - extract: PDF and plain-text extraction, page caps and normalization
//   - chunking: splits normalized text into overlapping analyzer chunks
//   - tokens: character-based token estimates for prompts and outputs
//   - costs: converts token usage into estimated USD spend
//
// # Basic Usage
//
//	res, err := extract.Document(body, contentType, url, sniffed, policy.MaxPages, mode)
//	if err != nil {
//	    return err
//	}
//	chunks := chunking.Plan(res.Text, policy.ChunkSize, policy.ChunkOverlap)
//	estimate := tokens.Estimate(res.Text)
package processing
