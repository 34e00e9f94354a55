package cache

import "fmt"

// ChunkKey identifies the result of analyzing chunk index of the document
// with the given fingerprint. Provider, model and the output-token budget
// are part of the key because each changes the result.
//
// Example:
//
//	ChunkKey("ab12", 0, "gemini", "gemini-1.5-flash", 1200)
//	// "ab12:chunk:0:prov:gemini:model:gemini-1.5-flash:oot:1200"
func ChunkKey(fingerprint string, index int, provider, model string, maxOutputTokens int) string {
	return fmt.Sprintf("%s:chunk:%d:prov:%s:model:%s:oot:%d", fingerprint, index, provider, model, maxOutputTokens)
}

// MergeKey identifies the merged result of a document. maxOutputTokens is
// the merge call's budget, already raised to its floor.
func MergeKey(fingerprint, provider, model string, maxOutputTokens int) string {
	return fmt.Sprintf("%s:merge:prov:%s:model:%s:oot:%d", fingerprint, provider, model, maxOutputTokens)
}
