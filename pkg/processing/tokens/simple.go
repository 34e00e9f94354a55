package tokens

import "unicode/utf8"

// CharsPerToken is the characters-per-token ratio used for estimates.
const CharsPerToken = 4

// Estimate returns ceil(characters / 4) for text. Characters are Unicode
// code points, so multi-byte text is not over-counted.
//
// Example:
//
//	tokens.Estimate("")      // 0
//	tokens.Estimate("abcde") // 2
func Estimate(text string) int64 {
	n := utf8.RuneCountInString(text)
	return int64((n + CharsPerToken - 1) / CharsPerToken)
}

// EstimateBytes is Estimate for a byte payload.
func EstimateBytes(b []byte) int64 {
	n := utf8.RuneCount(b)
	return int64((n + CharsPerToken - 1) / CharsPerToken)
}
