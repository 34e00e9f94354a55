// Package chunking splits document text into overlapping analysis windows.
package chunking

// Plan splits text into windows of at most target characters, each starting
// overlap characters before the previous one ended. Characters are Unicode
// code points, so a window never splits a multi-byte character.
//
// The planner always terminates: if overlap would keep the offset from
// advancing, the next window starts where the previous one ended. Empty
// text yields no windows.
//
// For target > overlap >= 0 and non-empty text of n characters, the number
// of windows is max(1, ceil((n-overlap)/(target-overlap))).
//
// Example:
//
//	chunks := chunking.Plan(text, 5000, 500)
func Plan(text string, target, overlap int) []string {
	if text == "" {
		return nil
	}
	if target <= 0 {
		return []string{text}
	}
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []string
	i := 0
	for {
		end := i + target
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[i:end]))
		if end >= n {
			break
		}

		next := end - overlap
		if next < 0 {
			next = 0
		}
		if next <= i {
			next = end
		}
		i = next
	}
	return chunks
}

// Count returns the number of windows Plan would produce for a text of n
// characters, without materializing them.
func Count(n, target, overlap int) int {
	if n <= 0 {
		return 0
	}
	if target <= 0 {
		return 1
	}
	if overlap < 0 {
		overlap = 0
	}

	count := 0
	i := 0
	for {
		count++
		end := i + target
		if end >= n {
			return count
		}
		next := end - overlap
		if next <= i {
			next = end
		}
		i = next
	}
}
