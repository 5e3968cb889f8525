package platform

import "strings"

// minorOverflow is the overflow (in characters) still handled by plain truncation.
const minorOverflow = 100

// FitLength shortens text so it is at most limit characters long.
//
// Small overflows are truncated with an ellipsis. Large overflows of texts with
// more than three sentences are summarised: the first and last sentences are
// always kept and every other sentence in between is added while it fits.
func FitLength(text string, limit int) string {
	n := runeLen(text)
	if n <= limit {
		return text
	}
	if n-limit <= minorOverflow {
		return hardTruncate(text, limit)
	}

	sentences := splitSentences(text)
	if len(sentences) <= 3 {
		return hardTruncate(text, limit)
	}

	hook := sentences[0]
	conclusion := sentences[len(sentences)-1]
	budget := limit - runeLen(conclusion) - 5

	kept := []string{hook}
	running := runeLen(hook)
	for i := 1; i < len(sentences)-1; i += 2 {
		next := running + 2 + runeLen(sentences[i])
		if next >= budget {
			break
		}
		kept = append(kept, sentences[i])
		running = next
	}
	kept = append(kept, conclusion)

	return hardTruncate(strings.Join(kept, ". "), limit)
}
