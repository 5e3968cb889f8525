package platform

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	hashtagRe       = regexp.MustCompile(`#\w+`)
	urlRe           = regexp.MustCompile(`https?://\S+`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	sentenceChunkRe = regexp.MustCompile(`[^.!?]+[.!?]*`)
	sentenceBreakRe = regexp.MustCompile(`([.!?]+)[ \t]+`)
	multiSpaceRe    = regexp.MustCompile(` {2,}`)
	ctaRe           = regexp.MustCompile(`(?i)comment|share|like|follow|subscribe|save|check out|try|click|visit|read more`)
	emojiRe         = regexp.MustCompile(`[\x{1F300}-\x{1F5FF}\x{1F600}-\x{1F64F}\x{1F680}-\x{1F6FF}\x{1F900}-\x{1F9FF}\x{1FA70}-\x{1FAFF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}]`)
)

// runeLen is the character count used everywhere in this package.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx]
		}
		i++
	}
	return s
}

// hardTruncate cuts s to limit characters, ending in "..." when there is room for it.
func hardTruncate(s string, limit int) string {
	if runeLen(s) <= limit {
		return s
	}
	if limit <= 3 {
		return truncateRunes(s, limit)
	}
	return truncateRunes(s, limit-3) + "..."
}

func hashtags(s string) []string {
	return hashtagRe.FindAllString(s, -1)
}

func uniqueHashtags(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range hashtags(s) {
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

func hasEmoji(s string) bool {
	return emojiRe.MatchString(s)
}

func hasParagraphBreak(s string) bool {
	return strings.Contains(s, "\n\n")
}

// splitSentences splits on runs of sentence punctuation. Abbreviations and
// decimals fragment; callers accept that.
func splitSentences(s string) []string {
	var out []string
	for _, part := range sentenceSplitRe.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// sentenceChunks is like splitSentences but keeps the trailing punctuation.
func sentenceChunks(s string) []string {
	var out []string
	for _, part := range sentenceChunkRe.FindAllString(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// paragraphs regroups s into paragraphs of two sentences each.
func paragraphs(s string) string {
	chunks := sentenceChunks(s)
	if len(chunks) <= 2 {
		return s
	}
	var paras []string
	for i := 0; i < len(chunks); i += 2 {
		end := min(i+2, len(chunks))
		paras = append(paras, strings.Join(chunks[i:end], " "))
	}
	return strings.Join(paras, "\n\n")
}

// insertBreak puts a blank line after the first sentence, or at the last word
// boundary before the 80th character when there is no sentence end.
func insertBreak(s string) string {
	if loc := sentenceBreakRe.FindStringSubmatchIndex(s); loc != nil && loc[1] < len(s) {
		return s[:loc[3]] + "\n\n" + s[loc[1]:]
	}
	cut := len(truncateRunes(s, 80))
	if i := strings.LastIndex(s[:cut], " "); i > 0 {
		return s[:i] + "\n\n" + s[i+1:]
	}
	return s
}

func normalizeWord(w string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, w)
}

// keywords returns up to n distinct words longer than four characters, in
// order of appearance. Hashtags, mentions and links are skipped.
func keywords(s string, n int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, field := range strings.Fields(s) {
		if len(out) == n {
			break
		}
		if strings.HasPrefix(field, "#") || strings.HasPrefix(field, "@") || strings.Contains(field, "://") {
			continue
		}
		w := normalizeWord(field)
		if runeLen(w) <= 4 || w == "shortlink" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func upperRatio(s string) float64 {
	n := runeLen(s)
	if n == 0 {
		return 0
	}
	upper := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper) / float64(n)
}

func uniqueWordRatio(words []string) float64 {
	if len(words) == 0 {
		return 1
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(w)] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}
