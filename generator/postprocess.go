package generator

import (
	"errors"
	"regexp"
	"strings"
)

var titleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// maxTitle bounds titles derived from the first line of an untitled reply.
const maxTitle = 80

// PostProcess splits the raw model reply into a title and the post content.
func PostProcess(raw string) (Draft, error) {
	text := strings.TrimSpace(stripFences(raw))
	if text == "" {
		return Draft{}, errors.New("model returned empty content")
	}

	if loc := titleRe.FindStringSubmatchIndex(text); loc != nil {
		title := strings.TrimSpace(text[loc[2]:loc[3]])
		content := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
		if content == "" {
			return Draft{}, errors.New("model returned a title without content")
		}
		return Draft{Title: title, Content: content}, nil
	}

	return Draft{Title: defaultTitle(text, maxTitle), Content: text}, nil
}

// stripFences removes a surrounding ``` block some models wrap replies in.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 && !strings.Contains(t[:i], " ") {
		t = t[i+1:]
	}
	return t
}

func defaultTitle(text string, limit int) string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(strings.Join(strings.Fields(line), " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}
