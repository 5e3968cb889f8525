package publisher

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)

	headingRe = regexp.MustCompile(`(?s)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	olRe      = regexp.MustCompile(`(?s)<ol[^>]*>(.*?)</ol>`)
	ulRe      = regexp.MustCompile(`(?s)<ul[^>]*>(.*?)</ul>`)
	liRe      = regexp.MustCompile(`(?s)<li[^>]*>(.*?)</li>`)
	tagRe     = regexp.MustCompile(`(^|[\s>(])([#@])(\w+)`)
)

// RenderPreview converts post text to the HTML shown in the dashboard preview.
// Social feeds have no headings or lists, so those are flattened to paragraphs.
func RenderPreview(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	out := flattenHeadings(buf.String())
	out = flattenLists(out)
	out = markTags(out)
	return out, nil
}

func flattenHeadings(s string) string {
	return headingRe.ReplaceAllStringFunc(s, func(block string) string {
		parts := headingRe.FindStringSubmatch(block)
		if len(parts) != 3 {
			return block
		}
		return "<p><strong>" + strings.TrimSpace(parts[2]) + "</strong></p>"
	})
}

func flattenLists(s string) string {
	s = olRe.ReplaceAllStringFunc(s, func(block string) string {
		items := liRe.FindAllStringSubmatch(block, -1)
		if len(items) == 0 {
			return block
		}
		var b strings.Builder
		for i, item := range items {
			fmt.Fprintf(&b, "<p>%d. %s</p>", i+1, strings.TrimSpace(item[1]))
		}
		return b.String()
	})
	return ulRe.ReplaceAllStringFunc(s, func(block string) string {
		items := liRe.FindAllStringSubmatch(block, -1)
		if len(items) == 0 {
			return block
		}
		var b strings.Builder
		for _, item := range items {
			b.WriteString("<p>• ")
			b.WriteString(strings.TrimSpace(item[1]))
			b.WriteString("</p>")
		}
		return b.String()
	})
}

// markTags wraps hashtags and mentions that start a word in text nodes.
func markTags(s string) string {
	return tagRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := tagRe.FindStringSubmatch(m)
		class := "hashtag"
		if parts[2] == "@" {
			class = "mention"
		}
		return fmt.Sprintf(`%s<span class="%s">%s%s</span>`, parts[1], class, parts[2], parts[3])
	})
}
