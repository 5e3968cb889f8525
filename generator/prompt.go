package generator

import (
	"fmt"
	"strings"

	"social_dashboard/platform"
)

// Prompt is the message set sent to the LLM.
type Prompt struct {
	System  string
	User    string
	History []Message
}

// Message is an optional piece of earlier conversation.
type Message struct {
	Role    string
	Content string
}

const systemPrompt = "You are an experienced social media copywriter. " +
	"Reply with the post only: a first line '# <title>' followed by the post text. No explanations."

// BuildInitialPrompt builds the prompt for a first draft.
func BuildInitialPrompt(brief Brief) Prompt {
	var sb strings.Builder
	sb.WriteString("Write a social media post.\n")
	sb.WriteString("Requirements:\n")
	if prof, ok := platform.Lookup(brief.Platform); ok {
		sb.WriteString(fmt.Sprintf("- Platform: %s. Stay under %d characters.\n", prof.Name, prof.TextLimit))
		if brief.Words == 0 {
			sb.WriteString(fmt.Sprintf("- Aim for about %d characters.\n", prof.IdealLength))
		}
		if prof.Supports(platform.FeatureHashtags) && prof.IdealHashtagCount > 0 {
			sb.WriteString(fmt.Sprintf("- End with about %d relevant hashtags.\n", prof.IdealHashtagCount))
		}
		for _, t := range prof.Tips {
			sb.WriteString(fmt.Sprintf("- %s\n", t))
		}
	}
	if brief.Words > 0 {
		sb.WriteString(fmt.Sprintf("- Target roughly %d words.\n", brief.Words))
	}
	if brief.Tone != "" {
		sb.WriteString(fmt.Sprintf("- Tone: %s.\n", brief.Tone))
	}
	if brief.Audience != "" {
		sb.WriteString(fmt.Sprintf("- Audience: %s.\n", brief.Audience))
	}
	if len(brief.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("- Work in these keywords: %s.\n", strings.Join(brief.Keywords, ", ")))
	}

	user := fmt.Sprintf("%s\nTopic: %s", sb.String(), brief.Topic)

	return Prompt{
		System:  systemPrompt,
		User:    user,
		History: nil,
	}
}

// BuildRevisionPrompt builds the prompt that revises prev according to comment.
func BuildRevisionPrompt(brief Brief, prev Draft, comment string, history []Turn) Prompt {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\nYou are revising an existing post. Make the smallest change that addresses the feedback.\n")
	sb.WriteString("- Keep the '# <title>' first line.\n")
	sb.WriteString("- If the feedback is unclear, keep the post as it is.\n")
	if prof, ok := platform.Lookup(brief.Platform); ok {
		sb.WriteString(fmt.Sprintf("- Stay under %d characters for %s.\n", prof.TextLimit, prof.Name))
	}

	user := fmt.Sprintf("Current post:\n# %s\n%s\n\nFeedback: %s\nReply with the full revised post.", prev.Title, prev.Content, comment)

	var msgs []Message
	for _, t := range history {
		if t.Comment == "" {
			continue
		}
		msgs = append(msgs, Message{Role: "user", Content: t.Comment})
	}

	return Prompt{
		System:  sb.String(),
		User:    user,
		History: msgs,
	}
}
