package generator

import (
	"context"
	"strings"
)

// MockLLM is an offline stand-in for local development; it never calls a model.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	topic := "our latest update"
	for _, line := range strings.Split(prompt.User, "\n") {
		for _, marker := range []string{"Topic: ", "# "} {
			if t, ok := strings.CutPrefix(line, marker); ok && strings.TrimSpace(t) != "" {
				topic = strings.TrimSpace(t)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(topic)
	sb.WriteString("\n\n")
	sb.WriteString("Big news about ")
	sb.WriteString(topic)
	sb.WriteString("! We have been working on this for a while and can't wait to share it. ")
	sb.WriteString("What would you like to see next?")
	if fb, ok := strings.CutPrefix(prompt.User, "Current post:\n"); ok {
		if i := strings.Index(fb, "Feedback: "); i >= 0 {
			note, _, _ := strings.Cut(fb[i+len("Feedback: "):], "\n")
			sb.WriteString("\n\n(Revised: ")
			sb.WriteString(note)
			sb.WriteString(")")
		}
	}
	return sb.String(), nil
}
