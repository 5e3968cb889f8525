package platform

import "fmt"

// FindingKind grades a Finding.
type FindingKind string

const (
	KindError   FindingKind = "error"
	KindWarning FindingKind = "warning"
	KindTip     FindingKind = "tip"
)

// Finding is one advisory message about a piece of content.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Message string      `json:"message"`
}

func tip(format string, args ...any) Finding {
	return Finding{Kind: KindTip, Message: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...any) Finding {
	return Finding{Kind: KindWarning, Message: fmt.Sprintf(format, args...)}
}

// Analyze lists issues and suggestions for text on a platform. An empty,
// non-nil slice means there is nothing to improve.
func Analyze(platformID, text string) ([]Finding, error) {
	p, err := lookup(platformID)
	if err != nil {
		return nil, err
	}
	return p.analyze(text), nil
}

func (p *Platform) analyze(text string) []Finding {
	st := measure(text)
	prof := p.Profile
	findings := []Finding{}

	if st.length > prof.TextLimit {
		findings = append(findings, Finding{
			Kind:    KindError,
			Message: fmt.Sprintf("Content exceeds the %s limit of %d characters by %d.", prof.Name, prof.TextLimit, st.length-prof.TextLimit),
		})
	}
	if st.length < 40 {
		findings = append(findings, warning("Content is very short. Aim for at least 40 characters."))
	}

	switch {
	case st.hashtags == 0:
		findings = append(findings, tip("Add hashtags to improve discoverability (around %d works well on %s).", prof.IdealHashtagCount, prof.Name))
	case st.hashtags > prof.HashtagLimit:
		findings = append(findings, warning("%s allows at most %d hashtags; this post has %d.", prof.Name, prof.HashtagLimit, st.hashtags))
	case st.hashtags > prof.IdealHashtagCount*2:
		findings = append(findings, warning("Too many hashtags can look spammy. Try about %d.", prof.IdealHashtagCount))
	case st.hashtags*2 < prof.IdealHashtagCount:
		findings = append(findings, tip("Consider adding a few more hashtags (around %d).", prof.IdealHashtagCount))
	}

	if p.favorsEmoji && !st.hasEmoji {
		findings = append(findings, tip("Emojis help posts stand out on %s.", prof.Name))
	}
	if !st.hasQuestion && !st.hasCTA {
		findings = append(findings, tip("Ask a question or add a call to action to drive engagement."))
	}
	if st.length > 100 && !st.hasParagraphs {
		findings = append(findings, tip("Break long text into short paragraphs for readability."))
	}

	if p.analyzeExtras != nil {
		findings = append(findings, p.analyzeExtras(text, st)...)
	}
	return findings
}
