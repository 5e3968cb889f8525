package platform

import (
	"math"
	"strings"
)

// textStats is computed once per text and shared by the scorer and analyzer.
type textStats struct {
	length        int
	hashtags      int
	words         int
	hasEmoji      bool
	hasQuestion   bool
	hasCTA        bool
	hasParagraphs bool
	uniqueRatio   float64
	upperRatio    float64
}

func measure(text string) textStats {
	words := strings.Fields(text)
	return textStats{
		length:        runeLen(text),
		hashtags:      len(hashtags(text)),
		words:         len(words),
		hasEmoji:      hasEmoji(text),
		hasQuestion:   strings.Contains(text, "?"),
		hasCTA:        ctaRe.MatchString(text),
		hasParagraphs: hasParagraphBreak(text),
		uniqueRatio:   uniqueWordRatio(words),
		upperRatio:    upperRatio(text),
	}
}

// Score rates text for a platform on a 0-100 scale. It is pure: the same
// platform and text always give the same score.
func Score(platformID, text string) (int, error) {
	p, err := lookup(platformID)
	if err != nil {
		return 0, err
	}
	return p.score(text), nil
}

func (p *Platform) score(text string) int {
	st := measure(text)
	prof := p.Profile
	var s float64

	ratio := math.Min(float64(st.length)/float64(prof.IdealLength), 1.5)
	s += math.Max(0, 30-math.Abs(1-ratio)*30)

	s += math.Max(0, 20-math.Abs(float64(st.hashtags-prof.IdealHashtagCount))*4)

	if st.hasEmoji {
		s += p.emojiBonus
	}

	if prof.Supports(FeatureLinks) && strings.Contains(text, "http") {
		s += 5
	}
	if prof.Supports(FeatureMentions) && strings.Contains(text, "@") {
		s += 5
	}

	if st.hasQuestion {
		s += 15
	}
	if st.hasCTA {
		s += 10
	}

	if st.length > 100 && st.hasParagraphs {
		s += 10
	}

	if p.scoreExtras != nil {
		s += p.scoreExtras(text, st)
	}

	if st.length < 40 {
		s -= 15
	}
	if st.hashtags > 10 && prof.ID != "instagram" {
		s -= 10
	}
	if st.words > 20 && st.uniqueRatio < 0.6 {
		s -= 10
	}
	if st.length > 15 && st.upperRatio > 0.3 {
		s -= 10
	}

	return int(math.Round(math.Min(100, math.Max(0, s))))
}
