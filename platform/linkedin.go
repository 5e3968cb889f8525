package platform

import (
	"regexp"
	"strings"
)

const linkedinPrompt = "What are your thoughts? I'd love to hear your perspective in the comments."

var (
	linkedinTagPool = []string{"#leadership", "#innovation", "#business", "#careers", "#professionaldevelopment"}
	informalRe      = regexp.MustCompile(`(?i)\b(you all|you guys|everyone)\b`)
	slangRe         = regexp.MustCompile(`(?i)\b(lol|omg|gonna|wanna|you guys)\b`)
	linkedinCTARe   = regexp.MustCompile(`(?i)comment|thoughts|agree`)
)

func init() {
	register(&Platform{
		Profile: Profile{
			ID:                "linkedin",
			Name:              "LinkedIn",
			TextLimit:         3000,
			MediaLimit:        9,
			HashtagLimit:      30,
			Features:          []Feature{FeatureImages, FeatureVideos, FeatureLinks, FeatureHashtags, FeatureMentions, FeaturePolls},
			IdealLength:       150,
			IdealHashtagCount: 3,
			Tips: []string{
				"Keep a professional tone.",
				"Share insights or lessons learned.",
				"Three to five hashtags are enough.",
				"End with a question to start a discussion.",
			},
		},
		emojiBonus:    5,
		augment:       augmentLinkedIn,
		scoreExtras:   scoreLinkedIn,
		analyzeExtras: analyzeLinkedIn,
	})
}

func augmentLinkedIn(d *draft, rnd Random) {
	d.body = informalRe.ReplaceAllString(d.body, "professionals")

	if len(hashtags(d.source)) == 0 {
		d.appendBlock(strings.Join(pick(rnd, linkedinTagPool, 3), " "))
	}
	if !linkedinCTARe.MatchString(d.source) {
		d.appendBlock(linkedinPrompt)
	}
	if !hasParagraphBreak(d.source) && runeLen(d.source) > 100 {
		d.body = paragraphs(d.body)
	}
}

func scoreLinkedIn(_ string, st textStats) float64 {
	var s float64
	if st.length >= 150 {
		s += 5
	}
	if st.hashtags >= 3 && st.hashtags <= 5 {
		s += 5
	}
	return s
}

func analyzeLinkedIn(text string, _ textStats) []Finding {
	if slangRe.MatchString(text) || len(emojiRe.FindAllString(text, -1)) > 3 {
		return []Finding{tip("Keep a professional tone on LinkedIn: avoid slang and heavy emoji use.")}
	}
	return nil
}
