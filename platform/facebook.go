package platform

import "strings"

const facebookPrompt = "What do you think? Let us know in the comments!"

var facebookEmoji = []string{"😊", "👍", "🎉", "💡", "👋"}

func init() {
	register(&Platform{
		Profile: Profile{
			ID:                "facebook",
			Name:              "Facebook",
			TextLimit:         63206,
			MediaLimit:        10,
			HashtagLimit:      30,
			Features:          []Feature{FeatureImages, FeatureVideos, FeatureLinks, FeatureHashtags, FeatureMentions, FeaturePolls},
			IdealLength:       80,
			IdealHashtagCount: 2,
			Tips: []string{
				"Posts around 80 characters get the most engagement.",
				"Ask questions to encourage comments.",
				"Native video outperforms links.",
			},
		},
		emojiBonus:  8,
		favorsEmoji: true,
		augment:     augmentFacebook,
		scoreExtras: scoreFacebook,
	})
}

func augmentFacebook(d *draft, rnd Random) {
	if !strings.Contains(d.source, "?") {
		d.appendBlock(facebookPrompt)
	}
	if !hasEmoji(d.source) {
		d.prepend(pick(rnd, facebookEmoji, 1)[0])
	}
	if !hasParagraphBreak(d.source) && runeLen(d.source) > 120 {
		d.body = paragraphs(d.body)
	}
}

func scoreFacebook(_ string, st textStats) float64 {
	if st.length >= 40 && st.length <= 250 {
		return 5
	}
	return 0
}
