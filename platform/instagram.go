package platform

import (
	"slices"
	"strings"
)

var (
	instagramTagPool = []string{"#instagood", "#photooftheday", "#love", "#beautiful", "#happy", "#picoftheday"}
	instagramTopUp   = []string{"#instagood", "#photooftheday", "#instadaily", "#picoftheday", "#explore"}
	instagramEmoji   = []string{"✨", "📸", "💫", "🌟", "😍", "🙌", "🔥"}
)

func init() {
	register(&Platform{
		Profile: Profile{
			ID:                "instagram",
			Name:              "Instagram",
			TextLimit:         2200,
			MediaLimit:        10,
			HashtagLimit:      30,
			Features:          []Feature{FeatureImages, FeatureVideos, FeatureHashtags, FeatureMentions, FeatureCarousels},
			IdealLength:       150,
			IdealHashtagCount: 8,
			Tips: []string{
				"Lead with a strong first line; captions are cut after about 125 characters.",
				"Use 5 to 10 relevant hashtags.",
				"Emojis make captions easier to scan.",
				"Links in captions are not clickable; point to the link in bio.",
			},
		},
		emojiBonus:    10,
		favorsEmoji:   true,
		augment:       augmentInstagram,
		scoreExtras:   scoreInstagram,
		analyzeExtras: analyzeInstagram,
	})
}

func augmentInstagram(d *draft, rnd Random) {
	tags := hashtags(d.source)
	switch {
	case len(tags) == 0:
		d.appendBlock(strings.Join(pick(rnd, instagramTagPool, 5), " ") + " #instadaily")
	case len(tags) < 5:
		var add []string
		for _, t := range instagramTopUp {
			if len(tags)+len(add) == 5 {
				break
			}
			if !slices.ContainsFunc(tags, func(have string) bool { return strings.EqualFold(have, t) }) {
				add = append(add, t)
			}
		}
		if len(add) > 0 {
			d.appendInline(strings.Join(add, " "))
		}
	}

	if !hasParagraphBreak(d.source) && runeLen(d.source) > 80 {
		d.body = insertBreak(d.body)
	}

	if !hasEmoji(d.source) {
		d.prepend(pick(rnd, instagramEmoji, 1)[0])
	}
}

func scoreInstagram(_ string, st textStats) float64 {
	if st.hashtags >= 5 && st.hashtags <= 10 {
		return 10
	}
	return 0
}

func analyzeInstagram(_ string, st textStats) []Finding {
	if st.hashtags > 0 && st.hashtags < 5 {
		return []Finding{tip("Instagram posts perform best with 5 to 10 hashtags.")}
	}
	return nil
}
