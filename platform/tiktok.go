package platform

import (
	"regexp"
	"strings"
)

const tiktokTags = "#fyp #foryoupage #viral #trending #tiktok"

var (
	tiktokEmoji = []string{"🔥", "✨", "🎵", "💯", "🚀", "😍"}
	fypRe       = regexp.MustCompile(`(?i)#(fyp|foryoupage)\b`)
)

// tiktokCaption is the caption length TikTok shows without expanding.
const tiktokCaption = 150

func init() {
	register(&Platform{
		Profile: Profile{
			ID:                "tiktok",
			Name:              "TikTok",
			TextLimit:         2200,
			MediaLimit:        1,
			HashtagLimit:      30,
			Features:          []Feature{FeatureVideos, FeatureHashtags, FeatureMentions},
			IdealLength:       100,
			IdealHashtagCount: 5,
			Tips: []string{
				"Short captions work best; let the video speak.",
				"Include #fyp or #foryoupage.",
				"Hook viewers in the first line.",
			},
		},
		emojiBonus:    10,
		favorsEmoji:   true,
		augment:       augmentTikTok,
		scoreExtras:   scoreTikTok,
		analyzeExtras: analyzeTikTok,
	})
}

func augmentTikTok(d *draft, rnd Random) {
	if len(hashtags(d.source)) == 0 {
		d.appendBlock(tiktokTags)
	}

	if full := d.String(); runeLen(full) > tiktokCaption {
		sentences := sentenceChunks(hashtagRe.ReplaceAllString(d.body, ""))
		if len(sentences) > 2 {
			tags := uniqueHashtags(full)
			d.body = strings.Join(sentences[:2], " ")
			d.tail = nil
			if len(tags) > 0 {
				d.appendBlock(strings.Join(tags, " "))
			}
		} else {
			d.body = hardTruncate(full, tiktokCaption)
			d.tail = nil
		}
	}

	if !hasEmoji(d.source) {
		d.prepend(strings.Join(pick(rnd, tiktokEmoji, 2), ""))
	}
}

func scoreTikTok(text string, st textStats) float64 {
	var s float64
	if fypRe.MatchString(text) {
		s += 10
	}
	if st.length <= tiktokCaption {
		s += 5
	}
	return s
}

func analyzeTikTok(text string, _ textStats) []Finding {
	if !fypRe.MatchString(text) {
		return []Finding{tip("Add #fyp or #foryoupage to reach the For You feed.")}
	}
	return nil
}
