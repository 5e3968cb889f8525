package platform

import (
	"regexp"
	"strings"
)

const (
	youtubeTimestamps = "0:00 Introduction\n1:30 Main content\n5:00 Key takeaways\n8:00 Wrap-up"
	youtubeSubscribe  = "🔔 Subscribe and turn on notifications so you never miss a video!"
	youtubeLinks      = "🔗 Website: https://example.com\n📱 Follow us: https://example.com/social"
)

var (
	timestampRe = regexp.MustCompile(`\b\d+:\d{2}\b`)
	subscribeRe = regexp.MustCompile(`(?i)subscribe`)
)

func init() {
	register(&Platform{
		Profile: Profile{
			ID:                "youtube",
			Name:              "YouTube",
			TextLimit:         5000,
			MediaLimit:        1,
			HashtagLimit:      15,
			Features:          []Feature{FeatureVideos, FeatureLinks, FeatureHashtags},
			IdealLength:       200,
			IdealHashtagCount: 3,
			Tips: []string{
				"Put the most important keywords in the first two lines.",
				"Add timestamps so viewers can jump to sections.",
				"Remind viewers to subscribe.",
				"Link related videos and resources.",
			},
		},
		emojiBonus:    8,
		augment:       augmentYouTube,
		scoreExtras:   scoreYouTube,
		analyzeExtras: analyzeYouTube,
	})
}

func augmentYouTube(d *draft, _ Random) {
	if kw := keywords(d.source, 5); len(kw) > 0 && !strings.Contains(d.source, "Keywords:") {
		d.appendBlock("Keywords: " + strings.Join(kw, ", "))
	}
	if !strings.Contains(d.source, ":") {
		d.appendBlock(youtubeTimestamps)
	}
	if !subscribeRe.MatchString(d.source) {
		d.appendBlock(youtubeSubscribe)
	}
	if !strings.Contains(d.source, "http") {
		d.appendBlock(youtubeLinks)
	}
}

func scoreYouTube(text string, _ textStats) float64 {
	var s float64
	if timestampRe.MatchString(text) {
		s += 10
	}
	if subscribeRe.MatchString(text) {
		s += 5
	}
	return s
}

func analyzeYouTube(text string, _ textStats) []Finding {
	var findings []Finding
	if !timestampRe.MatchString(text) {
		findings = append(findings, tip("Add timestamps (e.g. 0:00 Intro) to help viewers navigate."))
	}
	if !subscribeRe.MatchString(text) {
		findings = append(findings, tip("Remind viewers to subscribe."))
	}
	return findings
}
