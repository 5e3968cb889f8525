package platform

import "strings"

const twitterPrompt = "What do you think?"

func init() {
	register(&Platform{
		Profile: Profile{
			ID:                "twitter",
			Name:              "Twitter/X",
			TextLimit:         280,
			MediaLimit:        4,
			HashtagLimit:      10,
			Features:          []Feature{FeatureImages, FeatureVideos, FeatureLinks, FeatureHashtags, FeatureMentions, FeaturePolls},
			IdealLength:       100,
			IdealHashtagCount: 2,
			Tips: []string{
				"Keep it short: tweets under 100 characters get more engagement.",
				"Use one or two hashtags at most.",
				"Ask a question to invite replies.",
				"Threads work well for longer ideas.",
			},
		},
		emojiBonus:    8,
		augment:       augmentTwitter,
		scoreExtras:   scoreTwitter,
		analyzeExtras: analyzeTwitter,
	})
}

func augmentTwitter(d *draft, _ Random) {
	d.body = urlRe.ReplaceAllString(d.body, "shortlink")

	tags := hashtagRe.FindAllStringIndex(d.body, -1)
	switch {
	case len(tags) == 0:
		if kw := keywords(d.source, 2); len(kw) > 0 {
			d.appendBlock("#" + strings.Join(kw, " #"))
		}
	case len(tags) > 3:
		var b strings.Builder
		last := 0
		for _, loc := range tags[3:] {
			b.WriteString(d.body[last:loc[0]])
			last = loc[1]
		}
		b.WriteString(d.body[last:])
		d.body = strings.TrimSpace(multiSpaceRe.ReplaceAllString(b.String(), " "))
	}

	if !strings.Contains(d.source, "?") {
		d.appendBlock(twitterPrompt)
	}
}

func scoreTwitter(_ string, st textStats) float64 {
	var s float64
	if st.length <= 240 {
		s += 5
	}
	if st.hashtags >= 1 && st.hashtags <= 2 {
		s += 5
	}
	return s
}

func analyzeTwitter(_ string, st textStats) []Finding {
	if st.length > 240 && st.length <= 280 {
		return []Finding{tip("Tweets under 240 characters leave room for quote replies.")}
	}
	return nil
}
