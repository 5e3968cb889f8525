package platform

import (
	"regexp"
	"strings"
)

const (
	pinterestCTA      = "📌 Save this Pin for later!"
	pinterestKeywords = "Keywords: home, decor, ideas, inspiration"
	// pinterestPreview is the description length shown before "more".
	pinterestPreview  = 300
)

var (
	pinCTARe     = regexp.MustCompile(`Save|Pin`)
	pinKeywordRe = regexp.MustCompile(`(?i)\b(home|decor|ideas?|inspiration|diy|recipes?|style|design|fashion|wedding|garden|travel)\b`)
)

func init() {
	register(&Platform{
		Profile: Profile{
			ID:                "pinterest",
			Name:              "Pinterest",
			TextLimit:         500,
			MediaLimit:        1,
			HashtagLimit:      20,
			Features:          []Feature{FeatureImages, FeatureLinks, FeatureHashtags},
			IdealLength:       100,
			IdealHashtagCount: 3,
			Tips: []string{
				"Describe the Pin with searchable keywords.",
				"Vertical images perform best.",
				"Tell people why they should save the Pin.",
			},
		},
		emojiBonus:    8,
		augment:       augmentPinterest,
		scoreExtras:   scorePinterest,
		analyzeExtras: analyzePinterest,
	})
}

func augmentPinterest(d *draft, _ Random) {
	if runeLen(d.body) > pinterestPreview {
		preserved := uniqueHashtags(d.body)
		if len(preserved) > 3 {
			preserved = preserved[:3]
		}
		kept := wholeTagsBefore(d.body, len(truncateRunes(d.body, pinterestPreview-3)))
		d.body = hardTruncate(d.body, pinterestPreview)
		if kept == 0 && len(preserved) > 0 {
			d.body += " " + strings.Join(preserved, " ")
		}
	}
	if !pinCTARe.MatchString(d.source) {
		d.appendBlock(pinterestCTA)
	}
	if !pinKeywordRe.MatchString(d.source) {
		d.appendBlock(pinterestKeywords)
	}
}

// wholeTagsBefore counts the hashtags of s that end at or before byte offset cut.
func wholeTagsBefore(s string, cut int) int {
	n := 0
	for _, loc := range hashtagRe.FindAllStringIndex(s, -1) {
		if loc[1] <= cut {
			n++
		}
	}
	return n
}

func scorePinterest(text string, _ textStats) float64 {
	var s float64
	if pinKeywordRe.MatchString(text) {
		s += 10
	}
	if pinCTARe.MatchString(text) {
		s += 5
	}
	return s
}

func analyzePinterest(text string, _ textStats) []Finding {
	if !pinKeywordRe.MatchString(text) {
		return []Finding{tip("Pinterest is a search engine: include descriptive keywords.")}
	}
	return nil
}
