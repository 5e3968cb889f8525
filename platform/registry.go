package platform

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownPlatform is returned for platform ids that are not registered.
var ErrUnknownPlatform = errors.New("unknown platform")

// Feature is a capability flag of a platform. Flags are informational except
// for links and mentions, which the scorer rewards.
type Feature string

const (
	FeatureImages    Feature = "images"
	FeatureVideos    Feature = "videos"
	FeatureLinks     Feature = "links"
	FeatureHashtags  Feature = "hashtags"
	FeatureMentions  Feature = "mentions"
	FeaturePolls     Feature = "polls"
	FeatureCarousels Feature = "carousels"
)

// Profile is the static configuration of one social network.
type Profile struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	TextLimit         int       `json:"text_limit"`
	MediaLimit        int       `json:"media_limit"`
	HashtagLimit      int       `json:"hashtag_limit"`
	Features          []Feature `json:"features"`
	IdealLength       int       `json:"ideal_length"`
	IdealHashtagCount int       `json:"ideal_hashtag_count"`
	Tips              []string  `json:"tips"`
}

// Supports reports whether the platform has capability f.
func (p Profile) Supports(f Feature) bool {
	return slices.Contains(p.Features, f)
}

// Platform couples a profile with the rules that adapt, score and analyse
// content for it.
type Platform struct {
	Profile Profile

	// emojiBonus is added to the score when the text carries an emoji.
	emojiBonus  float64
	// favorsEmoji makes the analyzer suggest an emoji when none is present.
	favorsEmoji bool

	augment       func(d *draft, rnd Random)
	scoreExtras   func(text string, st textStats) float64
	analyzeExtras func(text string, st textStats) []Finding
}

var (
	registry = make(map[string]*Platform)
	order    []string
)

// register is called from the init function of each platform file.
func register(p *Platform) {
	id := p.Profile.ID
	if p.Profile.IdealLength > p.Profile.TextLimit {
		panic(fmt.Sprintf("platform %s: ideal length %d exceeds text limit %d", id, p.Profile.IdealLength, p.Profile.TextLimit))
	}
	if _, dup := registry[id]; dup {
		panic("platform registered twice: " + id)
	}
	registry[id] = p
	order = append(order, id)
}

func lookup(id string) (*Platform, error) {
	p, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, id)
	}
	return p, nil
}

// Lookup returns the profile registered under id.
func Lookup(id string) (Profile, bool) {
	p, ok := registry[id]
	if !ok {
		return Profile{}, false
	}
	return p.Profile, true
}

// IDs lists the registered platform ids in registration order.
func IDs() []string {
	return slices.Clone(order)
}

// Profiles lists every registered profile in registration order.
func Profiles() []Profile {
	out := make([]Profile, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id].Profile)
	}
	return out
}

// Validate returns ErrUnknownPlatform for the first id that is not registered.
func Validate(ids ...string) error {
	for _, id := range ids {
		if _, err := lookup(id); err != nil {
			return err
		}
	}
	return nil
}
