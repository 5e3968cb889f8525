package platform

import "strings"

// ContentVariant is the adapted copy of a post for one platform.
type ContentVariant struct {
	PlatformID     string    `json:"platform_id"`
	Text           string    `json:"text"`
	CharacterCount int       `json:"character_count"`
	Score          int       `json:"score"`
	Findings       []Finding `json:"findings"`
	// Perfect is set when the analyzer had nothing to report.
	Perfect bool `json:"perfect"`
}

// Adapter derives platform variants from a source text.
type Adapter struct {
	rnd Random
}

// NewAdapter returns an Adapter drawing from rnd; nil means SystemRandom.
func NewAdapter(rnd Random) *Adapter {
	if rnd == nil {
		rnd = SystemRandom()
	}
	return &Adapter{rnd: rnd}
}

// Adapt fits text to the platform's character limit and applies its style rules.
// The result never exceeds the platform's TextLimit.
func (a *Adapter) Adapt(platformID, text string) (string, error) {
	p, err := lookup(platformID)
	if err != nil {
		return "", err
	}
	limit := p.Profile.TextLimit
	body := FitLength(text, limit)
	d := &draft{source: body, body: body}
	p.augment(d, a.rnd)
	return d.fit(limit), nil
}

// Variant adapts text and scores and analyses the result.
func (a *Adapter) Variant(platformID, text string) (ContentVariant, error) {
	adapted, err := a.Adapt(platformID, text)
	if err != nil {
		return ContentVariant{}, err
	}
	return Evaluate(platformID, adapted)
}

// Evaluate scores and analyses text as-is, without adapting it.
func Evaluate(platformID, text string) (ContentVariant, error) {
	p, err := lookup(platformID)
	if err != nil {
		return ContentVariant{}, err
	}
	findings := p.analyze(text)
	return ContentVariant{
		PlatformID:     platformID,
		Text:           text,
		CharacterCount: runeLen(text),
		Score:          p.score(text),
		Findings:       findings,
		Perfect:        len(findings) == 0,
	}, nil
}

// draft is the text being augmented. Presence checks look at source, the
// length-adapted input, so lines appended by one rule never satisfy another.
type draft struct {
	source string
	prefix string
	body   string
	tail   []string
}

// appendBlock adds s after a blank line.
func (d *draft) appendBlock(s string) {
	d.tail = append(d.tail, "\n\n"+s)
}

// appendInline adds s on the current last line.
func (d *draft) appendInline(s string) {
	d.tail = append(d.tail, " "+s)
}

func (d *draft) prepend(s string) {
	d.prefix = s + " " + d.prefix
}

func (d *draft) tailText() string {
	return strings.Join(d.tail, "")
}

func (d *draft) String() string {
	tail := d.tailText()
	if strings.TrimSpace(d.body) == "" {
		return d.prefix + strings.TrimLeft(tail, " \n")
	}
	return d.prefix + d.body + tail
}

// fit assembles the draft within limit characters, shrinking the body first so
// the prefix and appended lines survive.
func (d *draft) fit(limit int) string {
	out := d.String()
	if runeLen(out) <= limit {
		return out
	}
	if budget := limit - runeLen(d.prefix) - runeLen(d.tailText()); budget > 0 {
		d.body = FitLength(d.body, budget)
		if out = d.String(); runeLen(out) <= limit {
			return out
		}
	}
	return hardTruncate(out, limit)
}
