package store

import "time"

// Status is the publication state of a post.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusScheduled  Status = "scheduled"
	StatusPublishing Status = "publishing"
	StatusPublished  Status = "published"
	StatusFailed     Status = "failed"
)

// Post is a piece of content targeted at one or more platforms.
type Post struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Content     string                   `json:"content"`
	Platforms   []string                 `json:"platforms"`
	Variants    map[string]string        `json:"variants,omitempty"` // platform id -> adapted text
	Status      Status                   `json:"status"`
	ScheduledAt *time.Time               `json:"scheduled_at,omitempty"`
	PublishedAt *time.Time               `json:"published_at,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Results     map[string]PublishResult `json:"results,omitempty"`
	Metrics     map[string]Metrics       `json:"metrics,omitempty"`

	// claimedFrom is the status a publishing post returns to on Release.
	claimedFrom Status
}

// TextFor returns the variant for platform, falling back to the shared content.
func (p Post) TextFor(platform string) string {
	if v, ok := p.Variants[platform]; ok && v != "" {
		return v
	}
	return p.Content
}

// PublishResult is the outcome of delivering a post to one platform.
type PublishResult struct {
	Platform string    `json:"platform"`
	OK       bool      `json:"ok"`
	RemoteID string    `json:"remote_id,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// Metrics is the (simulated) engagement of a published post on one platform.
type Metrics struct {
	Impressions    int     `json:"impressions"`
	Likes          int     `json:"likes"`
	Comments       int     `json:"comments"`
	Shares         int     `json:"shares"`
	Clicks         int     `json:"clicks"`
	EngagementRate float64 `json:"engagement_rate"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Status   Status
	Platform string
}

func (f Filter) match(p *Post) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Platform != "" {
		for _, id := range p.Platforms {
			if id == f.Platform {
				return true
			}
		}
		return false
	}
	return true
}
