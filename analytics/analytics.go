package analytics

import (
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"social_dashboard/platform"
	"social_dashboard/store"
)

// Simulator invents engagement numbers for published posts. Better scoring
// content earns proportionally more interactions.
type Simulator struct {
	mu     sync.Mutex
	rnd    platform.Random
	logger logrus.FieldLogger
}

// NewSimulator returns a Simulator drawing from rnd; nil means platform.SystemRandom.
func NewSimulator(rnd platform.Random, logger logrus.FieldLogger) *Simulator {
	if rnd == nil {
		rnd = platform.SystemRandom()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Simulator{rnd: rnd, logger: logger}
}

// Initial returns first-day metrics for text on platformID.
func (s *Simulator) Initial(platformID, text string) store.Metrics {
	score, _ := platform.Score(platformID, text)
	quality := 0.5 + float64(score)/100

	s.mu.Lock()
	impressions := int(float64(200+s.rnd.IntN(800)) * quality)
	m := store.Metrics{
		Impressions: impressions,
		Likes:       s.portion(impressions, 0.04*quality),
		Comments:    s.portion(impressions, 0.008*quality),
		Shares:      s.portion(impressions, 0.005*quality),
		Clicks:      s.portion(impressions, 0.01*quality),
	}
	s.mu.Unlock()

	m.EngagementRate = engagementRate(m)
	return m
}

// Grow returns m after another period of activity. Counters never decrease.
func (s *Simulator) Grow(m store.Metrics) store.Metrics {
	s.mu.Lock()
	add := s.rnd.IntN(m.Impressions/4 + 20)
	ratio := float64(add) / float64(max(m.Impressions, 1))
	m.Impressions += add
	m.Likes += s.portion(int(float64(m.Likes)*ratio)+1, 1)
	m.Comments += s.portion(int(float64(m.Comments)*ratio)+1, 1)
	m.Shares += s.portion(int(float64(m.Shares)*ratio)+1, 1)
	m.Clicks += s.portion(int(float64(m.Clicks)*ratio)+1, 1)
	s.mu.Unlock()

	m.EngagementRate = engagementRate(m)
	return m
}

// portion returns roughly n*rate, jittered by up to ±50%. Callers hold s.mu.
func (s *Simulator) portion(n int, rate float64) int {
	base := float64(n) * rate
	jitter := 0.5 + float64(s.rnd.IntN(1001))/1000
	return int(math.Round(base * jitter))
}

// Refresh seeds or grows the metrics of every published post. It returns the
// number of platform entries updated.
func (s *Simulator) Refresh(st *store.Store) int {
	updated := 0
	for _, post := range st.List(store.Filter{Status: store.StatusPublished}) {
		for _, platformID := range post.Platforms {
			if r, ok := post.Results[platformID]; ok && !r.OK {
				continue
			}
			var next store.Metrics
			if cur, ok := post.Metrics[platformID]; ok {
				next = s.Grow(cur)
			} else {
				next = s.Initial(platformID, post.TextFor(platformID))
			}
			if err := st.SetMetrics(post.ID, platformID, next); err != nil {
				s.logger.WithError(err).WithField("post_id", post.ID).Warn("Failed to store metrics")
				continue
			}
			updated++
		}
	}
	return updated
}

func engagementRate(m store.Metrics) float64 {
	if m.Impressions == 0 {
		return 0
	}
	interactions := m.Likes + m.Comments + m.Shares + m.Clicks
	return math.Round(float64(interactions)/float64(m.Impressions)*10000) / 100
}

// StatusCounts is the number of posts in each state.
type StatusCounts struct {
	Draft      int `json:"draft"`
	Scheduled  int `json:"scheduled"`
	Publishing int `json:"publishing"`
	Published  int `json:"published"`
	Failed     int `json:"failed"`
}

func (c *StatusCounts) add(s store.Status) {
	switch s {
	case store.StatusDraft:
		c.Draft++
	case store.StatusScheduled:
		c.Scheduled++
	case store.StatusPublishing:
		c.Publishing++
	case store.StatusPublished:
		c.Published++
	case store.StatusFailed:
		c.Failed++
	}
}

// PlatformStats aggregates one platform.
type PlatformStats struct {
	Posts   int           `json:"posts"`
	Status  StatusCounts  `json:"status"`
	Metrics store.Metrics `json:"metrics"`
}

// TopPost is a high-engagement post on one platform.
type TopPost struct {
	PostID         string  `json:"post_id"`
	Title          string  `json:"title"`
	Platform       string  `json:"platform"`
	Interactions   int     `json:"interactions"`
	EngagementRate float64 `json:"engagement_rate"`
}

// Summary is the dashboard overview.
type Summary struct {
	TotalPosts int                      `json:"total_posts"`
	Status     StatusCounts             `json:"status"`
	Totals     store.Metrics            `json:"totals"`
	Platforms  map[string]PlatformStats `json:"platforms"`
	TopPosts   []TopPost                `json:"top_posts"`
}

// maxTopPosts bounds Summary.TopPosts.
const maxTopPosts = 5

// Summarize aggregates posts into a Summary. Every registered platform is
// present in Platforms, even without posts.
func Summarize(posts []store.Post) Summary {
	sum := Summary{
		Platforms: make(map[string]PlatformStats),
		TopPosts:  []TopPost{},
	}
	for _, id := range platform.IDs() {
		sum.Platforms[id] = PlatformStats{}
	}

	for _, p := range posts {
		sum.TotalPosts++
		sum.Status.add(p.Status)
		for _, id := range p.Platforms {
			ps := sum.Platforms[id]
			ps.Posts++
			ps.Status.add(p.Status)
			if m, ok := p.Metrics[id]; ok {
				ps.Metrics = addMetrics(ps.Metrics, m)
				sum.Totals = addMetrics(sum.Totals, m)
				sum.TopPosts = append(sum.TopPosts, TopPost{
					PostID:         p.ID,
					Title:          p.Title,
					Platform:       id,
					Interactions:   interactions(m),
					EngagementRate: m.EngagementRate,
				})
			}
			sum.Platforms[id] = ps
		}
	}

	for id, ps := range sum.Platforms {
		ps.Metrics.EngagementRate = engagementRate(ps.Metrics)
		sum.Platforms[id] = ps
	}
	sum.Totals.EngagementRate = engagementRate(sum.Totals)

	slices.SortFunc(sum.TopPosts, func(a, b TopPost) int {
		if a.Interactions != b.Interactions {
			return b.Interactions - a.Interactions
		}
		if c := strings.Compare(a.PostID, b.PostID); c != 0 {
			return c
		}
		return strings.Compare(a.Platform, b.Platform)
	})
	if len(sum.TopPosts) > maxTopPosts {
		sum.TopPosts = sum.TopPosts[:maxTopPosts]
	}
	return sum
}

func interactions(m store.Metrics) int {
	return m.Likes + m.Comments + m.Shares + m.Clicks
}

func addMetrics(a, b store.Metrics) store.Metrics {
	a.Impressions += b.Impressions
	a.Likes += b.Likes
	a.Comments += b.Comments
	a.Shares += b.Shares
	a.Clicks += b.Clicks
	return a
}
