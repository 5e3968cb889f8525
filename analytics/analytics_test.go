package analytics

import (
	"math/rand/v2"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_dashboard/store"
)

func newSimulator() *Simulator {
	logger, _ := logtest.NewNullLogger()
	return NewSimulator(rand.New(rand.NewPCG(5, 6)), logger)
}

func TestInitialMetricsAreConsistent(t *testing.T) {
	s := newSimulator()
	for i := 0; i < 50; i++ {
		m := s.Initial("instagram", "Fresh pastries every morning ☕ What is your favourite? #bakery #breakfast")
		assert.Greater(t, m.Impressions, 0)
		assert.GreaterOrEqual(t, m.Likes, 0)
		assert.LessOrEqual(t, m.Likes+m.Comments+m.Shares+m.Clicks, m.Impressions)
		assert.Equal(t, engagementRate(m), m.EngagementRate)
	}
}

func TestGrowNeverDecreases(t *testing.T) {
	s := newSimulator()
	m := s.Initial("twitter", "Short update")
	for i := 0; i < 20; i++ {
		next := s.Grow(m)
		assert.GreaterOrEqual(t, next.Impressions, m.Impressions)
		assert.GreaterOrEqual(t, next.Likes, m.Likes)
		assert.GreaterOrEqual(t, next.Comments, m.Comments)
		assert.GreaterOrEqual(t, next.Shares, m.Shares)
		assert.GreaterOrEqual(t, next.Clicks, m.Clicks)
		m = next
	}
}

func TestRefreshOnlyTouchesPublishedPosts(t *testing.T) {
	st := store.New()
	s := newSimulator()

	pub, err := st.Create(store.Post{Content: "Live now", Platforms: []string{"twitter", "facebook"}})
	require.NoError(t, err)
	_, err = st.RecordResults(pub.ID, []store.PublishResult{{Platform: "twitter", OK: true}, {Platform: "facebook", OK: true}})
	require.NoError(t, err)
	draft, err := st.Create(store.Post{Content: "Not yet", Platforms: []string{"twitter"}})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Refresh(st))

	got, _ := st.Get(pub.ID)
	require.Len(t, got.Metrics, 2)
	first := got.Metrics["twitter"]

	s.Refresh(st)
	got, _ = st.Get(pub.ID)
	assert.GreaterOrEqual(t, got.Metrics["twitter"].Impressions, first.Impressions)

	d, _ := st.Get(draft.ID)
	assert.Empty(t, d.Metrics)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	posts := []store.Post{
		{
			ID: "a", Title: "A", Status: store.StatusPublished, Platforms: []string{"twitter", "linkedin"}, CreatedAt: now,
			Metrics: map[string]store.Metrics{
				"twitter":  {Impressions: 1000, Likes: 40, Comments: 5, Shares: 3, Clicks: 2},
				"linkedin": {Impressions: 500, Likes: 10},
			},
		},
		{ID: "b", Title: "B", Status: store.StatusDraft, Platforms: []string{"twitter"}, CreatedAt: now},
		{ID: "c", Title: "C", Status: store.StatusFailed, Platforms: []string{"tiktok"}, CreatedAt: now},
	}

	sum := Summarize(posts)
	assert.Equal(t, 3, sum.TotalPosts)
	assert.Equal(t, StatusCounts{Draft: 1, Published: 1, Failed: 1}, sum.Status)
	assert.Equal(t, 1500, sum.Totals.Impressions)
	assert.Equal(t, 60, sum.Totals.Likes+sum.Totals.Comments+sum.Totals.Shares+sum.Totals.Clicks)
	assert.Equal(t, 4.0, sum.Totals.EngagementRate)

	tw := sum.Platforms["twitter"]
	assert.Equal(t, 2, tw.Posts)
	assert.Equal(t, 5.0, tw.Metrics.EngagementRate)
	assert.Contains(t, sum.Platforms, "pinterest", "every platform is listed")

	require.Len(t, sum.TopPosts, 2)
	assert.Equal(t, "twitter", sum.TopPosts[0].Platform)
	assert.Equal(t, 50, sum.TopPosts[0].Interactions)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	assert.Zero(t, sum.TotalPosts)
	assert.NotNil(t, sum.TopPosts)
	assert.Len(t, sum.Platforms, 7)
}
