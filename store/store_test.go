package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_dashboard/platform"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*Store, *clock) {
	c := &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewWithClock(c.now), c
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestStore()
	p, err := s.Create(Post{Title: "Launch", Content: "We launched!", Platforms: []string{"twitter", "linkedin"}})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, StatusDraft, p.Status)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// callers receive copies
	got.Platforms[0] = "tiktok"
	again, _ := s.Get(p.ID)
	assert.Equal(t, "twitter", again.Platforms[0])
}

func TestCreateValidates(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.Create(Post{Content: "  ", Platforms: []string{"twitter"}})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Create(Post{Content: "hello"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Create(Post{Content: "hello", Platforms: []string{"myspace"}})
	assert.ErrorIs(t, err, platform.ErrUnknownPlatform)
}

func TestListFiltersAndOrders(t *testing.T) {
	s, c := newTestStore()
	first, _ := s.Create(Post{Content: "one", Platforms: []string{"twitter"}})
	c.advance(time.Minute)
	second, _ := s.Create(Post{Content: "two", Platforms: []string{"instagram"}})
	c.advance(time.Minute)
	_, err := s.Schedule(first.ID, c.now().Add(time.Hour))
	require.NoError(t, err)

	all := s.List(Filter{})
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	assert.Len(t, s.List(Filter{Status: StatusScheduled}), 1)
	ig := s.List(Filter{Platform: "instagram"})
	require.Len(t, ig, 1)
	assert.Equal(t, second.ID, ig[0].ID)
}

func TestUpdate(t *testing.T) {
	s, c := newTestStore()
	p, _ := s.Create(Post{Content: "draft", Platforms: []string{"twitter", "facebook"}, Variants: map[string]string{"facebook": "fb copy"}})
	c.advance(time.Second)

	content := "final"
	updated, err := s.Update(p.ID, Patch{Content: &content, Platforms: []string{"twitter"}})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.Empty(t, updated.Variants, "variants of removed platforms are dropped")
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))

	empty := ""
	_, err = s.Update(p.ID, Patch{Content: &empty})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Update("missing", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleAndDue(t *testing.T) {
	s, c := newTestStore()
	p, _ := s.Create(Post{Content: "later", Platforms: []string{"twitter"}})

	_, err := s.Schedule(p.ID, c.now().Add(-time.Minute))
	assert.ErrorIs(t, err, ErrInvalid)

	scheduled, err := s.Schedule(p.ID, c.now().Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, scheduled.Status)

	assert.Empty(t, s.Due(c.now()))
	c.advance(10 * time.Minute)
	due := s.Due(c.now())
	require.Len(t, due, 1)
	assert.Equal(t, p.ID, due[0].ID)

	back, err := s.Unschedule(p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, back.Status)
	assert.Nil(t, back.ScheduledAt)
	_, err = s.Unschedule(p.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecordResults(t *testing.T) {
	s, c := newTestStore()
	p, _ := s.Create(Post{Content: "go", Platforms: []string{"twitter", "linkedin"}})

	failed, err := s.RecordResults(p.ID, []PublishResult{
		{Platform: "twitter", OK: true, RemoteID: "t1", At: c.now()},
		{Platform: "linkedin", OK: false, Error: "timeout", At: c.now()},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Nil(t, failed.PublishedAt)

	err = s.SetMetrics(p.ID, "twitter", Metrics{Likes: 3})
	assert.ErrorIs(t, err, ErrInvalidState)

	done, err := s.RecordResults(p.ID, []PublishResult{{Platform: "linkedin", OK: true, RemoteID: "l1", At: c.now()}})
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, done.Status)
	require.NotNil(t, done.PublishedAt)
	assert.Len(t, done.Results, 2)

	_, err = s.RecordResults(p.ID, []PublishResult{{Platform: "twitter", OK: true}})
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = s.Schedule(p.ID, c.now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, s.SetMetrics(p.ID, "twitter", Metrics{Likes: 3}))
	got, _ := s.Get(p.ID)
	assert.Equal(t, 3, got.Metrics["twitter"].Likes)
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore()
	p, _ := s.Create(Post{Content: "bye", Platforms: []string{"pinterest"}})
	require.NoError(t, s.Delete(p.ID))
	_, err := s.Get(p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, s.Delete(p.ID), ErrNotFound)
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := newTestStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Create(Post{Content: "parallel", Platforms: []string{"twitter"}})
			if err == nil {
				_, _ = s.Get(p.ID)
				_ = s.List(Filter{})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.List(Filter{}), 20)
}

func TestTextFor(t *testing.T) {
	p := Post{Content: "shared", Variants: map[string]string{"twitter": "short"}}
	assert.Equal(t, "short", p.TextFor("twitter"))
	assert.Equal(t, "shared", p.TextFor("facebook"))
}

func TestClaimIsExclusive(t *testing.T) {
	s, c := newTestStore()
	p, _ := s.Create(Post{Content: "once", Platforms: []string{"twitter"}})
	_, err := s.Schedule(p.ID, c.now().Add(time.Minute))
	require.NoError(t, err)

	claimed, err := s.Claim(p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPublishing, claimed.Status)

	_, err = s.Claim(p.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = s.Update(p.ID, Patch{})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, s.Delete(p.ID), ErrInvalidState)

	require.NoError(t, s.Release(p.ID))
	got, _ := s.Get(p.ID)
	assert.Equal(t, StatusScheduled, got.Status)

	_, err = s.Claim(p.ID)
	require.NoError(t, err)
	done, err := s.RecordResults(p.ID, []PublishResult{{Platform: "twitter", OK: true}})
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, done.Status)

	_, err = s.Claim(p.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	require.NoError(t, s.Release(p.ID))
	got, _ = s.Get(p.ID)
	assert.Equal(t, StatusPublished, got.Status)

	_, err = s.Claim("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
