package store

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"social_dashboard/platform"
)

var (
	ErrNotFound     = errors.New("post not found")
	ErrInvalidState = errors.New("invalid post state")
	ErrInvalid      = errors.New("invalid post")
)

// Store keeps posts in memory. It is safe for concurrent use; returned posts
// are copies.
type Store struct {
	mu    sync.RWMutex
	posts map[string]*Post
	now   func() time.Time
}

// New returns an empty store using the wall clock.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty store that reads the current time from now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{posts: make(map[string]*Post), now: now}
}

// Patch lists the fields Update may change. Nil fields are left alone.
type Patch struct {
	Title     *string           `json:"title"`
	Content   *string           `json:"content"`
	Platforms []string          `json:"platforms"`
	Variants  map[string]string `json:"variants"`
}

// Create validates p, assigns an id and stores it as a draft.
func (s *Store) Create(p Post) (Post, error) {
	if err := validate(p.Content, p.Platforms); err != nil {
		return Post{}, err
	}
	now := s.now()
	p.ID = uuid.NewString()
	p.Status = StatusDraft
	p.ScheduledAt = nil
	p.PublishedAt = nil
	p.Results = nil
	p.Metrics = nil
	p.CreatedAt = now
	p.UpdatedAt = now

	c := clone(&p)
	s.mu.Lock()
	s.posts[p.ID] = &c
	s.mu.Unlock()
	return clone(&p), nil
}

func (s *Store) Get(id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return clone(p), nil
}

// List returns the posts matching f, newest first.
func (s *Store) List(f Filter) []Post {
	s.mu.RLock()
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		if f.match(p) {
			out = append(out, clone(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Update applies patch. Published posts and posts being published are
// read-only.
func (s *Store) Update(id string, patch Patch) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := checkMutable(p); err != nil {
		return Post{}, err
	}

	next := clone(p)
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Content != nil {
		next.Content = *patch.Content
	}
	if patch.Platforms != nil {
		next.Platforms = slices.Clone(patch.Platforms)
	}
	if patch.Variants != nil {
		next.Variants = maps.Clone(patch.Variants)
	}
	if err := validate(next.Content, next.Platforms); err != nil {
		return Post{}, err
	}
	for platformID := range next.Variants {
		if !slices.Contains(next.Platforms, platformID) {
			delete(next.Variants, platformID)
		}
	}
	next.UpdatedAt = s.now()
	s.posts[id] = &next
	return clone(&next), nil
}

// Delete removes a post unless it is being published.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.Status == StatusPublishing {
		return fmt.Errorf("%w: post %s is being published", ErrInvalidState, id)
	}
	delete(s.posts, id)
	return nil
}

// Schedule marks a post for publication at at, which must lie in the future.
// A failed post may be rescheduled.
func (s *Store) Schedule(id string, at time.Time) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := checkMutable(p); err != nil {
		return Post{}, err
	}
	now := s.now()
	if !at.After(now) {
		return Post{}, fmt.Errorf("%w: scheduled time %s is not in the future", ErrInvalid, at.Format(time.RFC3339))
	}
	at = at.UTC()
	p.ScheduledAt = &at
	p.Status = StatusScheduled
	p.UpdatedAt = now
	return clone(p), nil
}

// Unschedule returns a scheduled post to draft.
func (s *Store) Unschedule(id string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.Status != StatusScheduled {
		return Post{}, fmt.Errorf("%w: post %s is %s", ErrInvalidState, id, p.Status)
	}
	p.ScheduledAt = nil
	p.Status = StatusDraft
	p.UpdatedAt = s.now()
	return clone(p), nil
}

// Due returns the scheduled posts whose time is not after now, oldest first.
func (s *Store) Due(now time.Time) []Post {
	s.mu.RLock()
	var out []Post
	for _, p := range s.posts {
		if p.Status == StatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now) {
			out = append(out, clone(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Post) int {
		return a.ScheduledAt.Compare(*b.ScheduledAt)
	})
	return out
}

// Claim marks a post as being published. Only one caller can hold the claim;
// the others get ErrInvalidState until RecordResults or Release resolves it.
func (s *Store) Claim(id string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := checkMutable(p); err != nil {
		return Post{}, err
	}
	p.claimedFrom = p.Status
	p.Status = StatusPublishing
	p.UpdatedAt = s.now()
	return clone(p), nil
}

// Release drops a claim without recording results, restoring the previous
// status. Posts that are not being published are left alone.
func (s *Store) Release(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.Status == StatusPublishing {
		p.Status = p.claimedFrom
		p.claimedFrom = ""
		p.UpdatedAt = s.now()
	}
	return nil
}

// RecordResults stores publish outcomes and resolves any claim. The post
// becomes published when every platform succeeded and failed otherwise.
func (s *Store) RecordResults(id string, results []PublishResult) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.Status == StatusPublished {
		return Post{}, fmt.Errorf("%w: post %s is already published", ErrInvalidState, id)
	}

	now := s.now()
	if p.Results == nil {
		p.Results = make(map[string]PublishResult, len(results))
	}
	allOK := len(results) > 0
	for _, r := range results {
		p.Results[r.Platform] = r
		if !r.OK {
			allOK = false
		}
	}
	if allOK {
		p.Status = StatusPublished
		p.PublishedAt = &now
	} else {
		p.Status = StatusFailed
	}
	p.claimedFrom = ""
	p.UpdatedAt = now
	return clone(p), nil
}

// SetMetrics replaces the engagement numbers of a published post on platform.
func (s *Store) SetMetrics(id, platformID string, m Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.Status != StatusPublished {
		return fmt.Errorf("%w: post %s is %s", ErrInvalidState, id, p.Status)
	}
	if p.Metrics == nil {
		p.Metrics = make(map[string]Metrics)
	}
	p.Metrics[platformID] = m
	return nil
}

func checkMutable(p *Post) error {
	switch p.Status {
	case StatusPublished:
		return fmt.Errorf("%w: post %s is already published", ErrInvalidState, p.ID)
	case StatusPublishing:
		return fmt.Errorf("%w: post %s is being published", ErrInvalidState, p.ID)
	}
	return nil
}

func validate(content string, platforms []string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is empty", ErrInvalid)
	}
	if len(platforms) == 0 {
		return fmt.Errorf("%w: no platforms selected", ErrInvalid)
	}
	return platform.Validate(platforms...)
}

func clone(p *Post) Post {
	c := *p
	c.Platforms = slices.Clone(p.Platforms)
	c.Variants = maps.Clone(p.Variants)
	c.Results = maps.Clone(p.Results)
	c.Metrics = maps.Clone(p.Metrics)
	if p.ScheduledAt != nil {
		t := *p.ScheduledAt
		c.ScheduledAt = &t
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	return c
}
