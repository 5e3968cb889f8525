package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"social_dashboard/generator"
	"social_dashboard/platform"
)

// generateTimeout bounds one AI assistant request, including fan-out.
const generateTimeout = 90 * time.Second

var errSessionNotFound = errors.New("session not found")

const (
	// sessionTTL is how long an untouched session is kept.
	sessionTTL  = 24 * time.Hour
	maxSessions = 1000
)

type sessionEntry struct {
	sess    *generator.Session
	touched time.Time
}

// sessionStore holds AI sessions in memory. Idle sessions expire after ttl
// and the least recently used one is evicted once max is reached.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	max      int
	now      func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      sessionTTL,
		max:      maxSessions,
		now:      time.Now,
	}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.prune(now)
	if _, ok := s.sessions[id]; !ok && len(s.sessions) >= s.max {
		s.evictOldest()
	}
	s.sessions[id] = &sessionEntry{sess: sess, touched: now}
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.touched) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	e.touched = now
	return e.sess, true
}

func (s *sessionStore) prune(now time.Time) {
	for id, e := range s.sessions {
		if now.Sub(e.touched) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStore) evictOldest() {
	var (
		oldest string
		at     time.Time
	)
	for id, e := range s.sessions {
		if oldest == "" || e.touched.Before(at) {
			oldest, at = id, e.touched
		}
	}
	if oldest != "" {
		delete(s.sessions, oldest)
	}
}

type generateReq struct {
	Topic     string   `json:"topic" binding:"required"`
	Platform  string   `json:"platform"`
	Platforms []string `json:"platforms"`
	Tone      string   `json:"tone"`
	Audience  string   `json:"audience"`
	Keywords  []string `json:"keywords"`
	Words     int      `json:"words" binding:"gte=0"`
}

func (r generateReq) brief() generator.Brief {
	return generator.Brief{
		Topic:    strings.TrimSpace(r.Topic),
		Platform: r.Platform,
		Tone:     r.Tone,
		Audience: r.Audience,
		Keywords: r.Keywords,
		Words:    r.Words,
	}
}

// generated is a draft plus its evaluation when a platform was targeted.
type generated struct {
	Title   string                   `json:"title"`
	Content string                   `json:"content"`
	Variant *platform.ContentVariant `json:"variant,omitempty"`
}

type sessionResp struct {
	SessionID string           `json:"session_id"`
	Draft     generator.Draft  `json:"draft"`
	History   []generator.Turn `json:"history"`
}

type reviseReq struct {
	Comment string `json:"comment" binding:"required"`
}

func (s *Server) evaluate(platformID string, d generator.Draft) generated {
	out := generated{Title: d.Title, Content: d.Content}
	if platformID == "" {
		return out
	}
	if v, err := platform.Evaluate(platformID, d.Content); err == nil {
		out.Variant = &v
	}
	return out
}

func (s *Server) countGeneration(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if code := generator.CodeOf(err); code != "" {
			outcome = strings.ToLower(string(code))
		}
	}
	s.metrics.IncGeneration(s.provider, outcome)
}

// handleGenerate drafts one post, or one per platform when platforms is set.
func (s *Server) handleGenerate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	brief := req.brief()
	if brief.Topic == "" {
		badRequest(c, "topic is required")
		return
	}
	if err := platform.Validate(req.Platforms...); err != nil {
		writeError(c, err)
		return
	}
	if brief.Platform != "" {
		if err := platform.Validate(brief.Platform); err != nil {
			writeError(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()

	if len(req.Platforms) > 0 {
		drafts, err := s.agent.GenerateForPlatforms(ctx, brief, req.Platforms)
		s.countGeneration(err)
		if err != nil {
			writeAIError(c, err)
			return
		}
		out := make(map[string]generated, len(drafts))
		for id, d := range drafts {
			out[id] = s.evaluate(id, d)
		}
		c.JSON(http.StatusOK, gin.H{"drafts": out})
		return
	}

	draft, err := s.agent.Generate(ctx, brief, nil, nil, "")
	s.countGeneration(err)
	if err != nil {
		writeAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.evaluate(brief.Platform, draft))
}

func (s *Server) handleSessionCreate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	brief := req.brief()
	if brief.Topic == "" {
		badRequest(c, "topic is required")
		return
	}
	if brief.Platform != "" {
		if err := platform.Validate(brief.Platform); err != nil {
			writeError(c, err)
			return
		}
	}

	id := uuid.NewString()
	sess := generator.NewSession(id, brief, s.agent)
	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()
	draft, err := sess.Propose(ctx)
	s.countGeneration(err)
	if err != nil {
		writeAIError(c, err)
		return
	}
	s.sessions.set(id, sess)
	_, history := sess.Snapshot()
	c.JSON(http.StatusCreated, sessionResp{SessionID: id, Draft: draft, History: history})
}

func (s *Server) handleSessionGet(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.sessions.get(id)
	if !ok {
		writeError(c, errSessionNotFound)
		return
	}
	draft, history := sess.Snapshot()
	c.JSON(http.StatusOK, sessionResp{SessionID: id, Draft: draft, History: history})
}

func (s *Server) handleSessionRevise(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.sessions.get(id)
	if !ok {
		writeError(c, errSessionNotFound)
		return
	}
	var req reviseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
	defer cancel()
	draft, err := sess.Revise(ctx, req.Comment)
	s.countGeneration(err)
	if err != nil {
		writeAIError(c, err)
		return
	}
	_, history := sess.Snapshot()
	c.JSON(http.StatusOK, sessionResp{SessionID: id, Draft: draft, History: history})
}
