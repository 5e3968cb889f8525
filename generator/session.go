package generator

import (
	"context"
	"sync"
	"time"
)

// Session holds the multi-turn drafting context for one brief.
type Session struct {
	ID      string
	Brief   Brief
	Draft   Draft
	History []Turn
	agent   *Agent
	mu      sync.Mutex
}

// NewSession creates a session; no draft exists until Propose.
func NewSession(id string, brief Brief, agent *Agent) *Session {
	return &Session{
		ID:    id,
		Brief: brief,
		agent: agent,
	}
}

// Propose writes the first draft.
func (s *Session) Propose(ctx context.Context) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.agent.Generate(ctx, s.Brief, nil, s.History, "")
	if err != nil {
		return Draft{}, err
	}
	s.Draft = draft
	s.appendTurn("", draft, "first draft")
	return draft, nil
}

// Revise rewrites the current draft according to comment.
func (s *Session) Revise(ctx context.Context, comment string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Draft
	draft, err := s.agent.Generate(ctx, s.Brief, &prev, s.History, comment)
	if err != nil {
		return Draft{}, err
	}
	s.Draft = draft
	s.appendTurn(comment, draft, "revision")
	return draft, nil
}

// Snapshot returns the current draft and a copy of the history.
func (s *Session) Snapshot() (Draft, []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Draft, append([]Turn(nil), s.History...)
}

func (s *Session) appendTurn(comment string, draft Draft, summary string) {
	s.History = append(s.History, Turn{
		Comment:   comment,
		Draft:     draft,
		Summary:   summary,
		CreatedAt: time.Now(),
	})
}
