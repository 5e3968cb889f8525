package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxParallel bounds concurrent model calls for multi-platform requests.
const maxParallel = 4

// Agent drafts posts from a Brief, or revises them from history and feedback.
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// Generate writes a first draft when prevDraft is nil and a revision otherwise.
func (a *Agent) Generate(ctx context.Context, brief Brief, prevDraft *Draft, history []Turn, comment string) (Draft, error) {
	var prompt Prompt
	if prevDraft == nil {
		prompt = BuildInitialPrompt(brief)
	} else {
		prompt = BuildRevisionPrompt(brief, *prevDraft, comment, history)
	}

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return Draft{}, err
	}
	return PostProcess(raw)
}

// GenerateForPlatforms drafts one post per platform concurrently. The first
// failure cancels the remaining calls.
func (a *Agent) GenerateForPlatforms(ctx context.Context, brief Brief, platforms []string) (map[string]Draft, error) {
	var mu sync.Mutex
	drafts := make(map[string]Draft, len(platforms))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, p := range platforms {
		b := brief
		b.Platform = p
		g.Go(func() error {
			d, err := a.Generate(ctx, b, nil, nil, "")
			if err != nil {
				return fmt.Errorf("draft for %s: %w", b.Platform, err)
			}
			mu.Lock()
			drafts[b.Platform] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return drafts, nil
}
