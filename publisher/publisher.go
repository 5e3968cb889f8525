package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"social_dashboard/platform"
	"social_dashboard/store"
)

// sendTimeout bounds a single delivery.
const sendTimeout = 60 * time.Second

// Publisher delivers stored posts to their platforms.
type Publisher struct {
	store   *store.Store
	channel Channel
	adapter *platform.Adapter
	logger  logrus.FieldLogger
	observe func(platformID string, ok bool)
	now     func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithObserver registers fn to be called once per delivery attempt.
func WithObserver(fn func(platformID string, ok bool)) Option {
	return func(p *Publisher) { p.observe = fn }
}

// WithClock replaces the clock used for due checks and result timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func New(st *store.Store, ch Channel, adapter *platform.Adapter, logger logrus.FieldLogger, opts ...Option) (*Publisher, error) {
	if st == nil || ch == nil {
		return nil, errors.New("store and channel are required")
	}
	if adapter == nil {
		adapter = platform.NewAdapter(nil)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	p := &Publisher{
		store:   st,
		channel: ch,
		adapter: adapter,
		logger:  logger,
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Publish sends post id to every platform it targets and records the outcome.
// Platforms without a stored variant get the shared content adapted on the fly.
// Delivery failures mark the post failed; they are not returned as errors.
// A post already being published by another caller yields ErrInvalidState.
func (p *Publisher) Publish(ctx context.Context, id string) (store.Post, error) {
	post, err := p.store.Claim(id)
	if err != nil {
		return store.Post{}, err
	}

	results := make([]store.PublishResult, 0, len(post.Platforms))
	for _, platformID := range post.Platforms {
		if err := ctx.Err(); err != nil {
			if rerr := p.store.Release(id); rerr != nil {
				p.logger.WithError(rerr).WithField("post_id", id).Warn("Failed to release publish claim")
			}
			return store.Post{}, err
		}
		results = append(results, p.deliver(ctx, post, platformID))
	}
	return p.store.RecordResults(id, results)
}

func (p *Publisher) deliver(ctx context.Context, post store.Post, platformID string) store.PublishResult {
	log := p.logger.WithFields(logrus.Fields{"post_id": post.ID, "platform": platformID})
	res := store.PublishResult{Platform: platformID}

	fail := func(err error) store.PublishResult {
		log.WithError(err).Warn("Publish failed")
		res.Error = err.Error()
		res.At = p.now()
		p.notify(platformID, false)
		return res
	}

	text, ok := post.Variants[platformID]
	if !ok || text == "" {
		adapted, err := p.adapter.Adapt(platformID, post.Content)
		if err != nil {
			return fail(err)
		}
		text = adapted
	}
	preview, err := RenderPreview(text)
	if err != nil {
		return fail(err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	receipt, err := p.channel.Send(sendCtx, Delivery{
		PostID:   post.ID,
		Platform: platformID,
		Title:    post.Title,
		Text:     text,
		HTML:     preview,
	})
	if err != nil {
		return fail(err)
	}

	log.WithField("remote_id", receipt.RemoteID).Info("Published")
	res.OK = true
	res.RemoteID = receipt.RemoteID
	res.At = p.now()
	p.notify(platformID, true)
	return res
}

func (p *Publisher) notify(platformID string, ok bool) {
	if p.observe != nil {
		p.observe(platformID, ok)
	}
}

// PublishDue publishes every scheduled post whose time has come. It returns
// the number of posts that ended up published.
func (p *Publisher) PublishDue(ctx context.Context) (int, error) {
	due := p.store.Due(p.now())
	if len(due) == 0 {
		return 0, nil
	}
	p.logger.WithField("count", len(due)).Info("Publishing due posts")

	published := 0
	var errs []error
	for _, post := range due {
		got, err := p.Publish(ctx, post.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidState) {
				continue
			}
			errs = append(errs, fmt.Errorf("publish %s: %w", post.ID, err))
			continue
		}
		if got.Status == store.StatusPublished {
			published++
		}
	}
	return published, errors.Join(errs...)
}
