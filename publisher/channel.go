package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"social_dashboard/platform"
)

// Delivery is one post rendered for one platform.
type Delivery struct {
	PostID   string `json:"post_id"`
	Platform string `json:"platform"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	HTML     string `json:"html"`
}

// Receipt identifies the published copy on the remote side.
type Receipt struct {
	RemoteID string `json:"remote_id"`
	URL      string `json:"url,omitempty"`
}

// Channel sends deliveries to a social platform or a stand-in for one.
type Channel interface {
	Send(ctx context.Context, d Delivery) (Receipt, error)
}

// SimulatedChannel pretends to publish: it waits Delay and then fails with
// probability FailureRate.
type SimulatedChannel struct {
	Delay       time.Duration
	FailureRate float64

	mu  sync.Mutex
	rnd platform.Random
}

// NewSimulatedChannel returns a channel drawing failures from rnd; nil means
// platform.SystemRandom.
func NewSimulatedChannel(delay time.Duration, failureRate float64, rnd platform.Random) *SimulatedChannel {
	if rnd == nil {
		rnd = platform.SystemRandom()
	}
	return &SimulatedChannel{Delay: delay, FailureRate: failureRate, rnd: rnd}
}

func (c *SimulatedChannel) Send(ctx context.Context, d Delivery) (Receipt, error) {
	if c.Delay > 0 {
		t := time.NewTimer(c.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-t.C:
		}
	}
	if c.fails() {
		return Receipt{}, fmt.Errorf("%s rejected the post (simulated)", d.Platform)
	}
	id := uuid.NewString()
	return Receipt{RemoteID: id, URL: fmt.Sprintf("https://%s.example/posts/%s", d.Platform, id)}, nil
}

func (c *SimulatedChannel) fails() bool {
	if c.FailureRate <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.rnd.IntN(10000)) < c.FailureRate*10000
}

// WebhookChannel posts each delivery as JSON to URL.
type WebhookChannel struct {
	URL    string
	client *http.Client
}

type webhookResp struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

func NewWebhookChannel(url string, client *http.Client) (*WebhookChannel, error) {
	if url == "" {
		return nil, errors.New("webhook url is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &WebhookChannel{URL: url, client: client}, nil
}

func (c *WebhookChannel) Send(ctx context.Context, d Delivery) (Receipt, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return Receipt{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Receipt{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, err
	}
	var data webhookResp
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil && resp.StatusCode < 300 {
			return Receipt{}, fmt.Errorf("decode webhook response: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		msg := data.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Receipt{}, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, msg)
	}
	if data.ID == "" {
		data.ID = uuid.NewString()
	}
	return Receipt{RemoteID: data.ID, URL: data.URL}, nil
}
