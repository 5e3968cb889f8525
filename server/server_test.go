package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_dashboard/analytics"
	"social_dashboard/generator"
	"social_dashboard/platform"
	"social_dashboard/publisher"
	"social_dashboard/scheduler"
	"social_dashboard/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type failingLLM struct{ err error }

func (f failingLLM) Complete(context.Context, generator.Prompt) (string, error) {
	return "", f.err
}

type fakeJobs struct {
	ran []string
}

func (f *fakeJobs) ListJobs() []scheduler.JobInfo {
	return []scheduler.JobInfo{{Name: "publish-due", Schedule: "@every 1m"}}
}

func (f *fakeJobs) RunNow(_ context.Context, name string) error {
	f.ran = append(f.ran, name)
	return nil
}

type testEnv struct {
	router  *gin.Engine
	store   *store.Store
	metrics *Metrics
	jobs    *fakeJobs
}

func newTestEnv(t *testing.T, llm generator.LLMClient) *testEnv {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	st := store.New()
	metrics := NewMetrics()
	adapter := platform.NewAdapter(rand.New(rand.NewPCG(9, 10)))
	pub, err := publisher.New(st, publisher.NewSimulatedChannel(0, 0, nil), adapter, logger,
		publisher.WithObserver(metrics.ObservePublish))
	require.NoError(t, err)
	agent, err := generator.NewAgent(llm)
	require.NoError(t, err)
	jobs := &fakeJobs{}

	srv, err := New(Deps{
		Store:     st,
		Publisher: pub,
		Agent:     agent,
		Provider:  "mock",
		Adapter:   adapter,
		Simulator: analytics.NewSimulator(rand.New(rand.NewPCG(1, 1)), logger),
		Jobs:      jobs,
		Metrics:   metrics,
		Logger:    logger,
	})
	require.NoError(t, err)
	return &testEnv{router: srv.Routes(), store: st, metrics: metrics, jobs: jobs}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestHealthAndRequestID(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.HTTPRequests.WithLabelValues("GET", "/health", "200")))

	w = env.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})
	w := env.do(t, http.MethodOptions, "/api/posts", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPlatforms(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	w := env.do(t, http.MethodGet, "/api/platforms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	profiles := decode[[]platform.Profile](t, w)
	assert.Len(t, profiles, 7)

	w = env.do(t, http.MethodGet, "/api/platforms/twitter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 280, decode[platform.Profile](t, w).TextLimit)

	w = env.do(t, http.MethodGet, "/api/platforms/myspace", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[apiError](t, w).Error, "unknown platform")
}

func TestAdaptScoreAnalyze(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})
	long := strings.Repeat("Check out our new release notes at https://example.com today. ", 8)

	w := env.do(t, http.MethodPost, "/api/content/adapt", contentReq{Platform: "twitter", Text: long})
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[platform.ContentVariant](t, w)
	assert.LessOrEqual(t, v.CharacterCount, 280)
	assert.Contains(t, v.Text, "shortlink")
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Adaptations.WithLabelValues("twitter")))

	w = env.do(t, http.MethodPost, "/api/content/score", contentReq{Platform: "facebook", Text: "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	score := decode[struct {
		Score int `json:"score"`
	}](t, w)
	assert.LessOrEqual(t, score.Score, 25)

	w = env.do(t, http.MethodPost, "/api/content/analyze", contentReq{Platform: "facebook", Text: "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	analysis := decode[platform.ContentVariant](t, w)
	assert.False(t, analysis.Perfect)
	assert.NotEmpty(t, analysis.Findings)

	w = env.do(t, http.MethodPost, "/api/content/analyze", contentReq{Platform: "orkut", Text: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/content/score", map[string]string{"text": "no platform"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVariantsAndPreview(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	w := env.do(t, http.MethodPost, "/api/content/variants", variantsReq{Text: "Our bakery opens a second shop downtown next week."})
	require.Equal(t, http.StatusOK, w.Code)
	variants := decode[[]platform.ContentVariant](t, w)
	require.Len(t, variants, 7)
	for _, v := range variants {
		prof, _ := platform.Lookup(v.PlatformID)
		assert.LessOrEqual(t, v.CharacterCount, prof.TextLimit)
	}

	w = env.do(t, http.MethodPost, "/api/content/variants", variantsReq{Text: "x", Platforms: []string{"twitter", "bebo"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/content/preview", previewReq{Text: "Hello #world"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["html"], `<span class="hashtag">#world</span>`)
}

func TestPostLifecycle(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	w := env.do(t, http.MethodPost, "/api/posts", createPostReq{
		Title:     "Grand opening",
		Content:   "Our second shop opens downtown on Saturday. Come by for free coffee!",
		Platforms: []string{"twitter", "instagram"},
		AutoAdapt: true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[store.Post](t, w)
	assert.Equal(t, store.StatusDraft, post.Status)
	assert.Len(t, post.Variants, 2)

	w = env.do(t, http.MethodGet, "/api/posts/"+post.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	title := "Grand opening!"
	w = env.do(t, http.MethodPut, "/api/posts/"+post.ID, store.Patch{Title: &title})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, title, decode[store.Post](t, w).Title)

	w = env.do(t, http.MethodPost, "/api/posts/"+post.ID+"/schedule", map[string]any{"scheduled_at": time.Now().Add(-time.Hour)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/posts/"+post.ID+"/schedule", map[string]any{"scheduled_at": time.Now().Add(time.Hour)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.StatusScheduled, decode[store.Post](t, w).Status)

	w = env.do(t, http.MethodGet, "/api/posts?status=scheduled", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]store.Post](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/posts?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/posts/"+post.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	published := decode[store.Post](t, w)
	assert.Equal(t, store.StatusPublished, published.Status)
	assert.True(t, published.Results["instagram"].OK)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.Publishes.WithLabelValues("twitter", "ok")))

	w = env.do(t, http.MethodPost, "/api/posts/"+post.ID+"/publish", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, http.MethodPut, "/api/posts/"+post.ID, store.Patch{Title: &title})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodDelete, "/api/posts/"+post.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, "/api/posts/"+post.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	w := env.do(t, http.MethodPost, "/api/posts", createPostReq{Content: "", Platforms: []string{"twitter"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/posts", createPostReq{Content: "hi", Platforms: []string{"friendster"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	past := time.Now().Add(-time.Minute)
	w = env.do(t, http.MethodPost, "/api/posts", createPostReq{Content: "hi", Platforms: []string{"twitter"}, ScheduledAt: &past})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.store.List(store.Filter{}), "rejected schedule does not leave a draft behind")
}

func TestAnalyticsAndExport(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})
	post, err := env.store.Create(store.Post{Title: "Hello", Content: "Hello world, what do you think?", Platforms: []string{"linkedin"}})
	require.NoError(t, err)
	_, err = env.store.RecordResults(post.ID, []store.PublishResult{{Platform: "linkedin", OK: true}})
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/analytics/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[map[string]int](t, w)["updated"])

	w = env.do(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[analytics.Summary](t, w)
	assert.Equal(t, 1, sum.TotalPosts)
	assert.Equal(t, 1, sum.Status.Published)
	assert.Greater(t, sum.Totals.Impressions, 0)

	w = env.do(t, http.MethodGet, "/api/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, post.ID, rows[1][0])

	w = env.do(t, http.MethodGet, "/api/export?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]store.Post](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	w := env.do(t, http.MethodPost, "/api/ai/generate", generateReq{Topic: "Summer sale", Platform: "instagram"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	g := decode[generated](t, w)
	assert.Equal(t, "Summer sale", g.Title)
	assert.NotEmpty(t, g.Content)
	require.NotNil(t, g.Variant)
	assert.Equal(t, "instagram", g.Variant.PlatformID)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.AIGenerations.WithLabelValues("mock", "ok")))

	w = env.do(t, http.MethodPost, "/api/ai/generate", generateReq{Topic: "Summer sale", Platforms: []string{"twitter", "tiktok"}})
	require.Equal(t, http.StatusOK, w.Code)
	multi := decode[struct {
		Drafts map[string]generated `json:"drafts"`
	}](t, w)
	assert.Len(t, multi.Drafts, 2)

	w = env.do(t, http.MethodPost, "/api/ai/generate", generateReq{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/ai/generate", generateReq{Topic: "x", Platform: "vine"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   generator.ErrorCode
	}{
		{"quota", &generator.ProviderError{Provider: "openai", Code: generator.CodeQuotaExceeded, Err: errors.New("insufficient_quota")}, http.StatusTooManyRequests, generator.CodeQuotaExceeded},
		{"api key", &generator.ProviderError{Provider: "gemini", Code: generator.CodeAPIKey, Err: errors.New("API key not valid")}, http.StatusUnauthorized, generator.CodeAPIKey},
		{"provider", &generator.ProviderError{Provider: "openai", Code: generator.CodeProvider, Err: errors.New("overloaded")}, http.StatusBadGateway, generator.CodeProvider},
		{"unclassified", errors.New("socket closed"), http.StatusBadGateway, generator.CodeProvider},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, failingLLM{err: tc.err})
			w := env.do(t, http.MethodPost, "/api/ai/generate", generateReq{Topic: "launch"})
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decode[apiError](t, w).Code)
		})
	}
}

func TestSessions(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	w := env.do(t, http.MethodPost, "/api/ai/sessions", generateReq{Topic: "Team offsite", Platform: "linkedin"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[sessionResp](t, w)
	require.NotEmpty(t, created.SessionID)
	assert.Len(t, created.History, 1)

	w = env.do(t, http.MethodPost, "/api/ai/sessions/"+created.SessionID, reviseReq{Comment: "mention the venue"})
	require.Equal(t, http.StatusOK, w.Code)
	revised := decode[sessionResp](t, w)
	assert.Contains(t, revised.Draft.Content, "mention the venue")
	assert.Len(t, revised.History, 2)

	w = env.do(t, http.MethodGet, "/api/ai/sessions/"+created.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, revised.Draft, decode[sessionResp](t, w).Draft)

	w = env.do(t, http.MethodPost, "/api/ai/sessions/"+created.SessionID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/ai/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	w := env.do(t, http.MethodGet, "/api/schedule/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	jobs := decode[[]scheduler.JobInfo](t, w)
	require.Len(t, jobs, 1)
	assert.Equal(t, "publish-due", jobs[0].Name)

	w = env.do(t, http.MethodPost, "/api/schedule/jobs/publish-due/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"publish-due"}, env.jobs.ran)

	w = env.do(t, http.MethodPost, "/api/schedule/jobs/unknown/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})
	env.do(t, http.MethodPost, "/api/content/adapt", contentReq{Platform: "tiktok", Text: "dance challenge"})

	w := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dashboard_adapt_total{platform="tiktok"} 1`)
	assert.Contains(t, w.Body.String(), "dashboard_http_requests_total")
}

func TestRecoveryMiddleware(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := gin.New()
	r.Use(requestID(), recovery(logger))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Request handler panic", hook.LastEntry().Message)
}

func TestPanickingRequestIsCounted(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})
	env.router.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := env.do(t, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.HTTPRequests.WithLabelValues("GET", "/boom", "500")))
}

func TestSessionCreateRejectsBlankTopic(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{})

	w := env.do(t, http.MethodPost, "/api/ai/sessions", generateReq{Topic: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "topic is required")
}

func TestSessionStoreExpiresAndEvicts(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSessionStore()
	s.now = func() time.Time { return now }
	s.max = 2

	s.set("a", &generator.Session{})
	now = now.Add(time.Minute)
	s.set("b", &generator.Session{})
	now = now.Add(time.Minute)
	s.set("c", &generator.Session{})

	_, ok := s.get("a")
	assert.False(t, ok, "least recently used session is evicted")
	_, ok = s.get("b")
	assert.True(t, ok)

	now = now.Add(sessionTTL + time.Second)
	_, ok = s.get("c")
	assert.False(t, ok, "idle session expires")
}
