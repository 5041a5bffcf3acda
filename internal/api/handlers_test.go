package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/shortlinkctl/internal/client"
	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
	"github.com/axellelanca/shortlinkctl/internal/repository"
	"github.com/axellelanca/shortlinkctl/internal/services"
	"github.com/axellelanca/shortlinkctl/internal/workers"
)

type stub struct {
	server *httptest.Server
	clicks chan models.ClickEvent
	repo   *repository.GormClickRepository
}

func newStub(t *testing.T) *stub {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.OpenDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)

	links := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	clicks := make(chan models.ClickEvent, 16)

	router := gin.New()
	srv := httptest.NewServer(router)
	SetupRoutes(router, Handlers{
		Links:     services.NewLinkService(links, clickRepo, srv.URL, nil),
		Analytics: services.NewAnalyticsService(links, clickRepo),
		Clicks:    clicks,
	})

	t.Cleanup(func() {
		srv.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &stub{server: srv, clicks: clicks, repo: clickRepo}
}

func (s *stub) expect(t *testing.T) *httpexpect.Expect {
	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  s.server.URL,
		Reporter: httpexpect.NewAssertReporter(t),
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func TestHealth(t *testing.T) {
	e := newStub(t).expect(t)
	obj := e.GET("/api/health/").Expect().Status(http.StatusOK).JSON().Object()
	obj.Value("status").String().IsEqual("healthy")
	obj.ContainsKey("timestamp")
}

func TestListLinks_EmptyEnvelope(t *testing.T) {
	e := newStub(t).expect(t)

	obj := e.GET("/api/urls/").Expect().Status(http.StatusOK).JSON().Object()
	obj.Keys().ContainsOnly("count", "next", "previous", "results")
	obj.Value("count").Number().IsEqual(0)
	obj.Value("next").IsNull()
	obj.Value("previous").IsNull()
	obj.Value("results").Array().IsEmpty()
}

func TestCreateLink(t *testing.T) {
	s := newStub(t)
	e := s.expect(t)

	obj := e.POST("/api/urls/").
		WithJSON(map[string]any{"original_url": "https://example.com/a", "custom_code": "promo2024", "title": "Promo"}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object()
	obj.Value("short_code").String().IsEqual("promo2024")
	obj.Value("short_url").String().IsEqual(s.server.URL + "/promo2024")
	obj.Value("custom_code").Boolean().IsTrue()
	obj.Value("is_active").Boolean().IsTrue()
	obj.Value("clicks").Number().IsEqual(0)

	generated := e.POST("/api/urls/").
		WithJSON(map[string]any{"original_url": "https://example.com/b"}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object()
	generated.Value("short_code").String().Length().IsEqual(6)
	generated.Value("custom_code").Boolean().IsFalse()

	e.POST("/api/urls/").
		WithJSON(map[string]any{"original_url": "notaurl"}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().
		Value("original_url").Array().Value(0).String().IsEqual("Invalid URL format")

	e.POST("/api/urls/").
		WithJSON(map[string]any{"original_url": "https://example.com", "custom_code": "promo2024"}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().
		Value("custom_code").Array().Value(0).String().IsEqual("This custom code is already taken")

	e.POST("/api/urls/").
		WithText("{").
		WithHeader("Content-Type", "application/json").
		Expect().
		Status(http.StatusBadRequest)
}

func TestListLinks(t *testing.T) {
	s := newStub(t)
	e := s.expect(t)

	for i := 0; i < services.PageSize+1; i++ {
		e.POST("/api/urls/").WithJSON(map[string]any{"original_url": "https://example.com"}).Expect().Status(http.StatusCreated)
	}
	e.POST("/api/urls/").WithJSON(map[string]any{"original_url": "https://golang.org", "custom_code": "gopher"}).
		Expect().Status(http.StatusCreated)

	first := e.GET("/api/urls/").Expect().Status(http.StatusOK).JSON().Object()
	first.Value("count").Number().IsEqual(services.PageSize + 2)
	first.Value("results").Array().Length().IsEqual(services.PageSize)
	first.Value("previous").IsNull()
	first.Value("next").String().Contains("page=2")

	second := e.GET("/api/urls/").WithQuery("page", 2).Expect().Status(http.StatusOK).JSON().Object()
	second.Value("results").Array().Length().IsEqual(2)
	second.Value("next").IsNull()
	second.Value("previous").String().NotContains("page=")

	e.GET("/api/urls/").WithQuery("page", 9).Expect().Status(http.StatusNotFound)

	search := e.GET("/api/urls/").WithQuery("search", "GOLANG").Expect().Status(http.StatusOK).JSON().Object()
	search.Value("count").Number().IsEqual(1)
	search.Value("results").Array().Value(0).Object().Value("short_code").String().IsEqual("gopher")

	e.GET("/api/urls/popular/").WithQuery("limit", 3).Expect().Status(http.StatusOK).JSON().Array().Length().IsEqual(3)
	e.GET("/api/urls/recent/").Expect().Status(http.StatusOK).JSON().Array().Length().IsEqual(services.DefaultLimit)
	e.GET("/api/urls/recent/").WithQuery("limit", "x").Expect().Status(http.StatusBadRequest)
}

func TestGetUpdateDelete(t *testing.T) {
	e := newStub(t).expect(t)

	id := e.POST("/api/urls/").WithJSON(map[string]any{"original_url": "https://example.com"}).
		Expect().Status(http.StatusCreated).
		JSON().Object().Value("id").Number().Raw()
	path := "/api/urls/" + formatID(id) + "/"

	e.GET(path).Expect().Status(http.StatusOK).JSON().Object().Value("original_url").String().IsEqual("https://example.com")

	e.PATCH(path).WithJSON(map[string]any{"title": "Home"}).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("title").String().IsEqual("Home")

	e.GET(path + "stats/").Expect().Status(http.StatusOK).JSON().Object().Value("total_clicks").Number().IsEqual(0)

	e.DELETE(path).Expect().Status(http.StatusNoContent).NoContent()
	e.DELETE(path).Expect().Status(http.StatusNotFound).JSON().Object().Value("detail").String().IsEqual("Not found.")
	e.GET(path).Expect().Status(http.StatusNotFound)
	e.GET("/api/urls/abc/").Expect().Status(http.StatusNotFound)
}

func TestRedirect(t *testing.T) {
	s := newStub(t)
	e := s.expect(t)

	e.POST("/api/urls/").WithJSON(map[string]any{"original_url": "https://example.com/target", "custom_code": "go123"}).
		Expect().Status(http.StatusCreated)
	e.POST("/api/urls/").WithJSON(map[string]any{
		"original_url": "https://example.com/old",
		"custom_code":  "old123",
		"expires_at":   time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	}).Expect().Status(http.StatusCreated)

	e.GET("/go123").
		WithHeader("User-Agent", "test-agent").
		WithHeader("Referer", "https://news.example").
		Expect().
		Status(http.StatusFound).
		Header("Location").IsEqual("https://example.com/target")

	select {
	case event := <-s.clicks:
		assert.Equal(t, "test-agent", event.UserAgent)
		assert.Equal(t, "https://news.example", event.Referer)
		assert.Equal(t, SessionID(event.IPAddress, "test-agent"), event.SessionID)
	case <-time.After(time.Second):
		t.Fatal("no click event queued")
	}

	e.GET("/old123").Expect().Status(http.StatusGone).Text().IsEqual("This short URL has expired")
	e.GET("/missing").Expect().Status(http.StatusNotFound)
}

func TestClientAgainstStub(t *testing.T) {
	s := newStub(t)
	wg := workers.StartClickWorkers(2, s.clicks, s.repo, nil)
	t.Cleanup(func() {
		close(s.clicks)
		wg.Wait()
	})

	ctx := context.Background()
	c, err := client.New(s.server.URL)
	require.NoError(t, err)

	link, err := c.CreateLink(ctx, models.CreateLinkRequest{OriginalURL: "https://example.com", CustomCode: "e2e123"})
	require.NoError(t, err)
	assert.Equal(t, s.server.URL+"/e2e123", link.ShortURL)

	_, err = c.CreateLink(ctx, models.CreateLinkRequest{OriginalURL: "https://example.com", CustomCode: "e2e123"})
	var reqErr *customerrors.RequestError
	require.ErrorAs(t, err, &reqErr)
	msg, ok := reqErr.FirstMessage("original_url", "custom_code")
	require.True(t, ok)
	assert.Equal(t, "This custom code is already taken", msg)

	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	for i := 0; i < 2; i++ {
		resp, err := noFollow.Get(link.ShortURL)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)
	}

	require.Eventually(t, func() bool {
		stats, err := c.GetLinkStats(ctx, link.ID)
		return err == nil && stats.TotalClicks == 2
	}, 2*time.Second, 20*time.Millisecond)

	stats, err := c.GetLinkStats(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UniqueClicks)

	dashboard, err := c.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.TotalURLs)
	assert.Equal(t, int64(2), dashboard.ClicksToday)

	trends, err := c.GetTrends(ctx, 7)
	require.NoError(t, err)
	require.Len(t, trends.Trends, 1)
	assert.Equal(t, int64(2), trends.Trends[0].TotalClicks)

	page, err := c.ListLinks(ctx, models.ListFilter{Search: "e2e"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)

	require.NoError(t, c.DeleteLink(ctx, link.ID))
	err = c.DeleteLink(ctx, link.ID)
	assert.True(t, customerrors.IsNotFound(err))

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func formatID(id float64) string {
	return strconv.FormatInt(int64(id), 10)
}
