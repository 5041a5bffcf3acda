package services

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
	"github.com/axellelanca/shortlinkctl/internal/repository"
)

type fixture struct {
	links     *repository.GormLinkRepository
	clicks    *repository.GormClickRepository
	svc       *LinkService
	analytics *AnalyticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.OpenDatabase(filepath.Join(t.TempDir(), "stub.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	links := repository.NewLinkRepository(db)
	clicks := repository.NewClickRepository(db)
	return &fixture{
		links:     links,
		clicks:    clicks,
		svc:       NewLinkService(links, clicks, "http://sho.rt/", nil),
		analytics: NewAnalyticsService(links, clicks),
	}
}

func (f *fixture) click(t *testing.T, linkID uint, at time.Time, session, referer, device string) {
	t.Helper()
	require.NoError(t, f.clicks.RecordClick(&models.Click{
		LinkID:     linkID,
		ClickedAt:  at.UTC(),
		SessionID:  session,
		Referer:    referer,
		DeviceType: device,
		Browser:    "Firefox",
	}))
}

func TestLinkService_CreateLink(t *testing.T) {
	f := newFixture(t)

	link, err := f.svc.CreateLink(models.CreateLinkRequest{OriginalURL: "https://example.com/page"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{6}$`), link.ShortCode)
	assert.False(t, link.CustomCode)
	assert.True(t, link.IsActive)

	rendered := f.svc.ToShortLink(link)
	assert.Equal(t, "http://sho.rt/"+link.ShortCode, rendered.ShortURL)

	custom, err := f.svc.CreateLink(models.CreateLinkRequest{OriginalURL: "https://example.com", CustomCode: "promo2024"}, "")
	require.NoError(t, err)
	assert.Equal(t, "promo2024", custom.ShortCode)
	assert.True(t, custom.CustomCode)
}

func TestLinkService_CreateLinkValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   models.CreateLinkRequest
		field string
		msg   string
	}{
		{"missing url", models.CreateLinkRequest{}, "original_url", "This field is required."},
		{"bad url", models.CreateLinkRequest{OriginalURL: "not a url"}, "original_url", "Invalid URL format"},
		{"symbols", models.CreateLinkRequest{OriginalURL: "https://a.io", CustomCode: "my-code"}, "custom_code", "Custom code must be alphanumeric"},
		{"taken", models.CreateLinkRequest{OriginalURL: "https://a.io", CustomCode: "taken1"}, "custom_code", "This custom code is already taken"},
		{"too short", models.CreateLinkRequest{OriginalURL: "https://a.io", CustomCode: "ab"}, "custom_code", "Custom code must be between 3 and 20 characters"},
		{"too long", models.CreateLinkRequest{OriginalURL: "https://a.io", CustomCode: strings.Repeat("x", 21)}, "custom_code", "Ensure this field has no more than 20 characters."},
		{"long title", models.CreateLinkRequest{OriginalURL: "https://a.io", Title: strings.Repeat("t", 256)}, "title", "Ensure this field has no more than 255 characters."},
	}

	f := newFixture(t)
	_, err := f.svc.CreateLink(models.CreateLinkRequest{OriginalURL: "https://a.io", CustomCode: "taken1"}, "")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateLink(tt.req, "")
			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
			msg, ok := invalid.Fields.First(tt.field)
			require.True(t, ok, "no error for %s: %v", tt.field, invalid.Fields)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestLinkService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	link, err := f.svc.CreateLink(models.CreateLinkRequest{OriginalURL: "https://a.io"}, "")
	require.NoError(t, err)

	title := "Renamed"
	updated, err := f.svc.UpdateLink(link.ID, models.UpdateLinkRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "https://a.io", updated.OriginalURL)

	bad := "nope"
	_, err = f.svc.UpdateLink(link.ID, models.UpdateLinkRequest{OriginalURL: &bad})
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)

	require.NoError(t, f.svc.DeleteLink(link.ID))
	assert.True(t, IsNotFound(f.svc.DeleteLink(link.ID)))

	_, err = f.svc.GetLink(link.ID)
	assert.ErrorIs(t, err, customerrors.ErrLinkNotFound)

	_, total, err := f.svc.ListLinks(models.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestLinkService_ListPaging(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < PageSize+3; i++ {
		_, err := f.svc.CreateLink(models.CreateLinkRequest{OriginalURL: "https://a.io"}, "")
		require.NoError(t, err)
	}

	first, total, err := f.svc.ListLinks(models.ListFilter{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(PageSize+3), total)
	assert.Len(t, first, PageSize)

	second, _, err := f.svc.ListLinks(models.ListFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second, 3)

	popular, err := f.svc.PopularLinks(0)
	require.NoError(t, err)
	assert.Len(t, popular, DefaultLimit)
}

func TestLinkService_GetLinkStats(t *testing.T) {
	f := newFixture(t)
	link, err := f.svc.CreateLink(models.CreateLinkRequest{OriginalURL: "https://a.io"}, "")
	require.NoError(t, err)

	now := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.click(t, link.ID, now.Add(-40*24*time.Hour), "old", "https://old.example", "desktop")
	f.click(t, link.ID, now.Add(-26*time.Hour), "s1", "https://news.example", "mobile")
	f.click(t, link.ID, now.Add(-time.Hour), "s1", "https://news.example", "mobile")
	f.click(t, link.ID, now.Add(-time.Hour), "s2", "https://blog.example", "desktop")
	f.click(t, link.ID, now.Add(-time.Minute), "s3", "", "")

	stats, err := f.svc.GetLinkStats(link.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalClicks, "counters are lifetime")
	assert.Equal(t, int64(4), stats.UniqueClicks)
	assert.Equal(t, []models.DateCount{
		{Date: "2024-05-19", Count: 1},
		{Date: "2024-05-20", Count: 3},
	}, stats.ClicksByDate)
	assert.Equal(t, map[string]int64{"mobile": 2, "desktop": 1}, stats.ClicksByDevice)
	assert.Equal(t, map[string]int64{"Firefox": 4}, stats.ClicksByBrowser)
	assert.Empty(t, stats.ClicksByCountry)
	assert.Equal(t, []models.ReferrerCount{
		{Referer: "https://news.example", Count: 2},
		{Referer: "https://blog.example", Count: 1},
	}, stats.TopReferrers)
}

func TestAnalyticsService(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.CreateLink(models.CreateLinkRequest{OriginalURL: "https://a.io", Title: "A"}, "")
	require.NoError(t, err)
	b, err := f.svc.CreateLink(models.CreateLinkRequest{OriginalURL: "https://b.io"}, "")
	require.NoError(t, err)

	now := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	f.analytics.now = func() time.Time { return now }

	f.click(t, a.ID, now.Add(-10*24*time.Hour), "x", "", "")
	f.click(t, a.ID, now.Add(-3*24*time.Hour), "x", "", "")
	f.click(t, a.ID, now.Add(-time.Hour), "x", "", "")
	f.click(t, a.ID, now.Add(-time.Hour), "y", "", "")
	f.click(t, b.ID, now.Add(-time.Hour), "x", "", "")

	stats, err := f.analytics.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalURLs)
	assert.Equal(t, int64(5), stats.TotalClicks)
	assert.Equal(t, int64(3), stats.TotalUniqueVisitors)
	assert.Equal(t, int64(3), stats.ClicksToday)
	assert.Equal(t, int64(4), stats.ClicksThisWeek)
	require.Len(t, stats.TopURLs, 2)
	assert.Equal(t, models.TopLink{ShortCode: a.ShortCode, OriginalURL: "https://a.io", Clicks: 4, Title: "A"}, stats.TopURLs[0])

	trends, err := f.analytics.Trends(7)
	require.NoError(t, err)
	assert.Equal(t, 7, trends.PeriodDays)
	assert.Equal(t, []models.TrendPoint{
		{Date: "2024-05-17", TotalClicks: 1, TotalUnique: 1},
		{Date: "2024-05-20", TotalClicks: 3, TotalUnique: 3},
	}, trends.Trends)

	trends, err = f.analytics.Trends(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTrendDays, trends.PeriodDays)
	assert.Len(t, trends.Trends, 3)
}
