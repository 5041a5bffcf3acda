package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedLink(t *testing.T, repo *GormLinkRepository, code, url, title string, clicks int64, created time.Time) *models.Link {
	t.Helper()
	link := &models.Link{
		ShortCode:   code,
		OriginalURL: url,
		Title:       title,
		Clicks:      clicks,
		IsActive:    true,
		CreatedAt:   created,
	}
	require.NoError(t, repo.CreateLink(link))
	return link
}

func TestLinkRepository_ListActiveLinks(t *testing.T) {
	repo := NewLinkRepository(openTestDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedLink(t, repo, "alpha1", "https://example.com/a", "First", 5, base)
	seedLink(t, repo, "beta22", "https://golang.org", "Go", 9, base.Add(time.Hour))
	seedLink(t, repo, "gamma3", "https://EXAMPLE.com/c", "", 1, base.Add(2*time.Hour))
	gone := seedLink(t, repo, "delta4", "https://example.com/d", "", 100, base.Add(3*time.Hour))
	require.NoError(t, repo.DeactivateLink(gone.ID))

	codes := func(links []models.Link) []string {
		out := make([]string, 0, len(links))
		for _, l := range links {
			out = append(out, l.ShortCode)
		}
		return out
	}

	links, total, err := repo.ListActiveLinks(LinkQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"gamma3", "beta22", "alpha1"}, codes(links))

	links, total, err = repo.ListActiveLinks(LinkQuery{Search: "Example", OrderBy: models.OrderOldest})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"alpha1", "gamma3"}, codes(links))

	links, _, err = repo.ListActiveLinks(LinkQuery{Search: "go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"beta22"}, codes(links))

	links, total, err = repo.ListActiveLinks(LinkQuery{OrderBy: models.OrderMostClicks, Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"alpha1"}, codes(links))
}

func TestLinkRepository_Lookups(t *testing.T) {
	repo := NewLinkRepository(openTestDB(t))
	link := seedLink(t, repo, "promo1", "https://example.com", "", 0, time.Now())

	exists, err := repo.ShortCodeExists("promo1")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetActiveLinkByShortCode("promo1")
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)

	_, err = repo.GetActiveLinkByShortCode("nope")
	assert.ErrorIs(t, err, customerrors.ErrShortCodeNotFound)

	require.NoError(t, repo.DeactivateLink(link.ID))
	assert.ErrorIs(t, repo.DeactivateLink(link.ID), customerrors.ErrLinkNotFound)

	_, err = repo.GetActiveLinkByID(link.ID)
	assert.ErrorIs(t, err, customerrors.ErrLinkNotFound)

	exists, err = repo.ShortCodeExists("promo1")
	require.NoError(t, err)
	assert.True(t, exists, "inactive links keep their code")
}

func TestClickRepository_RecordClick(t *testing.T) {
	db := openTestDB(t)
	links := NewLinkRepository(db)
	clicks := NewClickRepository(db)
	link := seedLink(t, links, "abc123", "https://example.com", "", 0, time.Now())

	now := time.Now().UTC()
	for _, session := range []string{"s1", "s1", "s2"} {
		require.NoError(t, clicks.RecordClick(&models.Click{LinkID: link.ID, SessionID: session, ClickedAt: now}))
	}

	got, err := links.GetActiveLinkByID(link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Clicks)
	assert.Equal(t, int64(2), got.UniqueClicks)
	require.NotNil(t, got.LastAccessed)

	totals, err := links.Totals()
	require.NoError(t, err)
	assert.Equal(t, LinkTotals{Links: 1, Clicks: 3, UniqueClicks: 2}, totals)

	n, err := clicks.CountClicksSince(now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = clicks.CountClicksSince(now.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := clicks.ClicksForLinkSince(link.ID, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
