package services

import (
	"sort"
	"time"

	"github.com/axellelanca/shortlinkctl/internal/models"
	"github.com/axellelanca/shortlinkctl/internal/repository"
)

const (
	dashboardTopLinks = 5
	// DefaultTrendDays applies when trends are requested without a period.
	DefaultTrendDays = 30
)

// AnalyticsService implements the dashboard and trends endpoints.
type AnalyticsService struct {
	linkRepo  repository.LinkRepository
	clickRepo repository.ClickRepository
	now       func() time.Time
}

// NewAnalyticsService returns an AnalyticsService.
func NewAnalyticsService(linkRepo repository.LinkRepository, clickRepo repository.ClickRepository) *AnalyticsService {
	return &AnalyticsService{linkRepo: linkRepo, clickRepo: clickRepo, now: time.Now}
}

// Dashboard sums the counters of active links and counts today's and the last
// seven days' clicks. Days are UTC days.
func (s *AnalyticsService) Dashboard() (*models.DashboardStats, error) {
	totals, err := s.linkRepo.Totals()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.clickRepo.CountClicksSince(midnight)
	if err != nil {
		return nil, err
	}
	week, err := s.clickRepo.CountClicksSince(now.Add(-7 * 24 * time.Hour))
	if err != nil {
		return nil, err
	}

	top, _, err := s.linkRepo.ListActiveLinks(repository.LinkQuery{OrderBy: models.OrderMostClicks, Limit: dashboardTopLinks})
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		TotalURLs:           totals.Links,
		TotalClicks:         totals.Clicks,
		TotalUniqueVisitors: totals.UniqueClicks,
		ClicksToday:         today,
		ClicksThisWeek:      week,
		TopURLs:             make([]models.TopLink, 0, len(top)),
	}
	for _, l := range top {
		stats.TopURLs = append(stats.TopURLs, models.TopLink{
			ShortCode:   l.ShortCode,
			OriginalURL: l.OriginalURL,
			Clicks:      l.Clicks,
			Title:       l.Title,
		})
	}
	return stats, nil
}

// Trends returns one point per day with clicks, from days days ago up to today.
// Unique visitors are distinct sessions per link and day, summed over links.
func (s *AnalyticsService) Trends(days int) (*models.Trends, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)

	clicks, err := s.clickRepo.ClicksSince(start)
	if err != nil {
		return nil, err
	}

	type linkDay struct {
		linkID uint
		date   string
	}
	totals := map[string]int64{}
	sessions := map[linkDay]map[string]struct{}{}
	for _, c := range clicks {
		date := c.ClickedAt.UTC().Format(time.DateOnly)
		totals[date]++
		key := linkDay{c.LinkID, date}
		if sessions[key] == nil {
			sessions[key] = map[string]struct{}{}
		}
		sessions[key][c.SessionID] = struct{}{}
	}

	unique := map[string]int64{}
	for key, set := range sessions {
		unique[key.date] += int64(len(set))
	}

	trends := &models.Trends{PeriodDays: days, Trends: make([]models.TrendPoint, 0, len(totals))}
	for date, n := range totals {
		trends.Trends = append(trends.Trends, models.TrendPoint{Date: date, TotalClicks: n, TotalUnique: unique[date]})
	}
	sort.Slice(trends.Trends, func(i, j int) bool {
		return trends.Trends[i].Date < trends.Trends[j].Date
	})
	return trends, nil
}
