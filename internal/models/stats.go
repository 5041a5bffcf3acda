package models

import "time"

// TopLink is an entry of the dashboard's top links.
type TopLink struct {
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
	Clicks      int64  `json:"clicks"`
	Title       string `json:"title,omitempty"`
}

// DashboardStats is the response of GET /analytics/dashboard/.
type DashboardStats struct {
	TotalURLs           int64     `json:"total_urls"`
	TotalClicks         int64     `json:"total_clicks"`
	TotalUniqueVisitors int64     `json:"total_unique_visitors"`
	ClicksToday         int64     `json:"clicks_today"`
	ClicksThisWeek      int64     `json:"clicks_this_week"`
	TopURLs             []TopLink `json:"top_urls"`
}

// DateCount is the click count for one calendar day (YYYY-MM-DD).
type DateCount struct {
	Date  string `json:"clicked_at__date"`
	Count int64  `json:"count"`
}

// ReferrerCount is the click count for one referer.
type ReferrerCount struct {
	Referer string `json:"referer"`
	Count   int64  `json:"count"`
}

// LinkStats is the response of GET /urls/{id}/stats/.
type LinkStats struct {
	TotalClicks     int64            `json:"total_clicks"`
	UniqueClicks    int64            `json:"unique_clicks"`
	LastAccessed    *time.Time       `json:"last_accessed"`
	ClicksByDate    []DateCount      `json:"clicks_by_date"`
	ClicksByCountry map[string]int64 `json:"clicks_by_country"`
	ClicksByDevice  map[string]int64 `json:"clicks_by_device"`
	ClicksByBrowser map[string]int64 `json:"clicks_by_browser"`
	TopReferrers    []ReferrerCount  `json:"top_referrers"`
}

// TrendPoint is one day of the trends series.
type TrendPoint struct {
	Date        string `json:"date"`
	TotalClicks int64  `json:"total_clicks"`
	TotalUnique int64  `json:"total_unique"`
}

// Trends is the response of GET /analytics/trends/.
type Trends struct {
	PeriodDays int          `json:"period_days"`
	Trends     []TrendPoint `json:"trends"`
}

// HealthStatus is the response of GET /health/.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
