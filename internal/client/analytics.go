package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/axellelanca/shortlinkctl/internal/models"
)

// GetDashboardStats fetches the aggregate counters shown on the dashboard.
func (c *Client) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/analytics/dashboard/", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetTrends fetches daily click totals over the last days days.
func (c *Client) GetTrends(ctx context.Context, days int) (*models.Trends, error) {
	if days <= 0 {
		days = DefaultTrendDays
	}
	query := url.Values{"days": {strconv.Itoa(days)}}

	var trends models.Trends
	if err := c.do(ctx, http.MethodGet, "/analytics/trends/", query, nil, &trends); err != nil {
		return nil, err
	}
	return &trends, nil
}

// Health reports the API's own health endpoint.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var status models.HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health/", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
