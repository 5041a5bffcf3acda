package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/axellelanca/shortlinkctl/internal/models"
)

// StatsFetcher is the part of the API client the monitor polls.
type StatsFetcher interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// Change is one dashboard counter that moved between two polls.
type Change struct {
	Counter  string
	Previous int64
	Current  int64
}

// Delta returns Current - Previous.
func (c Change) Delta() int64 {
	return c.Current - c.Previous
}

// UpdateFunc receives every successful snapshot and the counters that changed
// since the previous one (nil on the first poll).
type UpdateFunc func(stats *models.DashboardStats, changes []Change)

// DashboardMonitor polls the dashboard stats periodically and reports which
// counters changed between polls.
type DashboardMonitor struct {
	fetcher  StatsFetcher
	interval time.Duration
	logger   *zap.Logger
	onUpdate UpdateFunc

	mu   sync.Mutex
	last *models.DashboardStats // nil until the first successful poll
}

// NewDashboardMonitor creates a monitor. onUpdate may be nil.
func NewDashboardMonitor(fetcher StatsFetcher, interval time.Duration, logger *zap.Logger, onUpdate UpdateFunc) *DashboardMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardMonitor{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger,
		onUpdate: onUpdate,
	}
}

// Start polls immediately, then every interval, until ctx is cancelled.
// A failed poll is logged and the loop goes on.
func (m *DashboardMonitor) Start(ctx context.Context) {
	m.logger.Info("starting dashboard monitor", zap.Duration("interval", m.interval))
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("dashboard monitor stopped")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *DashboardMonitor) poll(ctx context.Context) {
	if _, err := m.Check(ctx); err != nil && ctx.Err() == nil {
		m.logger.Warn("dashboard poll failed", zap.Error(err))
	}
}

// Check fetches one snapshot, records it and returns the changed counters.
func (m *DashboardMonitor) Check(ctx context.Context) ([]Change, error) {
	stats, err := m.fetcher.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	previous := m.last
	m.last = stats
	m.mu.Unlock()

	var changes []Change
	if previous == nil {
		m.logger.Info("initial dashboard snapshot",
			zap.Int64("total_urls", stats.TotalURLs),
			zap.Int64("total_clicks", stats.TotalClicks))
	} else {
		changes = Diff(previous, stats)
		for _, c := range changes {
			m.logger.Info("dashboard counter changed",
				zap.String("counter", c.Counter),
				zap.Int64("previous", c.Previous),
				zap.Int64("current", c.Current))
		}
	}

	if m.onUpdate != nil {
		m.onUpdate(stats, changes)
	}
	return changes, nil
}

// Last returns the last successful snapshot, or nil.
func (m *DashboardMonitor) Last() *models.DashboardStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Diff lists the counters that differ between prev and cur.
func Diff(prev, cur *models.DashboardStats) []Change {
	pairs := []struct {
		name      string
		prev, cur int64
	}{
		{"total_urls", prev.TotalURLs, cur.TotalURLs},
		{"total_clicks", prev.TotalClicks, cur.TotalClicks},
		{"total_unique_visitors", prev.TotalUniqueVisitors, cur.TotalUniqueVisitors},
		{"clicks_today", prev.ClicksToday, cur.ClicksToday},
		{"clicks_this_week", prev.ClicksThisWeek, cur.ClicksThisWeek},
	}

	var changes []Change
	for _, p := range pairs {
		if p.prev != p.cur {
			changes = append(changes, Change{Counter: p.name, Previous: p.prev, Current: p.cur})
		}
	}
	return changes
}
