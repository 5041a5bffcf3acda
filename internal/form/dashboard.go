package form

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/axellelanca/shortlinkctl/internal/models"
)

// DashboardFetcher is the part of the API client the dashboard needs.
type DashboardFetcher interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	GetTrends(ctx context.Context, days int) (*models.Trends, error)
}

// Dashboard is what the dashboard screen renders. Trends is nil when it was not
// requested.
type Dashboard struct {
	Stats  *models.DashboardStats `json:"stats"`
	Trends *models.Trends         `json:"trends,omitempty"`
}

// DashboardView drives the dashboard screen.
type DashboardView struct {
	machine
	client   DashboardFetcher
	notifier Notifier
}

// NewDashboardView returns an Idle dashboard controller.
func NewDashboardView(client DashboardFetcher, notifier Notifier, opts ...Option) *DashboardView {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &DashboardView{
		machine:  newMachine(buildOptions(opts)),
		client:   client,
		notifier: notifier,
	}
}

// Load fetches the aggregate counters.
func (v *DashboardView) Load(ctx context.Context) (*Dashboard, error) {
	return v.load(ctx, 0)
}

// LoadWithTrends fetches the counters and trendDays days of trends
// concurrently. Either failure fails the whole load.
func (v *DashboardView) LoadWithTrends(ctx context.Context, trendDays int) (*Dashboard, error) {
	if trendDays <= 0 {
		trendDays = 30
	}
	return v.load(ctx, trendDays)
}

func (v *DashboardView) load(ctx context.Context, trendDays int) (*Dashboard, error) {
	v.set(Submitting{})

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := v.client.GetDashboardStats(gctx)
		d.Stats = stats
		return err
	})
	if trendDays > 0 {
		g.Go(func() error {
			trends, err := v.client.GetTrends(gctx, trendDays)
			d.Trends = trends
			return err
		})
	}

	if err := g.Wait(); err != nil {
		v.set(Failed{Message: MsgAnalyticsFailed, Err: err})
		v.notifier.Error(MsgAnalyticsFailed)
		return nil, err
	}

	v.set(Success[*Dashboard]{Result: &d})
	return &d, nil
}
