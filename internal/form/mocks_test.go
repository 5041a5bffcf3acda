package form

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/axellelanca/shortlinkctl/internal/models"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) CreateLink(ctx context.Context, req models.CreateLinkRequest) (*models.ShortLink, error) {
	args := m.Called(ctx, req)
	link, _ := args.Get(0).(*models.ShortLink)
	return link, args.Error(1)
}

func (m *mockAPI) ListLinks(ctx context.Context, filter models.ListFilter) (*models.LinkPage, error) {
	args := m.Called(ctx, filter)
	page, _ := args.Get(0).(*models.LinkPage)
	return page, args.Error(1)
}

func (m *mockAPI) DeleteLink(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAPI) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*models.DashboardStats)
	return stats, args.Error(1)
}

func (m *mockAPI) GetTrends(ctx context.Context, days int) (*models.Trends, error) {
	args := m.Called(ctx, days)
	trends, _ := args.Get(0).(*models.Trends)
	return trends, args.Error(1)
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

func (n *recordingNotifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

// kinds records the kinds an observer sees.
type kinds struct {
	mu   sync.Mutex
	seen []Kind
}

func (k *kinds) observe(s State) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.seen = append(k.seen, s.Kind())
}

func (k *kinds) All() []Kind {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]Kind(nil), k.seen...)
}
