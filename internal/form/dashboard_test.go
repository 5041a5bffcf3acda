package form

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

func TestDashboardView_Load(t *testing.T) {
	api := &mockAPI{}
	v := NewDashboardView(api, nil)

	stats := &models.DashboardStats{TotalURLs: 4, TotalClicks: 12}
	api.On("GetDashboardStats", mock.Anything).Return(stats, nil).Once()

	d, err := v.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, d.Stats)
	assert.Nil(t, d.Trends)
	assert.Equal(t, KindSuccess, v.State().Kind())
	api.AssertNotCalled(t, "GetTrends", mock.Anything, mock.Anything)
}

func TestDashboardView_LoadWithTrends(t *testing.T) {
	api := &mockAPI{}
	v := NewDashboardView(api, nil)

	stats := &models.DashboardStats{TotalURLs: 1}
	trends := &models.Trends{PeriodDays: 7}
	api.On("GetDashboardStats", mock.Anything).Return(stats, nil).Once()
	api.On("GetTrends", mock.Anything, 7).Return(trends, nil).Once()

	d, err := v.LoadWithTrends(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, stats, d.Stats)
	assert.Equal(t, trends, d.Trends)

	s, ok := v.State().(Success[*Dashboard])
	require.True(t, ok)
	assert.Equal(t, d, s.Result)
	api.AssertExpectations(t)
}

func TestDashboardView_Failure(t *testing.T) {
	api := &mockAPI{}
	notifier := &recordingNotifier{}
	v := NewDashboardView(api, notifier)

	transportErr := fmt.Errorf("%w: connection refused", customerrors.ErrTransport)
	api.On("GetDashboardStats", mock.Anything).Return(&models.DashboardStats{}, nil).Maybe()
	api.On("GetTrends", mock.Anything, 30).Return(nil, transportErr).Once()

	d, err := v.LoadWithTrends(context.Background(), 0)
	require.ErrorIs(t, err, customerrors.ErrTransport)
	assert.Nil(t, d)

	failed, ok := v.State().(Failed)
	require.True(t, ok)
	assert.Equal(t, MsgAnalyticsFailed, failed.Message)
	assert.Equal(t, []string{MsgAnalyticsFailed}, notifier.Errors())
}
