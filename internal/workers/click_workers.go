// Package workers persists redirect hits off the request path.
package workers

import (
	"strings"
	"sync"

	"github.com/mssola/useragent"
	"go.uber.org/zap"

	"github.com/axellelanca/shortlinkctl/internal/models"
	"github.com/axellelanca/shortlinkctl/internal/repository"
)

// StartClickWorkers launches workerCount goroutines that drain events into
// clickRepo. Workers exit once events is closed; the returned WaitGroup is done
// when all of them have.
func StartClickWorkers(workerCount int, events <-chan models.ClickEvent, clickRepo repository.ClickRepository, logger *zap.Logger) *sync.WaitGroup {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("starting click workers", zap.Int("count", workerCount))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			clickWorker(events, clickRepo, logger.With(zap.Int("worker", i)))
		}()
	}
	return &wg
}

func clickWorker(events <-chan models.ClickEvent, clickRepo repository.ClickRepository, logger *zap.Logger) {
	for event := range events {
		click := NewClick(event)
		if err := clickRepo.RecordClick(click); err != nil {
			// A lost click only skews analytics; keep draining.
			logger.Error("failed to record click",
				zap.Uint("link_id", event.LinkID),
				zap.String("ip", event.IPAddress),
				zap.Error(err))
			continue
		}
		logger.Debug("click recorded", zap.Uint("link_id", event.LinkID), zap.String("device", click.DeviceType))
	}
}

// NewClick turns a raw event into a row, deriving device, browser and OS from
// the user agent.
func NewClick(event models.ClickEvent) *models.Click {
	device, browser, os := ParseUserAgent(event.UserAgent)
	return &models.Click{
		LinkID:     event.LinkID,
		IPAddress:  event.IPAddress,
		UserAgent:  event.UserAgent,
		Referer:    event.Referer,
		DeviceType: device,
		Browser:    browser,
		OS:         os,
		SessionID:  event.SessionID,
		ClickedAt:  event.Timestamp.UTC(),
	}
}

// ParseUserAgent classifies a user agent as mobile, tablet, bot or desktop and
// returns its browser and OS family. An empty user agent yields desktop with
// empty families.
func ParseUserAgent(raw string) (device, browser, os string) {
	if raw == "" {
		return "desktop", "", ""
	}
	ua := useragent.New(raw)
	browser, _ = ua.Browser()
	os = ua.OSInfo().Name

	lower := strings.ToLower(raw)
	isTablet := strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") ||
		(strings.Contains(lower, "android") && !strings.Contains(lower, "mobile"))

	switch {
	case ua.Bot():
		device = "bot"
	case isTablet:
		device = "tablet"
	case ua.Mobile():
		device = "mobile"
	default:
		device = "desktop"
	}
	return device, browser, os
}
