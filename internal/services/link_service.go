// Package services holds the stub server's business rules on top of the
// repositories.
package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
	"github.com/axellelanca/shortlinkctl/internal/repository"
)

const (
	codeAlphabet   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength     = 6
	maxCodeRetries = 5

	// PageSize is the number of links per list page.
	PageSize = 20
	// DefaultLimit applies to popular and recent when no limit is given.
	DefaultLimit = 10
	// StatsWindow bounds the clicks a link's stats look at.
	StatsWindow = 30 * 24 * time.Hour
	maxReferrers = 10
)

// InvalidInputError carries per-field messages for a rejected create or update.
type InvalidInputError struct {
	Fields customerrors.FieldErrors
}

func (e *InvalidInputError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.Fields.Names() {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// LinkService implements the link endpoints.
type LinkService struct {
	linkRepo  repository.LinkRepository
	clickRepo repository.ClickRepository
	baseURL   string
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLinkService returns a LinkService. baseURL is the public origin short URLs
// are built on, without a trailing slash.
func NewLinkService(linkRepo repository.LinkRepository, clickRepo repository.ClickRepository, baseURL string, logger *zap.Logger) *LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkService{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		baseURL:   strings.TrimRight(baseURL, "/"),
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// ToShortLink renders a row with this server's base URL.
func (s *LinkService) ToShortLink(link *models.Link) models.ShortLink {
	return link.ToShortLink(s.baseURL, s.now())
}

// GenerateShortCode returns a random code that no link uses yet.
func (s *LinkService) GenerateShortCode() (string, error) {
	for i := 0; i < maxCodeRetries; i++ {
		code, err := gonanoid.Generate(codeAlphabet, codeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}
		exists, err := s.linkRepo.ShortCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.logger.Warn("short code collision, retrying", zap.String("code", code), zap.Int("attempt", i+1))
	}
	return "", customerrors.ErrShortCodeGenerationFailed
}

// CreateLink validates req and stores a new link. Validation failures are
// returned as *InvalidInputError.
func (s *LinkService) CreateLink(req models.CreateLinkRequest, creatorIP string) (*models.Link, error) {
	fields := customerrors.FieldErrors{}
	s.checkOriginalURL(fields, req.OriginalURL)
	s.checkTitle(fields, req.Title)
	if err := s.checkCustomCode(fields, req.CustomCode); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, &InvalidInputError{Fields: fields}
	}

	link := &models.Link{
		OriginalURL: req.OriginalURL,
		Title:       req.Title,
		Description: req.Description,
		ExpiresAt:   req.ExpiresAt,
		IsActive:    true,
		CreatedByIP: creatorIP,
	}
	if req.CustomCode != "" {
		link.ShortCode = req.CustomCode
		link.CustomCode = true
	} else {
		code, err := s.GenerateShortCode()
		if err != nil {
			return nil, err
		}
		link.ShortCode = code
	}

	if err := s.linkRepo.CreateLink(link); err != nil {
		return nil, err
	}
	s.logger.Info("link created", zap.Uint("id", link.ID), zap.String("short_code", link.ShortCode))
	return link, nil
}

func (s *LinkService) checkOriginalURL(fields customerrors.FieldErrors, raw string) {
	switch {
	case raw == "":
		fields.Add("original_url", "This field is required.")
	case utf8.RuneCountInString(raw) > 2048:
		fields.Add("original_url", "Ensure this field has no more than 2048 characters.")
	case s.validate.Var(raw, "http_url") != nil:
		fields.Add("original_url", "Invalid URL format")
	}
}

func (s *LinkService) checkTitle(fields customerrors.FieldErrors, title string) {
	if utf8.RuneCountInString(title) > 255 {
		fields.Add("title", "Ensure this field has no more than 255 characters.")
	}
}

// checkCustomCode applies the rules in the order the API reports them:
// length cap, alphabet, availability, then minimum length.
func (s *LinkService) checkCustomCode(fields customerrors.FieldErrors, code string) error {
	if code == "" {
		return nil
	}
	n := utf8.RuneCountInString(code)
	if n > 20 {
		fields.Add("custom_code", "Ensure this field has no more than 20 characters.")
		return nil
	}
	if s.validate.Var(code, "alphanum") != nil {
		fields.Add("custom_code", "Custom code must be alphanumeric")
		return nil
	}
	exists, err := s.linkRepo.ShortCodeExists(code)
	if err != nil {
		return err
	}
	if exists {
		fields.Add("custom_code", "This custom code is already taken")
		return nil
	}
	if n < 3 {
		fields.Add("custom_code", "Custom code must be between 3 and 20 characters")
	}
	return nil
}

// GetLink returns an active link.
func (s *LinkService) GetLink(id uint) (*models.Link, error) {
	return s.linkRepo.GetActiveLinkByID(id)
}

// GetLinkByShortCode resolves an active link for redirection.
func (s *LinkService) GetLinkByShortCode(shortCode string) (*models.Link, error) {
	return s.linkRepo.GetActiveLinkByShortCode(shortCode)
}

// ListLinks returns one page of active links and the total number of matches.
// Pages start at 1; anything lower is treated as 1.
func (s *LinkService) ListLinks(filter models.ListFilter) ([]models.Link, int64, error) {
	page := max(filter.Page, 1)
	return s.linkRepo.ListActiveLinks(repository.LinkQuery{
		Search:  filter.Search,
		OrderBy: filter.OrderBy,
		Offset:  (page - 1) * PageSize,
		Limit:   PageSize,
	})
}

// PopularLinks returns the most clicked active links.
func (s *LinkService) PopularLinks(limit int) ([]models.Link, error) {
	return s.topLinks(models.OrderMostClicks, limit)
}

// RecentLinks returns the newest active links.
func (s *LinkService) RecentLinks(limit int) ([]models.Link, error) {
	return s.topLinks(models.OrderNewest, limit)
}

func (s *LinkService) topLinks(orderBy string, limit int) ([]models.Link, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	links, _, err := s.linkRepo.ListActiveLinks(repository.LinkQuery{OrderBy: orderBy, Limit: limit})
	return links, err
}

// UpdateLink applies the non-nil fields of req to an active link.
func (s *LinkService) UpdateLink(id uint, req models.UpdateLinkRequest) (*models.Link, error) {
	link, err := s.linkRepo.GetActiveLinkByID(id)
	if err != nil {
		return nil, err
	}

	fields := customerrors.FieldErrors{}
	if req.OriginalURL != nil {
		s.checkOriginalURL(fields, *req.OriginalURL)
	}
	if req.Title != nil {
		s.checkTitle(fields, *req.Title)
	}
	if len(fields) > 0 {
		return nil, &InvalidInputError{Fields: fields}
	}

	if req.OriginalURL != nil {
		link.OriginalURL = *req.OriginalURL
	}
	if req.Title != nil {
		link.Title = *req.Title
	}
	if req.Description != nil {
		link.Description = *req.Description
	}
	if req.ExpiresAt != nil {
		link.ExpiresAt = req.ExpiresAt
	}
	if req.IsActive != nil {
		link.IsActive = *req.IsActive
	}

	if err := s.linkRepo.UpdateLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// DeleteLink soft deletes an active link.
func (s *LinkService) DeleteLink(id uint) error {
	if err := s.linkRepo.DeactivateLink(id); err != nil {
		return err
	}
	s.logger.Info("link deactivated", zap.Uint("id", id))
	return nil
}

// GetLinkStats breaks down the last 30 days of clicks of an active link.
func (s *LinkService) GetLinkStats(id uint) (*models.LinkStats, error) {
	link, err := s.linkRepo.GetActiveLinkByID(id)
	if err != nil {
		return nil, err
	}
	clicks, err := s.clickRepo.ClicksForLinkSince(link.ID, s.now().UTC().Add(-StatsWindow))
	if err != nil {
		return nil, err
	}

	stats := &models.LinkStats{
		TotalClicks:     link.Clicks,
		UniqueClicks:    link.UniqueClicks,
		LastAccessed:    link.LastAccessed,
		ClicksByDate:    []models.DateCount{},
		ClicksByCountry: map[string]int64{},
		ClicksByDevice:  map[string]int64{},
		ClicksByBrowser: map[string]int64{},
		TopReferrers:    []models.ReferrerCount{},
	}

	byDate := map[string]int64{}
	referrers := map[string]int64{}
	for _, c := range clicks {
		byDate[c.ClickedAt.UTC().Format(time.DateOnly)]++
		countNonEmpty(stats.ClicksByCountry, c.Country)
		countNonEmpty(stats.ClicksByDevice, c.DeviceType)
		countNonEmpty(stats.ClicksByBrowser, c.Browser)
		countNonEmpty(referrers, c.Referer)
	}

	for date, n := range byDate {
		stats.ClicksByDate = append(stats.ClicksByDate, models.DateCount{Date: date, Count: n})
	}
	sort.Slice(stats.ClicksByDate, func(i, j int) bool {
		return stats.ClicksByDate[i].Date < stats.ClicksByDate[j].Date
	})

	for ref, n := range referrers {
		stats.TopReferrers = append(stats.TopReferrers, models.ReferrerCount{Referer: ref, Count: n})
	}
	sort.Slice(stats.TopReferrers, func(i, j int) bool {
		a, b := stats.TopReferrers[i], stats.TopReferrers[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Referer < b.Referer
	})
	if len(stats.TopReferrers) > maxReferrers {
		stats.TopReferrers = stats.TopReferrers[:maxReferrers]
	}
	return stats, nil
}

func countNonEmpty(m map[string]int64, key string) {
	if key != "" {
		m[key]++
	}
}

// IsNotFound reports whether err means the requested link does not exist or
// is inactive.
func IsNotFound(err error) bool {
	return errors.Is(err, customerrors.ErrLinkNotFound) || errors.Is(err, customerrors.ErrShortCodeNotFound)
}
