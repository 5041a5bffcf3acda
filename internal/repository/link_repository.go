package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
)

// orderClauses maps the accepted order_by values to SQL. id breaks ties so
// pages are stable.
var orderClauses = map[string]string{
	models.OrderNewest:     "created_at DESC, id DESC",
	models.OrderOldest:     "created_at ASC, id ASC",
	models.OrderMostClicks: "clicks DESC, id DESC",
	models.OrderFewest:     "clicks ASC, id ASC",
}

// LinkQuery selects a page of active links.
type LinkQuery struct {
	Search  string
	OrderBy string // unknown values fall back to newest first
	Offset  int
	Limit   int
}

// LinkTotals are the sums over active links.
type LinkTotals struct {
	Links        int64
	Clicks       int64
	UniqueClicks int64
}

// LinkRepository is the persistence contract for links.
type LinkRepository interface {
	CreateLink(link *models.Link) error
	ShortCodeExists(shortCode string) (bool, error)
	GetActiveLinkByShortCode(shortCode string) (*models.Link, error)
	GetActiveLinkByID(id uint) (*models.Link, error)
	ListActiveLinks(q LinkQuery) ([]models.Link, int64, error)
	UpdateLink(link *models.Link) error
	DeactivateLink(id uint) error
	Totals() (LinkTotals, error)
}

// GormLinkRepository implements LinkRepository on GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

func (r *GormLinkRepository) CreateLink(link *models.Link) error {
	if err := r.db.Create(link).Error; err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// ShortCodeExists looks at every link, active or not, since codes are never reused.
func (r *GormLinkRepository) ShortCodeExists(shortCode string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Link{}).Where("short_code = ?", shortCode).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check short code %q: %w", shortCode, err)
	}
	return count > 0, nil
}

func (r *GormLinkRepository) GetActiveLinkByShortCode(shortCode string) (*models.Link, error) {
	var link models.Link
	err := r.db.Where("short_code = ? AND is_active = ?", shortCode, true).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customerrors.ErrShortCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link %q: %w", shortCode, err)
	}
	return &link, nil
}

func (r *GormLinkRepository) GetActiveLinkByID(id uint) (*models.Link, error) {
	var link models.Link
	err := r.db.Where("id = ? AND is_active = ?", id, true).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customerrors.ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get link %d: %w", id, err)
	}
	return &link, nil
}

// ListActiveLinks returns the requested window and the total number of matches.
// Search is a case-insensitive substring match on the original URL, the short
// code and the title.
func (r *GormLinkRepository) ListActiveLinks(q LinkQuery) ([]models.Link, int64, error) {
	scope := func() *gorm.DB {
		tx := r.db.Model(&models.Link{}).Where("is_active = ?", true)
		if q.Search != "" {
			pattern := "%" + strings.ToLower(q.Search) + "%"
			tx = tx.Where("LOWER(original_url) LIKE ? OR LOWER(short_code) LIKE ? OR LOWER(title) LIKE ?",
				pattern, pattern, pattern)
		}
		return tx
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count links: %w", err)
	}

	order, ok := orderClauses[q.OrderBy]
	if !ok {
		order = orderClauses[models.OrderNewest]
	}
	tx := scope().Order(order).Offset(q.Offset)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var links []models.Link
	if err := tx.Find(&links).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list links: %w", err)
	}
	return links, total, nil
}

func (r *GormLinkRepository) UpdateLink(link *models.Link) error {
	if err := r.db.Save(link).Error; err != nil {
		return fmt.Errorf("failed to update link %d: %w", link.ID, err)
	}
	return nil
}

// DeactivateLink soft deletes an active link.
func (r *GormLinkRepository) DeactivateLink(id uint) error {
	res := r.db.Model(&models.Link{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to deactivate link %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return customerrors.ErrLinkNotFound
	}
	return nil
}

func (r *GormLinkRepository) Totals() (LinkTotals, error) {
	var totals LinkTotals
	err := r.db.Model(&models.Link{}).
		Select("COUNT(*) AS links, COALESCE(SUM(clicks), 0) AS clicks, COALESCE(SUM(unique_clicks), 0) AS unique_clicks").
		Where("is_active = ?", true).
		Scan(&totals).Error
	if err != nil {
		return LinkTotals{}, fmt.Errorf("failed to sum links: %w", err)
	}
	return totals, nil
}
