package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/axellelanca/shortlinkctl/internal/models"
)

// ClickRepository is the persistence contract for clicks.
type ClickRepository interface {
	RecordClick(click *models.Click) error
	ClicksSince(since time.Time) ([]models.Click, error)
	ClicksForLinkSince(linkID uint, since time.Time) ([]models.Click, error)
	CountClicksSince(since time.Time) (int64, error)
}

// GormClickRepository implements ClickRepository on GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository returns a GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// RecordClick stores the click and bumps the link counters in one transaction.
// The click counts as unique when its session has not hit the link before.
// ClickedAt must be UTC: sqlite compares the stored timestamps as text.
func (r *GormClickRepository) RecordClick(click *models.Click) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&models.Click{}).
			Where("link_id = ? AND session_id = ?", click.LinkID, click.SessionID).
			Count(&seen).Error; err != nil {
			return fmt.Errorf("failed to look up session: %w", err)
		}

		if err := tx.Omit("Link").Create(click).Error; err != nil {
			return fmt.Errorf("failed to create click: %w", err)
		}

		updates := map[string]any{
			"clicks":        gorm.Expr("clicks + ?", 1),
			"last_accessed": click.ClickedAt,
		}
		if seen == 0 {
			updates["unique_clicks"] = gorm.Expr("unique_clicks + ?", 1)
		}
		if err := tx.Model(&models.Link{}).Where("id = ?", click.LinkID).UpdateColumns(updates).Error; err != nil {
			return fmt.Errorf("failed to update counters of link %d: %w", click.LinkID, err)
		}
		return nil
	})
}

func (r *GormClickRepository) ClicksSince(since time.Time) ([]models.Click, error) {
	var clicks []models.Click
	if err := r.db.Where("clicked_at >= ?", since).Order("clicked_at ASC").Find(&clicks).Error; err != nil {
		return nil, fmt.Errorf("failed to load clicks: %w", err)
	}
	return clicks, nil
}

func (r *GormClickRepository) ClicksForLinkSince(linkID uint, since time.Time) ([]models.Click, error) {
	var clicks []models.Click
	err := r.db.Where("link_id = ? AND clicked_at >= ?", linkID, since).
		Order("clicked_at ASC").
		Find(&clicks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks for link ID %d: %w", linkID, err)
	}
	return clicks, nil
}

func (r *GormClickRepository) CountClicksSince(since time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Click{}).Where("clicked_at >= ?", since).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}
