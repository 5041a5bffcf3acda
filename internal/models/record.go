package models

import "time"

// Link is the stub server's persisted row for a short link.
type Link struct {
	ID           uint   `gorm:"primaryKey"`
	OriginalURL  string `gorm:"size:2048;not null;index"`
	ShortCode    string `gorm:"uniqueIndex;size:20;not null"`
	CustomCode   bool
	Title        string `gorm:"size:255"`
	Description  string
	Clicks       int64 `gorm:"not null;index"`
	UniqueClicks int64 `gorm:"not null"`
	LastAccessed *time.Time
	IsActive     bool `gorm:"not null;index"`
	ExpiresAt    *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
	CreatedByIP  string    `gorm:"size:50"`
}

// IsExpired reports whether the link has an expiry in the past.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// ToShortLink renders the row as the API representation. baseURL is the public
// origin short URLs are built on.
func (l *Link) ToShortLink(baseURL string, now time.Time) ShortLink {
	return ShortLink{
		ID:           int64(l.ID),
		OriginalURL:  l.OriginalURL,
		ShortCode:    l.ShortCode,
		ShortURL:     baseURL + "/" + l.ShortCode,
		CustomCode:   l.CustomCode,
		Title:        l.Title,
		Description:  l.Description,
		Clicks:       l.Clicks,
		UniqueClicks: l.UniqueClicks,
		LastAccessed: l.LastAccessed,
		IsActive:     l.IsActive,
		ExpiresAt:    l.ExpiresAt,
		IsExpired:    l.IsExpired(now),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// Click is one recorded redirect.
type Click struct {
	ID     uint `gorm:"primaryKey"`
	LinkID uint `gorm:"index"`
	Link   Link `gorm:"foreignKey:LinkID"`

	IPAddress  string `gorm:"size:50"`
	UserAgent  string
	Referer    string `gorm:"size:2048"`
	Country    string `gorm:"size:100"`
	City       string `gorm:"size:100"`
	DeviceType string `gorm:"size:50"`
	Browser    string `gorm:"size:100"`
	OS         string `gorm:"size:100"`
	SessionID  string `gorm:"size:100;index"`
	ClickedAt  time.Time `gorm:"index"`
}
