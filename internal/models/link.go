package models

import "time"

// ShortLink is a shortened link as returned by the API.
type ShortLink struct {
	ID           int64      `json:"id"`
	OriginalURL  string     `json:"original_url"`
	ShortCode    string     `json:"short_code"`
	ShortURL     string     `json:"short_url"`
	CustomCode   bool       `json:"custom_code"`
	Title        string     `json:"title,omitempty"`
	Description  string     `json:"description,omitempty"`
	Clicks       int64      `json:"clicks"`
	UniqueClicks int64      `json:"unique_clicks"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
	IsActive     bool       `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	IsExpired    bool       `json:"is_expired"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	QRCodeURL    string     `json:"qr_code_url,omitempty"`
}

// CreateLinkRequest is the body of POST /urls/.
type CreateLinkRequest struct {
	OriginalURL string     `json:"original_url" validate:"required,weburl"`
	CustomCode  string     `json:"custom_code,omitempty" validate:"omitempty,min=3,max=20,alphanum"`
	Title       string     `json:"title,omitempty" validate:"omitempty,max=255"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateLinkRequest is the body of PATCH /urls/{id}/. Nil fields are left untouched.
type UpdateLinkRequest struct {
	OriginalURL *string    `json:"original_url,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

// Orderings accepted by the list endpoint.
const (
	OrderNewest     = "-created_at"
	OrderOldest     = "created_at"
	OrderMostClicks = "-clicks"
	OrderFewest     = "clicks"
)

// ValidOrderings lists every order_by value the server honours.
var ValidOrderings = []string{OrderOldest, OrderNewest, OrderFewest, OrderMostClicks}

// ListFilter narrows GET /urls/. Zero values are not sent.
type ListFilter struct {
	Page    int
	Search  string
	OrderBy string
}

// LinkPage is the paginated envelope returned by GET /urls/.
type LinkPage struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []ShortLink `json:"results"`
}
