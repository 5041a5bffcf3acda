package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/axellelanca/shortlinkctl/internal/models"
)

// CreateLink submits a new link. Server-side validation failures (bad URL,
// taken custom code...) come back as *errors.RequestError carrying the field
// errors.
func (c *Client) CreateLink(ctx context.Context, req models.CreateLinkRequest) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := c.do(ctx, http.MethodPost, "/urls/", nil, req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListLinks returns one page of links. Zero-valued filter fields are omitted.
func (c *Client) ListLinks(ctx context.Context, filter models.ListFilter) (*models.LinkPage, error) {
	query := url.Values{}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.OrderBy != "" {
		query.Set("order_by", filter.OrderBy)
	}

	var page models.LinkPage
	if err := c.do(ctx, http.MethodGet, "/urls/", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetLink fetches one link.
func (c *Client) GetLink(ctx context.Context, id int64) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := c.do(ctx, http.MethodGet, linkPath(id), nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// UpdateLink applies a partial update.
func (c *Client) UpdateLink(ctx context.Context, id int64, req models.UpdateLinkRequest) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := c.do(ctx, http.MethodPatch, linkPath(id), nil, req, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteLink deletes a link. A missing link is a *errors.RequestError with
// status 404.
func (c *Client) DeleteLink(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, linkPath(id), nil, nil, nil)
}

// GetLinkStats fetches the click breakdown of one link.
func (c *Client) GetLinkStats(ctx context.Context, id int64) (*models.LinkStats, error) {
	var stats models.LinkStats
	if err := c.do(ctx, http.MethodGet, linkPath(id)+"stats/", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetPopularLinks returns the most clicked links.
func (c *Client) GetPopularLinks(ctx context.Context, limit int) ([]models.ShortLink, error) {
	return c.limitedList(ctx, "/urls/popular/", limit)
}

// GetRecentLinks returns the most recently created links.
func (c *Client) GetRecentLinks(ctx context.Context, limit int) ([]models.ShortLink, error) {
	return c.limitedList(ctx, "/urls/recent/", limit)
}

func (c *Client) limitedList(ctx context.Context, path string, limit int) ([]models.ShortLink, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var links []models.ShortLink
	if err := c.do(ctx, http.MethodGet, path, query, nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func linkPath(id int64) string {
	return fmt.Sprintf("/urls/%d/", id)
}
