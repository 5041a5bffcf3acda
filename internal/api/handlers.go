// Package api exposes the stub server's REST routes on gin.
package api

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
	"github.com/axellelanca/shortlinkctl/internal/models"
	"github.com/axellelanca/shortlinkctl/internal/services"
)

var (
	notFound    = gin.H{"detail": "Not found."}
	invalidPage = gin.H{"detail": "Invalid page."}
)

// Handlers bundles what the routes need.
type Handlers struct {
	Links     *services.LinkService
	Analytics *services.AnalyticsService
	// Clicks receives one event per redirect. Events are dropped when it is full.
	Clicks chan<- models.ClickEvent
	Logger *zap.Logger
}

// SetupRoutes registers every route on router.
func SetupRoutes(router *gin.Engine, h Handlers) {
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}

	api := router.Group("/api")
	{
		api.GET("/health/", HealthCheckHandler)

		api.POST("/urls/", h.createLink)
		api.GET("/urls/", h.listLinks)
		api.GET("/urls/popular/", h.popularLinks)
		api.GET("/urls/recent/", h.recentLinks)
		api.GET("/urls/:id/", h.getLink)
		api.PATCH("/urls/:id/", h.updateLink)
		api.PUT("/urls/:id/", h.updateLink)
		api.DELETE("/urls/:id/", h.deleteLink)
		api.GET("/urls/:id/stats/", h.linkStats)

		api.GET("/analytics/dashboard/", h.dashboard)
		api.GET("/analytics/trends/", h.trends)
	}

	router.GET("/:shortCode", h.redirect)
}

// HealthCheckHandler reports liveness.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h Handlers) createLink(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return
	}

	link, err := h.Links.CreateLink(req, c.ClientIP())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.Links.ToShortLink(link))
}

func (h Handlers) listLinks(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusNotFound, invalidPage)
			return
		}
		page = n
	}

	links, total, err := h.Links.ListLinks(models.ListFilter{
		Page:    page,
		Search:  c.Query("search"),
		OrderBy: c.DefaultQuery("order_by", models.OrderNewest),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if page > 1 && len(links) == 0 {
		c.JSON(http.StatusNotFound, invalidPage)
		return
	}

	resp := models.LinkPage{Count: int(total), Results: h.render(links)}
	if int64(page*services.PageSize) < total {
		next := pageURL(c, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		resp.Previous = &prev
	}
	c.JSON(http.StatusOK, resp)
}

// pageURL rebuilds the request URL pointing at page. Page 1 drops the
// parameter.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	query := c.Request.URL.Query()
	if page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: query.Encode()}
	return u.String()
}

func (h Handlers) popularLinks(c *gin.Context) {
	h.limited(c, h.Links.PopularLinks)
}

func (h Handlers) recentLinks(c *gin.Context) {
	h.limited(c, h.Links.RecentLinks)
}

func (h Handlers) limited(c *gin.Context, fetch func(limit int) ([]models.Link, error)) {
	limit, err := intQuery(c, "limit", services.DefaultLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be an integer"})
		return
	}
	links, err := fetch(limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.render(links))
}

func (h Handlers) getLink(c *gin.Context) {
	id, ok := linkID(c)
	if !ok {
		return
	}
	link, err := h.Links.GetLink(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Links.ToShortLink(link))
}

func (h Handlers) updateLink(c *gin.Context) {
	id, ok := linkID(c)
	if !ok {
		return
	}
	var req models.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "JSON parse error - " + err.Error()})
		return
	}
	link, err := h.Links.UpdateLink(id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Links.ToShortLink(link))
}

func (h Handlers) deleteLink(c *gin.Context) {
	id, ok := linkID(c)
	if !ok {
		return
	}
	if err := h.Links.DeleteLink(id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) linkStats(c *gin.Context) {
	id, ok := linkID(c)
	if !ok {
		return
	}
	stats, err := h.Links.GetLinkStats(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h Handlers) dashboard(c *gin.Context) {
	stats, err := h.Analytics.Dashboard()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h Handlers) trends(c *gin.Context) {
	days, err := intQuery(c, "days", services.DefaultTrendDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "days must be an integer"})
		return
	}
	trends, err := h.Analytics.Trends(days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// redirect sends the visitor to the original URL and queues the click without
// waiting for it to be stored.
func (h Handlers) redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")
	link, err := h.Links.GetLinkByShortCode(shortCode)
	if err != nil {
		h.fail(c, err)
		return
	}
	if link.IsExpired(time.Now()) {
		c.String(http.StatusGone, "This short URL has expired")
		return
	}

	ip := c.ClientIP()
	ua := c.GetHeader("User-Agent")
	event := models.ClickEvent{
		LinkID:    link.ID,
		Timestamp: time.Now(),
		UserAgent: ua,
		IPAddress: ip,
		Referer:   c.GetHeader("Referer"),
		SessionID: SessionID(ip, ua),
	}

	select {
	case h.Clicks <- event:
	default:
		h.Logger.Warn("click channel full, dropping event", zap.String("short_code", shortCode))
	}

	c.Redirect(http.StatusFound, link.OriginalURL)
}

// SessionID identifies a visitor for unique click counting.
func SessionID(ip, userAgent string) string {
	sum := md5.Sum([]byte(ip + "_" + userAgent))
	return hex.EncodeToString(sum[:])
}

func (h Handlers) render(links []models.Link) []models.ShortLink {
	out := make([]models.ShortLink, 0, len(links))
	for i := range links {
		out = append(out, h.Links.ToShortLink(&links[i]))
	}
	return out
}

// fail maps a service error to its response.
func (h Handlers) fail(c *gin.Context, err error) {
	var invalid *services.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, invalid.Fields)
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, notFound)
	case errors.Is(err, customerrors.ErrShortCodeGenerationFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Unable to generate unique short code. Please try again later."})
	default:
		h.Logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

func linkID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, notFound)
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
