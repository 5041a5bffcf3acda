package models

import "time"

// ClickEvent is a raw redirect hit passed from the stub server's redirect handler
// to the click workers.
type ClickEvent struct {
	LinkID    uint
	Timestamp time.Time
	UserAgent string
	IPAddress string
	Referer   string
	SessionID string // md5 of "ip_useragent"; one unique click per session and link
}
