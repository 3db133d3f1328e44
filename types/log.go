package types

import "time"

// LogEntry is one captured request/response pair queued for the async
// logger. Bodies and headers are already deep-copied by the middleware.
type LogEntry struct {
	ID              uint
	Method          string
	URL             string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	CreatedAt       time.Time
}
