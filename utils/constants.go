package utils

import (
	"time"
)

// Token and request time constants
const (
	// AccessTokenTTL is the default time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RequestTimeout bounds every request-scoped context
	RequestTimeout = 30 * time.Second
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Pagination defaults shared by every list endpoint
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Context keys propagated from the HTTP layer into flows
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	EndpointKey  contextKey = "endpoint"
)

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"
