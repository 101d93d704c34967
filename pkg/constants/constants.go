// Package constants defines system-wide constants for the stockwatch service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Authentication Constants
// ================================================================================

const (
	// AuthorizationHeader is the request header carrying the bearer credential
	AuthorizationHeader = "Authorization"

	// BearerPrefix is the scheme prefix expected in the Authorization header
	BearerPrefix = "Bearer "

	// ClaimGoogleID is the stable user identifier claim embedded in identity tokens
	ClaimGoogleID = "google_id"

	// ClaimExpiresAt is the registered JWT expiration claim
	ClaimExpiresAt = "exp"

	// DefaultTokenTTL is the default lifetime for identity tokens (1 hour)
	DefaultTokenTTL = time.Hour

	// GoogleIssuerURL is the OpenID Connect issuer for Google accounts
	GoogleIssuerURL = "https://accounts.google.com"

	// GoogleLegacyIssuer is the scheme-less issuer some Google ID tokens still carry
	GoogleLegacyIssuer = "accounts.google.com"

	// GoogleCertsURL serves the JWKS used to sign Google ID tokens
	GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"
)

// ================================================================================
// Cache Constants
// ================================================================================

const (
	// DefaultCacheTTL is the default time-to-live of a memoized response (5 minutes)
	DefaultCacheTTL = 300 * time.Second

	// DefaultCacheMaxEntries is the default bound on the in-process store
	DefaultCacheMaxEntries = 500

	// DefaultUserCacheTTL is the lifetime of identity-scoped user lookups
	DefaultUserCacheTTL = time.Minute

	// RedisCacheKeyPrefix namespaces response cache keys in a shared Redis
	RedisCacheKeyPrefix = "stockwatch:cache:"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Operation names used to key memoized market-data calls.
const (
	OpPopularStocks  = "popular_stocks"
	OpStocks         = "stocks"
	OpMultipleStocks = "multiple_stocks"
	OpSearch         = "search"
	OpStockDetail    = "stock_detail"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is a type-safe key for context values
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request correlation id
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID carries the OpenTelemetry trace id
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyIdentity carries the authenticated google_id
	ContextKeyIdentity ContextKey = "identity"
)

// ================================================================================
// HTTP Constants
// ================================================================================

const (
	// HeaderRequestID is the correlation id header
	HeaderRequestID = "X-Request-ID"

	// EnvironmentProduction disables debug surfaces such as pprof
	EnvironmentProduction = "production"
)

// ================================================================================
// Market Data Constants
// ================================================================================

const (
	// DefaultFMPBaseURL is the Financial Modeling Prep API root
	DefaultFMPBaseURL = "https://financialmodelingprep.com/api"

	// RecommendationNone is reported when no analyst rating is available
	RecommendationNone = "NONE"

	// HistoryTimeseries is the number of daily closes attached to a stock summary
	HistoryTimeseries = 30

	// PopularChartWindow is the lookback used for popular-stock mini charts
	PopularChartWindow = 56 * 24 * time.Hour

	// SearchLimit bounds the number of search matches requested upstream
	SearchLimit = 10

	// UpstreamTimeout bounds a single provider call
	UpstreamTimeout = 10 * time.Second
)

// ================================================================================
// Event Constants
// ================================================================================

// EventType names a domain event published to the event bus
type EventType string

const (
	EventUserLogin    EventType = "user_login"
	EventStockSaved   EventType = "stock_saved"
	EventStockRemoved EventType = "stock_removed"
)
