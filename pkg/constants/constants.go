// Package constants defines system-wide constants for the PrintStarter API.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Alert Type Constants
// ================================================================================

// AlertType identifies the class of operational alert being dispatched.
type AlertType string

const (
	// AlertTypeTrafficSpike indicates per-route traffic crossed the spike threshold.
	AlertTypeTrafficSpike AlertType = "traffic_spike"

	// AlertTypeErrorBurst indicates the per-route error counter crossed the burst threshold.
	AlertTypeErrorBurst AlertType = "error_burst"

	// AlertTypeManualTest is the synthetic alert used for operational verification.
	AlertTypeManualTest AlertType = "manual_test"
)

// ================================================================================
// Route Name Constants
// ================================================================================

// Route names used as the monitoring dimension. These are stable identifiers,
// not URL paths, so key namespaces survive route renames.
const (
	RouteAPIPrompts   = "api_prompts"
	RouteAPIGenerate  = "api_generate"
	RouteAPITestAlert = "api_test_alert"
)

// ================================================================================
// Rate Limit Scope Constants
// ================================================================================

// RateLimitScope is the logical bucket a fixed-window counter belongs to.
type RateLimitScope string

const (
	// ScopePrompts governs the prompt-suggestion endpoint.
	ScopePrompts RateLimitScope = "prompts"

	// ScopeGenerate governs the idea-generation endpoint.
	ScopeGenerate RateLimitScope = "generate"
)

// ================================================================================
// Store Key Namespaces
// ================================================================================

// Key namespace formats for the Redis-resident entities. All coordination
// state lives under these prefixes; nothing is held in process memory.
const (
	// KeyRateLimitFormat is rate:<scope>:<identity>.
	KeyRateLimitFormat = "rate:%s:%s"

	// KeyTrafficBucketFormat is metrics:traffic:<route>:<minute>.
	KeyTrafficBucketFormat = "metrics:traffic:%s:%s"

	// KeyErrorCounterFormat is metrics:error:<route>.
	KeyErrorCounterFormat = "metrics:error:%s"

	// KeyAlertCooldownFormat is alerts:cooldown:<type>:<route>.
	KeyAlertCooldownFormat = "alerts:cooldown:%s:%s"

	// KeyPromptCachePrefix namespaces prompt-suggestion cache entries.
	KeyPromptCachePrefix = "prompts:suggestions:"

	// KeyIdeaCachePrefix namespaces idea-generation cache entries.
	KeyIdeaCachePrefix = "ideas:generate:"
)

// ================================================================================
// Default Policy Values
// ================================================================================

const (
	// DefaultCacheTTL is how long a generated payload stays cached.
	DefaultCacheTTL = 30 * time.Minute

	// DefaultPromptRateLimit is the per-identity request budget for prompts.
	DefaultPromptRateLimit = 20

	// DefaultGenerateRateLimit is the per-identity request budget for generation.
	DefaultGenerateRateLimit = 10

	// DefaultRateLimitWindow anchors the fixed window to the first request.
	DefaultRateLimitWindow = 10 * time.Minute

	// DefaultTrafficWindow is the size of one traffic bucket.
	DefaultTrafficWindow = time.Minute

	// TrafficBucketGrace keeps a closed bucket readable past its minute.
	TrafficBucketGrace = 30 * time.Second

	// DefaultErrorWindow is the TTL of the decaying per-route error counter.
	DefaultErrorWindow = 5 * time.Minute

	// DefaultAlertCooldown suppresses duplicate alerts of the same type/route.
	DefaultAlertCooldown = 5 * time.Minute

	// DefaultTrafficSpikeThreshold is requests per minute per route.
	DefaultTrafficSpikeThreshold = 120

	// DefaultErrorBurstThreshold is errors per rolling window per route.
	DefaultErrorBurstThreshold = 20

	// DefaultUpstreamTimeout bounds one language-model completion call.
	DefaultUpstreamTimeout = 30 * time.Second

	// MaxSuggestions caps the number of prompts returned per request.
	MaxSuggestions = 5
)

// ================================================================================
// HTTP Header Constants
// ================================================================================

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitWindow    = "X-RateLimit-Window"
	HeaderAlertTestToken     = "X-Alert-Test-Token"
	HeaderRequestID          = "X-Request-ID"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type for request-scoped context values.
type ContextKey string

const (
	// ContextKeyRequestID carries the request correlation ID.
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyClientIdentity carries the resolved caller identity.
	ContextKeyClientIdentity ContextKey = "client_identity"
)

// ================================================================================
// Allowed Field Values
// ================================================================================

// Enumerations for the untrusted request fields. Membership is enforced
// before any cache lookup or upstream call.
var (
	AllowedFilaments  = []string{"PLA", "PETG", "ABS/ASA", "TPU", "Other"}
	AllowedTimeLimits = []string{"1 hour", "2 hours", "4 hours", "8 hours", "Any"}
	AllowedSkills     = []string{"beginner", "intermediate", "advanced"}
)

// ================================================================================
// Field Length Limits
// ================================================================================

const (
	MaxPrinterChars   = 80
	MaxFilamentChars  = 30
	MaxTimeLimitChars = 20
	MaxSkillChars     = 20
	MaxPromptChars    = 500
)
