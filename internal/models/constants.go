package models

import "time"

const (
	// DefaultWizardTTL is how long an idle booking wizard draft is kept.
	DefaultWizardTTL = 2 * time.Hour

	// DefaultMaxNights caps the length of a stay booked through the wizard.
	DefaultMaxNights = 30

	// DefaultSessionTTL is the lifetime of a portal session token.
	DefaultSessionTTL = 12 * time.Hour

	// DefaultBackendTimeout bounds a single backend call.
	DefaultBackendTimeout = 10 * time.Second

	// DefaultCacheTTL is the reference data cache lifetime.
	DefaultCacheTTL = 5 * time.Minute

	DefaultPageSize = 20
	MaxPageSize     = 200

	// RateLimitRequests per RateLimitWindow for mutating calls of one session.
	RateLimitRequests = 30
	RateLimitWindow   = time.Minute

	// WorkerQueueSize is the in-memory sync queue capacity.
	WorkerQueueSize = 128

	DateLayout = "2006-01-02"
)
