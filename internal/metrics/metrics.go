// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Auth event names.
const (
	EventSignUp  = "sign_up"
	EventSignIn  = "sign_in"
	EventSignOut = "sign_out"
)

// Outcomes for auth events and session lookups.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// HTTP metrics
	ObserveRequest(method, route string, status int, duration time.Duration)

	// Auth metrics
	IncAuthEvent(event, outcome string)
	IncSessionLookup(outcome string) // "success" (found), "failure" (absent), "error"

	// Application metrics
	ObserveApplicationsListed(count int)

	// Rate limiting
	IncRateLimited(scope string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
