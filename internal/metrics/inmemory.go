package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Requests             uint64
	RequestErrors        uint64 // status >= 500
	RequestDurationTotal time.Duration
	AuthEvents           map[string]uint64 // "event/outcome"
	SessionLookups       map[string]uint64 // by outcome
	ApplicationsListed   uint64
	RateLimited          map[string]uint64 // by scope
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	requests             uint64
	requestErrors        uint64
	requestDurationTotal int64
	applicationsListed   uint64

	mu             sync.Mutex
	authEvents     map[string]uint64
	sessionLookups map[string]uint64
	rateLimited    map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		authEvents:     make(map[string]uint64),
		sessionLookups: make(map[string]uint64),
		rateLimited:    make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Requests:             atomic.LoadUint64(&m.requests),
		RequestErrors:        atomic.LoadUint64(&m.requestErrors),
		RequestDurationTotal: time.Duration(atomic.LoadInt64(&m.requestDurationTotal)),
		AuthEvents:           copyCounts(m.authEvents),
		SessionLookups:       copyCounts(m.sessionLookups),
		ApplicationsListed:   atomic.LoadUint64(&m.applicationsListed),
		RateLimited:          copyCounts(m.rateLimited),
	}
}

// ObserveRequest counts a served request.
func (m *InMemoryRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.requests, 1)
	if status >= 500 {
		atomic.AddUint64(&m.requestErrors, 1)
	}
	atomic.AddInt64(&m.requestDurationTotal, duration.Nanoseconds())
}

// IncAuthEvent counts an auth event by event and outcome.
func (m *InMemoryRecorder) IncAuthEvent(event, outcome string) {
	m.inc(m.authEvents, event+"/"+outcome)
}

// IncSessionLookup counts a session lookup by outcome.
func (m *InMemoryRecorder) IncSessionLookup(outcome string) {
	m.inc(m.sessionLookups, outcome)
}

// ObserveApplicationsListed adds the number of applications returned.
func (m *InMemoryRecorder) ObserveApplicationsListed(count int) {
	atomic.AddUint64(&m.applicationsListed, uint64(count))
}

// IncRateLimited counts a rate-limited request by scope.
func (m *InMemoryRecorder) IncRateLimited(scope string) {
	m.inc(m.rateLimited, scope)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
