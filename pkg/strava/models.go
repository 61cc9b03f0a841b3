package strava

import (
	"encoding/json"
	"time"
)

// OutcomeKind tags the classification of one fetch attempt.
type OutcomeKind string

const (
	// OutcomeSuccess is a 2xx response with a JSON array body. The record
	// slice may be empty, which signals end-of-data.
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeUnauthorized is an HTTP 401; the credential is invalid or
	// expired and the run cannot continue.
	OutcomeUnauthorized OutcomeKind = "unauthorized"

	// OutcomeThrottled is an HTTP 429, optionally carrying a Retry-After
	// hint from the server.
	OutcomeThrottled OutcomeKind = "throttled"

	// OutcomeUpstreamError is any other non-2xx status, a transport
	// failure, or a 2xx body that is not a JSON array.
	OutcomeUpstreamError OutcomeKind = "upstream_error"
)

// FetchOutcome is the classified result of fetching one page. Exactly one
// attempt produces one outcome; the fetcher never retries internally.
type FetchOutcome struct {
	Kind OutcomeKind

	// Records holds the page payload for OutcomeSuccess, in API order.
	Records []json.RawMessage

	// RetryAfter is the server-suggested wait for OutcomeThrottled.
	// HasRetryAfter distinguishes an absent hint from a zero one.
	RetryAfter    time.Duration
	HasRetryAfter bool

	// Status and Body describe the response for OutcomeUpstreamError and
	// carry the status for the other non-success kinds. Status 0 means the
	// request never produced a response.
	Status int
	Body   string

	// Usage mirrors Strava's rate limit telemetry headers when present.
	Usage RateUsage
}

// RateUsage carries the X-RateLimit-Usage and X-RateLimit-Limit headers
// verbatim. Strava reports them as "short,daily" pairs; they are logged,
// not interpreted.
type RateUsage struct {
	Usage string
	Limit string
}
