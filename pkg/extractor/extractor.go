package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stravadump/pkg/errors"
	"stravadump/pkg/logger"
	"stravadump/pkg/ratelimit"
	"stravadump/pkg/storage"
	"stravadump/pkg/strava"
)

// DefaultRetryAfterFallback is the throttle wait used when the server sends
// no Retry-After hint.
const DefaultRetryAfterFallback = 10 * time.Second

// Request describes one extraction run. It is validated once and never
// mutated after the run starts.
type Request struct {
	// Token is the pre-obtained bearer credential. Resolution and refresh
	// are the caller's concern; the extractor treats it as opaque.
	Token string

	// Name is an optional prefix for page file names.
	Name string

	// Window optionally restricts activities to an epoch time range.
	Window strava.Window

	// Year is recorded in the manifest when the window was derived from a
	// calendar year; it carries no behavior of its own.
	Year int

	RequestsPerMinute int
	PerPage           int
	StartPage         int
	// MaxPages caps the number of pages fetched in this run; 0 means
	// unbounded.
	MaxPages int

	// MaxThrottleWait caps the cumulative time spent waiting on 429
	// responses in one run; 0 means no ceiling. Exceeding it aborts the
	// run with a throttle_budget error.
	MaxThrottleWait time.Duration
}

// ApplyDefaults fills unset numeric fields with the standard defaults.
func (r *Request) ApplyDefaults() {
	if r.RequestsPerMinute == 0 {
		r.RequestsPerMinute = 15
	}
	if r.PerPage == 0 {
		r.PerPage = strava.DefaultPerPage
	}
	if r.StartPage == 0 {
		r.StartPage = 1
	}
}

// Validate checks the request strictly before a run starts. Every failure
// names the offending field.
func (r *Request) Validate() error {
	if r.Token == "" {
		return errors.ValidationError("token", "access token is required")
	}
	if r.RequestsPerMinute < 1 {
		return errors.ValidationError("rpm", "must be at least 1")
	}
	if r.PerPage < 1 || r.PerPage > strava.MaxPerPage {
		return errors.ValidationError("per_page", fmt.Sprintf("must be between 1 and %d", strava.MaxPerPage))
	}
	if r.StartPage < 1 {
		return errors.ValidationError("start_page", "must be at least 1")
	}
	if r.MaxPages < 0 {
		return errors.ValidationError("max_pages", "cannot be negative")
	}
	if r.MaxThrottleWait < 0 {
		return errors.ValidationError("max_throttle_wait", "cannot be negative")
	}
	return nil
}

// Result reports a completed run.
type Result struct {
	Manifest  *storage.Manifest
	OutputDir string
}

// Client fetches one classified page of activities.
type Client interface {
	FetchActivitiesPage(ctx context.Context, token string, window strava.Window, page, perPage int) (*strava.FetchOutcome, error)
}

// PageStore persists pages and the run manifest.
type PageStore interface {
	SavePage(page int, records []json.RawMessage) error
	SaveManifest(m *storage.Manifest) error
	Dir() string
}

// Extractor drives one extraction run: pace, fetch, classify, persist,
// advance. Pages are processed strictly one at a time, in order; the only
// retry it performs is re-fetching the same page after a throttle wait.
type Extractor struct {
	client             Client
	store              PageStore
	logger             logger.Logger
	retryAfterFallback time.Duration

	// sleep is the throttle suspension; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRetryAfterFallback overrides the default wait applied to a throttled
// response that carries no Retry-After hint.
func WithRetryAfterFallback(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.retryAfterFallback = d
		}
	}
}

// New creates an Extractor.
func New(client Client, store PageStore, log logger.Logger, opts ...Option) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}

	e := &Extractor{
		client:             client,
		store:              store,
		logger:             log,
		retryAfterFallback: DefaultRetryAfterFallback,
		sleep:              sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// throttleDelay computes the wait before retrying a throttled page: the
// server's hint when present, a flat fallback otherwise. Deliberately not
// exponential; the server's signal is trusted over local guesswork.
func (e *Extractor) throttleDelay(outcome *strava.FetchOutcome) time.Duration {
	if outcome.HasRetryAfter {
		return outcome.RetryAfter
	}
	return e.retryAfterFallback
}

// Run executes one extraction from the validated request until natural
// end-of-data, the page cap, or a fatal outcome. Pages already persisted
// are never rolled back on abort.
func (e *Extractor) Run(ctx context.Context, req Request) (*Result, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pacer := ratelimit.NewIntervalPacer(req.RequestsPerMinute)
	log := e.logger.WithFields(map[string]interface{}{
		"name":       req.Name,
		"start_page": req.StartPage,
		"per_page":   req.PerPage,
	})

	log.InfoWithFields("starting extraction", map[string]interface{}{
		"rpm":          req.RequestsPerMinute,
		"max_pages":    req.MaxPages,
		"min_interval": pacer.MinInterval(),
		"output_dir":   e.store.Dir(),
	})

	page := req.StartPage
	fetchedPages := 0
	var throttleTotal time.Duration

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extraction cancelled: %w", err)
		}

		if req.MaxPages > 0 && fetchedPages >= req.MaxPages {
			log.InfoWithFields("reached page cap", map[string]interface{}{
				"max_pages": req.MaxPages,
			})
			return e.complete(req, fetchedPages)
		}

		if err := pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("extraction cancelled: %w", err)
		}

		outcome, err := e.client.FetchActivitiesPage(ctx, req.Token, req.Window, page, req.PerPage)
		if err != nil {
			return nil, errors.Newf(errors.ErrorTypeUpstream, "fetching page %d: %v", page, err)
		}

		if outcome.Kind == strava.OutcomeSuccess {
			if len(outcome.Records) == 0 {
				log.InfoWithFields("end of data", map[string]interface{}{
					"last_fetched_page": page - 1,
				})
				return e.complete(req, fetchedPages)
			}

			if err := e.store.SavePage(page, outcome.Records); err != nil {
				log.WithError(err).ErrorWithFields("page write failed, aborting", map[string]interface{}{
					"page": page,
				})
				return nil, err
			}

			log.InfoWithFields("page persisted", map[string]interface{}{
				"page":       page,
				"records":    len(outcome.Records),
				"rate_usage": outcome.Usage.Usage,
				"rate_limit": outcome.Usage.Limit,
			})

			fetchedPages++
			page++
			continue
		}

		extErr := outcomeError(page, outcome)
		if !errors.IsRetryable(extErr.Type) {
			log.ErrorWithFields("fatal response, aborting", map[string]interface{}{
				"page":   page,
				"kind":   string(extErr.Type),
				"status": outcome.Status,
				"body":   outcome.Body,
			})
			return nil, extErr
		}

		// Throttled. Wait out the server's hint (or the flat fallback) and
		// retry the same page; retries do not count against MaxPages.
		delay := e.throttleDelay(outcome)
		throttleTotal += delay
		if req.MaxThrottleWait > 0 && throttleTotal > req.MaxThrottleWait {
			log.ErrorWithFields("throttle budget exhausted, aborting", map[string]interface{}{
				"page":           page,
				"waited_total":   throttleTotal - delay,
				"budget":         req.MaxThrottleWait,
				"requested_wait": delay,
			})
			return nil, errors.Newf(errors.ErrorTypeThrottleBudget,
				"cumulative throttle wait would exceed %v", req.MaxThrottleWait)
		}

		log.WarnWithFields("throttled, retrying same page", map[string]interface{}{
			"page":  page,
			"delay": delay,
		})
		if err := e.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("extraction cancelled: %w", err)
		}
	}
}

// outcomeError maps a non-success fetch outcome to its classified error.
func outcomeError(page int, outcome *strava.FetchOutcome) *errors.Error {
	switch outcome.Kind {
	case strava.OutcomeUnauthorized:
		return errors.NewWithCode(errors.ErrorTypeAuth, outcome.Status, "access token rejected")
	case strava.OutcomeThrottled:
		return errors.NewWithCode(errors.ErrorTypeRateLimit, outcome.Status,
			fmt.Sprintf("page %d: throttled by server", page))
	case strava.OutcomeUpstreamError:
		return errors.NewWithCode(errors.ErrorTypeUpstream, outcome.Status,
			fmt.Sprintf("page %d: %s", page, outcome.Body))
	default:
		return errors.Newf(errors.ErrorTypeUpstream, "page %d: unknown outcome %q", page, outcome.Kind)
	}
}

// complete writes the manifest and builds the run result.
func (e *Extractor) complete(req Request, fetchedPages int) (*Result, error) {
	manifest := &storage.Manifest{
		Name:         req.Name,
		Year:         req.Year,
		After:        req.Window.After,
		Before:       req.Window.Before,
		PerPage:      req.PerPage,
		StartPage:    req.StartPage,
		FetchedPages: fetchedPages,
		GeneratedAt:  time.Now().UTC(),
	}

	if err := e.store.SaveManifest(manifest); err != nil {
		return nil, err
	}

	e.logger.InfoWithFields("extraction completed", map[string]interface{}{
		"fetched_pages": fetchedPages,
		"output_dir":    e.store.Dir(),
	})

	return &Result{Manifest: manifest, OutputDir: e.store.Dir()}, nil
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
