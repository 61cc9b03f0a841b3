// Package ratelimit paces outbound requests against the Strava API.
//
// Strava enforces a shared request budget per application, so the extractor
// spaces requests by a minimum interval derived from a requests-per-minute
// setting rather than bursting.
//
// The interval is claimed by send time: a pacer slot is consumed the moment
// Wait returns, before the request goes out, so response latency never
// shrinks the gap between consecutive sends.
//
// Usage:
//
//	pacer := ratelimit.NewIntervalPacer(15) // 15 requests per minute
//
//	for {
//	    if err := pacer.Wait(ctx); err != nil {
//	        return err // context cancelled
//	    }
//	    // send request
//	}
package ratelimit
