// Package strava implements the HTTP client for the Strava v3 API.
//
// The client fetches one page of athlete activities per call and classifies
// the result into a small outcome taxonomy instead of returning errors for
// non-2xx statuses:
//
//   - OutcomeSuccess: 2xx with a JSON array body (possibly empty)
//   - OutcomeUnauthorized: 401, credential invalid or expired
//   - OutcomeThrottled: 429, with the Retry-After hint when supplied
//   - OutcomeUpstreamError: any other status or a malformed body
//
// The client is stateless and performs no retries; the extraction driver
// owns all retry and pacing policy.
package strava
