package strava

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	// BaseURL is the base URL for the Strava v3 API
	BaseURL = "https://www.strava.com/api/v3"

	// ActivitiesEndpoint is the endpoint for the athlete's activities
	ActivitiesEndpoint = "/athlete/activities"

	// MaxPerPage is the largest page size Strava accepts
	MaxPerPage = 200

	// DefaultPerPage is the page size used when none is specified
	DefaultPerPage = 200
)

// Window restricts an extraction to activities within [After, Before],
// both in epoch seconds. The zero Window means no restriction.
type Window struct {
	After  int64
	Before int64
}

// IsZero reports whether the window places no restriction on activities.
func (w Window) IsZero() bool {
	return w.After == 0 && w.Before == 0
}

// YearWindow returns the window covering one calendar year in UTC. The
// before bound is the last second of the year, matching Strava's inclusive
// `before` parameter.
func YearWindow(year int) Window {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	endExclusive := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Window{
		After:  start.Unix(),
		Before: endExclusive.Unix() - 1,
	}
}

// ActivitiesURL constructs the URL for one page of athlete activities.
func ActivitiesURL(baseURL string, window Window, page, perPage int) string {
	params := url.Values{}
	if !window.IsZero() {
		params.Set("after", strconv.FormatInt(window.After, 10))
		params.Set("before", strconv.FormatInt(window.Before, 10))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	return fmt.Sprintf("%s%s?%s", baseURL, ActivitiesEndpoint, params.Encode())
}
