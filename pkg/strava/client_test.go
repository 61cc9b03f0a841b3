package strava

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, 5*time.Second, nil)
}

func TestFetchActivitiesPageSuccess(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("X-RateLimit-Usage", "3,12")
		w.Header().Set("X-RateLimit-Limit", "100,1000")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Morning Run"},{"id":2,"name":"Evening Ride"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	outcome, err := client.FetchActivitiesPage(context.Background(), "test-token", Window{After: 100, Before: 200}, 3, 50)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Len(t, outcome.Records, 2)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Contains(t, gotQuery, "page=3")
	assert.Contains(t, gotQuery, "per_page=50")
	assert.Contains(t, gotQuery, "after=100")
	assert.Contains(t, gotQuery, "before=200")
	assert.Equal(t, "3,12", outcome.Usage.Usage)
	assert.Equal(t, "100,1000", outcome.Usage.Limit)
}

func TestFetchActivitiesPageEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "t", Window{}, 1, 200)

	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Empty(t, outcome.Records)
}

func TestFetchActivitiesPageUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "bad", Window{}, 1, 200)

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnauthorized, outcome.Kind)
	assert.Equal(t, http.StatusUnauthorized, outcome.Status)
}

func TestFetchActivitiesPageThrottledWithRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "t", Window{}, 1, 200)

	require.NoError(t, err)
	assert.Equal(t, OutcomeThrottled, outcome.Kind)
	assert.True(t, outcome.HasRetryAfter)
	assert.Equal(t, 5*time.Second, outcome.RetryAfter)
}

func TestFetchActivitiesPageThrottledWithoutRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "t", Window{}, 1, 200)

	require.NoError(t, err)
	assert.Equal(t, OutcomeThrottled, outcome.Kind)
	assert.False(t, outcome.HasRetryAfter)
}

func TestFetchActivitiesPageNonNumericRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "Wed, 21 Oct 2026 07:28:00 GMT")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "t", Window{}, 1, 200)

	require.NoError(t, err)
	assert.Equal(t, OutcomeThrottled, outcome.Kind)
	assert.False(t, outcome.HasRetryAfter, "HTTP-date Retry-After should be treated as absent")
}

func TestFetchActivitiesPageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "t", Window{}, 1, 200)

	require.NoError(t, err)
	assert.Equal(t, OutcomeUpstreamError, outcome.Kind)
	assert.Equal(t, http.StatusBadGateway, outcome.Status)
	assert.Contains(t, outcome.Body, "upstream exploded")
}

func TestFetchActivitiesPageMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"not a list"}`))
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "t", Window{}, 1, 200)

	require.NoError(t, err)
	assert.Equal(t, OutcomeUpstreamError, outcome.Kind)
	assert.Contains(t, outcome.Body, "not a list")
}

func TestFetchActivitiesPageNullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	outcome, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "t", Window{}, 1, 200)

	require.NoError(t, err)
	assert.Equal(t, OutcomeUpstreamError, outcome.Kind)
	assert.Contains(t, outcome.Body, "null")
}

func TestFetchActivitiesPageTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	_, err := newTestClient(server.URL).FetchActivitiesPage(context.Background(), "t", Window{}, 1, 200)
	assert.Error(t, err)
}

func TestYearWindow(t *testing.T) {
	w := YearWindow(2025)

	start := time.Unix(w.After, 0).UTC()
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), start)

	end := time.Unix(w.Before, 0).UTC()
	assert.Equal(t, time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC), end)
}

func TestActivitiesURLWindowless(t *testing.T) {
	url := ActivitiesURL("https://example.com/api/v3", Window{}, 1, 200)
	assert.NotContains(t, url, "after=")
	assert.NotContains(t, url, "before=")
	assert.Contains(t, url, "page=1")
	assert.Contains(t, url, "per_page=200")
}
