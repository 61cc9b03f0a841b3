// Package extractor drives a full activity extraction run.
//
// A run walks page numbers sequentially from the start page: wait for the
// pacer slot, fetch one page, then dispatch on the classified outcome.
// Successful non-empty pages are persisted before the page number advances,
// so the set of page files on disk is always a contiguous range. An empty
// page means natural end-of-data and completes the run; a 429 waits out the
// server's Retry-After (or a flat fallback) and retries the same page; 401,
// any other unexpected response, and storage failures abort immediately.
//
// Only a completed run writes the meta.json manifest. Aborted runs keep
// every page already written, and a later run can resume with a start page
// past the last completed one.
package extractor
