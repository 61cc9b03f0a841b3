// Package storage persists fetched activity pages to local disk.
//
// Each run writes into one run-scoped directory:
//
//	<base>/<run>/
//	  [prefix_]page_<N>.json   one pretty-printed JSON array per page
//	  meta.json                run manifest, written once on completion
//
// All writes go through a temp-file-plus-rename so readers never observe a
// partially written page, and a failed write never replaces an existing
// file. Page files are independent artifacts: an aborted run keeps every
// page it persisted, and LastCompletedPage lets a later run resume past
// them.
package storage
