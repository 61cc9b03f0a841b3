package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"stravadump/pkg/errors"
)

// ManifestFileName is the name of the per-run manifest file.
const ManifestFileName = "meta.json"

// Manifest summarizes one completed extraction run. It is written exactly
// once, after the last page, so its presence signals the run finished
// without a fatal error.
type Manifest struct {
	Name         string    `json:"name,omitempty"`
	Year         int       `json:"year"`
	After        int64     `json:"after"`
	Before       int64     `json:"before"`
	PerPage      int       `json:"per_page"`
	StartPage    int       `json:"start_page"`
	FetchedPages int       `json:"fetched_pages"`
	GeneratedAt  time.Time `json:"generated_at_utc"`
}

// Store persists fetched pages and the run manifest under one run-scoped
// directory. Writes are atomic (temp file plus rename) so a crash never
// leaves a truncated page behind.
type Store struct {
	dir    string
	prefix string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
// The optional prefix is prepended to page file names.
func NewStore(dir, prefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to create output directory %s: %v", dir, err)
	}

	return &Store{dir: dir, prefix: prefix}, nil
}

// Dir returns the run-scoped output directory.
func (s *Store) Dir() string {
	return s.dir
}

// PagePath returns the file path for a given page number.
func (s *Store) PagePath(page int) string {
	name := fmt.Sprintf("page_%d.json", page)
	if s.prefix != "" {
		name = s.prefix + "_" + name
	}
	return filepath.Join(s.dir, name)
}

// SavePage durably writes one page of records as a pretty-printed JSON
// array. The page only counts as fetched once this returns nil.
func (s *Store) SavePage(page int, records []json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "failed to encode page %d: %v", page, err)
	}

	if err := s.writeFile(s.PagePath(page), data); err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "failed to write page %d: %v", page, err)
	}

	return nil
}

// SaveManifest writes the run manifest. It must be the last write of a run.
func (s *Store) SaveManifest(m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "failed to encode manifest: %v", err)
	}

	if err := s.writeFile(filepath.Join(s.dir, ManifestFileName), data); err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "failed to write manifest: %v", err)
	}

	return nil
}

// writeFile writes data atomically via a temp file and rename.
func (s *Store) writeFile(path string, data []byte) error {
	tempPath := path + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// LastCompletedPage scans the run directory for existing page files and
// returns the highest page number found, 0 when none exist. A later run can
// resume by starting one page past it.
func (s *Store) LastCompletedPage() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, errors.Newf(errors.ErrorTypeStorage, "failed to read output directory: %v", err)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(pagePrefix(s.prefix)) + `page_(\d+)\.json$`)

	last := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := pattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		page, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if page > last {
			last = page
		}
	}

	return last, nil
}

func pagePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + "_"
}
