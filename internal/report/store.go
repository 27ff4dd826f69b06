package report

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store manages report IO rooted at one directory.
type Store struct {
	dir string
	now func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for filenames and metadata timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store rooted at dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Dir returns the store root.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a report document and returns its path. Filenames carry the
// kind and a second-resolution timestamp, e.g. compliance-20250611-140502.md.
// Missing identity fields are filled in: a fresh ID and the body checksum.
func (s *Store) Save(meta Metadata, body []byte) (string, error) {
	if strings.TrimSpace(meta.Kind) == "" {
		return "", fmt.Errorf("report: metadata missing kind")
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = s.now().UTC()
	}
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	meta.Checksum = fingerprint(body)
	content, err := WriteFrontMatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create %s: %w", s.dir, err)
	}
	name := fmt.Sprintf("%s-%s.md", meta.Kind, meta.GeneratedAt.Format("20060102-150405"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}

// Load reads one report document back.
func (s *Store) Load(path string) (Metadata, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("report: read %s: %w", path, err)
	}
	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("report: %s: %w", path, err)
	}
	return meta, body, nil
}

// Entry pairs a stored report with its location.
type Entry struct {
	Path     string
	Metadata Metadata
}

// List returns stored reports, newest first. Markdown files without a valid
// crewdeck envelope are not reports and are skipped; users keep notes in
// this directory too.
func (s *Store) List() ([]Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("report: read %s: %w", s.dir, err)
	}
	var entries []Entry
	for _, dirent := range dirents {
		if dirent.IsDir() || !strings.HasSuffix(strings.ToLower(dirent.Name()), ".md") {
			continue
		}
		path := filepath.Join(s.dir, dirent.Name())
		meta, _, err := s.loadMeta(path)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Path: path, Metadata: meta})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Metadata.GeneratedAt.After(entries[j].Metadata.GeneratedAt)
	})
	return entries, nil
}

func (s *Store) loadMeta(path string) (Metadata, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, nil, err
	}
	return ParseFrontMatter(data)
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf("%x", sum[:])
}
