// Package report builds, stores and renders exported dashboard reports.
// Reports are markdown documents with a crewdeck YAML frontmatter envelope so
// a deck can later list and reload what it exported.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("report: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("report: malformed frontmatter")
)

// Metadata identifies one exported report.
type Metadata struct {
	// ID is a stable identifier assigned on save.
	ID string
	// Kind names the report type, e.g. "compliance".
	Kind string
	// Profile is the deck the report was exported from.
	Profile string
	// BaseURL is the backend the data came from.
	BaseURL string
	// GeneratedAt is the export timestamp (UTC).
	GeneratedAt time.Time
	// Checksum is the hex sha256 of the body at save time.
	Checksum string
}

// ParseFrontMatter extracts the metadata block and body from a document that
// starts with `---` YAML fences.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	if len(content) == 0 {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var envelope crewdeckEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return Metadata{}, nil, fmt.Errorf("report: parse frontmatter: %w", err)
	}
	meta, err := envelope.toMetadata()
	if err != nil {
		return Metadata{}, nil, err
	}
	return meta, parts[1], nil
}

// WriteFrontMatter renders metadata + body with YAML fences.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if meta.Kind == "" {
		return nil, fmt.Errorf("report: metadata missing kind")
	}
	envelope := crewdeckEnvelope{}
	envelope.fromMetadata(meta)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("report: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

type crewdeckEnvelope struct {
	Crewdeck crewdeckMetadata `yaml:"crewdeck"`
}

type crewdeckMetadata struct {
	ID        string `yaml:"id,omitempty"`
	Kind      string `yaml:"kind"`
	Profile   string `yaml:"profile,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Generated string `yaml:"generated"`
	Checksum  string `yaml:"checksum,omitempty"`
}

func (e crewdeckEnvelope) toMetadata() (Metadata, error) {
	if e.Crewdeck.Kind == "" {
		return Metadata{}, ErrMalformedFrontMatter
	}
	generated, err := parseTime(e.Crewdeck.Generated)
	if err != nil {
		return Metadata{}, fmt.Errorf("report: parse generated timestamp: %w", err)
	}
	return Metadata{
		ID:          e.Crewdeck.ID,
		Kind:        e.Crewdeck.Kind,
		Profile:     e.Crewdeck.Profile,
		BaseURL:     e.Crewdeck.BaseURL,
		GeneratedAt: generated,
		Checksum:    e.Crewdeck.Checksum,
	}, nil
}

func (e *crewdeckEnvelope) fromMetadata(meta Metadata) {
	e.Crewdeck.ID = meta.ID
	e.Crewdeck.Kind = meta.Kind
	e.Crewdeck.Profile = meta.Profile
	e.Crewdeck.BaseURL = meta.BaseURL
	e.Crewdeck.Generated = meta.GeneratedAt.UTC().Format(timeLayout)
	e.Crewdeck.Checksum = meta.Checksum
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("report: empty generated timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
