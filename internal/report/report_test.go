package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/crewdeck/crewdeck/internal/api"
)

func testMeta() Metadata {
	return Metadata{
		ID:          "3f2c8a1e-demo",
		Kind:        "compliance",
		Profile:     "recruit",
		BaseURL:     "http://localhost:5000",
		GeneratedAt: time.Date(2025, 6, 11, 14, 5, 2, 0, time.UTC),
		Checksum:    "abc123",
	}
}

func TestFrontMatterRoundTrip(t *testing.T) {
	body := []byte("# Compliance Report\n\nAll clear.\n")
	doc, err := WriteFrontMatter(testMeta(), body)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(string(doc), "---\ncrewdeck:\n") {
		t.Fatalf("unexpected envelope prefix: %q", string(doc[:40]))
	}

	meta, gotBody, err := ParseFrontMatter(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Kind != "compliance" || meta.Profile != "recruit" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.ID != "3f2c8a1e-demo" || meta.Checksum != "abc123" {
		t.Fatalf("identity fields lost in round trip: %+v", meta)
	}
	if !meta.GeneratedAt.Equal(testMeta().GeneratedAt) {
		t.Fatalf("generated = %v, want %v", meta.GeneratedAt, testMeta().GeneratedAt)
	}
	if !strings.Contains(string(gotBody), "All clear.") {
		t.Fatalf("body lost in round trip: %q", string(gotBody))
	}
}

func TestParseFrontMatterErrors(t *testing.T) {
	if _, _, err := ParseFrontMatter(nil); !errors.Is(err, ErrMissingFrontMatter) {
		t.Fatalf("empty doc: err = %v, want ErrMissingFrontMatter", err)
	}
	if _, _, err := ParseFrontMatter([]byte("# no fences\n")); !errors.Is(err, ErrMissingFrontMatter) {
		t.Fatalf("unfenced doc: err = %v, want ErrMissingFrontMatter", err)
	}
	if _, _, err := ParseFrontMatter([]byte("---\ncrewdeck:\n  kind: x\n")); !errors.Is(err, ErrMalformedFrontMatter) {
		t.Fatalf("unterminated fence: err = %v, want ErrMalformedFrontMatter", err)
	}
	if _, _, err := ParseFrontMatter([]byte("---\nother: {}\n---\n\nbody\n")); !errors.Is(err, ErrMalformedFrontMatter) {
		t.Fatalf("missing kind: err = %v, want ErrMalformedFrontMatter", err)
	}
}

func TestWriteFrontMatterRequiresKind(t *testing.T) {
	if _, err := WriteFrontMatter(Metadata{}, []byte("body")); err == nil {
		t.Fatal("expected missing kind to fail")
	}
}

func TestStoreSaveLoadList(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2025, 6, 11, 14, 5, 2, 0, time.UTC)
	store := NewStore(dir, WithClock(func() time.Time { return fixed }))

	meta := Metadata{Kind: "compliance", Profile: "recruit"}
	path, err := store.Save(meta, []byte("# Compliance Report\n"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(path, "compliance-20250611-140502.md") {
		t.Fatalf("unexpected filename: %s", path)
	}

	loaded, body, err := store.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Kind != "compliance" || !loaded.GeneratedAt.Equal(fixed) {
		t.Fatalf("unexpected metadata: %+v", loaded)
	}
	if loaded.ID == "" {
		t.Fatal("save must assign an id")
	}
	if want := fingerprint(body); loaded.Checksum != want {
		t.Fatalf("checksum = %q, want %q", loaded.Checksum, want)
	}
	if !strings.Contains(string(body), "Compliance Report") {
		t.Fatalf("unexpected body: %q", string(body))
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != path {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestStoreListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if _, err := store.Save(Metadata{Kind: "compliance"}, []byte("body")); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A stray markdown file without the envelope must not break listing.
	foreign := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(foreign, []byte("# my notes\n"), 0644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected foreign file skipped, got %d entries", len(entries))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	store := NewStore(t.TempDir() + "/missing")
	entries, err := store.List()
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected nil entries, got %+v", entries)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	times := []time.Time{
		time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC),
	}
	store := NewStore(dir)
	for _, ts := range times {
		if _, err := store.Save(Metadata{Kind: "compliance", GeneratedAt: ts}, []byte("body")); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Metadata.GeneratedAt.After(entries[i-1].Metadata.GeneratedAt) {
			t.Fatalf("entries not newest-first: %v before %v", entries[i-1].Metadata.GeneratedAt, entries[i].Metadata.GeneratedAt)
		}
	}
}

func TestBuildCompliance(t *testing.T) {
	rep := &api.ComplianceReport{
		Summary: map[string]any{
			"total_decisions":    float64(148),
			"human_review_rate":  0.31,
			"automated_approved": float64(62),
		},
		HumanInLoop: map[string]any{
			"enabled": true,
			"policy":  map[string]any{"threshold": 0.85, "reviewer_required": true},
		},
		GeneratedAt: "2025-06-11T14:05:02Z",
	}

	md := string(BuildCompliance(rep))
	for _, want := range []string{
		"# Compliance Report",
		"## Summary",
		"**total decisions**: 148",
		"**human review rate**: 0.31",
		"## Human-in-the-Loop",
		"**threshold**: 0.85",
		"2025-06-11T14:05:02Z",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	// Empty sections stay out of the document.
	if strings.Contains(md, "Decision Distribution") {
		t.Error("empty section rendered")
	}
}

func TestBuildComplianceNil(t *testing.T) {
	md := string(BuildCompliance(nil))
	if !strings.Contains(md, "No compliance data") {
		t.Fatalf("nil report should render a placeholder, got %q", md)
	}
}

func TestRenderProducesOutput(t *testing.T) {
	out, err := Render("# Title\n\nSome body text.\n", 80)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Title") {
		t.Fatalf("rendered output missing heading: %q", out)
	}
}
