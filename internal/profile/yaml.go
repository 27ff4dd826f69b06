package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileFile pairs a parsed profile with its on-disk source.
type ProfileFile struct {
	Profile Profile
	Path    string
}

// ParseYAML decodes and validates a single profile payload.
func ParseYAML(data []byte) (Profile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Profile{}, fmt.Errorf("profile: payload is empty")
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("profile: decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p.Normalized(), nil
}

// LoadFile reads a YAML file from disk and returns the parsed profile.
func LoadFile(path string) (ProfileFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ProfileFile{}, fmt.Errorf("profile: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return ProfileFile{}, fmt.Errorf("profile: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ProfileFile{}, fmt.Errorf("profile: read %s: %w", path, err)
	}
	p, err := ParseYAML(data)
	if err != nil {
		return ProfileFile{}, fmt.Errorf("profile: %s: %w", path, err)
	}
	return ProfileFile{Profile: p, Path: filepath.Clean(path)}, nil
}

// LoadDir scans a directory for *.yaml profiles and returns them sorted by
// path. A missing directory means "no custom profiles".
func LoadDir(dir string) ([]ProfileFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile: read %s: %w", trimmed, err)
	}
	var files []ProfileFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isYAMLFile(name) {
			continue
		}
		file, err := LoadFile(filepath.Join(trimmed, name))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// RegisterDir discovers custom profiles under dir and installs them. IDs must
// not collide with each other or with already-registered decks.
func RegisterDir(reg *Registry, dir string) error {
	if reg == nil {
		return nil
	}
	files, err := LoadDir(dir)
	if err != nil {
		return err
	}
	seen := make(map[string]string, len(files))
	for _, file := range files {
		id := file.Profile.ID
		if existing, ok := seen[id]; ok {
			return fmt.Errorf("profile: duplicate id %s (%s and %s)", id, existing, file.Path)
		}
		seen[id] = file.Path
		if err := reg.Register(file.Profile); err != nil {
			return fmt.Errorf("profile: register %s from %s: %w", id, file.Path, err)
		}
	}
	return nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
