package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/crewdeck/crewdeck/internal/api"
	"github.com/crewdeck/crewdeck/internal/config"
	"github.com/crewdeck/crewdeck/internal/profile"
)

// loadConfig initializes .crewdeck in the working directory and reads the
// deck configuration plus CREWDECK_* overrides.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	if err := config.InitDeckDir(cwd); err != nil {
		return nil, err
	}
	return config.NewConfig(cwd)
}

// resolveProfile picks the deck: --profile beats config, and custom YAML
// decks under .crewdeck/profiles sit alongside the built-ins.
func resolveProfile(cfg *config.Config) (profile.Profile, error) {
	reg := profile.NewBuiltinRegistry()
	if err := profile.RegisterDir(reg, cfg.ProfilesDir()); err != nil {
		return profile.Profile{}, err
	}
	id := cfg.ProfileID()
	if strings.TrimSpace(profileFlag) != "" {
		id = strings.TrimSpace(profileFlag)
	}
	deck, err := reg.Resolve(id)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%w (known decks: %s)", err, strings.Join(reg.IDs(), ", "))
	}
	return deck, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(api.WithBaseURL(cfg.BaseURL()), api.WithTimeout(cfg.APITimeout()))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// terminalWidth reports the rendering width for markdown output, capped so
// wide terminals keep readable line lengths.
func terminalWidth() int {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	if width > 100 {
		width = 100
	}
	return width
}
