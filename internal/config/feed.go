package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/event-feed/internal/feed"
)

// FeedSettings are presentation settings read from the YAML feed settings
// file: the placeholders used for missing event data and the catalogs the
// clients offer as filter choices.
type FeedSettings struct {
	Defaults   feed.Defaults `yaml:"defaults"`
	Categories []string      `yaml:"categories"`
	Regions    []string      `yaml:"regions"`
}

// DefaultFeedSettings returns the built-in settings.
func DefaultFeedSettings() FeedSettings {
	return FeedSettings{
		Defaults:   feed.StandardDefaults(),
		Categories: []string{"Tech", "Startup", "Design", "Business", "Culture"},
		Regions:    []string{"Philippines", "Asia", "North America", "Europe", "Oceania"},
	}
}

// Normalize fills missing values so a partially written file still yields
// usable settings.
func (s *FeedSettings) Normalize() {
	def := DefaultFeedSettings()
	s.Defaults = s.Defaults.Complete()
	if s.Categories == nil {
		s.Categories = def.Categories
	}
	if s.Regions == nil {
		s.Regions = def.Regions
	}
}

// LoadFeedSettings reads the YAML file at path.  A missing file (or an
// empty path) yields DefaultFeedSettings; a malformed one is an error.
func LoadFeedSettings(path string) (FeedSettings, error) {
	if path == "" {
		return DefaultFeedSettings(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultFeedSettings(), nil
		}
		return FeedSettings{}, fmt.Errorf("read feed settings: %w", err)
	}
	var s FeedSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return FeedSettings{}, fmt.Errorf("parse feed settings %s: %w", path, err)
	}
	s.Normalize()
	return s, nil
}
