package sites

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package sites loads and indexes the news source registry (YAML).

const (
	CategoryLocal    = "local"
	CategoryNational = "national"
)

// SiteConfig describes one news source. Immutable after load.
type SiteConfig struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Category string `yaml:"category" json:"category"`
	BaseURL  string `yaml:"base_url" json:"base_url"`
	ListURL  string `yaml:"list_url" json:"list_url"`
	AjaxURL  string `yaml:"ajax_url,omitempty" json:"ajax_url,omitempty"`
	Color    string `yaml:"color" json:"color"`
}

// SiteInfo is the public listing shape served by GET /sites.
type SiteInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	BaseURL  string `json:"base_url"`
	Color    string `json:"color"`
	Category string `json:"category"`
}

// Registry holds the loaded site configs in file order.
type Registry struct {
	sites []SiteConfig
	byID  map[string]SiteConfig
}

type registryFile struct {
	Sites []SiteConfig `yaml:"sites"`
}

// Load reads the site registry from a YAML file.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sites file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode sites file: %w", err)
	}
	if len(file.Sites) == 0 {
		return nil, errors.New("sites file contains no site entries")
	}

	idx := make(map[string]SiteConfig, len(file.Sites))
	for i := range file.Sites {
		s := sanitizeSite(file.Sites[i])
		if err := validateSite(s); err != nil {
			return nil, fmt.Errorf("site[%d]: %w", i, err)
		}
		if _, exists := idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate site id %q", s.ID)
		}
		file.Sites[i] = s
		idx[s.ID] = s
	}

	return &Registry{sites: file.Sites, byID: idx}, nil
}

func sanitizeSite(s SiteConfig) SiteConfig {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(strings.ToLower(s.Category))
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	s.ListURL = strings.TrimSpace(s.ListURL)
	s.AjaxURL = strings.TrimSpace(s.AjaxURL)
	s.Color = strings.TrimSpace(s.Color)
	if s.ListURL == "" {
		s.ListURL = s.BaseURL
	}
	return s
}

func validateSite(s SiteConfig) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for site %q", s.ID)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required for site %q", s.ID)
	}
	if s.Category != CategoryLocal && s.Category != CategoryNational {
		return fmt.Errorf("category for site %q must be %q or %q", s.ID, CategoryLocal, CategoryNational)
	}
	return nil
}

// All returns every configured site in file order.
func (r *Registry) All() []SiteConfig {
	out := make([]SiteConfig, len(r.sites))
	copy(out, r.sites)
	return out
}

// Enabled returns the enabled sites in file order.
func (r *Registry) Enabled() []SiteConfig {
	out := make([]SiteConfig, 0, len(r.sites))
	for _, s := range r.sites {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// ByID returns the site entry for the given id, if present.
func (r *Registry) ByID(id string) (SiteConfig, bool) {
	s, ok := r.byID[strings.TrimSpace(id)]
	return s, ok
}

// Infos returns the public listing for every site.
func (r *Registry) Infos() []SiteInfo {
	out := make([]SiteInfo, 0, len(r.sites))
	for _, s := range r.sites {
		out = append(out, SiteInfo{
			ID:       s.ID,
			Name:     s.Name,
			Enabled:  s.Enabled,
			BaseURL:  s.BaseURL,
			Color:    s.Color,
			Category: s.Category,
		})
	}
	return out
}
