// Package catalog holds the static set of website templates and the
// industry-to-template index derived from it.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when a requested template does not exist
var ErrNotFound = errors.New("template not found")

// Template represents one website template available for recommendation.
type Template struct {
	ID             string   `json:"-"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Industries     []string `json:"industries"`
	Style          string   `json:"style"`
	Features       []string `json:"features"`
	TargetAudience []string `json:"target_audience"`
	PreviewURL     string   `json:"previewUrl,omitempty"`
}

// Catalog loads and serves the template set. Templates are immutable for the
// life of the process once Load has run.
type Catalog struct {
	templatesPath string
	mappingsPath  string
	logger        *slog.Logger

	templates map[string]Template
	// industryIndex maps lower-cased industry name to template ids. Derived
	// data; every id in it must exist in templates.
	industryIndex map[string][]string
}

// New creates a catalog backed by the given JSON files.
func New(templatesPath, mappingsPath string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		templatesPath: templatesPath,
		mappingsPath:  mappingsPath,
		logger:        logger,
		templates:     make(map[string]Template),
		industryIndex: make(map[string][]string),
	}
}

// Load reads templates and industry mappings from disk. A missing or corrupt
// file is recovered locally by seeding and persisting the default data set.
func (c *Catalog) Load() error {
	if err := c.loadTemplates(); err != nil {
		return err
	}
	return c.loadIndustryMappings()
}

func (c *Catalog) loadTemplates() error {
	data, err := os.ReadFile(c.templatesPath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read templates file", "path", c.templatesPath, "error", err)
		}
		return c.seedTemplates()
	}

	var templates map[string]Template
	if err := json.Unmarshal(data, &templates); err != nil {
		c.logger.Warn("templates file is corrupt, falling back to defaults", "path", c.templatesPath, "error", err)
		return c.seedTemplates()
	}

	for id, tpl := range templates {
		tpl.ID = id
		templates[id] = tpl
	}
	c.templates = templates
	c.logger.Info("loaded templates", "count", len(c.templates))
	return nil
}

func (c *Catalog) loadIndustryMappings() error {
	data, err := os.ReadFile(c.mappingsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read industry mappings file", "path", c.mappingsPath, "error", err)
		}
		return c.seedIndustryMappings()
	}

	var mappings map[string][]string
	if err := json.Unmarshal(data, &mappings); err != nil {
		c.logger.Warn("industry mappings file is corrupt, falling back to defaults", "path", c.mappingsPath, "error", err)
		return c.seedIndustryMappings()
	}

	// Drop ids that do not exist in the template set
	for industry, ids := range mappings {
		valid := ids[:0]
		for _, id := range ids {
			if _, ok := c.templates[id]; ok {
				valid = append(valid, id)
			} else {
				c.logger.Warn("industry mapping references unknown template", "industry", industry, "template_id", id)
			}
		}
		mappings[industry] = valid
	}
	c.industryIndex = mappings
	c.logger.Info("loaded industry mappings", "industries", len(c.industryIndex))
	return nil
}

func (c *Catalog) seedTemplates() error {
	c.logger.Info("seeding default templates")
	c.templates = defaultTemplates()
	if err := writeJSONFile(c.templatesPath, c.templates); err != nil {
		return fmt.Errorf("failed to persist default templates: %w", err)
	}
	c.logger.Info("created default templates", "count", len(c.templates))
	return nil
}

func (c *Catalog) seedIndustryMappings() error {
	c.logger.Info("seeding default industry mappings")
	c.industryIndex = defaultIndustryMappings()
	if err := writeJSONFile(c.mappingsPath, c.industryIndex); err != nil {
		return fmt.Errorf("failed to persist default industry mappings: %w", err)
	}
	c.logger.Info("created default industry mappings", "industries", len(c.industryIndex))
	return nil
}

// All returns every template, ordered by id for deterministic iteration.
func (c *Catalog) All() []Template {
	ids := make([]string, 0, len(c.templates))
	for id := range c.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	templates := make([]Template, 0, len(ids))
	for _, id := range ids {
		templates = append(templates, c.templates[id])
	}
	return templates
}

// Len returns the number of templates in the catalog.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Get returns the template with the given id, or ErrNotFound.
func (c *Catalog) Get(id string) (Template, error) {
	tpl, ok := c.templates[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tpl, nil
}

// ByIndustry returns templates suitable for the given industry. The industry
// index is tried first with an exact case-insensitive match; when it yields
// nothing, every template's industries field is scanned. An empty result is
// not an error.
func (c *Catalog) ByIndustry(industry string) []Template {
	if industry == "" {
		return nil
	}

	industryLower := strings.ToLower(industry)

	if ids, ok := c.industryIndex[industryLower]; ok && len(ids) > 0 {
		templates := make([]Template, 0, len(ids))
		for _, id := range ids {
			if tpl, ok := c.templates[id]; ok {
				templates = append(templates, tpl)
			}
		}
		if len(templates) > 0 {
			return templates
		}
	}

	var matching []Template
	for _, tpl := range c.All() {
		for _, ind := range tpl.Industries {
			if strings.ToLower(ind) == industryLower {
				matching = append(matching, tpl)
				break
			}
		}
	}
	return matching
}

func writeJSONFile(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
