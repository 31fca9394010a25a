package catalog

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

const featureCatalogEnv = "FEATURE_CATALOG_YAML"

//go:embed features.yaml
var featureCatalogFS embed.FS

// Catalog is the read-only feature dictionary, loaded once at startup and
// shared process-wide.
type Catalog struct {
	features map[string]assessment.FeatureDefinition
}

type catalogFile struct {
	Features []assessment.FeatureDefinition `yaml:"features"`
}

// Load parses a catalog document. Codes must be unique.
func Load(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse feature catalog: %w", err)
	}
	features := make(map[string]assessment.FeatureDefinition, len(file.Features))
	for _, def := range file.Features {
		code := strings.TrimSpace(def.Code)
		if code == "" {
			return nil, fmt.Errorf("feature catalog entry with empty code")
		}
		if _, exists := features[code]; exists {
			return nil, fmt.Errorf("duplicate feature catalog code %q", code)
		}
		if def.Category == "" {
			def.Category = assessment.CategoryUnknown
		}
		features[code] = def
	}
	return &Catalog{features: features}, nil
}

// Default loads the embedded catalog, or the file named by
// FEATURE_CATALOG_YAML when set.
func Default(log *logger.Logger) (*Catalog, error) {
	if path := strings.TrimSpace(os.Getenv(featureCatalogEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read feature catalog %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loading feature catalog from file", "path", path)
		}
		return Load(raw)
	}
	raw, err := featureCatalogFS.ReadFile("features.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded feature catalog: %w", err)
	}
	return Load(raw)
}

// Definition returns the catalog entry for code, if present.
func (c *Catalog) Definition(code string) (assessment.FeatureDefinition, bool) {
	def, ok := c.features[code]
	return def, ok
}

// Question returns the human-readable prompt for code, falling back to the
// raw code when the catalog has no entry.
func (c *Catalog) Question(code string) string {
	if def, ok := c.features[code]; ok && def.Question != "" {
		return def.Question
	}
	return code
}

// Category returns the category for code, or unknown when absent.
func (c *Catalog) Category(code string) assessment.Category {
	if def, ok := c.features[code]; ok && def.Category != "" {
		return def.Category
	}
	return assessment.CategoryUnknown
}

// ReadableValue maps a numeric answer to its label, falling back to a
// generic rendering.
func (c *Catalog) ReadableValue(code string, value int) string {
	if def, ok := c.features[code]; ok {
		if label, ok := def.Options[fmt.Sprintf("%d", value)]; ok {
			return label
		}
	}
	return fmt.Sprintf("Value %d", value)
}

// Definitions returns every catalog entry ordered by code.
func (c *Catalog) Definitions() []assessment.FeatureDefinition {
	out := make([]assessment.FeatureDefinition, 0, len(c.features))
	for _, def := range c.features {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int { return len(c.features) }
