package catalog

import (
	"testing"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

func TestDefaultLoadsEmbeddedCatalog(t *testing.T) {
	cat, err := Default(nil)
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}
	if cat.Len() == 0 {
		t.Fatalf("embedded catalog should not be empty")
	}

	def, ok := cat.Definition("q58")
	if !ok {
		t.Fatalf("q58 should be in the catalog")
	}
	if def.Category != assessment.CategorySexualBehavior {
		t.Fatalf("q58 should be sexual_behavior, got %s", def.Category)
	}
	if def.Question == "" {
		t.Fatalf("q58 should have a prompt")
	}
}

func TestLoadRejectsDuplicateCodes(t *testing.T) {
	raw := []byte(`
features:
  - code: q58
    category: sexual_behavior
    question: "first"
  - code: q58
    category: sexual_behavior
    question: "second"
`)
	if _, err := Load(raw); err == nil {
		t.Fatalf("duplicate codes must be rejected")
	}
}

func TestLoadRejectsEmptyCode(t *testing.T) {
	raw := []byte(`
features:
  - code: "  "
    question: "blank"
`)
	if _, err := Load(raw); err == nil {
		t.Fatalf("blank codes must be rejected")
	}
}

func TestLookupFallbacks(t *testing.T) {
	cat, err := Load([]byte(`
features:
  - code: q61
    category: sexual_behavior
    question: "Condom use at last sex?"
    options:
      "3": "Did not use a condom"
`))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	if got := cat.Question("q61"); got != "Condom use at last sex?" {
		t.Fatalf("unexpected prompt %q", got)
	}
	if got := cat.Question("q999"); got != "q999" {
		t.Fatalf("unknown codes should fall back to themselves, got %q", got)
	}
	if got := cat.Category("q999"); got != assessment.CategoryUnknown {
		t.Fatalf("unknown codes should be uncategorized, got %s", got)
	}
	if got := cat.ReadableValue("q61", 3); got != "Did not use a condom" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := cat.ReadableValue("q61", 7); got != "Value 7" {
		t.Fatalf("unmapped values get the generic rendering, got %q", got)
	}
}

func TestLoadDefaultsMissingCategory(t *testing.T) {
	cat, err := Load([]byte(`
features:
  - code: q42
    question: "uncategorized"
`))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if got := cat.Category("q42"); got != assessment.CategoryUnknown {
		t.Fatalf("missing category should default to unknown, got %s", got)
	}
}
