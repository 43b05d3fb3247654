// Package data embeds the default programme catalog. The catalog is
// maintained by hand and seeds an empty store on first start.
package data

import (
	_ "embed"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// DefaultCatalogYAML returns a copy of the embedded catalog source.
func DefaultCatalogYAML() []byte {
	out := make([]byte, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*catalog.Catalog, error) {
	return catalog.Parse(defaultCatalog)
}
