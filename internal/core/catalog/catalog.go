// Package catalog holds the price source for packages and individual
// services. Prices are always resolved server-side from the catalog; no
// client-supplied price is ever accepted.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// Package is a named bundle of services sold at a fixed base price.
type Package struct {
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
	Services  []string        `json:"services"`
}

// Catalog is an injected, versionable price source.
type Catalog struct {
	Version  int                        `json:"version"`
	Currency string                     `json:"currency"`
	Packages map[string]Package         `json:"packages"`
	Services map[string]decimal.Decimal `json:"services"`
}

// Default returns the compiled-in catalog. Deployments can override it with
// a JSON file via LoadFile.
func Default() *Catalog {
	return &Catalog{
		Version:  1,
		Currency: "NGN",
		Packages: map[string]Package{
			"AMBO STARTER": {
				Name:      "AMBO STARTER",
				BasePrice: decimal.NewFromInt(500),
				Services:  []string{"Logo Design", "Social Media Setup"},
			},
			"AMBO CLASSIC": {
				Name:      "AMBO CLASSIC",
				BasePrice: decimal.NewFromInt(1200),
				Services:  []string{"Branding", "Social Media Management", "Email Marketing"},
			},
			"AMBO PREMIUM": {
				Name:      "AMBO PREMIUM",
				BasePrice: decimal.NewFromInt(2500),
				Services:  []string{"Branding", "Social Media Management", "Email Marketing", "SEO Optimization", "Paid Advertising", "Web Design"},
			},
		},
		Services: map[string]decimal.Decimal{
			"Logo Design":             decimal.NewFromInt(100),
			"Social Media Setup":      decimal.NewFromInt(80),
			"Branding":                decimal.NewFromInt(150),
			"Email Marketing":         decimal.NewFromInt(150),
			"Content Creation":        decimal.NewFromInt(150),
			"Social Media Management": decimal.NewFromInt(200),
			"SEO Optimization":        decimal.NewFromInt(250),
			"Paid Advertising":        decimal.NewFromInt(300),
			"Web Design":              decimal.NewFromInt(400),
		},
	}
}

// LoadFile reads a catalog from a JSON file so price changes do not require
// a redeploy.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Packages) == 0 || len(c.Services) == 0 {
		return nil, fmt.Errorf("parse catalog: empty packages or services")
	}
	if c.Currency == "" {
		c.Currency = "NGN"
	}
	return &c, nil
}

// KnownPackage reports whether name is an enumerated package or CUSTOM.
func (c *Catalog) KnownPackage(name string) bool {
	if name == domain.PackageCustom {
		return true
	}
	_, ok := c.Packages[name]
	return ok
}

// PackageNames returns the enumerated package names in stable order.
func (c *Catalog) PackageNames() []string {
	names := make([]string, 0, len(c.Packages))
	for name := range c.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
