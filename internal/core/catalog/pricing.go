package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

// Selection is what the caller chose: a named package plus optional add-on
// services, or CUSTOM with an explicit service list. It carries no price.
type Selection struct {
	PackageType string
	Services    []string
}

// Quote is the server-side pricing result for a selection.
type Quote struct {
	Amount   decimal.Decimal
	Currency string
	// Services is the normalized service list: package defaults unioned with
	// recognized add-ons, or the recognized subset of a custom selection.
	Services []string
	// Unrecognized lists selected service names absent from the catalog.
	// They contribute zero to the amount; callers log them instead of
	// rejecting the whole selection on catalog-key drift.
	Unrecognized []string
}

// ComputePrice maps a selection to a monetary total and a normalized service
// list. Pure; no I/O. Returns domain.ErrInvalidSelection for an unknown
// package or a custom selection with no recognized services, and
// domain.ErrZeroAmount when the total is not positive.
func (c *Catalog) ComputePrice(sel Selection) (*Quote, error) {
	if !c.KnownPackage(sel.PackageType) {
		return nil, domain.ErrInvalidSelection
	}

	q := &Quote{Currency: c.Currency}

	if sel.PackageType == domain.PackageCustom {
		if len(sel.Services) == 0 {
			return nil, domain.ErrInvalidSelection
		}
		total := decimal.Zero
		for _, name := range sel.Services {
			price, ok := c.Services[name]
			if !ok {
				q.Unrecognized = append(q.Unrecognized, name)
				continue
			}
			total = total.Add(price)
			q.Services = append(q.Services, name)
		}
		if len(q.Services) == 0 {
			return nil, domain.ErrInvalidSelection
		}
		q.Amount = total
	} else {
		pkg := c.Packages[sel.PackageType]
		total := pkg.BasePrice
		included := make(map[string]struct{}, len(pkg.Services))
		q.Services = append(q.Services, pkg.Services...)
		for _, name := range pkg.Services {
			included[name] = struct{}{}
		}
		// Add-ons outside the package's default list are priced per service.
		for _, name := range sel.Services {
			if _, ok := included[name]; ok {
				continue
			}
			price, ok := c.Services[name]
			if !ok {
				q.Unrecognized = append(q.Unrecognized, name)
				continue
			}
			total = total.Add(price)
			included[name] = struct{}{}
			q.Services = append(q.Services, name)
		}
		q.Amount = total
	}

	if !q.Amount.IsPositive() {
		return nil, domain.ErrZeroAmount
	}
	return q, nil
}
