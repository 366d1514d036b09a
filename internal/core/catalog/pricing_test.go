package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Malcolmik/ambo-backend/internal/core/domain"
)

func TestComputePrice_NamedPackage(t *testing.T) {
	c := Default()

	q, err := c.ComputePrice(Selection{PackageType: "AMBO CLASSIC"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	want := c.Packages["AMBO CLASSIC"].BasePrice
	if !q.Amount.Equal(want) {
		t.Errorf("expected base price %s, got %s", want, q.Amount)
	}
	if len(q.Services) != len(c.Packages["AMBO CLASSIC"].Services) {
		t.Errorf("expected default service list, got %v", q.Services)
	}
}

func TestComputePrice_PackageWithAddOn(t *testing.T) {
	c := Default()

	q, err := c.ComputePrice(Selection{
		PackageType: "AMBO CLASSIC",
		Services:    []string{"Web Design", "Email Marketing"}, // Email Marketing already included
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	want := c.Packages["AMBO CLASSIC"].BasePrice.Add(c.Services["Web Design"])
	if !q.Amount.Equal(want) {
		t.Errorf("expected %s, got %s", want, q.Amount)
	}
	if len(q.Services) != 4 {
		t.Errorf("expected 3 defaults + 1 add-on, got %v", q.Services)
	}
}

func TestComputePrice_Custom(t *testing.T) {
	c := Default()

	q, err := c.ComputePrice(Selection{
		PackageType: domain.PackageCustom,
		Services:    []string{"Email Marketing", "Branding"},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !q.Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected 300, got %s", q.Amount)
	}
	if len(q.Services) != 2 || q.Services[0] != "Email Marketing" || q.Services[1] != "Branding" {
		t.Errorf("expected exact normalized names, got %v", q.Services)
	}
}

func TestComputePrice_UnrecognizedContributesZero(t *testing.T) {
	c := Default()

	q, err := c.ComputePrice(Selection{
		PackageType: domain.PackageCustom,
		Services:    []string{"Branding", "Skywriting"},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !q.Amount.Equal(c.Services["Branding"]) {
		t.Errorf("unrecognized service must contribute zero, got %s", q.Amount)
	}
	if len(q.Unrecognized) != 1 || q.Unrecognized[0] != "Skywriting" {
		t.Errorf("expected unrecognized name reported, got %v", q.Unrecognized)
	}
}

func TestComputePrice_Rejections(t *testing.T) {
	c := Default()

	if _, err := c.ComputePrice(Selection{PackageType: "NOT_A_PACKAGE"}); !errors.Is(err, domain.ErrInvalidSelection) {
		t.Errorf("unknown package: expected ErrInvalidSelection, got %v", err)
	}
	if _, err := c.ComputePrice(Selection{PackageType: domain.PackageCustom}); !errors.Is(err, domain.ErrInvalidSelection) {
		t.Errorf("empty custom selection: expected ErrInvalidSelection, got %v", err)
	}
	if _, err := c.ComputePrice(Selection{
		PackageType: domain.PackageCustom,
		Services:    []string{"Skywriting", "Carrier Pigeon"},
	}); !errors.Is(err, domain.ErrInvalidSelection) {
		t.Errorf("all-unrecognized custom selection: expected ErrInvalidSelection, got %v", err)
	}
}
