package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/Malcolmik/ambo-backend/internal/core/catalog"
)

// CatalogHandler exposes the read-only price catalog so clients can render
// selections. Prices shown here are informational; the charge amount is
// always recomputed server-side at initiation.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

type catalogPackageResponse struct {
	Name      string   `json:"name"`
	BasePrice string   `json:"base_price"`
	Services  []string `json:"services"`
}

type catalogServiceResponse struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type catalogResponse struct {
	Version  int                      `json:"version"`
	Currency string                   `json:"currency"`
	Packages []catalogPackageResponse `json:"packages"`
	Services []catalogServiceResponse `json:"services"`
}

// Get handles GET /v1/catalog.
//
// @Summary      Get the price catalog
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  catalogResponse
// @Router       /v1/catalog [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	resp := catalogResponse{
		Version:  h.catalog.Version,
		Currency: h.catalog.Currency,
	}

	for _, name := range h.catalog.PackageNames() {
		pkg := h.catalog.Packages[name]
		resp.Packages = append(resp.Packages, catalogPackageResponse{
			Name:      pkg.Name,
			BasePrice: pkg.BasePrice.String(),
			Services:  pkg.Services,
		})
	}

	names := make([]string, 0, len(h.catalog.Services))
	for name := range h.catalog.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		resp.Services = append(resp.Services, catalogServiceResponse{
			Name:  name,
			Price: h.catalog.Services[name].String(),
		})
	}

	return c.JSON(http.StatusOK, resp)
}
