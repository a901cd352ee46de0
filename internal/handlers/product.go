package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trishadairy/storefront/internal/catalog"
	"github.com/trishadairy/storefront/internal/logging"
)

type ProductHandler struct {
	Catalog *catalog.Reader
}

// GetProducts serves the whole catalog as a JSON array for the storefront
// pages.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	products, err := h.Catalog.All(c.Request().Context())
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("persistence error", "op", "list products", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Database error fetching products",
		})
	}
	return c.JSON(http.StatusOK, products)
}
