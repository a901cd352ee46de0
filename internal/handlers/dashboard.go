package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/trishadairy/storefront/internal/logging"
	authmw "github.com/trishadairy/storefront/internal/middleware/auth"
	"github.com/trishadairy/storefront/internal/models"
	"github.com/trishadairy/storefront/internal/order"
	"github.com/trishadairy/storefront/internal/util"
)

type DashboardHandler struct {
	DB     *gorm.DB
	Orders *order.Writer
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Show returns the dashboard view model: the account's contact fields and a
// window of its most recent orders, newest first.
func (h *DashboardHandler) Show(c echo.Context) error {
	state := authmw.State(c)

	var user models.User
	if err := h.DB.First(&user, state.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		logging.FromContext(c.Request().Context()).Error("persistence error", "op", "dashboard user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 10)
	offset, limit := util.Calculate(page, size)

	orders, err := h.Orders.Recent(c.Request().Context(), user.ID, offset, limit)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("persistence error", "op", "dashboard orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
	}

	var totalOrders int64
	if err := h.DB.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&totalOrders).Error; err != nil {
		logging.FromContext(c.Request().Context()).Error("persistence error", "op", "dashboard count", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":   user,
		"orders": orders,
		"stats": map[string]any{
			"total_orders": totalOrders,
		},
	})
}
