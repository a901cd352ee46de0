package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trishadairy/storefront/internal/cart"
	"github.com/trishadairy/storefront/internal/catalog"
	"github.com/trishadairy/storefront/internal/logging"
	authmw "github.com/trishadairy/storefront/internal/middleware/auth"
	"github.com/trishadairy/storefront/internal/order"
	"github.com/trishadairy/storefront/internal/session"
)

type CheckoutHandler struct {
	Writer   *order.Writer
	Catalog  *catalog.Reader
	Sessions session.Store
	Producer EventPublisher
}

// Show returns the order form's view model: the priced cart as it will be
// charged if the order is placed now.
func (h *CheckoutHandler) Show(c echo.Context) error {
	state := authmw.State(c)

	snapshot, err := h.Catalog.ByIDs(c.Request().Context(), cart.ProductIDs(state.Cart))
	if err != nil {
		return h.persistenceError(c, "checkout snapshot", err)
	}

	summary := cart.Summarize(state.Cart, snapshot)
	return c.JSON(http.StatusOK, map[string]any{
		"user":    state.UserName,
		"summary": summary,
	})
}

// Place converts the session cart into a persisted order and clears the
// cart. The cart is cleared only after the order transaction commits.
func (h *CheckoutHandler) Place(c echo.Context) error {
	details := order.Details{
		Name:          strings.TrimSpace(c.FormValue("delivery_name")),
		Address:       strings.TrimSpace(c.FormValue("delivery_address")),
		City:          strings.TrimSpace(c.FormValue("city")),
		Pincode:       strings.TrimSpace(c.FormValue("pincode")),
		Phone:         strings.TrimSpace(c.FormValue("phone")),
		Instructions:  strings.TrimSpace(c.FormValue("instructions")),
		PaymentMethod: strings.TrimSpace(c.FormValue("payment_method")),
	}
	if details.Name == "" || details.Address == "" || details.City == "" ||
		details.Pincode == "" || details.Phone == "" || details.PaymentMethod == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "All delivery fields are required.")
	}

	state := authmw.State(c)

	placed, items, err := h.Writer.Place(c.Request().Context(), state.UserID, state.Cart, details)
	if err != nil {
		if errors.Is(err, order.ErrEmptyCart) {
			return echo.NewHTTPError(http.StatusBadRequest, "Your cart is empty.")
		}
		if errors.Is(err, order.ErrOutOfStock) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.persistenceError(c, "place order", err)
	}

	err = h.Sessions.Mutate(c.Request().Context(), authmw.Token(c), func(s *session.State) error {
		s.Cart = nil
		return nil
	})
	if err != nil {
		// The order is durable; a cart that failed to clear is only a
		// stale session view.
		logging.FromContext(c.Request().Context()).Error("cart clear failed",
			"order_id", placed.ID, "error", err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(state.UserID), map[string]any{
		"type":     "order_placed",
		"user_id":  state.UserID,
		"order_id": placed.ID,
		"total":    placed.Total,
		"items":    len(items),
	})

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *CheckoutHandler) persistenceError(c echo.Context, op string, err error) error {
	logging.FromContext(c.Request().Context()).Error("persistence error", "op", op, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
}
