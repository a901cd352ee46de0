package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trishadairy/storefront/internal/cart"
	"github.com/trishadairy/storefront/internal/catalog"
	"github.com/trishadairy/storefront/internal/logging"
	authmw "github.com/trishadairy/storefront/internal/middleware/auth"
	"github.com/trishadairy/storefront/internal/session"
)

type CartHandler struct {
	Catalog  *catalog.Reader
	Sessions session.Store
	Producer EventPublisher
}

// GetCart prices the session cart against a fresh catalog snapshot. It
// works for anonymous sessions too and returns an empty summary for them.
func (h *CartHandler) GetCart(c echo.Context) error {
	state := authmw.State(c)

	snapshot, err := h.Catalog.ByIDs(c.Request().Context(), cart.ProductIDs(state.Cart))
	if err != nil {
		return h.persistenceError(c, "cart snapshot", err)
	}

	summary := cart.Summarize(state.Cart, snapshot)
	if len(summary.Dropped) > 0 {
		h.purgeDropped(c, summary.Dropped)
	}

	return c.JSON(http.StatusOK, summary)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	productID, err := formProductID(c)
	if err != nil {
		return err
	}
	qty := parseIntDefault(c.FormValue("qty"), 1)

	state := authmw.State(c)
	err = h.Sessions.Mutate(c.Request().Context(), authmw.Token(c), func(s *session.State) error {
		s.Cart = cart.Add(s.Cart, productID, qty)
		return nil
	})
	if err != nil {
		return h.persistenceError(c, "cart add", err)
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(state.UserID), map[string]any{
		"type":       "cart_line_added",
		"user_id":    state.UserID,
		"product_id": productID,
		"qty":        qty,
	})

	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *CartHandler) UpdateCart(c echo.Context) error {
	productID, err := formProductID(c)
	if err != nil {
		return err
	}

	action := c.FormValue("action")
	if action != "increase" && action != "decrease" {
		return echo.NewHTTPError(http.StatusBadRequest, "action must be increase or decrease")
	}

	state := authmw.State(c)
	err = h.Sessions.Mutate(c.Request().Context(), authmw.Token(c), func(s *session.State) error {
		s.Cart = cart.Step(s.Cart, productID, action == "increase")
		return nil
	})
	if err != nil {
		return h.persistenceError(c, "cart update", err)
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(state.UserID), map[string]any{
		"type":       "cart_line_stepped",
		"user_id":    state.UserID,
		"product_id": productID,
		"action":     action,
	})

	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	productID, err := formProductID(c)
	if err != nil {
		return err
	}

	state := authmw.State(c)
	err = h.Sessions.Mutate(c.Request().Context(), authmw.Token(c), func(s *session.State) error {
		s.Cart = cart.Remove(s.Cart, productID)
		return nil
	})
	if err != nil {
		return h.persistenceError(c, "cart remove", err)
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(state.UserID), map[string]any{
		"type":       "cart_line_removed",
		"user_id":    state.UserID,
		"product_id": productID,
	})

	return c.Redirect(http.StatusSeeOther, "/cart")
}

// purgeDropped removes lines whose product vanished from the catalog so a
// deleted product cannot linger in the persisted cart. Best effort; the
// summary already excludes them.
func (h *CartHandler) purgeDropped(c echo.Context, dropped []uint) {
	token := authmw.Token(c)
	if token == "" {
		return
	}
	err := h.Sessions.Mutate(c.Request().Context(), token, func(s *session.State) error {
		for _, id := range dropped {
			s.Cart = cart.Remove(s.Cart, id)
		}
		return nil
	})
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("cart purge failed", "error", err)
	}
}

func (h *CartHandler) persistenceError(c echo.Context, op string, err error) error {
	logging.FromContext(c.Request().Context()).Error("persistence error", "op", op, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
}

func formProductID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.FormValue("product_id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	return uint(id), nil
}
