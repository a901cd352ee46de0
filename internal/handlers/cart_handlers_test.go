package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trishadairy/storefront/internal/cart"
)

func addForm(productID, qty string) url.Values {
	return url.Values{"product_id": {productID}, "qty": {qty}}
}

func TestAddToCartMergesByProductID(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts()
	cookie := env.register("trisha")

	rec, c := env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("1", "2"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/cart", rec.Header().Get("Location"))

	_, c = env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("1", "3"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))

	state := env.Sessions.states[cookie.Value]
	require.Equal(t, cart.Cart{{ProductID: 1, Qty: 5}}, state.Cart)
}

func TestAddToCartClampsQty(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts()
	cookie := env.register("trisha")

	_, c := env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("1", "-3"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))

	state := env.Sessions.states[cookie.Value]
	require.Equal(t, uint(1), state.Cart[0].Qty)
}

func TestAddToCartAnonymousRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts()

	rec, c := env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("1", "1"))
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login.html", rec.Header().Get("Location"))
}

func TestUpdateCartDecreaseFloorsAtOne(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts()
	cookie := env.register("trisha")

	_, c := env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("1", "1"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))

	form := url.Values{"product_id": {"1"}, "action": {"decrease"}}
	_, c = env.doFormRequest(http.MethodPost, "/update-cart", form, cookie)
	require.NoError(t, env.invokeGated(env.Cart.UpdateCart, c))

	state := env.Sessions.states[cookie.Value]
	require.Equal(t, uint(1), state.Cart[0].Qty)
}

func TestUpdateCartRejectsUnknownAction(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.register("trisha")

	form := url.Values{"product_id": {"1"}, "action": {"obliterate"}}
	_, c := env.doFormRequest(http.MethodPost, "/update-cart", form, cookie)
	err := env.invokeGated(env.Cart.UpdateCart, c)
	requireHTTPError(t, err, http.StatusBadRequest)
}

func TestRemoveFromCartMissingLineIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts()
	cookie := env.register("trisha")

	_, c := env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("1", "2"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))

	form := url.Values{"product_id": {"99"}}
	rec, c := env.doFormRequest(http.MethodPost, "/remove-from-cart", form, cookie)
	require.NoError(t, env.invokeGated(env.Cart.RemoveFromCart, c))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	state := env.Sessions.states[cookie.Value]
	require.Equal(t, cart.Cart{{ProductID: 1, Qty: 2}}, state.Cart)
}

func TestGetCartSummarizesAgainstCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts()
	cookie := env.register("trisha")

	_, c := env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("1", "2"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))
	_, c = env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("2", "1"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))

	rec, c := env.doJSONRequest(http.MethodGet, "/cart", nil, cookie)
	require.NoError(t, env.invoke(env.Cart.GetCart, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary cart.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary.Lines, 2)
	require.InDelta(t, 74, summary.Subtotal, 1e-9)
	require.InDelta(t, 99, summary.Total, 1e-9)
}

func TestGetCartAnonymousIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/cart", nil)
	require.NoError(t, env.invoke(env.Cart.GetCart, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary cart.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Empty(t, summary.Lines)
	require.Zero(t, summary.Total)
}

func TestGetCartPurgesVanishedProducts(t *testing.T) {
	env := newTestEnv(t)
	env.seedProducts()
	cookie := env.register("trisha")

	_, c := env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("1", "1"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))
	_, c = env.doFormRequest(http.MethodPost, "/add-to-cart", addForm("2", "1"), cookie)
	require.NoError(t, env.invokeGated(env.Cart.AddToCart, c))

	require.NoError(t, env.DB.Exec("DELETE FROM products WHERE product_id = 2").Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/cart", nil, cookie)
	require.NoError(t, env.invoke(env.Cart.GetCart, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary cart.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary.Lines, 1)

	state := env.Sessions.states[cookie.Value]
	require.Equal(t, cart.Cart{{ProductID: 1, Qty: 1}}, state.Cart)
}
