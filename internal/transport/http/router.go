package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/trishadairy/storefront/internal/handlers"
	authmw "github.com/trishadairy/storefront/internal/middleware/auth"
	"github.com/trishadairy/storefront/internal/session"
)

type Deps struct {
	Sessions  session.Store
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Cart      *handlers.CartHandler
	Checkout  *handlers.CheckoutHandler
	Products  *handlers.ProductHandler
	Contact   *handlers.ContactHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.Use(authmw.Sessions(d.Sessions))

	e.POST("/register", d.Auth.Register)
	e.POST("/login", d.Auth.Login)
	e.GET("/logout", d.Auth.Logout)

	e.GET("/dashboard", d.Dashboard.Show, authmw.RequireLogin)

	// Viewing the cart works anonymously; mutating it and placing orders
	// require an established identity.
	e.GET("/cart", d.Cart.GetCart)
	e.POST("/add-to-cart", d.Cart.AddToCart, authmw.RequireLogin)
	e.POST("/update-cart", d.Cart.UpdateCart, authmw.RequireLogin)
	e.POST("/remove-from-cart", d.Cart.RemoveFromCart, authmw.RequireLogin)

	e.GET("/checkout", d.Checkout.Show, authmw.RequireLogin)
	e.POST("/checkout", d.Checkout.Place, authmw.RequireLogin)

	api := e.Group("/api")
	api.GET("/products", d.Products.GetProducts)
	api.GET("/session", d.Auth.SessionInfo)
	api.POST("/contact", d.Contact.Submit)
}
