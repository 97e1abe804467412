package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	Screens *ScreenHTTP
	Logger  *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range Common(d.Logger) {
		e.Use(m)
	}

	e.POST("/login", d.Screens.SubmitLogin)
	e.POST("/logout", d.Screens.Logout)
	e.GET("/session", d.Screens.Session)

	cart := e.Group("/cart")
	cart.GET("", d.Screens.GetCart)
	cart.POST("/actions", d.Screens.DispatchCartAction)

	checkout := e.Group("/checkout")
	checkout.GET("", d.Screens.OpenCheckout)
	checkout.PATCH("/shipping", d.Screens.UpdateShipping)
	checkout.PUT("/payment", d.Screens.UpdatePayment)
	checkout.POST("/orders", d.Screens.PlaceOrder)
}
