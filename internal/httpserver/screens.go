package httpserver

import (
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/cartactions"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/login"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/state"
	"github.com/Skotchmaster/storefront/internal/ui"
)

// ScreenHTTP drives the client flows for one local user. Requests are
// handled one at a time, like events on a single UI thread.
type ScreenHTTP struct {
	Login    *login.Flow
	Checkout *checkout.Flow
	Store    *state.Store
	Recorder *ui.Recorder

	mu sync.Mutex
}

type screenResponse struct {
	State    string             `json:"state"`
	Redirect string             `json:"redirect,omitempty"`
	Notices  []ui.Notice        `json:"notices,omitempty"`
	Checkout *checkout.Snapshot `json:"checkout,omitempty"`
}

func (h *ScreenHTTP) respond(c echo.Context, code int, state string, withCheckout bool) error {
	notices, redirect := h.Recorder.Drain()
	resp := screenResponse{State: state, Redirect: redirect, Notices: notices}
	if withCheckout {
		snap := h.Checkout.Snapshot()
		resp.Checkout = &snap
	}
	return c.JSON(code, resp)
}

func (h *ScreenHTTP) SubmitLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login.submit")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.Login.Submit(ctx, req.Email, req.Password)
	code := http.StatusOK
	if err != nil {
		code = http.StatusBadGateway
		se, ok := apiclient.AsStatusError(err)
		if (ok && se.Code < 500) || errors.Is(err, login.ErrMissingIdentity) {
			code = http.StatusUnauthorized
		}
	}
	return h.respond(c, code, string(h.Login.State()), false)
}

func (h *ScreenHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Login.Logout(ctx); err != nil {
		logging.FromContext(ctx).Error("logout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	h.Checkout.Reset()
	return h.respond(c, http.StatusOK, string(h.Login.State()), false)
}

func (h *ScreenHTTP) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.Identity())
}

// OpenCheckout mounts the order details screen, fetching the cart again.
func (h *ScreenHTTP) OpenCheckout(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Checkout.Mount(c.Request().Context())
	return h.respond(c, http.StatusOK, string(h.Checkout.State()), true)
}

func (h *ScreenHTTP) UpdateShipping(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.shipping")

	var req struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_shipping_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Checkout.UpdateShipping(req.Name, req.Value); err != nil {
		l.Warn("update_shipping_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.respond(c, http.StatusOK, string(h.Checkout.State()), true)
}

func (h *ScreenHTTP) UpdatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.payment")

	var req struct {
		PaymentMethod string `json:"paymentMethod"`
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_payment_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if req.PaymentMethod != "" {
		if err := h.Checkout.SetPaymentMethod(req.PaymentMethod); err != nil {
			l.Warn("update_payment_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if req.PaymentStatus != "" {
		if err := h.Checkout.SetPaymentStatus(req.PaymentStatus); err != nil {
			l.Warn("update_payment_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return h.respond(c, http.StatusOK, string(h.Checkout.State()), true)
}

func (h *ScreenHTTP) PlaceOrder(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	code := http.StatusCreated
	if err := h.Checkout.Submit(c.Request().Context()); err != nil {
		code = http.StatusBadGateway
	}
	return h.respond(c, code, string(h.Checkout.State()), true)
}

func (h *ScreenHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Cart{CartItems: h.Store.Cart()})
}

func (h *ScreenHTTP) DispatchCartAction(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.dispatch")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	a, err := cartactions.Decode(body)
	if err != nil {
		l.Warn("dispatch_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.Store.Dispatch(a)
	l.Info("action_dispatched", "type", a.Type)
	return c.JSON(http.StatusOK, models.Cart{CartItems: h.Store.Cart()})
}
