package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/login"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/state"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/internal/ui"
)

func newBackend(t *testing.T) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokens.Claims{
		UserID: "u1",
		Role:   models.RoleCustomer,
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	e := echo.New()
	e.POST("/api/users/login", func(c echo.Context) error {
		var req apiclient.LoginRequest
		if err := c.Bind(&req); err != nil {
			return err
		}
		if req.Password == "upstream-down" {
			return c.HTML(http.StatusBadGateway, "<html><body>502 Bad Gateway</body></html>")
		}
		if req.Password != "pw" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "bad credentials"})
		}
		return c.JSON(http.StatusOK, echo.Map{"token": token})
	})
	e.GET("/api/cart/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"cartItems": []echo.Map{
				{"productId": "p1", "price": 10, "quantity": 2},
				{"productId": "p2", "generalPrice": 5, "quantity": 3},
			},
		})
	})
	e.POST("/api/orders/create", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, echo.Map{"_id": "o1"})
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	gdb, err := db.Open(context.Background(), "", filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	api := apiclient.NewClient(newBackend(t), 2*time.Second)
	store := state.NewStore()
	rec := &ui.Recorder{}
	ts := &tokenstore.GormStore{DB: gdb}

	screens := &ScreenHTTP{
		Login: &login.Flow{
			API: api, Tokens: ts, Decoder: tokens.UnverifiedDecoder{},
			Store: store, Notifier: rec, Nav: rec,
		},
		Checkout: &checkout.Flow{API: api, Store: store, Notifier: rec, Nav: rec},
		Store:    store,
		Recorder: rec,
	}

	e := echo.New()
	Register(e, &Deps{Screens: screens, Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))})
	return e
}

func do(t *testing.T, e *echo.Echo, method, path string, body any) (*httptest.ResponseRecorder, screenResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp screenResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestScreens_LoginThenCheckout(t *testing.T) {
	e := newTestServer(t)

	rec, resp := do(t, e, http.MethodPost, "/login", echo.Map{"email": "c@shop.test", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", resp.Redirect)
	assert.Equal(t, string(login.StateAuthenticated), resp.State)

	rec, _ = do(t, e, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"u1","role":"customer"}`, rec.Body.String())

	rec, resp = do(t, e, http.MethodGet, "/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Checkout)
	assert.Equal(t, "35.00", resp.Checkout.Total)

	rec, resp = do(t, e, http.MethodPatch, "/checkout/shipping", echo.Map{"name": "city", "value": "Nairobi"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nairobi", resp.Checkout.ShippingInfo.City)

	rec, _ = do(t, e, http.MethodPatch, "/checkout/shipping", echo.Map{"name": "planet", "value": "Mars"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = do(t, e, http.MethodPut, "/checkout/payment", echo.Map{"paymentStatus": "payNow"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payNow", resp.Checkout.PaymentStatus)

	rec, resp = do(t, e, http.MethodPost, "/checkout/orders", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/confirmOrder/u1", resp.Redirect)
	assert.Equal(t, []ui.Notice{{Kind: ui.KindToastSuccess, Message: checkout.MsgOrderPlaced}}, resp.Notices)
}

func TestScreens_LoginBadCredentials(t *testing.T) {
	e := newTestServer(t)

	rec, resp := do(t, e, http.MethodPost, "/login", echo.Map{"email": "c@shop.test", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, resp.Redirect)
	assert.Equal(t, []ui.Notice{{Kind: ui.KindAlert, Message: "bad credentials"}}, resp.Notices)
}

func TestScreens_LoginUpstreamHTMLError(t *testing.T) {
	e := newTestServer(t)

	rec, resp := do(t, e, http.MethodPost, "/login", echo.Map{"email": "c@shop.test", "password": "upstream-down"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, []ui.Notice{{Kind: ui.KindAlert, Message: login.MsgLoginError}}, resp.Notices)
}

func TestScreens_DispatchCartAction(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/cart/actions", bytes.NewReader([]byte(
		`{"type":"ADD_TO_CART","payload":{"product":{"_id":"p1","name":"cup","price":3},"selectedVariationId":"","selectedVariation":null}}`,
	)))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, "p1", cart.CartItems[0].ProductID)

	req = httptest.NewRequest(http.MethodPost, "/cart/actions", bytes.NewReader([]byte(`{"type":"NOPE"}`)))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreens_Health(t *testing.T) {
	e := newTestServer(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
