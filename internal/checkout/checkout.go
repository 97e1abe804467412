package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Skotchmaster/storefront/internal/cartactions"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/state"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/internal/ui"
)

const (
	MsgOrderPlaced = "Order placed successfully!"
	MsgOrderFailed = "Error placing order. Please try again later"
)

var ErrValidation = errors.New("validation")

type State string

const (
	StateDraft      State = "draft"
	StateSubmitting State = "submitting"
	StatePlaced     State = "placed"
)

type Backend interface {
	GetCart(ctx context.Context, userID, bearer string) (*models.Cart, error)
	CreateOrder(ctx context.Context, order models.Order) (json.RawMessage, error)
}

// Flow is the order details screen. Zero values for form fields are the
// screen's initial values; call Reset before reuse for another user.
type Flow struct {
	API      Backend
	Store    *state.Store
	Notifier ui.Notifier
	Nav      ui.Navigator
	Events   events.Publisher

	// When set, the cart fetch authenticates with the stored token.
	Tokens        tokenstore.Store
	AuthCartFetch bool

	mu       sync.Mutex
	state    State
	cart     []models.CartItem
	shipping models.ShippingInfo
	method   string
	status   string
}

// Snapshot is what the screen renders.
type Snapshot struct {
	State                State               `json:"state"`
	UserID               string              `json:"userId"`
	CartItems            []models.CartItem   `json:"cartItems"`
	Lines                []Line              `json:"lines"`
	Total                string              `json:"total"`
	ShippingInfo         models.ShippingInfo `json:"shippingInfo"`
	PaymentMethod        string              `json:"paymentMethod"`
	PaymentStatus        string              `json:"paymentStatus"`
	PaymentStatusVisible bool                `json:"paymentStatusVisible"`
}

type Line struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	UnitPrice  string `json:"unitPrice"`
	Variations string `json:"variations"`
	Quantity   uint   `json:"quantity"`
	Total      string `json:"total"`
}

func (f *Flow) ensureDefaults() {
	if f.state == "" {
		f.state = StateDraft
	}
	if f.method == "" {
		f.method = models.PaymentMethodMpesa
	}
	if f.status == "" {
		f.status = models.PaymentStatusPayLater
	}
}

// Reset clears the cart and form back to their initial values.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *Flow) resetLocked() {
	f.state, f.cart, f.shipping, f.method, f.status = "", nil, models.ShippingInfo{}, "", ""
	f.ensureDefaults()
}

// Mount opens the screen from its initial values and loads the current
// user's cart. A failed fetch is logged and leaves the cart empty; nothing
// is shown to the user.
func (f *Flow) Mount(ctx context.Context) {
	f.Reset()

	userID := f.Store.UserID()
	l := logging.FromContext(ctx).With("flow", "checkout.mount", "user_id", userID)

	bearer := ""
	if f.AuthCartFetch && f.Tokens != nil {
		token, err := f.Tokens.Load(ctx)
		if err != nil {
			l.Warn("fetch_cart_token_missing", "error", err)
		}
		bearer = token
	}

	cart, err := f.API.GetCart(ctx, userID, bearer)
	if err != nil {
		l.Error("fetch_cart_error", "error", err)
		return
	}

	items := cart.CartItems
	if items == nil {
		items = []models.CartItem{}
	}

	f.mu.Lock()
	f.cart = items
	f.mu.Unlock()
	l.Info("cart_loaded", "items", len(items))
}

func (f *Flow) UpdateShipping(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next, err := f.shipping.With(field, value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	f.shipping = next
	return nil
}

func (f *Flow) SetPaymentMethod(method string) error {
	if method != models.PaymentMethodMpesa {
		return fmt.Errorf("%w: unsupported payment method %q", ErrValidation, method)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.method = method
	return nil
}

func (f *Flow) SetPaymentStatus(status string) error {
	switch status {
	case models.PaymentStatusPayNow, models.PaymentStatusPayAfterDelivery:
	default:
		return fmt.Errorf("%w: unsupported payment status %q", ErrValidation, status)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	return nil
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureDefaults()

	cart := append([]models.CartItem{}, f.cart...)
	lines := make([]Line, 0, len(cart))
	for _, it := range cart {
		lines = append(lines, Line{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Image:      it.Image,
			UnitPrice:  FormatAmount(it.UnitPrice()),
			Variations: it.VariationSummary(),
			Quantity:   it.Quantity,
			Total:      FormatAmount(it.LineTotal()),
		})
	}

	return Snapshot{
		State:                f.state,
		UserID:               f.Store.UserID(),
		CartItems:            cart,
		Lines:                lines,
		Total:                FormatAmount(Total(cart)),
		ShippingInfo:         f.shipping,
		PaymentMethod:        f.method,
		PaymentStatus:        f.status,
		PaymentStatusVisible: f.method == models.PaymentMethodMpesa,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureDefaults()
	return f.state
}

// Submit posts the order. On failure the form is left as it was so the user
// can try again.
func (f *Flow) Submit(ctx context.Context) error {
	userID := f.Store.UserID()
	l := logging.FromContext(ctx).With("flow", "checkout.submit", "user_id", userID)

	f.mu.Lock()
	f.ensureDefaults()
	order := models.Order{
		UserID:        userID,
		CartItems:     append([]models.CartItem{}, f.cart...),
		ShippingInfo:  f.shipping,
		PaymentMethod: f.method,
		PaymentStatus: f.status,
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	created, err := f.API.CreateOrder(ctx, order)
	if err != nil {
		f.mu.Lock()
		f.state = StateDraft
		f.mu.Unlock()

		l.Error("place_order_error", "error", err)
		f.Notifier.ToastError(MsgOrderFailed)
		f.publish(ctx, events.New(events.TypeOrderFailed, userID, map[string]any{"error": err.Error()}))
		return err
	}

	l.Info("order_placed", "items", len(order.CartItems), "response", string(created))
	f.Notifier.ToastSuccess(MsgOrderPlaced)
	f.Store.Dispatch(cartactions.NewClearCart())

	f.mu.Lock()
	f.state = StatePlaced
	f.mu.Unlock()

	f.Nav.Navigate(ConfirmPath(userID))

	f.publish(ctx, events.New(events.TypeOrderPlaced, userID, map[string]any{
		"items":         len(order.CartItems),
		"total":         FormatAmount(Total(order.CartItems)),
		"paymentMethod": order.PaymentMethod,
		"paymentStatus": order.PaymentStatus,
	}))
	return nil
}

func (f *Flow) publish(ctx context.Context, e events.Event) {
	if f.Events == nil {
		return
	}
	if err := f.Events.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "event", e.Type, "error", err)
	}
}

func ConfirmPath(userID string) string {
	return "/confirmOrder/" + userID
}

func Total(items []models.CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// FormatAmount rounds for display only; orders carry unrounded items.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
