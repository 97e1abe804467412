package login

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/state"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/internal/ui"
)

const (
	PathAdmin   = "/modify"
	PathLanding = "/"

	MsgLoginError = "An error occurred while logging in."
	MsgCartError  = "An error occurred while fetching the cart data."
)

var ErrMissingIdentity = errors.New("token has no user id")

type State string

const (
	StateIdle          State = "idle"
	StateSubmitting    State = "submitting"
	StateFailed        State = "failed"
	StateAuthenticated State = "authenticated"
)

type Backend interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	GetCart(ctx context.Context, userID, bearer string) (*models.Cart, error)
}

type Flow struct {
	API      Backend
	Tokens   tokenstore.Store
	Decoder  tokens.Decoder
	Store    *state.Store
	Notifier ui.Notifier
	Nav      ui.Navigator
	Events   events.Publisher

	mu    sync.Mutex
	state State
	cart  []models.CartItem
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == "" {
		return StateIdle
	}
	return f.state
}

// Cart is the cart fetched right after login. Nothing else reads it; the
// checkout screen fetches its own copy.
func (f *Flow) Cart() []models.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CartItem(nil), f.cart...)
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
}

// Submit exchanges credentials for a token and routes the user by role.
// Failures are already surfaced to the user when Submit returns them.
func (f *Flow) Submit(ctx context.Context, email, password string) error {
	l := logging.FromContext(ctx).With("flow", "login.submit")
	f.setState(StateSubmitting)

	res, err := f.API.Login(ctx, email, password)
	if err != nil {
		f.setState(StateFailed)
		if se, ok := apiclient.AsStatusError(err); ok && se.Message != "" {
			l.Warn("login_failed", "status", se.Code, "message", se.Message)
			f.Notifier.Alert(se.Message)
			return err
		}
		l.Error("login_error", "error", err)
		f.Notifier.Alert(MsgLoginError)
		return err
	}

	if err := f.Tokens.Save(ctx, res.Token); err != nil {
		f.setState(StateFailed)
		l.Error("login_error", "reason", "cannot persist token", "error", err)
		f.Notifier.Alert(MsgLoginError)
		return fmt.Errorf("save token: %w", err)
	}

	claims, err := f.Decoder.Decode(res.Token)
	if err != nil {
		f.setState(StateFailed)
		l.Error("login_error", "reason", "cannot decode token", "error", err)
		f.Notifier.Alert(MsgLoginError)
		return err
	}
	l.Debug("token_decoded", "user_id", claims.UserID, "role", claims.Role)

	if claims.UserID == "" {
		f.setState(StateFailed)
		l.Warn("login_failed", "reason", "token without user id")
		return ErrMissingIdentity
	}

	f.Store.SetIdentity(claims.UserID, claims.Role)
	l = l.With("user_id", claims.UserID)

	f.fetchUserCart(ctx, claims.UserID)

	f.setState(StateAuthenticated)
	if claims.Role == models.RoleAdmin {
		f.Nav.Navigate(PathAdmin)
	} else {
		f.Nav.Navigate(PathLanding)
	}
	l.Info("login_successful", "role", claims.Role)

	f.publish(ctx, claims)
	return nil
}

func (f *Flow) fetchUserCart(ctx context.Context, userID string) {
	l := logging.FromContext(ctx).With("flow", "login.fetch_cart", "user_id", userID)

	token, err := f.Tokens.Load(ctx)
	if err != nil {
		l.Error("fetch_cart_error", "reason", "cannot load token", "error", err)
		f.Notifier.Alert(MsgCartError)
		return
	}

	cart, err := f.API.GetCart(ctx, userID, token)
	if err != nil {
		l.Error("fetch_cart_error", "error", err)
		f.Notifier.Alert(MsgCartError)
		return
	}

	f.mu.Lock()
	f.cart = cart.CartItems
	f.mu.Unlock()
	l.Debug("cart_fetched", "items", len(cart.CartItems))
}

func (f *Flow) publish(ctx context.Context, claims *tokens.Claims) {
	if f.Events == nil {
		return
	}
	e := events.New(events.TypeLoginSucceeded, claims.UserID, map[string]any{"role": claims.Role})
	if err := f.Events.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "event", e.Type, "error", err)
	}
}

// Logout forgets the persisted token and the identity in state.
func (f *Flow) Logout(ctx context.Context) error {
	if err := f.Tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	f.Store.ResetIdentity()

	f.mu.Lock()
	f.state = StateIdle
	f.cart = nil
	f.mu.Unlock()

	logging.FromContext(ctx).Info("logout_successful")
	return nil
}
