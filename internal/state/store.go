package state

import (
	"sync"

	"github.com/Skotchmaster/storefront/internal/cartactions"
	"github.com/Skotchmaster/storefront/internal/models"
)

type Listener func(a cartactions.Action)

// Store is the client-wide session and cart state. Every mutation goes
// through Dispatch; listeners observe actions in dispatch order.
type Store struct {
	mu sync.Mutex
	// notifyMu is taken before mu is released so listeners see actions in
	// the order they were applied. Listeners must not call Dispatch.
	notifyMu  sync.Mutex
	identity  models.Session
	cart      []models.CartItem
	listeners []Listener
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) Dispatch(a cartactions.Action) {
	s.mu.Lock()
	s.apply(a)
	listeners := append([]Listener(nil), s.listeners...)
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range listeners {
		l(a)
	}
}

func (s *Store) SetIdentity(userID, role string) {
	s.Dispatch(cartactions.NewSetUser(userID, role))
}

func (s *Store) Identity() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *Store) UserID() string {
	return s.Identity().UserID
}

// ResetIdentity drops the user from state; the cart is left untouched.
func (s *Store) ResetIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = models.Session{}
}

func (s *Store) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem(nil), s.cart...)
}

func (s *Store) apply(a cartactions.Action) {
	switch p := a.Payload.(type) {
	case cartactions.UserPayload:
		if a.Type == cartactions.SetUser {
			s.identity = models.Session{UserID: p.UserID, Role: p.Role}
		}
	case cartactions.AddPayload:
		if a.Type == cartactions.AddToCart {
			s.cart = addItem(s.cart, p)
		}
	case cartactions.ItemPayload:
		s.cart = updateItem(s.cart, a.Type, p)
	default:
		if a.Type == cartactions.ClearCart {
			s.cart = nil
		}
	}
}
