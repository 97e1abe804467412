package cartactions

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Type string

const (
	AddToCart        Type = "ADD_TO_CART"
	IncreaseQuantity Type = "INCREASE_QUANTITY"
	DecreaseQuantity Type = "DECREASE_QUANTITY"
	RemoveFromCart   Type = "REMOVE_FROM_CART"
	ClearCart        Type = "CLEAR_CART"
	SetUser          Type = "SET_USER"
)

// Action is a plain descriptor applied by state.Store.
type Action struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
}

type AddPayload struct {
	Product             models.Product           `json:"product"`
	SelectedVariationID string                   `json:"selectedVariationId"`
	SelectedVariation   *models.VariationDetails `json:"selectedVariation"`
}

type ItemPayload struct {
	ProductID           string `json:"productId"`
	SelectedVariationID string `json:"selectedVariationId"`
}

type UserPayload struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func NewAddToCart(product models.Product, selectedVariationID string, selectedVariation *models.VariationDetails) Action {
	return Action{
		Type: AddToCart,
		Payload: AddPayload{
			Product:             product,
			SelectedVariationID: selectedVariationID,
			SelectedVariation:   selectedVariation,
		},
	}
}

func NewIncreaseQuantity(productID, selectedVariationID string) Action {
	return itemAction(IncreaseQuantity, productID, selectedVariationID)
}

func NewDecreaseQuantity(productID, selectedVariationID string) Action {
	return itemAction(DecreaseQuantity, productID, selectedVariationID)
}

func NewRemoveFromCart(productID, selectedVariationID string) Action {
	return itemAction(RemoveFromCart, productID, selectedVariationID)
}

func NewClearCart() Action {
	return Action{Type: ClearCart}
}

func NewSetUser(userID, role string) Action {
	return Action{
		Type:    SetUser,
		Payload: UserPayload{UserID: userID, Role: role},
	}
}

func itemAction(t Type, productID, selectedVariationID string) Action {
	return Action{
		Type: t,
		Payload: ItemPayload{
			ProductID:           productID,
			SelectedVariationID: selectedVariationID,
		},
	}
}

var ErrUnknownAction = errors.New("unknown cart action")

// Decode reads a {type, payload} descriptor sent over the wire.
func Decode(raw []byte) (Action, error) {
	var env struct {
		Type    Type            `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}

	var payload any
	switch env.Type {
	case AddToCart:
		var p AddPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return Action{}, err
		}
		payload = p
	case IncreaseQuantity, DecreaseQuantity, RemoveFromCart:
		var p ItemPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return Action{}, err
		}
		payload = p
	case SetUser:
		var p UserPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return Action{}, err
		}
		payload = p
	case ClearCart:
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}

	return Action{Type: env.Type, Payload: payload}, nil
}

func unmarshalPayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("decode action: missing payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode action payload: %w", err)
	}
	return nil
}
