package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

const (
	PaymentMethodMpesa = "mpesa"

	PaymentStatusPayNow           = "payNow"
	PaymentStatusPayAfterDelivery = "payAfterDelivery"
	PaymentStatusPayLater         = "payLater"
)

type Session struct {
	Token  string `json:"-"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

type VariationDetails struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Material string `json:"material"`
}

type Product struct {
	ID           string   `json:"_id"`
	Name         string   `json:"name"`
	Image        string   `json:"image"`
	Price        *float64 `json:"price,omitempty"`
	GeneralPrice *float64 `json:"generalPrice,omitempty"`
}

// CartItem is one cart line as the backend sends it. Keys the client does not
// model are kept in Extra and written back out unchanged.
type CartItem struct {
	ProductID        string            `json:"productId"`
	Name             string            `json:"name,omitempty"`
	Image            string            `json:"image,omitempty"`
	Price            *float64          `json:"price,omitempty"`
	GeneralPrice     *float64          `json:"generalPrice,omitempty"`
	Quantity         uint              `json:"quantity"`
	VariationID      string            `json:"variationId,omitempty"`
	VariationDetails *VariationDetails `json:"variationDetails"`

	Extra map[string]json.RawMessage `json:"-"`
}

type cartItemFields CartItem

func (c *CartItem) UnmarshalJSON(data []byte) error {
	var known cartItemFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range cartItemKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		known.Extra = all
	}
	*c = CartItem(known)
	return nil
}

func (c CartItem) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(cartItemFields(c))
	if err != nil || len(c.Extra) == 0 {
		return known, err
	}
	out := make(map[string]json.RawMessage, len(c.Extra)+len(cartItemKeys))
	for k, v := range c.Extra {
		out[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

var cartItemKeys = []string{
	"productId", "name", "image", "price", "generalPrice",
	"quantity", "variationId", "variationDetails",
}

// UnitPrice prefers the item price and falls back to the general product price.
func (c CartItem) UnitPrice() float64 {
	if c.Price != nil {
		return *c.Price
	}
	if c.GeneralPrice != nil {
		return *c.GeneralPrice
	}
	return 0
}

func (c CartItem) LineTotal() float64 {
	return c.UnitPrice() * float64(c.Quantity)
}

// Key identifies a cart line: the same product in two variations is two lines.
func (c CartItem) Key() string {
	return c.ProductID + c.VariationID
}

func (c CartItem) VariationSummary() string {
	if c.VariationDetails == nil {
		return "None"
	}
	v := c.VariationDetails
	return fmt.Sprintf("Size: %s, Color: %s, Material: %s", v.Size, v.Color, v.Material)
}

type Cart struct {
	CartItems []CartItem `json:"cartItems"`
}

type ShippingInfo struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type Order struct {
	UserID        string       `json:"userId"`
	CartItems     []CartItem   `json:"cartItems"`
	ShippingInfo  ShippingInfo `json:"shippingInfo"`
	PaymentMethod string       `json:"paymentMethod"`
	PaymentStatus string       `json:"paymentStatus"`
}

type StoredValue struct {
	Key       string    `gorm:"column:storage_key;primaryKey" json:"key"`
	Value     string    `gorm:"not null"                      json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"                json:"updated_at"`
}

func (StoredValue) TableName() string {
	return "client_storage"
}

var ErrUnknownField = errors.New("unknown shipping field")

// With returns a copy of s with the named form field replaced.
func (s ShippingInfo) With(field, value string) (ShippingInfo, error) {
	switch field {
	case "address":
		s.Address = value
	case "city":
		s.City = value
	case "postalCode":
		s.PostalCode = value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return s, nil
}
