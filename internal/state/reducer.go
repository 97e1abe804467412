package state

import (
	"github.com/Skotchmaster/storefront/internal/cartactions"
	"github.com/Skotchmaster/storefront/internal/models"
)

func addItem(cart []models.CartItem, p cartactions.AddPayload) []models.CartItem {
	for i := range cart {
		if cart[i].ProductID == p.Product.ID && cart[i].VariationID == p.SelectedVariationID {
			cart[i].Quantity++
			return cart
		}
	}
	return append(cart, models.CartItem{
		ProductID:        p.Product.ID,
		Name:             p.Product.Name,
		Image:            p.Product.Image,
		Price:            p.Product.Price,
		GeneralPrice:     p.Product.GeneralPrice,
		Quantity:         1,
		VariationID:      p.SelectedVariationID,
		VariationDetails: p.SelectedVariation,
	})
}

// updateItem applies quantity changes; decreasing a line of one removes it.
func updateItem(cart []models.CartItem, t cartactions.Type, p cartactions.ItemPayload) []models.CartItem {
	idx := -1
	for i := range cart {
		if cart[i].ProductID == p.ProductID && cart[i].VariationID == p.SelectedVariationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cart
	}

	switch t {
	case cartactions.IncreaseQuantity:
		cart[idx].Quantity++
	case cartactions.DecreaseQuantity:
		if cart[idx].Quantity > 1 {
			cart[idx].Quantity--
			return cart
		}
		return append(cart[:idx], cart[idx+1:]...)
	case cartactions.RemoveFromCart:
		return append(cart[:idx], cart[idx+1:]...)
	}
	return cart
}
