// internal/domain/cart/entity.go
package cart

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront/internal/domain/product"
)

// ServerCart is the cart document returned by the backend.
// A nil Items slice means the response carried no item data.
type ServerCart struct {
	ID    string       `json:"_id"`
	Items []ServerItem `json:"items"`
}

// ServerItem is one cart line as the backend stores it
type ServerItem struct {
	ID        string          `json:"_id"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type serverLine struct {
	ID        string          `json:"_id"`
	ProductID string          `json:"productId"`
	Product   json.RawMessage `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// UnmarshalJSON accepts a flat productId as well as a product reference, which
// the backend sends either as an id string or as the populated product document.
func (i *ServerItem) UnmarshalJSON(data []byte) error {
	var l serverLine
	if err := json.Unmarshal(data, &l); err != nil {
		return err
	}
	*i = ServerItem{
		ID:        l.ID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Price:     l.Price,
	}
	if i.ProductID != "" {
		return nil
	}

	ref := bytes.TrimSpace(l.Product)
	switch {
	case len(ref) == 0 || bytes.Equal(ref, []byte("null")):
	case ref[0] == '"':
		return json.Unmarshal(ref, &i.ProductID)
	default:
		var doc struct {
			ID    string `json:"_id"`
			AltID string `json:"id"`
		}
		if err := json.Unmarshal(ref, &doc); err != nil {
			return err
		}
		i.ProductID = doc.ID
		if i.ProductID == "" {
			i.ProductID = doc.AltID
		}
	}
	return nil
}

// ItemRequest is the body of add and update calls
type ItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// LineItem is a cart line enriched with product details for display
type LineItem struct {
	ProductID   string          `json:"id"`
	ItemID      string          `json:"itemId,omitempty"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Rating      float64         `json:"rating"`
	Description string          `json:"description"`
	Unavailable bool            `json:"unavailable,omitempty"`
}

// State is a point-in-time view of the store
type State struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	Open      bool            `json:"isOpen"`
	Loading   bool            `json:"loading"`
	Error     string          `json:"error,omitempty"`
}

func newLineItem(item ServerItem, p product.Product, placeholder bool) LineItem {
	price := item.Price
	if price.IsZero() {
		price = p.Price
	}
	return LineItem{
		ProductID:   item.ProductID,
		ItemID:      item.ID,
		Name:        p.Name,
		UnitPrice:   price,
		Quantity:    item.Quantity,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		Image:       p.Image,
		Stock:       p.Stock,
		Category:    p.Category,
		Rating:      p.Rating,
		Description: p.Description,
		Unavailable: placeholder,
	}
}

// Total returns the sum of unit price times quantity over items
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount returns the sum of quantities over items
func ItemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
