package api

import (
	"context"
	"net/url"

	"github.com/your-org/storefront/internal/domain/cart"
)

// GetCart fetches the caller's cart with its lines
func (c *Client) GetCart(ctx context.Context) (*cart.ServerCart, error) {
	sc := &cart.ServerCart{}
	if err := c.get(ctx, pathCart, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// GetCartSummary fetches the lightweight cart representation
func (c *Client) GetCartSummary(ctx context.Context) (*cart.ServerCart, error) {
	sc := &cart.ServerCart{}
	if err := c.get(ctx, pathCartSummary, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (c *Client) AddToCart(ctx context.Context, req cart.ItemRequest) error {
	return c.post(ctx, pathCartAdd, req, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, req cart.ItemRequest) error {
	return c.put(ctx, pathCartUpdate, req, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	return c.delete(ctx, pathCartRemove+url.PathEscape(productID))
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.delete(ctx, pathCartClear)
}
