package api

import (
	"context"

	"github.com/your-org/storefront/internal/domain/product"
)

// GetProductByID fetches one product; a missing product yields a 404 apierror
func (c *Client) GetProductByID(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := c.get(ctx, productPath(id), &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

// ListProducts fetches one page of the catalog
func (c *Client) ListProducts(ctx context.Context, req *product.ProductListRequest) (*product.ProductResponse, error) {
	var resp product.ProductResponse
	if err := c.get(ctx, productListPath(req), &resp); err != nil {
		return nil, err
	}
	if resp.Products == nil {
		resp.Products = []product.Product{}
	}
	return &resp, nil
}

// ListCategories fetches the catalog categories
func (c *Client) ListCategories(ctx context.Context) ([]product.Category, error) {
	var categories []product.Category
	if err := c.get(ctx, pathCategories, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []product.Category{}
	}
	return categories, nil
}
