package api

import (
	"net/url"
	"strconv"

	"github.com/your-org/storefront/internal/domain/product"
)

// Backend endpoint paths
const (
	pathCart        = "/api/cart"
	pathCartSummary = "/api/cart/summary"
	pathCartAdd     = "/api/cart/add"
	pathCartUpdate  = "/api/cart/update"
	pathCartRemove  = "/api/cart/remove/"
	pathCartClear   = "/api/cart/clear"

	pathProducts   = "/api/products"
	pathCategories = "/api/products/categories"

	pathRegister      = "/users/register"
	pathLogin         = "/users/login"
	pathVerify        = "/users/verify/"
	pathProfile       = "/users/profile/"
	pathResetRequest  = "/users/reset-password-request"
	pathResetPassword = "/users/reset-password/"
)

func productPath(id string) string {
	return pathProducts + "/" + url.PathEscape(id)
}

func productListPath(req *product.ProductListRequest) string {
	q := url.Values{}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Category != "" {
		q.Set("category", req.Category)
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if len(q) == 0 {
		return pathProducts
	}
	return pathProducts + "?" + q.Encode()
}
