// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// CartHandler exposes the session's cart store
type CartHandler struct {
	products product.Lookup
	log      logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(products product.Lookup, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		products: products,
		log:      log,
	}
}

// AddItemRequest is the body of POST /cart/items
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// UpdateItemRequest is the body of PUT /cart/items/:id
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    sess.Cart.Snapshot(),
	})
}

// ReloadCart handles POST /cart/reload
func (h *CartHandler) ReloadCart(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	if err := sess.Cart.LoadCart(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart reloaded successfully",
		"data":    sess.Cart.Snapshot(),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// The product name is only needed for the confirmation toast.
	item := product.Product{ID: req.ProductID}
	if sess.Auth.IsAuthenticated() {
		if p, err := h.products.GetProductByID(c.Request.Context(), req.ProductID); err == nil {
			item = *p
		} else {
			h.log.WithError(err).WithField("product_id", req.ProductID).Debug("product lookup before add failed")
		}
	}

	if err := sess.Cart.AddToCart(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    sess.Cart.Snapshot(),
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := sess.Cart.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    sess.Cart.Snapshot(),
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	if err := sess.Cart.RemoveFromCart(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    sess.Cart.Snapshot(),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)

	if err := sess.Cart.ClearCart(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    sess.Cart.Snapshot(),
	})
}

// ToggleCart handles POST /cart/toggle
func (h *CartHandler) ToggleCart(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)
	sess.Cart.ToggleCart()
	c.JSON(http.StatusOK, gin.H{"data": sess.Cart.Snapshot()})
}

// OpenCart handles POST /cart/open
func (h *CartHandler) OpenCart(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)
	sess.Cart.OpenCart()
	c.JSON(http.StatusOK, gin.H{"data": sess.Cart.Snapshot()})
}

// CloseCart handles POST /cart/close
func (h *CartHandler) CloseCart(c *gin.Context) {
	sess, _ := middleware.GetSessionFromContext(c)
	sess.Cart.CloseCart()
	c.JSON(http.StatusOK, gin.H{"data": sess.Cart.Snapshot()})
}
