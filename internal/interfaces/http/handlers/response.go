package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/pkg/apierror"
)

// respondError translates a domain or backend failure into an HTTP response
func respondError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

func errorResponse(err error) (int, gin.H) {
	var cartErr *cart.Error
	if errors.As(err, &cartErr) {
		body := gin.H{"error": cartErr.Message, "class": cartErr.Class.String()}
		switch {
		case cartErr.Class == cart.ClassAuthenticationRequired:
			return http.StatusUnauthorized, body
		case cartErr.Class == cart.ClassVerificationRequired:
			body["code"] = apierror.CodeVerificationRequired
			body["verificationRequired"] = true
			return http.StatusForbidden, body
		case errors.Is(err, cart.ErrLoadInProgress):
			return http.StatusServiceUnavailable, body
		case cartErr.Status >= 400 && cartErr.Status < 500:
			return cartErr.Status, body
		default:
			return http.StatusBadGateway, body
		}
	}

	if errors.Is(err, user.ErrMissingToken) {
		return http.StatusBadGateway, gin.H{"error": err.Error()}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, gin.H{"error": "Request timeout"}
	}

	if apiErr, ok := apierror.As(err); ok {
		body := gin.H{"error": apiErr.Message}
		if apiErr.Code != "" {
			body["code"] = apiErr.Code
		}
		if apiErr.VerificationRequired {
			body["verificationRequired"] = true
		}
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, body
		}
		return http.StatusBadGateway, body
	}

	return http.StatusInternalServerError, gin.H{"error": err.Error()}
}
