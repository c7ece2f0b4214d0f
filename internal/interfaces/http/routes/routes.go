// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/session"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
)

// Dependencies are the services the routes are served by
type Dependencies struct {
	Registry *session.Registry
	Products *product.Service
	Logger   logrus.FieldLogger
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Registry)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify/:token", authHandler.VerifyEmail)
		auth.POST("/password/forgot", authHandler.ForgotPassword)
		auth.POST("/password/reset/:token", authHandler.ResetPassword)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.GetProfile)
	}
}

// SetupCartRoutes sets up cart related routes.
// Mutations are not behind RequireAuth: the cart store answers signed-out
// callers itself, with its sign-in message and toast.
func SetupCartRoutes(rg *gin.RouterGroup, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.Products, deps.Logger)

	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.POST("/toggle", cartHandler.ToggleCart)
		cart.POST("/open", cartHandler.OpenCart)
		cart.POST("/close", cartHandler.CloseCart)

		cart.POST("/reload", middleware.RequireAuth(), cartHandler.ReloadCart)
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, deps Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Products)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupNotificationRoutes sets up toast delivery routes
func SetupNotificationRoutes(rg *gin.RouterGroup) {
	notificationHandler := handlers.NewNotificationHandler()
	rg.GET("/notifications", notificationHandler.Drain)
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies) {
	SetupAuthRoutes(rg, deps)
	SetupCartRoutes(rg, deps)
	SetupProductRoutes(rg, deps)
	SetupNotificationRoutes(rg)
}
