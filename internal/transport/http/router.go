package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/auroramart/storefront/internal/handlers"
	"github.com/auroramart/storefront/internal/handlers/basket"
	"github.com/auroramart/storefront/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	ReviewHandler   *handlers.ReviewHandler
	CustomerHandler *handlers.CustomerHandler
	HomeHandler     *handlers.HomeHandler
	BasketHandler   *basket.BasketHandler
	SearchHandler   *handlers.SearchHandler
	TokenService    *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)

	v1.GET("/home", d.HomeHandler.Home)
	v1.POST("/onboarding", d.HomeHandler.Onboarding)
	v1.POST("/recommendations/toggle", d.HomeHandler.ToggleRecommendations)

	v1.GET("/search", d.SearchHandler.Search)
	v1.GET("/categories", d.CategoryHandler.GetCategories)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:sku", d.ProductHandler.GetProduct)
	products.GET("/:sku/reviews", d.ReviewHandler.GetReviews)

	// baskets work for anonymous sessions, no auth middleware here
	b := v1.Group("/basket")
	b.GET("", d.BasketHandler.GetBasket)
	b.POST("/items", d.BasketHandler.AddItem)
	b.PATCH("/items/:id", d.BasketHandler.UpdateItem)
	b.DELETE("/items/:id", d.BasketHandler.RemoveItem)

	checkout := v1.Group("/checkout")
	checkout.POST("/shipping", d.BasketHandler.Shipping)
	checkout.POST("/payment", d.BasketHandler.Payment)
	checkout.GET("/review", d.BasketHandler.Review)
	checkout.POST("/confirm", d.BasketHandler.Confirm)

	account := v1.Group("/account", d.TokenService.AutoRefreshMiddleware)
	account.GET("/profile", d.CustomerHandler.GetProfile)
	account.PUT("/profile", d.CustomerHandler.UpdateProfile)
	account.GET("/orders", d.CustomerHandler.GetOrders)
	account.GET("/orders/:number", d.CustomerHandler.GetOrder)
	account.POST("/products/:sku/reviews", d.ReviewHandler.CreateReview)

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:sku", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:sku", d.ProductHandler.DeleteProduct)
	admin.POST("/categories", d.CategoryHandler.CreateCategory)
	admin.DELETE("/categories/:id", d.CategoryHandler.DeleteCategory)
	admin.POST("/subcategories", d.CategoryHandler.CreateSubcategory)
	admin.GET("/customers", d.CustomerHandler.ListCustomers)
	admin.GET("/customers/:id", d.CustomerHandler.GetCustomer)
	admin.POST("/customers/:id/toggle", d.CustomerHandler.ToggleCustomerActive)
}
