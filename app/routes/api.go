package routes

import (
	"github.com/shashiranjanraj/stockpile/app/controllers"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/ctx"
	"github.com/shashiranjanraj/stockpile/pkg/middleware"
	"github.com/shashiranjanraj/stockpile/pkg/rbac"
	"github.com/shashiranjanraj/stockpile/pkg/router"
)

// Controllers bundles the handlers RegisterAPI mounts.
type Controllers struct {
	Auth      *controllers.AuthController
	Products  *controllers.ProductController
	Purchases *controllers.PurchaseController
}

// RegisterAPI mounts the public auth endpoints and the token-protected
// inventory endpoints under /api.
func RegisterAPI(r *router.Router, c Controllers, tokens middleware.Authenticator) {
	api := r.Group("/api")
	api.Post("/register", "auth.register", ctx.Wrap(c.Auth.Register))
	api.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))

	protected := api.Group("", middleware.Auth(tokens))
	protected.Get("/products", "products.index", ctx.Wrap(c.Products.Index))

	seller := protected.Group("", rbac.HasRole(auth.RoleSeller))
	seller.Post("/products", "products.store", ctx.Wrap(c.Products.Store))
	seller.Put("/products/{id}/price", "products.price", ctx.Wrap(c.Products.UpdatePrice))
	seller.Put("/products/{id}/quantity", "products.quantity", ctx.Wrap(c.Products.AdjustQuantity))
	seller.Delete("/products/{id}", "products.destroy", ctx.Wrap(c.Products.Destroy))

	customer := protected.Group("", rbac.HasRole(auth.RoleCustomer))
	customer.Post("/buy", "purchases.buy", ctx.Wrap(c.Purchases.Buy))
	customer.Delete("/buy/{itemId}", "purchases.destroy", ctx.Wrap(c.Purchases.DeleteReservation))
	customer.Post("/generate-bill", "purchases.bill", ctx.Wrap(c.Purchases.GenerateBill))
}
