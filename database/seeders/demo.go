package seeders

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/stockpile/app/services"
	"github.com/shashiranjanraj/stockpile/pkg/app"
	"github.com/shashiranjanraj/stockpile/pkg/apperr"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
)

func init() {
	Register("users", seedUsers)
	Register("products", seedProducts)
}

// Demo accounts. The passwords are for local use only.
var demoUsers = []struct {
	username, password string
	role               auth.Role
}{
	{"seller", "seller123", auth.RoleSeller},
	{"customer", "customer123", auth.RoleCustomer},
}

var demoProducts = []services.NewProduct{
	{ItemID: "SKU-APPLE", Name: "Apple", Quantity: 120, Price: decimal.RequireFromString("0.45")},
	{ItemID: "SKU-BREAD", Name: "Sourdough loaf", Quantity: 30, Price: decimal.RequireFromString("4.20")},
	{ItemID: "SKU-MILK", Name: "Milk 1L", Quantity: 60, Price: decimal.RequireFromString("1.15")},
	{ItemID: "SKU-COFFEE", Name: "Coffee beans 500g", Quantity: 15, Price: decimal.RequireFromString("11.90")},
}

func seedUsers(ctx context.Context, a *app.App) error {
	svc := a.AuthService()
	for _, u := range demoUsers {
		_, err := svc.Register(ctx, u.username, u.password, u.role)
		if err != nil && !apperr.Is(err, apperr.DuplicateUsername) {
			return err
		}
	}
	return nil
}

func seedProducts(ctx context.Context, a *app.App) error {
	svc := a.InventoryService()
	seller := auth.Identity{SubjectID: 0, Role: auth.RoleSeller}
	for _, p := range demoProducts {
		_, err := svc.AddProduct(ctx, seller, p)
		if err != nil && !apperr.Is(err, apperr.DuplicateProduct) {
			return err
		}
	}
	return nil
}
