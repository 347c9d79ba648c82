package controllers

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/stockpile/app/services"
	"github.com/shashiranjanraj/stockpile/pkg/ctx"
)

// ProductController serves the seller-facing catalogue endpoints.
type ProductController struct {
	inventory *services.InventoryService
}

func NewProductController(inventory *services.InventoryService) *ProductController {
	return &ProductController{inventory: inventory}
}

type addProductInput struct {
	ItemID   string          `json:"itemId"   validate:"required,max=100"`
	Name     string          `json:"name"     validate:"required,max=255"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type updatePriceInput struct {
	NewPrice *decimal.Decimal `json:"newPrice" validate:"required"`
}

type adjustQuantityInput struct {
	Delta int `json:"delta"`
}

// Index handles GET /api/products.
func (c *ProductController) Index(cx *ctx.Context) {
	products, err := c.inventory.ListProducts(cx.Context(), cx.Identity())
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Success(products)
}

// Store handles POST /api/products.
func (c *ProductController) Store(cx *ctx.Context) {
	var in addProductInput
	if !cx.BindJSON(&in) {
		return
	}

	p, err := c.inventory.AddProduct(cx.Context(), cx.Identity(), services.NewProduct{
		ItemID:   in.ItemID,
		Name:     in.Name,
		Quantity: in.Quantity,
		Price:    in.Price,
	})
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Created(p)
}

// UpdatePrice handles PUT /api/products/{id}/price.
func (c *ProductController) UpdatePrice(cx *ctx.Context) {
	id, ok := cx.UintParam("id")
	if !ok {
		return
	}
	var in updatePriceInput
	if !cx.BindJSON(&in) {
		return
	}

	if err := c.inventory.UpdatePrice(cx.Context(), cx.Identity(), id, *in.NewPrice); err != nil {
		cx.Fail(err)
		return
	}
	cx.Message("Product price updated successfully.")
}

// AdjustQuantity handles PUT /api/products/{id}/quantity.
func (c *ProductController) AdjustQuantity(cx *ctx.Context) {
	id, ok := cx.UintParam("id")
	if !ok {
		return
	}
	var in adjustQuantityInput
	if !cx.BindJSON(&in) {
		return
	}

	if err := c.inventory.AdjustQuantity(cx.Context(), cx.Identity(), id, in.Delta); err != nil {
		cx.Fail(err)
		return
	}
	cx.Message("Product quantity updated successfully.")
}

// Destroy handles DELETE /api/products/{id}.
func (c *ProductController) Destroy(cx *ctx.Context) {
	id, ok := cx.UintParam("id")
	if !ok {
		return
	}

	if err := c.inventory.DeleteProduct(cx.Context(), cx.Identity(), id); err != nil {
		cx.Fail(err)
		return
	}
	cx.Message("Product removed successfully.")
}
