package controllers

import (
	"github.com/shashiranjanraj/stockpile/app/models"
	"github.com/shashiranjanraj/stockpile/app/services"
	"github.com/shashiranjanraj/stockpile/pkg/ctx"
)

// PurchaseController serves the customer-facing buy and checkout endpoints.
type PurchaseController struct {
	inventory *services.InventoryService
}

func NewPurchaseController(inventory *services.InventoryService) *PurchaseController {
	return &PurchaseController{inventory: inventory}
}

type buyInput struct {
	ItemID   string `json:"itemId"   validate:"required"`
	Quantity int    `json:"quantity"`
}

type billLine struct {
	ItemID   string `json:"itemId"   validate:"required"`
	Quantity int    `json:"quantity"`
}

type billInput struct {
	Lines []billLine `json:"lines" validate:"dive"`
}

// Buy handles POST /api/buy.
func (c *PurchaseController) Buy(cx *ctx.Context) {
	var in buyInput
	if !cx.BindJSON(&in) {
		return
	}

	p, err := c.inventory.Buy(cx.Context(), cx.Identity(), in.ItemID, in.Quantity)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Success(p)
}

// DeleteReservation handles DELETE /api/buy/{itemId}.
func (c *PurchaseController) DeleteReservation(cx *ctx.Context) {
	if err := c.inventory.DeleteReservation(cx.Context(), cx.Identity(), cx.Param("itemId")); err != nil {
		cx.Fail(err)
		return
	}
	cx.Message("Product deleted successfully.")
}

// GenerateBill handles POST /api/generate-bill.
func (c *PurchaseController) GenerateBill(cx *ctx.Context) {
	var in billInput
	if !cx.BindJSON(&in) {
		return
	}

	lines := make([]models.PurchaseLine, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = models.PurchaseLine{ItemID: l.ItemID, Quantity: l.Quantity}
	}

	bill, err := c.inventory.GenerateBill(cx.Context(), cx.Identity(), lines)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Success(bill)
}
