package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/stockpile/pkg/validate"
)

type registerInput struct {
	Username string `json:"username" validate:"required,alpha_dash,max=20"`
	Password string `json:"password" validate:"required,min=2"`
	Role     string `json:"role"     validate:"required,in=seller,customer"`
	Note     string `json:"note"     validate:"nullable,max=5"`
}

type line struct {
	ItemID   string `json:"itemId"   validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type billInput struct {
	Lines []line `json:"lines" validate:"required,dive"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{Username: "shop_1", Password: "pw", Role: "seller"})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(&registerInput{})
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "role")
	assert.NotContains(t, errs, "note")
}

func TestRules(t *testing.T) {
	errs := validate.Struct(registerInput{Username: "bad name!", Password: "p", Role: "admin", Note: "toolong"})
	assert.Equal(t, "The username may only contain letters, numbers, dashes and underscores.", errs["username"])
	assert.Equal(t, "The password must be at least 2 characters.", errs["password"])
	assert.Equal(t, "The selected role is invalid.", errs["role"])
	assert.Equal(t, "The note must not exceed 5 characters.", errs["note"])
}

func TestInKeepsFollowingRules(t *testing.T) {
	type in struct {
		Kind string `json:"kind" validate:"in=a,b,max=1"`
	}
	assert.Empty(t, validate.Struct(in{Kind: "a"}))
	assert.Contains(t, validate.Struct(in{Kind: "c"}), "kind")
}

func TestDive(t *testing.T) {
	errs := validate.Struct(billInput{})
	assert.Equal(t, "The lines field is required.", errs["lines"])

	errs = validate.Struct(billInput{Lines: []line{{ItemID: "A", Quantity: 1}, {Quantity: 0}}})
	assert.Len(t, errs, 2)
	assert.Contains(t, errs, "lines[1].itemId")
	assert.Contains(t, errs, "lines[1].quantity")
}
