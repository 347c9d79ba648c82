package controllers

import (
	"github.com/shashiranjanraj/stockpile/app/services"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type registerInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"required"`
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/register.
func (c *AuthController) Register(cx *ctx.Context) {
	var in registerInput
	if !cx.BindJSON(&in) {
		return
	}

	id, err := c.service.Register(cx.Context(), in.Username, in.Password, auth.Role(in.Role))
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Created(map[string]uint{"userId": id})
}

// Login handles POST /api/login.
func (c *AuthController) Login(cx *ctx.Context) {
	var in loginInput
	if !cx.BindJSON(&in) {
		return
	}

	res, err := c.service.Login(cx.Context(), in.Username, in.Password)
	if err != nil {
		cx.Fail(err)
		return
	}
	cx.Success(res)
}
