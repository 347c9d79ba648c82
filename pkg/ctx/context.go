// Package ctx provides a request context for stockpile handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, binding and replies:
//
//	func (c *ProductController) UpdatePrice(cx *ctx.Context) {
//	    id, ok := cx.UintParam("id")
//	    ...
//	    cx.Message("product price updated")
//	}
//
//	// Register with ctx.Wrap:
//	router.Put("/products/{id}/price", "products.price", ctx.Wrap(c.UpdatePrice))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/stockpile/pkg/apperr"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/bind"
	"github.com/shashiranjanraj/stockpile/pkg/response"
	"github.com/shashiranjanraj/stockpile/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/buy/{itemId}" → c.Param("itemId")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// UintParam parses a numeric path parameter. On failure it replies 422
// with kind invalid_input and returns false.
func (c *Context) UintParam(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 0)
	if err != nil || n == 0 {
		c.Fail(apperr.New(apperr.InvalidInput, "%s must be a positive integer", key))
		return 0, false
	}
	return uint(n), true
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Identity returns the caller set by the auth middleware. Routes behind
// that middleware always have one; elsewhere the zero Identity (no role)
// is returned and every role check will refuse it.
func (c *Context) Identity() auth.Identity {
	id, _ := auth.FromContext(c.R.Context())
	return id
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation.
// On validation failure it sends a 422 and returns false; on a decode
// error it sends a 400. Returns true only when dest is ready to use.
//
//	var input BuyInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		c.status = http.StatusBadRequest
		response.Write(c.W, http.StatusBadRequest, response.Envelope{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
			Kind:    apperr.InvalidInput,
		})
		return false
	}
	if validate.HasErrors(errs) {
		c.status = http.StatusUnprocessableEntity
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// Success sends a 200 JSON envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

// Created sends a 201 JSON envelope.
func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

// Message sends a 200 envelope carrying only a message.
func (c *Context) Message(msg string) {
	c.status = http.StatusOK
	response.Message(c.W, msg)
}

// Fail renders err using its apperr kind.
func (c *Context) Fail(err error) {
	c.status = response.StatusFor(apperr.KindOf(err))
	response.Fail(c.W, err)
}

// WrittenStatus returns the HTTP status code that was written to the response,
// or 0 if no response has been written yet.
func (c *Context) WrittenStatus() int { return c.status }
