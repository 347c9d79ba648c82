package kernel_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockpile/internal/kernel"
	"github.com/shashiranjanraj/stockpile/internal/testdb"
	"github.com/shashiranjanraj/stockpile/pkg/app"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]string
}

type client struct {
	t *testing.T
	h http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	a := &app.App{
		DB:           testdb.New(t),
		Tokens:       auth.NewManager("kernel-test", time.Hour),
		StoreTimeout: 5 * time.Second,
		ListCacheTTL: time.Minute,
	}
	return &client{t: t, h: kernel.NewHTTPKernel(a).Handler()}
}

func (c *client) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (c *client) login(username, role string) string {
	c.t.Helper()
	code, _ := c.do(http.MethodPost, "/api/register", "", map[string]string{
		"username": username, "password": "pw-" + username, "role": role,
	})
	require.Equal(c.t, http.StatusCreated, code)

	code, env := c.do(http.MethodPost, "/api/login", "", map[string]string{
		"username": username, "password": "pw-" + username,
	})
	require.Equal(c.t, http.StatusOK, code)

	var out struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &out))
	require.Equal(c.t, role, out.Role)
	return out.Token
}

type product struct {
	ID       uint            `json:"id"`
	ItemID   string          `json:"itemId"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func TestInventoryFlow(t *testing.T) {
	c := newClient(t)
	seller := c.login("sally", "seller")
	buyer := c.login("carl", "customer")

	code, env := c.do(http.MethodPost, "/api/products", seller, map[string]any{
		"itemId": "A", "name": "Apple", "quantity": 5, "price": 2.50,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var a product
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, "A", a.ItemID)

	code, _ = c.do(http.MethodPost, "/api/products", seller, map[string]any{
		"itemId": "B", "name": "Bread", "quantity": 2, "price": "4.00",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env = c.do(http.MethodPost, "/api/products", seller, map[string]any{
		"itemId": "A", "name": "Again", "quantity": 1, "price": 1,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "duplicate_product", env.Kind)

	code, env = c.do(http.MethodPost, "/api/buy", buyer, map[string]any{"itemId": "A", "quantity": 2})
	require.Equal(t, http.StatusOK, code, env.Message)
	var bought product
	require.NoError(t, json.Unmarshal(env.Data, &bought))
	assert.Equal(t, 3, bought.Quantity)

	code, env = c.do(http.MethodPost, "/api/buy", buyer, map[string]any{"itemId": "A", "quantity": 4})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "insufficient_stock", env.Kind)

	code, env = c.do(http.MethodPost, "/api/generate-bill", buyer, map[string]any{
		"lines": []map[string]any{{"itemId": "A", "quantity": 1}, {"itemId": "B", "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var bill struct {
		TotalAmount decimal.Decimal `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &bill))
	assert.True(t, bill.TotalAmount.Equal(decimal.RequireFromString("10.50")), "total %s", bill.TotalAmount)

	code, env = c.do(http.MethodGet, "/api/products", buyer, nil)
	require.Equal(t, http.StatusOK, code)
	var list []product
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Quantity)

	code, _ = c.do(http.MethodPut, "/api/products/"+itoa(a.ID)+"/price", seller, map[string]any{"newPrice": 3})
	assert.Equal(t, http.StatusOK, code)
	code, _ = c.do(http.MethodPut, "/api/products/"+itoa(a.ID)+"/quantity", seller, map[string]any{"delta": 8})
	assert.Equal(t, http.StatusOK, code)
	code, env = c.do(http.MethodPut, "/api/products/"+itoa(a.ID)+"/quantity", seller, map[string]any{"delta": -11})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_quantity", env.Kind)

	code, env = c.do(http.MethodGet, "/api/products", seller, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, 10, list[0].Quantity)
	assert.True(t, list[0].Price.Equal(decimal.NewFromInt(3)))

	code, _ = c.do(http.MethodDelete, "/api/buy/A", buyer, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = c.do(http.MethodDelete, "/api/buy/A", buyer, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "product_not_found", env.Kind)

	code, _ = c.do(http.MethodDelete, "/api/products/"+itoa(a.ID), seller, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAccessControl(t *testing.T) {
	c := newClient(t)
	seller := c.login("sally", "seller")
	buyer := c.login("carl", "customer")

	code, env := c.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "missing_token", env.Kind)

	code, env = c.do(http.MethodGet, "/api/products", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_token", env.Kind)

	code, env = c.do(http.MethodPost, "/api/products", buyer, map[string]any{"itemId": "X", "name": "x", "quantity": 1, "price": 1})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "access_denied", env.Kind)

	code, env = c.do(http.MethodPost, "/api/buy", seller, map[string]any{"itemId": "X", "quantity": 1})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "access_denied", env.Kind)
}

func TestAuthErrors(t *testing.T) {
	c := newClient(t)
	c.login("sally", "seller")

	code, env := c.do(http.MethodPost, "/api/register", "", map[string]string{"username": "sally", "password": "x", "role": "seller"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "duplicate_username", env.Kind)

	code, env = c.do(http.MethodPost, "/api/login", "", map[string]string{"username": "sally", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_credentials", env.Kind)

	code, env = c.do(http.MethodPost, "/api/login", "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "user_not_found", env.Kind)

	code, env = c.do(http.MethodPost, "/api/register", "", map[string]string{"username": "u"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Errors, "password")
}

func TestBillValidation(t *testing.T) {
	c := newClient(t)
	buyer := c.login("carl", "customer")

	code, env := c.do(http.MethodPost, "/api/generate-bill", buyer, map[string]any{"lines": []any{}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid_input", env.Kind)

	code, env = c.do(http.MethodPost, "/api/generate-bill", buyer, map[string]any{
		"lines": []map[string]any{{"itemId": "nope", "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, env.Message, "nope")

	code, env = c.do(http.MethodPost, "/api/buy", buyer, map[string]any{"itemId": "nope", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_quantity", env.Kind)
}

func TestOperationalEndpoints(t *testing.T) {
	c := newClient(t)

	code, env := c.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","database":"up","cache":"disabled"}`, string(env.Data))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockpile_http_requests_total")

	code, _ = c.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
