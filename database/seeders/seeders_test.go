package seeders_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockpile/database/seeders"
	"github.com/shashiranjanraj/stockpile/internal/testdb"
	"github.com/shashiranjanraj/stockpile/pkg/app"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
)

func TestRunAllIsRepeatable(t *testing.T) {
	a := &app.App{
		DB:           testdb.New(t),
		Tokens:       auth.NewManager("seed", time.Hour),
		StoreTimeout: 5 * time.Second,
	}
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(ctx, a, &out))
	require.NoError(t, seeders.RunAll(ctx, a, &out))
	assert.Contains(t, out.String(), "Running seeder: users")
	assert.NotContains(t, out.String(), "FAILED")

	res, err := a.AuthService().Login(ctx, "customer", "customer123")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCustomer, res.Role)

	list, err := a.InventoryService().ListProducts(ctx, auth.Identity{SubjectID: 1, Role: auth.RoleCustomer})
	require.NoError(t, err)
	assert.Len(t, list, 4)
}
