package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockpile/app/models"
	"github.com/shashiranjanraj/stockpile/app/repositories"
	"github.com/shashiranjanraj/stockpile/internal/testdb"
)

func TestUserRepository(t *testing.T) {
	repo := repositories.NewUserRepository(testdb.New(t))
	ctx := context.Background()

	u := models.User{Username: "alice", Password: "hash", Role: "seller"}
	require.NoError(t, repo.Create(ctx, &u))
	assert.NotZero(t, u.ID)

	err := repo.Create(ctx, &models.User{Username: "alice", Password: "x", Role: "customer"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "seller", got.Role)

	_, err = repo.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
