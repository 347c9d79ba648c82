package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockpile/app/repositories"
	"github.com/shashiranjanraj/stockpile/app/services"
	"github.com/shashiranjanraj/stockpile/internal/testdb"
	"github.com/shashiranjanraj/stockpile/pkg/apperr"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
)

func TestRegisterAndLogin(t *testing.T) {
	tokens := auth.NewManager("test-secret", time.Hour)
	svc := services.NewAuthService(repositories.NewUserRepository(testdb.New(t)), tokens, 5*time.Second)
	ctx := context.Background()

	id, err := svc.Register(ctx, "sam", "pw", auth.RoleSeller)
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = svc.Register(ctx, "sam", "other", auth.RoleCustomer)
	assert.True(t, apperr.Is(err, apperr.DuplicateUsername))

	_, err = svc.Register(ctx, "eve", "pw", auth.Role("admin"))
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	res, err := svc.Login(ctx, "sam", "pw")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSeller, res.Role)

	ident, err := tokens.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{SubjectID: id, Role: auth.RoleSeller}, ident)

	_, err = svc.Login(ctx, "sam", "wrong")
	assert.True(t, apperr.Is(err, apperr.InvalidCredentials))

	_, err = svc.Login(ctx, "nobody", "pw")
	assert.True(t, apperr.Is(err, apperr.UserNotFound))
}
