package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockpile/pkg/apperr"
)

func TestIssueAndAuthenticate(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.Issue(7, RoleSeller)
	require.NoError(t, err)

	id, err := m.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{SubjectID: 7, Role: RoleSeller}, id)
}

func TestAuthenticateMissingToken(t *testing.T) {
	m := NewManager("secret", time.Hour)

	_, err := m.Authenticate("   ")
	assert.Equal(t, apperr.MissingToken, apperr.KindOf(err))
}

func TestAuthenticateRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	foreign, err := other.Issue(1, RoleCustomer)
	require.NoError(t, err)

	expiredIssuer := NewManager("secret", time.Minute)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue(1, RoleCustomer)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Role: "admin"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: "seller"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"malformed":       "not-a-jwt",
		"wrong signature": foreign,
		"expired":         expired,
		"unknown role":    badRole,
		"none algorithm":  noneAlg,
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Authenticate(token)
			assert.Equal(t, apperr.InvalidToken, apperr.KindOf(err))
		})
	}
}

func TestZeroTTLIssuesNonExpiringTokens(t *testing.T) {
	m := NewManager("secret", 0)
	token, err := m.Issue(3, RoleCustomer)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }
	id, err := m.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, id.Role)
}

func TestFromHeader(t *testing.T) {
	assert.Equal(t, "abc", FromHeader("Bearer abc"))
	assert.Equal(t, "abc", FromHeader("bearer  abc"))
	assert.Equal(t, "abc", FromHeader("abc"))
	assert.Equal(t, "", FromHeader(""))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}
