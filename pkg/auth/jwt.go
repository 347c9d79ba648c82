package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/stockpile/pkg/apperr"
)

// Role is the coarse permission class of a user.
type Role string

const (
	RoleSeller   Role = "seller"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is a role the system knows about.
func (r Role) Valid() bool {
	return r == RoleSeller || r == RoleCustomer
}

// Identity is the authenticated caller, decoded once from the token and
// passed explicitly into every service call.
type Identity struct {
	SubjectID uint
	Role      Role
}

// Claims holds the typed JWT payload.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies tokens with a single HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager. A zero ttl issues tokens without expiry.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed JWT binding userID and role.
func (m *Manager) Issue(userID uint, role Role) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Authenticate verifies token and returns the identity it carries.
func (m *Manager) Authenticate(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperr.New(apperr.MissingToken, "no token provided")
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.InvalidToken, err, "failed to authenticate token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, apperr.Wrap(apperr.InvalidToken, jwt.ErrTokenInvalidClaims, "failed to authenticate token")
	}

	role := Role(claims.Role)
	if claims.UserID == 0 || !role.Valid() {
		return Identity{}, apperr.Wrap(apperr.InvalidToken, errors.New("token subject or role missing"), "failed to authenticate token")
	}

	return Identity{SubjectID: claims.UserID, Role: role}, nil
}

// FromHeader strips an optional "Bearer " prefix from an Authorization value.
func FromHeader(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 7 && strings.EqualFold(value[:7], "bearer ") {
		return strings.TrimSpace(value[7:])
	}
	return value
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
