// Package services holds the business rules of stockpile. Every exported
// operation takes the caller's auth.Identity explicitly and returns
// *apperr.Error values the HTTP layer can map without inspecting drivers.
package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/stockpile/pkg/apperr"
	"github.com/shashiranjanraj/stockpile/pkg/auth"
	"github.com/shashiranjanraj/stockpile/pkg/logger"
)

// ListCache is the subset of pkg/cache the services rely on.
type ListCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Version(ctx context.Context, key string) (int64, error)
}

// requireRole fails with access_denied unless id holds one of roles.
func requireRole(id auth.Identity, roles ...auth.Role) error {
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return apperr.New(apperr.AccessDenied, "access denied")
}

// withTimeout bounds a store call. A non-positive d leaves ctx unchanged.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// unavailable logs the driver error and hides it behind store_unavailable.
// Errors that already carry a kind pass through untouched.
func unavailable(ctx context.Context, op string, err error) error {
	if apperr.KindOf(err) != "" {
		return err
	}
	logger.WithCtx(ctx).Error("store call failed", "op", op, "error", err)
	return apperr.Unavailable(err)
}
