package http

import (
	"context"

	"rentaltracker-backend/internal/domain"
	"rentaltracker-backend/internal/security"
)

type contextKey int

const claimsKey contextKey = iota

func withClaims(ctx context.Context, claims *security.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// actorFromContext returns the signed-in actor. The auth middleware always
// sets claims for non-public routes.
func actorFromContext(ctx context.Context) (domain.Actor, bool) {
	claims, ok := ctx.Value(claimsKey).(*security.SessionClaims)
	if !ok || claims == nil {
		return domain.Actor{}, false
	}
	return claims.Actor(), true
}
