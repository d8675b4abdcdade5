// Package session carries the authenticated caller through request-scoped
// contexts so that tools and stores never take a user id from model output.
package session

import (
	"context"

	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/google/uuid"
)

type Session struct {
	UserID uuid.UUID
	Email  string
	Type   models.UserType
}

type ctxKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session bound to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Entitlements are the per-user-type quotas.
type Entitlements struct {
	MaxMessagesPerDay int
}

var entitlements = map[models.UserType]Entitlements{
	models.UserTypeGuest:   {MaxMessagesPerDay: 20},
	models.UserTypeRegular: {MaxMessagesPerDay: 100},
}

func EntitlementsFor(t models.UserType) Entitlements {
	if e, ok := entitlements[t]; ok {
		return e
	}
	return entitlements[models.UserTypeGuest]
}
