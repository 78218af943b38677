package middleware

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type ctxKey string

const (
	ctxUser         ctxKey = "user"
	ctxSessionToken ctxKey = "session_token"
)

func WithUser(ctx context.Context, u domain.User, sessionToken string) context.Context {
	ctx = context.WithValue(ctx, ctxUser, u)
	ctx = context.WithValue(ctx, ctxSessionToken, sessionToken)
	return ctx
}

// UserFromContext returns the logged-in user, if any.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxUser).(domain.User)
	return u, ok && u.ID != ""
}

func SessionTokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxSessionToken).(string)
	return v
}
