package web

import (
	"context"

	"gmemo/internal/memo"
)

type contextKey int

const userKey contextKey = iota

// User is the requester attached by the identity middleware.
type User struct {
	ID       int64
	Name     string
	ViaBasic bool
}

func (u User) Identity() memo.Identity {
	return memo.Identity{UserID: u.ID, Username: u.Name}
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func CurrentUser(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	return user, ok && user.ID > 0
}

func identityFrom(ctx context.Context) memo.Identity {
	user, _ := CurrentUser(ctx)
	return user.Identity()
}
