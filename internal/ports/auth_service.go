package ports

import "context"

type AuthService interface {
	// UserID verifies a bearer token and returns the user it was issued to.
	UserID(ctx context.Context, token string) (int64, bool)
}
