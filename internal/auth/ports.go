package auth

import (
	"context"
	"errors"

	"github.com/faraganiev/testjowi/internal/domain"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords so
// the login response cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

type Service interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type Repository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
