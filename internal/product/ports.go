package product

import (
	"context"

	"github.com/faraganiev/testjowi/internal/domain"
)

type Service interface {
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	GetAvailableByIDs(ctx context.Context, ids []int) ([]domain.Product, error)
}

type Repository interface {
	FindAvailable(ctx context.Context) ([]domain.Product, error)
	FindAvailableByIDs(ctx context.Context, ids []int) ([]domain.Product, error)
}
