package product

import (
	"context"

	"github.com/faraganiev/testjowi/internal/domain"
)

type catalogService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	return s.repo.FindAvailable(ctx)
}

func (s *catalogService) GetAvailableByIDs(ctx context.Context, ids []int) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.repo.FindAvailableByIDs(ctx, ids)
}
