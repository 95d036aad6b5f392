package product

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/product/repository"
)

type Module struct {
	Service    Service
	Controller *Controller
}

func NewModule(db *sql.DB, logger *zap.Logger) *Module {
	repo := repository.NewMySQLRepository(db)
	svc := NewService(repo)
	return &Module{
		Service:    svc,
		Controller: NewController(svc, logger),
	}
}
