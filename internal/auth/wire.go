package auth

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/auth/repository"
	"github.com/faraganiev/testjowi/internal/config"
)

type Module struct {
	Sessions   *Sessions
	Controller *Controller
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Module {
	repo := repository.NewMySQLUserRepository(db)
	svc := NewService(repo)
	sess := NewSessions(cfg.Session, logger)
	return &Module{
		Sessions:   sess,
		Controller: NewController(svc, sess, logger),
	}
}
