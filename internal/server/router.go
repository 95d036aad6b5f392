package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/auth"
	"github.com/faraganiev/testjowi/internal/metrics"
	"github.com/faraganiev/testjowi/internal/notify"
	ordercontroller "github.com/faraganiev/testjowi/internal/order/controller"
	"github.com/faraganiev/testjowi/internal/product"
)

type RouterDeps struct {
	Orders   *ordercontroller.OrdersController
	Products *product.Controller
	Auth     *auth.Module
	WS       *notify.WSController
	Health   *HealthController
	Metrics  *metrics.ServerMetrics
	Logger   *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(deps.Logger))
	r.Use(Metrics(deps.Metrics))

	r.Get("/healthz", deps.Health.HandleHealthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/login", deps.Auth.Controller.HandleLogin)
	r.Post("/logout", deps.Auth.Controller.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Sessions.RequireAuth)

		r.Get("/ws", deps.WS.HandleWS)
		r.Get("/api/products", deps.Products.HandleListProducts)

		r.Route("/api/orders", func(r chi.Router) {
			r.Get("/", deps.Orders.HandleList)
			r.Post("/", deps.Orders.HandleCreate)
			r.Get("/stats", deps.Orders.HandleStats)
			r.Get("/{orderID}", deps.Orders.HandleGet)
			r.Post("/{orderID}/status", deps.Orders.HandleChangeStatus)
			r.Post("/{orderID}/cancel", deps.Orders.HandleCancel)
		})
	})

	return r
}
