package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/polystake/noderegistry/api"
	"github.com/polystake/noderegistry/api/handlers"
)

type Server struct {
	logger *zap.Logger
	addr   string

	node      *handlers.Node
	operators *handlers.Operators
	registry  *handlers.Registry
}

func New(
	logger *zap.Logger,
	addr string,
	node *handlers.Node,
	operators *handlers.Operators,
	registry *handlers.Registry,
) *Server {
	return &Server{
		logger:    logger,
		addr:      addr,
		node:      node,
		operators: operators,
		registry:  registry,
	}
}

func (s *Server) Run() error {
	router := s.routes()

	s.logger.Info("Serving registry API", zap.String("addr", s.addr))

	server := &http.Server{
		Addr:         s.addr,
		Handler:      router,
		ReadTimeout:  12 * time.Second,
		WriteTimeout: 12 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()

	router.Get("/v1/node/version", api.Handler(s.node.Version))
	router.Get("/v1/node/health", api.Handler(s.node.Health))

	router.Post("/v1/registry/initialize", api.Handler(s.registry.Initialize))
	router.Get("/v1/registry/stats", api.Handler(s.registry.Stats))
	router.Get("/v1/registry/contracts", api.Handler(s.registry.Contracts))
	router.Get("/v1/registry/grants/{address}", api.Handler(s.registry.Grants))
	router.Post("/v1/registry/grants", api.Handler(s.registry.Grant))
	router.Post("/v1/registry/grants/revoke", api.Handler(s.registry.Revoke))
	router.Post("/v1/registry/rewards/withdraw", api.Handler(s.registry.WithdrawRewards))

	router.Get("/v1/registry/operators", api.Handler(s.operators.List))
	router.Post("/v1/registry/operators", api.Handler(s.operators.Add))
	router.Get("/v1/registry/operators/{id}", api.Handler(s.operators.Get))
	router.Get("/v1/registry/operators/{id}/stake", api.Handler(s.operators.CurrentStake))
	router.Post("/v1/registry/operators/{id}/remove", api.Handler(s.operators.Remove))
	router.Post("/v1/registry/operators/{id}/exit", api.Handler(s.operators.Exit))
	router.Post("/v1/registry/stake", api.Handler(s.operators.Stake))
	router.Post("/v1/registry/unstake", api.Handler(s.operators.Unstake))
	router.Post("/v1/registry/fees/top-up", api.Handler(s.operators.TopUpForFee))
	router.Post("/v1/registry/unstake-claim", api.Handler(s.operators.UnstakeClaim))

	return router
}
