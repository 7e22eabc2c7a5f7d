package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plantdesklabs/plantdesk/internal/auth"
	"github.com/plantdesklabs/plantdesk/internal/config"
	machinedomain "github.com/plantdesklabs/plantdesk/internal/machine/domain"
	"github.com/plantdesklabs/plantdesk/internal/observability"
	"github.com/plantdesklabs/plantdesk/internal/ratelimit"
	rentaldomain "github.com/plantdesklabs/plantdesk/internal/rental/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	db      *gorm.DB
	metrics *observability.Metrics

	verifier *auth.Verifier
	limiter  *ratelimit.Limiter

	rentalSvc  rentaldomain.Service
	machineSvc machinedomain.Service
}

type ServerParam struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Metrics *observability.Metrics

	Verifier *auth.Verifier
	Limiter  *ratelimit.Limiter

	RentalSvc  rentaldomain.Service
	MachineSvc machinedomain.Service
}

func NewServer(p ServerParam) *Server {
	return &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		db:         p.DB,
		metrics:    p.Metrics,
		verifier:   p.Verifier,
		limiter:    p.Limiter,
		rentalSvc:  p.RentalSvc,
		machineSvc: p.MachineSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestID())
	engine.Use(requestLogger(s.log))

	s.RegisterRoutes(engine)
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/readyz", s.Readyz)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	authed := engine.Group("/", s.verifier.Required())
	limited := s.limiter.Middleware()

	rentals := authed.Group("/rentals")
	rentals.POST("", limited, s.CreateRental)
	rentals.GET("", s.ListRentals)
	rentals.PUT("/:id/renew", limited, s.RenewRental)
	rentals.POST("/:id/payment", limited, s.RecordRentalPayment)
	authed.DELETE("/rentals/delete-contract/:id", limited, s.DeleteRental)

	machines := authed.Group("/machines")
	machines.GET("", s.ListMachines)
	machines.GET("/:id", s.GetMachine)
	machines.POST("", auth.AdminRequired(), limited, s.CreateMachine)
	machines.PUT("/:id", auth.AdminRequired(), limited, s.UpdateMachine)
	machines.DELETE("/:id", auth.AdminRequired(), limited, s.DeleteMachine)
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Engine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.log.Info("http server listening", zap.String("addr", s.cfg.Server.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
