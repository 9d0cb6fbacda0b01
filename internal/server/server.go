package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/paws/internal/authorization"
	"github.com/smallbiznis/paws/internal/config"
	"github.com/smallbiznis/paws/internal/identity"
	"github.com/smallbiznis/paws/internal/invitation"
	invitationdomain "github.com/smallbiznis/paws/internal/invitation/domain"
	"github.com/smallbiznis/paws/internal/observability"
	obsmiddleware "github.com/smallbiznis/paws/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/paws/internal/observability/metrics"
	obstracing "github.com/smallbiznis/paws/internal/observability/tracing"
	"github.com/smallbiznis/paws/internal/providers"
	"github.com/smallbiznis/paws/internal/providers/pdf"
	"github.com/smallbiznis/paws/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	identity.Module,
	invitation.Module,
	providers.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	verifier    *identity.Verifier
	validator   invitationdomain.Validator
	gate        invitationdomain.SignupGate
	provisioner invitationdomain.Provisioner
	authzSvc    authorization.Service
	limiter     ratelimit.Limiter
	pdf         pdf.Provider
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Verifier    *identity.Verifier
	Validator   invitationdomain.Validator
	Gate        invitationdomain.SignupGate
	Provisioner invitationdomain.Provisioner
	AuthzSvc    authorization.Service
	Limiter     ratelimit.Limiter   `optional:"true"`
	PDF         pdf.Provider        `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		verifier:    p.Verifier,
		validator:   p.Validator,
		gate:        p.Gate,
		provisioner: p.Provisioner,
		authzSvc:    p.AuthzSvc,
		limiter:     p.Limiter,
		pdf:         p.PDF,
		obsMetrics:  p.ObsMetrics,
	}
	if svc.pdf == nil {
		svc.pdf = &pdf.NoOpProvider{}
	}

	svc.registerCallableRoutes()
	svc.registerHookRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerCallableRoutes() {
	s.engine.POST("/checkInvitationCode", s.CallerAuthRequired(), s.RedeemRateLimit(), s.CheckInvitationCode)
}

func (s *Server) registerHookRoutes() {
	s.engine.POST("/beforeUserCreated", s.BeforeUserCreated)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.CallerAuthRequired())
	{
		admin.GET("/invitation-codes", s.authorizeAction(authorization.ObjectInvitationCode, authorization.ActionInvitationCodeView), s.ListInvitationCodes)
		admin.POST("/invitation-codes", s.authorizeAction(authorization.ObjectInvitationCode, authorization.ActionInvitationCodeGenerate), s.GenerateInvitationCodes)
		admin.POST("/invitation-codes/reset", s.authorizeAction(authorization.ObjectInvitationCode, authorization.ActionInvitationCodeReset), s.ResetInvitationCodes)
		admin.GET("/invitation-codes/sheet.pdf", s.authorizeAction(authorization.ObjectInvitationCode, authorization.ActionInvitationCodeExport), s.InvitationCodeSheet)
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
