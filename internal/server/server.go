package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	autopaydomain "github.com/smallbiznis/rentledger/internal/autopay/domain"
	"github.com/smallbiznis/rentledger/internal/config"
	leasedomain "github.com/smallbiznis/rentledger/internal/lease/domain"
	ledgerdomain "github.com/smallbiznis/rentledger/internal/ledger/domain"
	notificationdomain "github.com/smallbiznis/rentledger/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/rentledger/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/rentledger/internal/payment/domain"
	rentduedomain "github.com/smallbiznis/rentledger/internal/rentdue/domain"
	statementdomain "github.com/smallbiznis/rentledger/internal/statement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmetrics.GinMiddleware(obsmetrics.HTTP()))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin() *gin.Engine {
	return NewEngine()
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB
	policy *config.BillingPolicyHolder

	leaseSvc     leasedomain.Service
	ledgerSvc    ledgerdomain.Service
	paymentSvc   paymentdomain.Service
	autopaySvc   autopaydomain.Service
	rentDueSvc   rentduedomain.Service
	statementSvc statementdomain.Service
	notifySvc    notificationdomain.Service
}

type ServerParams struct {
	fx.In

	Gin    *gin.Engine
	Cfg    config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Policy *config.BillingPolicyHolder

	LeaseSvc     leasedomain.Service
	LedgerSvc    ledgerdomain.Service
	PaymentSvc   paymentdomain.Service
	AutopaySvc   autopaydomain.Service
	RentDueSvc   rentduedomain.Service
	StatementSvc statementdomain.Service
	NotifySvc    notificationdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		db:           p.DB,
		policy:       p.Policy,
		leaseSvc:     p.LeaseSvc,
		ledgerSvc:    p.LedgerSvc,
		paymentSvc:   p.PaymentSvc,
		autopaySvc:   p.AutopaySvc,
		rentDueSvc:   p.RentDueSvc,
		statementSvc: p.StatementSvc,
		notifySvc:    p.NotifySvc,
	}

	svc.registerTenantRoutes()
	svc.registerPaymentRoutes()
	svc.registerLedgerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerTenantRoutes() {
	tenants := s.engine.Group("/v1/tenants")

	tenants.GET("/:account/rent-due", s.GetRentDue)
	tenants.GET("/:account/statement.csv", s.GetStatementCSV)
	tenants.GET("/:account/statement.pdf", s.GetStatementPDF)
	tenants.GET("/:account/autopay", s.GetAutopay)
	tenants.PUT("/:account/autopay", s.PutAutopay)
	tenants.GET("/:account/payment-methods", s.ListPaymentMethods)
	tenants.POST("/:account/payment-methods", s.AddPaymentMethod)
	tenants.DELETE("/:account/payment-methods/:id", s.RemovePaymentMethod)
	tenants.GET("/:account/notifications", s.ListNotifications)
}

func (s *Server) registerPaymentRoutes() {
	payments := s.engine.Group("/v1/payments")

	payments.POST("", s.SubmitPayment)
	payments.PATCH("/:id/status", s.SetPaymentStatus)
}

func (s *Server) registerLedgerRoutes() {
	ledger := s.engine.Group("/v1/ledger")

	ledger.POST("/entries/:id/void", s.VoidLedgerEntry)
	ledger.POST("/adjustments", s.AddAdjustment)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
