package server

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/customeros/warmup/api"
	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/cron"
	"github.com/customeros/warmup/internal/logger"
	"github.com/customeros/warmup/internal/repository"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/services/events"
	"github.com/customeros/warmup/services/facade"
	"github.com/customeros/warmup/services/textgen"
	"github.com/customeros/warmup/services/transport/imap"
	"github.com/customeros/warmup/services/transport/smtp"
)

// Server wires the module's process: store, transports, the Control
// Facade, the housekeeping cron, and the HTTP surface.
type Server struct {
	config       *config.Config
	logger       logger.Logger
	tracerCloser io.Closer
	httpServer   *http.Server
	router       *gin.Engine
	db           *gorm.DB
	repositories *repository.Repositories
	facade       *facade.Facade
	cronManager  *cron.CronManager
	publisher    interfaces.EventPublisher
}

func NewServer(cfg *config.Config, db *gorm.DB) (*Server, error) {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		log.Fatalf("could not initialize jaeger tracer: %s", err.Error())
	}
	opentracing.SetGlobalTracer(tracer)

	repos := repository.InitRepositories(db)

	var textGenerator interfaces.TextGenerator
	if cfg.TextGen.Static {
		textGenerator = textgen.NewStaticTemplateClient()
	} else {
		textGenerator = textgen.NewClient(cfg.TextGen)
	}

	var publisher interfaces.EventPublisher
	if cfg.Events.RabbitMQURL != "" {
		publisher, err = events.NewRabbitMQPublisher(cfg.Events.RabbitMQURL, appLogger, nil)
		if err != nil {
			appLogger.Errorf("could not initialize lifecycle event publisher: %v", err)
			publisher = nil
		}
	}

	warmupFacade := facade.New(facade.Deps{
		SessionRepo: repos.SessionRepository,
		MailLogRepo: repos.MailLogRepository,
		AccountRepo: repos.DomainAccountRepository,
		LeadRepo:    repos.LeadAccountRepository,
		Sender:      smtp.NewClient(),
		Subscriber:  imap.NewSubscriber(cfg.Warmup),
		TextGen:     textGenerator,
		Publisher:   publisher,
		Logger:      appLogger,
		Config:      cfg.Warmup,
	})

	cronManager := cron.NewCronManager(cfg.Cron, appLogger, nil, repos.SessionRepository)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		config:       cfg,
		logger:       appLogger,
		tracerCloser: closer,
		router:       router,
		db:           db,
		repositories: repos,
		facade:       warmupFacade,
		cronManager:  cronManager,
		publisher:    publisher,
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

func (s *Server) Initialize() error {
	api.RegisterRoutes(s.router, s.facade, s.repositories.SessionRepository, s.repositories.MailLogRepository, s.config)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "warmupd"
	}
	if err := s.cronManager.Start(hostname); err != nil {
		return err
	}

	return nil
}

func (s *Server) Run() error {
	if err := s.Initialize(); err != nil {
		return err
	}

	go func() {
		defer tracing.RecoverAndLogToJaeger(s.logger)
		s.logger.Info("starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP server error: %v", err)
		}
	}()

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer tracing.RecoverAndLogToJaeger(s.logger)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.facade.Shutdown(shutdownCtx)
	s.cronManager.Stop()
	if s.publisher != nil {
		_ = s.publisher.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("HTTP server shutdown error: %v", err)
	}
	if s.tracerCloser != nil {
		_ = s.tracerCloser.Close()
	}

	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	return nil
}

func (s *Server) Logger() logger.Logger {
	return s.logger
}
