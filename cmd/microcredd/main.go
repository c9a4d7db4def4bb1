package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/microcred/internal/application/usecase"
	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/internal/domain/service"
	"github.com/bibbank/microcred/internal/infrastructure/config"
	"github.com/bibbank/microcred/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/microcred/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/microcred/internal/infrastructure/scheduler"
	grpcPresentation "github.com/bibbank/microcred/internal/presentation/grpc"
	"github.com/bibbank/microcred/internal/presentation/rest"
	"github.com/bibbank/microcred/pkg/auth"
	pkgkafka "github.com/bibbank/microcred/pkg/kafka"
	"github.com/bibbank/microcred/pkg/observability"
	pkgpostgres "github.com/bibbank/microcred/pkg/postgres"
)

const usage = `usage: microcredd [serve | migrate up | migrate down | jobs]

  serve         run the gRPC and HTTP servers with the background jobs (default)
  migrate up    apply pending database migrations and exit
  migrate down  roll back every database migration and exit
  jobs          run the late fee sweep and the outbox relay once and exit`

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("microcredd failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := observability.InitLogger(cfg.Log)

	command := "serve"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "serve":
		return serve(ctx, cfg, logger)
	case "migrate":
		if len(args) != 2 {
			return errors.New(usage)
		}
		return migrate(cfg, args[1], logger)
	case "jobs":
		return runJobsOnce(ctx, cfg, logger)
	default:
		return errors.New(usage)
	}
}

func migrate(cfg config.Config, arg string, logger *slog.Logger) error {
	direction, err := pkgpostgres.ParseDirection(arg)
	if err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if err := pkgpostgres.Migrate(cfg.DB.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir, direction); err != nil {
		return err
	}
	logger.Info("migrations complete", "direction", string(direction))
	return nil
}

// app holds the wired dependencies shared by serve and jobs.
type app struct {
	pool     *pgxpool.Pool
	producer *pkgkafka.Producer

	loans    *pgRepo.LoanRepo
	clients  *pgRepo.ClientRepo
	payments *pgRepo.PaymentRepo
	outbox   *pgRepo.OutboxRepo

	engine *service.LifecycleEngine
	ledger *service.ScoreLedger
	clock  port.Clock

	lateFees *usecase.AssessLateFeesUseCase
	relay    *usecase.RelayOutboxUseCase
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.DB.Host, "database", cfg.DB.Database)

	if err := pkgpostgres.Migrate(cfg.DB.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir, pkgpostgres.Up); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	producer, err := pkgkafka.NewProducer(cfg.Kafka.Config)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	a := &app{
		pool:     pool,
		producer: producer,
		loans:    pgRepo.NewLoanRepo(pool),
		clients:  pgRepo.NewClientRepo(pool),
		payments: pgRepo.NewPaymentRepo(pool),
		outbox:   pgRepo.NewOutboxRepo(pool),
		engine:   service.NewLifecycleEngine(cfg.Lending.RenewalTermDays),
		ledger:   service.NewScoreLedger(cfg.Lending.Score),
		clock:    port.SystemClock{},
	}

	publisher := kafka.NewOutboxPublisher(producer, cfg.Kafka.Topic, logger)
	a.lateFees = usecase.NewAssessLateFeesUseCase(a.loans, a.engine, cfg.Lending.LateFeeRate, a.clock, logger)
	a.relay = usecase.NewRelayOutboxUseCase(a.outbox, publisher, cfg.Jobs.OutboxBatchSize, a.clock, logger)
	return a, nil
}

func (a *app) close(logger *slog.Logger) {
	if err := a.producer.Close(); err != nil {
		logger.Error("kafka producer close error", "error", err)
	}
	a.pool.Close()
}

// newScheduler registers the late fee sweep and the outbox relay.
func (a *app) newScheduler(cfg config.Config, logger *slog.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(logger)
	if err := sched.Register("late-fees", cfg.Jobs.LateFeeSchedule, func(ctx context.Context) error {
		_, err := a.lateFees.Execute(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if err := sched.Register("outbox-relay", cfg.Jobs.OutboxSchedule, func(ctx context.Context) error {
		_, err := a.relay.Execute(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return sched, nil
}

func runJobsOnce(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close(logger)

	sched, err := a.newScheduler(cfg, logger)
	if err != nil {
		return err
	}
	sched.RunNow()
	return sched.Stop(ctx)
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting microcred",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Initialize tracing and metrics.
	if cfg.Tracing.Endpoint != "" {
		shutdown, err := observability.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}
	_, metricsHandler, metricsShutdown, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}
	defer func() { _ = metricsShutdown(context.Background()) }() //nolint:errcheck // best-effort metrics shutdown

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close(logger)

	// Wire use cases.
	handler := grpcPresentation.NewLedgerHandler(
		usecase.NewProcessPaymentUseCase(a.loans, a.clients, a.payments, a.engine, a.ledger, a.clock, logger),
		usecase.NewReversePaymentUseCase(a.payments, a.loans, a.clients, a.payments, a.engine, a.ledger, a.clock, logger),
		usecase.NewOriginateLoanUseCase(a.loans, a.clients, a.clock, logger, cfg.Lending.SingleLoanTermDays),
		usecase.NewGetLoanUseCase(a.loans, a.clock),
		usecase.NewDeleteLoanUseCase(a.loans, logger),
		usecase.NewRegisterClientUseCase(a.clients, a.clock, logger),
		usecase.NewGetClientUseCase(a.clients),
		usecase.NewListAlertsUseCase(a.loans, a.clock),
		usecase.NewListPaymentsUseCase(a.loans, a.payments),
		logger,
	)

	jwtSvc, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("initialize JWT service: %w", err)
	}

	grpcServer, err := grpcPresentation.NewServer(handler, jwtSvc, grpcPresentation.ServerOptions{
		ServiceName: cfg.ServiceName,
		TLS:         cfg.TLS,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, a.pool, metricsHandler, logger).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched, err := a.newScheduler(cfg, logger)
	if err != nil {
		return err
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sched.Start()

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown error", "error", err)
	}

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("microcred stopped")
	return runErr
}
