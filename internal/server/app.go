// Package server wires configuration, storage, realtime fan-out and the gRPC
// endpoint into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/realtime"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"

	gs "github.com/dmitrijs2005/gophtasks/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         *logging.ZapLogger
	db             *sql.DB
	broker         realtime.Broker
	userService    *services.UserService
	taskService    *services.TaskService
	storageService *services.StorageService
}

// newBroker picks the change-feed backend named in the config.
func newBroker(ctx context.Context, c *config.Config, l logging.Logger) (realtime.Broker, error) {
	switch c.RealtimeBackend {
	case config.RealtimeMemory, "":
		return realtime.NewMemoryBroker(l), nil
	case config.RealtimeRedis:
		client, err := realtime.NewRedisClient(ctx, c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		return realtime.NewRedisBroker(client, l), nil
	default:
		return nil, fmt.Errorf("unknown realtime backend %q", c.RealtimeBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewZap(os.Stdout, c.LogLevel, c.LogEncoding)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	broker, err := newBroker(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		broker:         broker,
		userService:    services.NewUserService(db, rm, c),
		taskService:    services.NewTaskService(db, rm, broker, logger),
		storageService: services.NewStorageService(c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.taskService,
		app.storageService, app.config.SecretKey, app.config.MaxMessageSize)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) shutdown(ctx context.Context) {
	if err := app.broker.Close(); err != nil {
		app.logger.Warn(ctx, "Broker close failed", "error", err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "DB close failed", "error", err.Error())
	}
	_ = app.logger.Sync()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.shutdown(context.Background())
	app.logger.Info(ctx, "App stopped")
}
