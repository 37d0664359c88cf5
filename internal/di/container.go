package di

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/application/service"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/config"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/logger"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/metrics"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/store"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/transport"
)

// Container is a container for dependency injection
type Container struct {
	// Logger
	Logger *logger.Logger

	// Repositories
	ConfigRepository *config.ConfigRepository
	SnapshotStore    *store.SnapshotStore

	// Services
	ConfigService        *service.ConfigService
	HistoryService       *service.HistoryService
	SpiderService        *service.SpiderService
	ActiveScanService    *service.ActiveScanService
	ContextService       *service.ContextService
	AuthService          *service.AuthService
	AlertService         *service.AlertService
	ScannerPolicyService *service.ScannerPolicyService
	ScriptService        *service.ScriptService
	SnapshotService      *service.SnapshotService

	// Engine is the protocol adapter, set by Connect
	Engine *transport.Client

	// Metrics records engine calls
	Metrics *metrics.Recorder

	// Config
	Config *model.Config

	metricsServer *http.Server
}

// NewContainer creates a new Container instance
func NewContainer() *Container {
	return &Container{}
}

// Initialize loads the configuration and sets up logging and metrics. It
// makes no engine call. overrides are applied after loading, before validation.
func (c *Container) Initialize(configPath string, overrides ...func(*model.Config)) error {
	c.Logger = logger.NewLogger(os.Stderr, "warn")
	c.ConfigRepository = config.NewConfigRepository()
	c.ConfigService = service.NewConfigService(c.ConfigRepository, c.Logger)

	var err error
	c.Config, err = c.ConfigService.LoadConfig(configPath)
	if err != nil {
		return err
	}
	for _, override := range overrides {
		override(c.Config)
	}

	// If log file is specified, log to the file as well as the terminal
	if c.Config.LogFile != "" {
		fileLogger, err := logger.NewFileLogger(c.Config.LogFile, string(c.Config.LogLevel), c.Config.LogFormat)
		if err != nil {
			c.Logger.Error("Failed to create file logger: %v", err)
		} else {
			c.Logger = fileLogger
			c.ConfigService = service.NewConfigService(c.ConfigRepository, c.Logger)
			c.Logger.Info("Logs will also be written to file: %s", c.Config.LogFile)
		}
	}
	c.Logger.SetLevel(string(c.Config.LogLevel))

	c.Metrics = metrics.NewRecorder(c.Config.MetricsNamespace)
	return nil
}

// Connect checks the engine version and wires the engine services
func (c *Container) Connect(ctx context.Context) error {
	if c.Config == nil {
		return errors.New("container is not initialized")
	}

	engine, err := transport.NewClient(ctx, c.Config, c.Logger, transport.WithObserver(c.Metrics))
	if err != nil {
		return err
	}
	c.Engine = engine

	c.HistoryService = service.NewHistoryService(engine, c.Logger)
	c.SpiderService = service.NewSpiderService(engine, c.Logger)
	c.ActiveScanService = service.NewActiveScanService(engine, c.Logger)
	c.ContextService = service.NewContextService(engine, c.Logger)
	c.AuthService = service.NewAuthService(engine, c.Logger)
	c.AlertService = service.NewAlertService(engine, c.Logger)
	c.ScannerPolicyService = service.NewScannerPolicyService(engine, c.Logger)
	c.ScriptService = service.NewScriptService(engine, c.Logger)
	return nil
}

// OpenSnapshots opens the snapshot database and wires the snapshot service.
// Capturing needs Connect to have been called first.
func (c *Container) OpenSnapshots() error {
	if c.SnapshotStore == nil {
		db, err := store.Open(c.Config.SnapshotDB, c.Logger)
		if err != nil {
			return err
		}
		c.SnapshotStore = db
	}
	if c.Engine != nil {
		c.SnapshotService = service.NewSnapshotService(c.Engine, c.HistoryService, c.AlertService, c.SnapshotStore, c.Logger)
	}
	return nil
}

// DialEvents opens the engine event stream
func (c *Container) DialEvents(ctx context.Context) (*transport.EventStream, error) {
	return transport.DialEvents(ctx, c.Config, c.Logger)
}

// ServeMetrics exposes the engine call metrics on addr until Close
func (c *Container) ServeMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Metrics.Handler())
	c.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		c.Logger.Info("Serving metrics on %s/metrics", addr)
		if err := c.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Error("Metrics server failed: %v", err)
		}
	}()
}

// Close closes all resources
func (c *Container) Close() {
	if c.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = c.metricsServer.Shutdown(ctx)
	}

	if c.SnapshotStore != nil {
		if err := c.SnapshotStore.Close(); err != nil {
			c.Logger.Warn("Failed to close snapshot database: %v", err)
		}
	}

	if c.Logger != nil {
		c.Logger.Close()
	}
}
