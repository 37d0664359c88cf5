// Package zapscan is the library entry point for driving a ZAP security
// engine. A Client checks the engine version once, picks the matching
// protocol capabilities and exposes one service per engine capability.
package zapscan

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/application/service"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	domain "github.com/haxorport/zapscan-go-client/internal/domain/service"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/logger"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/store"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/transport"
)

type (
	Config          = model.Config
	EngineVersion   = model.EngineVersion
	Capabilities    = model.Capabilities
	ProxyDescriptor = model.ProxyDescriptor

	TrafficEntry      = model.TrafficEntry
	Request           = model.Request
	Response          = model.Response
	NameValue         = model.NameValue
	Cookie            = model.Cookie
	Range             = model.Range
	NewSessionOptions = model.NewSessionOptions

	Job            = model.Job
	JobKind        = model.JobKind
	JobOptions     = model.JobOptions
	ScanStatus     = model.ScanStatus
	CrawlResults   = model.CrawlResults
	ProgressUpdate = model.ProgressUpdate

	Context      = model.Context
	ScopePattern = model.ScopePattern

	AuthMethod                  = model.AuthMethod
	ManualAuth                  = model.ManualAuth
	FormBasedAuth               = model.FormBasedAuth
	HTTPAuth                    = model.HTTPAuth
	ScriptBasedAuth             = model.ScriptBasedAuth
	Credentials                 = model.Credentials
	UsernamePasswordCredentials = model.UsernamePasswordCredentials
	ManualCredentials           = model.ManualCredentials
	GenericCredentials          = model.GenericCredentials
	User                        = model.User

	Alert        = model.Alert
	ReportFormat = model.ReportFormat
	Scanner      = model.Scanner
	Script       = model.Script
	ScriptSpec   = model.ScriptSpec
	EngineEvent  = model.EngineEvent
	Snapshot     = model.Snapshot
	EngineError  = model.EngineError

	Logger       = port.Logger
	CallObserver = port.CallObserver
	JobPoller    = domain.ProgressPoller

	HistoryService       = service.HistoryService
	SpiderService        = service.SpiderService
	ActiveScanService    = service.ActiveScanService
	ContextService       = service.ContextService
	AuthService          = service.AuthService
	AlertService         = service.AlertService
	ScannerPolicyService = service.ScannerPolicyService
	ScriptService        = service.ScriptService
	SnapshotService      = service.SnapshotService
	EventStream          = transport.EventStream
)

// Error kinds, matched with errors.Is
var (
	ErrConfiguration       = model.ErrConfiguration
	ErrVersionIncompatible = model.ErrVersionIncompatible
	ErrProtocol            = model.ErrProtocol
	ErrRemote              = model.ErrRemote
	ErrUsage               = model.ErrUsage
	ErrNotFound            = model.ErrNotFound
)

const (
	ReportXML  = model.ReportXML
	ReportHTML = model.ReportHTML
)

// NewConfig returns a configuration for a local engine on 127.0.0.1:8080
func NewConfig() *Config {
	return model.NewConfig()
}

// Regex is a scope pattern submitted as written
func Regex(expr string) ScopePattern {
	return model.Regex(expr)
}

// URLTree is a scope pattern matching a URL and everything below it
func URLTree(url string) ScopePattern {
	return model.URLTree(url)
}

// ChangeCookieValue returns a copy of req with the named cookie set to value
// in both the cookie list and the Cookie header
func ChangeCookieValue(req Request, name, value string) Request {
	return domain.ChangeCookieValue(req, name, value)
}

// Await polls a job on a new goroutine and delivers its progress until it
// reaches 100, fails or ctx is done
func Await(ctx context.Context, job JobPoller, id int, interval time.Duration) <-chan ProgressUpdate {
	return domain.Await(ctx, job, id, interval)
}

// WaitForCompletion polls a job on the calling goroutine until it reaches 100
func WaitForCompletion(ctx context.Context, job JobPoller, id int, interval time.Duration, onProgress func(int)) error {
	return domain.WaitForCompletion(ctx, job, id, interval, onProgress)
}

type options struct {
	logger     Logger
	httpClient *http.Client
	observer   CallObserver
}

// Option customizes a Client
type Option func(*options)

// WithLogger routes client logs to l
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHTTPClient replaces the HTTP client used for engine calls
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithObserver records every engine call
func WithObserver(observer CallObserver) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// Client groups the engine capabilities behind one version-checked connection
type Client struct {
	History    *HistoryService
	Spider     *SpiderService
	ActiveScan *ActiveScanService
	Contexts   *ContextService
	Auth       *AuthService
	Alerts     *AlertService
	Scanners   *ScannerPolicyService
	Scripts    *ScriptService

	engine *transport.Client
	config Config
	logger Logger
}

// New validates config, checks the engine version and returns a Client. It
// fails with ErrConfiguration before any network call and with
// ErrVersionIncompatible when the engine is too old.
func New(ctx context.Context, config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, model.NewConfigError("configuration is required")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewLogger(os.Stderr, string(config.LogLevel))
	}

	var clientOpts []transport.Option
	if o.httpClient != nil {
		clientOpts = append(clientOpts, transport.WithHTTPClient(o.httpClient))
	}
	if o.observer != nil {
		clientOpts = append(clientOpts, transport.WithObserver(o.observer))
	}

	engine, err := transport.NewClient(ctx, config, o.logger, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		History:    service.NewHistoryService(engine, o.logger),
		Spider:     service.NewSpiderService(engine, o.logger),
		ActiveScan: service.NewActiveScanService(engine, o.logger),
		Contexts:   service.NewContextService(engine, o.logger),
		Auth:       service.NewAuthService(engine, o.logger),
		Alerts:     service.NewAlertService(engine, o.logger),
		Scanners:   service.NewScannerPolicyService(engine, o.logger),
		Scripts:    service.NewScriptService(engine, o.logger),
		engine:     engine,
		config:     *config,
		logger:     o.logger,
	}, nil
}

// Version returns the engine version read at construction
func (c *Client) Version() EngineVersion {
	return c.engine.Version()
}

// Capabilities returns the protocol features selected for the engine version
func (c *Client) Capabilities() Capabilities {
	return c.engine.Capabilities()
}

// ProxyDescriptor returns the proxy address and PAC URL for browsers
func (c *Client) ProxyDescriptor() ProxyDescriptor {
	return model.NewProxyDescriptor(c.config.Host, c.config.Port)
}

// DialEvents opens a websocket subscription to engine events
func (c *Client) DialEvents(ctx context.Context) (*EventStream, error) {
	return transport.DialEvents(ctx, &c.config, c.logger)
}

// Snapshots is a snapshot service bound to an open local database
type Snapshots struct {
	*SnapshotService
	db *store.SnapshotStore
}

// Close closes the snapshot database
func (s *Snapshots) Close() error {
	return s.db.Close()
}

// OpenSnapshots opens or creates the sqlite snapshot database at path
func (c *Client) OpenSnapshots(path string) (*Snapshots, error) {
	db, err := store.Open(path, c.logger)
	if err != nil {
		return nil, err
	}
	return &Snapshots{
		SnapshotService: service.NewSnapshotService(c.engine, c.History, c.Alerts, db, c.logger),
		db:              db,
	}, nil
}
