package port

import (
	"context"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
)

// TrafficArchive is the queryable, replayable history of proxied traffic
type TrafficArchive interface {
	// History returns entries in capture order; a nil range returns everything
	History(ctx context.Context, rng *model.Range) ([]model.TrafficEntry, error)

	// Count returns the number of captured messages
	Count(ctx context.Context) (int, error)

	// FindInRequestHistory returns entries whose request matches expr
	FindInRequestHistory(ctx context.Context, expr string) ([]model.TrafficEntry, error)

	// FindInResponseHistory returns entries whose response matches expr
	FindInResponseHistory(ctx context.Context, expr string) ([]model.TrafficEntry, error)

	// Replay sends req through the engine and returns the resulting exchanges
	Replay(ctx context.Context, req model.Request, followRedirects bool) ([]model.TrafficEntry, error)

	// Clear starts a new session and removes all engine jobs
	Clear(ctx context.Context, opts model.NewSessionOptions) error
}

// JobController drives one class of asynchronous engine jobs
type JobController interface {
	// Kind returns the job class handled by the controller
	Kind() model.JobKind

	// Start starts a job and returns it with the engine assigned id
	Start(ctx context.Context, targetURL string, opts model.JobOptions) (model.Job, error)

	// Progress returns the job progress in percent
	Progress(ctx context.Context, id int) (int, error)

	// Status returns the engine view of one job
	Status(ctx context.Context, id int) (model.ScanStatus, error)

	// Jobs lists every job of this class known to the engine
	Jobs(ctx context.Context) ([]model.ScanStatus, error)

	// LastJobID returns the numerically highest job id
	LastJobID(ctx context.Context) (int, error)

	// Cancel stops a job; a finished job is left untouched
	Cancel(ctx context.Context, id int) error

	// Pause pauses a running job
	Pause(ctx context.Context, id int) error

	// Resume resumes a paused job
	Resume(ctx context.Context, id int) error
}

// CrawlController is a JobController whose jobs produce discovered URLs
type CrawlController interface {
	JobController

	// Results returns the URLs found so far, marked partial until the crawl finishes
	Results(ctx context.Context, id int) (model.CrawlResults, error)
}

// ScopeManager manages contexts and anti-forgery token names
type ScopeManager interface {
	CreateContext(ctx context.Context, name string, inScope bool) (model.Context, error)
	Contexts(ctx context.Context) ([]string, error)
	ContextInfo(ctx context.Context, name string) (model.Context, error)
	SetInScope(ctx context.Context, name string, inScope bool) error
	Include(ctx context.Context, name string, pattern model.ScopePattern) error
	Exclude(ctx context.Context, name string, pattern model.ScopePattern) error

	AntiForgeryTokens(ctx context.Context) ([]string, error)
	AddAntiForgeryToken(ctx context.Context, name string) error
	RemoveAntiForgeryToken(ctx context.Context, name string) error
}

// AuthConfigurator manages authentication, users, forced user and session handling
type AuthConfigurator interface {
	SupportedAuthMethods(ctx context.Context) ([]string, error)
	AuthMethodConfigParams(ctx context.Context, method model.AuthMethodName) ([]model.ConfigParam, error)
	AuthMethod(ctx context.Context, contextID string) (model.Attributes, error)
	SetAuthMethod(ctx context.Context, contextID string, method model.AuthMethod) error
	LoggedInIndicator(ctx context.Context, contextID string) (string, error)
	SetLoggedInIndicator(ctx context.Context, contextID string, pattern model.ScopePattern) error
	LoggedOutIndicator(ctx context.Context, contextID string) (string, error)
	SetLoggedOutIndicator(ctx context.Context, contextID string, pattern model.ScopePattern) error

	Users(ctx context.Context, contextID string) ([]model.User, error)
	User(ctx context.Context, contextID, userID string) (model.User, error)
	CreateUser(ctx context.Context, contextID, name string) (string, error)
	RenameUser(ctx context.Context, contextID, userID, name string) error
	SetUserEnabled(ctx context.Context, contextID, userID string, enabled bool) error
	RemoveUser(ctx context.Context, contextID, userID string) error
	CredentialConfigParams(ctx context.Context, contextID string) ([]model.ConfigParam, error)
	Credentials(ctx context.Context, contextID, userID string) (map[string]string, error)
	SetCredentials(ctx context.Context, contextID, userID string, creds model.Credentials) error

	ForcedUserModeEnabled(ctx context.Context) (bool, error)
	SetForcedUserModeEnabled(ctx context.Context, enabled bool) error
	ForcedUser(ctx context.Context, contextID string) (string, error)
	SetForcedUser(ctx context.Context, contextID, userID string) error

	SupportedSessionMethods(ctx context.Context) ([]string, error)
	SessionMethod(ctx context.Context, contextID string) (string, error)
	SetSessionMethod(ctx context.Context, contextID, methodName, configParams string) error
}

// AlertAggregator reads findings and renders reports
type AlertAggregator interface {
	// Alerts returns findings in engine order; a nil range returns everything
	Alerts(ctx context.Context, rng *model.Range) ([]model.Alert, error)

	// Count returns the number of findings
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every finding
	DeleteAll(ctx context.Context) error

	// Report renders the current findings
	Report(ctx context.Context, format model.ReportFormat) ([]byte, error)
}

// ScannerPolicy tunes the active and passive scanners
type ScannerPolicy interface {
	Scanners(ctx context.Context, policy string) ([]model.Scanner, error)
	EnableScanners(ctx context.Context, ids ...string) error
	DisableScanners(ctx context.Context, ids ...string) error
	EnableAllScanners(ctx context.Context, policy string) error
	DisableAllScanners(ctx context.Context, policy string) error
	SetAttackStrength(ctx context.Context, scannerID, strength, policy string) error
	SetAlertThreshold(ctx context.Context, scannerID, threshold, policy string) error
	SetPassiveScanEnabled(ctx context.Context, enabled bool) error
	SetHandleAntiCSRFTokens(ctx context.Context, enabled bool) error
	Shutdown(ctx context.Context) error
}

// ScriptManager manages engine scripts
type ScriptManager interface {
	Engines(ctx context.Context) ([]string, error)
	Scripts(ctx context.Context) ([]model.Script, error)
	Load(ctx context.Context, spec model.ScriptSpec) error
	Enable(ctx context.Context, name string) error
	Disable(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
	RunStandAlone(ctx context.Context, name string) error
}

// SnapshotStore persists history snapshots locally
type SnapshotStore interface {
	// Save stores entries and alerts under a new snapshot
	Save(ctx context.Context, snapshot model.Snapshot, entries []model.TrafficEntry, alerts []model.Alert) error

	// List returns snapshots, newest first
	List(ctx context.Context) ([]model.Snapshot, error)

	// Entries returns the traffic of one snapshot in capture order
	Entries(ctx context.Context, snapshotID string) ([]model.TrafficEntry, error)

	// Alerts returns the alerts of one snapshot
	Alerts(ctx context.Context, snapshotID string) ([]model.Alert, error)

	// Close releases the store
	Close() error
}
