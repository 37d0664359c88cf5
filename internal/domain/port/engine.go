package port

import (
	"context"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
)

// Engine is the protocol adapter to the remote engine API
type Engine interface {
	// Call invokes one engine operation and returns its normalized response
	Call(ctx context.Context, call model.APICall) (*model.APIResponse, error)

	// Version returns the engine version validated at construction
	Version() model.EngineVersion

	// Capabilities returns the protocol feature set selected for the engine version
	Capabilities() model.Capabilities
}

// CallObserver records engine call outcomes
type CallObserver interface {
	// ObserveCall records one finished call
	ObserveCall(call model.APICall, duration time.Duration, err error)
}

// EventStream is a caller-driven subscription to engine events
type EventStream interface {
	// Subscribe registers interest in the given publishers
	Subscribe(ctx context.Context, publishers ...string) error

	// Next blocks until the next event arrives or ctx is done
	Next(ctx context.Context) (model.EngineEvent, error)

	// Close closes the underlying connection
	Close() error
}
