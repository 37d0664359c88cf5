package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"github.com/tidwall/gjson"
)

// Keys of the engine event envelope
const (
	eventPublisherKey = "event.publisher"
	eventTypeKey      = "event.type"
	eventTargetKey    = "event.target.uri"
)

// EventStream is a websocket subscription to engine events. It runs no
// goroutine of its own: events are read by the caller through Next. A read
// interrupted by ctx leaves the connection unusable; dial a new stream.
type EventStream struct {
	conn   *websocket.Conn
	logger port.Logger
}

// DialEvents connects to the engine websocket endpoint
func DialEvents(ctx context.Context, config *model.Config, logger port.Logger) (*EventStream, error) {
	if config == nil {
		return nil, model.NewConfigError("configuration is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		Path:     "/",
		RawQuery: url.Values{"apikey": {config.APIKey}}.Encode(),
	}

	logger.Info("Connecting to engine events: %s", u.Host)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, model.NewRemoteError("event", "connect", "", err)
	}
	return &EventStream{conn: conn, logger: logger}, nil
}

// Subscribe registers interest in the given event publishers
func (s *EventStream) Subscribe(ctx context.Context, publishers ...string) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetWriteDeadline(deadline)
		defer s.conn.SetWriteDeadline(time.Time{})
	}
	for _, publisher := range publishers {
		msg := map[string]string{
			"component": "event",
			"type":      "register",
			"name":      publisher,
		}
		if err := s.conn.WriteJSON(msg); err != nil {
			return model.NewRemoteError("event", "register", "", fmt.Errorf("%s: %w", publisher, err))
		}
		s.logger.Debug("Subscribed to %s", publisher)
	}
	return nil
}

// Next returns the next engine event. Acknowledgements and other non-event
// messages are skipped.
func (s *EventStream) Next(ctx context.Context) (model.EngineEvent, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
	} else {
		_ = s.conn.SetReadDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return model.EngineEvent{}, ctx.Err()
			}
			if deadline, ok := ctx.Deadline(); ok && !time.Now().Before(deadline) {
				return model.EngineEvent{}, context.DeadlineExceeded
			}
			return model.EngineEvent{}, model.NewRemoteError("event", "read", "", err)
		}

		event, ok, err := ParseEvent(data)
		if err != nil {
			return model.EngineEvent{}, err
		}
		if ok {
			return event, nil
		}
		s.logger.Debug("Skipping non-event message: %s", preview(data))
	}
}

// Close closes the websocket connection
func (s *EventStream) Close() error {
	_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}

// ParseEvent decodes an engine event message. It reports false for messages
// that are not events, such as registration acknowledgements.
func ParseEvent(data []byte) (model.EngineEvent, bool, error) {
	if !gjson.ValidBytes(data) {
		return model.EngineEvent{}, false, model.NewProtocolError("event", "read", errors.New("event is not valid JSON"))
	}

	event := model.EngineEvent{Params: map[string]string{}}
	gjson.ParseBytes(data).ForEach(func(k, v gjson.Result) bool {
		switch k.String() {
		case eventPublisherKey:
			event.Publisher = v.String()
		case eventTypeKey:
			event.Type = v.String()
		case eventTargetKey:
			event.Target = v.String()
		default:
			event.Params[k.String()] = v.String()
		}
		return true
	})
	return event, event.Publisher != "", nil
}

// Ensure EventStream implements port.EventStream
var _ port.EventStream = (*EventStream)(nil)
