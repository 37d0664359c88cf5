package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventServer(t *testing.T, handle func(conn *websocket.Conn)) *model.Config {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	cfg := model.NewConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.APIKey = "test-key"
	return cfg
}

func TestEventStreamSubscribeAndNext(t *testing.T) {
	registered := make(chan string, 2)
	cfg := eventServer(t, func(conn *websocket.Conn) {
		for i := 0; i < 2; i++ {
			var msg map[string]string
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			registered <- msg["name"]
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"Result":"OK"}`))
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(
			`{"event.publisher":"`+model.PublisherSpider+`","event.type":"scan.progress","event.target.uri":"http://target/","scanId":"3","scanProgress":"40"}`))
		// Wait for the client to close.
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := DialEvents(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer stream.Close()

	require.NoError(t, stream.Subscribe(ctx, model.PublisherSpider, model.PublisherActiveScan))
	assert.Equal(t, model.PublisherSpider, <-registered)
	assert.Equal(t, model.PublisherActiveScan, <-registered)

	event, err := stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PublisherSpider, event.Publisher)
	assert.Equal(t, "scan.progress", event.Type)
	assert.Equal(t, "http://target/", event.Target)
	assert.Equal(t, "40", event.Params["scanProgress"])
}

func TestEventStreamNextHonoursContext(t *testing.T) {
	cfg := eventServer(t, func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
	})

	stream, err := DialEvents(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = stream.Next(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDialEventsRejectsBadConfig(t *testing.T) {
	cfg := model.NewConfig()
	cfg.Port = 0
	_, err := DialEvents(context.Background(), cfg, testLogger())
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestParseEvent(t *testing.T) {
	_, ok, err := ParseEvent([]byte(`{"Result":"OK"}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseEvent([]byte(`not json`))
	assert.True(t, errors.Is(err, model.ErrProtocol))
}
