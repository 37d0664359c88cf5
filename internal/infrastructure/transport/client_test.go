package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/logger"
	"github.com/haxorport/zapscan-go-client/internal/testutil/fakeengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *logger.Logger {
	return logger.FromZap(zap.NewNop(), zap.NewAtomicLevel())
}

type recordingObserver struct {
	calls []model.APICall
	errs  []error
}

func (o *recordingObserver) ObserveCall(call model.APICall, _ time.Duration, err error) {
	o.calls = append(o.calls, call)
	o.errs = append(o.errs, err)
}

func TestNewClientRejectsBadConfigBeforeNetwork(t *testing.T) {
	srv := fakeengine.New(t, "2.7.0")

	tests := []struct {
		name   string
		mutate func(*model.Config)
	}{
		{"empty host", func(c *model.Config) { c.Host = "" }},
		{"port zero", func(c *model.Config) { c.Port = 0 }},
		{"port too high", func(c *model.Config) { c.Port = 65536 }},
		{"negative port", func(c *model.Config) { c.Port = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := srv.Config()
			tt.mutate(cfg)

			client, err := NewClient(context.Background(), cfg, testLogger())
			require.Error(t, err)
			assert.Nil(t, client)
			assert.True(t, errors.Is(err, model.ErrConfiguration))
		})
	}

	assert.Empty(t, srv.Calls())
}

func TestNewClientNilConfig(t *testing.T) {
	_, err := NewClient(context.Background(), nil, testLogger())
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestNewClientVersionGate(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"release too old", "2.3.0", true},
		{"release supported", "2.4.3", false},
		{"release prefix of minimum", "2.4", true},
		{"daily too old", "D-2013-06-01", true},
		{"daily supported", "D-2016-02-29", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeengine.New(t, tt.version)
			cfg := srv.Config()
			cfg.MinVersion = "2.4.3"

			client, err := NewClient(context.Background(), cfg, testLogger())
			calls := srv.Calls()
			require.Len(t, calls, 1, "only the version is queried during construction")
			assert.Equal(t, "core/view/version", calls[0].Path)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, client)
				assert.True(t, errors.Is(err, model.ErrVersionIncompatible))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, client.Version().Raw)
		})
	}
}

func TestNewClientUnreachableEngine(t *testing.T) {
	srv := fakeengine.New(t, "2.7.0")
	cfg := srv.Config()
	srv.Close()

	_, err := NewClient(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRemote))

	var engineErr *model.EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.NotNil(t, engineErr.Err, "the transport cause is preserved")
}

func TestCallShapesAndAPIKey(t *testing.T) {
	srv := fakeengine.New(t, "2.7.0")
	srv.JSON("spider/view/scans", `{"scans":[{"id":"0","progress":"100","state":"FINISHED"}]}`)
	srv.JSON("spider/action/scan", `{"scan":"1"}`)
	srv.Handle("core/other/xmlreport", func(url.Values) (int, string) {
		return http.StatusOK, `<?xml version="1.0"?><OWASPZAPReport></OWASPZAPReport>`
	})

	observer := &recordingObserver{}
	client, err := NewClient(context.Background(), srv.Config(), testLogger(), WithObserver(observer))
	require.NoError(t, err)
	assert.True(t, client.Capabilities().APIKeyHeader)

	ctx := context.Background()
	resp, err := client.Call(ctx, model.View("spider", "scans", nil))
	require.NoError(t, err)
	sets, err := resp.Sets("scans")
	require.NoError(t, err)
	assert.Equal(t, "FINISHED", sets[0]["state"])

	_, err = client.Call(ctx, model.Action("spider", "scan", url.Values{"url": {"http://target/"}}))
	require.NoError(t, err)

	report, err := client.Call(ctx, model.Other("core", "xmlreport", nil))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(report.Bytes()), `<?xml version="1.0"`))

	view := srv.CallsTo("spider/view/scans")[0]
	assert.Equal(t, "JSON", view.Format)
	assert.Empty(t, view.Params.Get("apikey"), "views do not carry the key")

	action := srv.CallsTo("spider/action/scan")[0]
	assert.Equal(t, "test-key", action.Params.Get("apikey"))
	assert.Equal(t, "test-key", action.Header.Get(APIKeyHeader))
	assert.Equal(t, "http://target/", action.Params.Get("url"))

	other := srv.CallsTo("core/other/xmlreport")[0]
	assert.Equal(t, "OTHER", other.Format)
	assert.Equal(t, "test-key", other.Params.Get("apikey"))

	assert.Len(t, observer.calls, 4)
}

func TestCallSendsEmptyAPIKeyExplicitly(t *testing.T) {
	srv := fakeengine.New(t, "2.4.0")
	srv.JSON("core/action/deleteAllAlerts", `{"Result":"OK"}`)
	cfg := srv.Config()
	cfg.APIKey = ""

	client, err := NewClient(context.Background(), cfg, testLogger())
	require.NoError(t, err)

	_, err = client.Call(context.Background(), model.Action("core", "deleteAllAlerts", nil))
	require.NoError(t, err)

	call := srv.CallsTo("core/action/deleteAllAlerts")[0]
	_, present := call.Params["apikey"]
	assert.True(t, present)
	assert.Empty(t, call.Header.Get(APIKeyHeader))
}

func TestCallEngineErrorPreservesCode(t *testing.T) {
	srv := fakeengine.New(t, "2.7.0")
	srv.Handle("context/action/newContext", func(url.Values) (int, string) {
		return http.StatusBadRequest, `{"code":"already_exists","message":"Already Exists"}`
	})
	srv.Handle("users/action/removeUser", func(url.Values) (int, string) {
		// Older engines report errors with a 200 status.
		return http.StatusOK, `{"code":"user_not_found","message":"User Not Found"}`
	})

	client, err := NewClient(context.Background(), srv.Config(), testLogger())
	require.NoError(t, err)

	_, err = client.Call(context.Background(), model.Action("context", "newContext", url.Values{"contextName": {"dup"}}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRemote))
	var engineErr *model.EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, "already_exists", engineErr.Code)
	assert.Contains(t, err.Error(), "Already Exists")
	assert.False(t, model.IsAbsent(err))

	_, err = client.Call(context.Background(), model.Action("users", "removeUser", nil))
	require.Error(t, err)
	assert.True(t, model.IsAbsent(err))
}

func TestCallMalformedJSONIsProtocolError(t *testing.T) {
	srv := fakeengine.New(t, "2.7.0")
	srv.JSON("core/view/numberOfMessages", `<html>proxy error</html>`)

	client, err := NewClient(context.Background(), srv.Config(), testLogger())
	require.NoError(t, err)

	_, err = client.Call(context.Background(), model.View("core", "numberOfMessages", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrProtocol))
}

func TestCallNon2xxWithoutCode(t *testing.T) {
	srv := fakeengine.New(t, "2.7.0")
	srv.Handle("core/view/alerts", func(url.Values) (int, string) {
		return http.StatusInternalServerError, "boom"
	})

	client, err := NewClient(context.Background(), srv.Config(), testLogger())
	require.NoError(t, err)

	_, err = client.Call(context.Background(), model.View("core", "alerts", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRemote))
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestLargeParametersArePosted(t *testing.T) {
	srv := fakeengine.New(t, "2.7.0")
	srv.Handle("core/other/sendHarRequest", func(params url.Values) (int, string) {
		return http.StatusOK, `{"log":{"entries":[]}}`
	})

	client, err := NewClient(context.Background(), srv.Config(), testLogger())
	require.NoError(t, err)

	big := strings.Repeat("a", 5000)
	_, err = client.Call(context.Background(), model.Other("core", "sendHarRequest", url.Values{"request": {big}}))
	require.NoError(t, err)

	call := srv.CallsTo("core/other/sendHarRequest")[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, big, call.Params.Get("request"))
}

func TestCallHonoursContext(t *testing.T) {
	srv := fakeengine.New(t, "2.7.0")
	client, err := NewClient(context.Background(), srv.Config(), testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Call(ctx, model.View("core", "version", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
