package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCountsOutcomes(t *testing.T) {
	r := NewRecorder("test")
	call := model.View("spider", "scans", nil)

	r.ObserveCall(call, 10*time.Millisecond, nil)
	r.ObserveCall(call, 10*time.Millisecond, nil)
	r.ObserveCall(call, time.Millisecond, model.NewRemoteError("spider", "scans", "bad_view", errors.New("rejected")))
	r.ObserveCall(call, time.Millisecond, model.NewProtocolError("spider", "scans", errors.New("empty")))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.calls.WithLabelValues("spider", "scans", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("spider", "scans", OutcomeRemote)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("spider", "scans", OutcomeProtocol)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder("")
	r.ObserveCall(model.View("core", "version", nil), time.Millisecond, nil)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `zapscan_engine_calls_total{component="core",operation="version",outcome="ok"} 1`)
	assert.Contains(t, string(body), "zapscan_engine_call_duration_seconds_bucket")
}
