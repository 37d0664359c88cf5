package service

import (
	"context"
	"testing"

	"github.com/haxorport/zapscan-go-client/internal/infrastructure/logger"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/transport"
	"github.com/haxorport/zapscan-go-client/internal/testutil/fakeengine"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *logger.Logger {
	return logger.FromZap(zap.NewNop(), zap.NewAtomicLevel())
}

// newEngine starts a fake engine reporting version and connects a client to it
func newEngine(t *testing.T, version string) (*fakeengine.Server, *transport.Client) {
	t.Helper()
	srv := fakeengine.New(t, version)
	client, err := transport.NewClient(context.Background(), srv.Config(), testLogger())
	require.NoError(t, err)
	return srv, client
}

// harLog wraps entries JSON into a HAR document
func harLog(entries string) string {
	return `{"log":{"version":"1.2","creator":{"name":"OWASP ZAP","version":"2.7.0"},"entries":[` + entries + `]}}`
}

func harEntry(method, url, body, encoding string) string {
	return `{"startedDateTime":"2018-03-12T10:15:30.123+0000","time":3,` +
		`"request":{"method":"` + method + `","url":"` + url + `","httpVersion":"HTTP/1.1","cookies":[],"headers":[],"queryString":[],"headersSize":0,"bodySize":0},` +
		`"response":{"status":200,"statusText":"OK","httpVersion":"HTTP/1.1","cookies":[],"headers":[{"name":"Content-Type","value":"text/plain"}],` +
		`"content":{"size":0,"mimeType":"text/plain","text":"` + body + `","encoding":"` + encoding + `"},"redirectURL":"","headersSize":0,"bodySize":0}}`
}
