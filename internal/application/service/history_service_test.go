package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	domain "github.com/haxorport/zapscan-go-client/internal/domain/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestHistoryRange(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("core/view/numberOfMessages", `{"numberOfMessages":"5"}`)
	srv.JSON("core/other/messagesHar", harLog(harEntry("GET", "http://target/a", "", "")))
	svc := NewHistoryService(client, testLogger())
	ctx := context.Background()

	entries, err := svc.History(ctx, &model.Range{Start: 1, End: 10})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	call := srv.CallsTo("core/other/messagesHar")[0]
	assert.Equal(t, "2", call.Params.Get("start"), "engine positions are 1-based")
	assert.Equal(t, "4", call.Params.Get("count"), "the end is clamped to the count")

	entries, err = svc.History(ctx, &model.Range{Start: 7, End: 9})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Len(t, srv.CallsTo("core/other/messagesHar"), 1, "a range past the end makes no export call")

	_, err = svc.History(ctx, &model.Range{Start: -1, End: 2})
	assert.True(t, errors.Is(err, model.ErrUsage))
	_, err = svc.History(ctx, &model.Range{Start: 3, End: 2})
	assert.True(t, errors.Is(err, model.ErrUsage))
}

func TestHistoryFollowsCapabilityTable(t *testing.T) {
	tests := []struct {
		version string
		path    string
	}{
		{"2.7.0", "core/other/messagesHar"},
		{"2.11.1", "exim/other/exportHar"},
		{"D-2023-01-09", "exim/other/exportHar"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			srv, client := newEngine(t, tt.version)
			srv.JSON(tt.path, harLog(harEntry("GET", "http://target/", "", "")))

			entries, err := NewHistoryService(client, testLogger()).History(context.Background(), nil)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
			require.Len(t, srv.CallsTo(tt.path), 1)
			assert.Empty(t, srv.CallsTo(tt.path)[0].Params.Get("start"))
		})
	}
}

func TestHistoryEmptyPayloadIsProtocolError(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.Handle("core/other/messagesHar", func(url.Values) (int, string) { return http.StatusOK, "" })

	entries, err := NewHistoryService(client, testLogger()).History(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, entries)
	assert.True(t, errors.Is(err, model.ErrProtocol))
}

func TestFindInResponseHistoryDecodesBase64Only(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("core/other/messagesHar", harLog(
		harEntry("GET", "http://target/encoded", "c2VjcmV0IHRva2Vu", "base64")+","+
			harEntry("GET", "http://target/plain", "c2VjcmV0IHRva2Vu", "")))
	svc := NewHistoryService(client, testLogger())

	found, err := svc.FindInResponseHistory(context.Background(), "secret token")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "http://target/encoded", found[0].Request.URL)

	found, err = svc.FindInResponseHistory(context.Background(), "c2VjcmV0")
	require.NoError(t, err)
	require.Len(t, found, 1, "plain bodies are matched as they are")
	assert.Equal(t, "http://target/plain", found[0].Request.URL)
}

func TestFindInRequestHistory(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("core/other/messagesHar", harLog(
		harEntry("GET", "http://target/search?q=1", "", "")+","+
			harEntry("POST", "http://target/login", "", "")))

	found, err := NewHistoryService(client, testLogger()).FindInRequestHistory(context.Background(), `^POST .*/login`)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "POST", found[0].Request.Method)
}

func TestFindInvalidPatternMakesNoCall(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	svc := NewHistoryService(client, testLogger())

	_, err := svc.FindInRequestHistory(context.Background(), "(unclosed")
	assert.True(t, errors.Is(err, model.ErrUsage))
	_, err = svc.FindInResponseHistory(context.Background(), "[")
	assert.True(t, errors.Is(err, model.ErrUsage))

	assert.Len(t, srv.Calls(), 1, "only the version check reached the engine")
}

func TestFilterCallerEntries(t *testing.T) {
	_, client := newEngine(t, "2.7.0")
	svc := NewHistoryService(client, testLogger())

	entries := []model.TrafficEntry{
		{Request: model.Request{Method: "GET", URL: "http://target/a"}},
		{
			Request:  model.Request{Method: "GET", URL: "http://target/b"},
			Response: &model.Response{Status: 500, Content: model.Content{Text: "stack trace"}},
		},
	}

	found, err := svc.FilterResponses(entries, "stack trace")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "http://target/b", found[0].Request.URL)

	found, err = svc.FilterRequests(entries, "/a ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "http://target/a", found[0].Request.URL)
}

func TestReplayRoundTrip(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("core/other/messagesHar", harLog(`{
		"startedDateTime":"2018-03-12T10:15:30.123+0000",
		"request":{"method":"GET","url":"http://target/account","httpVersion":"HTTP/1.1",
			"cookies":[{"name":"JSESSIONID","value":"old"}],
			"headers":[{"name":"Cookie","value":"theme=dark; JSESSIONID=old"}],
			"queryString":[],"headersSize":0,"bodySize":0},
		"response":{"status":200,"statusText":"OK","httpVersion":"HTTP/1.1","cookies":[],"headers":[],
			"content":{"size":0,"mimeType":"text/html","text":""},"redirectURL":"","headersSize":0,"bodySize":0}}`))

	var sent gjson.Result
	srv.Handle("core/other/sendHarRequest", func(params url.Values) (int, string) {
		sent = gjson.Parse(params.Get("request"))
		assert.Equal(t, "true", params.Get("followRedirects"))
		return http.StatusOK, harLog(
			harEntry("GET", "http://target/account", "", "") + "," +
				harEntry("GET", "http://target/login", "please log in", ""))
	})

	svc := NewHistoryService(client, testLogger())
	ctx := context.Background()

	history, err := svc.History(ctx, nil)
	require.NoError(t, err)
	require.Len(t, history, 1)

	original := history[0].Request
	modified := domain.ChangeCookieValue(original, "JSESSIONID", "new")

	replayed, err := svc.Replay(ctx, modified, true)
	require.NoError(t, err)
	require.Len(t, replayed, 2, "every exchange of the replay is returned")
	assert.Equal(t, "http://target/login", replayed[1].Request.URL)

	assert.Equal(t, "http://target/account", sent.Get("request.url").String())
	assert.Equal(t, "theme=dark; JSESSIONID=new", sent.Get("request.headers.0.value").String())
	assert.Equal(t, "new", sent.Get("request.cookies.0.value").String())

	value, _ := original.Header("Cookie")
	assert.Equal(t, "theme=dark; JSESSIONID=old", value, "the history entry is untouched")
}

func TestReplayRequiresURL(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")

	_, err := NewHistoryService(client, testLogger()).Replay(context.Background(), model.Request{}, false)
	assert.True(t, errors.Is(err, model.ErrUsage))
	assert.Empty(t, srv.CallsTo("core/other/sendHarRequest"))
}

func TestClear(t *testing.T) {
	t.Run("removes jobs then starts a session", func(t *testing.T) {
		srv, client := newEngine(t, "2.7.0")
		srv.JSON("spider/action/removeAllScans", `{"Result":"OK"}`)
		srv.JSON("ascan/action/removeAllScans", `{"Result":"OK"}`)
		srv.JSON("core/action/newSession", `{"Result":"OK"}`)

		err := NewHistoryService(client, testLogger()).Clear(context.Background(), model.NewSessionOptions{Name: "fresh", Overwrite: true})
		require.NoError(t, err)

		calls := srv.Calls()
		require.Len(t, calls, 4)
		assert.Equal(t, "spider/action/removeAllScans", calls[1].Path)
		assert.Equal(t, "ascan/action/removeAllScans", calls[2].Path)
		assert.Equal(t, "core/action/newSession", calls[3].Path)
		assert.Equal(t, "fresh", calls[3].Params.Get("name"))
		assert.Equal(t, "true", calls[3].Params.Get("overwrite"))
	})

	t.Run("older engines stop jobs", func(t *testing.T) {
		srv, client := newEngine(t, "2.3.1")
		srv.JSON("spider/action/stopAllScans", `{"Result":"OK"}`)
		srv.JSON("ascan/action/stopAllScans", `{"Result":"OK"}`)
		srv.JSON("core/action/newSession", `{"Result":"OK"}`)

		require.NoError(t, NewHistoryService(client, testLogger()).Clear(context.Background(), model.NewSessionOptions{}))
		assert.Len(t, srv.CallsTo("spider/action/stopAllScans"), 1)
		assert.Len(t, srv.CallsTo("ascan/action/stopAllScans"), 1)

		_, present := srv.CallsTo("core/action/newSession")[0].Params["name"]
		assert.True(t, present, "the session name is sent even when empty")
	})
}
