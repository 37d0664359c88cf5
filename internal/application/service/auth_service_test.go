package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAuthMethod(t *testing.T) {
	tests := []struct {
		name       string
		method     model.AuthMethod
		wantName   string
		wantParams string
	}{
		{
			name:       "form based",
			method:     model.FormBasedAuth{LoginURL: "http://target/login", LoginRequestData: "user={%username%}&pass={%password%}"},
			wantName:   "formBasedAuthentication",
			wantParams: "loginUrl=http%3A%2F%2Ftarget%2Flogin&loginRequestData=user%3D%7B%25username%25%7D%26pass%3D%7B%25password%25%7D",
		},
		{
			name:       "http",
			method:     model.HTTPAuth{Hostname: "target", Realm: "corp", Port: 8443},
			wantName:   "httpAuthentication",
			wantParams: "hostname=target&realm=corp&port=8443",
		},
		{
			name:       "manual",
			method:     model.ManualAuth{},
			wantName:   "manualAuthentication",
			wantParams: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, client := newEngine(t, "2.7.0")
			srv.JSON("authentication/action/setAuthenticationMethod", `{"Result":"OK"}`)

			require.NoError(t, NewAuthService(client, testLogger()).SetAuthMethod(context.Background(), "1", tt.method))

			params := srv.CallsTo("authentication/action/setAuthenticationMethod")[0].Params
			assert.Equal(t, "1", params.Get("contextId"))
			assert.Equal(t, tt.wantName, params.Get("authMethodName"))
			assert.Equal(t, tt.wantParams, params.Get("authMethodConfigParams"))
		})
	}
}

func TestSetAuthMethodValidatesLocally(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	svc := NewAuthService(client, testLogger())

	err := svc.SetAuthMethod(context.Background(), "1", model.FormBasedAuth{LoginURL: "http://target/login"})
	assert.True(t, errors.Is(err, model.ErrUsage))
	err = svc.SetAuthMethod(context.Background(), "", model.ManualAuth{})
	assert.True(t, errors.Is(err, model.ErrUsage))
	assert.Len(t, srv.Calls(), 1)
}

func TestAuthMethodConfigParams(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("authentication/view/getAuthenticationMethodConfigParams",
		`{"methodConfigParams":[{"name":"loginUrl","mandatory":"true"},{"name":"loginRequestData","mandatory":"false"}]}`)

	params, err := NewAuthService(client, testLogger()).AuthMethodConfigParams(context.Background(), model.AuthFormBased)
	require.NoError(t, err)
	assert.Equal(t, []model.ConfigParam{{Name: "loginUrl", Mandatory: true}, {Name: "loginRequestData"}}, params)
	assert.Equal(t, "formBasedAuthentication",
		srv.CallsTo("authentication/view/getAuthenticationMethodConfigParams")[0].Params.Get("authMethodName"))
}

func TestLoggedInIndicator(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("authentication/action/setLoggedInIndicator", `{"Result":"OK"}`)
	indicatorBody, err := json.Marshal(map[string]string{"logged_in_regex": `<a href="/logout">`})
	require.NoError(t, err)
	srv.JSON("authentication/view/getLoggedInIndicator", string(indicatorBody))
	svc := NewAuthService(client, testLogger())

	require.NoError(t, svc.SetLoggedInIndicator(context.Background(), "1", model.Regex(`<a href="/logout">`)))
	assert.Equal(t, `<a href="/logout">`, srv.CallsTo("authentication/action/setLoggedInIndicator")[0].Params.Get("loggedInIndicatorRegex"))

	indicator, err := svc.LoggedInIndicator(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, `<a href="/logout">`, indicator)
}

func TestUsers(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("users/action/newUser", `{"userId":"5"}`)
	srv.JSON("users/action/setAuthenticationCredentials", `{"Result":"OK"}`)
	srv.JSON("users/action/setUserEnabled", `{"Result":"OK"}`)
	srv.JSON("users/view/usersList",
		`{"usersList":[{"id":"5","contextId":"1","name":"alice","enabled":"true","credentials":{"type":"UsernamePasswordAuthenticationCredentials","username":"alice","password":"pw"}}]}`)
	svc := NewAuthService(client, testLogger())
	ctx := context.Background()

	id, err := svc.CreateUser(ctx, "1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "5", id)

	require.NoError(t, svc.SetCredentials(ctx, "1", id, model.UsernamePasswordCredentials{Username: "alice", Password: "p&w"}))
	assert.Equal(t, "username=alice&password=p%26w",
		srv.CallsTo("users/action/setAuthenticationCredentials")[0].Params.Get("authCredentialsConfigParams"))

	require.NoError(t, svc.SetUserEnabled(ctx, "1", id, true))
	assert.Equal(t, "true", srv.CallsTo("users/action/setUserEnabled")[0].Params.Get("enabled"))

	users, err := svc.Users(ctx, "1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Name)
	assert.True(t, users[0].Enabled)
	assert.Equal(t, "alice", users[0].Credentials["username"])
}

func TestRemoveUserIdempotent(t *testing.T) {
	t.Run("unknown user makes no remove call", func(t *testing.T) {
		srv, client := newEngine(t, "2.7.0")
		srv.JSON("users/view/usersList", `{"usersList":[]}`)

		require.NoError(t, NewAuthService(client, testLogger()).RemoveUser(context.Background(), "1", "9"))
		assert.Empty(t, srv.CallsTo("users/action/removeUser"))
	})

	t.Run("engine reports the user gone", func(t *testing.T) {
		srv, client := newEngine(t, "2.7.0")
		srv.JSON("users/view/usersList", `{"usersList":[{"id":"9","contextId":"1","name":"bob","enabled":"false"}]}`)
		srv.Handle("users/action/removeUser", func(url.Values) (int, string) {
			return http.StatusBadRequest, `{"code":"user_not_found","message":"User Not Found"}`
		})

		require.NoError(t, NewAuthService(client, testLogger()).RemoveUser(context.Background(), "1", "9"))
		assert.Len(t, srv.CallsTo("users/action/removeUser"), 1)
	})

	t.Run("other failures surface", func(t *testing.T) {
		srv, client := newEngine(t, "2.7.0")
		srv.JSON("users/view/usersList", `{"usersList":[{"id":"9","contextId":"1","name":"bob","enabled":"false"}]}`)
		srv.Handle("users/action/removeUser", func(url.Values) (int, string) {
			return http.StatusInternalServerError, `{"code":"internal_error","message":"Internal Error"}`
		})

		err := NewAuthService(client, testLogger()).RemoveUser(context.Background(), "1", "9")
		assert.True(t, errors.Is(err, model.ErrRemote))
	})
}

func TestUserByIDNotFound(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.Handle("users/view/getUserById", func(url.Values) (int, string) {
		return http.StatusBadRequest, `{"code":"user_not_found","message":"User Not Found"}`
	})

	_, err := NewAuthService(client, testLogger()).User(context.Background(), "1", "3")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestForcedUser(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("forcedUser/action/setForcedUser", `{"Result":"OK"}`)
	srv.JSON("forcedUser/action/setForcedUserModeEnabled", `{"Result":"OK"}`)
	srv.JSON("forcedUser/view/getForcedUser", `{"forcedUserId":"5"}`)
	srv.JSON("forcedUser/view/isForcedUserModeEnabled", `{"forcedModeEnabled":"true"}`)
	svc := NewAuthService(client, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.SetForcedUser(ctx, "1", "5"))
	require.NoError(t, svc.SetForcedUserModeEnabled(ctx, true))
	assert.Equal(t, "true", srv.CallsTo("forcedUser/action/setForcedUserModeEnabled")[0].Params.Get("boolean"))

	id, err := svc.ForcedUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "5", id)

	enabled, err := svc.ForcedUserModeEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSessionMethod(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"as a set", `{"method":{"methodName":"cookieBasedSessionManagement"}}`},
		{"as a scalar", `{"method":"cookieBasedSessionManagement"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, client := newEngine(t, "2.7.0")
			srv.JSON("sessionManagement/view/getSessionManagementMethod", tt.body)

			method, err := NewAuthService(client, testLogger()).SessionMethod(context.Background(), "1")
			require.NoError(t, err)
			assert.Equal(t, "cookieBasedSessionManagement", method)
		})
	}
}
