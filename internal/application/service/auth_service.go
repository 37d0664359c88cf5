package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	domain "github.com/haxorport/zapscan-go-client/internal/domain/service"
)

// AuthService configures authentication, users, the forced user and session
// management of contexts
type AuthService struct {
	engine port.Engine
	logger port.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(engine port.Engine, logger port.Logger) *AuthService {
	return &AuthService{
		engine: engine,
		logger: logger,
	}
}

// SupportedAuthMethods returns the authentication method names known to the engine
func (s *AuthService) SupportedAuthMethods(ctx context.Context) ([]string, error) {
	resp, err := s.engine.Call(ctx, model.View("authentication", "getSupportedAuthenticationMethods", nil))
	if err != nil {
		return nil, err
	}
	return resp.List("")
}

// AuthMethodConfigParams returns the parameters accepted by an authentication method
func (s *AuthService) AuthMethodConfigParams(ctx context.Context, method model.AuthMethodName) ([]model.ConfigParam, error) {
	if err := requireValue("authentication method", string(method)); err != nil {
		return nil, err
	}
	resp, err := s.engine.Call(ctx, model.View("authentication", "getAuthenticationMethodConfigParams",
		url.Values{"authMethodName": {string(method)}}))
	if err != nil {
		return nil, err
	}
	return configParams(resp)
}

// AuthMethod returns the context's authentication method as reported by the engine
func (s *AuthService) AuthMethod(ctx context.Context, contextID string) (model.Attributes, error) {
	if err := requireValue("context id", contextID); err != nil {
		return nil, err
	}
	resp, err := s.engine.Call(ctx, model.View("authentication", "getAuthenticationMethod", contextParams(contextID)))
	if err != nil {
		return nil, err
	}
	return resp.Set("")
}

// SetAuthMethod sets the context's authentication method
func (s *AuthService) SetAuthMethod(ctx context.Context, contextID string, method model.AuthMethod) error {
	if err := requireValue("context id", contextID); err != nil {
		return err
	}
	if method == nil {
		return model.NewUsageError("authentication method is required")
	}
	params, err := method.ConfigParams()
	if err != nil {
		return err
	}

	_, err = s.engine.Call(ctx, model.Action("authentication", "setAuthenticationMethod", url.Values{
		"contextId":              {contextID},
		"authMethodName":         {string(method.Name())},
		"authMethodConfigParams": {params},
	}))
	if err != nil {
		return err
	}
	s.logger.Info("Context %s uses %s", contextID, method.Name())
	return nil
}

// LoggedInIndicator returns the regex identifying authenticated responses
func (s *AuthService) LoggedInIndicator(ctx context.Context, contextID string) (string, error) {
	return s.indicator(ctx, "getLoggedInIndicator", contextID)
}

// SetLoggedInIndicator sets the regex identifying authenticated responses
func (s *AuthService) SetLoggedInIndicator(ctx context.Context, contextID string, pattern model.ScopePattern) error {
	return s.setIndicator(ctx, "setLoggedInIndicator", "loggedInIndicatorRegex", contextID, pattern)
}

// LoggedOutIndicator returns the regex identifying unauthenticated responses
func (s *AuthService) LoggedOutIndicator(ctx context.Context, contextID string) (string, error) {
	return s.indicator(ctx, "getLoggedOutIndicator", contextID)
}

// SetLoggedOutIndicator sets the regex identifying unauthenticated responses
func (s *AuthService) SetLoggedOutIndicator(ctx context.Context, contextID string, pattern model.ScopePattern) error {
	return s.setIndicator(ctx, "setLoggedOutIndicator", "loggedOutIndicatorRegex", contextID, pattern)
}

func (s *AuthService) indicator(ctx context.Context, view, contextID string) (string, error) {
	if err := requireValue("context id", contextID); err != nil {
		return "", err
	}
	resp, err := s.engine.Call(ctx, model.View("authentication", view, contextParams(contextID)))
	if err != nil {
		return "", err
	}
	return resp.Value("")
}

func (s *AuthService) setIndicator(ctx context.Context, action, param, contextID string, pattern model.ScopePattern) error {
	if err := requireValue("context id", contextID); err != nil {
		return err
	}
	if !pattern.IsSubtree() {
		if _, err := domain.CompilePattern(pattern.Raw()); err != nil {
			return err
		}
	}
	_, err := s.engine.Call(ctx, model.Action("authentication", action, url.Values{
		"contextId": {contextID},
		param:       {pattern.Expand()},
	}))
	return err
}

// Users returns the users of a context
func (s *AuthService) Users(ctx context.Context, contextID string) ([]model.User, error) {
	if err := requireValue("context id", contextID); err != nil {
		return nil, err
	}
	resp, err := s.engine.Call(ctx, model.View("users", "usersList", contextParams(contextID)))
	if err != nil {
		return nil, err
	}
	sets, err := resp.Sets("usersList")
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(sets))
	for _, attrs := range sets {
		users = append(users, model.ParseUser(attrs))
	}
	return users, nil
}

// User returns one user of a context
func (s *AuthService) User(ctx context.Context, contextID, userID string) (model.User, error) {
	if err := requireUser(contextID, userID); err != nil {
		return model.User{}, err
	}
	resp, err := s.engine.Call(ctx, model.View("users", "getUserById", userParams(contextID, userID)))
	if err != nil {
		if model.IsAbsent(err) {
			return model.User{}, model.NewNotFoundError("users", "getUserById", "user %s does not exist in context %s", userID, contextID)
		}
		return model.User{}, err
	}
	attrs, err := resp.Set("")
	if err != nil {
		return model.User{}, err
	}
	return model.ParseUser(attrs), nil
}

// CreateUser adds a user to a context and returns its id
func (s *AuthService) CreateUser(ctx context.Context, contextID, name string) (string, error) {
	if err := requireValue("context id", contextID); err != nil {
		return "", err
	}
	if err := requireValue("user name", name); err != nil {
		return "", err
	}
	resp, err := s.engine.Call(ctx, model.Action("users", "newUser", url.Values{
		"contextId": {contextID},
		"name":      {name},
	}))
	if err != nil {
		return "", err
	}
	id, err := resp.Value("userId")
	if err != nil {
		return "", err
	}
	s.logger.Info("User %q created in context %s with id %s", name, contextID, id)
	return id, nil
}

// RenameUser changes the name of a user
func (s *AuthService) RenameUser(ctx context.Context, contextID, userID, name string) error {
	if err := requireUser(contextID, userID); err != nil {
		return err
	}
	if err := requireValue("user name", name); err != nil {
		return err
	}
	params := userParams(contextID, userID)
	params.Set("name", name)
	_, err := s.engine.Call(ctx, model.Action("users", "setUserName", params))
	return err
}

// SetUserEnabled enables or disables a user
func (s *AuthService) SetUserEnabled(ctx context.Context, contextID, userID string, enabled bool) error {
	if err := requireUser(contextID, userID); err != nil {
		return err
	}
	params := userParams(contextID, userID)
	params.Set("enabled", strconv.FormatBool(enabled))
	_, err := s.engine.Call(ctx, model.Action("users", "setUserEnabled", params))
	return err
}

// RemoveUser removes a user; removing an unknown user does nothing
func (s *AuthService) RemoveUser(ctx context.Context, contextID, userID string) error {
	if err := requireUser(contextID, userID); err != nil {
		return err
	}
	users, err := s.Users(ctx, contextID)
	if err != nil {
		return model.AsAbsentOK(err)
	}
	found := false
	for _, u := range users {
		if u.ID == userID {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	_, err = s.engine.Call(ctx, model.Action("users", "removeUser", userParams(contextID, userID)))
	if err = model.AsAbsentOK(err); err != nil {
		return err
	}
	s.logger.Info("User %s removed from context %s", userID, contextID)
	return nil
}

// CredentialConfigParams returns the credential fields of the context's authentication method
func (s *AuthService) CredentialConfigParams(ctx context.Context, contextID string) ([]model.ConfigParam, error) {
	if err := requireValue("context id", contextID); err != nil {
		return nil, err
	}
	resp, err := s.engine.Call(ctx, model.View("users", "getAuthenticationCredentialsConfigParams", contextParams(contextID)))
	if err != nil {
		return nil, err
	}
	return configParams(resp)
}

// Credentials returns a user's credentials; the keys depend on the authentication method
func (s *AuthService) Credentials(ctx context.Context, contextID, userID string) (map[string]string, error) {
	if err := requireUser(contextID, userID); err != nil {
		return nil, err
	}
	resp, err := s.engine.Call(ctx, model.View("users", "getAuthenticationCredentials", userParams(contextID, userID)))
	if err != nil {
		return nil, err
	}
	attrs, err := resp.Set("")
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// SetCredentials sets a user's credentials
func (s *AuthService) SetCredentials(ctx context.Context, contextID, userID string, creds model.Credentials) error {
	if err := requireUser(contextID, userID); err != nil {
		return err
	}
	if creds == nil {
		return model.NewUsageError("credentials are required")
	}
	encoded, err := creds.ConfigParams()
	if err != nil {
		return err
	}
	params := userParams(contextID, userID)
	params.Set("authCredentialsConfigParams", encoded)
	_, err = s.engine.Call(ctx, model.Action("users", "setAuthenticationCredentials", params))
	return err
}

// ForcedUserModeEnabled reports whether every request is sent as the forced user
func (s *AuthService) ForcedUserModeEnabled(ctx context.Context) (bool, error) {
	resp, err := s.engine.Call(ctx, model.View("forcedUser", "isForcedUserModeEnabled", nil))
	if err != nil {
		return false, err
	}
	return resp.Bool("")
}

// SetForcedUserModeEnabled toggles forced user mode
func (s *AuthService) SetForcedUserModeEnabled(ctx context.Context, enabled bool) error {
	_, err := s.engine.Call(ctx, model.Action("forcedUser", "setForcedUserModeEnabled",
		url.Values{"boolean": {strconv.FormatBool(enabled)}}))
	return err
}

// ForcedUser returns the id of the context's forced user
func (s *AuthService) ForcedUser(ctx context.Context, contextID string) (string, error) {
	if err := requireValue("context id", contextID); err != nil {
		return "", err
	}
	resp, err := s.engine.Call(ctx, model.View("forcedUser", "getForcedUser", contextParams(contextID)))
	if err != nil {
		return "", err
	}
	return resp.Value("")
}

// SetForcedUser sets the context's forced user
func (s *AuthService) SetForcedUser(ctx context.Context, contextID, userID string) error {
	if err := requireUser(contextID, userID); err != nil {
		return err
	}
	_, err := s.engine.Call(ctx, model.Action("forcedUser", "setForcedUser", userParams(contextID, userID)))
	return err
}

// SupportedSessionMethods returns the session management method names
func (s *AuthService) SupportedSessionMethods(ctx context.Context) ([]string, error) {
	resp, err := s.engine.Call(ctx, model.View("sessionManagement", "getSupportedSessionManagementMethods", nil))
	if err != nil {
		return nil, err
	}
	return resp.List("")
}

// SessionMethod returns the name of the context's session management method
func (s *AuthService) SessionMethod(ctx context.Context, contextID string) (string, error) {
	if err := requireValue("context id", contextID); err != nil {
		return "", err
	}
	resp, err := s.engine.Call(ctx, model.View("sessionManagement", "getSessionManagementMethod", contextParams(contextID)))
	if err != nil {
		return "", err
	}
	// Newer engines describe the method as a set.
	if attrs, err := resp.Set(""); err == nil {
		return attrs["methodName"], nil
	}
	return resp.Value("")
}

// SetSessionMethod sets the context's session management method
func (s *AuthService) SetSessionMethod(ctx context.Context, contextID, methodName, configParams string) error {
	if err := requireValue("context id", contextID); err != nil {
		return err
	}
	if err := requireValue("session method", methodName); err != nil {
		return err
	}
	_, err := s.engine.Call(ctx, model.Action("sessionManagement", "setSessionManagementMethod", url.Values{
		"contextId":          {contextID},
		"methodName":         {methodName},
		"methodConfigParams": {configParams},
	}))
	return err
}

func configParams(resp *model.APIResponse) ([]model.ConfigParam, error) {
	sets, err := resp.Sets("")
	if err != nil {
		return nil, err
	}
	params := make([]model.ConfigParam, 0, len(sets))
	for _, attrs := range sets {
		params = append(params, model.ConfigParam{Name: attrs["name"], Mandatory: attrs.Bool("mandatory")})
	}
	return params, nil
}

func requireUser(contextID, userID string) error {
	if err := requireValue("context id", contextID); err != nil {
		return err
	}
	return requireValue("user id", userID)
}

func contextParams(contextID string) url.Values {
	return url.Values{"contextId": {contextID}}
}

func userParams(contextID, userID string) url.Values {
	return url.Values{"contextId": {contextID}, "userId": {userID}}
}

// Ensure AuthService implements port.AuthConfigurator
var _ port.AuthConfigurator = (*AuthService)(nil)
