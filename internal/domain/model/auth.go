package model

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// AuthMethodName identifies an engine authentication method
type AuthMethodName string

const (
	AuthManual      AuthMethodName = "manualAuthentication"
	AuthFormBased   AuthMethodName = "formBasedAuthentication"
	AuthHTTP        AuthMethodName = "httpAuthentication"
	AuthScriptBased AuthMethodName = "scriptBasedAuthentication"
)

// AuthMethod is a typed authentication method configuration
type AuthMethod interface {
	// Name is the engine method name
	Name() AuthMethodName
	// ConfigParams renders the engine's "a=b&c=d" configuration string,
	// failing with a usage error when a required field is missing
	ConfigParams() (string, error)
}

// ManualAuth relies on a session the tester established by hand
type ManualAuth struct{}

// Name returns the engine name of manual authentication
func (ManualAuth) Name() AuthMethodName { return AuthManual }

// ConfigParams is empty, manual authentication takes no parameters
func (ManualAuth) ConfigParams() (string, error) { return "", nil }

// FormBasedAuth posts LoginRequestData to LoginURL. The request data is a
// template with {%username%} and {%password%} placeholders.
type FormBasedAuth struct {
	LoginURL         string
	LoginRequestData string
}

// Name returns the engine name of form based authentication
func (FormBasedAuth) Name() AuthMethodName { return AuthFormBased }

// ConfigParams encodes the login URL and request template
func (a FormBasedAuth) ConfigParams() (string, error) {
	if a.LoginURL == "" {
		return "", NewUsageError("form based authentication requires loginUrl")
	}
	if a.LoginRequestData == "" {
		return "", NewUsageError("form based authentication requires loginRequestData")
	}
	return "loginUrl=" + url.QueryEscape(a.LoginURL) +
		"&loginRequestData=" + url.QueryEscape(a.LoginRequestData), nil
}

// HTTPAuth uses HTTP/NTLM authentication against a host and realm
type HTTPAuth struct {
	Hostname string
	Realm    string
	// Port is optional, 0 omits it
	Port int
}

// Name returns the engine name of HTTP authentication
func (HTTPAuth) Name() AuthMethodName { return AuthHTTP }

// ConfigParams encodes the host and realm, plus the port when set
func (a HTTPAuth) ConfigParams() (string, error) {
	if a.Hostname == "" {
		return "", NewUsageError("http authentication requires hostname")
	}
	if a.Realm == "" {
		return "", NewUsageError("http authentication requires realm")
	}
	params := "hostname=" + url.QueryEscape(a.Hostname) + "&realm=" + url.QueryEscape(a.Realm)
	if a.Port != 0 {
		if a.Port < 1 || a.Port > 65535 {
			return "", NewUsageError("http authentication port %d is outside 1-65535", a.Port)
		}
		params += "&port=" + strconv.Itoa(a.Port)
	}
	return params, nil
}

// ScriptBasedAuth delegates login to a loaded authentication script
type ScriptBasedAuth struct {
	ScriptName string
	// Params are the script-defined parameters
	Params map[string]string
}

// Name returns the engine name of script based authentication
func (ScriptBasedAuth) Name() AuthMethodName { return AuthScriptBased }

// ConfigParams encodes the script name followed by its parameters in key order
func (a ScriptBasedAuth) ConfigParams() (string, error) {
	if a.ScriptName == "" {
		return "", NewUsageError("script based authentication requires a script name")
	}
	parts := []string{"scriptName=" + url.QueryEscape(a.ScriptName)}
	return strings.Join(append(parts, encodeSorted(a.Params)...), "&"), nil
}

// Credentials are user credentials for the active authentication method
type Credentials interface {
	ConfigParams() (string, error)
}

// UsernamePasswordCredentials are used by form, HTTP and script methods
type UsernamePasswordCredentials struct {
	Username string
	Password string
}

// ConfigParams encodes the username and password
func (c UsernamePasswordCredentials) ConfigParams() (string, error) {
	if c.Username == "" {
		return "", NewUsageError("credentials require a username")
	}
	return "username=" + url.QueryEscape(c.Username) + "&password=" + url.QueryEscape(c.Password), nil
}

// ManualCredentials select an existing HTTP session by name
type ManualCredentials struct {
	SessionName string
}

// ConfigParams encodes the session name
func (c ManualCredentials) ConfigParams() (string, error) {
	if c.SessionName == "" {
		return "", NewUsageError("manual credentials require a session name")
	}
	return "sessionName=" + url.QueryEscape(c.SessionName), nil
}

// GenericCredentials pass arbitrary method-defined fields
type GenericCredentials map[string]string

// ConfigParams encodes the fields in key order
func (c GenericCredentials) ConfigParams() (string, error) {
	if len(c) == 0 {
		return "", NewUsageError("credentials must not be empty")
	}
	return strings.Join(encodeSorted(c), "&"), nil
}

// ConfigParam describes one configuration parameter accepted by a method
type ConfigParam struct {
	Name      string
	Mandatory bool
}

// User is a context user known to the engine
type User struct {
	ID        string
	ContextID string
	Name      string
	Enabled   bool
	// Credentials keys depend on the context's authentication method
	Credentials map[string]string
}

// ParseUser converts an engine user attribute set
func ParseUser(attrs Attributes) User {
	return User{
		ID:          attrs["id"],
		ContextID:   attrs["contextId"],
		Name:        attrs["name"],
		Enabled:     attrs.Bool("enabled"),
		Credentials: attrs.Object("credentials"),
	}
}

// NewSessionOptions controls how the engine starts a fresh session
type NewSessionOptions struct {
	// Name of the new session; empty lets the engine pick a temporary one
	Name string
	// Overwrite replaces an existing session file with the same name
	Overwrite bool
}

func encodeSorted(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, url.QueryEscape(k)+"="+url.QueryEscape(values[k]))
	}
	return out
}
