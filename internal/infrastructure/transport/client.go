package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"github.com/haxorport/zapscan-go-client/internal/domain/service"
	"github.com/tidwall/gjson"
)

// APIKeyHeader carries the API key on engines that accept it as a header
const APIKeyHeader = "X-ZAP-API-Key"

// maxQueryLength is the encoded parameter size above which calls are POSTed
const maxQueryLength = 2048

// previewLength bounds how much of an unexpected body ends up in errors
const previewLength = 200

// Client is the protocol adapter to the engine HTTP API. It holds no mutable
// state; the version and capabilities are fixed at construction.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     port.Logger
	observer   port.CallObserver
	version    model.EngineVersion
	caps       model.Capabilities
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for engine calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver records every engine call
func WithObserver(observer port.CallObserver) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient validates the configuration, reads the engine version and checks
// it against the configured minimums. No client is returned when the engine
// is too old.
func NewClient(ctx context.Context, config *model.Config, logger port.Logger, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, model.NewConfigError("configuration is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: "http://" + net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		apiKey:  config.APIKey,
		// Deadlines come from the caller's context.
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	resp, err := c.Call(ctx, model.View("core", "version", nil))
	if err != nil {
		c.logger.Error("Failed to read engine version from %s: %v", c.baseURL, err)
		return nil, err
	}
	raw, err := resp.Value("version")
	if err != nil {
		return nil, err
	}

	version := model.EngineVersion{Raw: raw}
	if err := service.CheckVersion(version, config.MinVersion, config.MinDailyVersion); err != nil {
		c.logger.Error("Engine at %s is not supported: %v", c.baseURL, err)
		return nil, err
	}

	c.version = version
	c.caps = service.SelectCapabilities(version)
	c.logger.Info("Connected to engine %s at %s (protocol %s)", version, c.baseURL, c.caps.Release)
	return c, nil
}

// Version returns the engine version validated at construction
func (c *Client) Version() model.EngineVersion {
	return c.version
}

// Capabilities returns the protocol feature set selected for the engine
func (c *Client) Capabilities() model.Capabilities {
	return c.caps
}

// Call invokes one engine API operation
func (c *Client) Call(ctx context.Context, call model.APICall) (*model.APIResponse, error) {
	start := time.Now()
	resp, err := c.do(ctx, call)
	elapsed := time.Since(start)

	if c.observer != nil {
		c.observer.ObserveCall(call, elapsed, err)
	}
	if err != nil {
		c.logger.Debug("%s failed after %s: %v", call, elapsed, err)
		return nil, err
	}
	c.logger.Debug("%s ok in %s (%d bytes)", call, elapsed, len(resp.Body))
	return resp, nil
}

func (c *Client) do(ctx context.Context, call model.APICall) (*model.APIResponse, error) {
	req, err := c.newRequest(ctx, call)
	if err != nil {
		return nil, model.NewRemoteError(call.Component, call.Name, "", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewRemoteError(call.Component, call.Name, "", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, model.NewRemoteError(call.Component, call.Name, "", fmt.Errorf("failed to read response: %w", err))
	}

	if code, message, ok := model.ErrorBody(body); ok {
		return nil, model.NewRemoteError(call.Component, call.Name, code, errors.New(message))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, model.NewRemoteError(call.Component, call.Name, "",
			fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, preview(body)))
	}
	if call.Kind != model.CallOther && !gjson.ValidBytes(body) {
		return nil, model.NewProtocolError(call.Component, call.Name,
			fmt.Errorf("response is not valid JSON: %s", preview(body)))
	}

	return &model.APIResponse{Call: call, Body: body}, nil
}

func (c *Client) newRequest(ctx context.Context, call model.APICall) (*http.Request, error) {
	format := "JSON"
	if call.Kind == model.CallOther {
		format = "OTHER"
	}
	endpoint := fmt.Sprintf("%s/%s/%s/%s/%s/", c.baseURL, format, call.Component, call.Kind, call.Name)

	params := url.Values{}
	for k, vs := range call.Params {
		params[k] = append([]string(nil), vs...)
	}
	if call.Mutating() {
		params.Set("apikey", c.apiKey)
	}
	query := params.Encode()

	var req *http.Request
	var err error
	if len(query) > maxQueryLength {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(query))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		if query != "" {
			endpoint += "?" + query
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}
	if err != nil {
		return nil, err
	}

	if call.Mutating() && c.caps.APIKeyHeader && c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > previewLength {
		return s[:previewLength] + "..."
	}
	return s
}

// Ensure Client implements port.Engine
var _ port.Engine = (*Client)(nil)
