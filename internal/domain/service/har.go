package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/tidwall/sjson"
)

// DecodeHAR parses a HAR log returned by the engine. An empty payload is a
// protocol error and never an empty history.
func DecodeHAR(component, operation string, data []byte) ([]model.TrafficEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, model.NewProtocolError(component, operation, errors.New("unexpected empty HAR payload"))
	}

	var har model.HAR
	if err := json.Unmarshal(data, &har); err != nil {
		return nil, model.NewProtocolError(component, operation, fmt.Errorf("invalid HAR payload: %w", err))
	}

	entries := har.Log.Entries
	if entries == nil {
		entries = []model.TrafficEntry{}
	}
	for i := range entries {
		if r := entries[i].Response; r != nil && r.Status == 0 && r.HTTPVersion == "" {
			entries[i].Response = nil
		}
	}
	return entries, nil
}

// EncodeHARRequest serializes a request as {"request": {...}}, the form the
// engine accepts for replay.
func EncodeHARRequest(req model.Request) ([]byte, error) {
	req = req.Clone()
	if req.Cookies == nil {
		req.Cookies = []model.Cookie{}
	}
	if req.Headers == nil {
		req.Headers = []model.NameValue{}
	}
	if req.QueryString == nil {
		req.QueryString = []model.NameValue{}
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return sjson.SetRawBytes([]byte(`{}`), "request", raw)
}

// ChangeCookieValue returns a copy of req where the named cookie carries
// value, both in the Cookie header and in the cookie list. Other cookies in
// the same header are left untouched. The original request is not modified.
func ChangeCookieValue(req model.Request, name, value string) model.Request {
	out := req.Clone()
	for i, h := range out.Headers {
		if strings.EqualFold(h.Name, "Cookie") {
			out.Headers[i].Value = rewriteCookieHeader(h.Value, name, value)
		}
	}
	for i, c := range out.Cookies {
		if c.Name == name {
			out.Cookies[i].Value = value
		}
	}
	return out
}

// rewriteCookieHeader replaces the value of name in a Cookie header. A cookie
// preceded by "; " is tried first, then a cookie at the start of the header.
func rewriteCookieHeader(header, name, value string) string {
	quoted := regexp.QuoteMeta(name)
	multi := regexp.MustCompile(`([; ]` + quoted + `)=[^;]*(.*)`)
	if loc := multi.FindStringSubmatchIndex(header); loc != nil {
		return header[:loc[0]] + header[loc[2]:loc[3]] + "=" + value + header[loc[4]:loc[5]]
	}
	start := regexp.MustCompile(`^(` + quoted + `)=[^;]*(.*)`)
	if loc := start.FindStringSubmatchIndex(header); loc != nil {
		return header[loc[2]:loc[3]] + "=" + value + header[loc[4]:loc[5]]
	}
	return header
}
