package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
)

// patternMatchTimeout bounds a single match against a message
const patternMatchTimeout = 2 * time.Second

// CompilePattern compiles a caller regex. The engine evaluates patterns with
// a backtracking dialect, so lookarounds and backreferences are accepted.
func CompilePattern(expr string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, model.NewUsageError("invalid pattern %q: %v", expr, err)
	}
	re.MatchTimeout = patternMatchTimeout
	return re, nil
}

// FilterRequests returns the entries whose request line, headers or body match re
func FilterRequests(entries []model.TrafficEntry, re *regexp2.Regexp) ([]model.TrafficEntry, error) {
	matches := make([]model.TrafficEntry, 0)
	for _, entry := range entries {
		ok, err := re.MatchString(RequestText(entry.Request))
		if err != nil {
			return nil, model.NewUsageError("pattern %q failed on %s: %v", re.String(), entry.Request.URL, err)
		}
		if ok {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// FilterResponses returns the entries whose response status line, headers or
// decoded body match re. Entries without a response never match.
func FilterResponses(entries []model.TrafficEntry, re *regexp2.Regexp) ([]model.TrafficEntry, error) {
	matches := make([]model.TrafficEntry, 0)
	for _, entry := range entries {
		if entry.Response == nil {
			continue
		}
		text, err := ResponseText(*entry.Response)
		if err != nil {
			return nil, model.NewProtocolError("", "search", fmt.Errorf("response of %s: %w", entry.Request.URL, err))
		}
		ok, err := re.MatchString(text)
		if err != nil {
			return nil, model.NewUsageError("pattern %q failed on %s: %v", re.String(), entry.Request.URL, err)
		}
		if ok {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

// RequestText renders a request as the raw message the pattern is matched against
func RequestText(req model.Request) string {
	var b strings.Builder
	b.WriteString(req.Method + " " + req.URL + " " + req.HTTPVersion + "\r\n")
	writeHeaders(&b, req.Headers)
	b.WriteString("\r\n")
	if req.PostData != nil {
		b.WriteString(req.PostData.Text)
	}
	return b.String()
}

// ResponseText renders a response as the raw message the pattern is matched
// against. A base64 tagged body is decoded first.
func ResponseText(resp model.Response) (string, error) {
	body, err := resp.Content.Decoded()
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", resp.Content.Encoding, err)
	}
	var b strings.Builder
	b.WriteString(resp.HTTPVersion + " " + strconv.Itoa(resp.Status) + " " + resp.StatusText + "\r\n")
	writeHeaders(&b, resp.Headers)
	b.WriteString("\r\n")
	b.Write(body)
	return b.String(), nil
}

func writeHeaders(b *strings.Builder, headers []model.NameValue) {
	for _, h := range headers {
		b.WriteString(h.Name + ": " + h.Value + "\r\n")
	}
}
