package model

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// EncodingBase64 is the HAR content encoding tag for base64 bodies
const EncodingBase64 = "base64"

// harTimeLayouts are the timestamp forms the engine has been seen to emit
var harTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000",
}

// HARTime is a HAR startedDateTime value
type HARTime struct {
	time.Time
}

// UnmarshalJSON accepts RFC3339 and ISO-8601 offsets without a colon
func (t *HARTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range harTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON writes RFC3339 with milliseconds
func (t HARTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05.000Z07:00"))
}

// NameValue is an ordered HAR name/value pair; names may repeat
type NameValue struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Comment string `json:"comment,omitempty"`
}

// Cookie is a HAR cookie
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Expires  string `json:"expires,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
}

// PostParam is a HAR posted parameter
type PostParam struct {
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// PostData is a HAR request body
type PostData struct {
	MimeType string      `json:"mimeType"`
	Params   []PostParam `json:"params,omitempty"`
	Text     string      `json:"text"`
}

// Content is a HAR response body
type Content struct {
	Size        int64  `json:"size"`
	Compression int64  `json:"compression,omitempty"`
	MimeType    string `json:"mimeType"`
	Text        string `json:"text,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
}

// IsBase64 reports whether the body text is base64 encoded
func (c Content) IsBase64() bool {
	return strings.EqualFold(c.Encoding, EncodingBase64)
}

// Decoded returns the body bytes, decoding base64 when tagged. Plain text is
// returned as is and never decoded.
func (c Content) Decoded() ([]byte, error) {
	if !c.IsBase64() {
		return []byte(c.Text), nil
	}
	return base64.StdEncoding.DecodeString(c.Text)
}

// Request is a captured HTTP request
type Request struct {
	Method      string      `json:"method"`
	URL         string      `json:"url"`
	HTTPVersion string      `json:"httpVersion"`
	Cookies     []Cookie    `json:"cookies"`
	Headers     []NameValue `json:"headers"`
	QueryString []NameValue `json:"queryString"`
	PostData    *PostData   `json:"postData,omitempty"`
	HeadersSize int64       `json:"headersSize"`
	BodySize    int64       `json:"bodySize"`
}

// Header returns the first header value with the given name, case-insensitively
func (r Request) Header(name string) (string, bool) {
	return headerValue(r.Headers, name)
}

// Clone returns a deep copy so callers can mutate it without touching history
func (r Request) Clone() Request {
	out := r
	out.Cookies = append([]Cookie(nil), r.Cookies...)
	out.Headers = append([]NameValue(nil), r.Headers...)
	out.QueryString = append([]NameValue(nil), r.QueryString...)
	if r.PostData != nil {
		pd := *r.PostData
		pd.Params = append([]PostParam(nil), r.PostData.Params...)
		out.PostData = &pd
	}
	return out
}

// Response is a captured HTTP response
type Response struct {
	Status      int         `json:"status"`
	StatusText  string      `json:"statusText"`
	HTTPVersion string      `json:"httpVersion"`
	Cookies     []Cookie    `json:"cookies"`
	Headers     []NameValue `json:"headers"`
	Content     Content     `json:"content"`
	RedirectURL string      `json:"redirectURL"`
	HeadersSize int64       `json:"headersSize"`
	BodySize    int64       `json:"bodySize"`
}

// Header returns the first header value with the given name, case-insensitively
func (r Response) Header(name string) (string, bool) {
	return headerValue(r.Headers, name)
}

// TrafficEntry is one captured request/response exchange. Response is nil
// when the exchange never completed.
type TrafficEntry struct {
	PageRef   string    `json:"pageref,omitempty"`
	StartedAt HARTime   `json:"startedDateTime"`
	Time      float64   `json:"time"`
	Request   Request   `json:"request"`
	Response  *Response `json:"response,omitempty"`
	MessageID int       `json:"_zapMessageId,omitempty"`
}

// Completed reports whether the exchange has a response
func (e TrafficEntry) Completed() bool {
	return e.Response != nil
}

// HARCreator names the tool that produced a HAR log
type HARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HARLog is the HAR log object
type HARLog struct {
	Version string         `json:"version"`
	Creator *HARCreator    `json:"creator,omitempty"`
	Entries []TrafficEntry `json:"entries"`
}

// HAR is the HAR document root
type HAR struct {
	Log HARLog `json:"log"`
}

// Range is a half-open [Start, End) window over an ordered engine listing
type Range struct {
	Start int
	End   int
}

// Validate reports caller mistakes in the range
func (r Range) Validate() error {
	if r.Start < 0 {
		return NewUsageError("range start %d is negative", r.Start)
	}
	if r.End < r.Start {
		return NewUsageError("range end %d is before start %d", r.End, r.Start)
	}
	return nil
}

func headerValue(headers []NameValue, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
