package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// CallKind is the declared type of an engine API operation
type CallKind string

const (
	// CallView reads engine state and returns JSON
	CallView CallKind = "view"
	// CallAction mutates engine state and returns JSON
	CallAction CallKind = "action"
	// CallOther returns an opaque byte payload
	CallOther CallKind = "other"
)

// APICall is a single engine API invocation
type APICall struct {
	Component string
	Kind      CallKind
	Name      string
	Params    url.Values
}

// View builds a view call
func View(component, name string, params url.Values) APICall {
	return APICall{Component: component, Kind: CallView, Name: name, Params: params}
}

// Action builds an action call
func Action(component, name string, params url.Values) APICall {
	return APICall{Component: component, Kind: CallAction, Name: name, Params: params}
}

// Other builds a call that returns a byte payload
func Other(component, name string, params url.Values) APICall {
	return APICall{Component: component, Kind: CallOther, Name: name, Params: params}
}

// Mutating reports whether the call must carry the API key
func (c APICall) Mutating() bool {
	return c.Kind == CallAction || c.Kind == CallOther
}

func (c APICall) String() string {
	return c.Component + "/" + string(c.Kind) + "/" + c.Name
}

// Attributes is one attribute set of an engine response. Nested objects and
// arrays are kept as raw JSON text.
type Attributes map[string]string

// Object parses a nested object attribute
func (a Attributes) Object(key string) Attributes {
	raw, ok := a[key]
	if !ok {
		return Attributes{}
	}
	return attributesOf(gjson.Parse(raw))
}

// List parses a list attribute held either as a JSON array or in the
// engine's "[a, b]" rendering
func (a Attributes) List(key string) []string {
	raw, ok := a[key]
	if !ok {
		return []string{}
	}
	if res := gjson.Parse(raw); gjson.Valid(raw) && res.IsArray() {
		items := make([]string, 0)
		for _, item := range res.Array() {
			items = append(items, item.String())
		}
		return items
	}
	return ParseListString(raw)
}

// Bool parses a boolean attribute, false when missing or malformed
func (a Attributes) Bool(key string) bool {
	v, err := strconv.ParseBool(a[key])
	return err == nil && v
}

// Int parses an integer attribute, 0 when missing or malformed
func (a Attributes) Int(key string) int {
	v, err := strconv.Atoi(a[key])
	if err != nil {
		return 0
	}
	return v
}

// APIResponse is the normalized response of an engine call
type APIResponse struct {
	Call APICall
	Body []byte
}

// Bytes returns the raw payload of an "other" call
func (r *APIResponse) Bytes() []byte {
	return r.Body
}

// Value returns a scalar element. An empty key selects the sole top-level value.
func (r *APIResponse) Value(key string) (string, error) {
	res, err := r.lookup(key)
	if err != nil {
		return "", err
	}
	if res.IsObject() || res.IsArray() {
		return "", r.protocolError("element %q is not a scalar", key)
	}
	return res.String(), nil
}

// Int returns a scalar element parsed as an integer
func (r *APIResponse) Int(key string) (int, error) {
	v, err := r.Value(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, r.protocolError("element %q is not an integer: %v", key, err)
	}
	return n, nil
}

// Bool returns a scalar element parsed as a boolean
func (r *APIResponse) Bool(key string) (bool, error) {
	v, err := r.Value(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, r.protocolError("element %q is not a boolean: %v", key, err)
	}
	return b, nil
}

// List returns a list of scalars. Both JSON arrays and the engine's "[a, b]"
// string rendering are accepted.
func (r *APIResponse) List(key string) ([]string, error) {
	res, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	if res.IsArray() {
		items := make([]string, 0)
		for _, item := range res.Array() {
			items = append(items, item.String())
		}
		return items, nil
	}
	if res.IsObject() {
		return nil, r.protocolError("element %q is not a list", key)
	}
	return ParseListString(res.String()), nil
}

// Sets returns a list of attribute sets
func (r *APIResponse) Sets(key string) ([]Attributes, error) {
	res, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	if !res.IsArray() {
		return nil, r.protocolError("element %q is not a list of sets", key)
	}
	sets := make([]Attributes, 0)
	for _, item := range res.Array() {
		sets = append(sets, attributesOf(item))
	}
	return sets, nil
}

// Set returns a single attribute set. An empty key selects the sole top-level value.
func (r *APIResponse) Set(key string) (Attributes, error) {
	res, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	if !res.IsObject() {
		return nil, r.protocolError("element %q is not a set", key)
	}
	return attributesOf(res), nil
}

func (r *APIResponse) lookup(key string) (gjson.Result, error) {
	if len(r.Body) == 0 {
		return gjson.Result{}, r.protocolError("empty response")
	}
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}, r.protocolError("invalid JSON response")
	}
	root := gjson.ParseBytes(r.Body)
	var found gjson.Result
	matches := 0
	root.ForEach(func(k, v gjson.Result) bool {
		if key == "" || k.String() == key {
			found = v
			matches++
			return key == ""
		}
		return true
	})
	switch {
	case key == "" && matches != 1:
		return gjson.Result{}, r.protocolError("expected a single element, got %d", matches)
	case matches == 0:
		return gjson.Result{}, r.protocolError("element %q missing", key)
	}
	return found, nil
}

func (r *APIResponse) protocolError(format string, args ...interface{}) error {
	return NewProtocolError(r.Call.Component, r.Call.Name, fmt.Errorf(format, args...))
}

// ParseListString splits the engine's "[a, b]" list rendering
func ParseListString(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return strings.Split(s, ", ")
}

// ErrorBody extracts the engine error code and message from a JSON body,
// reporting false when the body is not an engine error.
func ErrorBody(body []byte) (code string, message string, ok bool) {
	if !gjson.ValidBytes(body) {
		return "", "", false
	}
	code = gjson.GetBytes(body, "code").String()
	if code == "" {
		return "", "", false
	}
	return code, gjson.GetBytes(body, "message").String(), true
}

// AsAbsentOK turns an absent-resource error into success
func AsAbsentOK(err error) error {
	if err == nil || IsAbsent(err) {
		return nil
	}
	return err
}

func attributesOf(res gjson.Result) Attributes {
	attrs := Attributes{}
	res.ForEach(func(k, v gjson.Result) bool {
		if v.IsObject() || v.IsArray() {
			attrs[k.String()] = v.Raw
		} else {
			attrs[k.String()] = v.String()
		}
		return true
	})
	return attrs
}
