package model

import (
	"fmt"
	"strings"
)

// DailyPrefix marks engine daily/weekly build version tags
const DailyPrefix = "D-"

// DevBuild is the version string reported by engines built from source
const DevBuild = "Dev Build"

// EngineVersion is the version reported by the engine
type EngineVersion struct {
	Raw string
}

// IsDaily reports whether the version is a daily build tag such as D-2015-03-02
func (v EngineVersion) IsDaily() bool {
	return strings.HasPrefix(v.Raw, DailyPrefix)
}

// IsDev reports whether the engine was built from source
func (v EngineVersion) IsDev() bool {
	return strings.EqualFold(v.Raw, DevBuild)
}

func (v EngineVersion) String() string {
	return v.Raw
}

// Capabilities is the protocol feature set selected for an engine version
type Capabilities struct {
	// Release is the minimum release this row applies to
	Release string
	// HARComponent serves HAR export and replay
	HARComponent string
	// HARExport is the operation returning the history as HAR
	HARExport string
	// ScanIDInStart is set when the scan actions return the new job id
	ScanIDInStart bool
	// SpiderContext is set when spider/scan accepts contextName and subtreeOnly
	SpiderContext bool
	// RemoveAllScans is set when finished jobs can be removed
	RemoveAllScans bool
	// ActiveScanContext is set when ascan/scan accepts contextId
	ActiveScanContext bool
	// APIKeyHeader is set when the key is also accepted as X-ZAP-API-Key
	APIKeyHeader bool
}

// ProxyDescriptor tells a browser collaborator how to route through the engine
type ProxyDescriptor struct {
	// HTTPProxy is host:port of the engine proxy
	HTTPProxy string
	// PACURL is the proxy auto-config resource served by the engine
	PACURL string
}

// NewProxyDescriptor builds the descriptor for an engine address
func NewProxyDescriptor(host string, port int) ProxyDescriptor {
	return ProxyDescriptor{
		HTTPProxy: fmt.Sprintf("%s:%d", host, port),
		PACURL:    fmt.Sprintf("http://%s:%d/proxy.pac", host, port),
	}
}

// Scanner is an active scan rule
type Scanner struct {
	ID             string
	Name           string
	Enabled        bool
	AttackStrength string
	AlertThreshold string
	CWEID          string
	WASCID         string
}

// ParseScanner converts an engine scanner attribute set
func ParseScanner(attrs Attributes) Scanner {
	return Scanner{
		ID:             attrs["id"],
		Name:           attrs["name"],
		Enabled:        attrs.Bool("enabled"),
		AttackStrength: attrs["attackStrength"],
		AlertThreshold: attrs["alertThreshold"],
		CWEID:          attrs["cweId"],
		WASCID:         attrs["wascId"],
	}
}

// Script is a script loaded into the engine
type Script struct {
	Name        string
	Type        string
	Engine      string
	Description string
	Error       bool
}

// ParseScript converts an engine script attribute set
func ParseScript(attrs Attributes) Script {
	return Script{
		Name:        attrs["name"],
		Type:        attrs["type"],
		Engine:      attrs["engine"],
		Description: attrs["description"],
		Error:       attrs.Bool("error"),
	}
}

// ScriptSpec describes a script file to load
type ScriptSpec struct {
	Name        string
	Type        string
	Engine      string
	FileName    string
	Description string
}

// EngineEvent is a message published on the engine event channel
type EngineEvent struct {
	Publisher string
	Type      string
	Target    string
	Params    map[string]string
}

// Well-known engine event publishers
const (
	PublisherSpider     = "org.zaproxy.zap.extension.spider.SpiderEventPublisher"
	PublisherActiveScan = "org.zaproxy.zap.extension.ascan.ActiveScanEventPublisher"
	PublisherAlert      = "org.zaproxy.zap.extension.alert.AlertEventPublisher"
)
