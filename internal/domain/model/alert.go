package model

// Alert is a finding raised by the engine
type Alert struct {
	ID          string
	PluginID    string
	Name        string
	Risk        string
	Confidence  string
	URL         string
	Param       string
	Attack      string
	Evidence    string
	Description string
	Solution    string
	Reference   string
	CWEID       string
	WASCID      string
	MessageID   string
}

// ParseAlert converts an engine alert attribute set. Older engines name the
// alert under "alert" rather than "name".
func ParseAlert(attrs Attributes) Alert {
	name := attrs["name"]
	if name == "" {
		name = attrs["alert"]
	}
	return Alert{
		ID:          attrs["id"],
		PluginID:    attrs["pluginId"],
		Name:        name,
		Risk:        attrs["risk"],
		Confidence:  attrs["confidence"],
		URL:         attrs["url"],
		Param:       attrs["param"],
		Attack:      attrs["attack"],
		Evidence:    attrs["evidence"],
		Description: attrs["description"],
		Solution:    attrs["solution"],
		Reference:   attrs["reference"],
		CWEID:       attrs["cweid"],
		WASCID:      attrs["wascid"],
		MessageID:   attrs["messageId"],
	}
}

// ReportFormat selects an engine report rendering
type ReportFormat string

const (
	ReportXML  ReportFormat = "xml"
	ReportHTML ReportFormat = "html"
)
