package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
)

// capabilityTable lists protocol features by the first release that has them.
// Rows are ordered by release.
var capabilityTable = []model.Capabilities{
	{
		Release:      "2.3",
		HARComponent: "core",
		HARExport:    "messagesHar",
	},
	{
		Release:        "2.4",
		HARComponent:   "core",
		HARExport:      "messagesHar",
		ScanIDInStart:  true,
		SpiderContext:  true,
		RemoveAllScans: true,
	},
	{
		Release:           "2.5",
		HARComponent:      "core",
		HARExport:         "messagesHar",
		ScanIDInStart:     true,
		SpiderContext:     true,
		RemoveAllScans:    true,
		ActiveScanContext: true,
	},
	{
		Release:           "2.6",
		HARComponent:      "core",
		HARExport:         "messagesHar",
		ScanIDInStart:     true,
		SpiderContext:     true,
		RemoveAllScans:    true,
		ActiveScanContext: true,
		APIKeyHeader:      true,
	},
	{
		Release:           "2.11",
		HARComponent:      "exim",
		HARExport:         "exportHar",
		ScanIDInStart:     true,
		SpiderContext:     true,
		RemoveAllScans:    true,
		ActiveScanContext: true,
		APIKeyHeader:      true,
	},
}

// CompareVersions compares two dot-separated release versions segment by
// segment as integers. It returns a negative number when installed is older
// than minimum, zero when they are equal and a positive number when installed
// is newer. Segments missing from minimum are satisfied by installed, while
// segments missing from installed count as 0, so "2.4" meets "2.4.0" but not
// "2.4.3".
func CompareVersions(installed, minimum string) (int, error) {
	a, err := versionSegments(installed)
	if err != nil {
		return 0, err
	}
	b, err := versionSegments(minimum)
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] - b[i], nil
		}
	}
	if len(a) > len(b) {
		return 1, nil
	}
	// installed ran out first: the rest of minimum must be zeros
	for _, seg := range b[len(a):] {
		if seg > 0 {
			return -seg, nil
		}
	}
	return 0, nil
}

// CheckVersion fails with ErrVersionIncompatible when the engine is older than
// the configured minimums. Daily tags are compared lexicographically against
// minDaily; source builds always pass.
func CheckVersion(v model.EngineVersion, minRelease, minDaily string) error {
	switch {
	case v.IsDev():
		return nil
	case v.IsDaily():
		if strings.Compare(v.Raw, minDaily) < 0 {
			return incompatible(v, minDaily, nil)
		}
		return nil
	}
	cmp, err := CompareVersions(v.Raw, minRelease)
	if err != nil {
		return incompatible(v, minRelease, err)
	}
	if cmp < 0 {
		return incompatible(v, minRelease, nil)
	}
	return nil
}

// SelectCapabilities picks the newest capability row the engine satisfies
func SelectCapabilities(v model.EngineVersion) model.Capabilities {
	if v.IsDev() || v.IsDaily() {
		return capabilityTable[len(capabilityTable)-1]
	}
	selected := capabilityTable[0]
	for _, row := range capabilityTable {
		cmp, err := CompareVersions(v.Raw, row.Release)
		if err != nil || cmp < 0 {
			break
		}
		selected = row
	}
	return selected
}

func incompatible(v model.EngineVersion, minimum string, cause error) error {
	if cause == nil {
		cause = fmt.Errorf("engine reports %q, minimum supported is %q", v.Raw, minimum)
	}
	return &model.EngineError{Kind: model.ErrVersionIncompatible, Component: "core", Operation: "version", Err: cause}
}

// versionSegments parses "2.4.3" into its numeric segments. A non-numeric
// suffix on a segment ("0-beta") is ignored.
func versionSegments(version string) ([]int, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, fmt.Errorf("empty version")
	}
	parts := strings.Split(version, ".")
	segments := make([]int, 0, len(parts))
	for _, part := range parts {
		digits := part
		for i, r := range part {
			if r < '0' || r > '9' {
				digits = part[:i]
				break
			}
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: segment %q is not numeric", version, part)
		}
		segments = append(segments, n)
	}
	return segments, nil
}
