package service

import (
	"errors"
	"testing"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name      string
		installed string
		minimum   string
		wantSign  int
	}{
		{"equal", "2.4.3", "2.4.3", 0},
		{"older minor", "2.3.0", "2.4.3", -1},
		{"older patch", "2.4.2", "2.4.3", -1},
		{"newer major", "3.0", "2.4.3", 1},
		{"newer minor with fewer segments", "2.5", "2.4.3", 1},
		{"installed missing nonzero segment", "2.4", "2.4.3", -1},
		{"installed missing zero segment", "2.4", "2.4.0", 0},
		{"major only against minor", "2", "2.3", -1},
		{"minimum missing trailing segment", "2.4.3", "2.4", 1},
		{"extra trailing segment", "2.4.3.1", "2.4.3", 1},
		{"double digit segment", "2.10.0", "2.9.1", 1},
		{"suffix ignored", "2.4.0-beta", "2.4.0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareVersions(tt.installed, tt.minimum)
			require.NoError(t, err)
			switch {
			case tt.wantSign < 0:
				assert.Negative(t, got)
			case tt.wantSign > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestCompareVersionsRejectsGarbage(t *testing.T) {
	_, err := CompareVersions("two.four", "2.4")
	assert.Error(t, err)

	_, err = CompareVersions("", "2.4")
	assert.Error(t, err)
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"release below minimum", "2.3.0", true},
		{"release at minimum", "2.4.3", false},
		{"release above minimum", "2.7.0", false},
		{"release with fewer segments", "2.4", true},
		{"major only", "2", true},
		{"newer with fewer segments", "2.5", false},
		{"daily below minimum", "D-2013-01-01", true},
		{"daily at minimum", "D-2013-11-17", false},
		{"daily above minimum", "D-2020-06-30", false},
		{"source build", "Dev Build", false},
		{"unparseable release", "unknown", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersion(model.EngineVersion{Raw: tt.version}, "2.4.3", "D-2013-11-17")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrVersionIncompatible))
		})
	}
}

func TestSelectCapabilities(t *testing.T) {
	caps := SelectCapabilities(model.EngineVersion{Raw: "2.3.1"})
	assert.Equal(t, "2.3", caps.Release)
	assert.False(t, caps.ScanIDInStart)
	assert.False(t, caps.RemoveAllScans)
	assert.Equal(t, "messagesHar", caps.HARExport)

	caps = SelectCapabilities(model.EngineVersion{Raw: "2.5.0"})
	assert.Equal(t, "2.5", caps.Release)
	assert.True(t, caps.ActiveScanContext)
	assert.False(t, caps.APIKeyHeader)

	caps = SelectCapabilities(model.EngineVersion{Raw: "2.10.0"})
	assert.Equal(t, "2.6", caps.Release)
	assert.Equal(t, "core", caps.HARComponent)

	caps = SelectCapabilities(model.EngineVersion{Raw: "2.14.0"})
	assert.Equal(t, "exim", caps.HARComponent)
	assert.Equal(t, "exportHar", caps.HARExport)

	caps = SelectCapabilities(model.EngineVersion{Raw: "D-2024-01-08"})
	assert.Equal(t, "2.11", caps.Release)

	caps = SelectCapabilities(model.EngineVersion{Raw: "1.4"})
	assert.Equal(t, "2.3", caps.Release)

	caps = SelectCapabilities(model.EngineVersion{Raw: "2"})
	assert.Equal(t, "2.3", caps.Release, "a bare major version gets the oldest row")
	assert.Equal(t, "core", caps.HARComponent)

	caps = SelectCapabilities(model.EngineVersion{Raw: "2.4"})
	assert.Equal(t, "2.4", caps.Release)
}
