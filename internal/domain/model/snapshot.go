package model

import "time"

// Snapshot is a locally persisted copy of the engine history and alerts
type Snapshot struct {
	ID            string
	Label         string
	EngineVersion string
	CreatedAt     time.Time
	EntryCount    int
	AlertCount    int
}
