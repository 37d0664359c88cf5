package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
)

// SnapshotService copies the engine history and alerts into a local store
type SnapshotService struct {
	archive port.TrafficArchive
	alerts  port.AlertAggregator
	store   port.SnapshotStore
	engine  port.Engine
	logger  port.Logger
}

// NewSnapshotService creates a new SnapshotService instance
func NewSnapshotService(engine port.Engine, archive port.TrafficArchive, alerts port.AlertAggregator, store port.SnapshotStore, logger port.Logger) *SnapshotService {
	return &SnapshotService{
		archive: archive,
		alerts:  alerts,
		store:   store,
		engine:  engine,
		logger:  logger,
	}
}

// Capture stores the current history and alerts under a new snapshot
func (s *SnapshotService) Capture(ctx context.Context, label string) (model.Snapshot, error) {
	entries, err := s.archive.History(ctx, nil)
	if err != nil {
		return model.Snapshot{}, err
	}
	alerts, err := s.alerts.Alerts(ctx, nil)
	if err != nil {
		return model.Snapshot{}, err
	}

	snapshot := model.Snapshot{
		ID:            uuid.NewString(),
		Label:         label,
		EngineVersion: s.engine.Version().String(),
		CreatedAt:     time.Now().UTC(),
		EntryCount:    len(entries),
		AlertCount:    len(alerts),
	}
	if err := s.store.Save(ctx, snapshot, entries, alerts); err != nil {
		return model.Snapshot{}, err
	}

	s.logger.Info("Snapshot %s captured: %d messages, %d alerts", snapshot.ID, len(entries), len(alerts))
	return snapshot, nil
}

// List returns the stored snapshots, newest first
func (s *SnapshotService) List(ctx context.Context) ([]model.Snapshot, error) {
	return s.store.List(ctx)
}

// Entries returns the traffic stored in a snapshot
func (s *SnapshotService) Entries(ctx context.Context, snapshotID string) ([]model.TrafficEntry, error) {
	if err := requireValue("snapshot id", snapshotID); err != nil {
		return nil, err
	}
	return s.store.Entries(ctx, snapshotID)
}

// Alerts returns the alerts stored in a snapshot
func (s *SnapshotService) Alerts(ctx context.Context, snapshotID string) ([]model.Alert, error) {
	if err := requireValue("snapshot id", snapshotID); err != nil {
		return nil, err
	}
	return s.store.Alerts(ctx, snapshotID)
}
