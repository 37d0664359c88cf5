package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	"gorm.io/gorm"
)

const batchSize = 100

type snapshotRecord struct {
	ID            string `gorm:"primaryKey;size:36"`
	Label         string `gorm:"size:255"`
	EngineVersion string `gorm:"size:64"`
	EntryCount    int
	AlertCount    int
	CreatedAt     time.Time `gorm:"index"`
}

func (snapshotRecord) TableName() string { return "snapshots" }

type entryRecord struct {
	ID         uint   `gorm:"primaryKey"`
	SnapshotID string `gorm:"index;size:36"`
	Seq        int
	Method     string `gorm:"size:16"`
	URL        string `gorm:"type:text"`
	Status     int
	StartedAt  time.Time
	// Entry is the full exchange as HAR JSON
	Entry string `gorm:"type:text"`
}

func (entryRecord) TableName() string { return "snapshot_entries" }

type alertRecord struct {
	ID          uint   `gorm:"primaryKey"`
	SnapshotID  string `gorm:"index;size:36"`
	Seq         int
	AlertID     string `gorm:"size:32"`
	PluginID    string `gorm:"size:32"`
	Name        string `gorm:"size:255"`
	Risk        string `gorm:"size:32;index"`
	Confidence  string `gorm:"size:32"`
	URL         string `gorm:"type:text"`
	Param       string `gorm:"type:text"`
	Attack      string `gorm:"type:text"`
	Evidence    string `gorm:"type:text"`
	Description string `gorm:"type:text"`
	Solution    string `gorm:"type:text"`
	Reference   string `gorm:"type:text"`
	CWEID       string `gorm:"size:16"`
	WASCID      string `gorm:"size:16"`
	MessageID   string `gorm:"size:32"`
}

func (alertRecord) TableName() string { return "snapshot_alerts" }

// SnapshotStore is a sqlite backed port.SnapshotStore
type SnapshotStore struct {
	db     *gorm.DB
	logger port.Logger
}

// Open opens or creates the snapshot database at path
func Open(path string, logger port.Logger) (*SnapshotStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: NewGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRecord{}, &entryRecord{}, &alertRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot database: %w", err)
	}

	logger.Debug("Snapshot database opened at %s", path)
	return &SnapshotStore{db: db, logger: logger}, nil
}

// Save stores entries and alerts under snapshot in one transaction
func (s *SnapshotStore) Save(ctx context.Context, snapshot model.Snapshot, entries []model.TrafficEntry, alerts []model.Alert) error {
	entryRows := make([]entryRecord, 0, len(entries))
	for i, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
		row := entryRecord{
			SnapshotID: snapshot.ID,
			Seq:        i,
			Method:     e.Request.Method,
			URL:        e.Request.URL,
			StartedAt:  e.StartedAt.Time,
			Entry:      string(data),
		}
		if e.Response != nil {
			row.Status = e.Response.Status
		}
		entryRows = append(entryRows, row)
	}

	alertRows := make([]alertRecord, 0, len(alerts))
	for i, a := range alerts {
		alertRows = append(alertRows, alertRecord{
			SnapshotID:  snapshot.ID,
			Seq:         i,
			AlertID:     a.ID,
			PluginID:    a.PluginID,
			Name:        a.Name,
			Risk:        a.Risk,
			Confidence:  a.Confidence,
			URL:         a.URL,
			Param:       a.Param,
			Attack:      a.Attack,
			Evidence:    a.Evidence,
			Description: a.Description,
			Solution:    a.Solution,
			Reference:   a.Reference,
			CWEID:       a.CWEID,
			WASCID:      a.WASCID,
			MessageID:   a.MessageID,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := snapshotRecord{
			ID:            snapshot.ID,
			Label:         snapshot.Label,
			EngineVersion: snapshot.EngineVersion,
			EntryCount:    len(entries),
			AlertCount:    len(alerts),
			CreatedAt:     snapshot.CreatedAt,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		if len(entryRows) > 0 {
			if err := tx.CreateInBatches(entryRows, batchSize).Error; err != nil {
				return fmt.Errorf("failed to save snapshot entries: %w", err)
			}
		}
		if len(alertRows) > 0 {
			if err := tx.CreateInBatches(alertRows, batchSize).Error; err != nil {
				return fmt.Errorf("failed to save snapshot alerts: %w", err)
			}
		}
		return nil
	})
}

// List returns all snapshots, newest first
func (s *SnapshotStore) List(ctx context.Context) ([]model.Snapshot, error) {
	var rows []snapshotRecord
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]model.Snapshot, 0, len(rows))
	for _, r := range rows {
		snapshots = append(snapshots, model.Snapshot{
			ID:            r.ID,
			Label:         r.Label,
			EngineVersion: r.EngineVersion,
			CreatedAt:     r.CreatedAt,
			EntryCount:    r.EntryCount,
			AlertCount:    r.AlertCount,
		})
	}
	return snapshots, nil
}

// Entries returns the traffic of one snapshot in capture order
func (s *SnapshotStore) Entries(ctx context.Context, snapshotID string) ([]model.TrafficEntry, error) {
	if err := s.exists(ctx, snapshotID); err != nil {
		return nil, err
	}

	var rows []entryRecord
	if err := s.db.WithContext(ctx).Where("snapshot_id = ?", snapshotID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshot entries: %w", err)
	}

	entries := make([]model.TrafficEntry, 0, len(rows))
	for _, r := range rows {
		var e model.TrafficEntry
		if err := json.Unmarshal([]byte(r.Entry), &e); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot entry %d: %w", r.Seq, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Alerts returns the alerts of one snapshot
func (s *SnapshotStore) Alerts(ctx context.Context, snapshotID string) ([]model.Alert, error) {
	if err := s.exists(ctx, snapshotID); err != nil {
		return nil, err
	}

	var rows []alertRecord
	if err := s.db.WithContext(ctx).Where("snapshot_id = ?", snapshotID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshot alerts: %w", err)
	}

	alerts := make([]model.Alert, 0, len(rows))
	for _, r := range rows {
		alerts = append(alerts, model.Alert{
			ID:          r.AlertID,
			PluginID:    r.PluginID,
			Name:        r.Name,
			Risk:        r.Risk,
			Confidence:  r.Confidence,
			URL:         r.URL,
			Param:       r.Param,
			Attack:      r.Attack,
			Evidence:    r.Evidence,
			Description: r.Description,
			Solution:    r.Solution,
			Reference:   r.Reference,
			CWEID:       r.CWEID,
			WASCID:      r.WASCID,
			MessageID:   r.MessageID,
		})
	}
	return alerts, nil
}

// Close closes the database
func (s *SnapshotStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SnapshotStore) exists(ctx context.Context, snapshotID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&snapshotRecord{}).Where("id = ?", snapshotID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up snapshot: %w", err)
	}
	if count == 0 {
		return model.NewNotFoundError("snapshot", "load", "snapshot %s does not exist", snapshotID)
	}
	return nil
}

// Ensure SnapshotStore implements port.SnapshotStore
var _ port.SnapshotStore = (*SnapshotStore)(nil)
