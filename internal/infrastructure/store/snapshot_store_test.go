package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	log := logger.FromZap(zap.NewNop(), zap.NewAtomicLevel())
	s, err := Open(filepath.Join(t.TempDir(), "nested", "snapshots.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleEntries() []model.TrafficEntry {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []model.TrafficEntry{
		{
			StartedAt: model.HARTime{Time: started},
			Request: model.Request{
				Method:  "GET",
				URL:     "http://target/login",
				Headers: []model.NameValue{{Name: "Cookie", Value: "JSESSIONID=abc"}},
			},
			Response: &model.Response{
				Status:  200,
				Content: model.Content{MimeType: "text/html", Text: "<form>"},
			},
			MessageID: 7,
		},
		{
			StartedAt: model.HARTime{Time: started.Add(time.Second)},
			Request:   model.Request{Method: "POST", URL: "http://target/api"},
		},
	}
}

func TestSnapshotStoreSaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	snap := model.Snapshot{
		ID:            "snap-1",
		Label:         "after crawl",
		EngineVersion: "2.7.0",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	alerts := []model.Alert{{ID: "1", Name: "X-Frame-Options Header Not Set", Risk: "Medium", URL: "http://target/"}}

	require.NoError(t, s.Save(ctx, snap, sampleEntries(), alerts))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "after crawl", list[0].Label)
	assert.Equal(t, 2, list[0].EntryCount)
	assert.Equal(t, 1, list[0].AlertCount)

	entries, err := s.Entries(ctx, "snap-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "http://target/login", entries[0].Request.URL)
	require.NotNil(t, entries[0].Response)
	assert.Equal(t, 200, entries[0].Response.Status)
	assert.Equal(t, 7, entries[0].MessageID)
	assert.Nil(t, entries[1].Response, "an incomplete exchange stays incomplete")

	loaded, err := s.Alerts(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, alerts, loaded)
}

func TestSnapshotStoreListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, model.Snapshot{ID: "old", CreatedAt: base}, nil, nil))
	require.NoError(t, s.Save(ctx, model.Snapshot{ID: "new", CreatedAt: base.Add(time.Hour)}, nil, nil))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
}

func TestSnapshotStoreUnknownSnapshot(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Entries(context.Background(), "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = s.Alerts(context.Background(), "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestSnapshotStoreDuplicateIDFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, model.Snapshot{ID: "dup", CreatedAt: time.Now()}, sampleEntries(), nil))
	require.Error(t, s.Save(ctx, model.Snapshot{ID: "dup", CreatedAt: time.Now()}, sampleEntries(), nil))

	entries, err := s.Entries(ctx, "dup")
	require.NoError(t, err)
	assert.Len(t, entries, 2, "the failed save is rolled back")
}
