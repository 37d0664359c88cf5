package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCapture(t *testing.T) {
	srv, client := newEngine(t, "2.7.0")
	srv.JSON("core/other/messagesHar", harLog(
		harEntry("GET", "http://target/", "", "")+","+harEntry("GET", "http://target/a", "", "")))
	srv.JSON("core/view/alerts", alertsBody)

	db, err := store.Open(filepath.Join(t.TempDir(), "snapshots.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := testLogger()
	svc := NewSnapshotService(client, NewHistoryService(client, log), NewAlertService(client, log), db, log)
	ctx := context.Background()

	snap, err := svc.Capture(ctx, "baseline")
	require.NoError(t, err)
	_, err = uuid.Parse(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.7.0", snap.EngineVersion)
	assert.Equal(t, 2, snap.EntryCount)
	assert.Equal(t, 2, snap.AlertCount)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "baseline", list[0].Label)

	entries, err := svc.Entries(ctx, snap.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "http://target/a", entries[1].Request.URL)

	alerts, err := svc.Alerts(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cross Site Scripting (Reflected)", alerts[1].Name)

	_, err = svc.Entries(ctx, "")
	assert.True(t, errors.Is(err, model.ErrUsage))
}
