package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Socialmailz/TNB-Text/internal/store"
)

func nextSnapshot(t *testing.T, ch <-chan store.Snapshot) store.Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestSubscribeDeliversFullSnapshots(t *testing.T) {
	m := New()
	ctx := context.Background()

	ch, cancel := m.Subscribe("directory")
	defer cancel()

	// первый снапшот приходит сразу и он пустой
	require.Empty(t, nextSnapshot(t, ch))

	require.NoError(t, m.Set(ctx, "directory", "u1", map[string]string{"uid": "u1"}))
	snap := nextSnapshot(t, ch)
	require.Contains(t, snap, "u1")

	require.NoError(t, m.Set(ctx, "directory", "u2", map[string]string{"uid": "u2"}))
	snap = nextSnapshot(t, ch)
	require.Len(t, snap, 2, "snapshot is the whole collection, not a diff")

	require.NoError(t, m.DeleteAll(ctx, "directory"))
	require.Empty(t, nextSnapshot(t, ch))
}

func TestCancelIsIdempotent(t *testing.T) {
	m := New()

	ch, cancel := m.Subscribe("groups")
	nextSnapshot(t, ch)

	cancel()
	cancel() // повторная отмена безопасна

	require.NoError(t, m.Set(context.Background(), "groups", "g1", "x"))
	_, open := <-ch
	require.False(t, open, "cancel must stop deliveries")
}

func TestPatchMergesFields(t *testing.T) {
	m := New()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "directory", "u1", map[string]interface{}{
		"uid": "u1", "status": "offline", "bio": "hi",
	}))
	require.NoError(t, m.Patch(ctx, "directory", "u1", map[string]interface{}{
		"status": "online",
	}))

	var rec map[string]interface{}
	require.True(t, m.Peek("directory", "u1", &rec))
	require.Equal(t, "online", rec["status"])
	require.Equal(t, "hi", rec["bio"], "untouched fields survive a patch")
}

func TestDisconnectIntents(t *testing.T) {
	m := New()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "directory", "u1", map[string]interface{}{"status": "online"}))

	sess := m.Session("u1")
	require.NoError(t, sess.OnDisconnectPatch("directory", "u1", map[string]interface{}{"status": "offline"}))
	require.NoError(t, sess.OnDisconnectDelete("calls", "u1"))
	require.NoError(t, m.Set(ctx, "calls", "u1", map[string]string{"caller_id": "u2"}))

	// обрыв без Close: хранилище применяет намерения само
	m.ExpireSession("u1")

	var rec map[string]interface{}
	require.True(t, m.Peek("directory", "u1", &rec))
	require.Equal(t, "offline", rec["status"])
	require.Equal(t, 0, m.Len("calls"))
}

func TestCloseDischargesIntentsOnce(t *testing.T) {
	m := New()
	ctx := context.Background()

	sess := m.Session("u1")
	require.NoError(t, sess.OnDisconnectPatch("directory", "u1", map[string]interface{}{"status": "offline"}))

	require.NoError(t, sess.Close(ctx))
	require.NoError(t, sess.Close(ctx), "close is idempotent")

	var rec map[string]interface{}
	require.True(t, m.Peek("directory", "u1", &rec))
	require.Equal(t, "offline", rec["status"])
}

func TestFailNextWrite(t *testing.T) {
	m := New()
	ctx := context.Background()
	boom := errors.New("boom")

	m.FailNextWrite("threads/a_b", boom)
	require.ErrorIs(t, m.Set(ctx, "threads/a_b", "k1", "v"), boom)

	// инъекция одноразовая
	require.NoError(t, m.Set(ctx, "threads/a_b", "k1", "v"))
}
