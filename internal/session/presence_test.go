package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/store/memstore"
)

func status(st *memstore.Memstore, uid string) string {
	var rec models.UserRecord
	if !st.Peek("directory", uid, &rec) {
		return ""
	}
	return rec.Status
}

func TestSessionStartPublishesOnline(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})

	s := startSession(t, st, "u1")

	require.Eventually(t, func() bool {
		return status(st, "u1") == models.StatusOnline
	}, waitFor, tick)

	// статус — часть записи, профиль при этом не затёрт
	var rec models.UserRecord
	require.True(t, st.Peek("directory", "u1", &rec))
	assert.Equal(t, "u1", rec.Handle)
	assert.False(t, rec.LastChanged.IsZero())

	s.Close()
	assert.Equal(t, models.StatusOffline, status(st, "u1"))
}

func TestDisconnectIntentRestoresOffline(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})

	startSession(t, st, "u1")
	require.Eventually(t, func() bool {
		return status(st, "u1") == models.StatusOnline
	}, waitFor, tick)

	// обрыв без logout: намерение применяет само хранилище
	st.ExpireSession("u1")
	assert.Equal(t, models.StatusOffline, status(st, "u1"))
}

func TestOnlineSetDerivedFromDirectory(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})
	seedUser(t, st, "u3", models.UserFlags{})

	s := startSession(t, st, "u1")

	require.NoError(t, st.Patch(context.Background(), "directory", "u3", map[string]interface{}{
		"status": models.StatusOnline,
	}))

	require.Eventually(t, func() bool {
		online := s.Online()
		return len(online) == 2 && online[0] == "u1" && online[1] == "u3"
	}, waitFor, tick, "online = все записи справочника со статусом online")
}
