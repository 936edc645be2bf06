package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/session"
	"github.com/Socialmailz/TNB-Text/internal/store/memstore"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func seedUser(t *testing.T, st *memstore.Memstore, uid string, flags models.UserFlags) {
	t.Helper()
	rec := models.UserRecord{
		UID:         uid,
		Handle:      uid,
		DisplayName: uid,
		Status:      models.StatusOffline,
		LastChanged: time.Now(),
		Flags:       flags,
		JoinedAt:    time.Now(),
	}
	require.NoError(t, st.Set(context.Background(), "directory", uid, rec))
}

// startSession поднимает сессию и дожидается, пока она увидит справочник
func startSession(t *testing.T, st *memstore.Memstore, uid string) *session.Session {
	t.Helper()

	s := session.New(st, uid)
	s.Start()
	t.Cleanup(s.Close)

	require.Eventually(t, func() bool {
		_, ok := s.Directory(uid)
		return ok
	}, waitFor, tick, "session %s never saw the directory", uid)
	return s
}
