package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/session"
	"github.com/Socialmailz/TNB-Text/internal/store/memstore"
)

func TestUpdateProfilePatchesOwnRecord(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})

	s := startSession(t, st, "u1")
	s.UpdateProfile("Neo", "wake up", "")

	require.Eventually(t, func() bool {
		var rec models.UserRecord
		return st.Peek("directory", "u1", &rec) && rec.DisplayName == "Neo"
	}, waitFor, tick)

	var rec models.UserRecord
	require.True(t, st.Peek("directory", "u1", &rec))
	assert.Equal(t, "wake up", rec.Bio)
	// непереданные поля не задеты
	assert.Equal(t, "u1", rec.Handle)
}

func TestSetUserFlagsRequiresAdmin(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "root", models.UserFlags{Admin: true})
	seedUser(t, st, "victim", models.UserFlags{})

	mortal := startSession(t, st, "u1")
	admin := startSession(t, st, "root")

	assert.ErrorIs(t, mortal.SetUserFlags("victim", models.UserFlags{Suspended: true}), session.ErrNotAdmin)
	assert.ErrorIs(t, admin.SetUserFlags("ghost", models.UserFlags{}), session.ErrUnknownUser)

	require.NoError(t, admin.SetUserFlags("victim", models.UserFlags{Suspended: true, Verified: true}))

	var rec models.UserRecord
	require.True(t, st.Peek("directory", "victim", &rec))
	assert.True(t, rec.Flags.Suspended)
	assert.True(t, rec.Flags.Verified)
	assert.Equal(t, "victim", rec.Handle)
}
