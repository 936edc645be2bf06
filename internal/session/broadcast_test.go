package session_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/session"
	"github.com/Socialmailz/TNB-Text/internal/store/memstore"
)

func TestBroadcastFanout(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "admin1", models.UserFlags{Admin: true})
	seedUser(t, st, "u2", models.UserFlags{})
	seedUser(t, st, "u3", models.UserFlags{})

	admin := startSession(t, st, "admin1")
	require.NoError(t, admin.Broadcast("Maintenance at 10pm"))

	for _, uid := range []string{"u2", "u3"} {
		threadID := session.DirectThreadID("admin1", uid)
		require.Equal(t, 1, st.Len("threads/"+threadID), "thread %s", threadID)

		// единственное сообщение в треде — служебное
		ch, cancel := st.Subscribe("threads/" + threadID)
		snap := <-ch
		cancel()
		require.Len(t, snap, 1)

		var msg models.Message
		for _, raw := range snap {
			require.NoError(t, json.Unmarshal(raw, &msg))
		}
		assert.Equal(t, "Maintenance at 10pm", msg.Text)
		assert.True(t, msg.IsBroadcast)
		assert.Equal(t, models.MessageRead, msg.Status)
		assert.Equal(t, session.SystemSender, msg.SenderName)
		assert.Equal(t, "admin1", msg.SenderID)
	}

	// собственный тред администратора рассылка не трогает
	assert.Equal(t, 0, st.Len("threads/"+session.DirectThreadID("admin1", "admin1")))
}

func TestBroadcastRequiresAdmin(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})

	s := startSession(t, st, "u1")
	assert.ErrorIs(t, s.Broadcast("nope"), session.ErrNotAdmin)
	assert.Equal(t, 0, st.Len("threads/u1_u2"))
}

func TestBroadcastIsBestEffort(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "admin1", models.UserFlags{Admin: true})
	seedUser(t, st, "u2", models.UserFlags{})
	seedUser(t, st, "u3", models.UserFlags{})

	admin := startSession(t, st, "admin1")

	// отказ одной записи не прерывает остальные и ничего не откатывает
	st.FailNextWrite("threads/"+session.DirectThreadID("admin1", "u2"), errors.New("boom"))
	require.NoError(t, admin.Broadcast("still going"))

	assert.Equal(t, 0, st.Len("threads/"+session.DirectThreadID("admin1", "u2")))
	assert.Equal(t, 1, st.Len("threads/"+session.DirectThreadID("admin1", "u3")))
}
