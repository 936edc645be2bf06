package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/session"
	"github.com/Socialmailz/TNB-Text/internal/store/memstore"
)

func TestDirectThreadIDCommutative(t *testing.T) {
	assert.Equal(t, "u1_u2", session.DirectThreadID("u1", "u2"))
	assert.Equal(t, "u1_u2", session.DirectThreadID("u2", "u1"))

	// разные пары не пересекаются
	assert.NotEqual(t, session.DirectThreadID("a", "b"), session.DirectThreadID("a", "c"))
	assert.NotEqual(t, session.DirectThreadID("a", "b"), session.DirectThreadID("b", "c"))
}

func TestGroupThreadID(t *testing.T) {
	assert.Equal(t, "group_g1", session.GroupThreadID("g1"))
}

func TestSendMessageAppendsInWriteOrder(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})

	a := startSession(t, st, "u1")
	b := startSession(t, st, "u2")

	threadID := session.DirectThreadID("u1", "u2")
	a.OpenThread(threadID)
	b.OpenThread(threadID)

	a.SendMessage(threadID, "first")
	a.SendMessage(threadID, "second")
	b.SendMessage(threadID, "third")

	require.Eventually(t, func() bool {
		return len(b.Messages(threadID)) == 3
	}, waitFor, tick)

	msgs := b.Messages(threadID)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
	assert.Equal(t, "third", msgs[2].Text)

	assert.Equal(t, "u1", msgs[0].SenderID)
	assert.Equal(t, models.MessageSent, msgs[0].Status)
	assert.False(t, msgs[0].IsBroadcast)
	assert.False(t, msgs[0].Timestamp.IsZero())

	// обе стороны сошлись к одной последовательности
	require.Eventually(t, func() bool {
		return len(a.Messages(threadID)) == 3
	}, waitFor, tick)
	assert.Equal(t, msgs, a.Messages(threadID))
}

func TestClearThreadRemovesEverything(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})

	a := startSession(t, st, "u1")

	threadID := session.DirectThreadID("u1", "u2")
	a.OpenThread(threadID)
	a.SendMessage(threadID, "doomed")

	require.Eventually(t, func() bool {
		return len(a.Messages(threadID)) == 1
	}, waitFor, tick)

	a.ClearThread(threadID)
	require.Eventually(t, func() bool {
		return len(a.Messages(threadID)) == 0
	}, waitFor, tick)
	assert.Equal(t, 0, st.Len("threads/"+threadID))
}

func TestOpenMissingThreadIsEmptyNotError(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})

	a := startSession(t, st, "u1")
	a.OpenThread("u1_zzz")

	// отсутствующий тред — это пустое состояние
	assert.Empty(t, a.Messages("u1_zzz"))
}
