package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/session"
	"github.com/Socialmailz/TNB-Text/internal/store/memstore"
)

func TestCreateGroupIncludesCreator(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})
	seedUser(t, st, "u3", models.UserFlags{})

	s := startSession(t, st, "u1")

	// создатель в составе даже если сам себя не перечислил
	id, err := s.CreateGroup("team", "", []string{"u2", "u3", "u1"})
	require.NoError(t, err)

	var group models.Group
	require.True(t, st.Peek("groups", id, &group))
	assert.Equal(t, "u1", group.CreatorID)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, group.MemberIDs)

	require.Eventually(t, func() bool {
		return len(s.Groups()) == 1
	}, waitFor, tick)
}

func TestGroupsListsOnlyMemberships(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})
	seedUser(t, st, "u3", models.UserFlags{})

	a := startSession(t, st, "u1")
	b := startSession(t, st, "u2")

	_, err := a.CreateGroup("ours", "", []string{"u2"})
	require.NoError(t, err)
	_, err = b.CreateGroup("theirs", "", []string{"u3"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		groups := a.Groups()
		return len(groups) == 1 && groups[0].Name == "ours"
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		return len(b.Groups()) == 2
	}, waitFor, tick)
}

func TestGroupThreadMessaging(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})

	a := startSession(t, st, "u1")
	b := startSession(t, st, "u2")

	id, err := a.CreateGroup("room", "", []string{"u2"})
	require.NoError(t, err)

	threadID := session.GroupThreadID(id)
	a.OpenThread(threadID)
	b.OpenThread(threadID)

	a.SendMessage(threadID, "hello group")
	require.Eventually(t, func() bool {
		msgs := b.Messages(threadID)
		return len(msgs) == 1 && msgs[0].Text == "hello group"
	}, waitFor, tick)

	// имя отправителя едет вместе с сообщением для отрисовки в группе
	assert.Equal(t, "u1", b.Messages(threadID)[0].SenderName)
}
