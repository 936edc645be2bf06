package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/session"
	"github.com/Socialmailz/TNB-Text/internal/store/memstore"
)

func TestCallHandshake(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})

	caller := startSession(t, st, "u1")
	callee := startSession(t, st, "u2")

	require.NoError(t, caller.InitiateCall("u2", models.CallVoice))
	assert.Equal(t, session.CallCalling, caller.Call().Phase)

	// сигнал лежит в слоте вызываемого
	var sig models.CallSignal
	require.True(t, st.Peek("calls", "u2", &sig))
	assert.Equal(t, models.CallSignal{CallerID: "u1", Type: "voice"}, sig)

	// вызываемый звонит
	require.Eventually(t, func() bool {
		return callee.Call().Phase == session.CallRinging
	}, waitFor, tick)
	incoming := callee.IncomingCall()
	require.NotNil(t, incoming)
	assert.Equal(t, "u1", incoming.CallerID)

	// ответ: слот пустеет, обе стороны в connected
	require.NoError(t, callee.AcceptCall())
	assert.Equal(t, 0, st.Len("calls"))
	assert.Equal(t, session.CallConnected, callee.Call().Phase)
	require.Eventually(t, func() bool {
		return caller.Call().Phase == session.CallConnected
	}, waitFor, tick)
	assert.Equal(t, "u2", caller.Call().Peer)
}

func TestBusyCalleeGetsNoSecondPrompt(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})
	seedUser(t, st, "u3", models.UserFlags{})

	caller := startSession(t, st, "u1")
	callee := startSession(t, st, "u2")
	intruder := startSession(t, st, "u3")

	require.NoError(t, caller.InitiateCall("u2", models.CallVoice))
	require.Eventually(t, func() bool {
		return callee.Call().Phase == session.CallRinging
	}, waitFor, tick)
	require.NoError(t, callee.AcceptCall())

	// у вызываемого активный звонок: новый сигнал не всплывает
	require.NoError(t, intruder.InitiateCall("u2", models.CallVideo))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, session.CallConnected, callee.Call().Phase)
	assert.Equal(t, "u1", callee.Call().Peer)
	assert.Nil(t, callee.IncomingCall())
}

func TestCallerCannotDialWhileBusy(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})
	seedUser(t, st, "u3", models.UserFlags{})

	caller := startSession(t, st, "u1")

	require.NoError(t, caller.InitiateCall("u2", models.CallVoice))
	assert.ErrorIs(t, caller.InitiateCall("u3", models.CallVoice), session.ErrCallBusy)
}

func TestDeclineClearsBothSlots(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})

	caller := startSession(t, st, "u1")
	callee := startSession(t, st, "u2")

	require.NoError(t, caller.InitiateCall("u2", models.CallVoice))
	require.Eventually(t, func() bool {
		return callee.Call().Phase == session.CallRinging
	}, waitFor, tick)

	require.NoError(t, callee.DeclineCall())
	assert.Equal(t, session.CallIdle, callee.Call().Phase)
	// защитная двойная очистка: пусты слоты обеих сторон
	assert.Equal(t, 0, st.Len("calls"))
}

func TestEndCallKeepsHistoryWithZeroDuration(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})

	caller := startSession(t, st, "u1")
	callee := startSession(t, st, "u2")

	require.NoError(t, caller.InitiateCall("u2", models.CallVideo))
	require.Eventually(t, func() bool {
		return callee.Call().Phase == session.CallRinging
	}, waitFor, tick)
	require.NoError(t, callee.AcceptCall())

	require.NoError(t, callee.EndCall())
	assert.Equal(t, session.CallIdle, callee.Call().Phase)

	history := callee.CallHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "u1", history[0].Peer)
	assert.Equal(t, models.CallVideo, history[0].Type)
	// источника длительности в ядре нет
	assert.Equal(t, time.Duration(0), history[0].Duration)
	assert.Equal(t, 0, st.Len("calls"))
}

func TestWithdrawnSignalStopsRinging(t *testing.T) {
	st := memstore.New()
	seedUser(t, st, "u1", models.UserFlags{})
	seedUser(t, st, "u2", models.UserFlags{})

	caller := startSession(t, st, "u1")
	callee := startSession(t, st, "u2")

	require.NoError(t, caller.InitiateCall("u2", models.CallVoice))
	require.Eventually(t, func() bool {
		return callee.Call().Phase == session.CallRinging
	}, waitFor, tick)

	// звонящий передумал до ответа
	require.NoError(t, caller.EndCall())
	require.Eventually(t, func() bool {
		return callee.Call().Phase == session.CallIdle
	}, waitFor, tick)
	assert.Nil(t, callee.IncomingCall())
}
