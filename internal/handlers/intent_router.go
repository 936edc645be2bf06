package handlers

import (
	"encoding/json"

	"github.com/Socialmailz/TNB-Text/internal/handlers/dto"
	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/session"
	ws "github.com/Socialmailz/TNB-Text/internal/websocket"
)

// intentRouter разбирает кадры-намерения одного соединения и
// транслирует их в операции сессии движка
type intentRouter struct {
	sess *session.Session
}

func (r *intentRouter) HandleIntent(client *ws.Client, intent *ws.Intent) error {
	switch intent.Type {
	case ws.IntentSendMessage:
		var p dto.SendMessagePayload
		if err := json.Unmarshal(intent.Data, &p); err != nil {
			return ws.ErrInvalidIntent
		}
		if p.ThreadID == "" || p.Text == "" {
			return ws.ErrInvalidIntent
		}
		r.sess.SendMessage(p.ThreadID, p.Text)
		return nil

	case ws.IntentOpenThread:
		var p dto.ThreadPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.ThreadID == "" {
			return ws.ErrInvalidIntent
		}
		r.sess.OpenThread(p.ThreadID)
		return nil

	case ws.IntentCloseThread:
		var p dto.ThreadPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.ThreadID == "" {
			return ws.ErrInvalidIntent
		}
		r.sess.CloseThread(p.ThreadID)
		return nil

	case ws.IntentClearThread:
		// подтверждение необратимой очистки — на совести клиента
		var p dto.ThreadPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.ThreadID == "" {
			return ws.ErrInvalidIntent
		}
		r.sess.ClearThread(p.ThreadID)
		return nil

	case ws.IntentTyping:
		var p dto.TypingPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.ChatID == "" {
			return ws.ErrInvalidIntent
		}
		r.sess.Typing(p.ChatID)
		return nil

	case ws.IntentStopTyping:
		var p dto.TypingPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.ChatID == "" {
			return ws.ErrInvalidIntent
		}
		r.sess.StopTyping(p.ChatID)
		return nil

	case ws.IntentFriendRequest:
		var p dto.FriendRequestPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.To == "" {
			return ws.ErrInvalidIntent
		}
		return r.sess.SendFriendRequest(p.To)

	case ws.IntentFriendAccept:
		var p dto.FriendResolvePayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.ID == "" {
			return ws.ErrInvalidIntent
		}
		return r.sess.AcceptFriendRequest(p.ID)

	case ws.IntentFriendDecline:
		var p dto.FriendResolvePayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.ID == "" {
			return ws.ErrInvalidIntent
		}
		return r.sess.DeclineFriendRequest(p.ID)

	case ws.IntentCallInitiate:
		var p dto.CallInitiatePayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.Peer == "" {
			return ws.ErrInvalidIntent
		}
		return r.sess.InitiateCall(p.Peer, p.Type)

	case ws.IntentCallAccept:
		return r.sess.AcceptCall()

	case ws.IntentCallDecline:
		return r.sess.DeclineCall()

	case ws.IntentCallEnd:
		return r.sess.EndCall()

	case ws.IntentCreateGroup:
		var p dto.CreateGroupPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.Name == "" {
			return ws.ErrInvalidIntent
		}
		_, err := r.sess.CreateGroup(p.Name, p.Description, p.MemberIDs)
		return err

	case ws.IntentBroadcast:
		var p dto.BroadcastPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.Text == "" {
			return ws.ErrInvalidIntent
		}
		return r.sess.Broadcast(p.Text)

	case ws.IntentSetFlags:
		var p dto.SetFlagsPayload
		if err := json.Unmarshal(intent.Data, &p); err != nil || p.UID == "" {
			return ws.ErrInvalidIntent
		}
		return r.sess.SetUserFlags(p.UID, models.UserFlags{
			Verified:  p.Verified,
			Private:   p.Private,
			Admin:     p.Admin,
			Suspended: p.Suspended,
		})

	case ws.IntentUpdateProfile:
		var p dto.UpdateProfilePayload
		if err := json.Unmarshal(intent.Data, &p); err != nil {
			return ws.ErrInvalidIntent
		}
		r.sess.UpdateProfile(p.DisplayName, p.Bio, p.AvatarURL)
		return nil

	default:
		return ws.ErrUnknownIntent
	}
}
