package websocket

import "encoding/json"

// IntentType — действия, которые презентационный слой шлёт в движок
type IntentType string

const (
	IntentSendMessage IntentType = "send_message"
	IntentTyping      IntentType = "typing"
	IntentStopTyping  IntentType = "stop_typing"
	IntentOpenThread  IntentType = "open_thread"
	IntentCloseThread IntentType = "close_thread"
	IntentClearThread IntentType = "clear_thread"

	IntentFriendRequest IntentType = "friend_request"
	IntentFriendAccept  IntentType = "friend_accept"
	IntentFriendDecline IntentType = "friend_decline"

	IntentCallInitiate IntentType = "call_initiate"
	IntentCallAccept   IntentType = "call_accept"
	IntentCallDecline  IntentType = "call_decline"
	IntentCallEnd      IntentType = "call_end"

	IntentCreateGroup   IntentType = "create_group"
	IntentBroadcast     IntentType = "broadcast"
	IntentUpdateProfile IntentType = "update_profile"
	IntentSetFlags      IntentType = "set_flags"
)

// Intent — входящий кадр от клиента
type Intent struct {
	Type IntentType      `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
