package dto

// Полезные нагрузки кадров-намерений с WebSocket

type SendMessagePayload struct {
	ThreadID string `json:"thread_id"`
	Text     string `json:"text"`
}

type ThreadPayload struct {
	ThreadID string `json:"thread_id"`
}

type TypingPayload struct {
	ChatID string `json:"chat_id"`
}

type FriendRequestPayload struct {
	To string `json:"to"`
}

type FriendResolvePayload struct {
	ID string `json:"id"`
}

type CallInitiatePayload struct {
	Peer string `json:"peer"`
	Type string `json:"type"` // voice | video
}

type CreateGroupPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"member_ids"`
}

type BroadcastPayload struct {
	Text string `json:"text"`
}

type SetFlagsPayload struct {
	UID       string `json:"uid"`
	Verified  bool   `json:"verified"`
	Private   bool   `json:"private"`
	Admin     bool   `json:"admin"`
	Suspended bool   `json:"suspended"`
}

type UpdateProfilePayload struct {
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
