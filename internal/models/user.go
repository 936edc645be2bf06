package models

import "time"

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// LoginEntry — одна запись истории входов, только добавляется
type LoginEntry struct {
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

type UserFlags struct {
	Verified  bool `json:"verified"`
	Private   bool `json:"private"`
	Admin     bool `json:"admin"`
	Suspended bool `json:"suspended"`
}

// UserRecord — запись пользователя в коллекции directory.
// Статус меняет PresenceManager, профиль — владелец, флаги — администратор.
type UserRecord struct {
	UID          string       `json:"uid"`
	Handle       string       `json:"handle"`
	DisplayName  string       `json:"display_name"`
	Bio          string       `json:"bio,omitempty"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Status       string       `json:"status"`
	LastChanged  time.Time    `json:"last_changed"`
	Flags        UserFlags    `json:"flags"`
	JoinedAt     time.Time    `json:"joined_at"`
	LastLoginIP  string       `json:"last_login_ip,omitempty"`
	LoginHistory []LoginEntry `json:"login_history,omitempty"`
}
