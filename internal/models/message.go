package models

import "time"

const (
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

// Message — сообщение в треде. После записи неизменяемо, кроме Status
// (его продвижение оставлено будущей фиче квитанций о прочтении).
// ID — ключ порядка записи, сортировка только по нему, не по Timestamp.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	SenderName  string    `json:"sender_name,omitempty"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	IsBroadcast bool      `json:"is_broadcast,omitempty"`
}
