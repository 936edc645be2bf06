package models

import "time"

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// FriendRequest — заявка в друзья. pending ставит отправитель,
// accepted/declined — только получатель, обратных переходов нет.
type FriendRequest struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Terminal — заявка уже разрешена и больше не меняется
func (r *FriendRequest) Terminal() bool {
	return r.Status == RequestAccepted || r.Status == RequestDeclined
}
