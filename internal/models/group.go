package models

import "time"

// Group — групповой чат. Состав участников после создания не меняется.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MemberIDs   []string  `json:"member_ids"`
	CreatorID   string    `json:"creator_id"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasMember проверяет членство uid в группе
func (g *Group) HasMember(uid string) bool {
	for _, id := range g.MemberIDs {
		if id == uid {
			return true
		}
	}
	return false
}
