package session

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Socialmailz/TNB-Text/internal/models"
)

func (s *Session) applyGroups(records map[string]models.Group) {
	s.mu.Lock()
	s.groups = records
	s.mu.Unlock()

	s.emit(Event{Type: EventGroups, Payload: s.Groups()})
}

// Groups — группы, в которых состоит владелец сессии
func (s *Session) Groups() []models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Group, 0)
	for _, g := range s.groups {
		if g.HasMember(s.uid) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateGroup создаёт группу; создатель всегда в составе. Состав после
// создания неизменен.
func (s *Session) CreateGroup(name, description string, memberIDs []string) (string, error) {
	id := uuid.NewString()
	err := s.do(func() error {
		members := []string{s.uid}
		for _, uid := range memberIDs {
			if uid != s.uid {
				members = append(members, uid)
			}
		}

		group := models.Group{
			ID:          id,
			Name:        name,
			Description: description,
			MemberIDs:   members,
			CreatorID:   s.uid,
			CreatedAt:   time.Now(),
		}

		ctx, cancel := writeCtx()
		defer cancel()
		return s.store.Set(ctx, colGroups, id, group)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
