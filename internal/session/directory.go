package session

import (
	"log"
	"sort"

	"github.com/Socialmailz/TNB-Text/internal/models"
)

func (s *Session) applyDirectory(records map[string]models.UserRecord) {
	s.mu.Lock()
	s.directory = records
	s.mu.Unlock()

	s.emit(Event{Type: EventDirectory, Payload: s.VisibleDirectory()})
}

// Directory — запись пользователя из локального снимка справочника
func (s *Session) Directory(uid string) (models.UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.directory[uid]
	return rec, ok
}

// VisibleDirectory — справочник глазами владельца сессии: приватный
// аккаунт виден только при принятой заявке в любую сторону либо
// администратору (админ обходит все ограничения).
func (s *Session) VisibleDirectory() []models.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	viewer := s.directory[s.uid]

	out := make([]models.UserRecord, 0, len(s.directory))
	for uid, rec := range s.directory {
		if uid != s.uid && rec.Flags.Private && !viewer.Flags.Admin && !s.acceptedLocked(s.uid, uid) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// UpdateProfile меняет профильные поля владельца. Пустые значения
// означают «не трогать».
func (s *Session) UpdateProfile(displayName, bio, avatarURL string) {
	fields := make(map[string]interface{})
	if displayName != "" {
		fields["display_name"] = displayName
	}
	if bio != "" {
		fields["bio"] = bio
	}
	if avatarURL != "" {
		fields["avatar_url"] = avatarURL
	}
	if len(fields) == 0 {
		return
	}

	s.post(func() {
		ctx, cancel := writeCtx()
		defer cancel()
		if err := s.store.Patch(ctx, colDirectory, s.uid, fields); err != nil {
			log.Printf("session %s: profile update failed: %v", s.uid, err)
		}
	})
}

// SetUserFlags перезаписывает модерационные флаги пользователя.
// Только для администратора.
func (s *Session) SetUserFlags(target string, flags models.UserFlags) error {
	return s.do(func() error {
		me, ok := s.directory[s.uid]
		if !ok || !me.Flags.Admin {
			return ErrNotAdmin
		}
		if _, ok := s.directory[target]; !ok {
			return ErrUnknownUser
		}

		ctx, cancel := writeCtx()
		defer cancel()
		return s.store.Patch(ctx, colDirectory, target, map[string]interface{}{
			"flags": flags,
		})
	})
}

// isAdmin — админ по локальному снимку справочника
func (s *Session) isAdmin() bool {
	me, ok := s.directory[s.uid]
	return ok && me.Flags.Admin
}
