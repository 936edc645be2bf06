package session

import (
	"log"
	"time"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/store"
)

// SystemSender — подпись служебных сообщений рассылки
const SystemSender = "SYSTEM"

// Broadcast — административная рассылка: каждому пользователю, кроме
// самого администратора, в его личный тред с администратором
// дописывается служебное сообщение. Раздача не атомарна: каждая запись
// независима, ошибка одной не прерывает остальные и ничего не
// откатывает.
func (s *Session) Broadcast(text string) error {
	return s.do(func() error {
		if !s.isAdmin() {
			return ErrNotAdmin
		}

		now := time.Now()
		for uid := range s.directory {
			if uid == s.uid {
				continue
			}

			msg := models.Message{
				ID:          store.NewPushID(),
				SenderID:    s.uid,
				SenderName:  SystemSender,
				Text:        text,
				Timestamp:   now,
				Status:      models.MessageRead,
				IsBroadcast: true,
			}

			threadID := DirectThreadID(s.uid, uid)
			ctx, cancel := writeCtx()
			if err := s.store.Set(ctx, threadCol(threadID), msg.ID, msg); err != nil {
				log.Printf("broadcast %s: append to %s failed: %v", s.uid, threadID, err)
			}
			cancel()
		}
		return nil
	})
}
