package session

import (
	"log"
	"time"
)

func typingCol(chatID string) string { return "typing/" + chatID }

// watchTyping подписывает сессию на typing-набор чата. Вызывается на
// цикле при открытии треда.
func (s *Session) watchTyping(chatID string) {
	if _, ok := s.typingCancels[chatID]; ok {
		return
	}
	s.typingCancels[chatID] = subscribe(s, typingCol(chatID), func(m map[string]bool) {
		s.applyTyping(chatID, m)
	})
}

func (s *Session) unwatchTyping(chatID string) {
	if cancel, ok := s.typingCancels[chatID]; ok {
		cancel()
		delete(s.typingCancels, chatID)
	}

	s.mu.Lock()
	if t, ok := s.typingTimers[chatID]; ok {
		t.Stop()
		delete(s.typingTimers, chatID)
	}
	delete(s.typing, chatID)
	s.mu.Unlock()
}

func (s *Session) applyTyping(chatID string, markers map[string]bool) {
	set := make(map[string]bool, len(markers))
	for uid := range markers {
		set[uid] = true
	}

	s.mu.Lock()
	s.typing[chatID] = set
	s.mu.Unlock()

	s.emit(Event{Type: EventTyping, ChatID: chatID, Payload: s.PeerTyping(chatID)})
}

// Typing отмечает набор текста владельцем сессии в чате: освежает
// маркер (повторные записи не накапливаются), отменяет прежнюю
// отложенную очистку и взводит новую на окно бездействия.
func (s *Session) Typing(chatID string) {
	s.post(func() {
		ctx, cancel := writeCtx()
		if err := s.store.Set(ctx, typingCol(chatID), s.uid, true); err != nil {
			log.Printf("session %s: typing marker for %s failed: %v", s.uid, chatID, err)
		}
		cancel()

		// отмена по вытеснению: прежний таймер снимается, живёт только
		// последний взведённый
		s.mu.Lock()
		if t, ok := s.typingTimers[chatID]; ok {
			t.Stop()
		}
		var timer *time.Timer
		timer = time.AfterFunc(s.TypingTimeout, func() {
			s.post(func() {
				// таймер мог быть вытеснен, пока очистка стояла в очереди
				s.mu.Lock()
				current := s.typingTimers[chatID] == timer
				if current {
					delete(s.typingTimers, chatID)
				}
				s.mu.Unlock()
				if current {
					s.clearTypingMarker(chatID)
				}
			})
		})
		s.typingTimers[chatID] = timer
		s.mu.Unlock()
	})
}

// StopTyping немедленно гасит маркер набора в чате
func (s *Session) StopTyping(chatID string) {
	s.post(func() { s.stopTypingNow(chatID) })
}

// stopTypingNow немедленно гасит маркер и отложенную очистку.
// Вызывается на цикле (например, при отправке сообщения).
func (s *Session) stopTypingNow(chatID string) {
	s.mu.Lock()
	if t, ok := s.typingTimers[chatID]; ok {
		t.Stop()
		delete(s.typingTimers, chatID)
	}
	s.mu.Unlock()
	s.clearTypingMarker(chatID)
}

func (s *Session) clearTypingMarker(chatID string) {
	ctx, cancel := writeCtx()
	defer cancel()
	if err := s.store.Delete(ctx, typingCol(chatID), s.uid); err != nil {
		log.Printf("session %s: typing clear for %s failed: %v", s.uid, chatID, err)
	}
}

// PeerTyping — «собеседник печатает»: в наборе чата есть кто-то кроме
// владельца сессии. Собственный маркер наружу не отдаётся никогда.
func (s *Session) PeerTyping(chatID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for uid := range s.typing[chatID] {
		if uid != s.uid {
			return true
		}
	}
	return false
}
