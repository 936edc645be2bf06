package session

import (
	"log"
	"sort"
	"time"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/store"
)

const (
	threadDelimiter = "_"
	groupPrefix     = "group"
)

// DirectThreadID — детерминированный адрес личного треда: оба
// участника, отсортированные лексикографически, через разделитель.
// Коммутативен: обе стороны считают один и тот же id без переговоров,
// пары не пересекаются.
func DirectThreadID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + threadDelimiter + b
}

// GroupThreadID — адрес группового треда: фиксированный префикс + id группы
func GroupThreadID(groupID string) string {
	return groupPrefix + threadDelimiter + groupID
}

func threadCol(threadID string) string { return "threads/" + threadID }

// OpenThread подписывает сессию на сообщения треда и его typing-набор.
// Повторное открытие уже открытого треда — no-op.
func (s *Session) OpenThread(threadID string) {
	s.post(func() {
		if _, ok := s.threadCancels[threadID]; ok {
			return
		}
		s.threadCancels[threadID] = subscribe(s, threadCol(threadID), func(m map[string]models.Message) {
			s.applyThread(threadID, m)
		})
		s.watchTyping(threadID)
	})
}

// CloseThread снимает подписки треда и забывает его локальное состояние
func (s *Session) CloseThread(threadID string) {
	s.post(func() {
		if cancel, ok := s.threadCancels[threadID]; ok {
			cancel()
			delete(s.threadCancels, threadID)
		}
		s.unwatchTyping(threadID)

		s.mu.Lock()
		delete(s.threads, threadID)
		s.mu.Unlock()
	})
}

// applyThread заменяет последовательность сообщений треда целиком.
// Порядок — только по ключу записи: метки времени на обычном
// разрешении часов могут совпадать.
func (s *Session) applyThread(threadID string, records map[string]models.Message) {
	msgs := make([]models.Message, 0, len(records))
	for key, m := range records {
		m.ID = key
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })

	s.mu.Lock()
	s.threads[threadID] = msgs
	s.mu.Unlock()

	s.emit(Event{Type: EventThread, ChatID: threadID, Payload: msgs})
}

// Messages — текущая последовательность сообщений открытого треда
func (s *Session) Messages(threadID string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.threads[threadID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

// SendMessage дописывает сообщение в тред одной атомарной записью:
// свежий ключ порядка, штамп отправителя и времени, статус sent.
// Заодно сразу гасит typing-маркер отправителя.
func (s *Session) SendMessage(threadID, text string) {
	s.post(func() {
		s.stopTypingNow(threadID)

		msg := models.Message{
			ID:        store.NewPushID(),
			SenderID:  s.uid,
			Text:      text,
			Timestamp: time.Now(),
			Status:    models.MessageSent,
		}
		if me, ok := s.directory[s.uid]; ok {
			msg.SenderName = me.DisplayName
		}

		ctx, cancel := writeCtx()
		defer cancel()
		if err := s.store.Set(ctx, threadCol(threadID), msg.ID, msg); err != nil {
			log.Printf("session %s: send to %s failed: %v", s.uid, threadID, err)
		}
	})
}

// ClearThread необратимо удаляет всю последовательность сообщений
// треда. Подтверждение у пользователя — обязанность вызывающего слоя.
func (s *Session) ClearThread(threadID string) {
	s.post(func() {
		ctx, cancel := writeCtx()
		defer cancel()
		if err := s.store.DeleteAll(ctx, threadCol(threadID)); err != nil {
			log.Printf("session %s: clear %s failed: %v", s.uid, threadID, err)
		}
	})
}
