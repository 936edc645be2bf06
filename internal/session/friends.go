package session

import (
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Socialmailz/TNB-Text/internal/models"
)

func (s *Session) applyRequests(records map[string]models.FriendRequest) {
	s.mu.Lock()
	s.requests = records
	s.mu.Unlock()

	s.emit(Event{Type: EventRequests, Payload: s.Requests()})
}

// Requests — заявки, в которых участвует владелец сессии
func (s *Session) Requests() []models.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FriendRequest, 0)
	for _, r := range s.requests {
		if r.From == s.uid || r.To == s.uid {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SendFriendRequest создаёт pending-заявку к to. Повторные pending
// между той же парой намеренно не схлопываются.
func (s *Session) SendFriendRequest(to string) error {
	return s.do(func() error {
		if _, ok := s.directory[to]; !ok {
			return ErrUnknownUser
		}

		req := models.FriendRequest{
			ID:        uuid.NewString(),
			From:      s.uid,
			To:        to,
			Status:    models.RequestPending,
			Timestamp: time.Now(),
		}

		ctx, cancel := writeCtx()
		defer cancel()
		return s.store.Set(ctx, colRequests, req.ID, req)
	})
}

// AcceptFriendRequest переводит заявку в accepted. Разрешено только
// получателю и только из pending; повтор по уже разрешённой заявке —
// no-op.
func (s *Session) AcceptFriendRequest(id string) error {
	return s.resolveRequest(id, models.RequestAccepted)
}

// DeclineFriendRequest переводит заявку в declined по тем же правилам
func (s *Session) DeclineFriendRequest(id string) error {
	return s.resolveRequest(id, models.RequestDeclined)
}

func (s *Session) resolveRequest(id, status string) error {
	return s.do(func() error {
		req, ok := s.requests[id]
		if !ok {
			return ErrRequestNotFound
		}
		if req.To != s.uid {
			return ErrNotRecipient
		}
		if req.Terminal() {
			// терминальное состояние окончательно
			return nil
		}

		req.Status = status

		ctx, cancel := writeCtx()
		defer cancel()
		if err := s.store.Set(ctx, colRequests, req.ID, req); err != nil {
			log.Printf("session %s: request %s resolve failed: %v", s.uid, id, err)
			return err
		}
		return nil
	})
}

// acceptedLocked — есть ли принятая заявка между a и b в любую сторону.
// Вызывать под s.mu.
func (s *Session) acceptedLocked(a, b string) bool {
	for _, r := range s.requests {
		if r.Status != models.RequestAccepted {
			continue
		}
		if (r.From == a && r.To == b) || (r.From == b && r.To == a) {
			return true
		}
	}
	return false
}
