package memstore

import (
	"context"
	"sync"

	"github.com/Socialmailz/TNB-Text/internal/store"
)

type intent struct {
	collection string
	key        string
	fields     map[string]interface{} // nil -> delete
}

type memSession struct {
	id      string
	parent  *Memstore
	mu      sync.Mutex
	intents []intent
	closed  bool
}

func (m *Memstore) Session(id string) store.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &memSession{id: id, parent: m}
	m.sessions[id] = s
	return s
}

func (s *memSession) OnDisconnectPatch(collection, key string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.intents = append(s.intents, intent{collection: collection, key: key, fields: fields})
	return nil
}

func (s *memSession) OnDisconnectDelete(collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.intents = append(s.intents, intent{collection: collection, key: key})
	return nil
}

// Close применяет намерения и снимает сессию. Идемпотентен.
func (s *memSession) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pending := s.intents
	s.intents = nil
	s.mu.Unlock()

	s.parent.applyIntents(s.id, pending)
	return nil
}

// ExpireSession имитирует обрыв соединения: хранилище само применяет
// накопленные disconnect-намерения сессии.
func (m *Memstore) ExpireSession(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.intents
	s.intents = nil
	s.mu.Unlock()

	m.applyIntents(id, pending)
}

func (m *Memstore) applyIntents(id string, pending []intent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, in := range pending {
		if in.fields == nil {
			if col, ok := m.data[in.collection]; ok {
				delete(col, in.key)
			}
		} else {
			m.patchLocked(in.collection, in.key, in.fields)
		}
		m.notifyLocked(in.collection)
	}
	delete(m.sessions, id)
}
