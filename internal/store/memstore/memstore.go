package memstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Socialmailz/TNB-Text/internal/store"
)

// Memstore — хранилище в памяти процесса с тем же контрактом, что и
// redis-бэкенд: полные снапшоты на каждое изменение, last-writer-wins
// записи, disconnect-safe намерения. Используется в тестах движка.
type Memstore struct {
	mu       sync.Mutex
	data     map[string]map[string]json.RawMessage
	subs     map[string]map[int]chan store.Snapshot
	nextSub  int
	sessions map[string]*memSession
	failing  map[string]error
}

func New() *Memstore {
	return &Memstore{
		data:     make(map[string]map[string]json.RawMessage),
		subs:     make(map[string]map[int]chan store.Snapshot),
		sessions: make(map[string]*memSession),
		failing:  make(map[string]error),
	}
}

// FailNextWrite заставляет следующую запись в коллекцию вернуть err.
// Хук для тестов best-effort путей.
func (m *Memstore) FailNextWrite(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[collection] = err
}

func (m *Memstore) takeFailure(collection string) error {
	if err, ok := m.failing[collection]; ok {
		delete(m.failing, collection)
		return err
	}
	return nil
}

func (m *Memstore) Set(ctx context.Context, collection, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return store.ErrBadPayload
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return err
	}

	col, ok := m.data[collection]
	if !ok {
		col = make(map[string]json.RawMessage)
		m.data[collection] = col
	}
	col[key] = raw

	m.notifyLocked(collection)
	return nil
}

func (m *Memstore) Get(ctx context.Context, collection, key string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[collection][key]
	return raw, ok, nil
}

func (m *Memstore) Patch(ctx context.Context, collection, key string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return err
	}
	m.patchLocked(collection, key, fields)
	m.notifyLocked(collection)
	return nil
}

func (m *Memstore) patchLocked(collection, key string, fields map[string]interface{}) {
	col, ok := m.data[collection]
	if !ok {
		col = make(map[string]json.RawMessage)
		m.data[collection] = col
	}

	merged := make(map[string]interface{})
	if prev, ok := col[key]; ok {
		// не удалось разобрать старое значение — перезаписываем целиком
		_ = json.Unmarshal(prev, &merged)
	}
	for k, v := range fields {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return
	}
	col[key] = raw
}

func (m *Memstore) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return err
	}

	if col, ok := m.data[collection]; ok {
		delete(col, key)
	}
	m.notifyLocked(collection)
	return nil
}

func (m *Memstore) DeleteAll(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return err
	}

	delete(m.data, collection)
	m.notifyLocked(collection)
	return nil
}

func (m *Memstore) Subscribe(collection string) (<-chan store.Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan store.Snapshot, 64)
	m.nextSub++
	id := m.nextSub

	if _, ok := m.subs[collection]; !ok {
		m.subs[collection] = make(map[int]chan store.Snapshot)
	}
	m.subs[collection][id] = ch

	// первый снапшот сразу при подписке
	ch <- m.snapshotLocked(collection)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if subs, ok := m.subs[collection]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(m.subs, collection)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (m *Memstore) snapshotLocked(collection string) store.Snapshot {
	snap := make(store.Snapshot, len(m.data[collection]))
	for k, v := range m.data[collection] {
		snap[k] = v
	}
	return snap
}

func (m *Memstore) notifyLocked(collection string) {
	subs, ok := m.subs[collection]
	if !ok {
		return
	}
	snap := m.snapshotLocked(collection)
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			// подписчик не успевает — следующий снапшот всё равно полный
		}
	}
}

// Peek достаёт и декодирует одну запись. Хелпер для тестов.
func (m *Memstore) Peek(collection, key string, out interface{}) bool {
	m.mu.Lock()
	raw, ok := m.data[collection][key]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Len — количество записей в коллекции
func (m *Memstore) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data[collection])
}
