package redisstore

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Socialmailz/TNB-Text/internal/store"
)

const (
	heartbeatTTL    = 30 * time.Second
	heartbeatPeriod = 10 * time.Second
)

// storedIntent — одно disconnect-safe намерение в rtdb:intents:<sid>.
// Fields == nil означает удаление записи.
type storedIntent struct {
	Collection string                 `json:"collection"`
	Key        string                 `json:"key"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

type redisSession struct {
	id     string
	parent *Redisstore
	stop   chan struct{}
	once   sync.Once
	nextID int
	mu     sync.Mutex
}

// Session регистрирует сессию: ставит heartbeat-ключ с TTL и
// поддерживает его фоновым обновлением. Если клиент пропадёт, ключ
// истечёт и janitor применит накопленные намерения.
func (r *Redisstore) Session(id string) store.Session {
	s := &redisSession{id: id, parent: r, stop: make(chan struct{})}

	ctx := context.Background()
	if err := r.rdb.Set(ctx, aliveKey(id), 1, heartbeatTTL).Err(); err != nil {
		log.Printf("redisstore: heartbeat init for %s failed: %v", id, err)
	}

	go s.heartbeat()
	return s
}

func (s *redisSession) heartbeat() {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), heartbeatPeriod)
			if err := s.parent.rdb.Expire(ctx, aliveKey(s.id), heartbeatTTL).Err(); err != nil {
				log.Printf("redisstore: heartbeat for %s failed: %v", s.id, err)
			}
			cancel()
		}
	}
}

func (s *redisSession) addIntent(in storedIntent) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return store.ErrBadPayload
	}

	s.mu.Lock()
	s.nextID++
	idx := s.nextID
	s.mu.Unlock()

	ctx := context.Background()
	return s.parent.rdb.HSet(ctx, intentKey(s.id), strconv.Itoa(idx), raw).Err()
}

func (s *redisSession) OnDisconnectPatch(collection, key string, fields map[string]interface{}) error {
	return s.addIntent(storedIntent{Collection: collection, Key: key, Fields: fields})
}

func (s *redisSession) OnDisconnectDelete(collection, key string) error {
	return s.addIntent(storedIntent{Collection: collection, Key: key})
}

// Close применяет намерения явно и убирает ключи сессии. Идемпотентен.
func (s *redisSession) Close(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		err = s.parent.dischargeIntents(ctx, s.id)
		s.parent.rdb.Del(ctx, aliveKey(s.id), intentKey(s.id))
	})
	return err
}

// dischargeIntents применяет все намерения сессии и удаляет их
func (r *Redisstore) dischargeIntents(ctx context.Context, sessionID string) error {
	vals, err := r.rdb.HGetAll(ctx, intentKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	for _, raw := range vals {
		var in storedIntent
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			log.Printf("redisstore: bad stored intent for %s: %v", sessionID, err)
			continue
		}
		if in.Fields == nil {
			if err := r.Delete(ctx, in.Collection, in.Key); err != nil {
				log.Printf("redisstore: intent delete %s/%s failed: %v", in.Collection, in.Key, err)
			}
		} else {
			if err := r.Patch(ctx, in.Collection, in.Key, in.Fields); err != nil {
				log.Printf("redisstore: intent patch %s/%s failed: %v", in.Collection, in.Key, err)
			}
		}
	}
	return r.rdb.Del(ctx, intentKey(sessionID)).Err()
}
