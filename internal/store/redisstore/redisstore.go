package redisstore

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/Socialmailz/TNB-Text/internal/store"
)

const keyPrefix = "rtdb"

// Redisstore — продакшен-бэкенд общего хранилища поверх Redis.
// Коллекция — это hash (rtdb:data:<collection>), уведомление об
// изменении — PUBLISH в rtdb:notify:<collection>; подписчик по каждому
// уведомлению перечитывает hash целиком, так что наружу всегда уходит
// полный снапшот, а не дифф.
type Redisstore struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Redisstore {
	return &Redisstore{rdb: rdb}
}

func dataKey(collection string) string   { return keyPrefix + ":data:" + collection }
func notifyKey(collection string) string { return keyPrefix + ":notify:" + collection }
func aliveKey(sessionID string) string   { return keyPrefix + ":alive:" + sessionID }
func intentKey(sessionID string) string  { return keyPrefix + ":intents:" + sessionID }

func (r *Redisstore) Set(ctx context.Context, collection, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return store.ErrBadPayload
	}
	if err := r.rdb.HSet(ctx, dataKey(collection), key, raw).Err(); err != nil {
		return err
	}
	return r.rdb.Publish(ctx, notifyKey(collection), key).Err()
}

func (r *Redisstore) Get(ctx context.Context, collection, key string) (json.RawMessage, bool, error) {
	raw, err := r.rdb.HGet(ctx, dataKey(collection), key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(raw), true, nil
}

// Patch читает, накладывает поля и перезаписывает. Между чтением и
// записью нет блокировки: параллельный Patch по тому же адресу
// разрешается по last-writer-wins.
func (r *Redisstore) Patch(ctx context.Context, collection, key string, fields map[string]interface{}) error {
	merged := make(map[string]interface{})
	prev, err := r.rdb.HGet(ctx, dataKey(collection), key).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	if err == nil {
		_ = json.Unmarshal([]byte(prev), &merged)
	}
	for k, v := range fields {
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return store.ErrBadPayload
	}
	if err := r.rdb.HSet(ctx, dataKey(collection), key, raw).Err(); err != nil {
		return err
	}
	return r.rdb.Publish(ctx, notifyKey(collection), key).Err()
}

func (r *Redisstore) Delete(ctx context.Context, collection, key string) error {
	if err := r.rdb.HDel(ctx, dataKey(collection), key).Err(); err != nil {
		return err
	}
	return r.rdb.Publish(ctx, notifyKey(collection), key).Err()
}

func (r *Redisstore) DeleteAll(ctx context.Context, collection string) error {
	if err := r.rdb.Del(ctx, dataKey(collection)).Err(); err != nil {
		return err
	}
	return r.rdb.Publish(ctx, notifyKey(collection), "*").Err()
}

func (r *Redisstore) Subscribe(collection string) (<-chan store.Snapshot, func()) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	out := make(chan store.Snapshot, 64)

	pubsub := r.rdb.Subscribe(ctx, notifyKey(collection))

	go func() {
		defer close(out)

		// первый снапшот сразу, до каких-либо уведомлений
		r.deliver(ctx, collection, out)

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				r.deliver(ctx, collection, out)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			_ = pubsub.Close()
		})
	}
	return out, cancel
}

func (r *Redisstore) deliver(ctx context.Context, collection string, out chan<- store.Snapshot) {
	vals, err := r.rdb.HGetAll(ctx, dataKey(collection)).Result()
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("redisstore: snapshot of %s failed: %v", collection, err)
		}
		return
	}

	snap := make(store.Snapshot, len(vals))
	for k, v := range vals {
		snap[k] = json.RawMessage(v)
	}

	select {
	case out <- snap:
	case <-ctx.Done():
	default:
		// потребитель отстал: пропускаем, следующий снапшот полный
	}
}
