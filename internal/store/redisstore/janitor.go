package redisstore

import (
	"context"
	"log"
	"strings"
	"time"
)

const expiredEvents = "__keyevent@*__:expired"

// Janitor следит за истечением heartbeat-ключей и применяет
// disconnect-safe намерения оборвавшихся сессий. Любой экземпляр
// сервера может держать janitor: применение намерений идемпотентно,
// а hash с намерениями удаляется после применения.
type Janitor struct {
	store  *Redisstore
	cancel context.CancelFunc
	done   chan struct{}
}

// NewJanitor включает keyspace-уведомления об истечении ключей и
// запускает наблюдателя.
func NewJanitor(r *Redisstore) (*Janitor, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// требует notify-keyspace-events с Ex; включаем сами, чтобы не
	// зависеть от конфигурации инстанса
	if err := r.rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		log.Printf("redisstore: ConfigSet notify-keyspace-events failed (set it manually): %v", err)
	}

	j := &Janitor{store: r, cancel: cancel, done: make(chan struct{})}
	go j.run(ctx)
	return j, nil
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)

	pubsub := j.store.rdb.PSubscribe(ctx, expiredEvents)
	defer pubsub.Close()

	prefix := aliveKey("")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !strings.HasPrefix(msg.Payload, prefix) {
				continue
			}
			sessionID := strings.TrimPrefix(msg.Payload, prefix)
			j.reap(sessionID)
		}
	}
}

func (j *Janitor) reap(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Printf("redisstore: session %s lost, applying disconnect intents", sessionID)
	if err := j.store.dischargeIntents(ctx, sessionID); err != nil {
		log.Printf("redisstore: reap of %s failed: %v", sessionID, err)
	}
}

func (j *Janitor) Stop() {
	j.cancel()
	<-j.done
}
