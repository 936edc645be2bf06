package session

import (
	"encoding/json"
	"log"

	"github.com/Socialmailz/TNB-Text/internal/store"
)

// subscribe — примитив сходимости: регистрирует интерес к коллекции и
// на каждый присланный снапшот вызывает apply с полностью готовым
// типизированным контейнером. apply исполняется на цикле сессии и
// заменяет локальное состояние атомарно — промежуточных состояний
// потребители не видят. Пустой или отсутствующий снапшот приходит как
// пустая map: это сброс, а не ошибка.
//
// Возвращённая отмена идемпотентна; Close сессии отзывает все
// подписки разом.
func subscribe[T any](s *Session, collection string, apply func(map[string]T)) func() {
	ch, cancel := s.store.Subscribe(collection)
	s.trackCancel(cancel)

	go func() {
		for snap := range ch {
			decoded := decode[T](collection, snap)
			s.post(func() { apply(decoded) })
		}
	}()
	return cancel
}

// decode переводит сырой снапшот в типизированный контейнер. Записи,
// не прошедшие разбор по схеме типа, пропускаются с записью в лог:
// границе доверять нельзя, дальше движка сырые данные не проходят.
func decode[T any](collection string, snap store.Snapshot) map[string]T {
	out := make(map[string]T, len(snap))
	for key, raw := range snap {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			log.Printf("reconcile %s: dropping malformed record %q: %v", collection, key, err)
			continue
		}
		out[key] = v
	}
	return out
}
