package session

import (
	"log"
	"sort"
	"time"

	"github.com/Socialmailz/TNB-Text/internal/models"
)

// presenceUp пишет online и тем же шагом регистрирует disconnect-safe
// намерение: offline применит само хранилище, если сессия оборвётся
// без явного завершения. Любая ошибка здесь не фатальна — сессия
// устанавливается в любом случае.
func (s *Session) presenceUp() {
	ctx, cancel := writeCtx()
	defer cancel()

	now := time.Now()
	err := s.store.Patch(ctx, colDirectory, s.uid, map[string]interface{}{
		"status":       models.StatusOnline,
		"last_changed": now,
	})
	if err != nil {
		log.Printf("presence %s: online write failed: %v", s.uid, err)
	}

	// last_changed в намерении ставится при регистрации: точнее всё
	// равно не выйдет, производный online-набор и так отстаёт на
	// латентность обнаружения обрыва
	err = s.ssess.OnDisconnectPatch(colDirectory, s.uid, map[string]interface{}{
		"status":       models.StatusOffline,
		"last_changed": now,
	})
	if err != nil {
		log.Printf("presence %s: disconnect intent failed: %v", s.uid, err)
	}
}

// presenceDown — best-effort явная запись offline при выходе.
// Гарантию даёт не она, а disconnect-намерение.
func (s *Session) presenceDown() {
	if s.ssess == nil {
		return
	}

	ctx, cancel := writeCtx()
	defer cancel()

	err := s.store.Patch(ctx, colDirectory, s.uid, map[string]interface{}{
		"status":       models.StatusOffline,
		"last_changed": time.Now(),
	})
	if err != nil {
		log.Printf("presence %s: offline write failed: %v", s.uid, err)
	}
}

// Online — производный набор: все записи directory со статусом online.
// Пересчитывается из каждого снапшота и может отставать от настоящей
// связности на латентность обнаружения обрыва хранилищем.
func (s *Session) Online() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0)
	for uid, rec := range s.directory {
		if rec.Status == models.StatusOnline {
			out = append(out, uid)
		}
	}
	sort.Strings(out)
	return out
}
