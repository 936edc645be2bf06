package store

import (
	"crypto/rand"
	"sync"
	"time"
)

// Алфавит упорядочен по ASCII, поэтому лексикографический порядок
// ключей совпадает с порядком их выдачи.
const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

var pushMu sync.Mutex
var lastPushMillis int64
var lastRand [12]int

// NewPushID выдаёт монотонно растущий 20-символьный ключ порядка записи:
// 8 символов — миллисекунды, 12 — случайный хвост. Внутри одной
// миллисекунды хвост инкрементируется, чтобы ключи не совпадали.
func NewPushID() string {
	pushMu.Lock()
	defer pushMu.Unlock()

	now := time.Now().UnixMilli()
	dup := now == lastPushMillis
	lastPushMillis = now

	var id [20]byte
	for i := 7; i >= 0; i-- {
		id[i] = pushChars[now%64]
		now /= 64
	}

	if dup {
		// та же миллисекунда — инкремент предыдущего хвоста
		for i := 11; i >= 0; i-- {
			if lastRand[i] == 63 {
				lastRand[i] = 0
				continue
			}
			lastRand[i]++
			break
		}
	} else {
		var buf [12]byte
		if _, err := rand.Read(buf[:]); err != nil {
			for i := range buf {
				buf[i] = byte(time.Now().UnixNano() >> (uint(i) * 5))
			}
		}
		for i := range lastRand {
			lastRand[i] = int(buf[i]) % 64
		}
	}

	for i := 0; i < 12; i++ {
		id[8+i] = pushChars[lastRand[i]]
	}
	return string(id[:])
}
