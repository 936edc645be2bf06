package models

import "time"

const (
	CallVoice = "voice"
	CallVideo = "video"
)

// CallSignal — содержимое слота calls/<uid получателя>.
// На получателя существует не больше одного сигнала: повторная запись
// молча затирает предыдущую (last-writer-wins, без арбитра).
type CallSignal struct {
	CallerID string `json:"caller_id"`
	Type     string `json:"type"`
}

// CallRecord — локальная запись истории звонков.
// Duration всегда 0: в этом ядре нет источника времени разговора.
type CallRecord struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Peer      string        `json:"peer"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}
