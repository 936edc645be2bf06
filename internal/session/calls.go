package session

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Socialmailz/TNB-Text/internal/models"
)

// CallPhase — фаза звонка на этой стороне
type CallPhase string

const (
	CallIdle      CallPhase = "idle"
	CallCalling   CallPhase = "calling"
	CallRinging   CallPhase = "ringing"
	CallConnected CallPhase = "connected"
)

type callState struct {
	phase       CallPhase
	peer        string
	kind        string
	incoming    *models.CallSignal
	startedAt   time.Time
	sawOutgoing bool
}

// CallStatus — текущее состояние звонка для презентационного слоя
type CallStatus struct {
	Phase CallPhase `json:"phase"`
	Peer  string    `json:"peer,omitempty"`
	Type  string    `json:"type,omitempty"`
}

// applyCalls реагирует на снапшот коллекции calls. Слот сессии — ключ
// её собственного uid; слот вызываемой стороны наблюдается во время
// исходящего звонка.
func (s *Session) applyCalls(signals map[string]models.CallSignal) {
	mine, present := signals[s.uid]

	switch {
	case present && s.call.phase == CallIdle:
		sig := mine
		s.setCall(callState{phase: CallRinging, peer: sig.CallerID, kind: sig.Type, incoming: &sig})
		s.emit(Event{Type: EventIncomingCall, Payload: sig})

	case present && s.call.phase == CallRinging && mine.CallerID != s.call.incoming.CallerID:
		// второй звонящий молча затёр первого: показываем последнего,
		// это принятая гонка last-writer-wins
		sig := mine
		s.setCall(callState{phase: CallRinging, peer: sig.CallerID, kind: sig.Type, incoming: &sig})
		s.emit(Event{Type: EventIncomingCall, Payload: sig})

	case present:
		// уже есть активный звонок: входящий сигнал не всплывает,
		// приоритет у первого звонка

	case !present && s.call.phase == CallRinging:
		// звонящий отозвал сигнал до ответа
		s.setCall(callState{phase: CallIdle})
		s.emitCallState()
	}

	// исходящая сторона: записанный сигнал должен сначала показаться в
	// снапшоте и лишь потом исчезнуть — исчезновение означает ответ
	if s.call.phase == CallCalling {
		if _, out := signals[s.call.peer]; out {
			s.mu.Lock()
			s.call.sawOutgoing = true
			s.mu.Unlock()
		} else if s.call.sawOutgoing {
			s.setCall(callState{phase: CallConnected, peer: s.call.peer, kind: s.call.kind, startedAt: time.Now()})
			s.emitCallState()
		}
	}
}

// InitiateCall начинает исходящий звонок: пишет сигнал в слот
// вызываемого. Пока сессия держит активный звонок, второй не начать.
func (s *Session) InitiateCall(peer, kind string) error {
	return s.do(func() error {
		if s.call.phase != CallIdle {
			return ErrCallBusy
		}
		if _, ok := s.directory[peer]; !ok {
			return ErrUnknownUser
		}

		ctx, cancel := writeCtx()
		defer cancel()
		err := s.store.Set(ctx, colCalls, peer, models.CallSignal{CallerID: s.uid, Type: kind})
		if err != nil {
			return err
		}

		s.setCall(callState{phase: CallCalling, peer: peer, kind: kind})
		s.emitCallState()
		return nil
	})
}

// AcceptCall отвечает на входящий: очищает собственный слот и
// переходит в connected.
func (s *Session) AcceptCall() error {
	return s.do(func() error {
		if s.call.phase != CallRinging {
			return ErrNoIncomingCall
		}
		in := *s.call.incoming

		ctx, cancel := writeCtx()
		defer cancel()
		if err := s.store.Delete(ctx, colCalls, s.uid); err != nil {
			log.Printf("call %s: accept slot clear failed: %v", s.uid, err)
		}

		s.setCall(callState{phase: CallConnected, peer: in.CallerID, kind: in.Type, startedAt: time.Now()})
		s.emitCallState()
		return nil
	})
}

// DeclineCall отклоняет входящий и чистит слоты обеих сторон
func (s *Session) DeclineCall() error {
	return s.do(func() error {
		if s.call.phase != CallRinging {
			return ErrNoIncomingCall
		}
		peer := s.call.incoming.CallerID
		s.clearBothSlots(peer)
		s.setCall(callState{phase: CallIdle})
		s.emitCallState()
		return nil
	})
}

// EndCall завершает текущий звонок с любой фазы. Состоявшийся разговор
// попадает в локальную историю; Duration остаётся нулевой — источника
// времени разговора в этом ядре нет.
func (s *Session) EndCall() error {
	return s.do(func() error {
		if s.call.phase == CallIdle {
			return nil
		}

		if s.call.phase == CallConnected {
			rec := models.CallRecord{
				ID:        uuid.NewString(),
				Type:      s.call.kind,
				Peer:      s.call.peer,
				Timestamp: s.call.startedAt,
			}
			s.mu.Lock()
			s.history = append(s.history, rec)
			s.mu.Unlock()
		}

		s.clearBothSlots(s.call.peer)
		s.setCall(callState{phase: CallIdle})
		s.emitCallState()
		return nil
	})
}

// clearBothSlots — защитная двойная очистка: в слот могла писать любая
// из сторон, смотря кто инициировал.
func (s *Session) clearBothSlots(peer string) {
	ctx, cancel := writeCtx()
	defer cancel()
	if err := s.store.Delete(ctx, colCalls, s.uid); err != nil {
		log.Printf("call %s: own slot clear failed: %v", s.uid, err)
	}
	if peer != "" {
		if err := s.store.Delete(ctx, colCalls, peer); err != nil {
			log.Printf("call %s: peer slot clear failed: %v", s.uid, err)
		}
	}
}

func (s *Session) setCall(st callState) {
	s.mu.Lock()
	s.call = st
	s.mu.Unlock()
}

func (s *Session) emitCallState() {
	s.emit(Event{Type: EventCallState, Payload: s.Call()})
}

// Call — текущее состояние звонка
func (s *Session) Call() CallStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CallStatus{Phase: s.call.phase, Peer: s.call.peer, Type: s.call.kind}
}

// IncomingCall — сигнал, ждущий ответа, либо nil
func (s *Session) IncomingCall() *models.CallSignal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.call.phase != CallRinging || s.call.incoming == nil {
		return nil
	}
	sig := *s.call.incoming
	return &sig
}

// CallHistory — локально накопленные записи завершённых звонков
func (s *Session) CallHistory() []models.CallRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CallRecord, len(s.history))
	copy(out, s.history)
	return out
}
