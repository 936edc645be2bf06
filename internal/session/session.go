package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Socialmailz/TNB-Text/internal/models"
	"github.com/Socialmailz/TNB-Text/internal/store"
)

// Имена коллекций общего хранилища
const (
	colDirectory = "directory"
	colGroups    = "groups"
	colRequests  = "requests"
	colCalls     = "calls"
)

// EventType — типы событий, уходящих презентационному слою
type EventType string

const (
	EventDirectory    EventType = "directory"
	EventGroups       EventType = "groups"
	EventRequests     EventType = "requests"
	EventThread       EventType = "thread"
	EventTyping       EventType = "typing"
	EventIncomingCall EventType = "incoming_call"
	EventCallState    EventType = "call_state"
)

type Event struct {
	Type    EventType   `json:"type"`
	ChatID  string      `json:"chat_id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Session — контекст одной авторизованной сессии: владеет всеми
// подписками, таймерами и локальными контейнерами и исполняет каждую
// реакцию на одной логической нити (цикл run). Сессии сходятся между
// собой только через общее хранилище, центрального арбитра нет.
//
// При смене владеющей личности сначала обязателен Close() старой
// сессии — он отзывает все подписки до того, как новая личность
// что-либо зарегистрирует.
type Session struct {
	uid   string
	store store.Store
	ssess store.Session

	// TypingTimeout — окно бездействия до автоочистки маркера набора.
	// Выставлять до Start.
	TypingTimeout time.Duration

	tasks chan func()
	quit  chan struct{}
	once  sync.Once

	cancelMu sync.Mutex
	cancels  []func()

	// защищает контейнеры от читателей вне цикла
	mu        sync.RWMutex
	directory map[string]models.UserRecord
	groups    map[string]models.Group
	requests  map[string]models.FriendRequest
	typing    map[string]map[string]bool
	threads   map[string][]models.Message

	// отмены подписок на открытые треды и их typing-наборы
	threadCancels map[string]func()
	typingCancels map[string]func()
	typingTimers  map[string]*time.Timer

	call    callState
	history []models.CallRecord

	notify func(Event)
}

// New создаёт сессию для uid поверх st. Ничего не пишет и не
// подписывается до Start.
func New(st store.Store, uid string) *Session {
	return &Session{
		uid:           uid,
		store:         st,
		TypingTimeout: 2500 * time.Millisecond,
		tasks:         make(chan func(), 256),
		quit:          make(chan struct{}),
		directory:     make(map[string]models.UserRecord),
		groups:        make(map[string]models.Group),
		requests:      make(map[string]models.FriendRequest),
		typing:        make(map[string]map[string]bool),
		threads:       make(map[string][]models.Message),
		threadCancels: make(map[string]func()),
		typingCancels: make(map[string]func()),
		typingTimers:  make(map[string]*time.Timer),
		call:          callState{phase: CallIdle},
	}
}

// UID — владелец сессии
func (s *Session) UID() string { return s.uid }

// OnEvent назначает получателя событий. Вызывается до Start; fn
// исполняется на цикле сессии и не должен блокировать.
func (s *Session) OnEvent(fn func(Event)) { s.notify = fn }

// Start запускает цикл, объявляет присутствие и подписывается на
// базовые коллекции. Ошибки хранилища здесь не фатальны и не мешают
// установлению сессии.
func (s *Session) Start() {
	go s.run()

	s.ssess = s.store.Session(s.uid)
	s.presenceUp()

	subscribe(s, colDirectory, s.applyDirectory)
	subscribe(s, colGroups, s.applyGroups)
	subscribe(s, colRequests, s.applyRequests)
	subscribe(s, colCalls, s.applyCalls)
}

func (s *Session) run() {
	for {
		select {
		case <-s.quit:
			return
		case fn := <-s.tasks:
			fn()
		}
	}
}

// post ставит задачу в цикл сессии, не дожидаясь исполнения
func (s *Session) post(fn func()) {
	select {
	case <-s.quit:
	case s.tasks <- fn:
	}
}

// do исполняет fn на цикле и дожидается результата
func (s *Session) do(fn func() error) error {
	done := make(chan error, 1)
	select {
	case <-s.quit:
		return ErrSessionClosed
	case s.tasks <- func() { done <- fn() }:
	}
	select {
	case <-s.quit:
		return ErrSessionClosed
	case err := <-done:
		return err
	}
}

func (s *Session) trackCancel(cancel func()) {
	s.cancelMu.Lock()
	s.cancels = append(s.cancels, cancel)
	s.cancelMu.Unlock()
}

func (s *Session) emit(ev Event) {
	if s.notify != nil {
		s.notify(ev)
	}
}

// Close отзывает все подписки и таймеры, делает best-effort запись
// offline и гасит сессию хранилища. Идемпотентен.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancelMu.Lock()
		cancels := s.cancels
		s.cancels = nil
		s.cancelMu.Unlock()
		for _, cancel := range cancels {
			cancel()
		}

		s.mu.Lock()
		for _, t := range s.typingTimers {
			t.Stop()
		}
		s.typingTimers = make(map[string]*time.Timer)
		s.mu.Unlock()

		s.presenceDown()

		if s.ssess != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.ssess.Close(ctx); err != nil {
				log.Printf("session %s: store session close: %v", s.uid, err)
			}
			cancel()
		}

		close(s.quit)
	})
}

// writeCtx — контекст для fire-and-forget записей из цикла
func writeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
