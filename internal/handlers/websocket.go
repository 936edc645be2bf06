package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Socialmailz/TNB-Text/internal/middleware"
	"github.com/Socialmailz/TNB-Text/internal/session"
	"github.com/Socialmailz/TNB-Text/internal/store"
	ws "github.com/Socialmailz/TNB-Text/internal/websocket"
)

// WebSocketHandler поднимает по сессии движка на каждое соединение
type WebSocketHandler struct {
	store         store.Store
	typingTimeout time.Duration
	upgrader      websocket.Upgrader
}

// typingTimeout <= 0 оставляет окно набора по умолчанию
func NewWebSocketHandler(st store.Store, typingTimeout time.Duration) *WebSocketHandler {
	return &WebSocketHandler{
		store:         st,
		typingTimeout: typingTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Проверить origin в prod
				return true
			},
		},
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	uid, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(conn, uid.(string))
	sess := session.New(h.store, client.UID)
	if h.typingTimeout > 0 {
		sess.TypingTimeout = h.typingTimeout
	}

	sess.OnEvent(func(ev session.Event) {
		// переполненная очередь не страшна: следующий снапшот полный
		_ = client.SendEvent(ev)
	})

	// закрытие соединения гасит сессию: все подписки и таймеры
	// отзываются до того, как этот uid сможет открыть новую
	client.OnClose = sess.Close

	sess.Start()

	go client.WritePump()
	go client.ReadPump(&intentRouter{sess: sess})
}
