package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер кадра
	maxMessageSize = 64 * 1024
)

type IntentHandler interface {
	HandleIntent(client *Client, intent *Intent) error
}

// Client — одно WebSocket-соединение презентационного слоя.
// Соединение владеет своей сессией движка; OnClose обязан её погасить.
type Client struct {
	UID     string
	Conn    *websocket.Conn
	Send    chan []byte
	OnClose func()
}

func NewClient(conn *websocket.Conn, uid string) *Client {
	return &Client{
		UID:  uid,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
}

// ReadPump читает кадры-намерения от клиента
func (c *Client) ReadPump(handler IntentHandler) {
	defer func() {
		if c.OnClose != nil {
			c.OnClose()
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var intent Intent
		if err := c.Conn.ReadJSON(&intent); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if handler != nil {
			if err := handler.HandleIntent(c, &intent); err != nil {
				log.Printf("Error handling intent %s: %v", intent.Type, err)
				c.SendError(err.Error())
			}
		}
	}
}

// WritePump отправляет события клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent сериализует событие и ставит его в очередь соединения.
// Очередь переполнена — кадр отбрасывается: следующий снапшот всё
// равно принесёт полное состояние.
func (c *Client) SendEvent(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) SendError(errorMsg string) {
	_ = c.SendEvent(map[string]string{
		"type":  "error",
		"error": errorMsg,
	})
}
