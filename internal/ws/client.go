package ws

import (
	"log"
	"net/http"
	"time"

	"medqueue/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Client представляет одно подключение через WebSocket.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Room string
	addr string
}

// readPump читает сообщения из WebSocket-соединения. Входящие сообщения —
// только ping поддержания жизни; все действия идут через HTTP API и
// возвращаются в сокет рассылкой.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
		GuardInstance.Release(c.addr)
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

// writePump отправляет сообщения клиенту из канала Send.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Канал закрыт.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			// Отправка ping-сообщения для поддержания соединения.
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Настраиваем апгрейдер для WebSocket с разрешением всех источников.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// QueueWebSocketHandler обновляет соединение до WebSocket и регистрирует
// клиента в комнате очереди. Лимиты подключений проверяются до апгрейда —
// отклонённое соединение не доходит до хаба.
// URL-пример: /api/queues/{id}/ws
func QueueWebSocketHandler(c *gin.Context) {
	room := c.Param("id")
	addr := c.ClientIP()

	if ok, reason := GuardInstance.Allow(addr); !ok {
		c.JSON(http.StatusTooManyRequests, response.ErrorResponse{
			Code:    "CONNECTION_LIMIT",
			Message: "Превышен лимит подключений",
			Details: reason,
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("Ошибка обновления до WebSocket:", err)
		return
	}
	GuardInstance.Record(addr)

	client := &Client{
		Hub:  HubInstance,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
		addr: addr,
	}
	HubInstance.register <- client

	go client.writePump()
	client.readPump()
}
