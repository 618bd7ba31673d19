package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Типы событий, рассылаемых в комнаты. Каждое событие несёт полное текущее
// состояние записи, а не диф — состояние подписчиков сходится даже при
// потере отдельных сообщений.
const (
	EventEntryCreated = "entry.created"
	EventEntryUpdated = "entry.updated"
	EventQueueState   = "queue.state"
)

// WSMessage — конверт события для комнаты очереди. Origin — идентификатор
// процесса-источника, по нему мост отбрасывает эхо собственных событий.
type WSMessage struct {
	EventType string      `json:"event_type"`
	Room      string      `json:"room"`
	Origin    string      `json:"origin"`
	Data      interface{} `json:"data"`
}

// BroadcastMessage представляет сообщение для рассылки в определённую комнату.
type BroadcastMessage struct {
	Room    string
	Message []byte
}

// Hub хранит подключения клиентов, сгруппированные по комнатам (очередям).
type Hub struct {
	// Для каждой комнаты храним множество подключений.
	clients map[string]map[*Client]bool
	// Канал для регистрации нового клиента.
	register chan *Client
	// Канал для удаления клиента.
	unregister chan *Client
	// Канал для трансляции сообщений по конкретной комнате.
	broadcast chan BroadcastMessage
	// Mutex для защиты карты клиентов.
	mu sync.RWMutex
}

// Создаем глобальный экземпляр хаба.
var HubInstance = NewHub()

// NewHub создает новый Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage, 64),
	}
}

// Run запускает цикл обработки каналов хаба. Единственный цикл владеет
// картой комнат, поэтому доставка в рамках одной комнаты упорядочена.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Room] == nil {
				h.clients[client.Room] = make(map[*Client]bool)
			}
			h.clients[client.Room][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.Room]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.Room)
					}
				}
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[message.Room]; ok {
				for client := range clients {
					select {
					case client.Send <- message.Message:
					default:
						// Медленный клиент не должен задерживать остальных:
						// переполненный буфер — отключаем только его.
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastWSMessage рассылает событие локальным подписчикам комнаты и
// передаёт его мосту для доставки на другие экземпляры сервера.
func (h *Hub) BroadcastWSMessage(msg WSMessage) {
	if msg.Origin == "" {
		msg.Origin = InstanceID
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Println("Ошибка сериализации WS события:", err)
		return
	}
	h.broadcast <- BroadcastMessage{Room: msg.Room, Message: payload}
	if BridgeInstance != nil {
		BridgeInstance.Publish(msg.Room, payload)
	}
}

// deliverLocal кладёт уже сериализованное событие в локальную рассылку.
// Используется мостом для событий, пришедших с других экземпляров.
func (h *Hub) deliverLocal(room string, message []byte) {
	h.broadcast <- BroadcastMessage{Room: room, Message: message}
}

// RoomSize возвращает число подключений в комнате.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[room])
}
