package ws

import (
	"encoding/json"
	"log"
	"strings"

	"medqueue/internal/storage"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Префикс каналов Redis pub/sub для событий комнат.
const bridgeChannelPrefix = "queue_events:"

// InstanceID — идентификатор этого процесса в конверте события.
// По нему мост отличает чужие события от эха собственных.
var InstanceID = uuid.NewString()

// Bridge ретранслирует локальные события комнат другим экземплярам сервера
// через Redis pub/sub и принимает их события в локальный хаб. Если Redis
// недоступен при старте, мост отключается и сервер работает в режиме
// одиночного экземпляра — это деградация, а не фатальная ошибка.
type Bridge struct {
	rdb     *redis.Client
	hub     *Hub
	enabled bool
}

// Глобальный экземпляр моста; nil до InitBridge.
var BridgeInstance *Bridge

// InitBridge подключает мост к Redis и запускает приём чужих событий.
func InitBridge(hub *Hub) *Bridge {
	b := &Bridge{rdb: storage.RedisClient, hub: hub}
	if err := b.rdb.Ping(storage.Ctx).Err(); err != nil {
		log.Println("Redis недоступен, межсерверная рассылка отключена:", err)
		BridgeInstance = b
		return b
	}
	b.enabled = true
	go b.listen()
	BridgeInstance = b
	log.Println("Межсерверная рассылка включена, instance:", InstanceID)
	return b
}

// Enabled сообщает, работает ли межсерверная доставка.
func (b *Bridge) Enabled() bool {
	return b.enabled
}

// Publish отправляет сериализованное событие в канал комнаты. Отправка
// асинхронная и не задерживает запрос, вызвавший событие.
func (b *Bridge) Publish(room string, payload []byte) {
	if !b.enabled {
		return
	}
	go func() {
		if err := b.rdb.Publish(storage.Ctx, bridgeChannelPrefix+room, payload).Err(); err != nil {
			log.Println("Ошибка публикации события в Redis:", err)
		}
	}()
}

// listen принимает события всех комнат со всех экземпляров.
func (b *Bridge) listen() {
	pubsub := b.rdb.PSubscribe(storage.Ctx, bridgeChannelPrefix+"*")
	defer pubsub.Close()
	for msg := range pubsub.Channel() {
		b.handleMessage(msg.Channel, []byte(msg.Payload))
	}
}

// handleMessage доставляет чужое событие в локальный хаб. События с
// собственным origin отбрасываются: их уже доставила локальная рассылка.
// Возвращает true, если событие ушло локальным подписчикам.
func (b *Bridge) handleMessage(channel string, payload []byte) bool {
	var env struct {
		Origin string `json:"origin"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Println("Ошибка разбора события моста:", err)
		return false
	}
	if env.Origin == InstanceID {
		return false
	}
	room := strings.TrimPrefix(channel, bridgeChannelPrefix)
	b.hub.deliverLocal(room, payload)
	return true
}
