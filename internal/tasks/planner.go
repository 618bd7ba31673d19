package tasks

import (
	"log"
	"strconv"
	"time"

	"medqueue/internal/models"
	"medqueue/internal/storage"
	"medqueue/internal/ws"

	"github.com/robfig/cron/v3"
)

// CloseExpiredQueues закрывает дневные очереди, у которых прошло время
// автозакрытия, и сообщает об этом в комнаты очередей.
func CloseExpiredQueues() {
	now := time.Now()

	var queues []models.DailyQueue
	if err := storage.DB.
		Where("is_active = ? AND auto_close_time IS NOT NULL AND auto_close_time < ?", true, now).
		Find(&queues).Error; err != nil {
		log.Println("Ошибка при поиске очередей для закрытия:", err)
		return
	}

	for _, q := range queues {
		if err := storage.DB.Model(&models.DailyQueue{}).
			Where("id = ? AND is_active = ?", q.ID, true).
			Update("is_active", false).Error; err != nil {
			log.Println("Ошибка закрытия очереди", q.ID, ":", err)
			continue
		}

		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			EventType: ws.EventQueueState,
			Room:      strconv.Itoa(int(q.ID)),
			Data: map[string]interface{}{
				"queue_id":  q.ID,
				"is_active": false,
			},
		})
		log.Printf("Очередь %d закрыта по расписанию.\n", q.ID)
	}
}

// CleanOldJoinTokens удаляет join-токены, истёкшие более 30 дней назад.
// Свежеистёкшие токены сохраняются для аудита.
func CleanOldJoinTokens() {
	threshold := time.Now().Add(-30 * 24 * time.Hour)
	if err := storage.DB.Where("expires_at < ?", threshold).Delete(&models.JoinToken{}).Error; err != nil {
		log.Println("Ошибка при удалении устаревших токенов:", err)
	} else {
		log.Println("Устаревшие join-токены успешно удалены.")
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Задача закрытия очередей каждую минуту.
	_, err := c.AddFunc("0 * * * * *", CloseExpiredQueues)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CloseExpiredQueues:", err)
	}

	// Задача очистки устаревших токенов каждый день в 03:00.
	_, err = c.AddFunc("0 0 3 * * *", CleanOldJoinTokens)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldJoinTokens:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
