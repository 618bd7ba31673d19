package queue

import (
	"errors"
	"time"

	"medqueue/internal/models"
	"medqueue/internal/storage"

	"gorm.io/gorm"
)

// GetQueue возвращает дневную очередь по ID.
func GetQueue(queueID uint) (*models.DailyQueue, error) {
	var q models.DailyQueue
	if err := storage.DB.Preload("Specialist.Department").First(&q, queueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}
	return &q, nil
}

// BoardEntries возвращает нетерминальные записи очереди в порядке вызова.
func BoardEntries(queueID uint) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	if err := storage.DB.
		Where("queue_id = ? AND status IN ?", queueID, nonTerminalStatuses).
		Order("position ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// OpenDay отмечает начало приёма. С этого момента окно онлайн-записи
// по QR-токенам закрыто, талоны выдаёт только регистратура.
func OpenDay(queueID uint) (*models.DailyQueue, error) {
	q, err := GetQueue(queueID)
	if err != nil {
		return nil, err
	}
	if q.OpenedAt == nil {
		now := time.Now()
		if err := storage.DB.Model(q).Update("opened_at", now).Error; err != nil {
			return nil, err
		}
		q.OpenedAt = &now
	}
	return q, nil
}

// ListQueues возвращает дневные очереди на дату.
func ListQueues(date string) ([]models.DailyQueue, error) {
	if date == "" {
		date = time.Now().Format(DateLayout)
	}
	var queues []models.DailyQueue
	if err := storage.DB.Preload("Specialist.Department").
		Where("date = ?", date).
		Find(&queues).Error; err != nil {
		return nil, err
	}
	return queues, nil
}
