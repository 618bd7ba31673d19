package queue

import (
	"errors"
	"strings"
	"time"

	"medqueue/internal/models"
	"medqueue/internal/storage"

	"gorm.io/gorm"
)

// DateLayout — формат календарной даты дневной очереди.
const DateLayout = "2006-01-02"

// TicketRequest — данные для выдачи нового талона.
type TicketRequest struct {
	SpecialistID uint
	Date         string // 2006-01-02; пустая строка — сегодня
	Source       string
	PatientID    *uint
	PatientName  string
	Phone        string
	ExternalID   string
}

// IssueTicket выдаёт следующий номер талона в дневной очереди специалиста
// и создаёт запись в одной транзакции. Очередь при необходимости создаётся
// лениво. При любом сбое транзакции номер не считается израсходованным.
func IssueTicket(req TicketRequest) (*models.QueueEntry, error) {
	entry, err := issueTicketTx(storage.DB, req)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// issueTicketTx выполняет выдачу внутри переданного контекста БД: отдельный
// вызов заворачивает её в собственную транзакцию, CompleteJoinSession —
// в общую транзакцию со списанием использования токена.
func issueTicketTx(db *gorm.DB, req TicketRequest) (*models.QueueEntry, error) {
	if req.Date == "" {
		req.Date = time.Now().Format(DateLayout)
	}
	if req.Source == "" {
		req.Source = models.SourceDesk
	}

	var entry models.QueueEntry
	err := db.Transaction(func(tx *gorm.DB) error {
		q, err := getOrCreateDailyQueue(tx, req.SpecialistID, req.Date)
		if err != nil {
			return err
		}

		// Атомарный инкремент счётчика: строка очереди блокируется на время
		// UPDATE, конкурирующие выдачи сериализуются на ней.
		var newNumber int
		if err := tx.Raw(
			"UPDATE daily_queues SET last_ticket = last_ticket + 1 WHERE id = ? RETURNING last_ticket",
			q.ID,
		).Scan(&newNumber).Error; err != nil {
			return err
		}

		var maxPosition int
		row := tx.Model(&models.QueueEntry{}).
			Where("queue_id = ? AND status IN ?", q.ID, nonTerminalStatuses).
			Select("COALESCE(MAX(position),0)").Row()
		if err := row.Scan(&maxPosition); err != nil {
			return err
		}

		entry = models.QueueEntry{
			QueueID:      q.ID,
			TicketNumber: newNumber,
			Status:       models.StatusWaiting,
			Source:       req.Source,
			PatientID:    req.PatientID,
			PatientName:  req.PatientName,
			Phone:        req.Phone,
			ExternalID:   req.ExternalID,
			Position:     maxPosition + 1,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// getOrCreateDailyQueue находит или лениво создаёт дневную очередь.
// Гонку двух создателей разрешает уникальный индекс (specialist_id, date):
// проигравший получает нарушение констрейнта и перечитывает строку.
func getOrCreateDailyQueue(tx *gorm.DB, specialistID uint, date string) (*models.DailyQueue, error) {
	var q models.DailyQueue
	err := tx.Where("specialist_id = ? AND date = ?", specialistID, date).First(&q).Error
	if err == nil {
		return &q, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	q = models.DailyQueue{
		SpecialistID: specialistID,
		Date:         date,
		LastTicket:   0,
		IsActive:     true,
	}
	if err := tx.Create(&q).Error; err != nil {
		if isUniqueViolation(err) {
			// Очередь уже создана конкурентом — перечитываем.
			if err := tx.Where("specialist_id = ? AND date = ?", specialistID, date).First(&q).Error; err != nil {
				return nil, err
			}
			return &q, nil
		}
		return nil, err
	}
	return &q, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Код 23505 у postgres; драйвер пробрасывает его в текст ошибки.
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
