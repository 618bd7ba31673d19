package queue

import (
	"errors"
	"time"

	"medqueue/internal/models"
	"medqueue/internal/storage"

	"gorm.io/gorm"
)

// Схема переходов статусов. Из терминальных статусов переходов нет.
var allowedTransitions = map[string][]string{
	models.StatusWaiting: {models.StatusServing, models.StatusSkipped, models.StatusCancelled},
	models.StatusServing: {models.StatusDone, models.StatusCancelled},
}

var nonTerminalStatuses = []string{models.StatusWaiting, models.StatusServing}

// TransitionAllowed сообщает, разрешён ли переход from → to.
func TransitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func isTerminal(status string) bool {
	switch status {
	case models.StatusDone, models.StatusSkipped, models.StatusCancelled:
		return true
	}
	return false
}

// Transition переводит запись в новый статус и проставляет отметки времени.
// Обновление условное (WHERE status = текущий), поэтому из двух конкурентных
// вызовов по одной записи ровно один завершается успехом, второй получает
// ErrConflictingTransition. При уходе записи в терминальный статус позиции
// оставшихся активных записей уплотняются до 1..N в той же транзакции.
func Transition(entryID uint, newStatus, windowLabel string) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	if err := storage.DB.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	if !TransitionAllowed(entry.Status, newStatus) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if !isTerminal(newStatus) {
			updates := map[string]interface{}{"status": newStatus}
			if newStatus == models.StatusServing {
				updates["called_at"] = now
				updates["started_at"] = now
				if windowLabel != "" {
					updates["window_label"] = windowLabel
				}
			}
			res := tx.Model(&models.QueueEntry{}).
				Where("id = ? AND status = ?", entryID, entry.Status).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrConflictingTransition
			}
			return nil
		}

		// Условное обновление возвращает позицию строки на момент фиксации:
		// конкурентная перестановка могла сдвинуть запись после чтения выше,
		// уплотнять надо освободившуюся позицию, а не прочитанную.
		var freed int
		res := tx.Raw(
			"UPDATE queue_entries SET status = ?, finished_at = ?, updated_at = ? WHERE id = ? AND status = ? RETURNING position",
			newStatus, now, now, entryID, entry.Status,
		).Scan(&freed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflictingTransition
		}

		// Запись покинула активную часть очереди: сама получает ноль как
		// признак выбытия, позиции оставшихся уплотняются.
		if err := tx.Model(&models.QueueEntry{}).
			Where("id = ?", entryID).
			UpdateColumn("position", 0).Error; err != nil {
			return err
		}

		// Сдвиг в два прохода, как в перестановках: прямой декремент
		// нескольких строк ловит ложное нарушение уникального индекса
		// при неудачном физическом порядке обновления.
		shift := tx.Model(&models.QueueEntry{}).
			Where("queue_id = ? AND status IN ? AND position > ?", entry.QueueID, nonTerminalStatuses, freed).
			UpdateColumn("position", gorm.Expr("position - ?", reorderOffset))
		if shift.Error != nil {
			return shift.Error
		}
		if shift.RowsAffected > 0 {
			if err := tx.Model(&models.QueueEntry{}).
				Where("queue_id = ? AND position < 0", entry.QueueID).
				UpdateColumn("position", gorm.Expr("position + ?", reorderOffset-1)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := storage.DB.First(&entry, entryID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
