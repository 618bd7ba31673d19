package queue

import (
	"errors"

	"medqueue/internal/models"
	"medqueue/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// Сдвиг первого прохода перестановки. Уводит все затронутые позиции в
// отрицательную зону, чтобы уникальный индекс (queue_id, position) не увидел
// промежуточных дубликатов при записи финальных значений.
const reorderOffset = 1000000

// Move перемещает одну запись на новую позицию, сдвигая промежуточные.
// Возвращает очередь записи и количество затронутых записей. Вся
// перестановка — одна транзакция, частичное применение невозможно.
func Move(entryID uint, newPosition int) (uint, int, error) {
	var entry models.QueueEntry
	if err := storage.DB.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrEntryNotFound
		}
		return 0, 0, err
	}

	affected := 0
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		entries, err := activeEntriesLocked(tx, entry.QueueID)
		if err != nil {
			return err
		}
		if newPosition < 1 || newPosition > len(entries) {
			return ErrInvalidOrdering
		}

		// Целевая перестановка считается целиком в памяти до записи.
		target := make(map[uint]int, len(entries))
		oldPosition := 0
		for _, e := range entries {
			if e.ID == entryID {
				oldPosition = e.Position
			}
		}
		if oldPosition == 0 {
			// Запись есть, но уже терминальная — двигать нечего.
			return ErrInvalidOrdering
		}
		for _, e := range entries {
			switch {
			case e.ID == entryID:
				target[e.ID] = newPosition
			case newPosition < oldPosition && e.Position >= newPosition && e.Position < oldPosition:
				target[e.ID] = e.Position + 1
			case newPosition > oldPosition && e.Position > oldPosition && e.Position <= newPosition:
				target[e.ID] = e.Position - 1
			default:
				target[e.ID] = e.Position
			}
		}

		affected, err = applyPositions(tx, entry.QueueID, entries, target)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return entry.QueueID, affected, nil
}

// BulkReorder записывает полную перестановку позиций очереди одной
// транзакцией. Пары (entry_id, position) обязаны покрыть все нетерминальные
// записи очереди и быть перестановкой 1..N, иначе ErrInvalidOrdering
// до какой-либо записи в базу.
func BulkReorder(queueID uint, positions map[uint]int) (int, error) {
	affected := 0
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		entries, err := activeEntriesLocked(tx, queueID)
		if err != nil {
			return err
		}
		if err := ValidatePermutation(entries, positions); err != nil {
			return err
		}
		affected, err = applyPositions(tx, queueID, entries, positions)
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// ValidatePermutation проверяет, что positions покрывает все записи ровно
// один раз и значения образуют 1..N без пропусков и повторов.
func ValidatePermutation(entries []models.QueueEntry, positions map[uint]int) error {
	if len(positions) != len(entries) {
		return ErrInvalidOrdering
	}
	seen := make(map[int]bool, len(positions))
	for _, e := range entries {
		p, ok := positions[e.ID]
		if !ok {
			return ErrInvalidOrdering
		}
		if p < 1 || p > len(entries) || seen[p] {
			return ErrInvalidOrdering
		}
		seen[p] = true
	}
	return nil
}

// activeEntriesLocked читает нетерминальные записи очереди с блокировкой
// строк до конца транзакции.
func activeEntriesLocked(tx *gorm.DB, queueID uint) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	if err := tx.
		Where("queue_id = ? AND status IN ?", queueID, nonTerminalStatuses).
		Order("position ASC").
		Clauses(lockForUpdate()).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// applyPositions пишет целевую перестановку: сперва общий сдвиг в минус одним
// UPDATE, затем финальные значения. Возвращает число реально перемещённых.
func applyPositions(tx *gorm.DB, queueID uint, entries []models.QueueEntry, target map[uint]int) (int, error) {
	moved := 0
	for _, e := range entries {
		if target[e.ID] != e.Position {
			moved++
		}
	}
	if moved == 0 {
		return 0, nil
	}

	if err := tx.Model(&models.QueueEntry{}).
		Where("queue_id = ? AND status IN ?", queueID, nonTerminalStatuses).
		UpdateColumn("position", gorm.Expr("position - ?", reorderOffset)).Error; err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := tx.Model(&models.QueueEntry{}).
			Where("id = ?", e.ID).
			UpdateColumn("position", target[e.ID]).Error; err != nil {
			return 0, err
		}
	}
	return moved, nil
}
