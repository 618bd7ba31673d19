package queue

import (
	"testing"

	"medqueue/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func makeEntries(ids ...uint) []models.QueueEntry {
	entries := make([]models.QueueEntry, 0, len(ids))
	for i, id := range ids {
		entries = append(entries, models.QueueEntry{
			Model:    gorm.Model{ID: id},
			Position: i + 1,
		})
	}
	return entries
}

func TestValidatePermutation(t *testing.T) {
	entries := makeEntries(10, 20, 30)

	// Корректная перестановка
	assert.NoError(t, ValidatePermutation(entries, map[uint]int{10: 3, 20: 1, 30: 2}))
	// Тождественная перестановка тоже корректна
	assert.NoError(t, ValidatePermutation(entries, map[uint]int{10: 1, 20: 2, 30: 3}))

	// Не все записи покрыты
	assert.ErrorIs(t, ValidatePermutation(entries, map[uint]int{10: 1, 20: 2}), ErrInvalidOrdering)
	// Лишняя запись
	assert.ErrorIs(t, ValidatePermutation(entries,
		map[uint]int{10: 1, 20: 2, 30: 3, 40: 4}), ErrInvalidOrdering)
	// Дубликат позиции
	assert.ErrorIs(t, ValidatePermutation(entries,
		map[uint]int{10: 1, 20: 1, 30: 2}), ErrInvalidOrdering)
	// Позиция вне диапазона 1..N
	assert.ErrorIs(t, ValidatePermutation(entries,
		map[uint]int{10: 0, 20: 1, 30: 2}), ErrInvalidOrdering)
	assert.ErrorIs(t, ValidatePermutation(entries,
		map[uint]int{10: 1, 20: 2, 30: 4}), ErrInvalidOrdering)
	// Чужая запись вместо одной из записей очереди
	assert.ErrorIs(t, ValidatePermutation(entries,
		map[uint]int{10: 1, 20: 2, 99: 3}), ErrInvalidOrdering)

	// Пустая очередь с пустой перестановкой
	assert.NoError(t, ValidatePermutation(nil, map[uint]int{}))
}
