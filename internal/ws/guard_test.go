package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnGuardConcurrentLimit(t *testing.T) {
	g := NewConnGuard(2, 100)

	ok, _ := g.Allow("10.0.0.1")
	assert.True(t, ok)
	g.Record("10.0.0.1")
	ok, _ = g.Allow("10.0.0.1")
	assert.True(t, ok)
	g.Record("10.0.0.1")

	// Третье одновременное соединение с того же адреса не допускается
	ok, reason := g.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	// Другой адрес лимитом не затронут
	ok, _ = g.Allow("10.0.0.2")
	assert.True(t, ok)

	// После закрытия соединения слот освобождается
	g.Release("10.0.0.1")
	ok, _ = g.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestConnGuardAttemptWindow(t *testing.T) {
	g := NewConnGuard(100, 3)

	for i := 0; i < 3; i++ {
		ok, _ := g.Allow("10.0.0.5")
		assert.True(t, ok)
	}

	// Четвёртая попытка за минуту отклоняется, даже без открытых соединений
	ok, reason := g.Allow("10.0.0.5")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestConnGuardReleaseBelowZero(t *testing.T) {
	g := NewConnGuard(1, 100)

	// Release без Record не уводит счётчик в минус
	g.Release("10.0.0.9")
	ok, _ := g.Allow("10.0.0.9")
	assert.True(t, ok)
	g.Record("10.0.0.9")
	ok, _ = g.Allow("10.0.0.9")
	assert.False(t, ok)
}
