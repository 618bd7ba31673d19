package ws

import (
	"fmt"
	"sync"
	"time"
)

// Пороговые значения лимитов подключений на один адрес источника.
const (
	maxConnsPerAddr    = 8
	maxAttemptsPerMin  = 30
	guardSweepInterval = time.Minute
)

// ConnGuard ограничивает WebSocket-подключения по адресу источника:
// порог одновременных соединений и порог новых попыток за скользящую
// минуту. Состояние живёт в памяти процесса, при рестарте лимиты
// сбрасываются — это допустимо.
type ConnGuard struct {
	mu       sync.Mutex
	conns    map[string]int
	attempts map[string][]time.Time

	maxConns    int
	maxAttempts int
	window      time.Duration
}

// Глобальный экземпляр для обработчика WebSocket.
var GuardInstance = NewConnGuard(maxConnsPerAddr, maxAttemptsPerMin)

// NewConnGuard создаёт ограничитель и запускает периодическую очистку
// устаревших записей.
func NewConnGuard(maxConns, maxAttempts int) *ConnGuard {
	g := &ConnGuard{
		conns:       make(map[string]int),
		attempts:    make(map[string][]time.Time),
		maxConns:    maxConns,
		maxAttempts: maxAttempts,
		window:      time.Minute,
	}
	go g.sweep()
	return g
}

// Allow проверяет оба порога и фиксирует попытку подключения.
func (g *ConnGuard) Allow(addr string) (bool, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.conns[addr] >= g.maxConns {
		return false, fmt.Sprintf("не более %d одновременных подключений", g.maxConns)
	}

	now := time.Now()
	recent := g.prune(addr, now)
	if len(recent) >= g.maxAttempts {
		return false, fmt.Sprintf("не более %d попыток подключения в минуту", g.maxAttempts)
	}
	g.attempts[addr] = append(recent, now)
	return true, ""
}

// Record учитывает установленное соединение.
func (g *ConnGuard) Record(addr string) {
	g.mu.Lock()
	g.conns[addr]++
	g.mu.Unlock()
}

// Release снимает учёт закрытого соединения.
func (g *ConnGuard) Release(addr string) {
	g.mu.Lock()
	if g.conns[addr] > 0 {
		g.conns[addr]--
	}
	if g.conns[addr] == 0 {
		delete(g.conns, addr)
	}
	g.mu.Unlock()
}

// prune отбрасывает попытки старше скользящего окна. Вызывается под mu.
func (g *ConnGuard) prune(addr string, now time.Time) []time.Time {
	cutoff := now.Add(-g.window)
	kept := g.attempts[addr][:0]
	for _, t := range g.attempts[addr] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// sweep периодически удаляет адреса без свежих попыток.
func (g *ConnGuard) sweep() {
	ticker := time.NewTicker(guardSweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		g.mu.Lock()
		for addr := range g.attempts {
			if recent := g.prune(addr, now); len(recent) == 0 {
				delete(g.attempts, addr)
			} else {
				g.attempts[addr] = recent
			}
		}
		g.mu.Unlock()
	}
}
