package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"medqueue/internal/models"
	"medqueue/internal/queue"
	"medqueue/internal/response"
	"medqueue/internal/ws"

	"github.com/gin-gonic/gin"
)

// abortQueueError сопоставляет доменные ошибки пакета queue с HTTP-ответом.
// Конфликты отдаются отдельным кодом, чтобы клиент обновил состояние,
// а не повторял запрос вслепую.
func abortQueueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queue.ErrQueueNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "QUEUE_NOT_FOUND",
			Message: "Очередь не найдена",
		})
	case errors.Is(err, queue.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "ENTRY_NOT_FOUND",
			Message: "Запись в очереди не найдена",
		})
	case errors.Is(err, queue.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_TRANSITION",
			Message: "Недопустимый переход статуса",
		})
	case errors.Is(err, queue.ErrConflictingTransition):
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "TRANSITION_CONFLICT",
			Message: "Запись уже изменена другим сотрудником, обновите состояние",
		})
	case errors.Is(err, queue.ErrInvalidOrdering):
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ORDERING",
			Message: "Позиции не образуют перестановку 1..N",
		})
	case errors.Is(err, queue.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "TOKEN_NOT_FOUND",
			Message: "Токен записи не найден",
		})
	case errors.Is(err, queue.ErrTokenExpired):
		c.JSON(http.StatusGone, response.ErrorResponse{
			Code:    "TOKEN_EXPIRED",
			Message: "Срок действия токена истёк, получите новый QR-код",
		})
	case errors.Is(err, queue.ErrTokenExhausted):
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "TOKEN_EXHAUSTED",
			Message: "Лимит записей по этому токену исчерпан",
		})
	case errors.Is(err, queue.ErrJoinWindowClosed):
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "JOIN_WINDOW_CLOSED",
			Message: "Приём уже открыт, запись возможна только в регистратуре",
		})
	case errors.Is(err, queue.ErrSessionExpired):
		c.JSON(http.StatusGone, response.ErrorResponse{
			Code:    "SESSION_EXPIRED",
			Message: "Сессия записи истекла, начните запись заново",
		})
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка сервера",
			Details: err.Error(),
		})
	}
}

// EntryView — полное состояние записи в событиях рассылки и ответах API.
// События несут состояние целиком, поэтому подписчики сходятся к последнему
// известному состоянию даже без гарантий порядка между экземплярами.
type EntryView struct {
	EntryID      uint       `json:"entry_id"`
	QueueID      uint       `json:"queue_id"`
	TicketNumber int        `json:"ticket_number"`
	Status       string     `json:"status"`
	Source       string     `json:"source"`
	PatientName  string     `json:"patient_name"`
	WindowLabel  string     `json:"window_label,omitempty"`
	Position     int        `json:"position"`
	CalledAt     *time.Time `json:"called_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func entryView(e *models.QueueEntry) EntryView {
	return EntryView{
		EntryID:      e.ID,
		QueueID:      e.QueueID,
		TicketNumber: e.TicketNumber,
		Status:       e.Status,
		Source:       e.Source,
		PatientName:  e.PatientName,
		WindowLabel:  e.WindowLabel,
		Position:     e.Position,
		CalledAt:     e.CalledAt,
		FinishedAt:   e.FinishedAt,
	}
}

func roomID(queueID uint) string {
	return strconv.Itoa(int(queueID))
}

// broadcastEntry рассылает событие по записи в комнату её очереди.
func broadcastEntry(eventType string, e *models.QueueEntry) {
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: eventType,
		Room:      roomID(e.QueueID),
		Data:      entryView(e),
	})
}

// broadcastBoard рассылает полное состояние табло очереди.
func broadcastBoard(queueID uint) {
	entries, err := queue.BoardEntries(queueID)
	if err != nil {
		return
	}
	views := make([]EntryView, 0, len(entries))
	for i := range entries {
		views = append(views, entryView(&entries[i]))
	}
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: ws.EventQueueState,
		Room:      roomID(queueID),
		Data:      gin.H{"queue_id": queueID, "entries": views},
	})
}
