package handlers

import (
	"net/http"
	"strconv"
	"time"

	"medqueue/internal/models"
	"medqueue/internal/queue"
	"medqueue/internal/response"
	"medqueue/internal/ws"

	"github.com/gin-gonic/gin"
)

type IssueTicketRequest struct {
	SpecialistID uint   `json:"specialist_id" binding:"required"`
	Date         string `json:"date"` // 2006-01-02, по умолчанию сегодня
	PatientID    *uint  `json:"patient_id"`
	PatientName  string `json:"patient_name"`
	Phone        string `json:"phone"`
}

// IssueTicketHandler обрабатывает выдачу талона регистратурой
// @Summary		Выдача талона
// @Description	Выдаёт следующий номер талона в дневной очереди специалиста
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			ticket	body		IssueTicketRequest	true	"Данные талона"
// @Security		BearerAuth
// @Success		200	{object}	response.TicketResponse	"Выданный талон"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/tickets [post]
func IssueTicketHandler(c *gin.Context) {
	var req IssueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	entry, err := queue.IssueTicket(queue.TicketRequest{
		SpecialistID: req.SpecialistID,
		Date:         req.Date,
		Source:       models.SourceDesk,
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		Phone:        req.Phone,
	})
	if err != nil {
		abortQueueError(c, err)
		return
	}

	broadcastEntry(ws.EventEntryCreated, entry)

	c.JSON(http.StatusOK, response.TicketResponse{
		EntryID:      entry.ID,
		TicketNumber: entry.TicketNumber,
		Position:     entry.Position,
	})
}

// ListQueuesHandler обрабатывает запрос списка дневных очередей
// @Summary		Список дневных очередей
// @Description	Возвращает дневные очереди на указанную дату (по умолчанию сегодня)
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			date	query		string	false	"Дата в формате 2006-01-02"
// @Security		BearerAuth
// @Success		200	{array}		models.DailyQueue	"Очереди на дату"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues [get]
func ListQueuesHandler(c *gin.Context) {
	queues, err := queue.ListQueues(c.Query("date"))
	if err != nil {
		abortQueueError(c, err)
		return
	}
	c.JSON(http.StatusOK, queues)
}

// BoardResponse содержит состояние очереди и записи в порядке вызова.
type BoardResponse struct {
	QueueID    uint        `json:"queue_id"`
	Date       string      `json:"date"`
	Specialist string      `json:"specialist"`
	IsActive   bool        `json:"is_active"`
	OpenedAt   *time.Time  `json:"opened_at,omitempty"`
	Entries    []EntryView `json:"entries"`
}

// BoardEntriesHandler обрабатывает запрос состояния табло очереди
// @Summary		Состояние табло очереди
// @Description	Возвращает нетерминальные записи очереди в порядке вызова
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID очереди"
// @Success		200	{object}	BoardResponse	"Состояние очереди"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_QUEUE_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/entries [get]
func BoardEntriesHandler(c *gin.Context) {
	queueID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_ID",
			Message: "Неверный идентификатор очереди",
		})
		return
	}

	q, err := queue.GetQueue(uint(queueID))
	if err != nil {
		abortQueueError(c, err)
		return
	}

	entries, err := queue.BoardEntries(q.ID)
	if err != nil {
		abortQueueError(c, err)
		return
	}

	views := make([]EntryView, 0, len(entries))
	for i := range entries {
		views = append(views, entryView(&entries[i]))
	}
	c.JSON(http.StatusOK, BoardResponse{
		QueueID:    q.ID,
		Date:       q.Date,
		Specialist: q.Specialist.FullName,
		IsActive:   q.IsActive,
		OpenedAt:   q.OpenedAt,
		Entries:    views,
	})
}

// OpenDayHandler обрабатывает открытие приёма
// @Summary		Открытие приёма
// @Description	Отмечает начало приёма: окно онлайн-записи по QR закрывается
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id	path		string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Приём открыт"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_QUEUE_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/open [post]
func OpenDayHandler(c *gin.Context) {
	queueID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_ID",
			Message: "Неверный идентификатор очереди",
		})
		return
	}

	q, err := queue.OpenDay(uint(queueID))
	if err != nil {
		abortQueueError(c, err)
		return
	}

	broadcastBoard(q.ID)

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Приём открыт"})
}
