package handlers

import (
	"net/http"
	"strconv"

	"medqueue/internal/queue"
	"medqueue/internal/response"
	"medqueue/internal/ws"

	"github.com/gin-gonic/gin"
)

type TransitionRequest struct {
	Status      string `json:"status" binding:"required"`
	WindowLabel string `json:"window_label"`
}

// TransitionEntryHandler обрабатывает смену статуса записи
// @Summary		Смена статуса записи
// @Description	Вызов, завершение, пропуск или отмена записи. Конкурентная смена одного статуса разрешается в пользу ровно одного сотрудника.
// @Tags			entries
// @Accept			json
// @Produce		json
// @Param			id		path		string				true	"ID записи"
// @Param			status	body		TransitionRequest	true	"Новый статус и (для вызова) окно"
// @Security		BearerAuth
// @Success		200	{object}	EntryView	"Обновлённая запись"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_TRANSITION)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (ENTRY_NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse	"Запись уже изменена (TRANSITION_CONFLICT)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/entries/{id}/status [post]
func TransitionEntryHandler(c *gin.Context) {
	entryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ENTRY_ID",
			Message: "Неверный идентификатор записи",
		})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	entry, err := queue.Transition(uint(entryID), req.Status, req.WindowLabel)
	if err != nil {
		abortQueueError(c, err)
		return
	}

	broadcastEntry(ws.EventEntryUpdated, entry)

	c.JSON(http.StatusOK, entryView(entry))
}

type MoveRequest struct {
	NewPosition int `json:"new_position" binding:"required,min=1"`
}

// MoveEntryHandler обрабатывает перемещение записи на новую позицию
// @Summary		Перемещение записи
// @Description	Перемещает запись на новую позицию со сдвигом промежуточных; порядок остаётся плотным 1..N
// @Tags			entries
// @Accept			json
// @Produce		json
// @Param			id		path		string		true	"ID записи"
// @Param			move	body		MoveRequest	true	"Новая позиция"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Позиции обновлены"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_ORDERING)"
// @Failure		404	{object}	response.ErrorResponse	"Запись не найдена (ENTRY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/entries/{id}/move [post]
func MoveEntryHandler(c *gin.Context) {
	entryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ENTRY_ID",
			Message: "Неверный идентификатор записи",
		})
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	queueID, _, err := queue.Move(uint(entryID), req.NewPosition)
	if err != nil {
		abortQueueError(c, err)
		return
	}

	// После перестановки рассылаем табло целиком: позиции изменились
	// у нескольких записей сразу.
	broadcastBoard(queueID)

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Позиции обновлены"})
}

type BulkReorderRequest struct {
	Positions []struct {
		EntryID  uint `json:"entry_id" binding:"required"`
		Position int  `json:"position" binding:"required,min=1"`
	} `json:"positions" binding:"required,dive"`
}

// BulkReorderHandler обрабатывает полную перестановку очереди
// @Summary		Перестановка очереди
// @Description	Записывает полную перестановку позиций очереди: все нетерминальные записи, позиции 1..N. Всё или ничего.
// @Tags			entries
// @Accept			json
// @Produce		json
// @Param			id			path		string				true	"ID очереди"
// @Param			positions	body		BulkReorderRequest	true	"Целевые позиции"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Позиции обновлены"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_ORDERING)"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/reorder [post]
func BulkReorderHandler(c *gin.Context) {
	queueID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_ID",
			Message: "Неверный идентификатор очереди",
		})
		return
	}

	var req BulkReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	positions := make(map[uint]int, len(req.Positions))
	for _, p := range req.Positions {
		positions[p.EntryID] = p.Position
	}

	if _, err := queue.BulkReorder(uint(queueID), positions); err != nil {
		abortQueueError(c, err)
		return
	}

	broadcastBoard(uint(queueID))

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Позиции обновлены"})
}
