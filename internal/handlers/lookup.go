package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"medqueue/internal/models"
	"medqueue/internal/response"
	"medqueue/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TicketStatusResponse — состояние талона для страницы пациента.
type TicketStatusResponse struct {
	TicketNumber int    `json:"ticket_number"`
	Status       string `json:"status"`
	Position     int    `json:"position"`
	WindowLabel  string `json:"window_label,omitempty"`
	// Число пациентов в ожидании перед этим талоном
	Ahead int `json:"ahead"`
}

// TicketStatusHandler обрабатывает запрос состояния талона пациентом
// @Summary		Состояние талона
// @Description	Возвращает статус талона и число пациентов перед ним; публичный эндпоинт для страницы пациента
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id		path		string	true	"ID очереди"
// @Param			number	path		string	true	"Номер талона"
// @Success		200	{object}	TicketStatusResponse	"Состояние талона"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_QUEUE_ID, INVALID_TICKET_NUMBER)"
// @Failure		404	{object}	response.ErrorResponse	"Талон не найден (ENTRY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues/{id}/tickets/{number} [get]
func TicketStatusHandler(c *gin.Context) {
	queueID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_QUEUE_ID",
			Message: "Неверный идентификатор очереди",
		})
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_TICKET_NUMBER",
			Message: "Неверный номер талона",
		})
		return
	}

	var entry models.QueueEntry
	if err := storage.DB.
		Where("queue_id = ? AND ticket_number = ?", queueID, number).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorResponse{
				Code:    "ENTRY_NOT_FOUND",
				Message: "Талон не найден",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки талона",
			Details: err.Error(),
		})
		return
	}

	var ahead int64
	if entry.Status == models.StatusWaiting {
		if err := storage.DB.Model(&models.QueueEntry{}).
			Where("queue_id = ? AND status = ? AND position < ?", queueID, models.StatusWaiting, entry.Position).
			Count(&ahead).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка подсчёта ожидающих",
				Details: err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, TicketStatusResponse{
		TicketNumber: entry.TicketNumber,
		Status:       entry.Status,
		Position:     entry.Position,
		WindowLabel:  entry.WindowLabel,
		Ahead:        int(ahead),
	})
}
