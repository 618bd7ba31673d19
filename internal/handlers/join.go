package handlers

import (
	"net/http"
	"time"

	"medqueue/internal/queue"
	"medqueue/internal/response"
	"medqueue/internal/ws"

	"github.com/gin-gonic/gin"
)

type IssueJoinTokenRequest struct {
	SpecialistID uint   `json:"specialist_id" binding:"required"`
	Date         string `json:"date"` // 2006-01-02, по умолчанию сегодня
	TTLMinutes   int    `json:"ttl_minutes" binding:"required,min=1"`
	MaxUses      int    `json:"max_uses" binding:"required,min=1"`
}

type IssueJoinTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	MaxUses   int       `json:"max_uses"`
}

// IssueJoinTokenHandler обрабатывает выпуск токена самозаписи
// @Summary		Выпуск токена самозаписи
// @Description	Выпускает токен для QR-кода с ограничением срока и числа записей
// @Tags			join
// @Accept			json
// @Produce		json
// @Param			token	body		IssueJoinTokenRequest	true	"Параметры токена"
// @Security		BearerAuth
// @Success		201	{object}	IssueJoinTokenResponse	"Выпущенный токен"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/join-tokens [post]
func IssueJoinTokenHandler(c *gin.Context) {
	var req IssueJoinTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	token, err := queue.IssueJoinToken(
		req.SpecialistID,
		req.Date,
		time.Duration(req.TTLMinutes)*time.Minute,
		req.MaxUses,
		c.GetUint("userID"),
	)
	if err != nil {
		abortQueueError(c, err)
		return
	}

	c.JSON(http.StatusCreated, IssueJoinTokenResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		MaxUses:   token.MaxUses,
	})
}

// JoinTokenInfoHandler обрабатывает запрос состояния токена
// @Summary		Состояние токена самозаписи
// @Description	Возвращает состояние токена для страницы, открываемой по QR-коду
// @Tags			join
// @Accept			json
// @Produce		json
// @Param			token	path		string	true	"Токен записи"
// @Success		200	{object}	response.JoinTokenInfoResponse	"Состояние токена"
// @Failure		404	{object}	response.ErrorResponse	"Токен не найден (TOKEN_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/join/{token} [get]
func JoinTokenInfoHandler(c *gin.Context) {
	jt, err := queue.JoinTokenInfo(c.Param("token"))
	if err != nil {
		abortQueueError(c, err)
		return
	}

	// Страница по QR-коду должна показывать "закрыто" и после открытия
	// приёма персоналом, а не только по сроку и лимиту токена.
	windowOpen, err := queue.JoinWindowOpen(jt.SpecialistID, jt.Date)
	if err != nil {
		abortQueueError(c, err)
		return
	}

	usesLeft := jt.MaxUses - jt.CurrentUses
	if usesLeft < 0 {
		usesLeft = 0
	}
	c.JSON(http.StatusOK, response.JoinTokenInfoResponse{
		Specialist: jt.Specialist.FullName,
		Department: jt.Specialist.Department.Name,
		Date:       jt.Date,
		ExpiresAt:  jt.ExpiresAt,
		UsesLeft:   usesLeft,
		Open:       usesLeft > 0 && time.Now().Before(jt.ExpiresAt) && windowOpen,
	})
}

type StartJoinRequest struct {
	Token string `json:"token" binding:"required"`
}

// StartJoinHandler обрабатывает начало сессии самозаписи
// @Summary		Начало самозаписи
// @Description	Проверяет токен и открывает короткоживущую сессию для ввода данных пациента. Слот токена на этом шаге не расходуется.
// @Tags			join
// @Accept			json
// @Produce		json
// @Param			start	body		StartJoinRequest	true	"Токен записи"
// @Success		200	{object}	response.JoinSessionResponse	"Открытая сессия"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		403	{object}	response.ErrorResponse	"Окно записи закрыто (JOIN_WINDOW_CLOSED)"
// @Failure		404	{object}	response.ErrorResponse	"Токен не найден (TOKEN_NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse	"Лимит исчерпан (TOKEN_EXHAUSTED)"
// @Failure		410	{object}	response.ErrorResponse	"Срок токена истёк (TOKEN_EXPIRED)"
// @Router			/api/join/start [post]
func StartJoinHandler(c *gin.Context) {
	var req StartJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	sessionToken, expiresAt, err := queue.StartJoinSession(req.Token)
	if err != nil {
		abortQueueError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.JoinSessionResponse{
		SessionToken: sessionToken,
		ExpiresAt:    expiresAt,
	})
}

type CompleteJoinRequest struct {
	SessionToken string `json:"session_token" binding:"required"`
	PatientName  string `json:"patient_name" binding:"required"`
	Phone        string `json:"phone"`
	ExternalID   string `json:"external_id"`
}

// CompleteJoinHandler обрабатывает завершение самозаписи
// @Summary		Завершение самозаписи
// @Description	Завершает самозапись и выдаёт талон. Повторная отправка той же заявки возвращает уже выданный номер с duplicate=true.
// @Tags			join
// @Accept			json
// @Produce		json
// @Param			complete	body		CompleteJoinRequest	true	"Данные пациента"
// @Success		200	{object}	response.TicketResponse	"Выданный талон"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		409	{object}	response.ErrorResponse	"Лимит исчерпан (TOKEN_EXHAUSTED)"
// @Failure		410	{object}	response.ErrorResponse	"Сессия истекла (SESSION_EXPIRED)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/join/complete [post]
func CompleteJoinHandler(c *gin.Context) {
	var req CompleteJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	result, err := queue.CompleteJoinSession(req.SessionToken, req.PatientName, req.Phone, req.ExternalID)
	if err != nil {
		abortQueueError(c, err)
		return
	}

	if !result.Duplicate {
		broadcastEntry(ws.EventEntryCreated, result.Entry)
	}

	c.JSON(http.StatusOK, response.TicketResponse{
		EntryID:      result.Entry.ID,
		TicketNumber: result.Entry.TicketNumber,
		Position:     result.Entry.Position,
		Duplicate:    result.Duplicate,
	})
}
