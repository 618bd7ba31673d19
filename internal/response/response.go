package response

import "time"

// SuccessResponse представляет успешный ответ API
type SuccessResponse struct {
	Message string `json:"message" example:"Операция успешно выполнена"`
}

// ErrorResponse представляет ответ с ошибкой API
type ErrorResponse struct {
	// Код ошибки для программной обработки
	// example: VALIDATION_ERROR
	Code string `json:"code"`

	// Человекочитаемое сообщение об ошибке
	// example: Ошибка валидации данных
	Message string `json:"message"`

	// Дополнительные детали об ошибке (опционально)
	// example: поле phone должно содержать только цифры
	Details string `json:"details,omitempty"`
}

// TokenResponse представляет ответ с токенами авторизации
type TokenResponse struct {
	// JWT токен для доступа к защищенным эндпоинтам
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// JWT токен для обновления access токена
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`
}

// TicketResponse — результат выдачи талона (регистратура или самозапись)
type TicketResponse struct {
	EntryID      uint `json:"entry_id"`
	TicketNumber int  `json:"ticket_number"`
	Position     int  `json:"position"`
	// Признак повторной отправки той же заявки: талон уже был выдан ранее
	Duplicate bool `json:"duplicate"`
}

// JoinSessionResponse — ответ на начало сессии самозаписи
type JoinSessionResponse struct {
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// JoinTokenInfoResponse — состояние join-токена для страницы по QR-коду
type JoinTokenInfoResponse struct {
	Specialist string    `json:"specialist"`
	Department string    `json:"department"`
	Date       string    `json:"date"`
	ExpiresAt  time.Time `json:"expires_at"`
	UsesLeft   int       `json:"uses_left"`
	Open       bool      `json:"open"` // Окно самозаписи ещё открыто
}
