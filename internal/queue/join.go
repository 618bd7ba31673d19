package queue

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"medqueue/internal/models"
	"medqueue/internal/storage"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SessionTTL — время жизни сессии самозаписи: пациенту хватает, чтобы
// ввести имя и телефон, брошенные сессии исчезают сами.
const SessionTTL = 5 * time.Minute

const sessionKeyPrefix = "joinsess:"

// JoinSession — короткоживущая связка проверенного токена с незавершённой
// самозаписью. Живёт только в Redis с TTL, потеря при рестарте означает
// лишь повтор шага start для пациента.
type JoinSession struct {
	TokenID      uint      `json:"token_id"`
	SpecialistID uint      `json:"specialist_id"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
}

// JoinResult — итог завершения самозаписи.
type JoinResult struct {
	Entry     *models.QueueEntry
	QueueID   uint
	Duplicate bool
}

func randomToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand недоступен — дальше работать нельзя
	}
	return hex.EncodeToString(b)
}

// IssueJoinToken выпускает токен самозаписи на день специалиста.
// Токен печатается в QR-код на стойке регистратуры.
func IssueJoinToken(specialistID uint, date string, ttl time.Duration, maxUses int, issuedBy uint) (*models.JoinToken, error) {
	if date == "" {
		date = time.Now().Format(DateLayout)
	}
	token := models.JoinToken{
		Token:        randomToken(),
		SpecialistID: specialistID,
		Date:         date,
		ExpiresAt:    time.Now().Add(ttl),
		MaxUses:      maxUses,
		IssuedBy:     issuedBy,
	}
	if err := storage.DB.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// JoinTokenInfo возвращает токен для страницы, открываемой по QR-коду.
func JoinTokenInfo(token string) (*models.JoinToken, error) {
	var jt models.JoinToken
	if err := storage.DB.Preload("Specialist.Department").
		Where("token = ?", token).First(&jt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &jt, nil
}

// JoinWindowOpen сообщает, открыто ли окно онлайн-записи на день
// специалиста. Окно закрывается, когда персонал открывает приём;
// отсутствие дневной очереди означает, что приём ещё не начинался.
func JoinWindowOpen(specialistID uint, date string) (bool, error) {
	var q models.DailyQueue
	err := storage.DB.Where("specialist_id = ? AND date = ?", specialistID, date).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return q.OpenedAt == nil, nil
}

// StartJoinSession проверяет токен и открывает сессию самозаписи.
// Порядок проверок: токен существует → не истёк → есть свободные
// использования → приём ещё не открыт персоналом. Слот использования
// на этом шаге не списывается.
func StartJoinSession(token string) (string, time.Time, error) {
	jt, err := JoinTokenInfo(token)
	if err != nil {
		return "", time.Time{}, err
	}
	if time.Now().After(jt.ExpiresAt) {
		return "", time.Time{}, ErrTokenExpired
	}
	if jt.CurrentUses >= jt.MaxUses {
		return "", time.Time{}, ErrTokenExhausted
	}

	open, err := JoinWindowOpen(jt.SpecialistID, jt.Date)
	if err != nil {
		return "", time.Time{}, err
	}
	if !open {
		return "", time.Time{}, ErrJoinWindowClosed
	}

	session := JoinSession{
		TokenID:      jt.ID,
		SpecialistID: jt.SpecialistID,
		Date:         jt.Date,
		CreatedAt:    time.Now(),
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return "", time.Time{}, err
	}

	sessionToken := randomToken()
	expiresAt := time.Now().Add(SessionTTL)
	if err := storage.RedisClient.Set(storage.Ctx, sessionKeyPrefix+sessionToken, payload, SessionTTL).Err(); err != nil {
		return "", time.Time{}, err
	}
	return sessionToken, expiresAt, nil
}

// CompleteJoinSession завершает самозапись: забирает сессию из Redis
// (GETDEL — сессия потребляется ровно один раз), ищет дубликат заявки и,
// если его нет, списывает использование токена и выдаёт талон в одной
// транзакции. Повторная отправка той же заявки с нестабильной мобильной
// сети возвращает уже выданный номер с duplicate=true.
func CompleteJoinSession(sessionToken, patientName, phone, externalID string) (*JoinResult, error) {
	payload, err := storage.RedisClient.GetDel(storage.Ctx, sessionKeyPrefix+sessionToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	var session JoinSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, ErrSessionExpired
	}

	var result JoinResult
	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		q, err := getOrCreateDailyQueue(tx, session.SpecialistID, session.Date)
		if err != nil {
			return err
		}
		result.QueueID = q.ID

		// Подавление дубликатов: активная запись с тем же телефоном или
		// внешним идентификатором в этой же очереди уже есть — возвращаем её.
		if phone != "" || externalID != "" {
			var existing models.QueueEntry
			query := tx.Where("queue_id = ? AND status IN ?", q.ID, nonTerminalStatuses)
			switch {
			case phone != "" && externalID != "":
				query = query.Where("phone = ? OR external_id = ?", phone, externalID)
			case phone != "":
				query = query.Where("phone = ?", phone)
			default:
				query = query.Where("external_id = ?", externalID)
			}
			if err := query.First(&existing).Error; err == nil {
				result.Entry = &existing
				result.Duplicate = true
				return nil
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		// Условное списание использования: конкурирующие завершения сверх
		// max_uses получают здесь 0 затронутых строк.
		res := tx.Model(&models.JoinToken{}).
			Where("id = ? AND current_uses < max_uses", session.TokenID).
			UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenExhausted
		}

		source := models.SourceOnline
		if externalID != "" {
			source = models.SourceTelegram
		}
		entry, err := issueTicketTx(tx, TicketRequest{
			SpecialistID: session.SpecialistID,
			Date:         session.Date,
			Source:       source,
			PatientName:  patientName,
			Phone:        phone,
			ExternalID:   externalID,
		})
		if err != nil {
			return err
		}
		result.Entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
