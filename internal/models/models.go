package models

import (
	"time"

	"gorm.io/gorm"
)

// Роли сотрудников. Пациенты в системе не авторизуются — публичный
// поток самозаписи работает только по join-токену.
const (
	RoleAdmin        = "admin"
	RoleRegistrar    = "registrar" // регистратура: выдача талонов, перестановки
	RoleSpecialist   = "specialist"
	RoleDisplayBoard = "board" // табло в холле, только чтение
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Surname      string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:registrar"`
}

type Department struct {
	gorm.Model
	Name string `gorm:"uniqueIndex;not null"` // Название отделения, например "Кардиология"
}

type Specialist struct {
	gorm.Model
	DepartmentID uint       `gorm:"index;not null"`
	Department   Department `gorm:"foreignKey:DepartmentID"`
	FullName     string     `gorm:"not null"`
	Cabinet      string // Номер кабинета по умолчанию
}

// DailyQueue — дневная очередь одного специалиста. Счётчик last_ticket —
// единственная точка сериализации нумерации талонов за день.
type DailyQueue struct {
	gorm.Model
	SpecialistID   uint       `gorm:"not null;uniqueIndex:idx_daily_queue_day,priority:1"`
	Specialist     Specialist `gorm:"foreignKey:SpecialistID"`
	Date           string     `gorm:"not null;uniqueIndex:idx_daily_queue_day,priority:2"` // Календарная дата в формате 2006-01-02
	LastTicket     int        `gorm:"not null;default:0"`                                  // Последний выданный номер талона
	IsActive       bool       `gorm:"default:true"`
	OpenedAt       *time.Time // Момент открытия приёма персоналом; закрывает окно онлайн-записи
	MaxOnlineSlots int        `gorm:"default:30"`
	AutoCloseTime  *time.Time `gorm:"index"` // Время автоматического закрытия очереди
}

// Статусы записи в очереди. done, skipped и cancelled — терминальные.
const (
	StatusWaiting   = "waiting"
	StatusServing   = "serving"
	StatusDone      = "done"
	StatusSkipped   = "skipped"
	StatusCancelled = "cancelled"
)

// Источники записи.
const (
	SourceDesk     = "desk"
	SourceOnline   = "online"
	SourceTelegram = "telegram"
)

// QueueEntry — талон пациента в дневной очереди. TicketNumber неизменен и
// уникален в рамках очереди; Position — изменяемый порядок вызова на табло,
// после каждой успешной перестановки это плотная последовательность 1..N
// по нетерминальным записям.
type QueueEntry struct {
	gorm.Model
	QueueID      uint       `gorm:"not null;uniqueIndex:idx_entry_ticket,priority:1;index:idx_entry_position,priority:1"`
	Queue        DailyQueue `gorm:"foreignKey:QueueID"`
	TicketNumber int        `gorm:"not null;uniqueIndex:idx_entry_ticket,priority:2"`
	Status       string     `gorm:"index;not null;default:waiting"`
	Source       string     `gorm:"not null;default:desk"`
	PatientID    *uint      `gorm:"index"` // Ссылка на карту пациента; nil для неразобранных walk-in
	PatientName  string     // Снимок ФИО на момент записи
	Phone        string     `gorm:"index"`
	ExternalID   string     `gorm:"index"` // Идентификатор из внешнего канала (telegram chat id и т.п.)
	WindowLabel  string     // Кабинет/окно, в которое вызван пациент
	Position     int        `gorm:"not null;index:idx_entry_position,priority:2"` // 0 после ухода в терминальный статус
	CalledAt     *time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// JoinToken — одноразово выпускаемый персоналом токен самозаписи по QR-коду.
// После истечения срока или исчерпания лимита токен не удаляется (аудит).
type JoinToken struct {
	gorm.Model
	Token        string     `gorm:"uniqueIndex;not null"`
	SpecialistID uint       `gorm:"index;not null"`
	Specialist   Specialist `gorm:"foreignKey:SpecialistID"`
	Date         string     `gorm:"not null"` // Дата очереди в формате 2006-01-02
	ExpiresAt    time.Time  `gorm:"index;not null"`
	MaxUses      int        `gorm:"not null"`
	CurrentUses  int        `gorm:"not null;default:0"`
	IssuedBy     uint       // ID сотрудника, выпустившего токен
}
