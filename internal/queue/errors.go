package queue

import "errors"

// Ошибки доменного уровня. Обработчики HTTP сопоставляют их с кодами
// ответов, здесь только сами факты отказа.
var (
	// ErrQueueNotFound — дневная очередь не существует
	ErrQueueNotFound = errors.New("очередь не найдена")
	// ErrEntryNotFound — запись в очереди не существует
	ErrEntryNotFound = errors.New("запись в очереди не найдена")
	// ErrInvalidTransition — переход запрещён схемой статусов
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
	// ErrConflictingTransition — запись уже изменена другим сотрудником
	ErrConflictingTransition = errors.New("запись уже изменена, обновите состояние")
	// ErrInvalidOrdering — целевые позиции не образуют перестановку 1..N
	ErrInvalidOrdering = errors.New("некорректный порядок позиций")
	// ErrTokenNotFound — join-токен не существует
	ErrTokenNotFound = errors.New("токен записи не найден")
	// ErrTokenExpired — срок действия join-токена истёк
	ErrTokenExpired = errors.New("срок действия токена истёк")
	// ErrTokenExhausted — лимит использований join-токена исчерпан
	ErrTokenExhausted = errors.New("лимит записей по токену исчерпан")
	// ErrJoinWindowClosed — приём открыт персоналом, онлайн-запись закрыта
	ErrJoinWindowClosed = errors.New("окно онлайн-записи закрыто")
	// ErrSessionExpired — сессия самозаписи истекла или уже использована
	ErrSessionExpired = errors.New("сессия записи истекла")
)
