// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки журнала очков (стрик, упражнения)
var (
	// ErrAlreadyCompletedToday — упражнение уже выполнено сегодня (политика "одно в день")
	ErrAlreadyCompletedToday = errors.New("упражнение на сегодня уже выполнено")
	// ErrInvalidRange — уменьшение опустило бы границу ниже 1
	ErrInvalidRange = errors.New("нельзя сделать упражнение ещё легче")
	// ErrRangeTooHigh — увеличение вышло бы за пределы int
	ErrRangeTooHigh = errors.New("нельзя сделать упражнение ещё сложнее")
	// ErrUnknownExercise — упражнения с таким id нет в каталоге
	ErrUnknownExercise = errors.New("упражнение не найдено в каталоге")
	// ErrCorruptedLedger — сохранённое состояние не прошло проверку
	ErrCorruptedLedger = errors.New("сохранённое состояние повреждено")
	// ErrInvalidCatalog — каталог упражнений некорректен
	ErrInvalidCatalog = errors.New("некорректный каталог упражнений")
)

// Ошибки напоминаний
var (
	// ErrBadReminderTime — время напоминания не в формате ЧЧ:ММ
	ErrBadReminderTime = errors.New("время нужно указать в формате ЧЧ:ММ, например 09:30")
)

// Ошибки участников
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)
