package conflict

import "errors"

var (
	// ErrConflictNotFound возвращается, если конфликта с таким id нет
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrUnknownStrategy возвращается для незарегистрированной стратегии
	ErrUnknownStrategy = errors.New("unknown resolution strategy")

	// ErrNoWriter возвращается стратегией, которой не передали получателя данных
	ErrNoWriter = errors.New("no writer configured for strategy")
)
