package state

import "errors"

var (
	// ErrUnknownKind возвращается для типа сущности без persisted среза
	ErrUnknownKind = errors.New("entity kind is not persisted")

	// ErrCorruptRoot возвращается, если корневой blob не разбирается
	ErrCorruptRoot = errors.New("persisted state is corrupt")

	// ErrMissingID возвращается при попытке сохранить сущность без id
	ErrMissingID = errors.New("entity has no id")
)
