package migration

import "errors"

var (
	// ErrEmptyCatalog каталог версий пуст
	ErrEmptyCatalog = errors.New("schema catalog is empty")

	// ErrUnknownVersion версия отсутствует в каталоге
	ErrUnknownVersion = errors.New("schema version not in catalog")

	// ErrDuplicateVersion версия встречается в каталоге дважды
	ErrDuplicateVersion = errors.New("duplicate schema version")
)
