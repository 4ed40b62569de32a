package backup

import "errors"

var (
	// ErrInvalidBundle бандл без версии, времени создания или данных
	ErrInvalidBundle = errors.New("invalid backup file format")
)
