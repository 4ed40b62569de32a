package data

import "errors"

var (
	// ErrNotFound сущность отсутствует в локальном состоянии
	ErrNotFound = errors.New("entity not found")

	// ErrNotToggleable у сущности нет флага completed
	ErrNotToggleable = errors.New("only tasks can be toggled")
)
