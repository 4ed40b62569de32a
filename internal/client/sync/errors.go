package sync

import "errors"

var (
	// ErrNotInitialized возвращается до вызова Init
	ErrNotInitialized = errors.New("sync engine is not initialized")

	// ErrClosed возвращается после Close
	ErrClosed = errors.New("sync engine is closed")

	// ErrOffline возвращается SyncNow без сети
	ErrOffline = errors.New("network is not connected")

	// ErrDispatchPanic оборачивает панику при отправке операции
	ErrDispatchPanic = errors.New("panic during dispatch")
)
