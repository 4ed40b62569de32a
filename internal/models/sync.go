package models

import "time"

// SyncState состояние очереди синхронизации
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncError   SyncState = "error"
	SyncSuccess SyncState = "success"
)

// SyncStatus описывает здоровье очереди синхронизации.
// Существует все время жизни процесса, наблюдатели получают копии.
type SyncStatus struct {
	LastSyncTime   *time.Time `json:"lastSyncTime"`   // LastSyncTime время последнего успешного прохода
	Status         SyncState  `json:"status"`         // Status idle | syncing | error | success
	Error          string     `json:"error"`          // Error сообщение об ошибке прохода, пусто если нет
	PendingChanges int        `json:"pendingChanges"` // PendingChanges длина очереди
	DataSaved      int64      `json:"dataSaved"`      // DataSaved сэкономленные дельтами байты, не убывает
}
