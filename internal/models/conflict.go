package models

import "time"

// ConflictStatus статус записи о конфликте
type ConflictStatus string

const (
	ConflictPending  ConflictStatus = "pending"
	ConflictResolved ConflictStatus = "resolved"
	ConflictManual   ConflictStatus = "manual"
	ConflictFailed   ConflictStatus = "failed"
)

// Built-in resolution strategy names.
const (
	StrategyClientWins = "client-wins"
	StrategyServerWins = "server-wins"
	StrategyManual     = "manual"
)

// Conflict запись о расхождении клиентской и серверной версий сущности.
// Изменяется только движком разрешения конфликтов.
type Conflict struct {
	CreatedAt    time.Time      `json:"createdAt"`              // CreatedAt время эскалации
	ResolvedAt   *time.Time     `json:"resolvedAt,omitempty"`   // ResolvedAt время разрешения
	ClientData   Entity         `json:"clientData"`             // ClientData локальная версия (nil для удаления)
	ServerData   Entity         `json:"serverData"`             // ServerData версия на сервере (nil если нет)
	ID           string         `json:"id"`                     // ID уникальный идентификатор конфликта
	EntityType   EntityType     `json:"entityType"`             // EntityType тег типа сущности
	EntityID     string         `json:"entityId"`               // EntityID идентификатор сущности
	Strategy     string         `json:"strategy"`               // Strategy запрошенная стратегия
	Status       ConflictStatus `json:"status"`                 // Status pending | resolved | manual | failed
	ResolvedWith string         `json:"resolvedWith,omitempty"` // ResolvedWith примененная стратегия
	Error        string         `json:"error,omitempty"`        // Error ошибка обработчика стратегии
}

// Clone создает глубокую копию конфликта
func (c Conflict) Clone() Conflict {
	out := c
	out.ClientData = c.ClientData.Clone()
	out.ServerData = c.ServerData.Clone()
	if c.ResolvedAt != nil {
		t := *c.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}
