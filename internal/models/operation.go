package models

import (
	"fmt"
	"time"
)

// OpType тип операции в очереди синхронизации
type OpType string

const (
	OpCreate OpType = "create" // OpCreate создание сущности, полный payload
	OpUpdate OpType = "update" // OpUpdate обновление, полный payload или дельта
	OpDelete OpType = "delete" // OpDelete удаление, payload только {id}
)

// Valid reports whether t is one of the known operation types.
func (t OpType) Valid() bool {
	switch t {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// ParseOpType converts a raw string into an OpType.
func ParseOpType(s string) (OpType, error) {
	t := OpType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown operation type: %q", s)
	}
	return t, nil
}

// Operation единица работы в очереди синхронизации.
//
// Для update с IsDelta=true Data содержит только измененные поля и "id",
// а Removed - ключи, которые исчезли относительно last-synced снимка.
// Такая операция имеет смысл только вместе со снимком той же сущности.
type Operation struct {
	Timestamp  time.Time  `json:"timestamp"`           // Timestamp время создания операции (ISO-8601 в JSON)
	Data       Entity     `json:"data"`                // Data полная сущность, {id} или дельта
	ID         string     `json:"op_id"`               // ID идентификатор операции (UUID)
	Type       OpType     `json:"type"`                // Type create | update | delete
	EntityType EntityType `json:"entityType"`          // EntityType тег типа сущности
	LastError  string     `json:"lastError,omitempty"` // LastError последняя ошибка отправки
	Removed    []string   `json:"removed,omitempty"`   // Removed удаленные поля (tombstones)
	Attempts   int        `json:"attempts"`            // Attempts счетчик попыток, начинается с 0
	IsDelta    bool       `json:"isDelta"`             // IsDelta true только для update с частичным payload
}

// EntityID returns the id of the entity the operation targets.
func (o *Operation) EntityID() string {
	return o.Data.ID()
}

// Clone создает глубокую копию операции
func (o *Operation) Clone() *Operation {
	c := *o
	c.Data = o.Data.Clone()
	if o.Removed != nil {
		c.Removed = make([]string, len(o.Removed))
		copy(c.Removed, o.Removed)
	}
	return &c
}
