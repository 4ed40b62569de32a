package models

import "time"

// EntityType тег типа сущности. Ядро синхронизации не различает типы
// кроме как по этому тегу.
type EntityType string

const (
	EntityTask     EntityType = "task"     // EntityTask задача
	EntityCategory EntityType = "category" // EntityCategory категория задач
)

// FieldID имя обязательного поля-идентификатора в любой сущности.
const FieldID = "id"

// Entity представляет непрозрачную запись (задача, категория, ...),
// идентифицируемую полем "id". Значения полей - то, что дает
// encoding/json при декодировании в map[string]any, плюс time.Time.
type Entity map[string]any

// ID возвращает идентификатор сущности или пустую строку,
// если поле отсутствует или не является строкой.
func (e Entity) ID() string {
	if e == nil {
		return ""
	}
	id, _ := e[FieldID].(string)
	return id
}

// Clone создает глубокую копию сущности.
// Вложенные map и slice копируются рекурсивно, примитивы - по значению.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Entity:
		return val.Clone()
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = cloneValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = cloneValue(inner)
		}
		return s
	case []string:
		s := make([]string, len(val))
		copy(s, val)
		return s
	case time.Time:
		return val
	default:
		return val
	}
}
