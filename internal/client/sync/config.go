package sync

import (
	"errors"
	"time"

	"github.com/iudanet/taskkeeper/internal/models"
)

// Config holds the sync engine tunables.
type Config struct {
	EscalationStrategy string              // EscalationStrategy стратегия для исчерпавших попытки операций
	EntityTypes        []models.EntityType // EntityTypes типы, для которых строится снимок
	MaxRetries         int                 // MaxRetries попыток на одну операцию
	MaxPassRetries     int                 // MaxPassRetries повторов прохода после сбоя
	RetryDelay         time.Duration       // RetryDelay пауза перед повтором прохода
	SyncInterval       time.Duration       // SyncInterval период автоматической синхронизации
	OperationTimeout   time.Duration       // OperationTimeout таймаут одного вызова удаленного хранилища
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:         5,
		RetryDelay:         5 * time.Second,
		MaxPassRetries:     5,
		SyncInterval:       5 * time.Minute,
		OperationTimeout:   30 * time.Second,
		EscalationStrategy: models.StrategyManual,
		EntityTypes:        []models.EntityType{models.EntityTask, models.EntityCategory},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.MaxRetries < 1 {
		errs = append(errs, errors.New("max retries must be at least 1"))
	}
	if c.MaxPassRetries < 0 {
		errs = append(errs, errors.New("max pass retries must not be negative"))
	}
	if c.RetryDelay <= 0 {
		errs = append(errs, errors.New("retry delay must be positive"))
	}
	if c.SyncInterval < 0 {
		errs = append(errs, errors.New("sync interval must not be negative"))
	}
	if c.OperationTimeout <= 0 {
		errs = append(errs, errors.New("operation timeout must be positive"))
	}
	return errors.Join(errs...)
}

// withDefaults подставляет значения по умолчанию в незаполненные поля
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.MaxPassRetries == 0 {
		c.MaxPassRetries = d.MaxPassRetries
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = d.SyncInterval
	}
	if c.OperationTimeout == 0 {
		c.OperationTimeout = d.OperationTimeout
	}
	if c.EscalationStrategy == "" {
		c.EscalationStrategy = d.EscalationStrategy
	}
	if len(c.EntityTypes) == 0 {
		c.EntityTypes = d.EntityTypes
	}
	return c
}
