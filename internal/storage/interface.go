package storage

import (
	"errors"

	"github.com/julianstephens/cadence/internal/models"
)

// ErrNotFound is returned by catalog lookups for unknown or deleted ids
var ErrNotFound = errors.New("not found")

// KV is the key-value persistence used for habit completion records and
// settings. Get reports found=false for a missing key.
type KV interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
}

// Catalog is read/write access to tasks, recurrence rules and fixed
// schedule blocks. Deletes are soft.
type Catalog interface {
	// Tasks
	AddTask(models.Task) error
	GetTask(id string) (models.Task, error)
	GetAllTasks() ([]models.Task, error)
	DeleteTask(id string) error

	// Recurrences
	AddRecurrence(models.Recurrence) error
	GetRecurrence(id string) (models.Recurrence, error)
	GetAllRecurrences() ([]models.Recurrence, error)
	DeleteRecurrence(id string) error

	// Fixed blocks
	AddFixedBlock(models.FixedBlock) error
	GetAllFixedBlocks() ([]models.FixedBlock, error)
	DeleteFixedBlock(id string) error
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	KV
	Catalog

	// Utils
	GetConfigPath() string
}

// ErrNotInitialized is returned by Load when the backing store has never
// been created.
var ErrNotInitialized = errors.New("storage not initialized")
