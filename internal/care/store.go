package care

import (
	"context"
	"time"
)

// PlantStore persists plants. An empty userID means "all users".
type PlantStore interface {
	ListPlants(ctx context.Context, userID string) ([]Plant, error)
	GetPlant(ctx context.Context, id string) (Plant, error)
	CreatePlant(ctx context.Context, p Plant) error
	UpdatePlant(ctx context.Context, p Plant) error
	DeletePlant(ctx context.Context, id string) error
}

// TaskStore persists care tasks.
type TaskStore interface {
	// ReplaceWaterTask atomically swaps whatever WATER task(s) exist for plantID for t.
	ReplaceWaterTask(ctx context.Context, plantID string, t CareTask) error
	DeleteTasksByPlantAndType(ctx context.Context, plantID string, typ TaskType, userID string) error
	InsertTask(ctx context.Context, t CareTask) error
	GetTask(ctx context.Context, id string) (CareTask, error)
	UpdateTaskStatus(ctx context.Context, id string, status TaskStatus, lastCompleted *time.Time) error
	// ListTasksNeedingAttention excludes DONE and CANCELLED tasks.
	ListTasksNeedingAttention(ctx context.Context, userID string) ([]CareTask, error)
	ListTasksByPlant(ctx context.Context, plantID string) ([]CareTask, error)
}

// LogStore persists care log entries. Entries are never updated.
type LogStore interface {
	InsertLog(ctx context.Context, e CareLogEntry) error
	// ListLogs returns newest first; limit <= 0 means no limit.
	ListLogs(ctx context.Context, userID, plantID string, limit int) ([]CareLogEntry, error)
}

// JournalStore persists plant journal entries.
type JournalStore interface {
	InsertJournalEntry(ctx context.Context, e JournalEntry) error
	GetJournalEntry(ctx context.Context, id string) (JournalEntry, error)
	// ListJournalEntries returns newest first. An empty plantID means every plant of userID.
	ListJournalEntries(ctx context.Context, userID, plantID string) ([]JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, id string) error
}

// SupplyStore persists supply items.
type SupplyStore interface {
	ListSupplies(ctx context.Context, userID string) ([]SupplyItem, error)
	GetSupply(ctx context.Context, id string) (SupplyItem, error)
	CreateSupply(ctx context.Context, s SupplyItem) error
	// AdjustSupply adds delta to the quantity and returns the updated item.
	AdjustSupply(ctx context.Context, id string, delta int, restocked *time.Time) (SupplyItem, error)
	DeleteSupply(ctx context.Context, id string) error
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)
	UpdateUser(ctx context.Context, u User) error
}

// Store is the full care record store.
type Store interface {
	PlantStore
	TaskStore
	LogStore
	JournalStore
	SupplyStore
	UserStore
}
