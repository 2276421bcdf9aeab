package care

import (
	"time"
)

// TaskType is the kind of care a task or log entry refers to.
type TaskType string

const (
	TaskWater      TaskType = "WATER"
	TaskFertilize  TaskType = "FERTILIZE"
	TaskSoilChange TaskType = "SOIL_CHANGE"
)

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskWater, TaskFertilize, TaskSoilChange:
		return true
	}
	return false
}

// TaskStatus is the CareTask state.
// DUE, TODAY and UPCOMING are owned by the sync engine; DONE, MISSED and CANCELLED are
// terminal and only reachable through user action.
type TaskStatus string

const (
	StatusDue       TaskStatus = "DUE"
	StatusToday     TaskStatus = "TODAY"
	StatusUpcoming  TaskStatus = "UPCOMING"
	StatusDone      TaskStatus = "DONE"
	StatusMissed    TaskStatus = "MISSED"
	StatusCancelled TaskStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusDue, StatusToday, StatusUpcoming, StatusDone, StatusMissed, StatusCancelled:
		return true
	}
	return false
}

// Open reports whether the status is recomputed by sync (not terminal).
func (s TaskStatus) Open() bool {
	return s == StatusDue || s == StatusToday || s == StatusUpcoming
}

// NeedsAttention is false for DONE and CANCELLED.
func (s TaskStatus) NeedsAttention() bool {
	return s != StatusDone && s != StatusCancelled
}

// Plant is owned by a user. A nil or non-positive WaterEveryDays means "no schedule".
type Plant struct {
	ID                  string     `json:"id" bson:"id"`
	UserID              string     `json:"userId" bson:"userId"`
	Name                string     `json:"name" bson:"name"`
	Species             string     `json:"species,omitempty" bson:"species,omitempty"`
	WaterEveryDays      *int       `json:"waterEveryDays,omitempty" bson:"waterEveryDays,omitempty"`
	SunlightHoursPerDay *float64   `json:"sunlightHoursPerDay,omitempty" bson:"sunlightHoursPerDay,omitempty"`
	LastWatered         *time.Time `json:"lastWatered,omitempty" bson:"lastWatered,omitempty"`
	PhotoRef            string     `json:"photoRef,omitempty" bson:"photoRef,omitempty"`
	DroughtTolerant     bool       `json:"droughtTolerant" bson:"droughtTolerant"`
	CreatedAt           time.Time  `json:"createdAt" bson:"createdAt"`
}

// HasSchedule reports whether the plant has a positive watering interval.
func (p Plant) HasSchedule() bool {
	return p.WaterEveryDays != nil && *p.WaterEveryDays > 0
}

// CareTask is one outstanding (or finished) care action for a plant.
type CareTask struct {
	ID            string     `json:"id" bson:"id"`
	UserID        string     `json:"userId" bson:"userId"`
	PlantID       string     `json:"plantId" bson:"plantId"`
	PlantName     string     `json:"plantName" bson:"plantName"`
	Type          TaskType   `json:"type" bson:"type"`
	DueDate       time.Time  `json:"dueDate" bson:"dueDate"`
	Status        TaskStatus `json:"status" bson:"status"`
	FrequencyDays *int       `json:"frequencyDays,omitempty" bson:"frequencyDays,omitempty"`
	LastCompleted *time.Time `json:"lastCompleted,omitempty" bson:"lastCompleted,omitempty"`
	Notes         string     `json:"notes,omitempty" bson:"notes,omitempty"`
}

// CareLogEntry is an immutable record of a completed action.
type CareLogEntry struct {
	ID              string    `json:"id" bson:"id"`
	UserID          string    `json:"userId" bson:"userId"`
	PlantID         string    `json:"plantId" bson:"plantId"`
	PlantName       string    `json:"plantName,omitempty" bson:"plantName,omitempty"`
	Date            time.Time `json:"date" bson:"date"`
	Action          TaskType  `json:"action" bson:"action"`
	SoilMoisturePct *float64  `json:"soilMoisturePct,omitempty" bson:"soilMoisturePct,omitempty"`
	FertilizerMl    *float64  `json:"fertilizerMl,omitempty" bson:"fertilizerMl,omitempty"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
}

// JournalEntry is a free-form note about a plant. PhotoRef is an opaque reference
// and is never resolved by the service.
type JournalEntry struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"userId" bson:"userId"`
	PlantID   string    `json:"plantId" bson:"plantId"`
	PlantName string    `json:"plantName,omitempty" bson:"plantName,omitempty"`
	EntryDate time.Time `json:"entryDate" bson:"entryDate"`
	Content   string    `json:"content" bson:"content"`
	PhotoRef  string    `json:"photoRef,omitempty" bson:"photoRef,omitempty"`
}

// SupplyStatus is derived from quantity and refill threshold.
type SupplyStatus string

const (
	SupplyOut     SupplyStatus = "OUT"
	SupplyLow     SupplyStatus = "LOW"
	SupplyInStock SupplyStatus = "IN_STOCK"
)

// SupplyItem is a consumable the user keeps for their plants (soil, fertilizer, pots).
type SupplyItem struct {
	ID            string     `json:"id" bson:"id"`
	UserID        string     `json:"userId" bson:"userId"`
	Name          string     `json:"name" bson:"name"`
	Quantity      int        `json:"quantity" bson:"quantity"`
	RefillBelow   int        `json:"refillBelow" bson:"refillBelow"`
	LastRestocked *time.Time `json:"lastRestocked,omitempty" bson:"lastRestocked,omitempty"`
}

// Status derives the stock level.
func (s SupplyItem) Status() SupplyStatus {
	switch {
	case s.Quantity <= 0:
		return SupplyOut
	case s.Quantity <= s.RefillBelow:
		return SupplyLow
	default:
		return SupplyInStock
	}
}

// User is an account. City/Country feed the weather location hint.
type User struct {
	ID           string    `json:"id" bson:"id"`
	Email        string    `json:"email" bson:"email"`
	Username     string    `json:"username,omitempty" bson:"username,omitempty"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	City         string    `json:"city,omitempty" bson:"city,omitempty"`
	Country      string    `json:"country,omitempty" bson:"country,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
