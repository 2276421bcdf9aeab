package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/plant-care/internal/care"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = care.ErrNotFound
	// ErrDuplicate is returned when a unique key is already used.
	ErrDuplicate = care.ErrDuplicate
)

// MemoryStore is a concurrency-safe in-memory implementation of care.Store.
type MemoryStore struct {
	mu sync.RWMutex

	plants   map[string]care.Plant
	tasks    map[string]care.CareTask
	logs     []care.CareLogEntry
	journal  map[string]care.JournalEntry
	supplies map[string]care.SupplyItem
	users    map[string]care.User
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plants:   make(map[string]care.Plant),
		tasks:    make(map[string]care.CareTask),
		journal:  make(map[string]care.JournalEntry),
		supplies: make(map[string]care.SupplyItem),
		users:    make(map[string]care.User),
	}
}

var _ care.Store = (*MemoryStore)(nil)

// ---- plants

// ListPlants returns plants of userID (all when empty), oldest first.
func (s *MemoryStore) ListPlants(_ context.Context, userID string) ([]care.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]care.Plant, 0, len(s.plants))
	for _, p := range s.plants {
		if userID == "" || p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetPlant returns the plant or ErrNotFound.
func (s *MemoryStore) GetPlant(_ context.Context, id string) (care.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plants[id]
	if !ok {
		return care.Plant{}, ErrNotFound
	}
	return p, nil
}

// CreatePlant inserts p. It fails with ErrDuplicate when the id is taken.
func (s *MemoryStore) CreatePlant(_ context.Context, p care.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plants[p.ID]; ok {
		return ErrDuplicate
	}
	s.plants[p.ID] = p
	return nil
}

// UpdatePlant replaces an existing plant.
func (s *MemoryStore) UpdatePlant(_ context.Context, p care.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plants[p.ID]; !ok {
		return ErrNotFound
	}
	s.plants[p.ID] = p
	return nil
}

// DeletePlant removes the plant together with its tasks.
func (s *MemoryStore) DeletePlant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plants[id]; !ok {
		return ErrNotFound
	}
	delete(s.plants, id)
	for tid, t := range s.tasks {
		if t.PlantID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

// ---- tasks

// ReplaceWaterTask removes every WATER task of plantID and inserts t under one lock.
func (s *MemoryStore) ReplaceWaterTask(_ context.Context, plantID string, t care.CareTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.tasks {
		if existing.PlantID == plantID && existing.Type == care.TaskWater {
			delete(s.tasks, id)
		}
	}
	t.PlantID = plantID
	t.Type = care.TaskWater
	s.tasks[t.ID] = t
	return nil
}

// DeleteTasksByPlantAndType removes tasks of one type for a plant, optionally scoped to userID.
func (s *MemoryStore) DeleteTasksByPlantAndType(_ context.Context, plantID string, typ care.TaskType, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tasks {
		if t.PlantID != plantID || t.Type != typ {
			continue
		}
		if userID != "" && t.UserID != userID {
			continue
		}
		delete(s.tasks, id)
	}
	return nil
}

// InsertTask stores a new task.
func (s *MemoryStore) InsertTask(_ context.Context, t care.CareTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; ok {
		return ErrDuplicate
	}
	s.tasks[t.ID] = t
	return nil
}

// GetTask returns the task or ErrNotFound.
func (s *MemoryStore) GetTask(_ context.Context, id string) (care.CareTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return care.CareTask{}, ErrNotFound
	}
	return t, nil
}

// UpdateTaskStatus sets the status and, when given, the completion date.
func (s *MemoryStore) UpdateTaskStatus(_ context.Context, id string, status care.TaskStatus, lastCompleted *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	if lastCompleted != nil {
		t.LastCompleted = lastCompleted
	}
	s.tasks[id] = t
	return nil
}

// ListTasksNeedingAttention returns tasks that are neither DONE nor CANCELLED, by due date.
func (s *MemoryStore) ListTasksNeedingAttention(_ context.Context, userID string) ([]care.CareTask, error) {
	return s.filterTasks(func(t care.CareTask) bool {
		return t.Status.NeedsAttention() && (userID == "" || t.UserID == userID)
	}), nil
}

// ListTasksByPlant returns every task of a plant, by due date.
func (s *MemoryStore) ListTasksByPlant(_ context.Context, plantID string) ([]care.CareTask, error) {
	return s.filterTasks(func(t care.CareTask) bool { return t.PlantID == plantID }), nil
}

func (s *MemoryStore) filterTasks(keep func(care.CareTask) bool) []care.CareTask {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []care.CareTask{}
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ---- logs

// InsertLog appends a care log entry.
func (s *MemoryStore) InsertLog(_ context.Context, e care.CareLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, e)
	return nil
}

// ListLogs returns matching entries newest first. limit <= 0 means no limit.
func (s *MemoryStore) ListLogs(_ context.Context, userID, plantID string, limit int) ([]care.CareLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []care.CareLogEntry{}
	for _, e := range s.logs {
		if userID != "" && e.UserID != userID {
			continue
		}
		if plantID != "" && e.PlantID != plantID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- journal

// InsertJournalEntry stores a new journal entry.
func (s *MemoryStore) InsertJournalEntry(_ context.Context, e care.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.journal[e.ID]; ok {
		return ErrDuplicate
	}
	s.journal[e.ID] = e
	return nil
}

// GetJournalEntry returns the entry or ErrNotFound.
func (s *MemoryStore) GetJournalEntry(_ context.Context, id string) (care.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.journal[id]
	if !ok {
		return care.JournalEntry{}, ErrNotFound
	}
	return e, nil
}

// ListJournalEntries returns entries of userID, optionally for one plant, newest first.
func (s *MemoryStore) ListJournalEntries(_ context.Context, userID, plantID string) ([]care.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []care.JournalEntry{}
	for _, e := range s.journal {
		if e.UserID != userID {
			continue
		}
		if plantID != "" && e.PlantID != plantID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.After(out[j].EntryDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteJournalEntry removes a journal entry.
func (s *MemoryStore) DeleteJournalEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.journal[id]; !ok {
		return ErrNotFound
	}
	delete(s.journal, id)
	return nil
}

// ---- supplies

// ListSupplies returns supplies of userID sorted by name.
func (s *MemoryStore) ListSupplies(_ context.Context, userID string) ([]care.SupplyItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []care.SupplyItem{}
	for _, item := range s.supplies {
		if userID == "" || item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetSupply returns the item or ErrNotFound.
func (s *MemoryStore) GetSupply(_ context.Context, id string) (care.SupplyItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.supplies[id]
	if !ok {
		return care.SupplyItem{}, ErrNotFound
	}
	return item, nil
}

// CreateSupply inserts a supply item.
func (s *MemoryStore) CreateSupply(_ context.Context, item care.SupplyItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.supplies[item.ID]; ok {
		return ErrDuplicate
	}
	s.supplies[item.ID] = item
	return nil
}

// AdjustSupply adds delta to the quantity and returns the updated item.
func (s *MemoryStore) AdjustSupply(_ context.Context, id string, delta int, restocked *time.Time) (care.SupplyItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.supplies[id]
	if !ok {
		return care.SupplyItem{}, ErrNotFound
	}
	item.Quantity += delta
	if restocked != nil {
		item.LastRestocked = restocked
	}
	s.supplies[id] = item
	return item, nil
}

// DeleteSupply removes a supply item.
func (s *MemoryStore) DeleteSupply(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.supplies[id]; !ok {
		return ErrNotFound
	}
	delete(s.supplies, id)
	return nil
}

// ---- users

// CreateUser inserts u. Email is unique case-insensitively, username exactly.
func (s *MemoryStore) CreateUser(_ context.Context, u care.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ID == u.ID || strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicate
		}
		if u.Username != "" && existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	s.users[u.ID] = u
	return nil
}

// GetUser returns the user or ErrNotFound.
func (s *MemoryStore) GetUser(_ context.Context, id string) (care.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return care.User{}, ErrNotFound
	}
	return u, nil
}

// FindUserByEmail looks a user up by email, ignoring case.
func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (care.User, error) {
	return s.findUser(func(u care.User) bool { return strings.EqualFold(u.Email, email) })
}

// FindUserByUsername looks a user up by username.
func (s *MemoryStore) FindUserByUsername(_ context.Context, username string) (care.User, error) {
	return s.findUser(func(u care.User) bool { return u.Username != "" && u.Username == username })
}

func (s *MemoryStore) findUser(match func(care.User) bool) (care.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return care.User{}, ErrNotFound
}

// UpdateUser replaces an existing user.
func (s *MemoryStore) UpdateUser(_ context.Context, u care.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	s.users[u.ID] = u
	return nil
}
