package care

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/plant-care/internal/advice"
	"github.com/i474232898/plant-care/internal/common"
	"github.com/i474232898/plant-care/internal/weather"
)

const wateredNote = "Watered"

// LocationResolver picks the weather location for a user's city.
type LocationResolver interface {
	Resolve(ctx context.Context, city, country string) weather.Location
}

// ResyncFunc is called after a plant changes so its WATER task follows.
type ResyncFunc func(ctx context.Context, userID string)

// PlantInput carries the user-editable plant fields.
type PlantInput struct {
	Name                string
	Species             string
	WaterEveryDays      *int
	SunlightHoursPerDay *float64
	LastWatered         *time.Time
	PhotoRef            string
	DroughtTolerant     bool
}

// WaterInput describes one watering. A nil Date means today.
type WaterInput struct {
	Date            *time.Time
	SoilMoisturePct *float64
	Notes           string
}

// JournalInput is a new journal entry. A nil EntryDate means now.
type JournalInput struct {
	Content   string
	PhotoRef  string
	EntryDate *time.Time
}

// LogInput is a manually recorded care action.
type LogInput struct {
	PlantID         string
	Date            *time.Time
	Action          TaskType
	SoilMoisturePct *float64
	FertilizerMl    *float64
	Notes           string
}

// Service implements plant, care log and supply operations for one user at a time.
type Service struct {
	store    Store
	advisor  *advice.Advisor
	weather  weather.Source
	resolver LocationResolver
	clock    common.Clock
	timeout  time.Duration
	logger   *zap.Logger
	resync   ResyncFunc
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithWeather enables weather-aware advice. resolver may be nil.
func WithWeather(src weather.Source, resolver LocationResolver, timeout time.Duration) Option {
	return func(s *Service) {
		s.weather = src
		s.resolver = resolver
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithResync registers the hook run after plant mutations.
func WithResync(fn ResyncFunc) Option {
	return func(s *Service) { s.resync = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service. Without WithWeather advice is built from schedule and moisture only.
func NewService(store Store, clock common.Clock, opts ...Option) *Service {
	s := &Service{
		store:   store,
		advisor: advice.NewAdvisor(clock),
		clock:   clock,
		timeout: 15 * time.Second,
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return common.SystemClock()
	}
	return s.clock().UTC()
}

func (s *Service) afterChange(ctx context.Context, userID string) {
	if s.resync != nil {
		s.resync(ctx, userID)
	}
}

// ---- plants

func validatePlant(in PlantInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if in.WaterEveryDays != nil && *in.WaterEveryDays < 0 {
		return invalid("waterEveryDays must be >= 0")
	}
	if in.SunlightHoursPerDay != nil && (*in.SunlightHoursPerDay < 0 || *in.SunlightHoursPerDay > 24) {
		return invalid("sunlightHoursPerDay must be between 0 and 24")
	}
	return nil
}

// ListPlants returns the user's plants, oldest first.
func (s *Service) ListPlants(ctx context.Context, userID string) ([]Plant, error) {
	return s.store.ListPlants(ctx, userID)
}

// GetPlant returns ErrForbidden for plants owned by someone else.
func (s *Service) GetPlant(ctx context.Context, userID, plantID string) (Plant, error) {
	p, err := s.store.GetPlant(ctx, plantID)
	if err != nil {
		return Plant{}, err
	}
	if p.UserID != userID {
		return Plant{}, ErrForbidden
	}
	return p, nil
}

// CreatePlant stores a new plant and resyncs the user's tasks.
func (s *Service) CreatePlant(ctx context.Context, userID string, in PlantInput) (Plant, error) {
	if err := validatePlant(in); err != nil {
		return Plant{}, err
	}
	p := Plant{
		ID:        s.newID(),
		UserID:    userID,
		CreatedAt: s.now(),
	}
	applyPlantInput(&p, in)
	if err := s.store.CreatePlant(ctx, p); err != nil {
		return Plant{}, err
	}
	s.afterChange(ctx, userID)
	return p, nil
}

// UpdatePlant replaces the editable fields of an owned plant.
func (s *Service) UpdatePlant(ctx context.Context, userID, plantID string, in PlantInput) (Plant, error) {
	if err := validatePlant(in); err != nil {
		return Plant{}, err
	}
	p, err := s.GetPlant(ctx, userID, plantID)
	if err != nil {
		return Plant{}, err
	}
	applyPlantInput(&p, in)
	if err := s.store.UpdatePlant(ctx, p); err != nil {
		return Plant{}, err
	}
	s.afterChange(ctx, userID)
	return p, nil
}

func applyPlantInput(p *Plant, in PlantInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Species = strings.TrimSpace(in.Species)
	p.WaterEveryDays = in.WaterEveryDays
	p.SunlightHoursPerDay = in.SunlightHoursPerDay
	if in.LastWatered != nil {
		d := common.DateOf(*in.LastWatered)
		p.LastWatered = &d
	} else {
		p.LastWatered = nil
	}
	p.PhotoRef = in.PhotoRef
	p.DroughtTolerant = in.DroughtTolerant
}

// DeletePlant removes the plant and its tasks. Care log entries are kept.
func (s *Service) DeletePlant(ctx context.Context, userID, plantID string) error {
	if _, err := s.GetPlant(ctx, userID, plantID); err != nil {
		return err
	}
	return s.store.DeletePlant(ctx, plantID)
}

// WaterPlant records a watering, logs it and resyncs the user's tasks.
func (s *Service) WaterPlant(ctx context.Context, userID, plantID string, in WaterInput) (Plant, error) {
	p, err := s.GetPlant(ctx, userID, plantID)
	if err != nil {
		return Plant{}, err
	}

	date := common.Today(s.clock)
	if in.Date != nil {
		date = common.DateOf(*in.Date)
	}
	if date.After(common.Today(s.clock)) {
		return Plant{}, invalid("watering date is in the future")
	}

	// an older backfilled watering must not move LastWatered backwards
	if p.LastWatered == nil || !date.Before(*p.LastWatered) {
		p.LastWatered = &date
		if err := s.store.UpdatePlant(ctx, p); err != nil {
			return Plant{}, err
		}
	}

	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = wateredNote
	}
	entry := CareLogEntry{
		ID:              s.newID(),
		UserID:          userID,
		PlantID:         p.ID,
		PlantName:       p.Name,
		Date:            date,
		Action:          TaskWater,
		SoilMoisturePct: in.SoilMoisturePct,
		Notes:           notes,
		CreatedAt:       s.now(),
	}
	if err := s.store.InsertLog(ctx, entry); err != nil {
		return p, err
	}

	s.afterChange(ctx, userID)
	return p, nil
}

// ---- care log

// AddLog records a manual care action for an owned plant. A nil Date means today.
func (s *Service) AddLog(ctx context.Context, userID string, in LogInput) (CareLogEntry, error) {
	if !in.Action.Valid() {
		return CareLogEntry{}, invalid("unknown action " + string(in.Action))
	}
	if in.FertilizerMl != nil && *in.FertilizerMl < 0 {
		return CareLogEntry{}, invalid("fertilizerMl must be >= 0")
	}
	p, err := s.GetPlant(ctx, userID, in.PlantID)
	if err != nil {
		return CareLogEntry{}, err
	}

	date := common.Today(s.clock)
	if in.Date != nil {
		date = common.DateOf(*in.Date)
	}
	entry := CareLogEntry{
		ID:              s.newID(),
		UserID:          userID,
		PlantID:         p.ID,
		PlantName:       p.Name,
		Date:            date,
		Action:          in.Action,
		SoilMoisturePct: in.SoilMoisturePct,
		FertilizerMl:    in.FertilizerMl,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       s.now(),
	}
	if err := s.store.InsertLog(ctx, entry); err != nil {
		return CareLogEntry{}, err
	}
	return entry, nil
}

// ListLogs returns the user's entries newest first. plantID and limit are optional.
func (s *Service) ListLogs(ctx context.Context, userID, plantID string, limit int) ([]CareLogEntry, error) {
	if plantID != "" {
		if _, err := s.GetPlant(ctx, userID, plantID); err != nil {
			return nil, err
		}
	}
	return s.store.ListLogs(ctx, userID, plantID, limit)
}

// ---- journal

const maxJournalContent = 5000

// AddJournalEntry writes a note for an owned plant.
func (s *Service) AddJournalEntry(ctx context.Context, userID, plantID string, in JournalInput) (JournalEntry, error) {
	content := strings.TrimSpace(in.Content)
	switch {
	case content == "":
		return JournalEntry{}, invalid("content is required")
	case len(content) > maxJournalContent:
		return JournalEntry{}, invalid("content is too long")
	}
	p, err := s.GetPlant(ctx, userID, plantID)
	if err != nil {
		return JournalEntry{}, err
	}

	at := s.now()
	if in.EntryDate != nil {
		at = in.EntryDate.UTC()
	}
	if at.After(s.now()) {
		return JournalEntry{}, invalid("entry date is in the future")
	}

	e := JournalEntry{
		ID:        s.newID(),
		UserID:    userID,
		PlantID:   p.ID,
		PlantName: p.Name,
		EntryDate: at,
		Content:   content,
		PhotoRef:  strings.TrimSpace(in.PhotoRef),
	}
	if err := s.store.InsertJournalEntry(ctx, e); err != nil {
		return JournalEntry{}, err
	}
	return e, nil
}

// ListJournal returns the journal of an owned plant, newest first.
func (s *Service) ListJournal(ctx context.Context, userID, plantID string) ([]JournalEntry, error) {
	if _, err := s.GetPlant(ctx, userID, plantID); err != nil {
		return nil, err
	}
	return s.store.ListJournalEntries(ctx, userID, plantID)
}

// DeleteJournalEntry removes an entry owned by userID.
func (s *Service) DeleteJournalEntry(ctx context.Context, userID, entryID string) error {
	e, err := s.store.GetJournalEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if e.UserID != userID {
		return ErrForbidden
	}
	return s.store.DeleteJournalEntry(ctx, entryID)
}

// ---- supplies

// ListSupplies returns the user's supplies sorted by name.
func (s *Service) ListSupplies(ctx context.Context, userID string) ([]SupplyItem, error) {
	return s.store.ListSupplies(ctx, userID)
}

// CreateSupply adds a supply item. A non-zero starting quantity counts as a restock.
func (s *Service) CreateSupply(ctx context.Context, userID, name string, quantity, refillBelow int) (SupplyItem, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return SupplyItem{}, invalid("name is required")
	case quantity < 0:
		return SupplyItem{}, invalid("quantity must be >= 0")
	case refillBelow < 0:
		return SupplyItem{}, invalid("refillBelow must be >= 0")
	}

	item := SupplyItem{
		ID:          s.newID(),
		UserID:      userID,
		Name:        name,
		Quantity:    quantity,
		RefillBelow: refillBelow,
	}
	if quantity > 0 {
		now := s.now()
		item.LastRestocked = &now
	}
	if err := s.store.CreateSupply(ctx, item); err != nil {
		return SupplyItem{}, err
	}
	return item, nil
}

// AdjustSupply adds delta to the stock. A positive delta counts as a restock.
// The quantity never drops below zero.
func (s *Service) AdjustSupply(ctx context.Context, userID, supplyID string, delta int) (SupplyItem, error) {
	item, err := s.store.GetSupply(ctx, supplyID)
	if err != nil {
		return SupplyItem{}, err
	}
	if item.UserID != userID {
		return SupplyItem{}, ErrForbidden
	}
	if item.Quantity+delta < 0 {
		delta = -item.Quantity
	}

	var restocked *time.Time
	if delta > 0 {
		now := s.now()
		restocked = &now
	}
	return s.store.AdjustSupply(ctx, supplyID, delta, restocked)
}

// DeleteSupply removes an owned supply item.
func (s *Service) DeleteSupply(ctx context.Context, userID, supplyID string) error {
	item, err := s.store.GetSupply(ctx, supplyID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return ErrForbidden
	}
	return s.store.DeleteSupply(ctx, supplyID)
}

// ---- advice

// PlantAdvice runs the advisor for one plant. Weather is best effort: a failed fetch
// gives schedule and moisture based advice. droughtOverride replaces the stored flag.
func (s *Service) PlantAdvice(ctx context.Context, userID, plantID string, moisture *float64, droughtOverride *bool) (advice.Advice, error) {
	p, err := s.GetPlant(ctx, userID, plantID)
	if err != nil {
		return advice.Advice{}, err
	}

	drought := p.DroughtTolerant
	if droughtOverride != nil {
		drought = *droughtOverride
	}

	return s.advisor.Advise(advice.Input{
		Weather:         s.CurrentWeather(ctx, userID),
		LastWatered:     p.LastWatered,
		WaterEveryDays:  p.WaterEveryDays,
		SoilMoisturePct: moisture,
		DroughtTolerant: drought,
	}), nil
}

// CurrentWeather returns the weather at the user's location, or nil when unavailable.
func (s *Service) CurrentWeather(ctx context.Context, userID string) *weather.WeatherSnapshot {
	if s.weather == nil {
		return nil
	}

	var loc weather.Location
	if s.resolver != nil {
		city, country := "", ""
		if u, err := s.store.GetUser(ctx, userID); err == nil {
			city, country = u.City, u.Country
		} else if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("user lookup failed", zap.String("user", userID), zap.Error(err))
		}
		loc = s.resolver.Resolve(ctx, city, country)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	snap, err := s.weather.Current(ctx, loc)
	if err != nil {
		s.logger.Warn("weather unavailable for advice", zap.String("location", loc.Key()), zap.Error(err))
		return nil
	}
	return &snap
}
