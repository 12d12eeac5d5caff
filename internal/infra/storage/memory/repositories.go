package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "rentsync/internal/domain/availability"
	domainbooking "rentsync/internal/domain/booking"
	domainpricing "rentsync/internal/domain/pricing"
	domainrooms "rentsync/internal/domain/rooms"
	domainschedule "rentsync/internal/domain/schedule"
	"rentsync/internal/domain/shared/daterange"
)

// RoomRepository is an in-memory implementation for demo and tests.
type RoomRepository struct {
	mu    sync.RWMutex
	items map[domainrooms.RoomID]*domainrooms.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{items: make(map[domainrooms.RoomID]*domainrooms.Room)}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.items[id]
	if !ok {
		return nil, domainrooms.ErrNotFound
	}
	return room, nil
}

func (r *RoomRepository) BySlug(ctx context.Context, slug string) (*domainrooms.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, room := range r.items {
		if room.Slug == slug {
			return room, nil
		}
	}
	return nil, domainrooms.ErrNotFound
}

func (r *RoomRepository) List(ctx context.Context) ([]*domainrooms.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*domainrooms.Room, 0, len(r.items))
	for _, room := range r.items {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[room.ID] = room
	return nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (r *BookingRepository) ConfirmedOverlapping(ctx context.Context, roomID domainrooms.RoomID, window daterange.DateRange) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.RoomID != roomID || !b.BlocksCalendar() {
			continue
		}
		if b.Stay.Overlaps(window) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stay.Start.Before(out[j].Stay.Start) })
	return out, nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[booking.ID] = booking
	return nil
}

// BlockedPeriodRepository stores manual blocks in memory.
type BlockedPeriodRepository struct {
	mu    sync.RWMutex
	items map[string]*domainschedule.BlockedPeriod
}

func NewBlockedPeriodRepository() *BlockedPeriodRepository {
	return &BlockedPeriodRepository{items: make(map[string]*domainschedule.BlockedPeriod)}
}

func (r *BlockedPeriodRepository) ByID(ctx context.Context, id string) (*domainschedule.BlockedPeriod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainschedule.ErrNotFound
	}
	return p, nil
}

func (r *BlockedPeriodRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID) ([]*domainschedule.BlockedPeriod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainschedule.BlockedPeriod
	for _, p := range r.items {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out, nil
}

func (r *BlockedPeriodRepository) Save(ctx context.Context, period *domainschedule.BlockedPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[period.ID] = period
	return nil
}

func (r *BlockedPeriodRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainschedule.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// PricingRuleRepository stores pricing rules in memory.
type PricingRuleRepository struct {
	mu    sync.RWMutex
	items map[string]*domainpricing.Rule
}

func NewPricingRuleRepository() *PricingRuleRepository {
	return &PricingRuleRepository{items: make(map[string]*domainpricing.Rule)}
}

func (r *PricingRuleRepository) ByID(ctx context.Context, id string) (*domainpricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.items[id]
	if !ok {
		return nil, domainpricing.ErrRuleNotFound
	}
	return rule, nil
}

func (r *PricingRuleRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID) ([]*domainpricing.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainpricing.Rule
	for _, rule := range r.items {
		if rule.RoomID == roomID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Range.Start.Before(out[j].Range.Start) })
	return out, nil
}

func (r *PricingRuleRepository) Save(ctx context.Context, rule *domainpricing.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rule.ID] = rule
	return nil
}

func (r *PricingRuleRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainpricing.ErrRuleNotFound
	}
	delete(r.items, id)
	return nil
}

// LedgerRepository stores per-day availability rows in memory. Rows are
// keyed on (room, date, source) so upserts never duplicate a day and each
// source owns its own rows.
type LedgerRepository struct {
	mu    sync.RWMutex
	items map[ledgerKey]*domainavailability.SyncRecord
}

type ledgerKey struct {
	roomID domainrooms.RoomID
	date   string
	source domainavailability.Source
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{items: make(map[ledgerKey]*domainavailability.SyncRecord)}
}

func (r *LedgerRepository) Range(ctx context.Context, roomID domainrooms.RoomID, window daterange.DateRange) ([]*domainavailability.SyncRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainavailability.SyncRecord
	for _, rec := range r.items {
		if rec.RoomID != roomID {
			continue
		}
		if rec.Date.Before(window.Start) || !rec.Date.Before(window.End) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Source < out[j].Source
	})
	return out, nil
}

func (r *LedgerRepository) BlockedBySource(ctx context.Context, roomID domainrooms.RoomID, source domainavailability.Source) ([]*domainavailability.SyncRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainavailability.SyncRecord
	for _, rec := range r.items {
		if rec.RoomID == roomID && rec.Source == source && rec.Blocked {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *LedgerRepository) Upsert(ctx context.Context, record *domainavailability.SyncRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := ledgerKey{roomID: record.RoomID, date: daterange.FormatDay(record.Date), source: record.Source}
	if existing, ok := r.items[key]; ok {
		record.ID = existing.ID
	}
	r.items[key] = record
	return nil
}

func (r *LedgerRepository) ReplaceSource(ctx context.Context, roomID domainrooms.RoomID, source domainavailability.Source, records []*domainavailability.SyncRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, rec := range r.items {
		if rec.RoomID == roomID && rec.Source == source {
			delete(r.items, key)
		}
	}
	for _, rec := range records {
		r.items[ledgerKey{roomID: rec.RoomID, date: daterange.FormatDay(rec.Date), source: rec.Source}] = rec
	}
	return nil
}
