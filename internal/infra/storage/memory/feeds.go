package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "rentsync/internal/domain/availability"
	domainfeeds "rentsync/internal/domain/feeds"
	domainrooms "rentsync/internal/domain/rooms"
)

// FeedRepository stores feed registrations in memory.
type FeedRepository struct {
	mu    sync.RWMutex
	items map[string]*domainfeeds.Feed
}

func NewFeedRepository() *FeedRepository {
	return &FeedRepository{items: make(map[string]*domainfeeds.Feed)}
}

func (r *FeedRepository) ByRoomPlatform(ctx context.Context, roomID domainrooms.RoomID, platform domainavailability.Source) (*domainfeeds.Feed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.items {
		if f.RoomID == roomID && f.Platform == platform {
			return f, nil
		}
	}
	return nil, domainfeeds.ErrNotFound
}

func (r *FeedRepository) ListEnabled(ctx context.Context, roomIDs []domainrooms.RoomID) ([]*domainfeeds.Feed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filter map[domainrooms.RoomID]struct{}
	if roomIDs != nil {
		filter = make(map[domainrooms.RoomID]struct{}, len(roomIDs))
		for _, id := range roomIDs {
			filter[id] = struct{}{}
		}
	}
	var out []*domainfeeds.Feed
	for _, f := range r.items {
		if !f.Enabled {
			continue
		}
		if filter != nil {
			if _, ok := filter[f.RoomID]; !ok {
				continue
			}
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomID != out[j].RoomID {
			return out[i].RoomID < out[j].RoomID
		}
		return out[i].Platform < out[j].Platform
	})
	return out, nil
}

func (r *FeedRepository) Save(ctx context.Context, feed *domainfeeds.Feed) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[feed.ID] = feed
	return nil
}

// SyncLogRepository keeps sync run history in memory.
type SyncLogRepository struct {
	mu      sync.RWMutex
	entries []*domainfeeds.LogEntry
}

func NewSyncLogRepository() *SyncLogRepository {
	return &SyncLogRepository{}
}

func (r *SyncLogRepository) Append(ctx context.Context, entry *domainfeeds.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *SyncLogRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID, limit int) ([]*domainfeeds.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainfeeds.LogEntry
	for _, e := range r.entries {
		if e.RoomID == roomID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
