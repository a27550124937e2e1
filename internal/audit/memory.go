package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ptavares/socialspaces/model"
)

// MemoryEventRepository keeps audit events in process memory. It backs
// deployments without a MySQL instance (audit.backend: memory) and the test
// suites. Semantics match the gorm repository: append-only, write-time
// timestamps, END-only reads ordered most recent first.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	nextID uint64
	events []*model.AuditEvent
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{}
}

func (r *MemoryEventRepository) Insert(ctx context.Context, event *model.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *event
	r.nextID++
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.events = append(r.events, &stored)
	event.ID = stored.ID
	event.CreatedAt = stored.CreatedAt
	return nil
}

func (r *MemoryEventRepository) MaxCorrelationID(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var maxID uint64
	for _, event := range r.events {
		if event.CorrelationID > maxID {
			maxID = event.CorrelationID
		}
	}
	return maxID, nil
}

func (r *MemoryEventRepository) matchEnded(filter LogFilter) []*model.AuditEvent {
	var matched []*model.AuditEvent
	for _, event := range r.events {
		if event.EventType != EventTypeRequestEnd {
			continue
		}
		if filter.UserID != "" && (event.UserID == nil || *event.UserID != filter.UserID) {
			continue
		}
		if filter.Method != "" && (event.Method == nil || *event.Method != filter.Method) {
			continue
		}
		if filter.StartDate != nil && event.CreatedAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && event.CreatedAt.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, event)
	}
	return matched
}

func (r *MemoryEventRepository) FindEnded(ctx context.Context, filter LogFilter, limit, offset int) ([]*model.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.matchEnded(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 {
		if offset >= len(matched) {
			matched = nil
		} else {
			end := offset + limit
			if end > len(matched) {
				end = len(matched)
			}
			matched = matched[offset:end]
		}
	}
	results := make([]*model.AuditEvent, len(matched))
	for i, event := range matched {
		copied := *event
		results[i] = &copied
	}
	return results, nil
}

func (r *MemoryEventRepository) CountEnded(ctx context.Context, filter LogFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matchEnded(filter))), nil
}

func (r *MemoryEventRepository) CountEndedByMethod(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int64)
	for _, event := range r.events {
		if event.EventType != EventTypeRequestEnd || event.Method == nil {
			continue
		}
		counts[*event.Method]++
	}
	return counts, nil
}

func (r *MemoryEventRepository) CountEndedErrors(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, event := range r.events {
		if event.EventType != EventTypeRequestEnd {
			continue
		}
		if event.Status != nil && *event.Status >= 400 {
			count++
		}
	}
	return count, nil
}
