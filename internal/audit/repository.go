package audit

import (
	"context"

	"github.com/ptavares/socialspaces/model"
	"gorm.io/gorm"
)

// EventRepository is the append-only event store. Insert never updates an
// existing row; all read methods operate only over REQUEST_END rows.
type EventRepository interface {
	Insert(ctx context.Context, event *model.AuditEvent) error
	MaxCorrelationID(ctx context.Context) (uint64, error)
	FindEnded(ctx context.Context, filter LogFilter, limit, offset int) ([]*model.AuditEvent, error)
	CountEnded(ctx context.Context, filter LogFilter) (int64, error)
	CountEndedByMethod(ctx context.Context) (map[string]int64, error)
	CountEndedErrors(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func (r *eventRepository) Insert(ctx context.Context, event *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) MaxCorrelationID(ctx context.Context) (uint64, error) {
	var maxID uint64
	err := r.db.WithContext(ctx).
		Model(&model.AuditEvent{}).
		Select("COALESCE(MAX(correlation_id), 0)").
		Scan(&maxID).Error
	return maxID, err
}

func (r *eventRepository) endedQuery(ctx context.Context, filter LogFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&model.AuditEvent{}).
		Where("event_type = ?", EventTypeRequestEnd)
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}
	return query
}

func (r *eventRepository) FindEnded(ctx context.Context, filter LogFilter, limit, offset int) ([]*model.AuditEvent, error) {
	query := r.endedQuery(ctx, filter).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	var events []*model.AuditEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) CountEnded(ctx context.Context, filter LogFilter) (int64, error) {
	var count int64
	err := r.endedQuery(ctx, filter).Count(&count).Error
	return count, err
}

func (r *eventRepository) CountEndedByMethod(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Method string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.AuditEvent{}).
		Select("method, COUNT(*) as count").
		Where("event_type = ?", EventTypeRequestEnd).
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Method] = row.Count
	}
	return counts, nil
}

func (r *eventRepository) CountEndedErrors(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AuditEvent{}).
		Where("event_type = ? AND status >= ?", EventTypeRequestEnd, 400).
		Count(&count).Error
	return count, err
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}
