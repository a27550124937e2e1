package audit

import (
	"context"
	"strings"
	"time"

	"github.com/ptavares/socialspaces/model"
)

// ListOptions are the validated inputs of a filtered log listing. Limit and
// Offset are assumed to be clamped by the caller; UserID is assumed to be
// escaped already since it is echoed back in responses.
type ListOptions struct {
	Limit     int
	Offset    int
	UserID    string
	Method    string
	StartDate *time.Time
	EndDate   *time.Time
}

type LogPage struct {
	Logs  []AuditLog `json:"logs"`
	Total int64      `json:"total"`
}

type Summary struct {
	TotalRequests    int64            `json:"totalRequests"`
	RequestsByMethod map[string]int64 `json:"requestsByMethod"`
	ErrorRate        float64          `json:"errorRate"`
}

// Service is the audit query engine. It only ever reads REQUEST_END rows
// and never assumes a START has a matching END or vice versa.
type Service struct {
	repo EventRepository
}

func NewService(repo EventRepository) *Service {
	return &Service{repo: repo}
}

func formatLog(event *model.AuditEvent) AuditLog {
	return AuditLog{
		ID:     event.CorrelationID,
		Method: event.Method,
		Path:   event.Path,
		Status: event.Status,
		User:   event.UserID,
		Time:   event.CreatedAt,
	}
}

// AllLogs returns every END record, most recent first, unpaginated. The
// result is an empty slice on an empty store, never nil.
func (s *Service) AllLogs(ctx context.Context) ([]AuditLog, error) {
	events, err := s.repo.FindEnded(ctx, LogFilter{}, 0, 0)
	if err != nil {
		return nil, err
	}
	logs := make([]AuditLog, 0, len(events))
	for _, event := range events {
		logs = append(logs, formatLog(event))
	}
	return logs, nil
}

// ListLogs returns a filtered page of END records plus the total count of
// rows matching the filter before pagination. A start date after the end
// date is rejected, never swapped or ignored.
func (s *Service) ListLogs(ctx context.Context, opts ListOptions) (*LogPage, error) {
	if opts.StartDate != nil && opts.EndDate != nil && opts.StartDate.After(*opts.EndDate) {
		return nil, ErrStartAfterEnd
	}

	filter := LogFilter{
		UserID:    opts.UserID,
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
	}
	// Only a recognized HTTP verb is applied as a method predicate; anything
	// else is dropped silently.
	method := strings.ToUpper(opts.Method)
	if _, ok := recognizedMethods[method]; ok {
		filter.Method = method
	}

	total, err := s.repo.CountEnded(ctx, filter)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.FindEnded(ctx, filter, opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}

	logs := make([]AuditLog, 0, len(events))
	for _, event := range events {
		logs = append(logs, formatLog(event))
	}
	return &LogPage{Logs: logs, Total: total}, nil
}

// Summary aggregates all END records: total count, per-method breakdown and
// the share of responses with status >= 400. An empty store yields zeros,
// never a division-by-zero artifact.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	total, err := s.repo.CountEnded(ctx, LogFilter{})
	if err != nil {
		return nil, err
	}

	byMethod, err := s.repo.CountEndedByMethod(ctx)
	if err != nil {
		return nil, err
	}
	if byMethod == nil {
		byMethod = map[string]int64{}
	}

	var errorRate float64
	if total > 0 {
		errorCount, err := s.repo.CountEndedErrors(ctx)
		if err != nil {
			return nil, err
		}
		errorRate = float64(errorCount) / float64(total) * 100
	}

	return &Summary{
		TotalRequests:    total,
		RequestsByMethod: byMethod,
		ErrorRate:        errorRate,
	}, nil
}
