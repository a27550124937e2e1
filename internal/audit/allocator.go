package audit

import (
	"context"
	"sync"
)

// Allocator issues correlation ids. Every id is strictly greater than both
// the highest id present in the store and every id this instance has handed
// out, so two in-flight requests can never share one.
//
// The max-read and the increment happen under a single mutex rather than
// relying on a store uniqueness constraint; this keeps allocation correct
// for any EventRepository backend, including the in-memory one.
type Allocator struct {
	mu   sync.Mutex
	last uint64
	repo EventRepository
}

func NewAllocator(repo EventRepository) *Allocator {
	return &Allocator{repo: repo}
}

// Allocate returns the next correlation id. A storage failure here is fatal
// to the request pipeline: proceeding without an id would leave the request
// invisible to the audit trail with no failure record at all.
func (a *Allocator) Allocate(ctx context.Context) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	maxID, err := a.repo.MaxCorrelationID(ctx)
	if err != nil {
		return 0, err
	}
	next := maxID + 1
	if next <= a.last {
		next = a.last + 1
	}
	a.last = next
	return next, nil
}
