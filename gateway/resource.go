package gateway

import (
	"context"
	"sync"
)

type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of a Resource.
type Snapshot[T any] struct {
	Status Status
	Data   T
	Err    string
}

// Resource tracks a loading/error/success tri-state around a fetch function.
// A Load issued while another is in flight is ignored. Data from the last
// success is kept when a later fetch fails.
type Resource[T any] struct {
	fetch func(context.Context) (T, error)

	mu       sync.Mutex
	snap     Snapshot[T]
	inFlight bool
}

func NewResource[T any](fetch func(context.Context) (T, error)) *Resource[T] {
	return &Resource[T]{fetch: fetch, snap: Snapshot[T]{Status: StatusLoading}}
}

// Load runs the fetch and returns the resulting snapshot. started is false when
// another Load was already in flight.
func (r *Resource[T]) Load(ctx context.Context) (snap Snapshot[T], started bool) {
	r.mu.Lock()
	if r.inFlight {
		snap = r.snap
		r.mu.Unlock()
		return snap, false
	}
	r.inFlight = true
	r.snap.Status = StatusLoading
	r.snap.Err = ""
	r.mu.Unlock()

	data, err := r.fetch(ctx)
	r.Set(data, err)

	r.mu.Lock()
	r.inFlight = false
	snap = r.snap
	r.mu.Unlock()
	return snap, true
}

// Set records an externally delivered result, such as a change-feed refetch.
func (r *Resource[T]) Set(data T, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.snap.Status = StatusError
		r.snap.Err = err.Error()
		return
	}
	r.snap = Snapshot[T]{Status: StatusSuccess, Data: data}
}

func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}
