package tools

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/njchilds90/goeq"
)

// ErrSystemNotFound is returned for an unknown system id.
var ErrSystemNotFound = errors.New("system not found")

// Registry holds the systems created through tool calls, keyed by id.
//
// A goeq.System is not safe for concurrent use, so every access through With
// holds that system's lock. The registry itself is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	systems  map[string]*entry
	logger   *slog.Logger
	maxRange int
}

// DefaultMaxRange is the largest slice a single tool call may select.
const DefaultMaxRange = 4096

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMaxRange caps the number of variables a variable_range or bind_range
// call may select. Values below 1 keep the default.
func WithMaxRange(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxRange = n
		}
	}
}

type entry struct {
	mu  sync.Mutex
	sys *goeq.System
}

// NewRegistry returns an empty registry. A nil logger discards records.
func NewRegistry(logger *slog.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Registry{systems: map[string]*entry{}, logger: logger, maxRange: DefaultMaxRange}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// checkRange rejects slices that are open or select more than maxRange
// variables.
func (r *Registry) checkRange(sl goeq.Slice) error {
	n, err := sl.Len()
	if err != nil {
		return err
	}
	if n > r.maxRange {
		return fmt.Errorf("slice %s selects %d variables, limit is %d", sl, n, r.maxRange)
	}
	return nil
}

// Create builds a system from cfg and returns its id.
func (r *Registry) Create(cfg goeq.Config) (string, error) {
	sys, err := goeq.New(cfg, goeq.WithLogger(r.logger))
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	r.mu.Lock()
	r.systems[id] = &entry{sys: sys}
	r.mu.Unlock()
	r.logger.Info("system created", "system", id)
	return id, nil
}

// Delete drops the system with the given id. It reports whether one existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	_, ok := r.systems[id]
	delete(r.systems, id)
	r.mu.Unlock()
	if ok {
		r.logger.Info("system deleted", "system", id)
	}
	return ok
}

// With runs fn with exclusive access to the system with the given id.
func (r *Registry) With(id string, fn func(*goeq.System) error) error {
	r.mu.RLock()
	e, ok := r.systems[id]
	r.mu.RUnlock()
	if !ok {
		return ErrSystemNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sys)
}

// IDs lists the registered system ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.systems))
	for id := range r.systems {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered systems.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.systems)
}
