// Package docsync keeps client-side views of the document registry fresh.
//
// A Syncer caches the set of documents one identity owns and the set shared
// with it, refreshing both from the backing store on demand. Refreshes are
// throttled, deduplicated while in flight, and retried on transient store
// failure. Store change events can drive best-effort background refreshes,
// but no correctness property ever depends on an event being delivered.
package docsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/docvault/internal/logger"
	"github.com/marmos91/docvault/internal/throttle"
	"github.com/marmos91/docvault/pkg/docstore"
	"github.com/marmos91/docvault/pkg/identity"
	"github.com/marmos91/docvault/pkg/metrics"
)

// ============================================================================
// Configuration
// ============================================================================

const (
	// DefaultRetryAttempts is how many times a refresh fetch is attempted
	// when the store reports a transient failure.
	DefaultRetryAttempts = 3

	// DefaultRetryBackoff is the delay before the first retry. The delay
	// doubles after each failed attempt.
	DefaultRetryBackoff = 100 * time.Millisecond
)

// Option configures a Syncer.
type Option func(*Syncer)

// WithCooldown sets the minimum interval between non-forced refreshes.
// A non-positive cooldown disables throttling.
func WithCooldown(d time.Duration) Option {
	return func(s *Syncer) { s.gate = throttle.NewGate(d) }
}

// WithMetrics enables refresh metrics collection.
func WithMetrics(m metrics.ProtocolMetrics) Option {
	return func(s *Syncer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRetry sets the retry policy for transient store failures during a
// refresh. attempts is the total number of tries; backoff is the delay
// before the first retry and doubles after each failure.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *Syncer) {
		if attempts > 0 {
			s.retryAttempts = attempts
		}
		if backoff > 0 {
			s.retryBackoff = backoff
		}
	}
}

// ============================================================================
// Syncer
// ============================================================================

// Syncer maintains cached registry views for a single identity.
//
// Views are snapshots: they change only when a refresh completes, never
// mid-read. Retries apply to this read path only; mutating operations are
// never retried anywhere in this module, since a mutation that timed out may
// still have committed.
//
// Thread Safety:
// All methods are safe for concurrent use.
type Syncer struct {
	store docstore.Store
	who   identity.Identity

	gate          *throttle.Gate
	retryAttempts int
	retryBackoff  time.Duration
	metrics       metrics.ProtocolMetrics

	// inFlight guards against overlapping refreshes. A Refresh that loses
	// the race is dropped, not queued: the winner's result covers it.
	inFlight atomic.Bool

	mu        sync.RWMutex
	owned     []docstore.StoredDocument
	shared    []docstore.StoredDocument
	refreshed time.Time

	subMu sync.Mutex
	subs  map[string]context.CancelFunc
}

// New creates a Syncer for the given identity backed by store.
func New(store docstore.Store, who identity.Identity, opts ...Option) *Syncer {
	s := &Syncer{
		store:         store,
		who:           who,
		gate:          throttle.NewGate(throttle.DefaultCooldown),
		retryAttempts: DefaultRetryAttempts,
		retryBackoff:  DefaultRetryBackoff,
		metrics:       metrics.NoopProtocolMetrics{},
		subs:          make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identity returns the identity whose views this Syncer maintains.
func (s *Syncer) Identity() identity.Identity {
	return s.who
}

// ============================================================================
// Refresh
// ============================================================================

// Refresh fetches both views from the store and replaces the cached
// snapshots.
//
// A non-forced Refresh inside the cooldown window is skipped: callers get
// the cached views, which are at most one cooldown old. force bypasses the
// window (and restarts it) for callers that just mutated and want to observe
// their own write.
//
// If a refresh is already in flight, this call is dropped regardless of
// force: the in-flight refresh will observe at least as fresh a state.
//
// Transient store failures are retried with doubling backoff. Returns nil on
// success or skip, or the last error once retries are exhausted.
func (s *Syncer) Refresh(ctx context.Context, force bool) error {
	if force {
		s.gate.AllowForce()
	} else if !s.gate.Allow() {
		logger.Debug("docsync: refresh for %s skipped (cooldown)", s.who)
		s.metrics.RecordRefresh("skipped")
		return nil
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		logger.Debug("docsync: refresh for %s dropped (already in flight)", s.who)
		s.metrics.RecordRefresh("dropped")
		return nil
	}
	defer s.inFlight.Store(false)

	owned, err := s.fetchWithRetry(ctx, docstore.Filter{Owner: &s.who})
	if err != nil {
		s.metrics.RecordRefresh("failed")
		return fmt.Errorf("failed to refresh owned documents: %w", err)
	}
	shared, err := s.fetchWithRetry(ctx, docstore.Filter{SharedWith: &s.who})
	if err != nil {
		s.metrics.RecordRefresh("failed")
		return fmt.Errorf("failed to refresh shared documents: %w", err)
	}

	s.mu.Lock()
	s.owned = owned
	s.shared = shared
	s.refreshed = time.Now()
	s.mu.Unlock()

	logger.Debug("docsync: refreshed views for %s (%d owned, %d shared)",
		s.who, len(owned), len(shared))
	s.metrics.RecordRefresh("completed")
	return nil
}

// fetchWithRetry lists documents, retrying transient failures.
func (s *Syncer) fetchWithRetry(ctx context.Context, filter docstore.Filter) ([]docstore.StoredDocument, error) {
	backoff := s.retryBackoff

	var lastErr error
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		docs, err := s.store.ListDocuments(ctx, filter)
		if err == nil {
			return docs, nil
		}
		lastErr = err

		// Only transient store failures are worth another try.
		if !docstore.IsUnavailable(err) || attempt == s.retryAttempts {
			break
		}
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			break
		}

		logger.Warn("docsync: list attempt %d/%d failed, retrying in %v: %v",
			attempt, s.retryAttempts, backoff, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

// ============================================================================
// Views
// ============================================================================

// Documents returns the cached snapshot of documents owned by this identity.
// The returned slice is a copy; mutating it does not affect the cache.
func (s *Syncer) Documents() []docstore.StoredDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneView(s.owned)
}

// SharedWithMe returns the cached snapshot of documents shared with this
// identity. The returned slice is a copy.
func (s *Syncer) SharedWithMe() []docstore.StoredDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneView(s.shared)
}

// LastRefresh returns when the views were last replaced by a completed
// refresh, or the zero time if no refresh has completed yet.
func (s *Syncer) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshed
}

func cloneView(docs []docstore.StoredDocument) []docstore.StoredDocument {
	out := make([]docstore.StoredDocument, len(docs))
	for i, d := range docs {
		out[i] = docstore.StoredDocument{
			Address:  d.Address,
			Document: d.Document.Clone(),
		}
	}
	return out
}

// ============================================================================
// Subscriptions
// ============================================================================

// Subscription is a handle on a background watch loop. Cancel detaches it;
// the loop also stops when the context passed to Subscribe is cancelled or
// the store closes its event channel.
type Subscription struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// ID returns the unique identifier of this subscription.
func (sub *Subscription) ID() string {
	return sub.id
}

// Cancel stops the watch loop and blocks until it has exited. Safe to call
// more than once.
func (sub *Subscription) Cancel() {
	sub.cancel()
	<-sub.done
}

// Subscribe starts a background loop that triggers a non-forced refresh
// whenever the store reports a change. Refreshes triggered this way are
// best-effort: throttled, deduplicated, and errors only logged. A caller
// that needs a guaranteed-fresh view calls Refresh with force instead.
func (s *Syncer) Subscribe(ctx context.Context) (*Subscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	events, err := s.store.Watch(watchCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch store: %w", err)
	}

	sub := &Subscription{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.subMu.Lock()
	s.subs[sub.id] = cancel
	s.subMu.Unlock()

	go func() {
		defer close(sub.done)
		defer func() {
			s.subMu.Lock()
			delete(s.subs, sub.id)
			s.subMu.Unlock()
		}()

		for range events {
			if err := s.Refresh(watchCtx, false); err != nil {
				logger.Warn("docsync: event-driven refresh failed: %v", err)
			}
		}
		logger.Debug("docsync: subscription %s closed", sub.id)
	}()

	return sub, nil
}

// Close cancels all active subscriptions. The Syncer remains usable for
// explicit Refresh calls; it does not own the store.
func (s *Syncer) Close() {
	s.subMu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.subs))
	for _, cancel := range s.subs {
		cancels = append(cancels, cancel)
	}
	s.subMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
