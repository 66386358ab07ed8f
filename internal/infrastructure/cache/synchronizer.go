package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrViewMayBeStale is the soft warning returned when the forced refetch
	// after a committed mutation failed or timed out.
	ErrViewMayBeStale = errors.New("cache: view may be stale")

	// ErrNoFetcher is returned when a key kind has no registered fetcher.
	ErrNoFetcher = errors.New("cache: no fetcher registered for view kind")
)

// KeyState is the freshness state of one view key.
type KeyState string

const (
	StateFresh      KeyState = "FRESH"
	StateStale      KeyState = "STALE"
	StateRefreshing KeyState = "REFRESHING"
)

// Fetcher computes a view from the system of record.
type Fetcher func(ctx context.Context, key Key) ([]byte, error)

// SyncResult reports what the synchronizer achieved after a mutation.
// A non-nil Warning never means the mutation failed.
type SyncResult struct {
	Fresh   bool
	Warning error
}

type keyEntry struct {
	state KeyState
	gen   uint64
}

type fetchResult struct {
	data  []byte
	fresh bool
}

// Synchronizer implements the read-after-write protocol for customer views.
//
// Each state key carries a generation that MarkStale bumps. A fetch only
// moves its key to FRESH and its value is only served when the generation
// it started under is still current, so a fetch that raced a mutation can
// never resurface a pre-mutation view.
type Synchronizer struct {
	keys        *KeySpace
	store       ViewStore
	invalidator Invalidator
	origin      string

	mu       sync.Mutex
	entries  map[string]*keyEntry
	fetchers map[KeyKind]Fetcher
	group    singleflight.Group

	settleDelay    time.Duration
	refetchTimeout time.Duration
	ttl            time.Duration

	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
}

// SynchronizerOption configures a Synchronizer.
type SynchronizerOption func(*Synchronizer)

// WithSettleDelay waits d between commit and the forced refetch. The wait
// counts against the refetch timeout.
func WithSettleDelay(d time.Duration) SynchronizerOption {
	return func(s *Synchronizer) {
		s.settleDelay = d
	}
}

// WithRefetchTimeout bounds how long AfterMutation waits for fresh data.
func WithRefetchTimeout(d time.Duration) SynchronizerOption {
	return func(s *Synchronizer) {
		s.refetchTimeout = d
	}
}

// WithViewTTL sets how long stored views live.
func WithViewTTL(d time.Duration) SynchronizerOption {
	return func(s *Synchronizer) {
		s.ttl = d
	}
}

// WithInvalidator broadcasts local invalidations to other instances.
func WithInvalidator(inv Invalidator) SynchronizerOption {
	return func(s *Synchronizer) {
		s.invalidator = inv
	}
}

// WithSyncLogger sets the logger.
func WithSyncLogger(logger *zap.Logger) SynchronizerOption {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// WithSyncMetrics records refresh outcomes.
func WithSyncMetrics(m *telemetry.LedgerMetrics) SynchronizerOption {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

// NewSynchronizer creates a synchronizer over store using the given key space.
func NewSynchronizer(keys *KeySpace, store ViewStore, opts ...SynchronizerOption) *Synchronizer {
	s := &Synchronizer{
		keys:           keys,
		store:          store,
		origin:         uuid.NewString(),
		entries:        make(map[string]*keyEntry),
		fetchers:       make(map[KeyKind]Fetcher),
		refetchTimeout: 2 * time.Second,
		ttl:            5 * time.Minute,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys returns the key space.
func (s *Synchronizer) Keys() *KeySpace {
	return s.keys
}

// Register sets the fetcher used by Read and AfterMutation for kind.
func (s *Synchronizer) Register(kind KeyKind, fetch Fetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchers[kind] = fetch
}

// State returns the freshness state of key. Unknown keys are STALE.
func (s *Synchronizer) State(key Key) KeyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[s.keys.StateKey(key)]; ok {
		return e.state
	}
	return StateStale
}

// Read returns the view for key using the registered fetcher.
func (s *Synchronizer) Read(ctx context.Context, key Key) ([]byte, error) {
	s.mu.Lock()
	fetch, ok := s.fetchers[key.Kind]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFetcher, key.Kind)
	}
	return s.ReadWith(ctx, key, fetch)
}

// ReadWith returns the stored view when its key is FRESH, otherwise fetches
// it. Concurrent readers of the same key and generation share one fetch.
func (s *Synchronizer) ReadWith(ctx context.Context, key Key, fetch Fetcher) ([]byte, error) {
	stateKey := s.keys.StateKey(key)
	storeKey := s.keys.StoreKey(key)

	s.mu.Lock()
	e := s.entry(stateKey)
	state, gen := e.state, e.gen
	s.mu.Unlock()

	if state == StateFresh {
		raw, ok, err := s.store.Get(ctx, storeKey)
		switch {
		case err != nil:
			s.logger.Warn("View store read failed",
				zap.String("key", storeKey),
				zap.Error(err))
		case ok:
			storedGen, data, decErr := decodeEnvelope(raw)
			if decErr == nil && storedGen == gen {
				return data, nil
			}
		}
	}

	res, err := s.refresh(ctx, key, fetch)
	if err != nil {
		return nil, err
	}
	return res.data, nil
}

// MarkStale moves keys to STALE and bumps their generations. Fetches in
// flight for those keys will not make them FRESH.
func (s *Synchronizer) MarkStale(ctx context.Context, keys ...Key) {
	stateKeys := s.markStaleLocal(keys...)
	s.publish(ctx, Invalidation{Action: InvalidationStale, StateKeys: stateKeys})
}

// Evict marks key STALE and removes its stored value.
func (s *Synchronizer) Evict(ctx context.Context, key Key) error {
	stateKeys := s.markStaleLocal(key)
	storeKey := s.keys.StoreKey(key)
	err := s.store.Delete(ctx, storeKey)
	s.publish(ctx, Invalidation{
		Action:    InvalidationEvict,
		StateKeys: stateKeys,
		StoreKeys: []string{storeKey},
	})
	return err
}

// AfterMutation runs the post-commit protocol for a customer:
//  1. every dependent view key is marked STALE
//  2. the customer detail value is evicted
//  3. after the optional settle delay the detail view is fetched again and
//     awaited, bounded by the refetch timeout
//
// List views are left STALE and refetched on their next read. A failed or
// timed out refetch yields Fresh=false with ErrViewMayBeStale; the mutation
// itself stands.
func (s *Synchronizer) AfterMutation(ctx context.Context, customerID uuid.UUID) SyncResult {
	detail := s.keys.CustomerDetail(customerID)
	ctx, span := telemetry.StartSpan(ctx, "cache.Synchronizer.AfterMutation",
		telemetry.WithAttribute(telemetry.SpanAttrCustomerID, customerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrViewKey, s.keys.StateKey(detail)),
	)
	defer span.End()

	s.MarkStale(ctx, s.keys.Dependents(customerID)...)
	if err := s.Evict(ctx, detail); err != nil {
		s.logger.Warn("Failed to evict customer detail view",
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
	}

	s.mu.Lock()
	fetch, ok := s.fetchers[KindCustomerDetail]
	s.mu.Unlock()
	if !ok {
		// Nothing to refresh eagerly; the next read fetches.
		telemetry.SetAttribute(span, telemetry.SpanAttrViewFresh, false)
		return SyncResult{Fresh: false}
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.refetchTimeout)
	defer cancel()

	start := time.Now()
	err := s.settle(waitCtx)
	if err == nil {
		_, err = s.refreshBounded(waitCtx, detail, fetch)
	}
	elapsed := time.Since(start)

	if err != nil {
		result := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			result = "timeout"
			s.metrics.RecordViewRefresh(ctx, string(KindCustomerDetail), result, elapsed)
		}
		s.metrics.RecordStaleWarning(ctx, string(KindCustomerDetail))
		s.logger.Warn("Customer detail view may be stale after mutation",
			zap.String("customer_id", customerID.String()),
			zap.String("key", s.keys.StateKey(detail)),
			zap.String("state", string(s.State(detail))),
			zap.String("result", result),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		telemetry.SetAttribute(span, telemetry.SpanAttrViewFresh, false)
		return SyncResult{Fresh: false, Warning: fmt.Errorf("%w: %v", ErrViewMayBeStale, err)}
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrViewFresh, true)
	return SyncResult{Fresh: true}
}

// HandleInvalidation applies an invalidation received from another instance.
// Messages this synchronizer published itself are ignored.
func (s *Synchronizer) HandleInvalidation(msg Invalidation) {
	if msg.Origin == s.origin {
		return
	}
	s.mu.Lock()
	for _, k := range msg.StateKeys {
		e := s.entry(k)
		e.gen++
		e.state = StateStale
	}
	s.mu.Unlock()

	if dropper, ok := s.store.(LocalDropper); ok {
		for _, k := range msg.StoreKeys {
			dropper.DropLocal(k)
		}
	}
}

// StartInvalidationSubscription listens for remote invalidations until ctx
// is done. It blocks; run it in a goroutine.
func (s *Synchronizer) StartInvalidationSubscription(ctx context.Context) error {
	if s.invalidator == nil {
		return nil
	}
	return s.invalidator.Subscribe(ctx, s.HandleInvalidation)
}

// Close releases the invalidator and the store.
func (s *Synchronizer) Close() error {
	var errs []error
	if s.invalidator != nil {
		errs = append(errs, s.invalidator.Close())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}

func (s *Synchronizer) entry(stateKey string) *keyEntry {
	e, ok := s.entries[stateKey]
	if !ok {
		e = &keyEntry{state: StateStale}
		s.entries[stateKey] = e
	}
	return e
}

func (s *Synchronizer) markStaleLocal(keys ...Key) []string {
	stateKeys := make([]string, 0, len(keys))
	s.mu.Lock()
	for _, k := range keys {
		sk := s.keys.StateKey(k)
		e := s.entry(sk)
		e.gen++
		e.state = StateStale
		stateKeys = append(stateKeys, sk)
	}
	s.mu.Unlock()
	return stateKeys
}

func (s *Synchronizer) publish(ctx context.Context, msg Invalidation) {
	if s.invalidator == nil || len(msg.StateKeys) == 0 {
		return
	}
	msg.Origin = s.origin
	if err := s.invalidator.Publish(ctx, msg); err != nil {
		s.logger.Warn("Failed to publish view invalidation",
			zap.String("action", string(msg.Action)),
			zap.Error(err))
	}
}

func (s *Synchronizer) settle(ctx context.Context) error {
	if s.settleDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.settleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refresh fetches key under its current generation, joining any fetch already
// running for the same generation.
func (s *Synchronizer) refresh(ctx context.Context, key Key, fetch Fetcher) (fetchResult, error) {
	flightKey, run := s.prepare(ctx, key, fetch)
	v, err, _ := s.group.Do(flightKey, run)
	if err != nil {
		return fetchResult{}, err
	}
	return v.(fetchResult), nil
}

// refreshBounded is refresh with the wait bounded by ctx.
func (s *Synchronizer) refreshBounded(ctx context.Context, key Key, fetch Fetcher) (fetchResult, error) {
	flightKey, run := s.prepare(ctx, key, fetch)
	ch := s.group.DoChan(flightKey, run)
	select {
	case r := <-ch:
		if r.Err != nil {
			return fetchResult{}, r.Err
		}
		return r.Val.(fetchResult), nil
	case <-ctx.Done():
		return fetchResult{}, ctx.Err()
	}
}

func (s *Synchronizer) prepare(ctx context.Context, key Key, fetch Fetcher) (string, func() (any, error)) {
	stateKey := s.keys.StateKey(key)
	storeKey := s.keys.StoreKey(key)

	s.mu.Lock()
	e := s.entry(stateKey)
	gen := e.gen
	e.state = StateRefreshing
	s.mu.Unlock()

	flightKey := fmt.Sprintf("%s#%d", storeKey, gen)
	run := func() (any, error) {
		start := time.Now()
		data, err := fetch(ctx, key)
		if err != nil {
			s.finish(stateKey, gen, false)
			s.metrics.RecordViewRefresh(ctx, string(key.Kind), "error", time.Since(start))
			return nil, fmt.Errorf("fetch %s: %w", storeKey, err)
		}

		if err := s.store.Set(ctx, storeKey, encodeEnvelope(gen, data), s.ttl); err != nil {
			s.logger.Warn("View store write failed",
				zap.String("key", storeKey),
				zap.Error(err))
			s.finish(stateKey, gen, false)
			return fetchResult{data: data, fresh: false}, nil
		}
		fresh := s.finish(stateKey, gen, true)
		s.metrics.RecordViewRefresh(ctx, string(key.Kind), "ok", time.Since(start))
		return fetchResult{data: data, fresh: fresh}, nil
	}
	return flightKey, run
}

// finish settles the state of a key after a fetch started under gen. It
// reports whether the key became FRESH.
func (s *Synchronizer) finish(stateKey string, gen uint64, ok bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(stateKey)
	if e.gen != gen {
		return false
	}
	if ok {
		e.state = StateFresh
		return true
	}
	e.state = StateStale
	return false
}
