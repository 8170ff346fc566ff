package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
	"github.com/rl1809/ticket-inventory/internal/metrics"
	"github.com/rl1809/ticket-inventory/internal/port"
)

var (
	ErrItemNotFound     = errors.New("listing not found")
	ErrInvalidField     = errors.New("invalid field")
	ErrInvalidValue     = errors.New("invalid value")
	ErrValidation       = errors.New("validation failed")
	ErrIDCollision      = errors.New("could not mint a unique id")
	ErrClosed           = errors.New("table manager closed")
	ErrDuplicateRequest = errors.New("duplicate request")
)

const (
	defaultWorkers      = 4
	defaultQueueSize    = 256
	defaultWriteTimeout = 5 * time.Second
	maxFailures         = 100
	idAttempts          = 3
)

type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Row is a visible listing together with its table state.
type Row struct {
	domain.InventoryItem
	Selected       bool `json:"selected"`
	Pending        bool `json:"pending"`
	RecentlyCloned bool `json:"recentlyCloned"`
}

type MatchGroup struct {
	MatchEvent string                 `json:"matchEvent"`
	Collapsed  bool                   `json:"collapsed"`
	Items      []domain.InventoryItem `json:"items"`
}

// WriteFailure records a queued write the store rejected.
type WriteFailure struct {
	ID         string    `json:"id"`
	Op         string    `json:"op"`
	Error      string    `json:"error"`
	RolledBack bool      `json:"rolledBack"`
	At         time.Time `json:"at"`
}

type Option func(*TableManager)

// WithSource loads the collection from src instead of the store. Loaded rows
// are written through to the store so later edits have a record to update.
func WithSource(src port.ItemSource) Option {
	return func(m *TableManager) { m.source = src }
}

func WithOverviewSource(src port.OverviewSource) Option {
	return func(m *TableManager) { m.overview = src }
}

// WithIdempotency rejects repeated create requests carrying the same request id.
func WithIdempotency(store port.IdempotencyStore) Option {
	return func(m *TableManager) { m.idem = store }
}

func WithIDGenerator(ids IDGenerator) Option {
	return func(m *TableManager) { m.ids = ids }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *TableManager) { m.metrics = mt }
}

func WithWorkers(n int) Option {
	return func(m *TableManager) { m.workers = n }
}

func WithQueueSize(n int) Option {
	return func(m *TableManager) { m.queueSize = n }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(m *TableManager) { m.writeTimeout = d }
}

// TableManager owns the in-memory listing collection together with the
// selection, column filters and per-row write state. Every mutation is applied
// locally first; persistence happens on a background write queue.
type TableManager struct {
	store        port.ItemRepository
	source       port.ItemSource
	overview     port.OverviewSource
	idem         port.IdempotencyStore
	ids          IDGenerator
	logger       *zap.Logger
	metrics      *metrics.Metrics
	workers      int
	queueSize    int
	writeTimeout time.Duration

	writes   *writeQueue
	workerWg sync.WaitGroup

	mu        sync.Mutex
	items     []domain.InventoryItem
	selected  map[string]struct{}
	filters   domain.Filters
	cloned    map[string]struct{}
	collapsed map[string]bool
	persisted map[string]domain.InventoryItem
	latestSeq map[string]uint64
	inflight  map[string]int
	nextSeq   uint64
	failures  []WriteFailure
}

func NewTableManager(store port.ItemRepository, logger *zap.Logger, opts ...Option) *TableManager {
	m := &TableManager{
		store:        store,
		source:       store,
		ids:          uuidGenerator{},
		logger:       logger,
		workers:      defaultWorkers,
		queueSize:    defaultQueueSize,
		writeTimeout: defaultWriteTimeout,
		selected:     make(map[string]struct{}),
		filters:      make(domain.Filters),
		cloned:       make(map[string]struct{}),
		collapsed:    make(map[string]bool),
		persisted:    make(map[string]domain.InventoryItem),
		latestSeq:    make(map[string]uint64),
		inflight:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}

	m.writes = newWriteQueue(m.workers, m.queueSize)
	for i, shard := range m.writes.shards {
		m.workerWg.Add(1)
		go func(id int, queue <-chan pendingWrite) {
			defer m.workerWg.Done()
			m.workerLoop(id, queue)
		}(i, shard)
	}
	return m
}

// Load replaces the collection with the source's listings. On failure the
// collection is left empty.
func (m *TableManager) Load(ctx context.Context) error {
	items, err := m.source.List(ctx)
	if err != nil {
		m.logger.Warn("failed to load listings, starting empty", zap.Error(err))
		m.replace(nil)
		return fmt.Errorf("load listings: %w", err)
	}

	if m.source != port.ItemSource(m.store) {
		m.seedStore(ctx, items)
	}

	m.replace(items)
	m.logger.Info("loaded listings", zap.Int("count", len(items)))
	return nil
}

func (m *TableManager) seedStore(ctx context.Context, items []domain.InventoryItem) {
	for _, it := range items {
		if _, err := m.store.Create(ctx, it); err != nil {
			if _, uerr := m.store.Update(ctx, it); uerr != nil {
				m.logger.Warn("failed to seed listing into store",
					zap.String("id", it.ID), zap.Error(errors.Join(err, uerr)))
			}
		}
	}
}

// replace swaps in a new collection. In-flight markers and the failure log
// are kept: their writes are still queued, and queued updates for reloaded
// rows turn stale against the fresh sequence numbers.
func (m *TableManager) replace(items []domain.InventoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make([]domain.InventoryItem, len(items))
	copy(m.items, items)
	m.selected = make(map[string]struct{})
	m.cloned = make(map[string]struct{})
	m.persisted = make(map[string]domain.InventoryItem, len(items))
	for _, it := range items {
		m.persisted[it.ID] = it
		m.nextSeq++
		m.latestSeq[it.ID] = m.nextSeq
	}
	m.metrics.SetCollectionSize(len(m.items))
}

func (m *TableManager) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *TableManager) visibleLocked() []domain.InventoryItem {
	return m.filters.Apply(m.items)
}

// Items returns the whole collection, ignoring filters.
func (m *TableManager) Items() []domain.InventoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.InventoryItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m *TableManager) Get(id string) (domain.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return m.items[i], nil
}

// VisibleRows returns the listings passing every active filter, in
// collection order.
func (m *TableManager) VisibleRows() []domain.InventoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleLocked()
}

func (m *TableManager) Rows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	visible := m.visibleLocked()
	rows := make([]Row, 0, len(visible))
	for _, it := range visible {
		_, sel := m.selected[it.ID]
		_, cl := m.cloned[it.ID]
		rows = append(rows, Row{
			InventoryItem:  it,
			Selected:       sel,
			Pending:        m.inflight[it.ID] > 0,
			RecentlyCloned: cl,
		})
	}
	return rows
}

// Groups partitions the visible rows by match event in order of first
// appearance. Matches with no visible rows are left out.
func (m *TableManager) Groups() []MatchGroup {
	m.mu.Lock()
	defer m.mu.Unlock()

	var groups []MatchGroup
	pos := make(map[string]int)
	for _, it := range m.visibleLocked() {
		i, ok := pos[it.MatchEvent]
		if !ok {
			i = len(groups)
			pos[it.MatchEvent] = i
			groups = append(groups, MatchGroup{
				MatchEvent: it.MatchEvent,
				Collapsed:  m.collapsed[it.MatchEvent],
			})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// ToggleGroup flips whether a match's table is collapsed and returns the new state.
func (m *TableManager) ToggleGroup(matchEvent string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collapsed[matchEvent] = !m.collapsed[matchEvent]
	return m.collapsed[matchEvent]
}

func (m *TableManager) ToggleSelect(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
	} else {
		m.selected[id] = struct{}{}
	}
	return nil
}

// ToggleSelectAll clears the selection when every visible row is selected,
// otherwise selects exactly the visible rows.
func (m *TableManager) ToggleSelectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	visible := m.visibleLocked()
	if m.allSelectedLocked(visible) {
		m.selected = make(map[string]struct{})
		return
	}
	m.selectLocked(visible)
}

// SelectAll selects every visible row and is idempotent. The header
// checkbox behaviour, where a second call clears the selection, is
// ToggleSelectAll.
func (m *TableManager) SelectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectLocked(m.visibleLocked())
}

func (m *TableManager) DeselectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = make(map[string]struct{})
}

func (m *TableManager) selectLocked(visible []domain.InventoryItem) {
	m.selected = make(map[string]struct{}, len(visible))
	for _, it := range visible {
		m.selected[it.ID] = struct{}{}
	}
}

// AllSelected is the state of the select-all checkbox.
func (m *TableManager) AllSelected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allSelectedLocked(m.visibleLocked())
}

func (m *TableManager) allSelectedLocked(visible []domain.InventoryItem) bool {
	if len(visible) == 0 || len(m.selected) != len(visible) {
		return false
	}
	for _, it := range visible {
		if _, ok := m.selected[it.ID]; !ok {
			return false
		}
	}
	return true
}

// Selection returns the selected ids in collection order.
func (m *TableManager) Selection() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectionLocked()
}

func (m *TableManager) selectionLocked() []string {
	ids := make([]string, 0, len(m.selected))
	for _, it := range m.items {
		if _, ok := m.selected[it.ID]; ok {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// SetFilter toggles value in the column's accepted set. Selected rows the
// new filter hides are dropped from the selection.
func (m *TableManager) SetFilter(field domain.Field, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters.Toggle(field, value)
	m.pruneSelectionLocked()
}

func (m *TableManager) ClearFilters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = make(domain.Filters)
}

func (m *TableManager) Filters() map[domain.Field][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filters.Snapshot()
}

func (m *TableManager) pruneSelectionLocked() {
	if len(m.selected) == 0 {
		return
	}
	keep := make(map[string]struct{}, len(m.selected))
	for _, it := range m.visibleLocked() {
		if _, ok := m.selected[it.ID]; ok {
			keep[it.ID] = struct{}{}
		}
	}
	m.selected = keep
}

// FilterOptions lists the distinct values of a column in first-seen order.
func (m *TableManager) FilterOptions(field domain.Field) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	for _, it := range m.items {
		v := it.Value(field)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// EditCell applies the new value locally and queues the write. A write the
// store rejects is rolled back unless a newer edit has superseded it.
func (m *TableManager) EditCell(ctx context.Context, id, fieldName, value string) (domain.InventoryItem, error) {
	field, err := domain.ParseField(fieldName)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("%w: %w", ErrInvalidField, err)
	}

	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	updated := m.items[i]
	if err := updated.Set(field, value); err != nil {
		m.mu.Unlock()
		if errors.Is(err, domain.ErrReadOnlyField) {
			return domain.InventoryItem{}, fmt.Errorf("%w: %s is read-only", ErrInvalidField, field)
		}
		return domain.InventoryItem{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	m.items[i] = updated
	w := m.markPendingLocked(writeUpdate, updated)
	m.mu.Unlock()

	if err := m.dispatch(ctx, w); err != nil {
		return domain.InventoryItem{}, err
	}
	return updated, nil
}

// Create validates a new listing, persists it and appends it to the collection.
func (m *TableManager) Create(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	if err := domain.ValidateNew(item); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	m.mu.Lock()
	id, err := m.mintIDLocked()
	m.mu.Unlock()
	if err != nil {
		return domain.InventoryItem{}, err
	}
	item.ID = id

	saved, err := m.store.Create(ctx, item)
	m.metrics.ObserveWrite(string(writeCreate), err)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("create listing: %w", err)
	}

	m.mu.Lock()
	m.items = append(m.items, saved)
	m.persisted[saved.ID] = saved
	m.metrics.SetCollectionSize(len(m.items))
	m.mu.Unlock()

	m.logger.Info("created listing", zap.String("id", saved.ID), zap.String("match", saved.MatchEvent))
	return saved, nil
}

// CreateRequest is Create guarded by a caller-supplied request id. A request
// id seen before fails with ErrDuplicateRequest.
func (m *TableManager) CreateRequest(ctx context.Context, requestID string, item domain.InventoryItem) (domain.InventoryItem, error) {
	if requestID != "" && m.idem != nil {
		ok, err := m.idem.SetIdempotency(ctx, "listing:create:"+requestID)
		if err != nil {
			return domain.InventoryItem{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return domain.InventoryItem{}, ErrDuplicateRequest
		}
	}
	return m.Create(ctx, item)
}

// Clone copies a listing under a fresh id, appends it and queues its creation.
func (m *TableManager) Clone(ctx context.Context, id string) (domain.InventoryItem, error) {
	m.mu.Lock()
	i := m.indexOf(id)
	if i < 0 {
		m.mu.Unlock()
		return domain.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	newID, err := m.mintIDLocked()
	if err != nil {
		m.mu.Unlock()
		return domain.InventoryItem{}, err
	}
	clone := m.items[i].CloneWithID(newID)
	m.items = append(m.items, clone)
	m.cloned[newID] = struct{}{}
	m.metrics.SetCollectionSize(len(m.items))
	w := m.markPendingLocked(writeCreate, clone)
	m.mu.Unlock()

	if err := m.dispatch(ctx, w); err != nil {
		return domain.InventoryItem{}, err
	}
	return clone, nil
}

// CloneSelected clones every selected listing in collection order.
func (m *TableManager) CloneSelected(ctx context.Context) ([]domain.InventoryItem, error) {
	var clones []domain.InventoryItem
	for _, id := range m.Selection() {
		c, err := m.Clone(ctx, id)
		if err != nil {
			return clones, err
		}
		clones = append(clones, c)
	}
	return clones, nil
}

func (m *TableManager) RecentlyCloned() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.cloned))
	for _, it := range m.items {
		if _, ok := m.cloned[it.ID]; ok {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func (m *TableManager) ClearRecentlyCloned() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cloned = make(map[string]struct{})
}

// Delete removes a listing once the store has confirmed the delete.
func (m *TableManager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	exists := m.indexOf(id) >= 0
	m.mu.Unlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	err := m.store.Delete(ctx, id)
	m.metrics.ObserveWrite("delete", err)
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}

	m.mu.Lock()
	m.removeLocked(id)
	m.mu.Unlock()
	return nil
}

// DeleteSelected deletes the selection one listing at a time, in collection
// order. It stops at the first failure: listings already deleted are gone
// locally too, the failed one and the rest stay selected.
func (m *TableManager) DeleteSelected(ctx context.Context) (int, error) {
	deleted := 0
	for _, id := range m.Selection() {
		err := m.store.Delete(ctx, id)
		m.metrics.ObserveWrite("delete", err)
		if err != nil {
			return deleted, fmt.Errorf("delete listing %s (%d deleted before failure): %w", id, deleted, err)
		}

		m.mu.Lock()
		m.removeLocked(id)
		m.mu.Unlock()
		deleted++
	}
	return deleted, nil
}

func (m *TableManager) removeLocked(id string) {
	if i := m.indexOf(id); i >= 0 {
		m.items = append(m.items[:i], m.items[i+1:]...)
	}
	delete(m.selected, id)
	delete(m.cloned, id)
	delete(m.persisted, id)
	// queued writes for a deleted listing become stale
	m.nextSeq++
	m.latestSeq[id] = m.nextSeq
	m.metrics.SetCollectionSize(len(m.items))
}

// Pending reports whether a write for the listing is queued or in flight.
func (m *TableManager) Pending(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inflight[id] > 0
}

func (m *TableManager) WriteFailures() []WriteFailure {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WriteFailure, len(m.failures))
	copy(out, m.failures)
	return out
}

// Flush waits until every queued write has been processed.
func (m *TableManager) Flush(ctx context.Context) error {
	return m.writes.wait(ctx)
}

// Overview returns the remote aggregate when one is configured, falling
// back to counts over the local collection.
func (m *TableManager) Overview(ctx context.Context) domain.Overview {
	if m.overview != nil {
		ov, err := m.overview.Overview(ctx)
		if err == nil {
			return ov
		}
		m.logger.Warn("remote overview unavailable, using local counts", zap.Error(err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	events := make(map[string]struct{})
	ov := domain.Overview{Listings: len(m.items)}
	for _, it := range m.items {
		events[it.MatchEvent] = struct{}{}
		ov.Tickets += it.Quantity
	}
	ov.Events = len(events)
	ov.UnpublishedListings = ov.Listings
	return ov
}

// Close stops accepting writes and waits for the workers to drain the queue.
func (m *TableManager) Close() {
	m.writes.close()
	m.workerWg.Wait()
}

func (m *TableManager) mintIDLocked() (string, error) {
	for attempt := 0; attempt < idAttempts; attempt++ {
		id := m.ids.NewID()
		if id != "" && m.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", ErrIDCollision
}

func (m *TableManager) markPendingLocked(op writeOp, item domain.InventoryItem) pendingWrite {
	m.nextSeq++
	m.latestSeq[item.ID] = m.nextSeq
	m.inflight[item.ID]++
	m.metrics.AddPending(1)
	return pendingWrite{op: op, item: item, seq: m.nextSeq}
}

func (m *TableManager) clearPendingLocked(id string) {
	if m.inflight[id] <= 1 {
		delete(m.inflight, id)
	} else {
		m.inflight[id]--
	}
	m.metrics.AddPending(-1)
}

// dispatch queues the write; if it cannot be queued the optimistic change
// is reverted straight away.
func (m *TableManager) dispatch(ctx context.Context, w pendingWrite) error {
	err := m.writes.enqueue(ctx, w)
	if err == nil {
		return nil
	}

	m.mu.Lock()
	m.clearPendingLocked(w.item.ID)
	m.reconcileFailureLocked(w, err)
	m.mu.Unlock()
	return fmt.Errorf("queue %s of %s: %w", w.op, w.item.ID, err)
}

func (m *TableManager) workerLoop(id int, queue <-chan pendingWrite) {
	for w := range queue {
		m.process(id, w)
		m.writes.done()
	}
}

func (m *TableManager) process(worker int, w pendingWrite) {
	m.mu.Lock()
	var stale bool
	switch w.op {
	case writeCreate:
		// deleted before it reached the store
		stale = m.indexOf(w.item.ID) < 0
	case writeUpdate:
		// a newer write carries the full row
		stale = m.latestSeq[w.item.ID] > w.seq
	}
	if stale {
		m.clearPendingLocked(w.item.ID)
	}
	m.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.writeTimeout)
	var err error
	switch w.op {
	case writeCreate:
		_, err = m.store.Create(ctx, w.item)
	case writeUpdate:
		_, err = m.store.Update(ctx, w.item)
	}
	cancel()
	m.metrics.ObserveWrite(string(w.op), err)

	m.mu.Lock()
	m.clearPendingLocked(w.item.ID)
	orphaned := err == nil && w.op == writeCreate && m.indexOf(w.item.ID) < 0
	m.mu.Unlock()

	// deleted locally while the create was in flight
	if orphaned {
		m.dropOrphan(worker, w.item.ID)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.logger.Error("failed to persist listing",
			zap.Int("worker", worker),
			zap.String("op", string(w.op)),
			zap.String("id", w.item.ID),
			zap.Error(err),
		)
		m.reconcileFailureLocked(w, err)
		return
	}

	if m.indexOf(w.item.ID) >= 0 {
		m.persisted[w.item.ID] = w.item
	}
	m.logger.Debug("persisted listing",
		zap.Int("worker", worker),
		zap.String("op", string(w.op)),
		zap.String("id", w.item.ID),
	)
}

func (m *TableManager) dropOrphan(worker int, id string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.writeTimeout)
	err := m.store.Delete(ctx, id)
	cancel()
	m.metrics.ObserveWrite("delete", err)
	if err != nil {
		m.logger.Error("failed to remove listing deleted during its create",
			zap.Int("worker", worker),
			zap.String("id", id),
			zap.Error(err),
		)
		m.mu.Lock()
		m.failures = append(m.failures, WriteFailure{ID: id, Op: "delete", Error: err.Error(), At: time.Now()})
		if len(m.failures) > maxFailures {
			m.failures = m.failures[len(m.failures)-maxFailures:]
		}
		m.mu.Unlock()
		return
	}
	m.logger.Debug("removed listing deleted during its create", zap.Int("worker", worker), zap.String("id", id))
}

func (m *TableManager) reconcileFailureLocked(w pendingWrite, cause error) {
	failure := WriteFailure{
		ID:    w.item.ID,
		Op:    string(w.op),
		Error: cause.Error(),
		At:    time.Now(),
	}

	switch w.op {
	case writeCreate:
		// the clone never reached the store
		if m.indexOf(w.item.ID) >= 0 {
			m.removeLocked(w.item.ID)
			failure.RolledBack = true
		}
	case writeUpdate:
		if m.latestSeq[w.item.ID] == w.seq {
			if last, ok := m.persisted[w.item.ID]; ok {
				if i := m.indexOf(w.item.ID); i >= 0 {
					m.items[i] = last
					failure.RolledBack = true
				}
			}
		}
	}
	if failure.RolledBack {
		m.metrics.ObserveRollback(string(w.op))
	}

	m.failures = append(m.failures, failure)
	if len(m.failures) > maxFailures {
		m.failures = m.failures[len(m.failures)-maxFailures:]
	}
}
