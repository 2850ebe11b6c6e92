// Package tms implements the Truth Maintenance Store (spec.md §4.6):
// the authoritative registry of every assertion ever admitted, its
// justification graph, and cascading activity tracking. Knowledge
// instances hold no assertion state of their own; they react to the
// StateChanged/Retracted events this package emits to keep their path
// index, universal-assertion list and eviction queue in sync.
package tms

import (
	"sync"

	"github.com/hashicorp/go-set/v3"

	"github.com/codenerd/reasonkit/internal/events"
	"github.com/codenerd/reasonkit/internal/logging"
	"github.com/codenerd/reasonkit/internal/model"
)

type record struct {
	assertion *model.Assertion
	// reverseSupport holds ids of assertions whose justification set
	// includes this record's id — i.e. what would need to reconsider
	// activity if this record is deactivated.
	reverseSupport *set.Set[model.AssertionID]
}

// Store is the TMS. A single Store instance is shared by every KB in
// the engine (spec.md §4.6 describes no per-KB partitioning), coarse
// write lock, concurrent reads.
type Store struct {
	mu      sync.RWMutex
	records map[model.AssertionID]*record
	bus     *events.Bus
	log     *logging.Logger
}

// New constructs an empty Store. bus/log may be nil.
func New(bus *events.Bus, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		records: make(map[model.AssertionID]*record),
		bus:     bus,
		log:     log,
	}
}

func (s *Store) emit(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// Add registers a with the given support set, refusing unknown
// support ids and support cycles. The returned ticket is a's own id;
// a non-nil error means nothing was stored. a.IsActive on the stored
// copy reflects the computed activity (all-support-active), which the
// caller must re-check: Knowledge.commit fails if the assertion it
// just submitted comes back inactive.
func (s *Store) Add(a *model.Assertion, support []model.AssertionID, source string) (model.AssertionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sid := range support {
		if _, ok := s.records[sid]; !ok {
			return "", model.ErrUnknownSupport
		}
	}
	if s.wouldCycle(a.ID, support) {
		return "", model.ErrCycle
	}

	active := true
	for _, sid := range support {
		if !s.records[sid].assertion.IsActive {
			active = false
			break
		}
	}

	cp := *a
	cp.IsActive = active
	s.records[a.ID] = &record{assertion: &cp, reverseSupport: set.New[model.AssertionID](0)}

	for _, sid := range support {
		s.records[sid].reverseSupport.Insert(a.ID)
	}

	s.log.Debugf("tms: add %s active=%v support=%v source=%s", a.ID, active, support, source)
	s.emit(events.Event{Type: events.StateChanged, AssertionID: a.ID, KB: cp.KB, IsActive: active, Assertion: &cp})
	return a.ID, nil
}

// wouldCycle reports whether any id in support can, via its own
// justification chain, reach newID — which would close a cycle once
// newID's record is linked in. newID is not yet present in s.records,
// so this only ever fires on a reused id; it is still checked, per
// spec.md §4.6's cycle policy, rather than assumed impossible.
func (s *Store) wouldCycle(newID model.AssertionID, support []model.AssertionID) bool {
	visited := set.New[model.AssertionID](0)
	var dfs func(id model.AssertionID) bool
	dfs = func(id model.AssertionID) bool {
		if id == newID {
			return true
		}
		if visited.Contains(id) {
			return false
		}
		visited.Insert(id)
		rec, ok := s.records[id]
		if !ok {
			return false
		}
		for _, next := range rec.assertion.JustificationIDs.Slice() {
			if dfs(next) {
				return true
			}
		}
		return false
	}
	for _, sid := range support {
		if dfs(sid) {
			return true
		}
	}
	return false
}

// Remove deactivates id (if active) and cascades deactivation to
// every dependent that loses its only active support, emitting a
// StateChanged event per transition and a Retracted event (carrying
// the final Assertion value) for id itself. The record is then
// unlinked from its own supports' reverse-support sets and physically
// deleted if nothing depends on it at that point. A record kept for
// its dependents stays (inactive) until a later Remove of the same id
// finds its reverse-support set empty; removing the last dependent
// does not delete it.
func (s *Store) Remove(id model.AssertionID, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return
	}

	if rec.assertion.IsActive {
		s.deactivate(id, true, source)
	}

	for _, sid := range rec.assertion.JustificationIDs.Slice() {
		if supRec, ok := s.records[sid]; ok {
			supRec.reverseSupport.Remove(id)
		}
	}

	if rec.reverseSupport.Size() == 0 {
		delete(s.records, id)
	}
}

// deactivate marks id inactive and cascades to its dependents. A
// dependent's justification set is conjunctive (spec.md §4.6: "active
// iff every support id is active"), so losing any one active support
// always breaks it; there is no disjunctive "alternative" support to
// check for, only whether it is still active at all.
func (s *Store) deactivate(id model.AssertionID, isExplicitRemoval bool, source string) {
	rec, ok := s.records[id]
	if !ok || !rec.assertion.IsActive {
		return
	}

	cp := *rec.assertion
	cp.IsActive = false
	rec.assertion = &cp

	s.log.Debugf("tms: deactivate %s explicit=%v source=%s", id, isExplicitRemoval, source)
	s.emit(events.Event{Type: events.StateChanged, AssertionID: id, KB: cp.KB, IsActive: false, Assertion: &cp})

	for _, depID := range rec.reverseSupport.Slice() {
		s.deactivate(depID, false, source)
	}

	// Emitted only after every transitive dependent has already been
	// deactivated above, per spec.md §5: "a retracted event for an
	// assertion is emitted strictly after state events deactivating
	// all transitive dependents".
	if isExplicitRemoval {
		final := cp
		s.emit(events.Event{Type: events.Retracted, AssertionID: id, KB: cp.KB, IsActive: false, Assertion: &final})
	}
}

// Get returns the current Assertion value for id, or (nil, false) if
// unknown. Safe under concurrent writers.
func (s *Store) Get(id model.AssertionID) (*model.Assertion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return rec.assertion, true
}

// IsActive reports whether id is known and currently active.
func (s *Store) IsActive(id model.AssertionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return ok && rec.assertion.IsActive
}

// GetAllActive returns every currently active assertion.
func (s *Store) GetAllActive() []*model.Assertion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Assertion, 0, len(s.records))
	for _, rec := range s.records {
		if rec.assertion.IsActive {
			out = append(out, rec.assertion)
		}
	}
	return out
}
