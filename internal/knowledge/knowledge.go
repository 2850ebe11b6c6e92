// Package knowledge implements the per-KB store (spec.md §4.5): the
// commit/retract/query surface Cognition drives, backed by the shared
// TMS for authoritative state and a local PathIndex for candidate
// retrieval. Knowledge holds no assertion data of its own beyond
// bookkeeping (which ids are currently active in this KB, their
// insertion order, their exact-kif dedup key); the Assertion values
// themselves always come from the TMS.
package knowledge

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-set/v3"

	"github.com/codenerd/reasonkit/internal/events"
	"github.com/codenerd/reasonkit/internal/index"
	"github.com/codenerd/reasonkit/internal/logging"
	"github.com/codenerd/reasonkit/internal/model"
	"github.com/codenerd/reasonkit/internal/term"
	"github.com/codenerd/reasonkit/internal/tms"
)

// Store is a single note-scoped (or global) knowledge base.
type Store struct {
	id       string
	capacity int
	tmsStore *tms.Store
	bus      *events.Bus
	log      *logging.Logger

	mu         sync.RWMutex
	pathIdx    *index.PathIndex
	active     *set.Set[model.AssertionID]
	universals *set.Set[model.AssertionID]
	exactKif   map[string]model.AssertionID
	insertSeq  map[model.AssertionID]uint64
	seqCounter uint64

	eventCh <-chan events.Event
	done    chan struct{}
}

// New constructs a Store named id (e.g. "global" or a note id) backed
// by the shared tmsStore, with room for capacity active assertions.
// Universal assertions count toward capacity but are never chosen for
// eviction, and committing one does not trigger eviction; they are
// also subsumption-exempt per DESIGN.md's Open Question resolution.
func New(id string, capacity int, tmsStore *tms.Store, bus *events.Bus, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	s := &Store{
		id:         id,
		capacity:   capacity,
		tmsStore:   tmsStore,
		bus:        bus,
		log:        log,
		active:     set.New[model.AssertionID](0),
		universals: set.New[model.AssertionID](0),
		exactKif:   make(map[string]model.AssertionID),
		insertSeq:  make(map[model.AssertionID]uint64),
		done:       make(chan struct{}),
	}
	s.pathIdx = index.New(func(id model.AssertionID) (term.Lst, bool) {
		a, ok := tmsStore.Get(id)
		if !ok {
			return term.Lst{}, false
		}
		return a.Kif, true
	})
	if bus != nil {
		s.eventCh = bus.Subscribe(events.StateChanged, events.Retracted)
		go s.consumeEvents()
	}
	return s
}

// ID returns the KB's identifier.
func (s *Store) ID() string { return s.id }

// Close stops this Store's event-consuming goroutine.
func (s *Store) Close() {
	if s.bus != nil {
		s.bus.Unsubscribe(s.eventCh)
	}
	close(s.done)
}

func (s *Store) consumeEvents() {
	for {
		select {
		case e, ok := <-s.eventCh:
			if !ok {
				return
			}
			if e.KB != s.id || e.IsActive {
				continue
			}
			s.handleDeactivation(e.AssertionID, e.Assertion)
		case <-s.done:
			return
		}
	}
}

func (s *Store) handleDeactivation(id model.AssertionID, a *model.Assertion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocalLocked(id, a)
}

// removeLocalLocked drops id from this Store's own bookkeeping
// (active set, universal set, insertion sequence, path index,
// exact-kif dedup map). Called both synchronously (eviction, Clear,
// where the caller needs the removal to be visible immediately) and
// asynchronously (consumeEvents, for retract/cascade deactivations it
// learns about after the fact) — idempotent either way, since it's a
// no-op once id is no longer in the active set.
func (s *Store) removeLocalLocked(id model.AssertionID, a *model.Assertion) {
	if !s.active.Contains(id) {
		return
	}
	s.active.Remove(id)
	s.universals.Remove(id)
	delete(s.insertSeq, id)
	if a != nil {
		s.pathIdx.Remove(id, a.Kif)
		delete(s.exactKif, term.Print(a.Kif))
	}
}

func isTriviallyTrue(kif term.Lst) bool {
	if len(kif.Children) == 1 {
		if atom, ok := kif.Children[0].(term.Atom); ok && atom.Value == "true" {
			return true
		}
	}
	op := kif.OperatorSymbol()
	switch {
	case op == "and" && kif.Arity() == 0:
		return true
	case op == "=" && kif.Arity() == 2:
		return kif.Children[1].Equal(kif.Children[2])
	}
	return false
}

// Commit validates and admits pa, returning the newly active
// Assertion, or (nil, nil) if pa was trivially true and silently
// dropped, or (nil, err) if rejected. Every rejection reason detected
// during validation is folded into err via go-multierror.
func (s *Store) Commit(pa model.PotentialAssertion, source string) (*model.Assertion, error) {
	if err := pa.Validate(); err != nil {
		return nil, err
	}
	if isTriviallyTrue(pa.Kif) {
		return nil, nil
	}

	derivedType := pa.DerivedType
	if derivedType == model.Ground && pa.Kif.ContainsSkolem() {
		derivedType = model.Skolemized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rejected error
	kifKey := term.Print(pa.Kif)
	if _, dup := s.exactKif[kifKey]; dup {
		rejected = multierror.Append(rejected, fmt.Errorf("%w: kb %s already has an active assertion with this kif", model.ErrValidation, s.id))
	}
	if derivedType != model.Universal {
		if subsumer, ok := s.findSubsumer(pa); ok {
			rejected = multierror.Append(rejected, fmt.Errorf("%w: subsumed by %s", model.ErrValidation, subsumer))
		}
	}
	if rejected != nil {
		return nil, rejected
	}

	if derivedType != model.Universal {
		if err := s.enforceCapacity(source); err != nil {
			return nil, err
		}
	}

	id := model.AssertionID(uuid.NewString())
	a, err := model.NewAssertion(model.AssertionParams{
		ID:              id,
		Kif:             pa.Kif,
		Priority:        pa.Priority,
		Timestamp:       int64(s.seqCounter),
		SourceNoteID:    pa.KBTarget(),
		Justifications:  pa.Support,
		IsEquality:      pa.IsEquality,
		IsOrientedEq:    pa.IsOrientedEq,
		QuantifiedVars:  pa.QuantifiedVars,
		DerivationDepth: pa.DerivationDepth,
		KB:              s.id,
	})
	if err != nil {
		return nil, err
	}
	a.Type = derivedType

	ticket, err := s.tmsStore.Add(a, pa.Support, source)
	if err != nil {
		return nil, err
	}
	stored, ok := s.tmsStore.Get(ticket)
	if !ok || !stored.IsActive {
		return nil, fmt.Errorf("%w: assertion %s not active after commit", model.ErrValidation, ticket)
	}

	s.seqCounter++
	s.active.Insert(id)
	s.insertSeq[id] = s.seqCounter
	s.exactKif[kifKey] = id
	s.pathIdx.Insert(id, pa.Kif)
	if derivedType == model.Universal {
		s.universals.Insert(id)
	}

	s.warnCapacity()
	s.emit(events.Event{Type: events.Asserted, AssertionID: id, KB: s.id, IsActive: true, Assertion: stored})
	return stored, nil
}

// findSubsumer returns the id of an active ground/skolemized
// assertion in this KB whose kif generalizes pa.Kif with the same
// negated flag, if any.
func (s *Store) findSubsumer(pa model.PotentialAssertion) (model.AssertionID, bool) {
	for _, candidateID := range s.pathIdx.FindGeneralizationsOf(pa.Kif) {
		if !s.active.Contains(candidateID) {
			continue
		}
		candidate, ok := s.tmsStore.Get(candidateID)
		if !ok || candidate.Type == model.Universal {
			continue
		}
		if candidate.Negated == pa.IsNegated {
			return candidateID, true
		}
	}
	return "", false
}

// enforceCapacity evicts lowest-priority ground/skolemized assertions
// (priority asc, then timestamp asc, then insertion-sequence asc)
// until this KB is under capacity, failing if it still isn't.
func (s *Store) enforceCapacity(source string) error {
	for s.active.Size() >= s.capacity {
		victim, ok := s.lowestPriorityVictim()
		if !ok {
			break
		}
		victimAssertion, _ := s.tmsStore.Get(victim)
		s.tmsStore.Remove(victim, source)
		// Remove synchronously rather than waiting for the async
		// StateChanged event: otherwise s.active wouldn't shrink and
		// this loop would never make progress.
		s.removeLocalLocked(victim, victimAssertion)
		s.emit(events.Event{Type: events.Evicted, AssertionID: victim, KB: s.id})
	}
	if s.active.Size() >= s.capacity {
		return fmt.Errorf("%w: kb %s remained over capacity (%d) after eviction", model.ErrCapacity, s.id, s.capacity)
	}
	return nil
}

func (s *Store) lowestPriorityVictim() (model.AssertionID, bool) {
	type candidate struct {
		id  model.AssertionID
		a   *model.Assertion
		seq uint64
	}
	var cands []candidate
	for _, id := range s.active.Slice() {
		if s.universals.Contains(id) {
			continue
		}
		a, ok := s.tmsStore.Get(id)
		if !ok {
			continue
		}
		cands = append(cands, candidate{id: id, a: a, seq: s.insertSeq[id]})
	}
	if len(cands) == 0 {
		return "", false
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].a.Priority != cands[j].a.Priority {
			return cands[i].a.Priority < cands[j].a.Priority
		}
		if cands[i].a.Timestamp != cands[j].a.Timestamp {
			return cands[i].a.Timestamp < cands[j].a.Timestamp
		}
		return cands[i].seq < cands[j].seq
	})
	return cands[0].id, true
}

// Retract forwards id's removal to the TMS; this Store's own local
// index/active-set bookkeeping updates asynchronously via the
// StateChanged/Retracted events the TMS emits (spec.md §4.5).
func (s *Store) Retract(id model.AssertionID, source string) {
	s.tmsStore.Remove(id, source)
}

// FindUnifiable returns active ids in this KB whose kif may unify
// with t.
func (s *Store) FindUnifiable(t term.Term) []model.AssertionID {
	return s.queryActive(s.pathIdx.FindUnifiable(t))
}

// FindInstances returns active ids in this KB that are instances of
// pattern.
func (s *Store) FindInstances(pattern term.Term) []model.AssertionID {
	return s.queryActive(s.pathIdx.FindInstancesOf(pattern))
}

// FindRelevantUniversals returns active UNIVERSAL assertions in this
// KB whose effective term mentions pred anywhere as an operator.
func (s *Store) FindRelevantUniversals(pred string) []model.AssertionID {
	s.mu.RLock()
	ids := s.universals.Slice()
	s.mu.RUnlock()

	var out []model.AssertionID
	for _, id := range ids {
		a, ok := s.tmsStore.Get(id)
		if !ok || !a.IsActive {
			continue
		}
		if mentionsPredicate(a.EffectiveTerm(), pred) {
			out = append(out, id)
		}
	}
	return out
}

func mentionsPredicate(t term.Term, pred string) bool {
	lst, ok := t.(term.Lst)
	if !ok {
		return false
	}
	if lst.OperatorSymbol() == pred {
		return true
	}
	for _, c := range lst.Children {
		if mentionsPredicate(c, pred) {
			return true
		}
	}
	return false
}

func (s *Store) queryActive(candidateIDs []model.AssertionID) []model.AssertionID {
	var out []model.AssertionID
	for _, id := range candidateIDs {
		if s.tmsStore.IsActive(id) {
			out = append(out, id)
		}
	}
	return out
}

// Clear retracts every active id in this KB and resets both local
// indices and the eviction bookkeeping.
func (s *Store) Clear(source string) {
	s.mu.Lock()
	ids := s.active.Slice()
	s.mu.Unlock()

	for _, id := range ids {
		s.tmsStore.Remove(id, source)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = set.New[model.AssertionID](0)
	s.universals = set.New[model.AssertionID](0)
	s.exactKif = make(map[string]model.AssertionID)
	s.insertSeq = make(map[model.AssertionID]uint64)
	s.pathIdx = index.New(func(id model.AssertionID) (term.Lst, bool) {
		a, ok := s.tmsStore.Get(id)
		if !ok {
			return term.Lst{}, false
		}
		return a.Kif, true
	})
}

// Count returns the number of assertions this Store currently
// believes are active (ground+skolemized+universal).
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.Size()
}

func (s *Store) warnCapacity() {
	if s.capacity <= 0 {
		return
	}
	ratio := float64(s.active.Size()) / float64(s.capacity)
	switch {
	case ratio >= 0.95:
		s.log.Errorf("kb %s at %.0f%% of capacity (%d/%d)", s.id, ratio*100, s.active.Size(), s.capacity)
	case ratio >= 0.8:
		s.log.Warnf("kb %s at %.0f%% of capacity (%d/%d)", s.id, ratio*100, s.active.Size(), s.capacity)
	}
}

func (s *Store) emit(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
