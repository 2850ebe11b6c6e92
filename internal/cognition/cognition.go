// Package cognition implements the arbitration layer (spec.md §4.7):
// the single entry point that owns the global KB plus lazily-created
// per-note KBs sharing one TMS, routes commits/queries to the right
// KB, maintains the rule set, and answers cross-KB questions
// (derived priority/depth, common source note, active-note-scoped
// search).
package cognition

import (
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"
	"golang.org/x/sync/errgroup"

	"github.com/codenerd/reasonkit/internal/events"
	"github.com/codenerd/reasonkit/internal/knowledge"
	"github.com/codenerd/reasonkit/internal/logging"
	"github.com/codenerd/reasonkit/internal/model"
	"github.com/codenerd/reasonkit/internal/term"
	"github.com/codenerd/reasonkit/internal/tms"
)

const globalKB = "global"

// Cognition is the arbitration layer shared by every external caller
// and rule firing.
type Cognition struct {
	capacity int
	decay    float64
	tmsStore *tms.Store
	bus      *events.Bus
	log      *logging.Logger

	mu          sync.RWMutex
	kbs         map[string]*knowledge.Store
	rules       map[model.RuleID]*model.Rule
	activeNotes *set.Set[string]
}

// New constructs a Cognition with the global KB already created.
// decay is the per-derivation priority decay factor applied in
// CalculateDerivedPriority.
func New(capacity int, decay float64, tmsStore *tms.Store, bus *events.Bus, log *logging.Logger) *Cognition {
	if log == nil {
		log = logging.Nop()
	}
	c := &Cognition{
		capacity:    capacity,
		decay:       decay,
		tmsStore:    tmsStore,
		bus:         bus,
		log:         log,
		kbs:         make(map[string]*knowledge.Store),
		rules:       make(map[model.RuleID]*model.Rule),
		activeNotes: set.New[string](1),
	}
	c.activeNotes.Insert(globalKB)
	c.kbs[globalKB] = knowledge.New(globalKB, capacity, tmsStore, bus, log)
	return c
}

// KB returns the global KB if noteID is empty or "global", otherwise
// an existing or lazily-created per-note KB with the same capacity.
func (c *Cognition) KB(noteID string) *knowledge.Store {
	if noteID == "" {
		noteID = globalKB
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if kb, ok := c.kbs[noteID]; ok {
		return kb
	}
	kb := knowledge.New(noteID, c.capacity, c.tmsStore, c.bus, c.log)
	c.kbs[noteID] = kb
	return kb
}

// Close shuts down every KB this Cognition created.
func (c *Cognition) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, kb := range c.kbs {
		kb.Close()
	}
}

// TryCommit routes pa to the KB its KBTarget (sourceNoteId, overridden
// by targetNoteId when set) names.
func (c *Cognition) TryCommit(pa model.PotentialAssertion, source string) (*model.Assertion, error) {
	return c.KB(pa.KBTarget()).Commit(pa, source)
}

// AddRule adds form as a new Rule, or returns the existing Rule
// unchanged (no event emitted) if an active rule with an identical
// Form already exists — rule equality is by Form, per spec.md §4.7.
func (c *Cognition) AddRule(form term.Lst, priority float64, sourceNoteID string) (*model.Rule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.rules {
		if existing.Form.Equal(form) {
			return existing, nil
		}
	}

	r, warnings, err := model.NewRule(model.RuleID(uuid.NewString()), form, priority, sourceNoteID)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		c.log.Warnf("cognition: rule %s: %s", r.ID, w)
	}
	c.rules[r.ID] = r
	c.emit(events.Event{Type: events.RuleAdded, Rule: r})
	return r, nil
}

// RemoveRule deletes id, emitting RuleRemoved if it existed.
func (c *Cognition) RemoveRule(id model.RuleID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rules[id]
	if !ok {
		return false
	}
	delete(c.rules, id)
	c.emit(events.Event{Type: events.RuleRemoved, Rule: r})
	return true
}

// Rules returns a snapshot of every currently-registered rule.
func (c *Cognition) Rules() []*model.Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.Rule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r)
	}
	return out
}

// CalculateDerivedPriority returns the minimum priority among support
// assertions, times the decay factor; base if support is empty or
// none of its ids are known.
func (c *Cognition) CalculateDerivedPriority(support []model.AssertionID, base float64) float64 {
	min := math.Inf(1)
	for _, id := range support {
		if a, ok := c.tmsStore.Get(id); ok && a.Priority < min {
			min = a.Priority
		}
	}
	if math.IsInf(min, 1) {
		return base
	}
	return min * c.decay
}

// CalculateDerivedDepth returns 1 + the maximum derivation depth among
// known support assertions, or 0 if support is empty or none of its
// ids are known.
func (c *Cognition) CalculateDerivedDepth(support []model.AssertionID) int {
	max := 0
	found := false
	for _, id := range support {
		a, ok := c.tmsStore.Get(id)
		if !ok {
			continue
		}
		found = true
		if a.DerivationDepth > max {
			max = a.DerivationDepth
		}
	}
	if !found {
		return 0
	}
	return 1 + max
}

// CommonSourceNoteID BFS-walks the justification graph reachable from
// support (via the TMS), visiting each id at most once, and returns
// the single sourceNoteId shared by every visited assertion that has
// one. Returns ("", false) if no sourceNoteId is found, or if two
// disagree.
func (c *Cognition) CommonSourceNoteID(support []model.AssertionID) (string, bool) {
	visited := set.New[model.AssertionID](0)
	queue := append([]model.AssertionID(nil), support...)

	common := ""
	found := false
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited.Contains(id) {
			continue
		}
		visited.Insert(id)

		a, ok := c.tmsStore.Get(id)
		if !ok {
			continue
		}
		if a.SourceNoteID != "" {
			if !found {
				common, found = a.SourceNoteID, true
			} else if common != a.SourceNoteID {
				return "", false
			}
		}
		queue = append(queue, a.JustificationIDs.Slice()...)
	}
	return common, found
}

// FindAssertionsAcrossActiveKbs unions per-KB FindUnifiable results
// over the global KB plus every active note's KB, fanning the queries
// out over golang.org/x/sync/errgroup (one goroutine per active KB),
// filtered to active assertions whose KB or SourceNoteID is in the
// active-note set and (if filter is non-nil) that satisfy filter.
func (c *Cognition) FindAssertionsAcrossActiveKbs(pattern term.Term, filter func(*model.Assertion) bool) ([]*model.Assertion, error) {
	c.mu.RLock()
	kbs := make([]*knowledge.Store, 0, len(c.activeNotes.Slice()))
	for _, note := range c.activeNotes.Slice() {
		if kb, ok := c.kbs[note]; ok {
			kbs = append(kbs, kb)
		}
	}
	active := c.activeNotes.Copy()
	c.mu.RUnlock()

	var mu sync.Mutex
	var results []*model.Assertion
	var g errgroup.Group
	for _, kb := range kbs {
		kb := kb
		g.Go(func() error {
			for _, id := range kb.FindUnifiable(pattern) {
				a, ok := c.tmsStore.Get(id)
				if !ok || !a.IsActive {
					continue
				}
				if !active.Contains(a.KB) && !active.Contains(a.SourceNoteID) {
					continue
				}
				if filter != nil && !filter(a) {
					continue
				}
				mu.Lock()
				results = append(results, a)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AddActiveNote adds noteID to the active-note set.
func (c *Cognition) AddActiveNote(noteID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeNotes.Insert(noteID)
}

// RemoveActiveNote removes noteID from the active-note set (removing
// "global" is a no-op: it is always active).
func (c *Cognition) RemoveActiveNote(noteID string) {
	if noteID == globalKB {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeNotes.Remove(noteID)
}

// IsActiveNote reports whether noteID is currently in the active-note
// set.
func (c *Cognition) IsActiveNote(noteID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeNotes.Contains(noteID)
}

// ActiveNotes returns a snapshot of the active-note set.
func (c *Cognition) ActiveNotes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeNotes.Slice()
}

func (c *Cognition) emit(e events.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
