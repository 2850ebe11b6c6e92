// Package index implements the path index (spec.md §4.4): a
// multi-way index supporting findUnifiable/findInstancesOf/
// findGeneralizationsOf candidate retrieval, discriminating by head
// symbol and arity. Backed by github.com/hashicorp/go-immutable-radix/v2,
// the way hashicorp/nomad indexes its own state store: a writer
// builds a new tree value under its own lock and swaps the root
// atomically, so readers holding an already-loaded root never block
// on, or observe a partial update from, a concurrent writer.
package index

import (
	"strconv"
	"sync/atomic"

	iradix "github.com/hashicorp/go-immutable-radix/v2"
	"github.com/hashicorp/go-set/v3"

	"github.com/codenerd/reasonkit/internal/model"
	"github.com/codenerd/reasonkit/internal/term"
	"github.com/codenerd/reasonkit/internal/unify"
)

// PathIndex discriminates assertions by (head symbol, arity) and
// tracks, separately, assertions whose top-level operator is itself a
// variable (which can unify with, or generalize, any shape and so
// must be considered for every query regardless of bucket). It never
// produces false negatives for the relation it's asked about; callers
// confirm candidates with an explicit unify/match (the confirmation
// happens inside FindUnifiable/FindInstancesOf/FindGeneralizationsOf
// here, since PathIndex already has direct access to each candidate's
// Kif via the lookup function passed to New).
//
// PathIndex itself holds no mutex: Insert/Remove build a new
// immutable tree value and atomically swap the root, and callers
// (Knowledge) serialize writes under their own KB write lock per
// spec.md §4.4/§5.
type PathIndex struct {
	root     atomic.Pointer[iradix.Tree[*set.Set[model.AssertionID]]]
	wildcard atomic.Pointer[set.Set[model.AssertionID]]
	lookup   func(model.AssertionID) (term.Lst, bool)
}

// New constructs an empty PathIndex. lookup resolves an AssertionID to
// its Kif for confirmation purposes (typically TMS.Get, so the index
// never needs to retain term data itself).
func New(lookup func(model.AssertionID) (term.Lst, bool)) *PathIndex {
	idx := &PathIndex{lookup: lookup}
	idx.root.Store(iradix.New[*set.Set[model.AssertionID]]())
	idx.wildcard.Store(set.New[model.AssertionID](0))
	return idx
}

func bucketKey(kif term.Lst) string {
	return kif.OperatorSymbol() + "\x00" + strconv.Itoa(kif.Arity())
}

func hasVarOperator(kif term.Lst) bool {
	if len(kif.Children) == 0 {
		return false
	}
	_, ok := kif.Children[0].(term.Var)
	return ok
}

// Insert adds id (whose term is kif) to the index.
func (p *PathIndex) Insert(id model.AssertionID, kif term.Lst) {
	key := []byte(bucketKey(kif))
	tree := p.root.Load()

	existing, _ := tree.Get(key)
	var next *set.Set[model.AssertionID]
	if existing != nil {
		next = existing.Copy()
	} else {
		next = set.New[model.AssertionID](1)
	}
	next.Insert(id)

	newTree, _, _ := tree.Insert(key, next)
	p.root.Store(newTree)

	if hasVarOperator(kif) {
		w := p.wildcard.Load().Copy()
		w.Insert(id)
		p.wildcard.Store(w)
	}
}

// Remove deletes id (whose term was kif) from the index.
func (p *PathIndex) Remove(id model.AssertionID, kif term.Lst) {
	key := []byte(bucketKey(kif))
	tree := p.root.Load()

	existing, ok := tree.Get(key)
	if ok && existing != nil {
		next := existing.Copy()
		next.Remove(id)
		if next.Size() == 0 {
			newTree, _, _ := tree.Delete(key)
			p.root.Store(newTree)
		} else {
			newTree, _, _ := tree.Insert(key, next)
			p.root.Store(newTree)
		}
	}

	if hasVarOperator(kif) {
		w := p.wildcard.Load().Copy()
		w.Remove(id)
		p.wildcard.Store(w)
	}
}

// candidateIDs returns every id that could possibly relate to t under
// the given relation, before confirmation: its own bucket plus every
// wildcard-operator id, or (if t's own shape isn't a concrete-headed
// list) the union of every bucket, since a variable-headed query can
// match/unify against any stored shape.
func (p *PathIndex) candidateIDs(t term.Term) *set.Set[model.AssertionID] {
	lst, ok := t.(term.Lst)
	if !ok || hasVarOperator(lst) {
		return p.allIDs()
	}

	out := p.wildcard.Load().Copy()
	tree := p.root.Load()
	if bucket, found := tree.Get([]byte(bucketKey(lst))); found && bucket != nil {
		for _, id := range bucket.Slice() {
			out.Insert(id)
		}
	}
	return out
}

func (p *PathIndex) allIDs() *set.Set[model.AssertionID] {
	out := set.New[model.AssertionID](0)
	iter := p.root.Load().Root().Iterator()
	for {
		_, bucket, ok := iter.Next()
		if !ok {
			break
		}
		for _, id := range bucket.Slice() {
			out.Insert(id)
		}
	}
	return out
}

// FindUnifiable returns ids whose Kif may unify with t, confirmed via
// unify.Unify.
func (p *PathIndex) FindUnifiable(t term.Term) []model.AssertionID {
	return p.filter(p.candidateIDs(t), func(kif term.Lst) bool {
		_, ok := unify.Unify(kif, t, unify.Empty())
		return ok
	})
}

// FindInstancesOf returns ids whose Kif is an instance of pattern
// (pattern matches one-way against the stored term).
func (p *PathIndex) FindInstancesOf(pattern term.Term) []model.AssertionID {
	return p.filter(p.candidateIDs(pattern), func(kif term.Lst) bool {
		return unify.Generalizes(pattern, kif)
	})
}

// FindGeneralizationsOf returns ids whose Kif generalizes t (the
// stored term matches one-way as the pattern against t).
func (p *PathIndex) FindGeneralizationsOf(t term.Term) []model.AssertionID {
	return p.filter(p.candidateIDs(t), func(kif term.Lst) bool {
		return unify.Generalizes(kif, t)
	})
}

func (p *PathIndex) filter(candidates *set.Set[model.AssertionID], confirm func(term.Lst) bool) []model.AssertionID {
	var out []model.AssertionID
	for _, id := range candidates.Slice() {
		kif, ok := p.lookup(id)
		if !ok {
			continue
		}
		if confirm(kif) {
			out = append(out, id)
		}
	}
	return out
}
