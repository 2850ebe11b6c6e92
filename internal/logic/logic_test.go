package logic

import (
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/codenerd/reasonkit/internal/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse1(t *testing.T, s string) term.Term {
	t.Helper()
	terms, err := term.Parse(s)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	return terms[0]
}

func freshSource() func() string {
	var n atomic.Int64
	return func() string { return strconv.FormatInt(n.Add(1), 10) }
}

func TestSkolemizeNoUniversalContext(t *testing.T) {
	exists := parse1(t, `(exists (?x) (likes ?x Bob))`)
	out := Skolemize(exists, nil, freshSource())

	lst, ok := out.(term.Lst)
	require.True(t, ok)
	assert.Equal(t, "likes", lst.OperatorSymbol())
	skolemAtom, ok := lst.Children[1].(term.Atom)
	require.True(t, ok)
	assert.Contains(t, skolemAtom.Value, term.SkolemPrefix)
	assert.True(t, out.ContainsSkolem())
}

func TestSkolemizeWithUniversalContext(t *testing.T) {
	body := parse1(t, `(exists (?y) (parentOf ?y ?x))`)
	out := Skolemize(body, []term.Var{term.NewVar("?x")}, freshSource())

	lst := out.(term.Lst)
	skolemCall, ok := lst.Children[1].(term.Lst)
	require.True(t, ok, "expected skolem function applied to universal vars")
	fn := skolemCall.Children[0].(term.Atom)
	assert.Contains(t, fn.Value, term.SkolemPrefix)
	assert.Equal(t, "?x", skolemCall.Children[1].String())
}

func TestSkolemizeNestedForall(t *testing.T) {
	rule := parse1(t, `(forall (?x) (=> (man ?x) (exists (?y) (mortalAncestorOf ?y ?x))))`)
	out := Skolemize(rule, nil, freshSource())
	assert.True(t, out.ContainsSkolem())

	lst := out.(term.Lst)
	assert.Equal(t, "forall", lst.OperatorSymbol())
}

func TestSimplifyDoubleNegation(t *testing.T) {
	in := parse1(t, `(not (not (p a)))`)
	out := Simplify(in, nil)
	assert.Equal(t, `(p a)`, term.Print(out))
}

func TestSimplifyDeepDoubleNegation(t *testing.T) {
	in := parse1(t, `(not (not (not (not (p a)))))`)
	out := Simplify(in, nil)
	assert.Equal(t, `(p a)`, term.Print(out))
}

func TestSimplifyNoChangeNeeded(t *testing.T) {
	in := parse1(t, `(and (p a) (not (q b)))`)
	out := Simplify(in, nil)
	assert.True(t, in.Equal(out))
}

type recordingWarner struct{ messages []string }

func (r *recordingWarner) Warnf(format string, args ...interface{}) {
	r.messages = append(r.messages, format)
}

func TestSimplifyConvergesWithoutWarning(t *testing.T) {
	w := &recordingWarner{}
	in := parse1(t, `(not (not (not (not (p a)))))`)
	Simplify(in, w)
	assert.Empty(t, w.messages, "well-formed double-negation chains always converge within the cap")
}

func TestSimplifyRecursiveDescent(t *testing.T) {
	in := parse1(t, `(and (not (not (p a))) (or (not (not (q b))) c))`)
	out := Simplify(in, nil)
	assert.Equal(t, `(and (p a) (or (q b) c))`, term.Print(out))
}
