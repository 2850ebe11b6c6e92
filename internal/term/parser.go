package term

import (
	"fmt"
	"strings"
)

// ParseError describes a malformed KIF input. It carries the location
// and a rolling context buffer so a caller can render a useful
// diagnostic without re-scanning the input.
type ParseError struct {
	Line    int
	Column  int
	Context string // up to 50 runes of input ending at the error position
	Msg     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s (near %q)", e.Line, e.Column, e.Msg, e.Context)
}

const contextWindow = 50

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokString
	tokVar
	tokAtom
)

type token struct {
	kind   tokenKind
	text   string
	line   int
	column int
}

// isAtomChar reports whether r may appear in a bare symbol atom or
// variable name: anything but whitespace and the reserved
// punctuation `();?"`.
func isAtomChar(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '(', ')', ';', '?', '"':
		return false
	default:
		return true
	}
}

type lexer struct {
	src       []rune
	pos       int
	line      int
	col       int
	startLine int
	startCol  int
}

func newLexer(s string) *lexer {
	return &lexer{src: []rune(s), line: 1, col: 1}
}

func (lx *lexer) peek() (rune, bool) {
	if lx.pos >= len(lx.src) {
		return 0, false
	}
	return lx.src[lx.pos], true
}

func (lx *lexer) advance() (rune, bool) {
	r, ok := lx.peek()
	if !ok {
		return 0, false
	}
	lx.pos++
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r, true
}

func (lx *lexer) context() string {
	end := lx.pos + 1
	if end > len(lx.src) {
		end = len(lx.src)
	}
	start := end - contextWindow
	if start < 0 {
		start = 0
	}
	return string(lx.src[start:end])
}

func (lx *lexer) errf(format string, args ...interface{}) *ParseError {
	return &ParseError{Line: lx.startLine, Column: lx.startCol, Context: lx.context(), Msg: fmt.Sprintf(format, args...)}
}

func (lx *lexer) skipWhitespaceAndComments() error {
	for {
		r, ok := lx.peek()
		if !ok {
			return nil
		}
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			lx.advance()
		case r == ';':
			for {
				r, ok := lx.peek()
				if !ok {
					return nil
				}
				lx.advance()
				if r == '\n' {
					break
				}
			}
		default:
			return nil
		}
	}
}

func (lx *lexer) next() (*token, error) {
	if err := lx.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}
	r, ok := lx.peek()
	if !ok {
		return nil, nil
	}
	lx.startLine, lx.startCol = lx.line, lx.col

	switch r {
	case '(':
		lx.advance()
		return &token{kind: tokLParen, line: lx.startLine, column: lx.startCol}, nil
	case ')':
		lx.advance()
		return &token{kind: tokRParen, line: lx.startLine, column: lx.startCol}, nil
	case '"':
		return lx.lexString()
	case '?':
		return lx.lexVar()
	default:
		return lx.lexAtom()
	}
}

func (lx *lexer) lexString() (*token, error) {
	lx.advance() // consume opening quote
	var b strings.Builder
	for {
		r, ok := lx.peek()
		if !ok {
			return nil, lx.errf("unterminated string")
		}
		if r == '"' {
			lx.advance()
			return &token{kind: tokString, text: b.String(), line: lx.startLine, column: lx.startCol}, nil
		}
		if r == '\\' {
			lx.advance()
			esc, ok := lx.peek()
			if !ok {
				return nil, lx.errf("unterminated string")
			}
			lx.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return nil, lx.errf("invalid escape sequence \\%c", esc)
			}
			continue
		}
		lx.advance()
		b.WriteRune(r)
	}
}

func (lx *lexer) lexVar() (*token, error) {
	lx.advance() // consume '?'
	var b strings.Builder
	for {
		r, ok := lx.peek()
		if !ok || !isAtomChar(r) {
			break
		}
		lx.advance()
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return nil, lx.errf("empty variable name")
	}
	return &token{kind: tokVar, text: "?" + b.String(), line: lx.startLine, column: lx.startCol}, nil
}

func (lx *lexer) lexAtom() (*token, error) {
	var b strings.Builder
	for {
		r, ok := lx.peek()
		if !ok || !isAtomChar(r) {
			break
		}
		lx.advance()
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return nil, lx.errf("unexpected character %q", string(mustPeek(lx)))
	}
	return &token{kind: tokAtom, text: b.String(), line: lx.startLine, column: lx.startCol}, nil
}

func mustPeek(lx *lexer) rune {
	r, _ := lx.peek()
	return r
}

// Parse parses a sequence of whitespace/comment-separated top-level
// terms from s. Returns a ParseError (via errors.As) on malformed
// input.
func Parse(s string) ([]Term, error) {
	lx := newLexer(s)
	var out []Term
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return out, nil
		}
		t, err := parseOne(lx, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
}

func parseOne(lx *lexer, tok *token) (Term, error) {
	switch tok.kind {
	case tokRParen:
		return nil, &ParseError{Line: tok.line, Column: tok.column, Context: lx.context(), Msg: "unmatched )"}
	case tokString:
		return NewAtom(tok.text, true), nil
	case tokVar:
		return NewVar(tok.text), nil
	case tokAtom:
		return NewAtom(tok.text, false), nil
	case tokLParen:
		var children []Term
		for {
			next, err := lx.next()
			if err != nil {
				return nil, err
			}
			if next == nil {
				return nil, &ParseError{Line: tok.line, Column: tok.column, Context: lx.context(), Msg: "EOF inside list"}
			}
			if next.kind == tokRParen {
				return NewList(children...), nil
			}
			child, err := parseOne(lx, next)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
	default:
		return nil, lx.errf("internal: unknown token kind")
	}
}
