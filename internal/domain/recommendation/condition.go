package recommendation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidCondition is wrapped by all condition parse failures. A condition
// that cannot be parsed is a configuration error, never a silently-false
// predicate: silently skipping a safety rule is how a contraindicated
// medication slips through.
var ErrInvalidCondition = errors.New("invalid condition")

// Condition is a boolean predicate over a ResponseMap.
//
// The grammar is deliberately small:
//
//	predicate := FIELD "equals" STRING | FIELD "includes" STRING
//	expr      := predicate | expr AND expr | expr OR expr | ( expr )
//
// where STRING is double-quoted and AND binds tighter than OR.
type Condition interface {
	Eval(responses ResponseMap) bool
}

type equalsCond struct {
	Field string
	Value string
}

func (c equalsCond) Eval(responses ResponseMap) bool {
	ans, ok := responses[c.Field]
	if !ok {
		return false
	}
	s, ok := ans.scalarString()
	return ok && s == c.Value
}

type includesCond struct {
	Field string
	Value string
}

func (c includesCond) Eval(responses ResponseMap) bool {
	ans, ok := responses[c.Field]
	if !ok || ans.Kind != AnswerMultiChoice {
		return false
	}
	for _, v := range ans.Multi {
		if v == c.Value {
			return true
		}
	}
	return false
}

type andCond struct{ L, R Condition }

func (c andCond) Eval(responses ResponseMap) bool {
	return c.L.Eval(responses) && c.R.Eval(responses)
}

type orCond struct{ L, R Condition }

func (c orCond) Eval(responses ResponseMap) bool {
	return c.L.Eval(responses) || c.R.Eval(responses)
}

// ParseCondition parses a condition string into an evaluable predicate.
// Anything outside the grammar returns an error wrapping ErrInvalidCondition.
func ParseCondition(input string) (Condition, error) {
	p := &condParser{input: input}
	p.next()
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q after condition", p.tok.text)
	}
	return cond, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokLParen
	tokRParen
	tokAnd
	tokOr
)

type token struct {
	kind tokenKind
	text string
}

type condParser struct {
	input string
	pos   int
	tok   token
	err   error
}

func (p *condParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s in %q", ErrInvalidCondition, fmt.Sprintf(format, args...), p.input)
}

func (p *condParser) next() {
	if p.err != nil {
		return
	}
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF}
		return
	}
	switch c := p.input[p.pos]; {
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "("}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")"}
	case c == '"':
		end := strings.IndexByte(p.input[p.pos+1:], '"')
		if end < 0 {
			p.err = p.errorf("unterminated string")
			return
		}
		p.tok = token{kind: tokString, text: p.input[p.pos+1 : p.pos+1+end]}
		p.pos += end + 2
	default:
		start := p.pos
		for p.pos < len(p.input) && !unicode.IsSpace(rune(p.input[p.pos])) &&
			p.input[p.pos] != '(' && p.input[p.pos] != ')' && p.input[p.pos] != '"' {
			p.pos++
		}
		word := p.input[start:p.pos]
		switch strings.ToUpper(word) {
		case "AND":
			p.tok = token{kind: tokAnd, text: word}
		case "OR":
			p.tok = token{kind: tokOr, text: word}
		default:
			p.tok = token{kind: tokIdent, text: word}
		}
	}
}

func (p *condParser) parseOr() (Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orCond{L: left, R: right}
	}
	return left, nil
}

func (p *condParser) parseAnd() (Condition, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokAnd {
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = andCond{L: left, R: right}
	}
	return left, nil
}

func (p *condParser) parsePrimary() (Condition, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind == tokLParen {
		p.next()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("missing closing parenthesis")
		}
		p.next()
		return cond, nil
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected field identifier, got %q", p.tok.text)
	}
	field := p.tok.text
	p.next()
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected operator after %q", field)
	}
	op := p.tok.text
	p.next()
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind != tokString {
		return nil, p.errorf("expected quoted value after %q", op)
	}
	value := p.tok.text
	p.next()
	if p.err != nil {
		return nil, p.err
	}
	switch op {
	case "equals":
		return equalsCond{Field: field, Value: value}, nil
	case "includes":
		return includesCond{Field: field, Value: value}, nil
	default:
		return nil, p.errorf("unsupported operator %q", op)
	}
}
