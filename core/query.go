package core

import (
	"fmt"
	"strings"
)

// QueryList is a parsed, comma-separated list of media queries. The list
// matches when any of its queries matches.
type QueryList []MediaQuery

// MediaQuery is a single query of a list: an optional media type with an
// optional condition, possibly negated as a whole.
type MediaQuery struct {
	Not  bool
	Type string // lowercased; "" and "all" match every device
	Cond Condition
}

// Condition is a boolean media condition evaluated against a Device.
type Condition interface {
	Eval(d Device) bool
}

// NotCondition negates its operand.
type NotCondition struct{ C Condition }

// AndCondition holds when every operand holds.
type AndCondition []Condition

// OrCondition holds when any operand holds.
type OrCondition []Condition

// Comparison tests a device value against Value with Op, reading the
// device value on the left: "width >= 100px" is {Op: ">=", Value: "100px"}.
type Comparison struct {
	Op    string
	Value string
}

// FeatureTest checks one media feature. With no comparisons it is a
// boolean-context test such as "(color)".
type FeatureTest struct {
	Name        string
	Comparisons []Comparison
}

func (c NotCondition) Eval(d Device) bool { return !c.C.Eval(d) }

func (c AndCondition) Eval(d Device) bool {
	for _, op := range c {
		if !op.Eval(d) {
			return false
		}
	}
	return true
}

func (c OrCondition) Eval(d Device) bool {
	for _, op := range c {
		if op.Eval(d) {
			return true
		}
	}
	return false
}

// Eval reports whether any query in the list matches d.
func (l QueryList) Eval(d Device) bool {
	for _, q := range l {
		if q.Eval(d) {
			return true
		}
	}
	return false
}

// Eval reports whether q matches d.
func (q MediaQuery) Eval(d Device) bool {
	ok := typeMatches(q.Type, d)
	if ok && q.Cond != nil {
		ok = q.Cond.Eval(d)
	}
	if q.Not {
		return !ok
	}
	return ok
}

func typeMatches(typ string, d Device) bool {
	if typ == "" || typ == "all" {
		return true
	}
	got, ok := scalarString(d["type"])
	return ok && strings.EqualFold(got, typ)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parse parses a media query list. Errors are *SyntaxError values that
// wrap ErrInvalidQuery.
func Parse(query string) (QueryList, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}
	p := &parser{src: query, toks: lex(query)}

	var list QueryList
	for {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		list = append(list, q)

		switch t := p.next(); t.kind {
		case tokEOF:
			return list, nil
		case tokComma:
			continue
		default:
			return nil, p.errorf(t, "unexpected %q after query", t.text)
		}
	}
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) peekKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokWord && strings.EqualFold(t.text, kw)
}

func (p *parser) errorf(t token, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &SyntaxError{Query: p.src, Offset: t.offset, Reason: reason}
}

func (p *parser) parseQuery() (MediaQuery, error) {
	var q MediaQuery
	t := p.peek()
	switch t.kind {
	case tokLParen:
		c, err := p.parseCondition(true)
		if err != nil {
			return q, err
		}
		q.Cond = c
		return q, nil
	case tokWord:
	default:
		return q, p.errorf(t, "expected media type or condition, got %q", t.text)
	}

	// "not (color)" is a condition, "not screen" negates a typed query.
	if p.peekKeyword("not") && p.toks[p.pos+1].kind == tokLParen {
		c, err := p.parseCondition(true)
		if err != nil {
			return q, err
		}
		q.Cond = c
		return q, nil
	}

	switch {
	case p.peekKeyword("not"):
		p.next()
		q.Not = true
	case p.peekKeyword("only"):
		p.next()
	}

	typ := p.next()
	if typ.kind != tokWord || !isIdent(typ.text) || isReserved(typ.text) {
		return q, p.errorf(typ, "expected media type, got %q", typ.text)
	}
	q.Type = strings.ToLower(typ.text)

	if p.peekKeyword("and") {
		p.next()
		c, err := p.parseCondition(false)
		if err != nil {
			return q, err
		}
		q.Cond = c
	}
	return q, nil
}

// parseCondition parses "not x", "x and y ..." or, when allowOr is set,
// "x or y ...". Mixing and/or without parentheses is rejected.
func (p *parser) parseCondition(allowOr bool) (Condition, error) {
	if p.peekKeyword("not") {
		p.next()
		c, err := p.parseInParens()
		if err != nil {
			return nil, err
		}
		return NotCondition{C: c}, nil
	}

	first, err := p.parseInParens()
	if err != nil {
		return nil, err
	}

	var joiner string
	switch {
	case p.peekKeyword("and"):
		joiner = "and"
	case p.peekKeyword("or"):
		if !allowOr {
			return nil, p.errorf(p.peek(), "\"or\" is not allowed after a media type")
		}
		joiner = "or"
	default:
		return first, nil
	}

	ops := []Condition{first}
	for p.peekKeyword(joiner) {
		p.next()
		c, err := p.parseInParens()
		if err != nil {
			return nil, err
		}
		ops = append(ops, c)
	}
	if p.peekKeyword("and") || p.peekKeyword("or") {
		return nil, p.errorf(p.peek(), "cannot mix \"and\" and \"or\" without parentheses")
	}
	if joiner == "and" {
		return AndCondition(ops), nil
	}
	return OrCondition(ops), nil
}

func (p *parser) parseInParens() (Condition, error) {
	open := p.next()
	if open.kind != tokLParen {
		return nil, p.errorf(open, "expected \"(\", got %q", open.text)
	}

	if t := p.peek(); t.kind == tokLParen || (p.peekKeyword("not") && p.toks[p.pos+1].kind == tokLParen) {
		c, err := p.parseCondition(true)
		if err != nil {
			return nil, err
		}
		if cl := p.next(); cl.kind != tokRParen {
			return nil, p.errorf(cl, "expected \")\", got %q", cl.text)
		}
		return c, nil
	}

	var body []token
	for {
		t := p.next()
		switch t.kind {
		case tokRParen:
			return p.parseFeature(open, body)
		case tokEOF:
			return nil, p.errorf(t, "unterminated \"(\"")
		case tokLParen, tokComma:
			return nil, p.errorf(t, "unexpected %q in media feature", t.text)
		}
		body = append(body, t)
	}
}

func (p *parser) parseFeature(open token, body []token) (Condition, error) {
	if len(body) == 0 {
		return nil, p.errorf(open, "empty media feature")
	}

	// (name) and (name: value)
	if body[0].kind == tokWord && (len(body) == 1 || body[1].kind == tokColon) {
		name := strings.ToLower(body[0].text)
		if !isIdent(name) {
			return nil, p.errorf(body[0], "invalid feature name %q", body[0].text)
		}
		if len(body) == 1 {
			return FeatureTest{Name: name}, nil
		}
		value, err := p.joinValue(body[0], body[2:])
		if err != nil {
			return nil, err
		}
		op := "="
		switch {
		case strings.HasPrefix(name, "min-"):
			name, op = strings.TrimPrefix(name, "min-"), ">="
		case strings.HasPrefix(name, "max-"):
			name, op = strings.TrimPrefix(name, "max-"), "<="
		}
		return FeatureTest{Name: name, Comparisons: []Comparison{{Op: op, Value: value}}}, nil
	}

	// Range forms: split the body on comparison operators.
	var segs [][]token
	var ops []token
	start := 0
	for i, t := range body {
		if t.kind == tokOp {
			segs = append(segs, body[start:i])
			ops = append(ops, t)
			start = i + 1
		}
	}
	segs = append(segs, body[start:])
	for _, s := range segs {
		if len(s) == 0 {
			return nil, p.errorf(open, "incomplete range in media feature")
		}
	}

	switch len(ops) {
	case 1:
		left, right := segs[0], segs[1]
		if len(left) == 1 && isFeatureName(left[0].text) {
			v, err := p.joinValue(left[0], right)
			if err != nil {
				return nil, err
			}
			return FeatureTest{Name: strings.ToLower(left[0].text), Comparisons: []Comparison{{Op: ops[0].text, Value: v}}}, nil
		}
		if len(right) == 1 && isFeatureName(right[0].text) {
			v, err := p.joinValue(ops[0], left)
			if err != nil {
				return nil, err
			}
			return FeatureTest{Name: strings.ToLower(right[0].text), Comparisons: []Comparison{{Op: flipOp(ops[0].text), Value: v}}}, nil
		}
		return nil, p.errorf(open, "range has no feature name")
	case 2:
		if len(segs[1]) != 1 || !isFeatureName(segs[1][0].text) {
			return nil, p.errorf(segs[1][0], "expected feature name in range")
		}
		if direction(ops[0].text) == 0 || direction(ops[0].text) != direction(ops[1].text) {
			return nil, p.errorf(ops[1], "range operators must point the same way")
		}
		lo, err := p.joinValue(ops[0], segs[0])
		if err != nil {
			return nil, err
		}
		hi, err := p.joinValue(ops[1], segs[2])
		if err != nil {
			return nil, err
		}
		return FeatureTest{
			Name: strings.ToLower(segs[1][0].text),
			Comparisons: []Comparison{
				{Op: flipOp(ops[0].text), Value: lo},
				{Op: ops[1].text, Value: hi},
			},
		}, nil
	default:
		return nil, p.errorf(open, "malformed media feature")
	}
}

// joinValue glues the words of a value together so "16 / 9" reads as "16/9".
func (p *parser) joinValue(at token, toks []token) (string, error) {
	if len(toks) == 0 {
		return "", p.errorf(at, "missing value")
	}
	var b strings.Builder
	for _, t := range toks {
		if t.kind != tokWord {
			return "", p.errorf(t, "unexpected %q in value", t.text)
		}
		b.WriteString(t.text)
	}
	return b.String(), nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if c == '-' && len(s) > 1 {
		c = s[1]
	}
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isFeatureName rejects the min-/max- forms, which are invalid in ranges.
func isFeatureName(s string) bool {
	l := strings.ToLower(s)
	return isIdent(s) && !strings.HasPrefix(l, "min-") && !strings.HasPrefix(l, "max-")
}

func isReserved(s string) bool {
	switch strings.ToLower(s) {
	case "and", "or", "not", "only":
		return true
	}
	return false
}

func flipOp(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	}
	return op
}

func direction(op string) int {
	switch op {
	case "<", "<=":
		return -1
	case ">", ">=":
		return 1
	}
	return 0
}
