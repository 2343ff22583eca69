package formula

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse parses an infix boolean expression into a formula tree.
//
// Operators, loosest binding first: <-> (iff), -> (implies, right
// associative), | / or, ^ (xor), & / and, ~ / ! / not. In monotone mode
// only And/Or may appear; Not fails with ErrNonMonotone and the derived
// operators (xor, implies, iff) are rejected as malformed. In
// non-monotone mode the derived operators are eliminated and negations
// pushed down to the literals (negation normal form) before the tree is
// built, so Not only ever wraps a Literal.
func Parse(input string, monotone bool) (*Node, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	lst, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected token %q", ErrMalformedFormula, p.tokens[p.pos])
	}
	if !monotone {
		lst = pushNegations(eliminateDerived(lst), false)
	}
	return FromList(lst, monotone)
}

func tokenize(input string) ([]string, error) {
	var tokens []string
	i := 0
	runes := []rune(input)
	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(' || c == ')' || c == '&' || c == '|' || c == '~' || c == '!' || c == '^':
			tokens = append(tokens, string(c))
			i++
		case c == '-':
			if i+1 < len(runes) && runes[i+1] == '>' {
				tokens = append(tokens, "->")
				i += 2
			} else {
				return nil, fmt.Errorf("%w: stray '-' at offset %d", ErrMalformedFormula, i)
			}
		case c == '<':
			if i+2 < len(runes) && runes[i+1] == '-' && runes[i+2] == '>' {
				tokens = append(tokens, "<->")
				i += 3
			} else {
				return nil, fmt.Errorf("%w: stray '<' at offset %d", ErrMalformedFormula, i)
			}
		case unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", ErrMalformedFormula, string(c))
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty formula", ErrMalformedFormula)
	}
	return tokens, nil
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) peek() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return ""
}

func (p *parser) next() string {
	t := p.peek()
	if t != "" {
		p.pos++
	}
	return t
}

func (p *parser) parseIff() ([]any, error) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	for p.peek() == "<->" {
		p.next()
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		left = []any{"<->", left, right}
	}
	return left, nil
}

func (p *parser) parseImplies() ([]any, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek() == "->" {
		p.next()
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return []any{"->", left, right}, nil
	}
	return left, nil
}

func (p *parser) parseOr() ([]any, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for p.peek() == "|" || p.peek() == "or" {
		p.next()
		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		left = []any{"|", left, right}
	}
	return left, nil
}

func (p *parser) parseXor() ([]any, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "^" {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = []any{"^", left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() ([]any, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek() == "&" || p.peek() == "and" {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = []any{"&", left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() ([]any, error) {
	switch t := p.peek(); t {
	case "~", "!", "not":
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return []any{"~", operand, nil}, nil
	default:
		return p.parseAtom()
	}
}

func (p *parser) parseAtom() ([]any, error) {
	t := p.next()
	switch {
	case t == "":
		return nil, fmt.Errorf("%w: missing operand", ErrMalformedFormula)
	case t == "(":
		inner, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		if p.next() != ")" {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrMalformedFormula)
		}
		return inner, nil
	case isIdent(t):
		return []any{t}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %q", ErrMalformedFormula, t)
	}
}

func isIdent(t string) bool {
	if t == "" {
		return false
	}
	for _, c := range t {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return false
		}
	}
	return !strings.ContainsAny(t, "()&|~!^")
}

// eliminateDerived rewrites xor, implies and iff into and/or/not.
func eliminateDerived(lst []any) []any {
	if len(lst) == 1 {
		return lst
	}
	op := lst[0].(string)
	left := eliminateOperand(lst[1])
	right := eliminateOperand(lst[2])
	switch op {
	case "->":
		return []any{"|", []any{"~", left, nil}, right}
	case "<->":
		return []any{"|",
			[]any{"&", left, right},
			[]any{"&", []any{"~", left, nil}, []any{"~", right, nil}},
		}
	case "^":
		return []any{"|",
			[]any{"&", left, []any{"~", right, nil}},
			[]any{"&", []any{"~", left, nil}, right},
		}
	default:
		return []any{op, left, right}
	}
}

func eliminateOperand(entry any) any {
	if sub, ok := entry.([]any); ok {
		return eliminateDerived(sub)
	}
	return entry
}

// pushNegations drives Not inward by De Morgan's laws until it only
// wraps literals, collapsing double negations along the way.
func pushNegations(lst []any, negated bool) []any {
	if len(lst) == 1 {
		if negated {
			return []any{"~", lst, nil}
		}
		return lst
	}
	op := lst[0].(string)
	switch op {
	case "~", "!", "not":
		entry := lst[1]
		if entry == nil {
			entry = lst[2]
		}
		return pushNegations(asList(entry), !negated)
	case "&", "and":
		if negated {
			op = "|"
		} else {
			op = "&"
		}
	case "|", "or":
		if negated {
			op = "&"
		} else {
			op = "|"
		}
	default:
		// Derived operators are eliminated before this pass; leave
		// anything else for FromList to reject.
		return lst
	}
	return []any{op, pushNegations(asList(lst[1]), negated), pushNegations(asList(lst[2]), negated)}
}

func asList(entry any) []any {
	switch v := entry.(type) {
	case []any:
		return v
	case string:
		return []any{v}
	default:
		// Not reachable from the parser; FromList reports the shape error.
		return []any{entry}
	}
}
