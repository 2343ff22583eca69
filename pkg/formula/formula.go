// Package formula parses infix boolean expressions into binary trees
// used as access structures by the secret sharing packages.
//
// The parser first produces a nested list form — a literal is a
// one-element list, an operator node a three-element
// (operator, left, right) triple — and FromList builds the node tree
// bottom-up from it, mirroring the list shape checks.
package formula

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFormula is returned for ill-formed node shapes,
	// missing operands, unknown operators, and reserved literal names.
	ErrMalformedFormula = errors.New("formula: malformed formula")

	// ErrNonMonotone is returned when a negation appears while
	// monotone mode is active.
	ErrNonMonotone = errors.New("formula: input formula is not monotone")
)

// NodeType tags the variant of a Node.
type NodeType int

const (
	And NodeType = iota + 1
	Or
	Not
	Literal
)

// Reserved operator tokens that cannot be used as literal names.
var reservedNames = map[string]bool{
	"&": true, "and": true,
	"|": true, "or": true,
	"~": true, "not": true,
}

// Node is one node of a boolean formula tree. And/Or nodes own two
// children, Not owns one (in Left), Literal owns none. Parent is a
// non-owning back-reference for upward traversal.
//
// Two numbering schemes coexist and must not be conflated: Label is the
// per-name occurrence index assigned to literals by Relabel, while
// Index is the binary-heap tree address (root=1, children 2i and 2i+1)
// assigned to every node by the secret distributor.
type Node struct {
	Type   NodeType
	Op     string // display symbol
	Left   *Node
	Right  *Node
	Parent *Node

	Name  string // literal name
	Label int    // occurrence label, literals only
	Index int    // tree address assigned during distribution

	// Content holds the per-node sharing state attached by the
	// distributor; the tree itself never inspects it.
	Content any

	// Span holds the span-program vector attached by the MSP builder.
	Span []int
}

func newAnd(left, right *Node) *Node {
	n := &Node{Type: And, Op: "&", Left: left, Right: right}
	left.Parent = n
	right.Parent = n
	return n
}

func newOr(left, right *Node) *Node {
	n := &Node{Type: Or, Op: "|", Left: left, Right: right}
	left.Parent = n
	right.Parent = n
	return n
}

func newNot(child *Node) *Node {
	n := &Node{Type: Not, Op: "~", Left: child}
	child.Parent = n
	return n
}

func newLiteral(name string) (*Node, error) {
	if reservedNames[name] {
		return nil, fmt.Errorf("%w: %q is a reserved token", ErrMalformedFormula, name)
	}
	return &Node{Type: Literal, Op: name, Name: name}, nil
}

// FromList builds a tree from the nested list form. A one-element list
// is a literal; a three-element list is (operator, left, right) with
// nil standing in for an absent operand. Any other shape is malformed.
func FromList(lst []any, monotone bool) (*Node, error) {
	switch len(lst) {
	case 1:
		name, ok := lst[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: literal entry must be a string", ErrMalformedFormula)
		}
		return newLiteral(name)

	case 3:
		op, ok := lst[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: operator entry must be a string", ErrMalformedFormula)
		}
		switch op {
		case "~", "!", "not":
			if monotone {
				return nil, ErrNonMonotone
			}
			entry := lst[1]
			if entry == nil {
				entry = lst[2]
			}
			if entry == nil {
				return nil, fmt.Errorf("%w: negation of non-existent operand", ErrMalformedFormula)
			}
			child, err := fromOperand(entry, monotone)
			if err != nil {
				return nil, err
			}
			return newNot(child), nil

		case "&", "and", "|", "or":
			if lst[1] == nil || lst[2] == nil {
				return nil, fmt.Errorf("%w: %q with a missing operand", ErrMalformedFormula, op)
			}
			left, err := fromOperand(lst[1], monotone)
			if err != nil {
				return nil, err
			}
			right, err := fromOperand(lst[2], monotone)
			if err != nil {
				return nil, err
			}
			if op == "&" || op == "and" {
				return newAnd(left, right), nil
			}
			return newOr(left, right), nil

		default:
			return nil, fmt.Errorf("%w: unknown operator %q", ErrMalformedFormula, op)
		}

	default:
		return nil, fmt.Errorf("%w: node list must have 1 or 3 entries, got %d", ErrMalformedFormula, len(lst))
	}
}

func fromOperand(entry any, monotone bool) (*Node, error) {
	switch v := entry.(type) {
	case []any:
		return FromList(v, monotone)
	case string:
		return newLiteral(v)
	default:
		return nil, fmt.Errorf("%w: operand has unexpected type %T", ErrMalformedFormula, entry)
	}
}

// Literals collects the literal nodes of the tree in pre-order,
// left subtree before right.
func (n *Node) Literals() []*Node {
	if n == nil {
		return nil
	}
	if n.Type == Literal {
		return []*Node{n}
	}
	out := n.Left.Literals()
	return append(out, n.Right.Literals()...)
}

// Universe returns the set of distinct literal names.
func (n *Node) Universe() map[string]struct{} {
	out := make(map[string]struct{})
	for _, l := range n.Literals() {
		out[l.Name] = struct{}{}
	}
	return out
}

// Relabel assigns each literal its per-name occurrence index: the first
// occurrence of a name gets label 0, the second 1, and so on, in the
// Literals traversal order. Must run exactly once, before distribution.
func Relabel(root *Node) {
	counters := make(map[string]int)
	for _, l := range root.Literals() {
		l.Label = counters[l.Name]
		counters[l.Name]++
	}
}

// String renders the subtree as a parenthesized infix expression.
func (n *Node) String() string {
	switch n.Type {
	case Literal:
		return n.Name
	case Not:
		return n.Op + wrap(n.Left)
	default:
		return wrap(n.Left) + " " + n.Op + " " + wrap(n.Right)
	}
}

func wrap(n *Node) string {
	if n.Type == Literal {
		return n.String()
	}
	return "(" + n.String() + ")"
}
