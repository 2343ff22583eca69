// Package benaloh implements secret sharing over a monotone access
// structure, after Benaloh and Leichter (CRYPTO 1988). A monotone
// boolean formula is turned into a binary tree; the secret is pushed
// down the tree with a fresh Shamir instance at every node (2-of-2 at
// And nodes, 1-of-n at Or nodes), and each literal occurrence ends up
// holding an independent key share. Reconstruction propagates revealed
// leaf shares bottom-up until the root secret is recovered or no
// further progress is possible.
package benaloh

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/thresherlabs/thresher/pkg/crypto/field"
	"github.com/thresherlabs/thresher/pkg/crypto/shamir"
	"github.com/thresherlabs/thresher/pkg/formula"
)

var (
	// ErrUnknownIdentity is returned when a share is requested for a
	// name outside the access structure's universe.
	ErrUnknownIdentity = errors.New("benaloh: identity is not a literal of the access structure")

	// ErrUnsatisfiable is returned when the revealed shares do not
	// cover a satisfying subset of the access structure.
	ErrUnsatisfiable = errors.New("benaloh: revealed shares do not satisfy the access structure")
)

// Scheme is a distributed access-structure sharing. The tree is frozen
// after construction; any number of Recombine calls may run against it
// concurrently.
type Scheme struct {
	root     *formula.Node
	universe map[string]struct{}
	field    field.Field
}

// New parses the monotone formula, relabels duplicate literals and
// distributes the byte-encoded secret over the resulting tree.
func New(secret []byte, accessFormula string, f field.Field) (*Scheme, error) {
	root, err := formula.Parse(accessFormula, true)
	if err != nil {
		return nil, err
	}
	return NewFromTree(secret, root, f)
}

// NewFromTree distributes the secret over an already built tree. The
// tree must not have been distributed before.
func NewFromTree(secret []byte, root *formula.Node, f field.Field) (*Scheme, error) {
	formula.Relabel(root)
	if err := distribute(root, secret, 1, f); err != nil {
		return nil, err
	}
	return &Scheme{
		root:     root,
		universe: root.Universe(),
		field:    f,
	}, nil
}

// distribute walks the tree top-down. Node addresses follow the
// binary-heap rule (root=1, children 2i and 2i+1), which also provides
// the distinct non-zero x-coordinates for the two child shares.
func distribute(n *formula.Node, secret []byte, index int, f field.Field) error {
	if index < 1 {
		return fmt.Errorf("%w: node address %d", shamir.ErrInvalidThreshold, index)
	}
	if n.Type == formula.Not {
		return formula.ErrNonMonotone
	}

	threshold := 1
	if n.Type == formula.And {
		threshold = 2
	}
	inst, err := shamir.New(f, secret, threshold)
	if err != nil {
		return err
	}
	n.Content = inst
	n.Index = index

	if n.Type == formula.Literal {
		// The instance's secret is exactly the share this literal
		// occurrence hands out.
		return nil
	}

	leftIndex := 2 * index
	rightIndex := 2*index + 1

	leftSecret, err := inst.CreateShare(shamir.Index(leftIndex))
	if err != nil {
		return err
	}
	rightSecret, err := inst.CreateShare(shamir.Index(rightIndex))
	if err != nil {
		return err
	}

	if err := distribute(n.Left, leftSecret, leftIndex, f); err != nil {
		return err
	}
	return distribute(n.Right, rightSecret, rightIndex, f)
}

// Root returns the distributed tree.
func (s *Scheme) Root() *formula.Node { return s.root }

// Field returns the field the secret was shared over.
func (s *Scheme) Field() field.Field { return s.field }

// Universe returns the distinct literal names, sorted.
func (s *Scheme) Universe() []string {
	out := make([]string, 0, len(s.universe))
	for name := range s.universe {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CreateShare returns every key share held under the given name, keyed
// by the literal's occurrence label. Each occurrence of a repeated name
// carries an independent share.
func (s *Scheme) CreateShare(name string) (map[int][]byte, error) {
	if _, ok := s.universe[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIdentity, name)
	}
	shares := make(map[int][]byte)
	for _, l := range s.root.Literals() {
		if l.Name != name {
			continue
		}
		inst := l.Content.(*shamir.Scheme)
		shares[l.Label] = inst.SecretBytes()
	}
	return shares, nil
}

// workingEntry is a node whose value has been recovered but not yet
// consumed by its parent.
type workingEntry struct {
	node  *formula.Node
	value []byte
}

// assignIndexes stamps binary-heap addresses on an undistributed tree so
// a recombiner can reproduce the x-coordinates the dealer used.
func assignIndexes(n *formula.Node, index int) {
	if n == nil {
		return
	}
	n.Index = index
	assignIndexes(n.Left, 2*index)
	assignIndexes(n.Right, 2*index+1)
}

// Recombine determines whether the revealed shares (name → occurrence
// label → value) satisfy the access structure and, if so, returns the
// original secret. The fixed point is confluent: a node's activation
// depends only on its own children, so the iteration order over pending
// parents never changes the result.
func (s *Scheme) Recombine(shares map[string]map[int][]byte) ([]byte, error) {
	return recombine(s.root, shares, func(p *formula.Node, points []shamir.Share) ([]byte, error) {
		inst := p.Content.(*shamir.Scheme)
		value, err := inst.Recombine(points)
		if err != nil {
			return nil, err
		}
		// The instance still holds the value it distributed; a
		// mismatch here is an implementation bug, not a caller
		// error.
		if !bytes.Equal(value, inst.SecretBytes()) {
			panic("benaloh: recombined node value diverges from the distributed secret")
		}
		return value, nil
	})
}

// Recombine reconstructs a secret from revealed shares and the access
// formula alone, with no dealer state. The formula must be exactly the
// one the secret was distributed with.
func Recombine(accessFormula string, f field.Field, shares map[string]map[int][]byte) ([]byte, error) {
	root, err := formula.Parse(accessFormula, true)
	if err != nil {
		return nil, err
	}
	formula.Relabel(root)
	assignIndexes(root, 1)
	return recombine(root, shares, func(p *formula.Node, points []shamir.Share) ([]byte, error) {
		threshold := 1
		if p.Type == formula.And {
			threshold = 2
		}
		return shamir.Recombine(f, threshold, points)
	})
}

func recombine(
	root *formula.Node,
	shares map[string]map[int][]byte,
	combine func(*formula.Node, []shamir.Share) ([]byte, error),
) ([]byte, error) {
	// The working set is keyed by tree address, the only labeling that
	// is unique across all nodes; occurrence labels restart at 0 for
	// every name.
	working := make(map[int]workingEntry)
	pending := make(map[*formula.Node]struct{})

	for _, l := range root.Literals() {
		byLabel, ok := shares[l.Name]
		if !ok {
			continue
		}
		value, ok := byLabel[l.Label]
		if !ok {
			continue
		}
		if l.Parent == nil {
			// Degenerate single-literal structure: the leaf share is
			// the root secret.
			return value, nil
		}
		working[l.Index] = workingEntry{node: l, value: value}
		pending[l.Parent] = struct{}{}
	}

	for {
		progressed := false

		for p := range pending {
			leftEntry, leftOK := working[p.Left.Index]
			rightEntry, rightOK := working[p.Right.Index]

			var points []shamir.Share
			switch {
			case p.Type == formula.Or && (leftOK || rightOK):
				entry := leftEntry
				if !leftOK {
					entry = rightEntry
				}
				points = []shamir.Share{
					{ID: shamir.Index(entry.node.Index), Value: entry.value},
				}
				delete(working, entry.node.Index)

			case p.Type == formula.And && leftOK && rightOK:
				points = []shamir.Share{
					{ID: shamir.Index(leftEntry.node.Index), Value: leftEntry.value},
					{ID: shamir.Index(rightEntry.node.Index), Value: rightEntry.value},
				}
				delete(working, leftEntry.node.Index)
				delete(working, rightEntry.node.Index)

			default:
				continue
			}
			progressed = true

			value, err := combine(p, points)
			if err != nil {
				return nil, err
			}

			if p.Parent == nil {
				return value, nil
			}
			working[p.Index] = workingEntry{node: p, value: value}
			pending[p.Parent] = struct{}{}
			delete(pending, p)
		}

		if !progressed {
			return nil, ErrUnsatisfiable
		}
	}
}
