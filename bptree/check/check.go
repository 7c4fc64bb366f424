// Package check audits the structure of a bptree.Tree through its read-only accessors.
package check

import (
	"github.com/cockroachdb/errors"
	"github.com/mcherri/bheaven/bptree"
)

var ErrCorrupt = errors.New("check: tree violates an invariant")

// Report describes a tree that has been walked. Depth is -1 for an empty tree.
type Report struct {
	Depth  int
	Leaves int
	Inners int
	Values int
}

type checker[K, V any] struct {
	tree   *bptree.Tree[K, V]
	leaves []*bptree.Node[K, V]
	depth  int
	inners int
	errs   error
}

/*
Validate walks t and returns every violated invariant as one combined error wrapping
ErrCorrupt:

  - every node holds at most MaxSlots keys in strictly ascending order;
  - every node but the root holds at least MinSlots keys;
  - an inner root has at least two children;
  - all leaves sit at the same depth;
  - the keys under children[i] are at most keys[i] and greater than keys[i-1];
  - the leaf chain visits every leaf once, left to right, and ends;
  - the number of stored values equals Len.
*/
func Validate[K, V any](t *bptree.Tree[K, V]) (Report, error) {
	c := &checker[K, V]{tree: t, depth: -1}
	root := t.Root()
	if root == nil {
		if t.Len() != 0 {
			c.fail("empty tree reports %d values", t.Len())
		}
		return Report{Depth: -1}, c.errs
	}
	if !root.IsLeaf() && root.Slots() < 1 {
		c.fail("inner root has %d children", root.Slots()+1)
	}

	c.walk(root, 0, true)
	values := c.chain()
	if values != t.Len() {
		c.fail("tree holds %d values but reports %d", values, t.Len())
	}
	return Report{Depth: c.depth, Leaves: len(c.leaves), Inners: c.inners, Values: values}, c.errs
}

func (c *checker[K, V]) fail(format string, args ...interface{}) {
	c.errs = errors.CombineErrors(c.errs, errors.Wrapf(ErrCorrupt, format, args...))
}

// span is the smallest and largest key stored under a subtree.
type span[K any] struct {
	min, max K
	ok       bool
}

func (c *checker[K, V]) walk(n *bptree.Node[K, V], depth int, root bool) span[K] {
	if n.Slots() > n.MaxSlots() {
		c.fail("node at depth %d holds %d of %d slots", depth, n.Slots(), n.MaxSlots())
		return span[K]{}
	}
	if !root && n.Slots() < n.MinSlots() {
		c.fail("node at depth %d holds %d slots, below %d", depth, n.Slots(), n.MinSlots())
	}
	for i := 1; i < n.Slots(); i++ {
		if c.tree.Compare(n.Key(i-1), n.Key(i)) >= 0 {
			c.fail("keys %v and %v out of order at depth %d", n.Key(i-1), n.Key(i), depth)
		}
	}

	if n.IsLeaf() {
		if c.depth < 0 {
			c.depth = depth
		} else if c.depth != depth {
			c.fail("leaf at depth %d, expected %d", depth, c.depth)
		}
		c.leaves = append(c.leaves, n)
		if n.Slots() == 0 {
			return span[K]{}
		}
		return span[K]{min: n.Key(0), max: n.Key(n.Slots() - 1), ok: true}
	}

	c.inners++
	var s span[K]
	for i := 0; i <= n.Slots(); i++ {
		child := n.Child(i)
		if child == nil {
			c.fail("inner node at depth %d misses child %d", depth, i)
			continue
		}
		cs := c.walk(child, depth+1, false)
		if !cs.ok {
			continue
		}
		if i < n.Slots() && c.tree.Compare(cs.max, n.Key(i)) > 0 {
			c.fail("key %v exceeds separator %v", cs.max, n.Key(i))
		}
		if i > 0 && c.tree.Compare(cs.min, n.Key(i-1)) <= 0 {
			c.fail("key %v does not exceed separator %v", cs.min, n.Key(i-1))
		}
		if !s.ok {
			s.min = cs.min
		}
		s.max = cs.max
		s.ok = true
	}
	return s
}

// chain follows the next links from the leftmost leaf and counts the values on the way.
func (c *checker[K, V]) chain() int {
	if len(c.leaves) == 0 {
		return 0
	}
	values := 0
	var last K
	seen := false
	n := c.leaves[0]
	for i := 0; n != nil; i++ {
		if i >= len(c.leaves) {
			c.fail("leaf chain runs past the last of %d leaves", len(c.leaves))
			break
		}
		if n != c.leaves[i] {
			c.fail("leaf chain diverges at leaf %d", i)
			break
		}
		for j := 0; j < n.Slots(); j++ {
			if seen && c.tree.Compare(last, n.Key(j)) >= 0 {
				c.fail("leaf chain key %v follows %v", n.Key(j), last)
			}
			last, seen = n.Key(j), true
		}
		values += n.Slots()
		n = n.Next()
		if n == nil && i != len(c.leaves)-1 {
			c.fail("leaf chain ends after %d of %d leaves", i+1, len(c.leaves))
		}
	}
	return values
}
