package bptree

import "github.com/cockroachdb/errors"

// breadcrumb is one step of a root-to-leaf descent: the node reached and the index of
// the child pointer followed in its parent (-1 for the root).
type breadcrumb[K, V any] struct {
	node  *Node[K, V]
	index int
}

// trail is the path recorded by a single descent. It stands in for parent pointers and
// lives only as long as the operation that built it.
type trail[K, V any] []breadcrumb[K, V]

func (t trail[K, V]) node(pos int) *Node[K, V] { return t[pos].node }

// parent returns the parent of the node at pos and the child index that leads back to it.
func (t trail[K, V]) parent(pos int) (*Node[K, V], int) {
	if pos <= 0 {
		panic(errors.AssertionFailedf("the root has no parent"))
	}
	parent, index := t[pos-1].node, t[pos].index
	if index < 0 || index > parent.slots || parent.children[index] != t[pos].node {
		panic(errors.AssertionFailedf("node at depth %d is not child %d of its parent", pos, index))
	}
	return parent, index
}

// siblings returns the nodes immediately left and right of the node at pos under the same
// parent. A node at the edge of its parent has only one.
func (t trail[K, V]) siblings(pos int) (left, right *Node[K, V]) {
	parent, index := t.parent(pos)
	if index > 0 {
		left = parent.children[index-1]
	}
	if index < parent.slots {
		right = parent.children[index+1]
	}
	return left, right
}

/*
previousLeaf finds the leaf preceding the leaf at pos in key order when that leaf hangs
under a different parent: climb until the path turns right of some subtree, then take
that subtree's rightmost leaf. Returns nil for the leftmost leaf of the tree.
*/
func (t trail[K, V]) previousLeaf(pos int) *Node[K, V] {
	for ; pos > 0; pos-- {
		if index := t[pos].index; index > 0 {
			n := t[pos-1].node.children[index-1]
			for !n.leaf {
				n = n.children[n.slots]
			}
			return n
		}
	}
	return nil
}
