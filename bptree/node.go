package bptree

import (
	"slices"

	"github.com/cockroachdb/errors"
)

/*
Node is a single B+ tree node: either a leaf or an inner node.

Both kinds use slot arrays that are sized once by the NodeFactory and never grow. slots
counts the occupied positions; everything at or beyond slots is zeroed so released keys
and values can be collected.

  - leaf:  keys[i] pairs with values[i]; next is the leaf immediately to the right.
  - inner: children has one more position than keys. children[i] holds keys K with
    keys[i-1] < K <= keys[i]. A separator only has to be an upper bound for its left
    child, deletions do not tighten it.
*/
type Node[K, V any] struct {
	keys     []K
	values   []V           // leaf only
	children []*Node[K, V] // inner only
	next     *Node[K, V]   // leaf only, not owned
	slots    int
	leaf     bool
}

// MakeLeaf returns an empty leaf able to hold records key/value pairs.
func MakeLeaf[K, V any](records int, next *Node[K, V]) *Node[K, V] {
	return &Node[K, V]{
		keys:   make([]K, records),
		values: make([]V, records),
		next:   next,
		leaf:   true,
	}
}

// MakeInner returns an empty inner node of the given order (order children, order-1 keys).
func MakeInner[K, V any](order int) *Node[K, V] {
	return &Node[K, V]{
		keys:     make([]K, order-1),
		children: make([]*Node[K, V], order),
	}
}

// IsLeaf reports whether n is a leaf.
func (n *Node[K, V]) IsLeaf() bool { return n.leaf }

// Slots returns the number of occupied key slots.
func (n *Node[K, V]) Slots() int { return n.slots }

// MaxSlots returns the key capacity fixed when the node was made.
func (n *Node[K, V]) MaxSlots() int { return len(n.keys) }

// Key returns the i-th occupied key.
func (n *Node[K, V]) Key(i int) K {
	if i < 0 || i >= n.slots {
		panic(errors.AssertionFailedf("key index %d out of range [0, %d)", i, n.slots))
	}
	return n.keys[i]
}

// Value returns the i-th value of a leaf.
func (n *Node[K, V]) Value(i int) V {
	if !n.leaf {
		panic(errors.AssertionFailedf("value requested from an inner node"))
	}
	if i < 0 || i >= n.slots {
		panic(errors.AssertionFailedf("value index %d out of range [0, %d)", i, n.slots))
	}
	return n.values[i]
}

// Child returns the i-th child of an inner node, 0 <= i <= Slots().
func (n *Node[K, V]) Child(i int) *Node[K, V] {
	if n.leaf {
		panic(errors.AssertionFailedf("child requested from a leaf"))
	}
	if i < 0 || i > n.slots {
		panic(errors.AssertionFailedf("child index %d out of range [0, %d]", i, n.slots))
	}
	return n.children[i]
}

// Next returns the leaf to the right of n, or nil for the last leaf.
func (n *Node[K, V]) Next() *Node[K, V] {
	if !n.leaf {
		panic(errors.AssertionFailedf("next requested from an inner node"))
	}
	return n.next
}

func (n *Node[K, V]) isFull() bool  { return n.slots == len(n.keys) }
func (n *Node[K, V]) isEmpty() bool { return n.slots == 0 }

// minSlots is the occupancy floor of a non-root node. An inner node with s keys has s+1
// children, hence the smaller bound.
func (n *Node[K, V]) minSlots() int {
	if n.leaf {
		return (len(n.keys) + 1) / 2
	}
	return (len(n.keys) - 1) / 2
}

// MinSlots returns the fewest keys n may hold when it is not the root.
func (n *Node[K, V]) MinSlots() int { return n.minSlots() }

func (n *Node[K, V]) hasEnoughSlots() bool { return n.slots >= n.minSlots() }

// canGiveSlots reports whether n still has enough slots after giving one away.
func (n *Node[K, V]) canGiveSlots() bool { return n.slots-1 >= n.minSlots() }

func (n *Node[K, V]) lastKey() K { return n.keys[n.slots-1] }

/*
If key is found in n, return its index i.
Else, return the index where the key would reside, which for an inner node is also the
index of the child to descend into.
*/
func (n *Node[K, V]) search(key K, compare func(a, b K) int) (int, bool) {
	return slices.BinarySearchFunc(n.keys[:n.slots], key, compare)
}

// truncate sets the slot count and zeroes everything past it.
func (n *Node[K, V]) truncate(slots int) {
	var zero K
	for i := slots; i < len(n.keys); i++ {
		n.keys[i] = zero
	}
	if n.leaf {
		var v V
		for i := slots; i < len(n.values); i++ {
			n.values[i] = v
		}
	} else {
		for i := slots + 1; i < len(n.children); i++ {
			n.children[i] = nil
		}
	}
	n.slots = slots
}

// reset returns n to its freshly made state.
func (n *Node[K, V]) reset() {
	n.truncate(0)
	if !n.leaf {
		n.children[0] = nil
	}
	n.next = nil
}

// insertAt puts a key/value pair at pos of a leaf that is not full.
func (n *Node[K, V]) insertAt(pos int, key K, value V) {
	if n.isFull() {
		panic(errors.AssertionFailedf("insert into a full leaf"))
	}
	copy(n.keys[pos+1:n.slots+1], n.keys[pos:n.slots])
	copy(n.values[pos+1:n.slots+1], n.values[pos:n.slots])
	n.keys[pos] = key
	n.values[pos] = value
	n.slots++
}

// removeAt drops the pair at pos of a leaf.
func (n *Node[K, V]) removeAt(pos int) {
	copy(n.keys[pos:n.slots-1], n.keys[pos+1:n.slots])
	copy(n.values[pos:n.slots-1], n.values[pos+1:n.slots])
	n.truncate(n.slots - 1)
}

// insertChild adds a separator and the child to its right into an inner node that is not full.
func (n *Node[K, V]) insertChild(key K, child *Node[K, V], compare func(a, b K) int) {
	if n.isFull() {
		panic(errors.AssertionFailedf("insert into a full inner node"))
	}
	pos, found := n.search(key, compare)
	if found {
		pos++
	}
	copy(n.keys[pos+1:n.slots+1], n.keys[pos:n.slots])
	copy(n.children[pos+2:n.slots+2], n.children[pos+1:n.slots+1])
	n.keys[pos] = key
	n.children[pos+1] = child
	n.slots++
}

// removeChild drops keys[keyIndex] and children[childIndex] from an inner node.
func (n *Node[K, V]) removeChild(keyIndex, childIndex int) {
	copy(n.keys[keyIndex:n.slots-1], n.keys[keyIndex+1:n.slots])
	copy(n.children[childIndex:n.slots], n.children[childIndex+1:n.slots+1])
	n.truncate(n.slots - 1)
}

/*
leftShift moves the occupied range count positions to the left, overwriting the first
count entries. Inner nodes move children along with keys, one position further right.
The slot count is left alone, the caller adjusts it.
*/
func (n *Node[K, V]) leftShift(count int) {
	copy(n.keys, n.keys[count:n.slots])
	if n.leaf {
		copy(n.values, n.values[count:n.slots])
		return
	}
	copy(n.children, n.children[count:n.slots+1])
}

// rightShift opens a gap of count positions at the front of the occupied range.
func (n *Node[K, V]) rightShift(count int) {
	copy(n.keys[count:n.slots+count], n.keys[:n.slots])
	if n.leaf {
		copy(n.values[count:n.slots+count], n.values[:n.slots])
		return
	}
	copy(n.children[count:n.slots+count+1], n.children[:n.slots+1])
}

/*
copyToLeft appends the first count entries of n behind the occupied range of dst.

For inner nodes count is a number of children: the first count children land after
dst's last child together with count-1 keys, leaving dst.keys[dst.slots] for the
separator the caller pulls down from the parent.
*/
func (n *Node[K, V]) copyToLeft(dst *Node[K, V], count int) {
	n.mustMatch(dst)
	if n.leaf {
		copy(dst.keys[dst.slots:dst.slots+count], n.keys[:count])
		copy(dst.values[dst.slots:dst.slots+count], n.values[:count])
		return
	}
	copy(dst.keys[dst.slots+1:dst.slots+count], n.keys[:count-1])
	copy(dst.children[dst.slots+1:dst.slots+1+count], n.children[:count])
}

/*
copyToRight places the last count entries of n at the front of dst, which the caller
has already opened with rightShift. For inner nodes dst.keys[count-1] stays free for the
separator pulled down from the parent.
*/
func (n *Node[K, V]) copyToRight(dst *Node[K, V], count int) {
	n.mustMatch(dst)
	if n.leaf {
		copy(dst.keys[:count], n.keys[n.slots-count:n.slots])
		copy(dst.values[:count], n.values[n.slots-count:n.slots])
		return
	}
	copy(dst.keys[:count-1], n.keys[n.slots-count+1:n.slots])
	copy(dst.children[:count], n.children[n.slots-count+1:n.slots+1])
}

func (n *Node[K, V]) mustMatch(other *Node[K, V]) {
	if n.leaf != other.leaf {
		panic(errors.AssertionFailedf("cannot move entries between a leaf and an inner node"))
	}
}
