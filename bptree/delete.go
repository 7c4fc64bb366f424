package bptree

import "github.com/sirupsen/logrus"

/*
Remove deletes key from the tree. Removing an absent key is a no-op.

A leaf that drops below half occupancy borrows from a sibling under the same parent when
the sibling can spare entries, and is merged into that sibling otherwise. A merge takes a
separator out of the parent, which may leave the parent short in turn; the fix then
repeats one level up. An inner root left without keys is replaced by its only child,
which is the only way the tree shrinks in height.
*/
func (t *Tree[K, V]) Remove(key K) {
	if t.root == nil {
		return
	}

	path := t.descend(key)
	pos := len(path) - 1
	leaf := path.node(pos)

	i, found := leaf.search(key, t.compare)
	if !found {
		return
	}
	leaf.removeAt(i)
	t.count--

	if leaf == t.root {
		if leaf.isEmpty() {
			t.root = nil
			t.release(leaf)
		}
		return
	}
	if leaf.hasEnoughSlots() {
		return
	}
	t.rebalanceLeaf(path, pos)
}

// pickDonor chooses the sibling to borrow from or merge with: the only one there is, or
// the fuller one, preferring the right sibling on a tie.
func pickDonor[K, V any](left, right *Node[K, V]) (donor *Node[K, V], fromLeft bool) {
	switch {
	case left == nil:
		return right, false
	case right == nil:
		return left, true
	case left.slots > right.slots:
		return left, true
	default:
		return right, false
	}
}

func (t *Tree[K, V]) rebalanceLeaf(path trail[K, V], pos int) {
	leaf := path.node(pos)
	parent, index := path.parent(pos)
	left, right := path.siblings(pos)
	donor, fromLeft := pickDonor(left, right)

	if donor.canGiveSlots() {
		count := (donor.slots - leaf.slots) / 2
		if fromLeft {
			leaf.rightShift(count)
			donor.copyToRight(leaf, count)
			leaf.slots += count
			donor.truncate(donor.slots - count)
			parent.keys[index-1] = donor.lastKey()
		} else {
			donor.copyToLeft(leaf, count)
			donor.leftShift(count)
			leaf.slots += count
			donor.truncate(donor.slots - count)
			parent.keys[index] = leaf.lastKey()
		}
		if t.tracing() {
			t.trace("borrow-leaf", logrus.Fields{"count": count, "left": fromLeft})
		}
		return
	}

	if fromLeft {
		leaf.copyToLeft(donor, leaf.slots)
	} else {
		donor.rightShift(leaf.slots)
		leaf.copyToRight(donor, leaf.slots)
	}
	donor.slots += leaf.slots

	if left != nil {
		left.next = leaf.next
	} else if previous := path.previousLeaf(pos); previous != nil {
		previous.next = leaf.next
	}
	if t.tracing() {
		t.trace("merge-leaf", logrus.Fields{"slots": donor.slots, "left": fromLeft})
	}

	t.removeChild(path, pos, fromLeft)
	t.release(leaf)
}

/*
removeChild takes the node at pos, already merged into its sibling, out of its parent
along with the separator between the two. The parent is then collapsed if it is an empty
root or rebalanced if it has become too small.
*/
func (t *Tree[K, V]) removeChild(path trail[K, V], pos int, mergedLeft bool) {
	parent, index := path.parent(pos)
	if mergedLeft {
		parent.removeChild(index-1, index)
	} else {
		parent.removeChild(index, index)
	}

	if parent == t.root {
		if parent.isEmpty() {
			t.root = parent.children[0]
			t.release(parent)
			if t.tracing() {
				t.trace("shrink", logrus.Fields{"height": t.Height()})
			}
		}
		return
	}
	if parent.hasEnoughSlots() {
		return
	}
	t.rebalanceInner(path, pos-1)
}

/*
rebalanceInner fixes an underfull inner node at pos. Keys rotate through the parent: the
separator between node and donor comes down into node and the donor key at the cut goes
up to replace it. A merge pulls the separator down between the two key ranges.
*/
func (t *Tree[K, V]) rebalanceInner(path trail[K, V], pos int) {
	node := path.node(pos)
	parent, index := path.parent(pos)
	left, right := path.siblings(pos)
	donor, fromLeft := pickDonor(left, right)

	if donor.canGiveSlots() {
		count := (donor.slots - node.slots) / 2
		remaining := donor.slots - count
		if fromLeft {
			node.rightShift(count)
			node.keys[count-1] = parent.keys[index-1]
			donor.copyToRight(node, count)
			node.slots += count
			parent.keys[index-1] = donor.keys[remaining]
		} else {
			node.keys[node.slots] = parent.keys[index]
			donor.copyToLeft(node, count)
			parent.keys[index] = donor.keys[count-1]
			donor.leftShift(count)
			node.slots += count
		}
		donor.truncate(remaining)
		if t.tracing() {
			t.trace("borrow-inner", logrus.Fields{"count": count, "left": fromLeft})
		}
		return
	}

	moved := node.slots + 1
	if fromLeft {
		donor.keys[donor.slots] = parent.keys[index-1]
		node.copyToLeft(donor, moved)
	} else {
		donor.rightShift(moved)
		donor.keys[node.slots] = parent.keys[index]
		node.copyToRight(donor, moved)
	}
	donor.slots += moved
	if t.tracing() {
		t.trace("merge-inner", logrus.Fields{"slots": donor.slots, "left": fromLeft})
	}

	t.removeChild(path, pos, fromLeft)
	t.release(node)
}
