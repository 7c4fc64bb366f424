package bptree

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

/*
Put stores value under key, replacing the value of an existing key in place.

A full leaf is split: the new right sibling takes the upper half and the last key left
behind is copied into the parent as separator. A full parent is split in turn, but there
the middle key moves up instead of being copied. When the split reaches the root a new
root is put on top, which is the only way the tree grows in height.
*/
func (t *Tree[K, V]) Put(key K, value V) {
	if t.root == nil {
		t.root = t.newLeaf(nil)
	}

	path := t.descend(key)
	pos := len(path) - 1
	leaf := path.node(pos)

	i, found := leaf.search(key, t.compare)
	if found {
		leaf.values[i] = value
		return
	}
	t.count++

	if !leaf.isFull() {
		leaf.insertAt(i, key, value)
		return
	}

	sibling := t.splitLeaf(leaf, key, value)
	separator := leaf.lastKey()
	node := leaf

	// carry (separator, sibling) upwards while the parent has no room for it
	level := pos - 1
	for level >= 0 && path.node(level).isFull() {
		parent := path.node(level)
		sibling, separator = t.splitInner(parent, separator, sibling)
		node = parent
		level--
	}

	var parent *Node[K, V]
	if level < 0 {
		parent = t.newInner()
		parent.children[0] = node
		t.root = parent
		if t.tracing() {
			t.trace("grow", logrus.Fields{"height": t.Height()})
		}
	} else {
		parent = path.node(level)
	}
	parent.insertChild(separator, sibling, t.compare)
}

/*
splitLeaf moves the upper (slots+1)/2 entries of a full leaf, counting the pending key,
into a new right sibling. The upper half is filled from the top down so the pending key
lands at its sorted position; if it belongs to the lower half it is inserted into n.
*/
func (t *Tree[K, V]) splitLeaf(n *Node[K, V], key K, value V) *Node[K, V] {
	if !n.isFull() {
		panic(errors.AssertionFailedf("cannot split a leaf holding %d of %d slots", n.slots, len(n.keys)))
	}
	sibling := t.newLeaf(n.next)

	count := (n.slots + 1) / 2
	left := n.slots - 1
	found := false
	for right := count - 1; right >= 0; right-- {
		if found || t.compare(key, n.keys[left]) < 0 {
			sibling.keys[right] = n.keys[left]
			sibling.values[right] = n.values[left]
			left--
		} else {
			sibling.keys[right] = key
			sibling.values[right] = value
			found = true
		}
	}
	sibling.slots = count

	kept := n.slots - count
	if found {
		kept++
	}
	n.truncate(kept)
	if !found {
		i, _ := n.search(key, t.compare)
		n.insertAt(i, key, value)
	}
	n.next = sibling

	if t.tracing() {
		t.trace("split-leaf", logrus.Fields{"left": n.slots, "right": sibling.slots})
	}
	return sibling
}

/*
splitInner splits a full inner node n that has to take the pair (key, child). The new
sibling gets the upper n.slots/2 keys with the children to their right. The largest key
remaining in n is then removed and returned for the grandparent; its right child becomes
the sibling's first child.
*/
func (t *Tree[K, V]) splitInner(n *Node[K, V], key K, child *Node[K, V]) (*Node[K, V], K) {
	if !n.isFull() {
		panic(errors.AssertionFailedf("cannot split an inner node holding %d of %d slots", n.slots, len(n.keys)))
	}
	sibling := t.newInner()

	count := n.slots / 2
	left := n.slots - 1
	found := false
	for right := count - 1; right >= 0; right-- {
		if found || t.compare(key, n.keys[left]) < 0 {
			sibling.keys[right] = n.keys[left]
			sibling.children[right+1] = n.children[left+1]
			left--
		} else {
			sibling.keys[right] = key
			sibling.children[right+1] = child
			found = true
		}
	}
	sibling.slots = count

	kept := n.slots - count
	if found {
		kept++
	}
	n.truncate(kept)
	if !found {
		n.insertChild(key, child, t.compare)
	}

	last := n.slots - 1
	promoted := n.keys[last]
	sibling.children[0] = n.children[last+1]
	n.truncate(last)

	if t.tracing() {
		t.trace("split-inner", logrus.Fields{"left": n.slots, "right": sibling.slots})
	}
	return sibling, promoted
}
