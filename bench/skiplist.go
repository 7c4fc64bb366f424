package bench

import (
	"math"
	"math/rand/v2"
)

const (
	maxHeight        = 16
	// chance of a node reaching one level higher
	levelProbability = 0.5
)

var probabilities [maxHeight]uint32

func init() {
	probability := 1.0

	for level := 0; level < maxHeight; level++ {
		probabilities[level] = uint32(probability * float64(math.MaxUint32))
		probability *= levelProbability
	}
}

func randomHeight() int {
	seed := rand.Uint32()

	height := 1
	for height < maxHeight && seed <= probabilities[height] {
		height++
	}
	return height
}

type skipNode struct {
	key   int64
	val   []byte
	tower [maxHeight]*skipNode
}

// SkipList is an in-memory ordered map serving as the baseline for the tree.
type SkipList struct {
	head   *skipNode // starting head node
	height int       // current height
	length int
}

func NewSkipList() *SkipList {
	return &SkipList{
		head:   &skipNode{},
		height: 1,
	}
}

/*
search walks from the top level down. journey[level] is the last node before key on that
level, which is where an insert or delete has to relink.
*/
func (sl *SkipList) search(key int64) (*skipNode, [maxHeight]*skipNode) {
	var next *skipNode
	var journey [maxHeight]*skipNode

	prev := sl.head
	for level := sl.height - 1; level >= 0; level-- {
		for next = prev.tower[level]; next != nil; next = prev.tower[level] {
			if key <= next.key {
				break
			}
			prev = next
		}
		journey[level] = prev
	}

	if next != nil && key == next.key {
		return next, journey
	}
	return nil, journey
}

func (sl *SkipList) Name() string { return "skiplist" }

func (sl *SkipList) Get(key int64) ([]byte, bool, error) {
	n, _ := sl.search(key)
	if n != nil {
		return n.val, true, nil
	}
	return nil, false, nil
}

func (sl *SkipList) Put(key int64, val []byte) error {
	n, journey := sl.search(key)

	// update value of existing key
	if n != nil {
		n.val = val
		return nil
	}

	height := randomHeight()
	node := &skipNode{
		key: key,
		val: val,
	}

	// bottom to top level
	for level := 0; level < height; level++ {
		prev := journey[level]
		if prev == nil {
			// levels above the current height have no journey entry
			prev = sl.head
		}
		node.tower[level] = prev.tower[level]
		prev.tower[level] = node
	}

	if height > sl.height {
		sl.height = height
	}
	sl.length++
	return nil
}

func (sl *SkipList) Delete(key int64) error {
	n, journey := sl.search(key)
	if n == nil {
		return nil
	}

	for level := 0; level < sl.height; level++ {
		prev := journey[level]
		if prev.tower[level] != n {
			break
		}
		prev.tower[level] = n.tower[level]
		n.tower[level] = nil
	}

	sl.shrink()
	sl.length--
	return nil
}

// shrink drops empty levels left behind by a delete.
func (sl *SkipList) shrink() {
	for level := sl.height - 1; level > 0; level-- {
		if sl.head.tower[level] != nil {
			break
		}
		sl.height--
	}
}

func (sl *SkipList) Scan(fn func(key int64, value []byte) bool) error {
	for n := sl.head.tower[0]; n != nil; n = n.tower[0] {
		if !fn(n.key, n.val) {
			break
		}
	}
	return nil
}

func (sl *SkipList) Len() int { return sl.length }

func (sl *SkipList) Close() error { return nil }
