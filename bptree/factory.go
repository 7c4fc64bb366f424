package bptree

import "sync"

// NodeFactory supplies the nodes of a tree. It decides how node storage is obtained; the
// tree only asks for empty, pre-sized nodes.
type NodeFactory[K, V any] interface {
	// NewLeaf returns an empty leaf whose next link is set to next.
	NewLeaf(next *Node[K, V]) *Node[K, V]
	// NewInner returns an empty inner node.
	NewInner() *Node[K, V]
}

// Recycler is implemented by factories that want nodes back once a tree drops them.
type Recycler[K, V any] interface {
	Recycle(n *Node[K, V])
}

// ArrayFactory allocates plain arrays sized by a Config.
type ArrayFactory[K, V any] struct {
	order   int
	records int
}

func NewArrayFactory[K, V any](cfg Config) *ArrayFactory[K, V] {
	return &ArrayFactory[K, V]{order: cfg.Order, records: cfg.Records}
}

func (f *ArrayFactory[K, V]) NewLeaf(next *Node[K, V]) *Node[K, V] {
	return MakeLeaf[K, V](f.records, next)
}

func (f *ArrayFactory[K, V]) NewInner() *Node[K, V] {
	return MakeInner[K, V](f.order)
}

const DefaultFreeListSize = 32

/*
FreeList is a NodeFactory that keeps up to size dropped nodes of each kind for reuse.
Several trees with the same Config may share one FreeList; it is safe for concurrent use
even though the trees themselves are not.
*/
type FreeList[K, V any] struct {
	mu      sync.Mutex
	order   int
	records int
	leaves  []*Node[K, V]
	inners  []*Node[K, V]
}

// NewFreeList creates a free list holding at most size nodes of each kind.
func NewFreeList[K, V any](cfg Config, size int) *FreeList[K, V] {
	return &FreeList[K, V]{
		order:   cfg.Order,
		records: cfg.Records,
		leaves:  make([]*Node[K, V], 0, size),
		inners:  make([]*Node[K, V], 0, size),
	}
}

func (f *FreeList[K, V]) NewLeaf(next *Node[K, V]) *Node[K, V] {
	f.mu.Lock()
	n := pop(&f.leaves)
	f.mu.Unlock()
	if n == nil {
		return MakeLeaf[K, V](f.records, next)
	}
	n.next = next
	return n
}

func (f *FreeList[K, V]) NewInner() *Node[K, V] {
	f.mu.Lock()
	n := pop(&f.inners)
	f.mu.Unlock()
	if n == nil {
		return MakeInner[K, V](f.order)
	}
	return n
}

// Recycle clears n and keeps it if there is room. Nodes of a foreign size are dropped.
func (f *FreeList[K, V]) Recycle(n *Node[K, V]) {
	n.reset()
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.leaf {
		if len(n.keys) == f.records && len(f.leaves) < cap(f.leaves) {
			f.leaves = append(f.leaves, n)
		}
		return
	}
	if len(n.children) == f.order && len(f.inners) < cap(f.inners) {
		f.inners = append(f.inners, n)
	}
}

// Len returns the number of cached leaves and inner nodes.
func (f *FreeList[K, V]) Len() (leaves, inners int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leaves), len(f.inners)
}

func pop[K, V any](list *[]*Node[K, V]) *Node[K, V] {
	index := len(*list) - 1
	if index < 0 {
		return nil
	}
	n := (*list)[index]
	(*list)[index] = nil
	*list = (*list)[:index]
	return n
}
