package bptree

import (
	"cmp"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Log is the default logger of every tree. Structural changes are traced at debug level.
var Log = logrus.New()

/*
Tree is an in-memory B+ tree mapping unique keys to values.
Values live in the leaves only; the leaves are chained left to right and all sit at the
same depth. The tree keeps a pointer to its root, which is nil while the tree is empty.

A Tree is not safe for concurrent use.
*/
type Tree[K, V any] struct {
	root    *Node[K, V]
	cfg     Config
	compare func(a, b K) int
	factory NodeFactory[K, V]
	count   int
	log     *logrus.Entry
}

type Option[K, V any] func(*Tree[K, V])

// WithFactory makes the tree obtain its nodes from f instead of plain arrays.
func WithFactory[K, V any](f NodeFactory[K, V]) Option[K, V] {
	return func(t *Tree[K, V]) { t.factory = f }
}

// WithLogger replaces the default logger.
func WithLogger[K, V any](log *logrus.Entry) Option[K, V] {
	return func(t *Tree[K, V]) { t.log = log }
}

// New creates an empty tree ordering keys by their natural order.
func New[K cmp.Ordered, V any](cfg Config, opts ...Option[K, V]) (*Tree[K, V], error) {
	return NewWithCompare[K, V](cfg, cmp.Compare[K], opts...)
}

// NewWithCompare creates an empty tree ordering keys with compare, which returns a
// negative number, zero or a positive number like cmp.Compare.
func NewWithCompare[K, V any](cfg Config, compare func(a, b K) int, opts ...Option[K, V]) (*Tree[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if compare == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "compare function cannot be nil")
	}
	t := &Tree[K, V]{
		cfg:     cfg,
		compare: compare,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.factory == nil {
		t.factory = NewArrayFactory[K, V](cfg)
	}
	if t.log == nil {
		t.log = logrus.NewEntry(Log)
	}
	t.log = t.log.WithFields(logrus.Fields{"order": cfg.Order, "records": cfg.Records})
	return t, nil
}

// MustNew is like New but panics on an invalid config.
func MustNew[K cmp.Ordered, V any](cfg Config, opts ...Option[K, V]) *Tree[K, V] {
	t, err := New[K, V](cfg, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Get returns the value stored for key.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	var zero V
	if t.root == nil {
		return zero, false
	}
	n := t.root
	for !n.leaf {
		i, _ := n.search(key, t.compare)
		n = n.children[i]
	}
	if i, found := n.search(key, t.compare); found {
		return n.values[i], true
	}
	return zero, false
}

// Len returns the number of stored keys.
func (t *Tree[K, V]) Len() int { return t.count }

// Height returns the number of inner levels above the leaves: 0 for a single leaf and -1
// for an empty tree.
func (t *Tree[K, V]) Height() int {
	if t.root == nil {
		return -1
	}
	h := 0
	for n := t.root; !n.leaf; n = n.children[0] {
		h++
	}
	return h
}

// Root exposes the root for read-only inspection. It is nil for an empty tree.
func (t *Tree[K, V]) Root() *Node[K, V] { return t.root }

// Config returns the sizes the tree was created with.
func (t *Tree[K, V]) Config() Config { return t.cfg }

// Compare orders two keys the way the tree does.
func (t *Tree[K, V]) Compare(a, b K) int { return t.compare(a, b) }

type Stats struct {
	Len    int
	Height int
	Leaves int
	Inners int
}

// Stats walks the tree and counts its nodes.
func (t *Tree[K, V]) Stats() Stats {
	s := Stats{Len: t.count, Height: t.Height()}
	if t.root == nil {
		return s
	}
	level := []*Node[K, V]{t.root}
	for len(level) > 0 {
		var below []*Node[K, V]
		for _, n := range level {
			if n.leaf {
				s.Leaves++
				continue
			}
			s.Inners++
			below = append(below, n.children[:n.slots+1]...)
		}
		level = below
	}
	return s
}

func (t *Tree[K, V]) String() string {
	return fmt.Sprintf("bptree(order=%d records=%d len=%d height=%d)",
		t.cfg.Order, t.cfg.Records, t.count, t.Height())
}

// descend walks from the root to the leaf responsible for key, recording the path.
func (t *Tree[K, V]) descend(key K) trail[K, V] {
	n := t.root
	path := make(trail[K, V], 0, 8)
	path = append(path, breadcrumb[K, V]{node: n, index: -1})
	for !n.leaf {
		i, _ := n.search(key, t.compare)
		n = n.children[i]
		path = append(path, breadcrumb[K, V]{node: n, index: i})
	}
	return path
}

func (t *Tree[K, V]) newLeaf(next *Node[K, V]) *Node[K, V] {
	n := t.factory.NewLeaf(next)
	if n == nil || !n.leaf || n.slots != 0 || len(n.keys) == 0 || n.next != next {
		panic(errors.AssertionFailedf("node factory returned an unusable leaf"))
	}
	return n
}

func (t *Tree[K, V]) newInner() *Node[K, V] {
	n := t.factory.NewInner()
	if n == nil || n.leaf || n.slots != 0 || len(n.keys) < MinOrder-1 || len(n.children) != len(n.keys)+1 {
		panic(errors.AssertionFailedf("node factory returned an unusable inner node"))
	}
	return n
}

// release hands a node the tree no longer references back to the factory.
func (t *Tree[K, V]) release(n *Node[K, V]) {
	if r, ok := t.factory.(Recycler[K, V]); ok {
		r.Recycle(n)
	}
}

func (t *Tree[K, V]) tracing() bool {
	return t.log.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func (t *Tree[K, V]) trace(op string, fields logrus.Fields) {
	t.log.WithField("op", op).WithFields(fields).Debug(op)
}
