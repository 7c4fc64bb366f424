// Package bench measures the B+ tree against other ordered key/value stores under a few
// mixed workloads.
package bench

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/mcherri/bheaven/bptree"
)

// Index is the common surface every benchmarked store is driven through.
type Index interface {
	Name() string
	Put(key int64, value []byte) error
	// Get returns ok == false for an absent key; err is reserved for store failures.
	Get(key int64) (value []byte, ok bool, err error)
	Delete(key int64) error
	// Scan calls fn for every stored pair in ascending key order until fn returns false.
	Scan(fn func(key int64, value []byte) bool) error
	Close() error
}

// TreeIndex runs a bptree.Tree behind the Index interface.
type TreeIndex struct {
	tree *bptree.Tree[int64, []byte]
}

func NewTreeIndex(cfg bptree.Config, opts ...bptree.Option[int64, []byte]) (*TreeIndex, error) {
	tree, err := bptree.New[int64, []byte](cfg, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "bench: tree index")
	}
	return &TreeIndex{tree: tree}, nil
}

func (t *TreeIndex) Name() string {
	cfg := t.tree.Config()
	return fmt.Sprintf("bptree-%d-%d", cfg.Order, cfg.Records)
}

func (t *TreeIndex) Put(key int64, value []byte) error {
	t.tree.Put(key, value)
	return nil
}

func (t *TreeIndex) Get(key int64) ([]byte, bool, error) {
	v, ok := t.tree.Get(key)
	return v, ok, nil
}

func (t *TreeIndex) Delete(key int64) error {
	t.tree.Remove(key)
	return nil
}

// Scan follows the leaf chain from the leftmost leaf.
func (t *TreeIndex) Scan(fn func(key int64, value []byte) bool) error {
	n := t.tree.Root()
	if n == nil {
		return nil
	}
	for !n.IsLeaf() {
		n = n.Child(0)
	}
	for ; n != nil; n = n.Next() {
		for i := 0; i < n.Slots(); i++ {
			if !fn(n.Key(i), n.Value(i)) {
				return nil
			}
		}
	}
	return nil
}

func (t *TreeIndex) Close() error { return nil }

// Tree exposes the wrapped tree for inspection after a run.
func (t *TreeIndex) Tree() *bptree.Tree[int64, []byte] { return t.tree }

// encodeKey encodes an int64 as a big-endian 8-byte slice, flipping the sign bit so that
// byte order matches numeric order for negative keys too.
func encodeKey(k int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(k)^(1<<63))
	return b
}

func decodeKey(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}
