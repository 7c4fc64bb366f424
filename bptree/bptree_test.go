package bptree_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mcherri/bheaven/bptree"
	"github.com/mcherri/bheaven/bptree/check"
	"github.com/sirupsen/logrus"
)

func key(i int) string   { return fmt.Sprintf("a%d", i) }
func value(i int) string { return fmt.Sprintf("va%d", i) }

func newTree(t testing.TB, order, records int) *bptree.Tree[string, string] {
	t.Helper()
	tree, err := bptree.New[string, string](bptree.Config{Order: order, Records: records})
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	return tree
}

func mustValidate[K, V any](t testing.TB, tree *bptree.Tree[K, V]) check.Report {
	t.Helper()
	report, err := check.Validate(tree)
	if err != nil {
		t.Fatalf("Invalid tree: %+v", err)
	}
	return report
}

// indices yields 0..n-1, or n-1..0 when reverse is set.
func indices(n int, reverse bool) []int {
	out := make([]int, n)
	for i := range out {
		if reverse {
			out[i] = n - 1 - i
		} else {
			out[i] = i
		}
	}
	return out
}

func fill(t *testing.T, tree *bptree.Tree[string, string], n int, reverse bool) {
	t.Helper()
	for _, i := range indices(n, reverse) {
		tree.Put(key(i), value(i))
		mustValidate(t, tree)
	}
}

func empty(t *testing.T, tree *bptree.Tree[string, string], n int, reverse bool) {
	t.Helper()
	for _, i := range indices(n, reverse) {
		tree.Remove(key(i))
		mustValidate(t, tree)
	}
}

// shape returns the number of children of the root and the height.
func shape[K, V any](tree *bptree.Tree[K, V]) (int, int) {
	root := tree.Root()
	if root == nil {
		return 0, -1
	}
	return root.Slots() + 1, tree.Height()
}

func TestGetEmpty(t *testing.T) {
	tree := newTree(t, 4, 4)
	if v, ok := tree.Get("a0"); ok {
		t.Errorf("Expected no value, got %q", v)
	}
	tree.Remove("a0")
	if tree.Root() != nil || tree.Len() != 0 || tree.Height() != -1 {
		t.Errorf("Expected an empty tree, got %v", tree)
	}
	mustValidate(t, tree)
}

func TestFirstSplit(t *testing.T) {
	tree := newTree(t, 4, 4)
	fill(t, tree, 5, false)

	if children, height := shape(tree); children != 2 || height != 1 {
		t.Fatalf("Expected 2 children at height 1, got %d at %d", children, height)
	}
	if v, ok := tree.Get("a2"); !ok || v != "va2" {
		t.Errorf("Expected va2, got %q %v", v, ok)
	}

	tree.Remove("a0")
	mustValidate(t, tree)
	if _, ok := tree.Get("a0"); ok {
		t.Errorf("Expected a0 to be gone")
	}
	for i := 1; i < 5; i++ {
		if v, ok := tree.Get(key(i)); !ok || v != value(i) {
			t.Errorf("Expected %s, got %q %v", value(i), v, ok)
		}
	}
	if children, height := shape(tree); children != 2 || height != 1 {
		t.Errorf("Expected 2 children at height 1, got %d at %d", children, height)
	}
}

func TestFillShape(t *testing.T) {
	tests := []struct {
		count, forward, reverse, height int
	}{
		{5, 2, 2, 1},
		{9, 3, 4, 1},
		{17, 2, 3, 2},
		{49, 2, 4, 3},
	}
	for _, tc := range tests {
		for _, reverse := range []bool{false, true} {
			t.Run(fmt.Sprintf("%d/reverse=%v", tc.count, reverse), func(t *testing.T) {
				tree := newTree(t, 4, 4)
				fill(t, tree, tc.count, reverse)

				want := tc.forward
				if reverse {
					want = tc.reverse
				}
				if children, height := shape(tree); children != want || height != tc.height {
					t.Errorf("Expected %d children at height %d, got %d at %d", want, tc.height, children, height)
				}
				if tree.Len() != tc.count {
					t.Errorf("Expected %d values, got %d", tc.count, tree.Len())
				}
				for i := 0; i < tc.count; i++ {
					if v, ok := tree.Get(key(i)); !ok || v != value(i) {
						t.Fatalf("Expected %s, got %q %v", value(i), v, ok)
					}
				}
			})
		}
	}
}

func TestFillEmptyShape(t *testing.T) {
	tests := []struct {
		size, fill, empty int
		forward, reverse  [2]int
	}{
		{4, 5, 2, [2]int{4, 0}, [2]int{4, 0}},
		{4, 9, 3, [2]int{2, 1}, [2]int{3, 1}},
		{4, 17, 7, [2]int{2, 2}, [2]int{2, 2}},
		{4, 49, 48, [2]int{2, 0}, [2]int{2, 0}},
		{6, 7, 2, [2]int{6, 0}, [2]int{6, 0}},
		{6, 13, 8, [2]int{6, 0}, [2]int{6, 0}},
		{6, 37, 18, [2]int{5, 1}, [2]int{2, 2}},
		{6, 190, 189, [2]int{2, 0}, [2]int{2, 0}},
	}
	for _, tc := range tests {
		for _, reverse := range []bool{false, true} {
			name := fmt.Sprintf("size=%d/%d-%d/reverse=%v", tc.size, tc.fill, tc.empty, reverse)
			t.Run(name, func(t *testing.T) {
				tree := newTree(t, tc.size, tc.size)
				fill(t, tree, tc.fill, reverse)
				empty(t, tree, tc.empty, reverse)

				want := tc.forward
				if reverse {
					want = tc.reverse
				}
				if children, height := shape(tree); children != want[0] || height != want[1] {
					t.Errorf("Expected %d children at height %d, got %d at %d", want[0], want[1], children, height)
				}
				for i := 0; i < tc.fill; i++ {
					v, ok := tree.Get(key(i))
					if present := i >= tc.empty; ok != present || (ok && v != value(i)) {
						t.Fatalf("%s: expected present=%v, got %q %v", key(i), present, v, ok)
					}
				}
			})
		}
	}
}

func TestDrainAndReuse(t *testing.T) {
	tree := newTree(t, 4, 4)
	fill(t, tree, 49, false)
	empty(t, tree, 49, false)
	if tree.Root() != nil {
		t.Fatalf("Expected an empty root, got %v", tree)
	}

	fill(t, tree, 10, true)
	if tree.Len() != 10 {
		t.Errorf("Expected 10 values, got %d", tree.Len())
	}
}

func TestSameKey(t *testing.T) {
	tree := newTree(t, 4, 4)
	for i := 0; i < 200; i++ {
		tree.Put("key", value(i))
		if tree.Root().Slots() != 1 {
			t.Fatalf("Expected a single slot, got %d", tree.Root().Slots())
		}
	}
	if v, _ := tree.Get("key"); v != value(199) {
		t.Errorf("Expected the last value, got %q", v)
	}
	if tree.Len() != 1 {
		t.Errorf("Expected 1 value, got %d", tree.Len())
	}

	tree.Remove("key")
	if tree.Root() != nil {
		t.Errorf("Expected an empty tree after one remove")
	}
	tree.Remove("key")
	if tree.Len() != 0 {
		t.Errorf("Expected 0 values, got %d", tree.Len())
	}
}

// TestRandomOperations checks every configuration against a map.
func TestRandomOperations(t *testing.T) {
	for order := bptree.MinOrder; order <= 9; order++ {
		for records := bptree.MinRecords; records <= 9; records++ {
			t.Run(fmt.Sprintf("order=%d/records=%d", order, records), func(t *testing.T) {
				rng := rand.New(rand.NewSource(int64(order*100 + records)))
				tree, err := bptree.New[int, int](bptree.Config{Order: order, Records: records})
				if err != nil {
					t.Fatalf("Failed to create tree: %v", err)
				}
				model := make(map[int]int)

				for step := 0; step < 2000; step++ {
					k := rng.Intn(300)
					if rng.Float64() < 0.55 {
						tree.Put(k, step)
						model[k] = step
					} else {
						tree.Remove(k)
						delete(model, k)
					}
					if report := mustValidate(t, tree); report.Values != len(model) {
						t.Fatalf("step %d: expected %d values, got %d", step, len(model), report.Values)
					}
				}
				for k := 0; k < 300; k++ {
					v, ok := tree.Get(k)
					want, present := model[k]
					if ok != present || v != want {
						t.Fatalf("key %d: expected %d %v, got %d %v", k, want, present, v, ok)
					}
				}

				for k := range model {
					tree.Remove(k)
					mustValidate(t, tree)
				}
				if tree.Root() != nil {
					t.Errorf("Expected an empty tree after draining")
				}
			})
		}
	}
}

func TestLeafChain(t *testing.T) {
	tree, err := bptree.NewWithCompare[int, int](bptree.DefaultConfig(), func(a, b int) int { return b - a })
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}
	for i := 0; i < 100; i++ {
		tree.Put(i, i*i)
	}
	mustValidate(t, tree)

	n := tree.Root()
	for !n.IsLeaf() {
		n = n.Child(0)
	}
	want := 99
	for ; n != nil; n = n.Next() {
		for i := 0; i < n.Slots(); i++ {
			if n.Key(i) != want || n.Value(i) != want*want {
				t.Fatalf("Expected %d=%d, got %d=%d", want, want*want, n.Key(i), n.Value(i))
			}
			want--
		}
	}
	if want != -1 {
		t.Errorf("Expected the chain to reach key 0, stopped before %d", want)
	}
}

func TestStats(t *testing.T) {
	tree := newTree(t, 4, 4)
	fill(t, tree, 49, false)
	stats := tree.Stats()
	report := mustValidate(t, tree)

	if stats.Len != 49 || stats.Height != 3 {
		t.Errorf("Expected 49 values at height 3, got %+v", stats)
	}
	if stats.Leaves != report.Leaves || stats.Inners != report.Inners {
		t.Errorf("Expected %d leaves and %d inner nodes, got %+v", report.Leaves, report.Inners, stats)
	}
	if got, want := tree.String(), "bptree(order=4 records=4 len=49 height=3)"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []bptree.Config{
		{Order: 3, Records: 4},
		{Order: 0, Records: 4},
		{Order: 4, Records: 0},
		{Order: 4, Records: -1},
	}
	for _, cfg := range tests {
		if _, err := bptree.New[int, int](cfg); !errors.Is(err, bptree.ErrInvalidConfig) {
			t.Errorf("%+v: expected ErrInvalidConfig, got %v", cfg, err)
		}
	}
	if _, err := bptree.NewWithCompare[int, int](bptree.DefaultConfig(), nil); !errors.Is(err, bptree.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for a nil compare, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Expected MustNew to panic")
		}
	}()
	bptree.MustNew[int, int](bptree.Config{Order: 2, Records: 2})
}

func TestFreeList(t *testing.T) {
	cfg := bptree.DefaultConfig()
	free := bptree.NewFreeList[string, string](cfg, bptree.DefaultFreeListSize)
	tree, err := bptree.New[string, string](cfg, bptree.WithFactory[string, string](free))
	if err != nil {
		t.Fatalf("Failed to create tree: %v", err)
	}

	fill(t, tree, 49, false)
	if leaves, inners := free.Len(); leaves != 0 || inners != 0 {
		t.Fatalf("Expected an unused free list, got %d leaves and %d inner nodes", leaves, inners)
	}
	stats := tree.Stats()

	empty(t, tree, 49, false)
	leaves, inners := free.Len()
	wantLeaves := min(stats.Leaves, bptree.DefaultFreeListSize)
	wantInners := min(stats.Inners, bptree.DefaultFreeListSize)
	if leaves != wantLeaves || inners != wantInners {
		t.Fatalf("Expected %d leaves and %d inner nodes back, got %d and %d", wantLeaves, wantInners, leaves, inners)
	}

	fill(t, tree, 49, true)
	if l, _ := free.Len(); l >= leaves {
		t.Errorf("Expected cached leaves to be reused, still %d", l)
	}

	free.Recycle(bptree.MakeLeaf[string, string](8, nil))
	free.Recycle(bptree.MakeInner[string, string](8))
	if l, i := free.Len(); l >= leaves || i > inners {
		t.Errorf("Expected nodes of another size to be dropped")
	}
}

func TestVisualize(t *testing.T) {
	tree := bptree.MustNew[int, string](bptree.DefaultConfig())
	v := &bptree.Visualizer[int, string]{Tree: tree}
	if got := v.Visualize(); got != "(empty)" {
		t.Errorf("Expected (empty), got %q", got)
	}

	for i := 1; i <= 5; i++ {
		tree.Put(i, fmt.Sprintf("v%d", i))
	}
	want := "L0: [3]\nL1: (1=v1 2=v2 3=v3)->4 (4=v4 5=v5)"
	if got := v.Visualize(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestDebugTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	tree := bptree.MustNew[int, int](bptree.DefaultConfig(), bptree.WithLogger[int, int](logrus.NewEntry(logger)))

	for i := 1; i <= 5; i++ {
		tree.Put(i, i)
	}
	for i := 1; i <= 5; i++ {
		tree.Remove(i)
	}
	for _, op := range []string{"split-leaf", "grow", "merge-leaf", "shrink"} {
		if !strings.Contains(buf.String(), "op="+op) {
			t.Errorf("Expected a %s trace, got:\n%s", op, buf.String())
		}
	}
}

func BenchmarkPut(b *testing.B) {
	for _, size := range []int{4, 16, 64} {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			tree := bptree.MustNew[int, int](bptree.Config{Order: size, Records: size})
			rng := rand.New(rand.NewSource(1))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tree.Put(rng.Int(), i)
			}
		})
	}
}

func BenchmarkGet(b *testing.B) {
	tree := bptree.MustNew[int, int](bptree.Config{Order: 32, Records: 32})
	for i := 0; i < 100000; i++ {
		tree.Put(i, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Get(i % 100000)
	}
}
