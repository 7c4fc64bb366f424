package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mcherri/bheaven/bptree"
)

func run(t *testing.T, tree *bptree.Tree[string, string], input string) string {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	NewCli(bufio.NewScanner(strings.NewReader(input)), &out, tree).Start()
	return out.String()
}

func TestSession(t *testing.T) {
	tree := bptree.MustNew[string, string](bptree.DefaultConfig())
	input := strings.Join([]string{
		"SET a0 va0",
		"set a1 va1",
		"GET a1",
		"GET a9",
		"DEL a0",
		"DEL a0",
		"STATS",
		"CHECK",
		"EXIT",
		"SET a2 va2",
	}, "\n")
	out := run(t, tree, input)

	for _, want := range []string{
		"L0: (a0=va0)",
		"L0: (a0=va0 a1=va1)",
		"va1\n",
		"Key not found.",
		"L0: (a1=va1)",
		"order=4 records=4 len=1 height=0 leaves=1 inner=0",
		"OK: depth=0 leaves=1 inner=0 values=1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Count(out, "Key not found.") != 2 {
		t.Errorf("Expected two misses, got:\n%s", out)
	}
	if _, ok := tree.Get("a2"); ok {
		t.Errorf("Expected input after EXIT to be ignored")
	}
}

func TestUsage(t *testing.T) {
	tree := bptree.MustNew[string, string](bptree.DefaultConfig())
	out := run(t, tree, "SET a0\nGET\nDEL a b\nFOO\n\n")

	for _, want := range []string{
		"Usage: SET <key> <value>",
		"Usage: GET <key>",
		"Usage: DEL <key>",
		`Unknown command "foo"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if tree.Len() != 0 {
		t.Errorf("Expected an untouched tree, got %v", tree)
	}
}

func TestDump(t *testing.T) {
	tree := bptree.MustNew[string, string](bptree.DefaultConfig())
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		tree.Put(k, strings.ToUpper(k))
	}
	out := run(t, tree, "DUMP\n")
	if want := "L0: [c]\nL1: (a=A b=B c=C)->d (d=D e=E)"; !strings.Contains(out, want) {
		t.Errorf("Expected output to contain %q, got:\n%s", want, out)
	}
}
