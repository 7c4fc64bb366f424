package bptree

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	innerColor = color.New(color.FgCyan, color.Bold)
	leafColor  = color.New(color.FgGreen)
	linkColor  = color.New(color.FgHiBlack)
)

/*
Visualizer renders a tree one level per line, from the root down. Inner nodes show their
separators, leaves their key=value pairs followed by the key that starts the next leaf.
With Color set the node kinds are told apart by colour.
*/
type Visualizer[K, V any] struct {
	Tree  *Tree[K, V]
	Color bool
}

func (v *Visualizer[K, V]) Visualize() string {
	root := v.Tree.root
	if root == nil {
		return "(empty)"
	}

	var b strings.Builder
	level := []*Node[K, V]{root}
	for depth := 0; len(level) > 0; depth++ {
		if depth > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "L%d:", depth)

		var below []*Node[K, V]
		for _, n := range level {
			b.WriteByte(' ')
			if n.leaf {
				b.WriteString(v.leaf(n))
				continue
			}
			b.WriteString(v.inner(n))
			below = append(below, n.children[:n.slots+1]...)
		}
		level = below
	}
	return b.String()
}

func (v *Visualizer[K, V]) inner(n *Node[K, V]) string {
	parts := make([]string, n.slots)
	for i := range parts {
		parts[i] = fmt.Sprint(n.keys[i])
	}
	return v.paint(innerColor, "["+strings.Join(parts, " ")+"]")
}

func (v *Visualizer[K, V]) leaf(n *Node[K, V]) string {
	parts := make([]string, n.slots)
	for i := range parts {
		parts[i] = fmt.Sprintf("%v=%v", n.keys[i], n.values[i])
	}
	s := v.paint(leafColor, "("+strings.Join(parts, " ")+")")
	if n.next != nil && n.next.slots > 0 {
		s += v.paint(linkColor, fmt.Sprintf("->%v", n.next.keys[0]))
	}
	return s
}

func (v *Visualizer[K, V]) paint(c *color.Color, s string) string {
	if !v.Color {
		return s
	}
	return c.Sprint(s)
}
