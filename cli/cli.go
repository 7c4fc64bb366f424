package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mcherri/bheaven/bptree"
	"github.com/mcherri/bheaven/bptree/check"
	"github.com/sirupsen/logrus"
)

var (
	okColor     = color.New(color.FgGreen)
	errColor    = color.New(color.FgRed)
	promptColor = color.New(color.FgYellow, color.Bold)
)

type Cli struct {
	scanner    *bufio.Scanner
	out        io.Writer
	tree       *bptree.Tree[string, string]
	visualizer *bptree.Visualizer[string, string]
	log        *logrus.Entry
}

func NewCli(s *bufio.Scanner, out io.Writer, t *bptree.Tree[string, string]) *Cli {
	v := &bptree.Visualizer[string, string]{
		Tree:  t,
		Color: !color.NoColor,
	}
	return &Cli{
		scanner:    s,
		out:        out,
		tree:       t,
		visualizer: v,
		log:        bptree.Log.WithField("component", "cli"),
	}
}

// Start reads commands until EXIT or the end of input.
func (c *Cli) Start() {
	c.printHelp()
	c.printPrompt()
	for c.scanner.Scan() {
		if !c.processInput(c.scanner.Text()) {
			return
		}
		c.printPrompt()
	}
	if err := c.scanner.Err(); err != nil {
		c.log.WithError(err).Error("reading input")
	}
}

func (c *Cli) printHelp() {
	fmt.Fprint(c.out, `
B+ Tree CLI

Available Commands:
  SET <key> <val> Insert a key-value pair into the B+ Tree
  DEL <key>       Remove a key-value pair from the B+ Tree
  GET <key>       Retrieve the value for key from the B+ Tree
  DUMP            Print the tree level by level
  CHECK           Verify the tree invariants
  STATS           Print the size and shape of the tree
  HELP            Print this message
  EXIT            Terminate this session
`+"\n")
}

func (c *Cli) printPrompt() {
	promptColor.Fprint(c.out, "> ")
}

// processInput runs one command line and reports whether the session goes on.
func (c *Cli) processInput(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return true
	}
	command := strings.ToLower(fields[0])
	c.log.WithField("command", command).Debug("processing command")
	switch command {
	default:
		errColor.Fprintf(c.out, "Unknown command %q\n", command)
	case "set":
		c.processSetCommand(fields[1:])
	case "del":
		c.processDeleteCommand(fields[1:])
	case "get":
		c.processGetCommand(fields[1:])
	case "dump":
		fmt.Fprintln(c.out, c.visualizer.Visualize())
	case "check":
		c.processCheckCommand()
	case "stats":
		c.processStatsCommand()
	case "help":
		c.printHelp()
	case "exit":
		return false
	}
	return true
}

func (c *Cli) processSetCommand(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.out, "Usage: SET <key> <value>")
		return
	}
	c.tree.Put(args[0], args[1])
	fmt.Fprintln(c.out, c.tree)
	fmt.Fprintln(c.out, c.visualizer.Visualize())
}

func (c *Cli) processDeleteCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: DEL <key>")
		return
	}
	if _, ok := c.tree.Get(args[0]); !ok {
		errColor.Fprintln(c.out, "Key not found.")
		return
	}
	c.tree.Remove(args[0])
	fmt.Fprintln(c.out, c.tree)
	fmt.Fprintln(c.out, c.visualizer.Visualize())
}

func (c *Cli) processGetCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: GET <key>")
		return
	}
	val, ok := c.tree.Get(args[0])
	if !ok {
		errColor.Fprintln(c.out, "Key not found.")
		return
	}
	fmt.Fprintln(c.out, val)
}

func (c *Cli) processCheckCommand() {
	report, err := check.Validate(c.tree)
	if err != nil {
		c.log.WithError(err).Warn("tree check failed")
		errColor.Fprintf(c.out, "Invalid tree: %v\n", err)
		return
	}
	okColor.Fprintf(c.out, "OK: depth=%d leaves=%d inner=%d values=%d\n",
		report.Depth, report.Leaves, report.Inners, report.Values)
}

func (c *Cli) processStatsCommand() {
	s := c.tree.Stats()
	cfg := c.tree.Config()
	fmt.Fprintf(c.out, "order=%d records=%d len=%d height=%d leaves=%d inner=%d\n",
		cfg.Order, cfg.Records, s.Len, s.Height, s.Leaves, s.Inners)
}
