package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-faker/faker/v4"
	"github.com/mcherri/bheaven/bptree"
	"github.com/mcherri/bheaven/cli"
	"github.com/sirupsen/logrus"
)

var order, records, seedNumRecords *int
var shouldSeed, debug, noColor *bool

func seedTreeWithTestRecords(t *bptree.Tree[string, string]) {
	for i := 0; i < *seedNumRecords; i++ {
		t.Put(faker.Word()+faker.Word(), faker.Word()+faker.Word())
	}
	bptree.Log.WithField("len", t.Len()).Info("seeded tree")
}

func main() {
	setupFlags()

	if *debug {
		bptree.Log.SetLevel(logrus.DebugLevel)
	}
	if *noColor {
		color.NoColor = true
	}

	tree, err := bptree.New[string, string](bptree.Config{Order: *order, Records: *records})
	if err != nil {
		bptree.Log.WithError(err).Fatal("creating tree")
	}

	if *shouldSeed {
		seedTreeWithTestRecords(tree)
	}

	scanner := bufio.NewScanner(os.Stdin)
	demo := cli.NewCli(scanner, os.Stdout, tree)
	demo.Start()
}

func setupFlags() {
	order = flag.Int("order", bptree.DefaultOrder, "Maximum number of children of an inner node.")
	records = flag.Int("records", bptree.DefaultRecords, "Maximum number of records of a leaf.")
	shouldSeed = flag.Bool("seed", false, "Seed the tree using records created with go-faker.")
	seedNumRecords = flag.Int("seed-records", 1000, "Amount of records to seed the tree with upon startup.")
	debug = flag.Bool("debug", false, "Log splits, merges and redistributions.")
	noColor = flag.Bool("no-color", false, "Disable colored output.")
	flag.Usage = func() {
		fmt.Println("\nB+ Tree CLI\n\nArguments:")
		flag.PrintDefaults()
	}
	flag.Parse()
}
