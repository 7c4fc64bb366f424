package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mcherri/bheaven/bench"
	"github.com/mcherri/bheaven/bptree"
	"github.com/mcherri/bheaven/bptree/check"
	"github.com/sirupsen/logrus"
)

var ops, keySpace *int
var seed *uint64
var sizes, workloads, csvPath, plotPath *string
var debug, freeList *bool

func main() {
	setupFlags()

	log := logrus.NewEntry(bptree.Log).WithField("component", "bench")
	if *debug {
		bptree.Log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log); err != nil {
		log.WithError(err).Fatal("benchmark failed")
	}
}

func run(log *logrus.Entry) error {
	ws, err := parseWorkloads(*workloads)
	if err != nil {
		return err
	}
	indexes, err := openIndexes(log)
	if err != nil {
		return err
	}

	runner := &bench.Runner{Ops: *ops, KeySpace: *keySpace, Seed: *seed, Workloads: ws, Log: log}
	var results []bench.Result
	for _, idx := range indexes {
		res, err := runner.Run(idx)
		if err != nil {
			return err
		}
		results = append(results, res...)

		if t, ok := idx.(*bench.TreeIndex); ok {
			if _, err := check.Validate(t.Tree()); err != nil {
				return errors.Wrapf(err, "%s left an invalid tree", idx.Name())
			}
		}
		if err := idx.Close(); err != nil {
			return errors.Wrapf(err, "closing %s", idx.Name())
		}
	}

	if err := bench.WriteSummary(os.Stdout, results); err != nil {
		return err
	}
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			return errors.Wrap(err, "creating csv file")
		}
		defer f.Close()
		if err := bench.WriteCSV(f, results); err != nil {
			return err
		}
		log.WithField("path", *csvPath).Info("wrote results")
	}
	if *plotPath != "" {
		if err := bench.Plot(results, *plotPath); err != nil {
			return err
		}
		log.WithField("path", *plotPath).Info("wrote plot")
	}
	return nil
}

// openIndexes opens one tree per size, then the baselines.
func openIndexes(log *logrus.Entry) ([]bench.Index, error) {
	var indexes []bench.Index
	for _, s := range strings.Split(*sizes, ",") {
		size, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid tree size %q", s)
		}
		cfg := bptree.Config{Order: size, Records: size}
		var opts []bptree.Option[int64, []byte]
		if *freeList {
			opts = append(opts, bptree.WithFactory[int64, []byte](
				bptree.NewFreeList[int64, []byte](cfg, bptree.DefaultFreeListSize)))
		}
		idx, err := bench.NewTreeIndex(cfg, opts...)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}

	db, err := bench.OpenPebble(log.WithField("index", "pebble"))
	if err != nil {
		return nil, err
	}
	return append(indexes, bench.NewSkipList(), db), nil
}

func parseWorkloads(s string) ([]bench.Workload, error) {
	var ws []bench.Workload
	for _, name := range strings.Split(s, ",") {
		w, err := bench.ParseWorkload(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		ws = append(ws, w)
	}
	return ws, nil
}

func setupFlags() {
	ops = flag.Int("ops", 100000, "Operations per workload.")
	keySpace = flag.Int("keys", 50000, "Keys are drawn from [0, keys).")
	seed = flag.Uint64("seed", 1, "Seed of the key and operation sequence.")
	sizes = flag.String("sizes", "4,16,64", "Comma separated tree sizes; each is used as order and records.")
	workloads = flag.String("workloads", "load,read-heavy,write-heavy,churn,drain", "Comma separated workloads to run in order.")
	csvPath = flag.String("csv", "results.csv", "Write raw results to this CSV file; empty to skip.")
	plotPath = flag.String("plot", "latency.png", "Write a latency chart to this image file; empty to skip.")
	debug = flag.Bool("debug", false, "Log tree splits and merges.")
	freeList = flag.Bool("free-list", false, "Recycle tree nodes through a free list.")
	flag.Usage = func() {
		fmt.Println("\nB+ Tree benchmark\n\nArguments:")
		flag.PrintDefaults()
	}
	flag.Parse()
}
