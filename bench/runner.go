package bench

import (
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Result is one workload run against one index.
type Result struct {
	Index     string
	Workload  Workload
	Ops       int
	Elapsed   time.Duration
	HeapBytes uint64 // live heap after the run
	Allocated uint64 // bytes allocated during the run
	Objects   uint64 // live heap objects after the run
}

// NsPerOp is the mean latency of a single operation.
func (r Result) NsPerOp() int64 {
	if r.Ops == 0 {
		return 0
	}
	return r.Elapsed.Nanoseconds() / int64(r.Ops)
}

type MemoryStats struct {
	Alloc       uint64
	TotalAlloc  uint64
	HeapObjects uint64
}

// ReadMemory collects garbage first so Alloc reflects live data only.
func ReadMemory() MemoryStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return MemoryStats{
		Alloc:       m.Alloc,
		TotalAlloc:  m.TotalAlloc,
		HeapObjects: m.HeapObjects,
	}
}

// Runner plays the same sequence of workloads against each index it is given. Every index
// sees the same keys because the random source is reseeded per index.
type Runner struct {
	Ops       int
	KeySpace  int
	Seed      uint64
	Workloads []Workload
	Log       *logrus.Entry
}

func (r *Runner) Run(idx Index) ([]Result, error) {
	log := r.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("index", idx.Name())
	rng := rand.New(rand.NewPCG(r.Seed, r.Seed))

	results := make([]Result, 0, len(r.Workloads))
	for _, w := range r.Workloads {
		before := ReadMemory()
		start := time.Now()
		ops, err := Execute(idx, w, r.Ops, r.KeySpace, rng)
		elapsed := time.Since(start)
		if err != nil {
			return results, err
		}
		after := ReadMemory()

		res := Result{
			Index:     idx.Name(),
			Workload:  w,
			Ops:       ops,
			Elapsed:   elapsed,
			HeapBytes: after.Alloc,
			Allocated: after.TotalAlloc - before.TotalAlloc,
			Objects:   after.HeapObjects,
		}
		log.WithFields(logrus.Fields{
			"workload": w,
			"ops":      ops,
			"ns/op":    res.NsPerOp(),
		}).Info("workload done")
		results = append(results, res)
	}
	return results, nil
}
