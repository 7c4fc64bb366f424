package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var csvHeader = []string{"index", "workload", "ops", "ns_per_op", "heap_bytes", "allocated_bytes", "objects"}

// WriteCSV writes one row per result below a header row.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "bench: write csv")
	}
	for _, res := range results {
		err := cw.Write([]string{
			res.Index,
			string(res.Workload),
			strconv.Itoa(res.Ops),
			strconv.FormatInt(res.NsPerOp(), 10),
			strconv.FormatUint(res.HeapBytes, 10),
			strconv.FormatUint(res.Allocated, 10),
			strconv.FormatUint(res.Objects, 10),
		})
		if err != nil {
			return errors.Wrap(err, "bench: write csv")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "bench: write csv")
}

// WriteSummary prints the results in a human readable table.
func WriteSummary(w io.Writer, results []Result) error {
	for _, res := range results {
		_, err := fmt.Fprintf(w, "%-16s %-12s %10s ops %8s ns/op  heap %-9s alloc %-9s objects %s\n",
			res.Index,
			res.Workload,
			humanize.Comma(int64(res.Ops)),
			humanize.Comma(res.NsPerOp()),
			humanize.Bytes(res.HeapBytes),
			humanize.Bytes(res.Allocated),
			humanize.Comma(int64(res.Objects)),
		)
		if err != nil {
			return errors.Wrap(err, "bench: write summary")
		}
	}
	return nil
}

// Plot renders mean latency per workload as a bar chart with one bar group per index and
// saves it to path. The image format follows the file extension.
func Plot(results []Result, path string) error {
	var indexes []string
	var workloads []Workload
	latency := make(map[string]map[Workload]float64)
	for _, res := range results {
		if _, ok := latency[res.Index]; !ok {
			indexes = append(indexes, res.Index)
			latency[res.Index] = make(map[Workload]float64)
		}
		if !slices.Contains(workloads, res.Workload) {
			workloads = append(workloads, res.Workload)
		}
		latency[res.Index][res.Workload] = float64(res.NsPerOp())
	}
	if len(indexes) == 0 {
		return errors.New("bench: nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "Mean latency per operation"
	p.Y.Label.Text = "ns/op"

	width := vg.Points(60 / float64(len(indexes)))
	for i, name := range indexes {
		values := make(plotter.Values, len(workloads))
		for j, w := range workloads {
			values[j] = latency[name][w]
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return errors.Wrapf(err, "bench: bars for %s", name)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = width * vg.Length(i-len(indexes)/2)
		p.Add(bars)
		p.Legend.Add(name, bars)
	}
	p.Legend.Top = true

	names := make([]string, len(workloads))
	for i, w := range workloads {
		names[i] = string(w)
	}
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "bench: save plot %s", path)
	}
	return nil
}
