package main

import (
	"bytes"
	"errors"
	"io"
	"log"
	"log/slog"
	"qPCR/pkg/ct"
	"qPCR/pkg/export"
	"qPCR/pkg/plot"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/liserjrqlxue/goUtil/fmtUtil"
	"github.com/liserjrqlxue/goUtil/osUtil"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/samber/lo"
)

func logStats(stats ct.Stats) {
	slog.Info(
		"Stats",
		"loaded", stats.Loaded,
		"undetermined", stats.Undetermined,
		"outliers", stats.Outliers,
		"kept", stats.Kept,
		"missingReference", stats.MissingReference,
		"missingControl", stats.MissingControl,
	)
}

func writeTable(path string, result *ct.Result, references []string) {
	out := osUtil.Create(path)
	defer simpleUtil.DeferClose(out)

	log.Printf("Write(%s)", path)
	simpleUtil.CheckErr(export.WriteTable(out, result.Table, references))
}

func writeSummary(path string, summaries []ct.Summary) {
	out := osUtil.Create(path)
	defer simpleUtil.DeferClose(out)

	log.Printf("Write(%s)", path)
	simpleUtil.CheckErr(export.WriteSummary(out, summaries))
}

// writePlot returns path, or "" when nothing could be plotted.
func writePlot(path string, summaries []ct.Summary) string {
	var (
		opts = plot.DefaultOptions()
		buf  bytes.Buffer
	)
	opts.Seed = *seed

	err := plot.Render(&buf, summaries, opts)
	if errors.Is(err, plot.ErrNothingToPlot) {
		slog.Warn("Skip plot", "err", err)
		return ""
	}
	simpleUtil.CheckErr(err)

	out := osUtil.Create(path)
	defer simpleUtil.DeferClose(out)

	log.Printf("Write(%s)", path)
	simpleUtil.HandleError(buf.WriteTo(out))
	return path
}

func writeWorkbook(path string, result *ct.Result, summaries []ct.Summary, references []string, plotPath string) {
	simpleUtil.CheckErr(export.WriteWorkbook(path, result, summaries, references, plotPath))
}

// printHist prints the distribution of valid dct values.
func printHist(w io.Writer, table *ct.Table) {
	values := lo.FilterMap(table.Rows, func(m *ct.Measurement, _ int) (float64, bool) {
		return m.DCt.Float64, m.DCt.Valid
	})
	if len(values) == 0 {
		slog.Warn("Skip histogram", "reason", "no dct")
		return
	}
	fmtUtil.Fprintf(w, "dct n=%d\n", len(values))
	simpleUtil.CheckErr(histogram.Fprint(w, histogram.Hist(HistBins, values), histogram.Linear(HistRows)))
}
