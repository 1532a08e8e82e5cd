package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"qPCR/pkg/ct"
	"qPCR/pkg/loader"
	"strings"

	"github.com/liserjrqlxue/goUtil/osUtil"
	"github.com/liserjrqlxue/goUtil/simpleUtil"
	"github.com/liserjrqlxue/goUtil/textUtil"
	"github.com/liserjrqlxue/version"
)

// flag
var (
	input = flag.String(
		"i",
		"",
		"input qPCR export, .xlsx/.xls/.csv/.tsv",
	)
	sheet = flag.String(
		"sheet",
		"Results",
		"sheet of workbook input",
	)
	headerRow = flag.Int(
		"header",
		45,
		"1-based row of the column names",
	)
	maxRows = flag.Int(
		"rows",
		0,
		"data rows after header, 0 reads up to the first empty row",
	)
	prefix = flag.String(
		"o",
		"",
		"output prefix, default is input without extension",
	)
	control = flag.String(
		"control",
		ct.DefaultControl,
		"control cell type",
	)
	references = flag.String(
		"ref",
		strings.Join(ct.DefaultReferences, ","),
		"reference targets, comma separated",
	)
	plotTargets = flag.String(
		"targets",
		strings.Join(ct.DefaultPlotTargets, ","),
		"plot targets in order, comma separated, empty for all non-reference targets",
	)
	multiplier = flag.Float64(
		"k",
		ct.DefaultMultiplier,
		"outlier bound multiplier of IQR",
	)
	inclusive = flag.Bool(
		"inclusive",
		false,
		"keep values on the outlier bound",
	)
	omitTxt = flag.String(
		"omit",
		"",
		"wells to drop, tab separated Well and reason",
	)
	seed = flag.Uint64(
		"seed",
		1,
		"jitter seed of plot points",
	)
	hist = flag.Bool(
		"hist",
		false,
		"print dct histogram",
	)
	rules ruleList
)

func init() {
	flag.Var(
		&rules,
		"rule",
		"cell type rule substring=label, repeatable, first match wins (default IPSC=iPSC MSN=MSN)",
	)
}

func main() {
	version.LogVersion()
	flag.Parse()
	if *input == "" {
		flag.PrintDefaults()
		log.Fatal("-i is required")
	}
	if *prefix == "" {
		*prefix = strings.TrimSuffix(*input, filepath.Ext(*input))
	}

	var (
		cfg  = newConfig()
		opts = loader.Options{
			Sheet:     *sheet,
			HeaderRow: *headerRow,
			MaxRows:   *maxRows,
		}
	)
	simpleUtil.CheckErr(cfg.Validate())

	if *omitTxt != "" {
		opts.Omit = simpleUtil.HandleError(readOmit(*omitTxt))
		slog.Info("Omit", "wells", len(opts.Omit))
	}

	table := simpleUtil.HandleError(loader.Load(*input, opts))
	result := simpleUtil.HandleError(ct.Run(cfg, table))
	logStats(result.Stats)

	summaries := ct.Summarize(result.Table, cfg)

	writeTable(*prefix+".csv", result, cfg.References)
	writeSummary(*prefix+".summary.csv", summaries)
	plotPath := writePlot(*prefix+".png", summaries)
	writeWorkbook(*prefix+".xlsx", result, summaries, cfg.References, plotPath)

	if *hist {
		printHist(os.Stdout, result.Table)
	}
}

// readOmit loads the Well -> reason map of -omit.
func readOmit(path string) (map[string]string, error) {
	if !osUtil.FileExists(path) {
		return nil, fmt.Errorf("omit file %s: %w", path, os.ErrNotExist)
	}
	return textUtil.File2Map(path, "\t", false)
}

func newConfig() ct.Config {
	var cfg = ct.DefaultConfig()
	if len(rules) > 0 {
		cfg.Rules = ct.Keyer(rules)
	}
	cfg.Control = *control
	cfg.References = splitList(*references)
	cfg.PlotTargets = splitList(*plotTargets)
	cfg.Multiplier = *multiplier
	if *inclusive {
		cfg.Fence = ct.FenceInclusive
	}
	return cfg
}
