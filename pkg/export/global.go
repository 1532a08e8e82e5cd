package export

var (
	CellTypeTitle = "celltype"

	OutlierTitle = []string{
		"Q1",
		"Q3",
		"IQR",
		"OutlierIf",
	}

	RelativeTitle = []string{
		"geomean",
		"dct",
		"dct.con",
		"ddct",
		"2^-ddct",
	}

	SummaryTitle = []string{
		"Target Name",
		"celltype",
		"N",
		"Mean",
		"SD",
	}

	ResultSheet  = "Results"
	SummarySheet = "Summary"
	StatsSheet   = "Stats"
	PlotSheet    = "Plot"
)
