package plot

import (
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"qPCR/pkg/ct"
	"strings"

	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNothingToPlot = errors.New("nothing to plot")

var (
	DefaultPalette = []string{"#E8E6E6", "#9D67E6"}

	EdgeColor  = drawing.ColorBlack
	PointColor = drawing.ColorBlack.WithAlpha(153)
)

type Options struct {
	Width  int
	Height int
	Title  string
	XLabel string
	YLabel string

	// fill colour per cell type, cycled
	Palette []string
	// share of the group width taken by the bars
	GroupWidth float64
	// share of a bar width the points may spread over
	Jitter float64
	Seed   uint64
}

func DefaultOptions() Options {
	return Options{
		Width:      800,
		Height:     500,
		XLabel:     "Marker",
		YLabel:     "2^-ddct",
		Palette:    DefaultPalette,
		GroupWidth: 0.8,
		Jitter:     0.6,
		Seed:       1,
	}
}

type point struct {
	X, Y float64
}

type bar struct {
	X      float64
	Mean   float64
	SD     float64
	HasSD  bool
	Points []point
}

// barSeries is one cell type: its bars, error bars and points.
type barSeries struct {
	Name  string
	Style chart.Style
	Width float64
	Bars  []bar
}

func (bs barSeries) GetName() string          { return bs.Name }
func (bs barSeries) GetStyle() chart.Style     { return bs.Style }
func (bs barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (bs barSeries) Len() int                  { return len(bs.Bars) }
func (bs barSeries) GetValues(i int) (float64, float64) {
	return bs.Bars[i].X, bs.Bars[i].Mean
}

func (bs barSeries) Validate() error {
	if len(bs.Bars) == 0 {
		return errors.New("bar series must have bars")
	}
	return nil
}

func (bs barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	x := func(v float64) int { return canvasBox.Left + xrange.Translate(v) }
	y := func(v float64) int { return canvasBox.Bottom - yrange.Translate(v) }

	for _, b := range bs.Bars {
		left, right := x(b.X-bs.Width/2), x(b.X+bs.Width/2)
		base, top := y(0), y(b.Mean)

		r.SetFillColor(bs.Style.FillColor)
		r.SetStrokeColor(EdgeColor)
		r.SetStrokeWidth(0.5)
		r.MoveTo(left, top)
		r.LineTo(right, top)
		r.LineTo(right, base)
		r.LineTo(left, base)
		r.LineTo(left, top)
		r.Close()
		r.FillStroke()

		if b.HasSD {
			center, whisker := x(b.X), (right-left)/6
			low, high := y(b.Mean-b.SD), y(b.Mean+b.SD)
			r.SetStrokeColor(EdgeColor)
			r.SetStrokeWidth(1.5)
			r.MoveTo(center, low)
			r.LineTo(center, high)
			r.Stroke()
			r.MoveTo(center-whisker, high)
			r.LineTo(center+whisker, high)
			r.Stroke()
			r.MoveTo(center-whisker, low)
			r.LineTo(center+whisker, low)
			r.Stroke()
		}

		r.SetFillColor(PointColor)
		r.SetStrokeColor(PointColor)
		r.SetStrokeWidth(1)
		for _, p := range b.Points {
			r.Circle(3, x(p.X), y(p.Y))
			r.FillStroke()
		}
	}
}

// layout places one bar per summary: targets on the x axis at 0, 1, ...,
// cell types side by side within a target.
func layout(summaries []ct.Summary, opts Options) (targets []string, series []barSeries, maxY float64) {
	targets = lo.Uniq(lo.Map(summaries, func(s ct.Summary, _ int) string { return s.Target }))
	cellTypes := lo.Uniq(lo.Map(summaries, func(s ct.Summary, _ int) string { return s.CellType }))

	var (
		rng     = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
		width   = opts.GroupWidth / float64(len(cellTypes))
		byName  = make(map[string]int)
		palette = opts.Palette
	)
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	for i, cellType := range cellTypes {
		color := drawing.ColorFromHex(strings.TrimPrefix(palette[i%len(palette)], "#"))
		series = append(series, barSeries{
			Name: cellType,
			// stroke colours the legend swatch
			Style: chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 8},
			Width: width,
		})
		byName[cellType] = i
	}

	for _, s := range summaries {
		if !s.Mean.Valid {
			continue
		}
		i := byName[s.CellType]
		x := float64(lo.IndexOf(targets, s.Target)) - opts.GroupWidth/2 + width*(float64(i)+0.5)
		b := bar{X: x, Mean: s.Mean.Float64, SD: s.SD.Float64, HasSD: s.SD.Valid}
		maxY = math.Max(maxY, b.Mean)
		if b.HasSD {
			maxY = math.Max(maxY, b.Mean+b.SD)
		}
		for _, v := range s.Values {
			b.Points = append(b.Points, point{X: x + (rng.Float64()-0.5)*width*opts.Jitter, Y: v})
			maxY = math.Max(maxY, v)
		}
		series[i].Bars = append(series[i].Bars, b)
	}

	series = lo.Filter(series, func(bs barSeries, _ int) bool { return len(bs.Bars) > 0 })
	return
}

// Render draws the grouped bar chart of summaries as PNG.
func Render(w io.Writer, summaries []ct.Summary, opts Options) error {
	targets, series, maxY := layout(summaries, opts)
	if len(series) == 0 {
		return ErrNothingToPlot
	}
	if maxY <= 0 {
		maxY = 1
	}

	var ticks = make([]chart.Tick, 0, len(targets))
	for i, target := range targets {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: target})
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  opts.XLabel,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(targets)) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  opts.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
	}
	for _, s := range series {
		graph.Series = append(graph.Series, s)
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
