package charts

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/seuros/vidpulse/internal/format"
	"github.com/seuros/vidpulse/internal/reportapi"
)

// JS snippets embedded in option documents. They must not contain double
// quotes or backslashes because the option passes through JSON encoding.
const (
	newline = "String.fromCharCode(10)"

	compactAxisJS = `function (value) {
		if (value >= 1000000) return (value / 1000000).toFixed(1) + 'M';
		if (value >= 1000) return (value / 1000).toFixed(1) + 'K';
		return value;
	}`

	compactLabelJS = `function (params) {
		var val = params.value;
		if (val >= 1000000) return (val / 1000000).toFixed(1) + 'M';
		if (val >= 1000) return (val / 1000).toFixed(1) + 'K';
		return val.toLocaleString();
	}`

	viewsTooltipJS = `function (params) {
		var p = params[0];
		return p.name + '<br/>Views: ' + p.value.toLocaleString();
	}`

	percentAxisFormatter = "{value}%"
	pieShareFormatter    = "{b}\n{d}%"
)

// CountryPie is the global panel's country distribution donut.
func CountryPie(labels []string, values []float64) string {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: GlobalPie}),
		charts.WithTitleOpts(titleOpts("TOP5 Country Distribution", "")),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger:         "item",
			Formatter:       "{b}: {c} views<br/>({d}%)",
			BackgroundColor: tooltipBg,
			BorderColor:     tooltipBorder,
		}),
		charts.WithLegendOpts(opts.Legend{
			Orient:    "vertical",
			Left:      "left",
			Top:       "middle",
			TextStyle: &opts.TextStyle{FontSize: 12, Color: secondaryColor},
		}),
	)

	data := make([]opts.PieData, 0, len(labels))
	for i, name := range labels {
		data = append(data, opts.PieData{
			Name:      name,
			Value:     valueAt(values, i),
			ItemStyle: &opts.ItemStyle{Color: colorAt(Palette, i), BorderColor: "#fff", BorderWidth: 3},
		})
	}

	pie.AddSeries("Views", data,
		charts.WithPieChartOpts(opts.PieChart{
			Radius: []string{"45%", "75%"},
			Center: []string{"60%", "55%"},
		}),
		charts.WithLabelOpts(opts.Label{
			Show:       opts.Bool(true),
			FontWeight: "bold",
			FontSize:   11,
			Color:      titleColor,
			Formatter: opts.FuncOpts(`function (params) {
				return params.name + ` + newline + ` + params.value.toLocaleString() + ` + newline + ` + '(' + params.percent + '%)';
			}`),
		}),
		charts.WithLabelLineOpts(opts.LabelLine{Show: opts.Bool(true), Length2: 10}),
	)
	return optionOf(pie)
}

// CategoryBar is the global panel's horizontal category breakdown. Callers
// render NoCategoryText instead when labels is empty.
func CategoryBar(labels []string, values []float64) string {
	total := 0.0
	for _, v := range values {
		total += v
	}
	pct := make([]float64, len(labels))
	for i := range labels {
		if total > 0 {
			pct[i] = math.Round(valueAt(values, i)/total*1000) / 10
		}
	}
	pctJS := jsArray(pct)

	bar := horizontalBar(barSpec{
		ID:     GlobalBar,
		Title:  "Content Category Distribution",
		Labels: labels,
		Values: values,
		Tooltip: `function (params) {
			var pct = ` + pctJS + `;
			var p = params[0];
			return p.name + '<br/>Views: ' + p.value.toLocaleString() + '<br/>Percentage: ' + pct[p.dataIndex].toFixed(1) + '%';
		}`,
		Label: `function (params) {
			var pct = ` + pctJS + `;
			return params.value.toLocaleString() + ` + newline + ` + '(' + pct[params.dataIndex].toFixed(1) + '%)';
		}`,
		AxisName: "Views",
		Grid:     grid("20%", "10%", "20%", "15%"),
	})
	return optionOf(bar)
}

// HashtagChart is the hashtag panel's horizontal views bar.
func HashtagChart(labels []string, values []float64, platform, countryCode string) string {
	bar := horizontalBar(barSpec{
		ID:       HashtagBar,
		Title:    platform + " - " + countryCode + " Trending Hashtags",
		Labels:   labels,
		Values:   values,
		Tooltip:  viewsTooltipJS,
		Label:    compactLabelJS,
		AxisName: "Views",
		Grid:     grid("20%", "10%", "20%", "15%"),
	})
	return optionOf(bar)
}

type barSpec struct {
	ID       string
	Title    string
	Labels   []string
	Values   []float64
	Tooltip  string
	Label    string
	AxisName string
	Grid     opts.Grid
}

func horizontalBar(cfg barSpec) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: cfg.ID}),
		charts.WithTitleOpts(titleOpts(cfg.Title, "")),
		charts.WithTooltipOpts(axisTooltip(opts.FuncOpts(cfg.Tooltip))),
		charts.WithGridOpts(cfg.Grid),
		charts.WithXAxisOpts(opts.XAxis{
			Type:         "value",
			Name:         cfg.AxisName,
			NameLocation: "middle",
			NameGap:      30,
			AxisLabel:    &opts.AxisLabel{Formatter: opts.FuncOpts(compactAxisJS), FontSize: 10, Color: secondaryColor},
			SplitLine:    &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: tooltipBorder, Type: "dashed"}},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{FontSize: 11, Color: titleColor},
		}),
	)

	data := make([]opts.BarData, 0, len(cfg.Labels))
	for i := range cfg.Labels {
		data = append(data, opts.BarData{
			Value:     valueAt(cfg.Values, i),
			ItemStyle: &opts.ItemStyle{Color: colorAt(Palette, i)},
		})
	}

	bar.SetXAxis(cfg.Labels).
		AddSeries("Views", data,
			charts.WithLabelOpts(opts.Label{
				Show:       opts.Bool(true),
				Position:   "right",
				FontSize:   10,
				FontWeight: "bold",
				Color:      titleColor,
				Formatter:  opts.FuncOpts(cfg.Label),
			}),
			charts.WithBarChartOpts(opts.BarChart{BarWidth: "60%"}),
		).
		XYReversal()
	return bar
}

// TrendChart is the trend panel's smooth views line.
func TrendChart(labels []string, values []float64, platform, countryCode, startDate, endDate string) string {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: TrendLine}),
		charts.WithTitleOpts(titleOpts(
			platform+" - "+countryCode+" Trend Type View Distribution",
			startDate+" to "+endDate,
		)),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger:         "axis",
			Formatter:       opts.FuncOpts(viewsTooltipJS),
			BackgroundColor: tooltipBg,
			BorderColor:     tooltipBorder,
		}),
		charts.WithGridOpts(grid("10%", "10%", "20%", "20%")),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{FontSize: 11, Color: titleColor, Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			Name:      "Total Views",
			AxisLabel: &opts.AxisLabel{Formatter: opts.FuncOpts(compactAxisJS)},
		}),
	)

	data := make([]opts.LineData, 0, len(labels))
	for i := range labels {
		data = append(data, opts.LineData{Value: valueAt(values, i)})
	}

	line.SetXAxis(labels).AddSeries("Views", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), Symbol: "circle", SymbolSize: 8}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: Palette[0], Width: 3}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: Palette[0]}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: "rgba(184, 160, 130, 0.18)"}),
		charts.WithLabelOpts(opts.Label{
			Show:       opts.Bool(true),
			Position:   "top",
			FontSize:   10,
			FontWeight: "bold",
			Formatter:  opts.FuncOpts(compactLabelJS),
		}),
	)
	return optionOf(line)
}

// Publish timing analysis variants.
const (
	AnalysisHourly   = "Hourly"
	AnalysisDayParts = "Day Parts"
	AnalysisWeek     = "Week Analysis"
)

// TimingChart renders the publish-timing bar for the given analysis type.
// It reports false for an unknown type.
func TimingChart(analysis string, data *reportapi.TimingData, platform, periodDisplay string) (string, bool) {
	if data == nil {
		return "", false
	}

	var (
		labels   []string
		title    string
		rotate   float64
		barWidth = "60%"
		fontSize float32 = 10
		bottom   = "20%"
	)
	switch analysis {
	case AnalysisHourly:
		labels = make([]string, len(data.Hours))
		for i, h := range data.Hours {
			labels[i] = strconv.Itoa(h) + ":00"
		}
		title = platform + " - Hourly Analysis"
		rotate = 45
		barWidth = "50%"
		fontSize = 9
	case AnalysisDayParts:
		labels = data.Periods
		title = platform + " - Day Parts Publishing Analysis"
		rotate = 45
	case AnalysisWeek:
		labels = data.Days
		title = platform + " - Week Analysis"
		bottom = "15%"
	default:
		return "", false
	}

	rates := data.EngagementRates
	diffJS := jsArray(data.EngDiffPct)
	ratesJS := jsArray(rates)
	countsJS := jsArray(data.ContentCounts)

	yAxis := opts.YAxis{
		Type:      "value",
		Name:      "Engagement Rate (%)",
		AxisLabel: &opts.AxisLabel{Formatter: percentAxisFormatter},
	}
	if analysis != AnalysisHourly {
		lo, hi := RateAxisRange(rates)
		yAxis.Min, yAxis.Max = lo, hi
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: TimingBar}),
		charts.WithTitleOpts(titleOpts(title, periodDisplay)),
		charts.WithTooltipOpts(axisTooltip(opts.FuncOpts(`function (params) {
			var diff = ` + diffJS + `, rates = ` + ratesJS + `, counts = ` + countsJS + `;
			var p = params[0], i = p.dataIndex, d = diff[i] || 0;
			return p.name + '<br/>Engagement Rate: ' + (rates[i] || 0).toFixed(2) + '%<br/>Difference: ' + (d > 0 ? '+' : '') + d.toFixed(1) + '%<br/>Sample Size: ' + (counts[i] || 0);
		}`))),
		charts.WithGridOpts(grid("10%", "10%", "20%", bottom)),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{FontSize: 11, Color: titleColor, Rotate: rotate},
		}),
		charts.WithYAxisOpts(yAxis),
	)
	if analysis == AnalysisWeek {
		second := yAxis
		second.Name = "Rate (%)"
		second.Position = "right"
		bar.ExtendYAxis(second)
	}

	items := make([]opts.BarData, 0, len(rates))
	for i, rate := range rates {
		items = append(items, opts.BarData{
			Value:     rate,
			ItemStyle: &opts.ItemStyle{Color: diffColor(valueAt(data.EngDiffPct, i))},
		})
	}

	seriesOpts := []charts.SeriesOpts{
		charts.WithLabelOpts(opts.Label{
			Show:       opts.Bool(true),
			Position:   "top",
			FontSize:   fontSize,
			FontWeight: "bold",
			Color:      titleColor,
			Formatter: opts.FuncOpts(`function (params) {
				var diff = ` + diffJS + `, d = diff[params.dataIndex] || 0;
				return params.value.toFixed(2) + '%' + ` + newline + ` + '(' + (d > 0 ? '+' : '') + d.toFixed(1) + '%)';
			}`),
		}),
		charts.WithBarChartOpts(opts.BarChart{BarWidth: barWidth}),
	}
	if analysis == AnalysisHourly {
		if points := peakValleyPoints(data); len(points) > 0 {
			seriesOpts = append(seriesOpts, charts.WithMarkPointNameCoordItemOpts(points...))
		}
	}

	bar.SetXAxis(labels).AddSeries("Engagement Rate", items, seriesOpts...)
	return optionOf(bar), true
}

func peakValleyPoints(data *reportapi.TimingData) []opts.MarkPointNameCoordItem {
	var points []opts.MarkPointNameCoordItem
	add := func(name string, hour *int, color string) {
		if hour == nil {
			return
		}
		idx := indexOf(data.Hours, *hour)
		if idx < 0 || idx >= len(data.EngagementRates) {
			return
		}
		rate := data.EngagementRates[idx]
		points = append(points, opts.MarkPointNameCoordItem{
			Name:       name,
			Coordinate: []interface{}{idx, rate},
			Value:      format.Fixed(rate, 2) + "%",
			ItemStyle:  &opts.ItemStyle{Color: color},
		})
	}
	add("Peak Hour", data.PeakHour, "#B8A082")
	add("Valley Hour", data.ValleyHour, "#7B8FA6")
	return points
}

func diffColor(d float64) string {
	if d > 0 {
		return "#C4B5A6"
	}
	return "#B8C5A6"
}

// RateAxisRange tightens the y-range of an engagement-rate axis. A spread
// under one point is centred on the midpoint with one point either side;
// wider spreads get 20% padding. The lower bound never drops below zero and
// both bounds are rounded to two decimals.
func RateAxisRange(rates []float64) (float64, float64) {
	if len(rates) == 0 {
		return 0, 1
	}
	lo, hi := rates[0], rates[0]
	for _, r := range rates[1:] {
		lo = min(lo, r)
		hi = max(hi, r)
	}
	if hi-lo < 1 {
		mid := (lo + hi) / 2
		return max(0, format.Round2(mid-1)), format.Round2(mid + 1)
	}
	pad := (hi - lo) * 0.2
	return max(0, format.Round2(lo-pad)), format.Round2(hi + pad)
}

// CreatorMonthlyChart plots monthly views for a single creator tier.
func CreatorMonthlyChart(monthly []reportapi.MonthlyViews, tierName, platform string) string {
	months := make([]string, 0, len(monthly))
	data := make([]opts.LineData, 0, len(monthly))
	for _, m := range monthly {
		months = append(months, m.Month)
		data = append(data, opts.LineData{Value: m.Views})
	}

	const blue = "#5470c6"
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: CreatorMonthly}),
		charts.WithTitleOpts(opts.Title{Title: tierName + " Monthly Views Trend (" + platform + ")", Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
			Formatter: opts.FuncOpts(`function (params) {
				var p = params[0];
				return p.axisValue + '<br/>' + p.marker + 'Views: ' + p.value.toLocaleString();
			}`),
		}),
		charts.WithGridOpts(grid("12%", "5%", "15%", "15%")),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Rotate: 45, FontSize: 11},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			Name:      "Views",
			AxisLabel: &opts.AxisLabel{Formatter: opts.FuncOpts(compactAxisJS)},
		}),
	)
	line.SetXAxis(months).AddSeries("Views", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: blue, Width: 3}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: blue}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: "rgba(84, 112, 198, 0.2)"}),
	)
	return optionOf(line)
}

// CreatorTierChart is the tier share donut shown when several tiers exist.
func CreatorTierChart(tiers []string, views []float64) string {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: CreatorTierPie}),
		charts.WithTitleOpts(opts.Title{Title: "Creator Tier Contribution (Views Share)", Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item", Formatter: "{b}: {c} views ({d}%)"}),
		charts.WithLegendOpts(opts.Legend{Left: "left"}),
	)
	data := make([]opts.PieData, 0, len(tiers))
	for i, tier := range tiers {
		data = append(data, opts.PieData{Name: tier, Value: valueAt(views, i)})
	}
	pie.AddSeries("Views", data,
		charts.WithPieChartOpts(opts.PieChart{
			Radius: []string{"45%", "70%"},
			Center: []string{"50%", "55%"},
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: "#fff", BorderWidth: 2}),
		charts.WithLabelOpts(opts.Label{Formatter: pieShareFormatter}),
	)
	return optionOf(pie)
}

// RegionRose renders a top-category rose. Titles mentioning TikTok use the
// warm palette, everything else the cool one.
func RegionRose(id, title string, items []reportapi.CategoryEngagement) string {
	palette := CoolPalette
	if strings.Contains(strings.ToLower(title), "tiktok") {
		palette = WarmPalette
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: id}),
		charts.WithTitleOpts(opts.Title{Title: title, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item", Formatter: "{b}: {c} (engagement)"}),
		charts.WithColorsOpts(opts.Colors(palette)),
	)
	data := make([]opts.PieData, 0, len(items))
	for _, it := range items {
		data = append(data, opts.PieData{Name: it.Category, Value: it.Engagement})
	}
	pie.AddSeries("Engagement", data,
		charts.WithPieChartOpts(opts.PieChart{
			Radius:   []int{20, 120},
			Center:   []string{"50%", "55%"},
			RoseType: "area",
		}),
		charts.WithLabelOpts(opts.Label{Formatter: pieShareFormatter}),
	)
	return optionOf(pie)
}

// ColorPair is the TikTok/YouTube colour pair for a dominance metric.
type ColorPair struct {
	TikTok  string
	YouTube string
}

var dominanceColors = []ColorPair{
	{TikTok: "#5470c6", YouTube: "#ee6666"},
	{TikTok: "#91cc75", YouTube: "#fac858"},
	{TikTok: "#73c0de", YouTube: "#fc8452"},
	{TikTok: "#3ba272", YouTube: "#ea7ccc"},
}

// DominanceColors returns the colour pair used for metric index i.
func DominanceColors(i int) ColorPair {
	return dominanceColors[i%len(dominanceColors)]
}

// metricFormatterJS mirrors format.MetricValue.
func metricFormatterJS(metric string) string {
	switch metric {
	case format.MetricTotalViews, format.MetricVideoCount:
		return `function (value) {
			if (value >= 1000000000) return (value / 1000000000).toFixed(2) + 'B';
			if (value >= 1000000) return (value / 1000000).toFixed(1) + 'M';
			if (value >= 1000) return (value / 1000).toFixed(1) + 'K';
			return value.toLocaleString();
		}`
	case format.MetricMedianEngagement:
		return `function (value) { return value.toFixed(2) + '%'; }`
	case format.MetricEngagementPer1k:
		return `function (value) { return value.toFixed(1); }`
	default:
		return `function (value) { return value.toFixed(2); }`
	}
}

// DominanceComparison draws metric index of comp as a TikTok vs YouTube bar.
// Callers guarantee index is within comp.Metrics.
func DominanceComparison(comp *reportapi.Comparison, index int, countryName string) string {
	metric := comp.Metrics[index]
	colors := DominanceColors(index)
	fmtJS := metricFormatterJS(metric)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: DominanceBar}),
		charts.WithTitleOpts(opts.Title{
			Title:      metric + " Comparison - " + countryName,
			Left:       "center",
			Top:        "10",
			TitleStyle: &opts.TextStyle{FontSize: 16, FontWeight: "600"},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger:     "axis",
			AxisPointer: &opts.AxisPointer{Type: "shadow"},
			Formatter: opts.FuncOpts(`function (params) {
				var f = ` + fmtJS + `;
				var out = params[0].name;
				for (var i = 0; i < params.length; i++) {
					out += '<br/>' + params[i].marker + params[i].seriesName + ': ' + f(params[i].value);
				}
				return out;
			}`),
		}),
		charts.WithLegendOpts(opts.Legend{Data: []string{"TikTok", "YouTube"}, Top: "40"}),
		charts.WithGridOpts(grid("25%", "10%", "20%", "10%")),
		charts.WithXAxisOpts(opts.XAxis{
			Type:         "value",
			Name:         metric,
			NameLocation: "middle",
			NameGap:      30,
			AxisLabel:    &opts.AxisLabel{Formatter: opts.FuncOpts(fmtJS)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{FontSize: 14, FontWeight: "bold"},
		}),
	)

	series := func(name, color string, value float64) {
		bar.AddSeries(name, []opts.BarData{{Value: value}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithLabelOpts(opts.Label{
				Show:       opts.Bool(true),
				Position:   "right",
				FontSize:   12,
				FontWeight: "bold",
				Color:      color,
				Formatter:  opts.FuncOpts(`function (params) { return (` + fmtJS + `)(params.value); }`),
			}),
			charts.WithBarChartOpts(opts.BarChart{BarWidth: "50%"}),
			charts.WithAnimationOpts(opts.Animation{AnimationEasing: "cubicOut"}),
		)
	}

	bar.SetXAxis([]string{"Platform"})
	series("TikTok", colors.TikTok, valueAt(comp.TikTok, index))
	series("YouTube", colors.YouTube, valueAt(comp.YouTube, index))
	bar.XYReversal()
	return optionOf(bar)
}

func valueAt(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}

func indexOf(values []int, v int) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}
