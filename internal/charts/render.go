// Package charts builds ECharts option documents with go-echarts and renders
// the mount markup the page script picks up.
package charts

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/seuros/vidpulse/internal/view"
)

// Mount ids used by the panels.
const (
	GlobalPie      = "global-echart"
	GlobalBar      = "global-echart-bar"
	HashtagBar     = "hashtag-echart"
	TrendLine      = "trend-echart"
	TimingBar      = "publish-timing-echart"
	CreatorMonthly = "creator-monthly-chart"
	CreatorTierPie = "creator-tier-pie"
	RegionTikTok   = "region-ad-tiktok"
	RegionYouTube  = "region-ad-youtube"
	DominanceBar   = "pd-comparison-bar"
)

const (
	defaultHeight = "400px"
	globalHeight  = "450px"
	timingHeight  = "500px"

	titleColor     = "#3A3A3A"
	secondaryColor = "#7A7A7A"
	tooltipBg      = "rgba(255, 255, 255, 0.95)"
	tooltipBorder  = "#E0E0E0"

	// EmptyText is shown in a mount whose series list is empty.
	EmptyText = "No data"
	// NoCategoryText is shown when the global category breakdown is empty.
	NoCategoryText = "No category data available"
)

var (
	// Palette is shared by the global, hashtag and timing charts.
	Palette = []string{"#B8A082", "#A0CFBA", "#899DCC", "#F2C6B4", "#DDB8A0", "#7B8FA6", "#B4A7D6", "#DBC585"}
	// WarmPalette colours the TikTok rose.
	WarmPalette = []string{"#C65B7C", "#E4A9A8", "#F2C6B4", "#DDB8A0", "#EABDA8"}
	// CoolPalette colours the YouTube rose.
	CoolPalette = []string{"#74B9FF", "#A29BFE", "#55EFC4", "#81ECEC", "#B2BEC3"}
)

type snippetRenderer interface {
	RenderSnippet() render.ChartSnippet
}

// optionOf renders the option document of a go-echarts chart.
func optionOf(c snippetRenderer) string {
	opt := strings.TrimSpace(c.RenderSnippet().Option)
	return strings.TrimSpace(strings.TrimSuffix(opt, ";"))
}

// Height returns the mount height for a chart id.
func Height(id string) string {
	switch id {
	case GlobalPie, GlobalBar:
		return globalHeight
	case TimingBar:
		return timingHeight
	default:
		return defaultHeight
	}
}

// The option travels as an attribute value so report data never lands in
// script context.
var mountTemplate = template.Must(template.New("mount").Parse(
	`<div id="{{.ID}}" class="chart-mount" style="height: {{.Height}}; width: 100%;" data-option="{{.Option}}"></div>` +
		`<script>vidpulse.mount({{.ID}}, {{.Delay}});</script>`))

var placeholderTemplate = template.Must(template.New("placeholder").Parse(
	`<div id="{{.ID}}" class="chart-mount" style="height: {{.Height}}; width: 100%;">` +
		`<div class="chart-empty">{{.Text}}</div></div>`))

// Mount renders the element and script that initialise chart after delay.
func Mount(chart *view.Chart, delay time.Duration) template.HTML {
	var buf bytes.Buffer
	_ = mountTemplate.Execute(&buf, struct {
		ID     string
		Height string
		Option string
		Delay  int64
	}{
		ID:     chart.ID(),
		Height: Height(chart.ID()),
		Option: chart.Option(),
		Delay:  delay.Milliseconds(),
	})
	return template.HTML(buf.String())
}

// Placeholder renders a mount point that shows text instead of a chart.
func Placeholder(id, text string) template.HTML {
	var buf bytes.Buffer
	_ = placeholderTemplate.Execute(&buf, struct {
		ID     string
		Height string
		Text   string
	}{ID: id, Height: Height(id), Text: text})
	return template.HTML(buf.String())
}

// StreamFrame is the realtime payload sent for a re-drawn chart.
type StreamFrame struct {
	Mount  string `json:"mount"`
	Option string `json:"option"`
}

// Frame encodes a re-draw of chart for the page stream.
func Frame(chart *view.Chart) ([]byte, error) {
	return json.Marshal(StreamFrame{Mount: chart.ID(), Option: chart.Option()})
}

func titleOpts(text, subtitle string) opts.Title {
	return opts.Title{
		Title:      text,
		Subtitle:   subtitle,
		Left:       "center",
		Top:        "10",
		TitleStyle: &opts.TextStyle{FontSize: 16, FontWeight: "600", Color: titleColor},
	}
}

func axisTooltip(formatter types.FuncStr) opts.Tooltip {
	return opts.Tooltip{
		Trigger:         "axis",
		AxisPointer:     &opts.AxisPointer{Type: "shadow"},
		Formatter:       formatter,
		BackgroundColor: tooltipBg,
		BorderColor:     tooltipBorder,
	}
}

func grid(left, right, top, bottom string) opts.Grid {
	return opts.Grid{Left: left, Right: right, Top: top, Bottom: bottom}
}

func colorAt(palette []string, i int) string {
	return palette[i%len(palette)]
}

// jsArray embeds a numeric Go slice in a JS function body. A nil slice
// becomes an empty array.
func jsArray(v any) string {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return "[]"
	}
	return string(raw)
}
