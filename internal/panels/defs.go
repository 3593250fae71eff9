package panels

import (
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/seuros/vidpulse/internal/charts"
	"github.com/seuros/vidpulse/internal/format"
	"github.com/seuros/vidpulse/internal/reportapi"
	"github.com/seuros/vidpulse/internal/view"
)

// Panel names.
const (
	PanelGlobal    = "global"
	PanelHashtag   = "hashtag"
	PanelTrend     = "trend"
	PanelTiming    = "timing"
	PanelCreator   = "creator"
	PanelRegion    = "region"
	PanelDominance = "dominance"
)

// Form field names.
const (
	FieldPlatform     = "platform"
	FieldYearMonth    = "year_month"
	FieldCountryCode  = "country_code"
	FieldMinViews     = "min_views"
	FieldStartDate    = "start_date"
	FieldEndDate      = "end_date"
	FieldTimeAnalysis = "time_analysis"
	FieldStartMonth   = "start_month"
	FieldEndMonth     = "end_month"
	FieldCreatorScope = "creator_scope"
	FieldRegion       = "region"
)

const (
	loadingReport   = "Generating report..."
	loadingAnalysis = "Analyzing..."
	noReport        = "No report"

	networkFailure = "Analysis failed, please check your network connection and try again"
	reportFailure  = "Failed to generate report"
	analyzeFailure = "Failed to analyze"

	wrapPre    = "pre-wrap"
	wrapNormal = "wrap-normal"

	topHashtags = 10
)

var analysisNames = map[string]string{
	charts.AnalysisHourly:   "Hourly Analysis",
	charts.AnalysisDayParts: "Day Parts Analysis",
	charts.AnalysisWeek:     "Week Analysis",
}

type panelDef struct {
	name       string
	container  string
	fields     []string
	required   []string
	defaults   map[string]string
	validation string
	failure    string
	loading    string
	fetch      func(ctx context.Context, api reportapi.API, f Fields) (Report, error)
	render     func(s *Service, resp Report, f Fields) *output
}

// output is a rendered success response.
type output struct {
	view     reportView
	charts   []*view.Chart
	rotation *rotation
}

var panelDefs = []panelDef{
	{
		name:       PanelGlobal,
		container:  "global-result",
		fields:     []string{FieldPlatform, FieldYearMonth},
		required:   []string{FieldPlatform, FieldYearMonth},
		validation: "Please select platform and enter year-month",
		failure:    networkFailure,
		loading:    loadingReport,
		fetch: func(ctx context.Context, api reportapi.API, f Fields) (Report, error) {
			resp, err := api.GlobalAnalysis(ctx, reportapi.GlobalRequest{
				Platform:  f[FieldPlatform],
				YearMonth: f[FieldYearMonth],
			})
			return nilSafe(resp, err)
		},
		render: (*Service).renderGlobal,
	},
	{
		name:       PanelHashtag,
		container:  "hashtag-result",
		fields:     []string{FieldPlatform, FieldCountryCode, FieldMinViews},
		required:   []string{FieldPlatform, FieldCountryCode, FieldMinViews},
		validation: "Please select platform, enter country code and minimum views",
		failure:    networkFailure,
		loading:    loadingReport,
		fetch: func(ctx context.Context, api reportapi.API, f Fields) (Report, error) {
			resp, err := api.HashtagReport(ctx, reportapi.HashtagRequest{
				Platform:    f[FieldPlatform],
				CountryCode: f[FieldCountryCode],
				MinViews:    ParseLeadingInt(f[FieldMinViews]),
			})
			return nilSafe(resp, err)
		},
		render: (*Service).renderHashtag,
	},
	{
		name:       PanelTrend,
		container:  "trend-result",
		fields:     []string{FieldPlatform, FieldCountryCode, FieldStartDate, FieldEndDate},
		required:   []string{FieldPlatform, FieldCountryCode, FieldStartDate, FieldEndDate},
		validation: "Please select platform, enter country code, start date and end date",
		failure:    networkFailure,
		loading:    loadingReport,
		fetch: func(ctx context.Context, api reportapi.API, f Fields) (Report, error) {
			resp, err := api.TrendReport(ctx, reportapi.TrendRequest{
				Platform:    f[FieldPlatform],
				CountryCode: f[FieldCountryCode],
				StartDate:   f[FieldStartDate],
				EndDate:     f[FieldEndDate],
			})
			return nilSafe(resp, err)
		},
		render: (*Service).renderTrend,
	},
	{
		name:       PanelTiming,
		container:  "publish-timing-result",
		fields:     []string{FieldPlatform, FieldTimeAnalysis, FieldStartMonth, FieldEndMonth},
		required:   []string{FieldPlatform, FieldTimeAnalysis, FieldStartMonth, FieldEndMonth},
		validation: "Please select platform, analysis type, start month and end month",
		failure:    networkFailure,
		loading:    loadingReport,
		fetch: func(ctx context.Context, api reportapi.API, f Fields) (Report, error) {
			resp, err := api.PublishTiming(ctx, reportapi.TimingRequest{
				Platform:     f[FieldPlatform],
				TimeAnalysis: f[FieldTimeAnalysis],
				StartMonth:   f[FieldStartMonth],
				EndMonth:     f[FieldEndMonth],
			})
			return nilSafe(resp, err)
		},
		render: (*Service).renderTiming,
	},
	{
		name:      PanelCreator,
		container: "creator-performance-result",
		fields:    []string{FieldPlatform, FieldCreatorScope, FieldStartMonth, FieldEndMonth},
		required:  []string{FieldPlatform},
		defaults: map[string]string{
			FieldCreatorScope: "All (all tiers)",
			FieldStartMonth:   "2025-01",
			FieldEndMonth:     "2025-08",
		},
		validation: "Please select platform",
		failure:    reportFailure,
		loading:    loadingReport,
		fetch: func(ctx context.Context, api reportapi.API, f Fields) (Report, error) {
			resp, err := api.CreatorPerformance(ctx, reportapi.CreatorRequest{
				Platform:     f[FieldPlatform],
				CreatorScope: f[FieldCreatorScope],
				StartMonth:   f[FieldStartMonth],
				EndMonth:     f[FieldEndMonth],
			})
			return nilSafe(resp, err)
		},
		render: (*Service).renderCreator,
	},
	{
		name:       PanelRegion,
		container:  "region-ad-result",
		fields:     []string{FieldRegion},
		required:   []string{FieldRegion},
		validation: "Please enter region (e.g., Asia)",
		failure:    reportFailure,
		loading:    loadingReport,
		fetch: func(ctx context.Context, api reportapi.API, f Fields) (Report, error) {
			resp, err := api.RegionAdReco(ctx, reportapi.RegionRequest{Region: f[FieldRegion]})
			return nilSafe(resp, err)
		},
		render: (*Service).renderRegion,
	},
	{
		name:       PanelDominance,
		container:  "pd-extended-result",
		fields:     []string{FieldCountryCode},
		required:   []string{FieldCountryCode},
		validation: "Please enter country code (e.g., US)",
		failure:    analyzeFailure,
		loading:    loadingAnalysis,
		fetch: func(ctx context.Context, api reportapi.API, f Fields) (Report, error) {
			resp, err := api.PlatformDominance(ctx, reportapi.DominanceRequest{CountryCode: f[FieldCountryCode]})
			return nilSafe(resp, err)
		},
		render: (*Service).renderDominance,
	},
}

// nilSafe turns a typed response pointer into a Report, keeping a nil
// response from becoming a non-nil interface.
func nilSafe[T any, P interface {
	*T
	Report
}](resp P, err error) (Report, error) {
	if err != nil {
		return nil, err
	}
	if (*T)(resp) == nil {
		return nil, fmt.Errorf("panels: empty response")
	}
	return resp, nil
}

// ParseLeadingInt reads an optionally signed integer prefix of s, ignoring
// leading whitespace and anything after the digits. It returns nil when s
// does not start with a number.
func ParseLeadingInt(s string) *int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Service) mount(id, option string) (*view.Chart, template.HTML) {
	chart := view.NewChart(id, option)
	return chart, charts.Mount(chart, s.opts.ChartDelay)
}

func (out *output) add(chart *view.Chart, html template.HTML) {
	out.charts = append(out.charts, chart)
	out.view.Mounts = append(out.view.Mounts, html)
}

func (out *output) placeholder(id, text string) {
	out.view.Mounts = append(out.view.Mounts, charts.Placeholder(id, text))
}

func (s *Service) renderGlobal(resp Report, f Fields) *output {
	r := resp.(*reportapi.GlobalResponse)
	var info reportapi.ExtraInfo
	if r.ExtraInfo != nil {
		info = *r.ExtraInfo
	}

	out := &output{view: reportView{
		Heading: fmt.Sprintf("%s %s Global Data Analysis Report",
			firstNonEmpty(info.YearMonth, f[FieldYearMonth]),
			firstNonEmpty(info.Platform, f[FieldPlatform]),
		),
		Report: template.HTML(r.Markup("")),
		Row:    true,
	}}
	if len(r.Labels) == 0 && len(r.CategoryLabels) == 0 {
		return out
	}

	if len(r.Labels) > 0 {
		out.add(s.mount(charts.GlobalPie, charts.CountryPie(r.Labels, r.Values)))
	} else {
		out.placeholder(charts.GlobalPie, charts.EmptyText)
	}
	if len(r.CategoryLabels) > 0 {
		out.add(s.mount(charts.GlobalBar, charts.CategoryBar(r.CategoryLabels, r.CategoryValues)))
	} else {
		out.placeholder(charts.GlobalBar, charts.NoCategoryText)
	}
	return out
}

func (s *Service) renderHashtag(resp Report, f Fields) *output {
	r := resp.(*reportapi.HashtagResponse)
	platform := firstNonEmpty(r.Platform, f[FieldPlatform])
	cc := firstNonEmpty(r.CountryCode, f[FieldCountryCode])

	out := &output{view: reportView{
		Heading: fmt.Sprintf("%s - %s Trending Hashtags Analysis", platform, cc),
		Report:  template.HTML(r.Markup("")),
	}}
	for i, h := range r.Hashtags {
		if i == topHashtags {
			break
		}
		out.view.Hashtags = append(out.view.Hashtags, hashtagItem{Tag: h.Hashtag, Views: format.Comma(h.Views)})
	}
	if len(r.Labels) > 0 {
		out.add(s.mount(charts.HashtagBar, charts.HashtagChart(r.Labels, r.Values, platform, cc)))
	}
	return out
}

func (s *Service) renderTrend(resp Report, f Fields) *output {
	r := resp.(*reportapi.TrendResponse)
	platform := firstNonEmpty(r.Platform, f[FieldPlatform])
	cc := firstNonEmpty(r.CountryCode, f[FieldCountryCode])

	out := &output{view: reportView{
		Heading: fmt.Sprintf("%s - %s Content Trend Type Analysis", platform, cc),
		Report:  template.HTML(format.CollapseWhitespace(r.Markup(""))),
	}}
	if len(r.Labels) > 0 {
		option := charts.TrendChart(r.Labels, r.Values, platform, cc,
			firstNonEmpty(r.StartDate, f[FieldStartDate]),
			firstNonEmpty(r.EndDate, f[FieldEndDate]),
		)
		out.add(s.mount(charts.TrendLine, option))
	}
	return out
}

func (s *Service) renderTiming(resp Report, f Fields) *output {
	r := resp.(*reportapi.TimingResponse)
	platform := firstNonEmpty(r.Platform, f[FieldPlatform])
	analysis := firstNonEmpty(r.TimeAnalysis, f[FieldTimeAnalysis])
	name := analysis
	if n, ok := analysisNames[analysis]; ok {
		name = n
	}

	out := &output{view: reportView{
		Heading: fmt.Sprintf("%s - %s Optimal Publish Time Analysis", platform, name),
		Wrap:    wrapNormal,
		Report:  template.HTML(format.CollapseWhitespace(r.Markup(""))),
	}}
	if r.Data != nil {
		if option, ok := charts.TimingChart(analysis, r.Data, platform, r.PeriodDisplay); ok {
			out.add(s.mount(charts.TimingBar, option))
		}
	}
	return out
}

func (s *Service) renderCreator(resp Report, f Fields) *output {
	r := resp.(*reportapi.CreatorResponse)
	platform := f[FieldPlatform]
	scope := f[FieldCreatorScope]

	out := &output{view: reportView{
		Heading: fmt.Sprintf("Creator Ecosystem & Tier Performance Data Report in %s - %s (%s to %s)",
			platform, scope, f[FieldStartMonth], f[FieldEndMonth]),
		Report: template.HTML(r.Markup(noReport)),
	}}
	switch {
	case r.Data == nil:
	case len(r.Data.MonthlyTrend) > 0:
		out.add(s.mount(charts.CreatorMonthly, charts.CreatorMonthlyChart(r.Data.MonthlyTrend, scope, platform)))
	case len(r.Data.Tiers) > 1:
		out.add(s.mount(charts.CreatorTierPie, charts.CreatorTierChart(r.Data.Tiers, r.Data.TierViews)))
	}
	return out
}

func (s *Service) renderRegion(resp Report, f Fields) *output {
	r := resp.(*reportapi.RegionResponse)

	out := &output{view: reportView{
		Heading: "Regional Advertising Recommendation - " + f[FieldRegion],
		Wrap:    wrapPre,
		Report:  template.HTML(r.Markup(noReport)),
		Row:     true,
	}}
	if r.Data == nil {
		return out
	}
	rose := func(id, title string, items []reportapi.CategoryEngagement) {
		if len(items) == 0 {
			out.placeholder(id, charts.EmptyText)
			return
		}
		out.add(s.mount(id, charts.RegionRose(id, title, items)))
	}
	rose(charts.RegionTikTok, "TikTok Top Categories", r.Data.TikTokTop)
	rose(charts.RegionYouTube, "YouTube Top Categories", r.Data.YouTubeTop)
	return out
}

func (s *Service) renderDominance(resp Report, f Fields) *output {
	r := resp.(*reportapi.DominanceResponse)
	cc := f[FieldCountryCode]
	country := firstNonEmpty(r.CountryName, CountryName(cc))

	out := &output{view: reportView{
		Heading: "Short Video Platform Dominance Analysis by Country - " + country,
		Report:  template.HTML(r.Markup(noReport)),
	}}
	if r.Data == nil || r.Data.Comparison == nil || len(r.Data.Comparison.Metrics) == 0 {
		return out
	}
	comp := r.Data.Comparison
	chart, html := s.mount(charts.DominanceBar, charts.DominanceComparison(comp, 0, country))
	out.add(chart, html)
	out.rotation = &rotation{comp: comp, country: country, chart: chart}
	return out
}
