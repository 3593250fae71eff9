package reportapi

// Country is one entry of /api/countries.
type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Region   string `json:"region"`
	Language string `json:"language"`
}

// YearMonth is one entry of /api/year-months.
type YearMonth struct {
	YearMonth string `json:"year_month"`
	Year      string `json:"year"`
	Month     string `json:"month"`
	MonthName string `json:"month_name"`
	Display   string `json:"display"`
}

// Envelope carries the fields every report response shares. A non-empty
// Error means the backend rejected the request.
type Envelope struct {
	Error          string `json:"error"`
	Report         string `json:"report"`
	ReportMarkdown string `json:"report_markdown"`
	ReportHTML     string `json:"report_html"`
}

// BackendError returns the in-band error message.
func (e Envelope) BackendError() string {
	return e.Error
}

// Markup picks report_html, then report, then fallback.
func (e Envelope) Markup(fallback string) string {
	if e.ReportHTML != "" {
		return e.ReportHTML
	}
	if e.Report != "" {
		return e.Report
	}
	return fallback
}

// Requests

type GlobalRequest struct {
	Platform  string `json:"platform"`
	YearMonth string `json:"year_month"`
}

type HashtagRequest struct {
	Platform    string `json:"platform"`
	CountryCode string `json:"country_code"`
	MinViews    *int64 `json:"min_views"`
}

type TrendRequest struct {
	Platform    string `json:"platform"`
	CountryCode string `json:"country_code"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type TimingRequest struct {
	Platform     string `json:"platform"`
	TimeAnalysis string `json:"time_analysis"`
	StartMonth   string `json:"start_month"`
	EndMonth     string `json:"end_month"`
}

type CreatorRequest struct {
	Platform     string `json:"platform"`
	CreatorScope string `json:"creator_scope"`
	StartMonth   string `json:"start_month"`
	EndMonth     string `json:"end_month"`
}

type RegionRequest struct {
	Region string `json:"region"`
}

type DominanceRequest struct {
	CountryCode string `json:"country_code"`
}

// Responses

type GlobalResponse struct {
	Envelope
	Labels         []string   `json:"labels"`
	Values         []float64  `json:"values"`
	CategoryLabels []string   `json:"category_labels"`
	CategoryValues []float64  `json:"category_values"`
	ExtraInfo      *ExtraInfo `json:"extra_info"`
}

type ExtraInfo struct {
	Platform      string  `json:"platform"`
	YearMonth     string  `json:"year_month"`
	TotalContent  float64 `json:"total_content"`
	TotalViews    float64 `json:"total_views"`
	AvgEngagement float64 `json:"avg_engagement"`
	TopHashtag    string  `json:"top_hashtag"`
	TopCountry    string  `json:"top_country"`
	Title         string  `json:"title"`
}

type HashtagResponse struct {
	Envelope
	Platform     string         `json:"platform"`
	CountryCode  string         `json:"country_code"`
	MinViews     *float64       `json:"min_views"`
	HashtagCount int            `json:"hashtag_count"`
	Hashtags     []HashtagViews `json:"hashtags"`
	Labels       []string       `json:"labels"`
	Values       []float64      `json:"values"`
}

type HashtagViews struct {
	Hashtag string  `json:"hashtag"`
	Views   float64 `json:"views"`
}

type TrendResponse struct {
	Envelope
	Platform     string       `json:"platform"`
	CountryCode  string       `json:"country_code"`
	StartDate    string       `json:"start_date"`
	EndDate      string       `json:"end_date"`
	TrendTypes   []TrendViews `json:"trend_types"`
	TopTrendType string       `json:"top_trend_type"`
	Labels       []string     `json:"labels"`
	Values       []float64    `json:"values"`
}

type TrendViews struct {
	TrendType string  `json:"trend_type"`
	Views     float64 `json:"views"`
}

type TimingResponse struct {
	Envelope
	Platform      string      `json:"platform"`
	TimeAnalysis  string      `json:"time_analysis"`
	PeriodDisplay string      `json:"period_display"`
	Data          *TimingData `json:"data"`
}

// TimingData holds one of three shapes: Hours (Hourly), Periods (Day Parts)
// or Days (Week Analysis), each aligned with the rate slices.
type TimingData struct {
	Hours           []int     `json:"hours"`
	Periods         []string  `json:"periods"`
	Days            []string  `json:"days"`
	EngagementRates []float64 `json:"engagement_rates"`
	CompletionRates []float64 `json:"completion_rates"`
	EngDiffPct      []float64 `json:"eng_diff_pct"`
	ContentCounts   []int64   `json:"content_counts"`
	PeakHour        *int      `json:"peak_hour"`
	ValleyHour      *int      `json:"valley_hour"`
}

type CreatorResponse struct {
	Envelope
	Platform     string       `json:"platform"`
	CreatorScope string       `json:"creator_scope"`
	TimeFrame    string       `json:"time_frame"`
	Data         *CreatorData `json:"data"`
}

type CreatorData struct {
	Tiers        []string       `json:"tiers"`
	TierViews    []float64      `json:"tier_views"`
	TierPct      []float64      `json:"tier_pct"`
	TierCounts   []int64        `json:"tier_counts"`
	TierAvgViews []float64      `json:"tier_avg_views"`
	MonthlyTrend []MonthlyViews `json:"monthly_trend"`
}

type MonthlyViews struct {
	Month string  `json:"month"`
	Views float64 `json:"views"`
	Count int64   `json:"count"`
}

type RegionResponse struct {
	Envelope
	Region string      `json:"region"`
	Data   *RegionData `json:"data"`
}

type RegionData struct {
	TikTokTop  []CategoryEngagement `json:"tiktok_top"`
	YouTubeTop []CategoryEngagement `json:"youtube_top"`
}

type CategoryEngagement struct {
	Category   string  `json:"category"`
	Engagement float64 `json:"engagement"`
}

type DominanceResponse struct {
	Envelope
	CountryCode string         `json:"country_code"`
	CountryName string         `json:"country_name"`
	Data        *DominanceData `json:"data"`
}

type DominanceData struct {
	Comparison *Comparison `json:"comparison"`
	Radar      *Radar      `json:"radar"`
}

// Comparison aligns TikTok and YouTube values with Metrics by index.
type Comparison struct {
	Metrics []string  `json:"metrics"`
	TikTok  []float64 `json:"tiktok"`
	YouTube []float64 `json:"youtube"`
}

type Radar struct {
	Indicators []RadarIndicator `json:"indicators"`
	TikTok     []float64        `json:"tikTok"`
	YouTube    []float64        `json:"youTube"`
}

type RadarIndicator struct {
	Name string  `json:"name"`
	Max  float64 `json:"max"`
}
