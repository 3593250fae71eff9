// Package format holds the number and text formatting rules shared by the
// report fragments, the chart labels and the CLI output.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Compact abbreviates view counts the way the chart axes do: one decimal
// with an M or K suffix, and the plain value below one thousand.
func Compact(v float64) string {
	switch {
	case v >= 1_000_000:
		return strconv.FormatFloat(v/1_000_000, 'f', 1, 64) + "M"
	case v >= 1_000:
		return strconv.FormatFloat(v/1_000, 'f', 1, 64) + "K"
	default:
		return Plain(v)
	}
}

// CompactBillions is Compact extended with a B suffix (two decimals). Values
// below one thousand are comma grouped.
func CompactBillions(v float64) string {
	switch {
	case v >= 1_000_000_000:
		return strconv.FormatFloat(v/1_000_000_000, 'f', 2, 64) + "B"
	case v >= 1_000:
		return Compact(v)
	default:
		return Comma(v)
	}
}

// Plain renders a number without trailing zeros ("12", "12.5").
func Plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Comma groups the integer part with commas and keeps up to three decimals.
func Comma(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return humanize.Comma(int64(v))
	}
	rounded := math.Round(v*1000) / 1000
	digits := strconv.FormatFloat(math.Abs(rounded), 'f', -1, 64)
	whole, frac, _ := strings.Cut(digits, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return digits
	}
	out := humanize.Comma(n)
	if rounded < 0 {
		out = "-" + out
	}
	if frac == "" {
		return out
	}
	return out + "." + frac
}

// Fixed renders v with exactly n decimals.
func Fixed(v float64, n int) string {
	return strconv.FormatFloat(v, 'f', n, 64)
}

// Percent2 renders a percentage value with two decimals ("12.34%").
func Percent2(v float64) string {
	return Fixed(v, 2) + "%"
}

// SignedPercent renders a relative difference with an explicit plus sign for
// positive values and one decimal ("+1.5%", "-0.3%", "0.0%").
func SignedPercent(d float64) string {
	sign := ""
	if d > 0 {
		sign = "+"
	}
	return sign + Fixed(d, 1) + "%"
}

// CollapseWhitespace joins a multi-line report into a single paragraph.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Platform dominance metric names.
const (
	MetricTotalViews       = "Total Views"
	MetricVideoCount       = "Video Count"
	MetricMedianEngagement = "Median Engagement Rate"
	MetricEngagementPer1k  = "Engagement per 1k Views"
)

// MetricValue formats a dominance comparison value for its metric.
func MetricValue(v float64, metric string) string {
	switch metric {
	case MetricTotalViews, MetricVideoCount:
		if v < 1_000 {
			return Comma(math.Round(v))
		}
		return CompactBillions(v)
	case MetricMedianEngagement:
		return Percent2(v)
	case MetricEngagementPer1k:
		return Fixed(v, 1)
	default:
		return Fixed(v, 2)
	}
}
