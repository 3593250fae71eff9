package view

import (
	"context"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartDisposeIsIdempotent(t *testing.T) {
	chart := NewChart("trend-echart", `{"series":[]}`)
	assert.False(t, chart.Disposed())

	chart.Dispose()
	chart.Dispose()

	assert.True(t, chart.Disposed())
	assert.False(t, chart.SetOption(`{}`))
	assert.Equal(t, `{"series":[]}`, chart.Option())
}

func TestReplaceDisposesPreviousCharts(t *testing.T) {
	c := NewContainer("global-result")
	first := NewChart("global-echart", "{}")
	second := NewChart("global-echart-bar", "{}")
	c.Replace("<p>one</p>", first, second)

	require.Len(t, c.Charts(), 2)

	next := NewChart("global-echart", "{}")
	c.Replace("<p>two</p>", next)

	assert.True(t, first.Disposed())
	assert.True(t, second.Disposed())
	assert.False(t, next.Disposed())
	assert.Equal(t, template.HTML("<p>two</p>"), c.HTML())
	assert.Equal(t, []*Chart{next}, c.Charts())
}

func TestResetKeepsHTMLAndCancelsOwnedTask(t *testing.T) {
	c := NewContainer("pd-extended-result")
	chart := NewChart("pd-comparison-bar", "{}")
	c.Replace("<p>report</p>", chart)

	ctx, cancel := c.Own(context.Background())
	defer cancel()

	c.Reset()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.True(t, chart.Disposed())
	assert.Empty(t, c.Charts())
	assert.Equal(t, template.HTML("<p>report</p>"), c.HTML())
}

func TestOwnCancelsPreviousOwner(t *testing.T) {
	c := NewContainer("pd-extended-result")
	first, cancelFirst := c.Own(context.Background())
	defer cancelFirst()
	second, cancelSecond := c.Own(context.Background())
	defer cancelSecond()

	assert.Error(t, first.Err())
	assert.NoError(t, second.Err())
}

func TestGuardSkipsAfterCancel(t *testing.T) {
	c := NewContainer("pd-extended-result")
	ctx, cancel := c.Own(context.Background())
	defer cancel()

	ran := 0
	assert.True(t, c.Guard(ctx, func() { ran++ }))

	c.Replace("<p>new</p>")
	assert.False(t, c.Guard(ctx, func() { ran++ }))
	assert.Equal(t, 1, ran)
}

func TestCloseClearsEverything(t *testing.T) {
	c := NewContainer("region-ad-result")
	chart := NewChart("region-ad-tiktok", "{}")
	c.Replace("<p>x</p>", chart)
	ctx, cancel := c.Own(context.Background())
	defer cancel()

	c.Close()

	assert.Empty(t, c.HTML())
	assert.True(t, chart.Disposed())
	assert.Error(t, ctx.Err())
}

func TestSelectKeepsSentinel(t *testing.T) {
	s := NewSelect("global-platform", Option{Value: "", Label: "Select platform"})
	assert.Equal(t, []Option{{Value: "", Label: "Select platform"}}, s.Options())

	s.ReplaceOptions([]string{"TikTok", "YouTube"})
	s.ReplaceOptions([]string{"TikTok", "YouTube", "Kuaishou"})

	opts := s.Options()
	require.Len(t, opts, 4)
	assert.Equal(t, "Select platform", opts[0].Label)
	assert.Equal(t, Option{Value: "Kuaishou", Label: "Kuaishou"}, opts[3])

	s.ReplaceOptions(nil)
	assert.Len(t, s.Options(), 1)
}
