package panels

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/vidpulse/internal/reportapi"
	"github.com/seuros/vidpulse/internal/view"
)

func TestSequencerLatestTokenWins(t *testing.T) {
	var seq Sequencer
	first := seq.Next(nil)
	second := seq.Next(nil)

	assert.Equal(t, second, seq.Current())
	assert.False(t, seq.Commit(first, func() { t.Fatal("stale commit ran") }))

	ran := false
	assert.True(t, seq.Commit(second, func() { ran = true }))
	assert.True(t, ran)
}

func TestSequencerConcurrentNext(t *testing.T) {
	var seq Sequencer
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq.Next(nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), seq.Current())
}

func TestRegistryOpenGetClose(t *testing.T) {
	registry := NewRegistry()
	d := registry.Open()

	_, err := uuid.Parse(d.ID())
	require.NoError(t, err)

	got, ok := registry.Get(d.ID())
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Equal(t, 1, registry.Len())

	assert.True(t, registry.Close(d.ID()))
	assert.True(t, d.Closed())
	assert.False(t, registry.Close(d.ID()))
	_, ok = registry.Get(d.ID())
	assert.False(t, ok)
}

func TestDashboardHasEveryMountPoint(t *testing.T) {
	d := NewRegistry().Open()
	defer d.Close()

	for _, name := range Names() {
		c, ok := d.PanelContainer(name)
		require.True(t, ok, name)
		assert.NotNil(t, c)
	}
	for _, id := range platformSelects {
		require.NotNil(t, d.Select(id), id)
	}
	assert.NotNil(t, d.Container(listCountries))
	_, ok := d.PanelContainer("nope")
	assert.False(t, ok)
}

func TestSweepClosesIdleDashboards(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base
	nowFunc = func() time.Time { return current }
	defer func() { nowFunc = time.Now }()

	registry := NewRegistry()
	idle := registry.Open()
	current = base.Add(20 * time.Minute)
	active := registry.Open()

	current = base.Add(31 * time.Minute)
	closed := registry.Sweep(30 * time.Minute)

	assert.Equal(t, 1, closed)
	assert.True(t, idle.Closed())
	assert.False(t, active.Closed())
	assert.Equal(t, 1, registry.Len())
}

func TestSweepSparesLiveDashboards(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base
	nowFunc = func() time.Time { return current }
	defer func() { nowFunc = time.Now }()

	registry := NewRegistry()
	watched := registry.Open()
	idle := registry.Open()

	streaming := map[string]bool{watched.ID(): true}
	var mu sync.Mutex
	registry.KeepLive(func(page string) bool {
		mu.Lock()
		defer mu.Unlock()
		return streaming[page]
	})

	current = base.Add(31 * time.Minute)
	assert.Equal(t, 1, registry.Sweep(30*time.Minute))
	assert.True(t, idle.Closed())
	assert.False(t, watched.Closed())
	assert.True(t, current.Equal(watched.LastSeen()))

	_, ok := registry.Get(watched.ID())
	assert.True(t, ok)

	mu.Lock()
	streaming[watched.ID()] = false
	mu.Unlock()
	current = base.Add(62 * time.Minute)
	assert.Equal(t, 1, registry.Sweep(30*time.Minute))
	assert.True(t, watched.Closed())
	assert.Equal(t, 0, registry.Len())
}

func TestSweeperStartStop(t *testing.T) {
	registry := NewRegistry()
	d := registry.Open()
	d.lastSeen.Store(time.Now().Add(-time.Hour).UnixNano())

	sweeper := NewSweeper(registry, time.Minute, 5*time.Millisecond)
	sweeper.Start()
	require.Eventually(t, d.Closed, time.Second, 5*time.Millisecond)
	sweeper.Stop()
	sweeper.Stop()

	assert.Zero(t, registry.Len())
}

func TestSweeperDisabled(t *testing.T) {
	sweeper := NewSweeper(NewRegistry(), 0, time.Minute)
	sweeper.Start()
	sweeper.Stop()

	NewSweeper(NewRegistry(), time.Minute, time.Minute).Stop()
}

func TestLoadersEmptyMessages(t *testing.T) {
	svc, d := newTestService(t, &fakeAPI{}, nil)

	tests := map[string]string{
		LoaderPlatforms:  "No platform data available",
		LoaderCountries:  "No country/region data available",
		LoaderYearMonths: "No year/month data available",
	}
	for name, message := range tests {
		res, err := svc.RunLoader(context.Background(), d, name)
		require.NoError(t, err)
		assert.Equal(t, `<div class="error-message">`+message+`</div>`, string(res.HTML), name)
		assert.Empty(t, res.Selects)
	}
}

func TestLoadersListEntriesInOrder(t *testing.T) {
	api := &fakeAPI{
		countries: []reportapi.Country{
			{Code: "US", Name: "United States", Region: "North America", Language: "English"},
			{Code: "BR", Name: "Brazil", Region: "South America", Language: "Portuguese"},
		},
		yearMonths: []reportapi.YearMonth{
			{YearMonth: "2025-02", Display: "February 2025"},
			{YearMonth: "2025-01", Display: "January 2025"},
		},
	}
	svc, d := newTestService(t, api, nil)

	res, err := svc.RunLoader(context.Background(), d, LoaderCountries)
	require.NoError(t, err)
	out := string(res.HTML)
	assert.Equal(t, 2, strings.Count(out, `class="list-item"`))
	assert.Contains(t, out, "<strong>US</strong> - United States")
	assert.Contains(t, out, "(North America, English)")
	assert.Less(t, strings.Index(out, "United States"), strings.Index(out, "Brazil"))

	res, err = svc.RunLoader(context.Background(), d, LoaderYearMonths)
	require.NoError(t, err)
	out = string(res.HTML)
	assert.Contains(t, out, "<strong>February 2025</strong>")
	assert.Contains(t, out, "(2025-02)")
	assert.Less(t, strings.Index(out, "February"), strings.Index(out, "January"))
	assert.Equal(t, res.HTML, d.Container(listYearMonths).HTML())
}

func TestPlatformLoaderRepopulatesSelects(t *testing.T) {
	api := &fakeAPI{platforms: []string{"TikTok", "YouTube", "Kuaishou"}}
	svc, d := newTestService(t, api, nil)

	d.Select("global-platform").ReplaceOptions([]string{"Stale"})

	res, err := svc.RunLoader(context.Background(), d, LoaderPlatforms)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(res.HTML), `class="list-item"`))
	require.Len(t, res.Selects, len(platformSelects))

	for _, id := range platformSelects {
		options := d.Select(id).Options()
		require.Len(t, options, 4, id)
		assert.Equal(t, view.Option{Value: "", Label: platformSentinel}, options[0])
		for i, platform := range api.platforms {
			assert.Equal(t, view.Option{Value: platform, Label: platform}, options[i+1])
		}
	}

	oob := string(SelectHTML(d.Select("creator-platform")))
	assert.Contains(t, oob, `id="creator-platform"`)
	assert.Contains(t, oob, `hx-swap-oob="innerHTML"`)
	assert.Contains(t, oob, `<option value="Kuaishou">Kuaishou</option>`)
}

func TestLoaderFailure(t *testing.T) {
	svc, d := newTestService(t, &fakeAPI{err: errors.New("timeout")}, nil)

	res, err := svc.RunLoader(context.Background(), d, LoaderPlatforms)
	require.NoError(t, err)
	assert.Equal(t, `<div class="error-message">Failed to load, please refresh the page and try again</div>`, string(res.HTML))

	_, err = svc.RunLoader(context.Background(), d, "genres")
	assert.ErrorIs(t, err, ErrUnknownLoader)
}

func TestCountryName(t *testing.T) {
	assert.NotEqual(t, "BR", CountryName("br"))
	assert.Equal(t, "United States", CountryName(" us "))
	assert.Equal(t, "ZZ", CountryName("ZZ"))
	assert.Equal(t, "Narnia", CountryName("Narnia"))
}
