package panels

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/seuros/vidpulse/internal/view"
)

var nowFunc = time.Now

// Platform selection controls refreshed by the platform loader.
var platformSelects = []string{
	"global-platform",
	"hashtag-platform",
	"trend-platform",
	"publish-platform",
	"creator-platform",
}

const platformSentinel = "Select platform"

const (
	listPlatforms  = "platforms-list"
	listCountries  = "countries-list"
	listYearMonths = "year-months-list"
)

var loaderLists = []string{listPlatforms, listCountries, listYearMonths}

// Dashboard is the server-side state of one open page.
type Dashboard struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	containers map[string]*view.Container
	selects    map[string]*view.Select
	sequencers map[string]*Sequencer

	lastSeen atomic.Int64
	closed   atomic.Bool
}

func newDashboard(id string) *Dashboard {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dashboard{
		id:         id,
		ctx:        ctx,
		cancel:     cancel,
		containers: make(map[string]*view.Container),
		selects:    make(map[string]*view.Select),
		sequencers: make(map[string]*Sequencer),
	}
	for _, p := range panelDefs {
		d.containers[p.container] = view.NewContainer(p.container)
		d.sequencers[p.name] = &Sequencer{}
	}
	for _, list := range loaderLists {
		d.containers[list] = view.NewContainer(list)
	}
	for _, id := range platformSelects {
		d.selects[id] = view.NewSelect(id, view.Option{Value: "", Label: platformSentinel})
	}
	d.touch()
	return d
}

func (d *Dashboard) ID() string {
	return d.id
}

// Container returns the mount point with the given element id.
func (d *Dashboard) Container(id string) *view.Container {
	return d.containers[id]
}

// Select returns the selection control with the given element id.
func (d *Dashboard) Select(id string) *view.Select {
	return d.selects[id]
}

// PanelContainer returns the result container of a panel.
func (d *Dashboard) PanelContainer(panel string) (*view.Container, bool) {
	def, ok := lookupPanel(panel)
	if !ok {
		return nil, false
	}
	return d.containers[def.container], true
}

func (d *Dashboard) touch() {
	d.lastSeen.Store(nowFunc().UnixNano())
}

// LastSeen reports when the page last talked to the server.
func (d *Dashboard) LastSeen() time.Time {
	return time.Unix(0, d.lastSeen.Load())
}

// Close cancels every rotation and disposes every chart. It is safe to call
// more than once.
func (d *Dashboard) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	d.cancel()
	for _, c := range d.containers {
		c.Close()
	}
}

func (d *Dashboard) Closed() bool {
	return d.closed.Load()
}

// Registry tracks open dashboards by page id.
type Registry struct {
	mu    sync.Mutex
	pages map[string]*Dashboard
	live  func(page string) bool
}

func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]*Dashboard)}
}

// Open creates a dashboard with a fresh page id.
func (r *Registry) Open() *Dashboard {
	d := newDashboard(uuid.NewString())
	r.mu.Lock()
	r.pages[d.id] = d
	r.mu.Unlock()
	return d
}

// KeepLive makes Sweep spare dashboards for which live reports true, such as
// pages with an attached stream. live is called without the registry lock.
func (r *Registry) KeepLive(live func(page string) bool) {
	r.mu.Lock()
	r.live = live
	r.mu.Unlock()
}

// Get returns the dashboard for id and marks it as active.
func (r *Registry) Get(id string) (*Dashboard, bool) {
	r.mu.Lock()
	d, ok := r.pages[id]
	r.mu.Unlock()
	if ok {
		d.touch()
	}
	return d, ok
}

// Close removes and closes the dashboard for id.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	d, ok := r.pages[id]
	delete(r.pages, id)
	r.mu.Unlock()
	if ok {
		d.Close()
	}
	return ok
}

// Len returns the number of open dashboards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Sweep closes dashboards idle for longer than ttl and returns how many were
// closed. Live dashboards are marked as seen instead.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := nowFunc().Add(-ttl)
	var stale []*Dashboard

	r.mu.Lock()
	for _, d := range r.pages {
		if d.LastSeen().Before(cutoff) {
			stale = append(stale, d)
		}
	}
	live := r.live
	r.mu.Unlock()

	var idle []*Dashboard
	for _, d := range stale {
		if live != nil && live(d.id) {
			d.touch()
			continue
		}
		r.mu.Lock()
		if cur, ok := r.pages[d.id]; ok && cur == d && d.LastSeen().Before(cutoff) {
			delete(r.pages, d.id)
			idle = append(idle, d)
		}
		r.mu.Unlock()
	}

	for _, d := range idle {
		d.Close()
	}
	return len(idle)
}
