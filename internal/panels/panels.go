// Package panels runs the dashboard's report panels and reference-data
// loaders against the report backend and renders their fragments.
package panels

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seuros/vidpulse/internal/logging"
	"github.com/seuros/vidpulse/internal/reportapi"
	"github.com/seuros/vidpulse/internal/view"
)

var (
	// ErrStale is returned when a newer run of the same panel was started
	// while the request was pending. The container was not touched.
	ErrStale = errors.New("panels: superseded by a newer request")
	// ErrUnknownPanel is returned for a panel name that does not exist.
	ErrUnknownPanel = errors.New("panels: unknown panel")
	// ErrUnknownLoader is returned for a loader name that does not exist.
	ErrUnknownLoader = errors.New("panels: unknown loader")
)

// ValidationError reports missing required fields. No request was sent.
type ValidationError struct {
	Panel   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Panel + ": " + e.Message
}

// Fields holds the submitted form values of a panel.
type Fields map[string]string

func (f Fields) get(key string) string {
	return strings.TrimSpace(f[key])
}

// Report is a decoded panel response.
type Report interface {
	BackendError() string
	Markup(fallback string) string
}

// Publisher delivers realtime frames to the page with the given id. Publish
// is called with the owning container locked and must not block.
type Publisher interface {
	Publish(page string, msg []byte)
}

type discardPublisher struct{}

func (discardPublisher) Publish(string, []byte) {}

// Options tunes rendering.
type Options struct {
	// ChartDelay is how long the page waits before mounting a chart.
	ChartDelay time.Duration
	// RotationInterval is the dominance chart's metric rotation period.
	RotationInterval time.Duration
}

// Service runs panels and loaders for dashboards.
type Service struct {
	api  reportapi.API
	pub  Publisher
	opts Options
}

// NewService wires the report API and realtime publisher. A nil publisher
// drops rotation frames.
func NewService(api reportapi.API, pub Publisher, opts Options) *Service {
	if pub == nil {
		pub = discardPublisher{}
	}
	if opts.RotationInterval <= 0 {
		opts.RotationInterval = 2 * time.Second
	}
	return &Service{api: api, pub: pub, opts: opts}
}

// RunPanel validates f, runs the panel's request and installs the outcome in
// the panel's container. It returns the container's new fragment.
//
// Validation failures, backend errors and transport failures all end up in
// the fragment; the only errors returned are ErrUnknownPanel and ErrStale.
func (s *Service) RunPanel(ctx context.Context, d *Dashboard, panel string, f Fields) (template.HTML, error) {
	def, ok := lookupPanel(panel)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPanel, panel)
	}
	container := d.containers[def.container]
	seq := d.sequencers[def.name]
	f = def.resolve(f)

	if verr := def.validate(f); verr != nil {
		html := errorHTML(verr.Message)
		seq.Next(func() { container.Replace(html) })
		return html, nil
	}

	token := seq.Next(func() { container.Replace(loadingHTML(def.loading)) })

	var (
		html template.HTML
		out  *output
	)
	resp, err := def.fetch(ctx, s.api, f)
	switch {
	case err != nil:
		logging.L().Error("panel request failed",
			zap.String("panel", def.name),
			zap.String("page", d.id),
			zap.Error(err),
		)
		html = errorHTML(def.failure)
	case resp.BackendError() != "":
		html = errorHTML(resp.BackendError())
	default:
		out = def.render(s, resp, f)
		html = render("report", out.view)
	}

	var mounted []*view.Chart
	if out != nil {
		mounted = out.charts
	}
	committed := seq.Commit(token, func() {
		container.Replace(html, mounted...)
		if out != nil && out.rotation != nil {
			s.startRotation(d, container, out.rotation)
		}
	})
	if !committed {
		for _, chart := range mounted {
			chart.Dispose()
		}
		return "", ErrStale
	}
	return html, nil
}

// Fetch runs a panel's request without a dashboard. It returns a
// *ValidationError when required fields are missing.
func Fetch(ctx context.Context, api reportapi.API, panel string, f Fields) (Report, error) {
	def, ok := lookupPanel(panel)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPanel, panel)
	}
	f = def.resolve(f)
	if verr := def.validate(f); verr != nil {
		return nil, verr
	}
	return def.fetch(ctx, api, f)
}

// Names lists the panels in page order.
func Names() []string {
	names := make([]string, 0, len(panelDefs))
	for _, p := range panelDefs {
		names = append(names, p.name)
	}
	return names
}

// FieldNames returns the form fields a panel reads.
func FieldNames(panel string) ([]string, bool) {
	def, ok := lookupPanel(panel)
	if !ok {
		return nil, false
	}
	return append([]string(nil), def.fields...), true
}

// LoadingText returns the pending-state text the page shows while the panel
// runs.
func LoadingText(panel string) (string, bool) {
	def, ok := lookupPanel(panel)
	if !ok {
		return "", false
	}
	return def.loading, true
}

func lookupPanel(name string) (*panelDef, bool) {
	for i := range panelDefs {
		if panelDefs[i].name == name {
			return &panelDefs[i], true
		}
	}
	return nil, false
}

func (p *panelDef) resolve(f Fields) Fields {
	out := make(Fields, len(p.fields))
	for _, key := range p.fields {
		v := f.get(key)
		if v == "" {
			v = p.defaults[key]
		}
		out[key] = v
	}
	return out
}

func (p *panelDef) validate(f Fields) *ValidationError {
	for _, key := range p.required {
		if f.get(key) == "" {
			return &ValidationError{Panel: p.name, Message: p.validation}
		}
	}
	return nil
}
