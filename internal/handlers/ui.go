// Package handlers serves the dashboard page and the fragment routes its
// panels talk to.
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/gofiber/contrib/v3/websocket"
	"github.com/gofiber/fiber/v3"

	"github.com/seuros/vidpulse/internal/httpx"
	"github.com/seuros/vidpulse/internal/panels"
	"github.com/seuros/vidpulse/internal/realtime"
	"github.com/seuros/vidpulse/internal/reportapi"
)

// Deps wires the UI routes.
type Deps struct {
	Registry *panels.Registry
	Service  *panels.Service
	API      reportapi.API
	Hub      *realtime.Hub
	// Page is the dashboard template.
	Page    []byte
	Version string
}

// UI serves one process-wide set of dashboards.
type UI struct {
	registry *panels.Registry
	service  *panels.Service
	api      reportapi.API
	hub      *realtime.Hub
	page     *template.Template
	version  string
}

// pageData feeds the dashboard template.
type pageData struct {
	PageID  string
	Version string
	Loaders []string
	// Loading maps panel names to their pending-state text.
	Loading map[string]string
}

func NewUI(d Deps) (*UI, error) {
	page, err := template.New("dashboard").Parse(string(d.Page))
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	return &UI{
		registry: d.Registry,
		service:  d.Service,
		api:      d.API,
		hub:      d.Hub,
		page:     page,
		version:  d.Version,
	}, nil
}

// Routes mounts the page, fragment, stream and health routes.
func (u *UI) Routes(r fiber.Router) {
	r.Get("/", u.HandlePage)
	r.Get("/health", u.HandleHealth)
	r.Get("/up", u.HandleUp)
	r.Get("/api/version", u.HandleVersion)

	ui := r.Group("/ui/:" + realtime.PageParam)
	ui.Get("/loaders/:loader", u.HandleLoader)
	ui.Post("/panels/:panel", u.HandlePanel)
	ui.Get("/stream", u.requireStream, u.hub.Handler())
	ui.Delete("/", u.HandleClose)
}

// HandlePage opens a dashboard and renders the page bound to it.
func (u *UI) HandlePage(c fiber.Ctx) error {
	d := u.registry.Open()

	var buf bytes.Buffer
	if err := u.page.Execute(&buf, pageData{
		PageID:  d.ID(),
		Version: u.version,
		Loaders: panels.LoaderNames(),
		Loading: loadingTexts(),
	}); err != nil {
		u.registry.Close(d.ID())
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to render dashboard")
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	c.Set("Cache-Control", "no-store")
	return c.Send(buf.Bytes())
}

func (u *UI) dashboard(c fiber.Ctx) (*panels.Dashboard, bool) {
	return u.registry.Get(c.Params(realtime.PageParam))
}

// HandleLoader runs one reference-data loader. The platform loader also
// returns the refreshed platform selects as out-of-band swaps.
// GET /ui/:page/loaders/:loader
func (u *UI) HandleLoader(c fiber.Ctx) error {
	d, ok := u.dashboard(c)
	if !ok {
		return httpx.Error(c, fiber.StatusNotFound, "Dashboard not found")
	}

	res, err := u.service.RunLoader(c.Context(), d, c.Params("loader"))
	if errors.Is(err, panels.ErrUnknownLoader) {
		return httpx.Error(c, fiber.StatusNotFound, "Loader not found")
	}
	if err != nil {
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to load")
	}

	var buf bytes.Buffer
	buf.WriteString(string(res.HTML))
	for _, sel := range res.Selects {
		buf.WriteString(string(panels.SelectHTML(sel)))
	}
	return sendFragment(c, buf.Bytes())
}

// HandlePanel runs a report panel with the submitted form.
// POST /ui/:page/panels/:panel
func (u *UI) HandlePanel(c fiber.Ctx) error {
	d, ok := u.dashboard(c)
	if !ok {
		return httpx.Error(c, fiber.StatusNotFound, "Dashboard not found")
	}

	panel := c.Params("panel")
	names, ok := panels.FieldNames(panel)
	if !ok {
		return httpx.Error(c, fiber.StatusNotFound, "Panel not found")
	}
	fields := make(panels.Fields, len(names))
	for _, name := range names {
		fields[name] = c.FormValue(name)
	}

	html, err := u.service.RunPanel(c.Context(), d, panel, fields)
	switch {
	case errors.Is(err, panels.ErrStale):
		// A newer run owns the container; leave the page untouched.
		c.Set("HX-Reswap", "none")
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, panels.ErrUnknownPanel):
		return httpx.Error(c, fiber.StatusNotFound, "Panel not found")
	case err != nil:
		return httpx.Error(c, fiber.StatusInternalServerError, "Failed to run panel")
	}
	return sendFragment(c, []byte(html))
}

// HandleClose closes the dashboard when the page goes away.
// DELETE /ui/:page
func (u *UI) HandleClose(c fiber.Ctx) error {
	if !u.registry.Close(c.Params(realtime.PageParam)) {
		return httpx.Error(c, fiber.StatusNotFound, "Dashboard not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// requireStream admits websocket upgrades for open dashboards only.
func (u *UI) requireStream(c fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return httpx.Error(c, fiber.StatusUpgradeRequired, "Websocket upgrade required")
	}
	if _, ok := u.dashboard(c); !ok {
		return httpx.Error(c, fiber.StatusNotFound, "Dashboard not found")
	}
	return c.Next()
}

func loadingTexts() map[string]string {
	texts := make(map[string]string)
	for _, name := range panels.Names() {
		texts[name], _ = panels.LoadingText(name)
	}
	return texts
}

func sendFragment(c fiber.Ctx, body []byte) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(body)
}
