// Package view holds the server-side model of the dashboard page: result
// containers, selection controls and the chart instances mounted in them.
package view

import (
	"context"
	"html/template"
	"sync"
)

// Chart is one chart instance bound to a mount id.
type Chart struct {
	id string

	mu       sync.Mutex
	option   string
	disposed bool
}

// NewChart binds option to the mount id.
func NewChart(id, option string) *Chart {
	return &Chart{id: id, option: option}
}

func (c *Chart) ID() string {
	return c.id
}

// Option returns the current option document.
func (c *Chart) Option() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.option
}

// SetOption replaces the option document. It reports false once the chart
// has been disposed.
func (c *Chart) SetOption(option string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return false
	}
	c.option = option
	return true
}

// Dispose releases the chart. Calling it more than once is a no-op.
func (c *Chart) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
}

// Disposed reports whether Dispose has been called.
func (c *Chart) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Container is a result mount point. It owns the charts rendered into it and
// at most one background task (the rotation), which it cancels whenever its
// content is reset.
type Container struct {
	id string

	mu     sync.Mutex
	html   template.HTML
	charts []*Chart
	cancel context.CancelFunc
}

// NewContainer returns an empty container for the element with id.
func NewContainer(id string) *Container {
	return &Container{id: id}
}

func (c *Container) ID() string {
	return c.id
}

// HTML returns the current fragment.
func (c *Container) HTML() template.HTML {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html
}

// Charts returns the charts currently mounted.
func (c *Container) Charts() []*Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Chart(nil), c.charts...)
}

// Reset disposes every mounted chart and cancels the owned task. The HTML is
// left in place.
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Replace resets the container and installs new content.
func (c *Container) Replace(html template.HTML, charts ...*Chart) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.html = html
	c.charts = append([]*Chart(nil), charts...)
}

func (c *Container) resetLocked() {
	for _, chart := range c.charts {
		chart.Dispose()
	}
	c.charts = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Own derives a context from parent that is canceled by the next Reset,
// Replace or Close. A previously owned task is canceled first.
func (c *Container) Own(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	return ctx, cancel
}

// Guard runs fn while holding the container lock, but only if ctx is still
// live. A cancel issued by Reset cannot interleave with fn.
func (c *Container) Guard(ctx context.Context, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Close resets the container and drops its HTML.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.html = ""
}

// Option is one entry of a Select.
type Option struct {
	Value string
	Label string
}

// Select is a selection control whose first option is a fixed sentinel.
type Select struct {
	id       string
	sentinel Option

	mu      sync.Mutex
	options []Option
}

// NewSelect returns a control holding only its sentinel option.
func NewSelect(id string, sentinel Option) *Select {
	return &Select{id: id, sentinel: sentinel}
}

func (s *Select) ID() string {
	return s.id
}

// ReplaceOptions drops every option after the sentinel and appends one option
// per item, using the item as both value and label.
func (s *Select) ReplaceOptions(items []string) {
	opts := make([]Option, 0, len(items))
	for _, item := range items {
		opts = append(opts, Option{Value: item, Label: item})
	}
	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()
}

// Options returns the sentinel followed by the current options.
func (s *Select) Options() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Option, 0, len(s.options)+1)
	out = append(out, s.sentinel)
	return append(out, s.options...)
}
