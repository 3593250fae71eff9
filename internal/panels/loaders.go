package panels

import (
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/seuros/vidpulse/internal/logging"
	"github.com/seuros/vidpulse/internal/reportapi"
	"github.com/seuros/vidpulse/internal/view"
)

// Loader names.
const (
	LoaderPlatforms  = "platforms"
	LoaderCountries  = "countries"
	LoaderYearMonths = "year-months"
)

const loadFailure = "Failed to load, please refresh the page and try again"

type loaderDef struct {
	name  string
	list  string
	empty string
	// load returns the rendered list and, for the platform loader, the
	// platforms it listed.
	load func(ctx context.Context, api reportapi.API, empty string) (template.HTML, []string, error)
}

var loaderDefs = []loaderDef{
	{
		name:  LoaderPlatforms,
		list:  listPlatforms,
		empty: "No platform data available",
		load: func(ctx context.Context, api reportapi.API, empty string) (template.HTML, []string, error) {
			platforms, err := api.Platforms(ctx)
			if err != nil {
				return "", nil, err
			}
			if len(platforms) == 0 {
				return errorHTML(empty), nil, nil
			}
			return render("platforms", platforms), platforms, nil
		},
	},
	{
		name:  LoaderCountries,
		list:  listCountries,
		empty: "No country/region data available",
		load: func(ctx context.Context, api reportapi.API, empty string) (template.HTML, []string, error) {
			list, err := api.Countries(ctx)
			if err != nil {
				return "", nil, err
			}
			if len(list) == 0 {
				return errorHTML(empty), nil, nil
			}
			return render("countries", list), nil, nil
		},
	},
	{
		name:  LoaderYearMonths,
		list:  listYearMonths,
		empty: "No year/month data available",
		load: func(ctx context.Context, api reportapi.API, empty string) (template.HTML, []string, error) {
			list, err := api.YearMonths(ctx)
			if err != nil {
				return "", nil, err
			}
			if len(list) == 0 {
				return errorHTML(empty), nil, nil
			}
			return render("year-months", list), nil, nil
		},
	},
}

func lookupLoader(name string) (*loaderDef, bool) {
	for i := range loaderDefs {
		if loaderDefs[i].name == name {
			return &loaderDefs[i], true
		}
	}
	return nil, false
}

// LoaderNames lists the reference-data loaders run on page load.
func LoaderNames() []string {
	names := make([]string, 0, len(loaderDefs))
	for _, l := range loaderDefs {
		names = append(names, l.name)
	}
	return names
}

// LoaderResult is the outcome of a reference-data load.
type LoaderResult struct {
	HTML template.HTML
	// Selects lists the selection controls whose options were replaced.
	Selects []*view.Select
}

// RunLoader fetches one reference list and installs it in its list
// container. Failures end up in the fragment; only ErrUnknownLoader is
// returned.
func (s *Service) RunLoader(ctx context.Context, d *Dashboard, name string) (*LoaderResult, error) {
	def, ok := lookupLoader(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLoader, name)
	}
	container := d.containers[def.list]

	html, platforms, err := def.load(ctx, s.api, def.empty)
	if err != nil {
		logging.L().Error("reference data load failed",
			zap.String("loader", def.name),
			zap.String("page", d.id),
			zap.Error(err),
		)
		html = errorHTML(loadFailure)
		container.Replace(html)
		return &LoaderResult{HTML: html}, nil
	}

	container.Replace(html)
	result := &LoaderResult{HTML: html}
	if len(platforms) > 0 {
		for _, id := range platformSelects {
			sel := d.selects[id]
			sel.ReplaceOptions(platforms)
			result.Selects = append(result.Selects, sel)
		}
	}
	return result, nil
}
