package panels

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seuros/vidpulse/internal/charts"
	"github.com/seuros/vidpulse/internal/logging"
	"github.com/seuros/vidpulse/internal/reportapi"
	"github.com/seuros/vidpulse/internal/view"
)

// rotation cycles the dominance comparison chart through its metrics.
type rotation struct {
	comp    *reportapi.Comparison
	country string
	chart   *view.Chart
	index   int
}

// advance moves to the next metric and re-draws the chart. It reports false
// once the chart has been disposed.
func (r *rotation) advance() bool {
	r.index = (r.index + 1) % len(r.comp.Metrics)
	return r.chart.SetOption(charts.DominanceComparison(r.comp, r.index, r.country))
}

// startRotation ties a rotation to container. The container cancels it on
// its next reset, and the dashboard's close cancels every rotation.
func (s *Service) startRotation(d *Dashboard, container *view.Container, rot *rotation) {
	if len(rot.comp.Metrics) < 2 {
		return
	}
	ctx, _ := container.Own(d.ctx)
	go s.rotate(ctx, d.id, container, rot, s.opts.RotationInterval)
}

func (s *Service) rotate(ctx context.Context, page string, container *view.Container, rot *rotation, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		live := container.Guard(ctx, func() {
			if !rot.advance() {
				return
			}
			frame, err := charts.Frame(rot.chart)
			if err != nil {
				logging.L().Warn("failed to encode rotation frame", zap.String("page", page), zap.Error(err))
				return
			}
			s.pub.Publish(page, frame)
		})
		if !live {
			return
		}
	}
}
