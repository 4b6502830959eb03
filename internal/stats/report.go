package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/shapematch/internal/model"
)

// Querier reads every stored result.
type Querier interface {
	QueryAll(ctx context.Context) ([]model.ResultRecord, error)
}

// ReportConfig limits which results feed a report.
type ReportConfig struct {
	Last        int
	CurveWindow int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Average Average
	Records []model.ResultRecord
	Recent  []model.ResultRecord
}

// BuildReport loads results oldest first and prepares them for rendering. The average
// always covers every stored result; Last only trims the recent-games table.
func BuildReport(ctx context.Context, q Querier, cfg ReportConfig) (Report, error) {
	records, err := q.QueryAll(ctx)
	if err != nil {
		return Report{}, err
	}
	recent := records
	if cfg.Last > 0 && len(recent) > cfg.Last {
		recent = recent[len(recent)-cfg.Last:]
	}
	return Report{
		Average: AverageClicks(records),
		Records: records,
		Recent:  recent,
	}, nil
}

// Render writes the full report.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Records); err != nil {
		return err
	}
	if err := RenderCurve(w, r.Records, window, width); err != nil {
		return err
	}
	return RenderRecent(w, r.Recent)
}
