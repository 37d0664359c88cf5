package service

import (
	"context"
	"net/url"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
)

// AlertService reads findings and renders engine reports
type AlertService struct {
	engine port.Engine
	logger port.Logger
}

// NewAlertService creates a new AlertService instance
func NewAlertService(engine port.Engine, logger port.Logger) *AlertService {
	return &AlertService{
		engine: engine,
		logger: logger,
	}
}

// Count returns the number of findings
func (s *AlertService) Count(ctx context.Context) (int, error) {
	resp, err := s.engine.Call(ctx, model.View("core", "numberOfAlerts", url.Values{"baseurl": {""}}))
	if err != nil {
		return 0, err
	}
	return resp.Int("numberOfAlerts")
}

// Alerts returns findings in engine order. A nil range returns everything.
func (s *AlertService) Alerts(ctx context.Context, rng *model.Range) ([]model.Alert, error) {
	params := url.Values{"baseurl": {""}}
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return nil, err
		}
		total, err := s.Count(ctx)
		if err != nil {
			return nil, err
		}
		offset, count, ok := window(*rng, total)
		if !ok {
			return []model.Alert{}, nil
		}
		params.Set("start", itoa(offset))
		params.Set("count", itoa(count))
	}

	resp, err := s.engine.Call(ctx, model.View("core", "alerts", params))
	if err != nil {
		return nil, err
	}
	sets, err := resp.Sets("alerts")
	if err != nil {
		return nil, err
	}

	alerts := make([]model.Alert, 0, len(sets))
	for _, attrs := range sets {
		alerts = append(alerts, model.ParseAlert(attrs))
	}
	return alerts, nil
}

// DeleteAll removes every finding
func (s *AlertService) DeleteAll(ctx context.Context) error {
	if _, err := s.engine.Call(ctx, model.Action("core", "deleteAllAlerts", nil)); err != nil {
		return err
	}
	s.logger.Info("All alerts deleted")
	return nil
}

// Report renders the current findings in the given format
func (s *AlertService) Report(ctx context.Context, format model.ReportFormat) ([]byte, error) {
	var name string
	switch format {
	case model.ReportXML:
		name = "xmlreport"
	case model.ReportHTML:
		name = "htmlreport"
	default:
		return nil, model.NewUsageError("unsupported report format %q", format)
	}

	resp, err := s.engine.Call(ctx, model.Other("core", name, nil))
	if err != nil {
		return nil, err
	}
	return resp.Bytes(), nil
}

// XMLReport renders the current findings as XML
func (s *AlertService) XMLReport(ctx context.Context) ([]byte, error) {
	return s.Report(ctx, model.ReportXML)
}

// HTMLReport renders the current findings as HTML
func (s *AlertService) HTMLReport(ctx context.Context) ([]byte, error) {
	return s.Report(ctx, model.ReportHTML)
}

// Ensure AlertService implements port.AlertAggregator
var _ port.AlertAggregator = (*AlertService)(nil)
