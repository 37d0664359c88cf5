package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	domain "github.com/haxorport/zapscan-go-client/internal/domain/service"
)

// HistoryService reads, searches and replays the engine's traffic history
type HistoryService struct {
	engine port.Engine
	logger port.Logger
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(engine port.Engine, logger port.Logger) *HistoryService {
	return &HistoryService{
		engine: engine,
		logger: logger,
	}
}

// Count returns the number of messages in the history
func (s *HistoryService) Count(ctx context.Context) (int, error) {
	resp, err := s.engine.Call(ctx, model.View("core", "numberOfMessages", nil))
	if err != nil {
		return 0, err
	}
	return resp.Int("numberOfMessages")
}

// History returns the captured traffic. A nil range returns everything; a
// range starting past the end returns an empty slice.
func (s *HistoryService) History(ctx context.Context, rng *model.Range) ([]model.TrafficEntry, error) {
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
			return []model.TrafficEntry{}, nil
		}
		// Message positions are 1-based on the engine.
		params.Set("start", itoa(offset+1))
		params.Set("count", itoa(count))
	}

	caps := s.engine.Capabilities()
	resp, err := s.engine.Call(ctx, model.Other(caps.HARComponent, caps.HARExport, params))
	if err != nil {
		return nil, err
	}
	return domain.DecodeHAR(caps.HARComponent, caps.HARExport, resp.Bytes())
}

// FindInRequestHistory returns the entries whose request matches expr
func (s *HistoryService) FindInRequestHistory(ctx context.Context, expr string) ([]model.TrafficEntry, error) {
	re, err := domain.CompilePattern(expr)
	if err != nil {
		return nil, err
	}
	entries, err := s.History(ctx, nil)
	if err != nil {
		return nil, err
	}
	return domain.FilterRequests(entries, re)
}

// FindInResponseHistory returns the entries whose response matches expr
func (s *HistoryService) FindInResponseHistory(ctx context.Context, expr string) ([]model.TrafficEntry, error) {
	re, err := domain.CompilePattern(expr)
	if err != nil {
		return nil, err
	}
	entries, err := s.History(ctx, nil)
	if err != nil {
		return nil, err
	}
	return domain.FilterResponses(entries, re)
}

// FilterRequests matches expr against the requests of caller supplied entries
func (s *HistoryService) FilterRequests(entries []model.TrafficEntry, expr string) ([]model.TrafficEntry, error) {
	re, err := domain.CompilePattern(expr)
	if err != nil {
		return nil, err
	}
	return domain.FilterRequests(entries, re)
}

// FilterResponses matches expr against the responses of caller supplied entries
func (s *HistoryService) FilterResponses(entries []model.TrafficEntry, expr string) ([]model.TrafficEntry, error) {
	re, err := domain.CompilePattern(expr)
	if err != nil {
		return nil, err
	}
	return domain.FilterResponses(entries, re)
}

// Replay sends req through the engine. Every exchange in the returned log is
// returned, so redirects show up as separate entries.
func (s *HistoryService) Replay(ctx context.Context, req model.Request, followRedirects bool) ([]model.TrafficEntry, error) {
	if err := requireValue("request url", req.URL); err != nil {
		return nil, err
	}
	if req.Method == "" {
		req.Method = "GET"
	}
	if req.HTTPVersion == "" {
		req.HTTPVersion = "HTTP/1.1"
	}

	payload, err := domain.EncodeHARRequest(req)
	if err != nil {
		return nil, model.NewUsageError("%v", err)
	}

	caps := s.engine.Capabilities()
	resp, err := s.engine.Call(ctx, model.Other(caps.HARComponent, "sendHarRequest", url.Values{
		"request":         {string(payload)},
		"followRedirects": {strconv.FormatBool(followRedirects)},
	}))
	if err != nil {
		return nil, err
	}

	entries, err := domain.DecodeHAR(caps.HARComponent, "sendHarRequest", resp.Bytes())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Replayed %s %s: %d exchanges", req.Method, req.URL, len(entries))
	return entries, nil
}

// Clear removes every engine job and starts a new session, dropping the history
func (s *HistoryService) Clear(ctx context.Context, opts model.NewSessionOptions) error {
	reset := "removeAllScans"
	if !s.engine.Capabilities().RemoveAllScans {
		reset = "stopAllScans"
	}
	for _, component := range []string{model.JobKindCrawl.Component(), model.JobKindActiveScan.Component()} {
		if _, err := s.engine.Call(ctx, model.Action(component, reset, nil)); err != nil {
			return fmt.Errorf("failed to reset %s jobs: %w", component, err)
		}
	}

	_, err := s.engine.Call(ctx, model.Action("core", "newSession", url.Values{
		"name":      {opts.Name},
		"overwrite": {strconv.FormatBool(opts.Overwrite)},
	}))
	if err != nil {
		return fmt.Errorf("failed to start a new session: %w", err)
	}

	s.logger.Info("History cleared, new session %q", opts.Name)
	return nil
}

// Ensure HistoryService implements port.TrafficArchive
var _ port.TrafficArchive = (*HistoryService)(nil)
