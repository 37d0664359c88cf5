package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
)

// ActiveScanService drives active scan jobs
type ActiveScanService struct {
	jobController
}

// NewActiveScanService creates a new ActiveScanService instance
func NewActiveScanService(engine port.Engine, logger port.Logger) *ActiveScanService {
	return &ActiveScanService{jobController{engine: engine, logger: logger, kind: model.JobKindActiveScan}}
}

// Start applies the scan options and starts an active scan of targetURL.
// Crawl-only options are ignored.
func (s *ActiveScanService) Start(ctx context.Context, targetURL string, opts model.JobOptions) (model.Job, error) {
	if err := requireValue("target url", targetURL); err != nil {
		return model.Job{}, err
	}
	if err := s.validateExclusions(opts.Exclusions); err != nil {
		return model.Job{}, err
	}
	caps := s.engine.Capabilities()
	if opts.ContextID != "" {
		if err := s.requireCapability(caps.ActiveScanContext, "scanning within a context"); err != nil {
			return model.Job{}, err
		}
	}

	if err := s.submitExclusions(ctx, opts.Exclusions); err != nil {
		return model.Job{}, err
	}
	if opts.ThreadCount > 0 {
		if err := s.setOption(ctx, "ThreadPerHost", "Integer", itoa(opts.ThreadCount)); err != nil {
			return model.Job{}, err
		}
	}

	params := url.Values{
		"url":            {targetURL},
		"recurse":        {"true"},
		"inScopeOnly":    {strconv.FormatBool(opts.InScopeOnly)},
		"scanPolicyName": {opts.ScanPolicy},
	}
	if caps.ActiveScanContext {
		params.Set("contextId", opts.ContextID)
	}

	job, err := s.start(ctx, targetURL, params)
	if err != nil {
		return model.Job{}, err
	}
	job.ContextName = opts.ContextName
	return job, nil
}

// Results is not available for active scans; findings are read as alerts
func (s *ActiveScanService) Results(ctx context.Context, id int) (model.CrawlResults, error) {
	return model.CrawlResults{}, model.NewUsageError("active scan %d has no result list, read its findings from the alerts", id)
}

// Ensure ActiveScanService implements port.JobController
var _ port.JobController = (*ActiveScanService)(nil)
