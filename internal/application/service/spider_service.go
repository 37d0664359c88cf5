package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
)

// SpiderService drives crawl jobs
type SpiderService struct {
	jobController
}

// NewSpiderService creates a new SpiderService instance
func NewSpiderService(engine port.Engine, logger port.Logger) *SpiderService {
	return &SpiderService{jobController{engine: engine, logger: logger, kind: model.JobKindCrawl}}
}

// Start applies the crawl options and starts a crawl of targetURL
func (s *SpiderService) Start(ctx context.Context, targetURL string, opts model.JobOptions) (model.Job, error) {
	if err := requireValue("target url", targetURL); err != nil {
		return model.Job{}, err
	}
	if err := s.validateExclusions(opts.Exclusions); err != nil {
		return model.Job{}, err
	}
	caps := s.engine.Capabilities()
	if opts.ContextName != "" || opts.SubtreeOnly {
		if err := s.requireCapability(caps.SpiderContext, "crawling within a context"); err != nil {
			return model.Job{}, err
		}
	}

	if err := s.submitExclusions(ctx, opts.Exclusions); err != nil {
		return model.Job{}, err
	}
	if opts.MaxDepth > 0 {
		if err := s.setOption(ctx, "MaxDepth", "Integer", itoa(opts.MaxDepth)); err != nil {
			return model.Job{}, err
		}
	}
	if opts.SubmitForms != nil {
		if err := s.setOption(ctx, "PostForm", "Boolean", strconv.FormatBool(*opts.SubmitForms)); err != nil {
			return model.Job{}, err
		}
	}
	if opts.ThreadCount > 0 {
		if err := s.setOption(ctx, "ThreadCount", "Integer", itoa(opts.ThreadCount)); err != nil {
			return model.Job{}, err
		}
	}

	params := url.Values{
		"url":     {targetURL},
		"recurse": {strconv.FormatBool(opts.Recurse)},
	}
	if opts.MaxChildren > 0 {
		params.Set("maxChildren", itoa(opts.MaxChildren))
	}
	if caps.SpiderContext {
		params.Set("contextName", opts.ContextName)
		params.Set("subtreeOnly", strconv.FormatBool(opts.SubtreeOnly))
	}

	job, err := s.start(ctx, targetURL, params)
	if err != nil {
		return model.Job{}, err
	}
	job.ContextName = opts.ContextName
	return job, nil
}

// Results returns the URLs found so far. Results read before the crawl
// reached 100% are marked partial.
func (s *SpiderService) Results(ctx context.Context, id int) (model.CrawlResults, error) {
	progress, err := s.Progress(ctx, id)
	if err != nil {
		return model.CrawlResults{}, err
	}

	resp, err := s.engine.Call(ctx, model.View(s.component(), "results", scanParams(id)))
	if err != nil {
		return model.CrawlResults{}, err
	}
	urls, err := resp.List("results")
	if err != nil {
		return model.CrawlResults{}, err
	}
	return model.CrawlResults{JobID: id, URLs: urls, Partial: progress < 100}, nil
}

// Ensure SpiderService implements port.CrawlController
var _ port.CrawlController = (*SpiderService)(nil)
