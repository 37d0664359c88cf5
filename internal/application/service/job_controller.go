package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	domain "github.com/haxorport/zapscan-go-client/internal/domain/service"
)

// jobController holds the job operations shared by crawls and active scans
type jobController struct {
	engine port.Engine
	logger port.Logger
	kind   model.JobKind
}

// Kind returns the job class handled by the controller
func (c *jobController) Kind() model.JobKind {
	return c.kind
}

func (c *jobController) component() string {
	return c.kind.Component()
}

// Progress returns the job progress in percent
func (c *jobController) Progress(ctx context.Context, id int) (int, error) {
	resp, err := c.engine.Call(ctx, model.View(c.component(), "status", scanParams(id)))
	if err != nil {
		if model.IsAbsent(err) {
			return 0, c.notFound("status", id)
		}
		return 0, err
	}
	return resp.Int("status")
}

// Jobs lists every job of this class known to the engine
func (c *jobController) Jobs(ctx context.Context) ([]model.ScanStatus, error) {
	resp, err := c.engine.Call(ctx, model.View(c.component(), "scans", nil))
	if err != nil {
		return nil, err
	}
	sets, err := resp.Sets("scans")
	if err != nil {
		return nil, err
	}

	jobs := make([]model.ScanStatus, 0, len(sets))
	for _, attrs := range sets {
		status, err := model.ParseScanStatus(attrs)
		if err != nil {
			var engineErr *model.EngineError
			if errors.As(err, &engineErr) {
				engineErr.Component = c.component()
			}
			return nil, err
		}
		jobs = append(jobs, status)
	}
	return jobs, nil
}

// Status returns the engine view of one job
func (c *jobController) Status(ctx context.Context, id int) (model.ScanStatus, error) {
	jobs, err := c.Jobs(ctx)
	if err != nil {
		return model.ScanStatus{}, err
	}
	for _, job := range jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return model.ScanStatus{}, c.notFound("scans", id)
}

// LastJobID returns the numerically highest job id
func (c *jobController) LastJobID(ctx context.Context) (int, error) {
	jobs, err := c.Jobs(ctx)
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		return 0, model.NewNotFoundError(c.component(), "scans", "no %s jobs", c.kind)
	}
	last := jobs[0].ID
	for _, job := range jobs[1:] {
		last = max(last, job.ID)
	}
	return last, nil
}

// Cancel stops a job. A job that can no longer be cancelled, one already at
// 100%, is left alone.
func (c *jobController) Cancel(ctx context.Context, id int) error {
	progress, err := c.Progress(ctx, id)
	if err != nil {
		return err
	}
	if state := model.ProgressState(progress); !model.CanTransition(state, model.JobCancelled) {
		c.logger.Debug("%s job %d is %s, nothing to cancel", c.kind, id, state)
		return nil
	}
	return c.jobAction(ctx, "stop", id)
}

// Pause pauses a running job
func (c *jobController) Pause(ctx context.Context, id int) error {
	return c.jobAction(ctx, "pause", id)
}

// Resume resumes a paused job
func (c *jobController) Resume(ctx context.Context, id int) error {
	return c.jobAction(ctx, "resume", id)
}

func (c *jobController) jobAction(ctx context.Context, action string, id int) error {
	_, err := c.engine.Call(ctx, model.Action(c.component(), action, scanParams(id)))
	if err != nil {
		if model.IsAbsent(err) {
			return c.notFound(action, id)
		}
		return err
	}
	c.logger.Info("%s job %d: %s", c.kind, id, action)
	return nil
}

// validateExclusions compiles every exclusion before anything is submitted
func (c *jobController) validateExclusions(exclusions []string) error {
	for _, expr := range exclusions {
		if _, err := domain.CompilePattern(expr); err != nil {
			return err
		}
	}
	return nil
}

func (c *jobController) submitExclusions(ctx context.Context, exclusions []string) error {
	for _, expr := range exclusions {
		if _, err := c.engine.Call(ctx, model.Action(c.component(), "excludeFromScan", url.Values{"regex": {expr}})); err != nil {
			return err
		}
	}
	return nil
}

func (c *jobController) setOption(ctx context.Context, option, param, value string) error {
	_, err := c.engine.Call(ctx, model.Action(c.component(), "setOption"+option, url.Values{param: {value}}))
	return err
}

// start submits the job and resolves the engine assigned id
func (c *jobController) start(ctx context.Context, target string, params url.Values) (model.Job, error) {
	resp, err := c.engine.Call(ctx, model.Action(c.component(), "scan", params))
	if err != nil {
		return model.Job{}, err
	}

	var id int
	if c.engine.Capabilities().ScanIDInStart {
		id, err = resp.Int("scan")
	} else {
		id, err = c.LastJobID(ctx)
	}
	if err != nil {
		return model.Job{}, err
	}

	c.logger.Info("Started %s job %d on %s", c.kind, id, target)
	return model.Job{ID: id, Kind: c.kind, TargetURL: target, State: model.JobAssigned}, nil
}

func (c *jobController) notFound(operation string, id int) error {
	return model.NewNotFoundError(c.component(), operation, "%s job %d does not exist", c.kind, id)
}

func (c *jobController) requireCapability(supported bool, feature string) error {
	if supported {
		return nil
	}
	return &model.EngineError{
		Kind:      model.ErrVersionIncompatible,
		Component: c.component(),
		Operation: "scan",
		Err:       errors.New(feature + " is not supported by engine " + c.engine.Version().String()),
	}
}

func scanParams(id int) url.Values {
	return url.Values{"scanId": {itoa(id)}}
}
