package model

import "strconv"

// JobKind distinguishes the two classes of engine jobs
type JobKind string

const (
	// JobKindCrawl is a spider job
	JobKindCrawl JobKind = "crawl"
	// JobKindActiveScan is an active scan job
	JobKindActiveScan JobKind = "active-scan"
)

// Component returns the engine API component that runs jobs of this kind
func (k JobKind) Component() string {
	if k == JobKindActiveScan {
		return "ascan"
	}
	return "spider"
}

// JobState is the local view of a job lifecycle
type JobState string

const (
	JobAssigned  JobState = "ASSIGNED"
	JobRunning   JobState = "RUNNING"
	JobPaused    JobState = "PAUSED"
	JobComplete  JobState = "FINISHED"
	JobCancelled JobState = "CANCELLED"
)

var jobTransitions = map[JobState][]JobState{
	JobAssigned:  {JobRunning, JobComplete, JobCancelled},
	JobRunning:   {JobPaused, JobComplete, JobCancelled},
	JobPaused:    {JobCancelled, JobComplete},
}

// CanTransition reports whether a job may move from one state to another.
// Complete and Cancelled are terminal.
func CanTransition(from, to JobState) bool {
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ProgressState is the state implied by a progress percentage alone
func ProgressState(progress int) JobState {
	if progress >= 100 {
		return JobComplete
	}
	return JobRunning
}

// ParseJobState maps the engine's scan state strings
func ParseJobState(s string) JobState {
	switch s {
	case "FINISHED":
		return JobComplete
	case "PAUSED":
		return JobPaused
	default:
		return JobRunning
	}
}

// Job is an engine job started through this client
type Job struct {
	ID          int
	Kind        JobKind
	TargetURL   string
	ContextName string
	State       JobState
}

// JobOptions configures a job start
type JobOptions struct {
	// Exclusions are regexes excluded from the job, validated before submission
	Exclusions []string
	// MaxDepth limits crawl link depth, 0 leaves the engine setting untouched
	MaxDepth int
	// SubmitForms toggles crawl form submission, nil leaves the engine setting untouched
	SubmitForms *bool
	// ThreadCount sets worker threads, 0 leaves the engine setting untouched
	ThreadCount int
	// MaxChildren limits crawled children per node (crawl only)
	MaxChildren int
	// Recurse crawls below the target URL. Active scans always recurse.
	Recurse bool
	// SubtreeOnly restricts a crawl to the target subtree
	SubtreeOnly bool
	// ContextName binds a crawl to a context
	ContextName string
	// ContextID binds an active scan to a context
	ContextID string
	// InScopeOnly restricts an active scan to in-scope URLs
	InScopeOnly bool
	// ScanPolicy names the active scan policy
	ScanPolicy string
}

// ScanStatus is one row of the engine's job listing
type ScanStatus struct {
	ID       int
	Progress int
	State    JobState
}

// Done reports whether the job has reached 100%
func (s ScanStatus) Done() bool {
	return s.Progress >= 100
}

// ParseScanStatus converts an engine scans-list attribute set
func ParseScanStatus(attrs Attributes) (ScanStatus, error) {
	id, err := strconv.Atoi(attrs["id"])
	if err != nil {
		return ScanStatus{}, NewProtocolError("", "scans", err)
	}
	progress, err := strconv.Atoi(attrs["progress"])
	if err != nil {
		return ScanStatus{}, NewProtocolError("", "scans", err)
	}
	return ScanStatus{ID: id, Progress: progress, State: ParseJobState(attrs["state"])}, nil
}

// CrawlResults are the resources discovered by a crawl
type CrawlResults struct {
	JobID int
	URLs  []string
	// Partial is set when the crawl had not finished when results were read
	Partial bool
}

// ProgressUpdate is delivered by the await helpers
type ProgressUpdate struct {
	JobID    int
	Progress int
	Done     bool
	Err      error
}
