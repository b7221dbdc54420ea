package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/coursedraft/internal/docpath"
	"github.com/dgallion1/coursedraft/internal/gateway"
	"github.com/dgallion1/coursedraft/internal/outline"
)

// JobKind names what a job generates.
type JobKind string

const (
	KindOutline       JobKind = "outline"
	KindRefine        JobKind = "refine"
	KindLessonContent JobKind = "lesson_content"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	// StatusDiscarded means the result arrived after its project stopped being active.
	StatusDiscarded JobStatus = "discarded"
)

// Job tracks one asynchronous generation.
type Job struct {
	mu sync.Mutex

	ID        string
	Kind      JobKind
	ProjectID string // project the result is written into; empty for outlines
	Target    string // busy key, see targetKey

	Status          JobStatus
	Phase           string
	Result          string
	ResultProjectID string
	Err             string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Inputs, not serialized.
	params      gateway.Params
	path        docpath.Path
	style       gateway.StyleMode
	content     outline.ContentKind
	input       string
	courseTitle string
	lessonTitle string
	lessonDesc  string
}

func newJob(kind JobKind, projectID, target string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		ProjectID: projectID,
		Target:    target,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetPhase records a progress message without changing status.
func (j *Job) SetPhase(phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed with err.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Err = err.Error()
	j.UpdatedAt = time.Now()
}

// Complete marks the job done with its generated text.
func (j *Job) Complete(result string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Phase = "done"
	j.Result = result
	j.UpdatedAt = time.Now()
}

// Discard drops a result whose target is gone.
func (j *Job) Discard(reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusDiscarded
	j.Phase = "discarded"
	j.Err = reason
	j.UpdatedAt = time.Now()
}

func (j *Job) setResultProject(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ResultProjectID = id
}

// Finished reports whether the job reached a terminal status.
func (j *Job) Finished() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status == StatusCompleted || j.Status == StatusFailed || j.Status == StatusDiscarded
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID              string    `json:"job_id"`
	Kind            JobKind   `json:"kind"`
	ProjectID       string    `json:"project_id,omitempty"`
	Target          string    `json:"target,omitempty"`
	Status          JobStatus `json:"status"`
	Phase           string    `json:"phase"`
	Result          string    `json:"result,omitempty"`
	ResultProjectID string    `json:"result_project_id,omitempty"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:              j.ID,
		Kind:            j.Kind,
		ProjectID:       j.ProjectID,
		Target:          j.Target,
		Status:          j.Status,
		Phase:           j.Phase,
		Result:          j.Result,
		ResultProjectID: j.ResultProjectID,
		Error:           j.Err,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl && job.Status != StatusQueued && job.Status != StatusRunning
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}
