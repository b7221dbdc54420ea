// Package pipeline runs content generation in the background and writes the
// results back into the editor.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/coursedraft/internal/docpath"
	"github.com/dgallion1/coursedraft/internal/editor"
	"github.com/dgallion1/coursedraft/internal/gateway"
	"github.com/dgallion1/coursedraft/internal/metrics"
	"github.com/dgallion1/coursedraft/internal/outline"
)

var (
	// ErrTargetBusy is returned when a generation for the same target is still running.
	ErrTargetBusy = errors.New("a generation for this target is already in progress")
	// ErrStaleTarget marks a result that arrived after its project stopped being active.
	ErrStaleTarget = errors.New("target project is no longer active")
	ErrQueueFull   = errors.New("job queue is full")
)

// Document is the part of the editor the pipeline reads from and writes to.
type Document interface {
	Current() *outline.Project
	AddProject(ctx context.Context, p *outline.Project) error
	EditFieldIn(projectID string, p docpath.Path, text string) (bool, error)
}

type Config struct {
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration
}

// Orchestrator owns the job queue and its workers.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	gw    gateway.Gateway
	doc   Document
	log   *slog.Logger
	cfg   Config

	mu       sync.Mutex
	inflight map[string]string // target -> job id
	stopped  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg Config, gw gateway.Gateway, doc Document, log *slog.Logger) *Orchestrator {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		gw:       gw,
		doc:      doc,
		log:      log.With("component", "pipeline"),
		cfg:      cfg,
		inflight: make(map[string]string),
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.gw, o.doc, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					metrics.JobsQueued.Set(float64(len(o.queue)))
					w.Process(workerCtx, job)
					o.release(job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels running jobs and waits for the workers.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// SubmitOutline queues generation of a new project.
func (o *Orchestrator) SubmitOutline(p gateway.Params) (*Job, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	job := newJob(KindOutline, "", targetKey("", nil))
	job.params = p
	return job, o.submit(job)
}

// SubmitRefine queues a rewrite of the text field at path in the active project.
func (o *Orchestrator) SubmitRefine(path docpath.Path, mode gateway.StyleMode) (*Job, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown refine mode %q", mode)
	}
	cur := o.doc.Current()
	if cur == nil {
		return nil, editor.ErrNoActiveProject
	}
	v, err := docpath.Get(&cur.Course, path)
	if err != nil {
		return nil, err
	}
	text, ok := v.(string)
	if !ok {
		return nil, &docpath.PathError{Op: "refine", Path: path, Depth: -1, Reason: "not a text field"}
	}
	job := newJob(KindRefine, cur.ID, targetKey(cur.ID, path))
	job.path = path
	job.style = mode
	job.input = text
	return job, o.submit(job)
}

// SubmitLessonContent queues generation of one lesson body field.
func (o *Orchestrator) SubmitLessonContent(ref outline.LessonRef, kind outline.ContentKind) (*Job, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown content kind %q", kind)
	}
	cur := o.doc.Current()
	if cur == nil {
		return nil, editor.ErrNoActiveProject
	}
	lesson, ok := cur.Course.LessonAt(ref)
	path := outline.LessonContent(ref, kind)
	if !ok {
		return nil, &docpath.PathError{Op: "lesson-content", Path: path, Depth: -1, Reason: "no such lesson"}
	}
	job := newJob(KindLessonContent, cur.ID, targetKey(cur.ID, path))
	job.path = path
	job.content = kind
	job.courseTitle = cur.Course.Title
	job.lessonTitle = lesson.Title
	job.lessonDesc = lesson.Description
	return job, o.submit(job)
}

func targetKey(projectID string, p docpath.Path) string {
	if projectID == "" {
		return "outline"
	}
	return projectID + ":" + p.String()
}

func (o *Orchestrator) submit(job *Job) error {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return errors.New("pipeline stopped")
	}
	if _, busy := o.inflight[job.Target]; busy {
		o.mu.Unlock()
		return ErrTargetBusy
	}
	o.inflight[job.Target] = job.ID
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		o.mu.Unlock()
		metrics.JobsQueued.Set(float64(len(o.queue)))
		o.log.Info("job queued", "job_id", job.ID, "kind", job.Kind, "target", job.Target)
		return nil
	default:
		delete(o.inflight, job.Target)
		o.mu.Unlock()
		job.Fail(ErrQueueFull)
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// release clears the busy flag for a finished job's target.
func (o *Orchestrator) release(job *Job) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[job.Target] == job.ID {
		delete(o.inflight, job.Target)
	}
}

// Busy reports whether a generation for target is in flight.
func (o *Orchestrator) Busy(projectID string, p docpath.Path) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inflight[targetKey(projectID, p)]
	return ok
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
