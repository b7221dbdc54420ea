package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/coursedraft/internal/editor"
	"github.com/dgallion1/coursedraft/internal/gateway"
	"github.com/dgallion1/coursedraft/internal/metrics"
	"github.com/dgallion1/coursedraft/internal/outline"
)

// Worker runs one job at a time.
type Worker struct {
	gw  gateway.Gateway
	doc Document
	log *slog.Logger
}

func NewWorker(gw gateway.Gateway, doc Document, log *slog.Logger) *Worker {
	return &Worker{gw: gw, doc: doc, log: log}
}

// Process runs job to a terminal status.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "project_id", job.ProjectID)
	job.SetStatus(StatusRunning, "running")

	var err error
	switch job.Kind {
	case KindOutline:
		err = w.generateOutline(ctx, job, log)
	case KindRefine:
		err = w.writeBack(job, log, func() (string, error) {
			return w.gw.Refine(ctx, job.input, job.style)
		})
	case KindLessonContent:
		err = w.writeBack(job, log, func() (string, error) {
			return w.gw.GenerateLessonContent(ctx, job.courseTitle, job.lessonTitle, job.lessonDesc, job.content)
		})
	default:
		err = errors.New("unknown job kind")
	}

	switch {
	case errors.Is(err, ErrStaleTarget):
		job.Discard(err.Error())
		log.Info("generation result discarded")
	case err != nil:
		job.Fail(err)
		log.Error("job failed", "error", err)
	}
	snap := job.Snapshot()
	metrics.JobsFinished.WithLabelValues(string(job.Kind), string(snap.Status)).Inc()
}

func (w *Worker) generateOutline(ctx context.Context, job *Job, log *slog.Logger) error {
	course, err := w.gw.GenerateOutline(ctx, job.params, job.SetPhase)
	if err != nil {
		return err
	}
	project := outline.NewProject(job.params.Topic, *course)
	job.setResultProject(project.ID)
	if err := w.doc.AddProject(ctx, project); err != nil {
		// The project stays active and dirty; the next autosave writes it.
		log.Warn("persist generated project failed", "project_id", project.ID, "error", err)
	}
	log.Info("outline generated", "result_project_id", project.ID, "title", course.Title)
	job.Complete(course.Title)
	return nil
}

// writeBack runs gen and stores its text at the job's path, provided the job's
// project is still the active one.
func (w *Worker) writeBack(job *Job, log *slog.Logger, gen func() (string, error)) error {
	text, err := gen()
	if err != nil {
		return err
	}
	job.SetPhase("applying")
	changed, err := w.doc.EditFieldIn(job.ProjectID, job.path, text)
	if errors.Is(err, editor.ErrProjectNotActive) {
		return ErrStaleTarget
	}
	if err != nil {
		return err
	}
	log.Info("generated text applied", "path", job.path.String(), "changed", changed)
	job.Complete(text)
	return nil
}
