package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestJob_StateTransitions(t *testing.T) {
	job := newJob(KindRefine, "proj_1", "proj_1:title")
	if job.ID == "" || job.Status != StatusQueued {
		t.Fatalf("unexpected new job %+v", job.Snapshot())
	}

	before := job.UpdatedAt
	time.Sleep(time.Millisecond)
	job.SetStatus(StatusRunning, "running")
	if job.Status != StatusRunning || job.Phase != "running" {
		t.Errorf("unexpected state %q/%q", job.Status, job.Phase)
	}
	if !job.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance after SetStatus")
	}
	if job.Finished() {
		t.Error("running job reported finished")
	}

	job.SetPhase("applying")
	job.Complete("new text")
	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Result != "new text" || snap.Phase != "done" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if !job.Finished() {
		t.Error("completed job not finished")
	}
}

func TestJob_FailAndDiscard(t *testing.T) {
	job := newJob(KindOutline, "", "outline")
	job.Fail(errors.New("boom"))
	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Error != "boom" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	job = newJob(KindLessonContent, "proj_1", "proj_1:x")
	job.Discard(ErrStaleTarget.Error())
	if snap := job.Snapshot(); snap.Status != StatusDiscarded || !job.Finished() {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := newJob(KindOutline, "", "outline")
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Fatal("expected to get job back")
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	old := newJob(KindOutline, "", "outline")
	old.Complete("x")
	store.Put(old)
	running := newJob(KindRefine, "p", "p:title")
	running.SetStatus(StatusRunning, "running")
	store.Put(running)

	time.Sleep(100 * time.Millisecond)

	fresh := newJob(KindOutline, "", "outline")
	fresh.Complete("y")
	store.Put(fresh)

	store.Cleanup()

	if store.Get(old.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get(running.ID) == nil {
		t.Error("expected running job to survive cleanup")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Cleanup()
}
