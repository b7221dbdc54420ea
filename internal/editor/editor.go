// Package editor owns the project collection, the active document and its
// editing history.
//
// All mutating operations are serialized by one mutex. Durable writes happen
// outside that mutex; a sequence number keeps an older collection snapshot
// from overwriting a newer one.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/coursedraft/internal/autosave"
	"github.com/dgallion1/coursedraft/internal/docpath"
	"github.com/dgallion1/coursedraft/internal/history"
	"github.com/dgallion1/coursedraft/internal/kvstore"
	"github.com/dgallion1/coursedraft/internal/metrics"
	"github.com/dgallion1/coursedraft/internal/outline"
)

var (
	ErrNoActiveProject  = errors.New("no active project")
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectNotActive = errors.New("project is no longer active")
	ErrInvalidTheme     = errors.New("invalid theme")
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

type Options struct {
	// HistoryLimit bounds the undo log. Zero means unbounded.
	HistoryLimit  int
	AutosaveDelay time.Duration
	// FlushOnSwitch persists pending edits before the active project changes.
	// When false they are dropped with the pending autosave.
	FlushOnSwitch bool
	FlushOnClose  bool
	Keys          kvstore.Keys
}

func DefaultOptions() Options {
	return Options{
		HistoryLimit:  100,
		AutosaveDelay: autosave.DefaultDelay,
		FlushOnClose:  true,
		Keys:          kvstore.Keys{Prefix: "coursedraft"},
	}
}

// State describes the active document and what the history allows next.
type State struct {
	Project       *outline.Project `json:"project"`
	CanUndo       bool             `json:"canUndo"`
	CanRedo       bool             `json:"canRedo"`
	HistoryLength int              `json:"historyLength"`
	Cursor        int              `json:"cursor"`
	Dirty         bool             `json:"dirty"`
}

type Editor struct {
	store kvstore.Store
	opts  Options
	log   *slog.Logger
	saver *autosave.Scheduler

	mu       sync.Mutex
	projects []*outline.Project
	activeID string
	hist     *history.History[*outline.Course]
	theme    Theme
	dirty    bool
	seq      uint64
	closed   bool

	writeMu    sync.Mutex
	writtenSeq uint64
}

func New(store kvstore.Store, opts Options, log *slog.Logger) *Editor {
	e := &Editor{
		store: store,
		opts:  opts,
		log:   log.With("component", "editor"),
		theme: ThemeLight,
	}
	e.saver = autosave.New(opts.AutosaveDelay, e.flush, e.log)
	return e
}

// Load reads the collection, the active project id and the theme, then applies
// the selection rules.
func (e *Editor) Load(ctx context.Context) error {
	projects, err := e.loadProjects(ctx)
	if err != nil {
		return err
	}
	// A stored empty id means the user was drafting a new project.
	var stored *string
	if err := e.getJSON(ctx, e.opts.Keys.ActiveProject(), &stored); err != nil {
		return err
	}
	var activeID string
	if stored != nil {
		activeID = *stored
	}
	drafting := stored != nil && activeID == ""
	var theme Theme
	if err := e.getJSON(ctx, e.opts.Keys.Theme(), &theme); err != nil {
		return err
	}

	e.mu.Lock()
	e.projects = projects
	if theme.Valid() {
		e.theme = theme
	}
	e.hist = nil
	e.activeID = ""
	if p := e.findLocked(activeID); p != nil {
		e.activateLocked(p)
	} else if len(projects) > 0 && !drafting {
		e.activateLocked(projects[0])
	}
	selected := e.activeID
	e.mu.Unlock()

	e.log.Info("projects loaded", "count", len(projects), "active_project", selected)
	if selected != activeID {
		return e.persistActive(ctx, selected)
	}
	return nil
}

func (e *Editor) loadProjects(ctx context.Context) ([]*outline.Project, error) {
	var projects []*outline.Project
	if err := e.getJSON(ctx, e.opts.Keys.Projects(), &projects); err != nil {
		return nil, err
	}
	out := projects[:0]
	for _, p := range projects {
		if p != nil && p.ID != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (e *Editor) getJSON(ctx context.Context, key string, v any) error {
	data, err := e.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// A corrupt entry is treated like a missing one.
		e.log.Warn("ignoring unreadable stored value", "key", key, "error", err)
	}
	return nil
}

// Close stops the autosave scheduler and, if configured, flushes pending edits.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.saver.Stop()
	if !e.opts.FlushOnClose {
		return nil
	}
	return e.flush(ctx)
}

// Projects returns the collection in display order, newest first.
func (e *Editor) Projects() []*outline.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*outline.Project(nil), e.projects...)
}

func (e *Editor) ActiveID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeID
}

// Current returns the active project carrying the current document, or nil.
func (e *Editor) Current() *outline.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentLocked()
}

func (e *Editor) currentLocked() *outline.Project {
	if e.hist == nil {
		return nil
	}
	p := e.findLocked(e.activeID)
	if p == nil {
		return nil
	}
	out := *p
	out.Course = *e.hist.Current()
	return &out
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Editor) stateLocked() State {
	s := State{Project: e.currentLocked(), Dirty: e.dirty}
	if e.hist != nil {
		s.CanUndo = e.hist.CanUndo()
		s.CanRedo = e.hist.CanRedo()
		s.HistoryLength = e.hist.Len()
		s.Cursor = e.hist.Cursor()
	}
	return s
}

func (e *Editor) findLocked(id string) *outline.Project {
	if id == "" {
		return nil
	}
	for _, p := range e.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// activateLocked makes p the active project with a fresh history.
func (e *Editor) activateLocked(p *outline.Project) {
	course := p.Course
	opts := []history.Option[*outline.Course]{history.WithEqual(outline.Equal)}
	if e.opts.HistoryLimit > 0 {
		opts = append(opts, history.WithCapacity[*outline.Course](e.opts.HistoryLimit))
	}
	e.hist = history.New(&course, opts...)
	e.activeID = p.ID
	e.dirty = false
	metrics.HistoryLength.Set(1)
}

func (e *Editor) clearActiveLocked() {
	e.hist = nil
	e.activeID = ""
	e.dirty = false
	metrics.HistoryLength.Set(0)
}

// beforeSwitch deals with edits still waiting for autosave when the active
// project is about to change.
func (e *Editor) beforeSwitch(ctx context.Context) {
	if !e.opts.FlushOnSwitch {
		e.saver.Cancel()
		return
	}
	e.saver.Cancel()
	if err := e.flush(ctx); err != nil {
		e.log.Warn("flush before switch failed", "error", err)
	}
}

// SelectProject makes id the active project and resets its history.
func (e *Editor) SelectProject(ctx context.Context, id string) error {
	e.mu.Lock()
	if e.findLocked(id) == nil {
		e.mu.Unlock()
		return ErrProjectNotFound
	}
	same := e.activeID == id && e.hist != nil
	e.mu.Unlock()
	if same {
		return nil
	}

	e.beforeSwitch(ctx)

	e.mu.Lock()
	p := e.findLocked(id)
	if p == nil {
		e.mu.Unlock()
		return ErrProjectNotFound
	}
	e.activateLocked(p)
	e.mu.Unlock()

	e.log.Info("project selected", "project_id", id)
	return e.persistActive(ctx, id)
}

// AddProject prepends p to the collection and activates it.
func (e *Editor) AddProject(ctx context.Context, p *outline.Project) error {
	if p == nil || p.ID == "" {
		return errors.New("project id is required")
	}
	e.beforeSwitch(ctx)

	e.mu.Lock()
	projects := make([]*outline.Project, 0, len(e.projects)+1)
	projects = append(projects, p)
	for _, existing := range e.projects {
		if existing.ID != p.ID {
			projects = append(projects, existing)
		}
	}
	e.projects = projects
	e.activateLocked(p)
	snapshot, seq := e.snapshotLocked()
	e.mu.Unlock()

	e.log.Info("project added", "project_id", p.ID, "title", p.Course.Title)
	if err := e.persistProjects(ctx, snapshot, seq); err != nil {
		// Leave the project dirty so the next autosave writes it.
		e.mu.Lock()
		if e.activeID == p.ID && e.hist != nil {
			e.dirty = true
			e.saver.Trigger()
		}
		e.mu.Unlock()
		return err
	}
	return e.persistActive(ctx, p.ID)
}

// DeleteProject removes id. Deleting the active project selects the first
// remaining one, or none.
func (e *Editor) DeleteProject(ctx context.Context, id string) error {
	e.mu.Lock()
	idx := -1
	for i, p := range e.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return ErrProjectNotFound
	}
	projects := make([]*outline.Project, 0, len(e.projects)-1)
	projects = append(projects, e.projects[:idx]...)
	projects = append(projects, e.projects[idx+1:]...)
	e.projects = projects

	if e.activeID == id {
		e.saver.Cancel()
		if len(projects) > 0 {
			e.activateLocked(projects[0])
		} else {
			e.clearActiveLocked()
		}
	}
	active := e.activeID
	snapshot, seq := e.snapshotLocked()
	e.mu.Unlock()

	e.log.Info("project deleted", "project_id", id, "active_project", active)
	if err := e.persistProjects(ctx, snapshot, seq); err != nil {
		return err
	}
	return e.persistActive(ctx, active)
}

// CreateNew clears the active project so a new outline can be drafted. The
// empty selection is stored so Load does not fall back to the first project.
func (e *Editor) CreateNew(ctx context.Context) error {
	e.beforeSwitch(ctx)
	e.mu.Lock()
	e.clearActiveLocked()
	e.mu.Unlock()
	return e.putJSON(ctx, e.opts.Keys.ActiveProject(), "")
}

// EditField stores text at p. An edit whose trimmed text equals the trimmed
// current value is ignored. It reports whether the document changed.
func (e *Editor) EditField(p docpath.Path, text string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editFieldLocked(p, text)
}

// EditFieldIn is EditField guarded by the expected active project, for
// results that arrive asynchronously.
func (e *Editor) EditFieldIn(projectID string, p docpath.Path, text string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hist == nil || e.activeID != projectID {
		return false, ErrProjectNotActive
	}
	return e.editFieldLocked(p, text)
}

func (e *Editor) editFieldLocked(p docpath.Path, text string) (bool, error) {
	if e.hist == nil {
		return false, ErrNoActiveProject
	}
	cur := e.hist.Current()
	old, err := docpath.Get(cur, p)
	if err != nil {
		return false, err
	}
	if s, ok := old.(string); ok && strings.TrimSpace(s) == strings.TrimSpace(text) {
		metrics.HistoryOps.WithLabelValues("edit", "noop").Inc()
		return false, nil
	}
	next, err := docpath.Set(cur, p, text)
	if err != nil {
		return false, err
	}
	return e.commitLocked("edit", next), nil
}

// SetField stores an arbitrary value at p.
func (e *Editor) SetField(p docpath.Path, value any) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hist == nil {
		return false, ErrNoActiveProject
	}
	next, err := docpath.Set(e.hist.Current(), p, value)
	if err != nil {
		return false, err
	}
	return e.commitLocked("set", next), nil
}

// Reorder moves a list element. Equal or out-of-range indexes change nothing.
func (e *Editor) Reorder(p docpath.Path, oldIndex, newIndex int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hist == nil {
		return false, ErrNoActiveProject
	}
	next, changed, err := docpath.Reorder(e.hist.Current(), p, oldIndex, newIndex)
	if err != nil {
		return false, err
	}
	if !changed {
		metrics.HistoryOps.WithLabelValues("reorder", "noop").Inc()
		return false, nil
	}
	return e.commitLocked("reorder", next), nil
}

func (e *Editor) commitLocked(op string, next *outline.Course) bool {
	if !e.hist.Commit(next, false) {
		metrics.HistoryOps.WithLabelValues(op, "noop").Inc()
		return false
	}
	e.changedLocked(op)
	return true
}

func (e *Editor) changedLocked(op string) {
	e.dirty = true
	metrics.HistoryOps.WithLabelValues(op, "changed").Inc()
	metrics.HistoryLength.Set(float64(e.hist.Len()))
	e.saver.Trigger()
}

func (e *Editor) Undo() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hist == nil {
		return false, ErrNoActiveProject
	}
	if !e.hist.Undo() {
		metrics.HistoryOps.WithLabelValues("undo", "noop").Inc()
		return false, nil
	}
	e.changedLocked("undo")
	return true, nil
}

func (e *Editor) Redo() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hist == nil {
		return false, ErrNoActiveProject
	}
	if !e.hist.Redo() {
		metrics.HistoryOps.WithLabelValues("redo", "noop").Inc()
		return false, nil
	}
	e.changedLocked("redo")
	return true, nil
}

func (e *Editor) Theme() Theme {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.theme
}

func (e *Editor) SetTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return ErrInvalidTheme
	}
	e.mu.Lock()
	e.theme = t
	e.mu.Unlock()
	return e.putJSON(ctx, e.opts.Keys.Theme(), t)
}

// FlushNow writes the current document without waiting for the autosave delay.
func (e *Editor) FlushNow(ctx context.Context) error {
	e.saver.Cancel()
	return e.flush(ctx)
}

// flush replaces the active project's stored copy with the current document
// and writes the collection.
func (e *Editor) flush(ctx context.Context) error {
	e.mu.Lock()
	if e.hist == nil || !e.dirty {
		e.mu.Unlock()
		return nil
	}
	current := e.currentLocked()
	if current == nil {
		e.mu.Unlock()
		return nil
	}
	projects := make([]*outline.Project, len(e.projects))
	for i, p := range e.projects {
		if p.ID == current.ID {
			p = current
		}
		projects[i] = p
	}
	e.projects = projects
	e.dirty = false
	snapshot, seq := e.snapshotLocked()
	e.mu.Unlock()

	if err := e.persistProjects(ctx, snapshot, seq); err != nil {
		e.mu.Lock()
		if e.activeID == current.ID {
			e.dirty = true
		}
		e.mu.Unlock()
		return err
	}
	return nil
}

func (e *Editor) snapshotLocked() ([]*outline.Project, uint64) {
	e.seq++
	return append([]*outline.Project(nil), e.projects...), e.seq
}

func (e *Editor) persistProjects(ctx context.Context, projects []*outline.Project, seq uint64) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if seq <= e.writtenSeq {
		return nil
	}
	if err := e.store.Put(ctx, e.opts.Keys.Projects(), data); err != nil {
		return fmt.Errorf("persist projects: %w", err)
	}
	e.writtenSeq = seq
	return nil
}

func (e *Editor) persistActive(ctx context.Context, id string) error {
	if id == "" {
		e.writeMu.Lock()
		defer e.writeMu.Unlock()
		if err := e.store.Delete(ctx, e.opts.Keys.ActiveProject()); err != nil {
			return fmt.Errorf("clear active project: %w", err)
		}
		return nil
	}
	return e.putJSON(ctx, e.opts.Keys.ActiveProject(), id)
}

func (e *Editor) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
