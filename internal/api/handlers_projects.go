package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/coursedraft/internal/gateway"
	"github.com/dgallion1/coursedraft/internal/outline"
	"github.com/dgallion1/coursedraft/internal/pipeline"
)

type projectSummary struct {
	ID      string `json:"id"`
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Days    int    `json:"days"`
	Lessons int    `json:"lessons"`
	Active  bool   `json:"active"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	active := s.editor.ActiveID()
	projects := s.editor.Projects()
	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectSummary{
			ID:      p.ID,
			Topic:   p.Topic,
			Title:   p.Course.Title,
			Days:    len(p.Course.Curriculum),
			Lessons: p.Course.LessonCount(),
			Active:  p.ID == active,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects":  out,
		"active_id": active,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var params gateway.Params
	if !decodeJSON(w, r, &params) {
		return
	}
	job, err := s.jobs.SubmitOutline(params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJobAccepted(w, job)
}

func (s *Server) writeJobAccepted(w http.ResponseWriter, job *pipeline.Job) {
	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"kind":     snap.Kind,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleNewProject(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.CreateNew(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.State())
}

type selectRequest struct {
	ProjectID string `json:"project_id"`
}

func (req selectRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.ProjectID, validation.Required),
	)
}

func (s *Server) handleSelectProject(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.editor.SelectProject(r.Context(), req.ProjectID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.State())
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.DeleteProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.State())
}

// currentProject writes a conflict response when nothing is being edited.
func (s *Server) currentProject(w http.ResponseWriter) *outline.Project {
	p := s.editor.Current()
	if p == nil {
		jsonError(w, "no active project", http.StatusConflict)
	}
	return p
}
