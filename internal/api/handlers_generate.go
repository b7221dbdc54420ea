package api

import (
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/coursedraft/internal/docpath"
	"github.com/dgallion1/coursedraft/internal/gateway"
	"github.com/dgallion1/coursedraft/internal/outline"
)

type refineRequest struct {
	Path docpath.Path      `json:"path"`
	Mode gateway.StyleMode `json:"mode"`
}

func (req refineRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Path, validation.Required),
		validation.Field(&req.Mode, validation.Required,
			validation.In(gateway.StyleConcise, gateway.StyleProfessional, gateway.StyleSimple)),
	)
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	job, err := s.jobs.SubmitRefine(req.Path, req.Mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJobAccepted(w, job)
}

type lessonContentRequest struct {
	Day    int                 `json:"day"`
	Module int                 `json:"module"`
	Lesson int                 `json:"lesson"`
	Kind   outline.ContentKind `json:"kind"`
}

func (req lessonContentRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Day, validation.Min(0)),
		validation.Field(&req.Module, validation.Min(0)),
		validation.Field(&req.Lesson, validation.Min(0)),
		validation.Field(&req.Kind, validation.Required,
			validation.In(outline.LectureNotes, outline.KeyTalkingPoints, outline.QuizQuestions)),
	)
}

func (s *Server) handleLessonContent(w http.ResponseWriter, r *http.Request) {
	var req lessonContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ref := outline.LessonRef{Day: req.Day, Module: req.Module, Lesson: req.Lesson}
	job, err := s.jobs.SubmitLessonContent(ref, req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJobAccepted(w, job)
}

type outreachRequest struct {
	List  outline.ContactList `json:"list"`
	Index int                 `json:"index"`
}

func (req outreachRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.List, validation.Required, validation.In(outline.Instructors, outline.Leads)),
		validation.Field(&req.Index, validation.Min(0)),
	)
}

func (s *Server) handleOutreach(w http.ResponseWriter, r *http.Request) {
	var req outreachRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p := s.currentProject(w)
	if p == nil {
		return
	}
	contacts, kind := p.Course.PotentialInstructors, gateway.RecipientInstructor
	if req.List == outline.Leads {
		contacts, kind = p.Course.PotentialLeads, gateway.RecipientLead
	}
	if req.Index >= len(contacts) {
		jsonError(w, "no contact at index "+strconv.Itoa(req.Index), http.StatusBadRequest)
		return
	}

	draft, err := s.gw.DraftOutreach(r.Context(), p.Course.Title, contacts[req.Index], kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recipient": contacts[req.Index].Name,
		"kind":      kind,
		"draft":     draft,
	})
}

// maxNarrationChars bounds the text sent to speech synthesis.
const maxNarrationChars = 4096

// narrationRequest carries either literal text or the path of a text field
// in the active document.
type narrationRequest struct {
	Text string       `json:"text"`
	Path docpath.Path `json:"path"`
}

func (req narrationRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Text, validation.Required.When(len(req.Path) == 0).Error("text or path is required"),
			validation.Length(0, maxNarrationChars)),
	)
}

func (s *Server) handleNarration(w http.ResponseWriter, r *http.Request) {
	var req narrationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	text := req.Text
	if text == "" {
		p := s.currentProject(w)
		if p == nil {
			return
		}
		v, err := docpath.Get(&p.Course, req.Path)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		str, ok := v.(string)
		if !ok || str == "" {
			jsonError(w, "path does not address a non-empty text field", http.StatusBadRequest)
			return
		}
		if n := utf8.RuneCountInString(str); n > maxNarrationChars {
			jsonError(w, fmt.Sprintf("text at path is %d characters, the limit is %d", n, maxNarrationChars), http.StatusBadRequest)
			return
		}
		text = str
	}

	audio, err := s.gw.SynthesizeNarration(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", audio.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio.Data)
}
