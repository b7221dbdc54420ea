package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/coursedraft/internal/docpath"
	"github.com/dgallion1/coursedraft/internal/editor"
)

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.State())
}

type editFieldRequest struct {
	Path  docpath.Path `json:"path"`
	Value *string      `json:"value"`
}

func (req editFieldRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Path, validation.Required),
		validation.Field(&req.Value, validation.NotNil),
	)
}

type changeResponse struct {
	Changed bool `json:"changed"`
	editor.State
}

func (s *Server) handleEditField(w http.ResponseWriter, r *http.Request) {
	var req editFieldRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	changed, err := s.editor.EditField(req.Path, *req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, changeResponse{Changed: changed, State: s.editor.State()})
}

type setValueRequest struct {
	Path  docpath.Path    `json:"path"`
	Value json.RawMessage `json:"value"`
}

func (req setValueRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Path, validation.Required),
		validation.Field(&req.Value, validation.Required),
	)
}

func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	var req setValueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	dec := json.NewDecoder(bytes.NewReader(req.Value))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		jsonError(w, "invalid value: "+err.Error(), http.StatusBadRequest)
		return
	}
	changed, err := s.editor.SetField(req.Path, value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, changeResponse{Changed: changed, State: s.editor.State()})
}

type reorderRequest struct {
	Path     docpath.Path `json:"path"`
	OldIndex *int         `json:"old_index"`
	NewIndex *int         `json:"new_index"`
}

func (req reorderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Path, validation.Required),
		validation.Field(&req.OldIndex, validation.NotNil),
		validation.Field(&req.NewIndex, validation.NotNil),
	)
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	changed, err := s.editor.Reorder(req.Path, *req.OldIndex, *req.NewIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, changeResponse{Changed: changed, State: s.editor.State()})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.FlushNow(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.editor.State())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	st := s.editor.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"canUndo":       st.CanUndo,
		"canRedo":       st.CanRedo,
		"historyLength": st.HistoryLength,
		"cursor":        st.Cursor,
		"dirty":         st.Dirty,
	})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.editor.Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, s.editor.Redo)
}

func (s *Server) step(w http.ResponseWriter, r *http.Request, fn func() (bool, error)) {
	changed, err := fn()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, changeResponse{Changed: changed, State: s.editor.State()})
}
