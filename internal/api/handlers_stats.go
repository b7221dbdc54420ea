package api

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/coursedraft/internal/editor"
	"github.com/dgallion1/coursedraft/internal/gateway"
)

// statsSource is implemented by gateway.Service.
type statsSource interface {
	Stats() gateway.StatsReport
	Limiter() *gateway.RateLimiter
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	src, ok := s.gw.(statsSource)
	if !ok {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	lim := src.Limiter()
	writeJSON(w, http.StatusOK, map[string]any{
		"models": map[string]string{
			"pro":  s.cfg.AnthropicModel,
			"fast": s.cfg.AnthropicFastModel,
		},
		"stats": src.Stats(),
		"rate_limit": map[string]any{
			"limit":     lim.Limit(),
			"window":    lim.Window().String(),
			"remaining": lim.Remaining(),
		},
		"queue_depth": s.jobs.QueueDepth(),
	})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"theme": s.editor.Theme()})
}

type themeRequest struct {
	Theme editor.Theme `json:"theme"`
}

func (req themeRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Theme, validation.Required, validation.In(editor.ThemeLight, editor.ThemeDark)),
	)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.editor.SetTheme(r.Context(), req.Theme); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"theme": s.editor.Theme()})
}
