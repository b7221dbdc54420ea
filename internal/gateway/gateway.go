// Package gateway is the single entry point for AI content generation.
//
// Every operation shares one sliding-window rate limiter and one error
// taxonomy: *RateLimitError when the budget is spent, *GenerationError when
// the provider fails or answers with something unusable. Nothing is retried.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dgallion1/coursedraft/internal/metrics"
	"github.com/dgallion1/coursedraft/internal/outline"
)

// Gateway is the content generation surface used by the rest of the service.
type Gateway interface {
	GenerateOutline(ctx context.Context, p Params, onProgress func(string)) (*outline.Course, error)
	Refine(ctx context.Context, text string, mode StyleMode) (string, error)
	SynthesizeNarration(ctx context.Context, text string) (Audio, error)
	GenerateLessonContent(ctx context.Context, courseTitle, lessonTitle, lessonDesc string, kind outline.ContentKind) (string, error)
	DraftOutreach(ctx context.Context, courseTitle string, recipient outline.Contact, kind RecipientKind) (string, error)
}

type StyleMode string

const (
	StyleConcise      StyleMode = "concise"
	StyleProfessional StyleMode = "professional"
	StyleSimple       StyleMode = "simple"
)

func (m StyleMode) Valid() bool {
	return m == StyleConcise || m == StyleProfessional || m == StyleSimple
}

type RecipientKind string

const (
	RecipientInstructor RecipientKind = "instructor"
	RecipientLead       RecipientKind = "lead"
)

func (k RecipientKind) Valid() bool {
	return k == RecipientInstructor || k == RecipientLead
}

// Params describes the course to generate.
type Params struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Summary    string `json:"summary,omitempty"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Duration   string `json:"duration"`
	Skills     string `json:"skills,omitempty"`
	Experience string `json:"experience,omitempty"`
	Style      string `json:"style,omitempty"`
}

func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Topic, validation.Required, validation.Length(1, 300)),
		validation.Field(&p.Difficulty, validation.Required, validation.Length(1, 50)),
		validation.Field(&p.Country, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.City, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Duration, validation.Required, validation.Length(1, 50)),
		validation.Field(&p.Summary, validation.Length(0, 8000)),
		validation.Field(&p.Skills, validation.Length(0, 1000)),
	)
}

// Progress messages reported while an outline is generated.
const (
	PhasePrompt   = "Crafting the perfect prompt..."
	PhaseRequest  = "Sending request to the model..."
	PhaseParse    = "Parsing AI response..."
	PhaseFinalize = "Finalizing course structure..."
)

type Config struct {
	// ProModel generates outlines; FastModel handles the short-form operations.
	ProModel  string
	FastModel string
}

// Service implements Gateway on top of a text generator and an optional
// speech synthesizer.
type Service struct {
	text    TextGenerator
	speech  SpeechSynthesizer
	limiter *RateLimiter
	stats   *LLMStats
	cfg     Config
	log     *slog.Logger
}

// NewService wires the providers. speech may be nil, in which case narration
// reports ErrNotConfigured.
func NewService(text TextGenerator, speech SpeechSynthesizer, limiter *RateLimiter, stats *LLMStats, cfg Config, log *slog.Logger) *Service {
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit, DefaultRateWindow)
	}
	if stats == nil {
		stats = NewLLMStats(time.Hour)
	}
	return &Service{
		text:    text,
		speech:  speech,
		limiter: limiter,
		stats:   stats,
		cfg:     cfg,
		log:     log.With("component", "gateway"),
	}
}

func (s *Service) Stats() StatsReport { return s.stats.Snapshot() }

func (s *Service) Limiter() *RateLimiter { return s.limiter }

func (s *Service) admit() error {
	ok, retry := s.limiter.Allow()
	if ok {
		return nil
	}
	metrics.RateLimited.Inc()
	s.log.Warn("generation rate limit exceeded", "retry_after_ms", retry.Milliseconds())
	return &RateLimitError{Limit: s.limiter.Limit(), Window: s.limiter.Window(), RetryAfter: retry}
}

// observe records latency and outcome for one provider call.
func (s *Service) observe(op string, start time.Time, err error) {
	d := time.Since(start)
	s.stats.Record(op, d, err)
	metrics.GatewayDuration.WithLabelValues(op).Observe(d.Seconds())
	metrics.GatewayCalls.WithLabelValues(op, metrics.Result(err)).Inc()
	if err != nil {
		s.log.Error("generation failed", "op", op, "duration_ms", d.Milliseconds(), "error", err)
		return
	}
	s.log.Info("generation completed", "op", op, "duration_ms", d.Milliseconds())
}

func (s *Service) complete(ctx context.Context, op, model, prompt string, maxTokens int) (string, error) {
	start := time.Now()
	out, err := s.text.Complete(ctx, CompletionRequest{Model: model, Prompt: prompt, MaxTokens: maxTokens})
	if err != nil {
		err = asGenerationError(op, err)
	}
	s.observe(op, start, err)
	return out, err
}

func asGenerationError(op string, err error) error {
	var ge *GenerationError
	if errors.As(err, &ge) {
		if ge.Op == op {
			return ge
		}
		return &GenerationError{Op: op, StatusCode: ge.StatusCode, Err: ge.Err}
	}
	return &GenerationError{Op: op, Err: err}
}

func (s *Service) GenerateOutline(ctx context.Context, p Params, onProgress func(string)) (*outline.Course, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if err := s.admit(); err != nil {
		return nil, err
	}
	progress := func(msg string) {
		if onProgress != nil {
			onProgress(msg)
		}
	}

	progress(PhasePrompt)
	prompt := outlinePrompt(p)

	progress(PhaseRequest)
	text, err := s.complete(ctx, "outline", s.cfg.ProModel, prompt, 16000)
	if err != nil {
		return nil, err
	}

	progress(PhaseParse)
	course, err := ParseOutline(text)
	if err != nil {
		return nil, &GenerationError{Op: "outline", Err: err}
	}

	progress(PhaseFinalize)
	for i := range course.Curriculum {
		if course.Curriculum[i].Day == 0 {
			course.Curriculum[i].Day = i + 1
		}
	}
	return course, nil
}

func (s *Service) Refine(ctx context.Context, text string, mode StyleMode) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("unknown refine mode %q", mode)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("text is required")
	}
	if err := s.admit(); err != nil {
		return "", err
	}
	out, err := s.complete(ctx, "refine", s.cfg.FastModel, refinePrompt(text, mode), 2048)
	if err != nil {
		return "", err
	}
	return cleanText(out), nil
}

func (s *Service) SynthesizeNarration(ctx context.Context, text string) (Audio, error) {
	if s.speech == nil {
		return Audio{}, ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return Audio{}, errors.New("text is required")
	}
	if err := s.admit(); err != nil {
		return Audio{}, err
	}
	start := time.Now()
	audio, err := s.speech.Synthesize(ctx, text)
	if err != nil {
		err = asGenerationError("narration", err)
	}
	s.observe("narration", start, err)
	return audio, err
}

func (s *Service) GenerateLessonContent(ctx context.Context, courseTitle, lessonTitle, lessonDesc string, kind outline.ContentKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
	if err := s.admit(); err != nil {
		return "", err
	}
	prompt := lessonContentPrompt(courseTitle, lessonTitle, lessonDesc, kind)
	out, err := s.complete(ctx, "lesson_content", s.cfg.FastModel, prompt, 4096)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *Service) DraftOutreach(ctx context.Context, courseTitle string, recipient outline.Contact, kind RecipientKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown recipient kind %q", kind)
	}
	if err := s.admit(); err != nil {
		return "", err
	}
	out, err := s.complete(ctx, "outreach", s.cfg.FastModel, outreachPrompt(courseTitle, recipient, kind), 2048)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// cleanText trims whitespace and a pair of wrapping quotes some models add.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && !strings.Contains(s[1:len(s)-1], `"`) {
		s = s[1 : len(s)-1]
	}
	return s
}
