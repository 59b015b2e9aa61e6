package app

import (
	"context"
	"time"

	"github.com/Lovecoded2024/timejournal/internal/analysis"
	"github.com/Lovecoded2024/timejournal/internal/interview"
	"github.com/Lovecoded2024/timejournal/pkg/minimax"
	"github.com/Lovecoded2024/timejournal/pkg/storage"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

// AIClient is the full AI adapter surface the app uses.
type AIClient interface {
	Chat(ctx context.Context, req minimax.ChatRequest) (string, error)
	AnalyzeImage(ctx context.Context, imageBase64, prompt string) (minimax.ImageAnalysis, error)
	TextToSpeech(ctx context.Context, text, voiceID string) (minimax.Speech, error)
}

// Config holds app-level tunables.
type Config struct {
	AnalyzeConcurrency int
	PresignTTL         time.Duration
	TTSVoice           string
}

// App wires persistence, object storage, identity and the AI adapter into
// the biography workflow.
type App struct {
	store        store.Store
	tokens       store.TokenStore
	objects      storage.ObjectStore
	ai           AIClient
	orchestrator *interview.Orchestrator
	analyzer     *analysis.Analyzer
	presignTTL   time.Duration
	ttsVoice     string
	now          func() time.Time
}

func New(st store.Store, tokens store.TokenStore, objects storage.ObjectStore, ai AIClient, cfg Config) *App {
	presignTTL := cfg.PresignTTL
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}
	return &App{
		store:        st,
		tokens:       tokens,
		objects:      objects,
		ai:           ai,
		orchestrator: interview.NewOrchestrator(st, ai),
		analyzer:     analysis.NewAnalyzer(st, objects, ai, cfg.AnalyzeConcurrency),
		presignTTL:   presignTTL,
		ttsVoice:     cfg.TTSVoice,
		now:          time.Now,
	}
}
