package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Lovecoded2024/timejournal/internal/util"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
	"github.com/Lovecoded2024/timejournal/pkg/minimax"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

// ErrTurnSuperseded is returned to a turn whose reply arrived after a newer
// message took over the session. The user message is kept, the reply is not.
var ErrTurnSuperseded = errors.New("interview: turn superseded by a newer message")

// ErrSessionNotActive is returned when messages are submitted to a paused
// or completed session.
var ErrSessionNotActive = errors.New("interview: session is not active")

// ChatClient is the slice of the AI adapter the orchestrator needs.
type ChatClient interface {
	Chat(ctx context.Context, req minimax.ChatRequest) (string, error)
}

// turnGuard hands out monotonic turn ids per session. The latest turn wins:
// beginning a new turn supersedes any turn still awaiting its reply, and a
// reply carrying a stale turn id is discarded instead of overwriting the
// newer turn's state.
type turnGuard struct {
	mu      sync.Mutex
	current map[string]int
}

func newTurnGuard() *turnGuard {
	return &turnGuard{current: map[string]int{}}
}

func (g *turnGuard) begin(sessionID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current[sessionID]++
	return g.current[sessionID]
}

// finish reports whether the turn id is still current.
func (g *turnGuard) finish(sessionID string, turnID int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current[sessionID] == turnID
}

// forget drops the counter for a session that will take no more turns.
func (g *turnGuard) forget(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.current, sessionID)
}

// Orchestrator runs interview turns: it persists the user message, asks the
// AI interviewer for the next question, and persists the reply (or a fixed
// apology when the provider fails).
type Orchestrator struct {
	store store.Store
	chat  ChatClient
	guard *turnGuard
	now   func() time.Time
}

func NewOrchestrator(st store.Store, chat ChatClient) *Orchestrator {
	return &Orchestrator{
		store: st,
		chat:  chat,
		guard: newTurnGuard(),
		now:   time.Now,
	}
}

// StartSession writes the opening assistant message for a fresh session.
func (o *Orchestrator) StartSession(sess domain.InterviewSession, subjectName string) (domain.InterviewMessage, error) {
	msg := domain.InterviewMessage{
		ID:        util.NewID(),
		SessionID: sess.ID,
		Role:      domain.RoleAssistant,
		Content:   WelcomeMessage(subjectName, sess.Chapter),
		CreatedAt: o.now(),
	}
	if err := o.store.AppendMessage(msg); err != nil {
		return domain.InterviewMessage{}, fmt.Errorf("append welcome message: %w", err)
	}
	return msg, nil
}

// EndSession releases turn state for a session that completed.
func (o *Orchestrator) EndSession(sessionID string) {
	o.guard.forget(sessionID)
}

// SubmitTurn runs one interview turn and returns the assistant reply.
// The user message is persisted before the AI call, so a provider failure
// or a superseding turn never loses what the user typed.
func (o *Orchestrator) SubmitTurn(ctx context.Context, sess domain.InterviewSession, subjectName, content string, referencedUploads []string) (domain.InterviewMessage, error) {
	if sess.Status != domain.SessionActive {
		return domain.InterviewMessage{}, ErrSessionNotActive
	}

	turnID := o.guard.begin(sess.ID)

	userMsg := domain.InterviewMessage{
		ID:                util.NewID(),
		SessionID:         sess.ID,
		Role:              domain.RoleUser,
		Content:           content,
		ReferencedUploads: referencedUploads,
		CreatedAt:         o.now(),
	}
	if err := o.store.AppendMessage(userMsg); err != nil {
		return domain.InterviewMessage{}, fmt.Errorf("append user message: %w", err)
	}

	reply := o.generateReply(ctx, sess, subjectName)

	if !o.guard.finish(sess.ID, turnID) {
		// A newer turn superseded this one; drop the reply. The newer turn
		// sees the user message, which is already in the transcript.
		slog.Warn("discarding stale interview reply", "session_id", sess.ID, "turn_id", turnID)
		return domain.InterviewMessage{}, ErrTurnSuperseded
	}

	assistantMsg := domain.InterviewMessage{
		ID:        util.NewID(),
		SessionID: sess.ID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: o.now(),
	}
	if err := o.store.AppendMessage(assistantMsg); err != nil {
		return domain.InterviewMessage{}, fmt.Errorf("append assistant message: %w", err)
	}
	return assistantMsg, nil
}

// generateReply builds the prompt from project memory and the transcript
// and asks the AI interviewer. Failures degrade to the apology message.
func (o *Orchestrator) generateReply(ctx context.Context, sess domain.InterviewSession, subjectName string) string {
	facts, err := o.store.ListMemoriesByType(sess.ProjectID, domain.MemoryFact)
	if err != nil {
		slog.Error("load known facts", "session_id", sess.ID, "error", err)
		return ApologyMessage
	}
	known := make([]string, 0, len(facts))
	for _, f := range facts {
		known = append(known, f.Content)
	}

	transcript, err := o.store.ListMessagesBySession(sess.ID)
	if err != nil {
		slog.Error("load transcript", "session_id", sess.ID, "error", err)
		return ApologyMessage
	}

	messages := []minimax.Message{{
		Role: "system",
		Content: BiographySystemPrompt(PromptContext{
			SubjectName:    subjectName,
			CurrentChapter: sess.Chapter,
			KnownFacts:     known,
		}),
	}}
	for _, m := range transcript {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, minimax.Message{Role: string(m.Role), Content: m.Content})
	}

	reply, err := o.chat.Chat(ctx, minimax.ChatRequest{Messages: messages})
	if err != nil {
		slog.Error("interviewer chat failed", "session_id", sess.ID, "error", err)
		return ApologyMessage
	}
	return reply
}
