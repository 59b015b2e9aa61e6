package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lovecoded2024/timejournal/internal/interview"
	"github.com/Lovecoded2024/timejournal/internal/util"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
	"github.com/Lovecoded2024/timejournal/pkg/minimax"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

// StartSessionInput begins an interview round for a project.
type StartSessionInput struct {
	Chapter string `json:"chapter"`
	Mode    string `json:"mode"`
}

// EndSessionInput closes a session with the interviewer's takeaways.
type EndSessionInput struct {
	Summary       string   `json:"summary"`
	KeyFindings   []string `json:"keyFindings"`
	NextQuestions []string `json:"nextQuestions"`
}

// StartSession creates the next numbered session and writes the welcome
// message. A draft project moves to interviewing on its first session.
func (a *App) StartSession(userID, projectID string, in StartSessionInput) (domain.InterviewSession, error) {
	project, err := a.ownedProject(userID, projectID)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	mode := domain.SessionMode(in.Mode)
	switch mode {
	case "":
		mode = domain.ModeText
	case domain.ModeText, domain.ModeVoice:
	default:
		return domain.InterviewSession{}, validationf("无效的访谈模式 %q", in.Mode)
	}

	number, err := a.store.NextSessionNumber(projectID)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("next session number: %w", err)
	}
	session := domain.InterviewSession{
		ID:            util.NewID(),
		ProjectID:     projectID,
		SessionNumber: number,
		Chapter:       in.Chapter,
		Mode:          mode,
		Status:        domain.SessionActive,
		StartedAt:     a.now(),
	}
	if err := a.store.CreateSession(session); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("create session: %w", err)
	}
	if _, err := a.orchestrator.StartSession(session, project.SubjectName); err != nil {
		return domain.InterviewSession{}, err
	}
	if project.Status == domain.ProjectDraft {
		status := domain.ProjectInterviewing
		if err := a.store.UpdateProject(projectID, store.ProjectUpdate{Status: &status}); err != nil {
			return domain.InterviewSession{}, fmt.Errorf("update project status: %w", err)
		}
	}
	return session, nil
}

func (a *App) GetSession(userID, sessionID string) (domain.InterviewSession, error) {
	session, _, err := a.ownedSession(userID, sessionID)
	return session, err
}

func (a *App) ListSessions(userID, projectID string) ([]domain.InterviewSession, error) {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return nil, err
	}
	return a.store.ListSessionsByProject(projectID)
}

func (a *App) EndSession(userID, sessionID string, in EndSessionInput) (domain.InterviewSession, error) {
	session, _, err := a.ownedSession(userID, sessionID)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	if session.Status == domain.SessionCompleted {
		return domain.InterviewSession{}, validationf("访谈已经结束")
	}
	status := domain.SessionCompleted
	endedAt := a.now()
	upd := store.SessionUpdate{
		Status:  &status,
		Summary: &in.Summary,
		EndedAt: &endedAt,
	}
	if in.KeyFindings != nil {
		upd.KeyFindings = &in.KeyFindings
	}
	if in.NextQuestions != nil {
		upd.NextQuestions = &in.NextQuestions
	}
	if err := a.store.UpdateSession(sessionID, upd); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("end session: %w", err)
	}
	a.orchestrator.EndSession(sessionID)
	session, _, err = a.store.GetSession(sessionID)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("reload session: %w", err)
	}
	return session, nil
}

func (a *App) ListMessages(userID, sessionID string) ([]domain.InterviewMessage, error) {
	if _, _, err := a.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}
	return a.store.ListMessagesBySession(sessionID)
}

// SubmitMessage runs one interview turn and returns the assistant reply.
func (a *App) SubmitMessage(ctx context.Context, userID, sessionID, content string, referencedUploads []string) (domain.InterviewMessage, error) {
	if content == "" {
		return domain.InterviewMessage{}, validationf("消息内容不能为空")
	}
	session, project, err := a.ownedSession(userID, sessionID)
	if err != nil {
		return domain.InterviewMessage{}, err
	}
	reply, err := a.orchestrator.SubmitTurn(ctx, session, project.SubjectName, content, referencedUploads)
	if err != nil {
		if errors.Is(err, interview.ErrTurnSuperseded) {
			return domain.InterviewMessage{}, validationf("这条消息已被更新的消息取代")
		}
		if errors.Is(err, interview.ErrSessionNotActive) {
			return domain.InterviewMessage{}, validationf("访谈不在进行中")
		}
		return domain.InterviewMessage{}, err
	}
	return reply, nil
}

// Speech synthesizes voice-mode audio for an assistant reply.
func (a *App) Speech(ctx context.Context, userID, sessionID, text, voiceID string) (minimax.Speech, error) {
	if text == "" {
		return minimax.Speech{}, validationf("请提供要朗读的文本")
	}
	if _, _, err := a.ownedSession(userID, sessionID); err != nil {
		return minimax.Speech{}, err
	}
	if voiceID == "" {
		voiceID = a.ttsVoice
	}
	speech, err := a.ai.TextToSpeech(ctx, text, voiceID)
	if err != nil {
		return minimax.Speech{}, remotef("语音合成失败: %v", err)
	}
	return speech, nil
}

func (a *App) ownedSession(userID, sessionID string) (domain.InterviewSession, domain.BiographyProject, error) {
	session, ok, err := a.store.GetSession(sessionID)
	if err != nil {
		return domain.InterviewSession{}, domain.BiographyProject{}, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return domain.InterviewSession{}, domain.BiographyProject{}, notFoundf("访谈 %s 不存在", sessionID)
	}
	project, err := a.ownedProject(userID, session.ProjectID)
	if err != nil {
		return domain.InterviewSession{}, domain.BiographyProject{}, err
	}
	return session, project, nil
}
