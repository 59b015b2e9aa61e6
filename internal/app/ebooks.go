package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lovecoded2024/timejournal/internal/util"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
	"github.com/Lovecoded2024/timejournal/pkg/minimax"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

// GenerateEbook drafts a new ebook version from the project's interview
// transcripts: one chapter per session that produced any conversation.
func (a *App) GenerateEbook(ctx context.Context, userID, projectID, title string) (domain.Ebook, error) {
	project, err := a.ownedProject(userID, projectID)
	if err != nil {
		return domain.Ebook{}, err
	}
	sessions, err := a.store.ListSessionsByProject(projectID)
	if err != nil {
		return domain.Ebook{}, fmt.Errorf("list sessions: %w", err)
	}

	var chapters []domain.EbookChapter
	for _, session := range sessions {
		transcript, err := a.store.ListMessagesBySession(session.ID)
		if err != nil {
			return domain.Ebook{}, fmt.Errorf("load transcript: %w", err)
		}
		if !hasUserContent(transcript) {
			continue
		}
		body, err := a.writeChapter(ctx, project, session, transcript)
		if err != nil {
			return domain.Ebook{}, remotef("章节生成失败: %v", err)
		}
		chapters = append(chapters, domain.EbookChapter{
			Title: chapterTitle(session),
			Body:  body,
		})
	}
	if len(chapters) == 0 {
		return domain.Ebook{}, validationf("还没有可以成书的访谈内容")
	}

	version, err := a.store.NextEbookVersion(projectID)
	if err != nil {
		return domain.Ebook{}, fmt.Errorf("next ebook version: %w", err)
	}
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("%s的人生故事", project.SubjectName)
	}
	ebook := domain.Ebook{
		ID:          util.NewID(),
		ProjectID:   projectID,
		Version:     version,
		Title:       title,
		Chapters:    chapters,
		Status:      domain.EbookDraft,
		GeneratedAt: a.now(),
	}
	if err := a.store.CreateEbook(ebook); err != nil {
		return domain.Ebook{}, fmt.Errorf("save ebook: %w", err)
	}
	return ebook, nil
}

func (a *App) GetEbook(userID, ebookID string) (domain.Ebook, error) {
	return a.ownedEbook(userID, ebookID)
}

func (a *App) ListEbooks(userID, projectID string) ([]domain.Ebook, error) {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return nil, err
	}
	return a.store.ListEbooksByProject(projectID)
}

// PublishEbook freezes a draft: the chapter text is exported to object
// storage and the record gets presigned download URLs. Real EPUB/PDF
// rendering is a separate concern; the exports carry the plain text.
func (a *App) PublishEbook(ctx context.Context, userID, ebookID string) (domain.Ebook, error) {
	ebook, err := a.ownedEbook(userID, ebookID)
	if err != nil {
		return domain.Ebook{}, err
	}
	if ebook.Status == domain.EbookPublished {
		return domain.Ebook{}, validationf("电子书已经发布")
	}

	rendered := renderEbookText(ebook)
	epubURL, err := a.exportEbook(ctx, ebook, "epub", rendered)
	if err != nil {
		return domain.Ebook{}, err
	}
	pdfURL, err := a.exportEbook(ctx, ebook, "pdf", rendered)
	if err != nil {
		return domain.Ebook{}, err
	}

	status := domain.EbookPublished
	upd := store.EbookUpdate{Status: &status, EpubURL: &epubURL, PdfURL: &pdfURL}
	if err := a.store.UpdateEbook(ebookID, upd); err != nil {
		return domain.Ebook{}, fmt.Errorf("publish ebook: %w", err)
	}
	ebook, _, err = a.store.GetEbook(ebookID)
	if err != nil {
		return domain.Ebook{}, fmt.Errorf("reload ebook: %w", err)
	}
	return ebook, nil
}

func (a *App) exportEbook(ctx context.Context, ebook domain.Ebook, format, rendered string) (string, error) {
	key := fmt.Sprintf("%s/ebooks/v%d.%s", ebook.ProjectID, ebook.Version, format)
	if err := a.objects.Put(ctx, key, strings.NewReader(rendered), int64(len(rendered)), "text/plain; charset=utf-8"); err != nil {
		return "", fmt.Errorf("export %s: %w", format, err)
	}
	url, err := a.objects.PresignGet(ctx, key, a.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", format, err)
	}
	return url, nil
}

// writeChapter asks the AI to turn one session's transcript into prose.
func (a *App) writeChapter(ctx context.Context, project domain.BiographyProject, session domain.InterviewSession, transcript []domain.InterviewMessage) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "请根据以下访谈记录，为%s的传记写一个章节。", project.SubjectName)
	if session.Chapter != "" {
		fmt.Fprintf(&b, "本章主题：%s。", session.Chapter)
	}
	b.WriteString("要求：第三人称叙述，保留真实细节和引语，文字温暖流畅，不要编造访谈中没有的内容。\n\n访谈记录：\n")
	for _, m := range transcript {
		switch m.Role {
		case domain.RoleUser:
			fmt.Fprintf(&b, "讲述者：%s\n", m.Content)
		case domain.RoleAssistant:
			fmt.Fprintf(&b, "采访者：%s\n", m.Content)
		}
	}
	return a.ai.Chat(ctx, minimax.ChatRequest{
		Messages:  []minimax.Message{{Role: "user", Content: b.String()}},
		MaxTokens: 4000,
	})
}

func chapterTitle(session domain.InterviewSession) string {
	if session.Chapter != "" {
		return session.Chapter
	}
	return fmt.Sprintf("第%d次访谈", session.SessionNumber)
}

func hasUserContent(transcript []domain.InterviewMessage) bool {
	for _, m := range transcript {
		if m.Role == domain.RoleUser {
			return true
		}
	}
	return false
}

func renderEbookText(ebook domain.Ebook) string {
	var b strings.Builder
	b.WriteString(ebook.Title)
	b.WriteString("\n\n")
	for _, chapter := range ebook.Chapters {
		b.WriteString(chapter.Title)
		b.WriteString("\n\n")
		b.WriteString(chapter.Body)
		b.WriteString("\n\n")
	}
	return b.String()
}

func (a *App) ownedEbook(userID, ebookID string) (domain.Ebook, error) {
	ebook, ok, err := a.store.GetEbook(ebookID)
	if err != nil {
		return domain.Ebook{}, fmt.Errorf("load ebook: %w", err)
	}
	if !ok {
		return domain.Ebook{}, notFoundf("电子书 %s 不存在", ebookID)
	}
	if _, err := a.ownedProject(userID, ebook.ProjectID); err != nil {
		return domain.Ebook{}, err
	}
	return ebook, nil
}
