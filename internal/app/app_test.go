package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Lovecoded2024/timejournal/pkg/domain"
	"github.com/Lovecoded2024/timejournal/pkg/minimax"
	"github.com/Lovecoded2024/timejournal/pkg/storage"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

type fakeAI struct {
	chat   func(ctx context.Context, req minimax.ChatRequest) (string, error)
	vision func(ctx context.Context, imageBase64, prompt string) (minimax.ImageAnalysis, error)
	tts    func(ctx context.Context, text, voiceID string) (minimax.Speech, error)
}

func (f *fakeAI) Chat(ctx context.Context, req minimax.ChatRequest) (string, error) {
	if f.chat == nil {
		return "好的，请继续讲。", nil
	}
	return f.chat(ctx, req)
}

func (f *fakeAI) AnalyzeImage(ctx context.Context, imageBase64, prompt string) (minimax.ImageAnalysis, error) {
	if f.vision == nil {
		return minimax.ImageAnalysis{Description: "一张老照片"}, nil
	}
	return f.vision(ctx, imageBase64, prompt)
}

func (f *fakeAI) TextToSpeech(ctx context.Context, text, voiceID string) (minimax.Speech, error) {
	if f.tts == nil {
		return minimax.Speech{AudioDataURI: "data:audio/mp3;base64,aGVsbG8=", Duration: 1.5}, nil
	}
	return f.tts(ctx, text, voiceID)
}

func newTestApp(t *testing.T) (*App, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	tokens := store.NewJWTTokenStore("test-secret", time.Hour)
	a := New(st, tokens, storage.NewMemoryObjectStore(), &fakeAI{}, Config{AnalyzeConcurrency: 2})
	return a, st
}

func signedInUser(t *testing.T, a *App) AuthResult {
	t.Helper()
	res, err := a.SignInAnonymously("测试用户")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return res
}

func TestCreateProjectRequiresSubjectName(t *testing.T) {
	a, st := newTestApp(t)
	user := signedInUser(t, a)

	_, err := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	projects, _ := st.ListProjectsByUser(user.User.ID)
	if len(projects) != 0 {
		t.Fatalf("nothing should be written on validation failure, got %d projects", len(projects))
	}
}

func TestCreateProjectRoundTrip(t *testing.T) {
	a, _ := newTestApp(t)
	user := signedInUser(t, a)

	created, err := a.CreateProject(user.User.ID, CreateProjectInput{
		SubjectName: "张老先生",
		ProjectType: "family",
		ProjectGoal: "记录爷爷的一生",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := a.GetProject(user.User.ID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SubjectName != "张老先生" || got.Status != domain.ProjectDraft || got.ProgressPercent != 0 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.ProjectType != domain.ProjectFamily {
		t.Fatalf("project type = %q", got.ProjectType)
	}
}

func TestGetProjectHidesOtherUsers(t *testing.T) {
	a, _ := newTestApp(t)
	owner := signedInUser(t, a)
	stranger := signedInUser(t, a)

	project, err := a.CreateProject(owner.User.ID, CreateProjectInput{SubjectName: "张老先生"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := a.GetProject(stranger.User.ID, project.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for another user, got %v", err)
	}
}

func TestUpdateProjectValidatesProgress(t *testing.T) {
	a, _ := newTestApp(t)
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})

	bad := 150
	if _, err := a.UpdateProject(user.User.ID, project.ID, UpdateProjectInput{ProgressPercent: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	good := 40
	updated, err := a.UpdateProject(user.User.ID, project.ID, UpdateProjectInput{ProgressPercent: &good})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ProgressPercent != 40 {
		t.Fatalf("progress = %d, want 40", updated.ProgressPercent)
	}
}

func TestSignUpValidation(t *testing.T) {
	a, _ := newTestApp(t)

	if _, err := a.SignUpWithEmail("not-an-email", "longenough", "张三"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad email: expected validation error, got %v", err)
	}
	if _, err := a.SignUpWithEmail("zhang@example.com", "short", "张三"); !errors.Is(err, ErrValidation) {
		t.Fatalf("short password: expected validation error, got %v", err)
	}
	if _, err := a.SignUpWithEmail("Zhang@Example.com", "secret123", "张三"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	// email comparisons are case-insensitive
	if _, err := a.SignUpWithEmail("zhang@example.com", "secret123", "张三"); !errors.Is(err, ErrValidation) {
		t.Fatalf("duplicate email: expected validation error, got %v", err)
	}
}

func TestSignInWithEmail(t *testing.T) {
	a, _ := newTestApp(t)
	if _, err := a.SignUpWithEmail("zhang@example.com", "secret123", "张三"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	res, err := a.SignInWithEmail("zhang@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	user, ok, err := a.UserFromToken(res.Token)
	if err != nil || !ok {
		t.Fatalf("resolve token: ok=%v err=%v", ok, err)
	}
	if user.Email != "zhang@example.com" || user.IsAnonymous {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := a.SignInWithEmail("zhang@example.com", "wrongpass"); !errors.Is(err, ErrValidation) {
		t.Fatalf("wrong password: expected validation error, got %v", err)
	}
}

func TestStartSessionNumbersAndWelcome(t *testing.T) {
	a, st := newTestApp(t)
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})

	first, err := a.StartSession(user.User.ID, project.ID, StartSessionInput{Chapter: "大学时光"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := a.StartSession(user.User.ID, project.ID, StartSessionInput{Chapter: "工作岁月"})
	if err != nil {
		t.Fatalf("start second: %v", err)
	}
	if first.SessionNumber != 1 || second.SessionNumber != 2 {
		t.Fatalf("session numbers = %d, %d", first.SessionNumber, second.SessionNumber)
	}

	msgs, _ := st.ListMessagesBySession(first.ID)
	if len(msgs) != 1 || msgs[0].Role != domain.RoleAssistant {
		t.Fatalf("expected a welcome message, got %+v", msgs)
	}
	if !strings.Contains(msgs[0].Content, "张老先生") || !strings.Contains(msgs[0].Content, "大学时光") {
		t.Fatalf("welcome message missing context: %s", msgs[0].Content)
	}

	reloaded, _ := a.GetProject(user.User.ID, project.ID)
	if reloaded.Status != domain.ProjectInterviewing {
		t.Fatalf("project status = %q, want interviewing", reloaded.Status)
	}
}

func TestSubmitMessageAndTranscript(t *testing.T) {
	a, _ := newTestApp(t)
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})
	session, _ := a.StartSession(user.User.ID, project.ID, StartSessionInput{Chapter: "大学时光"})

	reply, err := a.SubmitMessage(context.Background(), user.User.ID, session.ID, "我1975年上的大学", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if reply.Role != domain.RoleAssistant || reply.Content == "" {
		t.Fatalf("unexpected reply %+v", reply)
	}

	msgs, err := a.ListMessages(user.User.ID, session.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// welcome + user + assistant
	if len(msgs) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(msgs))
	}
}

func TestEndSessionRecordsFindings(t *testing.T) {
	a, _ := newTestApp(t)
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})
	session, _ := a.StartSession(user.User.ID, project.ID, StartSessionInput{})

	ended, err := a.EndSession(user.User.ID, session.ID, EndSessionInput{
		Summary:       "聊了大学的宿舍生活",
		KeyFindings:   []string{"1975年入学"},
		NextQuestions: []string{"毕业后去了哪里？"},
	})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.Status != domain.SessionCompleted || ended.EndedAt == nil {
		t.Fatalf("session not completed: %+v", ended)
	}
	if len(ended.KeyFindings) != 1 || ended.KeyFindings[0] != "1975年入学" {
		t.Fatalf("key findings lost: %+v", ended)
	}
	if _, err := a.EndSession(user.User.ID, session.ID, EndSessionInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("double end: expected validation error, got %v", err)
	}
}

func TestCreateUploadExtractsTextAndStoresFile(t *testing.T) {
	a, _ := newTestApp(t)
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})

	upload, err := a.CreateUpload(context.Background(), user.User.ID, project.ID, "memoir.txt", "text/plain", []byte("1975年，我考上了大学。"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if upload.FileType != domain.FileText {
		t.Fatalf("file type = %q", upload.FileType)
	}
	if !strings.Contains(upload.OCRText, "1975年") {
		t.Fatalf("text not extracted: %q", upload.OCRText)
	}
	if !strings.HasPrefix(upload.FileURL, project.ID+"/") {
		t.Fatalf("object key should be scoped to the project: %q", upload.FileURL)
	}

	url, err := a.UploadDownloadURL(context.Background(), user.User.ID, upload.ID)
	if err != nil || url == "" {
		t.Fatalf("presign: url=%q err=%v", url, err)
	}
}

func TestCreateUploadRejectsUnknownExtension(t *testing.T) {
	a, _ := newTestApp(t)
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})

	if _, err := a.CreateUpload(context.Background(), user.User.ID, project.ID, "virus.exe", "application/octet-stream", []byte{1}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported-operation, got %v", err)
	}
}

func TestAnalyzeUploadMapsNotImage(t *testing.T) {
	a, _ := newTestApp(t)
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})
	doc, err := a.CreateUpload(context.Background(), user.User.ID, project.ID, "memoir.txt", "text/plain", []byte("文本"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := a.AnalyzeUpload(context.Background(), user.User.ID, doc.ID); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported-operation, got %v", err)
	}
}

func TestGenerateAndPublishEbook(t *testing.T) {
	a, _ := newTestApp(t)
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})

	// no interview content yet
	if _, err := a.GenerateEbook(context.Background(), user.User.ID, project.ID, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error without content, got %v", err)
	}

	session, _ := a.StartSession(user.User.ID, project.ID, StartSessionInput{Chapter: "大学时光"})
	if _, err := a.SubmitMessage(context.Background(), user.User.ID, session.ID, "我1975年上的大学", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ebook, err := a.GenerateEbook(context.Background(), user.User.ID, project.ID, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ebook.Version != 1 || ebook.Status != domain.EbookDraft {
		t.Fatalf("unexpected ebook %+v", ebook)
	}
	if len(ebook.Chapters) != 1 || ebook.Chapters[0].Title != "大学时光" {
		t.Fatalf("unexpected chapters %+v", ebook.Chapters)
	}
	if !strings.Contains(ebook.Title, "张老先生") {
		t.Fatalf("default title should mention the subject: %q", ebook.Title)
	}

	published, err := a.PublishEbook(context.Background(), user.User.ID, ebook.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != domain.EbookPublished || published.EpubURL == "" || published.PdfURL == "" {
		t.Fatalf("publish incomplete: %+v", published)
	}
	if published.Version != 1 {
		t.Fatalf("publishing must not bump the version: %+v", published)
	}
	if _, err := a.PublishEbook(context.Background(), user.User.ID, ebook.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("double publish: expected validation error, got %v", err)
	}

	second, err := a.GenerateEbook(context.Background(), user.User.ID, project.ID, "第二版")
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("version = %d, want 2", second.Version)
	}
}

func TestGenerateEbookRemoteFailure(t *testing.T) {
	st := store.NewMemoryStore()
	ai := &fakeAI{chat: func(_ context.Context, req minimax.ChatRequest) (string, error) {
		return "", errors.New("provider down")
	}}
	a := New(st, store.NewJWTTokenStore("test-secret", time.Hour), storage.NewMemoryObjectStore(), ai, Config{})
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})
	session, _ := a.StartSession(user.User.ID, project.ID, StartSessionInput{})
	// chat failing during the turn degrades to the apology, still user content
	if _, err := a.SubmitMessage(context.Background(), user.User.ID, session.ID, "我1975年上的大学", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := a.GenerateEbook(context.Background(), user.User.ID, project.ID, ""); !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected remote-unavailable, got %v", err)
	}
}

func TestMemoriesFeedInterviewPrompt(t *testing.T) {
	st := store.NewMemoryStore()
	var system string
	ai := &fakeAI{chat: func(_ context.Context, req minimax.ChatRequest) (string, error) {
		if len(req.Messages) > 0 && req.Messages[0].Role == "system" {
			system, _ = req.Messages[0].Content.(string)
		}
		return "继续", nil
	}}
	a := New(st, store.NewJWTTokenStore("test-secret", time.Hour), storage.NewMemoryObjectStore(), ai, Config{})
	user := signedInUser(t, a)
	project, _ := a.CreateProject(user.User.ID, CreateProjectInput{SubjectName: "张老先生"})

	if _, err := a.CreateMemory(user.User.ID, project.ID, CreateMemoryInput{MemoryType: "fact", Content: "1975年入学", Confidence: 0.9}); err != nil {
		t.Fatalf("create memory: %v", err)
	}
	session, _ := a.StartSession(user.User.ID, project.ID, StartSessionInput{Chapter: "大学时光"})
	if _, err := a.SubmitMessage(context.Background(), user.User.ID, session.ID, "你好", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(system, "1975年入学") {
		t.Fatalf("known fact missing from system prompt:\n%s", system)
	}
}
