package store

import (
	"time"

	"github.com/Lovecoded2024/timejournal/pkg/domain"
)

// Store defines persistence operations for the six biography entities
// plus users. List ordering follows what the UI expects: projects and
// memories newest first, uploads newest first, sessions by number,
// messages in transcript order, ebooks by version descending.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// projects
	CreateProject(domain.BiographyProject) error
	GetProject(id string) (domain.BiographyProject, bool, error)
	ListProjectsByUser(userID string) ([]domain.BiographyProject, error)
	UpdateProject(id string, upd ProjectUpdate) error

	// uploads
	CreateUpload(domain.Upload) error
	GetUpload(id string) (domain.Upload, bool, error)
	ListUploadsByProject(projectID string) ([]domain.Upload, error)
	SetUploadAnalysis(id string, analysis map[string]any) error

	// interview sessions
	CreateSession(domain.InterviewSession) error
	GetSession(id string) (domain.InterviewSession, bool, error)
	ListSessionsByProject(projectID string) ([]domain.InterviewSession, error)
	UpdateSession(id string, upd SessionUpdate) error
	NextSessionNumber(projectID string) (int, error)

	// messages
	AppendMessage(domain.InterviewMessage) error
	ListMessagesBySession(sessionID string) ([]domain.InterviewMessage, error)

	// memories
	CreateMemory(domain.AIMemory) error
	ListMemoriesByProject(projectID string) ([]domain.AIMemory, error)
	ListMemoriesByType(projectID string, memoryType domain.MemoryType) ([]domain.AIMemory, error)

	// ebooks
	CreateEbook(domain.Ebook) error
	GetEbook(id string) (domain.Ebook, bool, error)
	ListEbooksByProject(projectID string) ([]domain.Ebook, error)
	UpdateEbook(id string, upd EbookUpdate) error
	NextEbookVersion(projectID string) (int, error)
}

// ProjectUpdate is a selective update: only non-nil fields are written.
type ProjectUpdate struct {
	SubjectName       *string
	SubjectBirthDate  *string
	SubjectBirthPlace *string
	SubjectGender     *string
	ProjectType       *domain.ProjectType
	ProjectGoal       *string
	Status            *domain.ProjectStatus
	ProgressPercent   *int
}

// SessionUpdate is a selective update for an interview session.
type SessionUpdate struct {
	Status        *domain.SessionStatus
	Chapter       *string
	Summary       *string
	KeyFindings   *[]string
	NextQuestions *[]string
	EndedAt       *time.Time
}

// EbookUpdate is a selective update for an ebook record.
type EbookUpdate struct {
	Title   *string
	Status  *domain.EbookStatus
	EpubURL *string
	PdfURL  *string
}

// TokenStore issues and resolves auth session tokens.
type TokenStore interface {
	Issue(userID string) (string, error)
	UserID(token string) (string, bool, error)
	Revoke(token string) error
}
