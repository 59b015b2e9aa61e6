package domain

import "time"

type ProjectStatus string

const (
	ProjectDraft        ProjectStatus = "draft"
	ProjectInterviewing ProjectStatus = "interviewing"
	ProjectReviewing    ProjectStatus = "reviewing"
	ProjectCompleted    ProjectStatus = "completed"
)

type ProjectType string

const (
	ProjectSelf   ProjectType = "self"
	ProjectFamily ProjectType = "family"
)

type FileType string

const (
	FileImage    FileType = "image"
	FileAudio    FileType = "audio"
	FileDocument FileType = "document"
	FileText     FileType = "text"
)

type SessionMode string

const (
	ModeText  SessionMode = "text"
	ModeVoice SessionMode = "voice"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
)

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type MemoryType string

const (
	MemoryFact            MemoryType = "fact"
	MemoryTimelineEvent   MemoryType = "timeline_event"
	MemoryPerson          MemoryType = "person"
	MemoryStoryCandidate  MemoryType = "story_candidate"
	MemoryPendingQuestion MemoryType = "pending_question"
)

type EbookStatus string

const (
	EbookDraft     EbookStatus = "draft"
	EbookPublished EbookStatus = "published"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	IsAnonymous  bool      `json:"isAnonymous"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BiographyProject is the root entity: one life story being recorded.
type BiographyProject struct {
	ID                string        `json:"id"`
	UserID            string        `json:"userId"`
	SubjectName       string        `json:"subjectName"`
	SubjectBirthDate  string        `json:"subjectBirthDate,omitempty"`
	SubjectBirthPlace string        `json:"subjectBirthPlace,omitempty"`
	SubjectGender     string        `json:"subjectGender,omitempty"`
	ProjectType       ProjectType   `json:"projectType"`
	ProjectGoal       string        `json:"projectGoal,omitempty"`
	Status            ProjectStatus `json:"status"`
	ProgressPercent   int           `json:"progressPercent"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

type Upload struct {
	ID                string         `json:"id"`
	ProjectID         string         `json:"projectId"`
	FileType          FileType       `json:"fileType"`
	FileURL           string         `json:"fileUrl"`
	FileName          string         `json:"fileName"`
	FileSize          int64          `json:"fileSize"`
	OCRText           string         `json:"ocrText,omitempty"`
	ExtractedMetadata map[string]any `json:"extractedMetadata,omitempty"`
	AIAnalysis        map[string]any `json:"aiAnalysis,omitempty"`
	UploadedAt        time.Time      `json:"uploadedAt"`
}

type InterviewSession struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"projectId"`
	SessionNumber int           `json:"sessionNumber"`
	Chapter       string        `json:"chapter,omitempty"`
	Mode          SessionMode   `json:"mode"`
	Status        SessionStatus `json:"status"`
	StartedAt     time.Time     `json:"startedAt"`
	EndedAt       *time.Time    `json:"endedAt,omitempty"`
	Summary       string        `json:"summary,omitempty"`
	KeyFindings   []string      `json:"keyFindings,omitempty"`
	NextQuestions []string      `json:"nextQuestions,omitempty"`
}

// InterviewMessage is one transcript entry. Messages are strictly ordered
// by CreatedAt within a session; the orchestrator relies on that ordering.
type InterviewMessage struct {
	ID                string      `json:"id"`
	SessionID         string      `json:"sessionId"`
	Role              MessageRole `json:"role"`
	Content           string      `json:"content"`
	AudioURL          string      `json:"audioUrl,omitempty"`
	AudioDuration     float64     `json:"audioDuration,omitempty"`
	ReferencedUploads []string    `json:"referencedUploads,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// AIMemory is a structured fact extracted from uploads or interviews,
// stored independently of the raw transcript.
type AIMemory struct {
	ID         string         `json:"id"`
	ProjectID  string         `json:"projectId"`
	MemoryType MemoryType     `json:"memoryType"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	SourceType string         `json:"sourceType,omitempty"`
	SourceID   string         `json:"sourceId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type EbookChapter struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Ebook struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"projectId"`
	Version     int            `json:"version"`
	Title       string         `json:"title,omitempty"`
	Chapters    []EbookChapter `json:"chapters,omitempty"`
	EpubURL     string         `json:"epubUrl,omitempty"`
	PdfURL      string         `json:"pdfUrl,omitempty"`
	Status      EbookStatus    `json:"status"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
