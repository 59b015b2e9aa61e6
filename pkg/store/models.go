package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence. Column names are the snake_case
// counterparts of the camelCase domain fields; the to/from helpers in
// gorm_store.go are the translation layer between the two shapes.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"index"`
	PasswordHash string
	Name         string    `gorm:"not null"`
	IsAnonymous  bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type BiographyProjectModel struct {
	ID                string `gorm:"primaryKey"`
	UserID            string `gorm:"not null;index"`
	SubjectName       string `gorm:"not null"`
	SubjectBirthDate  string
	SubjectBirthPlace string
	SubjectGender     string
	ProjectType       string `gorm:"not null"`
	ProjectGoal       string
	Status            string    `gorm:"not null"`
	ProgressPercent   int       `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null;index"`
	UpdatedAt         time.Time `gorm:"not null"`
}

func (BiographyProjectModel) TableName() string { return "biography_projects" }

type UploadModel struct {
	ID                string `gorm:"primaryKey"`
	ProjectID         string `gorm:"not null;index"`
	FileType          string `gorm:"not null"`
	FileURL           string `gorm:"not null"`
	FileName          string `gorm:"not null"`
	FileSize          int64  `gorm:"not null"`
	OCRText           string `gorm:"column:ocr_text;type:text"`
	ExtractedMetadata datatypes.JSON `gorm:"type:jsonb"`
	AIAnalysis        datatypes.JSON `gorm:"column:ai_analysis;type:jsonb"`
	UploadedAt        time.Time      `gorm:"not null;index"`
}

func (UploadModel) TableName() string { return "uploads" }

type InterviewSessionModel struct {
	ID            string `gorm:"primaryKey"`
	ProjectID     string `gorm:"not null;index"`
	SessionNumber int    `gorm:"not null"`
	Chapter       string
	Mode          string    `gorm:"not null"`
	Status        string    `gorm:"not null"`
	StartedAt     time.Time `gorm:"not null"`
	EndedAt       *time.Time
	Summary       string         `gorm:"type:text"`
	KeyFindings   datatypes.JSON `gorm:"type:jsonb"`
	NextQuestions datatypes.JSON `gorm:"type:jsonb"`
}

func (InterviewSessionModel) TableName() string { return "interview_sessions" }

type InterviewMessageModel struct {
	ID                string `gorm:"primaryKey"`
	SessionID         string `gorm:"not null;index"`
	Role              string `gorm:"not null"`
	Content           string `gorm:"type:text;not null"`
	AudioURL          string
	AudioDuration     float64
	ReferencedUploads datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt         time.Time      `gorm:"not null;index"`
}

func (InterviewMessageModel) TableName() string { return "interview_messages" }

type AIMemoryModel struct {
	ID         string `gorm:"primaryKey"`
	ProjectID  string `gorm:"not null;index"`
	MemoryType string `gorm:"not null;index"`
	Content    string `gorm:"type:text;not null"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"`
	Confidence float64
	SourceType string
	SourceID   string
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (AIMemoryModel) TableName() string { return "ai_memory" }

type EbookModel struct {
	ID          string `gorm:"primaryKey"`
	ProjectID   string `gorm:"not null;index"`
	Version     int    `gorm:"not null"`
	Title       string
	Content     datatypes.JSON `gorm:"type:jsonb"`
	EpubURL     string
	PdfURL      string
	Status      string    `gorm:"not null"`
	GeneratedAt time.Time `gorm:"not null"`
}

func (EbookModel) TableName() string { return "ebooks" }
