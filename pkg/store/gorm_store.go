package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Lovecoded2024/timejournal/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&BiographyProjectModel{},
		&UploadModel{},
		&InterviewSessionModel{},
		&InterviewMessageModel{},
		&AIMemoryModel{},
		&EbookModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// users

func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Save(&model).Error
}

func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// projects

func (s *GormStore) CreateProject(p domain.BiographyProject) error {
	model := projectToModel(p)
	return s.db.Create(&model).Error
}

func (s *GormStore) GetProject(id string) (domain.BiographyProject, bool, error) {
	var model BiographyProjectModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.BiographyProject{}, false, nil
		}
		return domain.BiographyProject{}, false, err
	}
	return projectFromModel(model), true, nil
}

func (s *GormStore) ListProjectsByUser(userID string) ([]domain.BiographyProject, error) {
	var models []BiographyProjectModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.BiographyProject, 0, len(models))
	for _, m := range models {
		res = append(res, projectFromModel(m))
	}
	return res, nil
}

// UpdateProject writes only the fields present in the update.
func (s *GormStore) UpdateProject(id string, upd ProjectUpdate) error {
	values := map[string]any{}
	if upd.SubjectName != nil {
		values["subject_name"] = *upd.SubjectName
	}
	if upd.SubjectBirthDate != nil {
		values["subject_birth_date"] = *upd.SubjectBirthDate
	}
	if upd.SubjectBirthPlace != nil {
		values["subject_birth_place"] = *upd.SubjectBirthPlace
	}
	if upd.SubjectGender != nil {
		values["subject_gender"] = *upd.SubjectGender
	}
	if upd.ProjectType != nil {
		values["project_type"] = string(*upd.ProjectType)
	}
	if upd.ProjectGoal != nil {
		values["project_goal"] = *upd.ProjectGoal
	}
	if upd.Status != nil {
		values["status"] = string(*upd.Status)
	}
	if upd.ProgressPercent != nil {
		values["progress_percent"] = *upd.ProgressPercent
	}
	if len(values) == 0 {
		return nil
	}
	return s.db.Model(&BiographyProjectModel{}).Where("id = ?", id).Updates(values).Error
}

// uploads

func (s *GormStore) CreateUpload(u domain.Upload) error {
	model, err := uploadToModel(u)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

func (s *GormStore) GetUpload(id string) (domain.Upload, bool, error) {
	var model UploadModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Upload{}, false, nil
		}
		return domain.Upload{}, false, err
	}
	return uploadFromModel(model), true, nil
}

func (s *GormStore) ListUploadsByProject(projectID string) ([]domain.Upload, error) {
	var models []UploadModel
	if err := s.db.Where("project_id = ?", projectID).Order("uploaded_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Upload, 0, len(models))
	for _, m := range models {
		res = append(res, uploadFromModel(m))
	}
	return res, nil
}

func (s *GormStore) SetUploadAnalysis(id string, analysis map[string]any) error {
	raw, err := toJSON(analysis)
	if err != nil {
		return err
	}
	return s.db.Model(&UploadModel{}).Where("id = ?", id).Update("ai_analysis", raw).Error
}

// interview sessions

func (s *GormStore) CreateSession(sess domain.InterviewSession) error {
	model, err := sessionToModel(sess)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

func (s *GormStore) GetSession(id string) (domain.InterviewSession, bool, error) {
	var model InterviewSessionModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.InterviewSession{}, false, nil
		}
		return domain.InterviewSession{}, false, err
	}
	return sessionFromModel(model), true, nil
}

func (s *GormStore) ListSessionsByProject(projectID string) ([]domain.InterviewSession, error) {
	var models []InterviewSessionModel
	if err := s.db.Where("project_id = ?", projectID).Order("session_number ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.InterviewSession, 0, len(models))
	for _, m := range models {
		res = append(res, sessionFromModel(m))
	}
	return res, nil
}

func (s *GormStore) UpdateSession(id string, upd SessionUpdate) error {
	values := map[string]any{}
	if upd.Status != nil {
		values["status"] = string(*upd.Status)
	}
	if upd.Chapter != nil {
		values["chapter"] = *upd.Chapter
	}
	if upd.Summary != nil {
		values["summary"] = *upd.Summary
	}
	if upd.KeyFindings != nil {
		raw, err := toJSON(*upd.KeyFindings)
		if err != nil {
			return err
		}
		values["key_findings"] = raw
	}
	if upd.NextQuestions != nil {
		raw, err := toJSON(*upd.NextQuestions)
		if err != nil {
			return err
		}
		values["next_questions"] = raw
	}
	if upd.EndedAt != nil {
		values["ended_at"] = *upd.EndedAt
	}
	if len(values) == 0 {
		return nil
	}
	return s.db.Model(&InterviewSessionModel{}).Where("id = ?", id).Updates(values).Error
}

// NextSessionNumber assigns session numbers server-side: max existing + 1.
func (s *GormStore) NextSessionNumber(projectID string) (int, error) {
	var max int
	err := s.db.Model(&InterviewSessionModel{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(session_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// messages

func (s *GormStore) AppendMessage(msg domain.InterviewMessage) error {
	model, err := messageToModel(msg)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

func (s *GormStore) ListMessagesBySession(sessionID string) ([]domain.InterviewMessage, error) {
	var models []InterviewMessageModel
	if err := s.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.InterviewMessage, 0, len(models))
	for _, m := range models {
		res = append(res, messageFromModel(m))
	}
	return res, nil
}

// memories

func (s *GormStore) CreateMemory(mem domain.AIMemory) error {
	model, err := memoryToModel(mem)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

func (s *GormStore) ListMemoriesByProject(projectID string) ([]domain.AIMemory, error) {
	return s.listMemories("project_id = ?", projectID)
}

func (s *GormStore) ListMemoriesByType(projectID string, memoryType domain.MemoryType) ([]domain.AIMemory, error) {
	return s.listMemories("project_id = ? AND memory_type = ?", projectID, string(memoryType))
}

func (s *GormStore) listMemories(cond string, args ...any) ([]domain.AIMemory, error) {
	var models []AIMemoryModel
	if err := s.db.Where(cond, args...).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.AIMemory, 0, len(models))
	for _, m := range models {
		res = append(res, memoryFromModel(m))
	}
	return res, nil
}

// ebooks

func (s *GormStore) CreateEbook(e domain.Ebook) error {
	model, err := ebookToModel(e)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

func (s *GormStore) GetEbook(id string) (domain.Ebook, bool, error) {
	var model EbookModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Ebook{}, false, nil
		}
		return domain.Ebook{}, false, err
	}
	return ebookFromModel(model), true, nil
}

func (s *GormStore) ListEbooksByProject(projectID string) ([]domain.Ebook, error) {
	var models []EbookModel
	if err := s.db.Where("project_id = ?", projectID).Order("version DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Ebook, 0, len(models))
	for _, m := range models {
		res = append(res, ebookFromModel(m))
	}
	return res, nil
}

func (s *GormStore) UpdateEbook(id string, upd EbookUpdate) error {
	values := map[string]any{}
	if upd.Title != nil {
		values["title"] = *upd.Title
	}
	if upd.Status != nil {
		values["status"] = string(*upd.Status)
	}
	if upd.EpubURL != nil {
		values["epub_url"] = *upd.EpubURL
	}
	if upd.PdfURL != nil {
		values["pdf_url"] = *upd.PdfURL
	}
	if len(values) == 0 {
		return nil
	}
	return s.db.Model(&EbookModel{}).Where("id = ?", id).Updates(values).Error
}

// NextEbookVersion keeps versions monotonically increasing per project.
func (s *GormStore) NextEbookVersion(projectID string) (int, error) {
	var max int
	err := s.db.Model(&EbookModel{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// model conversions

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		IsAnonymous:  u.IsAnonymous,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		IsAnonymous:  m.IsAnonymous,
		CreatedAt:    m.CreatedAt,
	}
}

func projectToModel(p domain.BiographyProject) BiographyProjectModel {
	return BiographyProjectModel{
		ID:                p.ID,
		UserID:            p.UserID,
		SubjectName:       p.SubjectName,
		SubjectBirthDate:  p.SubjectBirthDate,
		SubjectBirthPlace: p.SubjectBirthPlace,
		SubjectGender:     p.SubjectGender,
		ProjectType:       string(p.ProjectType),
		ProjectGoal:       p.ProjectGoal,
		Status:            string(p.Status),
		ProgressPercent:   p.ProgressPercent,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func projectFromModel(m BiographyProjectModel) domain.BiographyProject {
	return domain.BiographyProject{
		ID:                m.ID,
		UserID:            m.UserID,
		SubjectName:       m.SubjectName,
		SubjectBirthDate:  m.SubjectBirthDate,
		SubjectBirthPlace: m.SubjectBirthPlace,
		SubjectGender:     m.SubjectGender,
		ProjectType:       domain.ProjectType(m.ProjectType),
		ProjectGoal:       m.ProjectGoal,
		Status:            domain.ProjectStatus(m.Status),
		ProgressPercent:   m.ProgressPercent,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func uploadToModel(u domain.Upload) (UploadModel, error) {
	meta, err := toJSON(u.ExtractedMetadata)
	if err != nil {
		return UploadModel{}, err
	}
	analysis, err := toJSON(u.AIAnalysis)
	if err != nil {
		return UploadModel{}, err
	}
	return UploadModel{
		ID:                u.ID,
		ProjectID:         u.ProjectID,
		FileType:          string(u.FileType),
		FileURL:           u.FileURL,
		FileName:          u.FileName,
		FileSize:          u.FileSize,
		OCRText:           u.OCRText,
		ExtractedMetadata: meta,
		AIAnalysis:        analysis,
		UploadedAt:        u.UploadedAt,
	}, nil
}

func uploadFromModel(m UploadModel) domain.Upload {
	return domain.Upload{
		ID:                m.ID,
		ProjectID:         m.ProjectID,
		FileType:          domain.FileType(m.FileType),
		FileURL:           m.FileURL,
		FileName:          m.FileName,
		FileSize:          m.FileSize,
		OCRText:           m.OCRText,
		ExtractedMetadata: fromJSONMap(m.ExtractedMetadata),
		AIAnalysis:        fromJSONMap(m.AIAnalysis),
		UploadedAt:        m.UploadedAt,
	}
}

func sessionToModel(s domain.InterviewSession) (InterviewSessionModel, error) {
	findings, err := toJSON(s.KeyFindings)
	if err != nil {
		return InterviewSessionModel{}, err
	}
	questions, err := toJSON(s.NextQuestions)
	if err != nil {
		return InterviewSessionModel{}, err
	}
	return InterviewSessionModel{
		ID:            s.ID,
		ProjectID:     s.ProjectID,
		SessionNumber: s.SessionNumber,
		Chapter:       s.Chapter,
		Mode:          string(s.Mode),
		Status:        string(s.Status),
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt,
		Summary:       s.Summary,
		KeyFindings:   findings,
		NextQuestions: questions,
	}, nil
}

func sessionFromModel(m InterviewSessionModel) domain.InterviewSession {
	return domain.InterviewSession{
		ID:            m.ID,
		ProjectID:     m.ProjectID,
		SessionNumber: m.SessionNumber,
		Chapter:       m.Chapter,
		Mode:          domain.SessionMode(m.Mode),
		Status:        domain.SessionStatus(m.Status),
		StartedAt:     m.StartedAt,
		EndedAt:       m.EndedAt,
		Summary:       m.Summary,
		KeyFindings:   fromJSONStrings(m.KeyFindings),
		NextQuestions: fromJSONStrings(m.NextQuestions),
	}
}

func messageToModel(msg domain.InterviewMessage) (InterviewMessageModel, error) {
	refs, err := toJSON(msg.ReferencedUploads)
	if err != nil {
		return InterviewMessageModel{}, err
	}
	return InterviewMessageModel{
		ID:                msg.ID,
		SessionID:         msg.SessionID,
		Role:              string(msg.Role),
		Content:           msg.Content,
		AudioURL:          msg.AudioURL,
		AudioDuration:     msg.AudioDuration,
		ReferencedUploads: refs,
		CreatedAt:         msg.CreatedAt,
	}, nil
}

func messageFromModel(m InterviewMessageModel) domain.InterviewMessage {
	return domain.InterviewMessage{
		ID:                m.ID,
		SessionID:         m.SessionID,
		Role:              domain.MessageRole(m.Role),
		Content:           m.Content,
		AudioURL:          m.AudioURL,
		AudioDuration:     m.AudioDuration,
		ReferencedUploads: fromJSONStrings(m.ReferencedUploads),
		CreatedAt:         m.CreatedAt,
	}
}

func memoryToModel(mem domain.AIMemory) (AIMemoryModel, error) {
	meta, err := toJSON(mem.Metadata)
	if err != nil {
		return AIMemoryModel{}, err
	}
	return AIMemoryModel{
		ID:         mem.ID,
		ProjectID:  mem.ProjectID,
		MemoryType: string(mem.MemoryType),
		Content:    mem.Content,
		Metadata:   meta,
		Confidence: mem.Confidence,
		SourceType: mem.SourceType,
		SourceID:   mem.SourceID,
		CreatedAt:  mem.CreatedAt,
		UpdatedAt:  mem.UpdatedAt,
	}, nil
}

func memoryFromModel(m AIMemoryModel) domain.AIMemory {
	return domain.AIMemory{
		ID:         m.ID,
		ProjectID:  m.ProjectID,
		MemoryType: domain.MemoryType(m.MemoryType),
		Content:    m.Content,
		Metadata:   fromJSONMap(m.Metadata),
		Confidence: m.Confidence,
		SourceType: m.SourceType,
		SourceID:   m.SourceID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func ebookToModel(e domain.Ebook) (EbookModel, error) {
	content, err := toJSON(e.Chapters)
	if err != nil {
		return EbookModel{}, err
	}
	return EbookModel{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Version:     e.Version,
		Title:       e.Title,
		Content:     content,
		EpubURL:     e.EpubURL,
		PdfURL:      e.PdfURL,
		Status:      string(e.Status),
		GeneratedAt: e.GeneratedAt,
	}, nil
}

func ebookFromModel(m EbookModel) domain.Ebook {
	var chapters []domain.EbookChapter
	if len(m.Content) > 0 {
		_ = json.Unmarshal(m.Content, &chapters)
	}
	return domain.Ebook{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Version:     m.Version,
		Title:       m.Title,
		Chapters:    chapters,
		EpubURL:     m.EpubURL,
		PdfURL:      m.PdfURL,
		Status:      domain.EbookStatus(m.Status),
		GeneratedAt: m.GeneratedAt,
	}
}

// JSON column helpers

func toJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return nil, nil
		}
	case []string:
		if t == nil {
			return nil, nil
		}
	case []domain.EbookChapter:
		if t == nil {
			return nil, nil
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func fromJSONMap(raw datatypes.JSON) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func fromJSONStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
