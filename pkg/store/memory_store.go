package store

import (
	"sort"
	"sync"

	"github.com/Lovecoded2024/timejournal/pkg/domain"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	projects map[string]domain.BiographyProject
	uploads  map[string]domain.Upload
	sessions map[string]domain.InterviewSession
	messages map[string][]domain.InterviewMessage
	memories map[string][]domain.AIMemory
	ebooks   map[string]domain.Ebook

	projectOrder []string
	uploadOrder  []string
	ebookOrder   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[string]domain.User{},
		projects: map[string]domain.BiographyProject{},
		uploads:  map[string]domain.Upload{},
		sessions: map[string]domain.InterviewSession{},
		messages: map[string][]domain.InterviewMessage{},
		memories: map[string][]domain.AIMemory{},
		ebooks:   map[string]domain.Ebook{},
	}
}

// users

func (s *MemoryStore) SaveUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) HasUserEmail(email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email && email != "" {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if email == "" {
		return domain.User{}, false, nil
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

// projects

func (s *MemoryStore) CreateProject(p domain.BiographyProject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	s.projectOrder = append(s.projectOrder, p.ID)
	return nil
}

func (s *MemoryStore) GetProject(id string) (domain.BiographyProject, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	return p, ok, nil
}

func (s *MemoryStore) ListProjectsByUser(userID string) ([]domain.BiographyProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.BiographyProject
	// newest first
	for i := len(s.projectOrder) - 1; i >= 0; i-- {
		p := s.projects[s.projectOrder[i]]
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (s *MemoryStore) UpdateProject(id string, upd ProjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil
	}
	if upd.SubjectName != nil {
		p.SubjectName = *upd.SubjectName
	}
	if upd.SubjectBirthDate != nil {
		p.SubjectBirthDate = *upd.SubjectBirthDate
	}
	if upd.SubjectBirthPlace != nil {
		p.SubjectBirthPlace = *upd.SubjectBirthPlace
	}
	if upd.SubjectGender != nil {
		p.SubjectGender = *upd.SubjectGender
	}
	if upd.ProjectType != nil {
		p.ProjectType = *upd.ProjectType
	}
	if upd.ProjectGoal != nil {
		p.ProjectGoal = *upd.ProjectGoal
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.ProgressPercent != nil {
		p.ProgressPercent = *upd.ProgressPercent
	}
	s.projects[id] = p
	return nil
}

// uploads

func (s *MemoryStore) CreateUpload(u domain.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[u.ID] = u
	s.uploadOrder = append(s.uploadOrder, u.ID)
	return nil
}

func (s *MemoryStore) GetUpload(id string) (domain.Upload, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[id]
	return u, ok, nil
}

func (s *MemoryStore) ListUploadsByProject(projectID string) ([]domain.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.Upload
	for i := len(s.uploadOrder) - 1; i >= 0; i-- {
		u := s.uploads[s.uploadOrder[i]]
		if u.ProjectID == projectID {
			res = append(res, u)
		}
	}
	return res, nil
}

func (s *MemoryStore) SetUploadAnalysis(id string, analysis map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.uploads[id]
	if !ok {
		return nil
	}
	u.AIAnalysis = analysis
	s.uploads[id] = u
	return nil
}

// interview sessions

func (s *MemoryStore) CreateSession(sess domain.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) GetSession(id string) (domain.InterviewSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok, nil
}

func (s *MemoryStore) ListSessionsByProject(projectID string) ([]domain.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.InterviewSession
	for _, sess := range s.sessions {
		if sess.ProjectID == projectID {
			res = append(res, sess)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].SessionNumber < res[j].SessionNumber })
	return res, nil
}

func (s *MemoryStore) UpdateSession(id string, upd SessionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if upd.Status != nil {
		sess.Status = *upd.Status
	}
	if upd.Chapter != nil {
		sess.Chapter = *upd.Chapter
	}
	if upd.Summary != nil {
		sess.Summary = *upd.Summary
	}
	if upd.KeyFindings != nil {
		sess.KeyFindings = *upd.KeyFindings
	}
	if upd.NextQuestions != nil {
		sess.NextQuestions = *upd.NextQuestions
	}
	if upd.EndedAt != nil {
		sess.EndedAt = upd.EndedAt
	}
	s.sessions[id] = sess
	return nil
}

func (s *MemoryStore) NextSessionNumber(projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for _, sess := range s.sessions {
		if sess.ProjectID == projectID && sess.SessionNumber > max {
			max = sess.SessionNumber
		}
	}
	return max + 1, nil
}

// messages

func (s *MemoryStore) AppendMessage(msg domain.InterviewMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

func (s *MemoryStore) ListMessagesBySession(sessionID string) ([]domain.InterviewMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[sessionID]
	out := make([]domain.InterviewMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// memories

func (s *MemoryStore) CreateMemory(mem domain.AIMemory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories[mem.ProjectID] = append(s.memories[mem.ProjectID], mem)
	return nil
}

func (s *MemoryStore) ListMemoriesByProject(projectID string) ([]domain.AIMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mems := s.memories[projectID]
	// newest first
	out := make([]domain.AIMemory, 0, len(mems))
	for i := len(mems) - 1; i >= 0; i-- {
		out = append(out, mems[i])
	}
	return out, nil
}

func (s *MemoryStore) ListMemoriesByType(projectID string, memoryType domain.MemoryType) ([]domain.AIMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mems := s.memories[projectID]
	var out []domain.AIMemory
	for i := len(mems) - 1; i >= 0; i-- {
		if mems[i].MemoryType == memoryType {
			out = append(out, mems[i])
		}
	}
	return out, nil
}

// ebooks

func (s *MemoryStore) CreateEbook(e domain.Ebook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ebooks[e.ID] = e
	s.ebookOrder = append(s.ebookOrder, e.ID)
	return nil
}

func (s *MemoryStore) GetEbook(id string) (domain.Ebook, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.ebooks[id]
	return e, ok, nil
}

func (s *MemoryStore) ListEbooksByProject(projectID string) ([]domain.Ebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.Ebook
	for _, id := range s.ebookOrder {
		e := s.ebooks[id]
		if e.ProjectID == projectID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Version > res[j].Version })
	return res, nil
}

func (s *MemoryStore) UpdateEbook(id string, upd EbookUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ebooks[id]
	if !ok {
		return nil
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	if upd.EpubURL != nil {
		e.EpubURL = *upd.EpubURL
	}
	if upd.PdfURL != nil {
		e.PdfURL = *upd.PdfURL
	}
	s.ebooks[id] = e
	return nil
}

func (s *MemoryStore) NextEbookVersion(projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for _, e := range s.ebooks {
		if e.ProjectID == projectID && e.Version > max {
			max = e.Version
		}
	}
	return max + 1, nil
}

var _ Store = (*MemoryStore)(nil)
