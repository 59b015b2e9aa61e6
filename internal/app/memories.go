package app

import (
	"fmt"
	"strings"

	"github.com/Lovecoded2024/timejournal/internal/util"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
)

// CreateMemoryInput records one structured finding about the subject.
type CreateMemoryInput struct {
	MemoryType string         `json:"memoryType"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Confidence float64        `json:"confidence"`
	SourceType string         `json:"sourceType"`
	SourceID   string         `json:"sourceId"`
}

var validMemoryTypes = map[domain.MemoryType]bool{
	domain.MemoryFact:            true,
	domain.MemoryTimelineEvent:   true,
	domain.MemoryPerson:          true,
	domain.MemoryStoryCandidate:  true,
	domain.MemoryPendingQuestion: true,
}

func (a *App) CreateMemory(userID, projectID string, in CreateMemoryInput) (domain.AIMemory, error) {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return domain.AIMemory{}, err
	}
	memoryType := domain.MemoryType(in.MemoryType)
	if !validMemoryTypes[memoryType] {
		return domain.AIMemory{}, validationf("无效的记忆类型 %q", in.MemoryType)
	}
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return domain.AIMemory{}, validationf("记忆内容不能为空")
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return domain.AIMemory{}, validationf("置信度必须在 0 到 1 之间")
	}
	now := a.now()
	memory := domain.AIMemory{
		ID:         util.NewID(),
		ProjectID:  projectID,
		MemoryType: memoryType,
		Content:    in.Content,
		Metadata:   in.Metadata,
		Confidence: in.Confidence,
		SourceType: in.SourceType,
		SourceID:   in.SourceID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.store.CreateMemory(memory); err != nil {
		return domain.AIMemory{}, fmt.Errorf("create memory: %w", err)
	}
	return memory, nil
}

// ListMemories returns project memories, optionally filtered by type.
func (a *App) ListMemories(userID, projectID, memoryType string) ([]domain.AIMemory, error) {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return nil, err
	}
	if memoryType == "" {
		return a.store.ListMemoriesByProject(projectID)
	}
	mt := domain.MemoryType(memoryType)
	if !validMemoryTypes[mt] {
		return nil, validationf("无效的记忆类型 %q", memoryType)
	}
	return a.store.ListMemoriesByType(projectID, mt)
}
