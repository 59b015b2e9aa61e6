package app

import (
	"fmt"
	"strings"

	"github.com/Lovecoded2024/timejournal/internal/util"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

// CreateProjectInput carries the fields a user fills in when starting a
// new biography.
type CreateProjectInput struct {
	SubjectName       string `json:"subjectName"`
	SubjectBirthDate  string `json:"subjectBirthDate"`
	SubjectBirthPlace string `json:"subjectBirthPlace"`
	SubjectGender     string `json:"subjectGender"`
	ProjectType       string `json:"projectType"`
	ProjectGoal       string `json:"projectGoal"`
}

// UpdateProjectInput is a partial update; nil fields are left untouched.
type UpdateProjectInput struct {
	SubjectName       *string `json:"subjectName"`
	SubjectBirthDate  *string `json:"subjectBirthDate"`
	SubjectBirthPlace *string `json:"subjectBirthPlace"`
	SubjectGender     *string `json:"subjectGender"`
	ProjectGoal       *string `json:"projectGoal"`
	Status            *string `json:"status"`
	ProgressPercent   *int    `json:"progressPercent"`
}

var validGenders = map[string]bool{"": true, "male": true, "female": true, "other": true}

func (a *App) CreateProject(userID string, in CreateProjectInput) (domain.BiographyProject, error) {
	in.SubjectName = strings.TrimSpace(in.SubjectName)
	if in.SubjectName == "" {
		return domain.BiographyProject{}, validationf("请填写传主姓名")
	}
	if !validGenders[in.SubjectGender] {
		return domain.BiographyProject{}, validationf("无效的性别 %q", in.SubjectGender)
	}
	projectType := domain.ProjectType(in.ProjectType)
	switch projectType {
	case "":
		projectType = domain.ProjectSelf
	case domain.ProjectSelf, domain.ProjectFamily:
	default:
		return domain.BiographyProject{}, validationf("无效的项目类型 %q", in.ProjectType)
	}

	now := a.now()
	project := domain.BiographyProject{
		ID:                util.NewID(),
		UserID:            userID,
		SubjectName:       in.SubjectName,
		SubjectBirthDate:  strings.TrimSpace(in.SubjectBirthDate),
		SubjectBirthPlace: strings.TrimSpace(in.SubjectBirthPlace),
		SubjectGender:     in.SubjectGender,
		ProjectType:       projectType,
		ProjectGoal:       strings.TrimSpace(in.ProjectGoal),
		Status:            domain.ProjectDraft,
		ProgressPercent:   0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := a.store.CreateProject(project); err != nil {
		return domain.BiographyProject{}, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (a *App) GetProject(userID, projectID string) (domain.BiographyProject, error) {
	return a.ownedProject(userID, projectID)
}

func (a *App) ListProjects(userID string) ([]domain.BiographyProject, error) {
	return a.store.ListProjectsByUser(userID)
}

func (a *App) UpdateProject(userID, projectID string, in UpdateProjectInput) (domain.BiographyProject, error) {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return domain.BiographyProject{}, err
	}

	upd := store.ProjectUpdate{
		SubjectBirthDate:  in.SubjectBirthDate,
		SubjectBirthPlace: in.SubjectBirthPlace,
		ProjectGoal:       in.ProjectGoal,
	}
	if in.SubjectName != nil {
		name := strings.TrimSpace(*in.SubjectName)
		if name == "" {
			return domain.BiographyProject{}, validationf("传主姓名不能为空")
		}
		upd.SubjectName = &name
	}
	if in.SubjectGender != nil {
		if !validGenders[*in.SubjectGender] {
			return domain.BiographyProject{}, validationf("无效的性别 %q", *in.SubjectGender)
		}
		upd.SubjectGender = in.SubjectGender
	}
	if in.Status != nil {
		status := domain.ProjectStatus(*in.Status)
		switch status {
		case domain.ProjectDraft, domain.ProjectInterviewing, domain.ProjectReviewing, domain.ProjectCompleted:
		default:
			return domain.BiographyProject{}, validationf("无效的项目状态 %q", *in.Status)
		}
		upd.Status = &status
	}
	if in.ProgressPercent != nil {
		if *in.ProgressPercent < 0 || *in.ProgressPercent > 100 {
			return domain.BiographyProject{}, validationf("进度必须在 0 到 100 之间")
		}
		upd.ProgressPercent = in.ProgressPercent
	}

	if err := a.store.UpdateProject(projectID, upd); err != nil {
		return domain.BiographyProject{}, fmt.Errorf("update project: %w", err)
	}
	project, _, err := a.store.GetProject(projectID)
	if err != nil {
		return domain.BiographyProject{}, fmt.Errorf("reload project: %w", err)
	}
	return project, nil
}

// ownedProject loads a project and enforces ownership. A project that
// exists but belongs to someone else looks the same as a missing one.
func (a *App) ownedProject(userID, projectID string) (domain.BiographyProject, error) {
	project, ok, err := a.store.GetProject(projectID)
	if err != nil {
		return domain.BiographyProject{}, fmt.Errorf("load project: %w", err)
	}
	if !ok || project.UserID != userID {
		return domain.BiographyProject{}, notFoundf("项目 %s 不存在", projectID)
	}
	return project, nil
}
