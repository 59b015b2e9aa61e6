package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Lovecoded2024/timejournal/internal/app"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
)

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		projects, err := s.app.ListProjects(user.ID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
	case http.MethodPost:
		var req app.CreateProjectInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		project, err := s.app.CreateProject(user.ID, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleProjectSubroutes(w http.ResponseWriter, r *http.Request, user domain.User) {
	parts := pathParts(r, "/api/projects/")
	switch {
	case len(parts) == 1:
		s.handleProjectByID(w, r, user, parts[0])
	case len(parts) == 2 && parts[1] == "uploads":
		s.handleProjectUploads(w, r, user, parts[0])
	case len(parts) == 3 && parts[1] == "uploads" && parts[2] == "analyze":
		s.handleProjectAnalyze(w, r, user, parts[0])
	case len(parts) == 2 && parts[1] == "sessions":
		s.handleProjectSessions(w, r, user, parts[0])
	case len(parts) == 2 && parts[1] == "memories":
		s.handleProjectMemories(w, r, user, parts[0])
	case len(parts) == 2 && parts[1] == "ebooks":
		s.handleProjectEbooks(w, r, user, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleProjectByID(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	switch r.Method {
	case http.MethodGet:
		project, err := s.app.GetProject(user.ID, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case http.MethodPatch:
		var req app.UpdateProjectInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		project, err := s.app.UpdateProject(user.ID, projectID, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleProjectUploads(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	switch r.Method {
	case http.MethodGet:
		uploads, err := s.app.ListUploads(user.ID, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"uploads": uploads})
	case http.MethodPost:
		s.handleUploadCreate(w, r, user, projectID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUploadCreate(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "文件太大")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "缺少 file 字段")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := s.allowedExtensions[ext]; !ok {
		writeError(w, http.StatusUnprocessableEntity, "不支持的文件类型 "+ext)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file failed")
		return
	}
	upload, err := s.app.CreateUpload(r.Context(), user.ID, projectID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}

func (s *Server) handleProjectAnalyze(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	result, err := s.app.AnalyzeProjectImages(r.Context(), user.ID, projectID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProjectMemories(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	switch r.Method {
	case http.MethodGet:
		memories, err := s.app.ListMemories(user.ID, projectID, r.URL.Query().Get("type"))
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"memories": memories})
	case http.MethodPost:
		var req app.CreateMemoryInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		memory, err := s.app.CreateMemory(user.ID, projectID, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, memory)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUploadSubroutes(w http.ResponseWriter, r *http.Request, user domain.User) {
	parts := pathParts(r, "/api/uploads/")
	switch {
	case len(parts) == 2 && parts[1] == "analyze":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		analysis, err := s.app.AnalyzeUpload(r.Context(), user.ID, parts[0])
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	case len(parts) == 2 && parts[1] == "url":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		url, err := s.app.UploadDownloadURL(r.Context(), user.ID, parts[0])
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}
