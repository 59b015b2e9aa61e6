package server

import (
	"net/http"

	"github.com/Lovecoded2024/timejournal/internal/app"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
)

func (s *Server) handleProjectSessions(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := s.app.ListSessions(user.ID, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
	case http.MethodPost:
		var req app.StartSessionInput
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		session, err := s.app.StartSession(user.ID, projectID, req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSessionSubroutes(w http.ResponseWriter, r *http.Request, user domain.User) {
	parts := pathParts(r, "/api/sessions/")
	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		session, err := s.app.GetSession(user.ID, parts[0])
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	case len(parts) == 2 && parts[1] == "end":
		s.handleSessionEnd(w, r, user, parts[0])
	case len(parts) == 2 && parts[1] == "messages":
		s.handleSessionMessages(w, r, user, parts[0])
	case len(parts) == 2 && parts[1] == "speech":
		s.handleSessionSpeech(w, r, user, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request, user domain.User, sessionID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req app.EndSessionInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := s.app.EndSession(user.ID, sessionID, req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request, user domain.User, sessionID string) {
	switch r.Method {
	case http.MethodGet:
		messages, err := s.app.ListMessages(user.ID, sessionID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
	case http.MethodPost:
		var req struct {
			Content           string   `json:"content"`
			ReferencedUploads []string `json:"referencedUploads"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		reply, err := s.app.SubmitMessage(r.Context(), user.ID, sessionID, req.Content, req.ReferencedUploads)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reply)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSessionSpeech(w http.ResponseWriter, r *http.Request, user domain.User, sessionID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Text    string `json:"text"`
		VoiceID string `json:"voiceId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	speech, err := s.app.Speech(r.Context(), user.ID, sessionID, req.Text, req.VoiceID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"audioDataUri": speech.AudioDataURI,
		"duration":     speech.Duration,
	})
}

func (s *Server) handleProjectEbooks(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	switch r.Method {
	case http.MethodGet:
		ebooks, err := s.app.ListEbooks(user.ID, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ebooks": ebooks})
	case http.MethodPost:
		var req struct {
			Title string `json:"title"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ebook, err := s.app.GenerateEbook(r.Context(), user.ID, projectID, req.Title)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ebook)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleEbookSubroutes(w http.ResponseWriter, r *http.Request, user domain.User) {
	parts := pathParts(r, "/api/ebooks/")
	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		ebook, err := s.app.GetEbook(user.ID, parts[0])
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ebook)
	case len(parts) == 2 && parts[1] == "publish":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		ebook, err := s.app.PublishEbook(r.Context(), user.ID, parts[0])
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ebook)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}
