package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdjsoneditor/jsongraph/pkg/tabs"
)

// registerTabRoutes mounts the tab state under /tabs:
//
//	GET    /tabs                   snapshot of all tabs
//	POST   /tabs                   add a tab {name, content}
//	POST   /tabs/reset             back to a single default tab
//	GET    /tabs/active            the active tab
//	PUT    /tabs/active/content    {content, source}
//	PATCH  /tabs/active/graph      graph state update
//	PATCH  /tabs/active/editor     editor state update
//	PATCH  /tabs/active/request    request settings patch
//	GET    /tabs/{id}              one tab
//	PUT    /tabs/{id}              rename {name}
//	DELETE /tabs/{id}              close
//	POST   /tabs/{id}/switch       make active
//	POST   /tabs/{id}/duplicate    copy and make active
func (s *Server) registerTabRoutes(r chi.Router) {
	r.Route("/tabs", func(r chi.Router) {
		r.Get("/", s.handleListTabs)
		r.Post("/", s.handleAddTab)
		r.Post("/reset", s.handleResetTabs)

		r.Route("/active", func(r chi.Router) {
			r.Get("/", s.handleActiveTab)
			r.Put("/content", s.handleUpdateContent)
			r.Patch("/graph", s.handleUpdateGraphState)
			r.Patch("/editor", s.handleUpdateEditorState)
			r.Patch("/request", s.handleUpdateRequestSettings)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetTab)
			r.Put("/", s.handleRenameTab)
			r.Delete("/", s.handleCloseTab)
			r.Post("/switch", s.handleSwitchTab)
			r.Post("/duplicate", s.handleDuplicateTab)
		})
	})
}

type idResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleListTabs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tabs.Snapshot())
}

func (s *Server) handleAddTab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.tabs.AddTab(req.Name, req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleResetTabs(w http.ResponseWriter, r *http.Request) {
	if err := s.tabs.Reset(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tabs.Snapshot())
}

func (s *Server) handleActiveTab(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tabs.Active())
}

func (s *Server) handleGetTab(w http.ResponseWriter, r *http.Request) {
	t, err := s.tabs.Tab(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleRenameTab(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.tabs.RenameTab(id, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTab(w, r, id)
}

func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	if err := s.tabs.CloseTab(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tabs.Snapshot())
}

func (s *Server) handleSwitchTab(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.tabs.SwitchTab(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTab(w, r, id)
}

func (s *Server) handleDuplicateTab(w http.ResponseWriter, r *http.Request) {
	id, err := s.tabs.DuplicateTab(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		Source  string `json:"source"`
	}
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tabs.UpdateActiveContent(req.Content, req.Source); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tabs.Active())
}

func (s *Server) handleUpdateGraphState(w http.ResponseWriter, r *http.Request) {
	var req tabs.GraphState
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tabs.UpdateActiveGraphState(req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tabs.Active())
}

func (s *Server) handleUpdateEditorState(w http.ResponseWriter, r *http.Request) {
	var req tabs.EditorState
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tabs.UpdateActiveEditorState(req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tabs.Active())
}

func (s *Server) handleUpdateRequestSettings(w http.ResponseWriter, r *http.Request) {
	var req tabs.RequestSettingsPatch
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.tabs.UpdateActiveRequestSettings(req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tabs.Active())
}

func (s *Server) writeTab(w http.ResponseWriter, r *http.Request, id string) {
	t, err := s.tabs.Tab(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
