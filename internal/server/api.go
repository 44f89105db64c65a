package server

import (
	"encoding/json"
	"net/http"

	jgerrors "github.com/pdjsoneditor/jsongraph/pkg/errors"
	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
	"github.com/pdjsoneditor/jsongraph/pkg/model"
	"github.com/pdjsoneditor/jsongraph/pkg/pipeline"
	"github.com/pdjsoneditor/jsongraph/pkg/worker"
)

// documentRequest carries a JSON document as text, since the editor may hold
// text that does not parse.
type documentRequest struct {
	Content   string   `json:"content"`
	ExpandAll bool     `json:"expandAll,omitempty"`
	Expanded  []string `json:"expandedNodes,omitempty"`
	MaxDepth  int      `json:"maxDepth,omitempty"`
}

func (d documentRequest) modelOptions() model.Options {
	expanded := make(map[string]bool, len(d.Expanded))
	for _, id := range d.Expanded {
		expanded[id] = true
	}
	return model.Options{ExpandAll: d.ExpandAll, Expanded: expanded, MaxDepth: d.MaxDepth}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.MaxDepth < 0 {
		s.writeError(w, r, jgerrors.New(jgerrors.ErrCodeInvalidInput, "maxDepth must not be negative"))
		return
	}
	g, err := s.runner.BuildGraph(r.Context(), []byte(req.Content), req.modelOptions())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleLayout runs one worker request and streams its events as
// newline-delimited JSON. Failures after the stream starts arrive as an error
// event, so the status is 200 whenever the request decodes.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req worker.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Type == "" {
		req.Type = worker.TypeLayout
	}
	if req.Type != worker.TypeLayout {
		s.writeError(w, r, jgerrors.New(jgerrors.ErrCodeInvalidInput, "unsupported message type %q", req.Type))
		return
	}
	if !req.HasGraph() {
		s.writeError(w, r, jgerrors.New(jgerrors.ErrCodeInvalidInput, "nodes and edges are required"))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	s.worker.Handle(r.Context(), req, func(ev worker.Event) {
		if err := enc.Encode(ev); err != nil {
			s.logger.Debug("dropping layout event", "id", ev.ID, "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	})
}

type renderRequest struct {
	documentRequest
	Config          *layout.Config         `json:"config,omitempty"`
	MeasuredHeights worker.MeasuredHeights `json:"measuredHeights,omitempty"`
	ShowAll         []string               `json:"showAllItemsNodeIds,omitempty"`
	Format          string                 `json:"format,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(req.Format); err != nil {
		s.writeError(w, r, jgerrors.Wrap(jgerrors.ErrCodeInvalidInput, err, "render"))
		return
	}
	cfg := layout.Default()
	if req.Config != nil {
		cfg = *req.Config
	}
	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Document:        []byte(req.Content),
		ExpandAll:       req.ExpandAll,
		Expanded:        req.Expanded,
		MaxDepth:        req.MaxDepth,
		Config:          cfg,
		MeasuredHeights: req.MeasuredHeights,
		ShowAll:         req.ShowAll,
		Formats:         []string{req.Format},
		Logger:          s.logger,
	}, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[req.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[req.Format])
}

type estimateRequest struct {
	Node    graph.Node     `json:"node"`
	Config  *layout.Config `json:"config,omitempty"`
	ShowAll bool           `json:"showAllItems,omitempty"`
}

type estimateResponse struct {
	Height float64 `json:"height"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg := layout.Default()
	if req.Config != nil {
		cfg = req.Config.Normalized()
	}
	writeJSON(w, http.StatusOK, estimateResponse{Height: layout.EstimateNodeHeight(req.Node, cfg, req.ShowAll)})
}
