package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/pipeline"
	"github.com/matzehuels/tileme/pkg/render"
	"github.com/matzehuels/tileme/pkg/storage"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// tileRequest is the body of POST /v1/layouts and POST /v1/sessions.
// It has the same shape as a JSON item file.
type tileRequest struct {
	ContainerWidth float64           `json:"container_width"`
	Config         *tiler.Config     `json:"config,omitempty"`
	Items          []layout.ItemSpec `json:"items"`
}

func (req tileRequest) options() pipeline.Options {
	opts := pipeline.Options{Width: req.ContainerWidth}
	if req.Config != nil {
		opts.Config = *req.Config
	}
	return opts
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req tileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	l, hit, err := s.runner.TileWithCacheInfo(r.Context(), req.Items, req.options())
	if err != nil {
		writeError(w, err)
		return
	}
	l = storage.Prepare(l)
	if err := s.archive.Save(r.Context(), l); err != nil {
		s.logger.Error("archive layout", "id", l.ID, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/layouts/"+l.ID)
	w.Header().Set("X-Cache", cacheHeader(hit))
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}

	layouts, err := s.archive.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": layouts})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.archivedLayout(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.archive.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderLayout(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := render.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	l, err := s.archivedLayout(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeArtifact(w, r, l, format)
}

func (s *Server) archivedLayout(r *http.Request) (layout.Layout, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		return layout.Layout{}, err
	}
	return s.archive.Get(r.Context(), id)
}

// writeArtifact renders l in one format. Query parameters labels, links and
// background map to render options.
func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, l layout.Layout, format string) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Formats: []string{format},
		Render: render.Options{
			Labels:     queryBool(q.Get("labels")),
			Links:      queryBool(q.Get("links")),
			Background: q.Get("background"),
		},
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), l, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentTypes[format])
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
