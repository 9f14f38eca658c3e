package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/pipeline"
	"github.com/matzehuels/tileme/pkg/render"
	"github.com/matzehuels/tileme/pkg/session"
	"github.com/matzehuels/tileme/pkg/tiler"
)

type sessionResponse struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Layout    layout.Layout `json:"layout"`
}

func newSessionResponse(sess *session.Session, l layout.Layout) sessionResponse {
	return sessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		ExpiresAt: sess.ExpiresAt,
		Layout:    l,
	}
}

type appendRequest struct {
	Items []layout.ItemSpec `json:"items"`
}

type resizeRequest struct {
	ContainerWidth float64 `json:"container_width"`
}

func (s *Server) observer(ctx context.Context) tiler.Option {
	return tiler.WithObserver(pipeline.NewObserver(ctx, s.logger))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req tileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	opts := req.options()
	if err := opts.ValidateForTile(); err != nil {
		writeError(w, err)
		return
	}

	sess, err := session.Create(opts.Width, opts.Config, req.Items, s.sessionTTL, s.observer(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := sess.Layout()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.logger.Error("store session", "id", sess.ID, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, newSessionResponse(sess, l))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, false, func(ctx context.Context, sess *session.Session) (layout.Layout, error) {
		return sess.Layout()
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	unlock := s.locker.Lock(id)
	defer unlock()
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAppendItems(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.withSession(w, r, true, func(ctx context.Context, sess *session.Session) (layout.Layout, error) {
		return sess.Append(req.Items, s.observer(ctx))
	})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.withSession(w, r, true, func(ctx context.Context, sess *session.Session) (layout.Layout, error) {
		return sess.Resize(req.ContainerWidth, s.observer(ctx))
	})
}

func (s *Server) handleRetile(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, true, func(ctx context.Context, sess *session.Session) (layout.Layout, error) {
		return sess.Retile(s.observer(ctx))
	})
}

func (s *Server) handleRenderSession(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := render.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.loadSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := sess.Layout()
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeArtifact(w, r, l, format)
}

// withSession runs fn on the session named in the URL while holding its
// lock. When write is set the session is touched and stored after fn
// succeeds.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, write bool, fn func(context.Context, *session.Session) (layout.Layout, error)) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	unlock := s.locker.Lock(id)
	defer unlock()

	sess, err := s.loadSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := fn(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	if write {
		sess.Touch(s.sessionTTL)
		if err := s.sessions.Set(r.Context(), sess); err != nil {
			s.logger.Error("store session", "id", sess.ID, "error", err)
			writeError(w, err)
			return
		}
		l.CreatedAt = sess.UpdatedAt
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess, l))
}

func (s *Server) loadSession(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}
