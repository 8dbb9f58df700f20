package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/layout"
	"github.com/schemadraw/schemadraw/pkg/pipeline"
	"github.com/schemadraw/schemadraw/pkg/refs"
	"github.com/schemadraw/schemadraw/pkg/schema"
)

// maxBodySize caps request bodies at 8 MiB; schema documents are small.
const maxBodySize = 8 << 20

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	d, ok, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeDiagramNotFound, "no diagram stored"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	d, err := diagram.Unmarshal(data)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "parse diagram"))
		return
	}
	s.mu.Lock()
	err = s.store.Save(r.Context(), d)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.store.Delete(r.Context())
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	result, err := s.runner.Execute(r.Context(), data, pipeline.Options{
		Strategy: r.URL.Query().Get("strategy"),
		Title:    r.URL.Query().Get("title"),
		Logger:   s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	err = s.store.Save(r.Context(), result.Diagram)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.Diagram)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := schema.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	d, ok, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeDiagramNotFound, "no diagram stored"))
		return
	}
	out, err := schema.Export(d, format)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	strategy, err := layout.ParseStrategy(chi.URLParam(r, "strategy"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, func(d diagram.Diagram) (diagram.Diagram, error) {
		return layout.Apply(strategy, d), nil
	})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "target")
	s.mutate(w, r, func(d diagram.Diagram) (diagram.Diagram, error) {
		if _, ok := d.EntityByID(sourceID); !ok {
			return d, errors.New(errors.ErrCodeEntityNotFound, "entity %s not found", sourceID)
		}
		if _, ok := d.EntityByID(targetID); !ok {
			return d, errors.New(errors.ErrCodeEntityNotFound, "entity %s not found", targetID)
		}
		return refs.Connect(d, sourceID, targetID), nil
	})
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, func(d diagram.Diagram) (diagram.Diagram, error) {
		if _, ok := d.EntityByID(id); !ok {
			return d, errors.New(errors.ErrCodeEntityNotFound, "entity %s not found", id)
		}
		return refs.DeleteEntity(d, id), nil
	})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil || body.Name == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "body must be {\"name\": <new name>}"))
		return
	}
	s.mutate(w, r, func(d diagram.Diagram) (diagram.Diagram, error) {
		e, ok := d.EntityByID(id)
		if !ok {
			return d, errors.New(errors.ErrCodeEntityNotFound, "entity %s not found", id)
		}
		return refs.RenameEntity(d, id, e.Name, body.Name), nil
	})
}

func (s *Server) handleRetype(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	propName := chi.URLParam(r, "name")
	var body struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "body must be {\"type\": <property type>}"))
		return
	}
	if !diagram.ValidTypes[diagram.Type(body.Type)] {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown property type: %q", body.Type))
		return
	}
	s.mutate(w, r, func(d diagram.Diagram) (diagram.Diagram, error) {
		owner, ok := d.EntityByID(id)
		if !ok {
			return d, errors.New(errors.ErrCodeEntityNotFound, "entity %s not found", id)
		}
		if !owner.Properties.Has(propName) {
			return d, errors.New(errors.ErrCodePropertyNotFound, "property %s not found on %s", propName, owner.Name)
		}
		return refs.Retype(d, id, propName, diagram.Type(body.Type)), nil
	})
}

// mutate loads the stored diagram, applies fn, saves the result and returns
// it. The server mutex serializes the whole load-apply-save cycle, so
// concurrent edits cannot overwrite each other from a stale load. Engine
// operations are pure, so a failing save leaves the stored diagram
// untouched.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(diagram.Diagram) (diagram.Diagram, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, errors.New(errors.ErrCodeDiagramNotFound, "no diagram stored"))
		return
	}
	next, err := fn(d)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), next); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}

// statusFor maps structured error codes onto HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStrategy,
		errors.ErrCodeInvalidDiagram:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeEntityNotFound,
		errors.ErrCodePropertyNotFound, errors.ErrCodeDiagramNotFound:
		return http.StatusNotFound
	case errors.ErrCodeStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
